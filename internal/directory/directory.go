// Package directory stores the admin allow-list that gates access to
// the bot. Exactly one record is flagged original: the bootstrap admin
// allowed to add and remove other admins.
package directory

import (
	"context"
	"errors"
)

// ErrNotFound is returned when no record matches the query.
var ErrNotFound = errors.New("admin not found")

// Record is one authorized user entry.
type Record struct {
	UserID   string `bson:"userId"`
	Original bool   `bson:"original,omitempty"`
}

// Directory is the admin allow-list store. Implementations must
// serialize their own writes; callers add no locking of their own.
type Directory interface {
	// FindByUserID returns the record for id, or ErrNotFound.
	FindByUserID(ctx context.Context, id string) (*Record, error)
	// FindOriginal returns the bootstrap admin record, or ErrNotFound.
	FindOriginal(ctx context.Context) (*Record, error)
	// Insert adds a record. Inserting an existing user ID is a no-op.
	Insert(ctx context.Context, rec Record) error
	// Delete removes the record for id. The original record is never
	// removed, whatever id is given.
	Delete(ctx context.Context, id string) error
	// EnsureOriginal upserts the bootstrap admin record for id.
	EnsureOriginal(ctx context.Context, id string) error
}
