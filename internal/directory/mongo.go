package directory

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// adminCollection is the collection name used by the original deployment.
const adminCollection = "admins"

// Mongo implements Directory on a MongoDB collection.
type Mongo struct {
	coll *mongo.Collection
}

// Compile-time interface check
var _ Directory = (*Mongo)(nil)

// NewMongo wraps the admins collection of the named database.
func NewMongo(client *mongo.Client, dbName string) *Mongo {
	return &Mongo{coll: client.Database(dbName).Collection(adminCollection)}
}

func (m *Mongo) FindByUserID(ctx context.Context, id string) (*Record, error) {
	var rec Record
	err := m.coll.FindOne(ctx, bson.M{"userId": id}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("finding admin %q: %w", id, err)
	}
	return &rec, nil
}

func (m *Mongo) FindOriginal(ctx context.Context) (*Record, error) {
	var rec Record
	err := m.coll.FindOne(ctx, bson.M{"original": true}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("finding original admin: %w", err)
	}
	return &rec, nil
}

// Insert upserts by user ID so repeated adds of the same admin do not
// pile up duplicate records.
func (m *Mongo) Insert(ctx context.Context, rec Record) error {
	_, err := m.coll.UpdateOne(ctx,
		bson.M{"userId": rec.UserID},
		bson.M{"$setOnInsert": rec},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("inserting admin %q: %w", rec.UserID, err)
	}
	return nil
}

// Delete removes a non-original admin. The filter excludes the original
// record so the bootstrap admin cannot be removed through this path.
func (m *Mongo) Delete(ctx context.Context, id string) error {
	_, err := m.coll.DeleteOne(ctx, bson.M{
		"userId":   id,
		"original": bson.M{"$ne": true},
	})
	if err != nil {
		return fmt.Errorf("deleting admin %q: %w", id, err)
	}
	return nil
}

// EnsureOriginal seeds the bootstrap admin at startup. Upserting keeps
// the single-original invariant across restarts.
func (m *Mongo) EnsureOriginal(ctx context.Context, id string) error {
	_, err := m.coll.UpdateOne(ctx,
		bson.M{"userId": id},
		bson.M{"$set": bson.M{"userId": id, "original": true}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("seeding original admin %q: %w", id, err)
	}
	return nil
}
