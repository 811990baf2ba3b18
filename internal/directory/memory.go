package directory

import (
	"context"
	"sync"
)

// Memory is an in-process Directory for tests and local development.
type Memory struct {
	mu   sync.Mutex
	recs map[string]Record
}

// Compile-time interface check
var _ Directory = (*Memory)(nil)

// NewMemory returns an empty in-memory directory.
func NewMemory() *Memory {
	return &Memory{recs: make(map[string]Record)}
}

func (m *Memory) FindByUserID(_ context.Context, id string) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.recs[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &rec, nil
}

func (m *Memory) FindOriginal(_ context.Context) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range m.recs {
		if rec.Original {
			return &rec, nil
		}
	}
	return nil, ErrNotFound
}

func (m *Memory) Insert(_ context.Context, rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.recs[rec.UserID]; !ok {
		m.recs[rec.UserID] = rec
	}
	return nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec, ok := m.recs[id]; ok && !rec.Original {
		delete(m.recs, id)
	}
	return nil
}

func (m *Memory) EnsureOriginal(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs[id] = Record{UserID: id, Original: true}
	return nil
}
