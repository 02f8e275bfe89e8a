// Package memory is an in-process record store used by tests and as the
// default backend when no database is configured. Contents are lost on exit.
package memory

import (
	"context"
	"sync"

	"penjualan/internal/storage"
)

type RecordStore struct {
	mu      sync.RWMutex
	records map[string][]byte
}

func New() *RecordStore {
	return &RecordStore{records: make(map[string][]byte)}
}

func (r *RecordStore) Get(ctx context.Context, key string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	value, ok := r.records[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

func (r *RecordStore) Put(ctx context.Context, key string, value []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := make([]byte, len(value))
	copy(stored, value)
	r.records[key] = stored
	return nil
}

func (r *RecordStore) Delete(ctx context.Context, keys ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, key := range keys {
		delete(r.records, key)
	}
	return nil
}

func (r *RecordStore) Close() error { return nil }
