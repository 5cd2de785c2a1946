package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/cognicore/deduce/pkg/deduce/internalerr"
	"github.com/cognicore/deduce/pkg/deduce/store"
)

// Store is an in-memory implementation of store.Store for tests.
type Store struct {
	mu      sync.RWMutex
	records map[string]store.Record
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		records: make(map[string]store.Record),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// SaveRecord inserts or replaces a record, keyed by ID.
func (s *Store) SaveRecord(ctx context.Context, r store.Record) error {
	if r.ID == "" {
		return fmt.Errorf("%w: record without ID", internalerr.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[r.ID] = copyRecord(r)
	return nil
}

// GetRecord returns the record with the given ID.
func (s *Store) GetRecord(ctx context.Context, id string) (store.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.records[id]
	if !ok {
		return store.Record{}, fmt.Errorf("record %s: %w", id, internalerr.ErrNotFound)
	}
	return copyRecord(r), nil
}

// ListRecords returns records newest first.
func (s *Store) ListRecords(ctx context.Context, system string, limit int) ([]store.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]store.Record, 0, len(s.records))
	for _, r := range s.records {
		if system != "" && r.System != system {
			continue
		}
		out = append(out, copyRecord(r))
	}

	// ULIDs sort by creation time
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func copyRecord(r store.Record) store.Record {
	r.Rules = append([]string{}, r.Rules...)
	return r
}
