// Package memory implements store.Store in process memory. It is the
// default when no database is configured; events are lost on restart.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/alfredjeanlab/gate/internal/model"
	"github.com/alfredjeanlab/gate/internal/store"
)

// Compile-time check that Store implements store.Store.
var _ store.Store = (*Store)(nil)

// Store keeps events in insertion order.
type Store struct {
	now func() time.Time

	mu     sync.RWMutex
	events []*model.AccessEvent
}

// New returns an empty Store.
func New() *Store {
	return &Store{now: time.Now}
}

func (s *Store) RecordEvent(_ context.Context, e *model.AccessEvent) error {
	e.CreatedAt = s.now().UTC()
	clone := *e
	s.mu.Lock()
	s.events = append(s.events, &clone)
	s.mu.Unlock()
	return nil
}

func (s *Store) ListEvents(_ context.Context, limit int) ([]*model.AccessEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := len(s.events)
	if limit <= 0 || limit > n {
		limit = n
	}
	out := make([]*model.AccessEvent, 0, limit)
	for i := n - 1; i >= n-limit; i-- {
		clone := *s.events[i]
		out = append(out, &clone)
	}
	return out, nil
}

func (s *Store) AllEvents(_ context.Context) ([]*model.AccessEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.AccessEvent, len(s.events))
	for i, e := range s.events {
		clone := *e
		out[i] = &clone
	}
	return out, nil
}

func (s *Store) Close() error { return nil }
