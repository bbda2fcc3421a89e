package store

import (
	"context"

	"github.com/alfredjeanlab/gate/internal/model"
)

// Store defines the persistence interface for access events. Events are
// append-only: there is no update or delete.
type Store interface {
	// RecordEvent persists e. e.ID must be set; CreatedAt is filled in by
	// the store.
	RecordEvent(ctx context.Context, e *model.AccessEvent) error

	// ListEvents returns up to limit events, newest first.
	ListEvents(ctx context.Context, limit int) ([]*model.AccessEvent, error)

	// AllEvents returns every event, oldest first.
	AllEvents(ctx context.Context) ([]*model.AccessEvent, error)

	// Lifecycle
	Close() error
}
