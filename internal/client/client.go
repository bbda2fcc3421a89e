// Package client talks to the gate backend's management routes: the
// controller reports through it, and the CLI reads health and events.
package client

import (
	"context"
	"time"

	"github.com/alfredjeanlab/gate/internal/model"
	"github.com/alfredjeanlab/gate/internal/presence"
)

// BackendClient is the subset of the backend API used by the controller and
// the CLI. It is implemented by HTTPClient.
type BackendClient interface {
	ReportLog(ctx context.Context, report *model.LogReport) error
	ListEvents(ctx context.Context, limit int) ([]*model.AccessEvent, error)
	Presence(ctx context.Context, within time.Duration) ([]presence.Entry, error)
	Health(ctx context.Context) (string, error)
	Close() error
}

// Compile-time check that HTTPClient implements BackendClient.
var _ BackendClient = (*HTTPClient)(nil)
