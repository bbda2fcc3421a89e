package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/alfredjeanlab/gate/internal/store"
)

// exportVersion is bumped when the record layout changes.
const exportVersion = "1"

// header is the first JSONL record written by ExportJSONL.
type header struct {
	Version    string    `json:"version"`
	Type       string    `json:"type"`
	Timestamp  time.Time `json:"timestamp"`
	EventCount int       `json:"event_count"`
}

// record wraps a single JSONL line with a type discriminator.
type record struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// ExportJSONL writes every access event, oldest first, as JSONL to w and
// returns the number of events written.
func ExportJSONL(ctx context.Context, s store.Store, w io.Writer) (int, error) {
	events, err := s.AllEvents(ctx)
	if err != nil {
		return 0, fmt.Errorf("list events: %w", err)
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(header{
		Version:    exportVersion,
		Type:       "header",
		Timestamp:  time.Now().UTC(),
		EventCount: len(events),
	}); err != nil {
		return 0, fmt.Errorf("encode header: %w", err)
	}

	for _, e := range events {
		if err := enc.Encode(record{Type: "event", Data: e}); err != nil {
			return 0, fmt.Errorf("encode event %s: %w", e.ID, err)
		}
	}

	return len(events), nil
}
