package model

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event kinds recorded by the backend.
const (
	EventOpenRequested = "open_requested"
	EventGateOpen      = "gate_open"
)

// AccessEvent is one append-only audit record: an open request relayed to
// the gate, or a report from the gate controller.
type AccessEvent struct {
	ID        string          `json:"id"`
	Kind      string          `json:"kind"`
	RequestID string          `json:"request_id,omitempty"`
	Who       string          `json:"who,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// maxEventKindLen mirrors the column width of access_events.kind.
const maxEventKindLen = 64

// ValidateEventKind rejects kinds that cannot be stored.
func ValidateEventKind(kind string) error {
	if kind == "" {
		return fmt.Errorf("event is required")
	}
	if len(kind) > maxEventKindLen {
		return fmt.Errorf("event must be at most %d characters", maxEventKindLen)
	}
	return nil
}
