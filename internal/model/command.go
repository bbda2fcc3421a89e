package model

import "encoding/json"

// CommandOpen is the only command a gate controller acts on.
const CommandOpen = "open"

// Command is published on the bus for the gate controller.
type Command struct {
	Command     string          `json:"command"`
	RequestID   string          `json:"request_id,omitempty"`
	Passthrough json.RawMessage `json:"passthrough,omitempty"`
}

// LogReport is what the controller POSTs back to /api/log.
type LogReport struct {
	Event     string `json:"event"`
	RequestID string `json:"request_id,omitempty"`
}
