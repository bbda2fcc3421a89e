// Package server implements the backend relay: it accepts open requests
// from clients, forwards them to the gate over the command bus, and keeps
// an audit trail of access events.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/alfredjeanlab/gate/internal/bus"
	"github.com/alfredjeanlab/gate/internal/idgen"
	"github.com/alfredjeanlab/gate/internal/model"
	"github.com/alfredjeanlab/gate/internal/presence"
	"github.com/alfredjeanlab/gate/internal/store"
)

// GateServer holds the dependencies shared by the HTTP and gRPC surfaces.
type GateServer struct {
	store     store.Store
	publisher bus.Publisher
	topic     string
	stream    *streamHub
	presence  *presence.Tracker
}

// NewGateServer returns a GateServer that records into s and publishes open
// commands to topic via p.
func NewGateServer(s store.Store, p bus.Publisher, topic string) *GateServer {
	return &GateServer{
		store:     s,
		publisher: p,
		topic:     topic,
		stream:    newStreamHub(),
		presence:  presence.New(),
	}
}

// Presence returns the roster of clients seen by this server.
func (s *GateServer) Presence() *presence.Tracker {
	return s.presence
}

// OpenRequest is the body accepted by POST /api/open.
type OpenRequest struct {
	Action   string `json:"action"`
	ToServer struct {
		ShortResponse bool `json:"shortResponse"`
	} `json:"toServer"`
	Passthrough json.RawMessage `json:"passthrough"`
}

// inputError indicates invalid user input.
// Transport layers map this to 400.
type inputError string

func (e inputError) Error() string { return string(e) }

// errNotImplemented is returned for actions other than "open".
var errNotImplemented = errors.New("action not implemented")

// Open relays req to the gate and returns the request ID that the
// controller will echo back in its gate_open report.
func (s *GateServer) Open(ctx context.Context, req *OpenRequest) (string, error) {
	if req.Action != model.CommandOpen {
		slog.Info("invalid action", "action", req.Action)
		return "", errNotImplemented
	}

	requestID, err := idgen.NewOpenID()
	if err != nil {
		return "", fmt.Errorf("generate request id: %w", err)
	}

	cmd := model.Command{
		Command:     model.CommandOpen,
		RequestID:   requestID,
		Passthrough: req.Passthrough,
	}
	if err := s.publisher.Publish(ctx, s.topic, cmd); err != nil {
		return "", fmt.Errorf("publish open command: %w", err)
	}

	slog.Info("door unlocked", "request_id", requestID, "topic", s.topic)
	s.recordEvent(ctx, model.EventOpenRequested, requestID, passthroughWho(req.Passthrough), req.Passthrough)
	return requestID, nil
}

// RecordLog stores a report sent by the gate controller.
func (s *GateServer) RecordLog(ctx context.Context, report *model.LogReport) error {
	if err := model.ValidateEventKind(report.Event); err != nil {
		return inputError(err.Error())
	}
	slog.Info("event logged", "event", report.Event, "request_id", report.RequestID)
	s.recordEvent(ctx, report.Event, report.RequestID, "", nil)
	return nil
}

// ListEvents returns up to limit recent access events, newest first.
func (s *GateServer) ListEvents(ctx context.Context, limit int) ([]*model.AccessEvent, error) {
	events, err := s.store.ListEvents(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	if events == nil {
		events = []*model.AccessEvent{}
	}
	return events, nil
}

// recordEvent persists an access event and fans it out to stream
// subscribers. It is best-effort: failures are logged but never fail the
// request that caused them.
func (s *GateServer) recordEvent(ctx context.Context, kind, requestID, who string, payload json.RawMessage) {
	id, err := idgen.NewEventID()
	if err != nil {
		slog.Warn("failed to generate event id", "kind", kind, "error", err)
		return
	}
	e := &model.AccessEvent{
		ID:        id,
		Kind:      kind,
		RequestID: requestID,
		Who:       who,
		Payload:   payload,
	}
	if err := s.store.RecordEvent(ctx, e); err != nil {
		slog.Warn("failed to record event", "kind", kind, "request_id", requestID, "error", err)
		return
	}
	s.presence.Record(presence.Sighting{Who: who, Kind: kind, RequestID: requestID})
	s.broadcastEvent(e)
}

// passthroughWho extracts passthrough.who when it is a string.
func passthroughWho(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var p struct {
		Who string `json:"who"`
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return ""
	}
	return p.Who
}
