package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/alfredjeanlab/gate/internal/model"
)

const (
	defaultEventsLimit = 50
	maxEventsLimit     = 500

	// maxRequestBody bounds decoded request bodies.
	maxRequestBody = 64 << 10
)

// NewHTTPHandler returns an http.Handler with all routes registered,
// wrapped in request logging and panic recovery.
func (s *GateServer) NewHTTPHandler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/open", s.handleOpen)
	mux.HandleFunc("POST /api/log", s.handleLog)
	mux.HandleFunc("GET /api/events", s.handleListEvents)
	mux.HandleFunc("GET /api/events/stream", s.handleEventStream)
	mux.HandleFunc("GET /api/presence", s.handlePresence)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	return RecoveryMiddleware(LoggingMiddleware(mux))
}

// handleHealth handles GET /api/health.
func (s *GateServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleOpen handles POST /api/open.
func (s *GateServer) handleOpen(w http.ResponseWriter, r *http.Request) {
	var req OpenRequest
	if err := decodeJSON(w, r, &req); err != nil {
		slog.Info("decode open request failed", "error", err)
		writeFailure(w, http.StatusBadRequest, "Invalid request")
		return
	}

	requestID, err := s.Open(r.Context(), &req)
	switch {
	case errors.Is(err, errNotImplemented):
		writeFailure(w, http.StatusNotImplemented, "Action not implemented")
		return
	case err != nil:
		slog.Error("failed to open door", "error", err)
		writeFailure(w, http.StatusInternalServerError, "Failed to open door")
		return
	}

	resp := model.Response{Success: true, Message: "Door unlocked"}
	if !req.ToServer.ShortResponse {
		resp.Data = map[string]string{"request_id": requestID}
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleLog handles POST /api/log.
func (s *GateServer) handleLog(w http.ResponseWriter, r *http.Request) {
	var report model.LogReport
	if err := decodeJSON(w, r, &report); err != nil {
		slog.Info("decode log report failed", "error", err)
		writeFailure(w, http.StatusBadRequest, "Invalid request")
		return
	}

	if err := s.RecordLog(r.Context(), &report); err != nil {
		var ie inputError
		if errors.As(err, &ie) {
			writeFailure(w, http.StatusBadRequest, "Invalid request: "+ie.Error())
			return
		}
		writeFailure(w, http.StatusInternalServerError, "Failed to record log")
		return
	}
	writeJSON(w, http.StatusOK, model.Response{Success: true, Message: "Log recorded"})
}

// handleListEvents handles GET /api/events.
func (s *GateServer) handleListEvents(w http.ResponseWriter, r *http.Request) {
	limit := defaultEventsLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeFailure(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = min(n, maxEventsLimit)
	}

	events, err := s.ListEvents(r.Context(), limit)
	if err != nil {
		slog.Error("failed to list events", "error", err)
		writeFailure(w, http.StatusInternalServerError, "Failed to list events")
		return
	}
	writeJSON(w, http.StatusOK, model.Response{Success: true, Message: "ok", Data: events})
}

// handlePresence handles GET /api/presence?within=<duration>.
func (s *GateServer) handlePresence(w http.ResponseWriter, r *http.Request) {
	var within time.Duration
	if v := r.URL.Query().Get("within"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			writeFailure(w, http.StatusBadRequest, "invalid within")
			return
		}
		within = d
	}
	writeJSON(w, http.StatusOK, model.Response{Success: true, Message: "ok", Data: s.presence.Roster(within)})
}

// decodeJSON decodes a size-limited request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	return json.NewDecoder(r.Body).Decode(v)
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeFailure writes the standard failure envelope.
func writeFailure(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, model.Response{Success: false, Message: message})
}
