package server

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/alfredjeanlab/gate/internal/model"
)

const (
	// streamHistorySize is how many recent events are kept for
	// Last-Event-ID replay.
	streamHistorySize = 256

	// streamClientBuffer is each subscriber's queue; a full queue drops.
	streamClientBuffer = 64

	streamKeepalive = 15 * time.Second
)

// streamEvent is one access event as framed for stream clients.
type streamEvent struct {
	Seq       uint64
	Kind      string
	RequestID string
	Data      []byte // JSON-encoded model.AccessEvent
}

// streamFilter selects events for one subscriber. Empty fields match
// everything.
type streamFilter struct {
	Kinds     []string
	RequestID string
}

func (f streamFilter) matches(e *streamEvent) bool {
	if len(f.Kinds) > 0 && !slices.Contains(f.Kinds, e.Kind) {
		return false
	}
	return f.RequestID == "" || f.RequestID == e.RequestID
}

// parseStreamFilter reads ?kinds=a,b and ?request_id= from the query.
func parseStreamFilter(r *http.Request) streamFilter {
	q := r.URL.Query()
	var f streamFilter
	for _, k := range strings.Split(q.Get("kinds"), ",") {
		if k = strings.TrimSpace(k); k != "" {
			f.Kinds = append(f.Kinds, k)
		}
	}
	f.RequestID = strings.TrimSpace(q.Get("request_id"))
	return f
}

type streamSub struct {
	filter streamFilter
	ch     chan *streamEvent
}

// streamHub fans access events out to stream subscribers and keeps a
// bounded history for reconnecting clients.
type streamHub struct {
	mu      sync.Mutex
	seq     uint64
	subs    map[*streamSub]struct{}
	history []*streamEvent
}

func newStreamHub() *streamHub {
	return &streamHub{subs: make(map[*streamSub]struct{})}
}

// publish assigns the next sequence number, remembers the event and hands
// it to every matching subscriber without blocking.
func (h *streamHub) publish(e *model.AccessEvent, data []byte) *streamEvent {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.seq++
	evt := &streamEvent{Seq: h.seq, Kind: e.Kind, RequestID: e.RequestID, Data: data}

	h.history = append(h.history, evt)
	if len(h.history) > streamHistorySize {
		h.history = slices.Delete(h.history, 0, len(h.history)-streamHistorySize)
	}

	for sub := range h.subs {
		if !sub.filter.matches(evt) {
			continue
		}
		select {
		case sub.ch <- evt:
		default:
			slog.Debug("stream subscriber lagging, event dropped", "seq", evt.Seq)
		}
	}
	return evt
}

// subscribe registers a subscriber and returns it together with the
// buffered events after lastSeq that match its filter. Both happen under
// one lock so nothing is missed or duplicated in between.
func (h *streamHub) subscribe(f streamFilter, lastSeq uint64) (*streamSub, []*streamEvent) {
	sub := &streamSub{filter: f, ch: make(chan *streamEvent, streamClientBuffer)}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.subs[sub] = struct{}{}

	var replay []*streamEvent
	if lastSeq > 0 {
		for _, evt := range h.history {
			if evt.Seq > lastSeq && f.matches(evt) {
				replay = append(replay, evt)
			}
		}
	}
	return sub, replay
}

func (h *streamHub) unsubscribe(sub *streamSub) {
	h.mu.Lock()
	delete(h.subs, sub)
	h.mu.Unlock()
}

// handleEventStream handles GET /api/events/stream as server-sent events.
func (s *GateServer) handleEventStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeFailure(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	var lastSeq uint64
	if v := r.Header.Get("Last-Event-ID"); v != "" {
		lastSeq, _ = strconv.ParseUint(v, 10, 64)
	}
	sub, replay := s.stream.subscribe(parseStreamFilter(r), lastSeq)
	defer s.stream.unsubscribe(sub)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	for _, evt := range replay {
		writeStreamEvent(w, evt)
	}
	flusher.Flush()

	keepalive := time.NewTicker(streamKeepalive)
	defer keepalive.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case evt := <-sub.ch:
			writeStreamEvent(w, evt)
			flusher.Flush()
		case <-keepalive.C:
			fmt.Fprint(w, ":keepalive\n\n")
			flusher.Flush()
		}
	}
}

func writeStreamEvent(w http.ResponseWriter, evt *streamEvent) {
	fmt.Fprintf(w, "id:%d\nevent:%s\ndata:%s\n\n", evt.Seq, evt.Kind, evt.Data)
}

// broadcastEvent fans a recorded event out to stream subscribers.
func (s *GateServer) broadcastEvent(e *model.AccessEvent) {
	data, err := json.Marshal(e)
	if err != nil {
		slog.Warn("failed to marshal event for stream", "kind", e.Kind, "error", err)
		return
	}
	s.stream.publish(e, data)
}
