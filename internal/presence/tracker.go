// Package presence keeps an in-memory roster of who has been opening the
// gate recently.
//
// The server records a sighting for every access event that names a
// client (the "who" carried in the open request's passthrough). A
// background sweeper forgets clients that have been quiet for longer than
// the retention window, so the roster stays bounded.
package presence

import (
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Entry is one client's activity as reported by Roster.
type Entry struct {
	Who           string    `json:"who"`
	FirstSeen     time.Time `json:"first_seen"`
	LastSeen      time.Time `json:"last_seen"`
	LastKind      string    `json:"last_kind"`
	LastRequestID string    `json:"last_request_id,omitempty"`
	Count         int64     `json:"count"`
	IdleSecs      float64   `json:"idle_secs"`
}

// Sighting is the part of an access event the tracker needs.
type Sighting struct {
	Who       string
	Kind      string
	RequestID string
}

// SweepConfig configures the background sweeper.
type SweepConfig struct {
	// ForgetAfter is how long a client must be quiet before it is dropped.
	// Default: 24 hours.
	ForgetAfter time.Duration

	// Interval is how often the sweeper runs. Default: 1 minute.
	Interval time.Duration
}

// Tracker maintains the roster. The zero value is not usable; call New.
type Tracker struct {
	mu      sync.RWMutex
	clients map[string]*clientState
	now     func() time.Time

	stop chan struct{}
	done chan struct{}
}

type clientState struct {
	firstSeen     time.Time
	lastSeen      time.Time
	lastKind      string
	lastRequestID string
	count         int64
}

// New creates an empty tracker.
func New() *Tracker {
	return &Tracker{
		clients: make(map[string]*clientState),
		now:     time.Now,
	}
}

// Record notes one sighting. Sightings without a Who are ignored.
func (t *Tracker) Record(s Sighting) {
	if s.Who == "" {
		return
	}

	now := t.now()
	t.mu.Lock()
	defer t.mu.Unlock()

	state, ok := t.clients[s.Who]
	if !ok {
		state = &clientState{firstSeen: now}
		t.clients[s.Who] = state
	}
	state.lastSeen = now
	state.lastKind = s.Kind
	if s.RequestID != "" {
		state.lastRequestID = s.RequestID
	}
	state.count++
}

// Roster returns clients seen within the given window, most recent first.
// A zero window includes every client still tracked.
func (t *Tracker) Roster(within time.Duration) []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()

	now := t.now()
	entries := make([]Entry, 0, len(t.clients))
	for who, state := range t.clients {
		idle := now.Sub(state.lastSeen)
		if within > 0 && idle > within {
			continue
		}
		entries = append(entries, Entry{
			Who:           who,
			FirstSeen:     state.firstSeen,
			LastSeen:      state.lastSeen,
			LastKind:      state.lastKind,
			LastRequestID: state.lastRequestID,
			Count:         state.count,
			IdleSecs:      idle.Seconds(),
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].LastSeen.Equal(entries[j].LastSeen) {
			return entries[i].Who < entries[j].Who
		}
		return entries[i].LastSeen.After(entries[j].LastSeen)
	})
	return entries
}

// StartSweeper launches the background goroutine that forgets quiet
// clients. Call Stop to shut it down.
func (t *Tracker) StartSweeper(cfg SweepConfig) {
	if cfg.ForgetAfter == 0 {
		cfg.ForgetAfter = 24 * time.Hour
	}
	if cfg.Interval == 0 {
		cfg.Interval = time.Minute
	}

	t.stop = make(chan struct{})
	t.done = make(chan struct{})
	go t.sweepLoop(cfg)
	slog.Info("presence: sweeper started", "forget_after", cfg.ForgetAfter, "interval", cfg.Interval)
}

// Stop shuts down the sweeper, if running.
func (t *Tracker) Stop() {
	if t.stop != nil {
		close(t.stop)
		<-t.done
		t.stop = nil
		t.done = nil
	}
}

func (t *Tracker) sweepLoop(cfg SweepConfig) {
	defer close(t.done)

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-t.stop:
			return
		case <-ticker.C:
			t.sweep(cfg.ForgetAfter)
		}
	}
}

// sweep drops clients idle for longer than forgetAfter and returns how
// many were dropped.
func (t *Tracker) sweep(forgetAfter time.Duration) int {
	now := t.now()

	t.mu.Lock()
	var forgotten []string
	for who, state := range t.clients {
		if now.Sub(state.lastSeen) > forgetAfter {
			delete(t.clients, who)
			forgotten = append(forgotten, who)
		}
	}
	t.mu.Unlock()

	for _, who := range forgotten {
		slog.Debug("presence: forgot quiet client", "who", who, "forget_after", forgetAfter)
	}
	return len(forgotten)
}
