// Package logstore holds the user-visible history of gate attempts: an
// append-only, in-memory list of timestamped lines that the screen renders.
//
// Entries are never removed or reordered. Renderers read a copy through
// Snapshot and learn about growth through Subscribe, so the store does not
// depend on any particular UI.
package logstore

import (
	"sync"
	"time"
)

// timestampLayout renders like an ISO-8601 UTC timestamp with millisecond
// precision, with the "T" separator and the "Z" suffix replaced by spaces.
const timestampLayout = "2006-01-02 15:04:05.000"

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock used to timestamp entries. Default: time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Store is an ordered, append-only sequence of formatted log lines.
// It is safe for concurrent use.
type Store struct {
	now func() time.Time

	mu      sync.RWMutex
	entries []string
	subs    map[chan int]struct{}
}

// New returns an empty Store.
func New(opts ...Option) *Store {
	s := &Store{
		now:  time.Now,
		subs: make(map[chan int]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FormatTimestamp renders t the way entries are prefixed, e.g.
// "2024-01-02 03:04:05.678 ". The trailing space stands in for the "Z".
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout) + " "
}

// FormatEntry builds the line stored for message at time t.
func FormatEntry(t time.Time, message string) string {
	return FormatTimestamp(t) + " UTC: " + message
}

// Append timestamps message, adds it to the end of the store and notifies
// subscribers. It returns the stored line.
func (s *Store) Append(message string) string {
	entry := FormatEntry(s.now(), message)

	s.mu.Lock()
	s.entries = append(s.entries, entry)
	n := len(s.entries)
	for ch := range s.subs {
		notify(ch, n)
	}
	s.mu.Unlock()

	return entry
}

// notify delivers the latest length without blocking. A pending, unread
// notification is replaced so slow readers only ever see the newest length.
func notify(ch chan int, n int) {
	for {
		select {
		case ch <- n:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

// Snapshot returns a copy of all entries in insertion order.
func (s *Store) Snapshot() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len returns the number of entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Subscribe returns a channel that receives the store length after each
// Append. Notifications coalesce: a reader that falls behind receives only
// the most recent length. Call the returned func to unsubscribe; the channel
// is closed afterwards.
func (s *Store) Subscribe() (<-chan int, func()) {
	ch := make(chan int, 1)
	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, ch)
			s.mu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}
