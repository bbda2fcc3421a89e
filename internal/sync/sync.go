// Package sync backs up the access-event log as JSONL.
package sync

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/alfredjeanlab/gate/internal/store"
)

// Destination is the interface for a backup target.
type Destination interface {
	// Write replaces the destination's copy with the JSONL payload.
	Write(ctx context.Context, data []byte) error

	// Name identifies the destination in logs.
	Name() string
}

// Scheduler periodically exports the access-event log to one or more
// destinations.
type Scheduler struct {
	store        store.Store
	destinations []Destination
	interval     time.Duration
	logger       *slog.Logger

	mu      sync.Mutex
	written map[string][32]byte // destination name -> digest of events last written

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewScheduler creates a scheduler that exports from the store to the given
// destinations at the specified interval.
func NewScheduler(s store.Store, destinations []Destination, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		store:        s,
		destinations: destinations,
		interval:     interval,
		logger:       logger,
		written:      make(map[string][32]byte),
	}
}

// Start begins periodic export. It runs once immediately, then on each tick.
func (s *Scheduler) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.run(ctx)
	}()
}

// Stop cancels the scheduler and waits for the current sync (if any) to finish.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

func (s *Scheduler) run(ctx context.Context) {
	_ = s.SyncOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			_ = s.SyncOnce(ctx)
		}
	}
}

// SyncOnce exports and writes to every destination whose copy is out of
// date. A failing destination does not stop the others; the returned error
// joins all failures.
func (s *Scheduler) SyncOnce(ctx context.Context) error {
	var buf bytes.Buffer
	n, err := ExportJSONL(ctx, s.store, &buf)
	if err != nil {
		s.logger.Error("sync export failed", "err", err)
		return fmt.Errorf("export: %w", err)
	}
	data := buf.Bytes()
	digest := eventsDigest(data)

	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	wrote := 0
	for _, dest := range s.destinations {
		if prev, ok := s.written[dest.Name()]; ok && prev == digest {
			continue
		}
		if err := dest.Write(ctx, data); err != nil {
			s.logger.Error("sync destination write failed", "destination", dest.Name(), "err", err)
			errs = append(errs, fmt.Errorf("%s: %w", dest.Name(), err))
			continue
		}
		s.written[dest.Name()] = digest
		wrote++
	}

	if wrote > 0 {
		s.logger.Info("sync completed", "destinations", wrote, "events", n, "bytes", len(data))
	} else if len(errs) == 0 {
		s.logger.Debug("sync skipped, no new events", "events", n)
	}
	return errors.Join(errs...)
}

// eventsDigest hashes the export without its header line, whose timestamp
// changes on every run.
func eventsDigest(data []byte) [32]byte {
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		data = data[i+1:]
	}
	return sha256.Sum256(data)
}
