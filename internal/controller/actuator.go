package controller

import (
	"context"
	"log/slog"
	"time"
)

// LogActuator stands in for a lock driver: it logs the release, holds for
// the pulse duration, then logs the re-engage.
type LogActuator struct {
	logger *slog.Logger
}

// NewLogActuator returns a LogActuator. A nil logger means slog.Default().
func NewLogActuator(logger *slog.Logger) *LogActuator {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogActuator{logger: logger}
}

// Pulse holds for d or until ctx is done, whichever comes first. The lock
// is always reported engaged afterwards.
func (a *LogActuator) Pulse(ctx context.Context, d time.Duration) error {
	a.logger.Info("actuator on")
	defer a.logger.Info("actuator off")

	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
