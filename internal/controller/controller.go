// Package controller runs on the gate side: it listens for open commands on
// the bus, releases the lock, and reports back to the backend.
package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/alfredjeanlab/gate/internal/bus"
	"github.com/alfredjeanlab/gate/internal/model"
)

// reportTimeout bounds each report to the backend.
const reportTimeout = 10 * time.Second

// Actuator drives the physical lock.
type Actuator interface {
	// Pulse releases the lock for d, then engages it again.
	Pulse(ctx context.Context, d time.Duration) error
}

// Reporter delivers controller reports to the backend.
// *client.HTTPClient implements it.
type Reporter interface {
	ReportLog(ctx context.Context, report *model.LogReport) error
}

// Controller consumes open commands from one topic.
type Controller struct {
	sub      bus.Subscriber
	topic    string
	actuator Actuator
	reporter Reporter
	pulse    time.Duration
	logger   *slog.Logger
}

// New returns a Controller. A nil logger means slog.Default().
func New(sub bus.Subscriber, topic string, act Actuator, rep Reporter, pulse time.Duration, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		sub:      sub,
		topic:    topic,
		actuator: act,
		reporter: rep,
		pulse:    pulse,
		logger:   logger,
	}
}

// Run subscribes and handles commands one at a time until ctx is done or
// the subscription closes.
func (c *Controller) Run(ctx context.Context) error {
	msgs, cancel, err := c.sub.Subscribe(c.topic)
	if err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}
	defer cancel()

	c.logger.Info("awaiting commands", "topic", c.topic)
	for {
		select {
		case <-ctx.Done():
			return nil
		case data, ok := <-msgs:
			if !ok {
				return nil
			}
			c.handle(ctx, data)
		}
	}
}

// handle processes a single payload. Failures are logged, never returned:
// one bad message must not stop the controller.
func (c *Controller) handle(ctx context.Context, data []byte) {
	var cmd model.Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		c.logger.Warn("skipping malformed command", "error", err, "payload", string(data))
		return
	}
	if cmd.Command != model.CommandOpen {
		c.logger.Info("ignoring command", "command", cmd.Command)
		return
	}

	log := c.logger.With("request_id", cmd.RequestID)
	if len(cmd.Passthrough) > 0 {
		log.Debug("passthrough", "passthrough", string(cmd.Passthrough))
	}

	log.Info("lock released", "pulse", c.pulse)
	if err := c.actuator.Pulse(ctx, c.pulse); err != nil {
		log.Error("actuator failed", "error", err)
		return
	}
	log.Info("lock engaged")

	rctx, cancel := context.WithTimeout(ctx, reportTimeout)
	defer cancel()
	report := &model.LogReport{Event: model.EventGateOpen, RequestID: cmd.RequestID}
	if err := c.reporter.ReportLog(rctx, report); err != nil {
		log.Warn("failed to notify backend", "error", err)
		return
	}
	log.Info("backend notified")
}
