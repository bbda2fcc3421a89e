package gate

import (
	"context"
	"log/slog"
)

// Requester performs a single open attempt. *Client implements it.
type Requester interface {
	Open(ctx context.Context) Outcome
}

// Appender records a user-visible line. *logstore.Store implements it.
type Appender interface {
	Append(message string) string
}

// Opener ties a Requester to the visible log: each trigger produces exactly
// one log entry once its attempt settles.
type Opener struct {
	requester Requester
	log       Appender
	logger    *slog.Logger
}

// NewOpener returns an Opener that reports outcomes of r into log.
func NewOpener(r Requester, log Appender) *Opener {
	return &Opener{requester: r, log: log, logger: slog.Default()}
}

// WithLogger sets the diagnostic logger and returns o.
func (o *Opener) WithLogger(l *slog.Logger) *Opener {
	o.logger = l
	return o
}

// Trigger starts one attempt in the background and returns immediately.
// The returned channel yields the Outcome after its log entry is appended,
// then closes. Triggers may overlap; each runs independently.
func (o *Opener) Trigger(ctx context.Context) <-chan Outcome {
	done := make(chan Outcome, 1)
	go func() {
		defer close(done)
		out := o.requester.Open(ctx)
		entry := o.log.Append(out.Message())
		o.logger.Debug("open attempt settled", "kind", out.Kind.String(), "status", out.Status, "entry", entry)
		done <- out
	}()
	return done
}

// OpenSync runs one attempt and waits for it to settle.
func (o *Opener) OpenSync(ctx context.Context) Outcome {
	return <-o.Trigger(ctx)
}
