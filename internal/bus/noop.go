package bus

import (
	"context"
	"errors"
)

// ErrNoBus is returned by NoopPublisher: without a bus the gate cannot be
// reached, so an open must fail rather than silently succeed.
var ErrNoBus = errors.New("no command bus configured")

// NoopPublisher is used when neither NATS nor MQTT is configured.
type NoopPublisher struct{}

func (n *NoopPublisher) Publish(ctx context.Context, topic string, msg any) error {
	return ErrNoBus
}

func (n *NoopPublisher) Close() error {
	return nil
}
