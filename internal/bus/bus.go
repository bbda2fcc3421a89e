// Package bus carries open commands from the backend to gate controllers.
//
// Two transports are provided: NATS, and MQTT for controllers that speak
// the broker protocol natively. Payloads are JSON on both.
package bus

import "context"

// Publisher emits JSON-encoded messages on a topic.
type Publisher interface {
	Publish(ctx context.Context, topic string, msg any) error
	Close() error
}

// Subscriber delivers raw payloads for a topic. The returned cancel func
// unsubscribes and closes the channel.
type Subscriber interface {
	Subscribe(topic string) (<-chan []byte, func(), error)
	Close() error
}
