package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

const (
	// mqttQoS is "at least once": a duplicate pulse is harmless, a lost
	// command leaves someone outside.
	mqttQoS = 1

	mqttTimeout = 5 * time.Second
)

// MQTTClientID returns a unique client ID for role ("backend", "controller").
// Brokers disconnect the older session when two clients share an ID.
func MQTTClientID(role string) string {
	return "gate-" + role + "-" + uuid.NewString()
}

func newMQTTOptions(broker, clientID string) *mqtt.ClientOptions {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(clientID)
	opts.SetWriteTimeout(mqttTimeout)
	opts.SetConnectTimeout(mqttTimeout)
	opts.SetAutoReconnect(true)
	return opts
}

func connectMQTT(opts *mqtt.ClientOptions, broker string) (mqtt.Client, error) {
	c := mqtt.NewClient(opts)
	tok := c.Connect()
	if !tok.WaitTimeout(mqttTimeout) {
		return nil, fmt.Errorf("connecting to MQTT broker %s: timed out", broker)
	}
	if err := tok.Error(); err != nil {
		return nil, fmt.Errorf("connecting to MQTT broker %s: %w", broker, err)
	}
	return c, nil
}

// waitToken waits for tok, bounded by ctx.
func waitToken(ctx context.Context, tok mqtt.Token) error {
	select {
	case <-tok.Done():
		return tok.Error()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// MQTTPublisher publishes JSON-encoded commands to an MQTT broker.
type MQTTPublisher struct {
	client mqtt.Client
}

func NewMQTTPublisher(broker, clientID string) (*MQTTPublisher, error) {
	c, err := connectMQTT(newMQTTOptions(broker, clientID), broker)
	if err != nil {
		return nil, err
	}
	return &MQTTPublisher{client: c}, nil
}

func (p *MQTTPublisher) Publish(ctx context.Context, topic string, msg any) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshaling message: %w", err)
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, mqttTimeout)
		defer cancel()
	}
	if err := waitToken(ctx, p.client.Publish(topic, mqttQoS, false, data)); err != nil {
		return fmt.Errorf("publishing to %s: %w", topic, err)
	}
	return nil
}

func (p *MQTTPublisher) Close() error {
	p.client.Disconnect(250)
	return nil
}

// MQTTSubscriber subscribes to commands on an MQTT broker. Subscriptions
// are re-established whenever the client reconnects.
type MQTTSubscriber struct {
	client mqtt.Client

	mu       sync.Mutex
	handlers map[string]mqtt.MessageHandler
}

func NewMQTTSubscriber(broker, clientID string) (*MQTTSubscriber, error) {
	s := &MQTTSubscriber{handlers: make(map[string]mqtt.MessageHandler)}
	opts := newMQTTOptions(broker, clientID)
	opts.SetOnConnectHandler(s.resubscribe)
	c, err := connectMQTT(opts, broker)
	if err != nil {
		return nil, err
	}
	s.client = c
	return s, nil
}

func (s *MQTTSubscriber) resubscribe(c mqtt.Client) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for topic, h := range s.handlers {
		c.Subscribe(topic, mqttQoS, h)
	}
}

// deliver hands payload to ch without blocking the paho callback. A full
// channel drops the message and reports false.
func deliver(ch chan<- []byte, topic string, payload []byte) bool {
	select {
	case ch <- payload:
		return true
	default:
		slog.Warn("mqtt subscriber full, message dropped", "topic", topic, "bytes", len(payload))
		return false
	}
}

// Subscribe returns a channel of raw payloads for topic (MQTT wildcards
// allowed). Call the returned cancel function to unsubscribe and close the
// channel.
func (s *MQTTSubscriber) Subscribe(topic string) (<-chan []byte, func(), error) {
	ch := make(chan []byte, 64)

	var (
		mu     sync.Mutex
		closed bool
		once   sync.Once
	)
	handler := func(_ mqtt.Client, msg mqtt.Message) {
		mu.Lock()
		defer mu.Unlock()
		if closed {
			return
		}
		deliver(ch, msg.Topic(), msg.Payload())
	}

	ctx, cancelWait := context.WithTimeout(context.Background(), mqttTimeout)
	defer cancelWait()
	if err := waitToken(ctx, s.client.Subscribe(topic, mqttQoS, handler)); err != nil {
		close(ch)
		return nil, nil, fmt.Errorf("subscribing to %s: %w", topic, err)
	}
	s.mu.Lock()
	s.handlers[topic] = handler
	s.mu.Unlock()

	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.handlers, topic)
			s.mu.Unlock()
			s.client.Unsubscribe(topic).WaitTimeout(mqttTimeout)
			mu.Lock()
			closed = true
			close(ch)
			mu.Unlock()
		})
	}
	return ch, cancel, nil
}

func (s *MQTTSubscriber) Close() error {
	s.client.Disconnect(250)
	return nil
}
