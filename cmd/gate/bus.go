package main

import (
	"fmt"
	"log/slog"

	"github.com/alfredjeanlab/gate/internal/bus"
	"github.com/alfredjeanlab/gate/internal/config"
)

// newPublisher picks the command bus for the backend. Without one, open
// requests are answered with "Failed to open door".
func newPublisher(cfg *config.Config, logger *slog.Logger) (bus.Publisher, error) {
	switch {
	case cfg.NATSURL != "":
		pub, err := bus.NewNATSPublisher(cfg.NATSURL)
		if err != nil {
			return nil, err
		}
		logger.Info("command bus enabled", "transport", "nats", "url", cfg.NATSURL, "topic", cfg.Topic)
		return pub, nil
	case cfg.MQTTBroker != "":
		pub, err := bus.NewMQTTPublisher(cfg.MQTTBroker, bus.MQTTClientID("backend"))
		if err != nil {
			return nil, err
		}
		logger.Info("command bus enabled", "transport", "mqtt", "broker", cfg.MQTTBroker, "topic", cfg.Topic)
		return pub, nil
	default:
		logger.Warn("command bus disabled (GATE_NATS_URL and GATE_MQTT_BROKER not set)")
		return &bus.NoopPublisher{}, nil
	}
}

func newSubscriber(cfg *config.Config) (bus.Subscriber, error) {
	switch {
	case cfg.NATSURL != "":
		return bus.NewNATSSubscriber(cfg.NATSURL)
	case cfg.MQTTBroker != "":
		return bus.NewMQTTSubscriber(cfg.MQTTBroker, bus.MQTTClientID("controller"))
	default:
		return nil, fmt.Errorf("no command bus: set GATE_NATS_URL or GATE_MQTT_BROKER")
	}
}
