package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// DefaultBackendURL is the deployed backend the phone client talks to.
const DefaultBackendURL = "https://backend-ri6qxvjyda-uw.a.run.app"

// Config holds settings for `gate serve` and `gate controller`, read from
// the environment.
type Config struct {
	HTTPAddr    string        // GATE_HTTP_ADDR (default ":8080", or ":$PORT" when PORT is set)
	GRPCAddr    string        // GATE_GRPC_ADDR (optional, empty = no gRPC health endpoint)
	NATSURL     string        // GATE_NATS_URL (command bus over NATS)
	MQTTBroker  string        // GATE_MQTT_BROKER (command bus over MQTT, e.g. tcp://broker.hivemq.com:1883)
	Topic       string        // GATE_TOPIC (default "home/gate")
	DatabaseURL string        // GATE_DATABASE_URL (optional, empty = in-memory event store)
	BackendURL  string        // GATE_BACKEND_URL (default DefaultBackendURL; controller reports here)
	Pulse       time.Duration // GATE_PULSE (default 1s; how long the lock is released)
	ActuatorOn  string        // GATE_ACTUATOR_ON (shell command releasing the lock; empty = log only)
	ActuatorOff string        // GATE_ACTUATOR_OFF (shell command engaging the lock)

	// Event backup settings
	SyncInterval   time.Duration // GATE_SYNC_INTERVAL (default 5m; 0 = disabled)
	SyncS3Bucket   string        // GATE_SYNC_S3_BUCKET (enables S3 when set)
	SyncS3Endpoint string        // GATE_SYNC_S3_ENDPOINT (custom endpoint for MinIO)
	SyncS3Region   string        // GATE_SYNC_S3_REGION (default "us-east-1")
	SyncS3Key      string        // GATE_SYNC_S3_KEY (default "gate/events.jsonl")
	SyncS3Archive  bool          // GATE_SYNC_S3_ARCHIVE (keep one copy per day as well)
	SyncFile       string        // GATE_SYNC_FILE (local JSONL copy when set)
}

func Load() (*Config, error) {
	c := &Config{
		HTTPAddr:       envOrDefault("GATE_HTTP_ADDR", defaultHTTPAddr()),
		GRPCAddr:       os.Getenv("GATE_GRPC_ADDR"),
		NATSURL:        os.Getenv("GATE_NATS_URL"),
		MQTTBroker:     os.Getenv("GATE_MQTT_BROKER"),
		Topic:          envOrDefault("GATE_TOPIC", "home/gate"),
		DatabaseURL:    os.Getenv("GATE_DATABASE_URL"),
		BackendURL:     envOrDefault("GATE_BACKEND_URL", DefaultBackendURL),
		ActuatorOn:     os.Getenv("GATE_ACTUATOR_ON"),
		ActuatorOff:    os.Getenv("GATE_ACTUATOR_OFF"),
		SyncS3Bucket:   os.Getenv("GATE_SYNC_S3_BUCKET"),
		SyncS3Endpoint: os.Getenv("GATE_SYNC_S3_ENDPOINT"),
		SyncS3Region:   envOrDefault("GATE_SYNC_S3_REGION", "us-east-1"),
		SyncS3Key:      envOrDefault("GATE_SYNC_S3_KEY", "gate/events.jsonl"),
		SyncFile:       os.Getenv("GATE_SYNC_FILE"),
	}
	if c.NATSURL != "" && c.MQTTBroker != "" {
		return nil, fmt.Errorf("GATE_NATS_URL and GATE_MQTT_BROKER are mutually exclusive")
	}

	pulse, err := time.ParseDuration(envOrDefault("GATE_PULSE", "1s"))
	if err != nil {
		return nil, fmt.Errorf("GATE_PULSE: %w", err)
	}
	if pulse <= 0 {
		return nil, fmt.Errorf("GATE_PULSE must be positive, got %s", pulse)
	}
	c.Pulse = pulse

	interval, err := time.ParseDuration(envOrDefault("GATE_SYNC_INTERVAL", "5m"))
	if err != nil {
		return nil, fmt.Errorf("GATE_SYNC_INTERVAL: %w", err)
	}
	if interval < 0 {
		return nil, fmt.Errorf("GATE_SYNC_INTERVAL must not be negative, got %s", interval)
	}
	c.SyncInterval = interval

	if v := os.Getenv("GATE_SYNC_S3_ARCHIVE"); v != "" {
		archive, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("GATE_SYNC_S3_ARCHIVE: %w", err)
		}
		c.SyncS3Archive = archive
	}

	return c, nil
}

// SyncEnabled reports whether event backup should run.
func (c *Config) SyncEnabled() bool {
	return c.SyncInterval > 0 && (c.SyncS3Bucket != "" || c.SyncFile != "")
}

// HasActuatorCommands reports whether the lock is driven by shell commands.
func (c *Config) HasActuatorCommands() bool {
	return c.ActuatorOn != "" || c.ActuatorOff != ""
}

// HasBus reports whether a command bus is configured.
func (c *Config) HasBus() bool {
	return c.NATSURL != "" || c.MQTTBroker != ""
}

// defaultHTTPAddr honours PORT as set by Cloud Run.
func defaultHTTPAddr() string {
	if p := os.Getenv("PORT"); p != "" {
		return ":" + p
	}
	return ":8080"
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
