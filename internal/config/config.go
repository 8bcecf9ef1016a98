// Package config loads service settings from environment variables,
// applying defaults where unset and failing fast on invalid values.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	// Flood-monitoring API.
	APIBaseURL string        `envconfig:"API_BASE_URL"`
	APITimeout time.Duration `envconfig:"API_TIMEOUT" default:"30s"`

	// Refresh loop.
	PollInterval  time.Duration `envconfig:"POLL_INTERVAL" default:"15m"`
	RiskThreshold float64       `envconfig:"RISK_THRESHOLD" default:"0.8"`

	HTTPAddr        string        `envconfig:"HTTP_ADDR" default:":8080"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat       string        `envconfig:"LOG_FORMAT" default:"json"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`

	// Alert sink. Kafka is off by default so the service runs standalone
	// against the public API with log-only alerts.
	KafkaEnabled    bool     `envconfig:"KAFKA_ENABLED" default:"false"`
	KafkaBrokers    []string `envconfig:"KAFKA_BROKERS" default:"localhost:9092"`
	KafkaAlertTopic string   `envconfig:"KAFKA_ALERT_TOPIC" default:"flood-alerts"`
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if cfg.APITimeout <= 0 {
		return nil, errors.New("API_TIMEOUT must be positive")
	}
	if cfg.PollInterval <= 0 {
		return nil, errors.New("POLL_INTERVAL must be positive")
	}
	if cfg.RiskThreshold < 0 {
		return nil, errors.New("RISK_THRESHOLD must not be negative")
	}
	if cfg.ShutdownTimeout <= 0 {
		return nil, errors.New("SHUTDOWN_TIMEOUT must be positive")
	}
	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
		}
		if cfg.KafkaAlertTopic == "" {
			return nil, errors.New("KAFKA_ENABLED is true but KAFKA_ALERT_TOPIC is empty")
		}
	}

	return &cfg, nil
}
