package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// DefaultFDSNBaseURL is the GeoNet FDSN event query endpoint.
const DefaultFDSNBaseURL = "https://service.geonet.org.nz/fdsnws/event/1/query"

// Config holds all service settings, populated from environment variables.
type Config struct {
	FDSNBaseURL   string
	FDSNTimeout   time.Duration // zero leaves the transport default in place
	FDSNDepthUnit string        // "m" or "km"

	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Kafka publication of fetched catalogs.
	KafkaEnabled   bool
	KafkaBrokers   []string
	KafkaSinkTopic string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	fdsnTimeout, err := parseFDSNTimeout()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		FDSNBaseURL:     sharedcfg.EnvOrDefault("FDSN_BASE_URL", DefaultFDSNBaseURL),
		FDSNTimeout:     fdsnTimeout,
		FDSNDepthUnit:   sharedcfg.EnvOrDefault("FDSN_DEPTH_UNIT", "m"),
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		KafkaEnabled:   os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:   sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaSinkTopic: sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "earthquake-catalog"),
	}

	if err := validateBaseURL(cfg.FDSNBaseURL); err != nil {
		return nil, err
	}
	if cfg.FDSNDepthUnit != "m" && cfg.FDSNDepthUnit != "km" {
		return nil, errors.New("FDSN_DEPTH_UNIT must be m or km")
	}
	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_BROKERS is required when KAFKA_ENABLED is true")
		}
		if cfg.KafkaSinkTopic == "" {
			return nil, errors.New("KAFKA_SINK_TOPIC is required when KAFKA_ENABLED is true")
		}
	}

	return cfg, nil
}

func parseFDSNTimeout() (time.Duration, error) {
	s := os.Getenv("FDSN_TIMEOUT")
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, errors.New("invalid FDSN_TIMEOUT")
	}
	return d, nil
}

func validateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid FDSN_BASE_URL: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid FDSN_BASE_URL: %q is not an http(s) url", raw)
	}
	return nil
}
