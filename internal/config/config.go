package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds process settings read from the environment.
type Config struct {
	RunLocal       bool
	HTTPAddr       string
	LogLevel       string
	LogDevelopment bool

	IdempotencyTable string
	OrdersTable      string
	QueueURL         string
	MetricsNamespace string
	TTLWindow        time.Duration

	CatalogLatency time.Duration
	SearchLatency  time.Duration

	ExternalURL     string
	ExternalTimeout time.Duration
}

// RecordingEnabled reports whether finalized orders should be written to
// DynamoDB.
func (c Config) RecordingEnabled() bool {
	return c.OrdersTable != "" && c.IdempotencyTable != ""
}

// Load reads an optional .env file (existing variables win) and then the
// environment.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	cfg := Config{
		HTTPAddr:         getenv("HTTP_ADDR", ":8080"),
		LogLevel:         getenv("LOG_LEVEL", "info"),
		IdempotencyTable: os.Getenv("IDEMPOTENCY_TABLE"),
		OrdersTable:      os.Getenv("ORDERS_TABLE"),
		QueueURL:         os.Getenv("ORDERS_QUEUE_URL"),
		MetricsNamespace: os.Getenv("METRICS_NAMESPACE"),
		ExternalURL:      os.Getenv("EXTERNAL_URL"),
	}

	var err error
	if cfg.RunLocal, err = boolEnv("RUN_LOCAL", false); err != nil {
		return Config{}, err
	}
	if cfg.LogDevelopment, err = boolEnv("LOG_DEVELOPMENT", false); err != nil {
		return Config{}, err
	}
	if cfg.TTLWindow, err = durationEnv("IDEMPOTENCY_TTL", 48*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.CatalogLatency, err = durationEnv("CATALOG_LATENCY", 0); err != nil {
		return Config{}, err
	}
	if cfg.SearchLatency, err = durationEnv("SEARCH_LATENCY", 0); err != nil {
		return Config{}, err
	}
	if cfg.ExternalTimeout, err = durationEnv("EXTERNAL_TIMEOUT", 5*time.Second); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func boolEnv(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("parse %s=%q: %w", key, v, err)
	}
	return b, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s=%q: %w", key, v, err)
	}
	return d, nil
}
