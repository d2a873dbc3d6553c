// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	// Profiling settings.
	MaxDepth       int     // Nesting ceiling for record traversal.
	ExampleCap     int     // First-seen example values kept per field.
	CardinalityCap int     // Distinct values tracked per field histogram.
	TimestampPath  string  // Dotted path of the epoch-millisecond timestamp field.
	ThresholdPct   float64 // Presence percentage gating model suggestions.
	Workers        int     // Shard count for parallel profiling.

	// Dictionary settings.
	DictionaryPath string // JSON field dictionary; empty disables categorization.

	// Session store settings.
	StorePath string // SQLite database for saved profiling sessions.

	// Postgres settings.
	DatabaseURL string // Target database for derived-schema DDL.

	// OTEL settings.
	OTELEndpoint string
	ServiceName  string

	// Operational settings.
	LogLevel    string
	ReadTimeout time.Duration // Per-file read deadline for stream input.
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (Config, error) {
	cfg := Config{
		MaxDepth:       envInt("FIELDSCOPE_MAX_DEPTH", 64),
		ExampleCap:     envInt("FIELDSCOPE_EXAMPLE_CAP", 5),
		CardinalityCap: envInt("FIELDSCOPE_CARDINALITY_CAP", 50),
		TimestampPath:  envStr("FIELDSCOPE_TIMESTAMP_PATH", "pt"),
		ThresholdPct:   envFloat("FIELDSCOPE_SUGGESTION_THRESHOLD_PCT", 50),
		Workers:        envInt("FIELDSCOPE_WORKERS", 4),
		DictionaryPath: envStr("FIELDSCOPE_DICTIONARY", ""),
		StorePath:      envStr("FIELDSCOPE_STORE", "fieldscope.db"),
		DatabaseURL:    envStr("DATABASE_URL", ""),
		OTELEndpoint:   envStr("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		ServiceName:    envStr("OTEL_SERVICE_NAME", "fieldscope"),
		LogLevel:       envStr("FIELDSCOPE_LOG_LEVEL", "info"),
		ReadTimeout:    envDuration("FIELDSCOPE_READ_TIMEOUT", 5*time.Minute),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that required configuration is present and sane.
func (c Config) Validate() error {
	if c.MaxDepth <= 0 {
		return fmt.Errorf("config: FIELDSCOPE_MAX_DEPTH must be positive")
	}
	if c.ExampleCap < 0 {
		return fmt.Errorf("config: FIELDSCOPE_EXAMPLE_CAP must not be negative")
	}
	if c.CardinalityCap <= 0 {
		return fmt.Errorf("config: FIELDSCOPE_CARDINALITY_CAP must be positive")
	}
	if c.ThresholdPct < 0 || c.ThresholdPct > 100 {
		return fmt.Errorf("config: FIELDSCOPE_SUGGESTION_THRESHOLD_PCT must be within [0, 100]")
	}
	if c.Workers <= 0 {
		return fmt.Errorf("config: FIELDSCOPE_WORKERS must be positive")
	}
	return nil
}

func envStr(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

func envFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func envDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
