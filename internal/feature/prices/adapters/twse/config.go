// Package twse provides a client for the Taiwan Stock Exchange STOCK_DAY endpoint.
package twse

import (
	"os"
	"time"
)

const (
	defaultBaseURL     = "https://www.twse.com.tw"
	defaultSource      = "TWSE"
	defaultTimeout     = 10 * time.Second
	defaultMinInterval = 2 * time.Second
)

// Config holds configuration for the TWSE client.
type Config struct {
	BaseURL     string        // Base URL for the API (e.g., "https://www.twse.com.tw")
	Source      string        // Source label written with every record
	Timeout     time.Duration // HTTP request timeout
	MinInterval time.Duration // Minimum spacing between requests; TWSE blocks aggressive clients
}

// LoadConfig loads TWSE configuration from environment variables.
func LoadConfig() Config {
	return Config{
		BaseURL:     envOr("TWSE_BASE_URL", defaultBaseURL),
		Source:      envOr("TWSE_SOURCE", defaultSource),
		Timeout:     envDuration("TWSE_TIMEOUT", defaultTimeout),
		MinInterval: envDuration("TWSE_MIN_INTERVAL", defaultMinInterval),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d < 0 {
		return fallback
	}
	return d
}
