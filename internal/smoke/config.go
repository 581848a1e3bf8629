// Package smoke runs scripted end-to-end checks against a running server.
package smoke

import "time"

// Defaults for Config.
const (
	DefaultBaseURL     = "http://localhost:9080"
	DefaultTimeout     = 15 * time.Second
	DefaultConcurrency = 4
)

// Config holds configuration for a smoke run.
type Config struct {
	BaseURL     string        // Base URL of the service
	Timeout     time.Duration // HTTP request timeout
	Concurrency int           // Scenarios in flight at once
	Verbose     bool          // Log every passing scenario
}

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Concurrency <= 0 {
		c.Concurrency = DefaultConcurrency
	}
	return c
}
