package config

import (
	"fmt"

	"github.com/alvmarrod/find-emails/internal/version"
)

// Config holds all runtime configuration parameters
type Config struct {
	MaxDepth         int    `json:"max_depth"`
	MaxPages         int    `json:"max_pages"`
	RequestTimeoutMs int    `json:"request_timeout_ms"`
	UserAgent        string `json:"user_agent"`
	RespectRobots    bool   `json:"respect_robots"`
	IncludeExternal  bool   `json:"include_external"`
	Render           bool   `json:"render"`
	FullURLs         bool   `json:"full_urls"`
	PatternsPath     string `json:"patterns_path"`
	DBPath           string `json:"db_path"`
	MetricsPath      string `json:"metrics_path"`
}

// Budget bounds a single traversal. Depth 0 visits only the seeds.
type Budget struct {
	MaxDepth int
	MaxPages int
}

const (
	DefaultMaxDepth         = 2
	DefaultMaxPages         = 25
	DefaultRequestTimeoutMs = 15000
)

// Default returns a Config with every default applied
func Default() *Config {
	cfg := &Config{MaxDepth: -1}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults sets default values for unspecified fields.
// A negative MaxDepth means unspecified since 0 is a valid depth.
func (c *Config) ApplyDefaults() {
	if c.MaxDepth < 0 {
		c.MaxDepth = DefaultMaxDepth
	}
	if c.MaxPages == 0 {
		c.MaxPages = DefaultMaxPages
	}
	if c.RequestTimeoutMs == 0 {
		c.RequestTimeoutMs = DefaultRequestTimeoutMs
	}
	if c.UserAgent == "" {
		c.UserAgent = "find-emails/" + version.Version
	}
}

// Validate checks that values are sensible
func (c *Config) Validate() error {
	if err := c.Budget().Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if c.RequestTimeoutMs < 1000 {
		return fmt.Errorf("invalid configuration: request_timeout_ms must be >= 1000")
	}
	return nil
}

// Budget returns the crawl budget carried by the configuration
func (c *Config) Budget() Budget {
	return Budget{MaxDepth: c.MaxDepth, MaxPages: c.MaxPages}
}

// Validate checks the budget bounds
func (b Budget) Validate() error {
	if b.MaxDepth < 0 {
		return fmt.Errorf("max_depth must be >= 0")
	}
	if b.MaxPages < 1 {
		return fmt.Errorf("max_pages must be >= 1")
	}
	return nil
}
