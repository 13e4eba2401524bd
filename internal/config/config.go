// ABOUTME: Centralized configuration for the decide CLI and MCP server
// ABOUTME: Loads from environment variables with validation and defaults

package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds all configuration for the decide tooling.
type Config struct {
	// DiagOutput picks where CLI evaluations print chain diagnostics:
	// stderr, stdout, or off.
	DiagOutput string `env:"DECIDE_DIAG_OUTPUT" envDefault:"stderr"`

	// MaxChains caps how many live chains one MCP session may hold.
	MaxChains int `env:"DECIDE_MAX_CHAINS" envDefault:"256"`

	// MaxScriptSteps caps the number of steps a decision script may carry.
	MaxScriptSteps int `env:"DECIDE_MAX_SCRIPT_STEPS" envDefault:"1024"`

	// ValueWidth caps how many characters of a payload or case value
	// tables and diagnostics render.
	ValueWidth int `env:"DECIDE_VALUE_WIDTH" envDefault:"120"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	switch c.DiagOutput {
	case "stderr", "stdout", "off":
	default:
		return fmt.Errorf("DECIDE_DIAG_OUTPUT must be stderr, stdout, or off, got %q", c.DiagOutput)
	}
	if c.MaxChains <= 0 {
		return fmt.Errorf("DECIDE_MAX_CHAINS must be positive, got %d", c.MaxChains)
	}
	if c.MaxScriptSteps <= 0 {
		return fmt.Errorf("DECIDE_MAX_SCRIPT_STEPS must be positive, got %d", c.MaxScriptSteps)
	}
	if c.ValueWidth <= 0 {
		return fmt.Errorf("DECIDE_VALUE_WIDTH must be positive, got %d", c.ValueWidth)
	}
	return nil
}
