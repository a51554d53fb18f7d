package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix is prepended to every environment override, e.g.
// KEYSIM_SESSION_COUNTDOWN or KEYSIM_INJECTION_ELEVATE.
const EnvPrefix = "KEYSIM_"

// ApplyEnv overlays KEYSIM_* environment variables onto c. Unset variables
// leave the file values alone.
func (c *Config) ApplyEnv() error {
	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
