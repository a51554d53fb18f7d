package config

import (
	"github.com/leonardotrapani/keysim/internal/injection"
)

func (c *Config) ToInjectionConfig() injection.Config {
	return injection.Config{
		Command:        c.Injection.Command,
		Elevate:        c.Injection.Elevate,
		ElevateCommand: c.Injection.ElevateCommand,
		KeyDelay:       c.Injection.KeyDelay,
		StartDelay:     c.Injection.StartDelay,
		Timeout:        c.Injection.Timeout,
		CheckDaemon:    c.Injection.CheckDaemon,
	}
}

// HistoryPath returns the configured history database, falling back to the
// XDG data directory.
func (c *Config) HistoryPath() (string, error) {
	if c.History.Path != "" {
		return c.History.Path, nil
	}
	return DefaultHistoryPath()
}
