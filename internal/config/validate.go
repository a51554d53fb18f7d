package config

import (
	"fmt"
	"strings"

	"github.com/leonardotrapani/keysim/internal/remap"
)

// MaxTextChars is the longest text a session accepts.
const MaxTextChars = 1000

// The remap table turns Hungarian keyboard text into US keystrokes, so those
// are the only layouts it can serve. Variants such as "us+intl" are allowed.
const (
	targetLayout    = "us"
	secondaryLayout = "hu"
)

func baseLayout(id string) string {
	base, _, _ := strings.Cut(id, "+")
	return base
}

func (c *Config) Validate() error {
	// Session
	if c.Session.Countdown < 0 || c.Session.Countdown > 60 {
		return fmt.Errorf("invalid session.countdown: %d (must be between 0 and 60)", c.Session.Countdown)
	}
	if c.Session.ReadyDelay < 0 {
		return fmt.Errorf("invalid session.ready_delay: %v", c.Session.ReadyDelay)
	}
	if c.Session.MaxChars <= 0 || c.Session.MaxChars > MaxTextChars {
		return fmt.Errorf("invalid session.max_chars: %d (must be between 1 and %d)", c.Session.MaxChars, MaxTextChars)
	}
	if _, err := remap.ParseSource(c.Session.DefaultSource); err != nil {
		return fmt.Errorf("invalid session.default_source: %s (must be secondary or target)", c.Session.DefaultSource)
	}

	// Layout
	validBackends := map[string]bool{"gsettings": true, "none": true}
	if !validBackends[c.Layout.Backend] {
		return fmt.Errorf("invalid layout.backend: %s (must be gsettings or none)", c.Layout.Backend)
	}
	if baseLayout(c.Layout.Target) != targetLayout {
		return fmt.Errorf("invalid layout.target: %q (must be %s or a %s variant)", c.Layout.Target, targetLayout, targetLayout)
	}
	if baseLayout(c.Layout.Secondary) != secondaryLayout {
		return fmt.Errorf("invalid layout.secondary: %q (must be %s or a %s variant)", c.Layout.Secondary, secondaryLayout, secondaryLayout)
	}
	if c.Layout.SettleDelay < 0 {
		return fmt.Errorf("invalid layout.settle_delay: %v", c.Layout.SettleDelay)
	}
	if c.Layout.RestoreDelay < 0 {
		return fmt.Errorf("invalid layout.restore_delay: %v", c.Layout.RestoreDelay)
	}
	if c.Layout.CommandTimeout <= 0 {
		return fmt.Errorf("invalid layout.command_timeout: %v", c.Layout.CommandTimeout)
	}

	// Injection
	if c.Injection.Command == "" {
		return fmt.Errorf("invalid injection.command: empty")
	}
	if c.Injection.Elevate && c.Injection.ElevateCommand == "" {
		return fmt.Errorf("invalid injection.elevate_command: empty while injection.elevate is set")
	}
	if c.Injection.KeyDelay < 0 {
		return fmt.Errorf("invalid injection.key_delay: %v", c.Injection.KeyDelay)
	}
	if c.Injection.StartDelay < 0 {
		return fmt.Errorf("invalid injection.start_delay: %v", c.Injection.StartDelay)
	}
	if c.Injection.Timeout <= 0 {
		return fmt.Errorf("invalid injection.timeout: %v", c.Injection.Timeout)
	}

	// Notifications
	validTypes := map[string]bool{"desktop": true, "log": true, "none": true}
	if !validTypes[c.Notifications.Type] {
		return fmt.Errorf("invalid notifications.type: %s (must be desktop, log, or none)", c.Notifications.Type)
	}

	return nil
}
