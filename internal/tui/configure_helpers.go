package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/leonardotrapani/keysim/internal/config"
	"github.com/leonardotrapani/keysim/internal/xkb"
)

func formatSessionLabel(cfg *config.Config) string {
	return fmt.Sprintf("Session (%ds countdown, %d chars)", cfg.Session.Countdown, cfg.Session.MaxChars)
}

func formatLayoutLabel(cfg *config.Config) string {
	return fmt.Sprintf("Layouts (%s -> %s, %s)", cfg.Layout.Secondary, cfg.Layout.Target, cfg.Layout.Backend)
}

func formatInjectionLabel(cfg *config.Config) string {
	if cfg.Injection.Elevate {
		return fmt.Sprintf("Injection (%s via %s)", cfg.Injection.Command, cfg.Injection.ElevateCommand)
	}
	return fmt.Sprintf("Injection (%s)", cfg.Injection.Command)
}

// formatNotificationsLabel formats the notifications menu option
func formatNotificationsLabel(cfg *config.Config) string {
	return "Notifications (" + formatEnabled(cfg.Notifications.Enabled, cfg.Notifications.Type) + ")"
}

func formatHistoryLabel(cfg *config.Config) string {
	return "History (" + formatEnabled(cfg.History.Enabled, "") + ")"
}

func formatEnabled(enabled bool, detail string) string {
	if !enabled {
		return "disabled"
	}
	if detail == "" {
		return "enabled"
	}
	return "enabled, " + detail
}

func validateIntRange(min, max int) func(string) error {
	return func(s string) error {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return errors.New("enter a whole number")
		}
		if n < min || n > max {
			return fmt.Errorf("must be between %d and %d", min, max)
		}
		return nil
	}
}

func validateDuration(positive bool) func(string) error {
	return func(s string) error {
		d, err := time.ParseDuration(strings.TrimSpace(s))
		if err != nil {
			return errors.New(`enter a duration such as "500ms" or "3s"`)
		}
		if d < 0 || (positive && d == 0) {
			return errors.New("duration must be positive")
		}
		return nil
	}
}

// validateLayout accepts base or one of its variants, such as "us+intl".
// Without a registry the variant is not checked further.
func validateLayout(registry *xkb.Registry, base string) func(string) error {
	return func(s string) error {
		s = strings.TrimSpace(s)
		if s == "" {
			return errors.New("layout cannot be empty")
		}
		if b, _, _ := strings.Cut(s, "+"); b != base {
			return fmt.Errorf("must be %s or a %s variant", base, base)
		}
		if registry != nil && !registry.Known(s) {
			return fmt.Errorf("unknown xkb layout %q", s)
		}
		return nil
	}
}

func describeLayout(registry *xkb.Registry, id string) string {
	if registry == nil {
		return id
	}
	if desc := registry.Describe(id); desc != "" {
		return fmt.Sprintf("%s (%s)", desc, id)
	}
	return id
}
