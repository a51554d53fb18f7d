package config

import (
	"time"

	"github.com/leonardotrapani/keysim/internal/xkb"
)

// DefaultConfig returns the configuration written on first run.
func DefaultConfig() *Config {
	return &Config{
		Session: SessionConfig{
			Countdown:     5,
			ReadyDelay:    3 * time.Second,
			MaxChars:      1000,
			DefaultSource: "secondary",
		},
		Layout: LayoutConfig{
			Backend:        "gsettings",
			Target:         "us",
			Secondary:      "hu",
			SettleDelay:    500 * time.Millisecond,
			RestoreDelay:   300 * time.Millisecond,
			CommandTimeout: 5 * time.Second,
			Registry:       xkb.DefaultRegistryPath,
		},
		Injection: InjectionConfig{
			Command:        "ydotool",
			Elevate:        true,
			ElevateCommand: "pkexec",
			KeyDelay:       10 * time.Millisecond,
			StartDelay:     500 * time.Millisecond,
			Timeout:        30 * time.Second,
			CheckDaemon:    true,
		},
		Notifications: NotificationsConfig{
			Enabled: true,
			Type:    "desktop",
		},
		History: HistoryConfig{
			Enabled: true,
			Path:    "",
		},
	}
}
