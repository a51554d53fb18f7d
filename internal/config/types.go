package config

import "time"

type Config struct {
	Session       SessionConfig       `toml:"session" envPrefix:"SESSION_"`
	Layout        LayoutConfig        `toml:"layout" envPrefix:"LAYOUT_"`
	Injection     InjectionConfig     `toml:"injection" envPrefix:"INJECTION_"`
	Notifications NotificationsConfig `toml:"notifications" envPrefix:"NOTIFICATIONS_"`
	History       HistoryConfig       `toml:"history" envPrefix:"HISTORY_"`
}

type SessionConfig struct {
	Countdown     int           `toml:"countdown" env:"COUNTDOWN"`           // seconds before typing starts
	ReadyDelay    time.Duration `toml:"ready_delay" env:"READY_DELAY"`       // how long the result stays before "Ready"
	MaxChars      int           `toml:"max_chars" env:"MAX_CHARS"`           // longest accepted text, in characters
	DefaultSource string        `toml:"default_source" env:"DEFAULT_SOURCE"` // "secondary" or "target"
}

type LayoutConfig struct {
	Backend        string        `toml:"backend" env:"BACKEND"` // "gsettings", "none"
	Target         string        `toml:"target" env:"TARGET"`
	Secondary      string        `toml:"secondary" env:"SECONDARY"`
	SettleDelay    time.Duration `toml:"settle_delay" env:"SETTLE_DELAY"`
	RestoreDelay   time.Duration `toml:"restore_delay" env:"RESTORE_DELAY"`
	CommandTimeout time.Duration `toml:"command_timeout" env:"COMMAND_TIMEOUT"`
	Registry       string        `toml:"registry" env:"REGISTRY"` // evdev.xml, used to describe layouts
}

type InjectionConfig struct {
	Command        string        `toml:"command" env:"COMMAND"`
	Elevate        bool          `toml:"elevate" env:"ELEVATE"`
	ElevateCommand string        `toml:"elevate_command" env:"ELEVATE_COMMAND"`
	KeyDelay       time.Duration `toml:"key_delay" env:"KEY_DELAY"`
	StartDelay     time.Duration `toml:"start_delay" env:"START_DELAY"`
	Timeout        time.Duration `toml:"timeout" env:"TIMEOUT"`
	CheckDaemon    bool          `toml:"check_daemon" env:"CHECK_DAEMON"`
}

type NotificationsConfig struct {
	Enabled bool   `toml:"enabled" env:"ENABLED"`
	Type    string `toml:"type" env:"TYPE"` // "desktop", "log", "none"
}

type HistoryConfig struct {
	Enabled bool   `toml:"enabled" env:"ENABLED"`
	Path    string `toml:"path" env:"PATH"` // empty = $XDG_DATA_HOME/keysim/history.db
}
