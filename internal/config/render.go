package config

import (
	"strconv"
	"strings"
	"text/template"
	"time"
)

var fileTemplate = template.Must(template.New("config").Funcs(template.FuncMap{
	"q":   strconv.Quote,
	"dur": func(d time.Duration) string { return strconv.Quote(d.String()) },
}).Parse(`# Keysim Configuration
# This file is automatically generated with defaults.
# Edit values as needed - a running daemon picks up changes without restart.
# Every key can also be overridden with KEYSIM_<SECTION>_<KEY>, e.g.
# KEYSIM_SESSION_COUNTDOWN=3.

# Typing session
[session]
  countdown = {{.Session.Countdown}}                # Seconds to switch to the target window before typing
  ready_delay = {{dur .Session.ReadyDelay}}         # How long the result is shown before "Ready"
  max_chars = {{.Session.MaxChars}}                # Longest accepted text, in characters
  default_source = {{q .Session.DefaultSource}}  # Layout the text was written for ("secondary" or "target")

# Keyboard layout switching
[layout]
  backend = {{q .Layout.Backend}}           # How layouts are read and switched ("gsettings", "none")
  target = {{q .Layout.Target}}                   # Layout the injector types in (xkb id)
  secondary = {{q .Layout.Secondary}}                # Physical layout secondary text was written on
  settle_delay = {{dur .Layout.SettleDelay}}         # Pause after activating the target layout
  restore_delay = {{dur .Layout.RestoreDelay}}        # Pause after restoring the original layout
  command_timeout = {{dur .Layout.CommandTimeout}}        # Timeout for each gsettings call
  registry = {{q .Layout.Registry}}

# Keystroke injection
[injection]
  command = {{q .Injection.Command}}           # Injector binary
  elevate = {{.Injection.Elevate}}                # Run the injector through elevate_command
  elevate_command = {{q .Injection.ElevateCommand}}    # Privilege helper
  key_delay = {{dur .Injection.KeyDelay}}           # Delay between keystrokes
  start_delay = {{dur .Injection.StartDelay}}        # Pause before the first keystroke ("0s" to skip)
  timeout = {{dur .Injection.Timeout}}              # Give up typing after this long
  check_daemon = {{.Injection.CheckDaemon}}           # Require a responsive ydotoold socket

# Desktop Notification Configuration
[notifications]
  enabled = {{.Notifications.Enabled}}                # Notify when a session finishes
  type = {{q .Notifications.Type}}             # Notification type ("desktop", "log", "none")

# Session history
[history]
  enabled = {{.History.Enabled}}                # Record finished sessions
  path = {{q .History.Path}}                     # Database file (empty = $XDG_DATA_HOME/keysim/history.db)
`))

func render(c *Config) string {
	var b strings.Builder
	if err := fileTemplate.Execute(&b, c); err != nil {
		// the template only reads fields of Config
		panic(err)
	}
	return b.String()
}
