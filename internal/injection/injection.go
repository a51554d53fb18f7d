package injection

import (
	"context"
	"time"
)

// Injector types text into the focused window.
type Injector interface {
	// Available reports whether the injector can run at all.
	Available() error
	// Inject types text, returning ErrTimedOut when the time budget is spent
	// and an *ExitError when the tool reports failure.
	Inject(ctx context.Context, text string) error
}

// Config for text injection
type Config struct {
	Command        string        // injector binary, normally ydotool
	Elevate        bool          // run the injector through ElevateCommand
	ElevateCommand string        // privilege helper, normally pkexec
	KeyDelay       time.Duration // delay between keystrokes
	StartDelay     time.Duration // pause before ydotool starts; 0 skips it
	Timeout        time.Duration // wall clock budget for one injection
	CheckDaemon    bool          // require a responsive ydotoold socket when ydotoold is installed
}

// DefaultConfig returns sensible defaults for injection
func DefaultConfig() Config {
	return Config{
		Command:        "ydotool",
		Elevate:        true,
		ElevateCommand: "pkexec",
		KeyDelay:       10 * time.Millisecond,
		StartDelay:     500 * time.Millisecond,
		Timeout:        30 * time.Second,
		CheckDaemon:    true,
	}
}

// NewInjector creates a ydotool injector with the given config
func NewInjector(config Config) Injector {
	return NewYdotool(config)
}
