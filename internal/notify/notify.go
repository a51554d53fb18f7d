package notify

import (
	"os/exec"

	"go.uber.org/zap"
)

const appName = "Keysim"

// Notifier reports the final outcome of a typing session to the operator.
type Notifier interface {
	Completed()
	Failed(reason string)
}

// New picks a notifier for the configured type ("desktop", "log", "none").
func New(kind string, enabled bool, log *zap.SugaredLogger) Notifier {
	if !enabled {
		return Nop{}
	}
	switch kind {
	case "desktop":
		return Desktop{Log: log}
	case "log":
		return Log{Logger: log}
	default:
		return Nop{}
	}
}

// Desktop sends notifications through notify-send.
type Desktop struct {
	Log *zap.SugaredLogger
}

func (d Desktop) Completed() {
	d.send("-a", appName, "Keysim: Simulation completed")
}

func (d Desktop) Failed(reason string) {
	d.send("-a", appName, "-u", "critical", "Keysim: Simulation failed", reason)
}

func (d Desktop) send(args ...string) {
	cmd := exec.Command("notify-send", args...)
	if err := cmd.Run(); err != nil && d.Log != nil {
		d.Log.Warnw("failed to send notification", "error", err)
	}
}

// Log writes notifications to the logger instead of the desktop.
type Log struct {
	Logger *zap.SugaredLogger
}

func (l Log) Completed() {
	if l.Logger != nil {
		l.Logger.Infow("Keysim: Simulation completed")
	}
}

func (l Log) Failed(reason string) {
	if l.Logger != nil {
		l.Logger.Errorw("Keysim: Simulation failed", "reason", reason)
	}
}

// Nop is a Notifier that does absolutely nothing.
// Useful in unit tests or headless builds.
type Nop struct{}

func (Nop) Completed()    {}
func (Nop) Failed(string) {}
