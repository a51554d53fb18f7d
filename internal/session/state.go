package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/leonardotrapani/keysim/internal/remap"
)

type Status string

const (
	Idle            Status = "idle"
	CountingDown    Status = "counting_down"
	Injecting       Status = "injecting"
	RestoringLayout Status = "restoring_layout"
	Completed       Status = "completed"
	Failed          Status = "failed"
)

// State is the controller's current position in the session lifecycle.
// Remaining is only set while counting down, Reason only when failed.
type State struct {
	Status    Status
	Remaining int
	Reason    string
}

// Busy reports whether quitting now would interrupt a session.
func (s State) Busy() bool {
	return s.Status == CountingDown || s.Status == Injecting
}

func (s State) String() string {
	switch s.Status {
	case CountingDown:
		return fmt.Sprintf("%s(%d)", s.Status, s.Remaining)
	case Failed:
		return fmt.Sprintf("%s(%s)", s.Status, s.Reason)
	default:
		return string(s.Status)
	}
}

var (
	ErrEmptyText           = errors.New("no text to type")
	ErrTextTooLong         = errors.New("text too long")
	ErrInvalidSource       = errors.New("invalid source layout")
	ErrInjectorUnavailable = errors.New("injector unavailable")
)

// Request is one typing job.
type Request struct {
	Text   string
	Source remap.Source // empty means remap.Secondary
}

func (r Request) normalized() (Request, error) {
	r.Text = strings.TrimSpace(r.Text)
	if r.Source == "" {
		r.Source = remap.Secondary
		return r, nil
	}
	src, err := remap.ParseSource(string(r.Source))
	if err != nil {
		return r, fmt.Errorf("%w: %q", ErrInvalidSource, r.Source)
	}
	r.Source = src
	return r, nil
}
