package injection

import (
	"errors"
	"fmt"
)

var (
	// ErrTimedOut is returned when the injector runs past its time budget.
	ErrTimedOut = errors.New("timed out")
	// ErrEmptyText is returned when there is nothing to type.
	ErrEmptyText = errors.New("cannot inject empty text")
)

// ExitError is returned when the injector exits with a non-zero status.
type ExitError struct {
	Command string
	Code    int
	Output  string
}

func (e *ExitError) Error() string {
	if e.Output == "" {
		return fmt.Sprintf("%s failed: exit status %d", e.Command, e.Code)
	}
	return fmt.Sprintf("%s failed: %s", e.Command, e.Output)
}
