package layout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrUnavailable is returned by facilities that cannot reach the host.
	ErrUnavailable = errors.New("layout facility unavailable")
	// ErrNothingCaptured means the snapshot is empty, so the layout was left alone.
	ErrNothingCaptured = errors.New("no layout state captured")
)

// Facility reads and writes the host keyboard layout configuration. The
// source list and the active index are written by separate calls; hosts do
// not offer an atomic combined write.
type Facility interface {
	Sources(ctx context.Context) ([]Source, error)
	Current(ctx context.Context) (int, error)
	SetSources(ctx context.Context, sources []Source) error
	SetCurrent(ctx context.Context, idx int) error
}

// Source is one configured input source, e.g. ('xkb', 'us').
type Source struct {
	Type string
	ID   string
}

// XKB returns an xkb input source for a layout code such as "us".
func XKB(id string) Source {
	return Source{Type: "xkb", ID: id}
}

func (s Source) String() string {
	return fmt.Sprintf("('%s', '%s')", s.Type, s.ID)
}

// Matches reports whether the source is the given layout. A variant suffix
// is ignored, so "us" matches both us and us+intl.
func (s Source) Matches(label string) bool {
	return s.ID == label || strings.HasPrefix(s.ID, label+"+")
}

// Snapshot is an immutable capture of the host layout state.
type Snapshot struct {
	sources    []Source
	current    int
	hasCurrent bool
}

// NewSnapshot builds a snapshot; a negative or out of range current means the
// active index is unknown.
func NewSnapshot(sources []Source, current int) Snapshot {
	s := Snapshot{sources: append([]Source(nil), sources...)}
	if current >= 0 && current < len(sources) {
		s.current = current
		s.hasCurrent = true
	}
	return s
}

// Empty reports whether there is nothing to restore.
func (s Snapshot) Empty() bool {
	return len(s.sources) == 0
}

func (s Snapshot) Sources() []Source {
	return append([]Source(nil), s.sources...)
}

func (s Snapshot) Current() (int, bool) {
	return s.current, s.hasCurrent
}

// Index returns the position of the first source matching label, or -1.
func (s Snapshot) Index(label string) int {
	for i, src := range s.sources {
		if src.Matches(label) {
			return i
		}
	}
	return -1
}

func (s Snapshot) String() string {
	if s.Empty() {
		return "<empty>"
	}
	parts := make([]string, len(s.sources))
	for i, src := range s.sources {
		parts[i] = src.String()
	}
	cur := "none"
	if s.hasCurrent {
		cur = fmt.Sprint(s.current)
	}
	return fmt.Sprintf("[%s] current=%s", strings.Join(parts, ", "), cur)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
