package tui

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/leonardotrapani/keysim/internal/deps"
	"github.com/leonardotrapani/keysim/internal/history"
	"github.com/leonardotrapani/keysim/internal/remap"
	"github.com/leonardotrapani/keysim/internal/session"
)

// RenderEvent formats a session event as one line for the terminal. State
// changes are not shown; the statuses that accompany them carry the message.
func RenderEvent(e session.Event) (string, bool) {
	switch e.Kind {
	case session.EventTick:
		return StyleCountdown.Render(e.Message), true
	case session.EventStatus:
		switch {
		case e.Message == session.StatusCompleted:
			return StyleSuccess.Render(e.Message), true
		case strings.HasPrefix(e.Message, "Simulation failed"):
			return StyleError.Render(e.Message), true
		case e.Message == session.StatusReady:
			return StyleMuted.Render(e.Message), true
		default:
			return StyleHighlight.Render(e.Message), true
		}
	default:
		return "", false
	}
}

// RenderState formats a daemon status for `keysim status`.
func RenderState(state string, remaining int) string {
	label := StyleLabel.Render("State:")
	switch session.Status(state) {
	case session.CountingDown:
		return fmt.Sprintf("%s %s %s", label, StyleCountdown.Render(state), StyleMuted.Render(fmt.Sprintf("(%ds left)", remaining)))
	case session.Injecting, session.RestoringLayout:
		return fmt.Sprintf("%s %s", label, StyleHighlight.Render(state))
	case session.Failed:
		return fmt.Sprintf("%s %s", label, StyleError.Render(state))
	default:
		return fmt.Sprintf("%s %s", label, StyleSuccess.Render(state))
	}
}

// CharCounter renders "Characters: n/max", turning red past the limit.
func CharCounter(text string, max int) string {
	n := utf8.RuneCountInString(strings.TrimSpace(text))
	s := fmt.Sprintf("Characters: %d/%d", n, max)
	if n > max || n == 0 {
		return StyleError.Render(s)
	}
	return StyleMuted.Render(s)
}

// RenderTable lists the remap table, one entry per line.
func RenderTable(entries []remap.Entry) string {
	var b strings.Builder
	for _, e := range entries {
		to := e.To
		if to == string(e.From) {
			to = StyleMuted.Render(to)
		} else {
			to = StyleHighlight.Render(to)
		}
		fmt.Fprintf(&b, "  %q  ->  %s\n", e.From, to)
	}
	return b.String()
}

// RenderHistory formats finished sessions newest first.
func RenderHistory(entries []history.Entry) string {
	if len(entries) == 0 {
		return StyleMuted.Render("No sessions recorded yet.") + "\n"
	}

	var b strings.Builder
	for _, e := range entries {
		outcome := StyleSuccess.Render(string(e.Outcome))
		if e.Outcome == history.Failed {
			outcome = StyleError.Render(string(e.Outcome))
			if e.Reason != "" {
				outcome += StyleMuted.Render(" (" + e.Reason + ")")
			}
		}
		took := e.FinishedAt.Sub(e.StartedAt).Round(100 * time.Millisecond)
		fmt.Fprintf(&b, "%s  %-9s %4d chars  %6s  %s\n",
			e.StartedAt.Local().Format("2006-01-02 15:04:05"), e.Source, e.Chars, took, outcome)
	}
	return b.String()
}

// RenderDeps formats dependency check results.
func RenderDeps(results []deps.Result) string {
	var b strings.Builder
	for _, r := range results {
		mark := StyleSuccess.Render("✓")
		detail := r.Path
		if r.Version != "" {
			detail += " (" + r.Version + ")"
		}
		if !r.Installed {
			detail = "not found"
			if r.Required {
				mark = StyleError.Render("✗")
			} else {
				mark = StyleWarning.Render("!")
			}
		}
		fmt.Fprintf(&b, "%s %-12s %s %s\n", mark, r.Name, StyleMuted.Render(r.Purpose+":"), detail)
	}
	return b.String()
}
