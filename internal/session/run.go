package session

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/leonardotrapani/keysim/internal/history"
	"github.com/leonardotrapani/keysim/internal/injection"
	"github.com/leonardotrapani/keysim/internal/layout"
	"go.uber.org/zap"
)

// run is one session from countdown to report.
type run struct {
	c       *Controller
	req     Request
	cfg     Config
	deps    Deps
	started time.Time
	log     *zap.SugaredLogger
}

func (r *run) execute(ctx context.Context) {
	defer r.c.wg.Done()

	r.log.Infow("session started", "countdown", r.cfg.Countdown)

	if err := r.countdown(ctx); err != nil {
		r.finish(err)
		return
	}

	r.finish(r.inject(ctx))
}

func (r *run) countdown(ctx context.Context) error {
	for n := r.cfg.Countdown; n > 0; n-- {
		r.c.mu.Lock()
		r.c.state.Remaining = n
		r.c.mu.Unlock()
		r.c.events.push(Event{
			Kind:      EventTick,
			Remaining: n,
			Message:   fmt.Sprintf("Starting simulation in %d seconds...", n),
		})

		t := time.NewTimer(r.cfg.TickInterval)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
	return nil
}

// inject captures the layout, switches to the target, types and restores.
// The restore runs once on every path out, including a panic in the injector
// and a cancelled context.
func (r *run) inject(ctx context.Context) (err error) {
	r.c.setState(State{Status: Injecting})

	snap := r.deps.Layouts.Capture(ctx)

	defer func() {
		if p := recover(); p != nil {
			r.log.Errorw("session panicked", "panic", p)
			err = fmt.Errorf("internal error: %v", p)
		}

		r.c.setState(State{Status: RestoringLayout})
		r.c.status("Restoring original keyboard layout...")
		if rerr := r.deps.Layouts.Restore(context.WithoutCancel(ctx), snap); rerr != nil {
			r.log.Errorw("layout restore failed", "error", rerr)
		}
	}()

	r.c.status(fmt.Sprintf("Switching to %s keyboard layout...", layoutLabel(r.cfg.TargetLayout)))
	if _, terr := r.deps.Layouts.EnsureTarget(ctx, snap, r.cfg.TargetLayout); terr != nil {
		if errors.Is(terr, layout.ErrNothingCaptured) {
			r.log.Warnw("layout state unknown, typing with the active layout")
		} else if ctx.Err() != nil {
			return ctx.Err()
		} else {
			r.log.Warnw("could not switch to target layout", "layout", r.cfg.TargetLayout, "error", terr)
		}
	}

	text := r.deps.Table.Remap(r.req.Text, r.req.Source)

	r.c.status("Simulating keystrokes...")
	r.log.Debugw("injecting", "remapped_chars", utf8.RuneCountInString(text))
	return r.deps.Injector.Inject(ctx, text)
}

func (r *run) finish(err error) {
	final := State{Status: Completed}
	if err != nil {
		final = State{Status: Failed, Reason: reason(err)}
	}

	r.c.setState(final)
	if err != nil {
		r.log.Warnw("session failed", "reason", final.Reason, "error", err)
		r.deps.Notifier.Failed(final.Reason)
	} else {
		r.log.Infow("session completed", "elapsed", time.Since(r.started).Round(time.Millisecond))
		r.deps.Notifier.Completed()
	}
	r.c.events.push(Event{Kind: EventDone, OK: err == nil, Reason: final.Reason})

	r.record(final)

	r.c.setState(State{Status: Idle})
	if err != nil {
		r.c.status("Simulation failed: " + final.Reason)
	} else {
		r.c.status(StatusCompleted)
	}
	r.c.scheduleReady(r.cfg.ReadyDelay)
}

func (r *run) record(final State) {
	if r.deps.History == nil {
		return
	}

	e := history.Entry{
		StartedAt:  r.started,
		FinishedAt: time.Now(),
		Source:     string(r.req.Source),
		Chars:      utf8.RuneCountInString(r.req.Text),
		Outcome:    history.Completed,
		Reason:     final.Reason,
	}
	if final.Status == Failed {
		e.Outcome = history.Failed
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := r.deps.History.Record(ctx, e); err != nil {
		r.log.Warnw("failed to record history", "error", err)
	}
}

// reason turns an injection error into the short text shown to the user.
func reason(err error) string {
	var exitErr *injection.ExitError
	switch {
	case errors.Is(err, injection.ErrTimedOut):
		return "timed out"
	case errors.As(err, &exitErr):
		if exitErr.Output != "" {
			return exitErr.Output
		}
		return exitErr.Error()
	case errors.Is(err, context.Canceled):
		return "cancelled"
	default:
		return err.Error()
	}
}

func layoutLabel(id string) string {
	if id == "us" {
		return "US"
	}
	return id
}
