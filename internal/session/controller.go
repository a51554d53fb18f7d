package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/leonardotrapani/keysim/internal/history"
	"github.com/leonardotrapani/keysim/internal/injection"
	"github.com/leonardotrapani/keysim/internal/layout"
	"github.com/leonardotrapani/keysim/internal/notify"
	"github.com/leonardotrapani/keysim/internal/remap"
	"go.uber.org/zap"
)

const (
	StatusReady     = "Ready"
	StatusCompleted = "Simulation completed!"
)

// LayoutStore is the part of layout.Store the controller needs.
type LayoutStore interface {
	Capture(ctx context.Context) layout.Snapshot
	EnsureTarget(ctx context.Context, snap layout.Snapshot, target string) (int, error)
	Restore(ctx context.Context, snap layout.Snapshot) error
}

type Config struct {
	Countdown    int           // seconds counted down before typing
	TickInterval time.Duration // length of one countdown step
	ReadyDelay   time.Duration // how long the final status stays before "Ready"
	MaxChars     int
	TargetLayout string
}

// MaxTextChars is the longest text any session accepts. A MaxChars outside
// 1..MaxTextChars falls back to it.
const MaxTextChars = 1000

func (cfg Config) charLimit() int {
	if cfg.MaxChars <= 0 || cfg.MaxChars > MaxTextChars {
		return MaxTextChars
	}
	return cfg.MaxChars
}

func DefaultConfig() Config {
	return Config{
		Countdown:    5,
		TickInterval: time.Second,
		ReadyDelay:   3 * time.Second,
		MaxChars:     MaxTextChars,
		TargetLayout: "us",
	}
}

// Deps are the collaborators of a Controller. History and Notifier may be
// nil.
type Deps struct {
	Layouts  LayoutStore
	Injector injection.Injector
	Table    *remap.Table
	Notifier notify.Notifier
	History  history.Store
	Log      *zap.SugaredLogger
}

// Controller runs at most one typing session at a time.
type Controller struct {
	mu       sync.Mutex
	state    State
	cfg      Config
	deps     Deps
	closed   bool
	cancel   context.CancelFunc
	ctx      context.Context
	wg       sync.WaitGroup
	events   *eventQueue
	readyTmr *time.Timer

	log *zap.SugaredLogger
}

func New(cfg Config, deps Deps) *Controller {
	if deps.Log == nil {
		deps.Log = zap.NewNop().Sugar()
	}
	if deps.Table == nil {
		deps.Table = remap.Hungarian
	}
	if deps.Notifier == nil {
		deps.Notifier = notify.Nop{}
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		state:  State{Status: Idle},
		cfg:    cfg,
		deps:   deps,
		ctx:    ctx,
		cancel: cancel,
		events: newEventQueue(),
		log:    deps.Log,
	}
}

// Events returns the ordered event stream. It is closed by Shutdown once
// every pending event has been delivered.
func (c *Controller) Events() <-chan Event {
	return c.events.out
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Busy() bool {
	return c.State().Busy()
}

// Reload swaps the configuration and collaborators used by the next session.
// A nil injector or store keeps the current one.
func (c *Controller) Reload(cfg Config, injector injection.Injector, layouts LayoutStore) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = time.Second
	}
	c.cfg = cfg
	if injector != nil {
		c.deps.Injector = injector
	}
	if layouts != nil {
		c.deps.Layouts = layouts
	}
	c.log.Infow("session settings reloaded", "countdown", cfg.Countdown, "target", cfg.TargetLayout)
}

// Start validates req and, when idle, begins a session in the background.
// started is false without an error when a session is already running.
func (c *Controller) Start(req Request) (started bool, err error) {
	req, err = req.normalized()
	if req.Text == "" {
		return false, ErrEmptyText
	}

	c.mu.Lock()
	cfg, deps := c.cfg, c.deps
	c.mu.Unlock()

	if n, limit := utf8.RuneCountInString(req.Text), cfg.charLimit(); n > limit {
		return false, fmt.Errorf("%w: %d characters, limit is %d", ErrTextTooLong, n, limit)
	}
	if err != nil {
		return false, err
	}

	c.mu.Lock()
	ok, err := c.canStartLocked()
	c.mu.Unlock()
	if !ok {
		return false, err
	}

	// Available may wait on the ydotoold socket, so it runs unlocked.
	if err := deps.Injector.Available(); err != nil {
		return false, fmt.Errorf("%w: %w", ErrInjectorUnavailable, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if ok, err := c.canStartLocked(); !ok {
		return false, err
	}

	if c.readyTmr != nil {
		c.readyTmr.Stop()
		c.readyTmr = nil
	}

	s := &run{
		c:       c,
		req:     req,
		cfg:     cfg,
		deps:    deps,
		started: time.Now(),
		log:     c.log.With("source", string(req.Source), "chars", utf8.RuneCountInString(req.Text)),
	}
	c.setStateLocked(State{Status: CountingDown, Remaining: cfg.Countdown})

	c.wg.Add(1)
	go s.execute(c.ctx)
	return true, nil
}

// canStartLocked reports whether a new session may begin. A running session
// is not an error.
func (c *Controller) canStartLocked() (bool, error) {
	if c.closed {
		return false, errors.New("controller is shut down")
	}
	if c.state.Status != Idle {
		c.log.Infow("session already running, ignoring start", "state", c.state.String())
		return false, nil
	}
	return true, nil
}

// Wait blocks until the running session, if any, has finished.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Shutdown cancels a running session, waits for its layout restore and closes
// the event stream.
func (c *Controller) Shutdown() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	if c.readyTmr != nil {
		c.readyTmr.Stop()
	}
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()
	c.events.close()
	c.log.Debug("controller shut down")
}

func (c *Controller) setStateLocked(s State) {
	c.state = s
	c.events.push(Event{Kind: EventState, State: s})
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setStateLocked(s)
}

func (c *Controller) status(msg string) {
	c.events.push(Event{Kind: EventStatus, Message: msg})
}

// scheduleReady emits "Ready" after the display delay unless another session
// started in the meantime.
func (c *Controller) scheduleReady(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.readyTmr = time.AfterFunc(d, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.state.Status == Idle && !c.closed {
			c.status(StatusReady)
		}
	})
}
