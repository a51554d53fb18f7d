package daemon

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/adrg/xdg"
	"github.com/leonardotrapani/keysim/internal/bus"
	"github.com/leonardotrapani/keysim/internal/layout"
	"github.com/leonardotrapani/keysim/internal/session"
	"github.com/leonardotrapani/keysim/internal/testutil"
)

type harness struct {
	d        *Daemon
	injector *testutil.MockInjector
	mem      *layout.Memory
	errCh    chan error
}

func startDaemon(t *testing.T, countdown int) *harness {
	t.Helper()

	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())
	xdg.Reload()
	t.Cleanup(xdg.Reload)

	mem := layout.NewMemory([]layout.Source{layout.XKB("hu")}, 0)
	store := layout.NewStore(mem, nil)
	store.SettleDelay = 0
	store.RestoreDelay = 0

	h := &harness{
		injector: testutil.NewMockInjector(),
		mem:      mem,
		errCh:    make(chan error, 1),
	}
	ctrl := session.New(session.Config{
		Countdown:    countdown,
		TickInterval: time.Millisecond,
		ReadyDelay:   time.Hour,
		MaxChars:     1000,
		TargetLayout: "us",
	}, session.Deps{Layouts: store, Injector: h.injector})

	h.d = New(ctrl, "", nil)
	go func() {
		h.errCh <- h.d.Run()
	}()

	// Wait for daemon to be ready by trying to connect
	testutil.WaitForCondition(t, func() bool {
		_, err := bus.SendCommand(bus.CmdVersion)
		return err == nil
	}, 3*time.Second)

	t.Cleanup(func() {
		h.d.Stop()
		select {
		case <-h.errCh:
		case <-time.After(3 * time.Second):
			t.Error("daemon did not exit within timeout")
		}
	})
	return h
}

func TestDaemon_StatusAndVersion(t *testing.T) {
	startDaemon(t, 1)

	out, err := bus.SendCommand(bus.CmdStatus)
	if err != nil {
		t.Fatalf("status failed: %v", err)
	}
	if out != "STATUS state=idle remaining=0" {
		t.Errorf("status = %q", out)
	}

	out, err = bus.SendCommand(bus.CmdVersion)
	if err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if out != "STATUS proto="+bus.ProtoVer {
		t.Errorf("version = %q", out)
	}

	out, err = bus.SendCommand('x')
	if err != nil {
		t.Fatalf("unknown command failed: %v", err)
	}
	if out != "ERR unknown=x" {
		t.Errorf("unknown = %q", out)
	}
}

func TestDaemon_StartSession(t *testing.T) {
	h := startDaemon(t, 1)

	out, err := bus.SendLine(bus.StartLine("-", "aÁz"))
	if err != nil {
		t.Fatalf("start failed: %v", err)
	}
	if out != "OK started" {
		t.Fatalf("start = %q, want OK started", out)
	}

	testutil.WaitForCondition(t, func() bool {
		return len(h.injector.GetInjectedTexts()) == 1
	}, 3*time.Second)

	if got := h.injector.GetInjectedTexts()[0]; got != `a"y` {
		t.Errorf("injected %q, want a\"y", got)
	}

	testutil.WaitForCondition(t, func() bool {
		out, err := bus.SendCommand(bus.CmdStatus)
		return err == nil && out == "STATUS state=idle remaining=0"
	}, 3*time.Second)

	sources, cur := h.mem.State()
	if len(sources) != 1 || sources[0] != layout.XKB("hu") || cur != 0 {
		t.Errorf("layout not restored: %v, %d", sources, cur)
	}
}

func TestDaemon_StartRejections(t *testing.T) {
	h := startDaemon(t, 1)
	release := make(chan struct{})
	defer close(release)
	h.injector.InjectFunc = testutil.BlockingInject(release)

	tests := []struct {
		name string
		line string
		want string
	}{
		{"empty text", bus.StartLine("target", "   "), "ERR no text to type"},
		{"too long", bus.StartLine("target", strings.Repeat("x", 1001)), "ERR text too long"},
		{"bad source", bus.StartLine("colemak", "hi"), "ERR invalid source layout"},
		{"malformed", "t nope", "ERR start request needs a source and text"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := bus.SendLine(tt.line)
			if err != nil {
				t.Fatalf("send failed: %v", err)
			}
			if !strings.HasPrefix(out, tt.want) {
				t.Errorf("response = %q, want prefix %q", out, tt.want)
			}
		})
	}

	if out, _ := bus.SendLine(bus.StartLine("target", "first")); out != "OK started" {
		t.Fatalf("first start = %q", out)
	}
	if out, _ := bus.SendLine(bus.StartLine("target", "second")); out != "OK already_running" {
		t.Errorf("second start = %q, want OK already_running", out)
	}
}

func TestDaemon_SecondInstanceRefused(t *testing.T) {
	startDaemon(t, 1)

	other := New(&idleController{}, "", nil)
	if err := other.Run(); err == nil || !strings.Contains(err.Error(), "already running") {
		t.Errorf("second Run() error = %v, want already running", err)
	}
}

func TestDaemon_Quit(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", t.TempDir())
	xdg.Reload()
	t.Cleanup(xdg.Reload)

	ctrl := &idleController{events: make(chan session.Event)}
	d := New(ctrl, "", nil)
	errCh := make(chan error, 1)
	go func() { errCh <- d.Run() }()

	testutil.WaitForCondition(t, func() bool {
		_, err := bus.SendCommand(bus.CmdVersion)
		return err == nil
	}, 3*time.Second)

	out, err := bus.SendCommand(bus.CmdQuit)
	if err != nil {
		t.Fatalf("quit failed: %v", err)
	}
	if out != "OK quitting" {
		t.Errorf("quit = %q", out)
	}

	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("daemon did not exit")
	}
	if !ctrl.shutdown {
		t.Error("controller was not shut down")
	}
	if _, err := bus.ReadPid(); err == nil {
		t.Error("pid file should be removed on exit")
	}
}

func TestSystemdNotifyLoop_Unsupported(t *testing.T) {
	t.Setenv("NOTIFY_SOCKET", "")
	if err := systemdNotifyLoop(context.Background()); err != nil {
		t.Errorf("systemdNotifyLoop() without systemd = %v, want nil", err)
	}
}

// idleController never runs anything.
type idleController struct {
	events   chan session.Event
	shutdown bool
}

func (c *idleController) Start(session.Request) (bool, error) { return false, nil }
func (c *idleController) State() session.State               { return session.State{Status: session.Idle} }
func (c *idleController) Events() <-chan session.Event {
	if c.events == nil {
		c.events = make(chan session.Event)
	}
	return c.events
}
func (c *idleController) Shutdown() {
	if !c.shutdown {
		c.shutdown = true
		close(c.events)
	}
}
