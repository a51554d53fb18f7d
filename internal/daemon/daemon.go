package daemon

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	sddaemon "github.com/coreos/go-systemd/v22/daemon"
	"github.com/leonardotrapani/keysim/internal/bus"
	"github.com/leonardotrapani/keysim/internal/remap"
	"github.com/leonardotrapani/keysim/internal/session"
	"go.uber.org/zap"
)

// Controller is the part of session.Controller the daemon drives.
type Controller interface {
	Start(req session.Request) (bool, error)
	State() session.State
	Events() <-chan session.Event
	Shutdown()
}

type Daemon struct {
	ctrl          Controller
	defaultSource remap.Source
	log           *zap.SugaredLogger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(ctrl Controller, defaultSource remap.Source, log *zap.SugaredLogger) *Daemon {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	if defaultSource == "" {
		defaultSource = remap.Secondary
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Daemon{
		ctrl:          ctrl,
		defaultSource: defaultSource,
		log:           log.Named("daemon"),
		ctx:           ctx,
		cancel:        cancel,
	}
}

// Run serves the control socket until a quit request or SIGINT/SIGTERM. A
// running session is cancelled and its layout restored before Run returns.
func (d *Daemon) Run() error {
	if err := bus.CheckExistingDaemon(); err != nil {
		return err
	}

	ln, err := bus.Listen()
	if err != nil {
		return err
	}
	defer ln.Close()

	if err := bus.CreatePidFile(); err != nil {
		return fmt.Errorf("failed to create PID file: %w", err)
	}
	defer bus.RemovePidFile()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			d.log.Infow("received signal, shutting down", "signal", sig.String())
			d.cancel()
		case <-d.ctx.Done():
		}
	}()

	// Close the listener when context is done
	go func() {
		<-d.ctx.Done()
		ln.Close()
	}()

	d.wg.Add(2)
	go d.logEvents()
	go func() {
		defer d.wg.Done()
		if err := systemdNotifyLoop(d.ctx); err != nil && !errors.Is(err, context.Canceled) {
			d.log.Warnw("systemd notify", "error", err)
		}
	}()

	d.log.Infow("daemon started", "proto", bus.ProtoVer)

	var runErr error
	for {
		c, err := ln.Accept()
		if err != nil {
			if d.ctx.Err() == nil {
				d.log.Errorw("accept error", "error", err)
				runErr = fmt.Errorf("accept failed: %w", err)
				d.cancel()
			}
			break
		}
		go d.handle(c)
	}

	d.log.Info("shutdown requested")
	_, _ = sddaemon.SdNotify(false, sddaemon.SdNotifyStopping)
	d.ctrl.Shutdown()
	d.wg.Wait()
	return runErr
}

// Stop asks Run to return.
func (d *Daemon) Stop() {
	d.cancel()
}

func (d *Daemon) handle(c net.Conn) {
	defer c.Close()
	_ = c.SetDeadline(time.Now().Add(10 * time.Second))

	line, err := bufio.NewReader(c).ReadString('\n')
	if err != nil {
		d.log.Warnw("client read error", "error", err)
		fmt.Fprintf(c, "ERR read_error: %v\n", err)
		return
	}
	line = strings.TrimSuffix(line, "\n")
	if len(line) == 0 {
		fmt.Fprint(c, "ERR empty\n")
		return
	}

	fmt.Fprint(c, d.respond(line)+"\n")
}

func (d *Daemon) respond(line string) string {
	switch cmd := line[0]; cmd {
	case bus.CmdStatus:
		st := d.ctrl.State()
		return fmt.Sprintf("STATUS state=%s remaining=%d", st.Status, st.Remaining)
	case bus.CmdVersion:
		return "STATUS proto=" + bus.ProtoVer
	case bus.CmdType:
		return d.start(line)
	case bus.CmdQuit:
		d.log.Info("quit requested")
		d.cancel()
		return "OK quitting"
	default:
		d.log.Warnw("unknown command", "command", string(cmd))
		return fmt.Sprintf("ERR unknown=%c", cmd)
	}
}

func (d *Daemon) start(line string) string {
	source, text, err := bus.ParseStartLine(line)
	if err != nil {
		return "ERR " + err.Error()
	}
	src := remap.Source(source)
	if source == "-" {
		src = d.defaultSource
	}

	started, err := d.ctrl.Start(session.Request{Text: text, Source: src})
	switch {
	case err != nil:
		d.log.Infow("start rejected", "error", err)
		return "ERR " + oneLine(err.Error())
	case !started:
		return "OK already_running"
	default:
		return "OK started"
	}
}

// logEvents drains the controller's events until Shutdown closes the stream.
func (d *Daemon) logEvents() {
	defer d.wg.Done()
	for e := range d.ctrl.Events() {
		switch e.Kind {
		case session.EventState:
			d.log.Debugw("state", "state", e.State.String())
		case session.EventTick:
			d.log.Infow(e.Message, "remaining", e.Remaining)
		case session.EventStatus:
			d.log.Info(e.Message)
			_, _ = sddaemon.SdNotify(false, "STATUS="+e.Message)
		case session.EventDone:
			if e.OK {
				d.log.Info("session completed")
			} else {
				d.log.Warnw("session failed", "reason", e.Reason)
			}
		}
	}
}

func systemdNotifyLoop(ctx context.Context) error {
	// tell systemd that we're ready
	supported, err := sddaemon.SdNotify(false, sddaemon.SdNotifyReady)
	if err != nil {
		return fmt.Errorf("notify systemd: %w", err)
	}
	if !supported {
		return nil
	}

	_, _ = sddaemon.SdNotify(false, "STATUS="+session.StatusReady)

	t, err := sddaemon.SdWatchdogEnabled(false)
	if err != nil {
		return fmt.Errorf("check watchdog: %w", err)
	}
	// if watchdog is not enabled, we don't need to notify it
	if t == 0 {
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-time.After(t / 2):
			_, err := sddaemon.SdNotify(false, sddaemon.SdNotifyWatchdog)
			if err != nil {
				return fmt.Errorf("notify watchdog: %w", err)
			}
		}
	}
}

func oneLine(s string) string {
	return strings.ReplaceAll(s, "\n", " ")
}
