package injection

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type ydotool struct {
	config Config
}

// NewYdotool returns an Injector that shells out to ydotool, optionally
// through pkexec.
func NewYdotool(config Config) Injector {
	if config.Command == "" {
		config.Command = "ydotool"
	}
	if config.ElevateCommand == "" {
		config.ElevateCommand = "pkexec"
	}
	return &ydotool{config: config}
}

func (y *ydotool) Available() error {
	if _, err := exec.LookPath(y.config.Command); err != nil {
		return fmt.Errorf("%s not found: %w (install ydotool package)", y.config.Command, err)
	}

	if y.config.Elevate {
		if _, err := exec.LookPath(y.config.ElevateCommand); err != nil {
			return fmt.Errorf("%s not found: %w (install polkit or disable injection.elevate)", y.config.ElevateCommand, err)
		}
	}

	if !y.config.CheckDaemon {
		return nil
	}

	// Only check socket if ydotoold exists
	if _, err := exec.LookPath("ydotoold"); err == nil {
		socketPath := socketPath()
		if socketPath == "" {
			return fmt.Errorf("ydotoold socket not found - ensure ydotoold is running")
		}

		// ydotoold v1.0.4+ uses SOCK_DGRAM (unixgram) sockets.
		// Try unixgram first, then fall back to stream for older versions.
		conn, err := net.Dial("unixgram", socketPath)
		if err != nil {
			conn, err = net.DialTimeout("unix", socketPath, 500*time.Millisecond)
		}
		if err != nil {
			return fmt.Errorf("ydotoold not responding at %s: %w", socketPath, err)
		}
		conn.Close()
	}

	return nil
}

func socketPath() string {
	if sock := os.Getenv("YDOTOOL_SOCKET"); sock != "" {
		if _, err := os.Stat(sock); err == nil {
			return sock
		}
	}

	paths := []string{
		"/run/user/" + fmt.Sprint(os.Getuid()) + "/.ydotool_socket",
		"/tmp/.ydotool_socket",
	}

	if xdg := os.Getenv("XDG_RUNTIME_DIR"); xdg != "" {
		paths = append([]string{filepath.Join(xdg, ".ydotool_socket")}, paths...)
	}

	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	return ""
}

// command builds the argv for typing text:
//
//	[pkexec] ydotool type --key-delay ms -- text
func (y *ydotool) command(text string) (string, []string) {
	args := []string{"type", "--key-delay", millis(y.config.KeyDelay), "--", text}

	if !y.config.Elevate {
		return y.config.Command, args
	}

	// pkexec does not search PATH for the target program.
	bin := y.config.Command
	if resolved, err := exec.LookPath(bin); err == nil {
		if abs, err := filepath.Abs(resolved); err == nil {
			bin = abs
		}
	}
	return y.config.ElevateCommand, append([]string{bin}, args...)
}

func (y *ydotool) Inject(ctx context.Context, text string) error {
	if text == "" {
		return ErrEmptyText
	}

	// ydotool 1.x dropped "type --delay", so the start delay is waited here
	// and does not count against the timeout.
	if err := sleepContext(ctx, y.config.StartDelay); err != nil {
		return err
	}

	if y.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, y.config.Timeout)
		defer cancel()
	}

	name, args := y.command(text)
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// children of pkexec may hold the pipes open after the kill
	cmd.WaitDelay = time.Second

	err := cmd.Run()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ErrTimedOut
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			output := strings.TrimSpace(stderr.String())
			if output == "" {
				output = strings.TrimSpace(stdout.String())
			}
			return &ExitError{Command: filepath.Base(name), Code: exitErr.ExitCode(), Output: output}
		}
		return fmt.Errorf("%s failed: %w", filepath.Base(name), err)
	}

	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func millis(d time.Duration) string {
	return strconv.FormatInt(d.Milliseconds(), 10)
}
