package testutil

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/leonardotrapani/keysim/internal/config"
)

// TestConfig returns a valid configuration that never touches the host:
// no layout backend, no elevation and log-only notifications.
func TestConfig() *config.Config {
	c := config.DefaultConfig()
	c.Session.Countdown = 1
	c.Session.ReadyDelay = 10 * time.Millisecond
	c.Layout.Backend = "none"
	c.Layout.SettleDelay = 0
	c.Layout.RestoreDelay = 0
	c.Injection.Elevate = false
	c.Injection.CheckDaemon = false
	c.Injection.StartDelay = 0
	c.Injection.KeyDelay = 0
	c.Injection.Timeout = 5 * time.Second
	c.Notifications.Type = "log"
	c.History.Enabled = false
	return c
}

// TestConfigWithInvalidValues returns a config with invalid values for testing validation
func TestConfigWithInvalidValues() *config.Config {
	c := TestConfig()
	c.Session.MaxChars = 0        // Invalid
	c.Layout.Backend = "xdotool"  // Invalid
	c.Injection.Command = ""      // Invalid
	c.Notifications.Type = "beep" // Invalid
	return c
}

// WriteScript writes an executable shell script named name into dir and
// returns its path. It stands in for host tools such as ydotool.
func WriteScript(t *testing.T, dir, name, body string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0755); err != nil {
		t.Fatalf("Failed to write script %s: %v", name, err)
	}
	return path
}

// TestContext returns a context with timeout for testing
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 5*time.Second)
}

// WaitForCondition waits for a condition to be true or times out
func WaitForCondition(t *testing.T, condition func() bool, timeout time.Duration) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			t.Fatalf("Condition not met within %v", timeout)
		default:
			if condition() {
				return
			}
			time.Sleep(10 * time.Millisecond)
		}
	}
}

// CaptureOutput captures stdout for testing
func CaptureOutput(t *testing.T, fn func()) string {
	t.Helper()

	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = old

	out, _ := io.ReadAll(r)
	return string(out)
}
