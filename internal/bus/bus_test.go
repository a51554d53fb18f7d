package bus

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/adrg/xdg"
)

func TestPidManagerBasics(t *testing.T) {
	tempDir := t.TempDir()
	testPidManager := &pidManager{
		path: filepath.Join(tempDir, PidName),
	}

	t.Run("create and remove PID file", func(t *testing.T) {
		if err := testPidManager.create(); err != nil {
			t.Fatalf("create failed: %v", err)
		}

		pidData, err := os.ReadFile(testPidManager.path)
		if err != nil {
			t.Fatalf("failed to read PID file: %v", err)
		}
		expectedPid := strconv.Itoa(os.Getpid())
		if string(pidData) != expectedPid {
			t.Errorf("PID file contains %q, expected %q", string(pidData), expectedPid)
		}

		if err := testPidManager.remove(); err != nil {
			t.Fatalf("remove failed: %v", err)
		}
		if _, err := os.Stat(testPidManager.path); !os.IsNotExist(err) {
			t.Error("PID file should not exist after removal")
		}
	})

	t.Run("checkExisting with no PID file", func(t *testing.T) {
		if err := testPidManager.checkExisting(); err != nil {
			t.Errorf("checkExisting should not error when no PID file exists: %v", err)
		}
	})

	t.Run("checkExisting with current process", func(t *testing.T) {
		if err := testPidManager.create(); err != nil {
			t.Fatalf("create failed: %v", err)
		}
		defer testPidManager.remove()

		if err := testPidManager.checkExisting(); err == nil {
			t.Error("checkExisting should fail when process is running")
		}
	})

	t.Run("checkExisting with stale PID file", func(t *testing.T) {
		if err := os.WriteFile(testPidManager.path, []byte("4194303"), 0o600); err != nil {
			t.Fatalf("failed to write stale PID file: %v", err)
		}

		if err := testPidManager.checkExisting(); err != nil {
			t.Errorf("checkExisting should succeed with stale PID: %v", err)
		}
		if _, err := os.Stat(testPidManager.path); !os.IsNotExist(err) {
			t.Error("stale PID file should be removed")
		}
	})

	t.Run("checkExisting with invalid PID file", func(t *testing.T) {
		if err := os.WriteFile(testPidManager.path, []byte("invalid"), 0o600); err != nil {
			t.Fatalf("failed to write invalid PID file: %v", err)
		}

		if err := testPidManager.checkExisting(); err != nil {
			t.Errorf("checkExisting should succeed with invalid PID: %v", err)
		}
		if _, err := os.Stat(testPidManager.path); !os.IsNotExist(err) {
			t.Error("invalid PID file should be removed")
		}
	})
}

func TestIsProcessAlive(t *testing.T) {
	pm := &pidManager{}

	if !pm.isProcessAlive(os.Getpid()) {
		t.Error("current process should be alive")
	}
	// above the kernel's pid_max ceiling
	if pm.isProcessAlive(4194303) {
		t.Error("non-existent process should not be alive")
	}
	if pm.isProcessAlive(0) || pm.isProcessAlive(-1) {
		t.Error("non-positive pids are never alive")
	}
}

func TestPaths_UseRuntimeDir(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", dir)
	xdg.Reload()
	t.Cleanup(xdg.Reload)

	sp, err := SockPath()
	if err != nil {
		t.Fatalf("SockPath() error = %v", err)
	}
	if want := filepath.Join(dir, "keysim", SockName); sp != want {
		t.Errorf("SockPath() = %q, want %q", sp, want)
	}

	pp, err := PidPath()
	if err != nil {
		t.Fatalf("PidPath() error = %v", err)
	}
	if filepath.Dir(pp) != filepath.Dir(sp) {
		t.Errorf("pid file %q should sit next to the socket %q", pp, sp)
	}
}

// serve answers one request per connection with reply(line).
func serve(t *testing.T, sm *socketManager, reply func(line string) string) {
	t.Helper()

	ln, err := sm.listen()
	if err != nil {
		t.Fatalf("listen failed: %v", err)
	}
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func(c net.Conn) {
				defer c.Close()
				line, err := bufio.NewReader(c).ReadString('\n')
				if err != nil {
					return
				}
				fmt.Fprint(c, reply(strings.TrimSuffix(line, "\n"))+"\n")
			}(conn)
		}
	}()
}

func TestSocketManager_Send(t *testing.T) {
	sm := &socketManager{path: filepath.Join(t.TempDir(), SockName)}

	serve(t, sm, func(line string) string {
		switch line[0] {
		case CmdStatus:
			return "STATUS state=idle remaining=0"
		case CmdVersion:
			return "STATUS proto=" + ProtoVer
		case CmdType:
			source, text, err := ParseStartLine(line)
			if err != nil {
				return "ERR " + err.Error()
			}
			return fmt.Sprintf("OK %s %d", source, len([]rune(text)))
		case CmdQuit:
			return "OK quitting"
		default:
			return fmt.Sprintf("ERR unknown=%c", line[0])
		}
	})

	tests := []struct {
		line     string
		expected string
	}{
		{"s", "STATUS state=idle remaining=0"},
		{"v", "STATUS proto=" + ProtoVer},
		{StartLine("secondary", "árvíztűrő\ntükörfúrógép"), "OK secondary 22"},
		{"q", "OK quitting"},
		{"x", "ERR unknown=x"},
	}

	for _, tt := range tests {
		got, err := sm.send(tt.line)
		if err != nil {
			t.Errorf("send(%q) error = %v", tt.line, err)
			continue
		}
		if got != tt.expected {
			t.Errorf("send(%q) = %q, want %q", tt.line, got, tt.expected)
		}
	}
}

func TestSocketManager_DialWithoutListener(t *testing.T) {
	sm := &socketManager{path: filepath.Join(t.TempDir(), SockName)}
	if _, err := sm.dial(); err == nil {
		t.Error("dial should fail when no listener exists")
	}
}

func TestStartLine_RoundTrip(t *testing.T) {
	texts := []string{
		"hello",
		`quote " and backslash \`,
		"multi\nline\ttext",
		"aÁz",
		" padded ",
	}

	for _, text := range texts {
		line := StartLine("target", text)
		if strings.Contains(line, "\n") {
			t.Errorf("StartLine(%q) spans lines: %q", text, line)
		}
		source, got, err := ParseStartLine(line)
		if err != nil {
			t.Errorf("ParseStartLine(%q) error = %v", line, err)
			continue
		}
		if source != "target" || got != text {
			t.Errorf("ParseStartLine(%q) = %q, %q", line, source, got)
		}
	}
}

func TestParseStartLine_Errors(t *testing.T) {
	for _, line := range []string{
		"t",
		"t secondary",
		`t secondary unquoted`,
		`s secondary "x"`,
		`t  "x"`,
	} {
		if _, _, err := ParseStartLine(line); err == nil {
			t.Errorf("ParseStartLine(%q) expected error", line)
		}
	}
}

func TestParseResponse(t *testing.T) {
	kind, fields := ParseResponse("STATUS state=counting_down remaining=3")
	if kind != "STATUS" || fields["state"] != "counting_down" || fields["remaining"] != "3" {
		t.Errorf("ParseResponse() = %q, %v", kind, fields)
	}

	kind, fields = ParseResponse("ERR text too long")
	if kind != "ERR" || fields[""] != "text too long" {
		t.Errorf("ParseResponse() = %q, %v", kind, fields)
	}

	if kind, _ := ParseResponse(""); kind != "" {
		t.Errorf("ParseResponse(\"\") kind = %q", kind)
	}
}
