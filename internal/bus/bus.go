package bus

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/adrg/xdg"
)

const SockName = "control.sock"
const PidName = "keysim.pid"
const ProtoVer = "1"

const appDir = "keysim"

// Request commands. The first byte of a request line selects one.
const (
	CmdStatus  byte = 's'
	CmdVersion byte = 'v'
	CmdType    byte = 't'
	CmdQuit    byte = 'q'
)

// $XDG_RUNTIME_DIR/keysim/control.sock
func SockPath() (string, error) {
	return xdg.RuntimeFile(filepath.Join(appDir, SockName))
}

// $XDG_RUNTIME_DIR/keysim/keysim.pid
func PidPath() (string, error) {
	return xdg.RuntimeFile(filepath.Join(appDir, PidName))
}

type socketManager struct {
	path string
}

func newSocketManager() (*socketManager, error) {
	sp, err := SockPath()
	if err != nil {
		return nil, err
	}
	return &socketManager{path: sp}, nil
}

func (s *socketManager) listen() (net.Listener, error) {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return nil, err
	}
	_ = os.Remove(s.path) // stale socket from last run
	return net.Listen("unix", s.path)
}

func (s *socketManager) dial() (net.Conn, error) {
	return net.DialTimeout("unix", s.path, 2*time.Second)
}

// send writes one request line and reads one response line.
func (s *socketManager) send(line string) (string, error) {
	c, err := s.dial()
	if err != nil {
		return "", err
	}
	defer c.Close()
	_ = c.SetDeadline(time.Now().Add(5 * time.Second))

	if _, err := c.Write([]byte(line + "\n")); err != nil {
		return "", err
	}

	resp, err := bufio.NewReader(c).ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(resp, "\n"), nil
}

func Listen() (net.Listener, error) {
	sm, err := newSocketManager()
	if err != nil {
		return nil, err
	}
	return sm.listen()
}

func Dial() (net.Conn, error) {
	sm, err := newSocketManager()
	if err != nil {
		return nil, err
	}
	return sm.dial()
}

func SendCommand(cmd byte) (string, error) {
	return SendLine(string(cmd))
}

// SendLine sends a raw request line and returns the response without its
// trailing newline.
func SendLine(line string) (string, error) {
	sm, err := newSocketManager()
	if err != nil {
		return "", err
	}
	return sm.send(line)
}

// StartLine builds the request that starts a typing session. The text is
// quoted so it fits on one line.
func StartLine(source, text string) string {
	return fmt.Sprintf("%c %s %s", CmdType, source, strconv.Quote(text))
}

// ParseStartLine is the inverse of StartLine.
func ParseStartLine(line string) (source, text string, err error) {
	rest, ok := strings.CutPrefix(line, string(CmdType)+" ")
	if !ok {
		return "", "", errors.New("malformed start request")
	}
	source, quoted, ok := strings.Cut(rest, " ")
	if !ok || source == "" {
		return "", "", errors.New("start request needs a source and text")
	}
	text, err = strconv.Unquote(quoted)
	if err != nil {
		return "", "", fmt.Errorf("bad text quoting: %w", err)
	}
	return source, text, nil
}

// ParseResponse splits "STATUS state=idle remaining=0" into its kind and
// key=value fields. Words without '=' are stored under the empty key.
func ParseResponse(resp string) (kind string, fields map[string]string) {
	words := strings.Fields(resp)
	fields = make(map[string]string)
	if len(words) == 0 {
		return "", fields
	}
	for _, w := range words[1:] {
		k, v, ok := strings.Cut(w, "=")
		if !ok {
			fields[""] = strings.TrimSpace(fields[""] + " " + w)
			continue
		}
		fields[k] = v
	}
	return words[0], fields
}

type pidManager struct {
	path string
}

func newPidManager() (*pidManager, error) {
	pp, err := PidPath()
	if err != nil {
		return nil, err
	}
	return &pidManager{path: pp}, nil
}

func (p *pidManager) create() error {
	if err := os.MkdirAll(filepath.Dir(p.path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(p.path, []byte(strconv.Itoa(os.Getpid())), 0o600)
}

func (p *pidManager) remove() error {
	return os.Remove(p.path)
}

// checkExisting fails if the pid file names a live process. Stale or
// unreadable pid files are removed.
func (p *pidManager) checkExisting() error {
	pidData, err := os.ReadFile(p.path)
	if os.IsNotExist(err) {
		return nil // no existing daemon
	}
	if err != nil {
		return err
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(pidData)))
	if err != nil || !p.isProcessAlive(pid) {
		_ = os.Remove(p.path)
		return nil
	}

	return fmt.Errorf("daemon already running with PID %d", pid)
}

func (p *pidManager) isProcessAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	// EPERM means the process exists but belongs to someone else
	return err == nil || errors.Is(err, syscall.EPERM)
}

func CheckExistingDaemon() error {
	pm, err := newPidManager()
	if err != nil {
		return err
	}
	return pm.checkExisting()
}

func CreatePidFile() error {
	pm, err := newPidManager()
	if err != nil {
		return err
	}
	return pm.create()
}

func RemovePidFile() error {
	pm, err := newPidManager()
	if err != nil {
		return err
	}
	return pm.remove()
}

// ReadPid returns the pid recorded by a running daemon.
func ReadPid() (int, error) {
	pp, err := PidPath()
	if err != nil {
		return 0, err
	}
	data, err := os.ReadFile(pp)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(string(data)))
}
