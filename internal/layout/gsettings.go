package layout

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const inputSourcesSchema = "org.gnome.desktop.input-sources"

// GSettings talks to GNOME through the gsettings binary.
type GSettings struct {
	Path    string
	Schema  string
	Timeout time.Duration
}

func NewGSettings() *GSettings {
	return &GSettings{
		Path:    "gsettings",
		Schema:  inputSourcesSchema,
		Timeout: 3 * time.Second,
	}
}

func (g *GSettings) runCommand(ctx context.Context, args ...string) (string, error) {
	path := g.Path
	if path == "" {
		path = "gsettings"
	}
	if g.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.Timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if _, lookErr := exec.LookPath(path); lookErr != nil {
			return "", fmt.Errorf("%w: %v", ErrUnavailable, lookErr)
		}
		return "", fmt.Errorf("gsettings %s: %w, stderr: %s", args[0], err, strings.TrimSpace(stderr.String()))
	}

	return strings.TrimSpace(stdout.String()), nil
}

func (g *GSettings) schema() string {
	if g.Schema == "" {
		return inputSourcesSchema
	}
	return g.Schema
}

func (g *GSettings) Sources(ctx context.Context) ([]Source, error) {
	out, err := g.runCommand(ctx, "get", g.schema(), "sources")
	if err != nil {
		return nil, err
	}
	return ParseSources(out)
}

func (g *GSettings) Current(ctx context.Context) (int, error) {
	out, err := g.runCommand(ctx, "get", g.schema(), "current")
	if err != nil {
		return 0, err
	}
	return ParseCurrent(out)
}

func (g *GSettings) SetSources(ctx context.Context, sources []Source) error {
	_, err := g.runCommand(ctx, "set", g.schema(), "sources", FormatSources(sources))
	return err
}

func (g *GSettings) SetCurrent(ctx context.Context, idx int) error {
	if idx < 0 {
		return fmt.Errorf("invalid layout index %d", idx)
	}
	_, err := g.runCommand(ctx, "set", g.schema(), "current", strconv.Itoa(idx))
	return err
}

var sourceTuple = regexp.MustCompile(`\(\s*'([^']*)'\s*,\s*'([^']*)'\s*\)`)

// ParseSources parses the GVariant a(ss) printed by gsettings, for example
// [('xkb', 'us'), ('xkb', 'hu')] or @a(ss) [].
func ParseSources(s string) ([]Source, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "@a(ss)"))
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return nil, fmt.Errorf("unexpected sources value %q", s)
	}

	matches := sourceTuple.FindAllStringSubmatch(s, -1)
	sources := make([]Source, 0, len(matches))
	for _, m := range matches {
		sources = append(sources, Source{Type: m[1], ID: m[2]})
	}

	if len(sources) == 0 && strings.TrimSpace(s[1:len(s)-1]) != "" {
		return nil, fmt.Errorf("unexpected sources value %q", s)
	}
	return sources, nil
}

// FormatSources renders sources in the syntax gsettings set accepts.
func FormatSources(sources []Source) string {
	if len(sources) == 0 {
		return "@a(ss) []"
	}
	parts := make([]string, len(sources))
	for i, src := range sources {
		parts[i] = src.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// ParseCurrent parses a GVariant uint32 such as "uint32 1".
func ParseCurrent(s string) (int, error) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "uint32"))
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("unexpected current value %q: %w", s, err)
	}
	return n, nil
}
