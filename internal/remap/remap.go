package remap

import (
	"fmt"
	"sort"
	"strings"
)

// Source names the layout a piece of text was written for.
type Source string

const (
	// Secondary text was written as if typed on the alternate physical layout
	// and must be converted before injection.
	Secondary Source = "secondary"
	// Target text already matches the layout the injector assumes.
	Target Source = "target"
)

// ParseSource converts a user supplied label into a Source.
func ParseSource(s string) (Source, error) {
	switch Source(strings.ToLower(strings.TrimSpace(s))) {
	case Secondary:
		return Secondary, nil
	case Target:
		return Target, nil
	default:
		return "", fmt.Errorf("unknown layout source %q (must be secondary or target)", s)
	}
}

// Entry is a single row of a remap table.
type Entry struct {
	From rune
	To   string
}

// DuplicateKeyError is returned when a table lists the same key twice.
type DuplicateKeyError struct {
	Key    rune
	First  string
	Second string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate remap key %q (mapped to %q and %q)", e.Key, e.First, e.Second)
}

// Table is an immutable rune to keystroke mapping. Runes that are not in the
// table map to themselves.
type Table struct {
	m map[rune]string
}

// NewTable builds a table, rejecting duplicate keys and empty values.
func NewTable(entries []Entry) (*Table, error) {
	m := make(map[rune]string, len(entries))
	for _, e := range entries {
		if e.To == "" {
			return nil, fmt.Errorf("remap key %q has an empty value", e.From)
		}
		if prev, ok := m[e.From]; ok {
			return nil, &DuplicateKeyError{Key: e.From, First: prev, Second: e.To}
		}
		m[e.From] = e.To
	}
	return &Table{m: m}, nil
}

// MustTable is like NewTable but panics on an invalid entry list.
func MustTable(entries []Entry) *Table {
	t, err := NewTable(entries)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Table) Lookup(r rune) (string, bool) {
	s, ok := t.m[r]
	return s, ok
}

func (t *Table) Len() int {
	return len(t.m)
}

// Entries returns the table rows ordered by key.
func (t *Table) Entries() []Entry {
	out := make([]Entry, 0, len(t.m))
	for k, v := range t.m {
		out = append(out, Entry{From: k, To: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].From < out[j].From })
	return out
}

// Remap converts text written for src into the characters the injector has
// to type under the target layout. Each input rune produces its own output
// independently and in order.
func (t *Table) Remap(text string, src Source) string {
	if src == Target {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if mapped, ok := t.m[r]; ok {
			b.WriteString(mapped)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
