package layout

import (
	"context"
	"fmt"
	"sync"
)

// Memory is an in-process Facility. It records every write and can be told
// to fail, which makes it the test double for sessions.
type Memory struct {
	mu      sync.Mutex
	sources []Source
	current int

	// ReadErr, when set, is returned by Sources and Current.
	ReadErr error
	// CurrentErr, when set, is returned by Current only.
	CurrentErr error
	// WriteErr, when set, is returned by SetSources and SetCurrent.
	WriteErr error

	ops []string
}

func NewMemory(sources []Source, current int) *Memory {
	return &Memory{
		sources: append([]Source(nil), sources...),
		current: current,
	}
}

func (m *Memory) Sources(ctx context.Context) ([]Source, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReadErr != nil {
		return nil, m.ReadErr
	}
	return append([]Source(nil), m.sources...), nil
}

func (m *Memory) Current(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReadErr != nil {
		return 0, m.ReadErr
	}
	if m.CurrentErr != nil {
		return 0, m.CurrentErr
	}
	return m.current, nil
}

func (m *Memory) SetSources(ctx context.Context, sources []Source) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops = append(m.ops, fmt.Sprintf("sources=%d", len(sources)))
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.sources = append([]Source(nil), sources...)
	return nil
}

func (m *Memory) SetCurrent(ctx context.Context, idx int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ops = append(m.ops, fmt.Sprintf("current=%d", idx))
	if m.WriteErr != nil {
		return m.WriteErr
	}
	m.current = idx
	return nil
}

// State returns the stored sources and active index.
func (m *Memory) State() ([]Source, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Source(nil), m.sources...), m.current
}

// Ops returns the writes performed so far, in order.
func (m *Memory) Ops() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.ops...)
}

// None is a Facility for hosts without a supported layout mechanism.
type None struct{}

func (None) Sources(context.Context) ([]Source, error)  { return nil, ErrUnavailable }
func (None) Current(context.Context) (int, error)       { return 0, ErrUnavailable }
func (None) SetSources(context.Context, []Source) error { return ErrUnavailable }
func (None) SetCurrent(context.Context, int) error      { return ErrUnavailable }
