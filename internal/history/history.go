package history

import (
	"context"
	"sort"
	"sync"
	"time"
)

type Outcome string

const (
	Completed Outcome = "completed"
	Failed    Outcome = "failed"
)

// Entry records one finished typing session.
type Entry struct {
	ID         int64
	StartedAt  time.Time
	FinishedAt time.Time
	Source     string
	Chars      int
	Outcome    Outcome
	Reason     string
}

// Store persists session history.
type Store interface {
	Record(ctx context.Context, e Entry) error
	Recent(ctx context.Context, limit int) ([]Entry, error)
	Close() error
}

// Memory is an in-process Store for tests. Disabled history uses no store
// at all.
type Memory struct {
	mu      sync.Mutex
	entries []Entry
	nextID  int64
}

func NewMemory() *Memory {
	return &Memory{nextID: 1}
}

func (m *Memory) Record(ctx context.Context, e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e.ID = m.nextID
	m.nextID++
	m.entries = append(m.entries, e)
	return nil
}

// Recent returns up to limit entries, newest first. A limit <= 0 returns all.
func (m *Memory) Recent(ctx context.Context, limit int) ([]Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := append([]Entry(nil), m.entries...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].StartedAt.After(out[j].StartedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) Close() error {
	return nil
}
