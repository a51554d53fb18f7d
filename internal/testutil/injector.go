package testutil

import (
	"context"
	"sync"

	"github.com/leonardotrapani/keysim/internal/injection"
)

// MockInjector implements injection.Injector for testing
type MockInjector struct {
	InjectedTexts  []string
	InjectError    error
	AvailableError error
	// InjectFunc, when set, runs after the text is recorded and its result
	// is returned instead of InjectError.
	InjectFunc func(ctx context.Context, text string) error
	// AvailableFunc, when set, replaces AvailableError.
	AvailableFunc func() error

	mu sync.Mutex
}

var _ injection.Injector = (*MockInjector)(nil)

func NewMockInjector() *MockInjector {
	return &MockInjector{}
}

func (m *MockInjector) Available() error {
	if m.AvailableFunc != nil {
		return m.AvailableFunc()
	}
	return m.AvailableError
}

func (m *MockInjector) Inject(ctx context.Context, text string) error {
	m.mu.Lock()
	m.InjectedTexts = append(m.InjectedTexts, text)
	fn := m.InjectFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, text)
	}
	return m.InjectError
}

func (m *MockInjector) GetInjectedTexts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]string, len(m.InjectedTexts))
	copy(result, m.InjectedTexts)
	return result
}

// BlockingInject returns an InjectFunc that waits for ctx or release.
func BlockingInject(release <-chan struct{}) func(ctx context.Context, text string) error {
	return func(ctx context.Context, text string) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-release:
			return nil
		}
	}
}
