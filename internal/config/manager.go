package config

import (
	"context"
	"path/filepath"
	"slices"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Manager holds the live configuration and reloads it when the file changes.
type Manager struct {
	mu       sync.RWMutex
	config   *Config
	path     string
	onReload []func(*Config)
	watcher  *fsnotify.Watcher
	wg       sync.WaitGroup
	log      *zap.SugaredLogger
}

// NewManager loads path. An invalid file is reported but still used, the same
// way the daemon would have run with it before.
func NewManager(path string, log *zap.SugaredLogger) (*Manager, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	log = log.Named("config")

	config, err := LoadFile(path, log)
	if err != nil {
		log.Errorw("failed to load initial configuration", "error", err)
		return nil, err
	}

	if err := config.Validate(); err != nil {
		log.Warnw("validation warning", "error", err)
	}

	return &Manager{
		config: config,
		path:   path,
		log:    log,
	}, nil
}

func (m *Manager) GetConfig() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// Return a copy to prevent external modification
	configCopy := *m.config
	return &configCopy
}

// OnReload registers fn to run with every successfully reloaded config.
func (m *Manager) OnReload(fn func(*Config)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onReload = append(m.onReload, fn)
}

func (m *Manager) StartWatching(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	// editors replace the file, so watch the directory
	if err := watcher.Add(filepath.Dir(m.path)); err != nil {
		watcher.Close()
		return err
	}
	m.watcher = watcher

	m.wg.Add(1)
	go m.watchLoop(ctx)

	m.log.Infow("watching for changes", "path", m.path)
	return nil
}

func (m *Manager) Stop() {
	if m.watcher != nil {
		m.watcher.Close()
	}
	m.wg.Wait()
}

func (m *Manager) watchLoop(ctx context.Context) {
	defer m.wg.Done()
	configFileName := filepath.Base(m.path)

	for {
		select {
		case event, ok := <-m.watcher.Events:
			if !ok {
				return
			}

			if filepath.Base(event.Name) != configFileName {
				continue
			}

			// Only react to Write and Create events (ignore Chmod, Remove, etc.)
			if event.Op&fsnotify.Write == fsnotify.Write || event.Op&fsnotify.Create == fsnotify.Create {
				m.log.Infow("file change detected, reloading", "event", event.Op.String())
				m.reloadConfig()
			}

		case err, ok := <-m.watcher.Errors:
			if !ok {
				return
			}
			m.log.Warnw("watcher error", "error", err)

		case <-ctx.Done():
			return
		}
	}
}

func (m *Manager) reloadConfig() {
	newConfig, err := LoadFile(m.path, m.log)
	if err != nil {
		m.log.Warnw("failed to reload config", "error", err)
		return
	}

	if err := newConfig.Validate(); err != nil {
		m.log.Warnw("invalid config after reload, keeping previous", "error", err)
		return
	}

	m.mu.Lock()
	m.config = newConfig
	callbacks := slices.Clone(m.onReload)
	m.mu.Unlock()

	for _, fn := range callbacks {
		configCopy := *newConfig
		fn(&configCopy)
	}

	m.log.Info("configuration successfully reloaded")
}
