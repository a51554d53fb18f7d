package main

import (
	"fmt"
	"time"

	"github.com/leonardotrapani/keysim/internal/config"
	"github.com/leonardotrapani/keysim/internal/history"
	"github.com/leonardotrapani/keysim/internal/history/sqlite"
	"github.com/leonardotrapani/keysim/internal/injection"
	"github.com/leonardotrapani/keysim/internal/layout"
	"github.com/leonardotrapani/keysim/internal/notify"
	"github.com/leonardotrapani/keysim/internal/remap"
	"github.com/leonardotrapani/keysim/internal/session"
	"go.uber.org/zap"
)

// app is one controller wired from a configuration.
type app struct {
	ctrl    *session.Controller
	history history.Store
	source  remap.Source
	log     *zap.SugaredLogger
}

func newApp(cfg *config.Config, log *zap.SugaredLogger) (*app, error) {
	source, err := remap.ParseSource(cfg.Session.DefaultSource)
	if err != nil {
		return nil, err
	}

	hist, err := openHistory(cfg, log)
	if err != nil {
		// typing works without history
		log.Warnw("history disabled", "error", err)
		hist = nil
	}

	ctrl := session.New(sessionConfig(cfg), session.Deps{
		Layouts:  newLayoutStore(cfg, log),
		Injector: injection.NewInjector(cfg.ToInjectionConfig()),
		Table:    remap.Hungarian,
		Notifier: notify.New(cfg.Notifications.Type, cfg.Notifications.Enabled, log),
		History:  hist,
		Log:      log,
	})

	return &app{ctrl: ctrl, history: hist, source: source, log: log}, nil
}

// reload applies a changed configuration to the running controller. The
// notifier, history and default source keep their startup values.
func (a *app) reload(cfg *config.Config) {
	a.ctrl.Reload(sessionConfig(cfg), injection.NewInjector(cfg.ToInjectionConfig()), newLayoutStore(cfg, a.log))
	a.log.Infow("configuration reloaded",
		"countdown", cfg.Session.Countdown,
		"backend", cfg.Layout.Backend,
		"target", cfg.Layout.Target)
}

func (a *app) Close() {
	a.ctrl.Shutdown()
	if a.history != nil {
		if err := a.history.Close(); err != nil {
			a.log.Warnw("close history", "error", err)
		}
	}
}

func sessionConfig(cfg *config.Config) session.Config {
	return session.Config{
		Countdown:    cfg.Session.Countdown,
		TickInterval: time.Second,
		ReadyDelay:   cfg.Session.ReadyDelay,
		MaxChars:     cfg.Session.MaxChars,
		TargetLayout: cfg.Layout.Target,
	}
}

func newFacility(cfg *config.Config) layout.Facility {
	switch cfg.Layout.Backend {
	case "none":
		return layout.None{}
	default:
		g := layout.NewGSettings()
		if cfg.Layout.CommandTimeout > 0 {
			g.Timeout = cfg.Layout.CommandTimeout
		}
		return g
	}
}

func newLayoutStore(cfg *config.Config, log *zap.SugaredLogger) *layout.Store {
	store := layout.NewStore(newFacility(cfg), log)
	store.SettleDelay = cfg.Layout.SettleDelay
	store.RestoreDelay = cfg.Layout.RestoreDelay
	return store
}

func openHistory(cfg *config.Config, log *zap.SugaredLogger) (history.Store, error) {
	if !cfg.History.Enabled {
		return nil, nil
	}
	path, err := cfg.HistoryPath()
	if err != nil {
		return nil, err
	}
	store, err := sqlite.NewStore(path, log.Named("history"))
	if err != nil {
		return nil, fmt.Errorf("open history %s: %w", path, err)
	}
	return store, nil
}

func loadConfig(log *zap.SugaredLogger) (*config.Config, error) {
	cfg, err := config.Load(log)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
