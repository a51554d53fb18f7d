package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"
	"go.uber.org/zap"
)

var ErrConfigNotFound = errors.New("config not found")

// GetConfigPath returns $XDG_CONFIG_HOME/keysim/config.toml, creating the
// directory if needed.
func GetConfigPath() (string, error) {
	path, err := xdg.ConfigFile(filepath.Join("keysim", "config.toml"))
	if err != nil {
		return "", fmt.Errorf("failed to resolve config path: %w", err)
	}
	return path, nil
}

// DefaultHistoryPath returns $XDG_DATA_HOME/keysim/history.db.
func DefaultHistoryPath() (string, error) {
	path, err := xdg.DataFile(filepath.Join("keysim", "history.db"))
	if err != nil {
		return "", fmt.Errorf("failed to resolve history path: %w", err)
	}
	return path, nil
}

// Load reads the user's config file, creating it with defaults on first run,
// and applies environment overrides.
func Load(log *zap.SugaredLogger) (*Config, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Infow("no config file found, creating defaults", "path", configPath)
		if err := Save(configPath, DefaultConfig()); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to stat config file %s: %w", configPath, err)
	}

	return LoadFile(configPath, log)
}

// LoadFile reads path on top of the defaults, so keys missing from the file
// keep their default values.
func LoadFile(path string, log *zap.SugaredLogger) (*Config, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
	}

	log.Debugw("loading configuration", "path", path)
	config := DefaultConfig()
	meta, err := toml.DecodeFile(path, config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		log.Warnw("unknown config keys ignored", "keys", fmt.Sprint(undecoded))
	}

	if err := config.ApplyEnv(); err != nil {
		return nil, err
	}

	log.Debugw("configuration loaded", "path", path)
	return config, nil
}

// Save writes config to path in the commented layout used for new files.
func Save(path string, config *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(render(config)), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace config file: %w", err)
	}
	return nil
}
