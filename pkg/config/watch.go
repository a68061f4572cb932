package config

import (
	"fmt"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/marmos91/nfscall/internal/logger"
)

// Watch loads configPath and calls onChange with the re-validated
// configuration every time the file is written. Invalid edits are logged
// and skipped; the previous configuration stays in effect.
//
// The watch lives for the rest of the process.
func Watch(configPath string, onChange func(*Config)) (*Config, error) {
	if configPath == "" {
		configPath = GetDefaultConfigPath()
	}

	v := viper.New()
	if err := setupViper(v, configPath); err != nil {
		return nil, err
	}
	found, err := readConfigFile(v)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("cannot watch %s: file does not exist", configPath)
	}
	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		next, err := decode(v)
		if err != nil {
			logger.Warn("Ignoring invalid configuration change", logger.KeyPath, e.Name, logger.Err(err))
			return
		}
		logger.Info("Configuration reloaded", logger.KeyPath, e.Name)
		onChange(next)
	})
	v.WatchConfig()

	return cfg, nil
}
