package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

type Config struct {
	DBPath   string   `toml:"db_path"`
	HomeZone string   `toml:"home_zone"`
	Zones    []string `toml:"zones"`
}

func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DBPath: filepath.Join(home, ".config", "tzsched", "cities.db"),
	}

	cfgPath := filepath.Join(home, ".config", "tzsched", "config.toml")
	if _, err := os.Stat(cfgPath); err == nil {
		if _, err := toml.DecodeFile(cfgPath, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", cfgPath, err)
		}
	}

	cfg.DBPath = expandHome(cfg.DBPath, home)

	return cfg, nil
}

func expandHome(path, home string) string {
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		return filepath.Join(home, path[2:])
	}
	return path
}
