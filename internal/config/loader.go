package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Load loads configuration from ~/.config/curlcap/config.yaml and fills in
// default paths.
func Load() Config {
	cfg := DefaultConfig()

	home, err := os.UserHomeDir()
	if err != nil {
		return cfg
	}

	path := filepath.Join(home, ".config", "curlcap", "config.yaml")
	if data, err := os.ReadFile(path); err == nil {
		_ = yaml.Unmarshal(data, &cfg)
	}

	cfg.Resolve(home)
	return cfg
}

// Resolve fills empty paths with locations under home and expands a
// leading "~/".
func (c *Config) Resolve(home string) {
	data := filepath.Join(home, ".local", "share", "curlcap")
	if c.ExportDir == "" {
		c.ExportDir = filepath.Join(home, "curlcap")
	}
	if c.HistoryDB == "" {
		c.HistoryDB = filepath.Join(data, "exports.db")
	}
	if c.LogFile == "" {
		c.LogFile = filepath.Join(data, "curlcap.log")
	}
	c.ExportDir = expand(home, c.ExportDir)
	c.HistoryDB = expand(home, c.HistoryDB)
	c.LogFile = expand(home, c.LogFile)
}

func expand(home, p string) string {
	if len(p) >= 2 && p[:2] == "~/" {
		return filepath.Join(home, p[2:])
	}
	return p
}
