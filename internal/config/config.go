package config

import "time"

// Config holds the application configuration.
type Config struct {
	BrowserAddr string        `yaml:"browser_addr"`
	ExportDir   string        `yaml:"export_dir"`
	HistoryDB   string        `yaml:"history_db"`
	LogLevel    string        `yaml:"log_level"`
	LogFile     string        `yaml:"log_file"`
	DialTimeout time.Duration `yaml:"dial_timeout"`
	Theme       string        `yaml:"theme"`
}

// DefaultConfig returns the default configuration. Paths are left empty
// and resolved against the user's directories by Resolve.
func DefaultConfig() Config {
	return Config{
		BrowserAddr: "127.0.0.1:9222",
		LogLevel:    "info",
		DialTimeout: 10 * time.Second,
		Theme:       "catppuccin-mocha",
	}
}
