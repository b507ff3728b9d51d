package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	got := DefaultConfig()

	if got.BrowserAddr != "127.0.0.1:9222" {
		t.Fatalf("BrowserAddr = %q, want 127.0.0.1:9222", got.BrowserAddr)
	}
	if got.LogLevel != "info" {
		t.Fatalf("LogLevel = %q, want info", got.LogLevel)
	}
	if got.DialTimeout != 10*time.Second {
		t.Fatalf("DialTimeout = %s, want 10s", got.DialTimeout)
	}
}

func TestLoadReturnsDefaultsWhenConfigMissing(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	got := Load()
	want := DefaultConfig()
	want.Resolve(home)

	if got != want {
		t.Fatalf("Load() = %#v, want defaults %#v", got, want)
	}
	if got.HistoryDB != filepath.Join(home, ".local", "share", "curlcap", "exports.db") {
		t.Fatalf("HistoryDB = %q", got.HistoryDB)
	}
}

func writeConfig(t *testing.T, home, body string) {
	t.Helper()
	configDir := filepath.Join(home, ".config", "curlcap")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatalf("MkdirAll() failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte(body), 0644); err != nil {
		t.Fatalf("WriteFile() failed: %v", err)
	}
}

func TestLoadReadsConfigFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	writeConfig(t, home, "browser_addr: localhost:9333\nexport_dir: ~/captures\nhistory_db: /tmp/x.db\nlog_level: debug\ndial_timeout: 3s\ntheme: nord\n")

	got := Load()

	if got.BrowserAddr != "localhost:9333" {
		t.Fatalf("BrowserAddr = %q, want localhost:9333", got.BrowserAddr)
	}
	if got.ExportDir != filepath.Join(home, "captures") {
		t.Fatalf("ExportDir = %q, want ~ expanded", got.ExportDir)
	}
	if got.HistoryDB != "/tmp/x.db" {
		t.Fatalf("HistoryDB = %q, want /tmp/x.db", got.HistoryDB)
	}
	if got.LogLevel != "debug" {
		t.Fatalf("LogLevel = %q, want debug", got.LogLevel)
	}
	if got.DialTimeout != 3*time.Second {
		t.Fatalf("DialTimeout = %s, want 3s", got.DialTimeout)
	}
	if got.Theme != "nord" {
		t.Fatalf("Theme = %q, want nord", got.Theme)
	}
}

func TestLoadMergesPartialConfigWithDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	writeConfig(t, home, "log_level: warn\n")

	got := Load()
	want := DefaultConfig()
	want.LogLevel = "warn"
	want.Resolve(home)

	if got != want {
		t.Fatalf("Load() = %#v, want %#v", got, want)
	}
}

func TestLoadInvalidYAMLKeepsDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	writeConfig(t, home, "browser_addr: [\n")

	got := Load()
	want := DefaultConfig()
	want.Resolve(home)

	if got != want {
		t.Fatalf("Load() = %#v, want defaults %#v", got, want)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{" error ", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewLoggerHonorsLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogLevel = "warn"

	var buf bytes.Buffer
	logger := cfg.NewLogger(&buf)
	logger.Info("hidden")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info record written at warn level: %q", out)
	}
	if !strings.Contains(out, "shown") {
		t.Errorf("warn record missing: %q", out)
	}
}

func TestOpenLogFileCreatesDirectory(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LogFile = filepath.Join(t.TempDir(), "nested", "curlcap.log")

	f, err := cfg.OpenLogFile()
	if err != nil {
		t.Fatalf("OpenLogFile() failed: %v", err)
	}
	f.Close()

	if _, err := os.Stat(cfg.LogFile); err != nil {
		t.Fatalf("log file not created: %v", err)
	}
}
