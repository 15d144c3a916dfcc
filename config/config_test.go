package config

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDefaults(t *testing.T) {
	cfg := Defaults(discardLogger())

	if cfg.ListenAddrPort != "8000" {
		t.Errorf("ListenAddrPort = %q, want 8000", cfg.ListenAddrPort)
	}
	if cfg.DatabaseType != "sqlite" {
		t.Errorf("DatabaseType = %q, want sqlite", cfg.DatabaseType)
	}
	if !filepath.IsAbs(cfg.DataPath) || filepath.Base(cfg.DataPath) != "data" {
		t.Errorf("DataPath = %q, want absolute path ending in data", cfg.DataPath)
	}
	if cfg.IndexRefreshInterval != 720 {
		t.Errorf("IndexRefreshInterval = %d, want 720", cfg.IndexRefreshInterval)
	}
	if cfg.AppName != "AexPy" {
		t.Errorf("AppName = %q, want AexPy", cfg.AppName)
	}
}

func TestLoadOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("serverConfig.ServerPort", "9100")
	v.Set("database.Type", "Postgres")
	v.Set("index.RefreshInterval", 0)
	v.Set("index.Redo", true)

	cfg := Load(v, discardLogger())
	if cfg.ListenAddrPort != "9100" {
		t.Errorf("ListenAddrPort = %q, want 9100", cfg.ListenAddrPort)
	}
	if cfg.DatabaseType != "postgres" {
		t.Errorf("DatabaseType = %q, want postgres", cfg.DatabaseType)
	}
	if cfg.IndexRefreshInterval != 720 {
		t.Errorf("invalid interval should fall back to 720, got %d", cfg.IndexRefreshInterval)
	}
	if !cfg.IndexRedo {
		t.Error("IndexRedo should be true")
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"Debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"WARN":    slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelWarn,
		"":        slog.LevelWarn,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestSetupServerReadsConfigFile(t *testing.T) {
	// the test binary runs inside config/, where serverConfig.toml lives
	cfg, logger := SetupServer()
	if logger == nil {
		t.Fatal("Logger should not be nil")
	}
	if cfg.ListenAddrPort == "" {
		t.Error("Server config was not loaded properly")
	}
	if cfg.IndexURL != "https://pypi.org/simple/" {
		t.Errorf("IndexURL = %q", cfg.IndexURL)
	}
}
