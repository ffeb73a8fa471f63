package testing

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"gopkg.in/yaml.v3"

	"ico-builder-go/internal/platform/config"
	"ico-builder-go/internal/platform/logging"
)

// SetupTestConfig returns defaults with logs under a temp dir and the
// in-process memory store.
func SetupTestConfig(t *testing.T) *config.Config {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Server.IP = "127.0.0.1"
	cfg.Log.Level = "info"
	cfg.Log.Dir = t.TempDir()
	cfg.Log.File = "test.log"
	cfg.Web.StaticDir = ""
	cfg.Store.Driver = "memory"
	return cfg
}

// WriteTestConfig marshals cfg to a YAML file and returns its path.
func WriteTestConfig(t *testing.T, cfg *config.Config) string {
	t.Helper()

	data, err := yaml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	path := filepath.Join(t.TempDir(), ".config.yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

// SetupTestLogger creates a logger that writes to a temp dir and discards
// console output. It is closed when the test ends.
func SetupTestLogger(t *testing.T) *logging.Logger {
	t.Helper()

	logger, err := logging.NewWithConsole(logging.Config{
		Level:    "debug",
		Dir:      t.TempDir(),
		Filename: "test.log",
	}, io.Discard)
	if err != nil {
		t.Fatalf("failed to create test logger: %v", err)
	}
	t.Cleanup(func() { _ = logger.Close() })
	return logger
}
