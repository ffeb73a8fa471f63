package logging

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(t *testing.T, level string) (*Logger, string) {
	t.Helper()
	dir := t.TempDir()
	logger, err := NewWithConsole(Config{Level: level, Dir: dir, Filename: "test.log"}, io.Discard)
	require.NoError(t, err)
	t.Cleanup(func() { _ = logger.Close() })
	return logger, dir
}

func TestNew_CreatesFile(t *testing.T) {
	_, dir := newTestLogger(t, "info")

	_, err := os.Stat(filepath.Join(dir, "test.log"))
	assert.NoError(t, err)
}

func TestLogger_InfoFormatsMessage(t *testing.T) {
	logger, dir := newTestLogger(t, "info")

	logger.Info("built %d entries", 3)

	content, err := os.ReadFile(filepath.Join(dir, "test.log"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "built 3 entries")
}

func TestLogger_DebugFilteredAtInfo(t *testing.T) {
	logger, dir := newTestLogger(t, "info")

	logger.Debug("hidden debug line")

	content, err := os.ReadFile(filepath.Join(dir, "test.log"))
	require.NoError(t, err)
	assert.NotContains(t, string(content), "hidden debug line")
}

func TestLogger_FieldsBecomeAttributes(t *testing.T) {
	logger, dir := newTestLogger(t, "debug")

	logger.Info("candidate rejected", map[string]any{"reason": "not_square", "width": 16})

	content, err := os.ReadFile(filepath.Join(dir, "test.log"))
	require.NoError(t, err)
	assert.Contains(t, string(content), `"reason":"not_square"`)
	assert.Contains(t, string(content), `"width":16`)
}

func TestFormatTag(t *testing.T) {
	assert.Equal(t, "[HTTP] ready", FormatTag("HTTP", "ready"))
	assert.Equal(t, "[Icon] already tagged", FormatTag("HTTP", "[Icon] already tagged"))
	assert.Equal(t, "plain", FormatTag("", " plain "))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warn"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("nonsense"))
}

func TestConsoleHandler_TaggedLine(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(&consoleHandler{writer: &buf, level: slog.LevelInfo})

	logger.Info("[HTTP] GET /api/health -> 200")

	assert.Contains(t, buf.String(), "[HTTP] GET /api/health -> 200")
	assert.Contains(t, buf.String(), tagColors["[HTTP]"])
}

func TestCleanOldLogs(t *testing.T) {
	logger, dir := newTestLogger(t, "info")
	now := time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)

	old := filepath.Join(dir, "test-2026-03-01.log")
	recent := filepath.Join(dir, "test-2026-03-18.log")
	require.NoError(t, os.WriteFile(old, []byte("old"), 0o644))
	require.NoError(t, os.WriteFile(recent, []byte("recent"), 0o644))

	logger.cleanOldLogs(now)

	_, err := os.Stat(old)
	assert.True(t, os.IsNotExist(err), "old archive should be removed")
	_, err = os.Stat(recent)
	assert.NoError(t, err, "recent archive should be kept")
}

func TestNilLoggerIsSafe(t *testing.T) {
	var logger *Logger
	assert.NotPanics(t, func() {
		logger.Info("nothing")
		logger.WarnTag("Icon", "nothing")
	})
}
