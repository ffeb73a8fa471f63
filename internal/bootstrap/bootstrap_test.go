package bootstrap

import (
	"bytes"
	"context"
	"image"
	"io"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	platformerrors "ico-builder-go/internal/platform/errors"
	platformlogging "ico-builder-go/internal/platform/logging"
	platformtesting "ico-builder-go/internal/platform/testing"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestInitGraphOrder(t *testing.T) {
	steps := InitGraph()
	want := []string{
		"config:load",
		"logging:init-provider",
		"observability:setup-hooks",
		"storage:open-database",
		"events:init-bus",
		"artifact:init-manager",
		"icon:init-service",
	}
	if len(steps) != len(want) {
		t.Fatalf("unexpected step count: got %d want %d", len(steps), len(want))
	}
	for i, step := range steps {
		if step.ID != want[i] {
			t.Fatalf("step %d mismatch: got %s want %s", i, step.ID, want[i])
		}
	}
}

func newTestState(t *testing.T) *appState {
	t.Helper()
	cfg := platformtesting.SetupTestConfig(t)
	path := platformtesting.WriteTestConfig(t, cfg)
	state := &appState{opts: Options{ConfigPath: path, SkipDotEnv: true}}
	if err := executeInitSteps(context.Background(), InitGraph(), state); err != nil {
		t.Fatalf("executeInitSteps failed: %v", err)
	}
	t.Cleanup(state.close)
	return state
}

func TestExecuteInitGraph(t *testing.T) {
	state := newTestState(t)

	if state.config == nil {
		t.Fatal("config is nil after init")
	}
	if state.logger == nil {
		t.Fatal("logger is nil after init")
	}
	if state.observabilityShutdown == nil {
		t.Fatal("observability shutdown hook not set")
	}
	assert.Nil(t, state.db, "memory driver should not open a database")
	assert.NotNil(t, state.bus)
	assert.NotNil(t, state.artifacts)
	assert.NotNil(t, state.builder)
	assert.False(t, state.tokens.Enabled())
}

func TestExecuteInitGraph_SQLite(t *testing.T) {
	cfg := platformtesting.SetupTestConfig(t)
	cfg.Store.Driver = "sqlite"
	cfg.Store.SQLite.DSN = filepath.Join(t.TempDir(), "icons.db")
	cfg.Server.TokenSecret = "bootstrap-secret"
	path := platformtesting.WriteTestConfig(t, cfg)

	state := &appState{opts: Options{ConfigPath: path, SkipDotEnv: true}}
	require.NoError(t, executeInitSteps(context.Background(), InitGraph(), state))
	defer state.close()

	assert.NotNil(t, state.db)
	assert.True(t, state.tokens.Enabled())
	_, err := os.Stat(cfg.Store.SQLite.DSN)
	assert.NoError(t, err)
}

func TestExecuteInitSteps_MissingDependency(t *testing.T) {
	steps := []initStep{
		{
			ID:        "icon:init-service",
			DependsOn: []string{"config:load"},
			Execute:   func(context.Context, *appState) error { return nil },
		},
	}
	err := executeInitSteps(context.Background(), steps, &appState{})
	require.Error(t, err)
	assert.True(t, platformerrors.IsKind(err, platformerrors.KindBootstrap))
	assert.Contains(t, err.Error(), "config:load")
}

func TestExecuteInitSteps_ConfigFailureKeepsKind(t *testing.T) {
	state := &appState{opts: Options{
		ConfigPath: filepath.Join(t.TempDir(), "missing.yaml"),
		SkipDotEnv: true,
	}}
	err := executeInitSteps(context.Background(), InitGraph(), state)
	require.Error(t, err)
	assert.True(t, platformerrors.IsKind(err, platformerrors.KindConfig))
	assert.Nil(t, state.logger)
}

func TestLogBootstrapGraphOutput(t *testing.T) {
	dir := t.TempDir()
	logger, err := platformlogging.NewWithConsole(platformlogging.Config{
		Level:    "info",
		Dir:      dir,
		Filename: "graph.log",
	}, io.Discard)
	require.NoError(t, err)

	logBootstrapGraph(InitGraph(), logger)
	require.NoError(t, logger.Close())

	content, err := os.ReadFile(filepath.Join(dir, "graph.log"))
	require.NoError(t, err)
	output := string(content)
	assert.Contains(t, output, "[Bootstrap] init graph:")
	assert.Contains(t, output, "config:load (load configuration)")
	assert.Contains(t, output, "storage:open-database, events:init-bus")
}

func TestRouter_HealthAndNotFound(t *testing.T) {
	state := newTestState(t)
	router, err := buildRouter(context.Background(), state)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/unknown", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "api not found")
}

func TestRouter_BuildDownload(t *testing.T) {
	state := newTestState(t)
	router, err := buildRouter(context.Background(), state)
	require.NoError(t, err)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, side := range []int{16, 32} {
		part, err := mw.CreateFormFile("files", "icon.png")
		require.NoError(t, err)
		require.NoError(t, png.Encode(part, image.NewNRGBA(image.Rect(0, 0, side, side))))
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/icons?download=1", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data := rec.Body.Bytes()
	require.GreaterOrEqual(t, len(data), 6)
	assert.Equal(t, []byte{0, 0, 1, 0, 2, 0}, data[:6])
	assert.True(t, strings.Contains(rec.Header().Get("Content-Disposition"), ".ico"))
}
