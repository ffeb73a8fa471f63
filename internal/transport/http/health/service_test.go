package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStats struct {
	stats map[string]any
	err   error
}

func (s stubStats) Stats(context.Context) (map[string]any, error) { return s.stats, s.err }

func serve(t *testing.T, svc *Service) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	require.NoError(t, svc.Register(context.Background(), engine.Group("/api")))

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	var body struct {
		Data map[string]any `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body.Data
}

func TestHealth_OK(t *testing.T) {
	rec, data := serve(t, NewService(stubStats{stats: map[string]any{"type": "memory"}}, nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", data["status"])
	assert.Equal(t, map[string]any{"type": "memory"}, data["store"])
	assert.Contains(t, data, "uptime_seconds")
}

func TestHealth_StoreFailureDegrades(t *testing.T) {
	rec, data := serve(t, NewService(stubStats{err: errors.New("redis down")}, nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "degraded", data["status"])
	assert.Equal(t, "redis down", data["store_error"])
}
