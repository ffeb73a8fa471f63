package observability

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartSpan_CountsCallsAndErrors(t *testing.T) {
	ResetCounters()
	shutdown, err := Setup(context.Background(), Config{}, nil)
	require.NoError(t, err)
	defer shutdown(context.Background())

	_, end := StartSpan(context.Background(), "icon", "encode")
	end(nil)
	_, end = StartSpan(context.Background(), "icon", "encode")
	end(errors.New("boom"))

	snap := Snapshot("icon.encode")
	assert.Equal(t, 2.0, snap["icon.encode.calls"])
	assert.Equal(t, 1.0, snap["icon.encode.errors"])
}

func TestRecordMetric_LogsWhenEnabled(t *testing.T) {
	ResetCounters()
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	shutdown, err := Setup(context.Background(), Config{Enabled: true, SpanLevel: slog.LevelInfo}, logger)
	require.NoError(t, err)
	defer shutdown(context.Background())

	RecordMetric(context.Background(), "icon.bytes", 654, map[string]string{"entries": "3"})
	RecordMetric(context.Background(), "icon.bytes", 100, nil)

	assert.Contains(t, buf.String(), "metric=icon.bytes")
	assert.Contains(t, buf.String(), "entries=3")
	assert.Equal(t, 754.0, Snapshot("icon.")["icon.bytes"])
	assert.True(t, Enabled())
}

func TestSnapshot_FiltersByPrefix(t *testing.T) {
	ResetCounters()
	RecordMetric(context.Background(), "http.requests", 1, nil)
	RecordMetric(context.Background(), "icon.built", 1, nil)

	snap := Snapshot("http.")
	assert.Len(t, snap, 1)
	assert.Contains(t, snap, "http.requests")
}
