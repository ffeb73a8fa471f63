package observability

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"
)

// StartSpan logs the start and end of an operation. The returned func must be
// called exactly once with the operation's error.
func StartSpan(ctx context.Context, component, operation string) (context.Context, func(error)) {
	logger, cfg := current()
	start := time.Now()
	if logger == nil || !cfg.Enabled {
		return ctx, func(err error) {
			counters.add(component+"."+operation+".calls", 1)
			if err != nil {
				counters.add(component+"."+operation+".errors", 1)
			}
		}
	}

	logger.LogAttrs(ctx, cfg.SpanLevel, "obs span start",
		slog.String("component", component),
		slog.String("operation", operation),
	)

	return ctx, func(err error) {
		counters.add(component+"."+operation+".calls", 1)
		level := cfg.SpanLevel
		attrs := []slog.Attr{
			slog.String("component", component),
			slog.String("operation", operation),
			slog.Duration("duration", time.Since(start)),
		}
		if err != nil {
			counters.add(component+"."+operation+".errors", 1)
			level = slog.LevelError
			attrs = append(attrs, slog.Any("error", err))
		}
		logger.LogAttrs(ctx, level, "obs span end", attrs...)
	}
}

// RecordMetric adds value to the named counter and, when enabled, logs the datapoint.
func RecordMetric(ctx context.Context, name string, value float64, labels map[string]string) {
	counters.add(name, value)

	logger, cfg := current()
	if logger == nil || !cfg.Enabled {
		return
	}

	attrs := []slog.Attr{
		slog.String("metric", name),
		slog.Float64("value", value),
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		attrs = append(attrs, slog.String(k, labels[k]))
	}
	logger.LogAttrs(ctx, cfg.SpanLevel, "obs metric", attrs...)
}

// Snapshot returns the accumulated counters whose name starts with prefix.
func Snapshot(prefix string) map[string]float64 {
	return counters.snapshot(prefix)
}

// ResetCounters clears all counters. Intended for tests.
func ResetCounters() {
	counters.reset()
}

type counterSet struct {
	mu     sync.Mutex
	values map[string]float64
}

func newCounterSet() *counterSet {
	return &counterSet{values: make(map[string]float64)}
}

func (c *counterSet) add(name string, v float64) {
	c.mu.Lock()
	c.values[name] += v
	c.mu.Unlock()
}

func (c *counterSet) snapshot(prefix string) map[string]float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]float64)
	for k, v := range c.values {
		if strings.HasPrefix(k, prefix) {
			out[k] = v
		}
	}
	return out
}

func (c *counterSet) reset() {
	c.mu.Lock()
	c.values = make(map[string]float64)
	c.mu.Unlock()
}
