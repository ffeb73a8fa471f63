package observability

import (
	"context"
	"log/slog"
	"sync"
)

// Config captures observability toggles.
type Config struct {
	Enabled bool
	// SpanLevel is the slog level spans and metrics are emitted at.
	SpanLevel slog.Level
}

// ShutdownFunc tears down whatever Setup installed.
type ShutdownFunc func(context.Context) error

var (
	stateMu sync.RWMutex
	state   = struct {
		logger *slog.Logger
		cfg    Config
	}{}
	counters = newCounterSet()
)

func current() (*slog.Logger, Config) {
	stateMu.RLock()
	defer stateMu.RUnlock()
	return state.logger, state.cfg
}

// Setup installs the logger used by StartSpan and RecordMetric. Counters are
// kept regardless of cfg.Enabled so the health endpoint can report them.
func Setup(ctx context.Context, cfg Config, logger *slog.Logger) (ShutdownFunc, error) {
	stateMu.Lock()
	state.logger = logger
	state.cfg = cfg
	stateMu.Unlock()

	if logger != nil {
		if cfg.Enabled {
			logger.InfoContext(ctx, "[OBSERVABILITY] span and metric logging enabled")
		} else {
			logger.InfoContext(ctx, "[OBSERVABILITY] span logging disabled, counters only")
		}
	}

	return func(context.Context) error {
		stateMu.Lock()
		state.logger = nil
		state.cfg = Config{}
		stateMu.Unlock()
		return nil
	}, nil
}

// Enabled reports whether span and metric logging is on.
func Enabled() bool {
	_, cfg := current()
	return cfg.Enabled
}
