package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
)

const (
	colorReset = "\x1b[0m"
	colorTime  = "\x1b[90m"
	colorDebug = "\x1b[36m"
	colorInfo  = "\x1b[32m"
	colorWarn  = "\x1b[33m"
	colorError = "\x1b[31m"
)

// tagColors highlights module-tagged messages ("[HTTP] ...").
var tagColors = map[string]string{
	"[Bootstrap]":     "\x1b[96m",
	"[HTTP]":          "\x1b[95m",
	"[Icon]":          "\x1b[94m",
	"[Store]":         "\x1b[93m",
	"[Event]":         "\x1b[92m",
	"[Config]":        "\x1b[97m",
	"[OBSERVABILITY]": "\x1b[90m",
}

// consoleHandler renders "[time] [LEVEL] message { k=v }" lines.
type consoleHandler struct {
	writer io.Writer
	level  slog.Level
	mu     sync.Mutex
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *consoleHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	b.WriteString(colorTime)
	b.WriteString("[" + r.Time.Format("2006-01-02 15:04:05.000") + "]")
	b.WriteString(colorReset + " ")

	if color, ok := moduleColor(r.Message); ok {
		b.WriteString(color + r.Message + colorReset)
	} else {
		b.WriteString(levelColor(r.Level) + "[" + r.Level.String() + "]" + colorReset + " " + r.Message)
	}

	if r.NumAttrs() > 0 {
		b.WriteString(" {")
		r.Attrs(func(a slog.Attr) bool {
			fmt.Fprintf(&b, " %s=%v", a.Key, a.Value)
			return true
		})
		b.WriteString(" }")
	}
	b.WriteString("\n")

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := io.WriteString(h.writer, b.String())
	return err
}

func (h *consoleHandler) WithAttrs([]slog.Attr) slog.Handler { return h }

func (h *consoleHandler) WithGroup(string) slog.Handler { return h }

func moduleColor(msg string) (string, bool) {
	if !strings.HasPrefix(msg, "[") {
		return "", false
	}
	end := strings.Index(msg, "]")
	if end < 0 {
		return "", false
	}
	color, ok := tagColors[msg[:end+1]]
	return color, ok
}

func levelColor(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return colorError
	case level >= slog.LevelWarn:
		return colorWarn
	case level >= slog.LevelInfo:
		return colorInfo
	default:
		return colorDebug
	}
}
