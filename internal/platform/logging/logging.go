package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

const (
	// RetentionDays is how long rotated log files are kept.
	RetentionDays = 7
	dateLayout    = "2006-01-02"
)

// Default is the first logger created in the process. Packages that are
// handed a nil logger fall back to it.
var Default *Logger

// Config captures logging configuration options.
type Config struct {
	Level    string `yaml:"log_level" json:"log_level"`
	Dir      string `yaml:"log_dir" json:"log_dir"`
	Filename string `yaml:"log_file" json:"log_file"`
}

// Logger writes JSON records to a daily-rotated file and colourised text to
// the console.
type Logger struct {
	config      Config
	level       slog.Level
	jsonLogger  *slog.Logger
	textLogger  *slog.Logger
	logFile     *os.File
	currentDate string
	mu          sync.RWMutex
	ticker      *time.Ticker
	stopCh      chan struct{}
	closeOnce   sync.Once
}

// ParseLevel maps a config string onto a slog level. Unknown values map to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New creates a Logger writing to cfg.Dir/cfg.Filename and stdout.
func New(cfg Config) (*Logger, error) {
	return newLogger(cfg, os.Stdout)
}

// NewWithConsole is New with an explicit console writer; tests pass io.Discard.
func NewWithConsole(cfg Config, console io.Writer) (*Logger, error) {
	return newLogger(cfg, console)
}

func newLogger(cfg Config, console io.Writer) (*Logger, error) {
	if cfg.Dir == "" {
		cfg.Dir = "data/logs"
	}
	if cfg.Filename == "" {
		cfg.Filename = "server.log"
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}

	file, err := openLogFile(cfg)
	if err != nil {
		return nil, err
	}

	level := ParseLevel(cfg.Level)
	l := &Logger{
		config:      cfg,
		level:       level,
		jsonLogger:  slog.New(slog.NewJSONHandler(file, &slog.HandlerOptions{Level: level})),
		textLogger:  slog.New(&consoleHandler{writer: console, level: level}),
		logFile:     file,
		currentDate: time.Now().Format(dateLayout),
		stopCh:      make(chan struct{}),
	}

	l.startRotationChecker()
	if Default == nil {
		Default = l
	}
	return l, nil
}

func openLogFile(cfg Config) (*os.File, error) {
	path := filepath.Join(cfg.Dir, cfg.Filename)
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return file, nil
}

func (l *Logger) startRotationChecker() {
	l.ticker = time.NewTicker(time.Minute)
	go func() {
		for {
			select {
			case <-l.ticker.C:
				today := time.Now().Format(dateLayout)
				if today != l.date() {
					l.rotate(today)
					l.cleanOldLogs(time.Now())
				}
			case <-l.stopCh:
				return
			}
		}
	}()
}

func (l *Logger) date() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.currentDate
}

// rotate renames the active file to <base>-<date><ext> and reopens a fresh one.
func (l *Logger) rotate(newDate string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.logFile != nil {
		l.logFile.Close()
	}

	current := filepath.Join(l.config.Dir, l.config.Filename)
	base := strings.TrimSuffix(l.config.Filename, filepath.Ext(l.config.Filename))
	archived := filepath.Join(l.config.Dir, fmt.Sprintf("%s-%s%s", base, l.currentDate, filepath.Ext(l.config.Filename)))

	if _, err := os.Stat(current); err == nil {
		if err := os.Rename(current, archived); err != nil {
			l.textLogger.Error("rename log file failed", slog.String("error", err.Error()))
		}
	}

	file, err := openLogFile(l.config)
	if err != nil {
		l.textLogger.Error("reopen log file failed", slog.String("error", err.Error()))
		l.logFile = nil
		l.jsonLogger = slog.New(slog.NewJSONHandler(io.Discard, nil))
		return
	}
	l.logFile = file
	l.currentDate = newDate
	l.jsonLogger = slog.New(slog.NewJSONHandler(file, &slog.HandlerOptions{Level: l.level}))
	l.textLogger.Info("log file rotated", slog.String("new_date", newDate))
}

// cleanOldLogs removes archived files older than RetentionDays relative to now.
func (l *Logger) cleanOldLogs(now time.Time) {
	entries, err := os.ReadDir(l.config.Dir)
	if err != nil {
		l.textLogger.Error("read log dir failed", slog.String("error", err.Error()))
		return
	}

	cutoff := now.AddDate(0, 0, -RetentionDays)
	ext := filepath.Ext(l.config.Filename)
	prefix := strings.TrimSuffix(l.config.Filename, ext) + "-"

	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ext) {
			continue
		}
		fileDate, err := time.Parse(dateLayout, strings.TrimSuffix(strings.TrimPrefix(name, prefix), ext))
		if err != nil || !fileDate.Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(l.config.Dir, name)); err != nil {
			l.textLogger.Error("remove old log failed", slog.String("file", name), slog.String("error", err.Error()))
		}
	}
}

// Close stops rotation and closes the log file. Safe to call more than once.
func (l *Logger) Close() error {
	var err error
	l.closeOnce.Do(func() {
		if l.ticker != nil {
			l.ticker.Stop()
		}
		close(l.stopCh)
		l.mu.Lock()
		defer l.mu.Unlock()
		if l.logFile != nil {
			err = l.logFile.Close()
			l.logFile = nil
		}
	})
	return err
}

func (l *Logger) log(level slog.Level, msg string, args ...any) {
	var attrs []slog.Attr
	if len(args) > 0 && strings.Contains(msg, "%") {
		msg = fmt.Sprintf(msg, args...)
	} else if len(args) > 0 && args[0] != nil {
		if fields, ok := args[0].(map[string]any); ok {
			keys := make([]string, 0, len(fields))
			for k := range fields {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				attrs = append(attrs, slog.Any(k, fields[k]))
			}
		} else {
			attrs = append(attrs, slog.Any("fields", args[0]))
		}
	}

	l.mu.RLock()
	defer l.mu.RUnlock()
	ctx := context.Background()
	l.jsonLogger.LogAttrs(ctx, level, msg, attrs...)
	l.textLogger.LogAttrs(ctx, level, msg, attrs...)
}

// Debug logs at debug level. A message containing % is treated as a format
// string; otherwise a single map[string]any argument becomes attributes.
func (l *Logger) Debug(msg string, args ...any) {
	if l == nil {
		return
	}
	l.log(slog.LevelDebug, msg, args...)
}

func (l *Logger) Info(msg string, args ...any) {
	if l == nil {
		return
	}
	l.log(slog.LevelInfo, msg, args...)
}

func (l *Logger) Warn(msg string, args ...any) {
	if l == nil {
		return
	}
	l.log(slog.LevelWarn, msg, args...)
}

func (l *Logger) Error(msg string, args ...any) {
	if l == nil {
		return
	}
	l.log(slog.LevelError, msg, args...)
}

// FormatTag prefixes message with [tag], e.g. FormatTag("HTTP", "ready") -> "[HTTP] ready".
// A message that already starts with "[" is returned unchanged.
func FormatTag(tag, message string) string {
	tag = strings.TrimSpace(tag)
	message = strings.TrimSpace(message)
	if tag == "" || strings.HasPrefix(message, "[") {
		return message
	}
	return fmt.Sprintf("[%s] %s", tag, message)
}

func (l *Logger) DebugTag(tag, msg string, args ...any) { l.Debug(FormatTag(tag, msg), args...) }
func (l *Logger) InfoTag(tag, msg string, args ...any)  { l.Info(FormatTag(tag, msg), args...) }
func (l *Logger) WarnTag(tag, msg string, args ...any)  { l.Warn(FormatTag(tag, msg), args...) }
func (l *Logger) ErrorTag(tag, msg string, args ...any) { l.Error(FormatTag(tag, msg), args...) }

// Slog exposes the console logger for structured integrations.
func (l *Logger) Slog() *slog.Logger {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.textLogger
}
