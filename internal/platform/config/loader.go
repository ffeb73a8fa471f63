package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultPath is read when neither WithPath nor ICO_CONFIG is set.
	DefaultPath = ".config.yaml"
	// EnvConfigPath names the environment variable overriding the config path.
	EnvConfigPath = "ICO_CONFIG"
)

var knownDrivers = map[string]struct{}{
	"memory": {},
	"sqlite": {},
	"redis":  {},
}

// Loader reads configuration from YAML, .env and the process environment.
type Loader struct {
	useDotEnv bool
	path      string
	lookupEnv func(string) (string, bool)
}

// NewLoader creates a loader with .env support enabled.
func NewLoader() *Loader {
	return &Loader{
		useDotEnv: true,
		lookupEnv: os.LookupEnv,
	}
}

// WithDotEnv toggles loading variables from a .env file before reading config.
func (l *Loader) WithDotEnv(enabled bool) *Loader {
	l.useDotEnv = enabled
	return l
}

// WithPath overrides the YAML file location.
func (l *Loader) WithPath(path string) *Loader {
	l.path = path
	return l
}

// WithEnv overrides environment lookup (useful for tests).
func (l *Loader) WithEnv(lookup func(string) (string, bool)) *Loader {
	if lookup != nil {
		l.lookupEnv = lookup
	}
	return l
}

// Result captures the loaded configuration and its origin path.
type Result struct {
	Config *Config
	// Path is the file the config came from, or "defaults" when none existed.
	Path string
}

// Load layers defaults, the YAML file, then environment overrides, and validates the result.
func (l *Loader) Load() (*Result, error) {
	if l.useDotEnv {
		// A missing .env is normal; values then come from the real environment.
		_ = godotenv.Load()
	}

	path := l.path
	if path == "" {
		if env, ok := l.lookupEnv(EnvConfigPath); ok && env != "" {
			path = env
		} else {
			path = DefaultPath
		}
	}

	cfg := DefaultConfig()
	origin := "defaults"

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
		origin = path
	case os.IsNotExist(err) && l.path == "":
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := l.applyEnv(cfg); err != nil {
		return nil, err
	}
	if err := l.validate(cfg); err != nil {
		return nil, err
	}

	return &Result{Config: cfg, Path: origin}, nil
}

func (l *Loader) applyEnv(cfg *Config) error {
	if v, ok := l.lookupEnv("ICO_SERVER_PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("ICO_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if v, ok := l.lookupEnv("ICO_LOG_LEVEL"); ok && v != "" {
		cfg.Log.Level = v
	}
	if v, ok := l.lookupEnv("ICO_STORE_DRIVER"); ok && v != "" {
		cfg.Store.Driver = v
	}
	if v, ok := l.lookupEnv("ICO_REDIS_ADDR"); ok && v != "" {
		cfg.Store.Redis.Addr = v
	}
	if v, ok := l.lookupEnv("ICO_TOKEN_SECRET"); ok && v != "" {
		cfg.Server.TokenSecret = v
	}
	if v, ok := l.lookupEnv("ICO_STORE_TTL"); ok && v != "" {
		ttl, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("ICO_STORE_TTL: %w", err)
		}
		cfg.Store.TTL = Duration{ttl}
	}
	return nil
}

func (l *Loader) validate(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", cfg.Server.Port)
	}
	if cfg.Icon.MaxFileSize <= 0 {
		return fmt.Errorf("icon.max_file_size must be positive, got %d", cfg.Icon.MaxFileSize)
	}
	// The container count field is 16 bits wide.
	if cfg.Icon.MaxEntries <= 0 || cfg.Icon.MaxEntries > 65535 {
		return fmt.Errorf("icon.max_entries must be in [1,65535], got %d", cfg.Icon.MaxEntries)
	}
	if cfg.Icon.LoadConcurrency <= 0 {
		return fmt.Errorf("icon.load_concurrency must be positive, got %d", cfg.Icon.LoadConcurrency)
	}

	driver := strings.ToLower(strings.TrimSpace(cfg.Store.Driver))
	if _, ok := knownDrivers[driver]; !ok {
		return fmt.Errorf("unsupported store driver: %q", cfg.Store.Driver)
	}
	cfg.Store.Driver = driver
	if driver == "redis" && cfg.Store.Redis.Addr == "" {
		return fmt.Errorf("store.redis.addr is required for the redis driver")
	}
	return nil
}
