package config

import (
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
	Web    WebConfig    `yaml:"web"`
	Icon   IconConfig   `yaml:"icon"`
	Store  StoreConfig  `yaml:"store"`
}

type ServerConfig struct {
	IP          string   `yaml:"ip"`
	Port        int      `yaml:"port"`
	TokenSecret string   `yaml:"token_secret"`
	TokenTTL    Duration `yaml:"token_ttl"`
	CORSOrigins []string `yaml:"cors_origins"`
}

type LogConfig struct {
	Level string `yaml:"log_level"`
	Dir   string `yaml:"log_dir"`
	File  string `yaml:"log_file"`
	// Spans turns on span and metric log lines.
	Spans bool `yaml:"spans"`
}

type WebConfig struct {
	// StaticDir is served at / when it exists. Empty disables static serving.
	StaticDir string `yaml:"static_dir"`
}

// IconConfig bounds what a single build request may submit.
type IconConfig struct {
	MaxFileSize     int64  `yaml:"max_file_size"`
	MaxEntries      int    `yaml:"max_entries"`
	LoadConcurrency int    `yaml:"load_concurrency"`
	DefaultName     string `yaml:"default_name"`
}

type StoreConfig struct {
	Driver string            `yaml:"driver"`
	TTL    Duration          `yaml:"ttl"`
	SQLite SQLiteStoreConfig `yaml:"sqlite,omitempty"`
	Redis  RedisStoreConfig  `yaml:"redis,omitempty"`
}

type SQLiteStoreConfig struct {
	DSN string `yaml:"dsn,omitempty"`
}

type RedisStoreConfig struct {
	Addr     string `yaml:"addr"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db,omitempty"`
	Prefix   string `yaml:"prefix,omitempty"`
}

// Duration accepts "90s"-style strings in YAML.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalYAML() (interface{}, error) {
	return d.String(), nil
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	if raw == "" {
		d.Duration = 0
		return nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}
