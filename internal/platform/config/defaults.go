package config

import "time"

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			IP:          "0.0.0.0",
			Port:        8080,
			TokenTTL:    Duration{time.Hour},
			CORSOrigins: []string{"*"},
		},
		Log: LogConfig{
			Level: "INFO",
			Dir:   "data/logs",
			File:  "server.log",
		},
		Web: WebConfig{
			StaticDir: "./web",
		},
		Icon: IconConfig{
			MaxFileSize:     5 * 1024 * 1024,
			MaxEntries:      64,
			LoadConcurrency: 8,
			DefaultName:     "favicon.ico",
		},
		Store: StoreConfig{
			Driver: "memory",
			TTL:    Duration{24 * time.Hour},
			SQLite: SQLiteStoreConfig{
				DSN: "data/icons.db",
			},
			Redis: RedisStoreConfig{
				Prefix: "icon:artifact:",
			},
		},
	}
}
