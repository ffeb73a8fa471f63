package store

import (
	"context"
	"time"

	"ico-builder-go/internal/domain/artifact/model"
)

// Store persists built containers until they expire.
type Store interface {
	Put(ctx context.Context, rec model.Record) error
	// Get returns model.ErrNotFound (wrapped) for unknown or expired IDs.
	Get(ctx context.Context, id string) (model.Record, error)
	Delete(ctx context.Context, id string) error
	// List returns live records without payloads, oldest first.
	List(ctx context.Context) ([]model.Record, error)
	CleanupExpired(ctx context.Context) error
	Stats(ctx context.Context) (map[string]any, error)
	Close(ctx context.Context) error
}

// Config selects and tunes a driver.
type Config struct {
	Driver string
	TTL    time.Duration
	Memory *MemoryConfig
	Redis  *RedisConfig
}

type MemoryConfig struct {
	GCInterval time.Duration
}

type RedisConfig struct {
	Addr     string
	Username string
	Password string
	DB       int
	Prefix   string
}

// stamp fills CreatedAt, Size and a TTL-derived ExpiresAt when unset.
func stamp(rec model.Record, ttl time.Duration) model.Record {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	if rec.Size == 0 {
		rec.Size = int64(len(rec.Data))
	}
	if rec.ExpiresAt == nil && ttl > 0 {
		exp := rec.CreatedAt.Add(ttl)
		rec.ExpiresAt = &exp
	}
	return rec
}
