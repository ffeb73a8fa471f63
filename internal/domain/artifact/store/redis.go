package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"

	"ico-builder-go/internal/domain/artifact/model"
)

const defaultRedisPrefix = "icon:artifact:"

type redisStore struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
}

// NewRedis connects to redis and verifies the connection with PING.
func NewRedis(cfg Config) (Store, error) {
	if cfg.Redis == nil {
		return nil, fmt.Errorf("redis configuration missing")
	}
	if cfg.Redis.Addr == "" {
		return nil, fmt.Errorf("redis address required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Username: cfg.Redis.Username,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	prefix := cfg.Redis.Prefix
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &redisStore{client: client, ttl: cfg.TTL, prefix: prefix}, nil
}

func (s *redisStore) key(id string) string {
	return s.prefix + id
}

func (s *redisStore) Put(ctx context.Context, rec model.Record) error {
	if rec.ID == "" {
		return fmt.Errorf("artifact id required")
	}
	rec = stamp(rec, s.ttl)

	var expiry time.Duration
	if rec.ExpiresAt != nil {
		expiry = time.Until(*rec.ExpiresAt)
		if expiry <= 0 {
			return s.Delete(ctx, rec.ID)
		}
	}
	data, err := sonic.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode artifact: %w", err)
	}
	return s.client.Set(ctx, s.key(rec.ID), data, expiry).Err()
}

func (s *redisStore) Get(ctx context.Context, id string) (model.Record, error) {
	raw, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.Record{}, fmt.Errorf("%w: %s", model.ErrNotFound, id)
	}
	if err != nil {
		return model.Record{}, err
	}
	var rec model.Record
	if err := sonic.Unmarshal(raw, &rec); err != nil {
		return model.Record{}, fmt.Errorf("decode artifact %s: %w", id, err)
	}
	if rec.Expired(time.Now()) {
		_ = s.Delete(ctx, id)
		return model.Record{}, fmt.Errorf("%w: %s", model.ErrNotFound, id)
	}
	return rec, nil
}

func (s *redisStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, s.key(id)).Err()
}

func (s *redisStore) keys(ctx context.Context) ([]string, error) {
	var cursor uint64
	var keys []string
	for {
		res, next, err := s.client.Scan(ctx, cursor, s.prefix+"*", 100).Result()
		if err != nil {
			return nil, err
		}
		keys = append(keys, res...)
		if next == 0 {
			return keys, nil
		}
		cursor = next
	}
}

func (s *redisStore) List(ctx context.Context) ([]model.Record, error) {
	keys, err := s.keys(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.Record, 0, len(keys))
	for _, key := range keys {
		rec, err := s.Get(ctx, strings.TrimPrefix(key, s.prefix))
		if errors.Is(err, model.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, rec.WithoutData())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// CleanupExpired is a no-op; keys carry their own TTL.
func (s *redisStore) CleanupExpired(context.Context) error {
	return nil
}

func (s *redisStore) Stats(ctx context.Context) (map[string]any, error) {
	keys, err := s.keys(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"type":        DriverRedis,
		"total":       len(keys),
		"prefix":      s.prefix,
		"ttl_seconds": int(s.ttl.Seconds()),
	}, nil
}

func (s *redisStore) Close(context.Context) error {
	return s.client.Close()
}
