package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"ico-builder-go/internal/domain/artifact/model"
)

type memoryStore struct {
	items       map[string]model.Record
	mu          sync.RWMutex
	ttl         time.Duration
	cleanupFreq time.Duration
	stop        chan struct{}
	stopOnce    sync.Once
}

// NewMemory builds a process-local store with a background expiry sweep.
func NewMemory(cfg Config) Store {
	cleanup := 5 * time.Minute
	if cfg.Memory != nil && cfg.Memory.GCInterval > 0 {
		cleanup = cfg.Memory.GCInterval
	}
	s := &memoryStore{
		items:       make(map[string]model.Record),
		ttl:         cfg.TTL,
		cleanupFreq: cleanup,
		stop:        make(chan struct{}),
	}
	go s.gcLoop()
	return s
}

func (s *memoryStore) gcLoop() {
	ticker := time.NewTicker(s.cleanupFreq)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			_ = s.CleanupExpired(context.Background())
		case <-s.stop:
			return
		}
	}
}

func (s *memoryStore) Put(_ context.Context, rec model.Record) error {
	if rec.ID == "" {
		return fmt.Errorf("artifact id required")
	}
	rec = stamp(rec, s.ttl)
	rec.Data = append([]byte(nil), rec.Data...)

	s.mu.Lock()
	s.items[rec.ID] = rec
	s.mu.Unlock()
	return nil
}

func (s *memoryStore) Get(_ context.Context, id string) (model.Record, error) {
	s.mu.RLock()
	rec, ok := s.items[id]
	s.mu.RUnlock()
	if !ok || rec.Expired(time.Now()) {
		return model.Record{}, fmt.Errorf("%w: %s", model.ErrNotFound, id)
	}
	return rec, nil
}

func (s *memoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
	return nil
}

func (s *memoryStore) List(_ context.Context) ([]model.Record, error) {
	now := time.Now()
	s.mu.RLock()
	out := make([]model.Record, 0, len(s.items))
	for _, rec := range s.items {
		if !rec.Expired(now) {
			out = append(out, rec.WithoutData())
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *memoryStore) CleanupExpired(_ context.Context) error {
	now := time.Now()
	s.mu.Lock()
	for id, rec := range s.items {
		if rec.Expired(now) {
			delete(s.items, id)
		}
	}
	s.mu.Unlock()
	return nil
}

func (s *memoryStore) Stats(_ context.Context) (map[string]any, error) {
	now := time.Now()
	s.mu.RLock()
	defer s.mu.RUnlock()

	active := 0
	var bytes int64
	for _, rec := range s.items {
		if !rec.Expired(now) {
			active++
			bytes += rec.Size
		}
	}
	return map[string]any{
		"type":        DriverMemory,
		"total":       len(s.items),
		"active":      active,
		"bytes":       bytes,
		"ttl_seconds": int(s.ttl.Seconds()),
	}, nil
}

func (s *memoryStore) Close(_ context.Context) error {
	s.stopOnce.Do(func() {
		close(s.stop)
	})
	return nil
}
