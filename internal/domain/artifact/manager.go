package artifact

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"ico-builder-go/internal/domain/artifact/model"
	"ico-builder-go/internal/domain/artifact/store"
	"ico-builder-go/internal/domain/eventbus"
	"ico-builder-go/internal/domain/icon"
	"ico-builder-go/internal/platform/logging"
)

// Record re-exports the stored entity for callers.
type Record = model.Record

// ErrNotFound is returned for unknown or expired artifacts.
var ErrNotFound = model.ErrNotFound

const (
	defaultCleanupInterval = 10 * time.Minute
	minCleanupInterval     = 30 * time.Second
)

type Options struct {
	Store           store.Store
	Events          eventbus.Publisher
	Logger          *logging.Logger
	CleanupInterval time.Duration
}

// Manager stores built icons and runs periodic expiry cleanup.
type Manager struct {
	store  store.Store
	events eventbus.Publisher
	logger *logging.Logger

	cleanupInterval time.Duration
	cleanupStop     chan struct{}
	closeOnce       sync.Once
}

func NewManager(opts Options) (*Manager, error) {
	if opts.Store == nil {
		return nil, errors.New("artifact manager requires a store")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Default
	}
	interval := opts.CleanupInterval
	if interval <= 0 {
		interval = defaultCleanupInterval
	} else if interval < minCleanupInterval {
		logger.WarnTag("Store", "cleanup interval %s too small, using %s", interval, minCleanupInterval)
		interval = minCleanupInterval
	}

	m := &Manager{
		store:           opts.Store,
		events:          opts.Events,
		logger:          logger,
		cleanupInterval: interval,
		cleanupStop:     make(chan struct{}),
	}
	go m.runCleanup()
	return m, nil
}

func (m *Manager) runCleanup() {
	ticker := time.NewTicker(m.cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if err := m.store.CleanupExpired(context.Background()); err != nil {
				m.logger.WarnTag("Store", "artifact cleanup failed: %v", err)
			}
		case <-m.cleanupStop:
			return
		}
	}
}

// Save persists a built container under a new ID.
func (m *Manager) Save(ctx context.Context, art icon.Artifact) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}
	rec := Record{
		ID:        uuid.NewString(),
		Name:      art.Name,
		Data:      art.Data,
		Size:      int64(len(art.Data)),
		Entries:   art.Entries,
		CreatedAt: time.Now(),
	}
	if err := m.store.Put(ctx, rec); err != nil {
		m.logger.ErrorTag("Store", "save artifact %s failed: %v", rec.Name, err)
		return Record{}, err
	}
	stored, err := m.store.Get(ctx, rec.ID)
	if err != nil {
		return Record{}, err
	}
	if m.events != nil {
		m.events.PublishAsync(eventbus.EventArtifactStored, eventbus.ArtifactData{ID: rec.ID, Name: rec.Name, Size: rec.Size})
	}
	return stored.WithoutData(), nil
}

func (m *Manager) Get(ctx context.Context, id string) (Record, error) {
	return m.store.Get(ctx, id)
}

// Delete removes an artifact. Unknown IDs report ErrNotFound.
func (m *Manager) Delete(ctx context.Context, id string) error {
	if _, err := m.store.Get(ctx, id); err != nil {
		return err
	}
	if err := m.store.Delete(ctx, id); err != nil {
		return err
	}
	if m.events != nil {
		m.events.PublishAsync(eventbus.EventArtifactDeleted, eventbus.ArtifactData{ID: id})
	}
	return nil
}

func (m *Manager) List(ctx context.Context) ([]Record, error) {
	return m.store.List(ctx)
}

func (m *Manager) Stats(ctx context.Context) (map[string]any, error) {
	return m.store.Stats(ctx)
}

// Close stops cleanup and closes the store.
func (m *Manager) Close(ctx context.Context) error {
	var err error
	m.closeOnce.Do(func() {
		close(m.cleanupStop)
		err = m.store.Close(ctx)
	})
	return err
}
