package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"gorm.io/gorm"

	"ico-builder-go/internal/domain/artifact/model"
	"ico-builder-go/internal/domain/icon"
	"ico-builder-go/internal/platform/storage"
)

type sqliteStore struct {
	db  *gorm.DB
	ttl time.Duration
}

// NewSQLite builds a store on a migrated database from storage.Open.
func NewSQLite(db *gorm.DB, cfg Config) (Store, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlite store requires database handle")
	}
	return &sqliteStore{db: db, ttl: cfg.TTL}, nil
}

func (s *sqliteStore) Put(ctx context.Context, rec model.Record) error {
	if rec.ID == "" {
		return fmt.Errorf("artifact id required")
	}
	rec = stamp(rec, s.ttl)
	entries, err := sonic.Marshal(rec.Entries)
	if err != nil {
		return fmt.Errorf("encode entries: %w", err)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", rec.ID).Delete(&storage.IconArtifact{}).Error; err != nil {
			return err
		}
		return tx.Create(&storage.IconArtifact{
			ID:        rec.ID,
			Name:      rec.Name,
			Size:      rec.Size,
			Data:      rec.Data,
			Entries:   entries,
			CreatedAt: rec.CreatedAt,
			ExpiresAt: rec.ExpiresAt,
		}).Error
	})
}

func (s *sqliteStore) Get(ctx context.Context, id string) (model.Record, error) {
	var row storage.IconArtifact
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errorsIsNotFound(err) {
		return model.Record{}, fmt.Errorf("%w: %s", model.ErrNotFound, id)
	}
	if err != nil {
		return model.Record{}, err
	}
	rec := toRecord(row)
	if rec.Expired(time.Now()) {
		return model.Record{}, fmt.Errorf("%w: %s", model.ErrNotFound, id)
	}
	return rec, nil
}

func (s *sqliteStore) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Where("id = ?", id).Delete(&storage.IconArtifact{}).Error
}

func (s *sqliteStore) List(ctx context.Context) ([]model.Record, error) {
	var rows []storage.IconArtifact
	err := s.db.WithContext(ctx).
		Select("id", "name", "size", "entries", "created_at", "expires_at").
		Where("expires_at IS NULL OR expires_at > ?", time.Now()).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]model.Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, toRecord(row))
	}
	return out, nil
}

func (s *sqliteStore) CleanupExpired(ctx context.Context) error {
	return s.db.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at <= ?", time.Now()).
		Delete(&storage.IconArtifact{}).
		Error
}

func (s *sqliteStore) Stats(ctx context.Context) (map[string]any, error) {
	var agg struct {
		Total int64
		Bytes int64
	}
	err := s.db.WithContext(ctx).Model(&storage.IconArtifact{}).
		Select("COUNT(*) AS total, COALESCE(SUM(size), 0) AS bytes").
		Scan(&agg).Error
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"type":        DriverSQLite,
		"total":       agg.Total,
		"bytes":       agg.Bytes,
		"ttl_seconds": int(s.ttl.Seconds()),
	}, nil
}

// Close is a no-op; the database handle belongs to the caller.
func (s *sqliteStore) Close(context.Context) error {
	return nil
}

func toRecord(row storage.IconArtifact) model.Record {
	rec := model.Record{
		ID:        row.ID,
		Name:      row.Name,
		Data:      row.Data,
		Size:      row.Size,
		CreatedAt: row.CreatedAt,
		ExpiresAt: row.ExpiresAt,
	}
	if len(row.Entries) > 0 {
		var entries []icon.EntryInfo
		if err := sonic.Unmarshal(row.Entries, &entries); err == nil {
			rec.Entries = entries
		}
	}
	return rec
}

func errorsIsNotFound(err error) bool {
	return err != nil && errors.Is(err, gorm.ErrRecordNotFound)
}
