package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"ico-builder-go/internal/platform/errors"
	"ico-builder-go/internal/platform/storage/migrations"
)

// IconArtifact is a built icon container persisted for later download.
type IconArtifact struct {
	ID        string         `gorm:"primaryKey;size:36"`
	Name      string         `gorm:"size:255;not null"`
	Size      int64          `gorm:"not null"`
	Data      []byte         `gorm:"not null"`
	Entries   datatypes.JSON `gorm:"type:json"`
	CreatedAt time.Time      `gorm:"not null;index"`
	ExpiresAt *time.Time     `gorm:"index"`
}

func (IconArtifact) TableName() string {
	return "icon_artifacts"
}

// Open opens (creating if needed) the SQLite database at dsn and applies
// pending migrations. In-memory DSNs skip directory creation.
func Open(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, errors.New(errors.KindConfig, "storage.open", "sqlite dsn is empty")
	}
	if !isMemoryDSN(dsn) {
		dir := filepath.Dir(strings.TrimPrefix(dsn, "file:"))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(errors.KindStorage, "storage.open", "failed to create data directory", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.Wrap(errors.KindStorage, "storage.open", fmt.Sprintf("failed to open database %s", dsn), err)
	}

	manager := NewMigrationManager(db)
	for _, m := range migrations.All() {
		manager.AddMigration(m)
	}
	if err := manager.RunMigrations(); err != nil {
		return nil, err
	}
	return db, nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return errors.Wrap(errors.KindStorage, "storage.close", "failed to get sql handle", err)
	}
	return sqlDB.Close()
}

func isMemoryDSN(dsn string) bool {
	return strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}
