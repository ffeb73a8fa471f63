package storage

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func memoryDSN() string {
	return fmt.Sprintf("file:storage-%d?mode=memory&cache=shared", time.Now().UnixNano())
}

func TestOpen_AppliesMigrations(t *testing.T) {
	db, err := Open(memoryDSN())
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	assert.True(t, db.Migrator().HasTable(&IconArtifact{}))

	history, err := NewMigrationManager(db).History()
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "001_icon_artifacts", history[0].Version)
}

func TestOpen_RunsMigrationsOnce(t *testing.T) {
	dsn := filepath.Join(t.TempDir(), "nested", "icons.db")

	db, err := Open(dsn)
	require.NoError(t, err)
	require.NoError(t, Close(db))

	db, err = Open(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	var count int64
	require.NoError(t, db.Model(&MigrationRecord{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestOpen_EmptyDSN(t *testing.T) {
	_, err := Open("")
	assert.Error(t, err)
}

func TestIconArtifact_RoundTrip(t *testing.T) {
	db, err := Open(memoryDSN())
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	record := IconArtifact{
		ID:        "a1",
		Name:      "favicon.ico",
		Size:      4,
		Data:      []byte{0, 0, 1, 0},
		Entries:   datatypes.JSON(`[{"width":16,"height":16,"size":100}]`),
		CreatedAt: time.Now(),
	}
	require.NoError(t, db.Create(&record).Error)

	var got IconArtifact
	require.NoError(t, db.First(&got, "id = ?", "a1").Error)
	assert.Equal(t, record.Data, got.Data)
	assert.JSONEq(t, string(record.Entries), string(got.Entries))
	assert.Nil(t, got.ExpiresAt)
}

func TestRollbackMigration(t *testing.T) {
	db, err := Open(memoryDSN())
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db) })

	manager := NewMigrationManager(db)
	assert.Error(t, manager.RollbackMigration("001_icon_artifacts"), "unregistered migration")
	assert.Error(t, manager.RollbackMigration("999_missing"))
}
