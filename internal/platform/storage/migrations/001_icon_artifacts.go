package migrations

import (
	"gorm.io/gorm"
)

// Migration001IconArtifacts creates the table holding built icon containers.
type Migration001IconArtifacts struct{}

func (m *Migration001IconArtifacts) Version() string {
	return "001_icon_artifacts"
}

func (m *Migration001IconArtifacts) Description() string {
	return "Create icon_artifacts table"
}

func (m *Migration001IconArtifacts) Up(db *gorm.DB) error {
	if err := db.Exec(`
		CREATE TABLE IF NOT EXISTS icon_artifacts (
			id VARCHAR(36) PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			size INTEGER NOT NULL,
			data BLOB NOT NULL,
			entries JSON,
			created_at DATETIME NOT NULL,
			expires_at DATETIME
		)
	`).Error; err != nil {
		return err
	}
	if err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_icon_artifacts_created_at ON icon_artifacts(created_at)`).Error; err != nil {
		return err
	}
	return db.Exec(`CREATE INDEX IF NOT EXISTS idx_icon_artifacts_expires_at ON icon_artifacts(expires_at)`).Error
}

func (m *Migration001IconArtifacts) Down(db *gorm.DB) error {
	return db.Exec(`DROP TABLE IF EXISTS icon_artifacts`).Error
}
