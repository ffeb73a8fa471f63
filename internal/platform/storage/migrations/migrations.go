package migrations

import "gorm.io/gorm"

// Migration mirrors storage.Migration without importing it.
type Migration interface {
	Version() string
	Description() string
	Up(db *gorm.DB) error
	Down(db *gorm.DB) error
}

// All returns every schema migration in apply order.
func All() []Migration {
	return []Migration{
		&Migration001IconArtifacts{},
	}
}
