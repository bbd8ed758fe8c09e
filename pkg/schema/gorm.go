package schema

import (
	"gorm.io/gorm"
)

// AllModels returns all global models for GORM AutoMigrate.
func AllModels() []any {
	return []any{
		&Dataset{},
		&Sector{},
		&SectorImport{},
		&Decision{},
		&UsageSearchIndex{},
	}
}

// Migrate runs GORM AutoMigrate to create or update global tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(AllModels()...)
}
