package lifecycle

import (
	"context"
)

// SchemaManager creates and updates the database schema. Global tables
// are handled by GORM AutoMigrate, dataset tables are created as
// LIST-partitioned tables. Schema management is idempotent.
type SchemaManager interface {
	// Create creates the initial database schema, the sequence of durable
	// keys and applies "C" collation to name columns.
	Create(ctx context.Context) error

	// Migrate updates global tables to the latest version of their
	// models.
	Migrate(ctx context.Context) error
}
