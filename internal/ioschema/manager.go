// Package ioschema implements SchemaManager interface for
// database schema management. This is an impure I/O package
// that wraps GORM AutoMigrate and partition DDL.
package ioschema

import (
	"context"
	"log/slog"

	"github.com/gnames/gncat/pkg/db"
	"github.com/gnames/gncat/pkg/lifecycle"
	"github.com/gnames/gncat/pkg/schema"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const collationSQL = `ALTER TABLE %s ALTER COLUMN %s ` +
	`TYPE VARCHAR(%d) COLLATE "C"`

// manager implements the lifecycle.SchemaManager interface.
type manager struct {
	operator db.Operator
}

// NewManager creates a new SchemaManager.
func NewManager(op db.Operator) lifecycle.SchemaManager {
	return &manager{operator: op}
}

// OpenGORM wraps a pgx pool into a GORM connection.
func OpenGORM(pool *pgxpool.Pool) (*gorm.DB, error) {
	if pool == nil {
		return nil, NotConnectedError()
	}
	sqlDB := stdlib.OpenDBFromPool(pool)
	res, err := gorm.Open(
		postgres.New(postgres.Config{Conn: sqlDB}),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)},
	)
	if err != nil {
		return nil, GORMConnectionError(err)
	}
	return res, nil
}

// Create creates global tables with GORM AutoMigrate, partitioned
// dataset tables with their indexes and the sequence of durable keys.
// It also sets collation of name columns of global tables.
func (m *manager) Create(ctx context.Context) error {
	gormDB, err := OpenGORM(m.operator.Pool())
	if err != nil {
		return err
	}

	if err = schema.Migrate(gormDB.WithContext(ctx)); err != nil {
		return CreateSchemaError(err)
	}

	if err = m.createPartitioned(ctx); err != nil {
		return err
	}

	if err = m.setCollation(ctx); err != nil {
		return err
	}

	slog.Info("Schema created")
	return nil
}

// Migrate updates global tables and creates partitioned tables that do
// not exist yet.
func (m *manager) Migrate(ctx context.Context) error {
	gormDB, err := OpenGORM(m.operator.Pool())
	if err != nil {
		return err
	}

	if err = schema.Migrate(gormDB.WithContext(ctx)); err != nil {
		return MigrateSchemaError(err)
	}

	if err = m.createPartitioned(ctx); err != nil {
		return err
	}

	slog.Info("Schema migrated")
	return nil
}

// createPartitioned creates missing partitioned parent tables. Indexes
// created on a parent are propagated to every partition attached later.
func (m *manager) createPartitioned(ctx context.Context) error {
	pool := m.operator.Pool()
	if pool == nil {
		return NotConnectedError()
	}

	if _, err := pool.Exec(ctx, schema.SequenceDDL()); err != nil {
		return PartitionTableError(schema.UsageKeySeq, err)
	}

	for _, v := range schema.PartitionedModels() {
		table := v.TableName()
		exists, err := m.operator.TableExists(ctx, table)
		if err != nil {
			return err
		}
		if exists {
			continue
		}

		if _, err = pool.Exec(ctx, v.TableDDL()); err != nil {
			return PartitionTableError(table, err)
		}
		for _, idx := range v.IndexDDL() {
			if _, err = pool.Exec(ctx, idx); err != nil {
				return PartitionTableError(table, err)
			}
		}
		slog.Debug("Created partitioned table", "table", table)
	}
	return nil
}

// setCollation sets "C" collation on varchar columns of
// GORM-managed tables. Partitioned tables get it from their DDL.
func (m *manager) setCollation(ctx context.Context) error {
	pool := m.operator.Pool()
	if pool == nil {
		return NotConnectedError()
	}

	type columnDef struct {
		table, column string
		varchar       int
	}

	columns := []columnDef{
		{"usage_search_index", "label", 1000},
		{"usage_search_index", "canonical", 255},
		{"decisions", "name", 500},
	}

	for _, col := range columns {
		q := formatCollationSQL(collationSQL, col.table,
			col.column, col.varchar)
		if _, err := pool.Exec(ctx, q); err != nil {
			return CollationError(col.table, col.column, err)
		}
	}

	return nil
}
