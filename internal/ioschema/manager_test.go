package ioschema_test

import (
	"context"
	"testing"

	"github.com/gnames/gncat/internal/iodb"
	"github.com/gnames/gncat/internal/ioschema"
	"github.com/gnames/gncat/internal/iotesting"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotConnected(t *testing.T) {
	ctx := context.Background()
	mgr := ioschema.NewManager(iodb.NewPgxOperator())
	assert.Error(t, mgr.Create(ctx))
	assert.Error(t, mgr.Migrate(ctx))

	_, err := ioschema.OpenGORM(nil)
	assert.Error(t, err)
}

func TestCreate(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	op := iodb.NewPgxOperator()
	require.NoError(t, op.Connect(ctx, iotesting.GetTestDatabaseConfig()))
	defer op.Close()
	require.NoError(t, op.DropAllTables(ctx))

	mgr := ioschema.NewManager(op)
	require.NoError(t, mgr.Create(ctx))
	// second run only updates
	require.NoError(t, mgr.Migrate(ctx))

	tables := []string{
		"datasets", "sectors", "sector_imports", "decisions",
		"usage_search_index", "name", "name_usage", "reference",
		"vernacular_name", "distribution", "media", "description",
	}
	for _, v := range tables {
		exists, err := op.TableExists(ctx, v)
		require.NoError(t, err)
		assert.True(t, exists, v)
	}

	var collation string
	err := op.Pool().QueryRow(ctx, `
		SELECT collation_name FROM information_schema.columns
		WHERE table_name = 'name' AND column_name = 'scientific_name'`,
	).Scan(&collation)
	require.NoError(t, err)
	assert.Equal(t, "C", collation)
}
