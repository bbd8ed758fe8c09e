package iorepo_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gnames/gncat/internal/iorepo"
	"github.com/gnames/gncat/pkg/sector"
	"github.com/gnames/gncat/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupMockDB(t *testing.T) (*iorepo.Repo, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	gormDB, err := gorm.Open(
		postgres.New(postgres.Config{Conn: db}),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)},
	)
	require.NoError(t, err)
	return iorepo.New(gormDB), mock
}

var sectorCols = []string{
	"key", "subject_dataset_key", "subject_id", "target_dataset_key",
	"target_id", "mode", "note", "broken", "sync_attempt", "created_at",
	"modified_at",
}

func TestSector(t *testing.T) {
	repo, mock := setupMockDB(t)
	ctx := context.Background()
	now := time.Now()

	rows := sqlmock.NewRows(sectorCols).
		AddRow(1, 11, "g1", 3, "top", "union", "", false, 2, now, now)
	mock.ExpectQuery(`SELECT \* FROM "sectors" WHERE key = \$1`).
		WillReturnRows(rows)

	sec, err := repo.Sector(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, sector.Union, sec.Mode)
	assert.Equal(t, "g1", sec.SubjectID)
	assert.Equal(t, 2, sec.SyncAttempt)

	mock.ExpectQuery(`SELECT \* FROM "sectors" WHERE key = \$1`).
		WillReturnRows(sqlmock.NewRows(sectorCols))
	_, err = repo.Sector(ctx, 5)
	assert.ErrorIs(t, err, store.ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSectorsTargeting(t *testing.T) {
	repo, mock := setupMockDB(t)
	now := time.Now()

	rows := sqlmock.NewRows(sectorCols).
		AddRow(1, 11, "g1", 3, "top", "attach", "", false, 1, now, now).
		AddRow(2, 11, "g2", 3, "top", "merge", "", true, 0, now, now)
	mock.ExpectQuery(`SELECT \* FROM "sectors" WHERE target_dataset_key = \$1 AND target_id = \$2 ORDER BY key`).
		WithArgs(3, "top").
		WillReturnRows(rows)

	res, err := repo.SectorsTargeting(context.Background(), 3, "top")
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, sector.Attach, res[0].Mode)
	assert.Equal(t, sector.Merge, res[1].Mode)
	assert.True(t, res[1].Broken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetBroken(t *testing.T) {
	tests := []struct {
		msg      string
		affected int64
		err      error
	}{
		{"found", 1, nil},
		{"missing", 0, store.ErrNotFound},
	}

	for _, v := range tests {
		repo, mock := setupMockDB(t)
		mock.ExpectBegin()
		mock.ExpectExec(`UPDATE "sectors" SET "broken"=\$1`).
			WillReturnResult(sqlmock.NewResult(0, v.affected))
		mock.ExpectCommit()

		err := repo.SetBroken(context.Background(), 1, true)
		if v.err == nil {
			assert.NoError(t, err, v.msg)
		} else {
			assert.ErrorIs(t, err, v.err, v.msg)
		}
		assert.NoError(t, mock.ExpectationsWereMet(), v.msg)
	}
}

func TestLastImport(t *testing.T) {
	repo, mock := setupMockDB(t)
	started := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	cols := []string{
		"id", "sector_key", "attempt", "run_id", "state", "counters",
		"warnings", "usage_ids", "names", "error", "started_at", "finished_at",
	}
	rows := sqlmock.NewRows(cols).AddRow(
		7, 1, 3, "run", "finished",
		[]byte(`{"copied":{"taxa":2,"names":2},"merged":1}`),
		[]byte(`["w1"]`), []byte(`["g1","s1"]`), []byte(`["Carabus"]`),
		"", started, started.Add(time.Second),
	)
	mock.ExpectQuery(`SELECT \* FROM "sector_imports" WHERE sector_key = \$1 ORDER BY attempt DESC`).
		WillReturnRows(rows)

	si, err := repo.LastImport(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(7), si.ID)
	assert.Equal(t, sector.Finished, si.State)
	assert.Equal(t, 2, si.Counters.Copied.Taxa)
	assert.Equal(t, 1, si.Counters.Merged)
	assert.Equal(t, []string{"w1"}, si.Warnings)
	assert.Equal(t, []string{"g1", "s1"}, si.UsageIDs)
	assert.Equal(t, time.Second, si.Duration())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateImport(t *testing.T) {
	repo, mock := setupMockDB(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT COALESCE\(MAX\(attempt\), 0\) FROM "sector_imports"`).
		WithArgs(4).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(2))
	mock.ExpectQuery(`INSERT INTO "sector_imports"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(12))
	mock.ExpectCommit()

	si := &sector.SectorImport{
		SectorKey: 4,
		State:     sector.Waiting,
		StartedAt: time.Now(),
	}
	require.NoError(t, repo.CreateImport(context.Background(), si))
	assert.Equal(t, 3, si.Attempt)
	assert.Equal(t, int64(12), si.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDecisions(t *testing.T) {
	repo, mock := setupMockDB(t)

	cols := []string{
		"dataset_key", "subject_id", "action", "name", "authorship",
		"rank", "status",
	}
	rows := sqlmock.NewRows(cols).
		AddRow(11, "s1", "skip", nil, nil, nil, nil).
		AddRow(11, "s2", "update", "Carabus nemoralis", nil, 20, nil)
	mock.ExpectQuery(`SELECT \* FROM "decisions" WHERE dataset_key = \$1 ORDER BY subject_id`).
		WithArgs(11).
		WillReturnRows(rows)

	res, err := repo.Decisions(context.Background(), 11)
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, sector.Skip, res[0].Action)
	assert.Nil(t, res[0].Rank)
	assert.Equal(t, sector.Update, res[1].Action)
	assert.Equal(t, "Carabus nemoralis", res[1].Name)
	require.NotNil(t, res[1].Rank)
	assert.Equal(t, 20, int(*res[1].Rank))
	assert.Nil(t, res[1].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDatasets(t *testing.T) {
	repo, mock := setupMockDB(t)

	cols := []string{
		"key", "title", "kind", "archive", "schedule", "imported_at",
		"usage_count", "name_count",
	}
	rows := sqlmock.NewRows(cols).
		AddRow(3, "Draft", "managed", "", "", nil, 0, 0).
		AddRow(11, "Carabidae", "source", "/tmp/c.sqlite", "@daily",
			time.Now(), 10, 9)
	mock.ExpectQuery(`SELECT \* FROM "datasets" ORDER BY key`).
		WillReturnRows(rows)

	res, err := repo.Datasets(context.Background())
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.True(t, res[0].ImportedAt.IsZero())
	assert.Equal(t, "@daily", res[1].Schedule)
	assert.Equal(t, 10, res[1].UsageCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}
