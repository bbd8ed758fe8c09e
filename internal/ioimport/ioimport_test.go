package ioimport_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/gnames/gn"
	"github.com/gnames/gncat/internal/ioarchive"
	"github.com/gnames/gncat/internal/ioimport"
	"github.com/gnames/gncat/internal/memstore"
	"github.com/gnames/gncat/pkg/config"
	"github.com/gnames/gncat/pkg/errcode"
	"github.com/gnames/gncat/pkg/lifecycle"
	"github.com/gnames/gncat/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

var archiveSQL = []string{
	`CREATE TABLE reference (col__id TEXT, col__citation TEXT, col__issued TEXT)`,
	`CREATE TABLE name (
		col__id TEXT, col__scientific_name TEXT, col__authorship TEXT,
		col__rank_id TEXT)`,
	`CREATE TABLE taxon (
		col__id TEXT, col__name_id TEXT, col__parent_id TEXT,
		col__status_id TEXT, col__reference_id TEXT)`,
	`CREATE TABLE synonym (
		col__id TEXT, col__name_id TEXT, col__taxon_id TEXT, col__status_id TEXT)`,
	`CREATE TABLE vernacular (
		col__taxon_id TEXT, col__name TEXT, col__language TEXT)`,
	`INSERT INTO reference VALUES ('r1', 'Linnaeus 1758', '1758')`,
	`INSERT INTO name VALUES
		('n1', 'Carabus', 'Linnaeus, 1758', 'genus'),
		('n2', 'Carabus nemoralis', 'Müller, 1764', 'species'),
		('n3', 'Carabus hortensis', NULL, 'species'),
		('n4', 'Carabus lonely', NULL, 'species'),
		('n5', 'Carabus nemoralis', 'Linnaeus, 1758', 'species')`,
	`INSERT INTO taxon VALUES
		('t1', 'n1', NULL, 'accepted', 'r1'),
		('t2', 'n2', 't1', 'accepted', NULL),
		('t3', 'n5', 't1', 'accepted', NULL)`,
	`INSERT INTO synonym VALUES ('s1', 'n3', 't2', 'synonym')`,
	`INSERT INTO vernacular VALUES
		('t2', 'Hain-Laufkäfer', 'deu'),
		('missing', 'Nobody', 'eng')`,
}

func createArchive(t *testing.T) string {
	path := filepath.Join(t.TempDir(), "1000.sqlite")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()
	for _, q := range archiveSQL {
		_, err = db.Exec(q)
		require.NoError(t, err, q)
	}
	return path
}

func openSQLite(ctx context.Context, path string) (ioimport.Source, error) {
	return ioarchive.OpenSQLite(ctx, path)
}

func newImporter(
	t *testing.T,
	st *memstore.Store,
	opts ...ioimport.Option,
) lifecycle.Importer {
	cfg := config.New()
	cfg.Update([]config.Option{
		config.OptHomeDir(t.TempDir()),
		config.OptJobsNumber(2),
		config.OptDatabaseBatchSize(2),
	})
	opts = append(opts,
		ioimport.OptOpener(openSQLite),
		ioimport.OptProgressBar(false),
	)
	return ioimport.New(cfg, st, st, opts...)
}

func TestImport(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	st := memstore.New()
	im := newImporter(t, st)

	res, err := im.Import(ctx, 1000, createArchive(t))
	require.NoError(t, err)
	assert.Equal(1000, res.DatasetKey)
	assert.Equal(8, res.Records)
	assert.Equal(5, res.Usages)
	assert.Equal(1, res.Homonyms)
	assert.Equal(3, res.Stats.Taxa)
	assert.Equal(1, res.Stats.Synonyms)
	assert.Equal(1, res.Stats.BareNames)
	assert.Equal(1, res.Stats.DroppedAttachments)

	tests := []struct {
		msg      string
		id       string
		kind     model.Kind
		parent   string
		accepted string
		homonym  bool
	}{
		{"root", "t1", model.TaxonKind, "", "", false},
		{"homonym", "t2", model.TaxonKind, "t1", "", true},
		{"other homonym", "t3", model.TaxonKind, "t1", "", true},
		{"synonym", "s1", model.SynonymKind, "", "t2", false},
		{"bare name", "n4", model.BareNameKind, "", "", false},
	}
	for _, v := range tests {
		t.Run(v.msg, func(t *testing.T) {
			u, err := st.Usage(ctx, 1000, v.id)
			require.NoError(t, err)
			assert.Equal(v.kind, u.Kind)
			assert.Equal(v.parent, u.ParentID)
			assert.Equal(v.accepted, u.AcceptedID)
			assert.Equal(v.homonym, u.Issues.Has(model.Homonym))
		})
	}

	att, err := st.Attachments(ctx, 1000, "t2")
	require.NoError(t, err)
	require.Len(t, att.Vernaculars, 1)
	assert.Equal("Hain-Laufkäfer", att.Vernaculars[0].Name)
	assert.Len(st.References(1000), 1)

	ds, err := st.Dataset(ctx, 1000)
	require.NoError(t, err)
	assert.Equal(model.DatasetSource, ds.Kind)
	assert.Equal(5, ds.UsageCount)
	assert.False(ds.ImportedAt.IsZero())
}

func TestReimport(t *testing.T) {
	ctx := context.Background()
	st := memstore.New()
	require.NoError(t, st.SaveDataset(ctx, &model.Dataset{
		Key:     1000,
		Title:   "Carabidae",
		Kind:    model.DatasetSource,
		Archive: "/data/1000.sqlite.zip",
	}))
	im := newImporter(t, st)
	path := createArchive(t)

	first, err := im.Import(ctx, 1000, path)
	require.NoError(t, err)

	second, err := im.Import(ctx, 1000, path)
	require.NoError(t, err)
	assert.Equal(t, first.Usages, second.Usages)
	u2, err := st.Usage(ctx, 1000, "t2")
	require.NoError(t, err)
	assert.Positive(t, u2.Key)

	ds, err := st.Dataset(ctx, 1000)
	require.NoError(t, err)
	assert.Equal(t, "Carabidae", ds.Title)
	assert.Equal(t, "/data/1000.sqlite.zip", ds.Archive)
}

type locker struct {
	err      error
	locked   []int
	released int
}

func (l *locker) LockDataset(datasetKey int) (func(), error) {
	if l.err != nil {
		return nil, l.err
	}
	l.locked = append(l.locked, datasetKey)
	return func() { l.released++ }, nil
}

func TestImportLock(t *testing.T) {
	ctx := context.Background()
	path := createArchive(t)

	t.Run("locked and released", func(t *testing.T) {
		l := &locker{}
		im := newImporter(t, memstore.New(), ioimport.OptLocker(l))
		_, err := im.Import(ctx, 1000, path)
		require.NoError(t, err)
		assert.Equal(t, []int{1000}, l.locked)
		assert.Equal(t, 1, l.released)
	})

	t.Run("busy", func(t *testing.T) {
		l := &locker{err: errors.New("sync is running")}
		st := memstore.New()
		im := newImporter(t, st, ioimport.OptLocker(l))
		_, err := im.Import(ctx, 1000, path)
		require.Error(t, err)
		var gnErr *gn.Error
		require.True(t, errors.As(err, &gnErr))
		assert.Equal(t, errcode.ImportDatasetBusyError, gnErr.Code)

		_, err = st.Dataset(ctx, 1000)
		assert.Error(t, err)
	})
}

func TestImportMissingArchive(t *testing.T) {
	im := newImporter(t, memstore.New())
	_, err := im.Import(context.Background(), 1000,
		filepath.Join(t.TempDir(), "none.sqlite"))
	require.Error(t, err)
	var gnErr *gn.Error
	require.True(t, errors.As(err, &gnErr))
	assert.Equal(t, errcode.ArchiveOpenError, gnErr.Code)
}
