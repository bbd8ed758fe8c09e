package memstore_test

import (
	"context"
	"testing"

	"github.com/gnames/gncat/internal/memstore"
	"github.com/gnames/gncat/pkg/model"
	"github.com/gnames/gncat/pkg/sector"
	"github.com/gnames/gncat/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func taxon(id, parent string, ord int) *model.Usage {
	return &model.Usage{
		ID:         id,
		DatasetKey: 1,
		Kind:       model.TaxonKind,
		ParentID:   parent,
		Ordinal:    ord,
		Name:       model.Name{ID: "n-" + id, ScientificName: id},
	}
}

func TestClassification(t *testing.T) {
	ctx := context.Background()
	ms := memstore.New()
	require.NoError(t, ms.CreateUsage(ctx, taxon("a", "", 0), model.Attachments{}))
	require.NoError(t, ms.CreateUsage(ctx, taxon("c", "a", 2), model.Attachments{}))
	b := taxon("b", "a", 1)
	b.SectorKey = 7
	require.NoError(t, ms.CreateUsage(ctx, b, model.Attachments{
		Vernaculars: []model.VernacularName{{Name: "Bee"}},
	}))
	assert.NotZero(t, b.Key)

	err := ms.CreateUsage(ctx, taxon("a", "", 0), model.Attachments{})
	assert.True(t, store.IsConflict(err))

	kids, err := ms.Children(ctx, 1, "a")
	require.NoError(t, err)
	require.Len(t, kids, 2)
	assert.Equal(t, "b", kids[0].ID)
	kids[0].ID = "changed"

	u, err := ms.Usage(ctx, 1, "b")
	require.NoError(t, err)
	assert.Equal(t, "b", u.ID)

	n, err := ms.CountForeignChildren(ctx, 1, "a", 7)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	su, err := ms.SectorUsages(ctx, 1, 7)
	require.NoError(t, err)
	assert.Len(t, su, 1)

	require.NoError(t, ms.AddAttachments(ctx, 1, "b", model.Attachments{
		Vernaculars: []model.VernacularName{{Name: "Honey bee"}},
	}))
	att, err := ms.Attachments(ctx, 1, "b")
	require.NoError(t, err)
	assert.Len(t, att.Vernaculars, 2)

	require.NoError(t, ms.DeleteUsage(ctx, 1, "b"))
	_, err = ms.Usage(ctx, 1, "b")
	assert.ErrorIs(t, err, store.ErrNotFound)
	usages, names, err := ms.Count(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, usages)
	assert.Equal(t, 2, names)
}

func TestPartition(t *testing.T) {
	ctx := context.Background()
	ms := memstore.New()
	require.NoError(t, ms.CreateUsage(ctx, taxon("old", "", 0), model.Attachments{}))

	part, err := ms.NewPartition(ctx, 1)
	require.NoError(t, err)
	first, err := part.NextKeys(ctx, 2)
	require.NoError(t, err)
	u := taxon("new", "", 0)
	u.Key = first
	require.NoError(t, part.AddNames(ctx, []model.Name{u.Name}))
	require.NoError(t, part.AddUsages(ctx, []model.Usage{*u}))

	// nothing is visible before commit
	_, err = ms.Usage(ctx, 1, "new")
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, part.Commit(ctx))
	_, err = ms.Usage(ctx, 1, "new")
	assert.NoError(t, err)
	_, err = ms.Usage(ctx, 1, "old")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Error(t, part.AddUsages(ctx, nil))

	part, err = ms.NewPartition(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, part.Rollback(ctx))
	_, err = ms.Usage(ctx, 1, "new")
	assert.NoError(t, err)
}

func TestRepository(t *testing.T) {
	ctx := context.Background()
	ms := memstore.New()
	require.NoError(t, ms.SaveSector(ctx, &sector.Sector{
		Key: 1, TargetDatasetKey: 3, TargetID: "x",
	}))

	for range 3 {
		require.NoError(t, ms.CreateImport(ctx, &sector.SectorImport{SectorKey: 1}))
	}
	imps, err := ms.Imports(ctx, 1)
	require.NoError(t, err)
	require.Len(t, imps, 3)
	assert.Equal(t, 3, imps[0].Attempt)

	last, err := ms.LastImport(ctx, 1)
	require.NoError(t, err)
	last.State = sector.Finished
	require.NoError(t, ms.UpdateImport(ctx, last))
	imp, err := ms.Import(ctx, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, sector.Finished, imp.State)

	secs, err := ms.SectorsTargeting(ctx, 3, "x")
	require.NoError(t, err)
	assert.Len(t, secs, 1)

	require.NoError(t, ms.SetBroken(ctx, 1, true))
	sec, err := ms.Sector(ctx, 1)
	require.NoError(t, err)
	assert.True(t, sec.Broken)

	require.NoError(t, ms.DeleteSector(ctx, 1))
	assert.ErrorIs(t, ms.DeleteSector(ctx, 1), store.ErrNotFound)
}
