package iostore_test

import (
	"context"
	"errors"
	"testing"

	"github.com/gnames/gncat/internal/iodb"
	"github.com/gnames/gncat/internal/ioschema"
	"github.com/gnames/gncat/internal/iostore"
	"github.com/gnames/gncat/internal/iotesting"
	"github.com/gnames/gncat/pkg/model"
	"github.com/gnames/gncat/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) *iostore.Store {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	ctx := context.Background()
	op := iodb.NewPgxOperator()
	require.NoError(t, op.Connect(ctx, iotesting.GetTestDatabaseConfig()))
	t.Cleanup(func() { op.Close() })
	require.NoError(t, op.DropAllTables(ctx))
	require.NoError(t, ioschema.NewManager(op).Create(ctx))

	res, err := iostore.New(op.Pool())
	require.NoError(t, err)
	return res
}

func usage(ds int, id, parent, name string) model.Usage {
	return model.Usage{
		ID:         id,
		DatasetKey: ds,
		Kind:       model.TaxonKind,
		Status:     model.StatusAccepted,
		ParentID:   parent,
		Name: model.Name{
			ID:             "n-" + id,
			ScientificName: name,
			Canonical:      name,
		},
	}
}

func TestNew(t *testing.T) {
	_, err := iostore.New(nil)
	assert.Error(t, err)
}

func importDataset(t *testing.T, s *iostore.Store, ds int, us ...model.Usage) {
	ctx := context.Background()
	p, err := s.NewPartition(ctx, ds)
	require.NoError(t, err)

	first, err := p.NextKeys(ctx, 2*len(us))
	require.NoError(t, err)
	names := make([]model.Name, len(us))
	for i := range us {
		us[i].Key = first + int64(i)
		us[i].Name.Key = first + int64(len(us)+i)
		us[i].Ordinal = i
		names[i] = us[i].Name
	}

	require.NoError(t, p.AddReferences(ctx,
		[]model.Reference{{ID: "r1", Citation: "Linnaeus 1758"}}))
	require.NoError(t, p.AddNames(ctx, names))
	require.NoError(t, p.AddUsages(ctx, us))
	require.NoError(t, p.AddAttachments(ctx, []model.UsageAttachments{{
		UsageKey: us[0].Key,
		UsageID:  us[0].ID,
		Attachments: model.Attachments{
			Vernaculars: []model.VernacularName{{Name: "beetles", Language: "eng"}},
		},
	}}))
	require.NoError(t, p.Commit(ctx))
}

func TestPartition(t *testing.T) {
	s := setup(t)
	ctx := context.Background()

	importDataset(t, s, 11,
		usage(11, "g1", "", "Carabus"),
		usage(11, "s1", "g1", "Carabus nemoralis"),
		usage(11, "s2", "g1", "Carabus violaceus"),
	)

	u, err := s.Usage(ctx, 11, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Carabus nemoralis", u.Name.ScientificName)
	assert.NotZero(t, u.Key)
	assert.NotZero(t, u.Name.Key)

	children, err := s.Children(ctx, 11, "g1")
	require.NoError(t, err)
	require.Len(t, children, 2)
	assert.Equal(t, "s1", children[0].ID)

	att, err := s.Attachments(ctx, 11, "g1")
	require.NoError(t, err)
	assert.Len(t, att.Vernaculars, 1)

	// reimport replaces the previous partition
	importDataset(t, s, 11, usage(11, "g2", "", "Cicindela"))
	usages, names, err := s.Count(ctx, 11)
	require.NoError(t, err)
	assert.Equal(t, 1, usages)
	assert.Equal(t, 1, names)
	_, err = s.Usage(ctx, 11, "g1")
	assert.ErrorIs(t, err, store.ErrNotFound)

	// rollback keeps the committed partition
	p, err := s.NewPartition(ctx, 11)
	require.NoError(t, err)
	require.NoError(t, p.Rollback(ctx))
	usages, _, err = s.Count(ctx, 11)
	require.NoError(t, err)
	assert.Equal(t, 1, usages)
}

func TestPartitionConflict(t *testing.T) {
	s := setup(t)
	ctx := context.Background()

	p, err := s.NewPartition(ctx, 12)
	require.NoError(t, err)
	u := usage(12, "g1", "", "Carabus")
	require.NoError(t, p.AddUsages(ctx, []model.Usage{u, u}))
	err = p.Commit(ctx)
	assert.True(t, store.IsConflict(err))
	assert.NoError(t, p.Rollback(ctx))
}

func TestClassification(t *testing.T) {
	s := setup(t)
	ctx := context.Background()
	ds := 3

	root := usage(ds, "top", "", "Coleoptera")
	require.NoError(t, s.CreateUsage(ctx, &root, model.Attachments{}))
	assert.NotZero(t, root.Key)

	child := usage(ds, "c1", "top", "Carabus")
	child.SectorKey = 1
	att := model.Attachments{
		Distributions: []model.Distribution{{Area: "Europe"}},
	}
	require.NoError(t, s.CreateUsage(ctx, &child, att))

	dup := usage(ds, "c1", "top", "Carabus")
	err := s.CreateUsage(ctx, &dup, model.Attachments{})
	assert.True(t, store.IsConflict(err))

	syn := usage(ds, "c2", "", "Carabidae")
	syn.Kind = model.SynonymKind
	syn.Status = model.StatusSynonym
	syn.AcceptedID = "top"
	syn.SectorKey = 2
	require.NoError(t, s.CreateUsage(ctx, &syn, model.Attachments{}))

	n, err := s.CountForeignChildren(ctx, ds, "top", 1)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	sectorUsages, err := s.SectorUsages(ctx, ds, 1)
	require.NoError(t, err)
	assert.Len(t, sectorUsages, 1)

	roots, err := s.Roots(ctx, ds)
	require.NoError(t, err)
	assert.Len(t, roots, 1)

	child.Remarks = "updated"
	key := child.Key
	require.NoError(t, s.UpdateUsage(ctx, &child, model.Attachments{}))
	assert.Equal(t, key, child.Key)
	got, err := s.Usage(ctx, ds, "c1")
	require.NoError(t, err)
	assert.Equal(t, "updated", got.Remarks)
	gotAtt, err := s.Attachments(ctx, ds, "c1")
	require.NoError(t, err)
	assert.True(t, gotAtt.IsEmpty())

	require.NoError(t, s.AddAttachments(ctx, ds, "c1", att))
	gotAtt, err = s.Attachments(ctx, ds, "c1")
	require.NoError(t, err)
	assert.Len(t, gotAtt.Distributions, 1)

	missing := usage(ds, "nope", "", "Nope")
	err = s.UpdateUsage(ctx, &missing, model.Attachments{})
	assert.True(t, errors.Is(err, store.ErrNotFound))

	require.NoError(t, s.DeleteUsage(ctx, ds, "c1"))
	assert.ErrorIs(t, s.DeleteUsage(ctx, ds, "c1"), store.ErrNotFound)
	usages, names, err := s.Count(ctx, ds)
	require.NoError(t, err)
	assert.Equal(t, 2, usages)
	assert.Equal(t, 2, names)
}
