package persist_test

import (
	"context"
	"errors"
	"testing"

	"github.com/gnames/gncat/pkg/graph"
	"github.com/gnames/gncat/pkg/model"
	"github.com/gnames/gncat/pkg/persist"
	"github.com/gnames/gncat/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeParts struct {
	part *fakePart
}

func (f *fakeParts) NewPartition(_ context.Context, key int) (store.Partition, error) {
	f.part.key = key
	return f.part, nil
}

type fakePart struct {
	key        int
	next       int64
	failUsages bool
	refs       []model.Reference
	names      []model.Name
	usages     []model.Usage
	atts       []model.UsageAttachments
	usageCalls int
	committed  bool
	rolledBack bool
}

func (p *fakePart) DatasetKey() int { return p.key }

func (p *fakePart) NextKeys(_ context.Context, n int) (int64, error) {
	res := p.next + 1
	p.next += int64(n)
	return res, nil
}

func (p *fakePart) AddReferences(_ context.Context, refs []model.Reference) error {
	p.refs = append(p.refs, refs...)
	return nil
}

func (p *fakePart) AddNames(_ context.Context, names []model.Name) error {
	p.names = append(p.names, names...)
	return nil
}

func (p *fakePart) AddUsages(_ context.Context, us []model.Usage) error {
	p.usageCalls++
	if p.failUsages && p.usageCalls > 1 {
		return errors.New("disk full")
	}
	p.usages = append(p.usages, us...)
	return nil
}

func (p *fakePart) AddAttachments(_ context.Context, atts []model.UsageAttachments) error {
	p.atts = append(p.atts, atts...)
	return nil
}

func (p *fakePart) Commit(context.Context) error {
	p.committed = true
	return nil
}

func (p *fakePart) Rollback(context.Context) error {
	p.rolledBack = true
	return nil
}

func sampleGraph() *graph.Store {
	g := graph.New()
	g.AddReference(model.Reference{ID: "r1", Citation: "Smith 1900"})
	add := func(u model.Usage) {
		if u.Name.ID == "" {
			u.Name.ID = "n-" + u.ID
		}
		g.Add(u)
	}
	add(model.Usage{ID: "child", Kind: model.TaxonKind, ParentID: "root", Ordinal: 3})
	add(model.Usage{ID: "root", Kind: model.TaxonKind, Ordinal: 1})
	add(model.Usage{ID: "syn", Kind: model.SynonymKind, AcceptedID: "child",
		Ordinal: 4, Name: model.Name{ID: "n-syn", BasionymID: "n-child"}})
	add(model.Usage{ID: "bare", Kind: model.BareNameKind, Ordinal: 2})
	add(model.Usage{ID: "root2", Kind: model.TaxonKind, Ordinal: 5,
		Name: model.Name{ID: "n-root"}})
	g.Attach("child", model.Attachments{
		Vernaculars: []model.VernacularName{{Name: "beetle"}},
	})
	g.Resolve()
	return g
}

func TestPersist(t *testing.T) {
	part := &fakePart{next: 100}
	var progress []int
	p := persist.New(&fakeParts{part: part}, 2,
		persist.OptProgress(func(n int) { progress = append(progress, n) }))

	res, err := p.Persist(context.Background(), sampleGraph(), 7)
	require.NoError(t, err)
	assert.True(t, part.committed)
	assert.False(t, part.rolledBack)

	assert.Equal(t, persist.Result{
		DatasetKey: 7, References: 1, Names: 4, Usages: 5, Attachments: 1,
	}, res)

	var ids []string
	byID := make(map[string]model.Usage)
	for _, u := range part.usages {
		ids = append(ids, u.ID)
		byID[u.ID] = u
		assert.Equal(t, 7, u.DatasetKey)
		assert.NotZero(t, u.Key)
		assert.NotZero(t, u.Name.Key)
	}
	assert.Equal(t, []string{"root", "child", "syn", "root2", "bare"}, ids)

	assert.Equal(t, byID["root"].Key, byID["child"].ParentKey)
	assert.Equal(t, byID["child"].Key, byID["syn"].AcceptedKey)
	assert.Equal(t, byID["child"].Name.Key, byID["syn"].Name.BasionymKey)
	assert.Equal(t, byID["root"].Name.Key, byID["root2"].Name.Key)
	assert.Equal(t, byID["child"].Key, part.atts[0].UsageKey)

	assert.Equal(t, []int{2, 4, 5}, progress)
}

func TestPersistRollback(t *testing.T) {
	part := &fakePart{failUsages: true}
	p := persist.New(&fakeParts{part: part}, 2)

	_, err := p.Persist(context.Background(), sampleGraph(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.True(t, part.rolledBack)
	assert.False(t, part.committed)
}

func TestPersistCanceled(t *testing.T) {
	part := &fakePart{}
	p := persist.New(&fakeParts{part: part}, 2)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Persist(ctx, sampleGraph(), 1)
	assert.ErrorIs(t, err, context.Canceled)
	assert.True(t, part.rolledBack)
}
