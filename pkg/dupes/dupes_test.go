package dupes_test

import (
	"strings"
	"testing"

	"github.com/gnames/gncat/pkg/dupes"
	"github.com/gnames/gncat/pkg/graph"
	"github.com/gnames/gncat/pkg/model"
	"github.com/gnames/gnlib/ent/nomcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(id, canonical, auth string, rank model.Rank) dupes.Entry {
	return dupes.Entry{
		UsageID: id, Canonical: canonical, Authorship: auth, Rank: rank,
		Code: nomcode.Zoological, Kind: model.TaxonKind,
	}
}

func sample() []dupes.Entry {
	return []dupes.Entry{
		entry("1", "Foo bar", "L.", model.Species),
		entry("2", "Foo bar", "L.", model.Species),
		entry("3", "Foo bar", "Mill.", model.Phylum),
		entry("4", "Fee bar", "L.", model.Species),
	}
}

func TestFindRankAwareness(t *testing.T) {
	tests := []struct {
		msg       string
		rankAware bool
		size      int
	}{
		{"rank aware", true, 2},
		{"rank ignored", false, 3},
	}
	for _, v := range tests {
		t.Run(v.msg, func(t *testing.T) {
			gs := dupes.Find(sample(), dupes.Options{
				Mode: dupes.Fuzzy, MinSize: 2, RankAware: v.rankAware,
			})
			require.Len(t, gs, 1)
			assert.Len(t, gs[0].Members, v.size)
			assert.Equal(t, "Foo bar", gs[0].Canonical)
		})
	}
}

func TestFindFlags(t *testing.T) {
	gs := dupes.Find(sample(), dupes.Options{MinSize: 2})
	require.Len(t, gs, 1)
	g := gs[0]
	assert.True(t, g.AuthorshipDifferent)
	assert.True(t, g.RankDifferent)
	assert.False(t, g.CodeDifferent)

	no := false
	gs = dupes.Find(sample(), dupes.Options{MinSize: 2, RankDifferent: &no})
	assert.Empty(t, gs)

	yes := true
	gs = dupes.Find(sample(), dupes.Options{
		MinSize: 2, AuthorshipDifferent: &yes, RankDifferent: &yes,
	})
	assert.Len(t, gs, 1)
}

func TestFindExact(t *testing.T) {
	gs := dupes.Find(sample(), dupes.Options{Mode: dupes.Exact, MinSize: 2})
	require.Len(t, gs, 1)
	assert.Len(t, gs[0].Members, 2)
	assert.False(t, gs[0].AuthorshipDifferent)

	gs = dupes.Find(sample(), dupes.Options{Mode: dupes.Exact, MinSize: 3})
	assert.Empty(t, gs)
}

func TestFindOrderAndFilters(t *testing.T) {
	es := append(sample(),
		entry("5", "Fee bar", "L.", model.Species),
		entry("6", "Aaa bar", "L.", model.Species),
		entry("7", "aaa  BAR", "L.", model.Species),
		entry("8", "", "", model.Species),
		entry("9", "", "", model.Species),
	)
	es[5].Kind = model.SynonymKind

	gs := dupes.Find(es, dupes.Options{MinSize: 2})
	require.Len(t, gs, 3)
	assert.Equal(t, "Foo bar", gs[0].Canonical)
	assert.Equal(t, "Aaa bar", gs[1].Canonical)
	assert.Equal(t, "Fee bar", gs[2].Canonical)

	gs = dupes.Find(es, dupes.Options{
		MinSize: 2, Kinds: []model.Kind{model.TaxonKind},
	})
	require.Len(t, gs, 2)

	gs = dupes.Find(es, dupes.Options{
		MinSize: 1, Ranks: []model.Rank{model.Phylum},
	})
	assert.Empty(t, gs, "min size is at least 2")
}

func TestKey(t *testing.T) {
	e := entry("1", "Foo  Bar", "L.", model.Species)
	assert.Equal(t, "foo bar", dupes.Key(e, dupes.Options{}))
	k := dupes.Key(e, dupes.Options{
		Mode: dupes.Exact, RankAware: true, CodeAware: true,
	})
	assert.True(t, strings.HasPrefix(k, "Foo  Bar|L.|species|"), k)

	m, ok := dupes.ModeFromString("EXACT")
	assert.True(t, ok)
	assert.Equal(t, dupes.Exact, m)
	_, ok = dupes.ModeFromString("approximate")
	assert.False(t, ok)
}

func TestFromGraph(t *testing.T) {
	g := graph.New()
	g.Add(model.Usage{ID: "a", Kind: model.TaxonKind, Ordinal: 1,
		Name: model.Name{ID: "a", Canonical: "Aus", Rank: model.Genus}})
	g.Add(model.Usage{ID: "b", Kind: model.TaxonKind, ParentID: "a", Ordinal: 2,
		Name: model.Name{ID: "b", Canonical: "Aus", Rank: model.Genus}})
	g.Resolve()

	es := dupes.FromGraph(g)
	require.Len(t, es, 2)
	gs := dupes.Find(es, dupes.Options{RankAware: true})
	require.Len(t, gs, 1)
	for _, m := range gs[0].Members {
		assert.NotEqual(t, graph.NoHandle, m.Handle)
	}

	us := []*model.Usage{&g.Node(0).Usage, &g.Node(1).Usage}
	assert.Len(t, dupes.FromUsages(us), 2)
}

func TestIndex(t *testing.T) {
	idx := dupes.NewIndex(dupes.Options{RankAware: true})
	u := &model.Usage{ID: "x1", Kind: model.TaxonKind,
		Name: model.Name{Canonical: "Aus bus", Rank: model.Species}}
	idx.Add("p1", u)
	idx.Add("p1", &model.Usage{ID: "x2", Kind: model.TaxonKind,
		Name: model.Name{Canonical: "Aus bus", Rank: model.Species}})
	assert.Equal(t, 1, idx.Len())

	other := &model.Usage{ID: "s9", Kind: model.TaxonKind,
		Name: model.Name{Canonical: "aus  bus", Rank: model.Species}}
	id, ok := idx.Lookup("p1", other)
	assert.True(t, ok)
	assert.Equal(t, "x1", id)

	_, ok = idx.Lookup("p2", other)
	assert.False(t, ok)

	other.Name.Rank = model.Genus
	_, ok = idx.Lookup("p1", other)
	assert.False(t, ok)
}
