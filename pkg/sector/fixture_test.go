package sector_test

import (
	"context"
	"testing"

	"github.com/gnames/gncat/internal/memstore"
	"github.com/gnames/gncat/pkg/model"
	"github.com/gnames/gncat/pkg/sector"
	"github.com/stretchr/testify/require"
)

const (
	draftKey  = 3
	sourceKey = 11
)

type rec struct {
	id, parent, accepted string
	name, author         string
	rank                 model.Rank
}

// coleoptera is a source subtree of 19 usages under t2.
var coleoptera = []rec{
	{"t2", "", "", "Coleoptera", "", model.Order},
	{"t3", "t2", "", "Carabidae", "Latreille, 1802", model.Family},
	{"t4", "t3", "", "Carabus", "Linnaeus, 1758", model.Genus},
	{"t5", "t4", "", "Carabus nemoralis", "Müller, 1764", model.Species},
	{"t6", "t4", "", "Carabus granulatus", "Linnaeus, 1758", model.Species},
	{"s1", "", "t6", "Carabus interstitialis", "Duftschmid, 1812", model.Species},
	{"t7", "t4", "", "Carabus auratus", "Linnaeus, 1760", model.Species},
	{"t8", "t3", "", "Cicindela", "Linnaeus, 1758", model.Genus},
	{"t9", "t8", "", "Cicindela campestris", "Linnaeus, 1758", model.Species},
	{"t10", "t8", "", "Cicindela hybrida", "Linnaeus, 1758", model.Species},
	{"s2", "", "t10", "Cicindela riparia", "Dejean, 1822", model.Species},
	{"t11", "t2", "", "Dytiscidae", "Leach, 1815", model.Family},
	{"t12", "t11", "", "Dytiscus", "Linnaeus, 1758", model.Genus},
	{"t13", "t12", "", "Dytiscus marginalis", "Linnaeus, 1758", model.Species},
	{"t14", "t12", "", "Dytiscus latissimus", "Linnaeus, 1758", model.Species},
	{"t15", "t2", "", "Coccinellidae", "Latreille, 1807", model.Family},
	{"t16", "t15", "", "Coccinella", "Linnaeus, 1758", model.Genus},
	{"t17", "t16", "", "Coccinella septempunctata", "Linnaeus, 1758", model.Species},
	{"s3", "", "t17", "Coccinella divaricata", "Olivier, 1808", model.Species},
}

func dist(area string) model.Distribution {
	return model.Distribution{
		Area: area, AreaID: area, Gazetteer: model.GazetteerISO,
	}
}

// attachments has 3 vernacular names and 7 distributions.
var attachments = map[string]model.Attachments{
	"t5": {
		Vernaculars:   []model.VernacularName{{Name: "Hain-Laufkäfer", Language: "deu"}},
		Distributions: []model.Distribution{dist("DE"), dist("FR")},
	},
	"t6": {
		Distributions: []model.Distribution{dist("DE")},
	},
	"t9": {
		Distributions: []model.Distribution{dist("DE"), dist("GB")},
	},
	"t13": {
		Vernaculars:   []model.VernacularName{{Name: "Great diving beetle", Language: "eng"}},
		Distributions: []model.Distribution{dist("DE")},
	},
	"t17": {
		Vernaculars: []model.VernacularName{
			{Name: "Seven-spot ladybird", Language: "eng", ReferenceID: "r1"},
		},
		Distributions: []model.Distribution{dist("DE")},
	},
}

func newUsage(datasetKey int, ordinal int, r rec) *model.Usage {
	kind, status := model.TaxonKind, model.StatusAccepted
	if r.accepted != "" {
		kind, status = model.SynonymKind, model.StatusSynonym
	}
	return &model.Usage{
		ID:         r.id,
		DatasetKey: datasetKey,
		Kind:       kind,
		Status:     status,
		ParentID:   r.parent,
		AcceptedID: r.accepted,
		Ordinal:    ordinal,
		Name: model.Name{
			ID:             "n-" + r.id,
			DatasetKey:     datasetKey,
			ScientificName: r.name,
			Canonical:      r.name,
			Authorship:     r.author,
			Rank:           r.rank,
			BasionymID:     "n-x",
		},
	}
}

// newFixture creates a source dataset with the Coleoptera subtree, a draft
// catalogue with the single root "cole" and an ATTACH sector 1 between
// them.
func newFixture(t *testing.T) (*memstore.Store, *memstore.Index) {
	t.Helper()
	ctx := context.Background()
	ms := memstore.New()
	for i, v := range coleoptera {
		u := newUsage(sourceKey, i, v)
		require.NoError(t, ms.CreateUsage(ctx, u, attachments[v.id]))
	}

	cole := newUsage(draftKey, 0, rec{
		id: "cole", name: "Coleoptera", rank: model.Order,
	})
	cole.Name.ID = "cole"
	cole.Name.BasionymID = ""
	require.NoError(t, ms.CreateUsage(ctx, cole, model.Attachments{}))

	require.NoError(t, ms.SaveSector(ctx, &sector.Sector{
		Key:               1,
		SubjectDatasetKey: sourceKey,
		SubjectID:         "t2",
		TargetDatasetKey:  draftKey,
		TargetID:          "cole",
		Mode:              sector.Attach,
	}))
	return ms, memstore.NewIndex()
}

func runSync(
	t *testing.T,
	f *sector.Factory,
	key int,
	c sector.Canceler,
) *sector.SectorImport {
	t.Helper()
	ctx := context.Background()
	s, err := f.NewSync(ctx, sector.Request{SectorKey: key, RunID: "test"})
	require.NoError(t, err)
	require.Equal(t, sector.Waiting, s.Import().State)

	imp, err := s.Run(ctx, c)
	require.NoError(t, err)
	return imp
}

func newFactory(ms *memstore.Store, idx *memstore.Index) *sector.Factory {
	return sector.NewFactory(ms, ms, idx, sector.OptIndexBatchSize(4))
}

type cancelAfter struct {
	n int
}

func (c *cancelAfter) Canceled() bool {
	c.n--
	return c.n < 0
}
