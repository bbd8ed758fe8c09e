package sector_test

import (
	"encoding/json"
	"testing"

	"github.com/gnames/gncat/pkg/model"
	"github.com/gnames/gncat/pkg/sector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		msg      string
		from, to sector.State
		res      bool
	}{
		{"start", sector.Waiting, sector.Preparing, true},
		{"copy", sector.Preparing, sector.Copying, true},
		{"relink", sector.Copying, sector.Relinking, true},
		{"index", sector.Relinking, sector.Indexing, true},
		{"finish", sector.Indexing, sector.Finished, true},
		{"skip phase", sector.Preparing, sector.Relinking, false},
		{"back", sector.Relinking, sector.Copying, false},
		{"early finish", sector.Copying, sector.Finished, false},
		{"fail waiting", sector.Waiting, sector.Failed, true},
		{"fail copying", sector.Copying, sector.Failed, true},
		{"cancel relinking", sector.Relinking, sector.Canceled, true},
		{"cancel waiting", sector.Waiting, sector.Canceled, true},
		{"after finish", sector.Finished, sector.Failed, false},
		{"after fail", sector.Failed, sector.Canceled, false},
		{"after cancel", sector.Canceled, sector.Preparing, false},
	}

	for _, v := range tests {
		res := sector.CanTransition(v.from, v.to)
		assert.Equal(t, v.res, res, v.msg)
	}
}

func TestState(t *testing.T) {
	assert.True(t, sector.Finished.IsTerminal())
	assert.True(t, sector.Canceled.IsTerminal())
	assert.False(t, sector.Indexing.IsTerminal())
	assert.True(t, sector.Copying.IsRunning())
	assert.False(t, sector.Waiting.IsRunning())

	st, ok := sector.StateFromString(" Relinking ")
	assert.True(t, ok)
	assert.Equal(t, sector.Relinking, st)
	_, ok = sector.StateFromString("sleeping")
	assert.False(t, ok)

	imp := sector.SectorImport{SectorKey: 3, State: sector.Canceled}
	bs, err := json.Marshal(imp)
	require.NoError(t, err)
	assert.Contains(t, string(bs), `"state":"canceled"`)

	var res sector.SectorImport
	require.NoError(t, json.Unmarshal(bs, &res))
	assert.Equal(t, sector.Canceled, res.State)
}

func TestEnums(t *testing.T) {
	m, ok := sector.ModeFromString("UNION")
	assert.True(t, ok)
	assert.Equal(t, sector.Union, m)
	_, ok = sector.ModeFromString("graft")
	assert.False(t, ok)

	a, ok := sector.ActionFromString("skip-subtree")
	assert.True(t, ok)
	assert.Equal(t, sector.SkipSubtree, a)
	assert.Equal(t, "skip_subtree", a.String())

	p, ok := sector.OverridePolicyFromString("Names")
	assert.True(t, ok)
	assert.Equal(t, sector.OverrideNames, p)
}

func TestDecisionApply(t *testing.T) {
	genus := model.Genus
	misapplied := model.StatusMisapplied
	d := sector.Decision{
		Name:       "Carabus",
		Authorship: "Linnaeus, 1758",
		Rank:       &genus,
		Status:     &misapplied,
	}

	tests := []struct {
		msg    string
		policy sector.OverridePolicy
		name   string
		rank   model.Rank
		ok     bool
	}{
		{"all", sector.OverrideAll, "Carabus", model.Genus, false},
		{"names", sector.OverrideNames, "Carabus", model.Genus, true},
		{"status", sector.OverrideStatus, "Carabidae", model.Family, false},
	}

	for _, v := range tests {
		u := model.Usage{
			Kind:   model.TaxonKind,
			Status: model.StatusAccepted,
			Name: model.Name{
				ScientificName: "Carabidae",
				Uninomial:      "Carabidae",
				Rank:           model.Family,
			},
		}
		ok := d.Apply(&u, v.policy)
		assert.Equal(t, v.ok, ok, v.msg)
		assert.Equal(t, v.name, u.Name.ScientificName, v.msg)
		assert.Equal(t, v.rank, u.Name.Rank, v.msg)
		assert.Equal(t, model.StatusAccepted, u.Status, v.msg)
	}

	syn := model.Usage{Kind: model.SynonymKind, Status: model.StatusSynonym}
	assert.True(t, d.Apply(&syn, sector.OverrideStatus))
	assert.Equal(t, model.StatusMisapplied, syn.Status)
}

func TestNamesDiff(t *testing.T) {
	a := &sector.SectorImport{
		SectorKey: 1, Attempt: 1,
		Names: []string{"Aus", "Aus bus", "Aus cus", "Aus cus"},
	}
	b := &sector.SectorImport{
		SectorKey: 1, Attempt: 2,
		Names: []string{"Aus", "Aus dus", "Aus bus"},
	}
	d := sector.NamesDiff(a, b)
	assert.Equal(t, 1, d.Attempt1)
	assert.Equal(t, 2, d.Attempt2)
	assert.Equal(t, []string{"Aus cus"}, d.Deleted)
	assert.Equal(t, []string{"Aus dus"}, d.Inserted)
	assert.False(t, d.IsEmpty())

	assert.True(t, sector.NamesDiff(a, a).IsEmpty())
}

func TestCounters(t *testing.T) {
	var c sector.Counters
	assert.True(t, c.IsZero())
	c.Skipped = 3
	assert.True(t, c.IsZero())
	c.Deleted.Synonyms = 1
	assert.False(t, c.IsZero())
	assert.Equal(t, 1, c.Deleted.Total())
}

func TestSectorDatasets(t *testing.T) {
	s := sector.Sector{SubjectDatasetKey: 11, TargetDatasetKey: 3}
	assert.Equal(t, []int{11, 3}, s.Datasets())
	s.SubjectDatasetKey = 3
	assert.Equal(t, []int{3}, s.Datasets())
}
