package model_test

import (
	"testing"
	"time"

	"github.com/gnames/gncat/pkg/model"
	"github.com/gnames/gnlib/ent/nomcode"
	"github.com/stretchr/testify/assert"
)

func TestRankFromString(t *testing.T) {
	tests := []struct {
		msg  string
		in   string
		rank model.Rank
		ok   bool
	}{
		{"plain", "species", model.Species, true},
		{"case and spaces", "  Genus ", model.Genus, true},
		{"abbreviation", "subsp.", model.Subspecies, true},
		{"latin", "familia", model.Family, true},
		{"empty", "", model.Unranked, true},
		{"unknown", "supertribe-ish", model.Unranked, false},
	}
	for _, v := range tests {
		t.Run(v.msg, func(t *testing.T) {
			r, ok := model.RankFromString(v.in)
			assert.Equal(t, v.rank, r)
			assert.Equal(t, v.ok, ok)
		})
	}
	assert.True(t, model.Variety.IsInfraspecific())
	assert.False(t, model.Species.IsInfraspecific())
	assert.True(t, model.Species.IsSpeciesOrBelow())
	assert.Equal(t, "order", model.Order.String())
}

func TestTaxStatus(t *testing.T) {
	tests := []struct {
		in   string
		st   model.TaxStatus
		kind model.Kind
		ok   bool
	}{
		{"accepted", model.StatusAccepted, model.TaxonKind, true},
		{"Provisionally_Accepted", model.StatusProvisional, model.TaxonKind, true},
		{"heterotypic synonym", model.StatusSynonym, model.SynonymKind, true},
		{"pro-parte synonym", model.StatusAmbiguousSynonym, model.SynonymKind, true},
		{"misapplied", model.StatusMisapplied, model.SynonymKind, true},
		{"bare name", model.StatusBareName, model.BareNameKind, true},
		{"whatever", model.StatusAccepted, model.TaxonKind, false},
	}
	for _, v := range tests {
		t.Run(v.in, func(t *testing.T) {
			st, ok := model.TaxStatusFromString(v.in)
			assert.Equal(t, v.ok, ok)
			assert.Equal(t, v.st, st)
			assert.Equal(t, v.kind, st.Kind())
		})
	}
}

func TestNomStatusAndCode(t *testing.T) {
	st, ok := model.NomStatusFromString("")
	assert.True(t, ok)
	assert.Equal(t, model.NomUnknown, st)

	st, ok = model.NomStatusFromString("Illegitimate")
	assert.True(t, ok)
	assert.Equal(t, model.NomUnacceptable, st)

	_, ok = model.NomStatusFromString("nudum?")
	assert.False(t, ok)

	code, ok := model.CodeFromString("ICZN")
	assert.True(t, ok)
	assert.Equal(t, nomcode.Zoological, code)
	assert.Equal(t, "zoological", model.CodeName(code))

	_, ok = model.CodeFromString("cultivated plants")
	assert.False(t, ok)
}

func TestGazetteerAndDistStatus(t *testing.T) {
	g, ok := model.GazetteerFromString("TDWG")
	assert.True(t, ok)
	assert.Equal(t, model.GazetteerTDWG, g)
	_, ok = model.GazetteerFromString("geonames")
	assert.False(t, ok)

	ds, ok := model.DistStatusFromString("Naturalised")
	assert.True(t, ok)
	assert.Equal(t, model.DistAlien, ds)
	_, ok = model.DistStatusFromString("sometimes")
	assert.False(t, ok)
}

func TestIssueSet(t *testing.T) {
	s := model.NewIssueSet(model.ParentCycle, model.RankInvalid)
	assert.True(t, s.Has(model.ParentCycle))
	assert.False(t, s.Has(model.ChainedSynonym))
	assert.Equal(t, 2, s.Len())
	assert.Equal(t, []string{"RANK_INVALID", "PARENT_CYCLE"}, s.Strings())

	s = s.Add(model.ChainedSynonym).Remove(model.RankInvalid)
	assert.Equal(t, "PARENT_CYCLE,CHAINED_SYNOYM", s.String())

	back := model.IssuesFromStrings(append(s.Strings(), "NOT_A_FLAG"))
	assert.Equal(t, s, back)

	assert.True(t, model.IssueSet(0).IsEmpty())
	assert.Equal(t, "MISSING_NAME", model.MissingName.String())
	i, ok := model.IssueFromString("sector_reassigned")
	assert.True(t, ok)
	assert.Equal(t, model.SectorReassigned, i)
}

func TestNameCanonical(t *testing.T) {
	tests := []struct {
		msg  string
		name model.Name
		can  string
		lbl  string
	}{
		{
			msg:  "cached",
			name: model.Name{Canonical: "Aus bus", ScientificName: "Aus bus"},
			can:  "Aus bus",
			lbl:  "Aus bus",
		},
		{
			msg: "atoms",
			name: model.Name{
				Genus: "Aus", SpecificEpithet: "bus", InfraspecificEpithet: "cus",
				Authorship: "L.",
			},
			can: "Aus bus cus",
			lbl: "Aus bus cus L.",
		},
		{
			msg:  "uninomial",
			name: model.Name{Uninomial: "Coleoptera"},
			can:  "Coleoptera",
			lbl:  "Coleoptera",
		},
	}
	for _, v := range tests {
		t.Run(v.msg, func(t *testing.T) {
			assert.Equal(t, v.can, v.name.CanonicalName())
			assert.Equal(t, v.lbl, v.name.Label())
		})
	}
}

func TestUsageSameContent(t *testing.T) {
	a := model.Usage{
		Key: 1, ID: "t1", Kind: model.TaxonKind, ParentID: "t0", ParentKey: 10,
		Ordinal: 3, Name: model.Name{Key: 5, ID: "n1", Canonical: "Aus"},
	}
	b := a
	b.Key, b.ParentKey, b.Ordinal, b.Name.Key = 2, 20, 7, 9
	b.Verbatim = model.VerbatimRef{File: "taxon", Line: 3}
	assert.True(t, a.SameContent(&b))

	b.Name.Authorship = "L."
	assert.False(t, a.SameContent(&b))

	c := a
	c.ToBareName()
	assert.True(t, c.IsBareName())
	assert.Empty(t, c.ParentID)
	assert.Equal(t, model.StatusBareName, c.Status)
}

func TestAttachments(t *testing.T) {
	v1 := model.VernacularName{Name: "beetle", Language: "en"}
	v2 := model.VernacularName{Name: "Käfer", Language: "de"}
	m1 := model.Media{URL: "https://example.org/1.jpg",
		Created: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)}

	a := model.Attachments{Vernaculars: []model.VernacularName{v1, v2}}
	b := model.Attachments{Vernaculars: []model.VernacularName{v2, v1}}
	assert.True(t, a.Equal(&b))

	b.Media = []model.Media{m1}
	assert.False(t, a.Equal(&b))

	added := a.Union(&b)
	assert.Equal(t, 1, added)
	assert.True(t, a.Equal(&b))
	assert.Equal(t, 3, a.Len())

	c := a.Clone()
	c.Vernaculars[0].Name = "bug"
	assert.Equal(t, "beetle", a.Vernaculars[0].Name)
}

func TestVerbatimRecord(t *testing.T) {
	fields := map[model.Term]string{
		model.TermID:             " t1 ",
		model.TermScientificName: "",
		model.TermGenus:          "Aus",
	}
	rec := model.NewVerbatimRecord(4, model.TaxonRecord, "taxon", 12, fields)
	fields[model.TermID] = "changed"

	assert.Equal(t, "t1", rec.Get(model.TermID))
	assert.Equal(t, "Aus",
		rec.GetFirst(model.TermScientificName, model.TermGenus))
	assert.False(t, rec.Has(model.TermScientificName))
	assert.Equal(t, "taxon:12", rec.Key())
	assert.Equal(t, 4, rec.Seq())
	assert.Equal(t, model.TaxonRecord, rec.Type())
	assert.Equal(t, "taxon", rec.Type().String())
}
