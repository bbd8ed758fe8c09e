package iosources

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/gnames/gncat/internal/memstore"
	"github.com/gnames/gncat/pkg/model"
	"github.com/gnames/gncat/pkg/sector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSources(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "sources.yaml")
	err := os.WriteFile(path, []byte(content), 0644)
	require.NoError(t, err)
	return path
}

const fullSources = `
datasets:
  - key: 3
    title: Draft catalogue
    kind: managed
  - key: 1000
    title: Coleoptera
    archive: http://opendata.globalnames.org/sfga/1000.sqlite.zip
    schedule: "@weekly"
sectors:
  - key: 1
    subject_dataset: 1000
    subject_id: t2
    target_dataset: 3
    target_id: cole
  - key: 2
    subject_dataset: 1000
    subject_id: t5
    target_dataset: 3
    target_id: cole
    mode: merge
decisions:
  - dataset: 1000
    subject_id: t17
    action: update
    name: Carabus auratus
    rank: species
    status: accepted
  - dataset: 1000
    subject_id: t18
    action: skip_subtree
`

func TestLoadSourcesConfig(t *testing.T) {
	assert := assert.New(t)
	sc, err := loadSourcesConfig(writeSources(t, fullSources))
	require.NoError(t, err)
	require.Len(t, sc.Datasets, 2)
	require.Len(t, sc.Sectors, 2)
	require.Len(t, sc.Decisions, 2)
	assert.Empty(sc.Warnings)

	assert.Equal("source", sc.Datasets[1].Kind)
	assert.Equal("attach", sc.Sectors[0].Mode)
	assert.Equal(sector.Merge, sc.Sectors[1].ToSector().Mode)

	d := sc.Decisions[0].ToDecision()
	require.NotNil(t, d.Rank)
	assert.Equal(model.Species, *d.Rank)
}

func TestLoadSourcesConfigErrors(t *testing.T) {
	tests := []struct {
		msg     string
		content string
		errMsg  string
	}{
		{"missing file", "", "failed to read sources config file"},
		{"bad yaml", "datasets: [", "failed to parse sources config file"},
		{"no datasets", "datasets: []", "no datasets specified"},
		{
			"missing archive",
			"datasets:\n  - key: 5\n    archive: /nonexistent/5.sqlite\n",
			"archive does not exist",
		},
		{
			"unknown target",
			"datasets:\n  - key: 5\nsectors:\n  - key: 1\n    subject_dataset: 5\n" +
				"    subject_id: a\n    target_dataset: 3\n    target_id: b\n",
			"unknown target_dataset 3",
		},
	}

	for _, v := range tests {
		t.Run(v.msg, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "none.yaml")
			if v.content != "" {
				path = writeSources(t, v.content)
			}
			_, err := loadSourcesConfig(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), v.errMsg)
		})
	}
}

func TestSave(t *testing.T) {
	assert := assert.New(t)
	ctx := context.Background()
	sc, err := loadSourcesConfig(writeSources(t, fullSources))
	require.NoError(t, err)

	st := memstore.New()
	require.NoError(t, st.SaveDataset(ctx, &model.Dataset{
		Key:        1000,
		Title:      "Old title",
		UsageCount: 42,
	}))

	sum, err := Save(ctx, sc, st, st)
	require.NoError(t, err)
	assert.Equal(Summary{Datasets: 2, Sectors: 2, Decisions: 2}, sum)

	ds, err := st.Dataset(ctx, 1000)
	require.NoError(t, err)
	assert.Equal("Coleoptera", ds.Title)
	assert.Equal(42, ds.UsageCount)
	assert.Equal("@weekly", ds.Schedule)

	sec, err := st.Sector(ctx, 2)
	require.NoError(t, err)
	assert.Equal("t5", sec.SubjectID)

	decs, err := st.Decisions(ctx, 1000)
	require.NoError(t, err)
	assert.Len(decs, 2)
}
