// Package iosources reads sources.yaml and stores its datasets, sectors
// and decisions in the database.
package iosources

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/gnames/gncat/pkg/config"
	"github.com/gnames/gncat/pkg/sector"
	"github.com/gnames/gncat/pkg/sources"
	"github.com/gnames/gncat/pkg/store"
	"gopkg.in/yaml.v3"
)

type iosources struct {
	cfg *config.Config
}

func New(cfg *config.Config) sources.Sources {
	res := iosources{cfg: cfg}
	return &res
}

func (s *iosources) Load() (*sources.SourcesConfig, error) {
	sourcesPath := config.SourcesFilePath(s.cfg.HomeDir)
	sourcesConfig, err := loadSourcesConfig(sourcesPath)
	if err != nil {
		return nil, SourcesConfigError(sourcesPath, err)
	}
	for _, w := range sourcesConfig.Warnings {
		slog.Warn(w.Message,
			"section", w.Section,
			"key", w.Key,
			"field", w.Field,
			"suggestion", w.Suggestion,
		)
	}
	return sourcesConfig, nil
}

func loadSourcesConfig(path string) (*sources.SourcesConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sources config file: %w", err)
	}

	var res sources.SourcesConfig
	if err = yaml.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("failed to parse sources config file: %w", err)
	}

	if err = res.Validate(); err != nil {
		return nil, err
	}

	// local archives must exist, URLs are checked during import
	for _, d := range res.Datasets {
		if d.Archive == "" || sources.IsValidURL(d.Archive) {
			continue
		}
		if _, err = os.Stat(d.Archive); err != nil {
			return nil, fmt.Errorf("dataset %d: archive does not exist: %s",
				d.Key, d.Archive)
		}
	}
	return &res, nil
}

// Summary counts stored entries.
type Summary struct {
	Datasets  int
	Sectors   int
	Decisions int
}

// Save stores datasets, sectors and decisions. Import metadata of known
// datasets and sync counters of known sectors are kept.
func Save(
	ctx context.Context,
	sc *sources.SourcesConfig,
	datasets store.Datasets,
	repo sector.Repository,
) (Summary, error) {
	var res Summary
	for _, v := range sc.Datasets {
		ds := v.ToDataset()
		old, err := datasets.Dataset(ctx, v.Key)
		switch {
		case err == nil:
			ds.ImportedAt = old.ImportedAt
			ds.UsageCount = old.UsageCount
			ds.NameCount = old.NameCount
		case !errors.Is(err, store.ErrNotFound):
			return res, SourcesSaveError("dataset", v.Key, err)
		}
		if err = datasets.SaveDataset(ctx, ds); err != nil {
			return res, SourcesSaveError("dataset", v.Key, err)
		}
		res.Datasets++
	}

	for _, v := range sc.Sectors {
		if err := repo.SaveSector(ctx, v.ToSector()); err != nil {
			return res, SourcesSaveError("sector", v.Key, err)
		}
		res.Sectors++
	}

	for _, v := range sc.Decisions {
		if err := repo.SaveDecision(ctx, v.ToDecision()); err != nil {
			key := fmt.Sprintf("%d/%s", v.Dataset, v.SubjectID)
			return res, SourcesSaveError("decision", key, err)
		}
		res.Decisions++
	}

	slog.Info("Sources saved",
		"datasets", res.Datasets,
		"sectors", res.Sectors,
		"decisions", res.Decisions,
	)
	return res, nil
}
