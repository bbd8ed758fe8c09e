// Package sources describes sources.yaml, the file that declares datasets,
// sectors and editorial decisions known to gncat.
//
// Datasets are either source checklists imported from SFGA archives or
// managed catalogues that receive sectors. Sectors copy a subtree of a
// source dataset under a usage of a catalogue. Decisions change or skip
// usages of a source dataset when a sector is synchronized in merge mode.
package sources

import (
	"github.com/gnames/gncat/pkg/model"
	"github.com/gnames/gncat/pkg/sector"
)

type Sources interface {
	Load() (*SourcesConfig, error)
}

// SourcesConfig represents the complete sources.yaml file.
type SourcesConfig struct {
	Datasets  []DatasetConfig  `yaml:"datasets"`
	Sectors   []SectorConfig   `yaml:"sectors"`
	Decisions []DecisionConfig `yaml:"decisions"`

	// Warnings holds non-fatal validation warnings (not serialized)
	Warnings []ValidationWarning `yaml:"-"`
}

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Section    string // datasets, sectors or decisions
	Key        string // key of the entry
	Field      string
	Message    string
	Suggestion string
}

// DatasetConfig is an entry of the datasets section.
type DatasetConfig struct {
	// Key is also the partition key in the database.
	Key   int    `yaml:"key"`
	Title string `yaml:"title"`

	// Kind is 'source' or 'managed', default is 'source'.
	Kind string `yaml:"kind,omitempty"`

	// Archive is a local path or URL of an SFGA file. Required for
	// source datasets that are imported with 'gncat watch'.
	Archive string `yaml:"archive,omitempty"`

	// Schedule is a cron specification for reimports, for example
	// "@weekly" or "0 3 * * 1".
	Schedule string `yaml:"schedule,omitempty"`
}

// SectorConfig is an entry of the sectors section.
type SectorConfig struct {
	Key            int    `yaml:"key"`
	SubjectDataset int    `yaml:"subject_dataset"`
	SubjectID      string `yaml:"subject_id"`
	TargetDataset  int    `yaml:"target_dataset"`
	TargetID       string `yaml:"target_id"`

	// Mode is attach, union or merge. Default is attach.
	Mode string `yaml:"mode,omitempty"`
	Note string `yaml:"note,omitempty"`
}

// DecisionConfig is an entry of the decisions section.
type DecisionConfig struct {
	// Dataset is the source dataset of the usage.
	Dataset   int    `yaml:"dataset"`
	SubjectID string `yaml:"subject_id"`

	// Action is update, skip or skip_subtree.
	Action string `yaml:"action"`

	Name       string `yaml:"name,omitempty"`
	Authorship string `yaml:"authorship,omitempty"`
	Rank       string `yaml:"rank,omitempty"`
	Status     string `yaml:"status,omitempty"`
}

// ArchiveMetadata contains metadata extracted from an SFGA file name.
type ArchiveMetadata struct {
	Key         int    // Extracted from filename
	Version     string // Extracted from filename (if present)
	ReleaseDate string // Extracted from filename in YYYY-MM-DD format (if present)
	IsURL       bool   // True if file is a URL
}

// ToDataset converts a validated entry.
func (d DatasetConfig) ToDataset() *model.Dataset {
	kind := model.DatasetSource
	if d.Kind == string(model.DatasetManaged) {
		kind = model.DatasetManaged
	}
	return &model.Dataset{
		Key:      d.Key,
		Title:    d.Title,
		Kind:     kind,
		Archive:  d.Archive,
		Schedule: d.Schedule,
	}
}

// ToSector converts a validated entry.
func (s SectorConfig) ToSector() *sector.Sector {
	mode, _ := sector.ModeFromString(s.Mode)
	return &sector.Sector{
		Key:               s.Key,
		SubjectDatasetKey: s.SubjectDataset,
		SubjectID:         s.SubjectID,
		TargetDatasetKey:  s.TargetDataset,
		TargetID:          s.TargetID,
		Mode:              mode,
		Note:              s.Note,
	}
}

// ToDecision converts a validated entry.
func (d DecisionConfig) ToDecision() sector.Decision {
	action, _ := sector.ActionFromString(d.Action)
	res := sector.Decision{
		DatasetKey: d.Dataset,
		SubjectID:  d.SubjectID,
		Action:     action,
		Name:       d.Name,
		Authorship: d.Authorship,
	}
	if rank, ok := model.RankFromString(d.Rank); ok && d.Rank != "" {
		res.Rank = &rank
	}
	if st, ok := model.TaxStatusFromString(d.Status); ok && d.Status != "" {
		res.Status = &st
	}
	return res
}
