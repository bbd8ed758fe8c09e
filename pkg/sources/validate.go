package sources

import (
	"fmt"
	"strconv"

	"github.com/gnames/gncat/pkg/model"
	"github.com/gnames/gncat/pkg/sector"
	"github.com/robfig/cron/v3"
)

// Validate checks the configuration for errors and collects warnings.
// Sectors and decisions may only refer to declared datasets.
func (c *SourcesConfig) Validate() error {
	if len(c.Datasets) == 0 {
		return fmt.Errorf("no datasets specified in configuration")
	}

	datasets := make(map[int]*DatasetConfig)
	for i := range c.Datasets {
		d := &c.Datasets[i]
		if _, ok := datasets[d.Key]; ok {
			return fmt.Errorf("dataset %d: key is not unique", d.Key)
		}
		warnings, err := d.Validate()
		if err != nil {
			return fmt.Errorf("dataset %d: %w", i+1, err)
		}
		c.Warnings = append(c.Warnings, warnings...)
		datasets[d.Key] = d
	}

	sectors := make(map[int]bool)
	for i := range c.Sectors {
		s := &c.Sectors[i]
		if sectors[s.Key] {
			return fmt.Errorf("sector %d: key is not unique", s.Key)
		}
		if err := s.Validate(datasets); err != nil {
			return fmt.Errorf("sector %d: %w", i+1, err)
		}
		sectors[s.Key] = true
	}

	for i := range c.Decisions {
		warnings, err := c.Decisions[i].Validate(datasets)
		if err != nil {
			return fmt.Errorf("decision %d: %w", i+1, err)
		}
		c.Warnings = append(c.Warnings, warnings...)
	}

	return nil
}

// Validate checks a single dataset entry. A broken schedule is not fatal,
// the dataset is then left out of scheduled reimports.
func (d *DatasetConfig) Validate() ([]ValidationWarning, error) {
	var warnings []ValidationWarning
	if d.Key <= 0 {
		return nil, fmt.Errorf("key must be a positive number")
	}

	switch d.Kind {
	case "":
		d.Kind = string(model.DatasetSource)
	case string(model.DatasetSource), string(model.DatasetManaged):
	default:
		return nil, fmt.Errorf(
			"invalid kind '%s': must be 'source' or 'managed'", d.Kind,
		)
	}

	if d.Kind == string(model.DatasetManaged) && d.Archive != "" {
		warnings = append(warnings, ValidationWarning{
			Section:    "datasets",
			Key:        strconv.Itoa(d.Key),
			Field:      "archive",
			Message:    "managed datasets are not imported from archives",
			Suggestion: "Remove 'archive' or change 'kind' to 'source'",
		})
		d.Archive = ""
	}

	if d.Schedule != "" {
		warn := ValidationWarning{
			Section: "datasets",
			Key:     strconv.Itoa(d.Key),
			Field:   "schedule",
		}
		if _, err := cron.ParseStandard(d.Schedule); err != nil {
			warn.Message = fmt.Sprintf("invalid schedule '%s': %s", d.Schedule, err)
			warn.Suggestion = "Use a cron expression like '0 3 * * 1' or '@weekly'"
			warnings = append(warnings, warn)
			d.Schedule = ""
		} else if d.Archive == "" {
			warn.Message = "schedule is ignored without archive"
			warn.Suggestion = "Set 'archive' to a path or URL of an SFGA file"
			warnings = append(warnings, warn)
			d.Schedule = ""
		}
	}

	return warnings, nil
}

// Validate checks a sector entry against declared datasets.
func (s *SectorConfig) Validate(datasets map[int]*DatasetConfig) error {
	if s.Key <= 0 {
		return fmt.Errorf("key must be a positive number")
	}
	if s.SubjectID == "" {
		return fmt.Errorf("subject_id is required")
	}
	if s.TargetID == "" {
		return fmt.Errorf("target_id is required")
	}
	if _, ok := datasets[s.SubjectDataset]; !ok {
		return fmt.Errorf("unknown subject_dataset %d", s.SubjectDataset)
	}
	target, ok := datasets[s.TargetDataset]
	if !ok {
		return fmt.Errorf("unknown target_dataset %d", s.TargetDataset)
	}
	if target.Kind != string(model.DatasetManaged) {
		return fmt.Errorf("target_dataset %d is not a managed dataset",
			s.TargetDataset)
	}
	if s.Mode == "" {
		s.Mode = sector.Attach.String()
	}
	if _, ok := sector.ModeFromString(s.Mode); !ok {
		return fmt.Errorf(
			"invalid mode '%s': must be 'attach', 'union' or 'merge'", s.Mode,
		)
	}
	return nil
}

// Validate checks a decision entry. Unknown ranks and statuses are
// dropped with a warning.
func (d *DecisionConfig) Validate(
	datasets map[int]*DatasetConfig,
) ([]ValidationWarning, error) {
	var warnings []ValidationWarning
	if _, ok := datasets[d.Dataset]; !ok {
		return nil, fmt.Errorf("unknown dataset %d", d.Dataset)
	}
	if d.SubjectID == "" {
		return nil, fmt.Errorf("subject_id is required")
	}
	action, ok := sector.ActionFromString(d.Action)
	if !ok {
		return nil, fmt.Errorf(
			"invalid action '%s': must be 'update', 'skip' or 'skip_subtree'",
			d.Action,
		)
	}
	if action != sector.Update {
		return nil, nil
	}

	key := fmt.Sprintf("%d/%s", d.Dataset, d.SubjectID)
	if d.Rank != "" {
		if _, ok := model.RankFromString(d.Rank); !ok {
			warnings = append(warnings, ValidationWarning{
				Section:    "decisions",
				Key:        key,
				Field:      "rank",
				Message:    fmt.Sprintf("unknown rank '%s'", d.Rank),
				Suggestion: "Use a rank like 'genus' or 'species'",
			})
			d.Rank = ""
		}
	}
	if d.Status != "" {
		if _, ok := model.TaxStatusFromString(d.Status); !ok {
			warnings = append(warnings, ValidationWarning{
				Section:    "decisions",
				Key:        key,
				Field:      "status",
				Message:    fmt.Sprintf("unknown status '%s'", d.Status),
				Suggestion: "Use a status like 'accepted' or 'synonym'",
			})
			d.Status = ""
		}
	}
	if d.Name == "" && d.Authorship == "" && d.Rank == "" && d.Status == "" {
		warnings = append(warnings, ValidationWarning{
			Section:    "decisions",
			Key:        key,
			Message:    "update decision changes nothing",
			Suggestion: "Set name, authorship, rank or status",
		})
	}
	return warnings, nil
}
