package iorepo

import (
	"time"

	"github.com/gnames/gncat/pkg/model"
	"github.com/gnames/gncat/pkg/schema"
	"github.com/gnames/gncat/pkg/sector"
	"github.com/gnames/gnfmt"
)

func timePtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func timeVal(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

func toDatasetRow(d *model.Dataset) schema.Dataset {
	return schema.Dataset{
		Key:        d.Key,
		Title:      d.Title,
		Kind:       string(d.Kind),
		Archive:    d.Archive,
		Schedule:   d.Schedule,
		ImportedAt: timePtr(d.ImportedAt),
		UsageCount: d.UsageCount,
		NameCount:  d.NameCount,
	}
}

func fromDatasetRow(r *schema.Dataset) *model.Dataset {
	return &model.Dataset{
		Key:        r.Key,
		Title:      r.Title,
		Kind:       model.DatasetKind(r.Kind),
		Archive:    r.Archive,
		Schedule:   r.Schedule,
		ImportedAt: timeVal(r.ImportedAt),
		UsageCount: r.UsageCount,
		NameCount:  r.NameCount,
	}
}

func toSectorRow(s *sector.Sector) schema.Sector {
	return schema.Sector{
		Key:               s.Key,
		SubjectDatasetKey: s.SubjectDatasetKey,
		SubjectID:         s.SubjectID,
		TargetDatasetKey:  s.TargetDatasetKey,
		TargetID:          s.TargetID,
		Mode:              s.Mode.String(),
		Note:              s.Note,
		Broken:            s.Broken,
		SyncAttempt:       s.SyncAttempt,
		CreatedAt:         s.CreatedAt,
		ModifiedAt:        s.ModifiedAt,
	}
}

func fromSectorRow(r *schema.Sector) *sector.Sector {
	mode, _ := sector.ModeFromString(r.Mode)
	return &sector.Sector{
		Key:               r.Key,
		SubjectDatasetKey: r.SubjectDatasetKey,
		SubjectID:         r.SubjectID,
		TargetDatasetKey:  r.TargetDatasetKey,
		TargetID:          r.TargetID,
		Mode:              mode,
		Note:              r.Note,
		Broken:            r.Broken,
		SyncAttempt:       r.SyncAttempt,
		CreatedAt:         r.CreatedAt,
		ModifiedAt:        r.ModifiedAt,
	}
}

func toImportRow(si *sector.SectorImport) (schema.SectorImport, error) {
	enc := gnfmt.GNjson{}
	counters, err := enc.Encode(si.Counters)
	if err != nil {
		return schema.SectorImport{}, err
	}
	res := schema.SectorImport{
		ID:         si.ID,
		SectorKey:  si.SectorKey,
		Attempt:    si.Attempt,
		RunID:      si.RunID,
		State:      si.State.String(),
		Counters:   counters,
		Warnings:   si.Warnings,
		UsageIDs:   si.UsageIDs,
		Names:      si.Names,
		Error:      si.Error,
		StartedAt:  timePtr(si.StartedAt),
		FinishedAt: timePtr(si.FinishedAt),
	}
	return res, nil
}

func fromImportRow(r *schema.SectorImport) (*sector.SectorImport, error) {
	state, _ := sector.StateFromString(r.State)
	res := &sector.SectorImport{
		ID:         r.ID,
		SectorKey:  r.SectorKey,
		Attempt:    r.Attempt,
		RunID:      r.RunID,
		State:      state,
		Warnings:   r.Warnings,
		UsageIDs:   r.UsageIDs,
		Names:      r.Names,
		Error:      r.Error,
		StartedAt:  timeVal(r.StartedAt),
		FinishedAt: timeVal(r.FinishedAt),
	}
	if len(r.Counters) > 0 {
		enc := gnfmt.GNjson{}
		if err := enc.Decode(r.Counters, &res.Counters); err != nil {
			return nil, err
		}
	}
	return res, nil
}

func toDecisionRow(d *sector.Decision) schema.Decision {
	res := schema.Decision{
		DatasetKey: d.DatasetKey,
		SubjectID:  d.SubjectID,
		Action:     d.Action.String(),
	}
	if d.Name != "" {
		res.Name = &d.Name
	}
	if d.Authorship != "" {
		res.Authorship = &d.Authorship
	}
	if d.Rank != nil {
		rank := int(*d.Rank)
		res.Rank = &rank
	}
	if d.Status != nil {
		st := int(*d.Status)
		res.Status = &st
	}
	return res
}

func fromDecisionRow(r *schema.Decision) sector.Decision {
	action, _ := sector.ActionFromString(r.Action)
	res := sector.Decision{
		DatasetKey: r.DatasetKey,
		SubjectID:  r.SubjectID,
		Action:     action,
	}
	if r.Name != nil {
		res.Name = *r.Name
	}
	if r.Authorship != nil {
		res.Authorship = *r.Authorship
	}
	if r.Rank != nil {
		rank := model.Rank(*r.Rank)
		res.Rank = &rank
	}
	if r.Status != nil {
		st := model.TaxStatus(*r.Status)
		res.Status = &st
	}
	return res
}
