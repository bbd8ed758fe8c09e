package sector

import (
	"context"
	"slices"

	"github.com/gnames/gncat/pkg/model"
	"github.com/gnames/gncat/pkg/store"
)

type frame struct {
	subj *model.Usage
	// parentID is the target parent of a taxon or the target accepted
	// usage of a synonym.
	parentID string
}

// copyTree walks the subject subtree in pre-order and creates the target
// usages that do not exist yet. Changed usages are collected and applied
// during relinking.
func (s *Synchronizer) copyTree(ctx context.Context, c Canceler) error {
	cls := s.f.cls
	ds := s.sector.SubjectDatasetKey

	stack := []frame{{subj: s.root, parentID: s.sector.TargetID}}
	for len(stack) > 0 {
		if canceled(ctx, c) {
			return errCanceled
		}
		fr := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		id, descend, err := s.copyUsage(ctx, fr.subj, fr.parentID)
		if err != nil {
			return err
		}
		if !descend || !fr.subj.IsTaxon() {
			continue
		}

		children, err := cls.Children(ctx, ds, fr.subj.ID)
		if err != nil {
			return StoreError(s.sector.Key, fr.subj.ID, err)
		}
		childParent := id
		var synonyms []*model.Usage
		if id == "" {
			// skipped usage, children move up to its parent
			childParent = fr.parentID
		} else {
			synonyms, err = cls.Synonyms(ctx, ds, fr.subj.ID)
			if err != nil {
				return StoreError(s.sector.Key, fr.subj.ID, err)
			}
		}

		for _, v := range slices.Backward(children) {
			stack = append(stack, frame{subj: v, parentID: childParent})
		}
		for _, v := range slices.Backward(synonyms) {
			stack = append(stack, frame{subj: v, parentID: id})
		}
	}
	return nil
}

// copyUsage places one subject usage into the target. It returns the ID
// of the target usage that represents it, empty if the usage was skipped,
// and whether its subtree should be copied.
func (s *Synchronizer) copyUsage(
	ctx context.Context,
	subj *model.Usage,
	parentID string,
) (string, bool, error) {
	var dec *Decision
	if d, ok := s.decisions[subj.ID]; ok {
		switch d.Action {
		case Skip:
			s.update(func(imp *SectorImport) { imp.Counters.Skipped++ })
			return "", true, nil
		case SkipSubtree:
			s.update(func(imp *SectorImport) { imp.Counters.Skipped++ })
			return "", false, nil
		}
		dec = &d
	}

	u, att, err := s.target(ctx, subj, parentID, dec)
	if err != nil {
		return "", false, err
	}

	if prev, ok := s.prev[u.ID]; ok {
		if err = s.compare(ctx, prev, u, att); err != nil {
			return "", false, err
		}
		return u.ID, true, nil
	}

	if s.union != nil {
		id, ok, err := s.unite(ctx, parentID, u, att)
		if err != nil {
			return "", false, err
		}
		if ok {
			return id, true, nil
		}
	}

	err = s.f.cls.CreateUsage(ctx, u, att)
	if store.IsConflict(err) {
		// a usage released by an earlier sync came back, adopt it
		s.warn("usage %s (%s) is adopted again", u.ID, u.Label())
		s.keep[u.ID] = u.Label()
		s.changes = append(s.changes, change{usage: u, att: att})
		return u.ID, true, nil
	}
	if err != nil {
		return "", false, StoreError(s.sector.Key, u.ID, err)
	}

	s.keep[u.ID] = u.Label()
	s.touched[u.ID] = u
	s.update(func(imp *SectorImport) {
		imp.Counters.Copied.addUsage(u, &att)
	})
	return u.ID, true, nil
}

// target builds the target copy of a subject usage with its attachments.
// Basionym and reference links are dataset-scoped and are not copied.
func (s *Synchronizer) target(
	ctx context.Context,
	subj *model.Usage,
	parentID string,
	dec *Decision,
) (*model.Usage, model.Attachments, error) {
	sec := s.sector
	att, err := s.f.cls.Attachments(ctx, sec.SubjectDatasetKey, subj.ID)
	if err != nil {
		return nil, att, StoreError(sec.Key, subj.ID, err)
	}
	att = att.Clone()
	stripReferences(&att)

	u := *subj
	u.Key = 0
	u.ID = TargetID(sec.Key, subj.ID)
	u.DatasetKey = sec.TargetDatasetKey
	u.SectorKey = sec.Key
	u.SubjectID = subj.ID
	u.ParentID, u.ParentKey = "", 0
	u.AcceptedID, u.AcceptedKey = "", 0
	if u.IsTaxon() {
		u.ParentID = parentID
	} else {
		u.AcceptedID = parentID
	}
	u.ReferenceID = ""
	u.Verbatim = model.VerbatimRef{}

	u.Name.Key = 0
	u.Name.ID = u.ID
	u.Name.DatasetKey = sec.TargetDatasetKey
	u.Name.BasionymID = ""
	u.Name.BasionymKey = 0
	u.Name.HomotypicNameID = ""

	if dec != nil && !dec.Apply(&u, s.f.policy) {
		s.warn("decision for %s cannot change status of a %s to %s",
			subj.ID, u.Kind, *dec.Status)
	}
	return &u, att, nil
}

func stripReferences(att *model.Attachments) {
	for i := range att.Vernaculars {
		att.Vernaculars[i].ReferenceID = ""
	}
	for i := range att.Distributions {
		att.Distributions[i].ReferenceID = ""
	}
	for i := range att.Media {
		att.Media[i].ReferenceID = ""
	}
	for i := range att.Descriptions {
		att.Descriptions[i].ReferenceID = ""
	}
}

// compare keeps a usage that exists from an earlier attempt and records
// an update if its content changed.
func (s *Synchronizer) compare(
	ctx context.Context,
	prev, u *model.Usage,
	att model.Attachments,
) error {
	s.keep[u.ID] = u.Label()
	patt, err := s.f.cls.Attachments(ctx, s.sector.TargetDatasetKey, u.ID)
	if err != nil {
		return StoreError(s.sector.Key, u.ID, err)
	}
	if prev.SameContent(u) && patt.Equal(&att) {
		return nil
	}
	s.changes = append(s.changes, change{usage: u, att: att})
	return nil
}

// unite merges a usage into an existing usage of the target with the same
// name under the same parent. Only usages that do not belong to the
// sector are merge candidates.
func (s *Synchronizer) unite(
	ctx context.Context,
	parentID string,
	u *model.Usage,
	att model.Attachments,
) (string, bool, error) {
	if err := s.indexParent(ctx, parentID); err != nil {
		return "", false, err
	}
	id, ok := s.union.Lookup(parentID, u)
	if !ok {
		return "", false, nil
	}

	tds := s.sector.TargetDatasetKey
	existing, err := s.f.cls.Usage(ctx, tds, id)
	if err != nil {
		return "", false, StoreError(s.sector.Key, id, err)
	}
	eatt, err := s.f.cls.Attachments(ctx, tds, id)
	if err != nil {
		return "", false, StoreError(s.sector.Key, id, err)
	}
	merged := eatt.Clone()
	if merged.Union(&att) == 0 {
		return id, true, nil
	}
	if err = s.f.cls.UpdateUsage(ctx, existing, merged); err != nil {
		return "", false, StoreError(s.sector.Key, id, err)
	}
	s.touched[id] = existing
	s.update(func(imp *SectorImport) { imp.Counters.Merged++ })
	return id, true, nil
}

func (s *Synchronizer) indexParent(ctx context.Context, parentID string) error {
	if s.indexed[parentID] {
		return nil
	}
	s.indexed[parentID] = true

	tds := s.sector.TargetDatasetKey
	children, err := s.f.cls.Children(ctx, tds, parentID)
	if err != nil {
		return StoreError(s.sector.Key, parentID, err)
	}
	synonyms, err := s.f.cls.Synonyms(ctx, tds, parentID)
	if err != nil {
		return StoreError(s.sector.Key, parentID, err)
	}
	for _, v := range slices.Concat(children, synonyms) {
		if v.SectorKey != s.sector.Key {
			s.union.Add(parentID, v)
		}
	}
	return nil
}
