package sector

import (
	"cmp"
	"context"
	"maps"
	"slices"

	"github.com/gnames/gncat/pkg/model"
)

// relink applies collected updates and then removes usages of the
// previous attempt that were not copied again, deepest first. Usages that
// other data depends on are released from the sector instead.
func (s *Synchronizer) relink(ctx context.Context, c Canceler) error {
	cls := s.f.cls
	tds := s.sector.TargetDatasetKey

	for _, v := range s.changes {
		if canceled(ctx, c) {
			return errCanceled
		}
		if err := cls.UpdateUsage(ctx, v.usage, v.att); err != nil {
			return StoreError(s.sector.Key, v.usage.ID, err)
		}
		s.touched[v.usage.ID] = v.usage
		s.update(func(imp *SectorImport) {
			imp.Counters.Updated.addUsage(v.usage, &v.att)
		})
	}

	for _, id := range s.removed() {
		if canceled(ctx, c) {
			return errCanceled
		}
		u := s.prev[id]
		att, err := cls.Attachments(ctx, tds, id)
		if err != nil {
			return StoreError(s.sector.Key, id, err)
		}

		reason, err := s.dependency(ctx, id)
		if err != nil {
			return err
		}
		if reason != "" {
			if err = s.release(ctx, u, att, reason); err != nil {
				return err
			}
			continue
		}

		if err = cls.DeleteUsage(ctx, tds, id); err != nil {
			return StoreError(s.sector.Key, id, err)
		}
		s.deleted = append(s.deleted, id)
		s.update(func(imp *SectorImport) {
			imp.Counters.Deleted.addUsage(u, &att)
		})
	}
	return nil
}

// removed returns IDs of the previous attempt that are gone, descendants
// before their ancestors.
func (s *Synchronizer) removed() []string {
	depth := depths(s.prev)
	var res []string
	for id := range s.prev {
		if _, ok := s.keep[id]; !ok {
			res = append(res, id)
		}
	}
	slices.SortFunc(res, func(a, b string) int {
		if c := cmp.Compare(depth[b], depth[a]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	return res
}

// depths computes the depth of each usage within the set. Synonyms are one
// level below their accepted taxon.
func depths(us map[string]*model.Usage) map[string]int {
	res := make(map[string]int, len(us))
	var path []string
	for id := range us {
		path = path[:0]
		cur := id
		d := 0
		for {
			if v, ok := res[cur]; ok {
				d = v
				break
			}
			u, ok := us[cur]
			if !ok || len(path) > len(us) {
				d = -1
				break
			}
			path = append(path, cur)
			cur = u.ParentID
			if u.IsSynonym() {
				cur = u.AcceptedID
			}
		}
		for _, v := range slices.Backward(path) {
			d++
			res[v] = d
		}
	}
	return res
}

// dependency explains why a usage cannot be deleted. An empty result
// means it can.
func (s *Synchronizer) dependency(ctx context.Context, id string) (string, error) {
	tds := s.sector.TargetDatasetKey
	n, err := s.f.cls.CountForeignChildren(ctx, tds, id, s.sector.Key)
	if err != nil {
		return "", StoreError(s.sector.Key, id, err)
	}
	if n > 0 {
		return "it has foreign children", nil
	}

	secs, err := s.f.repo.SectorsTargeting(ctx, tds, id)
	if err != nil {
		return "", RepositoryError(s.sector.Key, err)
	}
	for _, v := range secs {
		if v.Key != s.sector.Key {
			return "it is the target of another sector", nil
		}
	}
	return "", nil
}

// release detaches a usage from the sector and keeps it in the target.
func (s *Synchronizer) release(
	ctx context.Context,
	u *model.Usage,
	att model.Attachments,
	reason string,
) error {
	u.SectorKey = 0
	u.Issues = u.Issues.Add(model.SectorReassigned)
	if err := s.f.cls.UpdateUsage(ctx, u, att); err != nil {
		return StoreError(s.sector.Key, u.ID, err)
	}
	s.touched[u.ID] = u
	s.warn("usage %s (%s) is kept because %s", u.ID, u.Label(), reason)
	s.update(func(imp *SectorImport) { imp.Counters.Reassigned++ })
	return nil
}

func (s *Synchronizer) result() ([]string, []string) {
	ids := slices.Sorted(maps.Keys(s.keep))
	names := slices.Sorted(maps.Values(s.keep))
	return ids, names
}
