package memstore

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"time"

	"github.com/gnames/gncat/pkg/model"
	"github.com/gnames/gncat/pkg/sector"
	"github.com/gnames/gncat/pkg/store"
)

func (s *Store) Dataset(_ context.Context, key int) (*model.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.datasets[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	res := *d
	return &res, nil
}

func (s *Store) Datasets(_ context.Context) ([]*model.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]*model.Dataset, 0, len(s.datasets))
	for _, k := range slices.Sorted(maps.Keys(s.datasets)) {
		d := *s.datasets[k]
		res = append(res, &d)
	}
	return res, nil
}

func (s *Store) SaveDataset(_ context.Context, d *model.Dataset) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := *d
	s.datasets[d.Key] = &res
	return nil
}

func (s *Store) Sector(_ context.Context, key int) (*sector.Sector, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sec, ok := s.sectors[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	res := *sec
	return &res, nil
}

func (s *Store) Sectors(_ context.Context) ([]*sector.Sector, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := make([]*sector.Sector, 0, len(s.sectors))
	for _, k := range slices.Sorted(maps.Keys(s.sectors)) {
		sec := *s.sectors[k]
		res = append(res, &sec)
	}
	return res, nil
}

func (s *Store) SaveSector(_ context.Context, sec *sector.Sector) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	res := *sec
	if old, ok := s.sectors[sec.Key]; ok {
		res.CreatedAt = old.CreatedAt
		res.SyncAttempt = old.SyncAttempt
	} else {
		res.CreatedAt = now
	}
	res.ModifiedAt = now
	s.sectors[sec.Key] = &res
	return nil
}

func (s *Store) modifySector(key int, fn func(*sector.Sector)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sec, ok := s.sectors[key]
	if !ok {
		return store.ErrNotFound
	}
	fn(sec)
	sec.ModifiedAt = time.Now()
	return nil
}

func (s *Store) SetBroken(_ context.Context, key int, broken bool) error {
	return s.modifySector(key, func(sec *sector.Sector) {
		sec.Broken = broken
	})
}

func (s *Store) SetSyncAttempt(_ context.Context, key, attempt int) error {
	return s.modifySector(key, func(sec *sector.Sector) {
		sec.SyncAttempt = attempt
	})
}

func (s *Store) DeleteSector(_ context.Context, key int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sectors[key]; !ok {
		return store.ErrNotFound
	}
	delete(s.sectors, key)
	return nil
}

func (s *Store) SectorsTargeting(
	_ context.Context,
	datasetKey int,
	usageID string,
) ([]*sector.Sector, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var res []*sector.Sector
	for _, k := range slices.Sorted(maps.Keys(s.sectors)) {
		sec := s.sectors[k]
		if sec.TargetDatasetKey == datasetKey && sec.TargetID == usageID {
			cp := *sec
			res = append(res, &cp)
		}
	}
	return res, nil
}

func (s *Store) CreateImport(_ context.Context, si *sector.SectorImport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.importSeq++
	si.ID = s.importSeq
	si.Attempt = len(s.imports[si.SectorKey]) + 1
	s.imports[si.SectorKey] = append(s.imports[si.SectorKey], si.Clone())
	return nil
}

func (s *Store) UpdateImport(_ context.Context, si *sector.SectorImport) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.imports[si.SectorKey]
	idx := slices.IndexFunc(list, func(v *sector.SectorImport) bool {
		return v.ID == si.ID
	})
	if idx < 0 {
		return store.ErrNotFound
	}
	list[idx] = si.Clone()
	return nil
}

func (s *Store) LastImport(
	_ context.Context,
	sectorKey int,
) (*sector.SectorImport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.imports[sectorKey]
	if len(list) == 0 {
		return nil, store.ErrNotFound
	}
	return list[len(list)-1].Clone(), nil
}

func (s *Store) Import(
	_ context.Context,
	sectorKey, attempt int,
) (*sector.SectorImport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, v := range s.imports[sectorKey] {
		if v.Attempt == attempt {
			return v.Clone(), nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) Imports(
	_ context.Context,
	sectorKey int,
) ([]*sector.SectorImport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.imports[sectorKey]
	res := make([]*sector.SectorImport, 0, len(list))
	for _, v := range slices.Backward(list) {
		res = append(res, v.Clone())
	}
	return res, nil
}

func (s *Store) Decisions(
	_ context.Context,
	datasetKey int,
) ([]sector.Decision, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res := slices.Collect(maps.Values(s.decisions[datasetKey]))
	slices.SortFunc(res, func(a, b sector.Decision) int {
		return cmp.Compare(a.SubjectID, b.SubjectID)
	})
	return res, nil
}

func (s *Store) SaveDecision(_ context.Context, d sector.Decision) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ds, ok := s.decisions[d.DatasetKey]
	if !ok {
		ds = make(map[string]sector.Decision)
		s.decisions[d.DatasetKey] = ds
	}
	ds[d.SubjectID] = d
	return nil
}
