// Package memstore keeps datasets, sectors and sync attempts in memory.
// It implements the storage contracts of the importer and the sector
// synchronizer and is used for tests and dry runs. All returned records
// are copies.
package memstore

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/gnames/gncat/pkg/model"
	"github.com/gnames/gncat/pkg/sector"
	"github.com/gnames/gncat/pkg/store"
)

// Store is a mutex-guarded in-memory storage.
type Store struct {
	mu sync.RWMutex

	usages map[int]map[string]*model.Usage
	atts   map[int]map[string]model.Attachments
	names  map[int]map[string]struct{}
	refs   map[int][]model.Reference
	keySeq int64

	datasets  map[int]*model.Dataset
	sectors   map[int]*sector.Sector
	imports   map[int][]*sector.SectorImport
	importSeq int64
	decisions map[int]map[string]sector.Decision
}

var (
	_ store.Classification = (*Store)(nil)
	_ store.Partitions     = (*Store)(nil)
	_ store.Datasets       = (*Store)(nil)
	_ sector.Repository    = (*Store)(nil)
)

// New creates an empty Store.
func New() *Store {
	return &Store{
		usages:    make(map[int]map[string]*model.Usage),
		atts:      make(map[int]map[string]model.Attachments),
		names:     make(map[int]map[string]struct{}),
		refs:      make(map[int][]model.Reference),
		datasets:  make(map[int]*model.Dataset),
		sectors:   make(map[int]*sector.Sector),
		imports:   make(map[int][]*sector.SectorImport),
		decisions: make(map[int]map[string]sector.Decision),
	}
}

func (s *Store) nextKey() int64 {
	s.keySeq++
	return s.keySeq
}

func clone(u *model.Usage) *model.Usage {
	res := *u
	return &res
}

func (s *Store) dataset(datasetKey int) map[string]*model.Usage {
	res, ok := s.usages[datasetKey]
	if !ok {
		res = make(map[string]*model.Usage)
		s.usages[datasetKey] = res
		s.atts[datasetKey] = make(map[string]model.Attachments)
		s.names[datasetKey] = make(map[string]struct{})
	}
	return res
}

func (s *Store) Usage(
	_ context.Context,
	datasetKey int,
	id string,
) (*model.Usage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.usages[datasetKey][id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return clone(u), nil
}

func (s *Store) filter(
	datasetKey int,
	fn func(*model.Usage) bool,
) []*model.Usage {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var res []*model.Usage
	for _, v := range s.usages[datasetKey] {
		if fn(v) {
			res = append(res, clone(v))
		}
	}
	slices.SortFunc(res, func(a, b *model.Usage) int {
		if c := cmp.Compare(a.Ordinal, b.Ordinal); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return res
}

func (s *Store) Children(
	_ context.Context,
	datasetKey int,
	id string,
) ([]*model.Usage, error) {
	res := s.filter(datasetKey, func(u *model.Usage) bool {
		return u.IsTaxon() && u.ParentID == id
	})
	return res, nil
}

func (s *Store) Synonyms(
	_ context.Context,
	datasetKey int,
	id string,
) ([]*model.Usage, error) {
	res := s.filter(datasetKey, func(u *model.Usage) bool {
		return u.IsSynonym() && u.AcceptedID == id
	})
	return res, nil
}

// Roots returns taxa without a parent.
func (s *Store) Roots(datasetKey int) []*model.Usage {
	return s.filter(datasetKey, func(u *model.Usage) bool {
		return u.IsTaxon() && u.ParentID == ""
	})
}

func (s *Store) Attachments(
	_ context.Context,
	datasetKey int,
	id string,
) (model.Attachments, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.atts[datasetKey][id].Clone(), nil
}

func (s *Store) SectorUsages(
	_ context.Context,
	datasetKey, sectorKey int,
) ([]*model.Usage, error) {
	res := s.filter(datasetKey, func(u *model.Usage) bool {
		return u.SectorKey == sectorKey
	})
	return res, nil
}

func (s *Store) ListUsages(
	_ context.Context,
	datasetKey int,
) ([]*model.Usage, error) {
	res := s.filter(datasetKey, func(*model.Usage) bool { return true })
	return res, nil
}

func (s *Store) CreateUsage(
	_ context.Context,
	u *model.Usage,
	att model.Attachments,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ds := s.dataset(u.DatasetKey)
	if _, ok := ds[u.ID]; ok {
		return &store.ConflictError{
			Table: "name_usage", Key: u.ID, Err: store.ErrNotFound,
		}
	}
	u.Key = s.nextKey()
	u.Name.Key = s.nextKey()
	ds[u.ID] = clone(u)
	s.atts[u.DatasetKey][u.ID] = att.Clone()
	s.names[u.DatasetKey][u.Name.ID] = struct{}{}
	return nil
}

func (s *Store) UpdateUsage(
	_ context.Context,
	u *model.Usage,
	att model.Attachments,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ds := s.dataset(u.DatasetKey)
	old, ok := ds[u.ID]
	if !ok {
		return store.ErrNotFound
	}
	u.Key = old.Key
	u.Name.Key = old.Name.Key
	ds[u.ID] = clone(u)
	s.atts[u.DatasetKey][u.ID] = att.Clone()
	return nil
}

func (s *Store) AddAttachments(
	_ context.Context,
	datasetKey int,
	id string,
	att model.Attachments,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.usages[datasetKey][id]; !ok {
		return store.ErrNotFound
	}
	cur := s.atts[datasetKey][id].Clone()
	cur.Vernaculars = append(cur.Vernaculars, att.Vernaculars...)
	cur.Distributions = append(cur.Distributions, att.Distributions...)
	cur.Media = append(cur.Media, att.Media...)
	cur.Descriptions = append(cur.Descriptions, att.Descriptions...)
	s.atts[datasetKey][id] = cur
	return nil
}

func (s *Store) DeleteUsage(_ context.Context, datasetKey int, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.usages[datasetKey][id]
	if !ok {
		return store.ErrNotFound
	}
	delete(s.usages[datasetKey], id)
	delete(s.atts[datasetKey], id)

	for _, v := range s.usages[datasetKey] {
		if v.Name.ID == u.Name.ID {
			return nil
		}
	}
	delete(s.names[datasetKey], u.Name.ID)
	return nil
}

func (s *Store) CountForeignChildren(
	_ context.Context,
	datasetKey int,
	id string,
	sectorKey int,
) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var res int
	for _, v := range s.usages[datasetKey] {
		if v.SectorKey == sectorKey {
			continue
		}
		if (v.IsTaxon() && v.ParentID == id) ||
			(v.IsSynonym() && v.AcceptedID == id) {
			res++
		}
	}
	return res, nil
}

func (s *Store) Count(
	_ context.Context,
	datasetKey int,
) (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.usages[datasetKey]), len(s.names[datasetKey]), nil
}

// References returns the references of a dataset.
func (s *Store) References(datasetKey int) []model.Reference {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.refs[datasetKey])
}
