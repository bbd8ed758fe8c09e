package memstore

import (
	"context"
	"errors"
	"maps"

	"github.com/gnames/gncat/pkg/model"
	"github.com/gnames/gncat/pkg/store"
)

var errClosed = errors.New("partition is closed")

type partition struct {
	s      *Store
	ds     int
	names  map[string]model.Name
	usages map[string]*model.Usage
	atts   map[string]model.Attachments
	refs   []model.Reference
	closed bool
}

// NewPartition starts a partition that replaces the dataset on Commit.
func (s *Store) NewPartition(
	_ context.Context,
	datasetKey int,
) (store.Partition, error) {
	res := &partition{
		s:      s,
		ds:     datasetKey,
		names:  make(map[string]model.Name),
		usages: make(map[string]*model.Usage),
		atts:   make(map[string]model.Attachments),
	}
	return res, nil
}

func (p *partition) DatasetKey() int {
	return p.ds
}

func (p *partition) NextKeys(_ context.Context, n int) (int64, error) {
	if p.closed {
		return 0, errClosed
	}
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	first := p.s.keySeq + 1
	p.s.keySeq += int64(n)
	return first, nil
}

func (p *partition) AddReferences(_ context.Context, refs []model.Reference) error {
	if p.closed {
		return errClosed
	}
	p.refs = append(p.refs, refs...)
	return nil
}

func (p *partition) AddNames(_ context.Context, names []model.Name) error {
	if p.closed {
		return errClosed
	}
	for _, v := range names {
		if _, ok := p.names[v.ID]; ok {
			return &store.ConflictError{Table: "name", Key: v.ID}
		}
		p.names[v.ID] = v
	}
	return nil
}

func (p *partition) AddUsages(_ context.Context, usages []model.Usage) error {
	if p.closed {
		return errClosed
	}
	for _, v := range usages {
		if _, ok := p.usages[v.ID]; ok {
			return &store.ConflictError{Table: "name_usage", Key: v.ID}
		}
		p.usages[v.ID] = clone(&v)
	}
	return nil
}

func (p *partition) AddAttachments(
	_ context.Context,
	atts []model.UsageAttachments,
) error {
	if p.closed {
		return errClosed
	}
	for _, v := range atts {
		cur := p.atts[v.UsageID]
		cur.Vernaculars = append(cur.Vernaculars, v.Vernaculars...)
		cur.Distributions = append(cur.Distributions, v.Distributions...)
		cur.Media = append(cur.Media, v.Media...)
		cur.Descriptions = append(cur.Descriptions, v.Descriptions...)
		p.atts[v.UsageID] = cur
	}
	return nil
}

func (p *partition) Commit(_ context.Context) error {
	if p.closed {
		return errClosed
	}
	p.closed = true

	names := make(map[string]struct{}, len(p.names))
	for k := range maps.Keys(p.names) {
		names[k] = struct{}{}
	}

	s := p.s
	s.mu.Lock()
	defer s.mu.Unlock()
	s.usages[p.ds] = p.usages
	s.atts[p.ds] = p.atts
	s.names[p.ds] = names
	s.refs[p.ds] = p.refs
	return nil
}

func (p *partition) Rollback(_ context.Context) error {
	p.closed = true
	return nil
}
