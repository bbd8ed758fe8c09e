package sector

import (
	"cmp"
	"context"
	"log/slog"
	"maps"
	"slices"

	"github.com/gnames/gncat/pkg/model"
)

// reindex sends touched and deleted usages to the search index in
// batches. Index failures are logged and counted only.
func (s *Synchronizer) reindex(ctx context.Context) {
	idx := s.f.idx
	if idx == nil {
		return
	}
	tds := s.sector.TargetDatasetKey

	usages := slices.SortedFunc(maps.Values(s.touched),
		func(a, b *model.Usage) int {
			return cmp.Compare(a.ID, b.ID)
		},
	)
	for batch := range slices.Chunk(usages, s.f.batchSize) {
		if err := idx.Upsert(ctx, tds, batch); err != nil {
			s.indexError("upsert", len(batch), err)
		}
	}

	for batch := range slices.Chunk(s.deleted, s.f.batchSize) {
		if err := idx.Delete(ctx, tds, batch); err != nil {
			s.indexError("delete", len(batch), err)
		}
	}
}

func (s *Synchronizer) indexError(op string, n int, err error) {
	slog.Error("Search index failed",
		"sector", s.sector.Key, "operation", op, "usages", n, "error", err)
	s.warn("index %s of %d usages failed: %v", op, n, err)
	s.update(func(imp *SectorImport) { imp.Counters.IndexErrors++ })
}
