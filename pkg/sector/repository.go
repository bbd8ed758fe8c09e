package sector

import (
	"context"

	"github.com/gnames/gncat/pkg/model"
)

// Repository keeps sectors, their sync attempts and editorial decisions.
// Missing records are reported with store.ErrNotFound.
type Repository interface {
	Sector(ctx context.Context, key int) (*Sector, error)

	// Sectors returns all sectors ordered by key.
	Sectors(ctx context.Context) ([]*Sector, error)

	// SaveSector creates or replaces a sector.
	SaveSector(ctx context.Context, s *Sector) error

	SetBroken(ctx context.Context, key int, broken bool) error
	SetSyncAttempt(ctx context.Context, key, attempt int) error

	// DeleteSector removes a sector. Its imports are kept.
	DeleteSector(ctx context.Context, key int) error

	// SectorsTargeting returns sectors that use the given usage of a
	// dataset as their target.
	SectorsTargeting(ctx context.Context, datasetKey int, usageID string) ([]*Sector, error)

	// CreateImport stores a new attempt and sets its ID.
	CreateImport(ctx context.Context, si *SectorImport) error
	UpdateImport(ctx context.Context, si *SectorImport) error
	LastImport(ctx context.Context, sectorKey int) (*SectorImport, error)
	Import(ctx context.Context, sectorKey, attempt int) (*SectorImport, error)

	// Imports returns attempts of a sector, the latest first.
	Imports(ctx context.Context, sectorKey int) ([]*SectorImport, error)

	// Decisions returns editorial decisions about usages of a dataset.
	Decisions(ctx context.Context, datasetKey int) ([]Decision, error)
	SaveDecision(ctx context.Context, d Decision) error
}

// Indexer keeps the search index of usages. It is best-effort: errors are
// reported but never undo a sync.
type Indexer interface {
	Upsert(ctx context.Context, datasetKey int, usages []*model.Usage) error
	Delete(ctx context.Context, datasetKey int, ids []string) error
}

// Canceler is polled between usages. Once it reports true the sync stops
// at the next usage boundary.
type Canceler interface {
	Canceled() bool
}

type neverCanceled struct{}

func (neverCanceled) Canceled() bool { return false }
