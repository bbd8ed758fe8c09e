// Package lifecycle declares the phases of the catalogue database:
// schema management, dataset import and maintenance.
package lifecycle

import (
	"context"
)

// OptimizeResult summarizes a maintenance run.
type OptimizeResult struct {
	// Orphans is the number of removed rows per table.
	Orphans map[string]int64
	// Vacuumed lists tables that were vacuumed and analyzed.
	Vacuumed []string
}

// Optimizer removes rows that lost their usages and refreshes planner
// statistics of dataset tables. It never changes usages.
type Optimizer interface {
	// Optimize works on the given datasets, or on all of them when none
	// is given.
	Optimize(ctx context.Context, datasetKeys ...int) (*OptimizeResult, error)
}
