package lifecycle

import (
	"context"
	"time"

	"github.com/gnames/gncat/pkg/graph"
)

// ImportResult summarizes an import of a dataset archive.
type ImportResult struct {
	DatasetKey int
	Records    int
	Usages     int
	Names      int
	Homonyms   int
	Stats      graph.Stats
	Duration   time.Duration
}

// Importer replaces the partition of a dataset with the content of an
// archive. A failed import leaves the previous partition untouched.
type Importer interface {
	Import(ctx context.Context, datasetKey int, archive string) (*ImportResult, error)
}
