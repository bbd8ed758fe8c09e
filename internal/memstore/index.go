package memstore

import (
	"context"
	"sync"

	"github.com/gnames/gncat/pkg/model"
	"github.com/gnames/gncat/pkg/sector"
)

// Index is an in-memory search index.
type Index struct {
	mu   sync.Mutex
	docs map[int]map[string]string
	err  error
}

var _ sector.Indexer = (*Index)(nil)

// NewIndex creates an empty Index.
func NewIndex() *Index {
	return &Index{docs: make(map[int]map[string]string)}
}

// FailWith makes all following calls return err. Nil restores normal
// operation.
func (idx *Index) FailWith(err error) {
	idx.mu.Lock()
	idx.err = err
	idx.mu.Unlock()
}

func (idx *Index) Upsert(
	_ context.Context,
	datasetKey int,
	usages []*model.Usage,
) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if idx.err != nil {
		return idx.err
	}
	ds, ok := idx.docs[datasetKey]
	if !ok {
		ds = make(map[string]string)
		idx.docs[datasetKey] = ds
	}
	for _, v := range usages {
		ds[v.ID] = v.Label()
	}
	return nil
}

func (idx *Index) Delete(_ context.Context, datasetKey int, ids []string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	if idx.err != nil {
		return idx.err
	}
	for _, v := range ids {
		delete(idx.docs[datasetKey], v)
	}
	return nil
}

// Label returns the indexed label of a usage.
func (idx *Index) Label(datasetKey int, id string) (string, bool) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	res, ok := idx.docs[datasetKey][id]
	return res, ok
}

// Len returns the number of indexed usages of a dataset.
func (idx *Index) Len(datasetKey int) int {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return len(idx.docs[datasetKey])
}
