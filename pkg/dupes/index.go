package dupes

import "github.com/gnames/gncat/pkg/model"

// Index finds usages with the same name key under the same parent. The
// sector synchronizer uses it to merge copied usages into existing ones.
type Index struct {
	opts Options
	ids  map[string]string
}

// NewIndex creates an empty Index.
func NewIndex(opts Options) *Index {
	return &Index{opts: opts, ids: make(map[string]string)}
}

func (idx *Index) key(parentID string, u *model.Usage) string {
	return parentID + "|" + u.Kind.String() + "|" + Key(NewEntry(u), idx.opts)
}

// Add registers a usage placed under parentID. The first usage with a key
// wins.
func (idx *Index) Add(parentID string, u *model.Usage) {
	if u.Name.CanonicalName() == "" {
		return
	}
	k := idx.key(parentID, u)
	if _, ok := idx.ids[k]; !ok {
		idx.ids[k] = u.ID
	}
}

// Lookup returns the ID of a registered usage that matches u under
// parentID.
func (idx *Index) Lookup(parentID string, u *model.Usage) (string, bool) {
	if u.Name.CanonicalName() == "" {
		return "", false
	}
	id, ok := idx.ids[idx.key(parentID, u)]
	return id, ok
}

// Len returns the number of registered keys.
func (idx *Index) Len() int {
	return len(idx.ids)
}
