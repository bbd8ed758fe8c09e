// Package graph is the staging store of an import. It keeps usages in an
// arena addressed by dense integer handles and builds the classification
// in two passes. The first pass only collects usages by their IDs, the
// second pass resolves parent, accepted and basionym references, breaks
// cycles and collapses synonym chains. Problems never abort the build,
// they are recorded as issues on the affected usages.
//
// A Store is not safe for concurrent use.
package graph

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"

	"github.com/gnames/gncat/pkg/model"
)

// Handle addresses a node in the Store.
type Handle int32

// NoHandle marks a missing reference.
const NoHandle Handle = -1

// Node is a usage with resolved references.
type Node struct {
	Handle      Handle
	Usage       model.Usage
	Attachments model.Attachments

	parent   Handle
	accepted Handle
	basionym Handle
	homotyp  Handle
	children []Handle
	synonyms []Handle
}

// Parent is the handle of the parent taxon or NoHandle.
func (n *Node) Parent() Handle { return n.parent }

// Accepted is the handle of the accepted taxon of a synonym or NoHandle.
func (n *Node) Accepted() Handle { return n.accepted }

// Basionym is the handle of the node that holds the basionym of this
// node's name or NoHandle.
func (n *Node) Basionym() Handle { return n.basionym }

type pending struct {
	usageID string
	att     model.Attachments
}

// Store is the arena of staged usages.
type Store struct {
	nodes    []Node
	ids      map[string]Handle
	nameIDs  map[string]Handle
	refs     map[string]int
	refList  []model.Reference
	pending  []pending
	groups   map[Handle][]Handle
	resolved bool
	stats    Stats
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		ids:     make(map[string]Handle),
		nameIDs: make(map[string]Handle),
		refs:    make(map[string]int),
		groups:  make(map[Handle][]Handle),
	}
}

// Add stores a usage and returns its handle. This is the first pass, no
// references are resolved yet. A usage with an ID that is already taken
// is kept as a bare name under a suffixed ID and flagged ID_NOT_UNIQUE.
func (s *Store) Add(u model.Usage) Handle {
	h := Handle(len(s.nodes))
	if _, ok := s.ids[u.ID]; ok {
		s.stats.DuplicateIDs++
		orig := u.ID
		for i := 1; ; i++ {
			id := fmt.Sprintf("%s#%d", orig, i)
			if _, ok := s.ids[id]; !ok {
				u.ID = id
				break
			}
		}
		if u.Name.ID == orig {
			u.Name.ID = u.ID
		}
		u.Issues = u.Issues.Add(model.IDNotUnique)
		u.ToBareName()
		slog.Debug("Usage ID is not unique", "id", orig, "new_id", u.ID)
	}
	s.ids[u.ID] = h
	if _, ok := s.nameIDs[u.Name.ID]; !ok && u.Name.ID != "" {
		s.nameIDs[u.Name.ID] = h
	}
	s.nodes = append(s.nodes, Node{
		Handle:   h,
		Usage:    u,
		parent:   NoHandle,
		accepted: NoHandle,
		basionym: NoHandle,
		homotyp:  NoHandle,
	})
	return h
}

// AddReference stores a reference. References with a duplicate ID are
// ignored.
func (s *Store) AddReference(ref model.Reference) {
	if _, ok := s.refs[ref.ID]; ok {
		s.stats.DuplicateReferences++
		slog.Debug("Reference ID is not unique", "id", ref.ID)
		return
	}
	s.refs[ref.ID] = len(s.refList)
	s.refList = append(s.refList, ref)
}

// Attach keeps attachments of a usage until Resolve can bind them.
func (s *Store) Attach(usageID string, att model.Attachments) {
	s.pending = append(s.pending, pending{usageID: usageID, att: att})
}

// Len returns the number of nodes.
func (s *Store) Len() int {
	return len(s.nodes)
}

// Node returns the node of a handle. It panics on invalid handles.
func (s *Store) Node(h Handle) *Node {
	return &s.nodes[h]
}

// Lookup finds a handle by usage ID.
func (s *Store) Lookup(id string) (Handle, bool) {
	h, ok := s.ids[id]
	return h, ok
}

// References returns stored references in insertion order.
func (s *Store) References() []model.Reference {
	return s.refList
}

// Roots returns taxa without a parent ordered by insertion order.
func (s *Store) Roots() []Handle {
	var res []Handle
	for i := range s.nodes {
		n := &s.nodes[i]
		if n.Usage.IsTaxon() && n.parent == NoHandle {
			res = append(res, n.Handle)
		}
	}
	s.sortHandles(res)
	return res
}

// Children returns child taxa of a taxon.
func (s *Store) Children(h Handle) []Handle {
	return s.nodes[h].children
}

// Synonyms returns synonyms of a taxon.
func (s *Store) Synonyms(h Handle) []Handle {
	return s.nodes[h].synonyms
}

// HomotypicRoot returns the node holding the first name of the basionym
// chain of h. A node without basionym relations is its own root.
func (s *Store) HomotypicRoot(h Handle) Handle {
	if r := s.nodes[h].homotyp; r != NoHandle {
		return r
	}
	return h
}

// HomotypicGroup returns all nodes sharing the basionym root of h,
// including h itself.
func (s *Store) HomotypicGroup(h Handle) []Handle {
	if g, ok := s.groups[s.HomotypicRoot(h)]; ok {
		return g
	}
	return []Handle{h}
}

// Stats returns counts collected while building the graph.
func (s *Store) Stats() Stats {
	return s.stats
}

func (s *Store) sortHandles(hs []Handle) {
	slices.SortFunc(hs, func(a, b Handle) int {
		na, nb := &s.nodes[a], &s.nodes[b]
		if c := cmp.Compare(na.Usage.Ordinal, nb.Usage.Ordinal); c != 0 {
			return c
		}
		return cmp.Compare(na.Usage.ID, nb.Usage.ID)
	})
}
