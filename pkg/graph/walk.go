package graph

import "errors"

// ErrStopWalk can be returned by a walk callback to end the walk early
// without an error.
var ErrStopWalk = errors.New("stop walk")

// Walk visits nodes in classification order. Roots and siblings follow
// insertion order, every taxon is visited before its children and is
// immediately followed by its synonyms. Bare names come last. Walk stops
// on the first error returned by fn.
func (s *Store) Walk(fn func(*Node) error) error {
	err := s.walk(fn)
	if errors.Is(err, ErrStopWalk) {
		return nil
	}
	return err
}

func (s *Store) walk(fn func(*Node) error) error {
	roots := s.Roots()
	stack := make([]Handle, 0, len(roots))
	for i := len(roots) - 1; i >= 0; i-- {
		stack = append(stack, roots[i])
	}

	for len(stack) > 0 {
		h := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		n := &s.nodes[h]
		if err := fn(n); err != nil {
			return err
		}
		for _, sh := range n.synonyms {
			if err := fn(&s.nodes[sh]); err != nil {
				return err
			}
		}
		for i := len(n.children) - 1; i >= 0; i-- {
			stack = append(stack, n.children[i])
		}
	}

	var bare []Handle
	for i := range s.nodes {
		if s.nodes[i].Usage.IsBareName() {
			bare = append(bare, Handle(i))
		}
	}
	s.sortHandles(bare)
	for _, h := range bare {
		if err := fn(&s.nodes[h]); err != nil {
			return err
		}
	}
	return nil
}

// Depth returns the number of ancestors of a taxon. For synonyms the depth
// of their accepted taxon is returned.
func (s *Store) Depth(h Handle) int {
	n := &s.nodes[h]
	if n.accepted != NoHandle {
		n = &s.nodes[n.accepted]
	}
	var res int
	for p := n.parent; p != NoHandle; p = s.nodes[p].parent {
		res++
	}
	return res
}
