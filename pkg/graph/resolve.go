package graph

import (
	"log/slog"

	"github.com/gnames/gncat/pkg/model"
)

// Resolve is the second pass of the build. It links accepted references,
// collapses synonym chains, links parents, cuts parent cycles, links
// basionyms, binds attachments and checks reference IDs. Calling Resolve
// more than once has no effect.
func (s *Store) Resolve() {
	if s.resolved {
		return
	}
	s.resolved = true

	s.linkAccepted()
	s.collapseChains()
	s.linkParents()
	s.cutParentCycles()
	s.buildTree()
	s.linkBasionyms()
	s.cutBasionymCycles()
	s.groupHomotypic()
	s.bindAttachments()
	s.checkReferences()
	s.count()
}

func (s *Store) linkAccepted() {
	for i := range s.nodes {
		n := &s.nodes[i]
		if !n.Usage.IsSynonym() {
			continue
		}
		h, ok := s.ids[n.Usage.AcceptedID]
		if !ok || h == n.Handle || s.nodes[h].Usage.IsBareName() {
			s.stats.UnresolvedAccepted++
			n.Usage.Issues = n.Usage.Issues.Add(model.AcceptedIDInvalid)
			n.Usage.ToBareName()
			continue
		}
		n.accepted = h
	}
}

// collapseChains points every synonym directly to a taxon. Targets are
// computed from the original accepted references before any of them is
// rewritten. Chains that do not end in a taxon turn their synonyms into
// bare names. Every node is walked once, the result of a walk is recorded
// for all nodes of its path.
func (s *Store) collapseChains() {
	var chained []Handle
	for i := range s.nodes {
		n := &s.nodes[i]
		if n.accepted != NoHandle && !s.nodes[n.accepted].Usage.IsTaxon() {
			chained = append(chained, n.Handle)
		}
	}
	if len(chained) == 0 {
		return
	}

	target := make([]Handle, len(s.nodes))
	state := make([]uint8, len(s.nodes))
	var path []Handle
	follow := func(h Handle) Handle {
		res := NoHandle
		path = path[:0]
		for cur := h; ; {
			if state[cur] == done {
				res = target[cur]
				break
			}
			// reached again on the same path
			if state[cur] == onPath {
				break
			}
			n := &s.nodes[cur]
			if n.Usage.IsTaxon() {
				res = cur
				break
			}
			state[cur] = onPath
			path = append(path, cur)
			if n.accepted == NoHandle {
				break
			}
			cur = n.accepted
		}
		for _, v := range path {
			state[v] = done
			target[v] = res
		}
		return res
	}

	res := make([]Handle, len(chained))
	for i, h := range chained {
		res[i] = follow(h)
	}

	for i, h := range chained {
		n := &s.nodes[h]
		n.Usage.Issues = n.Usage.Issues.Add(model.ChainedSynonym)
		s.stats.ChainedSynonyms++
		t := res[i]
		if t == NoHandle {
			slog.Debug("Synonym chain does not end in a taxon", "id", n.Usage.ID)
			n.accepted = NoHandle
			n.Usage.Issues = n.Usage.Issues.Add(model.AcceptedIDInvalid)
			n.Usage.ToBareName()
			continue
		}
		n.accepted = t
		n.Usage.AcceptedID = s.nodes[t].Usage.ID
	}
}

func (s *Store) linkParents() {
	for i := range s.nodes {
		n := &s.nodes[i]
		if !n.Usage.IsTaxon() || n.Usage.ParentID == "" {
			continue
		}
		h, ok := s.ids[n.Usage.ParentID]
		if !ok || s.nodes[h].Usage.IsBareName() {
			s.stats.UnresolvedParents++
			n.Usage.Issues = n.Usage.Issues.Add(model.ParentIDInvalid)
			n.Usage.ParentID = ""
			continue
		}
		if p := &s.nodes[h]; p.Usage.IsSynonym() {
			s.stats.SynonymParents++
			n.Usage.Issues = n.Usage.Issues.Add(model.SynonymParent)
			h = p.accepted
			n.Usage.ParentID = s.nodes[h].Usage.ID
		}
		n.parent = h
	}
}

// cutParentCycles walks every parent chain once. A node reached again on
// the current path closes a cycle, the last traversed edge is removed and
// the node it started from is flagged.
func (s *Store) cutParentCycles() {
	cuts := cutCycles(s.nodes,
		func(n *Node) Handle { return n.parent },
		func(n *Node) {
			n.parent = NoHandle
			n.Usage.ParentID = ""
			n.Usage.Issues = n.Usage.Issues.Add(model.ParentCycle)
		},
	)
	s.stats.ParentCycles += cuts
}

const (
	unvisited = iota
	onPath
	done
)

// cutCycles detects cycles of a single-successor relation in linear time.
// It returns the number of edges cut.
func cutCycles(
	nodes []Node,
	next func(*Node) Handle,
	cut func(*Node),
) int {
	var res int
	state := make([]uint8, len(nodes))
	var path []Handle
	for i := range nodes {
		if state[i] != unvisited {
			continue
		}
		path = path[:0]
		cur := Handle(i)
		for cur != NoHandle && state[cur] == unvisited {
			state[cur] = onPath
			path = append(path, cur)
			nxt := next(&nodes[cur])
			if nxt != NoHandle && state[nxt] == onPath {
				cut(&nodes[cur])
				res++
				break
			}
			cur = nxt
		}
		for _, h := range path {
			state[h] = done
		}
	}
	return res
}

func (s *Store) buildTree() {
	for i := range s.nodes {
		n := &s.nodes[i]
		switch {
		case n.parent != NoHandle:
			p := &s.nodes[n.parent]
			p.children = append(p.children, n.Handle)
		case n.accepted != NoHandle:
			a := &s.nodes[n.accepted]
			a.synonyms = append(a.synonyms, n.Handle)
		}
	}
	for i := range s.nodes {
		s.sortHandles(s.nodes[i].children)
		s.sortHandles(s.nodes[i].synonyms)
	}
}

func (s *Store) linkBasionyms() {
	for i := range s.nodes {
		n := &s.nodes[i]
		id := n.Usage.Name.BasionymID
		if id == "" {
			continue
		}
		h, ok := s.nameIDs[id]
		if !ok || s.nodes[h].Usage.Name.ID == n.Usage.Name.ID {
			s.stats.UnresolvedBasionyms++
			n.Usage.Name.Issues = n.Usage.Name.Issues.Add(model.BasionymIDInvalid)
			n.Usage.Name.BasionymID = ""
			continue
		}
		n.basionym = h
	}
}

func (s *Store) cutBasionymCycles() {
	cuts := cutCycles(s.nodes,
		func(n *Node) Handle { return n.basionym },
		func(n *Node) {
			n.basionym = NoHandle
			n.Usage.Name.BasionymID = ""
			n.Usage.Name.Issues = n.Usage.Name.Issues.Add(model.BasionymCycle)
		},
	)
	s.stats.BasionymCycles += cuts
}

// groupHomotypic assigns the root of each basionym chain. Chains are
// acyclic at this point.
func (s *Store) groupHomotypic() {
	var path []Handle
	for i := range s.nodes {
		n := &s.nodes[i]
		if n.basionym == NoHandle || n.homotyp != NoHandle {
			continue
		}
		path = path[:0]
		cur := n.Handle
		root := NoHandle
		for cur != NoHandle {
			c := &s.nodes[cur]
			if c.homotyp != NoHandle {
				root = c.homotyp
				break
			}
			path = append(path, cur)
			if c.basionym == NoHandle {
				root = cur
				break
			}
			cur = c.basionym
		}
		for _, h := range path {
			s.nodes[h].homotyp = root
		}
	}

	for i := range s.nodes {
		n := &s.nodes[i]
		if n.homotyp == NoHandle {
			continue
		}
		n.Usage.Name.HomotypicNameID = s.nodes[n.homotyp].Usage.Name.ID
		s.groups[n.homotyp] = append(s.groups[n.homotyp], n.Handle)
	}
}

func (s *Store) bindAttachments() {
	for _, p := range s.pending {
		h, ok := s.ids[p.usageID]
		if !ok {
			s.stats.DroppedAttachments += p.att.Len()
			slog.Debug("Attachment of unknown usage dropped", "usage_id", p.usageID)
			continue
		}
		n := &s.nodes[h]
		att := &n.Attachments
		att.Vernaculars = append(att.Vernaculars, p.att.Vernaculars...)
		att.Distributions = append(att.Distributions, p.att.Distributions...)
		att.Media = append(att.Media, p.att.Media...)
		att.Descriptions = append(att.Descriptions, p.att.Descriptions...)
		s.stats.Attachments += p.att.Len()
	}
	if s.stats.DroppedAttachments > 0 {
		slog.Warn("Attachments of unknown usages were dropped",
			"count", s.stats.DroppedAttachments)
	}
	s.pending = nil
}

func (s *Store) checkReferences() {
	valid := func(id string) bool {
		if id == "" {
			return true
		}
		_, ok := s.refs[id]
		if !ok {
			s.stats.InvalidReferenceIDs++
		}
		return ok
	}

	for i := range s.nodes {
		n := &s.nodes[i]
		if !valid(n.Usage.ReferenceID) {
			n.Usage.ReferenceID = ""
			n.Usage.Issues = n.Usage.Issues.Add(model.ReferenceIDInvalid)
		}
		att := &n.Attachments
		for j := range att.Vernaculars {
			v := &att.Vernaculars[j]
			if !valid(v.ReferenceID) {
				v.ReferenceID = ""
				v.Issues = v.Issues.Add(model.ReferenceIDInvalid)
			}
		}
		for j := range att.Distributions {
			d := &att.Distributions[j]
			if !valid(d.ReferenceID) {
				d.ReferenceID = ""
				d.Issues = d.Issues.Add(model.ReferenceIDInvalid)
			}
		}
		for j := range att.Media {
			m := &att.Media[j]
			if !valid(m.ReferenceID) {
				m.ReferenceID = ""
				m.Issues = m.Issues.Add(model.ReferenceIDInvalid)
			}
		}
		for j := range att.Descriptions {
			d := &att.Descriptions[j]
			if !valid(d.ReferenceID) {
				d.ReferenceID = ""
			}
		}
	}
}

func (s *Store) count() {
	st := &s.stats
	st.Usages = len(s.nodes)
	st.References = len(s.refList)
	st.Taxa, st.Synonyms, st.BareNames, st.Roots = 0, 0, 0, 0
	for i := range s.nodes {
		n := &s.nodes[i]
		switch n.Usage.Kind {
		case model.TaxonKind:
			st.Taxa++
			if n.parent == NoHandle {
				st.Roots++
			}
		case model.SynonymKind:
			st.Synonyms++
		default:
			st.BareNames++
		}
	}
}
