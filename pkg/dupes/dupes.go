// Package dupes finds groups of usages that share the same name. It is
// pure, all data are passed in as entries.
package dupes

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"github.com/gnames/gncat/pkg/graph"
	"github.com/gnames/gncat/pkg/model"
	"github.com/gnames/gnlib/ent/nomcode"
)

// Mode determines how strictly names are compared.
type Mode int

const (
	// Fuzzy compares normalized canonical names only.
	Fuzzy Mode = iota
	// Exact compares canonical names together with authorship.
	Exact
)

// ModeFromString parses "exact" or "fuzzy".
func ModeFromString(s string) (Mode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "exact":
		return Exact, true
	case "fuzzy", "":
		return Fuzzy, true
	default:
		return Fuzzy, false
	}
}

func (m Mode) String() string {
	if m == Exact {
		return "exact"
	}
	return "fuzzy"
}

// Entry is a usage reduced to the fields that matter for matching.
type Entry struct {
	UsageID    string       `json:"id"`
	Handle     graph.Handle `json:"-"`
	Canonical  string       `json:"canonical"`
	Authorship string       `json:"authorship,omitempty"`
	Rank       model.Rank   `json:"-"`
	RankName   string       `json:"rank"`
	Code       nomcode.Code `json:"-"`
	Kind       model.Kind   `json:"-"`
	Status     string       `json:"status"`
	AcceptedID string       `json:"acceptedId,omitempty"`
	SectorKey  int          `json:"sectorKey,omitempty"`
}

// Group is a set of usages sharing a key.
type Group struct {
	Key                 string  `json:"key"`
	Canonical           string  `json:"canonical"`
	Members             []Entry `json:"members"`
	AuthorshipDifferent bool    `json:"authorshipDifferent"`
	RankDifferent       bool    `json:"rankDifferent"`
	CodeDifferent       bool    `json:"codeDifferent"`
	AcceptedDifferent   bool    `json:"acceptedDifferent"`
}

// Options configure matching and filtering.
type Options struct {
	Mode Mode
	// MinSize is the smallest group returned, values below 2 mean 2.
	MinSize int
	// RankAware adds the rank to the key.
	RankAware bool
	// CodeAware adds the nomenclatural code to the key.
	CodeAware bool
	// Kinds restricts entries to the given usage kinds.
	Kinds []model.Kind
	// Ranks restricts entries to the given ranks.
	Ranks []model.Rank
	// SectorKey restricts entries to usages of one sector.
	SectorKey *int

	// Post filters on group flags, nil means no filter.
	AuthorshipDifferent *bool
	RankDifferent       *bool
	CodeDifferent       *bool
	AcceptedDifferent   *bool
}

// Key builds the matching key of an entry.
func Key(e Entry, opts Options) string {
	var sb strings.Builder
	switch opts.Mode {
	case Exact:
		sb.WriteString(e.Canonical)
		sb.WriteString("|")
		sb.WriteString(e.Authorship)
	default:
		sb.WriteString(normalize(e.Canonical))
	}
	if opts.RankAware {
		sb.WriteString("|")
		sb.WriteString(e.Rank.String())
	}
	if opts.CodeAware {
		sb.WriteString("|")
		sb.WriteString(strconv.Itoa(int(e.Code)))
	}
	return sb.String()
}

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// Find groups entries by key. Groups with fewer than MinSize members are
// dropped. Groups are ordered by size, largest first, then by canonical
// name.
func Find(entries []Entry, opts Options) []Group {
	minSize := max(opts.MinSize, 2)

	idx := make(map[string]int)
	var groups []Group
	for _, e := range entries {
		if !keep(e, opts) {
			continue
		}
		k := Key(e, opts)
		i, ok := idx[k]
		if !ok {
			i = len(groups)
			idx[k] = i
			groups = append(groups, Group{Key: k, Canonical: e.Canonical})
		}
		groups[i].Members = append(groups[i].Members, e)
	}

	res := make([]Group, 0, len(groups))
	for _, g := range groups {
		if len(g.Members) < minSize {
			continue
		}
		setFlags(&g)
		if !passFlags(g, opts) {
			continue
		}
		res = append(res, g)
	}

	slices.SortStableFunc(res, func(a, b Group) int {
		if c := cmp.Compare(len(b.Members), len(a.Members)); c != 0 {
			return c
		}
		return cmp.Compare(a.Canonical, b.Canonical)
	})
	return res
}

func keep(e Entry, opts Options) bool {
	if e.Canonical == "" {
		return false
	}
	if len(opts.Kinds) > 0 && !slices.Contains(opts.Kinds, e.Kind) {
		return false
	}
	if len(opts.Ranks) > 0 && !slices.Contains(opts.Ranks, e.Rank) {
		return false
	}
	if opts.SectorKey != nil && *opts.SectorKey != e.SectorKey {
		return false
	}
	return true
}

// setFlags compares members pairwise. A flag is set when at least one pair
// differs in the field.
func setFlags(g *Group) {
	ms := g.Members
	for i := range ms {
		for j := i + 1; j < len(ms); j++ {
			a, b := &ms[i], &ms[j]
			if a.Authorship != b.Authorship {
				g.AuthorshipDifferent = true
			}
			if a.Rank != b.Rank {
				g.RankDifferent = true
			}
			if a.Code != b.Code {
				g.CodeDifferent = true
			}
			if a.Kind == model.SynonymKind && b.Kind == model.SynonymKind &&
				a.AcceptedID != b.AcceptedID {
				g.AcceptedDifferent = true
			}
		}
	}
}

func passFlags(g Group, opts Options) bool {
	check := func(filter *bool, val bool) bool {
		return filter == nil || *filter == val
	}
	return check(opts.AuthorshipDifferent, g.AuthorshipDifferent) &&
		check(opts.RankDifferent, g.RankDifferent) &&
		check(opts.CodeDifferent, g.CodeDifferent) &&
		check(opts.AcceptedDifferent, g.AcceptedDifferent)
}

// NewEntry converts a usage into an entry.
func NewEntry(u *model.Usage) Entry {
	return Entry{
		UsageID:    u.ID,
		Handle:     graph.NoHandle,
		Canonical:  u.Name.CanonicalName(),
		Authorship: u.Name.Authorship,
		Rank:       u.Name.Rank,
		RankName:   u.Name.Rank.String(),
		Code:       u.Name.Code,
		Kind:       u.Kind,
		Status:     u.Status.String(),
		AcceptedID: u.AcceptedID,
		SectorKey:  u.SectorKey,
	}
}

// FromUsages builds entries of persisted usages.
func FromUsages(us []*model.Usage) []Entry {
	res := make([]Entry, 0, len(us))
	for _, u := range us {
		res = append(res, NewEntry(u))
	}
	return res
}

// FromGraph builds entries of a staged import in walk order. Entries keep
// graph handles so that findings can be written back to the nodes.
func FromGraph(g *graph.Store) []Entry {
	res := make([]Entry, 0, g.Len())
	_ = g.Walk(func(n *graph.Node) error {
		e := NewEntry(&n.Usage)
		e.Handle = n.Handle
		res = append(res, e)
		return nil
	})
	return res
}
