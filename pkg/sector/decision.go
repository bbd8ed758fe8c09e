package sector

import (
	"slices"
	"strings"

	"github.com/gnames/gncat/pkg/model"
)

// Action is an editorial decision about a subject usage.
type Action int

const (
	// Update replaces fields of the copied usage.
	Update Action = iota
	// Skip leaves the usage out, its children go to its parent.
	Skip
	// SkipSubtree leaves the usage out together with its subtree.
	SkipSubtree
)

var actionNames = []string{"update", "skip", "skip_subtree"}

// ActionFromString converts a case-insensitive action name.
func ActionFromString(s string) (Action, bool) {
	s = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	idx := slices.Index(actionNames, s)
	if idx < 0 {
		return Update, false
	}
	return Action(idx), true
}

func (a Action) String() string {
	if a < 0 || int(a) >= len(actionNames) {
		return actionNames[0]
	}
	return actionNames[a]
}

// Decision is an editorial decision for a usage of a source dataset. It is
// used by MERGE syncs only.
type Decision struct {
	DatasetKey int
	SubjectID  string
	Action     Action

	// Name overrides. Empty values keep subject data.
	Name       string
	Authorship string
	Rank       *model.Rank

	// Status overrides the taxonomic status if it keeps the usage kind.
	Status *model.TaxStatus
}

// OverridePolicy limits which fields an update decision may replace.
type OverridePolicy int

const (
	OverrideAll OverridePolicy = iota
	OverrideNames
	OverrideStatus
)

var policyNames = []string{"all", "names", "status"}

// OverridePolicyFromString converts a policy name.
func OverridePolicyFromString(s string) (OverridePolicy, bool) {
	idx := slices.Index(policyNames, strings.ToLower(strings.TrimSpace(s)))
	if idx < 0 {
		return OverrideAll, false
	}
	return OverridePolicy(idx), true
}

func (p OverridePolicy) String() string {
	if p < 0 || int(p) >= len(policyNames) {
		return policyNames[0]
	}
	return policyNames[p]
}

func (p OverridePolicy) names() bool {
	return p == OverrideAll || p == OverrideNames
}

func (p OverridePolicy) status() bool {
	return p == OverrideAll || p == OverrideStatus
}

// Apply changes a copied usage according to an update decision. Decision
// data wins over subject data. It returns false when the decision could
// not be applied completely.
func (d *Decision) Apply(u *model.Usage, p OverridePolicy) bool {
	ok := true
	if p.names() {
		if d.Name != "" {
			u.Name.ScientificName = d.Name
			u.Name.Canonical = d.Name
			u.Name.Uninomial = ""
			u.Name.Genus = ""
			u.Name.InfragenericEpithet = ""
			u.Name.SpecificEpithet = ""
			u.Name.InfraspecificEpithet = ""
		}
		if d.Authorship != "" {
			u.Name.Authorship = d.Authorship
		}
		if d.Rank != nil {
			u.Name.Rank = *d.Rank
		}
	}
	if p.status() && d.Status != nil {
		// a status may not turn a taxon into a synonym or back
		if d.Status.Kind() == u.Kind {
			u.Status = *d.Status
		} else {
			ok = false
		}
	}
	return ok
}
