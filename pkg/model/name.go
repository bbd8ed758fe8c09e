package model

import (
	"strings"

	"github.com/gnames/gnlib/ent/nomcode"
)

// NameType distinguishes well-formed scientific names from names the
// parser could not fully handle.
type NameType int

const (
	NameScientific NameType = iota
	NameVirus
	NameUnparsable
)

func (t NameType) String() string {
	switch t {
	case NameVirus:
		return "virus"
	case NameUnparsable:
		return "unparsable"
	default:
		return "scientific"
	}
}

// ParsedName holds atomized components returned by a name parser.
type ParsedName struct {
	Parsed               bool
	Quality              int
	Type                 NameType
	Canonical            string
	CanonicalFull        string
	Authorship           string
	Year                 int
	Cardinality          int
	Uninomial            string
	Genus                string
	SpecificEpithet      string
	InfraspecificEpithet string
}

// Name is a scientific name. Names are dataset-scoped, ID is unique within
// a dataset partition and Key is assigned when the name is persisted.
type Name struct {
	Key        int64
	ID         string
	DatasetKey int

	// ScientificName is the name without authorship, as given or as
	// assembled from atoms.
	ScientificName string
	Authorship     string
	Rank           Rank
	Code           nomcode.Code
	NomStatus      NomStatus
	Type           NameType

	Uninomial            string
	Genus                string
	InfragenericEpithet  string
	SpecificEpithet      string
	InfraspecificEpithet string

	// Canonical is the simple canonical form used for matching and sorting.
	Canonical string
	Year      int

	BasionymID  string
	BasionymKey int64
	// HomotypicNameID is the ID of the root of the basionym chain. It is
	// derived during graph assembly.
	HomotypicNameID string

	Link    string
	Remarks string
	Issues  IssueSet
}

// Label returns the name with authorship.
func (n *Name) Label() string {
	name := n.ScientificName
	if name == "" {
		name = n.CanonicalName()
	}
	if n.Authorship == "" {
		return name
	}
	return name + " " + n.Authorship
}

// CanonicalName returns the cached canonical form or builds it from atoms.
func (n *Name) CanonicalName() string {
	if n.Canonical != "" {
		return n.Canonical
	}
	return n.BuildCanonical()
}

// BuildCanonical assembles a simple canonical form from atomized epithets.
func (n *Name) BuildCanonical() string {
	if n.Uninomial != "" {
		return n.Uninomial
	}
	if n.Genus == "" {
		return strings.TrimSpace(n.ScientificName)
	}
	parts := []string{n.Genus}
	if n.SpecificEpithet != "" {
		parts = append(parts, n.SpecificEpithet)
		if n.InfraspecificEpithet != "" {
			parts = append(parts, n.InfraspecificEpithet)
		}
	}
	return strings.Join(parts, " ")
}

// IsAtomized is true when the name was given as separate epithets.
func (n *Name) IsAtomized() bool {
	return n.Uninomial != "" || n.Genus != ""
}

// withoutKeys returns a copy without persistence keys.
func (n Name) withoutKeys() Name {
	n.Key = 0
	n.BasionymKey = 0
	return n
}
