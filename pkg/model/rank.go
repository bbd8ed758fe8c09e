package model

import "strings"

// Rank is a taxonomic rank. Higher ranks have lower values, Unranked is the
// zero value.
type Rank int

const (
	Unranked Rank = iota
	Domain
	Superkingdom
	Kingdom
	Subkingdom
	Superphylum
	Phylum
	Subphylum
	Superclass
	Class
	Subclass
	Infraclass
	Superorder
	Order
	Suborder
	Infraorder
	Superfamily
	Family
	Subfamily
	Tribe
	Subtribe
	Genus
	Subgenus
	Section
	Series
	Species
	Subspecies
	Variety
	Subvariety
	Form
	Subform
	Cultivar
)

var rankNames = []string{
	"unranked", "domain", "superkingdom", "kingdom", "subkingdom",
	"superphylum", "phylum", "subphylum", "superclass", "class", "subclass",
	"infraclass", "superorder", "order", "suborder", "infraorder",
	"superfamily", "family", "subfamily", "tribe", "subtribe", "genus",
	"subgenus", "section", "series", "species", "subspecies", "variety",
	"subvariety", "form", "subform", "cultivar",
}

var rankAliases = map[string]Rank{
	"regnum":   Kingdom,
	"division": Phylum,
	"classis":  Class,
	"ordo":     Order,
	"familia":  Family,
	"sp":       Species,
	"spec":     Species,
	"ssp":      Subspecies,
	"subsp":    Subspecies,
	"var":      Variety,
	"subvar":   Subvariety,
	"f":        Form,
	"fo":       Form,
	"forma":    Form,
	"subf":     Subform,
	"cv":       Cultivar,
	"gen":      Genus,
	"subgen":   Subgenus,
	"sect":     Section,
	"fam":      Family,
	"ord":      Order,
	"no rank":  Unranked,
	"":         Unranked,
}

var rankIndex = func() map[string]Rank {
	res := make(map[string]Rank, len(rankNames)+len(rankAliases))
	for i, v := range rankNames {
		res[v] = Rank(i)
	}
	for k, v := range rankAliases {
		res[k] = v
	}
	return res
}()

// RankFromString converts a verbatim rank into Rank. The second value is
// false when the string is not a recognized rank, in which case Unranked is
// returned.
func RankFromString(s string) (Rank, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimSuffix(s, ".")
	s = strings.ReplaceAll(s, "_", " ")
	if r, ok := rankIndex[s]; ok {
		return r, true
	}
	return Unranked, false
}

// String returns the lowercase name of the rank.
func (r Rank) String() string {
	if r < 0 || int(r) >= len(rankNames) {
		return rankNames[0]
	}
	return rankNames[r]
}

// IsSpeciesOrBelow is true for species and infraspecific ranks.
func (r Rank) IsSpeciesOrBelow() bool {
	return r >= Species
}

// IsInfraspecific is true for ranks below species.
func (r Rank) IsInfraspecific() bool {
	return r > Species && r <= Subform
}
