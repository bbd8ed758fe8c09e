package model

import (
	"strings"

	"github.com/gnames/gnlib/ent/nomcode"
)

var codeIndex = map[string]nomcode.Code{
	"":           nomcode.Unknown,
	"unknown":    nomcode.Unknown,
	"botanical":  nomcode.Botanical,
	"botany":     nomcode.Botanical,
	"icn":        nomcode.Botanical,
	"icnafp":     nomcode.Botanical,
	"icbn":       nomcode.Botanical,
	"zoological": nomcode.Zoological,
	"zoology":    nomcode.Zoological,
	"iczn":       nomcode.Zoological,
	"bacterial":  nomcode.Bacterial,
	"bacteria":   nomcode.Bacterial,
	"icnp":       nomcode.Bacterial,
	"icnb":       nomcode.Bacterial,
	"virus":      nomcode.Virus,
	"viral":      nomcode.Virus,
	"ictv":       nomcode.Virus,
	"icvcn":      nomcode.Virus,
}

// CodeFromString parses a verbatim nomenclatural code. An empty string is
// a valid unknown code.
func CodeFromString(s string) (nomcode.Code, bool) {
	res, ok := codeIndex[strings.ToLower(strings.TrimSpace(s))]
	return res, ok
}

// CodeName returns the persisted name of a nomenclatural code.
func CodeName(c nomcode.Code) string {
	switch c {
	case nomcode.Botanical:
		return "botanical"
	case nomcode.Zoological:
		return "zoological"
	case nomcode.Bacterial:
		return "bacterial"
	case nomcode.Virus:
		return "virus"
	default:
		return ""
	}
}

// Gazetteer is the authority of distribution area identifiers.
type Gazetteer int

const (
	GazetteerText Gazetteer = iota
	GazetteerISO
	GazetteerTDWG
	GazetteerFAO
	GazetteerLonghurst
	GazetteerMRGID
	GazetteerIHO
)

var gazetteerNames = []string{
	"text", "iso", "tdwg", "fao", "longhurst", "mrgid", "iho",
}

// GazetteerFromString parses a gazetteer name or area prefix.
func GazetteerFromString(s string) (Gazetteer, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, v := range gazetteerNames {
		if v == s {
			return Gazetteer(i), true
		}
	}
	return GazetteerText, false
}

func (g Gazetteer) String() string {
	if g < 0 || int(g) >= len(gazetteerNames) {
		return gazetteerNames[0]
	}
	return gazetteerNames[g]
}

// DistStatus is the establishment status of a taxon in an area.
type DistStatus int

const (
	DistNative DistStatus = iota
	DistDomesticated
	DistAlien
	DistUncertain
)

var distStatusNames = []string{"native", "domesticated", "alien", "uncertain"}

var distStatusIndex = map[string]DistStatus{
	"native":       DistNative,
	"endemic":      DistNative,
	"present":      DistNative,
	"domesticated": DistDomesticated,
	"cultivated":   DistDomesticated,
	"alien":        DistAlien,
	"introduced":   DistAlien,
	"invasive":     DistAlien,
	"naturalised":  DistAlien,
	"naturalized":  DistAlien,
	"uncertain":    DistUncertain,
	"doubtful":     DistUncertain,
}

// DistStatusFromString parses a distribution status.
func DistStatusFromString(s string) (DistStatus, bool) {
	res, ok := distStatusIndex[normEnum(s)]
	return res, ok
}

func (d DistStatus) String() string {
	if d < 0 || int(d) >= len(distStatusNames) {
		return distStatusNames[0]
	}
	return distStatusNames[d]
}
