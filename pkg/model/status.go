package model

import "strings"

// Kind tags the Usage variant.
type Kind int

const (
	// BareNameKind is a name without a placement in the classification.
	BareNameKind Kind = iota
	// TaxonKind is an accepted node of the classification.
	TaxonKind
	// SynonymKind points to exactly one accepted taxon.
	SynonymKind
)

func (k Kind) String() string {
	switch k {
	case TaxonKind:
		return "taxon"
	case SynonymKind:
		return "synonym"
	default:
		return "bare name"
	}
}

// TaxStatus is the taxonomic status of a usage.
type TaxStatus int

const (
	StatusAccepted TaxStatus = iota
	StatusProvisional
	StatusSynonym
	StatusAmbiguousSynonym
	StatusMisapplied
	StatusBareName
)

var taxStatusNames = []string{
	"accepted", "provisionally accepted", "synonym", "ambiguous synonym",
	"misapplied", "bare name",
}

var taxStatusIndex = map[string]TaxStatus{
	"accepted":               StatusAccepted,
	"valid":                  StatusAccepted,
	"provisionally accepted": StatusProvisional,
	"provisional":            StatusProvisional,
	"doubtful":               StatusProvisional,
	"synonym":                StatusSynonym,
	"homotypic synonym":      StatusSynonym,
	"heterotypic synonym":    StatusSynonym,
	"objective synonym":      StatusSynonym,
	"subjective synonym":     StatusSynonym,
	"ambiguous synonym":      StatusAmbiguousSynonym,
	"proparte synonym":       StatusAmbiguousSynonym,
	"pro parte synonym":      StatusAmbiguousSynonym,
	"misapplied":             StatusMisapplied,
	"misapplied name":        StatusMisapplied,
	"bare name":              StatusBareName,
}

// TaxStatusFromString parses a verbatim taxonomic status. Empty strings are
// not recognized, callers decide about the default.
func TaxStatusFromString(s string) (TaxStatus, bool) {
	s = normEnum(s)
	res, ok := taxStatusIndex[s]
	return res, ok
}

func (s TaxStatus) String() string {
	if s < 0 || int(s) >= len(taxStatusNames) {
		return taxStatusNames[0]
	}
	return taxStatusNames[s]
}

// Kind returns the usage variant implied by the status.
func (s TaxStatus) Kind() Kind {
	switch s {
	case StatusAccepted, StatusProvisional:
		return TaxonKind
	case StatusSynonym, StatusAmbiguousSynonym, StatusMisapplied:
		return SynonymKind
	default:
		return BareNameKind
	}
}

// NomStatus is a simplified nomenclatural status of a name.
type NomStatus int

const (
	NomUnknown NomStatus = iota
	NomEstablished
	NomAcceptable
	NomUnacceptable
	NomConserved
	NomRejected
	NomDoubtful
	NomManuscript
	NomChresonym
)

var nomStatusNames = []string{
	"", "established", "acceptable", "unacceptable", "conserved",
	"rejected", "doubtful", "manuscript", "chresonym",
}

var nomStatusIndex = map[string]NomStatus{
	"":             NomUnknown,
	"established":  NomEstablished,
	"available":    NomEstablished,
	"valid":        NomEstablished,
	"acceptable":   NomAcceptable,
	"legitimate":   NomAcceptable,
	"unacceptable": NomUnacceptable,
	"illegitimate": NomUnacceptable,
	"invalid":      NomUnacceptable,
	"conserved":    NomConserved,
	"rejected":     NomRejected,
	"suppressed":   NomRejected,
	"doubtful":     NomDoubtful,
	"manuscript":   NomManuscript,
	"chresonym":    NomChresonym,
}

// NomStatusFromString parses a nomenclatural status. An empty string is a
// valid unknown status.
func NomStatusFromString(s string) (NomStatus, bool) {
	s = normEnum(s)
	res, ok := nomStatusIndex[s]
	return res, ok
}

func (s NomStatus) String() string {
	if s < 0 || int(s) >= len(nomStatusNames) {
		return ""
	}
	return nomStatusNames[s]
}

func normEnum(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "_", " ")
	s = strings.ReplaceAll(s, "-", " ")
	return s
}
