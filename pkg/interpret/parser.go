package interpret

import (
	"strconv"
	"strings"

	"github.com/gnames/gncat/pkg/model"
	"github.com/gnames/gncat/pkg/parserpool"
	"github.com/gnames/gnlib/ent/nomcode"
)

// NameParser turns a name string into atomized parts. Data-quality
// problems are returned as issues, the error is reserved for failures of
// the parser itself.
type NameParser interface {
	ParseName(
		verbatim, authorship string,
		rank model.Rank,
		code nomcode.Code,
	) (model.ParsedName, model.IssueSet, error)
}

type gnParser struct {
	pool parserpool.Pool
}

// NewGNParser creates a NameParser backed by a pool of gnparser instances.
func NewGNParser(pool parserpool.Pool) NameParser {
	return &gnParser{pool: pool}
}

// ParseName parses a name with its authorship. Authorship is appended to
// the name unless the name already ends with it.
func (p *gnParser) ParseName(
	verbatim, authorship string,
	rank model.Rank,
	code nomcode.Code,
) (model.ParsedName, model.IssueSet, error) {
	var res model.ParsedName
	var issues model.IssueSet

	full := verbatim
	if authorship != "" && !strings.HasSuffix(verbatim, authorship) {
		full = verbatim + " " + authorship
	}

	prs, err := p.pool.Parse(full, code)
	if err != nil {
		return res, issues, err
	}

	res.Parsed = prs.Parsed
	res.Quality = prs.ParseQuality
	res.Cardinality = prs.Cardinality

	switch {
	case prs.Virus:
		res.Type = model.NameVirus
	case !prs.Parsed:
		res.Type = model.NameUnparsable
		issues = issues.Add(model.UnparsableName)
		return res, issues, nil
	}

	// quality 4 means only a part of the string was parsed
	if prs.ParseQuality >= 4 {
		issues = issues.Add(model.PartiallyParsableName)
	}

	if prs.Canonical != nil {
		res.Canonical = prs.Canonical.Simple
		res.CanonicalFull = prs.Canonical.Full
	}
	if prs.Authorship != nil {
		res.Authorship = prs.Authorship.Normalized
		res.Year = yearFromAuthorship(prs.Authorship.Year)
	}
	atomize(&res)

	if rank.IsInfraspecific() && res.Cardinality == 2 {
		issues = issues.Add(model.InconsistentName)
	}
	return res, issues, nil
}

// atomize splits the simple canonical form into epithets according to the
// name cardinality.
func atomize(pn *model.ParsedName) {
	words := strings.Fields(pn.Canonical)
	switch {
	case pn.Cardinality == 1 && len(words) == 1:
		pn.Uninomial = words[0]
	case pn.Cardinality == 2 && len(words) == 2:
		pn.Genus, pn.SpecificEpithet = words[0], words[1]
	case pn.Cardinality >= 3 && len(words) >= 3:
		pn.Genus, pn.SpecificEpithet = words[0], words[1]
		pn.InfraspecificEpithet = words[len(words)-1]
	}
}

func yearFromAuthorship(s string) int {
	s = strings.Trim(s, "()?")
	if len(s) > 4 {
		s = s[:4]
	}
	res, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return res
}
