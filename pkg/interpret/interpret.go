// Package interpret converts verbatim archive records into typed names,
// usages and attachments. Interpretation never fails on bad data, problems
// are recorded as issues. The interpreter does not keep state between
// records, so one instance can be shared by concurrent workers.
package interpret

import (
	"log/slog"
	"strings"
	"time"

	"github.com/gnames/gncat/pkg/model"
	"github.com/gnames/gnlib"
	"github.com/gnames/gnlib/ent/nomcode"
)

const minYear = 1500

// Settings are dataset-wide defaults used during interpretation.
type Settings struct {
	// Code is used for records without a nomenclatural code.
	Code nomcode.Code
	// Gazetteer is used for distribution areas without a prefix.
	Gazetteer model.Gazetteer
}

// Interpreter converts verbatim records to model objects.
type Interpreter struct {
	settings Settings
	parser   NameParser
	maxYear  int
}

// New creates an Interpreter.
func New(parser NameParser, settings Settings) *Interpreter {
	return &Interpreter{
		settings: settings,
		parser:   parser,
		maxYear:  time.Now().Year() + 10,
	}
}

// Usage interprets a taxon, synonym or name record. It returns false when
// the record carries no name at all. Parser failures are logged and the
// record is kept as a bare name.
func (it *Interpreter) Usage(rec model.VerbatimRecord) (model.Usage, bool) {
	var res model.Usage

	name, ok := it.name(rec)
	if !ok {
		slog.Debug("No name given", "record", rec.Key())
		return res, false
	}

	res = model.Usage{
		ID:          rec.Get(model.TermID),
		Name:        name,
		AccordingTo: rec.Get(model.TermAccordingTo),
		ReferenceID: rec.Get(model.TermReferenceID),
		Remarks:     rec.Get(model.TermRemarks),
		Extinct:     parseBool(rec.Get(model.TermExtinct)),
		Ordinal:     rec.Seq(),
		Verbatim:    rec.Ref(),
	}
	if res.ID == "" {
		res.ID = name.ID
	}
	if res.ID == "" {
		res.ID = rec.Key()
		res.Issues = res.Issues.Add(model.TaxonIDInvalid)
	}
	if res.Name.ID == "" {
		res.Name.ID = res.ID
	}

	it.placement(rec, &res)

	if name.Type == model.NameUnparsable && !res.IsBareName() {
		res.ToBareName()
	}
	return res, true
}

func (it *Interpreter) placement(rec model.VerbatimRecord, u *model.Usage) {
	var def model.TaxStatus
	switch rec.Type() {
	case model.TaxonRecord:
		def = model.StatusAccepted
	case model.SynonymRecord:
		def = model.StatusSynonym
	default:
		u.ToBareName()
		return
	}

	u.Status = def
	if s := rec.Get(model.TermStatus); s != "" {
		st, ok := model.TaxStatusFromString(s)
		if ok {
			u.Status = st
		} else {
			u.Issues = u.Issues.Add(model.TaxStatusInvalid)
		}
	}
	u.Kind = u.Status.Kind()

	switch u.Kind {
	case model.TaxonKind:
		u.ParentID = rec.Get(model.TermParentID)
	case model.SynonymKind:
		u.AcceptedID = rec.GetFirst(
			model.TermAcceptedID, model.TermTaxonID, model.TermParentID,
		)
		if u.AcceptedID == "" {
			u.Issues = u.Issues.Add(model.AcceptedIDInvalid)
			u.ToBareName()
		}
	}
}

// name interprets the name part of a record.
func (it *Interpreter) name(rec model.VerbatimRecord) (model.Name, bool) {
	var res model.Name
	var issues model.IssueSet

	rank, ok := model.RankFromString(rec.Get(model.TermRank))
	if !ok {
		issues = issues.Add(model.RankInvalid)
	}

	code := it.settings.Code
	if s := rec.Get(model.TermCode); s != "" {
		if c, ok := model.CodeFromString(s); ok && c != nomcode.Unknown {
			code = c
		} else if !ok {
			issues = issues.Add(model.NomCodeInvalid)
		}
	}

	sciname := gnlib.FixUtf8(rec.Get(model.TermScientificName))
	authorship := gnlib.FixUtf8(rec.Get(model.TermAuthorship))

	atom := model.Name{
		Uninomial:            rec.Get(model.TermUninomial),
		Genus:                rec.Get(model.TermGenus),
		InfragenericEpithet:  rec.Get(model.TermInfragenericEpithet),
		SpecificEpithet:      epithet(rec.Get(model.TermSpecificEpithet), &issues),
		InfraspecificEpithet: epithet(rec.Get(model.TermInfraspecificEpithet), &issues),
	}
	if atom.Uninomial == "" && atom.Genus != "" && atom.SpecificEpithet == "" &&
		atom.InfragenericEpithet == "" && !rank.IsSpeciesOrBelow() {
		atom.Uninomial, atom.Genus = atom.Genus, ""
	}

	useAtoms := atom.IsAtomized() && sciname == ""
	if useAtoms {
		sciname = atom.BuildCanonical()
	}
	if sciname == "" {
		return res, false
	}

	res = model.Name{
		ID:             rec.Get(model.TermNameID),
		ScientificName: sciname,
		Authorship:     authorship,
		Rank:           rank,
		Code:           code,
		Link:           rec.Get(model.TermLink),
		BasionymID:     rec.Get(model.TermBasionymID),
	}
	if rec.Type() == model.NameRecord && res.ID == "" {
		res.ID = rec.Get(model.TermID)
	}

	pn, pIssues, err := it.parser.ParseName(sciname, authorship, rank, code)
	if err != nil {
		slog.Warn("Cannot parse name", "name", sciname, "error", err)
		pn = model.ParsedName{Type: model.NameUnparsable}
		pIssues = pIssues.Add(model.NotInterpreted)
	}
	issues = issues.Merge(pIssues)
	res.Type = pn.Type

	if pn.Parsed {
		res.Canonical = pn.Canonical
		if res.Authorship == "" {
			res.Authorship = pn.Authorship
		}
		if useAtoms {
			res.Uninomial = atom.Uninomial
			res.Genus = atom.Genus
			res.InfragenericEpithet = atom.InfragenericEpithet
			res.SpecificEpithet = atom.SpecificEpithet
			res.InfraspecificEpithet = atom.InfraspecificEpithet
		} else {
			res.Uninomial = pn.Uninomial
			res.Genus = pn.Genus
			res.SpecificEpithet = pn.SpecificEpithet
			res.InfraspecificEpithet = pn.InfraspecificEpithet
		}
		if useAtoms && atomsDiffer(atom, pn) {
			slog.Debug("Parsed and given name atoms differ",
				"parsed", pn.Canonical, "atoms", atom.BuildCanonical())
			issues = issues.Add(model.ParsedNameDiffers)
		}
		if rank == model.Unranked && !rec.Has(model.TermRank) {
			res.Rank = inferRank(pn)
		}
	}

	if s := rec.Get(model.TermNomStatus); s != "" {
		st, ok := model.NomStatusFromString(s)
		if ok {
			res.NomStatus = st
		} else {
			issues = issues.Add(model.NomStatusInvalid)
			res.Remarks = s
		}
	}

	if y := rec.GetFirst(model.TermPublishedInYear, model.TermCombinationYear); y != "" {
		res.Year = it.year(y, &issues)
	} else if pn.Year > 0 {
		res.Year = pn.Year
		if res.Year < minYear || res.Year > it.maxYear {
			issues = issues.Add(model.UnlikelyYear)
		}
	}

	if res.BasionymID != "" && res.BasionymID == res.ID {
		issues = issues.Add(model.BasionymIDInvalid)
		res.BasionymID = ""
	}

	res.Issues = issues
	return res, true
}

// epithet lower-cases an epithet and flags upper-case or multi-word
// values.
func epithet(s string, issues *model.IssueSet) string {
	if s == "" {
		return s
	}
	if strings.Contains(s, " ") {
		*issues = issues.Add(model.MultiWordEpithet)
		return s
	}
	if low := strings.ToLower(s); low != s {
		*issues = issues.Add(model.UppercaseEpithet)
		return low
	}
	return s
}

func atomsDiffer(atom model.Name, pn model.ParsedName) bool {
	return atom.BuildCanonical() != pn.Canonical
}

func inferRank(pn model.ParsedName) model.Rank {
	switch pn.Cardinality {
	case 2:
		return model.Species
	case 3:
		return model.Subspecies
	default:
		return model.Unranked
	}
}

func parseBool(s string) bool {
	switch strings.ToLower(s) {
	case "1", "t", "true", "y", "yes", "extinct":
		return true
	default:
		return false
	}
}
