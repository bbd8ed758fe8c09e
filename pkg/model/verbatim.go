package model

import (
	"fmt"
	"maps"
	"strings"
)

// RecordType is the archive table a verbatim record comes from.
type RecordType int

const (
	ReferenceRecord RecordType = iota
	TaxonRecord
	SynonymRecord
	NameRecord
	VernacularRecord
	DistributionRecord
	MediaRecord
	DescriptionRecord
)

var recordTypeNames = []string{
	"reference", "taxon", "synonym", "name", "vernacular", "distribution",
	"media", "description",
}

func (t RecordType) String() string {
	if t < 0 || int(t) >= len(recordTypeNames) {
		return "unknown"
	}
	return recordTypeNames[t]
}

// Term is a normalized column name of an archive table.
type Term string

const (
	TermID                   Term = "id"
	TermParentID             Term = "parent_id"
	TermAcceptedID           Term = "accepted_id"
	TermTaxonID              Term = "taxon_id"
	TermNameID               Term = "name_id"
	TermBasionymID           Term = "basionym_id"
	TermReferenceID          Term = "reference_id"
	TermScientificName       Term = "scientific_name"
	TermAuthorship           Term = "authorship"
	TermRank                 Term = "rank_id"
	TermCode                 Term = "code_id"
	TermNomStatus            Term = "nom_status_id"
	TermStatus               Term = "status_id"
	TermUninomial            Term = "uninomial"
	TermGenus                Term = "genus"
	TermInfragenericEpithet  Term = "infrageneric_epithet"
	TermSpecificEpithet      Term = "specific_epithet"
	TermInfraspecificEpithet Term = "infraspecific_epithet"
	TermPublishedInYear      Term = "published_in_year"
	TermCombinationYear      Term = "combination_authorship_year"
	TermAccordingTo          Term = "according_to_id"
	TermExtinct              Term = "extinct"
	TermRemarks              Term = "remarks"
	TermLink                 Term = "link"
	TermName                 Term = "name"
	TermLanguage             Term = "language"
	TermCountry              Term = "country"
	TermArea                 Term = "area"
	TermAreaID               Term = "area_id"
	TermGazetteer            Term = "gazetteer_id"
	TermEstablishment        Term = "establishment_means_id"
	TermURL                  Term = "url"
	TermType                 Term = "type"
	TermFormat               Term = "format"
	TermTitle                Term = "title"
	TermCreated              Term = "created"
	TermCreator              Term = "creator"
	TermLicense              Term = "license"
	TermDescription          Term = "description"
	TermCitation             Term = "citation"
	TermAuthor               Term = "author"
	TermIssued               Term = "issued"
	TermDOI                  Term = "doi"
)

// VerbatimRecord is an immutable raw record of an archive table.
type VerbatimRecord struct {
	seq    int
	file   string
	line   int
	typ    RecordType
	fields map[Term]string
}

// NewVerbatimRecord creates a record. The fields map is copied, changes to
// it after the call are not visible in the record.
func NewVerbatimRecord(
	seq int, typ RecordType, file string, line int, fields map[Term]string,
) VerbatimRecord {
	return VerbatimRecord{
		seq:    seq,
		typ:    typ,
		file:   file,
		line:   line,
		fields: maps.Clone(fields),
	}
}

// Seq is the insertion order of the record in the whole archive.
func (r VerbatimRecord) Seq() int { return r.seq }

// File is the source table or file name.
func (r VerbatimRecord) File() string { return r.file }

// Line is the row number of the record in its file.
func (r VerbatimRecord) Line() int { return r.line }

// Type is the kind of the source table.
func (r VerbatimRecord) Type() RecordType { return r.typ }

// Key is a stable identifier of the record within its archive.
func (r VerbatimRecord) Key() string {
	return fmt.Sprintf("%s:%d", r.file, r.line)
}

// Ref returns a pointer to the source of the record.
func (r VerbatimRecord) Ref() VerbatimRef {
	return VerbatimRef{File: r.file, Line: r.line}
}

// Get returns a trimmed value of a term, or an empty string.
func (r VerbatimRecord) Get(t Term) string {
	return strings.TrimSpace(r.fields[t])
}

// Has is true when the term has a non-empty value.
func (r VerbatimRecord) Has(t Term) bool {
	return r.Get(t) != ""
}

// GetFirst returns the first non-empty value among the given terms.
func (r VerbatimRecord) GetFirst(terms ...Term) string {
	for _, t := range terms {
		if v := r.Get(t); v != "" {
			return v
		}
	}
	return ""
}

// Len returns the number of fields of the record.
func (r VerbatimRecord) Len() int {
	return len(r.fields)
}
