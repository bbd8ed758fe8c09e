package model

import (
	"math/bits"
	"strings"
)

// Issue is a data-quality flag. Issues are first-class output of
// interpretation and graph assembly, they never abort processing.
type Issue uint8

const (
	NotInterpreted Issue = iota
	IDNotUnique
	UnparsableName
	PartiallyParsableName
	ParsedNameDiffers
	RankInvalid
	NomStatusInvalid
	NomCodeInvalid
	TaxStatusInvalid
	ParentIDInvalid
	AcceptedIDInvalid
	AcceptedNameMissing
	BasionymIDInvalid
	ReferenceIDInvalid
	ParentCycle
	ChainedSynonym
	BasionymCycle
	SynonymParent
	UnlikelyYear
	UnparsableYear
	UppercaseEpithet
	MultiWordEpithet
	InconsistentName
	Homonym
	VernacularNameInvalid
	VernacularLanguageInvalid
	DistributionInvalid
	DistributionAreaInvalid
	DistributionGazetteerInvalid
	DistributionStatusInvalid
	URLInvalid
	MediaCreatedDateInvalid
	SectorReassigned
	TaxonIDInvalid
	NameVariant
	MissingName

	issueCount
)

var issueNames = [...]string{
	"NOT_INTERPRETED",
	"ID_NOT_UNIQUE",
	"UNPARSABLE_NAME",
	"PARTIALLY_PARSABLE_NAME",
	"PARSED_NAME_DIFFERS",
	"RANK_INVALID",
	"NOMENCLATURAL_STATUS_INVALID",
	"NOMENCLATURAL_CODE_INVALID",
	"TAXONOMIC_STATUS_INVALID",
	"PARENT_ID_INVALID",
	"ACCEPTED_ID_INVALID",
	"ACCEPTED_NAME_MISSING",
	"BASIONYM_ID_INVALID",
	"REFERENCE_ID_INVALID",
	"PARENT_CYCLE",
	"CHAINED_SYNOYM",
	"BASIONYM_CYCLE",
	"SYNONYM_PARENT",
	"UNLIKELY_YEAR",
	"UNPARSABLE_YEAR",
	"UPPERCASE_EPITHET",
	"MULTI_WORD_EPITHET",
	"INCONSISTENT_NAME",
	"HOMONYM",
	"VERNACULAR_NAME_INVALID",
	"VERNACULAR_LANGUAGE_INVALID",
	"DISTRIBUTION_INVALID",
	"DISTRIBUTION_AREA_INVALID",
	"DISTRIBUTION_GAZETEER_INVALID",
	"DISTRIBUTION_STATUS_INVALID",
	"URL_INVALID",
	"MEDIA_CREATED_DATE_INVALID",
	"SECTOR_REASSIGNED",
	"TAXON_ID_INVALID",
	"NAME_VARIANT",
	"MISSING_NAME",
}

var issueIndex = func() map[string]Issue {
	res := make(map[string]Issue, len(issueNames))
	for i, v := range issueNames {
		res[v] = Issue(i)
	}
	return res
}()

func (i Issue) String() string {
	if i >= issueCount {
		return "UNKNOWN_ISSUE"
	}
	return issueNames[i]
}

// IssueFromString parses the upper-case name of an issue.
func IssueFromString(s string) (Issue, bool) {
	res, ok := issueIndex[strings.ToUpper(strings.TrimSpace(s))]
	return res, ok
}

// IssueSet is a set of issues stored as a bitset. The zero value is an
// empty set, and sets are comparable with ==.
type IssueSet uint64

// NewIssueSet creates a set from the given issues.
func NewIssueSet(issues ...Issue) IssueSet {
	var res IssueSet
	for _, v := range issues {
		res = res.Add(v)
	}
	return res
}

// Add returns the set with the issue added.
func (s IssueSet) Add(i Issue) IssueSet {
	return s | 1<<i
}

// Remove returns the set without the issue.
func (s IssueSet) Remove(i Issue) IssueSet {
	return s &^ (1 << i)
}

// Merge returns the union of two sets.
func (s IssueSet) Merge(o IssueSet) IssueSet {
	return s | o
}

// Has checks if the issue belongs to the set.
func (s IssueSet) Has(i Issue) bool {
	return s&(1<<i) != 0
}

// Len returns the number of issues in the set.
func (s IssueSet) Len() int {
	return bits.OnesCount64(uint64(s))
}

// IsEmpty is true when there are no issues.
func (s IssueSet) IsEmpty() bool {
	return s == 0
}

// List returns issues in their declaration order.
func (s IssueSet) List() []Issue {
	var res []Issue
	for i := Issue(0); i < issueCount; i++ {
		if s.Has(i) {
			res = append(res, i)
		}
	}
	return res
}

// Strings returns names of the issues in their declaration order.
func (s IssueSet) Strings() []string {
	list := s.List()
	res := make([]string, len(list))
	for i, v := range list {
		res[i] = v.String()
	}
	return res
}

func (s IssueSet) String() string {
	return strings.Join(s.Strings(), ",")
}

// IssuesFromStrings converts persisted issue names back into a set.
// Unknown names are ignored.
func IssuesFromStrings(ss []string) IssueSet {
	var res IssueSet
	for _, v := range ss {
		if i, ok := IssueFromString(v); ok {
			res = res.Add(i)
		}
	}
	return res
}
