package model

import "time"

// Reference is a bibliographic citation. References are dataset-scoped.
type Reference struct {
	ID       string
	Citation string
	Author   string
	Title    string
	Year     int
	DOI      string
	Link     string
}

// VernacularName is a common name of a taxon.
type VernacularName struct {
	Name string
	// Language is an ISO 639 alpha-2 or alpha-3 code.
	Language    string
	Country     string
	ReferenceID string
	Issues      IssueSet
}

// Distribution is an area where a taxon occurs.
type Distribution struct {
	Area        string
	AreaID      string
	Gazetteer   Gazetteer
	Status      DistStatus
	ReferenceID string
	Issues      IssueSet
}

// Media is an image, sound or video of a taxon.
type Media struct {
	URL         string
	Type        string
	Format      string
	Title       string
	Created     time.Time
	Creator     string
	License     string
	Link        string
	ReferenceID string
	Issues      IssueSet
}

// Description is a free text description of a taxon.
type Description struct {
	Description string
	Format      string
	Language    string
	ReferenceID string
}

// Attachments are the extension records of a usage.
type Attachments struct {
	Vernaculars   []VernacularName
	Distributions []Distribution
	Media         []Media
	Descriptions  []Description
}

// UsageAttachments binds attachments to a persisted usage.
type UsageAttachments struct {
	UsageKey int64
	UsageID  string
	Attachments
}

// Len is the total number of attachments.
func (a *Attachments) Len() int {
	return len(a.Vernaculars) + len(a.Distributions) + len(a.Media) +
		len(a.Descriptions)
}

// IsEmpty is true when there are no attachments.
func (a *Attachments) IsEmpty() bool {
	return a.Len() == 0
}

// Clone returns a deep copy.
func (a Attachments) Clone() Attachments {
	return Attachments{
		Vernaculars:   append([]VernacularName(nil), a.Vernaculars...),
		Distributions: append([]Distribution(nil), a.Distributions...),
		Media:         append([]Media(nil), a.Media...),
		Descriptions:  append([]Description(nil), a.Descriptions...),
	}
}

// Equal compares attachments as multisets, the order of records does not
// matter.
func (a *Attachments) Equal(o *Attachments) bool {
	return sameBag(a.Vernaculars, o.Vernaculars) &&
		sameBag(a.Distributions, o.Distributions) &&
		sameMedia(a.Media, o.Media) &&
		sameBag(a.Descriptions, o.Descriptions)
}

// Union adds records of o that are not present yet. It returns the number
// of added records.
func (a *Attachments) Union(o *Attachments) int {
	var res, n int
	a.Vernaculars, n = union(a.Vernaculars, o.Vernaculars)
	res += n
	a.Distributions, n = union(a.Distributions, o.Distributions)
	res += n
	a.Media, n = unionMedia(a.Media, o.Media)
	res += n
	a.Descriptions, n = union(a.Descriptions, o.Descriptions)
	res += n
	return res
}

func sameBag[T comparable](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	counts := make(map[T]int, len(a))
	for _, v := range a {
		counts[v]++
	}
	for _, v := range b {
		counts[v]--
		if counts[v] < 0 {
			return false
		}
	}
	return true
}

func union[T comparable](a, b []T) ([]T, int) {
	seen := make(map[T]struct{}, len(a))
	for _, v := range a {
		seen[v] = struct{}{}
	}
	var added int
	for _, v := range b {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		a = append(a, v)
		added++
	}
	return a, added
}

// mediaKey makes Media comparable, time.Time holds a location pointer.
type mediaKey struct {
	m       Media
	created int64
}

func toMediaKeys(ms []Media) []mediaKey {
	res := make([]mediaKey, len(ms))
	for i, m := range ms {
		k := mediaKey{m: m}
		if !m.Created.IsZero() {
			k.created = m.Created.UnixNano()
		}
		k.m.Created = time.Time{}
		res[i] = k
	}
	return res
}

func sameMedia(a, b []Media) bool {
	return sameBag(toMediaKeys(a), toMediaKeys(b))
}

func unionMedia(a, b []Media) ([]Media, int) {
	seen := make(map[mediaKey]struct{}, len(a))
	for _, k := range toMediaKeys(a) {
		seen[k] = struct{}{}
	}
	var added int
	for i, k := range toMediaKeys(b) {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		a = append(a, b[i])
		added++
	}
	return a, added
}
