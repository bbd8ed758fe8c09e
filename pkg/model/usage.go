package model

// VerbatimRef points to the source record a usage was interpreted from.
type VerbatimRef struct {
	File string
	Line int
}

// Usage is a placement of a Name in a classification. It is a tagged
// variant: Kind decides which of the references is meaningful. A taxon
// uses ParentID, a synonym uses AcceptedID and a bare name has no
// placement at all.
type Usage struct {
	Key        int64
	ID         string
	DatasetKey int
	Kind       Kind
	Status     TaxStatus
	Name       Name

	// ParentID is used only by taxa.
	ParentID  string
	ParentKey int64

	// AcceptedID is used only by synonyms.
	AcceptedID  string
	AcceptedKey int64

	// SectorKey and SubjectID tag usages created by a sector sync. They are
	// zero for usages that came from an import.
	SectorKey int
	SubjectID string

	AccordingTo string
	ReferenceID string
	Remarks     string
	Extinct     bool

	// Ordinal keeps the insertion order of the record in its archive.
	Ordinal  int
	Verbatim VerbatimRef
	Issues   IssueSet
}

// IsTaxon is true for accepted and provisionally accepted usages.
func (u *Usage) IsTaxon() bool {
	return u.Kind == TaxonKind
}

// IsSynonym is true for usages that point to an accepted taxon.
func (u *Usage) IsSynonym() bool {
	return u.Kind == SynonymKind
}

// IsBareName is true for names without a placement.
func (u *Usage) IsBareName() bool {
	return u.Kind == BareNameKind
}

// Label returns the name with authorship of the usage.
func (u *Usage) Label() string {
	return u.Name.Label()
}

// ToBareName drops the placement of a usage keeping its name and issues.
func (u *Usage) ToBareName() {
	u.Kind = BareNameKind
	u.Status = StatusBareName
	u.ParentID = ""
	u.ParentKey = 0
	u.AcceptedID = ""
	u.AcceptedKey = 0
}

// SameContent compares two usages ignoring durable keys, insertion order
// and the verbatim source location. It is used to decide if a copied usage
// has to be updated.
func (u *Usage) SameContent(o *Usage) bool {
	a, b := u.withoutKeys(), o.withoutKeys()
	return a == b
}

func (u Usage) withoutKeys() Usage {
	u.Key = 0
	u.ParentKey = 0
	u.AcceptedKey = 0
	u.Ordinal = 0
	u.Verbatim = VerbatimRef{}
	u.Name = u.Name.withoutKeys()
	return u
}
