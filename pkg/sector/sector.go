// Package sector synchronizes sectors: subtrees of source datasets that
// are copied into curated catalogues. A sync is a persisted state machine
// that copies the subject subtree, diffs it against the previous copy and
// applies inserts, updates and deletes.
package sector

import (
	"slices"
	"strings"
	"time"

	"github.com/gnames/gncat/pkg/model"
)

// Mode determines how a subject subtree is placed into the target.
type Mode int

const (
	// Attach copies the subject root with its subtree under the target
	// root.
	Attach Mode = iota
	// Union merges copied usages into existing usages with the same name
	// under the same parent.
	Union
	// Merge applies editorial decisions before copying each usage.
	Merge
)

var modeNames = []string{"attach", "union", "merge"}

// ModeFromString converts a case-insensitive mode name.
func ModeFromString(s string) (Mode, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	idx := slices.Index(modeNames, s)
	if idx < 0 {
		return Attach, false
	}
	return Mode(idx), true
}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return modeNames[0]
	}
	return modeNames[m]
}

// Sector links a subject subtree of a source dataset to a target usage of
// a catalogue. The synchronizer only changes Broken and SyncAttempt.
type Sector struct {
	Key               int
	SubjectDatasetKey int
	SubjectID         string
	TargetDatasetKey  int
	TargetID          string
	Mode              Mode
	Note              string

	// Broken is set when the subject or target root cannot be found.
	Broken      bool
	SyncAttempt int
	CreatedAt   time.Time
	ModifiedAt  time.Time
}

// Datasets returns the keys of the datasets involved in a sync.
func (s *Sector) Datasets() []int {
	if s.SubjectDatasetKey == s.TargetDatasetKey {
		return []int{s.TargetDatasetKey}
	}
	return []int{s.SubjectDatasetKey, s.TargetDatasetKey}
}

// Counts keeps numbers of records of each kind.
type Counts struct {
	Taxa          int `json:"taxa"`
	Synonyms      int `json:"synonyms"`
	Names         int `json:"names"`
	Vernaculars   int `json:"vernaculars"`
	Distributions int `json:"distributions"`
	Media         int `json:"media"`
	Descriptions  int `json:"descriptions"`
}

// IsZero is true when nothing was counted.
func (c Counts) IsZero() bool {
	return c == Counts{}
}

// Total returns the number of usages.
func (c Counts) Total() int {
	return c.Taxa + c.Synonyms
}

func (c *Counts) addUsage(u *model.Usage, att *model.Attachments) {
	switch u.Kind {
	case model.TaxonKind:
		c.Taxa++
	case model.SynonymKind:
		c.Synonyms++
	}
	c.Names++
	c.addAttachments(att)
}

func (c *Counts) addAttachments(att *model.Attachments) {
	if att == nil {
		return
	}
	c.Vernaculars += len(att.Vernaculars)
	c.Distributions += len(att.Distributions)
	c.Media += len(att.Media)
	c.Descriptions += len(att.Descriptions)
}

// Counters summarize the work of one sync attempt.
type Counters struct {
	Copied  Counts `json:"copied"`
	Updated Counts `json:"updated"`
	Deleted Counts `json:"deleted"`

	// Merged counts usages unioned into existing target usages.
	Merged int `json:"merged"`
	// Skipped counts usages excluded by decisions.
	Skipped int `json:"skipped"`
	// Reassigned counts usages released from the sector instead of
	// being deleted.
	Reassigned  int `json:"reassigned"`
	IndexErrors int `json:"indexErrors"`
}

// IsZero is true when a sync changed nothing.
func (c Counters) IsZero() bool {
	return c.Copied.IsZero() && c.Updated.IsZero() && c.Deleted.IsZero() &&
		c.Merged == 0 && c.Reassigned == 0
}

// SectorImport records one sync attempt of a sector.
type SectorImport struct {
	ID        int64    `json:"id"`
	SectorKey int      `json:"sectorKey"`
	Attempt   int      `json:"attempt"`
	RunID     string   `json:"runId"`
	State     State    `json:"state"`
	Counters  Counters `json:"counters"`
	Warnings  []string `json:"warnings,omitempty"`

	// UsageIDs are the target usage IDs that belong to the sector after
	// the attempt.
	UsageIDs []string `json:"-"`
	// Names are labels of the copied names, sorted.
	Names []string `json:"-"`

	Error      string    `json:"error,omitempty"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt,omitzero"`
}

// Clone returns a deep copy of the import.
func (si *SectorImport) Clone() *SectorImport {
	res := *si
	res.Warnings = slices.Clone(si.Warnings)
	res.UsageIDs = slices.Clone(si.UsageIDs)
	res.Names = slices.Clone(si.Names)
	return &res
}

// Duration returns how long the attempt took, or has been taking.
func (si *SectorImport) Duration() time.Duration {
	if si.StartedAt.IsZero() {
		return 0
	}
	if si.FinishedAt.IsZero() {
		return time.Since(si.StartedAt)
	}
	return si.FinishedAt.Sub(si.StartedAt)
}
