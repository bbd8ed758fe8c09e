package model

import "time"

// DatasetKind tells apart imported source datasets from managed
// catalogues that receive sectors.
type DatasetKind string

const (
	DatasetSource  DatasetKind = "source"
	DatasetManaged DatasetKind = "managed"
)

// Dataset is a registered source or catalogue. Each dataset owns one
// partition of names, usages and attachments.
type Dataset struct {
	Key   int
	Title string
	Kind  DatasetKind
	// Archive is a local path or URL of an SFGA archive.
	Archive string
	// Schedule is a cron specification for periodic reimports.
	Schedule   string
	ImportedAt time.Time
	UsageCount int
	NameCount  int
}
