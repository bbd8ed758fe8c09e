package schema

import "time"

// Dataset is a registered source dataset or managed catalogue.
type Dataset struct {
	Key        int        `gorm:"primaryKey;autoIncrement:false"`
	Title      string     `gorm:"type:varchar(255);not null"`
	Kind       string     `gorm:"type:varchar(20);not null;default:source"`
	Archive    string     `gorm:"type:text"`
	Schedule   string     `gorm:"type:varchar(100)"`
	ImportedAt *time.Time `gorm:"type:timestamp"`
	UsageCount int        `gorm:"not null;default:0"`
	NameCount  int        `gorm:"not null;default:0"`
}

func (Dataset) TableName() string {
	return "datasets"
}

// Sector links a subject subtree of a source dataset to a target usage
// of a managed catalogue.
type Sector struct {
	Key               int    `gorm:"primaryKey;autoIncrement:false"`
	SubjectDatasetKey int    `gorm:"not null;index"`
	SubjectID         string `gorm:"type:varchar(255);not null"`
	TargetDatasetKey  int    `gorm:"not null;index:idx_sectors_target"`
	TargetID          string `gorm:"type:varchar(255);not null;index:idx_sectors_target"`
	Mode              string `gorm:"type:varchar(10);not null"`
	Note              string `gorm:"type:text"`
	Broken            bool   `gorm:"not null;default:false"`
	SyncAttempt       int    `gorm:"not null;default:0"`
	CreatedAt         time.Time
	ModifiedAt        time.Time `gorm:"autoUpdateTime"`
}

func (Sector) TableName() string {
	return "sectors"
}

// SectorImport is one attempt to synchronize or delete a sector.
type SectorImport struct {
	ID        int64  `gorm:"primaryKey"`
	SectorKey int    `gorm:"not null;uniqueIndex:idx_sector_imports_attempt"`
	Attempt   int    `gorm:"not null;uniqueIndex:idx_sector_imports_attempt"`
	RunID     string `gorm:"type:varchar(36)"`
	State     string `gorm:"type:varchar(20);not null"`

	// Counters are kept as JSON.
	Counters   []byte     `gorm:"type:jsonb"`
	Warnings   []string   `gorm:"type:jsonb;serializer:json"`

	// UsageIDs and Names describe the sector content after the attempt.
	UsageIDs   []string   `gorm:"type:jsonb;serializer:json"`
	Names      []string   `gorm:"type:jsonb;serializer:json"`
	Error      string     `gorm:"type:text"`
	StartedAt  *time.Time `gorm:"type:timestamp"`
	FinishedAt *time.Time `gorm:"type:timestamp"`
}

func (SectorImport) TableName() string {
	return "sector_imports"
}

// Decision is an editorial override of a usage of a source dataset used
// by MERGE sectors.
type Decision struct {
	DatasetKey int     `gorm:"primaryKey;autoIncrement:false"`
	SubjectID  string  `gorm:"primaryKey;type:varchar(255)"`
	Action     string  `gorm:"type:varchar(20);not null"`
	Name       *string `gorm:"type:varchar(500)"`
	Authorship *string `gorm:"type:varchar(500)"`
	Rank       *int
	Status     *int
}

func (Decision) TableName() string {
	return "decisions"
}

// UsageSearchIndex is a flat lookup table of usage labels.
type UsageSearchIndex struct {
	DatasetKey int    `gorm:"primaryKey;autoIncrement:false"`
	UsageID    string `gorm:"primaryKey;type:varchar(255)"`
	Label      string `gorm:"type:varchar(1000);not null;index"`
	Canonical  string `gorm:"type:varchar(255);index"`
	Rank       int    `gorm:"not null;default:0"`
	Status     int    `gorm:"not null;default:0"`
	SectorKey  int    `gorm:"not null;default:0"`
	UpdatedAt  time.Time
}

func (UsageSearchIndex) TableName() string {
	return "usage_search_index"
}
