// Package schema provides database schema models for gncat.
//
// Dataset-scoped tables (names, usages, references and attachments) are
// LIST-partitioned by dataset_key. Their rows are described by structs
// with `db` and `ddl` tags, DDL and COPY column lists are generated from
// those tags. Global tables (datasets, sectors, sector imports,
// decisions and the search index) are managed by GORM AutoMigrate.
package schema

import "time"

// DDLGenerator defines how Go models generate PostgreSQL DDL.
type DDLGenerator interface {
	// TableDDL returns the CREATE TABLE statement for this model.
	TableDDL() string

	// IndexDDL returns CREATE INDEX statements for this model.
	// Returns empty slice if no indexes needed.
	IndexDDL() []string

	// TableName returns the PostgreSQL table name for this model.
	TableName() string
}

// ReferenceRow is a bibliographic reference of a dataset.
type ReferenceRow struct {
	DatasetKey int    `db:"dataset_key" ddl:"INT NOT NULL"`
	ID         string `db:"id" ddl:"VARCHAR(255) NOT NULL"`
	Citation   string `db:"citation" ddl:"TEXT"`
	Author     string `db:"author" ddl:"TEXT"`
	Title      string `db:"title" ddl:"TEXT"`
	Year       int    `db:"year" ddl:"INT"`
	DOI        string `db:"doi" ddl:"VARCHAR(255)"`
	Link       string `db:"link" ddl:"TEXT"`
}

// NameRow is a scientific name of a dataset.
type NameRow struct {
	DatasetKey int `db:"dataset_key" ddl:"INT NOT NULL"`

	// Key is the durable key shared by a name and its first usage.
	Key int64  `db:"key" ddl:"BIGINT NOT NULL"`
	ID  string `db:"id" ddl:"VARCHAR(255) NOT NULL"`

	ScientificName string `db:"scientific_name" ddl:"VARCHAR(500) COLLATE \"C\" NOT NULL"`
	Authorship     string `db:"authorship" ddl:"VARCHAR(500)"`
	Rank           int    `db:"rank" ddl:"SMALLINT NOT NULL DEFAULT 0"`
	Code           int    `db:"code" ddl:"SMALLINT NOT NULL DEFAULT 0"`
	NomStatus      int    `db:"nom_status" ddl:"SMALLINT NOT NULL DEFAULT 0"`
	Type           int    `db:"type" ddl:"SMALLINT NOT NULL DEFAULT 0"`

	Uninomial            string `db:"uninomial" ddl:"VARCHAR(255)"`
	Genus                string `db:"genus" ddl:"VARCHAR(255)"`
	InfragenericEpithet  string `db:"infrageneric_epithet" ddl:"VARCHAR(255)"`
	SpecificEpithet      string `db:"specific_epithet" ddl:"VARCHAR(255)"`
	InfraspecificEpithet string `db:"infraspecific_epithet" ddl:"VARCHAR(255)"`

	// Canonical is the simple canonical form used for matching.
	Canonical string `db:"canonical" ddl:"VARCHAR(255) COLLATE \"C\""`
	Year      int    `db:"year" ddl:"INT"`

	BasionymID      string `db:"basionym_id" ddl:"VARCHAR(255)"`
	BasionymKey     int64  `db:"basionym_key" ddl:"BIGINT"`
	HomotypicNameID string `db:"homotypic_name_id" ddl:"VARCHAR(255)"`

	Link    string `db:"link" ddl:"TEXT"`
	Remarks string `db:"remarks" ddl:"TEXT"`

	// Issues is a bit set of data quality flags.
	Issues int64 `db:"issues" ddl:"BIGINT NOT NULL DEFAULT 0"`
}

// UsageRow is a taxon, synonym or bare name of a dataset.
type UsageRow struct {
	DatasetKey int    `db:"dataset_key" ddl:"INT NOT NULL"`
	Key        int64  `db:"key" ddl:"BIGINT NOT NULL"`
	ID         string `db:"id" ddl:"VARCHAR(255) NOT NULL"`
	NameID     string `db:"name_id" ddl:"VARCHAR(255) NOT NULL"`

	// Kind is 0 for bare names, 1 for taxa and 2 for synonyms.
	Kind   int `db:"kind" ddl:"SMALLINT NOT NULL"`
	Status int `db:"status" ddl:"SMALLINT NOT NULL"`

	ParentID    string `db:"parent_id" ddl:"VARCHAR(255)"`
	ParentKey   int64  `db:"parent_key" ddl:"BIGINT"`
	AcceptedID  string `db:"accepted_id" ddl:"VARCHAR(255)"`
	AcceptedKey int64  `db:"accepted_key" ddl:"BIGINT"`

	// SectorKey and SubjectID are set for usages copied by a sector.
	SectorKey int    `db:"sector_key" ddl:"INT NOT NULL DEFAULT 0"`
	SubjectID string `db:"subject_id" ddl:"VARCHAR(255)"`

	AccordingTo string `db:"according_to" ddl:"TEXT"`
	ReferenceID string `db:"reference_id" ddl:"VARCHAR(255)"`
	Remarks     string `db:"remarks" ddl:"TEXT"`
	Extinct     bool   `db:"extinct" ddl:"BOOLEAN NOT NULL DEFAULT FALSE"`

	Ordinal      int    `db:"ordinal" ddl:"INT NOT NULL DEFAULT 0"`
	VerbatimFile string `db:"verbatim_file" ddl:"VARCHAR(255)"`
	VerbatimLine int    `db:"verbatim_line" ddl:"INT"`
	Issues       int64  `db:"issues" ddl:"BIGINT NOT NULL DEFAULT 0"`
}

// VernacularRow is a common name attached to a usage.
type VernacularRow struct {
	DatasetKey  int    `db:"dataset_key" ddl:"INT NOT NULL"`
	UsageID     string `db:"usage_id" ddl:"VARCHAR(255) NOT NULL"`
	Name        string `db:"name" ddl:"VARCHAR(500) COLLATE \"C\" NOT NULL"`
	Language    string `db:"language" ddl:"VARCHAR(20)"`
	Country     string `db:"country" ddl:"VARCHAR(20)"`
	ReferenceID string `db:"reference_id" ddl:"VARCHAR(255)"`
	Issues      int64  `db:"issues" ddl:"BIGINT NOT NULL DEFAULT 0"`
}

// DistributionRow is an area of occurrence attached to a usage.
type DistributionRow struct {
	DatasetKey  int    `db:"dataset_key" ddl:"INT NOT NULL"`
	UsageID     string `db:"usage_id" ddl:"VARCHAR(255) NOT NULL"`
	Area        string `db:"area" ddl:"TEXT"`
	AreaID      string `db:"area_id" ddl:"VARCHAR(255)"`
	Gazetteer   int    `db:"gazetteer" ddl:"SMALLINT NOT NULL DEFAULT 0"`
	Status      int    `db:"status" ddl:"SMALLINT NOT NULL DEFAULT 0"`
	ReferenceID string `db:"reference_id" ddl:"VARCHAR(255)"`
	Issues      int64  `db:"issues" ddl:"BIGINT NOT NULL DEFAULT 0"`
}

// MediaRow is an image, sound or video attached to a usage.
type MediaRow struct {
	DatasetKey  int       `db:"dataset_key" ddl:"INT NOT NULL"`
	UsageID     string    `db:"usage_id" ddl:"VARCHAR(255) NOT NULL"`
	URL         string    `db:"url" ddl:"TEXT NOT NULL"`
	Type        string    `db:"type" ddl:"VARCHAR(50)"`
	Format      string    `db:"format" ddl:"VARCHAR(100)"`
	Title       string    `db:"title" ddl:"TEXT"`
	Created     time.Time `db:"created" ddl:"TIMESTAMP WITHOUT TIME ZONE"`
	Creator     string    `db:"creator" ddl:"TEXT"`
	License     string    `db:"license" ddl:"VARCHAR(255)"`
	Link        string    `db:"link" ddl:"TEXT"`
	ReferenceID string    `db:"reference_id" ddl:"VARCHAR(255)"`
	Issues      int64     `db:"issues" ddl:"BIGINT NOT NULL DEFAULT 0"`
}

// DescriptionRow is a free text description attached to a usage.
type DescriptionRow struct {
	DatasetKey  int    `db:"dataset_key" ddl:"INT NOT NULL"`
	UsageID     string `db:"usage_id" ddl:"VARCHAR(255) NOT NULL"`
	Description string `db:"description" ddl:"TEXT NOT NULL"`
	Format      string `db:"format" ddl:"VARCHAR(50)"`
	Language    string `db:"language" ddl:"VARCHAR(20)"`
	ReferenceID string `db:"reference_id" ddl:"VARCHAR(255)"`
}
