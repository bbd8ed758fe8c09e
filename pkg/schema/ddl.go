package schema

import (
	"fmt"
	"reflect"
	"strings"
)

// UsageKeySeq is the sequence of durable keys of names and usages.
const UsageKeySeq = "usage_key_seq"

// PartitionKey is the column all dataset tables are partitioned by.
const PartitionKey = "dataset_key"

// columnDefs returns column definitions of a row model from its tags.
func columnDefs(model any) []string {
	t := reflect.TypeOf(model)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	var res []string
	for i := range t.NumField() {
		field := t.Field(i)
		dbTag := field.Tag.Get("db")
		ddlTag := field.Tag.Get("ddl")

		if dbTag != "" && ddlTag != "" {
			res = append(res, fmt.Sprintf("    %s %s", dbTag, ddlTag))
		}
	}
	return res
}

// generateDDL creates a partitioned CREATE TABLE statement from struct
// tags. Constraints are appended after the columns.
func generateDDL(model any, tableName string, constraints ...string) string {
	columns := columnDefs(model)
	for _, v := range constraints {
		columns = append(columns, "    "+v)
	}

	ddl := fmt.Sprintf("CREATE TABLE %s (\n%s\n) PARTITION BY LIST (%s);",
		tableName,
		strings.Join(columns, ",\n"),
		PartitionKey,
	)

	return ddl
}

// StagingDDL creates a plain table that is filled during an import and
// then attached as the partition of a dataset. The CHECK constraint
// matches the partition bound, so attaching does not scan the table.
func StagingDDL(model any, tableName string, datasetKey int) string {
	columns := columnDefs(model)
	columns = append(columns,
		fmt.Sprintf("    CHECK (%s = %d)", PartitionKey, datasetKey))
	return fmt.Sprintf("CREATE TABLE %s (\n%s\n);",
		tableName, strings.Join(columns, ",\n"))
}

// Columns returns the column names of a row model in field order. They
// are used as COPY and SELECT column lists.
func Columns(model any) []string {
	t := reflect.TypeOf(model)
	if t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	var res []string
	for i := range t.NumField() {
		if tag := t.Field(i).Tag.Get("db"); tag != "" {
			res = append(res, tag)
		}
	}
	return res
}

// PartitionName returns the name of the partition of a table that holds
// the data of a dataset.
func PartitionName(table string, datasetKey int) string {
	return fmt.Sprintf("%s_%d", table, datasetKey)
}

// PartitionedModels returns models of all dataset-scoped tables.
func PartitionedModels() []DDLGenerator {
	return []DDLGenerator{
		ReferenceRow{},
		NameRow{},
		UsageRow{},
		VernacularRow{},
		DistributionRow{},
		MediaRow{},
		DescriptionRow{},
	}
}

// SequenceDDL creates the sequence of durable keys.
func SequenceDDL() string {
	return fmt.Sprintf("CREATE SEQUENCE IF NOT EXISTS %s", UsageKeySeq)
}

func (r ReferenceRow) TableDDL() string {
	return generateDDL(r, r.TableName(), "PRIMARY KEY (dataset_key, id)")
}

func (r ReferenceRow) IndexDDL() []string {
	return []string{}
}

func (r ReferenceRow) TableName() string {
	return "reference"
}

func (n NameRow) TableDDL() string {
	return generateDDL(n, n.TableName(), "PRIMARY KEY (dataset_key, id)")
}

func (n NameRow) IndexDDL() []string {
	return []string{
		"CREATE INDEX idx_name_key ON name (key);",
		"CREATE INDEX idx_name_canonical ON name (dataset_key, canonical);",
	}
}

func (n NameRow) TableName() string {
	return "name"
}

func (u UsageRow) TableDDL() string {
	return generateDDL(u, u.TableName(), "PRIMARY KEY (dataset_key, id)")
}

func (u UsageRow) IndexDDL() []string {
	return []string{
		"CREATE INDEX idx_name_usage_key ON name_usage (key);",
		"CREATE INDEX idx_name_usage_parent ON name_usage (dataset_key, parent_id);",
		"CREATE INDEX idx_name_usage_accepted ON name_usage (dataset_key, accepted_id);",
		"CREATE INDEX idx_name_usage_sector ON name_usage (dataset_key, sector_key);",
		"CREATE INDEX idx_name_usage_name ON name_usage (dataset_key, name_id);",
	}
}

func (u UsageRow) TableName() string {
	return "name_usage"
}

func (v VernacularRow) TableDDL() string {
	return generateDDL(v, v.TableName())
}

func (v VernacularRow) IndexDDL() []string {
	return []string{
		"CREATE INDEX idx_vernacular_name_usage ON vernacular_name (dataset_key, usage_id);",
	}
}

func (v VernacularRow) TableName() string {
	return "vernacular_name"
}

func (d DistributionRow) TableDDL() string {
	return generateDDL(d, d.TableName())
}

func (d DistributionRow) IndexDDL() []string {
	return []string{
		"CREATE INDEX idx_distribution_usage ON distribution (dataset_key, usage_id);",
	}
}

func (d DistributionRow) TableName() string {
	return "distribution"
}

func (m MediaRow) TableDDL() string {
	return generateDDL(m, m.TableName())
}

func (m MediaRow) IndexDDL() []string {
	return []string{
		"CREATE INDEX idx_media_usage ON media (dataset_key, usage_id);",
	}
}

func (m MediaRow) TableName() string {
	return "media"
}

func (d DescriptionRow) TableDDL() string {
	return generateDDL(d, d.TableName())
}

func (d DescriptionRow) IndexDDL() []string {
	return []string{
		"CREATE INDEX idx_description_usage ON description (dataset_key, usage_id);",
	}
}

func (d DescriptionRow) TableName() string {
	return "description"
}
