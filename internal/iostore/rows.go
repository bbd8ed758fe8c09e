package iostore

import (
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/gnames/gncat/pkg/model"
	"github.com/gnames/gncat/pkg/schema"
	"github.com/gnames/gnlib/ent/nomcode"
)

// values returns field values of a row in the order of schema.Columns.
func values(row any) []any {
	v := reflect.Indirect(reflect.ValueOf(row))
	t := v.Type()
	res := make([]any, 0, t.NumField())
	for i := range t.NumField() {
		if t.Field(i).Tag.Get("db") != "" {
			res = append(res, v.Field(i).Interface())
		}
	}
	return res
}

// qualified prefixes columns with a table alias.
func qualified(alias string, cols []string) string {
	res := make([]string, len(cols))
	for i, v := range cols {
		res[i] = alias + "." + v
	}
	return strings.Join(res, ", ")
}

func placeholders(from, n int) string {
	res := make([]string, n)
	for i := range n {
		res[i] = fmt.Sprintf("$%d", from+i)
	}
	return strings.Join(res, ", ")
}

func insertSQL(table string, cols []string) string {
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(cols, ", "), placeholders(1, len(cols)))
}

// updatableColumns are all columns except the primary key and the durable
// key, which never change.
func updatableColumns(cols []string) []string {
	return slices.DeleteFunc(slices.Clone(cols), func(c string) bool {
		return c == schema.PartitionKey || c == "id" || c == "key"
	})
}

// upsertSQL inserts a row or updates every column except its keys. It
// returns the durable key of the stored row.
func upsertSQL(table string, cols []string) string {
	set := make([]string, 0, len(cols))
	for _, v := range updatableColumns(cols) {
		set = append(set, fmt.Sprintf("%s = EXCLUDED.%s", v, v))
	}
	return fmt.Sprintf(
		"%s ON CONFLICT (%s, id) DO UPDATE SET %s RETURNING key",
		insertSQL(table, cols), schema.PartitionKey, strings.Join(set, ", "),
	)
}

func toReferenceRow(ds int, r *model.Reference) schema.ReferenceRow {
	return schema.ReferenceRow{
		DatasetKey: ds,
		ID:         r.ID,
		Citation:   r.Citation,
		Author:     r.Author,
		Title:      r.Title,
		Year:       r.Year,
		DOI:        r.DOI,
		Link:       r.Link,
	}
}

func toNameRow(ds int, n *model.Name) schema.NameRow {
	return schema.NameRow{
		DatasetKey:           ds,
		Key:                  n.Key,
		ID:                   n.ID,
		ScientificName:       n.ScientificName,
		Authorship:           n.Authorship,
		Rank:                 int(n.Rank),
		Code:                 int(n.Code),
		NomStatus:            int(n.NomStatus),
		Type:                 int(n.Type),
		Uninomial:            n.Uninomial,
		Genus:                n.Genus,
		InfragenericEpithet:  n.InfragenericEpithet,
		SpecificEpithet:      n.SpecificEpithet,
		InfraspecificEpithet: n.InfraspecificEpithet,
		Canonical:            n.Canonical,
		Year:                 n.Year,
		BasionymID:           n.BasionymID,
		BasionymKey:          n.BasionymKey,
		HomotypicNameID:      n.HomotypicNameID,
		Link:                 n.Link,
		Remarks:              n.Remarks,
		Issues:               int64(n.Issues),
	}
}

func fromNameRow(r *schema.NameRow) model.Name {
	return model.Name{
		Key:                  r.Key,
		ID:                   r.ID,
		DatasetKey:           r.DatasetKey,
		ScientificName:       r.ScientificName,
		Authorship:           r.Authorship,
		Rank:                 model.Rank(r.Rank),
		Code:                 nomcode.Code(r.Code),
		NomStatus:            model.NomStatus(r.NomStatus),
		Type:                 model.NameType(r.Type),
		Uninomial:            r.Uninomial,
		Genus:                r.Genus,
		InfragenericEpithet:  r.InfragenericEpithet,
		SpecificEpithet:      r.SpecificEpithet,
		InfraspecificEpithet: r.InfraspecificEpithet,
		Canonical:            r.Canonical,
		Year:                 r.Year,
		BasionymID:           r.BasionymID,
		BasionymKey:          r.BasionymKey,
		HomotypicNameID:      r.HomotypicNameID,
		Link:                 r.Link,
		Remarks:              r.Remarks,
		Issues:               model.IssueSet(r.Issues),
	}
}

func toUsageRow(ds int, u *model.Usage) schema.UsageRow {
	return schema.UsageRow{
		DatasetKey:   ds,
		Key:          u.Key,
		ID:           u.ID,
		NameID:       u.Name.ID,
		Kind:         int(u.Kind),
		Status:       int(u.Status),
		ParentID:     u.ParentID,
		ParentKey:    u.ParentKey,
		AcceptedID:   u.AcceptedID,
		AcceptedKey:  u.AcceptedKey,
		SectorKey:    u.SectorKey,
		SubjectID:    u.SubjectID,
		AccordingTo:  u.AccordingTo,
		ReferenceID:  u.ReferenceID,
		Remarks:      u.Remarks,
		Extinct:      u.Extinct,
		Ordinal:      u.Ordinal,
		VerbatimFile: u.Verbatim.File,
		VerbatimLine: u.Verbatim.Line,
		Issues:       int64(u.Issues),
	}
}

func fromRows(ur *schema.UsageRow, nr *schema.NameRow) *model.Usage {
	return &model.Usage{
		Key:         ur.Key,
		ID:          ur.ID,
		DatasetKey:  ur.DatasetKey,
		Kind:        model.Kind(ur.Kind),
		Status:      model.TaxStatus(ur.Status),
		Name:        fromNameRow(nr),
		ParentID:    ur.ParentID,
		ParentKey:   ur.ParentKey,
		AcceptedID:  ur.AcceptedID,
		AcceptedKey: ur.AcceptedKey,
		SectorKey:   ur.SectorKey,
		SubjectID:   ur.SubjectID,
		AccordingTo: ur.AccordingTo,
		ReferenceID: ur.ReferenceID,
		Remarks:     ur.Remarks,
		Extinct:     ur.Extinct,
		Ordinal:     ur.Ordinal,
		Verbatim:    model.VerbatimRef{File: ur.VerbatimFile, Line: ur.VerbatimLine},
		Issues:      model.IssueSet(ur.Issues),
	}
}

// attachmentRows groups rows of the attachment tables of one or more
// usages.
type attachmentRows struct {
	vernaculars   [][]any
	distributions [][]any
	media         [][]any
	descriptions  [][]any
}

func (r *attachmentRows) add(ds int, usageID string, att *model.Attachments) {
	for _, v := range att.Vernaculars {
		r.vernaculars = append(r.vernaculars, values(schema.VernacularRow{
			DatasetKey:  ds,
			UsageID:     usageID,
			Name:        v.Name,
			Language:    v.Language,
			Country:     v.Country,
			ReferenceID: v.ReferenceID,
			Issues:      int64(v.Issues),
		}))
	}
	for _, v := range att.Distributions {
		r.distributions = append(r.distributions, values(schema.DistributionRow{
			DatasetKey:  ds,
			UsageID:     usageID,
			Area:        v.Area,
			AreaID:      v.AreaID,
			Gazetteer:   int(v.Gazetteer),
			Status:      int(v.Status),
			ReferenceID: v.ReferenceID,
			Issues:      int64(v.Issues),
		}))
	}
	for _, v := range att.Media {
		r.media = append(r.media, values(schema.MediaRow{
			DatasetKey:  ds,
			UsageID:     usageID,
			URL:         v.URL,
			Type:        v.Type,
			Format:      v.Format,
			Title:       v.Title,
			Created:     v.Created,
			Creator:     v.Creator,
			License:     v.License,
			Link:        v.Link,
			ReferenceID: v.ReferenceID,
			Issues:      int64(v.Issues),
		}))
	}
	for _, v := range att.Descriptions {
		r.descriptions = append(r.descriptions, values(schema.DescriptionRow{
			DatasetKey:  ds,
			UsageID:     usageID,
			Description: v.Description,
			Format:      v.Format,
			Language:    v.Language,
			ReferenceID: v.ReferenceID,
		}))
	}
}

// tables pairs attachment tables with their rows.
func (r *attachmentRows) tables() []tableRows {
	return []tableRows{
		{schema.VernacularRow{}, r.vernaculars},
		{schema.DistributionRow{}, r.distributions},
		{schema.MediaRow{}, r.media},
		{schema.DescriptionRow{}, r.descriptions},
	}
}

type tableRows struct {
	model schema.DDLGenerator
	rows  [][]any
}

func fromVernacularRow(r schema.VernacularRow) model.VernacularName {
	return model.VernacularName{
		Name:        r.Name,
		Language:    r.Language,
		Country:     r.Country,
		ReferenceID: r.ReferenceID,
		Issues:      model.IssueSet(r.Issues),
	}
}

func fromDistributionRow(r schema.DistributionRow) model.Distribution {
	return model.Distribution{
		Area:        r.Area,
		AreaID:      r.AreaID,
		Gazetteer:   model.Gazetteer(r.Gazetteer),
		Status:      model.DistStatus(r.Status),
		ReferenceID: r.ReferenceID,
		Issues:      model.IssueSet(r.Issues),
	}
}

func fromMediaRow(r schema.MediaRow) model.Media {
	return model.Media{
		URL:         r.URL,
		Type:        r.Type,
		Format:      r.Format,
		Title:       r.Title,
		Created:     r.Created,
		Creator:     r.Creator,
		License:     r.License,
		Link:        r.Link,
		ReferenceID: r.ReferenceID,
		Issues:      model.IssueSet(r.Issues),
	}
}

func fromDescriptionRow(r schema.DescriptionRow) model.Description {
	return model.Description{
		Description: r.Description,
		Format:      r.Format,
		Language:    r.Language,
		ReferenceID: r.ReferenceID,
	}
}
