package interpret

import (
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/gnames/gncat/pkg/model"
	"github.com/gnames/gnlib"
)

// UsageID returns the ID of the usage an extension record belongs to.
func UsageID(rec model.VerbatimRecord) string {
	return rec.GetFirst(model.TermTaxonID, model.TermID)
}

// Vernacular interprets a vernacular name record. The name is required.
func (it *Interpreter) Vernacular(
	rec model.VerbatimRecord,
) (model.VernacularName, bool) {
	res := model.VernacularName{
		Name:        gnlib.FixUtf8(rec.Get(model.TermName)),
		Country:     strings.ToUpper(rec.Get(model.TermCountry)),
		ReferenceID: rec.Get(model.TermReferenceID),
	}
	if res.Name == "" {
		return res, false
	}
	if lang := rec.Get(model.TermLanguage); lang != "" {
		if isLangCode(lang) {
			res.Language = strings.ToLower(lang)
		} else {
			res.Issues = res.Issues.Add(model.VernacularLanguageInvalid)
		}
	}
	return res, true
}

// isLangCode accepts ISO 639 alpha-2 and alpha-3 codes.
func isLangCode(s string) bool {
	if len(s) != 2 && len(s) != 3 {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// Distribution interprets a distribution record. A gazetteer prefix of an
// area ID wins over the gazetteer column, which wins over the dataset
// default. Free text areas use the text gazetteer.
func (it *Interpreter) Distribution(
	rec model.VerbatimRecord,
) (model.Distribution, bool) {
	res := model.Distribution{
		Area:        rec.Get(model.TermArea),
		ReferenceID: rec.Get(model.TermReferenceID),
	}

	areaID := rec.Get(model.TermAreaID)
	switch {
	case areaID != "":
		res.Gazetteer = it.settings.Gazetteer
		if g := rec.Get(model.TermGazetteer); g != "" {
			if gz, ok := model.GazetteerFromString(g); ok {
				res.Gazetteer = gz
			} else {
				res.Issues = res.Issues.Add(model.DistributionGazetteerInvalid)
			}
		}
		if prefix, id, ok := strings.Cut(areaID, ":"); ok {
			if gz, ok := model.GazetteerFromString(prefix); ok {
				res.Gazetteer = gz
				areaID = id
			}
		}
		if areaID == "" {
			res.Issues = res.Issues.Add(model.DistributionAreaInvalid)
			return res, false
		}
		res.AreaID = areaID
		if res.Gazetteer == model.GazetteerText && res.Area == "" {
			res.Area = areaID
			res.AreaID = ""
		}
	case res.Area != "":
		res.Gazetteer = model.GazetteerText
	default:
		return res, false
	}

	res.Status = model.DistNative
	if s := rec.Get(model.TermEstablishment); s != "" {
		st, ok := model.DistStatusFromString(s)
		if ok {
			res.Status = st
		} else {
			res.Issues = res.Issues.Add(model.DistributionStatusInvalid)
		}
	}
	return res, true
}

var dateLayouts = []string{
	time.RFC3339, "2006-01-02T15:04:05", "2006-01-02", "2006-01", "2006",
}

// Media interprets a media record. A valid absolute URL is required.
func (it *Interpreter) Media(rec model.VerbatimRecord) (model.Media, bool) {
	res := model.Media{
		Type:        strings.ToLower(rec.Get(model.TermType)),
		Format:      rec.Get(model.TermFormat),
		Title:       rec.Get(model.TermTitle),
		Creator:     rec.Get(model.TermCreator),
		License:     rec.Get(model.TermLicense),
		ReferenceID: rec.Get(model.TermReferenceID),
	}

	raw := rec.Get(model.TermURL)
	if raw == "" {
		return res, false
	}
	u, err := url.ParseRequestURI(raw)
	if err != nil || u.Host == "" {
		res.Issues = res.Issues.Add(model.URLInvalid)
		return res, false
	}
	res.URL = u.String()

	if link := rec.Get(model.TermLink); link != "" {
		if l, err := url.ParseRequestURI(link); err == nil && l.Host != "" {
			res.Link = l.String()
		} else {
			res.Issues = res.Issues.Add(model.URLInvalid)
		}
	}

	if c := rec.Get(model.TermCreated); c != "" {
		res.Created = parseDate(c)
		if res.Created.IsZero() {
			res.Issues = res.Issues.Add(model.MediaCreatedDateInvalid)
		}
	}
	return res, true
}

func parseDate(s string) time.Time {
	for _, l := range dateLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

// Description interprets a description record.
func (it *Interpreter) Description(
	rec model.VerbatimRecord,
) (model.Description, bool) {
	res := model.Description{
		Description: rec.Get(model.TermDescription),
		Format:      rec.Get(model.TermFormat),
		Language:    strings.ToLower(rec.Get(model.TermLanguage)),
		ReferenceID: rec.Get(model.TermReferenceID),
	}
	return res, res.Description != ""
}

// Reference interprets a reference record. The ID is required, a missing
// citation is assembled from author, title and year.
func (it *Interpreter) Reference(
	rec model.VerbatimRecord,
) (model.Reference, model.IssueSet, bool) {
	var issues model.IssueSet
	res := model.Reference{
		ID:       rec.Get(model.TermID),
		Citation: gnlib.FixUtf8(rec.Get(model.TermCitation)),
		Author:   rec.Get(model.TermAuthor),
		Title:    rec.Get(model.TermTitle),
		DOI:      rec.Get(model.TermDOI),
		Link:     rec.Get(model.TermLink),
	}
	if res.ID == "" {
		return res, issues, false
	}
	if y := rec.Get(model.TermIssued); y != "" {
		res.Year = it.year(y, &issues)
	}
	if res.Citation == "" {
		var parts []string
		for _, v := range []string{res.Author, res.Title} {
			if v != "" {
				parts = append(parts, v)
			}
		}
		if res.Year > 0 {
			parts = append(parts, strconv.Itoa(res.Year))
		}
		res.Citation = strings.Join(parts, ". ")
	}
	if res.Citation == "" && res.DOI == "" {
		return res, issues, false
	}
	return res, issues, true
}
