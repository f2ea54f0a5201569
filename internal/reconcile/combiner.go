package reconcile

import (
	"strings"

	"github.com/adit-suresh/MedicalBot-cV2-sub000/internal/domain"
	"github.com/adit-suresh/MedicalBot-cV2-sub000/internal/normalize"
)

// docFieldMappings translate each document type's canonical fields into
// template fields.
var docFieldMappings = map[domain.DocumentType]map[string]string{
	domain.DocTypePassport: {
		"passport_number": "passport_no",
		"nationality":     "nationality",
		"date_of_birth":   "dob",
		"gender":          "gender",
		"date_of_expiry":  "passport_expiry_date",
	},
	domain.DocTypeEmiratesID: {
		"emirates_id":   "emirates_id",
		"nationality":   "nationality",
		"date_of_birth": "dob",
		"gender":        "gender",
	},
	domain.DocTypeVisa: {
		"unified_no":       "unified_no",
		"visa_file_number": "visa_file_number",
		"passport_number":  "passport_no",
		"nationality":      "nationality",
		"date_of_birth":    "dob",
		"gender":           "gender",
		"expiry_date":      "visa_expiry_date",
	},
}

// overrideFields are template fields where a document value replaces the
// row value outright: documents are the authoritative source for
// identity numbers and nationality, the spreadsheet merely transcribes
// them.
var overrideFields = map[string]bool{
	"nationality":      true,
	"emirates_id":      true,
	"passport_no":      true,
	"unified_no":       true,
	"visa_file_number": true,
}

var templateDateFields = []string{
	"dob", "effective_date", "passport_expiry_date", "visa_expiry_date",
}

// Reconcile merges one spreadsheet row with its matched documents into a
// template-shaped record. Row values land first; document values fill
// what the row left empty, except for the override fields where the
// document wins. Name fields come from the most authoritative document
// name available, or from splitting the row's own name cells.
func Reconcile(row domain.FieldMap, docs []Document) domain.ReconciledRecord {
	rec := domain.NewTemplateFieldMap()

	for field, value := range row {
		rec.SetIfMissing(field, value)
	}

	for _, doc := range docs {
		mapping, ok := docFieldMappings[doc.Type]
		if !ok {
			continue
		}
		for docField, templateField := range mapping {
			if !doc.Fields.IsSet(docField) {
				continue
			}
			if overrideFields[templateField] {
				rec[templateField] = doc.Fields.Get(docField)
			} else {
				rec.SetIfMissing(templateField, doc.Fields.Get(docField))
			}
		}
	}

	applyNames(rec, docs)
	normalizeRecord(rec)

	return domain.ReconciledRecord{
		Fields:        rec,
		MissingFields: rec.MissingFields(),
	}
}

// applyNames fills first/middle/last name. The row is authoritative: a
// document name is split in only when the row left both first and last
// name empty. Passports are the preferred document source, then the
// Emirates ID, then the visa. A multi-token first_name cell with an
// empty last_name is split in place.
func applyNames(rec domain.FieldMap, docs []Document) {
	if !rec.IsSet("first_name") && !rec.IsSet("last_name") {
		if name := bestDocumentName(docs); name != "" {
			first, middle, last := SplitFullName(name)
			rec["first_name"] = orMissing(first)
			rec["middle_name"] = orMissing(middle)
			rec["last_name"] = orMissing(last)
			return
		}
	}

	if rec.IsSet("first_name") && !rec.IsSet("last_name") {
		tokens := strings.Fields(rec.Get("first_name"))
		if len(tokens) > 1 {
			first, middle, last := SplitFullName(rec.Get("first_name"))
			rec["first_name"] = orMissing(first)
			if middle != "" {
				rec["middle_name"] = orMissing(middle)
			}
			rec["last_name"] = orMissing(last)
		}
	}
}

func bestDocumentName(docs []Document) string {
	priority := []domain.DocumentType{
		domain.DocTypePassport, domain.DocTypeEmiratesID, domain.DocTypeVisa,
	}
	for _, t := range priority {
		for _, doc := range docs {
			if doc.Type != t {
				continue
			}
			if name := documentName(doc); name != "" {
				return name
			}
		}
	}
	return ""
}

// SplitFullName splits a full name into first, middle, and last parts:
// two tokens map to first and last; three or more map to first, second
// as middle, and the rest joined as last.
func SplitFullName(name string) (first, middle, last string) {
	tokens := strings.Fields(strings.TrimSpace(name))
	switch len(tokens) {
	case 0:
		return "", "", ""
	case 1:
		return tokens[0], "", ""
	case 2:
		return tokens[0], "", tokens[1]
	default:
		return tokens[0], tokens[1], strings.Join(tokens[2:], " ")
	}
}

func orMissing(v string) string {
	if v == "" {
		return domain.MissingValue
	}
	return v
}

// normalizeRecord applies the field normalizers to the merged record so
// every source's formatting lands in the template's conventions.
func normalizeRecord(rec domain.FieldMap) {
	for _, f := range templateDateFields {
		if rec.IsSet(f) {
			rec[f] = normalize.Date(rec[f], normalize.DateSlash)
		}
	}
	if rec.IsSet("emirates_id") {
		rec["emirates_id"] = normalize.EmiratesID(rec["emirates_id"])
	}
	if rec.IsSet("gender") {
		rec["gender"] = normalize.Gender(rec["gender"])
	}
	if rec.IsSet("mobile_no") {
		rec["mobile_no"] = normalize.Phone(rec["mobile_no"])
	}
}
