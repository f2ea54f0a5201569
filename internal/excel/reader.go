// Package excel reads submission workbooks and populates the output
// template.
package excel

import (
	"bytes"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/adit-suresh/MedicalBot-cV2-sub000/internal/domain"
)

// headerSynonyms maps normalized spreadsheet headers onto template field
// names. Workbooks arrive from many brokers and no two label a column
// the same way.
var headerSynonyms = map[string]string{
	"passport_no":        "passport_no",
	"passport_number":    "passport_no",
	"passport":           "passport_no",
	"emirates_id":        "emirates_id",
	"emirates_id_no":     "emirates_id",
	"eid":                "emirates_id",
	"eid_no":             "emirates_id",
	"id_no":              "emirates_id",
	"unified_no":         "unified_no",
	"unified_number":     "unified_no",
	"uid":                "unified_no",
	"uid_no":             "unified_no",
	"visa_file_number":   "visa_file_number",
	"visa_file_no":       "visa_file_number",
	"file_no":            "visa_file_number",
	"first_name":         "first_name",
	"fname":              "first_name",
	"middle_name":        "middle_name",
	"last_name":          "last_name",
	"lname":              "last_name",
	"surname":            "last_name",
	"dob":                "dob",
	"date_of_birth":      "dob",
	"birth_date":         "dob",
	"gender":             "gender",
	"sex":                "gender",
	"nationality":        "nationality",
	"marital_status":     "marital_status",
	"mobile_no":          "mobile_no",
	"mobile":             "mobile_no",
	"mobile_number":      "mobile_no",
	"phone":              "mobile_no",
	"phone_no":           "mobile_no",
	"email":              "email",
	"email_id":           "email",
	"email_address":      "email",
	"effective_date":     "effective_date",
	"contract_name":      "contract_name",
	"category":           "category",
	"relation":           "relation",
	"principal_card_no":  "principal_card_no",
	"family_no":          "family_no",
	"staff_id":           "staff_id",
	"work_country":       "work_country",
	"work_emirate":       "work_emirate",
	"work_region":        "work_region",
	"residence_country":  "residence_country",
	"residence_emirate":  "residence_emirate",
	"residence_region":   "residence_region",
	"salary_band":        "salary_band",
	"salary":             "salary_band",
	"commission":         "commission",
	"visa_issuance_emirate": "visa_issuance_emirate",
	"member_type":           "member_type",
	"passport_expiry_date":  "passport_expiry_date",
	"passport_expiry":       "passport_expiry_date",
	"visa_expiry_date":      "visa_expiry_date",
	"visa_expiry":           "visa_expiry_date",
}

var headerPunctRe = regexp.MustCompile(`[.,:#()'/-]`)

// NormalizeHeader lowercases a header, strips punctuation, and joins
// words with underscores.
func NormalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = headerPunctRe.ReplaceAllString(h, " ")
	return strings.Join(strings.Fields(h), "_")
}

// mapHeader resolves a raw header to a template field name, or the
// normalized header itself when no synonym matches.
func mapHeader(h string) string {
	norm := NormalizeHeader(h)
	if field, ok := headerSynonyms[norm]; ok {
		return field
	}
	return norm
}

// blankCell reports whether a cell value carries no data. Spreadsheets
// exported from other tools routinely serialize empty cells as "nan" or
// "none".
func blankCell(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "" || v == "nan" || v == "none" || v == domain.MissingValue
}

// ReadRows parses the first sheet of a workbook into one FieldMap per
// data row. The first non-empty row is the header; blank cells land at
// the sentinel; fully empty rows are skipped.
func ReadRows(data []byte) ([]domain.FieldMap, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrWorkbookUnreadable, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", domain.ErrWorkbookUnreadable)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrWorkbookUnreadable, err)
	}

	headerIdx := -1
	var headers []string
	for i, row := range rows {
		if rowEmpty(row) {
			continue
		}
		headerIdx = i
		headers = make([]string, len(row))
		for j, h := range row {
			headers[j] = mapHeader(h)
		}
		break
	}
	if headerIdx < 0 {
		return nil, fmt.Errorf("%w: workbook is empty", domain.ErrWorkbookUnreadable)
	}

	var out []domain.FieldMap
	for _, row := range rows[headerIdx+1:] {
		if rowEmpty(row) {
			continue
		}
		fm := domain.FieldMap{}
		for j, h := range headers {
			if h == "" {
				continue
			}
			value := ""
			if j < len(row) {
				value = strings.TrimSpace(row[j])
			}
			if blankCell(value) {
				fm[h] = domain.MissingValue
			} else {
				fm[h] = value
			}
		}
		out = append(out, fm)
	}
	log.Printf("excel: read %d rows from sheet %s", len(out), sheets[0])
	return out, nil
}

func rowEmpty(row []string) bool {
	for _, c := range row {
		if !blankCell(c) {
			return false
		}
	}
	return true
}
