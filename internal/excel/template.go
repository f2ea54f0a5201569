package excel

import (
	"bytes"
	"fmt"
	"log"

	"github.com/xuri/excelize/v2"

	"github.com/adit-suresh/MedicalBot-cV2-sub000/internal/domain"
)

// templateHeaderVariations extends the shared synonym table with the
// display headers the destination template itself uses.
var templateHeaderVariations = map[string]string{
	"contract_name":         "contract_name",
	"first_name":            "first_name",
	"second_name":           "middle_name",
	"middle_name":           "middle_name",
	"last_name":             "last_name",
	"effective_date":        "effective_date",
	"dob":                   "dob",
	"gender":                "gender",
	"marital_status":        "marital_status",
	"category":              "category",
	"relation":              "relation",
	"principal_card_no":     "principal_card_no",
	"family_no":             "family_no",
	"staff_id":              "staff_id",
	"nationality":           "nationality",
	"emirates_id_no":        "emirates_id",
	"emirates_id":           "emirates_id",
	"uid_no":                "unified_no",
	"unified_no":            "unified_no",
	"passport_no":           "passport_no",
	"passport_expiry_date":  "passport_expiry_date",
	"visa_expiry_date":      "visa_expiry_date",
	"work_country":          "work_country",
	"work_emirate":          "work_emirate",
	"work_region":           "work_region",
	"residence_country":     "residence_country",
	"residence_emirate":     "residence_emirate",
	"residence_region":      "residence_region",
	"email":                 "email",
	"email_id":              "email",
	"mobile_no":             "mobile_no",
	"salary_band":           "salary_band",
	"commission":            "commission",
	"visa_issuance_emirate": "visa_issuance_emirate",
	"visa_file_number":      "visa_file_number",
	"member_type":           "member_type",
}

// mapTemplateHeader resolves a template display header to its field
// name, or "" when the column is not recognised.
func mapTemplateHeader(h string) string {
	norm := NormalizeHeader(h)
	if field, ok := templateHeaderVariations[norm]; ok {
		return field
	}
	if field, ok := headerSynonyms[norm]; ok {
		return field
	}
	return ""
}

// Populate writes one row per reconciled record into the template
// workbook, keyed by its header row, and returns the filled workbook.
// Sentinel values are written through unchanged so a reviewer can see
// exactly which cells no source could fill.
func Populate(templateData []byte, records []domain.ReconciledRecord) ([]byte, error) {
	f, err := excelize.OpenReader(bytes.NewReader(templateData))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTemplateInvalid, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: template has no sheets", domain.ErrTemplateInvalid)
	}
	sheet := sheets[0]

	rows, err := f.GetRows(sheet)
	if err != nil || len(rows) == 0 {
		return nil, fmt.Errorf("%w: template has no header row", domain.ErrTemplateInvalid)
	}

	// Column index -> field name for every recognised header.
	columns := map[int]string{}
	for j, h := range rows[0] {
		if field := mapTemplateHeader(h); field != "" {
			columns[j] = field
		}
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: no recognisable template headers", domain.ErrTemplateInvalid)
	}

	for i, rec := range records {
		rowNum := i + 2
		for j, field := range columns {
			cell, err := excelize.CoordinatesToCellName(j+1, rowNum)
			if err != nil {
				return nil, fmt.Errorf("resolving cell for row %d: %w", rowNum, err)
			}
			if err := f.SetCellValue(sheet, cell, rec.Fields.Get(field)); err != nil {
				return nil, fmt.Errorf("writing cell %s: %w", cell, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serializing workbook: %w", err)
	}
	log.Printf("excel: populated template with %d records across %d columns", len(records), len(columns))
	return buf.Bytes(), nil
}
