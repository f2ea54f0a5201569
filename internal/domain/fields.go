package domain

import "sort"

// MissingValue is the sentinel written into every field that has no real
// data. Every FieldMap produced anywhere in the pipeline carries every
// canonical field as a key; consumers test "is this field filled" with a
// single equality check against this value.
const MissingValue = "."

// FieldMap maps canonical field names to extracted string values.
type FieldMap map[string]string

// passportFields, emiratesIDFields, visaFields are the canonical field
// sets each extraction backend must honour for the corresponding type.
var passportFields = []string{
	"passport_number", "surname", "given_names", "nationality",
	"date_of_birth", "place_of_birth", "gender", "date_of_issue",
	"date_of_expiry",
}

var emiratesIDFields = []string{
	"emirates_id", "name_en", "name_ar", "nationality", "gender",
	"date_of_birth", "expiry_date",
}

var visaFields = []string{
	"entry_permit_no", "unified_no", "visa_file_number", "full_name",
	"nationality", "passport_number", "date_of_birth", "gender",
	"profession", "issue_date", "expiry_date", "sponsor_name",
}

// TemplateFields is the canonical field set of a reconciled record,
// matching the destination template's columns.
var TemplateFields = []string{
	"contract_name", "first_name", "middle_name", "last_name",
	"effective_date", "dob", "gender", "marital_status", "category",
	"relation", "principal_card_no", "family_no", "staff_id",
	"nationality", "emirates_id", "unified_no", "passport_no",
	"passport_expiry_date", "visa_expiry_date",
	"work_country", "work_emirate", "work_region",
	"residence_country", "residence_emirate", "residence_region",
	"email", "mobile_no", "salary_band", "commission",
	"visa_issuance_emirate", "visa_file_number", "member_type",
}

// CanonicalFields returns the expected field names for a document type.
// Unknown types have no canonical set.
func CanonicalFields(t DocumentType) []string {
	switch t {
	case DocTypePassport:
		return passportFields
	case DocTypeEmiratesID:
		return emiratesIDFields
	case DocTypeVisa:
		return visaFields
	case DocTypeExcel, DocTypeUnknown:
		return nil
	default:
		return nil
	}
}

// CriticalFields returns the fields whose absence marks an extraction
// result as insufficient for a document type.
func CriticalFields(t DocumentType) []string {
	switch t {
	case DocTypePassport:
		return []string{"passport_number", "surname", "given_names"}
	case DocTypeEmiratesID:
		return []string{"emirates_id", "name_en"}
	case DocTypeVisa:
		return []string{"entry_permit_no", "full_name"}
	case DocTypeExcel, DocTypeUnknown:
		return nil
	default:
		return nil
	}
}

// NewFieldMap returns a FieldMap with every canonical field for the given
// type present and set to the missing-value sentinel.
func NewFieldMap(t DocumentType) FieldMap {
	fields := CanonicalFields(t)
	fm := make(FieldMap, len(fields))
	for _, f := range fields {
		fm[f] = MissingValue
	}
	return fm
}

// NewTemplateFieldMap returns a FieldMap seeded with the template field
// set, all at the sentinel.
func NewTemplateFieldMap() FieldMap {
	fm := make(FieldMap, len(TemplateFields))
	for _, f := range TemplateFields {
		fm[f] = MissingValue
	}
	return fm
}

// IsSet reports whether a field holds real data.
func (fm FieldMap) IsSet(field string) bool {
	v, ok := fm[field]
	return ok && v != "" && v != MissingValue
}

// Get returns the field value, or the sentinel when absent or empty.
func (fm FieldMap) Get(field string) string {
	v, ok := fm[field]
	if !ok || v == "" {
		return MissingValue
	}
	return v
}

// SetIfMissing writes value only when the field is currently unset.
func (fm FieldMap) SetIfMissing(field, value string) {
	if value == "" || value == MissingValue {
		return
	}
	if !fm.IsSet(field) {
		fm[field] = value
	}
}

// MissingFields returns the sorted list of fields still at the sentinel.
func (fm FieldMap) MissingFields() []string {
	var missing []string
	for field, v := range fm {
		if v == "" || v == MissingValue {
			missing = append(missing, field)
		}
	}
	sort.Strings(missing)
	return missing
}

// Clone returns a shallow copy of the FieldMap.
func (fm FieldMap) Clone() FieldMap {
	out := make(FieldMap, len(fm))
	for k, v := range fm {
		out[k] = v
	}
	return out
}

// ClassificationResult is the outcome of classifying one document.
type ClassificationResult struct {
	Type       DocumentType `json:"type"`
	Confidence float64      `json:"confidence"`
}

// MatchCandidate links one document to its best-scoring spreadsheet row.
// Transient: produced and consumed within one submission.
type MatchCandidate struct {
	DocumentRef string   `json:"document_ref"`
	RowIndex    int      `json:"row_index"`
	Score       int      `json:"score"`
	Reasons     []string `json:"reasons"`
}

// ReconciledRecord is the final merged record for one subject, plus the
// fields that could not be filled from any source.
type ReconciledRecord struct {
	Fields        FieldMap `json:"fields"`
	MissingFields []string `json:"missing_fields"`
}
