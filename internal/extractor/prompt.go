package extractor

import "github.com/adit-suresh/MedicalBot-cV2-sub000/internal/domain"

// SystemPrompt is the shared system message sent to every vision
// provider.
const SystemPrompt = "You are a document data extraction assistant. Extract the requested information accurately from the document image."

// BuildFieldPrompt returns the type-specific field-list prompt sent to a
// vision provider. Every prompt demands a flat JSON object keyed by the
// canonical field names, with "." for anything missing.
func BuildFieldPrompt(docType domain.DocumentType) string {
	switch docType {
	case domain.DocTypePassport:
		return `Extract the following information from this passport document:
- passport_number: The passport number (very important)
- surname: The last name/surname (may be labeled as "Surname")
- given_names: The first and middle names (may be labeled as "Given Name(s)")
- nationality: The person's nationality
- date_of_birth: Birth date in DD/MM/YYYY format
- place_of_birth: Place of birth
- gender: Either "Male" or "Female" (may be labeled as "Sex")
- date_of_issue: Issue date in DD/MM/YYYY format
- date_of_expiry: Expiry date in DD/MM/YYYY format

Pay special attention to accurately extracting the passport number, the
surname and given names, the nationality, the date of birth, and the
gender (report as "Male" or "Female", not as "M" or "F").

Return ONLY a clean JSON object with these exact field names. Use "." for any missing fields.`

	case domain.DocTypeEmiratesID:
		return `Extract the following information from this Emirates ID card:
- emirates_id: The ID number in format 784-XXXX-XXXXXXX-X
- name_en: The full name in English
- name_ar: The full name in Arabic if present
- nationality: The person's nationality
- gender: Either "Male" or "Female"
- date_of_birth: Birth date in DD/MM/YYYY format
- expiry_date: Expiry date in DD/MM/YYYY format

Return ONLY a clean JSON object with these exact field names. Use "." for any missing fields.`

	case domain.DocTypeVisa:
		return `Extract the following information from this visa/residence permit:
- entry_permit_no: The entry permit number
- unified_no: The unified number (may be labeled as "U.I.D No") (typically a 10-digit number without slashes)
- file: The file number (may be labeled as "File" or "File No.")
- visa_file_number: The visa file number (should start with 10 or 20, often in format XXX/YYYY/ZZZZZZZ with slashes)
- full_name: The person's full name
- nationality: The person's nationality
- passport_number: The passport number
- date_of_birth: Birth date in DD/MM/YYYY format
- gender: Either "Male" or "Female" (not M or F)
- profession: The profession/occupation listed
- issue_date: Issue date in DD/MM/YYYY format
- expiry_date: Expiry date in DD/MM/YYYY format
- sponsor_name: The sponsor's name (employer)

Pay special attention to accurately extracting the file number (labeled
"File" or "File No."), the unified number (a digit string WITHOUT
slashes), the full name, and the passport number.

Visa file number should typically start with '10' or '20'. If you see a
"File" field with a value starting with these digits, extract it as
visa_file_number.

Return ONLY a clean JSON object with these exact field names. Use "." for any missing fields.`

	case domain.DocTypeExcel, domain.DocTypeUnknown:
		fallthrough
	default:
		return `Extract all important information from this identity document.
Pay special attention to:
- Personal identification numbers (passport number, ID number, etc.)
- Full name
- Dates (birth, issue, expiry)
- Nationality
- Gender

Return ONLY a clean JSON object with extracted fields. Use "." for any missing fields.`
	}
}
