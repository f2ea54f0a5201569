package textract

import (
	"regexp"
	"strings"

	"github.com/adit-suresh/MedicalBot-cV2-sub000/internal/domain"
)

// fieldPatterns is an ordered chain of alternatives per field: the most
// label-anchored expressions first, loosening toward bare format
// matches. The first hit wins. All patterns run over the upper-cased,
// whitespace-collapsed line text.
var fieldPatterns = map[domain.DocumentType]map[string][]*regexp.Regexp{
	domain.DocTypePassport: {
		"passport_number": {
			regexp.MustCompile(`PASSPORT\s*(?:NO|NUMBER)\.?\s*:?\s*([A-Z]{1,2}\d{6,8})`),
			regexp.MustCompile(`\bPASSPORT\b[^A-Z0-9]{0,10}([A-Z]{1,2}\d{6,8})`),
		},
		"surname": {
			regexp.MustCompile(`SURNAME\s*:?\s*([A-Z][A-Z' -]+?)(?:\s+GIVEN|\s+NAME|\s*$)`),
		},
		"given_names": {
			regexp.MustCompile(`GIVEN\s*NAMES?(?:\s*\(S\))?\s*:?\s*([A-Z][A-Z' -]+?)(?:\s+NATIONALITY|\s+DATE|\s*$)`),
		},
		"nationality": {
			regexp.MustCompile(`NATIONALITY\s*:?\s*([A-Z]{3,})`),
		},
		"date_of_birth": {
			regexp.MustCompile(`DATE\s*OF\s*BIRTH\s*:?\s*(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`),
			regexp.MustCompile(`DATE\s*OF\s*BIRTH\s*:?\s*(\d{1,2}\s+[A-Z]{3}\s+\d{4})`),
		},
		"date_of_issue": {
			regexp.MustCompile(`DATE\s*OF\s*ISSUE\s*:?\s*(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`),
			regexp.MustCompile(`DATE\s*OF\s*ISSUE\s*:?\s*(\d{1,2}\s+[A-Z]{3}\s+\d{4})`),
		},
		"date_of_expiry": {
			regexp.MustCompile(`DATE\s*OF\s*EXPIR[YATION]*\s*:?\s*(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`),
			regexp.MustCompile(`DATE\s*OF\s*EXPIR[YATION]*\s*:?\s*(\d{1,2}\s+[A-Z]{3}\s+\d{4})`),
		},
		"gender": {
			regexp.MustCompile(`SEX\s*:?\s*(M|F|MALE|FEMALE)\b`),
		},
		"place_of_birth": {
			regexp.MustCompile(`PLACE\s*OF\s*BIRTH\s*:?\s*([A-Z][A-Z ,]+?)(?:\s+DATE|\s*$)`),
		},
	},
	domain.DocTypeEmiratesID: {
		"emirates_id": {
			regexp.MustCompile(`ID\s*NUMBER\s*:?\s*(784[-\s]?\d{4}[-\s]?\d{7}[-\s]?\d)`),
			regexp.MustCompile(`\b(784[-\s]?\d{4}[-\s]?\d{7}[-\s]?\d)\b`),
		},
		"name_en": {
			regexp.MustCompile(`NAME\s*:?\s*([A-Z][A-Z' -]+?)(?:\s+NATIONALITY|\s+DATE|\s*$)`),
		},
		"nationality": {
			regexp.MustCompile(`NATIONALITY\s*:?\s*([A-Z]{3,}(?:\s[A-Z]+)?)`),
		},
		"date_of_birth": {
			regexp.MustCompile(`DATE\s*OF\s*BIRTH\s*:?\s*(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`),
		},
		"expiry_date": {
			regexp.MustCompile(`EXPIRY\s*DATE\s*:?\s*(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`),
		},
		"gender": {
			regexp.MustCompile(`SEX\s*:?\s*(M|F|MALE|FEMALE)\b`),
		},
	},
	domain.DocTypeVisa: {
		"entry_permit_no": {
			regexp.MustCompile(`ENTRY\s*PERMIT\s*(?:NO)?\.?\s*:?\s*(\d{3}/\d{4}/\d{5,9})`),
			regexp.MustCompile(`PERMIT\s*NO\.?\s*:?\s*([\d/]{8,})`),
		},
		"unified_no": {
			regexp.MustCompile(`U\.?\s?I\.?\s?D\.?\s*NO\.?\s*:?\s*(\d{8,11})`),
			regexp.MustCompile(`UNIFIED\s*(?:NO|NUMBER)\.?\s*:?\s*(\d{8,11})`),
		},
		"visa_file_number": {
			regexp.MustCompile(`FILE\s*(?:NO)?\.?\s*:?\s*([12]0\d/\d{4}/\d{5,9})`),
			regexp.MustCompile(`\b([12]0\d/\d{4}/\d{5,9})\b`),
		},
		"full_name": {
			regexp.MustCompile(`FULL\s*NAME\s*:?\s*([A-Z][A-Z' -]+?)(?:\s+NATIONALITY|\s+PROFESSION|\s*$)`),
			regexp.MustCompile(`\bNAME\s*:?\s*([A-Z][A-Z' -]+?)(?:\s+NATIONALITY|\s*$)`),
		},
		"nationality": {
			regexp.MustCompile(`NATIONALITY\s*:?\s*([A-Z]{3,}(?:\s[A-Z]+)?)`),
		},
		"passport_number": {
			regexp.MustCompile(`PASSPORT\s*(?:NO|NUMBER)\.?\s*:?\s*([A-Z]{1,2}\d{6,8})`),
		},
		"date_of_birth": {
			regexp.MustCompile(`DATE\s*OF\s*BIRTH\s*:?\s*(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`),
		},
		"issue_date": {
			regexp.MustCompile(`ISSUE\s*DATE\s*:?\s*(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`),
		},
		"expiry_date": {
			regexp.MustCompile(`EXPIRY\s*DATE\s*:?\s*(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`),
		},
		"profession": {
			regexp.MustCompile(`PROFESSION\s*:?\s*([A-Z][A-Z ]+?)(?:\s+SPONSOR|\s*$)`),
		},
		"sponsor_name": {
			regexp.MustCompile(`SPONSOR\s*:?\s*([A-Z][A-Z0-9 .&-]+?)(?:\s+ISSUE|\s*$)`),
		},
	},
}

// applyPatternChains fills raw with the first match of each field's
// pattern chain, never overwriting a field form analysis already found.
func applyPatternChains(raw map[string]string, text string, docType domain.DocumentType) {
	patterns, ok := fieldPatterns[docType]
	if !ok {
		return
	}
	for field, chain := range patterns {
		if v, ok := raw[field]; ok && v != "" && v != domain.MissingValue {
			continue
		}
		for _, re := range chain {
			if m := re.FindStringSubmatch(text); m != nil {
				raw[field] = strings.TrimSpace(m[1])
				break
			}
		}
	}
}

var (
	loosePassportRe = regexp.MustCompile(`\b([A-Z]{1,2}\d{6,8})\b`)
	looseEIDRe      = regexp.MustCompile(`\b(784\d{12})\b`)
	looseUnifiedRe  = regexp.MustCompile(`\b(\d{8,11})\b`)
)

// applyLooseScans runs the last-resort bare-format scans for the
// identifiers a document type cannot do without. These only fire when
// both the form pass and the pattern chains came up empty.
func applyLooseScans(raw map[string]string, text string, docType domain.DocumentType) {
	missing := func(field string) bool {
		v, ok := raw[field]
		return !ok || v == "" || v == domain.MissingValue
	}

	switch docType {
	case domain.DocTypePassport:
		if missing("passport_number") {
			if m := loosePassportRe.FindStringSubmatch(text); m != nil {
				raw["passport_number"] = m[1]
			}
		}
	case domain.DocTypeEmiratesID:
		if missing("emirates_id") {
			if m := looseEIDRe.FindStringSubmatch(text); m != nil {
				raw["emirates_id"] = m[1]
			}
		}
	case domain.DocTypeVisa:
		if missing("unified_no") {
			// A bare 8-11 digit run with no slashes is the best remaining
			// candidate for the unified number.
			for _, m := range looseUnifiedRe.FindAllStringSubmatchIndex(text, -1) {
				start, end := m[2], m[3]
				if !adjacentToSlash(text, start, end) {
					raw["unified_no"] = text[start:end]
					break
				}
			}
		}
	}
}

// adjacentToSlash reports whether the digit run at [start,end) touches a
// slash, which would make it a fragment of a file or permit number.
func adjacentToSlash(text string, start, end int) bool {
	if start > 0 && text[start-1] == '/' {
		return true
	}
	return end < len(text) && text[end] == '/'
}
