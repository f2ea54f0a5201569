package extractor

import (
	"encoding/json"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/adit-suresh/MedicalBot-cV2-sub000/internal/domain"
	"github.com/adit-suresh/MedicalBot-cV2-sub000/internal/normalize"
)

// replySchema accepts a flat JSON object of scalar values, the only
// reply shape the field prompts ask for. Nested structures mean the
// model ignored the prompt and the reply goes through the regex
// fallback instead.
var replySchema = jsonschema.MustCompileString("vision_reply.json", `{
	"type": "object",
	"additionalProperties": {"type": ["string", "number", "boolean", "null"]}
}`)

// dateFields are normalized to the canonical date format on every path
// out of a backend.
var dateFields = []string{
	"date_of_birth", "dob", "date_of_issue", "issue_date",
	"date_of_expiry", "expiry_date", "passport_expiry_date",
	"visa_expiry_date", "effective_date",
}

// replyFieldRe extracts "key": "value" shaped substrings when a vision
// reply is not valid JSON.
var replyFieldRe = regexp.MustCompile(`"([a-z_]+)"\s*:\s*"([^"]*)"`)

// ParseVisionReply turns a vision provider's text reply into a raw field
// map. It locates the outermost JSON object, validates the shape, and
// falls back to regex key/value scanning when the reply is not usable
// structured data.
func ParseVisionReply(provider, content string) map[string]string {
	jsonStr := content
	if start, end := strings.Index(content, "{"), strings.LastIndex(content, "}"); start >= 0 && end > start {
		jsonStr = content[start : end+1]
	}

	var generic interface{}
	if err := json.Unmarshal([]byte(jsonStr), &generic); err != nil {
		log.Printf("extractor: %s reply is not JSON, using regex fallback: %v", provider, err)
		return extractWithRegex(content)
	}
	if err := replySchema.Validate(generic); err != nil {
		log.Printf("extractor: %s reply failed shape validation, using regex fallback: %v", provider, err)
		return extractWithRegex(content)
	}

	obj, ok := generic.(map[string]interface{})
	if !ok {
		return extractWithRegex(content)
	}

	raw := make(map[string]string, len(obj))
	for k, v := range obj {
		switch t := v.(type) {
		case nil:
			raw[k] = domain.MissingValue
		case string:
			raw[k] = strings.TrimSpace(t)
		case bool:
			raw[k] = fmt.Sprintf("%t", t)
		case float64:
			raw[k] = strings.TrimSuffix(fmt.Sprintf("%.2f", t), ".00")
		default:
			raw[k] = fmt.Sprint(t)
		}
	}
	return raw
}

// extractWithRegex recovers "key": "value" pairs from an unstructured
// reply.
func extractWithRegex(content string) map[string]string {
	raw := map[string]string{}
	for _, m := range replyFieldRe.FindAllStringSubmatch(content, -1) {
		raw[m[1]] = strings.TrimSpace(m[2])
	}
	return raw
}

// Finalize maps raw backend output onto the canonical field set for the
// document type: every canonical field present, missing data at the
// sentinel, extra discovered fields preserved, and all numeric/date/ID
// fields normalized.
func Finalize(raw map[string]string, docType domain.DocumentType) domain.FieldMap {
	fm := domain.NewFieldMap(docType)
	for k, v := range raw {
		v = strings.TrimSpace(v)
		if v == "" {
			v = domain.MissingValue
		}
		fm[k] = v
	}

	for _, f := range dateFields {
		if fm.IsSet(f) {
			fm[f] = normalize.Date(fm[f], normalize.DateSlash)
		}
	}
	if fm.IsSet("emirates_id") {
		fm["emirates_id"] = normalize.EmiratesID(fm["emirates_id"])
	}
	if fm.IsSet("gender") {
		fm["gender"] = normalize.Gender(fm["gender"])
	}

	if docType == domain.DocTypeVisa {
		fixVisaNumbers(fm)
	}
	return fm
}

// visaFilePrefixes are the only valid leading digits of a visa file
// number.
var visaFilePrefixes = []string{"10", "20"}

// fixVisaNumbers applies the backend-level sanity rules for the two
// easily-confused visa identifiers. The reconciler applies the stricter
// cross-document pass later; this catches the cases a single backend
// can resolve on its own.
func fixVisaNumbers(fm domain.FieldMap) {
	visaFile := fm.Get("visa_file_number")
	if !looksLikeVisaFile(visaFile) {
		// A passport number mistakenly copied into the file slot.
		if fm.IsSet("visa_file_number") && fm.IsSet("passport_number") && visaFile == fm.Get("passport_number") {
			fm["visa_file_number"] = domain.MissingValue
			log.Printf("extractor: cleared visa_file_number, it matched passport_number")
		}
		// A plain "file" field that carries the real file number.
		if fm.IsSet("file") {
			digits := digitsOnly(fm.Get("file"))
			for _, prefix := range visaFilePrefixes {
				if strings.HasPrefix(digits, prefix) {
					fm["visa_file_number"] = fm.Get("file")
					log.Printf("extractor: using file field as visa_file_number")
					break
				}
			}
		}
	}

	// Swapped identifiers: the unified number must be separator-free.
	unified := fm.Get("unified_no")
	visaFile = fm.Get("visa_file_number")
	if fm.IsSet("unified_no") && fm.IsSet("visa_file_number") &&
		strings.Contains(unified, "/") && !strings.Contains(visaFile, "/") &&
		len(digitsOnly(visaFile)) >= 8 {
		fm["unified_no"], fm["visa_file_number"] = visaFile, unified
		log.Printf("extractor: swapped unified_no and visa_file_number")
	}
}

func looksLikeVisaFile(v string) bool {
	if !strings.Contains(v, "/") {
		return false
	}
	for _, prefix := range visaFilePrefixes {
		if strings.HasPrefix(v, prefix) {
			return true
		}
	}
	return false
}

var digitRe = regexp.MustCompile(`\d`)

func digitsOnly(s string) string {
	return strings.Join(digitRe.FindAllString(s, -1), "")
}
