// Package classifier assigns a document type to OCR text using weighted
// pattern scoring, with filename matching as a fallback.
package classifier

import (
	"log"
	"regexp"
	"strings"

	"github.com/adit-suresh/MedicalBot-cV2-sub000/internal/domain"
)

// contentThreshold is the minimum normalized score required to accept a
// content-based classification before falling back to the filename.
const contentThreshold = 0.5

type weightedPattern struct {
	re     *regexp.Regexp
	weight float64
}

// typePatterns holds the salient vocabulary of each document type.
// Weights favour the strongly discriminating patterns (an Emirates ID
// number group, "entry permit") over shared vocabulary like nationality.
var typePatterns = map[domain.DocumentType][]weightedPattern{
	domain.DocTypePassport: {
		{regexp.MustCompile(`passport\s+no`), 3},
		{regexp.MustCompile(`passport\s+number`), 3},
		{regexp.MustCompile(`surname.{0,50}given names`), 2},
		{regexp.MustCompile(`nationality.{0,20}date of birth`), 1},
		{regexp.MustCompile(`place of issue.{0,50}authority`), 1},
		{regexp.MustCompile(`p<[a-z]{3}`), 2},
	},
	domain.DocTypeEmiratesID: {
		{regexp.MustCompile(`united arab emirates.{0,50}id card`), 3},
		{regexp.MustCompile(`id number.{0,20}\d{3}-\d{4}-\d{7}-\d`), 3},
		{regexp.MustCompile(`\d{3}-\d{4}-\d{7}-\d`), 2},
		{regexp.MustCompile(`resident identity card`), 1},
	},
	domain.DocTypeVisa: {
		{regexp.MustCompile(`entry permit`), 3},
		{regexp.MustCompile(`residence visa`), 3},
		{regexp.MustCompile(`visa\s+file`), 2},
		{regexp.MustCompile(`sponsor\s+name`), 2},
		{regexp.MustCompile(`permit no`), 1},
		{regexp.MustCompile(`u\.?i\.?d\.?\s+no`), 1},
	},
}

// Classify scores the OCR text against each document type's pattern set
// and returns the best match. Below the confidence threshold it falls
// back to filename substrings; worst case it returns unknown with
// confidence 0. It never fails.
func Classify(text, filename string) domain.ClassificationResult {
	if strings.TrimSpace(text) == "" {
		log.Printf("classifier: no text provided, classifying %q by filename", filename)
		return byFilename(filename)
	}

	normalized := strings.ToLower(strings.ReplaceAll(text, "\n", " "))

	best := domain.ClassificationResult{Type: domain.DocTypeUnknown}
	// Iterate in fixed priority order so score ties resolve
	// deterministically: visa > emirates_id > passport.
	for _, docType := range domain.ClassifiableTypes {
		patterns := typePatterns[docType]
		var matched, total float64
		for _, p := range patterns {
			total += p.weight
			if p.re.MatchString(normalized) {
				matched += p.weight
			}
		}
		if total == 0 {
			continue
		}
		score := matched / total
		if score > best.Confidence {
			best = domain.ClassificationResult{Type: docType, Confidence: score}
		}
	}

	if best.Confidence >= contentThreshold {
		return best
	}

	log.Printf("classifier: content score %.2f below threshold, trying filename %q", best.Confidence, filename)
	if fb := byFilename(filename); fb.Type != domain.DocTypeUnknown {
		return fb
	}
	return domain.ClassificationResult{Type: domain.DocTypeUnknown, Confidence: best.Confidence}
}

// byFilename classifies from type-indicating filename substrings.
func byFilename(filename string) domain.ClassificationResult {
	name := strings.ToLower(filename)
	if name == "" {
		return domain.ClassificationResult{Type: domain.DocTypeUnknown}
	}

	switch {
	case strings.HasSuffix(name, ".xlsx"), strings.HasSuffix(name, ".xls"):
		return domain.ClassificationResult{Type: domain.DocTypeExcel, Confidence: 1}
	case strings.Contains(name, "passport"):
		return domain.ClassificationResult{Type: domain.DocTypePassport, Confidence: 1}
	case strings.Contains(name, "emirates"), strings.Contains(name, "eid"), strings.Contains(name, "id card"):
		return domain.ClassificationResult{Type: domain.DocTypeEmiratesID, Confidence: 1}
	case strings.Contains(name, "visa"), strings.Contains(name, "permit"):
		return domain.ClassificationResult{Type: domain.DocTypeVisa, Confidence: 1}
	default:
		return domain.ClassificationResult{Type: domain.DocTypeUnknown}
	}
}
