package extractor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/adit-suresh/MedicalBot-cV2-sub000/internal/domain"
	"github.com/adit-suresh/MedicalBot-cV2-sub000/internal/port"
)

// identifierFields are merged by structural completeness rather than
// first-writer-wins when backends disagree.
var identifierFields = map[string]bool{
	"emirates_id":      true,
	"passport_number":  true,
	"entry_permit_no":  true,
	"unified_no":       true,
	"visa_file_number": true,
}

// Orchestrator drives the extraction backends for one document: the
// pattern-based primary first, then vision fallbacks whenever the
// primary result is insufficient, merging field maps as it goes.
type Orchestrator struct {
	primary       port.DocumentExtractor
	fallbacks     []port.DocumentExtractor
	fallbackNames []string
}

// NewOrchestrator creates an Orchestrator from a primary backend and an
// ordered list of vision fallbacks with their names.
func NewOrchestrator(primary port.DocumentExtractor, fallbacks []port.DocumentExtractor, names []string) *Orchestrator {
	return &Orchestrator{primary: primary, fallbacks: fallbacks, fallbackNames: names}
}

// ExtractBest returns the best field map obtainable for one document.
// It degrades to partial data rather than failing: only when every
// backend errors and nothing was extracted does it return an error, and
// then the most specific one seen.
func (o *Orchestrator) ExtractBest(ctx context.Context, input port.ExtractInput) (domain.FieldMap, error) {
	best, primaryErr := o.primary.Extract(ctx, input)
	if primaryErr == nil && !Insufficient(best, input.DocType) {
		return best, nil
	}
	if primaryErr != nil {
		log.Printf("extractor.Orchestrator: primary backend failed: %v", primaryErr)
		best = domain.NewFieldMap(input.DocType)
	} else {
		log.Printf("extractor.Orchestrator: primary result insufficient for %s, escalating", input.DocType)
	}

	var extractionErr, unavailableErr error
	if primaryErr != nil {
		if errors.Is(primaryErr, domain.ErrBackendUnavailable) {
			unavailableErr = primaryErr
		} else {
			extractionErr = primaryErr
		}
	}

	for i, backend := range o.fallbacks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out, err := backend.Extract(ctx, input)
		if err != nil {
			log.Printf("extractor.Orchestrator: %s failed: %v", o.fallbackNames[i], err)
			if errors.Is(err, domain.ErrBackendUnavailable) {
				if unavailableErr == nil {
					unavailableErr = err
				}
			} else {
				extractionErr = err
			}
			continue
		}
		best = MergeFieldMaps(best, out)
		if !Insufficient(best, input.DocType) {
			return best, nil
		}
	}

	// Partial data beats no data: a later reconciliation pass reports
	// what is still missing instead of aborting the submission.
	if len(best.MissingFields()) < len(best) {
		return best, nil
	}

	if extractionErr != nil {
		return nil, extractionErr
	}
	if unavailableErr != nil {
		return nil, unavailableErr
	}
	return nil, fmt.Errorf("no backend produced data for %s: %w", input.Filename, domain.ErrExtractionFailed)
}

// Insufficient reports whether more than half of the document type's
// critical fields are still at the sentinel.
func Insufficient(fm domain.FieldMap, docType domain.DocumentType) bool {
	critical := domain.CriticalFields(docType)
	if len(critical) == 0 {
		// Unknown types have no critical set; any data counts.
		return len(fm.MissingFields()) == len(fm)
	}
	missing := 0
	for _, f := range critical {
		if !fm.IsSet(f) {
			missing++
		}
	}
	return missing*2 > len(critical)
}

// MergeFieldMaps folds a secondary backend's fields into the primary's
// map: fill empty fields outright; for identifier and date fields prefer
// whichever value is structurally more complete; otherwise the primary
// value stands.
func MergeFieldMaps(primary, secondary domain.FieldMap) domain.FieldMap {
	merged := primary.Clone()
	for field, value := range secondary {
		if value == "" || value == domain.MissingValue {
			continue
		}
		if !merged.IsSet(field) {
			merged[field] = value
			continue
		}
		if identifierFields[field] || strings.Contains(field, "date") {
			if moreComplete(value, merged[field]) {
				merged[field] = value
			}
		}
	}
	return merged
}

// moreComplete reports whether candidate is structurally more complete
// than current: longer, or carrying format punctuation the other lacks.
func moreComplete(candidate, current string) bool {
	if len(candidate) > len(current) {
		return true
	}
	return strings.ContainsAny(candidate, "-/") && !strings.ContainsAny(current, "-/")
}
