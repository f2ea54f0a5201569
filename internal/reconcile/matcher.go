package reconcile

import (
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/adit-suresh/MedicalBot-cV2-sub000/internal/domain"
)

// Match scoring: either hard identifier alone clears the threshold, a
// name alone never does.
const (
	scorePassport  = 100
	scoreEmiratesID = 100
	scoreNameMax   = 50
	matchThreshold = 50
)

// Document is one extracted document entering the matching pass.
type Document struct {
	Ref    string
	Type   domain.DocumentType
	Fields domain.FieldMap
}

// MatchDocuments pairs every document with its best-scoring spreadsheet
// row. Documents whose best score is below the threshold are returned
// unmatched. Ties resolve to the lowest row index for determinism.
func MatchDocuments(docs []Document, rows []domain.FieldMap) (matches []domain.MatchCandidate, unmatched []string) {
	for _, doc := range docs {
		best := domain.MatchCandidate{DocumentRef: doc.Ref, RowIndex: -1}
		for i, row := range rows {
			score, reasons := scorePair(doc, row)
			if score > best.Score {
				best = domain.MatchCandidate{
					DocumentRef: doc.Ref,
					RowIndex:    i,
					Score:       score,
					Reasons:     reasons,
				}
			}
		}
		if best.Score >= matchThreshold {
			matches = append(matches, best)
			log.Printf("reconcile: matched %s to row %d (score %d: %s)",
				doc.Ref, best.RowIndex, best.Score, strings.Join(best.Reasons, ", "))
		} else {
			unmatched = append(unmatched, doc.Ref)
			log.Printf("reconcile: no row match for %s (best score %d)", doc.Ref, best.Score)
		}
	}
	return matches, unmatched
}

// scorePair scores one document against one row.
func scorePair(doc Document, row domain.FieldMap) (int, []string) {
	score := 0
	var reasons []string

	docPassport := strings.ToUpper(strings.TrimSpace(passportOf(doc)))
	rowPassport := strings.ToUpper(strings.TrimSpace(row.Get("passport_no")))
	if docPassport != "" && docPassport != domain.MissingValue && docPassport == rowPassport {
		score += scorePassport
		reasons = append(reasons, "passport number")
	}

	docEID := digitsOnly(doc.Fields.Get("emirates_id"))
	rowEID := digitsOnly(row.Get("emirates_id"))
	if len(docEID) >= 15 && docEID == rowEID {
		score += scoreEmiratesID
		reasons = append(reasons, "emirates id")
	}

	if nameScore := nameOverlapScore(documentName(doc), rowName(row)); nameScore > 0 {
		score += nameScore
		reasons = append(reasons, fmt.Sprintf("name overlap %d", nameScore))
	}
	return score, reasons
}

func passportOf(doc Document) string {
	return doc.Fields.Get("passport_number")
}

// documentName returns the best available full name for a document.
func documentName(doc Document) string {
	switch doc.Type {
	case domain.DocTypePassport:
		return strings.TrimSpace(stripSentinel(doc.Fields.Get("given_names")) + " " + stripSentinel(doc.Fields.Get("surname")))
	case domain.DocTypeEmiratesID:
		return stripSentinel(doc.Fields.Get("name_en"))
	case domain.DocTypeVisa:
		return stripSentinel(doc.Fields.Get("full_name"))
	case domain.DocTypeExcel, domain.DocTypeUnknown:
		return ""
	default:
		return ""
	}
}

func rowName(row domain.FieldMap) string {
	parts := []string{
		stripSentinel(row.Get("first_name")),
		stripSentinel(row.Get("middle_name")),
		stripSentinel(row.Get("last_name")),
	}
	return strings.TrimSpace(strings.Join(parts, " "))
}

func stripSentinel(v string) string {
	if v == domain.MissingValue {
		return ""
	}
	return v
}

// nameOverlapScore scores shared name tokens proportionally, capped at
// scoreNameMax. Both names contribute their token count so a subset
// match on a long name does not score as a full match.
func nameOverlapScore(a, b string) int {
	at, bt := nameTokens(a), nameTokens(b)
	if len(at) == 0 || len(bt) == 0 {
		return 0
	}
	set := make(map[string]bool, len(at))
	for _, t := range at {
		set[t] = true
	}
	shared := 0
	for _, t := range bt {
		if set[t] {
			shared++
		}
	}
	if shared == 0 {
		return 0
	}
	larger := len(at)
	if len(bt) > larger {
		larger = len(bt)
	}
	return scoreNameMax * shared / larger
}

func nameTokens(name string) []string {
	fields := strings.Fields(strings.ToUpper(name))
	sort.Strings(fields)
	out := fields[:0]
	var prev string
	for _, f := range fields {
		if f != prev {
			out = append(out, f)
		}
		prev = f
	}
	return out
}
