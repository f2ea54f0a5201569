package reconcile_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adit-suresh/MedicalBot-cV2-sub000/internal/domain"
	"github.com/adit-suresh/MedicalBot-cV2-sub000/internal/reconcile"
)

func passportDoc(ref string, overrides map[string]string) reconcile.Document {
	fm := domain.NewFieldMap(domain.DocTypePassport)
	for k, v := range overrides {
		fm[k] = v
	}
	return reconcile.Document{Ref: ref, Type: domain.DocTypePassport, Fields: fm}
}

func TestMatchByPassportNumber(t *testing.T) {
	docs := []reconcile.Document{
		passportDoc("p1.jpg", map[string]string{"passport_number": "A1234567"}),
	}
	rows := []domain.FieldMap{
		{"passport_no": "B7654321", "first_name": "JANE"},
		{"passport_no": "A1234567", "first_name": "JOHN"},
	}

	matches, unmatched := reconcile.MatchDocuments(docs, rows)
	require.Len(t, matches, 1)
	assert.Empty(t, unmatched)
	assert.Equal(t, 1, matches[0].RowIndex)
	assert.GreaterOrEqual(t, matches[0].Score, 100)
	assert.Contains(t, matches[0].Reasons, "passport number")
}

func TestMatchPassportCaseInsensitive(t *testing.T) {
	docs := []reconcile.Document{
		passportDoc("p1.jpg", map[string]string{"passport_number": "a1234567"}),
	}
	rows := []domain.FieldMap{{"passport_no": "A1234567"}}

	matches, _ := reconcile.MatchDocuments(docs, rows)
	require.Len(t, matches, 1)
}

func TestMatchByEmiratesIDIgnoresFormatting(t *testing.T) {
	fm := domain.NewFieldMap(domain.DocTypeEmiratesID)
	fm["emirates_id"] = "784-1990-1234567-1"
	docs := []reconcile.Document{
		{Ref: "eid.jpg", Type: domain.DocTypeEmiratesID, Fields: fm},
	}
	rows := []domain.FieldMap{{"emirates_id": "784199012345671"}}

	matches, unmatched := reconcile.MatchDocuments(docs, rows)
	require.Len(t, matches, 1)
	assert.Empty(t, unmatched)
	assert.Contains(t, matches[0].Reasons, "emirates id")
}

func TestMatchByFullNameOverlap(t *testing.T) {
	docs := []reconcile.Document{
		passportDoc("p1.jpg", map[string]string{
			"surname":     "SMITH",
			"given_names": "JOHN",
		}),
	}
	rows := []domain.FieldMap{
		{"first_name": "JOHN", "last_name": "SMITH"},
		{"first_name": "JANE", "last_name": "DOE"},
	}

	matches, unmatched := reconcile.MatchDocuments(docs, rows)
	require.Len(t, matches, 1)
	assert.Empty(t, unmatched)
	assert.Equal(t, 0, matches[0].RowIndex)
	assert.Equal(t, 50, matches[0].Score)
}

func TestMatchPartialNameBelowThreshold(t *testing.T) {
	docs := []reconcile.Document{
		passportDoc("p1.jpg", map[string]string{
			"surname":     "SMITH",
			"given_names": "JOHN ROBERT ALEXANDER",
		}),
	}
	// Only one of four tokens shared: 50*1/4 = 12, below the threshold.
	rows := []domain.FieldMap{{"first_name": "JOHN"}}

	matches, unmatched := reconcile.MatchDocuments(docs, rows)
	assert.Empty(t, matches)
	assert.Equal(t, []string{"p1.jpg"}, unmatched)
}

func TestMatchUnmatchedDocument(t *testing.T) {
	docs := []reconcile.Document{
		passportDoc("p1.jpg", map[string]string{"passport_number": "A1234567"}),
	}
	rows := []domain.FieldMap{{"passport_no": "Z9999999", "first_name": "OTHER"}}

	matches, unmatched := reconcile.MatchDocuments(docs, rows)
	assert.Empty(t, matches)
	assert.Equal(t, []string{"p1.jpg"}, unmatched)
}

func TestMatchTieResolvesToLowestRow(t *testing.T) {
	docs := []reconcile.Document{
		passportDoc("p1.jpg", map[string]string{"passport_number": "A1234567"}),
	}
	rows := []domain.FieldMap{
		{"passport_no": "A1234567"},
		{"passport_no": "A1234567"},
	}

	matches, _ := reconcile.MatchDocuments(docs, rows)
	require.Len(t, matches, 1)
	assert.Equal(t, 0, matches[0].RowIndex)
}
