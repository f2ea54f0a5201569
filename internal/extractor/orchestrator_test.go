package extractor_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/adit-suresh/MedicalBot-cV2-sub000/internal/domain"
	"github.com/adit-suresh/MedicalBot-cV2-sub000/internal/extractor"
	"github.com/adit-suresh/MedicalBot-cV2-sub000/internal/port"
	"github.com/adit-suresh/MedicalBot-cV2-sub000/mocks"
)

func passportMap(overrides map[string]string) domain.FieldMap {
	fm := domain.NewFieldMap(domain.DocTypePassport)
	for k, v := range overrides {
		fm[k] = v
	}
	return fm
}

func passportInput() port.ExtractInput {
	return port.ExtractInput{
		FileBytes: []byte("img"),
		Filename:  "passport.jpg",
		DocType:   domain.DocTypePassport,
	}
}

func TestExtractBestPrimarySufficient(t *testing.T) {
	primary := new(mocks.MockDocumentExtractor)
	fallback := new(mocks.MockDocumentExtractor)

	sufficient := passportMap(map[string]string{
		"passport_number": "A1234567",
		"surname":         "SMITH",
		"given_names":     "JOHN",
	})
	primary.On("Extract", mock.Anything, mock.Anything).Return(sufficient, nil)

	o := extractor.NewOrchestrator(primary, []port.DocumentExtractor{fallback}, []string{"openai"})
	got, err := o.ExtractBest(context.Background(), passportInput())
	require.NoError(t, err)
	assert.Equal(t, sufficient, got)
	fallback.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything)
}

func TestExtractBestEscalatesWhenInsufficient(t *testing.T) {
	primary := new(mocks.MockDocumentExtractor)
	fallback := new(mocks.MockDocumentExtractor)

	// Only one of three critical fields set: insufficient.
	primary.On("Extract", mock.Anything, mock.Anything).Return(
		passportMap(map[string]string{"passport_number": "A1234567"}), nil)
	fallback.On("Extract", mock.Anything, mock.Anything).Return(
		passportMap(map[string]string{"surname": "SMITH", "given_names": "JOHN"}), nil)

	o := extractor.NewOrchestrator(primary, []port.DocumentExtractor{fallback}, []string{"openai"})
	got, err := o.ExtractBest(context.Background(), passportInput())
	require.NoError(t, err)
	assert.Equal(t, "A1234567", got["passport_number"])
	assert.Equal(t, "SMITH", got["surname"])
	assert.Equal(t, "JOHN", got["given_names"])
}

func TestExtractBestPrimaryUnavailable(t *testing.T) {
	primary := new(mocks.MockDocumentExtractor)
	fallback := new(mocks.MockDocumentExtractor)

	primary.On("Extract", mock.Anything, mock.Anything).Return(
		nil, fmt.Errorf("textract: %w", domain.ErrBackendUnavailable))
	fallback.On("Extract", mock.Anything, mock.Anything).Return(
		passportMap(map[string]string{
			"passport_number": "A1234567",
			"surname":         "SMITH",
			"given_names":     "JOHN",
		}), nil)

	o := extractor.NewOrchestrator(primary, []port.DocumentExtractor{fallback}, []string{"openai"})
	got, err := o.ExtractBest(context.Background(), passportInput())
	require.NoError(t, err)
	assert.Equal(t, "SMITH", got["surname"])
}

func TestExtractBestDegradesToPartial(t *testing.T) {
	primary := new(mocks.MockDocumentExtractor)
	fallback := new(mocks.MockDocumentExtractor)

	primary.On("Extract", mock.Anything, mock.Anything).Return(
		passportMap(map[string]string{"passport_number": "A1234567"}), nil)
	fallback.On("Extract", mock.Anything, mock.Anything).Return(
		nil, fmt.Errorf("openai: %w", domain.ErrExtractionFailed))

	o := extractor.NewOrchestrator(primary, []port.DocumentExtractor{fallback}, []string{"openai"})
	got, err := o.ExtractBest(context.Background(), passportInput())
	require.NoError(t, err)
	assert.Equal(t, "A1234567", got["passport_number"])
	assert.Equal(t, domain.MissingValue, got["surname"])
}

func TestExtractBestAllFail(t *testing.T) {
	primary := new(mocks.MockDocumentExtractor)
	fallback := new(mocks.MockDocumentExtractor)

	primary.On("Extract", mock.Anything, mock.Anything).Return(
		nil, fmt.Errorf("textract: %w", domain.ErrBackendUnavailable))
	fallback.On("Extract", mock.Anything, mock.Anything).Return(
		nil, fmt.Errorf("openai: %w", domain.ErrExtractionFailed))

	o := extractor.NewOrchestrator(primary, []port.DocumentExtractor{fallback}, []string{"openai"})
	_, err := o.ExtractBest(context.Background(), passportInput())
	require.Error(t, err)
	// The extraction failure is more specific than the unavailable one.
	assert.True(t, errors.Is(err, domain.ErrExtractionFailed))
}

func TestExtractBestHonoursCancellation(t *testing.T) {
	primary := new(mocks.MockDocumentExtractor)
	fallback := new(mocks.MockDocumentExtractor)

	primary.On("Extract", mock.Anything, mock.Anything).Return(
		passportMap(nil), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	o := extractor.NewOrchestrator(primary, []port.DocumentExtractor{fallback}, []string{"openai"})
	_, err := o.ExtractBest(ctx, passportInput())
	require.ErrorIs(t, err, context.Canceled)
	fallback.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything)
}

func TestInsufficient(t *testing.T) {
	tests := []struct {
		name string
		fm   domain.FieldMap
		want bool
	}{
		{"all critical set", passportMap(map[string]string{
			"passport_number": "A1234567", "surname": "SMITH", "given_names": "JOHN",
		}), false},
		{"one of three missing", passportMap(map[string]string{
			"passport_number": "A1234567", "surname": "SMITH",
		}), false},
		{"two of three missing", passportMap(map[string]string{
			"passport_number": "A1234567",
		}), true},
		{"all missing", passportMap(nil), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractor.Insufficient(tt.fm, domain.DocTypePassport))
		})
	}
}

func TestMergeFieldMaps(t *testing.T) {
	primary := domain.FieldMap{
		"surname":         "SMITH",
		"passport_number": "A123",
		"date_of_birth":   ".",
	}
	secondary := domain.FieldMap{
		"surname":         "SMYTHE",
		"passport_number": "A1234567",
		"date_of_birth":   "12/01/1990",
		"given_names":     "JOHN",
	}

	merged := extractor.MergeFieldMaps(primary, secondary)

	// Non-identifier fields keep the primary value.
	assert.Equal(t, "SMITH", merged["surname"])
	// Identifier fields prefer the structurally more complete value.
	assert.Equal(t, "A1234567", merged["passport_number"])
	// Empty fields are always filled.
	assert.Equal(t, "12/01/1990", merged["date_of_birth"])
	assert.Equal(t, "JOHN", merged["given_names"])
	// The primary map is not mutated.
	assert.Equal(t, "A123", primary["passport_number"])
}

func TestMergeFieldMapsPrefersPunctuatedIdentifier(t *testing.T) {
	primary := domain.FieldMap{"emirates_id": "784199012345671"}
	secondary := domain.FieldMap{"emirates_id": "784-1990-1234567-1"}
	merged := extractor.MergeFieldMaps(primary, secondary)
	assert.Equal(t, "784-1990-1234567-1", merged["emirates_id"])
}
