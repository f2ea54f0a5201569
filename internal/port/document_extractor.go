package port

import (
	"context"

	"github.com/adit-suresh/MedicalBot-cV2-sub000/internal/domain"
)

// ExtractInput carries one document into an extraction backend.
type ExtractInput struct {
	FileBytes   []byte
	ContentType string
	Filename    string
	DocType     domain.DocumentType
}

// DocumentExtractor abstracts one extraction backend. On success the
// returned FieldMap carries every canonical field for the input type
// (missing data at the sentinel) plus any extra fields discovered.
// Partial results are returned, not raised; errors wrap
// domain.ErrBackendUnavailable or domain.ErrExtractionFailed.
type DocumentExtractor interface {
	Extract(ctx context.Context, input ExtractInput) (domain.FieldMap, error)
}

// TextDetector exposes raw machine-OCR text for a document, used to
// classify files whose type is not known up front.
type TextDetector interface {
	DetectText(ctx context.Context, input ExtractInput) (string, error)
}
