// Package service wires classification, extraction, matching, and
// reconciliation into the submission pipeline.
package service

import (
	"context"
	"fmt"
	"log"

	"github.com/adit-suresh/MedicalBot-cV2-sub000/internal/classifier"
	"github.com/adit-suresh/MedicalBot-cV2-sub000/internal/domain"
	"github.com/adit-suresh/MedicalBot-cV2-sub000/internal/excel"
	"github.com/adit-suresh/MedicalBot-cV2-sub000/internal/extractor"
	"github.com/adit-suresh/MedicalBot-cV2-sub000/internal/port"
	"github.com/adit-suresh/MedicalBot-cV2-sub000/internal/reconcile"
)

// SubmissionDocument is one source file entering the pipeline. A
// DeclaredType of unknown triggers content classification.
type SubmissionDocument struct {
	Ref          string
	Filename     string
	ContentType  string
	Data         []byte
	DeclaredType domain.DocumentType
}

// SubmissionInput carries one full submission: the identity documents,
// an optional data workbook, and an optional destination template.
type SubmissionInput struct {
	Documents    []SubmissionDocument
	WorkbookData []byte
	TemplateData []byte
}

// DocumentError records a per-document failure that did not abort the
// submission.
type DocumentError struct {
	Ref   string `json:"ref"`
	Error string `json:"error"`
}

// SubmissionResult is the outcome of processing one submission.
type SubmissionResult struct {
	Records        []domain.ReconciledRecord `json:"records"`
	Unmatched      []string                  `json:"unmatched"`
	Errors         []DocumentError           `json:"errors"`
	OutputWorkbook []byte                    `json:"-"`
}

// SubmissionService runs the extraction and reconciliation pipeline.
type SubmissionService struct {
	orchestrator *extractor.Orchestrator
	detector     port.TextDetector
}

// NewSubmissionService creates a SubmissionService. The detector may be
// nil, in which case unknown documents are classified by filename only.
func NewSubmissionService(orchestrator *extractor.Orchestrator, detector port.TextDetector) *SubmissionService {
	return &SubmissionService{orchestrator: orchestrator, detector: detector}
}

// Process runs one submission end to end: classify, extract, match, and
// reconcile. Documents are processed sequentially; a document failure is
// recorded and the rest of the submission continues. Only an empty
// submission or a cancelled context aborts.
func (s *SubmissionService) Process(ctx context.Context, input SubmissionInput) (*SubmissionResult, error) {
	if len(input.Documents) == 0 && len(input.WorkbookData) == 0 {
		return nil, domain.ErrEmptySubmission
	}

	var rows []domain.FieldMap
	if len(input.WorkbookData) > 0 {
		var err error
		rows, err = excel.ReadRows(input.WorkbookData)
		if err != nil {
			return nil, err
		}
	}

	result := &SubmissionResult{}
	var docs []reconcile.Document
	for _, doc := range input.Documents {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		docType := doc.DeclaredType
		if docType == domain.DocTypeUnknown || docType == "" {
			docType = s.classify(ctx, doc)
		}
		if docType == domain.DocTypeExcel || docType == domain.DocTypeUnknown {
			result.Errors = append(result.Errors, DocumentError{
				Ref:   doc.Ref,
				Error: fmt.Sprintf("cannot extract document of type %s", docType),
			})
			continue
		}

		fields, err := s.orchestrator.ExtractBest(ctx, port.ExtractInput{
			FileBytes:   doc.Data,
			ContentType: doc.ContentType,
			Filename:    doc.Filename,
			DocType:     docType,
		})
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Printf("service.SubmissionService: extraction failed for %s: %v", doc.Ref, err)
			result.Errors = append(result.Errors, DocumentError{Ref: doc.Ref, Error: err.Error()})
			continue
		}

		if docType == domain.DocTypeVisa {
			reconcile.ResolveUnifiedFileConfusion(fields)
		}
		docs = append(docs, reconcile.Document{Ref: doc.Ref, Type: docType, Fields: fields})
	}

	s.reconcileAll(result, docs, rows)

	if len(input.TemplateData) > 0 && len(result.Records) > 0 {
		out, err := excel.Populate(input.TemplateData, result.Records)
		if err != nil {
			return nil, err
		}
		result.OutputWorkbook = out
	}

	log.Printf("service.SubmissionService: %d records, %d unmatched, %d errors",
		len(result.Records), len(result.Unmatched), len(result.Errors))
	return result, nil
}

// classify resolves a document's type from its OCR text, falling back to
// the filename when no text detector is wired or detection fails.
func (s *SubmissionService) classify(ctx context.Context, doc SubmissionDocument) domain.DocumentType {
	text := ""
	if s.detector != nil {
		detected, err := s.detector.DetectText(ctx, port.ExtractInput{
			FileBytes:   doc.Data,
			ContentType: doc.ContentType,
			Filename:    doc.Filename,
		})
		if err != nil {
			log.Printf("service.SubmissionService: text detection failed for %s, classifying by filename: %v", doc.Ref, err)
		} else {
			text = detected
		}
	}
	res := classifier.Classify(text, doc.Filename)
	log.Printf("service.SubmissionService: classified %s as %s (confidence %.2f)", doc.Ref, res.Type, res.Confidence)
	return res.Type
}

// reconcileAll groups documents with their matched rows and produces one
// record per row, plus a single document-only record when no workbook
// was supplied.
func (s *SubmissionService) reconcileAll(result *SubmissionResult, docs []reconcile.Document, rows []domain.FieldMap) {
	if len(rows) == 0 {
		if len(docs) > 0 {
			result.Records = append(result.Records, reconcile.Reconcile(domain.FieldMap{}, docs))
		}
		return
	}

	matches, unmatched := reconcile.MatchDocuments(docs, rows)
	result.Unmatched = unmatched

	byRef := make(map[string]reconcile.Document, len(docs))
	for _, d := range docs {
		byRef[d.Ref] = d
	}
	byRow := make(map[int][]reconcile.Document)
	for _, m := range matches {
		byRow[m.RowIndex] = append(byRow[m.RowIndex], byRef[m.DocumentRef])
	}

	for i, row := range rows {
		result.Records = append(result.Records, reconcile.Reconcile(row, byRow[i]))
	}
}
