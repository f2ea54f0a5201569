package handler

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/adit-suresh/MedicalBot-cV2-sub000/internal/config"
	"github.com/adit-suresh/MedicalBot-cV2-sub000/internal/domain"
	"github.com/adit-suresh/MedicalBot-cV2-sub000/internal/port"
	"github.com/adit-suresh/MedicalBot-cV2-sub000/internal/service"
)

const workbookContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// SubmissionHandler handles submission processing endpoints.
type SubmissionHandler struct {
	submissionService *service.SubmissionService
	storage           port.ObjectStorage
	s3Cfg             *config.S3Config
}

// NewSubmissionHandler creates a new SubmissionHandler. Storage may be
// nil, in which case the S3 intake endpoint and result upload are
// disabled.
func NewSubmissionHandler(svc *service.SubmissionService, storage port.ObjectStorage, s3Cfg *config.S3Config) *SubmissionHandler {
	return &SubmissionHandler{submissionService: svc, storage: storage, s3Cfg: s3Cfg}
}

// Process handles POST /api/v1/submissions/process. The multipart form
// carries identity documents under "documents", an optional data
// workbook under "workbook", and an optional destination template under
// "template". A per-file "type" can be declared through the filename;
// otherwise documents are classified by content.
func (h *SubmissionHandler) Process(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_FORM", "request is not valid multipart form data")
		return
	}

	input := service.SubmissionInput{}
	for _, fh := range form.File["documents"] {
		data, err := h.readDocument(fh)
		if err != nil {
			HandleError(c, err)
			return
		}
		input.Documents = append(input.Documents, service.SubmissionDocument{
			Ref:          fh.Filename,
			Filename:     fh.Filename,
			ContentType:  fh.Header.Get("Content-Type"),
			Data:         data,
			DeclaredType: domain.DocTypeUnknown,
		})
	}

	if input.WorkbookData, err = h.readWorkbook(form, "workbook"); err != nil {
		HandleError(c, err)
		return
	}
	if input.TemplateData, err = h.readWorkbook(form, "template"); err != nil {
		HandleError(c, err)
		return
	}

	result, err := h.submissionService.Process(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}

	h.respondWithResult(c, result)
}

// processS3Request is the body of the S3 intake endpoint.
type processS3Request struct {
	Bucket       string   `json:"bucket"`
	DocumentKeys []string `json:"document_keys"`
	WorkbookKey  string   `json:"workbook_key"`
	TemplateKey  string   `json:"template_key"`
}

// ProcessS3 handles POST /api/v1/submissions/process-s3, pulling every
// input object from S3 instead of the request body.
func (h *SubmissionHandler) ProcessS3(c *gin.Context) {
	if h.storage == nil {
		RespondError(c, http.StatusServiceUnavailable, "STORAGE_DISABLED", "object storage is not configured")
		return
	}

	var req processS3Request
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_BODY", "invalid JSON body")
		return
	}
	bucket := req.Bucket
	if bucket == "" {
		bucket = h.s3Cfg.Bucket
	}

	ctx := c.Request.Context()
	input := service.SubmissionInput{}
	for _, key := range req.DocumentKeys {
		data, err := h.storage.Download(ctx, bucket, key)
		if err != nil {
			HandleError(c, fmt.Errorf("%w: %s: %v", domain.ErrDownloadFailed, key, err))
			return
		}
		input.Documents = append(input.Documents, service.SubmissionDocument{
			Ref:          key,
			Filename:     filepath.Base(key),
			ContentType:  contentTypeForKey(key),
			Data:         data,
			DeclaredType: domain.DocTypeUnknown,
		})
	}
	if req.WorkbookKey != "" {
		data, err := h.storage.Download(ctx, bucket, req.WorkbookKey)
		if err != nil {
			HandleError(c, fmt.Errorf("%w: %s: %v", domain.ErrDownloadFailed, req.WorkbookKey, err))
			return
		}
		input.WorkbookData = data
	}
	if req.TemplateKey != "" {
		data, err := h.storage.Download(ctx, bucket, req.TemplateKey)
		if err != nil {
			HandleError(c, fmt.Errorf("%w: %s: %v", domain.ErrDownloadFailed, req.TemplateKey, err))
			return
		}
		input.TemplateData = data
	}

	result, err := h.submissionService.Process(ctx, input)
	if err != nil {
		HandleError(c, err)
		return
	}

	h.respondWithResult(c, result)
}

// respondWithResult uploads the populated workbook when storage is
// available and returns the records with a presigned result link.
func (h *SubmissionHandler) respondWithResult(c *gin.Context, result *service.SubmissionResult) {
	data := gin.H{
		"records":   result.Records,
		"unmatched": result.Unmatched,
		"errors":    result.Errors,
	}

	if len(result.OutputWorkbook) > 0 && h.storage != nil {
		key := fmt.Sprintf("results/%s/%s.xlsx", time.Now().UTC().Format("2006-01-02"), uuid.New())
		_, err := h.storage.Upload(c.Request.Context(), port.UploadInput{
			Bucket:      h.s3Cfg.Bucket,
			Key:         key,
			Body:        bytes.NewReader(result.OutputWorkbook),
			ContentType: workbookContentType,
			Size:        int64(len(result.OutputWorkbook)),
		})
		if err != nil {
			HandleError(c, err)
			return
		}
		url, err := h.storage.GetPresignedURL(c.Request.Context(), h.s3Cfg.Bucket, key, h.s3Cfg.PresignExpiry)
		if err != nil {
			HandleError(c, err)
			return
		}
		data["result_key"] = key
		data["result_url"] = url
	}

	RespondOK(c, data)
}

// readDocument validates and reads one identity document upload.
func (h *SubmissionHandler) readDocument(fh *multipart.FileHeader) ([]byte, error) {
	if fh.Size > h.s3Cfg.MaxFileSizeMB*1024*1024 {
		return nil, fmt.Errorf("%w: %s", domain.ErrFileTooLarge, fh.Filename)
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(fh.Filename)), ".")
	if _, ok := domain.AllowedExtensions[ext]; !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFileType, fh.Filename)
	}
	return readAll(fh)
}

// readWorkbook reads an optional xlsx upload from the form.
func (h *SubmissionHandler) readWorkbook(form *multipart.Form, field string) ([]byte, error) {
	files := form.File[field]
	if len(files) == 0 {
		return nil, nil
	}
	fh := files[0]
	if fh.Size > h.s3Cfg.MaxFileSizeMB*1024*1024 {
		return nil, fmt.Errorf("%w: %s", domain.ErrFileTooLarge, fh.Filename)
	}
	if !strings.EqualFold(filepath.Ext(fh.Filename), ".xlsx") {
		return nil, fmt.Errorf("%w: %s must be xlsx", domain.ErrUnsupportedFileType, fh.Filename)
	}
	return readAll(fh)
}

func readAll(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("opening upload %s: %w", fh.Filename, err)
	}
	defer f.Close()
	return io.ReadAll(f)
}

func contentTypeForKey(key string) string {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(key)), ".")
	if ft, ok := domain.AllowedExtensions[ext]; ok {
		return domain.AllowedFileTypes[ft]
	}
	return ""
}
