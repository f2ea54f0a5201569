package domain

import "errors"

var (
	ErrBackendUnavailable  = errors.New("extraction backend has no usable configuration")
	ErrExtractionFailed    = errors.New("extraction service call failed")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrEmptySubmission     = errors.New("submission contains no documents")
	ErrWorkbookUnreadable  = errors.New("workbook could not be read")
	ErrTemplateInvalid     = errors.New("destination template is missing required columns")
	ErrDownloadFailed      = errors.New("file download from storage failed")
)
