package domain

// DocumentType labels a processed source file. Immutable once assigned.
type DocumentType string

const (
	DocTypePassport   DocumentType = "passport"
	DocTypeEmiratesID DocumentType = "emirates_id"
	DocTypeVisa       DocumentType = "visa"
	DocTypeExcel      DocumentType = "excel"
	DocTypeUnknown    DocumentType = "unknown"
)

// ClassifiableTypes lists the identity document types in tie-break
// priority order (highest first).
var ClassifiableTypes = []DocumentType{DocTypeVisa, DocTypeEmiratesID, DocTypePassport}

// ParseDocumentType converts a string label to a DocumentType,
// returning DocTypeUnknown for anything unrecognised.
func ParseDocumentType(s string) DocumentType {
	switch DocumentType(s) {
	case DocTypePassport, DocTypeEmiratesID, DocTypeVisa, DocTypeExcel:
		return DocumentType(s)
	default:
		return DocTypeUnknown
	}
}

// FileType represents the allowed file types for document intake.
type FileType string

const (
	FileTypePDF FileType = "pdf"
	FileTypeJPG FileType = "jpg"
	FileTypePNG FileType = "png"
)

// AllowedFileTypes maps FileType to its MIME content type.
var AllowedFileTypes = map[FileType]string{
	FileTypePDF: "application/pdf",
	FileTypeJPG: "image/jpeg",
	FileTypePNG: "image/png",
}

// AllowedContentTypes maps MIME content types back to FileType.
var AllowedContentTypes = map[string]FileType{
	"application/pdf": FileTypePDF,
	"image/jpeg":      FileTypeJPG,
	"image/png":       FileTypePNG,
}

// AllowedExtensions maps file extensions (without dot) to FileType.
var AllowedExtensions = map[string]FileType{
	"pdf":  FileTypePDF,
	"jpg":  FileTypeJPG,
	"jpeg": FileTypeJPG,
	"png":  FileTypePNG,
}
