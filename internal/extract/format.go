package extract

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format identifies which extraction backend handles a document.
type Format int

const (
	FormatUnsupported Format = iota
	FormatPDF
	// FormatDOCX covers both OOXML and legacy msword uploads; both go through the DOCX backend.
	FormatDOCX
)

const (
	MimePDF  = "application/pdf"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimeDOC  = "application/msword"

	// DefaultMaxSizeBytes is used when a Policy carries no explicit limit.
	DefaultMaxSizeBytes int64 = 10 << 20
)

var mimeFormats = map[string]Format{
	MimePDF:  FormatPDF,
	MimeDOCX: FormatDOCX,
	MimeDOC:  FormatDOCX,
}

var allowedExtensions = map[string]struct{}{
	".pdf":  {},
	".doc":  {},
	".docx": {},
}

func (f Format) String() string {
	switch f {
	case FormatPDF:
		return "pdf"
	case FormatDOCX:
		return "docx"
	default:
		return "unsupported"
	}
}

// Document describes an uploaded file before its bytes are read.
type Document struct {
	Name      string
	MediaType string
	SizeBytes int64
}

// Detect classifies a declared media type. Matching is exact.
func Detect(mediaType string) Format {
	if f, ok := mimeFormats[mediaType]; ok {
		return f
	}
	return FormatUnsupported
}

// AllowedExtension reports whether the file name ends in .pdf, .doc or .docx (case-insensitive).
func AllowedExtension(name string) bool {
	_, ok := allowedExtensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

// Policy holds the upload limits applied before extraction.
type Policy struct {
	MaxSizeBytes int64
}

func (p Policy) maxSize() int64 {
	if p.MaxSizeBytes <= 0 {
		return DefaultMaxSizeBytes
	}
	return p.MaxSizeBytes
}

// Validate checks size, media type and extension, in that order, and returns
// the detected format. MIME and extension are each checked against their own
// allow-list; they are not cross-validated.
func (p Policy) Validate(doc Document) (Format, error) {
	limit := p.maxSize()
	if doc.SizeBytes > limit {
		return FormatUnsupported, &ValidationError{
			Reason: ReasonTooLarge,
			Message: fmt.Sprintf("Your file is too large (%.1fMB). Please upload a file smaller than %.0fMB.",
				float64(doc.SizeBytes)/1024/1024, float64(limit)/1024/1024),
		}
	}

	format := Detect(doc.MediaType)
	if format == FormatUnsupported || !AllowedExtension(doc.Name) {
		return FormatUnsupported, &ValidationError{
			Reason:  ReasonUnsupportedFormat,
			Message: unsupportedFormatMessage,
		}
	}
	return format, nil
}
