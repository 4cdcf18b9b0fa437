package extract

const unsupportedFormatMessage = "This file format is not supported. Please upload a PDF (.pdf) or Word document (.doc, .docx)."

// ValidationReason says why an upload was rejected before extraction.
type ValidationReason string

const (
	ReasonTooLarge          ValidationReason = "too_large"
	ReasonUnsupportedFormat ValidationReason = "unsupported_format"
)

// ValidationError is returned for uploads rejected on metadata alone.
// Message is safe to show to the user.
type ValidationError struct {
	Reason  ValidationReason
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ExtractionKind classifies extraction failures.
type ExtractionKind string

const (
	KindCorruptFile     ExtractionKind = "corrupt_file"
	KindEmptyOrTooShort ExtractionKind = "empty_or_too_short"
)

// ExtractionError reports a failure to turn document bytes into usable text.
// Error returns a user-facing message; the cause is available via Unwrap.
type ExtractionError struct {
	Kind   ExtractionKind
	Format Format
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Kind == KindEmptyOrTooShort {
		return "Your resume appears to be empty or too short. Please make sure your resume contains text content."
	}
	switch e.Format {
	case FormatPDF:
		return "Unable to read the PDF file. Please make sure it's a valid PDF document and try again."
	case FormatDOCX:
		return "Unable to read the Word document. Please make sure it's a valid .doc or .docx file and try again."
	default:
		return unsupportedFormatMessage
	}
}

func (e *ExtractionError) Unwrap() error { return e.Err }

func corrupt(format Format, err error) error {
	return &ExtractionError{Kind: KindCorruptFile, Format: format, Err: err}
}
