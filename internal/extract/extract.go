package extract

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
)

// Extractor turns the bytes of one document format into raw text.
type Extractor interface {
	Extract(data []byte) (string, error)
}

type pdfExtractor struct{}

type docxExtractor struct{}

var extractors = map[Format]Extractor{
	FormatPDF:  pdfExtractor{},
	FormatDOCX: docxExtractor{},
}

// ForFormat returns the extraction backend for a detected format.
func ForFormat(format Format) (Extractor, error) {
	ex, ok := extractors[format]
	if !ok {
		return nil, &ValidationError{Reason: ReasonUnsupportedFormat, Message: unsupportedFormatMessage}
	}
	return ex, nil
}

// Text extracts and normalizes the text of a document whose format has already been detected.
func Text(format Format, data []byte) (string, error) {
	ex, err := ForFormat(format)
	if err != nil {
		return "", err
	}
	raw, err := ex.Extract(data)
	if err != nil {
		return "", err
	}
	text, err := Normalize(raw)
	if err != nil {
		var extErr *ExtractionError
		if errors.As(err, &extErr) {
			extErr.Format = format
		}
		return "", err
	}
	return text, nil
}

// Extract decodes the PDF and concatenates the plain text of every page.
// The decoder panics on some malformed inputs; those are reported as corrupt files.
func (pdfExtractor) Extract(data []byte) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			text = ""
			err = corrupt(FormatPDF, fmt.Errorf("pdf decoder panic: %v", rec))
		}
	}()

	if len(data) == 0 {
		return "", corrupt(FormatPDF, errors.New("empty pdf data"))
	}
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", corrupt(FormatPDF, err)
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", corrupt(FormatPDF, err)
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", corrupt(FormatPDF, err)
	}
	return buf.String(), nil
}

// Extract opens the archive, reads word/document.xml and returns its text runs.
func (docxExtractor) Extract(data []byte) (string, error) {
	if len(data) == 0 {
		return "", corrupt(FormatDOCX, errors.New("empty docx data"))
	}
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", corrupt(FormatDOCX, err)
	}
	defer doc.Close()

	text, err := documentXMLText(doc.Editable().GetContent())
	if err != nil {
		return "", corrupt(FormatDOCX, err)
	}
	return text, nil
}

// documentXMLText walks WordprocessingML and keeps only run text, mapping
// tabs, breaks and paragraph ends onto whitespace.
func documentXMLText(raw string) (string, error) {
	decoder := xml.NewDecoder(strings.NewReader(raw))
	var buf strings.Builder
	inText := false
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("document.xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "tab":
				buf.WriteString("\t")
			case "br", "cr":
				buf.WriteString("\n")
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				buf.WriteString("\n\n")
			}
		case xml.CharData:
			if inText {
				buf.Write(t)
			}
		}
	}
	return buf.String(), nil
}
