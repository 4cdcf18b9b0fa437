package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MinTextLength is the shortest normalized text accepted as a resume.
const MinTextLength = 50

var excessNewlines = regexp.MustCompile(`\n{3,}`)

// Normalize converts CRLF line endings to LF, collapses runs of three or more
// newlines to two and trims surrounding whitespace. Text shorter than
// MinTextLength characters after cleanup is rejected.
func Normalize(text string) (string, error) {
	out := clean(text)
	if utf8.RuneCountInString(out) < MinTextLength {
		return "", &ExtractionError{Kind: KindEmptyOrTooShort}
	}
	return out, nil
}

func clean(text string) string {
	out := strings.ReplaceAll(text, "\r\n", "\n")
	out = excessNewlines.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}
