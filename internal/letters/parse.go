package letters

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema/letter_bundle.schema.json
var bundleSchemaJSON []byte

var bundleSchema = mustLoadSchema(bundleSchemaJSON)

func mustLoadSchema(raw []byte) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		panic(fmt.Sprintf("letters: load bundle schema: %v", err))
	}
	return schema
}

// ExtractJSONSpan returns the text from the first '{' to the last '}'
// inclusive. Prose or code fences around the object are dropped.
func ExtractJSONSpan(text string) (string, error) {
	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end < start {
		return "", &ParseError{Kind: KindNoJSONFound}
	}
	return text[start : end+1], nil
}

// RepairStringLiterals escapes characters the model left raw inside JSON
// string literals: stray backslashes first, then newlines, carriage returns,
// tabs, other control characters and inner quotes. Escape sequences that are
// already valid are kept as-is, so well-formed JSON passes through unchanged.
//
// A quote inside a string is read as the closing quote only when the next
// non-space character is ',', ':', '}', ']' or the end of input.
func RepairStringLiterals(span string) string {
	var b strings.Builder
	b.Grow(len(span) + 16)

	inString := false
	for i := 0; i < len(span); i++ {
		ch := span[i]
		if !inString {
			if ch == '"' {
				inString = true
			}
			b.WriteByte(ch)
			continue
		}

		switch {
		case ch == '\\':
			if n := escapeLen(span[i:]); n > 0 {
				b.WriteString(span[i : i+n])
				i += n - 1
			} else {
				b.WriteString(`\\`)
			}
		case ch == '"':
			if closesString(span[i+1:]) {
				inString = false
				b.WriteByte(ch)
			} else {
				b.WriteString(`\"`)
			}
		case ch == '\n':
			b.WriteString(`\n`)
		case ch == '\r':
			b.WriteString(`\r`)
		case ch == '\t':
			b.WriteString(`\t`)
		case ch < 0x20:
			fmt.Fprintf(&b, `\u%04x`, ch)
		default:
			b.WriteByte(ch)
		}
	}
	return b.String()
}

// escapeLen returns the length of the valid JSON escape at the start of s,
// or 0 when the backslash does not begin one.
func escapeLen(s string) int {
	if len(s) < 2 {
		return 0
	}
	switch s[1] {
	case '"', '\\', '/', 'b', 'f', 'n', 'r', 't':
		return 2
	case 'u':
		if len(s) >= 6 && isHex(s[2:6]) {
			return 6
		}
	}
	return 0
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}

func closesString(rest string) bool {
	rest = strings.TrimLeft(rest, " \t\r\n")
	if rest == "" {
		return true
	}
	switch rest[0] {
	case ',', ':', '}', ']':
		return true
	}
	return false
}

// ParseBundle turns a raw completion into a LetterBundle. It locates the
// JSON object, repairs string literals, parses, and checks that all three
// variants are present with non-empty content.
func ParseBundle(completion string) (LetterBundle, error) {
	span, err := ExtractJSONSpan(completion)
	if err != nil {
		return LetterBundle{}, err
	}
	repaired := []byte(RepairStringLiterals(span))

	var doc map[string]any
	if err := json.Unmarshal(repaired, &doc); err != nil {
		return LetterBundle{}, &ParseError{Kind: KindInvalidJSON, Detail: err.Error()}
	}
	if err := validateBundle(doc); err != nil {
		return LetterBundle{}, err
	}

	var bundle LetterBundle
	if err := json.Unmarshal(repaired, &bundle); err != nil {
		return LetterBundle{}, &ParseError{Kind: KindInvalidJSON, Detail: err.Error()}
	}
	return bundle, nil
}

func validateBundle(doc map[string]any) error {
	res, err := bundleSchema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return &ParseError{Kind: KindIncompleteBundle, Detail: err.Error()}
	}
	if res.Valid() {
		return nil
	}
	msgs := make([]string, 0, len(res.Errors()))
	for _, e := range res.Errors() {
		msgs = append(msgs, e.String())
	}
	return &ParseError{Kind: KindIncompleteBundle, Detail: strings.Join(msgs, "; ")}
}
