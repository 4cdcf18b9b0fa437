package extract

import (
	"errors"
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	body := strings.Repeat("experience ", 6)
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "crlf", in: "Jane Doe\r\n" + body, want: "Jane Doe\n" + strings.TrimSpace(body)},
		{name: "collapse newlines", in: "Jane Doe\n\n\n\n\n" + body, want: "Jane Doe\n\n" + strings.TrimSpace(body)},
		{name: "crlf runs collapse", in: "Jane Doe\r\n\r\n\r\n" + body, want: "Jane Doe\n\n" + strings.TrimSpace(body)},
		{name: "lone carriage returns kept", in: "Jane Doe\r\r\r" + body, want: "Jane Doe\r\r\r" + strings.TrimSpace(body)},
		{name: "trim", in: "  \n\t Jane Doe " + body + "\n\n ", want: "Jane Doe " + strings.TrimSpace(body)},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(tt.in)
			if err != nil {
				t.Fatalf("Normalize: %v", err)
			}
			if got != tt.want {
				t.Fatalf("Normalize() = %q, want %q", got, tt.want)
			}
			if strings.Contains(got, "\r\n") || strings.Contains(got, "\n\n\n") {
				t.Fatalf("normalized text still has CRLF or 3+ newlines: %q", got)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"Summary\r\n\r\n\r\n\r\nSkilled engineer with ten years of Go and distributed systems.\r\n",
		"\n\n\nA\n\n\n\nB " + strings.Repeat("x", 60) + "\n\n\n",
		"  plain text that is long enough to pass the minimum length threshold  ",
	}
	for _, in := range inputs {
		once, err := Normalize(in)
		if err != nil {
			t.Fatalf("Normalize(%q): %v", in, err)
		}
		twice, err := Normalize(once)
		if err != nil {
			t.Fatalf("second Normalize: %v", err)
		}
		if once != twice {
			t.Fatalf("not idempotent: %q vs %q", once, twice)
		}
	}
}

func TestNormalizeTooShort(t *testing.T) {
	for _, in := range []string{"", "   \n\n  ", "short resume", strings.Repeat("a", 49), "\n\n" + strings.Repeat("é", 49) + "\n"} {
		_, err := Normalize(in)
		var extErr *ExtractionError
		if !errors.As(err, &extErr) || extErr.Kind != KindEmptyOrTooShort {
			t.Fatalf("Normalize(%q): expected EmptyOrTooShort, got %v", in, err)
		}
	}
	if _, err := Normalize(strings.Repeat("é", 50)); err != nil {
		t.Fatalf("expected 50 multibyte characters to pass: %v", err)
	}
}
