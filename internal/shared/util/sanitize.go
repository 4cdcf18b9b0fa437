package util

import (
	"errors"
	"regexp"
	"strings"
)

var (
	unsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9.-]`)
	repeatedUnders  = regexp.MustCompile(`_{2,}`)
)

// SanitizeFileName maps a client-supplied name onto a lowercase, storage-safe name.
// Names containing traversal patterns are rejected.
func SanitizeFileName(name string) (string, error) {
	if strings.Contains(name, "..") {
		return "", errors.New("invalid file name")
	}
	s := strings.TrimSpace(name)
	if s == "" {
		return "", errors.New("invalid file name")
	}
	s = unsafeFileChars.ReplaceAllString(s, "_")
	s = repeatedUnders.ReplaceAllString(s, "_")
	return strings.ToLower(s), nil
}
