package utils

import (
	"strings"
	"unicode"
)

// SanitizeString trims whitespace and drops control characters from a
// single-line value such as a device name or serial number.
func SanitizeString(input string) string {
	return removeControlChars(strings.TrimSpace(input), false)
}

// SanitizeText sanitizes multi-line text input (notes, descriptions).
func SanitizeText(input string) string {
	return removeControlChars(strings.TrimSpace(input), true)
}

// SanitizePtr applies fn to the pointed-to value, leaving nil untouched.
func SanitizePtr(s *string, fn func(string) string) *string {
	if s == nil {
		return nil
	}
	sanitized := fn(*s)
	return &sanitized
}

func removeControlChars(input string, keepNewlines bool) string {
	var result strings.Builder
	for _, r := range input {
		if unicode.IsPrint(r) || r == ' ' {
			result.WriteRune(r)
			continue
		}
		if keepNewlines && (r == '\n' || r == '\t' || r == '\r') {
			result.WriteRune(r)
		}
	}
	return result.String()
}
