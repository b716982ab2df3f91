// Package validate rejects candidate strings that are obviously not book titles.
package validate

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MinTitleLength is the shortest candidate accepted as a title
const MinTitleLength = 2

// Common OCR artifacts that aren't book titles
var invalidTitlePatterns = []*regexp.Regexp{
	// URLs
	regexp.MustCompile(`(?i)^https?://`),
	// ISBN-like numbers
	regexp.MustCompile(`^\d{10,13}$`),
	// all-caps tokens
	regexp.MustCompile(`^[A-Z]{2,}$`),
	// only symbols
	regexp.MustCompile(`^[^\w\s]+$`),
	regexp.MustCompile(`(?i)price|buy|sale|discount`),
	regexp.MustCompile(`(?i)copyright|isbn|edition`),
}

// IsValidTitle reports whether candidate looks like a real book title
func IsValidTitle(candidate string) bool {
	if strings.TrimSpace(candidate) == "" || utf8.RuneCountInString(candidate) < MinTitleLength {
		return false
	}

	for _, pattern := range invalidTitlePatterns {
		if pattern.MatchString(candidate) {
			return false
		}
	}

	return true
}
