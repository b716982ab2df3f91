// Package similarity scores how close two strings are using normalized
// Levenshtein edit distance.
package similarity

import (
	"unicode/utf8"

	"github.com/hbollon/go-edlib"
)

// Distance returns the Levenshtein edit distance between a and b, counted in
// runes. When either side is not valid UTF-8 both are compared byte by byte.
func Distance(a, b string) int {
	if a == b {
		return 0
	}
	a, b = byteSafe(a, b)
	return edlib.LevenshteinDistance(a, b)
}

// byteSafe maps every byte of a and b to its own rune when either string
// holds invalid UTF-8, so distinct invalid bytes stay distinct.
func byteSafe(a, b string) (string, string) {
	if utf8.ValidString(a) && utf8.ValidString(b) {
		return a, b
	}
	return bytesAsRunes(a), bytesAsRunes(b)
}

func bytesAsRunes(s string) string {
	r := make([]rune, len(s))
	for i := 0; i < len(s); i++ {
		r[i] = rune(s[i])
	}
	return string(r)
}

func length(a, b string) int {
	if utf8.ValidString(a) && utf8.ValidString(b) {
		return max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	}
	return max(len(a), len(b))
}

// Similarity converts the edit distance into a ratio between 0.0 and 1.0:
// (maxLen - distance) / maxLen. Two empty strings are identical.
//
// Comparison is case-sensitive; callers lower-case both sides first.
func Similarity(a, b string) float64 {
	maxLen := length(a, b)
	if maxLen == 0 {
		return 1.0
	}

	return float64(maxLen-Distance(a, b)) / float64(maxLen)
}
