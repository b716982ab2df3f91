// Package heuristic pulls a plausible book title out of raw OCR text without
// calling any AI service. It is the fallback used when every provider fails.
package heuristic

import (
	"log/slog"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	minTextLength   = 3
	minTitleLength  = 3
	maxTitleLength  = 50
	maxAuthorWords  = 3
	maxLeadingWords = 4
)

// KnownTitles are matched as substrings of the cleaned, lower-cased text.
var KnownTitles = []string{
	"romeo and juliet",
	"pride and prejudice",
	"to kill a mockingbird",
	"1984",
	"the great gatsby",
}

var (
	nonWord      = regexp.MustCompile(`[^\w\s]`)
	whitespace   = regexp.MustCompile(`\s+`)
	authorWord   = regexp.MustCompile(`^[A-Z][a-z]+$`)
	metadataWord = regexp.MustCompile(`(?i)\b(isbn|publisher|copyright|edition|volume|books|alice)\b`)
	titleCaser   = cases.Title(language.English)
)

// Extract returns the best-guess title in rawText, or "" when nothing usable is found.
func Extract(rawText string) string {
	if len([]rune(strings.TrimSpace(rawText))) < minTextLength {
		return ""
	}

	cleaned := Clean(rawText)
	if cleaned == "" {
		return ""
	}
	words := strings.Split(cleaned, " ")

	rules := []struct {
		name string
		fn   func(cleaned string, words []string) string
	}{
		{"known_title", knownTitle},
		{"title_author", titleThenAuthor},
		{"capitalized_phrase", capitalizedPhrase},
		{"leading_words", leadingWords},
		{"first_word", firstWord},
	}

	for _, rule := range rules {
		if title := rule.fn(cleaned, words); title != "" {
			slog.Debug("heuristic extraction matched", "rule", rule.name, "title", title)
			return title
		}
	}

	slog.Debug("heuristic extraction found nothing", "cleaned", cleaned)
	return ""
}

// Clean replaces punctuation with spaces and collapses runs of whitespace.
func Clean(rawText string) string {
	cleaned := nonWord.ReplaceAllString(rawText, " ")
	cleaned = whitespace.ReplaceAllString(cleaned, " ")
	return strings.TrimSpace(cleaned)
}

func knownTitle(cleaned string, _ []string) string {
	lower := strings.ToLower(cleaned)
	for _, known := range KnownTitles {
		if strings.Contains(lower, known) {
			return titleCaser.String(known)
		}
	}
	return ""
}

// titleThenAuthor looks for "<Title> <Author>" where the author is one to
// three capitalized words. A two-word author ("Gillian Flynn") is preferred
// over the shortest split, since most covers print a first and last name.
func titleThenAuthor(_ string, words []string) string {
	var fallback string
	for i := 1; i < len(words); i++ {
		title := strings.Join(words[:i], " ")
		if !plausibleTitle(title) || !startsUpper(title) {
			continue
		}

		author := words[i:]
		if len(author) > maxAuthorWords || !looksLikeAuthor(author) {
			continue
		}

		if len(author) == 2 {
			return title
		}
		if fallback == "" {
			fallback = title
		}
	}
	return fallback
}

func looksLikeAuthor(words []string) bool {
	for _, w := range words {
		lw := strings.ToLower(w)
		if lw == "and" || lw == "or" {
			continue
		}
		if !authorWord.MatchString(w) {
			return false
		}
	}
	return len(words) > 0
}

// capitalizedPhrase splits the text before every capitalized word and returns
// the first piece of reasonable length.
func capitalizedPhrase(_ string, words []string) string {
	var phrases []string
	var current []string
	for i, w := range words {
		if i > 0 && startsUpper(w) {
			phrases = append(phrases, strings.Join(current, " "))
			current = current[:0]
		}
		current = append(current, w)
	}
	phrases = append(phrases, strings.Join(current, " "))

	for _, phrase := range phrases {
		if plausibleTitle(phrase) {
			return phrase
		}
	}
	return ""
}

func leadingWords(_ string, words []string) string {
	n := min(maxLeadingWords, len(words))
	candidate := strings.Join(words[:n], " ")
	if plausibleLength(candidate) && startsUpper(candidate) {
		return candidate
	}
	return ""
}

func firstWord(_ string, words []string) string {
	if len(words) > 0 && len([]rune(words[0])) >= minTitleLength {
		return words[0]
	}
	return ""
}

func plausibleTitle(s string) bool {
	return plausibleLength(s) && !metadataWord.MatchString(s)
}

func plausibleLength(s string) bool {
	n := len([]rune(s))
	return n >= minTitleLength && n <= maxTitleLength
}

func startsUpper(s string) bool {
	return s != "" && s[0] >= 'A' && s[0] <= 'Z'
}
