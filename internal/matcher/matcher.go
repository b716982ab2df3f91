// Package matcher ranks catalog entries against an extracted title or a
// user-typed query.
package matcher

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/lehigh-university-libraries/bookresolver/internal/models"
	"github.com/lehigh-university-libraries/bookresolver/internal/similarity"
)

// Matcher is stateless apart from its thresholds and safe for concurrent use
type Matcher struct {
	thresholds Thresholds
}

// New returns a matcher using the given thresholds
func New(t Thresholds) *Matcher {
	return &Matcher{thresholds: t}
}

// Default returns a matcher using DefaultThresholds
func Default() *Matcher {
	return New(DefaultThresholds())
}

// Thresholds returns the cut-offs in use
func (m *Matcher) Thresholds() Thresholds {
	return m.thresholds
}

// Tier buckets a title similarity score
func (m *Matcher) Tier(score float64) models.MatchTier {
	switch {
	case score > m.thresholds.ExactAbove:
		return models.TierExact
	case score > m.thresholds.FuzzyAbove:
		return models.TierFuzzy
	default:
		return models.TierPartial
	}
}

// MatchCatalog ranks catalog entries by whole-title similarity to title
func (m *Matcher) MatchCatalog(title string, catalog []models.CatalogEntry) []models.MatchResult {
	matches := []models.MatchResult{}
	needle := strings.ToLower(title)

	for _, entry := range catalog {
		score := similarity.Similarity(needle, strings.ToLower(entry.Title))
		if score <= m.thresholds.TitleMin {
			continue
		}
		matches = append(matches, models.MatchResult{
			EntryID:    entry.ID,
			Title:      entry.Title,
			Author:     entry.Author,
			Similarity: score,
			MatchTier:  m.Tier(score),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})

	if len(matches) > m.thresholds.TitleLimit {
		matches = matches[:m.thresholds.TitleLimit]
	}
	return matches
}

// FuzzySearch ranks catalog entries against a free-form user query using
// substring, whole-string and word-level matching.
func (m *Matcher) FuzzySearch(query string, catalog []models.CatalogEntry) []models.FuzzySearchResult {
	results := []models.FuzzySearchResult{}

	q := strings.ToLower(strings.TrimSpace(query))
	qLen := utf8.RuneCountInString(q)
	if qLen < m.thresholds.MinQueryLen {
		return results
	}

	threshold := m.queryThreshold(qLen)
	queryWords := m.significantWords(q)

	for _, entry := range catalog {
		title := strings.ToLower(entry.Title)
		author := strings.ToLower(entry.Author)

		if strings.Contains(title, q) || strings.Contains(author, q) {
			results = append(results, models.FuzzySearchResult{Entry: entry, Score: 1.0, MatchTier: models.TierExact})
			continue
		}

		best := max(similarity.Similarity(q, title), similarity.Similarity(q, author))
		if best >= threshold {
			tier := models.TierPartial
			if best > m.thresholds.FuzzyAbove {
				tier = models.TierFuzzy
			}
			results = append(results, models.FuzzySearchResult{Entry: entry, Score: best, MatchTier: tier})
			continue
		}

		if fraction, ok := m.wordMatch(queryWords, title, author); ok {
			results = append(results, models.FuzzySearchResult{
				Entry:     entry,
				Score:     m.thresholds.WordBaseScore + fraction*m.thresholds.WordScoreSpan,
				MatchTier: models.TierFuzzy,
			})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > m.thresholds.SearchLimit {
		results = results[:m.thresholds.SearchLimit]
	}
	return results
}

func (m *Matcher) queryThreshold(qLen int) float64 {
	switch {
	case qLen <= m.thresholds.ShortQueryLen:
		return m.thresholds.ShortQueryMin
	case qLen <= m.thresholds.MediumQueryLen:
		return m.thresholds.MediumQueryMin
	default:
		return m.thresholds.LongQueryMin
	}
}

func (m *Matcher) significantWords(s string) []string {
	var words []string
	for _, w := range strings.Fields(s) {
		if utf8.RuneCountInString(w) >= m.thresholds.WordMinLen {
			words = append(words, w)
		}
	}
	return words
}

// wordMatch returns the fraction of query words that closely match some word
// of the title or author, and whether that fraction is high enough.
func (m *Matcher) wordMatch(queryWords []string, title, author string) (float64, bool) {
	if len(queryWords) == 0 {
		return 0, false
	}
	targets := append(strings.Fields(title), strings.Fields(author)...)

	matched := 0
	for _, qw := range queryWords {
		best := 0.0
		for _, tw := range targets {
			best = max(best, similarity.Similarity(qw, tw))
		}
		if best > m.thresholds.WordMatchMin {
			matched++
		}
	}

	fraction := float64(matched) / float64(len(queryWords))
	return fraction, matched > 0 && fraction >= m.thresholds.WordFractionMin
}
