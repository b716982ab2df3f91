package models

import "time"

// CatalogEntry is one book in the library catalog
type CatalogEntry struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Author string `json:"author"`
}

// MatchTier buckets a similarity score
type MatchTier string

const (
	TierExact   MatchTier = "exact"
	TierFuzzy   MatchTier = "fuzzy"
	TierPartial MatchTier = "partial"
)

// Source identifies where a candidate title came from
type Source string

// SourceHeuristic marks a candidate produced without any AI provider.
// Provider-derived candidates carry the provider name instead.
const SourceHeuristic Source = "heuristic"

// ExtractionResult is the output of any title extractor.
// Confidence is 0 and Title is empty iff extraction failed.
type ExtractionResult struct {
	Title      string  `json:"title"`
	Confidence float64 `json:"confidence"`
	Source     Source  `json:"source,omitempty"`
	Error      string  `json:"error,omitempty"`
}

// Failed reports whether the extraction produced nothing usable
func (r ExtractionResult) Failed() bool {
	return r.Title == "" || r.Confidence == 0
}

// MatchResult is one ranked catalog hit for a candidate title
type MatchResult struct {
	EntryID    string    `json:"entry_id"`
	Title      string    `json:"title"`
	Author     string    `json:"author"`
	Similarity float64   `json:"similarity"`
	MatchTier  MatchTier `json:"match_tier"`
}

// FuzzySearchResult is one ranked catalog hit for a user-typed query
type FuzzySearchResult struct {
	Entry     CatalogEntry `json:"entry"`
	Score     float64      `json:"score"`
	MatchTier MatchTier    `json:"match_tier"`
}

// ScanSession records one resolve or search request served by the API
type ScanSession struct {
	ID         string              `json:"id"`
	Kind       string              `json:"kind"` // "resolve" or "search"
	ClientID   string              `json:"client_id,omitempty"`
	Input      string              `json:"input"`
	Candidate  string              `json:"candidate,omitempty"`
	Source     Source              `json:"source,omitempty"`
	Confidence float64             `json:"confidence,omitempty"`
	Matches    []MatchResult       `json:"matches,omitempty"`
	Results    []FuzzySearchResult `json:"results,omitempty"`
	CreatedAt  time.Time           `json:"created_at"`
}
