// Package resolver turns raw OCR text into ranked catalog matches.
package resolver

import (
	"context"
	"log/slog"

	"github.com/lehigh-university-libraries/bookresolver/internal/heuristic"
	"github.com/lehigh-university-libraries/bookresolver/internal/matcher"
	"github.com/lehigh-university-libraries/bookresolver/internal/models"
	"github.com/lehigh-university-libraries/bookresolver/internal/validate"
)

// DefaultMinConfidence is the lowest AI confidence accepted before falling back
// to the heuristic extractor.
const DefaultMinConfidence = 0.3

// TitleExtractor is satisfied by *extraction.Extractor
type TitleExtractor interface {
	Extract(ctx context.Context, rawText string) models.ExtractionResult
}

// Resolution is the full trace of one resolve call
type Resolution struct {
	Candidate  string                  `json:"candidate"`
	Source     models.Source           `json:"source,omitempty"`
	Extraction models.ExtractionResult `json:"extraction"`
	Matches    []models.MatchResult    `json:"matches"`
}

// Resolver runs extraction, validation and matching
type Resolver struct {
	extractor     TitleExtractor
	matcher       *matcher.Matcher
	minConfidence float64
	logger        *slog.Logger
}

// Option configures a Resolver
type Option func(*Resolver)

// WithMinConfidence overrides DefaultMinConfidence
func WithMinConfidence(c float64) Option {
	return func(r *Resolver) {
		r.minConfidence = c
	}
}

// WithLogger sets the logger; nil keeps slog.Default()
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// New returns a resolver. A nil extractor skips straight to the heuristic
// extractor; a nil matcher uses the default thresholds.
func New(extractor TitleExtractor, m *matcher.Matcher, opts ...Option) *Resolver {
	if m == nil {
		m = matcher.Default()
	}
	r := &Resolver{
		extractor:     extractor,
		matcher:       m,
		minConfidence: DefaultMinConfidence,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns up to five catalog entries matching the title found in
// rawText. It never fails; no usable title yields an empty slice.
func (r *Resolver) Resolve(ctx context.Context, rawText string, catalog []models.CatalogEntry) []models.MatchResult {
	return r.ResolveDetailed(ctx, rawText, catalog).Matches
}

// ResolveDetailed is Resolve plus the candidate and where it came from
func (r *Resolver) ResolveDetailed(ctx context.Context, rawText string, catalog []models.CatalogEntry) Resolution {
	res := Resolution{Matches: []models.MatchResult{}}

	if r.extractor != nil {
		res.Extraction = r.extractor.Extract(ctx, rawText)
	}

	if res.Extraction.Title != "" && res.Extraction.Confidence >= r.minConfidence {
		res.Candidate = res.Extraction.Title
		res.Source = res.Extraction.Source
	} else {
		r.logger.Debug("AI extraction unusable, using heuristic",
			"error", res.Extraction.Error,
			"confidence", res.Extraction.Confidence,
		)
		res.Candidate = heuristic.Extract(rawText)
		if res.Candidate != "" {
			res.Source = models.SourceHeuristic
		}
	}

	if res.Candidate == "" || !validate.IsValidTitle(res.Candidate) {
		r.logger.Info("no valid title candidate", "candidate", res.Candidate, "source", res.Source)
		return res
	}

	res.Matches = r.matcher.MatchCatalog(res.Candidate, catalog)
	r.logger.Info("resolved title",
		"candidate", res.Candidate,
		"source", res.Source,
		"catalog_size", len(catalog),
		"matches", len(res.Matches),
	)
	return res
}

// Search runs the fuzzy user-query mode against catalog
func (r *Resolver) Search(query string, catalog []models.CatalogEntry) []models.FuzzySearchResult {
	return r.matcher.FuzzySearch(query, catalog)
}
