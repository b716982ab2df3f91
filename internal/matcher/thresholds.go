package matcher

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Thresholds are the tunable cut-offs used by both matching modes.
// The defaults were picked empirically against a small library catalog.
type Thresholds struct {
	// Title resolution mode
	TitleMin   float64 `yaml:"title_min"`
	ExactAbove float64 `yaml:"exact_above"`
	FuzzyAbove float64 `yaml:"fuzzy_above"`
	TitleLimit int     `yaml:"title_limit"`

	// Fuzzy search mode
	MinQueryLen    int     `yaml:"min_query_len"`
	ShortQueryLen  int     `yaml:"short_query_len"`
	ShortQueryMin  float64 `yaml:"short_query_min"`
	MediumQueryLen int     `yaml:"medium_query_len"`
	MediumQueryMin float64 `yaml:"medium_query_min"`
	LongQueryMin   float64 `yaml:"long_query_min"`

	// Word-level matching
	WordMinLen      int     `yaml:"word_min_len"`
	WordMatchMin    float64 `yaml:"word_match_min"`
	WordFractionMin float64 `yaml:"word_fraction_min"`
	WordBaseScore   float64 `yaml:"word_base_score"`
	WordScoreSpan   float64 `yaml:"word_score_span"`

	SearchLimit int `yaml:"search_limit"`
}

// DefaultThresholds returns the stock cut-offs
func DefaultThresholds() Thresholds {
	return Thresholds{
		TitleMin:   0.6,
		ExactAbove: 0.9,
		FuzzyAbove: 0.8,
		TitleLimit: 5,

		MinQueryLen:    2,
		ShortQueryLen:  3,
		ShortQueryMin:  0.8,
		MediumQueryLen: 6,
		MediumQueryMin: 0.6,
		LongQueryMin:   0.4,

		WordMinLen:      3,
		WordMatchMin:    0.7,
		WordFractionMin: 0.6,
		WordBaseScore:   0.5,
		WordScoreSpan:   0.3,

		SearchLimit: 20,
	}
}

// LoadThresholds reads a YAML file on top of the defaults. Keys missing from
// the file keep their default values.
func LoadThresholds(path string) (Thresholds, error) {
	t := DefaultThresholds()

	data, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("failed to read thresholds file: %w", err)
	}

	if err := yaml.Unmarshal(data, &t); err != nil {
		return DefaultThresholds(), fmt.Errorf("failed to parse thresholds file: %w", err)
	}

	if err := t.Validate(); err != nil {
		return DefaultThresholds(), err
	}

	return t, nil
}

// Validate rejects values that would make the matcher misbehave
func (t Thresholds) Validate() error {
	for name, v := range map[string]float64{
		"title_min":         t.TitleMin,
		"exact_above":       t.ExactAbove,
		"fuzzy_above":       t.FuzzyAbove,
		"short_query_min":   t.ShortQueryMin,
		"medium_query_min":  t.MediumQueryMin,
		"long_query_min":    t.LongQueryMin,
		"word_match_min":    t.WordMatchMin,
		"word_fraction_min": t.WordFractionMin,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("threshold %s must be between 0 and 1, got %v", name, v)
		}
	}
	if t.TitleLimit < 1 || t.SearchLimit < 1 {
		return fmt.Errorf("result limits must be positive (title_limit=%d, search_limit=%d)", t.TitleLimit, t.SearchLimit)
	}
	if t.WordBaseScore+t.WordScoreSpan > 1 {
		return fmt.Errorf("word_base_score + word_score_span must not exceed 1")
	}
	return nil
}
