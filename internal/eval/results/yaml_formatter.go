// Package results persists evaluation runs as YAML so they can be compared
// and reported on later.
package results

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/bookresolver/internal/eval/metrics"
	"github.com/lehigh-university-libraries/bookresolver/internal/matcher"
	"github.com/lehigh-university-libraries/bookresolver/internal/models"
	"github.com/lehigh-university-libraries/bookresolver/internal/records"
	"gopkg.in/yaml.v3"
)

// DefaultDir is where runs are written
const DefaultDir = "evals"

// EvalConfig represents the configuration section of the eval YAML
type EvalConfig struct {
	Providers     []string           `yaml:"providers"`
	Catalog       string             `yaml:"catalog"`
	DatasetPath   string             `yaml:"datasetpath"`
	SampleSize    int                `yaml:"samplesize"`
	K             int                `yaml:"k"`
	MinConfidence float64            `yaml:"minconfidence"`
	Thresholds    matcher.Thresholds `yaml:"thresholds"`
	Timestamp     string             `yaml:"timestamp"`
}

// EvalResult represents a single evaluation result
type EvalResult struct {
	Identifier          string  `yaml:"identifier" parquet:"identifier"`
	Mode                string  `yaml:"mode" parquet:"mode"`
	Input               string  `yaml:"input" parquet:"input"`
	ExpectedID          string  `yaml:"expectedid,omitempty" parquet:"expectedid"`
	ExpectedTitle       string  `yaml:"expectedtitle,omitempty" parquet:"expectedtitle"`
	Candidate           string  `yaml:"candidate,omitempty" parquet:"candidate"`
	Source              string  `yaml:"source,omitempty" parquet:"source"`
	Confidence          float64 `yaml:"confidence,omitempty" parquet:"confidence"`
	CandidateSimilarity float64 `yaml:"candidatesimilarity,omitempty" parquet:"candidatesimilarity"`
	TopID               string  `yaml:"topid,omitempty" parquet:"topid"`
	TopTitle            string  `yaml:"toptitle,omitempty" parquet:"toptitle"`
	TopScore            float64 `yaml:"topscore" parquet:"topscore"`
	TopTier             string  `yaml:"toptier,omitempty" parquet:"toptier"`
	Returned            int     `yaml:"returned" parquet:"returned"`
	Rank                int     `yaml:"rank" parquet:"rank"`
	DurationMS          int64   `yaml:"durationms" parquet:"durationms"`
	Error               string  `yaml:"error,omitempty" parquet:"error"`
}

// EvalSpec represents the complete evaluation specification
type EvalSpec struct {
	Config  EvalConfig   `yaml:"config"`
	Results []EvalResult `yaml:"results"`
}

// NewEvalSpec converts metrics results into their YAML form. The timestamp
// is filled in when empty.
func NewEvalSpec(cfg EvalConfig, results []metrics.EvaluationResult) *EvalSpec {
	if cfg.Timestamp == "" {
		cfg.Timestamp = time.Now().Format("2006-01-02_15-04-05")
	}

	spec := &EvalSpec{
		Config:  cfg,
		Results: make([]EvalResult, 0, len(results)),
	}
	for _, r := range results {
		spec.Results = append(spec.Results, EvalResult{
			Identifier:          r.ID,
			Mode:                r.Mode,
			Input:               r.Input,
			ExpectedID:          r.ExpectedID,
			ExpectedTitle:       r.ExpectedTitle,
			Candidate:           r.Candidate,
			Source:              string(r.Source),
			Confidence:          r.Confidence,
			CandidateSimilarity: r.CandidateSimilarity,
			TopID:               r.TopID,
			TopTitle:            r.TopTitle,
			TopScore:            r.TopScore,
			TopTier:             string(r.TopTier),
			Returned:            r.Returned,
			Rank:                r.Rank,
			DurationMS:          r.ProcessingTime.Milliseconds(),
			Error:               r.Error,
		})
	}
	return spec
}

// MetricsResults converts the YAML rows back for aggregation
func (s *EvalSpec) MetricsResults() []metrics.EvaluationResult {
	out := make([]metrics.EvaluationResult, 0, len(s.Results))
	for _, r := range s.Results {
		out = append(out, metrics.EvaluationResult{
			ID:                  r.Identifier,
			Mode:                r.Mode,
			Input:               r.Input,
			ExpectedID:          r.ExpectedID,
			ExpectedTitle:       r.ExpectedTitle,
			Candidate:           r.Candidate,
			Source:              models.Source(r.Source),
			Confidence:          r.Confidence,
			CandidateSimilarity: r.CandidateSimilarity,
			TopID:               r.TopID,
			TopTitle:            r.TopTitle,
			TopScore:            r.TopScore,
			TopTier:             models.MatchTier(r.TopTier),
			Returned:            r.Returned,
			Rank:                r.Rank,
			ProcessingTime:      time.Duration(r.DurationMS) * time.Millisecond,
			Error:               r.Error,
		})
	}
	return out
}

// Aggregate recomputes the summary metrics of a saved run
func (s *EvalSpec) Aggregate() *metrics.AggregateResults {
	agg := metrics.AggregateEvaluationResults(s.MetricsResults(), s.Config.Providers, s.Config.K)
	if ts, err := time.ParseInLocation("2006-01-02_15-04-05", s.Config.Timestamp, time.Local); err == nil {
		agg.EvaluationDate = ts
	}
	return agg
}

// SaveToYAML writes the run to dir (DefaultDir when empty) and returns the file path
func SaveToYAML(dir string, spec *EvalSpec) (string, error) {
	if dir == "" {
		dir = DefaultDir
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create evals directory: %w", err)
	}

	name := "heuristic"
	if len(spec.Config.Providers) > 0 {
		name = strings.Join(spec.Config.Providers, "+")
	}
	filename := filepath.Join(dir, fmt.Sprintf("%s-%s.yaml", sanitize(name), spec.Config.Timestamp))

	data, err := yaml.Marshal(spec)
	if err != nil {
		return "", fmt.Errorf("failed to marshal YAML: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write YAML file: %w", err)
	}

	return filename, nil
}

// SaveToParquet writes the per-sample rows of a run to path, one row per
// sample, for loading into notebooks or DuckDB.
func SaveToParquet(path string, spec *EvalSpec) error {
	if err := records.WriteParquet(path, spec.Results); err != nil {
		return fmt.Errorf("failed to save results as parquet: %w", err)
	}
	return nil
}

// LoadFromYAML reads a run written by SaveToYAML
func LoadFromYAML(path string) (*EvalSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read YAML file: %w", err)
	}

	var spec EvalSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("failed to parse YAML file %s: %w", path, err)
	}
	return &spec, nil
}

// sanitize keeps model and provider names safe for a file name
func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', ' ':
			return '_'
		}
		return r
	}, s)
}
