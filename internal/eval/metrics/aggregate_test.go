package metrics

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lehigh-university-libraries/bookresolver/internal/models"
)

func sampleResults() []EvaluationResult {
	return []EvaluationResult{
		{
			ID:                  "a",
			Mode:                "resolve",
			Input:               "GONE GIRL Gillian Flynn",
			ExpectedID:          "2",
			ExpectedTitle:       "Gone Girl",
			Candidate:           "Gone Girl",
			Source:              models.SourceHeuristic,
			Confidence:          0.5,
			CandidateSimilarity: 1.0,
			TopID:               "2",
			TopScore:            1.0,
			TopTier:             models.TierExact,
			Returned:            1,
			Rank:                1,
			ProcessingTime:      5 * time.Second,
		},
		{
			ID:             "b",
			Mode:           "search",
			Input:          "dun",
			ExpectedTitle:  "Dune",
			TopID:          "9",
			TopScore:       0.8,
			TopTier:        models.TierFuzzy,
			Returned:       3,
			Rank:           2,
			ProcessingTime: 3 * time.Second,
		},
		{
			ID:             "c",
			Mode:           "search",
			Input:          "zzz",
			ExpectedID:     "1",
			ProcessingTime: 1 * time.Second,
		},
		{
			ID:             "d",
			Mode:           "resolve",
			Error:          "failed to load catalog",
			ProcessingTime: 1 * time.Second,
		},
	}
}

func TestAggregateEvaluationResults(t *testing.T) {
	agg := AggregateEvaluationResults(sampleResults(), []string{"gemini", "ollama"}, 5)

	if agg.TotalRecords != 4 {
		t.Errorf("Expected TotalRecords=4, got %d", agg.TotalRecords)
	}
	if agg.SuccessCount != 3 {
		t.Errorf("Expected SuccessCount=3, got %d", agg.SuccessCount)
	}
	if agg.FailureCount != 1 {
		t.Errorf("Expected FailureCount=1, got %d", agg.FailureCount)
	}

	if agg.HitAt1 != 1 || agg.HitAtK != 2 {
		t.Errorf("Expected hit@1=1 hit@k=2, got %d and %d", agg.HitAt1, agg.HitAtK)
	}
	if agg.NoMatch != 1 {
		t.Errorf("Expected NoMatch=1, got %d", agg.NoMatch)
	}

	tolerance := 1e-9
	if math.Abs(agg.Accuracy-1.0/3.0) > tolerance {
		t.Errorf("Expected Accuracy=0.333, got %.3f", agg.Accuracy)
	}
	if math.Abs(agg.MRR-(1.0+0.5)/3.0) > tolerance {
		t.Errorf("Expected MRR=0.5, got %.3f", agg.MRR)
	}
	if math.Abs(agg.AvgTopScore-0.9) > tolerance {
		t.Errorf("Expected AvgTopScore=0.9, got %.3f", agg.AvgTopScore)
	}
	if agg.AvgCandidate != 1.0 {
		t.Errorf("Expected AvgCandidate=1.0, got %.3f", agg.AvgCandidate)
	}

	if agg.Tiers[models.TierExact] != 1 || agg.Tiers[models.TierFuzzy] != 1 {
		t.Errorf("Unexpected tier histogram: %v", agg.Tiers)
	}
	if agg.Sources[models.SourceHeuristic] != 1 {
		t.Errorf("Unexpected source histogram: %v", agg.Sources)
	}
	if agg.Modes["resolve"] != 2 || agg.Modes["search"] != 2 {
		t.Errorf("Unexpected mode histogram: %v", agg.Modes)
	}

	if agg.TotalProcessingTime != 10*time.Second {
		t.Errorf("Expected TotalProcessingTime=10s, got %s", agg.TotalProcessingTime)
	}
	if agg.AverageProcessingTime != 3*time.Second {
		t.Errorf("Expected AverageProcessingTime=3s, got %s", agg.AverageProcessingTime)
	}
}

func TestAggregateDefaultsK(t *testing.T) {
	agg := AggregateEvaluationResults(nil, nil, 0)
	if agg.K != DefaultK {
		t.Errorf("Expected K=%d, got %d", DefaultK, agg.K)
	}
	if agg.Accuracy != 0 || agg.MRR != 0 {
		t.Errorf("Expected zero metrics for no samples, got %+v", agg)
	}
}

func TestRankOf(t *testing.T) {
	hits := []Hit{
		{ID: "1", Title: "Dune Messiah"},
		{ID: "2", Title: "Dune"},
		{ID: "3", Title: "Children of Dune"},
	}

	tests := []struct {
		name          string
		expectedID    string
		expectedTitle string
		want          int
	}{
		{"by id", "3", "", 3},
		{"id wins over title", "1", "Dune", 1},
		{"by title ignoring case and spacing", "", "  dune ", 2},
		{"missing id", "7", "Dune", 0},
		{"nothing expected", "", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RankOf(tt.expectedID, tt.expectedTitle, hits); got != tt.want {
				t.Errorf("RankOf(%q, %q) = %d, want %d", tt.expectedID, tt.expectedTitle, got, tt.want)
			}
		})
	}
}

func TestCandidateSimilarity(t *testing.T) {
	if got := CandidateSimilarity("GONE  GIRL", "Gone Girl"); got != 1.0 {
		t.Errorf("Expected 1.0, got %.3f", got)
	}
	if got := CandidateSimilarity("Dune", ""); got != 0 {
		t.Errorf("Expected 0 without a label, got %.3f", got)
	}
}

func TestCalculateAverage(t *testing.T) {
	tests := []struct {
		name     string
		scores   []float64
		expected float64
	}{
		{
			name:     "normal scores",
			scores:   []float64{0.5, 0.75, 1.0},
			expected: 0.75,
		},
		{
			name:     "empty scores",
			scores:   []float64{},
			expected: 0.0,
		},
		{
			name:     "single score",
			scores:   []float64{0.75},
			expected: 0.75,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := calculateAverage(tt.scores)
			if result != tt.expected {
				t.Errorf("calculateAverage(%v) = %.2f, want %.2f",
					tt.scores, result, tt.expected)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("Middlemarch", 20); got != "Middlemarch" {
		t.Errorf("Expected untouched string, got %q", got)
	}
	if got := Truncate("Middlemarch", 8); got != "Middl..." {
		t.Errorf("Expected Middl..., got %q", got)
	}
	if got := Truncate("Ça ira", 3); got != "Ça " {
		t.Errorf("Expected rune-safe cut, got %q", got)
	}
}

func TestSaveToJSON(t *testing.T) {
	agg := AggregateEvaluationResults(sampleResults(), []string{"ollama"}, 5)

	path := filepath.Join(t.TempDir(), "results.json")
	if err := agg.SaveToJSON(path); err != nil {
		t.Fatalf("SaveToJSON failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read JSON file: %v", err)
	}

	var decoded AggregateResults
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Failed to decode JSON: %v", err)
	}
	if decoded.HitAt1 != agg.HitAt1 || len(decoded.Results) != len(agg.Results) {
		t.Errorf("Decoded results differ: %+v", decoded)
	}
}

func TestSaveDetailedReport(t *testing.T) {
	agg := AggregateEvaluationResults(sampleResults(), nil, 5)

	path := filepath.Join(t.TempDir(), "report.txt")
	if err := agg.SaveDetailedReport(path); err != nil {
		t.Fatalf("SaveDetailedReport failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read report file: %v", err)
	}
	report := string(data)

	for _, want := range []string{
		"BOOKRESOLVER EVALUATION DETAILED REPORT",
		"none (heuristic only)",
		"SAMPLE 1: a (resolve)",
		"Expected Rank: 2",
		"Expected Rank: not found",
		"ERROR: failed to load catalog",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("Report missing %q", want)
		}
	}
}
