package metrics

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/bookresolver/internal/models"
)

// DefaultK is the cutoff used for hit@k
const DefaultK = 5

// EvaluationResult represents the outcome for a single labelled sample
type EvaluationResult struct {
	ID            string `json:"id"`
	Mode          string `json:"mode"`
	Input         string `json:"input"`
	ExpectedID    string `json:"expected_id,omitempty"`
	ExpectedTitle string `json:"expected_title,omitempty"`

	// resolve mode only
	Candidate           string        `json:"candidate,omitempty"`
	Source              models.Source `json:"source,omitempty"`
	Confidence          float64       `json:"confidence,omitempty"`
	CandidateSimilarity float64       `json:"candidate_similarity,omitempty"`

	TopID    string           `json:"top_id,omitempty"`
	TopTitle string           `json:"top_title,omitempty"`
	TopScore float64          `json:"top_score"`
	TopTier  models.MatchTier `json:"top_tier,omitempty"`
	Returned int              `json:"returned"`

	// Rank is the 1-based position of the expected entry, 0 when missing
	Rank int `json:"rank"`

	ProcessingTime time.Duration `json:"processing_time"`
	Error          string        `json:"error,omitempty"`
}

// AggregateResults represents aggregated evaluation metrics
type AggregateResults struct {
	TotalRecords int `json:"total_records"`
	SuccessCount int `json:"success_count"`
	FailureCount int `json:"failure_count"`

	K            int     `json:"k"`
	HitAt1       int     `json:"hit_at_1"`
	HitAtK       int     `json:"hit_at_k"`
	NoMatch      int     `json:"no_match"`
	Accuracy     float64 `json:"accuracy"`
	AccuracyAtK  float64 `json:"accuracy_at_k"`
	MRR          float64 `json:"mrr"`
	AvgTopScore  float64 `json:"avg_top_score"`
	AvgCandidate float64 `json:"avg_candidate_similarity"`

	// Tiers counts the tier of the top result of each sample
	Tiers map[models.MatchTier]int `json:"tiers"`
	// Sources counts where resolve candidates came from
	Sources map[models.Source]int `json:"sources"`
	// Modes counts samples per pipeline entry point
	Modes map[string]int `json:"modes"`

	AverageProcessingTime time.Duration `json:"average_processing_time"`
	TotalProcessingTime   time.Duration `json:"total_processing_time"`

	Results []EvaluationResult `json:"results"`

	EvaluationDate time.Time `json:"evaluation_date"`
	Providers      []string  `json:"providers"`
	SampleSize     int       `json:"sample_size"`
}

// AggregateEvaluationResults aggregates per-sample results. Failed samples
// count toward TotalRecords but not toward any accuracy figure.
func AggregateEvaluationResults(results []EvaluationResult, providers []string, k int) *AggregateResults {
	if k <= 0 {
		k = DefaultK
	}

	agg := &AggregateResults{
		TotalRecords:   len(results),
		K:              k,
		Tiers:          make(map[models.MatchTier]int),
		Sources:        make(map[models.Source]int),
		Modes:          make(map[string]int),
		Results:        results,
		EvaluationDate: time.Now(),
		Providers:      providers,
		SampleSize:     len(results),
	}

	var (
		reciprocal      float64
		topScores       []float64
		candidateScores []float64
		totalDuration   time.Duration
		successDuration time.Duration
	)

	for _, result := range results {
		totalDuration += result.ProcessingTime
		agg.Modes[result.Mode]++

		if result.Error != "" {
			agg.FailureCount++
			continue
		}

		agg.SuccessCount++
		successDuration += result.ProcessingTime

		if result.Source != "" {
			agg.Sources[result.Source]++
		}
		if result.ExpectedTitle != "" && result.Mode == "resolve" {
			candidateScores = append(candidateScores, result.CandidateSimilarity)
		}

		if result.Returned == 0 {
			agg.NoMatch++
		} else {
			agg.Tiers[result.TopTier]++
			topScores = append(topScores, result.TopScore)
		}

		switch {
		case result.Rank == 1:
			agg.HitAt1++
			agg.HitAtK++
		case result.Rank > 1 && result.Rank <= k:
			agg.HitAtK++
		}
		reciprocal += ReciprocalRank(result.Rank)
	}

	if agg.SuccessCount > 0 {
		n := float64(agg.SuccessCount)
		agg.Accuracy = float64(agg.HitAt1) / n
		agg.AccuracyAtK = float64(agg.HitAtK) / n
		agg.MRR = reciprocal / n
		agg.AverageProcessingTime = successDuration / time.Duration(agg.SuccessCount)
	}
	agg.AvgTopScore = calculateAverage(topScores)
	agg.AvgCandidate = calculateAverage(candidateScores)
	agg.TotalProcessingTime = totalDuration

	return agg
}

// calculateAverage calculates the average of a slice of scores
func calculateAverage(scores []float64) float64 {
	if len(scores) == 0 {
		return 0.0
	}

	sum := 0.0
	for _, score := range scores {
		sum += score
	}

	return sum / float64(len(scores))
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

// PrintSummary prints a human-readable summary of the evaluation
func (a *AggregateResults) PrintSummary() {
	a.WriteSummary(os.Stdout)
}

// WriteSummary writes the PrintSummary text to w
func (a *AggregateResults) WriteSummary(w io.Writer) {
	fmt.Fprintln(w, "\n"+strings.Repeat("=", 70))
	fmt.Fprintln(w, "BOOKRESOLVER EVALUATION SUMMARY")
	fmt.Fprintln(w, strings.Repeat("=", 70))
	fmt.Fprintf(w, "Evaluation Date: %s\n", a.EvaluationDate.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Providers: %s\n", providerList(a.Providers))
	fmt.Fprintf(w, "Sample Size: %d samples\n", a.SampleSize)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "PROCESSING STATISTICS")
	fmt.Fprintln(w, strings.Repeat("-", 70))
	fmt.Fprintf(w, "Total Samples: %d\n", a.TotalRecords)
	fmt.Fprintf(w, "Successful: %d (%.1f%%)\n", a.SuccessCount, percent(a.SuccessCount, a.TotalRecords))
	fmt.Fprintf(w, "Failed: %d (%.1f%%)\n", a.FailureCount, percent(a.FailureCount, a.TotalRecords))
	printCounts(w, "Modes", a.Modes)
	fmt.Fprintf(w, "Average Processing Time: %s\n", a.AverageProcessingTime)
	fmt.Fprintf(w, "Total Processing Time: %s\n", a.TotalProcessingTime)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "RANKING")
	fmt.Fprintln(w, strings.Repeat("-", 70))
	fmt.Fprintf(w, "Hit@1: %d (%.2f%%)\n", a.HitAt1, a.Accuracy*100)
	fmt.Fprintf(w, "Hit@%d: %d (%.2f%%)\n", a.K, a.HitAtK, a.AccuracyAtK*100)
	fmt.Fprintf(w, "Mean Reciprocal Rank: %.3f\n", a.MRR)
	fmt.Fprintf(w, "No Match Returned: %d\n", a.NoMatch)
	fmt.Fprintf(w, "Average Top Score: %.3f\n", a.AvgTopScore)
	printCounts(w, "Top Match Tiers", a.Tiers)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "EXTRACTION")
	fmt.Fprintln(w, strings.Repeat("-", 70))
	fmt.Fprintf(w, "Average Candidate Similarity: %.3f\n", a.AvgCandidate)
	printCounts(w, "Candidate Sources", a.Sources)
	fmt.Fprintln(w, strings.Repeat("=", 70))
}

func providerList(providers []string) string {
	if len(providers) == 0 {
		return "none (heuristic only)"
	}
	return strings.Join(providers, ", ")
}

// printCounts prints a histogram with keys in sorted order
func printCounts[K ~string](w io.Writer, name string, counts map[K]int) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)

	fmt.Fprintf(w, "%s:\n", name)
	if len(keys) == 0 {
		fmt.Fprintln(w, "  (none)")
	}
	for _, k := range keys {
		fmt.Fprintf(w, "  %s: %d\n", k, counts[K(k)])
	}
}

// SaveToJSON saves the aggregate results to a JSON file
func (a *AggregateResults) SaveToJSON(filepath string) error {
	file, err := os.Create(filepath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(a); err != nil {
		return fmt.Errorf("failed to encode results to JSON: %w", err)
	}

	return nil
}

// SaveDetailedReport saves a detailed report with individual results
func (a *AggregateResults) SaveDetailedReport(filepath string) error {
	file, err := os.Create(filepath)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	fmt.Fprintf(file, "BOOKRESOLVER EVALUATION DETAILED REPORT\n")
	fmt.Fprintf(file, "Generated: %s\n", a.EvaluationDate.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(file, "Providers: %s\n", providerList(a.Providers))
	separator := strings.Repeat("=", 80)
	fmt.Fprintf(file, "%s\n\n", separator)

	dash := strings.Repeat("-", 80)
	for i, result := range a.Results {
		fmt.Fprintf(file, "SAMPLE %d: %s (%s)\n", i+1, result.ID, result.Mode)
		fmt.Fprintf(file, "%s\n", dash)
		fmt.Fprintf(file, "Input: %s\n", Truncate(result.Input, 120))
		fmt.Fprintf(file, "Expected: id=%q title=%q\n", result.ExpectedID, result.ExpectedTitle)
		fmt.Fprintf(file, "Processing Time: %s\n", result.ProcessingTime)

		if result.Error != "" {
			fmt.Fprintf(file, "ERROR: %s\n", result.Error)
			fmt.Fprintf(file, "\n%s\n\n", separator)
			continue
		}

		if result.Mode == "resolve" {
			fmt.Fprintf(file, "Candidate: %q (source %s, confidence %.2f, similarity to expected %.2f)\n",
				result.Candidate, result.Source, result.Confidence, result.CandidateSimilarity)
		}
		if result.Returned == 0 {
			fmt.Fprintf(file, "Top Match: none\n")
		} else {
			fmt.Fprintf(file, "Top Match: %s %q score %.3f (%s), %d returned\n",
				result.TopID, result.TopTitle, result.TopScore, result.TopTier, result.Returned)
		}
		if result.Rank > 0 {
			fmt.Fprintf(file, "Expected Rank: %d\n", result.Rank)
		} else {
			fmt.Fprintf(file, "Expected Rank: not found\n")
		}

		fmt.Fprintf(file, "\n%s\n\n", separator)
	}

	return nil
}

// Truncate shortens s to at most maxLen runes, marking the cut with "..."
func Truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
