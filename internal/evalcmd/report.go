package evalcmd

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/lehigh-university-libraries/bookresolver/internal/eval/metrics"
	"github.com/lehigh-university-libraries/bookresolver/internal/eval/results"
)

func executeReport(resultsPath, format string, w io.Writer) error {
	spec, err := results.LoadFromYAML(resultsPath)
	if err != nil {
		return fmt.Errorf("failed to load results: %w", err)
	}
	agg := spec.Aggregate()

	switch format {
	case "text":
		return printTextReport(spec, agg, w)
	case "json":
		return printJSONReport(agg, w)
	case "csv":
		return printCSVReport(agg, w)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func printTextReport(spec *results.EvalSpec, agg *metrics.AggregateResults, w io.Writer) error {
	fmt.Fprintln(w, "========================================")
	fmt.Fprintf(w, "Title Resolution Evaluation Report\n")
	fmt.Fprintln(w, "========================================")
	fmt.Fprintf(w, "Dataset:  %s\n", spec.Config.DatasetPath)
	fmt.Fprintf(w, "Catalog:  %s\n", spec.Config.Catalog)
	fmt.Fprintf(w, "Run:      %s\n", spec.Config.Timestamp)

	agg.WriteSummary(w)

	fmt.Fprintln(w, "\nDetailed Results:")
	fmt.Fprintln(w, "========================================")

	for i, result := range agg.Results {
		fmt.Fprintf(w, "\n[%d] Sample ID: %s (%s)\n", i+1, result.ID, result.Mode)

		if result.Error != "" {
			fmt.Fprintf(w, "  ❌ Error: %s\n", result.Error)
			continue
		}

		if result.Mode == "resolve" {
			fmt.Fprintf(w, "  Candidate: %q via %s\n", result.Candidate, result.Source)
		} else {
			fmt.Fprintf(w, "  Query: %q\n", metrics.Truncate(result.Input, 80))
		}

		switch {
		case result.Rank == 1:
			fmt.Fprintf(w, "  ✅ Top match %s %q (%.2f, %s)\n", result.TopID, result.TopTitle, result.TopScore, result.TopTier)
		case result.Rank > 1:
			fmt.Fprintf(w, "  ⚠️ Expected entry at rank %d, top was %s %q\n", result.Rank, result.TopID, result.TopTitle)
		case result.Returned == 0:
			fmt.Fprintf(w, "  ❌ No matches returned\n")
		default:
			fmt.Fprintf(w, "  ❌ Expected entry not returned, top was %s %q\n", result.TopID, result.TopTitle)
		}
	}

	return nil
}

func printJSONReport(agg *metrics.AggregateResults, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(agg)
}

func printCSVReport(agg *metrics.AggregateResults, w io.Writer) error {
	writer := csv.NewWriter(w)

	header := []string{"ID", "Mode", "Expected ID", "Expected Title", "Candidate", "Source", "Top ID", "Top Score", "Top Tier", "Returned", "Rank", "Duration MS", "Error"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, result := range agg.Results {
		row := []string{
			result.ID,
			result.Mode,
			result.ExpectedID,
			result.ExpectedTitle,
			result.Candidate,
			string(result.Source),
			result.TopID,
			fmt.Sprintf("%.4f", result.TopScore),
			string(result.TopTier),
			strconv.Itoa(result.Returned),
			strconv.Itoa(result.Rank),
			strconv.FormatInt(result.ProcessingTime.Milliseconds(), 10),
			result.Error,
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}
