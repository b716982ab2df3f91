// Package evalcmd implements the `eval` subcommands: running labelled
// samples through the resolver, reporting on saved runs and inspecting
// datasets.
package evalcmd

import (
	"fmt"
	"os"

	"github.com/lehigh-university-libraries/bookresolver/internal/catalog"
	"github.com/lehigh-university-libraries/bookresolver/internal/eval/dataset"
	"github.com/lehigh-university-libraries/bookresolver/internal/eval/metrics"
	"github.com/lehigh-university-libraries/bookresolver/internal/eval/results"
	"github.com/spf13/cobra"
)

// NewRunCmd creates the run command
func NewRunCmd() *cobra.Command {
	var opts RunOptions
	var format string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Evaluate title resolution against labelled samples",
		Long: `Run every sample of a dataset through the resolver and score the ranked
matches against the expected catalog entry.

A sample with "text" runs the full pipeline (AI extraction with heuristic
fallback, then catalog matching). A sample with "query" runs fuzzy search.
Samples name the right answer with "expected_id" or "expected_title".

Results are summarised on stdout and saved as YAML under --output-dir.`,
		Example: `  # Evaluate a JSONL sample file against a catalog export
  bookresolver eval run --dataset samples.jsonl --catalog catalog.parquet

  # Try tighter thresholds with 8 samples in flight, 2 provider calls per second
  bookresolver eval run --dataset samples.jsonl --catalog books.db \
    --thresholds strict.yaml --concurrency 8 --rps 2

  # Use Institutional Books title pages
  bookresolver eval run --dataset train-00000-of-09831.parquet --format ib \
    --catalog ib-catalog.jsonl --sample 100`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(opts.DatasetPath); os.IsNotExist(err) {
				return fmt.Errorf("dataset file not found: %s", opts.DatasetPath)
			}
			opts.Format = dataset.Format(format)
			return executeRun(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.DatasetPath, "dataset", "", "Path to a .json, .jsonl or .parquet dataset (required)")
	cmd.Flags().StringVar(&format, "format", string(dataset.FormatSamples), "Dataset row schema (samples or ib)")
	cmd.Flags().IntVar(&opts.SampleSize, "sample", -1, "Number of samples to evaluate (-1 for all)")
	cmd.Flags().StringVar(&opts.Catalog, "catalog", "", "Catalog location: URL, .db/.sqlite file or .json/.jsonl/.parquet export (required)")
	cmd.Flags().StringVar(&opts.CatalogType, "catalog-type", catalog.KindAuto, "Catalog kind (auto, library, vufind, file, sqlite)")
	cmd.Flags().StringVar(&opts.APIKey, "api-key", os.Getenv("CATALOG_API_KEY"), "API key sent to an HTTP catalog")
	cmd.Flags().StringVar(&opts.Thresholds, "thresholds", "", "YAML file overriding matcher thresholds")
	cmd.Flags().IntVar(&opts.K, "k", metrics.DefaultK, "Cutoff for hit@k")
	cmd.Flags().IntVar(&opts.Concurrency, "concurrency", 4, "Samples evaluated at once")
	cmd.Flags().Float64Var(&opts.RPS, "rps", 0, "Provider calls per second across all samples (0 uses PROVIDER_RPS)")
	cmd.Flags().StringVar(&opts.OutputDir, "output-dir", results.DefaultDir, "Directory for the YAML run file")
	cmd.Flags().StringVar(&opts.OutputJSON, "output-json", "", "Optional path for JSON results")
	cmd.Flags().StringVar(&opts.OutputReport, "output-report", "", "Optional path for a detailed text report")
	cmd.Flags().StringVar(&opts.OutputParquet, "output-parquet", "", "Optional path for per-sample rows as Parquet")

	_ = cmd.MarkFlagRequired("dataset")
	_ = cmd.MarkFlagRequired("catalog")

	return cmd
}

// NewReportCmd creates the report command
func NewReportCmd() *cobra.Command {
	var resultsPath string
	var format string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Report on a saved evaluation run",
		Long: `Reload a YAML run written by "eval run", recompute its metrics and print
them as text, JSON or CSV.`,
		Example: `  bookresolver eval report --results evals/gemini-2026-01-02_03-04-05.yaml
  bookresolver eval report --results evals/heuristic-2026-01-02_03-04-05.yaml --format csv > run.csv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return executeReport(resultsPath, format, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&resultsPath, "results", "", "Path to a YAML run file (required)")
	cmd.Flags().StringVar(&format, "format", "text", "Output format (text, json, csv)")

	_ = cmd.MarkFlagRequired("results")

	return cmd
}

// NewInspectCmd creates the inspect command
func NewInspectCmd() *cobra.Command {
	var opts inspectOptions
	var format string

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Inspect dataset samples",
		Long: `Print samples from a dataset file, optionally with the heuristic
candidate each resolve sample would produce without any AI provider.`,
		Example: `  # Inspect first 5 samples interactively
  bookresolver eval inspect --dataset samples.jsonl --limit 5 --interactive

  # Show heuristic candidates for Institutional Books title pages
  bookresolver eval inspect --dataset train.parquet --format ib --heuristic --text=false`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.format = dataset.Format(format)
			return executeInspect(cmd.Context(), opts, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.datasetPath, "dataset", "", "Path to a .json, .jsonl or .parquet dataset (required)")
	cmd.Flags().StringVar(&format, "format", string(dataset.FormatSamples), "Dataset row schema (samples or ib)")
	cmd.Flags().IntVar(&opts.limit, "limit", 10, "Number of samples to inspect (0 for all)")
	cmd.Flags().BoolVar(&opts.interactive, "interactive", false, "Pause after each sample (press Enter to continue)")
	cmd.Flags().BoolVar(&opts.showText, "text", true, "Show the input text")
	cmd.Flags().BoolVar(&opts.heuristic, "heuristic", false, "Show the heuristic candidate for resolve samples")

	_ = cmd.MarkFlagRequired("dataset")

	return cmd
}
