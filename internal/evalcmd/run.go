package evalcmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lehigh-university-libraries/bookresolver/internal/catalog"
	"github.com/lehigh-university-libraries/bookresolver/internal/config"
	"github.com/lehigh-university-libraries/bookresolver/internal/eval/dataset"
	"github.com/lehigh-university-libraries/bookresolver/internal/eval/metrics"
	"github.com/lehigh-university-libraries/bookresolver/internal/eval/results"
	"github.com/lehigh-university-libraries/bookresolver/internal/models"
	"github.com/lehigh-university-libraries/bookresolver/internal/resolver"
	"golang.org/x/sync/errgroup"
)

// maxStoredInput bounds the input text kept per result row
const maxStoredInput = 200

// RunOptions collects the flags of `eval run`
type RunOptions struct {
	DatasetPath   string
	Format        dataset.Format
	SampleSize    int
	Catalog       string
	CatalogType   string
	APIKey        string
	Thresholds    string
	K             int
	Concurrency   int
	RPS           float64
	OutputDir     string
	OutputJSON    string
	OutputReport  string
	OutputParquet string
}

// Runner evaluates samples against one catalog snapshot
type Runner struct {
	resolver    *resolver.Resolver
	concurrency int
}

// NewRunner returns a runner evaluating at most concurrency samples at once
func NewRunner(r *resolver.Resolver, concurrency int) *Runner {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Runner{resolver: r, concurrency: concurrency}
}

// Run evaluates every sample and returns results in sample order. A
// cancelled context stops scheduling new samples and Run reports it.
func (r *Runner) Run(ctx context.Context, samples []dataset.Sample, entries []models.CatalogEntry) ([]metrics.EvaluationResult, error) {
	out := make([]metrics.EvaluationResult, len(samples))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for i, s := range samples {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			slog.Debug("Processing sample", "id", s.ID, "progress", fmt.Sprintf("%d/%d", i+1, len(samples)))
			out[i] = r.evaluate(gctx, s, entries)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("evaluation interrupted: %w", err)
	}
	return out, nil
}

func (r *Runner) evaluate(ctx context.Context, s dataset.Sample, entries []models.CatalogEntry) metrics.EvaluationResult {
	start := time.Now()
	mode := s.Mode()

	result := metrics.EvaluationResult{
		ID:            s.ID,
		Mode:          string(mode),
		Input:         metrics.Truncate(s.Input(), maxStoredInput),
		ExpectedID:    s.ExpectedID,
		ExpectedTitle: s.ExpectedTitle,
	}

	var hits []metrics.Hit
	switch mode {
	case dataset.ModeSearch:
		found := r.resolver.Search(s.Query, entries)
		for _, f := range found {
			hits = append(hits, metrics.Hit{ID: f.Entry.ID, Title: f.Entry.Title})
		}
		if len(found) > 0 {
			result.TopScore = found[0].Score
			result.TopTier = found[0].MatchTier
		}
	default:
		res := r.resolver.ResolveDetailed(ctx, s.Text, entries)
		result.Candidate = res.Candidate
		result.Source = res.Source
		if res.Source != models.SourceHeuristic {
			result.Confidence = res.Extraction.Confidence
		}
		result.CandidateSimilarity = metrics.CandidateSimilarity(res.Candidate, s.ExpectedTitle)
		for _, m := range res.Matches {
			hits = append(hits, metrics.Hit{ID: m.EntryID, Title: m.Title})
		}
		if len(res.Matches) > 0 {
			result.TopScore = res.Matches[0].Similarity
			result.TopTier = res.Matches[0].MatchTier
		}
	}

	result.Returned = len(hits)
	if len(hits) > 0 {
		result.TopID = hits[0].ID
		result.TopTitle = hits[0].Title
	}
	result.Rank = metrics.RankOf(s.ExpectedID, s.ExpectedTitle, hits)
	result.ProcessingTime = time.Since(start)

	if err := ctx.Err(); err != nil {
		result.Error = err.Error()
	}

	slog.Debug("Sample evaluated",
		"id", s.ID,
		"mode", mode,
		"candidate", result.Candidate,
		"top_id", result.TopID,
		"rank", result.Rank,
		"duration", result.ProcessingTime)

	return result
}

func executeRun(ctx context.Context, opts RunOptions) error {
	slog.Info("Starting evaluation run",
		"dataset", opts.DatasetPath,
		"format", opts.Format,
		"catalog", opts.Catalog,
		"concurrency", opts.Concurrency)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if opts.Thresholds != "" {
		cfg.ThresholdsPath = opts.Thresholds
	}
	if opts.RPS > 0 {
		cfg.ProviderRPS = opts.RPS
	}

	thresholds, err := cfg.Thresholds()
	if err != nil {
		return err
	}
	res, err := cfg.NewResolver(slog.Default())
	if err != nil {
		return err
	}

	samples, err := dataset.NewLoader(opts.DatasetPath, opts.Format).LoadSample(opts.SampleSize)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("no usable samples in %s", opts.DatasetPath)
	}
	slog.Info("Dataset loaded", "samples", len(samples))

	src, err := catalog.Open(opts.CatalogType, opts.Catalog, opts.APIKey)
	if err != nil {
		return err
	}
	entries, err := src.Entries(ctx)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	slog.Info("Catalog loaded", "entries", len(entries))

	rows, err := NewRunner(res, opts.Concurrency).Run(ctx, samples, entries)
	if err != nil {
		return err
	}

	providerNames := cfg.Registry().Configured()
	agg := metrics.AggregateEvaluationResults(rows, providerNames, opts.K)
	agg.PrintSummary()

	if opts.OutputJSON != "" {
		if err := agg.SaveToJSON(opts.OutputJSON); err != nil {
			slog.Warn("Failed to save JSON results", "err", err)
		} else {
			fmt.Printf("\nResults saved to: %s\n", opts.OutputJSON)
		}
	}
	if opts.OutputReport != "" {
		if err := agg.SaveDetailedReport(opts.OutputReport); err != nil {
			slog.Warn("Failed to save detailed report", "err", err)
		} else {
			fmt.Printf("Detailed report saved to: %s\n", opts.OutputReport)
		}
	}

	spec := results.NewEvalSpec(results.EvalConfig{
		Providers:     providerNames,
		Catalog:       opts.Catalog,
		DatasetPath:   opts.DatasetPath,
		SampleSize:    len(samples),
		K:             agg.K,
		MinConfidence: cfg.MinConfidence,
		Thresholds:    thresholds,
	}, rows)
	path, err := results.SaveToYAML(opts.OutputDir, spec)
	if err != nil {
		return err
	}

	fmt.Printf("\nEvaluation run saved to: %s\n", path)
	if opts.OutputParquet != "" {
		if err := results.SaveToParquet(opts.OutputParquet, spec); err != nil {
			slog.Warn("Failed to save parquet results", "err", err)
		} else {
			fmt.Printf("Parquet rows saved to: %s\n", opts.OutputParquet)
		}
	}
	fmt.Printf("\nGenerate a report with:\n")
	fmt.Printf("  bookresolver eval report --results %s\n", path)

	return nil
}
