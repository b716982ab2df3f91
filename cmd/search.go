package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/lehigh-university-libraries/bookresolver/internal/config"
	"github.com/lehigh-university-libraries/bookresolver/internal/models"
	"github.com/spf13/cobra"
)

func newSearchCmd() *cobra.Command {
	var asJSON bool
	var cat catalogFlags

	cmd := &cobra.Command{
		Use:   "search QUERY",
		Short: "Fuzzy search the catalog by title or author",
		Example: `  bookresolver search "romio and juliet" --catalog books.db
  bookresolver search herbert --catalog books.jsonl --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			res, err := cfg.NewResolver(slog.Default())
			if err != nil {
				return err
			}

			src, err := cat.open()
			if err != nil {
				return err
			}
			entries, err := src.Entries(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to load catalog: %w", err)
			}

			results := res.Search(strings.Join(args, " "), entries)
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), results)
			}
			printSearchResults(cmd.OutOrStdout(), results)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print results as JSON")
	cat.register(cmd)

	return cmd
}

func printSearchResults(w io.Writer, results []models.FuzzySearchResult) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No results")
		return
	}
	for i, r := range results {
		fmt.Fprintf(w, "%d. [%s] %s", i+1, r.Entry.ID, r.Entry.Title)
		if r.Entry.Author != "" {
			fmt.Fprintf(w, " by %s", r.Entry.Author)
		}
		fmt.Fprintf(w, "  %.3f (%s)\n", r.Score, r.MatchTier)
	}
}
