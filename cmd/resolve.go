package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/lehigh-university-libraries/bookresolver/internal/config"
	"github.com/lehigh-university-libraries/bookresolver/internal/resolver"
	"github.com/spf13/cobra"
)

func newResolveCmd() *cobra.Command {
	var text string
	var file string
	var asJSON bool
	var cat catalogFlags

	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve OCR text to ranked catalog matches",
		Long: `Extracts a title from OCR text and prints the best matching catalog
entries. Text is read from --text, --file, or stdin.`,
		Example: `  # Resolve a cover scan against a catalog export
  bookresolver resolve --text "GONE GIRL a novel Gillian Flynn" --catalog books.jsonl

  # Pipe OCR output in and get JSON back
  tesseract cover.png - | bookresolver resolve --catalog http://localhost:3000 --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(text, file, cmd.InOrStdin())
			if err != nil {
				return err
			}

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

			out := res.ResolveDetailed(cmd.Context(), raw, entries)
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), out)
			}
			printResolution(cmd.OutOrStdout(), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&text, "text", "", "OCR text to resolve")
	cmd.Flags().StringVarP(&file, "file", "f", "", "Read OCR text from this file (- for stdin)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the resolution as JSON")
	cat.register(cmd)

	return cmd
}

// readInput picks --text, then --file, then stdin
func readInput(text, file string, stdin io.Reader) (string, error) {
	var raw string
	switch {
	case text != "":
		raw = text
	case file != "" && file != "-":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("failed to read input file: %w", err)
		}
		raw = string(data)
	default:
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		raw = string(data)
	}

	if strings.TrimSpace(raw) == "" {
		return "", errors.New("no input text: use --text, --file or stdin")
	}
	return raw, nil
}

func printResolution(w io.Writer, res resolver.Resolution) {
	if res.Candidate == "" {
		fmt.Fprintln(w, "No title candidate found")
		return
	}

	fmt.Fprintf(w, "Candidate:  %s\n", res.Candidate)
	fmt.Fprintf(w, "Source:     %s\n", res.Source)
	if res.Extraction.Confidence > 0 && res.Source == res.Extraction.Source {
		fmt.Fprintf(w, "Confidence: %.2f\n", res.Extraction.Confidence)
	}
	fmt.Fprintln(w)

	if len(res.Matches) == 0 {
		fmt.Fprintln(w, "No catalog matches")
		return
	}
	for i, m := range res.Matches {
		fmt.Fprintf(w, "%d. [%s] %s", i+1, m.EntryID, m.Title)
		if m.Author != "" {
			fmt.Fprintf(w, " by %s", m.Author)
		}
		fmt.Fprintf(w, "  %.3f (%s)\n", m.Similarity, m.MatchTier)
	}
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
