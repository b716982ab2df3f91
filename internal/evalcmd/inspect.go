package evalcmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/lehigh-university-libraries/bookresolver/internal/eval/dataset"
	"github.com/lehigh-university-libraries/bookresolver/internal/heuristic"
	"github.com/lehigh-university-libraries/bookresolver/internal/validate"
)

// previewRunes bounds the input text shown per sample
const previewRunes = 500

type inspectOptions struct {
	datasetPath string
	format      dataset.Format
	limit       int
	interactive bool
	showText    bool
	heuristic   bool
}

func executeInspect(ctx context.Context, opts inspectOptions, in io.Reader, out io.Writer) error {
	samples, err := dataset.NewLoader(opts.datasetPath, opts.format).LoadSample(opts.limit)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Loaded %d samples from %s\n", len(samples), opts.datasetPath)
	fmt.Fprintln(out, strings.Repeat("=", 80))
	fmt.Fprintln(out)

	reader := bufio.NewReader(in)

	for i, s := range samples {
		select {
		case <-ctx.Done():
			fmt.Fprintln(out, "\nInspection interrupted.")
			return nil
		default:
		}

		fmt.Fprintf(out, "SAMPLE %d/%d\n", i+1, len(samples))
		fmt.Fprintln(out, strings.Repeat("-", 80))
		fmt.Fprintf(out, "ID:             %s\n", s.ID)
		fmt.Fprintf(out, "Mode:           %s\n", s.Mode())
		fmt.Fprintf(out, "Expected ID:    %s\n", s.ExpectedID)
		fmt.Fprintf(out, "Expected Title: %s\n", s.ExpectedTitle)

		input := s.Input()
		fmt.Fprintf(out, "Input Length:   %d characters, %d words\n", len([]rune(input)), len(strings.Fields(input)))

		if opts.heuristic && s.Mode() == dataset.ModeResolve {
			candidate := heuristic.Extract(s.Text)
			fmt.Fprintf(out, "Heuristic:      %q (valid: %t)\n", candidate, validate.IsValidTitle(candidate))
		}
		fmt.Fprintln(out)

		if opts.showText {
			preview := []rune(input)
			truncated := len(preview) > previewRunes
			if truncated {
				preview = preview[:previewRunes]
			}

			fmt.Fprintln(out, "INPUT PREVIEW:")
			fmt.Fprintln(out, strings.Repeat("-", 80))
			fmt.Fprintln(out, string(preview))
			if truncated {
				fmt.Fprintf(out, "\n[... truncated, showing first %d characters ...]\n", previewRunes)
			}
			fmt.Fprintln(out, strings.Repeat("-", 80))
		}

		fmt.Fprintln(out)

		if !opts.interactive {
			continue
		}

		fmt.Fprint(out, "Press Enter to continue to next sample (or Ctrl+C to quit)...")

		inputCh := make(chan struct{})
		go func() {
			_, _ = reader.ReadString('\n')
			close(inputCh)
		}()

		select {
		case <-ctx.Done():
			fmt.Fprintln(out, "\nInspection interrupted.")
			return nil
		case <-inputCh:
			fmt.Fprintln(out)
		}
	}

	return nil
}
