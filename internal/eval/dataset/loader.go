// Package dataset loads labelled samples for the evaluation harness.
package dataset

import (
	"fmt"
	"log/slog"

	"github.com/lehigh-university-libraries/bookresolver/internal/records"
)

// Format names the row schema of a dataset file
type Format string

const (
	FormatSamples            Format = "samples"
	FormatInstitutionalBooks Format = "ib"
)

// Loader handles loading of an evaluation dataset
type Loader struct {
	datasetPath string
	format      Format
}

// NewLoader creates a new dataset loader. An empty format means FormatSamples.
func NewLoader(datasetPath string, format Format) *Loader {
	if format == "" {
		format = FormatSamples
	}
	return &Loader{
		datasetPath: datasetPath,
		format:      format,
	}
}

// Load reads every sample in the dataset
func (l *Loader) Load() ([]Sample, error) {
	return l.LoadSample(0)
}

// LoadSample reads at most limit samples; limit <= 0 reads all of them.
// Samples that fail validation are skipped with a warning.
func (l *Loader) LoadSample(limit int) ([]Sample, error) {
	var samples []Sample

	switch l.format {
	case FormatSamples:
		rows, err := records.Read[Sample](l.datasetPath, limit)
		if err != nil {
			return nil, fmt.Errorf("failed to load dataset: %w", err)
		}
		samples = rows
	case FormatInstitutionalBooks:
		rows, err := records.Read[InstitutionalBooksRecord](l.datasetPath, limit)
		if err != nil {
			return nil, fmt.Errorf("failed to load dataset: %w", err)
		}
		samples = make([]Sample, 0, len(rows))
		for i := range rows {
			samples = append(samples, rows[i].Sample())
		}
	default:
		return nil, fmt.Errorf("unsupported dataset format: %s (supported: %s, %s)", l.format, FormatSamples, FormatInstitutionalBooks)
	}

	valid := samples[:0]
	for i, s := range samples {
		if s.ID == "" {
			s.ID = fmt.Sprintf("row-%d", i+1)
		}
		if err := s.Validate(); err != nil {
			slog.Warn("Skipping sample", "id", s.ID, "err", err)
			continue
		}
		valid = append(valid, s)
	}

	slog.Debug("Dataset loaded", "path", l.datasetPath, "format", l.format, "samples", len(valid), "skipped", len(samples)-len(valid))
	return valid, nil
}
