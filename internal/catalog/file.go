package catalog

import (
	"context"
	"fmt"

	"github.com/lehigh-university-libraries/bookresolver/internal/models"
	"github.com/lehigh-university-libraries/bookresolver/internal/records"
)

// FileRow is one catalog entry as stored in a JSON, JSONL or Parquet export
type FileRow struct {
	ID     entryID `json:"id" parquet:"id"`
	Title  string `json:"title" parquet:"title"`
	Author string `json:"author" parquet:"author,optional"`
}

// FileSource reads the catalog from an export file on every call
type FileSource struct {
	Path string
}

// NewFileSource returns a FileSource for path
func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

// Entries implements Source
func (f *FileSource) Entries(ctx context.Context) ([]models.CatalogEntry, error) {
	rows, err := records.Read[FileRow](f.Path, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog file: %w", err)
	}

	entries := make([]models.CatalogEntry, 0, len(rows))
	for _, r := range rows {
		entries = append(entries, models.CatalogEntry{ID: string(r.ID), Title: r.Title, Author: r.Author})
	}
	return entries, nil
}
