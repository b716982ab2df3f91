// Package catalog loads catalog snapshots from the places a library keeps them:
// a REST backend, a VuFind instance, a SQLite database or an export file.
package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/lehigh-university-libraries/bookresolver/internal/models"
)

// Source yields the current catalog snapshot
type Source interface {
	Entries(ctx context.Context) ([]models.CatalogEntry, error)
}

// Source kinds accepted by Open, besides KindLibrary and KindVuFind
const (
	KindAuto   = "auto"
	KindFile   = "file"
	KindSQLite = "sqlite"
)

// Open returns the Source for location. kind "auto" infers it: http(s) URLs
// are library backends, .db/.sqlite files are SQLite, anything else is a file.
func Open(kind, location, apiKey string) (Source, error) {
	if location == "" {
		return nil, fmt.Errorf("catalog location is required")
	}
	if kind == "" || kind == KindAuto {
		kind = detectKind(location)
	}

	switch kind {
	case KindLibrary, KindVuFind:
		return NewClient(kind, location, apiKey), nil
	case KindSQLite:
		return NewSQLiteSource(location), nil
	case KindFile:
		return NewFileSource(location), nil
	default:
		return nil, fmt.Errorf("unsupported catalog type: %s", kind)
	}
}

func detectKind(location string) string {
	lower := strings.ToLower(location)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return KindLibrary
	}
	switch filepath.Ext(lower) {
	case ".db", ".sqlite", ".sqlite3":
		return KindSQLite
	}
	return KindFile
}

// Static is an in-memory catalog
type Static []models.CatalogEntry

// Entries implements Source
func (s Static) Entries(context.Context) ([]models.CatalogEntry, error) {
	out := make([]models.CatalogEntry, len(s))
	copy(out, s)
	return out, nil
}
