package catalog

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lehigh-university-libraries/bookresolver/internal/models"
	_ "modernc.org/sqlite"
)

const booksQuery = `SELECT CAST(id AS TEXT), COALESCE(title, ''), COALESCE(author, '') FROM books ORDER BY id`

// SQLiteSource reads the books table of a library database
type SQLiteSource struct {
	Path string
}

// NewSQLiteSource returns a SQLiteSource for the database at path
func NewSQLiteSource(path string) *SQLiteSource {
	return &SQLiteSource{Path: path}
}

// Entries implements Source
func (s *SQLiteSource) Entries(ctx context.Context) ([]models.CatalogEntry, error) {
	db, err := sql.Open("sqlite", "file:"+s.Path+"?mode=ro&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog database: %w", err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, booksQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to query books: %w", err)
	}
	defer rows.Close()

	var entries []models.CatalogEntry
	for rows.Next() {
		var e models.CatalogEntry
		if err := rows.Scan(&e.ID, &e.Title, &e.Author); err != nil {
			return nil, fmt.Errorf("failed to scan book row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read book rows: %w", err)
	}

	return entries, nil
}
