package dataset

import (
	"errors"
	"strings"
)

// Mode says which pipeline entry point a sample exercises
type Mode string

const (
	ModeResolve Mode = "resolve"
	ModeSearch  Mode = "search"
)

var (
	ErrNoInput    = errors.New("sample has neither text nor query")
	ErrNoExpected = errors.New("sample has neither expected_id nor expected_title")
)

// Sample is one labelled evaluation case. Text drives the full resolution
// pipeline; Query drives fuzzy search.
type Sample struct {
	ID            string `json:"id" parquet:"id"`
	Text          string `json:"text,omitempty" parquet:"text,optional"`
	Query         string `json:"query,omitempty" parquet:"query,optional"`
	ExpectedID    string `json:"expected_id,omitempty" parquet:"expected_id,optional"`
	ExpectedTitle string `json:"expected_title,omitempty" parquet:"expected_title,optional"`
}

func (s Sample) Mode() Mode {
	if strings.TrimSpace(s.Text) == "" && strings.TrimSpace(s.Query) != "" {
		return ModeSearch
	}
	return ModeResolve
}

// Input is the text handed to the pipeline
func (s Sample) Input() string {
	if s.Mode() == ModeSearch {
		return s.Query
	}
	return s.Text
}

func (s Sample) Validate() error {
	if strings.TrimSpace(s.Text) == "" && strings.TrimSpace(s.Query) == "" {
		return ErrNoInput
	}
	if s.ExpectedID == "" && s.ExpectedTitle == "" {
		return ErrNoExpected
	}
	return nil
}

// InstitutionalBooksRecord is the subset of an Institutional Books 1.0 row
// needed to build a resolve sample from title page OCR.
// Dataset: https://huggingface.co/datasets/instdin/institutional-books-1.0
type InstitutionalBooksRecord struct {
	BarcodeSource string `json:"barcode_src" parquet:"barcode_src"`
	TitleSource   string `json:"title_src" parquet:"title_src"`
	AuthorSource  string `json:"author_src" parquet:"author_src"`

	TextByPageSource []string `json:"text_by_page_src" parquet:"text_by_page_src,list"`
	TextByPageGen    []string `json:"text_by_page_gen" parquet:"text_by_page_gen,list"`
}

// titlePages is how many leading pages are searched for the title page
const titlePages = 10

// GetTitlePageText returns the OCR text of the first pages, where the title
// page usually is. Post-processed text wins over the raw OCR.
func (r *InstitutionalBooksRecord) GetTitlePageText() string {
	pages := r.TextByPageGen
	if len(pages) == 0 {
		pages = r.TextByPageSource
	}
	if len(pages) > titlePages {
		pages = pages[:titlePages]
	}

	var b strings.Builder
	for _, p := range pages {
		b.WriteString(p)
		b.WriteString("\n\n")
	}
	return strings.TrimSpace(b.String())
}

// Sample turns the record into a resolve sample keyed by barcode. The
// catalog is expected to use the source title as the entry title.
func (r *InstitutionalBooksRecord) Sample() Sample {
	return Sample{
		ID:            r.BarcodeSource,
		Text:          r.GetTitlePageText(),
		ExpectedTitle: r.TitleSource,
	}
}
