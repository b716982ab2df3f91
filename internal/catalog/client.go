package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lehigh-university-libraries/bookresolver/internal/models"
)

// Client kinds
const (
	KindLibrary = "library"
	KindVuFind  = "vufind"
)

const defaultVuFindLimit = 1000

// Client reads the catalog from a library backend (GET /api/books) or a VuFind instance
type Client struct {
	BaseURL     string
	CatalogType string
	APIKey      string
	Query       string // VuFind lookfor, empty lists everything
	Limit       int    // VuFind page size
	httpClient  *http.Client
}

// NewClient creates a new catalog client
func NewClient(catalogType, baseURL, apiKey string) *Client {
	return &Client{
		BaseURL:     strings.TrimRight(baseURL, "/"),
		CatalogType: catalogType,
		APIKey:      apiKey,
		Limit:       defaultVuFindLimit,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Entries fetches the current catalog snapshot
func (c *Client) Entries(ctx context.Context) ([]models.CatalogEntry, error) {
	switch c.CatalogType {
	case KindLibrary:
		return c.fetchFromLibrary(ctx)
	case KindVuFind:
		return c.fetchFromVuFind(ctx)
	default:
		return nil, fmt.Errorf("unsupported catalog type: %s", c.CatalogType)
	}
}

// entryID accepts both numeric and string ids
type entryID string

func (id *entryID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*id = entryID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = entryID(n.String())
	return nil
}

func (c *Client) get(ctx context.Context, endpoint string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("catalog API returned status %d: %s", resp.StatusCode, string(body))
	}
	return resp, nil
}

// fetchFromLibrary reads the library backend's book list
func (c *Client) fetchFromLibrary(ctx context.Context) ([]models.CatalogEntry, error) {
	resp, err := c.get(ctx, c.BaseURL+"/api/books")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch books: %w", err)
	}
	defer resp.Body.Close()

	var books []struct {
		ID     entryID `json:"id"`
		Title  string  `json:"title"`
		Author string  `json:"author"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&books); err != nil {
		return nil, fmt.Errorf("failed to decode books response: %w", err)
	}

	entries := make([]models.CatalogEntry, 0, len(books))
	for _, b := range books {
		entries = append(entries, models.CatalogEntry{ID: string(b.ID), Title: b.Title, Author: b.Author})
	}
	return entries, nil
}

// fetchFromVuFind runs one search against the VuFind REST API
func (c *Client) fetchFromVuFind(ctx context.Context) ([]models.CatalogEntry, error) {
	params := url.Values{}
	params.Set("lookfor", c.Query)
	params.Set("limit", fmt.Sprint(c.Limit))
	params.Add("field[]", "id")
	params.Add("field[]", "title")
	params.Add("field[]", "primaryAuthors")

	resp, err := c.get(ctx, c.BaseURL+"/api/v1/search?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch from VuFind: %w", err)
	}
	defer resp.Body.Close()

	var vufindResp struct {
		Records []struct {
			ID             string   `json:"id"`
			Title          string   `json:"title"`
			PrimaryAuthors []string `json:"primaryAuthors"`
		} `json:"records"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&vufindResp); err != nil {
		return nil, fmt.Errorf("failed to decode VuFind response: %w", err)
	}

	entries := make([]models.CatalogEntry, 0, len(vufindResp.Records))
	for _, rec := range vufindResp.Records {
		entries = append(entries, models.CatalogEntry{
			ID:     rec.ID,
			Title:  strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(rec.Title), "/")),
			Author: strings.Join(rec.PrimaryAuthors, "; "),
		})
	}
	return entries, nil
}
