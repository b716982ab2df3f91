package matcher

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/lehigh-university-libraries/bookresolver/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

var testCatalog = []models.CatalogEntry{
	{ID: "1", Title: "Romeo and Juliet", Author: "William Shakespeare"},
	{ID: "2", Title: "Dune", Author: "Frank Herbert"},
	{ID: "3", Title: "The Great Gatsby", Author: "F. Scott Fitzgerald"},
	{ID: "4", Title: "Gone Girl", Author: "Gillian Flynn"},
	{ID: "5", Title: "Pride and Prejudice", Author: "Jane Austen"},
}

func TestMatchCatalogTiers(t *testing.T) {
	m := Default()

	tests := []struct {
		name     string
		title    string
		wantID   string
		wantTier models.MatchTier
		wantSim  float64
	}{
		{name: "exact ignores case", title: "DUNE", wantID: "2", wantTier: models.TierExact, wantSim: 1.0},
		{name: "one edit on a short title is partial", title: "Dun", wantID: "2", wantTier: models.TierPartial, wantSim: 0.75},
		{name: "one edit on a long title is exact", title: "the great gatsbi", wantID: "3", wantTier: models.TierExact, wantSim: 15.0 / 16.0},
		{name: "one edit on a medium title is fuzzy", title: "gone gurl", wantID: "4", wantTier: models.TierFuzzy, wantSim: 8.0 / 9.0},
		{name: "fuzzy boundary is exclusive", title: "gone gurl!", wantID: "4", wantTier: models.TierPartial, wantSim: 0.8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := m.MatchCatalog(tt.title, testCatalog)
			require.NotEmpty(t, got)
			assert.Equal(t, tt.wantID, got[0].EntryID)
			assert.Equal(t, tt.wantTier, got[0].MatchTier)
			assert.InDelta(t, tt.wantSim, got[0].Similarity, 1e-9)
		})
	}
}

func TestMatchCatalogThresholdIsStrict(t *testing.T) {
	// "abcde" vs "abxyz": distance 3, similarity 0.4
	// "abcde" vs "abcyz": distance 2, similarity 0.6, not above the cut-off
	catalog := []models.CatalogEntry{
		{ID: "a", Title: "abxyz"},
		{ID: "b", Title: "abcyz"},
	}
	assert.Empty(t, Default().MatchCatalog("abcde", catalog))
}

func TestMatchCatalogEmpty(t *testing.T) {
	got := Default().MatchCatalog("Dune", nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestMatchCatalogCapAndOrder(t *testing.T) {
	var catalog []models.CatalogEntry
	for i := 0; i < 10; i++ {
		catalog = append(catalog, models.CatalogEntry{ID: fmt.Sprint(i), Title: "Dune"})
	}
	catalog = append(catalog, models.CatalogEntry{ID: "sequel", Title: "Dune Messiah"})

	got := Default().MatchCatalog("dune", catalog)
	require.Len(t, got, 5)
	for i, r := range got {
		assert.Equal(t, fmt.Sprint(i), r.EntryID, "ties keep catalog order")
	}
}

func TestFuzzySearchSubstring(t *testing.T) {
	got := Default().FuzzySearch("  gatsby ", testCatalog)
	require.Len(t, got, 1)
	assert.Equal(t, "3", got[0].Entry.ID)
	assert.Equal(t, 1.0, got[0].Score)
	assert.Equal(t, models.TierExact, got[0].MatchTier)

	byAuthor := Default().FuzzySearch("austen", testCatalog)
	require.NotEmpty(t, byAuthor)
	assert.Equal(t, "5", byAuthor[0].Entry.ID)
}

func TestFuzzySearchShortQuery(t *testing.T) {
	assert.Empty(t, Default().FuzzySearch("d", testCatalog))
	assert.Empty(t, Default().FuzzySearch("   ", testCatalog))
}

func TestFuzzySearchMisspelling(t *testing.T) {
	got := Default().FuzzySearch("romio and juliet", testCatalog)
	require.NotEmpty(t, got)
	assert.Equal(t, "1", got[0].Entry.ID)
	assert.Equal(t, models.TierFuzzy, got[0].MatchTier)
}

func TestFuzzySearchWordLevel(t *testing.T) {
	th := DefaultThresholds()
	th.LongQueryMin = 0.99
	m := New(th)

	got := m.FuzzySearch("romio and juliet", testCatalog)
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].Entry.ID)
	assert.InDelta(t, 0.8, got[0].Score, 1e-9)
	assert.Equal(t, models.TierFuzzy, got[0].MatchTier)
}

func TestFuzzySearchWordLevelPartialFraction(t *testing.T) {
	th := DefaultThresholds()
	th.LongQueryMin = 0.99
	m := New(th)

	// two of three significant words match: 0.5 + 0.3*(2/3)
	got := m.FuzzySearch("pride prejudise zzzzzz", testCatalog)
	require.Len(t, got, 1)
	assert.Equal(t, "5", got[0].Entry.ID)
	assert.InDelta(t, 0.5+0.3*2.0/3.0, got[0].Score, 1e-9)

	// one of three is below the fraction cut-off
	assert.Empty(t, m.FuzzySearch("pride qqqqqq zzzzzz", testCatalog))
}

func TestFuzzySearchQueryLengthThresholds(t *testing.T) {
	m := Default()

	// "dume" has 4 runes, threshold 0.6; similarity with "dune" is 0.75
	got := m.FuzzySearch("dume", testCatalog)
	require.NotEmpty(t, got)
	assert.Equal(t, "2", got[0].Entry.ID)
	assert.Equal(t, models.TierPartial, got[0].MatchTier)

	// "dux" has 3 runes, threshold 0.8; best similarity is 0.5
	assert.Empty(t, m.FuzzySearch("dux", testCatalog))
}

func TestFuzzySearchCap(t *testing.T) {
	var catalog []models.CatalogEntry
	for i := 0; i < 30; i++ {
		catalog = append(catalog, models.CatalogEntry{ID: fmt.Sprint(i), Title: fmt.Sprintf("Dune volume %d", i)})
	}
	got := Default().FuzzySearch("dune", catalog)
	assert.Len(t, got, 20)
}

func TestPropertyMatchCatalogOrderedAndCapped(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		titles := rapid.SliceOfN(rapid.StringMatching(`[ab ]{1,6}`), 0, 40).Draw(t, "titles")
		needle := rapid.StringMatching(`[ab]{1,6}`).Draw(t, "needle")

		catalog := make([]models.CatalogEntry, len(titles))
		for i, title := range titles {
			catalog[i] = models.CatalogEntry{ID: fmt.Sprint(i), Title: title}
		}

		m := Default()
		got := m.MatchCatalog(needle, catalog)
		if len(got) > 5 {
			t.Fatalf("got %d results, cap is 5", len(got))
		}
		for i, r := range got {
			if r.Similarity <= 0.6 {
				t.Fatalf("result %d has similarity %f below threshold", i, r.Similarity)
			}
			if r.MatchTier != m.Tier(r.Similarity) {
				t.Fatalf("result %d tier %s does not match similarity %f", i, r.MatchTier, r.Similarity)
			}
			if i > 0 && got[i-1].Similarity < r.Similarity {
				t.Fatalf("results out of order at %d", i)
			}
		}
	})
}

func TestPropertyFuzzySearchOrderedAndCapped(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		titles := rapid.SliceOfN(rapid.StringMatching(`[abc ]{1,10}`), 0, 60).Draw(t, "titles")
		query := rapid.StringMatching(`[abc ]{0,10}`).Draw(t, "query")

		catalog := make([]models.CatalogEntry, len(titles))
		for i, title := range titles {
			catalog[i] = models.CatalogEntry{ID: fmt.Sprint(i), Title: title, Author: title}
		}

		got := Default().FuzzySearch(query, catalog)
		if len(got) > 20 {
			t.Fatalf("got %d results, cap is 20", len(got))
		}
		for i, r := range got {
			if r.Score < 0 || r.Score > 1 {
				t.Fatalf("score %f out of range", r.Score)
			}
			if i > 0 && got[i-1].Score < r.Score {
				t.Fatalf("results out of order at %d", i)
			}
		}
	})
}

func TestLoadThresholds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "thresholds.yaml")
	require.NoError(t, os.WriteFile(path, []byte("title_min: 0.5\nsearch_limit: 10\n"), 0644))

	th, err := LoadThresholds(path)
	require.NoError(t, err)
	assert.Equal(t, 0.5, th.TitleMin)
	assert.Equal(t, 10, th.SearchLimit)
	assert.Equal(t, 0.9, th.ExactAbove, "unset keys keep defaults")
}

func TestLoadThresholdsErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadThresholds(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("title_min: [oops"), 0644))
	_, err = LoadThresholds(bad)
	assert.Error(t, err)

	outOfRange := filepath.Join(dir, "range.yaml")
	require.NoError(t, os.WriteFile(outOfRange, []byte("title_min: 1.5\n"), 0644))
	_, err = LoadThresholds(outOfRange)
	assert.ErrorContains(t, err, "title_min")
}
