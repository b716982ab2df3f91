package metrics

import (
	"strings"

	"github.com/lehigh-university-libraries/bookresolver/internal/similarity"
)

// Hit is one ranked result as the scorer sees it
type Hit struct {
	ID    string
	Title string
}

// RankOf returns the 1-based position of the expected entry in hits, or 0
// when it is absent. An expected id is matched exactly; otherwise the title
// is compared case-insensitively after trimming.
func RankOf(expectedID, expectedTitle string, hits []Hit) int {
	want := normalize(expectedTitle)
	for i, h := range hits {
		if expectedID != "" {
			if h.ID == expectedID {
				return i + 1
			}
			continue
		}
		if want != "" && normalize(h.Title) == want {
			return i + 1
		}
	}
	return 0
}

// ReciprocalRank is 1/rank, or 0 for a miss
func ReciprocalRank(rank int) float64 {
	if rank <= 0 {
		return 0
	}
	return 1 / float64(rank)
}

// CandidateSimilarity measures how close an extracted candidate came to the
// labelled title, independent of the catalog.
func CandidateSimilarity(candidate, expectedTitle string) float64 {
	if expectedTitle == "" {
		return 0
	}
	return similarity.Similarity(normalize(candidate), normalize(expectedTitle))
}

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
