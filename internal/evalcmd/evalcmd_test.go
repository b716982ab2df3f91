package evalcmd

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/lehigh-university-libraries/bookresolver/internal/eval/dataset"
	"github.com/lehigh-university-libraries/bookresolver/internal/eval/metrics"
	"github.com/lehigh-university-libraries/bookresolver/internal/eval/results"
	"github.com/lehigh-university-libraries/bookresolver/internal/matcher"
	"github.com/lehigh-university-libraries/bookresolver/internal/models"
	"github.com/lehigh-university-libraries/bookresolver/internal/resolver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"),
	)
}

var testCatalog = []models.CatalogEntry{
	{ID: "1", Title: "Romeo and Juliet", Author: "William Shakespeare"},
	{ID: "2", Title: "Gone Girl", Author: "Gillian Flynn"},
	{ID: "3", Title: "Dune", Author: "Frank Herbert"},
}

var testSamples = []dataset.Sample{
	{ID: "a", Text: "Gone Girl Gillian Flynn", ExpectedID: "2", ExpectedTitle: "Gone Girl"},
	{ID: "b", Query: "dun", ExpectedTitle: "Dune"},
	{ID: "c", Query: "zzzz", ExpectedID: "1"},
}

func TestRunnerEvaluatesBothModes(t *testing.T) {
	rows, err := NewRunner(resolver.New(nil, nil), 2).Run(context.Background(), testSamples, testCatalog)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	a := rows[0]
	assert.Equal(t, "resolve", a.Mode)
	assert.Equal(t, "Gone Girl", a.Candidate)
	assert.Equal(t, models.SourceHeuristic, a.Source)
	assert.Equal(t, 1.0, a.CandidateSimilarity)
	assert.Equal(t, "2", a.TopID)
	assert.Equal(t, models.TierExact, a.TopTier)
	assert.Equal(t, 1, a.Rank)
	assert.Empty(t, a.Error)

	b := rows[1]
	assert.Equal(t, "search", b.Mode)
	assert.Equal(t, "3", b.TopID)
	assert.Equal(t, 1.0, b.TopScore)
	assert.Equal(t, 1, b.Rank)

	c := rows[2]
	assert.Equal(t, 0, c.Returned)
	assert.Equal(t, 0, c.Rank)

	agg := metrics.AggregateEvaluationResults(rows, nil, 5)
	assert.Equal(t, 2, agg.HitAt1)
	assert.Equal(t, 1, agg.NoMatch)
}

func TestRunnerKeepsSampleOrder(t *testing.T) {
	var samples []dataset.Sample
	for i := 0; i < 25; i++ {
		samples = append(samples, dataset.Sample{ID: fmt.Sprintf("s%02d", i), Query: "gone", ExpectedID: "2"})
	}

	rows, err := NewRunner(resolver.New(nil, nil), 4).Run(context.Background(), samples, testCatalog)
	require.NoError(t, err)
	require.Len(t, rows, len(samples))
	for i, r := range rows {
		assert.Equal(t, samples[i].ID, r.ID)
		assert.Equal(t, 1, r.Rank)
	}
}

func TestRunnerCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRunner(resolver.New(nil, nil), 1).Run(ctx, testSamples, testCatalog)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewRunnerClampsConcurrency(t *testing.T) {
	assert.Equal(t, 1, NewRunner(nil, 0).concurrency)
}

func saveRun(t *testing.T) string {
	t.Helper()
	rows, err := NewRunner(resolver.New(nil, nil), 1).Run(context.Background(), testSamples, testCatalog)
	require.NoError(t, err)

	path, err := results.SaveToYAML(t.TempDir(), results.NewEvalSpec(results.EvalConfig{
		Catalog:     "catalog.jsonl",
		DatasetPath: "samples.jsonl",
		SampleSize:  len(rows),
		K:           5,
		Thresholds:  matcher.DefaultThresholds(),
	}, rows))
	require.NoError(t, err)
	return path
}

func TestReportFormats(t *testing.T) {
	path := saveRun(t)

	var text bytes.Buffer
	require.NoError(t, executeReport(path, "text", &text))
	assert.Contains(t, text.String(), "Sample ID: a (resolve)")
	assert.Contains(t, text.String(), "Mean Reciprocal Rank")
	assert.Contains(t, text.String(), "No matches returned")

	var js bytes.Buffer
	require.NoError(t, executeReport(path, "json", &js))
	var agg metrics.AggregateResults
	require.NoError(t, json.Unmarshal(js.Bytes(), &agg))
	assert.Equal(t, 3, agg.TotalRecords)
	assert.Equal(t, 2, agg.HitAt1)

	var out bytes.Buffer
	require.NoError(t, executeReport(path, "csv", &out))
	rows, err := csv.NewReader(&out).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, "ID", rows[0][0])
	assert.Equal(t, "a", rows[1][0])

	assert.Error(t, executeReport(path, "xml", &out))
	assert.Error(t, executeReport(filepath.Join(t.TempDir(), "missing.yaml"), "text", &out))
}

func TestInspect(t *testing.T) {
	path := filepath.Join(t.TempDir(), "samples.jsonl")
	data := `{"id":"a","text":"Gone Girl Gillian Flynn","expected_id":"2"}
{"id":"b","query":"dun","expected_title":"Dune"}
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	var out bytes.Buffer
	err := executeInspect(context.Background(), inspectOptions{
		datasetPath: path,
		limit:       10,
		interactive: true,
		showText:    true,
		heuristic:   true,
	}, bytes.NewBufferString("\n\n"), &out)
	require.NoError(t, err)

	s := out.String()
	assert.Contains(t, s, "Loaded 2 samples")
	assert.Contains(t, s, `Heuristic:      "Gone Girl" (valid: true)`)
	assert.Contains(t, s, "Mode:           search")
	assert.Contains(t, s, "INPUT PREVIEW:")
}

func TestInspectInterrupted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "samples.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(`{"id":"a","text":"Dune","expected_id":"3"}`+"\n"), 0644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	require.NoError(t, executeInspect(ctx, inspectOptions{datasetPath: path}, bytes.NewBuffer(nil), &out))
	assert.Contains(t, out.String(), "Inspection interrupted.")
}
