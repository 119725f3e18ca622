package report

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabvec/internal/domain"
	"tabvec/internal/reducer"
	"tabvec/internal/schema"
	"tabvec/internal/service"
	"tabvec/internal/space"
)

func TestWrite(t *testing.T) {
	ds := &domain.Dataset{
		Columns: []string{"Attrition", "OverTime", "DailyRate"},
		Rows:    [][]string{{"Yes", "Yes", "1102"}, {"No", "No", "279"}},
		Target:  "Attrition",
	}
	sch, err := schema.FromDataset(ds)
	require.NoError(t, err)
	ix, err := space.Compose(sch, ds.ColumnSet(), space.DefaultTable(), "tfidf")
	require.NoError(t, err)

	res := &service.Result{
		RunID:   "r1",
		Dataset: ds,
		Naive: service.StrategyResult{
			Name: service.StrategyNaive,
			Err:  domain.NewModelUnavailable("bge-small", nil),
		},
		Structured: service.StrategyResult{
			Name:       service.StrategyStructured,
			Embeddings: domain.Matrix{{1, 0}, {0, 1}},
			Projection: &reducer.Projection{ExplainedVarianceRatio: []float64{1, 0}},
			Index:      ix,
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, res))
	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "run r1\n2 rows, 2 feature columns, target \"Attrition\"\n"))
	assert.Contains(t, out, "naive: no embeddings\n  error: ")
	assert.Contains(t, out, "bge-small")
	assert.Contains(t, out, "structured: embeddings 2x2, 1 spaces, explained variance 1.000 0.000")
	assert.Contains(t, out, "skipped MaritalStatus: column not in dataset")
	assert.Contains(t, out, "not embedded (no domain entry): DailyRate")
}

func TestStrategyWithoutIndex(t *testing.T) {
	out := Strategy(service.StrategyResult{Name: "naive", Err: errors.New("boom")})
	assert.Equal(t, "naive: no embeddings\n  error: boom", out)
}
