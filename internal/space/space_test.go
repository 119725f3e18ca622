package space

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabvec/internal/domain"
	"tabvec/internal/schema"
)

func hrDataset() *domain.Dataset {
	return &domain.Dataset{
		Columns: []string{"Attrition", "OverTime", "MaritalStatus", "EducationField", "YearsAtCompany", "DailyRate"},
		Rows: [][]string{
			{"Yes", "Yes", "Single", "Life Sciences", "6", "1102"},
			{"No", "No", "Married", "Medical", "10", "279"},
		},
		Target: "Attrition",
	}
}

func compose(t *testing.T, ds *domain.Dataset, table Table) (*Index, error) {
	t.Helper()
	sch, err := schema.FromDataset(ds)
	require.NoError(t, err)
	return Compose(sch, ds.ColumnSet(), table, "tfidf")
}

func TestComposeDefaultTable(t *testing.T) {
	ix, err := compose(t, hrDataset(), DefaultTable())
	require.NoError(t, err)

	kinds := []Kind{}
	keys := []string{}
	for _, s := range ix.Spaces() {
		kinds = append(kinds, s.Kind())
		keys = append(keys, s.Field().Key)
	}
	assert.Equal(t, []Kind{KindCategorical, KindCategorical, KindText, KindNumber}, kinds)
	assert.Equal(t, []string{"over_time", "marital_status", "education_field", "years_at_company"}, keys)

	text := ix.Spaces()[2].(Text)
	assert.Equal(t, "tfidf", text.ModelID)

	// DailyRate has no domain entry: kept out of the structured space
	assert.Equal(t, []string{"DailyRate"}, ix.Uncovered())
	assert.Len(t, ix.Skipped(), len(DefaultTable())-4)
	assert.Equal(t, 2+3+2, ix.StaticDimension())
}

func TestComposeSkipsAbsentColumn(t *testing.T) {
	full, err := compose(t, hrDataset(), DefaultTable())
	require.NoError(t, err)

	sub, err := hrDataset().Select([]string{"MaritalStatus", "EducationField", "YearsAtCompany"})
	require.NoError(t, err)
	reduced, err := compose(t, sub, DefaultTable())
	require.NoError(t, err)

	assert.Equal(t, full.Len()-1, reduced.Len())
	assert.Equal(t, full.StaticDimension()-2, reduced.StaticDimension())
	for _, s := range reduced.Spaces() {
		assert.NotEqual(t, "over_time", s.Field().Key)
	}
	assert.Contains(t, reduced.Skipped(), Skip{Column: "OverTime", Reason: "column not in dataset"})
}

func TestComposeEmptyIndex(t *testing.T) {
	ds := &domain.Dataset{
		Columns: []string{"label", "Foo", "Bar"},
		Rows:    [][]string{{"a", "1", "x"}},
		Target:  "label",
	}
	_, err := compose(t, ds, DefaultTable())
	assert.ErrorIs(t, err, domain.ErrEmptyIndex)
}

func TestConfigureIsPure(t *testing.T) {
	ds := hrDataset()
	sch, err := schema.FromDataset(ds)
	require.NoError(t, err)
	cols := ds.ColumnSet()

	s, ok := Configure(Entry{Column: "EducationField", Kind: KindText, ModelID: "custom"}, sch, cols, "tfidf")
	require.True(t, ok)
	assert.Equal(t, "custom", s.(Text).ModelID)

	_, ok = Configure(Entry{Column: "JobRole", Kind: KindText}, sch, cols, "tfidf")
	assert.False(t, ok, "absent column")

	_, ok = Configure(Entry{Column: "Attrition", Kind: KindCategorical, Categories: []string{"Yes"}}, sch, cols, "tfidf")
	assert.False(t, ok, "target column is not a schema field")

	_, ok = Configure(Entry{Column: "OverTime", Kind: KindNumber, Min: 0, Max: 1}, sch, cols, "tfidf")
	assert.False(t, ok, "number space needs a numeric field")
}

func TestCategoricalEncode(t *testing.T) {
	c := Categorical{Categories: []string{"Married", "Single", "Divorced"}}
	assert.Equal(t, []float32{0, 1, 0}, c.Encode("Single"))
	assert.Equal(t, []float32{0, 0, 0}, c.Encode("Widowed"), "unknown values are uncategorized")
	assert.Equal(t, []float32{0, 0, 0}, c.Encode(""))
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	return dot / math.Sqrt(na*nb)
}

func TestNumberEncode(t *testing.T) {
	n := Number{Min: 0, Max: 10}

	lo := n.Encode("0")
	hi := n.Encode("10")
	assert.InDeltaSlice(t, []float32{1, 0}, lo, 1e-6)
	assert.InDeltaSlice(t, []float32{0, 1}, hi, 1e-6)
	assert.InDeltaSlice(t, hi, n.Encode("25"), 1e-6, "values are clamped")
	assert.Equal(t, []float32{0, 0}, n.Encode(""))
	assert.Equal(t, []float32{0, 0}, n.Encode("n/a"))

	// closeness, not magnitude, drives similarity
	assert.Greater(t, cosine(n.Encode("9"), n.Encode("10")), cosine(n.Encode("1"), n.Encode("10")))
	assert.InDelta(t, 1.0, cosine(n.Encode("3"), n.Encode("3")), 1e-6)
}

func TestTableValidate(t *testing.T) {
	require.NoError(t, DefaultTable().Validate())

	assert.Error(t, Table{{Column: "A", Kind: KindCategorical}}.Validate())
	assert.Error(t, Table{{Column: "A", Kind: KindNumber, Min: 3, Max: 3}}.Validate())
	assert.Error(t, Table{{Column: "A", Kind: KindText}, {Column: "A", Kind: KindText}}.Validate())
	assert.Error(t, Table{{Kind: KindText}}.Validate())
}

func TestParse(t *testing.T) {
	k, err := ParseKind("Categorical")
	require.NoError(t, err)
	assert.Equal(t, KindCategorical, k)
	_, err = ParseKind("vector")
	assert.Error(t, err)

	m, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeSimilar, m)
	_, err = ParseMode("maximum")
	assert.Error(t, err)
}
