package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() *Dataset {
	return &Dataset{
		Columns: []string{"Age", "label", "Dept"},
		Rows: [][]string{
			{"41", "Yes", "Sales"},
			{"49", "No", "R&D"},
		},
		Target: "label",
	}
}

func TestDatasetFeaturesExcludeTarget(t *testing.T) {
	ds := sampleDataset()
	assert.Equal(t, []string{"Age", "Dept"}, ds.Features())
	assert.Equal(t, 2, ds.Len())
}

func TestDatasetSelectKeepsTargetAndOrder(t *testing.T) {
	ds := sampleDataset()
	sub, err := ds.Select([]string{"Dept"})
	require.NoError(t, err)

	assert.Equal(t, []string{"label", "Dept"}, sub.Columns)
	assert.Equal(t, [][]string{{"Yes", "Sales"}, {"No", "R&D"}}, sub.Rows)
	// source untouched
	assert.Len(t, ds.Columns, 3)

	_, err = ds.Select([]string{"Missing"})
	assert.Error(t, err)
	_, err = ds.Select(nil)
	assert.Error(t, err)
}

func TestDatasetValidate(t *testing.T) {
	require.NoError(t, sampleDataset().Validate())

	ragged := sampleDataset()
	ragged.Rows[1] = []string{"1"}
	assert.Error(t, ragged.Validate())

	dup := &Dataset{Columns: []string{"a", "a"}}
	assert.Error(t, dup.Validate())

	noTarget := sampleDataset()
	noTarget.Target = "nope"
	assert.Error(t, noTarget.Validate())
}

func TestDatasetValueAndColumn(t *testing.T) {
	ds := sampleDataset()
	v, ok := ds.Value(1, "Dept")
	require.True(t, ok)
	assert.Equal(t, "R&D", v)

	_, ok = ds.Value(5, "Dept")
	assert.False(t, ok)

	col, err := ds.Column("Age")
	require.NoError(t, err)
	assert.Equal(t, []string{"41", "49"}, col)
}

func TestTypedErrorsMatchSentinels(t *testing.T) {
	assert.ErrorIs(t, &SchemaConflictError{Key: "a", Columns: []string{"A", "a"}}, ErrSchemaConflict)
	assert.ErrorIs(t, &IncompleteRetrievalError{Expected: 3}, ErrIncompleteRetrieval)
	assert.ErrorIs(t, &InsufficientRankError{Requested: 3, Columns: 2}, ErrInsufficientRank)

	cause := errors.New("404")
	err := NewModelUnavailable("nope", cause)
	assert.ErrorIs(t, err, ErrModelUnavailable)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), `"nope"`)
}
