package serializer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabvec/internal/domain"
)

func employees() *domain.Dataset {
	return &domain.Dataset{
		Columns: []string{"Age", "Attrition", "OverTime", "Department"},
		Rows: [][]string{
			{"41", "Yes", "Yes", "Sales"},
			{"49", "No", "No", "Research & Development"},
			{"37", "Yes", "Yes", "Research & Development"},
		},
		Target: "Attrition",
	}
}

func TestSerializeDefaultLabels(t *testing.T) {
	ds := employees()
	out, err := NewRowSerializer(nil).Serialize(ds)
	require.NoError(t, err)
	require.Len(t, out, ds.Len())

	assert.Equal(t, "Age: 41, OverTime: Yes, Department: Sales", out[0])
	assert.Equal(t, "Age: 49, OverTime: No, Department: Research & Development", out[1])
	for _, s := range out {
		assert.NotContains(t, s, "Attrition")
	}
}

func TestSerializeExplicitLabels(t *testing.T) {
	ds := employees()
	labels := []Label{
		{Column: "Department", Label: "dept"},
		{Column: "Attrition", Label: "left"},
	}
	out, err := NewRowSerializer(labels).Serialize(ds)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"dept: Sales, left: Yes",
		"dept: Research & Development, left: No",
		"dept: Research & Development, left: Yes",
	}, out)
}

func TestSerializeUnknownColumn(t *testing.T) {
	_, err := NewRowSerializer([]Label{{Column: "Nope", Label: "x"}}).Serialize(employees())
	assert.Error(t, err)
}

func TestSerializeEmptyDataset(t *testing.T) {
	ds := &domain.Dataset{Columns: []string{"a", "t"}, Target: "t"}
	out, err := NewRowSerializer(nil).Serialize(ds)
	require.NoError(t, err)
	assert.Empty(t, out)
}
