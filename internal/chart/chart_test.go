package chart

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabvec/internal/domain"
	"tabvec/internal/reducer"
)

func fixture() (*domain.Dataset, *reducer.Projection) {
	ds := &domain.Dataset{
		Columns: []string{"Attrition", "Department"},
		Rows:    [][]string{{"Yes", "Sales"}, {"No", "R&D"}, {"No", "Sales"}},
		Target:  "Attrition",
	}
	p := &reducer.Projection{Points: [][]float64{{-1, 0, 2}, {0, 1, 0}, {1, -1, -2}}}
	return ds, p
}

func TestBuildColorByTargetDeduplicatesTooltip(t *testing.T) {
	ds, p := fixture()
	c, err := Build(ds, p, "Attrition", DisplayConfig{Width: 20, Height: 5, X: 0, Y: 1})
	require.NoError(t, err)

	assert.Equal(t, []string{"component 1", "component 2", "Attrition"}, c.TooltipColumns)
	assert.Equal(t, []string{"Yes", "No"}, c.Categories)
	require.Len(t, c.Points, 3)
	assert.Equal(t, Point{
		Row: 0, X: -1, Y: 0, Color: "Yes",
		Tooltip: []Field{{"component 1", "-1.0000"}, {"component 2", "0.0000"}, {"Attrition", "Yes"}},
	}, c.Points[0])
}

func TestBuildColorByOtherColumn(t *testing.T) {
	ds, p := fixture()
	c, err := Build(ds, p, "Department", DisplayConfig{Width: 20, Height: 5, X: 0, Y: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"component 1", "component 3", "Attrition", "Department"}, c.TooltipColumns)
	assert.Equal(t, []string{"Sales", "R&D"}, c.Categories)
	assert.Equal(t, 2.0, c.Points[0].Y)
}

func TestBuildErrors(t *testing.T) {
	ds, p := fixture()
	cfg := DisplayConfig{Width: 10, Height: 5, X: 0, Y: 1}

	_, err := Build(ds, nil, "Attrition", cfg)
	assert.Error(t, err)
	_, err = Build(ds, p, "Salary", cfg)
	assert.Error(t, err)
	_, err = Build(ds, &reducer.Projection{Points: [][]float64{{1, 2}}}, "Attrition", cfg)
	assert.Error(t, err, "row count mismatch")
	_, err = Build(ds, p, "Attrition", DisplayConfig{Width: 10, Height: 5, X: 0, Y: 3})
	assert.Error(t, err)
	_, err = Build(ds, p, "Attrition", DisplayConfig{Width: 10, Height: 5, X: 1, Y: 1})
	assert.Error(t, err)
	_, err = Build(ds, p, "Attrition", DisplayConfig{X: 0, Y: 1})
	assert.Error(t, err)
}

func TestRender(t *testing.T) {
	ds, p := fixture()
	c, err := Build(ds, p, "Attrition", DisplayConfig{Title: "structured", Width: 12, Height: 4, X: 0, Y: 1})
	require.NoError(t, err)

	out := c.Render()
	assert.Contains(t, out, "structured")
	assert.Contains(t, out, "Attrition: ")
	assert.Contains(t, out, "Yes")
	assert.Contains(t, out, "No")
	assert.Equal(t, 3, strings.Count(out, "●")-len(c.Categories), "one marker per row plus the legend")
}

func TestScale(t *testing.T) {
	assert.Equal(t, 0, scale(-1, -1, 1, 10))
	assert.Equal(t, 9, scale(1, -1, 1, 10))
	assert.Equal(t, 5, scale(3, 3, 3, 10))
}
