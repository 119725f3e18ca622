// Package chart turns a projection into a colored terminal scatter plot.
package chart

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"tabvec/internal/domain"
	"tabvec/internal/reducer"
)

// DisplayConfig sizes the plot area and picks the projection components on
// each axis. X and Y are 0-based component indexes.
type DisplayConfig struct {
	Title  string
	Width  int
	Height int
	X, Y   int
}

// Field is one tooltip entry.
type Field struct {
	Name  string
	Value string
}

// Point is one dataset row placed on the plot.
type Point struct {
	Row     int
	X, Y    float64
	Color   string
	Tooltip []Field
}

// Chart is a scatter plot of one projection, colored by a dataset column.
type Chart struct {
	Title       string
	XLabel      string
	YLabel      string
	ColorColumn string
	// Categories lists the distinct color values in order of first appearance.
	Categories []string
	Points     []Point
	// TooltipColumns names the tooltip fields of every point, in order.
	TooltipColumns []string

	width, height int
}

var palette = []lipgloss.Color{"9", "12", "10", "11", "13", "14", "208", "141", "45", "203"}

// Build places every row of ds at its projected coordinates. colorColumn may be
// the target column; it then appears only once among the tooltip fields.
func Build(ds *domain.Dataset, p *reducer.Projection, colorColumn string, cfg DisplayConfig) (*Chart, error) {
	if p == nil {
		return nil, errors.New("no projection")
	}
	rows, comps := p.Dims()
	if rows != ds.Len() {
		return nil, fmt.Errorf("projection has %d rows, dataset %d", rows, ds.Len())
	}
	if cfg.X < 0 || cfg.X >= comps || cfg.Y < 0 || cfg.Y >= comps {
		return nil, fmt.Errorf("axes %d/%d outside %d components", cfg.X+1, cfg.Y+1, comps)
	}
	if cfg.X == cfg.Y {
		return nil, errors.New("axes must differ")
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("invalid plot size %dx%d", cfg.Width, cfg.Height)
	}
	colors, err := ds.Column(colorColumn)
	if err != nil {
		return nil, err
	}

	c := &Chart{
		Title:       cfg.Title,
		XLabel:      componentName(cfg.X),
		YLabel:      componentName(cfg.Y),
		ColorColumn: colorColumn,
		width:       cfg.Width,
		height:      cfg.Height,
	}
	extra := []string{}
	if ds.Target != "" {
		extra = append(extra, ds.Target)
	}
	if colorColumn != ds.Target {
		extra = append(extra, colorColumn)
	}
	c.TooltipColumns = append([]string{c.XLabel, c.YLabel}, extra...)

	seen := make(map[string]struct{})
	c.Points = make([]Point, rows)
	for i, pt := range p.Points {
		x, y := pt[cfg.X], pt[cfg.Y]
		tip := []Field{
			{Name: c.XLabel, Value: fmt.Sprintf("%.4f", x)},
			{Name: c.YLabel, Value: fmt.Sprintf("%.4f", y)},
		}
		for _, col := range extra {
			v, _ := ds.Value(i, col)
			tip = append(tip, Field{Name: col, Value: v})
		}
		c.Points[i] = Point{Row: i, X: x, Y: y, Color: colors[i], Tooltip: tip}
		if _, ok := seen[colors[i]]; !ok {
			seen[colors[i]] = struct{}{}
			c.Categories = append(c.Categories, colors[i])
		}
	}
	return c, nil
}

func componentName(i int) string { return fmt.Sprintf("component %d", i+1) }

// Render draws the plot with one marker per occupied cell. When several
// categories share a cell the later row wins.
func (c *Chart) Render() string {
	grid := make([][]int, c.height)
	for i := range grid {
		grid[i] = make([]int, c.width)
		for j := range grid[i] {
			grid[i][j] = -1
		}
	}
	minX, maxX := bounds(c.Points, func(p Point) float64 { return p.X })
	minY, maxY := bounds(c.Points, func(p Point) float64 { return p.Y })
	category := make(map[string]int, len(c.Categories))
	for i, v := range c.Categories {
		category[v] = i
	}
	for _, p := range c.Points {
		col := scale(p.X, minX, maxX, c.width)
		row := c.height - 1 - scale(p.Y, minY, maxY, c.height)
		grid[row][col] = category[p.Color]
	}

	var b strings.Builder
	for i, line := range grid {
		if i > 0 {
			b.WriteByte('\n')
		}
		for _, cat := range line {
			if cat < 0 {
				b.WriteByte(' ')
				continue
			}
			b.WriteString(markerStyle(cat).Render("●"))
		}
	}
	plot := plotStyle.Render(b.String())

	var legend []string
	for i, v := range c.Categories {
		label := v
		if label == "" {
			label = "(missing)"
		}
		legend = append(legend, markerStyle(i).Render("●")+" "+label)
	}
	axes := axisStyle.Render(fmt.Sprintf("x: %s [%.3f, %.3f]  y: %s [%.3f, %.3f]", c.XLabel, minX, maxX, c.YLabel, minY, maxY))
	parts := []string{}
	if c.Title != "" {
		parts = append(parts, titleStyle.Render(c.Title))
	}
	parts = append(parts, plot, axes, c.ColorColumn+": "+strings.Join(legend, "  "))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	plotStyle  = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, true, true)
	axisStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

func markerStyle(i int) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(palette[i%len(palette)])
}

func bounds(points []Point, get func(Point) float64) (lo, hi float64) {
	if len(points) == 0 {
		return 0, 0
	}
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, p := range points {
		v := get(p)
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}

// scale maps v in [lo, hi] to a cell index in [0, cells).
func scale(v, lo, hi float64, cells int) int {
	if hi <= lo {
		return cells / 2
	}
	i := int((v - lo) / (hi - lo) * float64(cells-1))
	return min(max(i, 0), cells-1)
}
