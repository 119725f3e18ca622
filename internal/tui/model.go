package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tabvec/internal/chart"
	"tabvec/internal/report"
	"tabvec/internal/service"
)

// Axes is a pair of 0-based projection components.
type Axes struct{ X, Y int }

// Model is the Bubble Tea model for browsing the projections of a run.
type Model struct {
	result   *service.Result
	input    textinput.Model
	viewport viewport.Model
	width    int
	height   int
	pairs    []Axes
	cursor   int
	color    string
	status   string
	ready    bool
}

// New creates a TUI model for res. width and height size each chart's plot area.
func New(res *service.Result, width, height int) Model {
	ti := textinput.New()
	ti.Prompt = "color by> "
	ti.Placeholder = "column name, Enter to apply"
	ti.Focus()
	ti.CharLimit = 0
	vp := viewport.New(0, 0)
	return Model{
		result:   res,
		input:    ti,
		viewport: vp,
		width:    width,
		height:   height,
		pairs:    axisPairs(components(res)),
		color:    res.Dataset.Target,
		status:   "Up/Down switch components, type a column to recolor.",
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, rh := chartBoxStyle.GetFrameSize()
		_, qh := inputBoxStyle.GetFrameSize()
		reserved := 4 + 1 + qh + 1 // header, summary, status, spacer
		vh := msg.Height - reserved
		m.viewport.Width = max(20, msg.Width)
		m.viewport.Height = max(3, vh-rh)
		m.viewport.SetContent(m.renderCharts())
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD || msg.Type == tea.KeyEsc {
			return m, tea.Quit
		}
		switch msg.String() {
		case "enter":
			col := strings.TrimSpace(m.input.Value())
			if col == "" {
				return m, nil
			}
			if !m.result.Dataset.Has(col) {
				m.status = fmt.Sprintf("Unknown column %q", col)
				return m, nil
			}
			m.color = col
			m.input.SetValue("")
			m.status = fmt.Sprintf("Colored by %s", col)
			m.viewport.SetContent(m.renderCharts())
			return m, nil
		case "down":
			if len(m.pairs) > 0 {
				m.cursor = (m.cursor + 1) % len(m.pairs)
				m.viewport.SetContent(m.renderCharts())
			}
			return m, nil
		case "up":
			if len(m.pairs) > 0 {
				m.cursor = (m.cursor - 1 + len(m.pairs)) % len(m.pairs)
				m.viewport.SetContent(m.renderCharts())
			}
			return m, nil
		case "pgdown", "pgup":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the TUI layout and the current charts.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := lipgloss.NewStyle().Bold(true).Render("tabvec  run " + m.result.RunID)
	summary := lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(
		report.Summary(m.result) + "\n" + report.Strategy(m.result.Naive) + "\n" + report.Strategy(m.result.Structured))
	charts := chartBoxStyle.Render(m.viewport.View())
	input := inputBoxStyle.Render(m.input.View())
	status := lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.status)
	return header + "\n" + summary + "\n" + charts + "\n" + input + "\n" + status
}

// Axes returns the component pair currently displayed.
func (m Model) Axes() Axes {
	if len(m.pairs) == 0 {
		return Axes{0, 1}
	}
	return m.pairs[m.cursor]
}

// ColorColumn returns the column the charts are colored by.
func (m Model) ColorColumn() string { return m.color }

func (m Model) renderCharts() string {
	ax := m.Axes()
	panes := make([]string, 0, 2)
	for _, r := range []service.StrategyResult{m.result.Naive, m.result.Structured} {
		panes = append(panes, paneStyle.Render(m.renderChart(r, ax)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, panes...)
}

func (m Model) renderChart(r service.StrategyResult, ax Axes) string {
	title := fmt.Sprintf("%s (%d vs %d)", r.Name, ax.X+1, ax.Y+1)
	if r.Err != nil {
		return title + "\n" + errorStyle.Render(r.Err.Error())
	}
	c, err := chart.Build(m.result.Dataset, r.Projection, m.color, chart.DisplayConfig{
		Title: title, Width: m.width, Height: m.height, X: ax.X, Y: ax.Y,
	})
	if err != nil {
		return title + "\n" + errorStyle.Render(err.Error())
	}
	return c.Render()
}

// components is the widest projection of the run.
func components(res *service.Result) int {
	k := 0
	for _, r := range []service.StrategyResult{res.Naive, res.Structured} {
		if r.Projection != nil {
			_, c := r.Projection.Dims()
			k = max(k, c)
		}
	}
	return k
}

func axisPairs(k int) []Axes {
	var out []Axes
	for x := 0; x < k; x++ {
		for y := x + 1; y < k; y++ {
			out = append(out, Axes{x, y})
		}
	}
	return out
}

var (
	chartBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	inputBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	paneStyle     = lipgloss.NewStyle().MarginRight(2)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
)
