package render

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/TFMV/refugeeflow/models"
	"github.com/TFMV/refugeeflow/view"
)

var (
	colorAccent = lipgloss.Color(accentColor)
	colorSubtle = lipgloss.Color(gridColor)

	titleStyle = lipgloss.NewStyle().
			Foreground(colorAccent).
			Bold(true).
			Padding(0, 1)

	frameStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSubtle).
			Padding(0, 1)

	labelStyle = lipgloss.NewStyle().Foreground(colorSubtle)
	barStyle   = lipgloss.NewStyle().Foreground(colorAccent)
)

// nodeSymbols are cycled by node index on the node-link grid
var nodeSymbols = []rune{'O', '@', '#', 'X', '*', '+'}

// ASCIIRenderer outputs text for terminals
type ASCIIRenderer struct{}

// Name returns the name of the renderer
func (r *ASCIIRenderer) Name() string {
	return "ASCII Renderer"
}

// ContentType returns the MIME type of the rendered output
func (r *ASCIIRenderer) ContentType() string {
	return "text/plain; charset=utf-8"
}

// Render draws bars as horizontal rows, Sankey links as a flow list and the
// node-link diagram on a character grid
func (r *ASCIIRenderer) Render(chart *view.Chart, options *OutputOptions) ([]byte, error) {
	var body string
	switch {
	case chart.Bar != nil:
		body = r.bars(chart.Bar.Series, options)
	case chart.Sankey != nil:
		body = r.flows(chart.Sankey)
	case chart.NodeLink != nil:
		body = r.grid(chart.NodeLink.Graph, options)
	default:
		return nil, unsupported(r, chart.Kind)
	}

	out := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(chart.Title),
		frameStyle.Render(body),
	)
	return []byte(out + "\n"), nil
}

func (r *ASCIIRenderer) bars(series models.AggregatedSeries, options *OutputOptions) string {
	if len(series) == 0 {
		return labelStyle.Render("no data")
	}

	maxWidth := max(int(options.Width/16), 10)
	labelWidth := 0
	for _, p := range series {
		labelWidth = max(labelWidth, utf8.RuneCountInString(p.Location))
	}
	maxTotal := series[len(series)-1].Total

	rows := make([]string, 0, len(series))
	for _, p := range series {
		n := max(int(p.Total/maxTotal*float64(maxWidth)), 1)
		rows = append(rows, fmt.Sprintf("%s %s %g",
			labelStyle.Render(fmt.Sprintf("%-*s", labelWidth, p.Location)),
			barStyle.Render(strings.Repeat("█", n)),
			p.Total))
	}
	return strings.Join(rows, "\n")
}

func (r *ASCIIRenderer) flows(s *view.SankeyDiagram) string {
	if len(s.Links) == 0 {
		return labelStyle.Render("no data")
	}
	rows := make([]string, 0, len(s.Links))
	for _, l := range s.Links {
		rows = append(rows, fmt.Sprintf("%s -> %s %s",
			s.Nodes[l.Source], s.Nodes[l.Target], barStyle.Render(fmt.Sprintf("%g", l.Value))))
	}
	return strings.Join(rows, "\n")
}

func (r *ASCIIRenderer) grid(g *models.FlowGraph, options *OutputOptions) string {
	width := max(int(options.Width/10), 40)
	height := max(int(options.Height/20), 20)

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", width))
	}

	cell := func(n *models.Node) (int, int) {
		x := int(toCanvas(n.X, float64(width-1), 0))
		y := int(toCanvas(n.Y, float64(height-2), 0))
		return clamp(x, 0, width-1), clamp(y, 0, height-2)
	}

	for _, e := range g.Edges {
		if e.IsLoop() {
			continue
		}
		a, errA := g.NodeByID(e.Source)
		b, errB := g.NodeByID(e.Target)
		if errA != nil || errB != nil {
			continue
		}
		x1, y1 := cell(a)
		x2, y2 := cell(b)
		drawLine(grid, x1, y1, x2, y2)
	}

	for i := range g.Nodes {
		n := &g.Nodes[i]
		x, y := cell(n)
		grid[y][x] = nodeSymbols[i%len(nodeSymbols)]

		if options.ShowLabels && n.Label != "" {
			for j, c := range []rune(n.Label) {
				if x+j >= width {
					break
				}
				if grid[y+1][x+j] == ' ' || grid[y+1][x+j] == '·' {
					grid[y+1][x+j] = c
				}
			}
		}
	}

	var b strings.Builder
	for i, row := range grid {
		if i > 0 {
			b.WriteRune('\n')
		}
		b.WriteString(strings.TrimRight(string(row), " "))
	}
	return b.String()
}

func isNodeSymbol(c rune) bool {
	for _, s := range nodeSymbols {
		if c == s {
			return true
		}
	}
	return false
}

// Draw a line on the grid using Bresenham's algorithm
func drawLine(grid [][]rune, x1, y1, x2, y2 int) {
	dx := abs(x2 - x1)
	dy := -abs(y2 - y1)
	sx := 1
	if x1 >= x2 {
		sx = -1
	}
	sy := 1
	if y1 >= y2 {
		sy = -1
	}
	err := dx + dy

	for {
		if y1 >= 0 && y1 < len(grid) && x1 >= 0 && x1 < len(grid[y1]) && !isNodeSymbol(grid[y1][x1]) {
			grid[y1][x1] = '·'
		}

		if x1 == x2 && y1 == y2 {
			break
		}

		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x1 += sx
		}
		if e2 <= dx {
			err += dx
			y1 += sy
		}
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
