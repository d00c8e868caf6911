// Package report renders sampling and extraction results for the terminal.
package report

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/guptarohit/asciigraph"
	"gonum.org/v1/gonum/mat"
)

var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#00ffff"))

	Subtle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666688"))

	Label = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888899"))

	Value = lipgloss.NewStyle().
		Foreground(lipgloss.Color("#00ccff")).
		Bold(true)

	Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#ffffff")).
		Padding(0, 1)

	Cell = lipgloss.NewStyle().Padding(0, 1)

	border = lipgloss.Color("#444466")

	sparkHigh = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff88"))
	sparkMid  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffcc00"))
	sparkLow  = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444"))
)

// KV renders "label: value" pairs, one per line.
func KV(pairs ...string) string {
	var b strings.Builder
	for i := 0; i+1 < len(pairs); i += 2 {
		b.WriteString(Label.Render(pairs[i] + ":"))
		b.WriteByte(' ')
		b.WriteString(Value.Render(pairs[i+1]))
		b.WriteByte('\n')
	}
	return b.String()
}

// Table renders a bordered table.
func Table(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(border)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return Header
			}
			return Cell
		})
	return t.Render()
}

// Float formats v compactly for tables.
func Float(v float64) string {
	return strconv.FormatFloat(v, 'g', 6, 64)
}

// Spectrum renders every stride-th frequency of values ([species, frequency])
// as a table with one column per species.
func Spectrum(freq []float64, species []string, values *mat.Dense, stride int) string {
	stride = max(stride, 1)
	headers := append([]string{"GHz"}, species...)
	var rows [][]string
	for j := 0; j < len(freq); j += stride {
		row := []string{strconv.FormatFloat(freq[j]/1e9, 'f', 3, 64)}
		for i := range species {
			row = append(row, Float(values.At(i, j)))
		}
		rows = append(rows, row)
	}
	return Table(headers, rows)
}

// Plot draws log10 of every row of values against the frequency index.
// Non-positive values are drawn at the smallest positive value of the row.
func Plot(values *mat.Dense, species []string, caption string, width, height int) string {
	r, _ := values.Dims()
	series := make([][]float64, r)
	for i := range series {
		series[i] = log10Row(mat.Row(nil, i, values))
	}
	colors := []asciigraph.AnsiColor{asciigraph.Cyan, asciigraph.Yellow, asciigraph.Green, asciigraph.Red, asciigraph.Magenta}
	seriesColors := make([]asciigraph.AnsiColor, r)
	for i := range seriesColors {
		seriesColors[i] = colors[i%len(colors)]
	}
	return asciigraph.PlotMany(series,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Caption(fmt.Sprintf("%s  log10 %s", caption, strings.Join(species, " "))),
		asciigraph.SeriesColors(seriesColors...),
	)
}

func log10Row(row []float64) []float64 {
	floor := math.Inf(1)
	for _, v := range row {
		if v > 0 {
			floor = min(floor, v)
		}
	}
	if math.IsInf(floor, 1) {
		floor = 1
	}
	out := make([]float64, len(row))
	for i, v := range row {
		out[i] = math.Log10(max(v, floor))
	}
	return out
}

// Sparkline renders values as a one-line bar chart of at most width cells.
func Sparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return strings.Repeat("─", max(width, 0))
	}
	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := values[0], values[0]
	for _, v := range values {
		lo, hi = min(lo, v), max(hi, v)
	}
	rng := hi - lo
	if rng == 0 {
		rng = 1
	}
	step := max(len(values)/width, 1)

	var b strings.Builder
	for i := 0; i < width && i*step < len(values); i++ {
		norm := (values[i*step] - lo) / rng
		idx := min(max(int(norm*float64(len(chars)-1)), 0), len(chars)-1)
		c := string(chars[idx])
		switch {
		case norm > 0.7:
			b.WriteString(sparkHigh.Render(c))
		case norm > 0.3:
			b.WriteString(sparkMid.Render(c))
		default:
			b.WriteString(sparkLow.Render(c))
		}
	}
	return b.String()
}
