// Package export renders stored spectra to SVG.
package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var palette = []string{"#00ccff", "#ffcc00", "#00ff88", "#ff4444", "#ff00ff"}

// SpectrumSVG draws log10 of every row of values ([species, frequency])
// against frequency, one polyline per species. Non-positive values are
// dropped from their line.
func SpectrumSVG(freq []float64, species []string, values *mat.Dense, width, height int) (string, error) {
	rows, cols := values.Dims()
	if rows != len(species) || cols != len(freq) {
		return "", errors.Errorf("export: %dx%d values for %d species and %d frequencies", rows, cols, len(species), len(freq))
	}
	if cols < 2 {
		return "", errors.New("export: need at least two frequencies")
	}

	minF, maxF := floats.Min(freq), floats.Max(freq)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for i := range rows {
		for j := range cols {
			if v := values.At(i, j); v > 0 {
				minY, maxY = min(minY, math.Log10(v)), max(maxY, math.Log10(v))
			}
		}
	}
	if math.IsInf(minY, 1) {
		return "", errors.New("export: no positive values")
	}

	rangeX := maxF - minF
	if rangeX == 0 {
		rangeX = 1
	}
	rangeY := maxY - minY
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.05
	rangeY *= 1.1

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height)

	for i, name := range species {
		color := palette[i%len(palette)]
		fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="`, color)
		move := true
		for j, f := range freq {
			v := values.At(i, j)
			if v <= 0 {
				move = true
				continue
			}
			x := (f - minF) / rangeX * float64(width)
			y := float64(height) - (math.Log10(v)-minY)/rangeY*float64(height)
			cmd := "L"
			if move {
				cmd, move = "M", false
			}
			fmt.Fprintf(&sb, "%s%.1f,%.1f ", cmd, x, y)
		}
		fmt.Fprintf(&sb, "\"/>\n<text x=\"8\" y=\"%d\" fill=\"%s\" font-family=\"monospace\" font-size=\"12\">%s</text>\n",
			16*(i+1), color, name)
	}

	fmt.Fprintf(&sb, "<text x=\"8\" y=\"%d\" fill=\"#666688\" font-family=\"monospace\" font-size=\"11\">%.3g-%.3g GHz, log10 cross-section</text>\n",
		height-6, minF/1e9, maxF/1e9)
	sb.WriteString("</svg>")
	return sb.String(), nil
}
