package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestSpectrumSVG(t *testing.T) {
	freq := []float64{10e9, 20e9, 30e9, 40e9}
	values := mat.NewDense(2, 4, []float64{
		1e-25, 1e-24, 0, 1e-23,
		1e-26, 1e-26, 1e-26, 1e-26,
	})
	svg, err := SpectrumSVG(freq, []string{"H2O", "O2"}, values, 400, 200)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(svg, "<?xml"))
	assert.True(t, strings.HasSuffix(svg, "</svg>"))
	assert.Equal(t, 2, strings.Count(svg, "<path"))
	assert.Contains(t, svg, ">H2O</text>")
	// the zero splits the H2O line into two pieces
	assert.Equal(t, 3, strings.Count(svg, "M"), "two H2O segments plus one O2 segment")
}

func TestSpectrumSVGErrors(t *testing.T) {
	_, err := SpectrumSVG([]float64{1, 2}, []string{"O2"}, mat.NewDense(1, 3, nil), 10, 10)
	assert.Error(t, err)

	_, err = SpectrumSVG([]float64{1}, []string{"O2"}, mat.NewDense(1, 1, []float64{1}), 10, 10)
	assert.Error(t, err)

	_, err = SpectrumSVG([]float64{1, 2}, []string{"O2"}, mat.NewDense(1, 2, nil), 10, 10)
	assert.Error(t, err)
}
