package interp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/floats"
)

func TestWeightsSumToOne(t *testing.T) {
	lags := []Lag{
		Lag0{Pos: 0},
		Lag1{Pos: 1, Next: 2, W0: 0.3, W1: 0.7},
		Lag1{Pos: 4, Next: 0, W0: 0.9, W1: 0.1},
		Lag1{Pos: 0, Next: 1, W0: 2, W1: -1},
	}

	for _, a := range lags {
		assert.InDelta(t, 1.0, floats.Sum(Weights1(a).Elements), 1e-12)
		for _, b := range lags {
			w2 := Weights2(a, b)
			assert.Equal(t, []int{a.Size(), b.Size()}, w2.Shape)
			assert.InDelta(t, 1.0, floats.Sum(w2.Elements), 1e-12)
			for _, c := range lags {
				w3 := Weights3(a, b, c)
				assert.Equal(t, []int{a.Size(), b.Size(), c.Size()}, w3.Shape)
				assert.InDelta(t, 1.0, floats.Sum(w3.Elements), 1e-12)
			}
		}
	}
}

func TestWeights3OuterProduct(t *testing.T) {
	a := Lag1{Pos: 0, Next: 1, W0: 0.25, W1: 0.75}
	b := Lag0{Pos: 2}
	c := Lag1{Pos: 3, Next: 0, W0: 0.5, W1: 0.5}

	w := Weights3(a, b, c)
	assert.InDelta(t, 0.125, w.Get(0, 0, 0), 1e-15)
	assert.InDelta(t, 0.125, w.Get(0, 0, 1), 1e-15)
	assert.InDelta(t, 0.375, w.Get(1, 0, 0), 1e-15)
	assert.InDelta(t, 0.375, w.Get(1, 0, 1), 1e-15)
}
