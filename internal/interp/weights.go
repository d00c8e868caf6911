package interp

import (
	"github.com/ctessum/sparse"
)

// Weights3 returns the outer product of three lags as a dense tensor of
// shape [a.Size(), b.Size(), c.Size()].
func Weights3(a, b, c Lag) *sparse.DenseArray {
	_, wa, na := parts(a)
	_, wb, nb := parts(b)
	_, wc, nc := parts(c)

	out := sparse.ZerosDense(na, nb, nc)
	for i := 0; i < na; i++ {
		for j := 0; j < nb; j++ {
			wij := wa[i] * wb[j]
			for k := 0; k < nc; k++ {
				out.Set(wij*wc[k], i, j, k)
			}
		}
	}
	return out
}

// Weights2 returns the outer product of two lags as a dense matrix of shape
// [b.Size(), c.Size()].
func Weights2(b, c Lag) *sparse.DenseArray {
	_, wb, nb := parts(b)
	_, wc, nc := parts(c)

	out := sparse.ZerosDense(nb, nc)
	for j := 0; j < nb; j++ {
		for k := 0; k < nc; k++ {
			out.Set(wb[j]*wc[k], j, k)
		}
	}
	return out
}

// Weights1 returns the weights of a single lag as a dense vector.
func Weights1(a Lag) *sparse.DenseArray {
	_, wa, na := parts(a)
	out := sparse.ZerosDense(na)
	for i := 0; i < na; i++ {
		out.Set(wa[i], i)
	}
	return out
}

// Indices returns the grid indices touched by a lag.
func Indices(l Lag) []int {
	idx, _, n := parts(l)
	return idx[:n:n]
}
