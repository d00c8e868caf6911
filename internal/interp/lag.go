package interp

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/radinterp/internal/grid"
)

// Longitude cycle bounds in degrees.
const (
	LonMin = -180.0
	LonMax = 180.0
)

// Lag is either a Lag0 or a Lag1.
type Lag interface {
	// Size is the number of participating nodes.
	Size() int
	// Index is the grid index of the k-th participating node.
	Index(k int) int
	// Weight is the weight of the k-th participating node.
	Weight(k int) float64

	lag()
}

// Lag0 selects a single node.
type Lag0 struct {
	Pos int
}

func (Lag0) Size() int          { return 1 }
func (l Lag0) Index(int) int    { return l.Pos }
func (Lag0) Weight(int) float64 { return 1 }
func (Lag0) lag()               {}
func (l Lag0) String() string   { return fmt.Sprintf("lag0{%d}", l.Pos) }

// Lag1 blends node Pos with weight W0 and node Next with weight W1. Next is
// Pos+1 unless a cyclic axis wraps from its last node to its first.
type Lag1 struct {
	Pos  int
	Next int
	W0   float64
	W1   float64
}

func (Lag1) Size() int { return 2 }

func (l Lag1) Index(k int) int {
	if k == 0 {
		return l.Pos
	}
	return l.Next
}

func (l Lag1) Weight(k int) float64 {
	if k == 0 {
		return l.W0
	}
	return l.W1
}

func (Lag1) lag() {}

func (l Lag1) String() string {
	return fmt.Sprintf("lag1{%d:%g, %d:%g}", l.Pos, l.W0, l.Next, l.W1)
}

// parts unpacks a lag for the tensor and sampling loops.
func parts(l Lag) (idx [2]int, w [2]float64, n int) {
	switch l := l.(type) {
	case Lag0:
		return [2]int{l.Pos, l.Pos}, [2]float64{1, 0}, 1
	case Lag1:
		return [2]int{l.Pos, l.Next}, [2]float64{l.W0, l.W1}, 2
	default:
		panic(fmt.Sprintf("interp: unknown lag type %T", l))
	}
}

// bracket returns i such that x lies in [x_i, x_{i+1}] (in grid order),
// clamped to [0, n-2]. Repeated nodes at either end are skipped so the
// interval has non-zero width unless every node is equal.
func bracket[O grid.Order](g grid.Grid[O], x float64) int {
	n := g.Len()
	var k int
	if g.Ascending() {
		k = sort.Search(n, func(i int) bool { return g.At(i) > x })
	} else {
		k = sort.Search(n, func(i int) bool { return g.At(i) < x })
	}
	i := min(max(k-1, 0), n-2)
	for i > 0 && g.At(i) == g.At(i+1) {
		i--
	}
	for i < n-2 && g.At(i) == g.At(i+1) {
		i++
	}
	return i
}

// Linear returns the order-1 lag of x on g. g needs at least two nodes.
// Outside the grid the first or last interval is extrapolated. Repeated end
// nodes fall back to the nearest interval of non-zero width.
func Linear[O grid.Order](g grid.Grid[O], x float64) Lag1 {
	if g.Len() < 2 {
		panic(fmt.Sprintf("interp: linear lag needs two nodes, grid has %d", g.Len()))
	}
	i := bracket(g, x)
	x0, x1 := g.At(i), g.At(i+1)
	if x0 == x1 {
		return Lag1{Pos: i, Next: i + 1, W0: 1}
	}
	w1 := (x - x0) / (x1 - x0)
	return Lag1{Pos: i, Next: i + 1, W0: 1 - w1, W1: w1}
}

// Nearest returns the order-0 lag of the node closest to x. Ties go to the
// later node.
func Nearest[O grid.Order](g grid.Grid[O], x float64) Lag0 {
	if g.Len() == 1 {
		return Lag0{}
	}
	i := bracket(g, x)
	if math.Abs(g.At(i)-x) >= math.Abs(g.At(i+1)-x) {
		return Lag0{Pos: i + 1}
	}
	return Lag0{Pos: i}
}

// Wrap maps x into the cycle [lo, hi).
func Wrap(x, lo, hi float64) float64 {
	period := hi - lo
	x = math.Mod(x-lo, period)
	if x < 0 {
		x += period
	}
	return x + lo
}

// Cyclic returns the order-1 lag of x on an ascending grid whose values lie
// on the cycle [lo, hi]. Between the last and the first node the lag wraps
// across the seam. A grid running from lo to hi covers the full cycle and
// never wraps.
func Cyclic(g grid.AscendingGrid, x, lo, hi float64) Lag1 {
	if g.Len() < 2 {
		panic(fmt.Sprintf("interp: cyclic lag needs two nodes, grid has %d", g.Len()))
	}
	x = Wrap(x, lo, hi)

	first, last := g.Front(), g.Back()
	if (first == lo && last == hi) || (x >= first && x <= last) {
		return Linear(g, x)
	}

	period := hi - lo
	span := first + period - last
	d := x - last
	if d < 0 {
		d += period
	}
	w1 := d / span
	return Lag1{Pos: g.Len() - 1, Next: 0, W0: 1 - w1, W1: w1}
}

// AltLag is the altitude lag of x.
func AltLag(g grid.AscendingGrid, x float64) Lag {
	if g.Len() == 1 {
		return Lag0{}
	}
	return Linear(g, x)
}

// LatLag is the latitude lag of x.
func LatLag(g grid.AscendingGrid, x float64) Lag {
	if g.Len() == 1 {
		return Lag0{}
	}
	return Linear(g, x)
}

// LonLag is the longitude lag of x on the [-180, 180) cycle.
func LonLag(g grid.AscendingGrid, x float64) Lag {
	if g.Len() == 1 {
		return Lag0{}
	}
	return Cyclic(g, x, LonMin, LonMax)
}

// Auto returns a Lag0 for single-node grids and a linear lag otherwise.
func Auto[O grid.Order](g grid.Grid[O], x float64) Lag {
	if g.Len() == 1 {
		return Lag0{}
	}
	return Linear(g, x)
}
