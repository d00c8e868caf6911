package grid

import (
	"math"
	"slices"
	"strconv"
	"strings"
)

// Order is the compile-time comparator of a grid.
type Order interface {
	Ascending | Descending
	// InOrder reports whether a may precede b.
	InOrder(a, b float64) bool
	Name() string
}

// Ascending orders values so that a <= b for neighbours.
type Ascending struct{}

func (Ascending) InOrder(a, b float64) bool { return a <= b }
func (Ascending) Name() string              { return "ascending" }

// Descending orders values so that a >= b for neighbours.
type Descending struct{}

func (Descending) InOrder(a, b float64) bool { return a >= b }
func (Descending) Name() string              { return "descending" }

type (
	AscendingGrid  = Grid[Ascending]
	DescendingGrid = Grid[Descending]
)

// Grid is a sorted sequence of coordinates. The zero value is an empty grid.
type Grid[O Order] struct {
	x []float64
}

// IsSorted reports whether xs is sorted under O.
func IsSorted[O Order](xs []float64) bool {
	return check[O](xs) == nil
}

func check[O Order](xs []float64) error {
	var o O
	for i := 1; i < len(xs); i++ {
		if !o.InOrder(xs[i-1], xs[i]) {
			return &SortingError{Order: o.Name(), Index: i, Prev: xs[i-1], Next: xs[i]}
		}
	}
	return nil
}

// New builds a grid from explicit values.
func New[O Order](xs ...float64) (Grid[O], error) {
	return FromSlice[O](xs)
}

// FromSlice copies xs into a new grid.
func FromSlice[O Order](xs []float64) (Grid[O], error) {
	if err := check[O](xs); err != nil {
		return Grid[O]{}, err
	}
	return Grid[O]{x: slices.Clone(xs)}, nil
}

// MustNew is New for literals known to be sorted; it panics otherwise.
func MustNew[O Order](xs ...float64) Grid[O] {
	g, err := New[O](xs...)
	if err != nil {
		panic(err)
	}
	return g
}

// FromFunc builds a grid by mapping fn over src.
func FromFunc[O Order, T any](src []T, fn func(T) float64) (Grid[O], error) {
	x := make([]float64, len(src))
	for i, v := range src {
		x[i] = fn(v)
	}
	if err := check[O](x); err != nil {
		return Grid[O]{}, err
	}
	return Grid[O]{x: x}, nil
}

// Extreme returns n values that start at the far end of the float64 range
// and advance one representable step at a time toward the other end. It is
// meant for stress tests of code that consumes grids.
func Extreme[O Order](n int) Grid[O] {
	var o O
	lo, hi := -math.MaxFloat64, math.MaxFloat64
	start, stop := lo, hi
	if !o.InOrder(lo, hi) {
		start, stop = hi, lo
	}

	x := make([]float64, n)
	v := start
	for i := range x {
		x[i] = v
		v = math.Nextafter(v, stop)
	}
	return Grid[O]{x: x}
}

// Assign replaces the values of g with a copy of xs. On error g is unchanged.
func (g *Grid[O]) Assign(xs []float64) error {
	if err := check[O](xs); err != nil {
		return err
	}
	g.x = slices.Clone(xs)
	return nil
}

func (g Grid[O]) Len() int                { return len(g.x) }
func (g Grid[O]) Empty() bool             { return len(g.x) == 0 }
func (g Grid[O]) At(i int) float64        { return g.x[i] }
func (g Grid[O]) Front() float64          { return g.x[0] }
func (g Grid[O]) Back() float64           { return g.x[len(g.x)-1] }
func (g Grid[O]) Vec() []float64          { return slices.Clone(g.x) }
func (g Grid[O]) Equal(xs []float64) bool { return slices.Equal(g.x, xs) }

// Ascending reports whether the grid order is ascending.
func (g Grid[O]) Ascending() bool {
	var o O
	return o.InOrder(-1, 1)
}

// All iterates over index/value pairs.
func (g Grid[O]) All(yield func(int, float64) bool) {
	for i, v := range g.x {
		if !yield(i, v) {
			return
		}
	}
}

func (g Grid[O]) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range g.x {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
	}
	b.WriteByte(']')
	return b.String()
}

// Same compares two grids element-wise regardless of their orders.
func Same[A, B Order](a Grid[A], b Grid[B]) bool {
	return slices.Equal(a.x, b.x)
}
