package grid

import (
	"fmt"
	"slices"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// Editor is a mutable handle on a grid. The order is not enforced while the
// editor is open; Close performs the check.
type Editor[O Order] struct {
	g      *Grid[O]
	x      []float64
	closed bool
}

// Edit opens an editor on a private copy of the values of g. Copies of g
// never observe the edit; Close installs the values in g alone. The caller
// must call Close.
func (g *Grid[O]) Edit() *Editor[O] {
	return &Editor[O]{g: g, x: slices.Clone(g.x)}
}

func (e *Editor[O]) Append(v ...float64)  { e.x = append(e.x, v...) }
func (e *Editor[O]) Set(i int, v float64) { e.x[i] = v }
func (e *Editor[O]) At(i int) float64     { return e.x[i] }
func (e *Editor[O]) Len() int             { return len(e.x) }

// Values exposes the working slice for iteration and in-place writes. The
// slice is invalidated by Append, Resize and Replace, and is not shared with
// the grid until Close.
func (e *Editor[O]) Values() []float64 { return e.x }

// Resize truncates or zero-extends the working values to n.
func (e *Editor[O]) Resize(n int) {
	if n <= cap(e.x) {
		old := len(e.x)
		e.x = e.x[:n]
		for i := old; i < n; i++ {
			e.x[i] = 0
		}
		return
	}
	x := make([]float64, n)
	copy(x, e.x)
	e.x = x
}

// Replace swaps in a copy of xs as the working values.
func (e *Editor[O]) Replace(xs []float64) {
	e.x = append(e.x[:0:0], xs...)
}

// Close installs the edited values in the grid and checks their order. The
// grid holds the edited values even when the check fails. Closing twice is a
// no-op.
func (e *Editor[O]) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	e.g.x = e.x
	return check[O](e.x)
}

// Update runs fn on an editor and closes it afterwards, also when fn panics.
// A sorting failure is never dropped: it is combined with the error of fn,
// or attached to the panic value when fn panics.
func (g *Grid[O]) Update(fn func(*Editor[O]) error) (err error) {
	e := g.Edit()
	defer func() {
		cerr := e.Close()
		if p := recover(); p != nil {
			if cerr != nil {
				panic(errors.Wrap(cerr, fmt.Sprintf("grid edit aborted: %v", p)))
			}
			panic(p)
		}
		err = multierr.Append(err, cerr)
	}()
	return fn(e)
}
