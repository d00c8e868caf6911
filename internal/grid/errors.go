package grid

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrSorting indicates values that violate the order of a grid.
var ErrSorting = errors.New("grid: wrong sorting")

// SortingError reports the first pair of elements that is out of order.
type SortingError struct {
	Order string
	Index int
	Prev  float64
	Next  float64
}

func (e *SortingError) Error() string {
	return fmt.Sprintf("grid: wrong sorting (%s): x[%d]=%g, x[%d]=%g",
		e.Order, e.Index-1, e.Prev, e.Index, e.Next)
}

func (e *SortingError) Unwrap() error {
	return ErrSorting
}
