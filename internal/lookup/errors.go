package lookup

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrSpeciesMismatch indicates a requested species that the table lacks.
	ErrSpeciesMismatch = errors.New("lookup: species not in table")

	// ErrOutOfRange indicates a query outside the stored perturbation or frequency range.
	ErrOutOfRange = errors.New("lookup: query out of range")

	// ErrInvalidTable indicates a table that violates its invariants.
	ErrInvalidTable = errors.New("lookup: invalid table")

	// ErrDimensionMismatch indicates input vectors whose length disagrees with the table.
	ErrDimensionMismatch = errors.New("lookup: dimension mismatch")
)

// RangeError reports a query coordinate outside [Min, Max].
type RangeError struct {
	Quantity string
	Value    float64
	Min      float64
	Max      float64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("lookup: %s %g outside [%g, %g]", e.Quantity, e.Value, e.Min, e.Max)
}

func (e *RangeError) Unwrap() error {
	return ErrOutOfRange
}
