package field

import "github.com/pkg/errors"

var (
	// ErrInvalidField indicates a gridded field whose grids and data disagree.
	ErrInvalidField = errors.New("field: bad field")

	// ErrOutsideGrid indicates a query outside a grid whose extrapolation is none.
	ErrOutsideGrid = errors.New("field: position outside grid")

	// ErrInvalidWeights indicates precomputed weights that do not fit the lags or the field.
	ErrInvalidWeights = errors.New("field: weights do not match field")

	// ErrUnknownSpecies indicates a species that the atmosphere does not hold.
	ErrUnknownSpecies = errors.New("field: unknown species")
)
