package interp

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/san-kum/radinterp/internal/grid"
)

// Extrapolation selects what happens to a query outside a grid.
type Extrapolation int

const (
	// ExtrapolateLinear continues the nearest interval.
	ExtrapolateLinear Extrapolation = iota
	// ExtrapolateNearest clamps the query to the grid range.
	ExtrapolateNearest
	// ExtrapolateNone rejects the query.
	ExtrapolateNone
	// ExtrapolateZero yields a value of zero.
	ExtrapolateZero
)

var extrapolationNames = [...]string{"linear", "nearest", "none", "zero"}

func (e Extrapolation) String() string {
	if e < 0 || int(e) >= len(extrapolationNames) {
		return "unknown"
	}
	return extrapolationNames[e]
}

// ParseExtrapolation parses the lower-case name of an extrapolation mode.
func ParseExtrapolation(s string) (Extrapolation, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ExtrapolateLinear, nil
	}
	for i, name := range extrapolationNames {
		if name == s {
			return Extrapolation(i), nil
		}
	}
	return 0, errors.Errorf("interp: unknown extrapolation %q", s)
}

func (e Extrapolation) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

func (e *Extrapolation) UnmarshalText(b []byte) error {
	v, err := ParseExtrapolation(string(b))
	if err != nil {
		return err
	}
	*e = v
	return nil
}

// Extrapolate applies mode e to x on g. It returns the coordinate to
// interpolate at and false when x is outside g and e is None or Zero.
func Extrapolate[O grid.Order](e Extrapolation, g grid.Grid[O], x float64) (float64, bool) {
	if e == ExtrapolateLinear || g.Len() < 2 {
		return x, true
	}
	lo, hi := g.Front(), g.Back()
	if lo > hi {
		lo, hi = hi, lo
	}
	if x >= lo && x <= hi {
		return x, true
	}
	if e == ExtrapolateNearest {
		return min(max(x, lo), hi), true
	}
	return x, false
}
