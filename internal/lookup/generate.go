package lookup

import (
	"github.com/ctessum/sparse"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// XSecFunc models the cross-section of species at frequency f [Hz],
// pressure p [Pa], temperature t [K] and mixing ratio vmr.
type XSecFunc func(species string, f, p, t, vmr float64) float64

// Generate fills spec.XSec by evaluating fn at every table node and builds
// the table. The node temperature is tRef+tPert and the node VMR of a
// non-linear species is vmrRef*nlsPert.
func Generate(spec Spec, fn XSecFunc) (*Table, error) {
	if fn == nil {
		return nil, errors.Wrap(ErrInvalidTable, "nil cross-section model")
	}
	nonlinear := lo.Map(spec.Species, func(s string, _ int) bool { return lo.Contains(spec.Nonlinear, s) })
	nnls := 0
	if lo.Contains(nonlinear, true) {
		nnls = len(spec.NLSPert)
	}
	offsets := expandedOffsets(nonlinear, nnls)

	np, nf := len(spec.Pressure), len(spec.Frequency)
	if len(spec.TRef) != np || len(spec.VMRRef) != len(spec.Species) {
		return nil, errors.Wrap(ErrInvalidTable, "reference profiles do not match the pressure grid and species")
	}
	tPert := spec.TPert
	if len(tPert) == 0 {
		tPert = []float64{0}
	}

	xsec := sparse.ZerosDense(len(tPert), offsets[len(offsets)-1], nf, np)
	for s, name := range spec.Species {
		if len(spec.VMRRef[s]) != np {
			return nil, errors.Wrapf(ErrInvalidTable, "reference VMR profile of %s has %d levels, want %d", name, len(spec.VMRRef[s]), np)
		}
		scales := []float64{1}
		if nonlinear[s] {
			scales = spec.NLSPert
		}
		for r, scale := range scales {
			for it, dt := range tPert {
				for j, f := range spec.Frequency {
					for k, p := range spec.Pressure {
						v := fn(name, f, p, spec.TRef[k]+dt, spec.VMRRef[s][k]*scale)
						xsec.Set(v, it, offsets[s]+r, j, k)
					}
				}
			}
		}
	}
	spec.XSec = xsec.Elements
	return New(spec)
}
