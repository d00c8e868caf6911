package lookup

import (
	"context"
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/radinterp/internal/field"
	"github.com/san-kum/radinterp/internal/interp"
	"github.com/san-kum/radinterp/internal/parallel"
)

// Boltzmann is the Boltzmann constant [J/K].
const Boltzmann = 1.380649e-23

// rangeSlack absorbs rounding in t - tRef and vmr/vmrRef at the edges of the
// perturbation grids.
const rangeSlack = 1e-9

// spectrumChunk is the smallest number of frequencies handed to one worker.
const spectrumChunk = 256

// Extract returns the cross-section of every table species at frequency
// index fIndex, pressure p [Pa], temperature t [K] and volume mixing ratios
// vmrs (one per species, in table order).
func (t *Table) Extract(fIndex int, p, temp float64, vmrs []float64) ([]float64, error) {
	if fIndex < 0 || fIndex >= t.f.Len() {
		return nil, &RangeError{Quantity: "frequency index", Value: float64(fIndex), Min: 0, Max: float64(t.f.Len() - 1)}
	}
	if len(vmrs) != len(t.species) {
		return nil, errors.Wrapf(ErrDimensionMismatch, "%d VMRs for %d species", len(vmrs), len(t.species))
	}

	pl := interp.Auto(t.p, p)
	if err := t.checkReferenceTemperature(pl, temp); err != nil {
		return nil, err
	}

	out := make([]float64, len(t.species))
	for k := range pl.Size() {
		wp := pl.Weight(k)
		if wp == 0 {
			continue
		}
		level := pl.Index(k)
		tl, err := t.temperatureLag(level, temp)
		if err != nil {
			return nil, err
		}
		for s := range t.species {
			v, err := t.speciesValue(s, fIndex, level, tl, vmrs[s])
			if err != nil {
				return nil, err
			}
			out[s] += wp * v
		}
	}
	return out, nil
}

// checkReferenceTemperature enforces that tables without temperature
// perturbations are only queried on their reference profile.
func (t *Table) checkReferenceTemperature(pl interp.Lag, temp float64) error {
	if !t.tPert.Empty() {
		return nil
	}
	var ref float64
	for k := range pl.Size() {
		ref += pl.Weight(k) * t.tRef[pl.Index(k)]
	}
	if !(math.Abs(temp-ref) <= t.tTol) {
		return &RangeError{Quantity: "temperature", Value: temp, Min: ref - t.tTol, Max: ref + t.tTol}
	}
	return nil
}

func (t *Table) temperatureLag(level int, temp float64) (interp.Lag, error) {
	if t.tPert.Empty() {
		return interp.Lag0{}, nil
	}
	dt := temp - t.tRef[level]
	if err := inRange("temperature perturbation", dt, t.tPert.Front(), t.tPert.Back()); err != nil {
		return nil, err
	}
	return interp.Auto(t.tPert, dt), nil
}

func (t *Table) speciesValue(s, f, level int, tl interp.Lag, vmr float64) (float64, error) {
	ratio, err := t.vmrRatio(s, level, vmr)
	if err != nil {
		return 0, err
	}
	row := t.offsets[s]

	if !t.nonlinear[s] {
		var x float64
		for k := range tl.Size() {
			x += tl.Weight(k) * t.xsec.Get(tl.Index(k), row, f, level)
		}
		return x * ratio, nil
	}

	if err := inRange("VMR perturbation of "+t.species[s], ratio, t.nlsPert.Front(), t.nlsPert.Back()); err != nil {
		return 0, err
	}
	vl := interp.Auto(t.nlsPert, ratio)
	var x float64
	for k := range tl.Size() {
		for m := range vl.Size() {
			x += tl.Weight(k) * vl.Weight(m) * t.xsec.Get(tl.Index(k), row+vl.Index(m), f, level)
		}
	}
	return x, nil
}

func (t *Table) vmrRatio(s, level int, vmr float64) (float64, error) {
	ref := t.vmrRef.Get(s, level)
	switch {
	case vmr == ref:
		return 1, nil
	case ref == 0:
		return 0, errors.Wrapf(ErrOutOfRange, "reference VMR of %s is zero at level %d", t.species[s], level)
	}
	return vmr / ref, nil
}

func inRange(quantity string, x, lo, hi float64) error {
	slack := rangeSlack * max(1, math.Abs(lo), math.Abs(hi))
	if x < lo-slack || x > hi+slack || math.IsNaN(x) {
		return &RangeError{Quantity: quantity, Value: x, Min: lo, Max: hi}
	}
	return nil
}

// ExtractSpectrum extracts every frequency of the table. The result has one
// row per species and one column per frequency. Frequencies are split across
// workers; the first failing frequency's error is returned.
func (t *Table) ExtractSpectrum(ctx context.Context, p, temp float64, vmrs []float64) (*mat.Dense, error) {
	if len(vmrs) != len(t.species) {
		return nil, errors.Wrapf(ErrDimensionMismatch, "%d VMRs for %d species", len(vmrs), len(t.species))
	}
	out := mat.NewDense(len(t.species), t.f.Len(), nil)
	err := parallel.ForEach(ctx, t.f.Len(), spectrumChunk, func(i int) error {
		col, err := t.Extract(i, p, temp, vmrs)
		if err != nil {
			return err
		}
		for s, v := range col {
			out.Set(s, i, v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ExtractPoint extracts the spectrum at an atmospheric point. The point must
// carry a VMR for every table species.
func (t *Table) ExtractPoint(ctx context.Context, pt field.Point) (*mat.Dense, error) {
	vmrs, err := pt.VMRs(t.species)
	if err != nil {
		return nil, errors.Wrap(ErrSpeciesMismatch, err.Error())
	}
	return t.ExtractSpectrum(ctx, pt.Pressure, pt.Temperature, vmrs)
}

// Coefficients converts extracted cross-sections [m^2] to absorption
// coefficients [1/m] using the ideal gas number density p/(kB*T).
func Coefficients(xsec []float64, p, temp float64) ([]float64, error) {
	if temp <= 0 {
		return nil, errors.Errorf("lookup: non-positive temperature %g", temp)
	}
	n := p / (Boltzmann * temp)
	out := make([]float64, len(xsec))
	for i, x := range xsec {
		out[i] = x * n
	}
	return out, nil
}
