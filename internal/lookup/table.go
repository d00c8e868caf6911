package lookup

import (
	"slices"

	"github.com/ctessum/sparse"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/multierr"

	"github.com/san-kum/radinterp/internal/grid"
)

// DefaultTemperatureTolerance is the allowed distance [K] between the query
// temperature and the reference profile for tables without temperature
// perturbations.
const DefaultTemperatureTolerance = 1e-3

// Spec is the raw content of a table.
type Spec struct {
	Species   []string
	Nonlinear []string

	Frequency []float64 // ascending [Hz]
	Pressure  []float64 // descending [Pa]

	VMRRef [][]float64 // [species][pressure]
	TRef   []float64   // [pressure], K

	TPert   []float64 // ascending [K], may be empty
	NLSPert []float64 // ascending fractions, empty iff Nonlinear is empty

	// XSec is the row-major cross-section array, see the package docs.
	XSec []float64

	// TemperatureTolerance overrides DefaultTemperatureTolerance when > 0.
	TemperatureTolerance float64
}

// Table is an immutable absorption lookup table.
type Table struct {
	species   []string
	nonlinear []bool
	offsets   []int

	f       grid.AscendingGrid
	p       grid.DescendingGrid
	tPert   grid.AscendingGrid
	nlsPert grid.AscendingGrid

	vmrRef *sparse.DenseArray // [species, pressure]
	tRef   []float64
	xsec   *sparse.DenseArray

	tTol float64
}

// New builds a table from spec and checks all invariants.
func New(spec Spec) (*Table, error) {
	var err error
	t := &Table{
		species: slices.Clone(spec.Species),
		tRef:    slices.Clone(spec.TRef),
		tTol:    spec.TemperatureTolerance,
	}
	if t.tTol <= 0 {
		t.tTol = DefaultTemperatureTolerance
	}

	if t.f, err = grid.FromSlice[grid.Ascending](spec.Frequency); err != nil {
		return nil, errors.Wrapf(ErrInvalidTable, "frequency grid: %v", err)
	}
	if t.p, err = grid.FromSlice[grid.Descending](spec.Pressure); err != nil {
		return nil, errors.Wrapf(ErrInvalidTable, "pressure grid: %v", err)
	}
	if t.tPert, err = grid.FromSlice[grid.Ascending](spec.TPert); err != nil {
		return nil, errors.Wrapf(ErrInvalidTable, "temperature perturbations: %v", err)
	}
	if t.nlsPert, err = grid.FromSlice[grid.Ascending](spec.NLSPert); err != nil {
		return nil, errors.Wrapf(ErrInvalidTable, "VMR perturbations: %v", err)
	}

	for _, s := range spec.Nonlinear {
		if !lo.Contains(spec.Species, s) {
			return nil, errors.Wrapf(ErrInvalidTable, "non-linear species %s is not a table species", s)
		}
	}
	t.nonlinear = lo.Map(t.species, func(s string, _ int) bool {
		return lo.Contains(spec.Nonlinear, s)
	})
	t.offsets = expandedOffsets(t.nonlinear, t.nlsPert.Len())

	np := t.p.Len()
	t.vmrRef = sparse.ZerosDense(len(t.species), max(np, 1))
	if len(spec.VMRRef) != len(t.species) {
		return nil, errors.Wrapf(ErrInvalidTable, "%d reference VMR profiles for %d species", len(spec.VMRRef), len(t.species))
	}
	for i, prof := range spec.VMRRef {
		if len(prof) != np {
			return nil, errors.Wrapf(ErrInvalidTable, "reference VMR profile of %s has %d levels, want %d", t.species[i], len(prof), np)
		}
		for k, v := range prof {
			t.vmrRef.Set(v, i, k)
		}
	}

	shape := t.xsecShape()
	t.xsec = sparse.ZerosDense(shape...)
	if len(spec.XSec) != len(t.xsec.Elements) {
		return nil, errors.Wrapf(ErrInvalidTable, "%d cross-sections for shape %v", len(spec.XSec), shape)
	}
	copy(t.xsec.Elements, spec.XSec)

	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func expandedOffsets(nonlinear []bool, nnls int) []int {
	offsets := make([]int, len(nonlinear)+1)
	for i, nl := range nonlinear {
		rows := 1
		if nl {
			rows = nnls
		}
		offsets[i+1] = offsets[i] + rows
	}
	return offsets
}

func (t *Table) xsecShape() []int {
	return []int{max(t.tPert.Len(), 1), t.offsets[len(t.offsets)-1], t.f.Len(), t.p.Len()}
}

// Validate checks the table invariants and reports every violation.
func (t *Table) Validate() error {
	var errs error
	fail := func(format string, args ...any) {
		errs = multierr.Append(errs, errors.Wrapf(ErrInvalidTable, format, args...))
	}

	if len(t.species) == 0 {
		fail("no species")
	}
	if dups := lo.FindDuplicates(t.species); len(dups) > 0 {
		fail("duplicate species %v", dups)
	}
	if t.f.Empty() {
		fail("empty frequency grid")
	}
	if t.p.Empty() {
		fail("empty pressure grid")
	}
	if !strict(t.f.Vec(), 1) {
		fail("frequency grid is not strictly ascending")
	}
	if !strict(t.p.Vec(), -1) {
		fail("pressure grid is not strictly descending")
	}
	if !strict(t.tPert.Vec(), 1) {
		fail("temperature perturbations are not strictly ascending")
	}
	if !strict(t.nlsPert.Vec(), 1) {
		fail("VMR perturbations are not strictly ascending")
	}
	hasNonlinear := lo.Contains(t.nonlinear, true)
	if hasNonlinear != !t.nlsPert.Empty() {
		fail("VMR perturbations must be given exactly when there are non-linear species")
	}
	if len(t.tRef) != t.p.Len() {
		fail("reference temperature has %d levels, want %d", len(t.tRef), t.p.Len())
	}
	if t.xsec == nil || !slices.Equal(t.xsec.Shape, t.xsecShape()) {
		fail("cross-section shape does not match grids %v", t.xsecShape())
	}
	return errs
}

func strict(xs []float64, sign float64) bool {
	for i := 1; i < len(xs); i++ {
		if sign*(xs[i]-xs[i-1]) <= 0 {
			return false
		}
	}
	return true
}

// Species returns the species of the table in table order.
func (t *Table) Species() []string { return slices.Clone(t.species) }

// NonlinearSpecies returns the species with VMR perturbations.
func (t *Table) NonlinearSpecies() []string {
	return lo.Filter(t.species, func(_ string, i int) bool { return t.nonlinear[i] })
}

// IsNonlinear reports whether species s has VMR perturbations.
func (t *Table) IsNonlinear(s string) bool {
	i := lo.IndexOf(t.species, s)
	return i >= 0 && t.nonlinear[i]
}

func (t *Table) Frequency() grid.AscendingGrid                { return t.f }
func (t *Table) Pressure() grid.DescendingGrid                { return t.p }
func (t *Table) TemperaturePerturbations() grid.AscendingGrid { return t.tPert }
func (t *Table) VMRPerturbations() grid.AscendingGrid         { return t.nlsPert }
func (t *Table) ReferenceTemperature() []float64              { return slices.Clone(t.tRef) }

// ReferenceVMR returns the reference profile of species s.
func (t *Table) ReferenceVMR(s string) ([]float64, error) {
	i := lo.IndexOf(t.species, s)
	if i < 0 {
		return nil, errors.Wrap(ErrSpeciesMismatch, s)
	}
	out := make([]float64, t.p.Len())
	for k := range out {
		out[k] = t.vmrRef.Get(i, k)
	}
	return out, nil
}

// Spec returns a copy of the table content.
func (t *Table) Spec() Spec {
	vmr := make([][]float64, len(t.species))
	for i, s := range t.species {
		vmr[i], _ = t.ReferenceVMR(s)
	}
	return Spec{
		Species:              t.Species(),
		Nonlinear:            t.NonlinearSpecies(),
		Frequency:            t.f.Vec(),
		Pressure:             t.p.Vec(),
		VMRRef:               vmr,
		TRef:                 t.ReferenceTemperature(),
		TPert:                t.tPert.Vec(),
		NLSPert:              t.nlsPert.Vec(),
		XSec:                 slices.Clone(t.xsec.Elements),
		TemperatureTolerance: t.tTol,
	}
}
