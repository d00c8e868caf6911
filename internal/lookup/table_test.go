package lookup

import (
	"context"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/san-kum/radinterp/internal/field"
	"github.com/san-kum/radinterp/internal/grid"
)

// model is multilinear in p, t and the H2O VMR, so table interpolation
// reproduces it exactly.
func model(species string, f, p, t, vmr float64) float64 {
	base := 1e-24 * (1 + f/1e11) * (p / 1e5) * (1 + 0.01*(t-250))
	if species == "H2O" {
		return base * (1 + 100*vmr)
	}
	return base
}

func testSpec() Spec {
	return Spec{
		Species:   []string{"H2O", "O2"},
		Nonlinear: []string{"H2O"},
		Frequency: []float64{1e11, 1.5e11, 2e11, 3e11},
		Pressure:  []float64{1e5, 5e4, 1e4},
		VMRRef: [][]float64{
			{0.004, 0.003, 0.002},
			{0.21, 0.21, 0.21},
		},
		TRef:    []float64{250, 240, 230},
		TPert:   []float64{-20, -10, 0, 10, 20},
		NLSPert: []float64{0.5, 1, 2},
	}
}

func newTestTable(t *testing.T) *Table {
	t.Helper()
	tbl, err := Generate(testSpec(), model)
	require.NoError(t, err)
	return tbl
}

func TestNewReportsEveryViolation(t *testing.T) {
	spec := Spec{
		Species:   []string{"A", "A"},
		Frequency: []float64{1, 1},
		Pressure:  []float64{2, 1},
		VMRRef:    [][]float64{{1, 1}, {1, 1}},
		TRef:      []float64{1, 1},
		XSec:      make([]float64, 8),
	}
	_, err := New(spec)
	require.ErrorIs(t, err, ErrInvalidTable)
	assert.Len(t, multierr.Errors(err), 2)
}

func TestNewRejectsInconsistentTables(t *testing.T) {
	tests := map[string]func(*Spec){
		"ascending pressure":        func(s *Spec) { s.Pressure = []float64{1e4, 5e4, 1e5} },
		"unsorted perturbations":    func(s *Spec) { s.TPert = []float64{0, -10, -20, 10, 20} },
		"unknown non-linear":        func(s *Spec) { s.Nonlinear = []string{"CO2"} },
		"perturbations, no species": func(s *Spec) { s.Nonlinear, s.XSec = nil, s.XSec[:5*2*4*3] },
		"short reference profile":   func(s *Spec) { s.TRef = s.TRef[:2] },
		"short VMR profile":         func(s *Spec) { s.VMRRef[1] = s.VMRRef[1][:1] },
		"cross-section size":        func(s *Spec) { s.XSec = s.XSec[1:] },
		"no species":                func(s *Spec) { s.Species, s.Nonlinear, s.NLSPert, s.VMRRef, s.XSec = nil, nil, nil, nil, nil },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			spec := newTestTable(t).Spec()
			mutate(&spec)
			_, err := New(spec)
			assert.ErrorIs(t, err, ErrInvalidTable)
		})
	}
}

func TestSpecRoundTrip(t *testing.T) {
	tbl := newTestTable(t)
	again, err := New(tbl.Spec())
	require.NoError(t, err)
	assert.Equal(t, tbl.xsec.Elements, again.xsec.Elements)
	assert.Equal(t, []string{"H2O"}, again.NonlinearSpecies())
	assert.True(t, again.IsNonlinear("H2O"))
	assert.False(t, again.IsNonlinear("O2"))
	assert.False(t, again.IsNonlinear("N2"))
}

func TestExtractIdentityAtNodes(t *testing.T) {
	tbl := newTestTable(t)
	spec := testSpec()

	for j := range spec.Frequency {
		for k, p := range spec.Pressure {
			for it, dt := range spec.TPert {
				for r, scale := range spec.NLSPert {
					vmrs := []float64{spec.VMRRef[0][k] * scale, spec.VMRRef[1][k]}
					got, err := tbl.Extract(j, p, spec.TRef[k]+dt, vmrs)
					require.NoError(t, err)
					assert.InEpsilon(t, tbl.xsec.Get(it, r, j, k), got[0], 1e-12)
					assert.InEpsilon(t, tbl.xsec.Get(it, 3, j, k), got[1], 1e-12)
				}
			}
		}
	}
}

func TestExtractMatchesModel(t *testing.T) {
	tbl := newTestTable(t)
	f := tbl.Frequency()

	tests := []struct{ p, temp, h2o, o2 float64 }{
		{8e4, 245, 0.003, 0.2},
		{5e4, 240, 0.003, 0.21},
		{3e4, 236, 0.0025, 0.1},
		{1.2e4, 232, 0.003, 0.3},
	}
	for _, tc := range tests {
		for j := range f.Len() {
			got, err := tbl.Extract(j, tc.p, tc.temp, []float64{tc.h2o, tc.o2})
			require.NoError(t, err)
			assert.InEpsilon(t, model("H2O", f.At(j), tc.p, tc.temp, tc.h2o), got[0], 1e-9, "%+v", tc)
			assert.InEpsilon(t, model("O2", f.At(j), tc.p, tc.temp, 0)*tc.o2/0.21, got[1], 1e-9, "%+v", tc)
		}
	}
}

func TestExtractPressureWeights(t *testing.T) {
	tbl, err := New(Spec{
		Species:   []string{"H2O"},
		Frequency: []float64{1e9},
		Pressure:  []float64{1000e2, 900e2, 800e2, 700e2},
		VMRRef:    [][]float64{{0.5, 0.5, 0.5, 0.5}},
		TRef:      []float64{250, 250, 250, 250},
		XSec:      []float64{10, 20, 30, 40},
	})
	require.NoError(t, err)

	got, err := tbl.Extract(0, 850e2, 250, []float64{0.5})
	require.NoError(t, err)
	assert.InDelta(t, 25, got[0], 1e-12)

	got, err = tbl.Extract(0, 850e2, 250, []float64{1.0})
	require.NoError(t, err)
	assert.InDelta(t, 50, got[0], 1e-12)

	// below the last level the pressure grid extrapolates
	got, err = tbl.Extract(0, 650e2, 250, []float64{0.5})
	require.NoError(t, err)
	assert.InDelta(t, 45, got[0], 1e-12)
}

func TestExtractTemperatureOutOfRange(t *testing.T) {
	tbl := newTestTable(t)

	_, err := tbl.Extract(0, 1e5, 275, []float64{0.004, 0.21})
	require.ErrorIs(t, err, ErrOutOfRange)
	var rerr *RangeError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "temperature perturbation", rerr.Quantity)
	assert.InDelta(t, 25, rerr.Value, 1e-12)
	assert.Equal(t, -20.0, rerr.Min)
	assert.Equal(t, 20.0, rerr.Max)

	_, err = tbl.Extract(0, 1e5, 270, []float64{0.004, 0.21})
	assert.NoError(t, err)
}

func TestExtractReferenceTemperatureOnly(t *testing.T) {
	spec := testSpec()
	spec.TPert = nil
	tbl, err := Generate(spec, model)
	require.NoError(t, err)

	// halfway between levels 0 and 1 the reference is 245 K
	_, err = tbl.Extract(0, 7.5e4, 245.0005, []float64{0.0035, 0.21})
	assert.NoError(t, err)

	_, err = tbl.Extract(0, 7.5e4, 246, []float64{0.0035, 0.21})
	assert.ErrorIs(t, err, ErrOutOfRange)

	for _, temp := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		got, err := tbl.Extract(0, 1e5, temp, []float64{0.004, 0.21})
		assert.ErrorIs(t, err, ErrOutOfRange, "temperature %g", temp)
		assert.Nil(t, got)
	}
}

func TestExtractNonlinearOutOfRange(t *testing.T) {
	tbl := newTestTable(t)
	_, err := tbl.Extract(1, 1e5, 250, []float64{0.01, 0.21})
	require.ErrorIs(t, err, ErrOutOfRange)
	var rerr *RangeError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "VMR perturbation of H2O", rerr.Quantity)
}

func TestExtractArgumentErrors(t *testing.T) {
	tbl := newTestTable(t)

	_, err := tbl.Extract(-1, 1e5, 250, []float64{0.004, 0.21})
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, err = tbl.Extract(4, 1e5, 250, []float64{0.004, 0.21})
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, err = tbl.Extract(0, 1e5, 250, []float64{0.004})
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestExtractZeroReferenceVMR(t *testing.T) {
	tbl, err := New(Spec{
		Species:   []string{"CO"},
		Frequency: []float64{1e9},
		Pressure:  []float64{1e5},
		VMRRef:    [][]float64{{0}},
		TRef:      []float64{280},
		XSec:      []float64{3},
	})
	require.NoError(t, err)

	got, err := tbl.Extract(0, 9e4, 280, []float64{0})
	require.NoError(t, err)
	assert.Equal(t, 3.0, got[0])

	_, err = tbl.Extract(0, 9e4, 280, []float64{1e-7})
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestExtractSpectrumMatchesExtract(t *testing.T) {
	spec := testSpec()
	spec.Frequency = make([]float64, 1000)
	for i := range spec.Frequency {
		spec.Frequency[i] = 1e11 + float64(i)*1e8
	}
	tbl, err := Generate(spec, model)
	require.NoError(t, err)

	vmrs := []float64{0.003, 0.2}
	m, err := tbl.ExtractSpectrum(context.Background(), 6e4, 243, vmrs)
	require.NoError(t, err)
	rows, cols := m.Dims()
	require.Equal(t, 2, rows)
	require.Equal(t, 1000, cols)

	for j := 0; j < cols; j += 37 {
		want, err := tbl.Extract(j, 6e4, 243, vmrs)
		require.NoError(t, err)
		assert.Equal(t, want[0], m.At(0, j))
		assert.Equal(t, want[1], m.At(1, j))
	}
}

func TestExtractSpectrumSurfacesError(t *testing.T) {
	tbl := newTestTable(t)
	_, err := tbl.ExtractSpectrum(context.Background(), 1e5, 300, []float64{0.004, 0.21})
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = tbl.ExtractSpectrum(context.Background(), 1e5, 250, nil)
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestExtractPoint(t *testing.T) {
	tbl := newTestTable(t)
	pt := field.Point{Pressure: 5e4, Temperature: 240, VMR: map[string]float64{"O2": 0.21, "H2O": 0.003, "N2": 0.78}}

	m, err := tbl.ExtractPoint(context.Background(), pt)
	require.NoError(t, err)
	want, err := tbl.Extract(2, 5e4, 240, []float64{0.003, 0.21})
	require.NoError(t, err)
	assert.Equal(t, want[0], m.At(0, 2))

	delete(pt.VMR, "H2O")
	_, err = tbl.ExtractPoint(context.Background(), pt)
	assert.ErrorIs(t, err, ErrSpeciesMismatch)
}

func TestExtractConcurrentReaders(t *testing.T) {
	tbl := newTestTable(t)
	want, err := tbl.Extract(1, 7e4, 244, []float64{0.003, 0.2})
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, 16)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for range 100 {
				got, err := tbl.Extract(1, 7e4, 244, []float64{0.003, 0.2})
				if err != nil {
					errs[i] = err
					return
				}
				if got[0] != want[0] || got[1] != want[1] {
					errs[i] = assert.AnError
					return
				}
			}
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		assert.NoError(t, err)
	}
}

func TestAdapt(t *testing.T) {
	tbl := newTestTable(t)
	f := grid.MustNew[grid.Ascending](1.25e11, 2e11, 2.5e11)

	adapted, err := tbl.Adapt([]string{"O2", "H2O"}, f)
	require.NoError(t, err)
	assert.Equal(t, []string{"O2", "H2O"}, adapted.Species())
	assert.Equal(t, []string{"H2O"}, adapted.NonlinearSpecies())
	assert.Equal(t, 4, tbl.Frequency().Len(), "receiver must be unchanged")

	for j := range f.Len() {
		got, err := adapted.Extract(j, 6e4, 243, []float64{0.2, 0.003})
		require.NoError(t, err)
		assert.InEpsilon(t, model("O2", f.At(j), 6e4, 243, 0)*0.2/0.21, got[0], 1e-9)
		assert.InEpsilon(t, model("H2O", f.At(j), 6e4, 243, 0.003), got[1], 1e-9)
	}

	linear, err := adapted.Adapt([]string{"O2"}, f)
	require.NoError(t, err)
	assert.Empty(t, linear.NonlinearSpecies())
	assert.True(t, linear.VMRPerturbations().Empty())
	assert.Equal(t, []float64{0.21, 0.21, 0.21}, linear.Spec().VMRRef[0])
}

func TestTableGridsCannotBeEditedThroughAccessors(t *testing.T) {
	tbl := newTestTable(t)
	want, err := tbl.Extract(0, 6e4, 243, []float64{0.003, 0.2})
	require.NoError(t, err)

	f := tbl.Frequency()
	require.NoError(t, f.Update(func(e *grid.Editor[grid.Ascending]) error {
		e.Set(0, 5e10)
		return nil
	}))
	p := tbl.Pressure()
	require.NoError(t, p.Update(func(e *grid.Editor[grid.Descending]) error {
		e.Set(0, 2e5)
		return nil
	}))

	assert.True(t, tbl.Frequency().Equal(testSpec().Frequency))
	assert.True(t, tbl.Pressure().Equal(testSpec().Pressure))
	got, err := tbl.Extract(0, 6e4, 243, []float64{0.003, 0.2})
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestAdaptErrors(t *testing.T) {
	tbl := newTestTable(t)
	f := tbl.Frequency()

	_, err := tbl.Adapt([]string{"CO2"}, f)
	assert.ErrorIs(t, err, ErrSpeciesMismatch)
	_, err = tbl.Adapt([]string{"O2", "O2"}, f)
	assert.ErrorIs(t, err, ErrSpeciesMismatch)
	_, err = tbl.Adapt(nil, f)
	assert.ErrorIs(t, err, ErrSpeciesMismatch)
	_, err = tbl.Adapt([]string{"O2"}, grid.MustNew[grid.Ascending](2e11, 5e11))
	assert.ErrorIs(t, err, ErrOutOfRange)
	_, err = tbl.Adapt([]string{"O2"}, grid.AscendingGrid{})
	assert.ErrorIs(t, err, ErrInvalidTable)
}

func TestCoefficients(t *testing.T) {
	got, err := Coefficients([]float64{1e-24, 0}, 1e5, 250)
	require.NoError(t, err)
	assert.InEpsilon(t, 1e-24*1e5/(Boltzmann*250), got[0], 1e-12)
	assert.Zero(t, got[1])

	_, err = Coefficients([]float64{1}, 1e5, 0)
	assert.Error(t, err)
}
