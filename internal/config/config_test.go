package config

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/san-kum/radinterp/internal/field"
	"github.com/san-kum/radinterp/internal/interp"
	"github.com/san-kum/radinterp/internal/lookup"
)

func TestDefaultScenario(t *testing.T) {
	s := DefaultScenario()
	require.NoError(t, s.Validate())
	assert.Equal(t, "midlatitude", s.Name)
	assert.NotEmpty(t, s.Queries)
}

func TestGetPreset(t *testing.T) {
	assert.Equal(t, []string{"midlatitude", "subarctic", "tropical"}, Presets())
	s := GetPreset("tropical")
	require.NotNil(t, s)
	assert.Equal(t, 300.0, s.Atmos.Temperature.Profile.Surface)
	assert.Nil(t, GetPreset("martian"))
}

func TestPresetsExtractEveryQuery(t *testing.T) {
	for _, name := range Presets() {
		t.Run(name, func(t *testing.T) {
			s := GetPreset(name)
			atm, err := s.Atmosphere()
			require.NoError(t, err)
			tbl, err := s.Table()
			require.NoError(t, err)

			points, err := atm.Profile(context.Background(), s.Queries)
			require.NoError(t, err)
			for i, pt := range points {
				m, err := tbl.ExtractPoint(context.Background(), pt)
				require.NoError(t, err, "query %d", i)
				rows, cols := m.Dims()
				assert.Equal(t, 2, rows)
				assert.Equal(t, tbl.Frequency().Len(), cols)
				for j := range cols {
					assert.Greater(t, m.At(0, j), 0.0)
				}
			}
		})
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	s := DefaultScenario()
	s.Atmos.Extrapolation.Latitude = interp.ExtrapolateNearest
	require.NoError(t, Save(path, s))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, s, got)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidateCollectsProblems(t *testing.T) {
	s := DefaultScenario()
	s.Atmos.Altitude = []float64{10, 0}
	s.Atmos.Longitude = []float64{0, 200}
	s.Atmos.Pressure = FieldConfig{}
	s.Lookup.VMRRef = nil
	s.Queries = append(s.Queries, field.Position{Lat: 95})

	err := s.Validate()
	require.ErrorIs(t, err, ErrInvalidScenario)
	// altitude, longitude, pressure, two reference VMRs, latitude
	assert.Len(t, multierr.Errors(err), 6)
}

func TestFieldConfigKinds(t *testing.T) {
	s := DefaultScenario()
	s.Atmos.Species["O3"] = FieldConfig{Data: make([]float64, 6*3*4)}
	bad := 1.0
	s.Atmos.Species["CO"] = FieldConfig{Constant: &bad, Profile: &ProfileConfig{Kind: ProfileLinear}}
	assert.ErrorIs(t, s.Validate(), ErrInvalidScenario)

	delete(s.Atmos.Species, "CO")
	atm, err := s.Atmosphere()
	require.NoError(t, err)

	v, err := atm.Temperature.At(1000, 0, 0)
	require.NoError(t, err)
	assert.InDelta(t, 288.15-6.5, v, 1e-9)

	v, err = atm.Pressure.At(DefaultScaleHeight, 0, 0)
	require.NoError(t, err)
	assert.InEpsilon(t, DefaultSurfacePressure/2.718281828459045, v, 1e-12)

	v, err = atm.Species["O3"].At(3000, 10, 10)
	require.NoError(t, err)
	assert.Zero(t, v)

	s.Atmos.Species["O3"] = FieldConfig{Data: make([]float64, 5)}
	_, err = s.Atmosphere()
	assert.Error(t, err)
}

func TestTableFromExplicitCrossSections(t *testing.T) {
	s := DefaultScenario()
	s.Lookup = LookupConfig{
		Species:   []string{"O2"},
		Frequency: []float64{50e9, 60e9},
		Pressure:  []float64{1e5, 5e4},
		TRef:      []float64{280, 250},
		VMRRef:    map[string][]float64{"O2": {0.21, 0.21}},
		XSec:      []float64{1, 2, 3, 4},
	}
	tbl, err := s.Table()
	require.NoError(t, err)

	got, err := tbl.Extract(1, 5e4, 250, []float64{0.21})
	require.NoError(t, err)
	assert.Equal(t, 4.0, got[0])

	s.Lookup.XSec = s.Lookup.XSec[:3]
	_, err = s.Table()
	assert.ErrorIs(t, err, lookup.ErrInvalidTable)
}
