package config

import (
	"math"
	"slices"

	"github.com/samber/lo"

	"github.com/san-kum/radinterp/internal/field"
)

const (
	DefaultSurfacePressure = 101325.0
	DefaultScaleHeight     = 8000.0
	DefaultLapseRate       = -0.0065
	DefaultWaterScale      = 2000.0
	DefaultO2              = 0.2095
)

type climate struct {
	surfaceT   float64
	surfaceH2O float64
}

var presets = map[string]climate{
	"midlatitude": {surfaceT: 288.15, surfaceH2O: 0.01},
	"tropical":    {surfaceT: 300, surfaceH2O: 0.025},
	"subarctic":   {surfaceT: 257, surfaceH2O: 0.0012},
}

// Presets lists the names accepted by GetPreset.
func Presets() []string {
	names := lo.Keys(presets)
	slices.Sort(names)
	return names
}

// GetPreset returns the named scenario or nil.
func GetPreset(name string) *Scenario {
	c, ok := presets[name]
	if !ok {
		return nil
	}
	s := newScenario(c)
	s.Name = name
	return s
}

// DefaultScenario is the mid-latitude preset.
func DefaultScenario() *Scenario {
	return GetPreset("midlatitude")
}

func newScenario(c climate) *Scenario {
	temperature := ProfileConfig{Kind: ProfileLinear, Surface: c.surfaceT, Lapse: DefaultLapseRate}
	pressure := ProfileConfig{Kind: ProfileExponential, Surface: DefaultSurfacePressure, ScaleHeight: DefaultScaleHeight}
	h2o := ProfileConfig{Kind: ProfileExponential, Surface: c.surfaceH2O, ScaleHeight: DefaultWaterScale}
	o2 := DefaultO2

	// Table levels are spaced by a quarter scale height, from just below
	// the surface to about 19 km.
	levels := lo.Map(lo.Range(11), func(k, _ int) float64 {
		return 1.1e5 * math.Exp(-0.25*float64(k))
	})
	altOf := func(p float64) float64 { return -DefaultScaleHeight * math.Log(p/DefaultSurfacePressure) }
	tf, h2of := temperature.field(), h2o.field()

	return &Scenario{
		Atmos: AtmosphereConfig{
			Altitude:    []float64{0, 1000, 2000, 5000, 10000, 15000},
			Latitude:    []float64{-60, 0, 60},
			Longitude:   []float64{-180, -90, 0, 90},
			Temperature: FieldConfig{Profile: &temperature},
			Pressure:    FieldConfig{Profile: &pressure},
			Species: map[string]FieldConfig{
				"H2O": {Profile: &h2o},
				"O2":  {Constant: &o2},
			},
		},
		Lookup: LookupConfig{
			Synthetic: true,
			Species:   []string{"H2O", "O2"},
			Nonlinear: []string{"H2O"},
			Frequency: lo.RangeWithSteps(10e9, 200.5e9, 2.5e9),
			Pressure:  levels,
			TRef: lo.Map(levels, func(p float64, _ int) float64 {
				return tf(altOf(p), 0, 0)
			}),
			VMRRef: map[string][]float64{
				"H2O": lo.Map(levels, func(p float64, _ int) float64 { return h2of(altOf(p), 0, 0) }),
				"O2":  lo.Map(levels, func(float64, int) float64 { return o2 }),
			},
			TPert:   []float64{-40, -20, 0, 20, 40},
			NLSPert: []float64{0, 0.5, 1, 2, 4},
		},
		Queries: []field.Position{
			{Alt: 0, Lat: 45, Lon: 7},
			{Alt: 1500, Lat: 45, Lon: 7},
			{Alt: 8000, Lat: -30, Lon: 170},
			{Alt: 12000, Lat: 10, Lon: -120},
		},
	}
}
