// Package config loads and saves scenario files: an atmosphere, a lookup
// table and the positions to query.
package config

import (
	"math"
	"os"
	"slices"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/radinterp/internal/field"
	"github.com/san-kum/radinterp/internal/grid"
	"github.com/san-kum/radinterp/internal/interp"
	"github.com/san-kum/radinterp/internal/lookup"
)

// ErrInvalidScenario indicates a scenario file that cannot be built.
var ErrInvalidScenario = errors.New("config: invalid scenario")

const (
	ProfileExponential = "exponential"
	ProfileLinear      = "linear"
)

type Scenario struct {
	Name    string           `yaml:"name"`
	Atmos   AtmosphereConfig `yaml:"atmosphere"`
	Lookup  LookupConfig     `yaml:"lookup"`
	Queries []field.Position `yaml:"queries"`
}

type AtmosphereConfig struct {
	Altitude      []float64              `yaml:"altitude"`
	Latitude      []float64              `yaml:"latitude"`
	Longitude     []float64              `yaml:"longitude"`
	Extrapolation ExtrapolationConfig    `yaml:"extrapolation"`
	Temperature   FieldConfig            `yaml:"temperature"`
	Pressure      FieldConfig            `yaml:"pressure"`
	Species       map[string]FieldConfig `yaml:"species"`
}

type ExtrapolationConfig struct {
	Altitude interp.Extrapolation `yaml:"altitude"`
	Latitude interp.Extrapolation `yaml:"latitude"`
}

// FieldConfig describes a field by exactly one of a constant, row-major data
// on the atmosphere grids, or an analytic altitude profile.
type FieldConfig struct {
	Constant *float64       `yaml:"constant,omitempty"`
	Data     []float64      `yaml:"data,omitempty"`
	Profile  *ProfileConfig `yaml:"profile,omitempty"`
}

// ProfileConfig is a function of altitude only. Exponential profiles decay
// as surface*exp(-alt/scale_height); linear ones change by lapse per metre.
type ProfileConfig struct {
	Kind        string  `yaml:"kind"`
	Surface     float64 `yaml:"surface"`
	ScaleHeight float64 `yaml:"scale_height,omitempty"`
	Lapse       float64 `yaml:"lapse,omitempty"`
}

type LookupConfig struct {
	Synthetic            bool                 `yaml:"synthetic,omitempty"`
	Species              []string             `yaml:"species"`
	Nonlinear            []string             `yaml:"nonlinear,omitempty"`
	Frequency            []float64            `yaml:"frequency"`
	Pressure             []float64            `yaml:"pressure"`
	TRef                 []float64            `yaml:"t_ref"`
	VMRRef               map[string][]float64 `yaml:"vmr_ref"`
	TPert                []float64            `yaml:"t_pert,omitempty"`
	NLSPert              []float64            `yaml:"nls_pert,omitempty"`
	XSec                 []float64            `yaml:"xsec,omitempty"`
	TemperatureTolerance float64              `yaml:"temperature_tolerance,omitempty"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s := &Scenario{}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, errors.Wrapf(err, "parse %s", path)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func Save(path string, s *Scenario) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate reports every structural problem of the scenario. Table content
// is checked when the table is built.
func (s *Scenario) Validate() error {
	var errs error
	fail := func(format string, args ...any) {
		errs = multierr.Append(errs, errors.Wrapf(ErrInvalidScenario, format, args...))
	}

	a := s.Atmos
	axes := []struct {
		name string
		xs   []float64
	}{{"altitude", a.Altitude}, {"latitude", a.Latitude}, {"longitude", a.Longitude}}
	for _, ax := range axes {
		name, xs := ax.name, ax.xs
		if len(xs) == 0 {
			fail("empty %s grid", name)
		} else if !grid.IsSorted[grid.Ascending](xs) {
			fail("%s grid is not ascending", name)
		}
	}
	if len(a.Longitude) > 0 && (a.Longitude[0] < interp.LonMin || a.Longitude[len(a.Longitude)-1] > interp.LonMax) {
		fail("longitudes outside [-180, 180]")
	}
	errs = multierr.Append(errs, a.Temperature.validate("temperature"))
	errs = multierr.Append(errs, a.Pressure.validate("pressure"))
	names := lo.Keys(a.Species)
	slices.Sort(names)
	for _, name := range names {
		errs = multierr.Append(errs, a.Species[name].validate("species "+name))
	}

	l := s.Lookup
	if len(l.Species) == 0 {
		fail("lookup has no species")
	}
	for _, sp := range l.Species {
		if _, ok := l.VMRRef[sp]; !ok {
			fail("lookup has no reference VMR for %s", sp)
		}
	}
	if !l.Synthetic && len(l.XSec) == 0 {
		fail("lookup has no cross-sections and is not synthetic")
	}

	for i, q := range s.Queries {
		if q.Lat < -90 || q.Lat > 90 {
			fail("query %d: latitude %g outside [-90, 90]", i, q.Lat)
		}
	}
	return errs
}

func (f FieldConfig) validate(name string) error {
	n := 0
	if f.Constant != nil {
		n++
	}
	if f.Data != nil {
		n++
	}
	if f.Profile != nil {
		n++
		switch f.Profile.Kind {
		case ProfileExponential:
			if f.Profile.ScaleHeight <= 0 {
				return errors.Wrapf(ErrInvalidScenario, "%s: non-positive scale height", name)
			}
		case ProfileLinear:
		default:
			return errors.Wrapf(ErrInvalidScenario, "%s: unknown profile kind %q", name, f.Profile.Kind)
		}
	}
	if n != 1 {
		return errors.Wrapf(ErrInvalidScenario, "%s: need exactly one of constant, data or profile", name)
	}
	return nil
}

// Atmosphere builds the fields of the scenario.
func (s *Scenario) Atmosphere() (*field.Atmosphere, error) {
	alt, err := grid.FromSlice[grid.Ascending](s.Atmos.Altitude)
	if err != nil {
		return nil, errors.Wrap(err, "altitude")
	}
	lat, err := grid.FromSlice[grid.Ascending](s.Atmos.Latitude)
	if err != nil {
		return nil, errors.Wrap(err, "latitude")
	}
	lon, err := grid.FromSlice[grid.Ascending](s.Atmos.Longitude)
	if err != nil {
		return nil, errors.Wrap(err, "longitude")
	}

	build := func(name string, fc FieldConfig) (field.Field, error) {
		if err := fc.validate(name); err != nil {
			return nil, err
		}
		switch {
		case fc.Constant != nil:
			return field.Constant(*fc.Constant), nil
		case fc.Profile != nil:
			return fc.Profile.field(), nil
		}
		g, err := field.NewGridded(alt, lat, lon, fc.Data)
		if err != nil {
			return nil, errors.Wrap(err, name)
		}
		g.AltExtrapolation = s.Atmos.Extrapolation.Altitude
		g.LatExtrapolation = s.Atmos.Extrapolation.Latitude
		return g, nil
	}

	atm := &field.Atmosphere{Species: make(map[string]field.Field, len(s.Atmos.Species))}
	if atm.Temperature, err = build("temperature", s.Atmos.Temperature); err != nil {
		return nil, err
	}
	if atm.Pressure, err = build("pressure", s.Atmos.Pressure); err != nil {
		return nil, err
	}
	for name, fc := range s.Atmos.Species {
		if atm.Species[name], err = build("species "+name, fc); err != nil {
			return nil, err
		}
	}
	return atm, nil
}

func (p *ProfileConfig) field() field.Func {
	kind, surface, h, lapse := p.Kind, p.Surface, p.ScaleHeight, p.Lapse
	return func(alt, _, _ float64) float64 {
		if kind == ProfileExponential {
			return surface * math.Exp(-alt/h)
		}
		return surface + lapse*alt
	}
}

// TableSpec converts the lookup section to a table spec. Synthetic tables
// get their cross-sections from SyntheticXSec.
func (l LookupConfig) TableSpec() lookup.Spec {
	return lookup.Spec{
		Species:              l.Species,
		Nonlinear:            l.Nonlinear,
		Frequency:            l.Frequency,
		Pressure:             l.Pressure,
		VMRRef:               lo.Map(l.Species, func(s string, _ int) []float64 { return l.VMRRef[s] }),
		TRef:                 l.TRef,
		TPert:                l.TPert,
		NLSPert:              l.NLSPert,
		XSec:                 l.XSec,
		TemperatureTolerance: l.TemperatureTolerance,
	}
}

// Table builds the lookup table of the scenario.
func (s *Scenario) Table() (*lookup.Table, error) {
	if s.Lookup.Synthetic {
		return lookup.Generate(s.Lookup.TableSpec(), SyntheticXSec)
	}
	return lookup.New(s.Lookup.TableSpec())
}
