package field

import (
	"context"
	"sort"

	"github.com/pkg/errors"

	"github.com/san-kum/radinterp/internal/parallel"
)

// Atmosphere holds the fields that absorption calculations read. Species
// fields are volume mixing ratios keyed by species name.
type Atmosphere struct {
	Temperature Field
	Pressure    Field
	Species     map[string]Field
}

// Point is the atmospheric state at one position.
type Point struct {
	Pressure    float64            `json:"pressure"`
	Temperature float64            `json:"temperature"`
	VMR         map[string]float64 `json:"vmr"`
}

// SpeciesNames returns the species of the atmosphere in sorted order.
func (a *Atmosphere) SpeciesNames() []string {
	names := make([]string, 0, len(a.Species))
	for name := range a.Species {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// At samples every field of the atmosphere at one position.
func (a *Atmosphere) At(alt, lat, lon float64) (Point, error) {
	if a.Temperature == nil || a.Pressure == nil {
		return Point{}, errors.Wrap(ErrInvalidField, "atmosphere needs temperature and pressure")
	}

	var pt Point
	var err error
	if pt.Pressure, err = a.Pressure.At(alt, lat, lon); err != nil {
		return Point{}, errors.Wrap(err, "pressure")
	}
	if pt.Temperature, err = a.Temperature.At(alt, lat, lon); err != nil {
		return Point{}, errors.Wrap(err, "temperature")
	}

	pt.VMR = make(map[string]float64, len(a.Species))
	for name, f := range a.Species {
		v, err := f.At(alt, lat, lon)
		if err != nil {
			return Point{}, errors.Wrapf(err, "species %s", name)
		}
		pt.VMR[name] = v
	}
	return pt, nil
}

// Profile samples the atmosphere at many positions in parallel.
func (a *Atmosphere) Profile(ctx context.Context, positions []Position) ([]Point, error) {
	out := make([]Point, len(positions))
	err := parallel.ForEach(ctx, len(positions), 64, func(i int) error {
		pt, err := a.At(positions[i].Alt, positions[i].Lat, positions[i].Lon)
		if err != nil {
			return err
		}
		out[i] = pt
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// VMRs returns the mixing ratios of species in the given order.
func (p Point) VMRs(species []string) ([]float64, error) {
	out := make([]float64, len(species))
	for i, s := range species {
		v, ok := p.VMR[s]
		if !ok {
			return nil, errors.Wrap(ErrUnknownSpecies, s)
		}
		out[i] = v
	}
	return out, nil
}
