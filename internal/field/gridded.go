package field

import (
	"github.com/ctessum/sparse"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/radinterp/internal/grid"
	"github.com/san-kum/radinterp/internal/interp"
)

// Gridded holds data of shape [len(Alt), len(Lat), len(Lon)]. Longitudes lie
// in [-180, 180] and are treated cyclically.
type Gridded struct {
	Alt  grid.AscendingGrid
	Lat  grid.AscendingGrid
	Lon  grid.AscendingGrid
	Data *sparse.DenseArray

	AltExtrapolation interp.Extrapolation
	LatExtrapolation interp.Extrapolation
}

// FlatWeight is one entry of a sparse interpolation row. Index addresses the
// row-major [alt, lat, lon] layout of the field data.
type FlatWeight struct {
	Index  int
	Weight float64
}

// NewGridded builds a validated field from row-major data.
func NewGridded(alt, lat, lon grid.AscendingGrid, data []float64) (*Gridded, error) {
	arr := sparse.ZerosDense(alt.Len(), lat.Len(), lon.Len())
	if len(data) != len(arr.Elements) {
		return nil, errors.Wrapf(ErrInvalidField, "got %d values for %dx%dx%d grids",
			len(data), alt.Len(), lat.Len(), lon.Len())
	}
	copy(arr.Elements, data)

	g := &Gridded{Alt: alt, Lat: lat, Lon: lon, Data: arr}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}

// Validate checks that the grids and the data agree.
func (g *Gridded) Validate() error {
	if g == nil || g.Data == nil {
		return errors.Wrap(ErrInvalidField, "no data")
	}
	if g.Alt.Empty() || g.Lat.Empty() || g.Lon.Empty() {
		return errors.Wrap(ErrInvalidField, "empty grid")
	}
	shape := g.Data.Shape
	if len(shape) != 3 || shape[0] != g.Alt.Len() || shape[1] != g.Lat.Len() || shape[2] != g.Lon.Len() {
		return errors.Wrapf(ErrInvalidField, "data shape %v does not match grids [%d %d %d]",
			shape, g.Alt.Len(), g.Lat.Len(), g.Lon.Len())
	}
	if len(g.Data.Elements) != shape[0]*shape[1]*shape[2] {
		return errors.Wrapf(ErrInvalidField, "%d elements for shape %v", len(g.Data.Elements), shape)
	}
	if g.Lon.Front() < interp.LonMin || g.Lon.Back() > interp.LonMax {
		return errors.Wrapf(ErrInvalidField, "longitudes %v outside [-180, 180]", g.Lon)
	}
	return nil
}

// Size is the number of data points.
func (g *Gridded) Size() int {
	return g.Alt.Len() * g.Lat.Len() * g.Lon.Len()
}

// Lags returns the per-axis lags of a position after extrapolation. ok is
// false when an axis with zero extrapolation was left.
func (g *Gridded) Lags(alt, lat, lon float64) (a, b, c interp.Lag, ok bool, err error) {
	alt, okAlt := interp.Extrapolate(g.AltExtrapolation, g.Alt, alt)
	if !okAlt && g.AltExtrapolation == interp.ExtrapolateNone {
		return nil, nil, nil, false, errors.Wrapf(ErrOutsideGrid, "altitude %g not in [%g, %g]", alt, g.Alt.Front(), g.Alt.Back())
	}
	lat, okLat := interp.Extrapolate(g.LatExtrapolation, g.Lat, lat)
	if !okLat && g.LatExtrapolation == interp.ExtrapolateNone {
		return nil, nil, nil, false, errors.Wrapf(ErrOutsideGrid, "latitude %g not in [%g, %g]", lat, g.Lat.Front(), g.Lat.Back())
	}
	if !okAlt || !okLat {
		return nil, nil, nil, false, nil
	}
	return interp.AltLag(g.Alt, alt), interp.LatLag(g.Lat, lat), interp.LonLag(g.Lon, lon), true, nil
}

// At implements Field.
func (g *Gridded) At(alt, lat, lon float64) (float64, error) {
	if err := g.Validate(); err != nil {
		return 0, err
	}
	a, b, c, ok, err := g.Lags(alt, lat, lon)
	if err != nil || !ok {
		return 0, err
	}
	return g.apply(interp.Weights3(a, b, c), a, b, c), nil
}

// SampleWeights evaluates the field with weights and lags computed earlier,
// typically shared by many fields on the same grids.
func (g *Gridded) SampleWeights(w *sparse.DenseArray, a, b, c interp.Lag) (float64, error) {
	if err := g.Validate(); err != nil {
		return 0, err
	}
	if err := checkWeights(w, a, b, c); err != nil {
		return 0, err
	}
	if err := checkLag(a, g.Alt.Len(), "altitude"); err != nil {
		return 0, err
	}
	if err := checkLag(b, g.Lat.Len(), "latitude"); err != nil {
		return 0, err
	}
	if err := checkLag(c, g.Lon.Len(), "longitude"); err != nil {
		return 0, err
	}
	return g.apply(w, a, b, c), nil
}

// SampleAtAltitude evaluates the horizontal slice at altitude index ialt
// with precomputed latitude/longitude weights.
func (g *Gridded) SampleAtAltitude(ialt int, w *sparse.DenseArray, b, c interp.Lag) (float64, error) {
	if err := g.Validate(); err != nil {
		return 0, err
	}
	if ialt < 0 || ialt >= g.Alt.Len() {
		return 0, errors.Wrapf(ErrInvalidWeights, "altitude index %d of %d", ialt, g.Alt.Len())
	}
	if err := checkWeights(w, b, c); err != nil {
		return 0, err
	}
	if err := checkLag(b, g.Lat.Len(), "latitude"); err != nil {
		return 0, err
	}
	if err := checkLag(c, g.Lon.Len(), "longitude"); err != nil {
		return 0, err
	}
	return g.apply(w, interp.Lag0{Pos: ialt}, b, c), nil
}

// FlatWeights returns the interpolation at a position as sparse weights on
// the flattened data, with flat index ia*nlat*nlon + ib*nlon + ic.
func (g *Gridded) FlatWeights(alt, lat, lon float64) ([]FlatWeight, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	a, b, c, ok, err := g.Lags(alt, lat, lon)
	if err != nil || !ok {
		return nil, err
	}

	nlat, nlon := g.Lat.Len(), g.Lon.Len()
	w := interp.Weights3(a, b, c)
	out := make([]FlatWeight, 0, len(w.Elements))
	for i := 0; i < a.Size(); i++ {
		for j := 0; j < b.Size(); j++ {
			for k := 0; k < c.Size(); k++ {
				out = append(out, FlatWeight{
					Index:  a.Index(i)*nlat*nlon + b.Index(j)*nlon + c.Index(k),
					Weight: w.Get(i, j, k),
				})
			}
		}
	}
	return out, nil
}

// apply sums weights times data. w may be 2-D when a is a pinned Lag0.
func (g *Gridded) apply(w *sparse.DenseArray, a, b, c interp.Lag) float64 {
	vals := make([]float64, 0, len(w.Elements))
	for i := 0; i < a.Size(); i++ {
		for j := 0; j < b.Size(); j++ {
			for k := 0; k < c.Size(); k++ {
				vals = append(vals, g.Data.Get(a.Index(i), b.Index(j), c.Index(k)))
			}
		}
	}
	return floats.Dot(w.Elements, vals)
}

func checkWeights(w *sparse.DenseArray, lags ...interp.Lag) error {
	if w == nil || len(w.Shape) != len(lags) {
		return errors.Wrapf(ErrInvalidWeights, "need %d-D weights", len(lags))
	}
	for i, l := range lags {
		if w.Shape[i] != l.Size() {
			return errors.Wrapf(ErrInvalidWeights, "weights shape %v, lag %d has %d nodes", w.Shape, i, l.Size())
		}
	}
	return nil
}

func checkLag(l interp.Lag, n int, axis string) error {
	for k := 0; k < l.Size(); k++ {
		if i := l.Index(k); i < 0 || i >= n {
			return errors.Wrapf(ErrInvalidWeights, "%s index %d outside grid of %d", axis, i, n)
		}
	}
	return nil
}
