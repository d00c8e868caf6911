package field

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Jacobian assembles the interpolation operator that maps the flattened
// data of g to its values at positions: row r holds the flat weights of
// positions[r].
func Jacobian(g *Gridded, positions []Position) (*mat.Dense, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	if len(positions) == 0 {
		return nil, errors.New("field: jacobian needs at least one position")
	}

	jac := mat.NewDense(len(positions), g.Size(), nil)
	for r, pos := range positions {
		row, err := g.FlatWeights(pos.Alt, pos.Lat, pos.Lon)
		if err != nil {
			return nil, errors.Wrapf(err, "position %d", r)
		}
		for _, fw := range row {
			jac.Set(r, fw.Index, jac.At(r, fw.Index)+fw.Weight)
		}
	}
	return jac, nil
}
