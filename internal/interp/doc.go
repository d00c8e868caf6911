// Package interp computes Lagrange interpolation weights on sorted grids.
//
// A [Lag] says which grid nodes bracket a query value and how much each node
// contributes. It has exactly two shapes:
//
//   - [Lag0]: a single node with weight 1 (order 0)
//   - [Lag1]: two nodes with linear weights W0+W1 == 1 (order 1)
//
// The per-axis constructors [AltLag], [LatLag] and [LonLag] pick the shape
// from the grid length: a single-node axis always yields a [Lag0], so a
// column or 2-D atmosphere mixes orders freely with fully resolved axes.
// Longitude is cyclic on [-180, 180) and may bracket across the seam.
//
// [Weights3] and [Weights2] combine per-axis lags into dense outer-product
// weight tensors that can be cached and reused against many fields sharing
// the same grids.
//
// Queries outside a grid are extrapolated linearly from the nearest interval.
// Non-finite queries produce NaN weights rather than errors.
package interp
