// Package field samples atmospheric quantities at continuous positions.
//
// A [Field] is one of three variants:
//
//   - [*Gridded]: data on altitude, latitude and longitude grids,
//     interpolated with the weights of package interp
//   - [Constant]: the same value everywhere
//   - [Func]: a closed-form function of position
//
// [Sample] evaluates any field. Gridded fields additionally expose the
// cached-weight paths [Gridded.SampleWeights] and [Gridded.SampleAtAltitude],
// and the sparse form [Gridded.FlatWeights] that turns one interpolation
// into one row of a linear operator (see [Jacobian]).
//
// An [Atmosphere] groups the fields needed by absorption calculations and
// samples them together into a [Point].
//
// All operations are pure and safe for concurrent use.
package field
