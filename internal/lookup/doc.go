// Package lookup implements the gas absorption lookup table.
//
// A [Table] stores absorption cross-sections tabulated over frequency,
// pressure and, optionally, temperature and VMR perturbations around a
// reference atmosphere. [Table.Extract] reconstructs the cross-sections of
// every species at an arbitrary pressure, temperature and set of VMRs:
//
//  1. linear interpolation in pressure (the pressure grid is descending and
//     is extrapolated like any other grid)
//  2. linear interpolation in the temperature perturbation t - tRef, which
//     must lie inside the perturbation grid
//  3. for non-linear species, linear interpolation in the VMR perturbation
//     vmr/vmrRef; linear species are scaled by vmr/vmrRef instead
//
// Tables are immutable once built. [Table.Adapt] returns a new table for a
// different species list or frequency grid, so extraction never needs a
// lock and may run from any number of goroutines.
//
// The cross-section array has shape [nT, nExpanded, nFreq, nPressure] where
// nT is the number of temperature perturbations (1 when there are none) and
// nExpanded counts one row per linear species and one row per VMR
// perturbation for each non-linear species, in species order.
package lookup
