// Package grid provides monotonic one-dimensional coordinate grids.
//
// A [Grid] holds a sequence of float64 values that is sorted under a
// compile-time order:
//
//   - [Ascending]: every element is <= its successor
//   - [Descending]: every element is >= its successor
//
// Every path that installs new values (construction, [Grid.Assign], closing
// an [Editor]) checks the order and fails with a [*SortingError] instead of
// resorting or clamping. Consumers such as the interpolation routines can
// therefore rely on sortedness without checking again.
//
// # Bulk edits
//
// Appending or resizing element by element would break the order in between
// calls, so those operations go through an [Editor] that defers the check to
// [Editor.Close]:
//
//	err := g.Update(func(e *grid.Editor[grid.Ascending]) error {
//	    e.Append(1, 2, 3)
//	    return nil
//	})
//
// # Thread Safety
//
// Read accessors are safe for concurrent use. Editing is exclusive: no
// reader may use a grid while an [Editor] on it is open.
package grid
