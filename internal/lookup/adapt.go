package lookup

import (
	"github.com/ctessum/sparse"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"github.com/san-kum/radinterp/internal/grid"
	"github.com/san-kum/radinterp/internal/interp"
)

// Adapt returns a table restricted to species (in that order) and
// interpolated linearly onto frequency. Every requested species must be in
// the table and every frequency must lie inside the table's frequency range.
// The receiver is not modified.
func (t *Table) Adapt(species []string, frequency grid.AscendingGrid) (*Table, error) {
	if len(species) == 0 {
		return nil, errors.Wrap(ErrSpeciesMismatch, "no species requested")
	}
	if dups := lo.FindDuplicates(species); len(dups) > 0 {
		return nil, errors.Wrapf(ErrSpeciesMismatch, "duplicate species %v", dups)
	}
	src := make([]int, len(species))
	for i, s := range species {
		if src[i] = lo.IndexOf(t.species, s); src[i] < 0 {
			return nil, errors.Wrapf(ErrSpeciesMismatch, "%s", s)
		}
	}
	if frequency.Empty() {
		return nil, errors.Wrap(ErrInvalidTable, "empty target frequency grid")
	}

	flags := make([]interp.Lag, frequency.Len())
	for j := range flags {
		f := frequency.At(j)
		if err := inRange("frequency", f, t.f.Front(), t.f.Back()); err != nil {
			return nil, err
		}
		flags[j] = interp.Auto(t.f, f)
	}

	out := &Table{
		species:   append([]string(nil), species...),
		nonlinear: lo.Map(src, func(i, _ int) bool { return t.nonlinear[i] }),
		f:         frequency,
		p:         t.p,
		tPert:     t.tPert,
		tRef:      t.ReferenceTemperature(),
		tTol:      t.tTol,
	}
	if lo.Contains(out.nonlinear, true) {
		out.nlsPert = t.nlsPert
	}
	out.offsets = expandedOffsets(out.nonlinear, out.nlsPert.Len())

	np := t.p.Len()
	out.vmrRef = sparse.ZerosDense(len(species), np)
	for i, si := range src {
		for k := range np {
			out.vmrRef.Set(t.vmrRef.Get(si, k), i, k)
		}
	}

	nt := max(t.tPert.Len(), 1)
	out.xsec = sparse.ZerosDense(out.xsecShape()...)
	for i, si := range src {
		rows := out.offsets[i+1] - out.offsets[i]
		for r := range rows {
			from, to := t.offsets[si]+r, out.offsets[i]+r
			for j, fl := range flags {
				for it := range nt {
					for k := range np {
						var v float64
						for m := range fl.Size() {
							if w := fl.Weight(m); w != 0 {
								v += w * t.xsec.Get(it, from, fl.Index(m), k)
							}
						}
						out.xsec.Set(v, it, to, j, k)
					}
				}
			}
		}
	}

	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}
