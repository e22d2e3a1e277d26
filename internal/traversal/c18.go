package traversal

import (
	"github.com/cellgrid/autotune/internal/cellblock"
	"github.com/cellgrid/autotune/internal/functor"
	"github.com/cellgrid/autotune/internal/particle"
)

// C18 covers the forward half-stencil of 13 unique ordered neighbour
// offsets, the same stencil c08 walks, but with an 18-colour scheme that
// spaces same-coloured bases far enough apart that their footprints never
// share a cell: more colours (less parallelism per pass) than c08, and no
// per-cell locks.
type C18 struct{}

func (C18) Name() string { return "c18" }

func (C18) Applicable(a Applicability) bool {
	return true
}

func (C18) Execute(grid *cellblock.Grid, cells []*particle.FullCell, fn functor.PairFunctor, layout DataLayout, newton3 bool, numWorkers int) {
	buckets := grid.OwnedIndicesByColor(cellblock.C18Scheme())
	offsets := cellblock.HalfStencil13()
	for _, colour := range buckets {
		parallelFor(len(colour), numWorkers, func(k int) {
			idx := colour[k]
			base := grid.Index3DToFlat(idx)
			cellSelf(cells[base], fn, layout)
			for _, off := range offsets {
				nbIdx := [3]int{idx[0] + off[0], idx[1] + off[1], idx[2] + off[2]}
				if !grid.InBounds(nbIdx) {
					continue
				}
				nb := grid.Index3DToFlat(nbIdx)
				cellPair(cells[base], cells[nb], fn, layout, newton3)
				if !newton3 {
					cellPair(cells[nb], cells[base], fn, layout, false)
				}
			}
		})
	}
}
