package traversal

import (
	"sync"

	"github.com/cellgrid/autotune/internal/cellblock"
	"github.com/cellgrid/autotune/internal/functor"
	"github.com/cellgrid/autotune/internal/particle"
)

// C08 groups base cells into 8 colours (mod 2 on each axis) and walks the
// same 13-offset half-stencil c18 does. Two same-coloured bases differ by a
// multiple of two on every axis (and by at least two on one of them), so
// neither is ever the other's direct neighbour — a base cell is therefore only ever written by its own
// worker. But two same-coloured bases *can* share a forward neighbour (e.g.
// bases (0,0,0) and (0,2,0) both reach (0,1,1), one via (0,1,1), the other
// via (0,-1,1)), so the neighbour cell's write is guarded by a per-cell
// lock. Compatible with Newton-3. The default fast path for linked cells.
type C08 struct{}

func (C08) Name() string { return "c08" }

func (C08) Applicable(a Applicability) bool {
	return true
}

func (C08) Execute(grid *cellblock.Grid, cells []*particle.FullCell, fn functor.PairFunctor, layout DataLayout, newton3 bool, numWorkers int) {
	buckets := grid.OwnedIndicesByColor(cellblock.C08Scheme())
	offsets := cellblock.HalfStencil13()
	locks := make([]sync.Mutex, len(cells))
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
				locks[nb].Lock()
				cellPair(cells[base], cells[nb], fn, layout, newton3)
				if !newton3 {
					cellPair(cells[nb], cells[base], fn, layout, false)
				}
				locks[nb].Unlock()
			}
		})
	}
}
