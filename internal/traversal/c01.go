package traversal

import (
	"github.com/cellgrid/autotune/internal/cellblock"
	"github.com/cellgrid/autotune/internal/functor"
	"github.com/cellgrid/autotune/internal/particle"
)

// C01 parallelises over every base cell: the base cell is iterated together
// with all 26 neighbours and every pair is written only to the base cell's
// particles, so it is race-free without Newton-3 and incompatible with it
// (a Newton-3 write into the neighbour cell would race another worker
// owning that cell as its own base). The correctness baseline.
type C01 struct{}

func (C01) Name() string { return "c01" }

func (C01) Applicable(a Applicability) bool {
	return !a.Newton3
}

func (C01) Execute(grid *cellblock.Grid, cells []*particle.FullCell, fn functor.PairFunctor, layout DataLayout, newton3 bool, numWorkers int) {
	owned := ownedFlatIndices(grid)
	parallelFor(len(owned), numWorkers, func(k int) {
		base := owned[k]
		cellSelf(cells[base], fn, layout)
		for _, nb := range grid.Neighbors26Of(grid.FlatToIndex3D(base)) {
			cellPair(cells[base], cells[nb], fn, layout, false)
		}
	})
}

// ownedFlatIndices lists every owned cell's flat index, the base-cell
// iteration domain every colour-based traversal parallelises over.
func ownedFlatIndices(grid *cellblock.Grid) []int {
	var out []int
	n := grid.NumCells()
	for flat := 0; flat < n; flat++ {
		if grid.IsOwnedIndex(grid.FlatToIndex3D(flat)) {
			out = append(out, flat)
		}
	}
	return out
}
