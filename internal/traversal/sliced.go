package traversal

import (
	"sync"

	"github.com/cellgrid/autotune/internal/cellblock"
	"github.com/cellgrid/autotune/internal/functor"
	"github.com/cellgrid/autotune/internal/particle"
)

// slab is a contiguous range [From,To) of owned-cell layers along the
// longest axis, one per worker.
type slab struct {
	From, To int
}

// equalSlabs cuts [0,n) into numWorkers contiguous, roughly equal-thickness
// slabs.
func equalSlabs(n, numWorkers int) []slab {
	if numWorkers > n {
		numWorkers = n
	}
	if numWorkers < 1 {
		numWorkers = 1
	}
	slabs := make([]slab, 0, numWorkers)
	chunk := (n + numWorkers - 1) / numWorkers
	for lo := 0; lo < n; lo += chunk {
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		slabs = append(slabs, slab{From: lo, To: hi})
	}
	return slabs
}

// layerCells returns the flat indices of every owned cell whose coordinate
// on `axis` equals `layer` (0-based among owned layers, i.e. excluding the
// halo ring).
func layerCells(grid *cellblock.Grid, axis, layer int) []int {
	var out []int
	n := grid.NumCells()
	for flat := 0; flat < n; flat++ {
		idx := grid.FlatToIndex3D(flat)
		if !grid.IsOwnedIndex(idx) {
			continue
		}
		if idx[axis]-1 == layer {
			out = append(out, flat)
		}
	}
	return out
}

// forwardStencil13 is the half-stencil every sliced traversal uses per
// cell: each unordered pair inside and between cells of the same slab
// (including neighbours in adjacent slabs) is visited exactly once.
func forwardStencil13() [][3]int {
	return cellblock.HalfStencil13()
}

// SlicedLock finds the longest axis and cuts it into P contiguous slabs,
// one per worker. Each worker walks its slab layer by layer sequentially.
// The boundary plane between slab k and slab k+1 is guarded by a lock
// shared by both sides: the lower slab holds it while processing its last
// layer (it writes forward across the boundary there via HalfStencil13's
// +axis offsets), and the higher slab holds the same lock while processing
// its first layer (it writes backward across the boundary via the
// mixed-sign offsets) — a plain sync.Mutex is fine here: no fairness
// requirement on this primitive, just exclusion.
type SlicedLock struct{}

func (SlicedLock) Name() string { return "sliced-lock" }

func (SlicedLock) Applicable(a Applicability) bool {
	axis := a.Grid.LongestAxis()
	return a.Grid.OwnedCellsOnAxis(axis) >= a.NumWorkers
}

func (SlicedLock) Execute(grid *cellblock.Grid, cells []*particle.FullCell, fn functor.PairFunctor, layout DataLayout, newton3 bool, numWorkers int) {
	axis := grid.LongestAxis()
	n := grid.OwnedCellsOnAxis(axis)
	slabs := equalSlabs(n, numWorkers)
	offsets := forwardStencil13()

	locks := make([]sync.Mutex, len(slabs))

	var wg sync.WaitGroup
	for s := 0; s < len(slabs); s++ {
		wg.Add(1)
		go func(s int) {
			defer wg.Done()
			sl := slabs[s]
			for layer := sl.From; layer < sl.To; layer++ {
				first := layer == sl.From
				last := layer == sl.To-1
				if first && s > 0 {
					locks[s-1].Lock()
				}
				if last && s < len(slabs)-1 {
					locks[s].Lock()
				}
				for _, base := range layerCells(grid, axis, layer) {
					idx := grid.FlatToIndex3D(base)
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
				}
				if first && s > 0 {
					locks[s-1].Unlock()
				}
				if last && s < len(slabs)-1 {
					locks[s].Unlock()
				}
			}
		}(s)
	}
	wg.Wait()
}

// Sliced2Colour uses the same slicing but alternates two colours among
// slabs so the boundary plane between any two active slabs is never
// concurrently touched; no locks needed.
type Sliced2Colour struct{}

func (Sliced2Colour) Name() string { return "sliced-2colour" }

func (Sliced2Colour) Applicable(a Applicability) bool {
	axis := a.Grid.LongestAxis()
	return a.Grid.OwnedCellsOnAxis(axis) >= a.NumWorkers
}

func (Sliced2Colour) Execute(grid *cellblock.Grid, cells []*particle.FullCell, fn functor.PairFunctor, layout DataLayout, newton3 bool, numWorkers int) {
	axis := grid.LongestAxis()
	n := grid.OwnedCellsOnAxis(axis)
	slabs := equalSlabs(n, numWorkers)
	offsets := forwardStencil13()

	run := func(slabIdx []int) {
		parallelFor(len(slabIdx), numWorkers, func(k int) {
			sl := slabs[slabIdx[k]]
			for layer := sl.From; layer < sl.To; layer++ {
				for _, base := range layerCells(grid, axis, layer) {
					idx := grid.FlatToIndex3D(base)
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
				}
			}
		})
	}

	var even, odd []int
	for s := range slabs {
		if s%2 == 0 {
			even = append(even, s)
		} else {
			odd = append(odd, s)
		}
	}
	run(even)
	run(odd)
}

// BalancedSliced is SlicedLock with slab thickness chosen so that per-slab
// estimated work, under the chosen LoadEstimator, is balanced across
// workers rather than merely equal in layer count.
type BalancedSliced struct {
	Estimator LoadEstimator
}

func (b BalancedSliced) Name() string { return "balanced-sliced" }

func (b BalancedSliced) Applicable(a Applicability) bool {
	axis := a.Grid.LongestAxis()
	return a.Grid.OwnedCellsOnAxis(axis) >= a.NumWorkers
}

func (b BalancedSliced) Execute(grid *cellblock.Grid, cells []*particle.FullCell, fn functor.PairFunctor, layout DataLayout, newton3 bool, numWorkers int) {
	axis := grid.LongestAxis()
	n := grid.OwnedCellsOnAxis(axis)
	weights := layerWeights(grid, cells, axis, n, b.Estimator)
	slabs := balancedSlabs(weights, numWorkers)
	offsets := forwardStencil13()

	locks := make([]sync.Mutex, len(slabs))
	var wg sync.WaitGroup
	for s := 0; s < len(slabs); s++ {
		wg.Add(1)
		go func(s int) {
			defer wg.Done()
			sl := slabs[s]
			for layer := sl.From; layer < sl.To; layer++ {
				first := layer == sl.From
				last := layer == sl.To-1
				if first && s > 0 {
					locks[s-1].Lock()
				}
				if last && s < len(slabs)-1 {
					locks[s].Lock()
				}
				for _, base := range layerCells(grid, axis, layer) {
					idx := grid.FlatToIndex3D(base)
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
				}
				if first && s > 0 {
					locks[s-1].Unlock()
				}
				if last && s < len(slabs)-1 {
					locks[s].Unlock()
				}
			}
		}(s)
	}
	wg.Wait()
}

// layerWeights estimates per-layer work along axis using estimator.
func layerWeights(grid *cellblock.Grid, cells []*particle.FullCell, axis, n int, estimator LoadEstimator) []float64 {
	weights := make([]float64, n)
	for layer := 0; layer < n; layer++ {
		for _, base := range layerCells(grid, axis, layer) {
			switch estimator {
			case ParticleCount:
				weights[layer] += float64(cells[base].Len())
			case SquaredParticleCount:
				c := float64(cells[base].Len())
				weights[layer] += c * c
			case NeighborListLength:
				weights[layer] += float64(cells[base].Len())
			default:
				weights[layer] = 1
			}
		}
		if weights[layer] == 0 {
			weights[layer] = 1
		}
	}
	return weights
}

// balancedSlabs greedily partitions layers into numWorkers contiguous
// slabs whose weight sums are as close to total/numWorkers as possible.
func balancedSlabs(weights []float64, numWorkers int) []slab {
	n := len(weights)
	if numWorkers > n {
		numWorkers = n
	}
	if numWorkers < 1 {
		numWorkers = 1
	}
	total := 0.0
	for _, w := range weights {
		total += w
	}
	target := total / float64(numWorkers)

	slabs := make([]slab, 0, numWorkers)
	start := 0
	acc := 0.0
	for layer := 0; layer < n; layer++ {
		acc += weights[layer]
		remaining := numWorkers - len(slabs) - 1
		if acc >= target && remaining > 0 && n-layer-1 >= remaining {
			slabs = append(slabs, slab{From: start, To: layer + 1})
			start = layer + 1
			acc = 0
		}
	}
	slabs = append(slabs, slab{From: start, To: n})
	return slabs
}
