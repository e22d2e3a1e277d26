package traversal

import (
	"testing"

	"github.com/cellgrid/autotune/internal/cellblock"
	"github.com/cellgrid/autotune/internal/functor"
	"github.com/cellgrid/autotune/internal/particle"
)

func buildGrid(t *testing.T, n int) (*cellblock.Grid, []*particle.FullCell) {
	t.Helper()
	box := particle.Box{Min: particle.Vec3{0, 0, 0}, Max: particle.Vec3{10, 10, 10}}
	grid := cellblock.New(box, 1.0, 1.0)
	cells := make([]*particle.FullCell, grid.NumCells())
	for i := range cells {
		cells[i] = particle.NewFullCell()
	}
	return grid, cells
}

func scatterOwned(grid *cellblock.Grid, cells []*particle.FullCell, positions []particle.Vec3) {
	for i, pos := range positions {
		p := particle.New(uint64(i), pos)
		flat := grid.CoordToFlat(pos)
		cells[flat].Add(p)
	}
}

func totalForceMagnitudeNonZero(cells []*particle.FullCell) bool {
	for _, c := range cells {
		for _, p := range c.Particles() {
			if p.Force != (particle.Vec3{}) {
				return true
			}
		}
	}
	return false
}

func TestC01ProducesForces(t *testing.T) {
	grid, cells := buildGrid(t, 10)
	scatterOwned(grid, cells, []particle.Vec3{{5, 5, 5}, {5.3, 5, 5}})

	lj := functor.NewLennardJones(1.0, 1.0, 3.0)
	C01{}.Execute(grid, cells, lj, AoS, false, 2)

	if !totalForceMagnitudeNonZero(cells) {
		t.Fatal("expected nonzero forces after c01 traversal")
	}
}

func TestC08MatchesC01Forces(t *testing.T) {
	// The last two positions land in cells (6,7,6) and (7,6,6): offset
	// (1,-1,0), a mixed-sign half-stencil entry that a forward-only
	// footprint would never offer to the functor.
	positions := []particle.Vec3{
		{5, 5, 5}, {5.3, 5, 5}, {5, 5.4, 5}, {6.5, 6.5, 6.5},
		{5.2, 6.3, 5.1}, {6.2, 5.3, 5.1},
	}

	grid1, cells1 := buildGrid(t, 10)
	scatterOwned(grid1, cells1, positions)
	lj1 := functor.NewLennardJones(1.0, 1.0, 3.0)
	C01{}.Execute(grid1, cells1, lj1, AoS, false, 1)

	grid2, cells2 := buildGrid(t, 10)
	scatterOwned(grid2, cells2, positions)
	lj2 := functor.NewLennardJones(1.0, 1.0, 3.0)
	C08{}.Execute(grid2, cells2, lj2, AoS, true, 4)

	ref := forcesByID(cells1)
	got := forcesByID(cells2)
	for id, want := range ref {
		have, ok := got[id]
		if !ok {
			t.Fatalf("particle %d missing from c08 result", id)
		}
		for k := 0; k < 3; k++ {
			if diff := want[k] - have[k]; diff < -1e-6 || diff > 1e-6 {
				t.Fatalf("particle %d axis %d: c01 force %v != c08 force %v", id, k, want, have)
			}
		}
	}
}

func forcesByID(cells []*particle.FullCell) map[uint64]particle.Vec3 {
	out := make(map[uint64]particle.Vec3)
	for _, c := range cells {
		for _, p := range c.Particles() {
			out[p.ID] = p.Force
		}
	}
	return out
}

func TestSlicedLockApplicableRequiresEnoughLayers(t *testing.T) {
	grid, _ := buildGrid(t, 10)
	a := Applicability{Grid: grid, NumWorkers: 100}
	if (SlicedLock{}).Applicable(a) {
		t.Fatal("expected sliced-lock to be inapplicable with far more workers than layers")
	}
}

func TestRegistryHasCoreTraversals(t *testing.T) {
	for _, name := range []string{"c01", "c08", "c18", "sliced-lock", "sliced-2colour", "balanced-sliced"} {
		if _, ok := Registry[name]; !ok {
			t.Fatalf("expected traversal %q to be registered", name)
		}
	}
}
