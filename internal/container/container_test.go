package container

import (
	"math"
	"math/rand"
	"testing"

	"github.com/cellgrid/autotune/internal/functor"
	"github.com/cellgrid/autotune/internal/particle"
	"github.com/cellgrid/autotune/internal/traversal"
)

func testBox() particle.Box {
	return particle.Box{Min: particle.Vec3{0, 0, 0}, Max: particle.Vec3{10, 10, 10}}
}

func seedParticles(n int, seed int64) []particle.Particle {
	r := rand.New(rand.NewSource(seed))
	ps := make([]particle.Particle, n)
	for i := 0; i < n; i++ {
		pos := particle.Vec3{r.Float64() * 10, r.Float64() * 10, r.Float64() * 10}
		ps[i] = particle.New(uint64(i), pos)
	}
	return ps
}

func directSumForces(ps []particle.Particle, lj *functor.LennardJones) map[uint64]particle.Vec3 {
	out := make(map[uint64]particle.Vec3, len(ps))
	cp := make([]particle.Particle, len(ps))
	copy(cp, ps)
	for i := range cp {
		for j := i + 1; j < len(cp); j++ {
			lj.AoSPair(&cp[i], &cp[j], true)
		}
	}
	for _, p := range cp {
		out[p.ID] = p.Force
	}
	return out
}

func assertForcesMatch(t *testing.T, got map[uint64]particle.Vec3, want map[uint64]particle.Vec3, tol float64) {
	t.Helper()
	for id, w := range want {
		g, ok := got[id]
		if !ok {
			t.Fatalf("particle %d missing from actual forces", id)
		}
		for k := 0; k < 3; k++ {
			denom := math.Abs(w[k])
			if denom < 1 {
				denom = 1
			}
			if math.Abs(g[k]-w[k])/denom > tol {
				t.Fatalf("particle %d axis %d: got %v want %v", id, k, g, w)
			}
		}
	}
}

func collectForces(c Container) map[uint64]particle.Vec3 {
	out := make(map[uint64]particle.Vec3)
	c.ForEach(particle.MaskOwned, nil, func(p *particle.Particle) bool {
		out[p.ID] = p.Force
		return true
	})
	return out
}

func TestDirectSumEquivalence(t *testing.T) {
	ps := seedParticles(40, 42)
	lj := functor.NewLennardJones(1.0, 1.0, 1.0)
	want := directSumForces(ps, lj)

	ds := NewDirectSum(testBox(), 1.0, 0.0, StrictBounds)
	for _, p := range ps {
		if err := ds.Add(p); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	if err := ds.Iterate(lj, "direct-sum-naive", traversal.AoS, true, 1); err != nil {
		t.Fatalf("iterate: %v", err)
	}

	assertForcesMatch(t, collectForces(ds), want, 1e-9)
}

func TestLinkedCellsC08MatchesDirectSum(t *testing.T) {
	ps := seedParticles(60, 7)
	lj := functor.NewLennardJones(1.0, 1.0, 1.5)
	want := directSumForces(ps, lj)

	lc := NewLinkedCells(testBox(), 1.5, 0.3, 1.0, StrictBounds)
	for _, p := range ps {
		if err := lc.Add(p); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	if err := lc.Iterate(lj, "c08", traversal.AoS, true, 4); err != nil {
		t.Fatalf("iterate: %v", err)
	}

	assertForcesMatch(t, collectForces(lc), want, 1e-9)
}

func TestLinkedCellsRejectsUnknownTraversal(t *testing.T) {
	lc := NewLinkedCells(testBox(), 1.0, 0.2, 1.0, StrictBounds)
	lj := functor.NewLennardJones(1.0, 1.0, 1.0)
	if err := lc.Iterate(lj, "does-not-exist", traversal.AoS, true, 1); err == nil {
		t.Fatal("expected an error for an unsupported traversal name")
	}
}

func TestLinkedCellsUpdateContainerEjectsLeavers(t *testing.T) {
	lc := NewLinkedCells(testBox(), 1.0, 0.2, 1.0, StrictBounds)
	p := particle.New(1, particle.Vec3{5, 5, 5})
	if err := lc.Add(p); err != nil {
		t.Fatalf("add: %v", err)
	}
	lc.ForEach(particle.MaskOwned, nil, func(pp *particle.Particle) bool {
		pp.Position = particle.Vec3{20, 20, 20}
		return true
	})
	leavers := lc.UpdateContainer(false)
	if len(leavers) != 1 {
		t.Fatalf("expected 1 leaver, got %d", len(leavers))
	}
	if lc.NumParticles(particle.MaskOwned) != 0 {
		t.Fatalf("expected 0 owned particles remaining, got %d", lc.NumParticles(particle.MaskOwned))
	}
}

func TestVerletListsMatchesDirectSum(t *testing.T) {
	ps := seedParticles(50, 99)
	lj := functor.NewLennardJones(1.0, 1.0, 1.2)
	want := directSumForces(ps, lj)

	vl := NewVerletLists(testBox(), 1.2, 0.3, 1.0, 5, StrictBounds)
	for _, p := range ps {
		if err := vl.Add(p); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	if err := vl.Iterate(lj, "verlet-list-pairwise", traversal.AoS, true, 2); err != nil {
		t.Fatalf("iterate: %v", err)
	}

	assertForcesMatch(t, collectForces(vl), want, 1e-9)
}

func TestVerletListsCellsMatchesDirectSum(t *testing.T) {
	ps := seedParticles(50, 123)
	lj := functor.NewLennardJones(1.0, 1.0, 1.2)
	want := directSumForces(ps, lj)

	vlc := NewVerletListsCells(testBox(), 1.2, 0.3, 1.0, 5, StrictBounds)
	for _, p := range ps {
		if err := vlc.Add(p); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	if err := vlc.Iterate(lj, "c08", traversal.AoS, true, 2); err != nil {
		t.Fatalf("iterate: %v", err)
	}

	assertForcesMatch(t, collectForces(vlc), want, 1e-9)
}

func TestVerletClusterListsMatchesDirectSum(t *testing.T) {
	ps := seedParticles(64, 55)
	lj := functor.NewLennardJones(1.0, 1.0, 1.5)
	want := directSumForces(ps, lj)

	vcl := NewVerletClusterLists(testBox(), 1.5, 0.3, 1.0, 5, StrictBounds)
	for _, p := range ps {
		if err := vcl.Add(p); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	if err := vcl.Iterate(lj, traversal.ClusterColourName, traversal.AoS, true, 4); err != nil {
		t.Fatalf("iterate: %v", err)
	}

	assertForcesMatch(t, collectForces(vcl), want, 1e-7)
}

func TestOctreeMatchesDirectSum(t *testing.T) {
	ps := seedParticles(80, 17)
	lj := functor.NewLennardJones(1.0, 1.0, 1.0)
	want := directSumForces(ps, lj)

	oct := NewOctree(testBox(), 1.0, 0.2, 1.0, StrictBounds)
	for _, p := range ps {
		if err := oct.Add(p); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	if err := oct.Iterate(lj, traversal.OctreeC18Name, traversal.AoS, true, 1); err != nil {
		t.Fatalf("iterate: %v", err)
	}

	assertForcesMatch(t, collectForces(oct), want, 1e-9)
}

func TestLinkedCellsReferencesMatchesDirectSum(t *testing.T) {
	ps := seedParticles(40, 31)
	lj := functor.NewLennardJones(1.0, 1.0, 1.0)
	want := directSumForces(ps, lj)

	lcr := NewLinkedCellsReferences(testBox(), 1.0, 0.2, 1.0, StrictBounds)
	for _, p := range ps {
		if err := lcr.Add(p); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	if err := lcr.Iterate(lj, "c08", traversal.AoS, true, 2); err != nil {
		t.Fatalf("iterate: %v", err)
	}

	got := make(map[uint64]particle.Vec3)
	lcr.ForEach(particle.MaskOwned, nil, func(p *particle.Particle) bool {
		got[p.ID] = p.Force
		return true
	})
	assertForcesMatch(t, got, want, 1e-9)
}
