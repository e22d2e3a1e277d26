package layout

import (
	"testing"

	"github.com/cellgrid/autotune/internal/compute"
	"github.com/cellgrid/autotune/internal/functor"
	"github.com/cellgrid/autotune/internal/particle"
)

func TestLoadExtractRoundTrip(t *testing.T) {
	lj := functor.NewLennardJones(1.0, 1.0, 3.0)
	conv := New(lj, compute.NewCPUAccelerator())

	cell := particle.NewFullCell()
	cell.Add(particle.New(1, particle.Vec3{0, 0, 0}))
	cell.Add(particle.New(2, particle.Vec3{1.1, 0, 0}))

	soa := conv.Load(cell)
	soa.FX[0] = 42
	conv.Extract(cell)

	if cell.At(0).Force[0] != 42 {
		t.Fatalf("expected extracted force 42, got %v", cell.At(0).Force[0])
	}
}

func TestLoadAllUsesAccelerator(t *testing.T) {
	lj := functor.NewLennardJones(1.0, 1.0, 3.0)
	conv := New(lj, compute.NewCPUAccelerator())

	cells := []*particle.FullCell{particle.NewFullCell(), particle.NewFullCell()}
	cells[0].Add(particle.New(1, particle.Vec3{0, 0, 0}))
	cells[1].Add(particle.New(2, particle.Vec3{5, 5, 5}))

	soas := conv.LoadAll(cells)
	if len(soas) != 2 {
		t.Fatalf("expected 2 SoAs, got %d", len(soas))
	}
	if soas[0].Len() != 1 || soas[1].Len() != 1 {
		t.Fatalf("expected 1 particle per SoA, got %d and %d", soas[0].Len(), soas[1].Len())
	}
}

func TestClusterViewsPartitionSoA(t *testing.T) {
	lj := functor.NewLennardJones(1.0, 1.0, 3.0)
	tower := particle.NewFullCell()
	for i := 0; i < particle.ClusterSize*2; i++ {
		tower.Add(particle.New(uint64(i), particle.Vec3{0, 0, float64(i)}))
	}

	views := ClusterViews(lj, tower, 2)
	if len(views) != 2 {
		t.Fatalf("expected 2 views, got %d", len(views))
	}
	if views[0].Begin != 0 || views[0].End != particle.ClusterSize {
		t.Fatalf("unexpected view 0 bounds: %+v", views[0])
	}
	if views[1].Begin != particle.ClusterSize || views[1].End != particle.ClusterSize*2 {
		t.Fatalf("unexpected view 1 bounds: %+v", views[1])
	}
	if views[0].Len() != particle.ClusterSize {
		t.Fatalf("expected len %d, got %d", particle.ClusterSize, views[0].Len())
	}
}
