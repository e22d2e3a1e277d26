package functor

import (
	"math"
	"testing"

	"github.com/cellgrid/autotune/internal/particle"
)

func TestAoSPairNewton3Symmetry(t *testing.T) {
	lj := NewLennardJones(1.0, 1.0, 3.0)
	pi := particle.New(1, particle.Vec3{0, 0, 0})
	pj := particle.New(2, particle.Vec3{1.2, 0, 0})

	lj.AoSPair(&pi, &pj, true)

	if pi.Force.Add(pj.Force) != (particle.Vec3{0, 0, 0}) {
		t.Fatalf("expected equal and opposite forces, got pi=%v pj=%v", pi.Force, pj.Force)
	}
	if pi.Force[0] == 0 {
		t.Fatal("expected nonzero force along the separation axis")
	}
}

func TestAoSPairBeyondCutoffIsNoop(t *testing.T) {
	lj := NewLennardJones(1.0, 1.0, 1.0)
	pi := particle.New(1, particle.Vec3{0, 0, 0})
	pj := particle.New(2, particle.Vec3{10, 0, 0})

	lj.AoSPair(&pi, &pj, true)
	if pi.Force != (particle.Vec3{}) || pj.Force != (particle.Vec3{}) {
		t.Fatal("expected no force beyond cutoff")
	}
}

func TestSoAPairMatchesAoSPair(t *testing.T) {
	lj := NewLennardJones(1.0, 1.0, 3.0)

	pi := particle.New(1, particle.Vec3{0, 0, 0})
	pj := particle.New(2, particle.Vec3{1.1, 0.2, -0.3})

	lj.AoSPair(&pi, &pj, false)

	a := particle.NewFullCell()
	a.Add(particle.New(1, particle.Vec3{0, 0, 0}))
	b := particle.NewFullCell()
	b.Add(particle.New(2, particle.Vec3{1.1, 0.2, -0.3}))

	soaA := lj.SoALoader(a)
	soaB := lj.SoALoader(b)
	lj.SoAPair(soaA, soaB, false)
	lj.SoAExtractor(a)

	got := a.At(0).Force
	want := pi.Force
	for k := 0; k < 3; k++ {
		if math.Abs(got[k]-want[k]) > 1e-12 {
			t.Fatalf("axis %d: SoA force %v != AoS force %v", k, got, want)
		}
	}
}

func TestMirrorForceMatchesExplicitImage(t *testing.T) {
	lj := NewLennardJones(1.0, 1.0, 3.0)
	p := particle.New(1, particle.Vec3{0.005, 2.5, 2.5})
	mirrorOfP := particle.New(2, particle.Vec3{-0.005, 2.5, 2.5})

	direct := lj.MirrorForce(p, 0, 0.0)

	pi := p
	pj := mirrorOfP
	lj.AoSPair(&pi, &pj, false)

	for k := 0; k < 3; k++ {
		if math.Abs(direct[k]-pi.Force[k]) > 1e-10 {
			t.Fatalf("axis %d: MirrorForce %v != explicit-image AoSPair force %v", k, direct, pi.Force)
		}
	}
}

func TestFlopCounterNotRelevantForTuning(t *testing.T) {
	lj := NewLennardJones(1.0, 1.0, 3.0)
	fc := NewFlopCounter(lj, 20)
	if fc.IsRelevantForTuning() {
		t.Fatal("FlopCounter must never be relevant for tuning")
	}

	pi := particle.New(1, particle.Vec3{0, 0, 0})
	pj := particle.New(2, particle.Vec3{1, 0, 0})
	fc.AoSPair(&pi, &pj, true)

	if fc.KernelCalls() != 1 {
		t.Fatalf("expected 1 kernel call, got %d", fc.KernelCalls())
	}
	if fc.Flops() != 20 {
		t.Fatalf("expected 20 flops, got %d", fc.Flops())
	}
}
