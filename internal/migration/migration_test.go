package migration

import (
	"math"
	"testing"

	"github.com/cellgrid/autotune/internal/container"
	"github.com/cellgrid/autotune/internal/functor"
	"github.com/cellgrid/autotune/internal/particle"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	ps := []particle.Particle{
		particle.New(1, particle.Vec3{1, 2, 3}),
		particle.New(2, particle.Vec3{-4, 5.5, 6}),
	}
	ps[0].Velocity = particle.Vec3{0.1, 0.2, 0.3}
	ps[0].Force = particle.Vec3{1, -1, 0}
	ps[1].Ownership = particle.Halo

	buf := EncodeParticles(ps)
	got, err := DecodeParticles(buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != len(ps) {
		t.Fatalf("got %d particles, want %d", len(got), len(ps))
	}
	for i := range ps {
		if got[i].ID != ps[i].ID || got[i].Ownership != ps[i].Ownership {
			t.Fatalf("particle %d: got %+v want %+v", i, got[i], ps[i])
		}
		if got[i].Position != ps[i].Position || got[i].Velocity != ps[i].Velocity || got[i].Force != ps[i].Force {
			t.Fatalf("particle %d vectors mismatch: got %+v want %+v", i, got[i], ps[i])
		}
	}
}

func TestDecodeRejectsTruncatedBuffer(t *testing.T) {
	if _, err := DecodeParticles(make([]byte, 10)); err == nil {
		t.Fatal("expected an error decoding a buffer not a multiple of the record size")
	}
}

func TestRouteLeaversWrapsPeriodicFace(t *testing.T) {
	box := particle.Box{Min: particle.Vec3{0, 0, 0}, Max: particle.Vec3{10, 10, 10}}
	seam := NewSeam(box, Uniform(Periodic))

	leaver := particle.New(1, particle.Vec3{10.5, 5, 5})
	routed := seam.RouteLeavers([]particle.Particle{leaver})

	got, ok := routed[FaceXMax]
	if !ok || len(got) != 1 {
		t.Fatalf("expected 1 leaver routed to FaceXMax, got %v", routed)
	}
	if got[0].Position[0] != 0.5 {
		t.Fatalf("expected wrapped x=0.5, got %v", got[0].Position)
	}
}

func TestRouteLeaversDropsNoneFace(t *testing.T) {
	box := particle.Box{Min: particle.Vec3{0, 0, 0}, Max: particle.Vec3{10, 10, 10}}
	seam := NewSeam(box, Uniform(None))

	leaver := particle.New(1, particle.Vec3{-1, 5, 5})
	routed := seam.RouteLeavers([]particle.Particle{leaver})
	if len(routed) != 0 {
		t.Fatalf("expected no routed leavers under a None boundary, got %v", routed)
	}
}

func TestHaloImageNearPeriodicFace(t *testing.T) {
	box := particle.Box{Min: particle.Vec3{0, 0, 0}, Max: particle.Vec3{10, 10, 10}}
	seam := NewSeam(box, Uniform(Periodic))

	img, face, ok := seam.HaloImage(particle.Vec3{0.2, 5, 5}, 1.0)
	if !ok || face != FaceXMin {
		t.Fatalf("expected a halo image across FaceXMin, got face=%v ok=%v", face, ok)
	}
	if img[0] != 10.2 {
		t.Fatalf("expected wrapped halo x=10.2, got %v", img)
	}

	if _, _, ok := seam.HaloImage(particle.Vec3{5, 5, 5}, 1.0); ok {
		t.Fatal("expected no halo image for a particle far from any face")
	}
}

func TestApplyIncomingRoutesByOwnership(t *testing.T) {
	box := particle.Box{Min: particle.Vec3{0, 0, 0}, Max: particle.Vec3{10, 10, 10}}
	ds := container.NewDirectSum(box, 1.0, 0.2, container.StrictBounds)

	owned := particle.New(1, particle.Vec3{5, 5, 5})
	halo := particle.New(2, particle.Vec3{10.5, 5, 5})
	halo.Ownership = particle.Halo

	errs := ApplyIncoming(ds, []particle.Particle{owned, halo})
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if ds.NumParticles(particle.MaskOwned) != 1 {
		t.Fatalf("expected 1 owned particle, got %d", ds.NumParticles(particle.MaskOwned))
	}
	if ds.NumParticles(particle.MaskHalo) != 1 {
		t.Fatalf("expected 1 halo particle, got %d", ds.NumParticles(particle.MaskHalo))
	}
}

func TestReflectBoundariesInjectsMirrorForce(t *testing.T) {
	box := particle.Box{Min: particle.Vec3{0, 0, 0}, Max: particle.Vec3{10, 10, 10}}
	seam := NewSeam(box, Uniform(Reflective))
	lj := functor.NewLennardJones(1.0, 1.0, 2.5)

	ds := container.NewDirectSum(box, 2.5, 0.0, container.StrictBounds)
	near := particle.New(1, particle.Vec3{0.2, 5, 5})
	if err := ds.Add(near); err != nil {
		t.Fatalf("add: %v", err)
	}

	seam.ReflectBoundaries(ds, lj)

	var force particle.Vec3
	ds.ForEach(particle.MaskOwned, nil, func(p *particle.Particle) bool {
		force = p.Force
		return true
	})
	if force == (particle.Vec3{}) {
		t.Fatal("expected a nonzero reflective force near the wall")
	}
	if math.IsNaN(force[0]) {
		t.Fatal("reflective force is NaN")
	}
}

func TestReflectBoundariesNoopForNonReflector(t *testing.T) {
	box := particle.Box{Min: particle.Vec3{0, 0, 0}, Max: particle.Vec3{10, 10, 10}}
	seam := NewSeam(box, Uniform(Reflective))
	fc := functor.NewFlopCounter(functor.NewLennardJones(1, 1, 2.5), 20)

	ds := container.NewDirectSum(box, 2.5, 0.0, container.StrictBounds)
	near := particle.New(1, particle.Vec3{0.2, 5, 5})
	if err := ds.Add(near); err != nil {
		t.Fatalf("add: %v", err)
	}

	seam.ReflectBoundaries(ds, fc)

	var force particle.Vec3
	ds.ForEach(particle.MaskOwned, nil, func(p *particle.Particle) bool {
		force = p.Force
		return true
	})
	if force != (particle.Vec3{}) {
		t.Fatalf("expected no force injected for a non-Reflector functor, got %v", force)
	}
}
