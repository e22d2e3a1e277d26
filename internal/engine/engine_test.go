package engine

import (
	"context"
	"math/rand"
	"testing"

	"github.com/cellgrid/autotune/internal/autotune"
	"github.com/cellgrid/autotune/internal/container"
	"github.com/cellgrid/autotune/internal/functor"
	"github.com/cellgrid/autotune/internal/migration"
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
		ps[i] = particle.New(uint64(i), particle.Vec3{r.Float64() * 10, r.Float64() * 10, r.Float64() * 10})
	}
	return ps
}

func singleConfigTuner(cfg autotune.Config) *autotune.Tuner {
	tuner, err := autotune.NewTuner([]autotune.Config{cfg}, autotune.FullSearch{}, autotune.ReduceMin, 1, 100)
	if err != nil {
		panic(err)
	}
	return tuner
}

func TestEngineRunsOneConfigEndToEnd(t *testing.T) {
	cfg := autotune.Config{Container: "linked-cells", Traversal: "c08", Layout: traversal.AoS, Newton3: true, CellSizeFactor: 1.0}
	tuner := singleConfigTuner(cfg)
	lj := functor.NewLennardJones(1.0, 1.0, 1.5)

	e := New(Config{Box: testBox(), Cutoff: 1.5, Skin: 0.3, Policy: container.StrictBounds, NumWorkers: 2}, lj, tuner, nil, nil)
	for _, p := range seedParticles(30, 1) {
		if err := e.Add(p); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	got, err := e.Step(context.Background())
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if got != cfg {
		t.Fatalf("got config %v, want %v", got, cfg)
	}

	anyForce := false
	e.Active().ForEach(particle.MaskOwned, nil, func(p *particle.Particle) bool {
		if p.Force != (particle.Vec3{}) {
			anyForce = true
		}
		return true
	})
	if !anyForce {
		t.Fatal("expected at least one particle to have accumulated a nonzero force")
	}
}

func TestEngineMigratesParticlesOnContainerSwitch(t *testing.T) {
	spaceA := autotune.Config{Container: "direct-sum", Traversal: "direct-sum-naive", Newton3: true, CellSizeFactor: 1.0}
	spaceB := autotune.Config{Container: "linked-cells", Traversal: "c08", Newton3: true, CellSizeFactor: 1.0}

	tuner, err := autotune.NewTuner([]autotune.Config{spaceA, spaceB}, autotune.FullSearch{}, autotune.ReduceMin, 1, 1)
	if err != nil {
		t.Fatalf("NewTuner: %v", err)
	}
	lj := functor.NewLennardJones(1.0, 1.0, 1.0)
	e := New(Config{Box: testBox(), Cutoff: 1.0, Skin: 0.2, Policy: container.StrictBounds, NumWorkers: 1}, lj, tuner, nil, nil)

	seeded := seedParticles(20, 7)
	for _, p := range seeded {
		if err := e.Add(p); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	_, err = e.Step(context.Background())
	if err != nil {
		t.Fatalf("Step 1: %v", err)
	}
	if e.Active().NumParticles(particle.MaskOwned) != len(seeded) {
		t.Fatalf("after step 1: expected %d owned particles, got %d", len(seeded), e.Active().NumParticles(particle.MaskOwned))
	}
	firstActive := e.Active()

	_, err = e.Step(context.Background())
	if err != nil {
		t.Fatalf("Step 2: %v", err)
	}
	if e.Active() == firstActive {
		t.Skip("step 2 reused the container left by step 1's last sample; switch not exercised this run")
	}
	if e.Active().NumParticles(particle.MaskOwned) != len(seeded) {
		t.Fatalf("after switching containers: expected %d owned particles, got %d", len(seeded), e.Active().NumParticles(particle.MaskOwned))
	}
}

func TestEngineRoutesEmigrantsThroughSeam(t *testing.T) {
	cfg := autotune.Config{Container: "linked-cells", Traversal: "c08", Newton3: true, CellSizeFactor: 1.0}
	tuner := singleConfigTuner(cfg)
	lj := functor.NewLennardJones(1.0, 1.0, 1.0)
	box := testBox()
	seam := migration.NewSeam(box, migration.Uniform(migration.Periodic))

	e := New(Config{Box: box, Cutoff: 1.0, Skin: 0.2, Policy: container.StrictBounds, NumWorkers: 1}, lj, tuner, seam, nil)

	var captured map[migration.Face][]particle.Particle
	e.OnEmigrate(func(routed map[migration.Face][]particle.Particle) { captured = routed })

	if err := e.Add(particle.New(1, particle.Vec3{9.9, 5, 5})); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := e.Step(context.Background()); err != nil {
		t.Fatalf("Step: %v", err)
	}

	// Mutate the particle's position past the box edge, mimicking a moved
	// particle between steps, then step again so UpdateContainer ejects it.
	e.Active().ForEach(particle.MaskOwned, nil, func(p *particle.Particle) bool {
		p.Position[0] = 10.5
		return true
	})
	if _, err := e.Step(context.Background()); err != nil {
		t.Fatalf("Step: %v", err)
	}
	if len(captured) == 0 {
		t.Fatal("expected the moved particle to be routed as an emigrant")
	}
}

func TestEngineRunStopsOnError(t *testing.T) {
	cfg := autotune.Config{Container: "does-not-exist"}
	tuner := singleConfigTuner(cfg)
	lj := functor.NewLennardJones(1, 1, 1)
	e := New(Config{Box: testBox(), Cutoff: 1, Skin: 0.1, Policy: container.StrictBounds}, lj, tuner, nil, nil)

	result, err := e.Run(context.Background(), 5)
	if err == nil {
		t.Fatal("expected an error for an unknown container choice")
	}
	if result.StepsTaken != 0 {
		t.Fatalf("expected 0 steps taken before the error, got %d", result.StepsTaken)
	}
}
