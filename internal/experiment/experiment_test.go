package experiment

import (
	"context"
	"testing"

	"github.com/cellgrid/autotune/internal/config"
	"github.com/cellgrid/autotune/internal/particle"
)

func smallConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.ParticleCount = 20
	cfg.Seed = 7
	cfg.Tuner.Interval = 1000 // avoid tuner commit churn during a short test run
	return cfg
}

func TestNewBuildsRunnableExperiment(t *testing.T) {
	exp, err := New(smallConfig(), true)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if exp.Engine == nil {
		t.Fatal("expected a non-nil engine")
	}
	if exp.Tuner == nil {
		t.Fatal("expected a logging tuner when withLog is true")
	}
}

func TestSeedUniformRandomAddsParticles(t *testing.T) {
	cfg := smallConfig()
	exp, err := New(cfg, false)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := exp.SeedUniformRandom(); err != nil {
		t.Fatalf("seeding failed: %v", err)
	}
	// the engine buffers added particles until the first step builds a
	// container.
	if _, err := exp.Run(context.Background(), 1); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	active := exp.Engine.Active()
	if active == nil {
		t.Fatal("expected an active container after the first step")
	}
	if n := active.NumParticles(particle.MaskOwned); n != cfg.ParticleCount {
		t.Errorf("expected %d particles, got %d", cfg.ParticleCount, n)
	}
}

func TestRunAdvancesSteps(t *testing.T) {
	exp, err := New(smallConfig(), true)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := exp.SeedUniformRandom(); err != nil {
		t.Fatalf("seeding failed: %v", err)
	}

	result, err := exp.Run(context.Background(), 3)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if result.StepsTaken != 3 {
		t.Errorf("expected 3 steps taken, got %d", result.StepsTaken)
	}
}

func TestFilterSpecsEmptyAllowListKeepsAll(t *testing.T) {
	cfg := smallConfig()
	cfg.Containers = nil
	exp, err := New(cfg, false)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if exp == nil {
		t.Fatal("expected a non-nil experiment")
	}
}

func TestFilterSpecsUnknownContainerErrors(t *testing.T) {
	cfg := smallConfig()
	cfg.Containers = []string{"not-a-real-container"}
	if _, err := New(cfg, false); err == nil {
		t.Fatal("expected an error when the allow-list matches no container")
	}
}
