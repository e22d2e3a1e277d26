package automation

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/cellgrid/autotune/internal/config"
)

func writeScenarioFile(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "scenario.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("writing scenario file: %v", err)
	}
	return path
}

func TestLoadScenario(t *testing.T) {
	path := writeScenarioFile(t, `
name: smoke
description: a tiny sanity check
steps:
  - preset: dense
    particle_count: 10
    seed: 1
    steps: 2
    save_as: first
`)

	scenario, err := LoadScenario(path)
	if err != nil {
		t.Fatalf("LoadScenario failed: %v", err)
	}
	if scenario.Name != "smoke" {
		t.Errorf("expected name 'smoke', got %q", scenario.Name)
	}
	if len(scenario.Steps) != 1 {
		t.Fatalf("expected 1 step, got %d", len(scenario.Steps))
	}
	if scenario.Steps[0].ParticleCount != 10 {
		t.Errorf("expected particle_count 10, got %d", scenario.Steps[0].ParticleCount)
	}
}

func TestRunScenario(t *testing.T) {
	scenario := &Scenario{
		Name: "smoke",
		Steps: []ScenarioStep{
			{Preset: "dense", PresetGroup: "lj-fluid", ParticleCount: 10, Seed: 3, Steps: 2, SaveAs: "first"},
			{Preset: "sparse", PresetGroup: "lj-fluid", ParticleCount: 8, Seed: 4, Steps: 2, SaveAs: "second"},
		},
	}

	results, err := RunScenario(context.Background(), scenario)
	if err != nil {
		t.Fatalf("RunScenario failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	for i, r := range results {
		if r.Result.StepsTaken != 2 {
			t.Errorf("step %d: expected 2 steps taken, got %d", i, r.Result.StepsTaken)
		}
	}
}

func TestSweepParam(t *testing.T) {
	base := config.DefaultConfig()
	base.ParticleCount = 10
	base.Tuner.Interval = 1000

	results, err := SweepParam(context.Background(), base, []float64{0.2, 0.4}, func(cfg *config.Config, v float64) {
		cfg.Skin = v
	}, 2)
	if err != nil {
		t.Fatalf("SweepParam failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Exp.Config.Skin != 0.2 || results[1].Exp.Config.Skin != 0.4 {
		t.Errorf("expected swept skin values, got %v and %v", results[0].Exp.Config.Skin, results[1].Exp.Config.Skin)
	}
}

func TestRunMonteCarloDistinctSeeds(t *testing.T) {
	base := config.DefaultConfig()
	base.ParticleCount = 10
	base.Seed = 100
	base.Tuner.Interval = 1000

	results, err := RunMonteCarlo(context.Background(), base, 3, 2)
	if err != nil {
		t.Fatalf("RunMonteCarlo failed: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 trials, got %d", len(results))
	}
	seen := map[int64]bool{}
	for _, r := range results {
		if seen[r.Exp.Config.Seed] {
			t.Errorf("duplicate seed %d across trials", r.Exp.Config.Seed)
		}
		seen[r.Exp.Config.Seed] = true
	}
}
