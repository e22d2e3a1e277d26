// Package automation scripts sequences of engine runs from a YAML file and
// sweeps a single configuration parameter or random seed across trials.
// Keeps the Scenario/ScenarioStep/RunSweep/RunMonteCarlo shapes of an
// earlier automation layer, generalized from a model/integrator/controller
// step to a config.Config + particle count step.
package automation

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cellgrid/autotune/internal/config"
	"github.com/cellgrid/autotune/internal/engine"
	"github.com/cellgrid/autotune/internal/experiment"
)

// ScenarioStep is one scripted engine run: a base config overridden by
// Steps/ParticleCount/Seed, run to completion and optionally labelled for
// the caller to persist under SaveAs.
type ScenarioStep struct {
	ConfigFile    string `yaml:"config_file"`
	Preset        string `yaml:"preset"`
	PresetGroup   string `yaml:"preset_group"`
	Steps         int    `yaml:"steps"`
	ParticleCount int    `yaml:"particle_count"`
	Seed          int64  `yaml:"seed"`
	SaveAs        string `yaml:"save_as"`
}

// Scenario is a named, documented sequence of steps, loaded from YAML.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// LoadScenario reads and parses a scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// StepResult pairs one scenario step's label with the engine.Result and the
// experiment that produced it, so a caller can inspect the final
// configuration or persist it.
type StepResult struct {
	Step   ScenarioStep
	Exp    *experiment.Experiment
	Result *engine.Result
}

// buildConfig resolves a step's base configuration from its preset or
// config file (config file wins if both are set), then applies the step's
// own overrides.
func buildConfig(step ScenarioStep) (*config.Config, error) {
	var cfg *config.Config
	switch {
	case step.ConfigFile != "":
		loaded, err := config.Load(step.ConfigFile)
		if err != nil {
			return nil, fmt.Errorf("automation: loading config %q: %w", step.ConfigFile, err)
		}
		cfg = loaded
	case step.Preset != "":
		group := step.PresetGroup
		if group == "" {
			group = "lj-fluid"
		}
		cfg = config.GetPreset(group, step.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("automation: unknown preset %q in group %q", step.Preset, group)
		}
	default:
		cfg = config.DefaultConfig()
	}

	if step.ParticleCount > 0 {
		cfg.ParticleCount = step.ParticleCount
	}
	if step.Seed != 0 {
		cfg.Seed = step.Seed
	}
	return cfg, nil
}

// RunScenario executes every step in order, seeding a fresh experiment per
// step and running it for step.Steps engine iterations (a default of 100
// when unset).
func RunScenario(ctx context.Context, scenario *Scenario) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		fmt.Printf("running step %d/%d: %s\n", i+1, len(scenario.Steps), step.SaveAs)

		cfg, err := buildConfig(step)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		exp, err := experiment.New(cfg, true)
		if err != nil {
			return results, fmt.Errorf("step %d: building experiment: %w", i+1, err)
		}
		if err := exp.SeedUniformRandom(); err != nil {
			return results, fmt.Errorf("step %d: seeding particles: %w", i+1, err)
		}

		n := step.Steps
		if n <= 0 {
			n = 100
		}
		result, err := exp.Run(ctx, n)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		results = append(results, StepResult{Step: step, Exp: exp, Result: result})
	}

	return results, nil
}

// SweepParam varies a single float64 field of cfg across values, rebuilding
// and rerunning the experiment for each. apply mutates cfg in place for one
// value (e.g. setting Cutoff or Skin).
func SweepParam(ctx context.Context, base *config.Config, values []float64, apply func(cfg *config.Config, v float64), steps int) ([]StepResult, error) {
	results := make([]StepResult, 0, len(values))
	for _, v := range values {
		cfg := cloneConfig(base)
		apply(cfg, v)

		exp, err := experiment.New(cfg, true)
		if err != nil {
			return results, fmt.Errorf("sweep value %v: %w", v, err)
		}
		if err := exp.SeedUniformRandom(); err != nil {
			return results, fmt.Errorf("sweep value %v: seeding: %w", v, err)
		}
		result, err := exp.Run(ctx, steps)
		if err != nil {
			return results, fmt.Errorf("sweep value %v: %w", v, err)
		}
		results = append(results, StepResult{
			Step:   ScenarioStep{SaveAs: fmt.Sprintf("sweep_%v", v)},
			Exp:    exp,
			Result: result,
		})
	}
	return results, nil
}

// RunMonteCarlo runs trials independent experiments off base, each with a
// distinct seed derived from base.Seed, and reports the winning
// configuration each trial's tuner committed to last, sampling many random
// particle distributions per scenario.
func RunMonteCarlo(ctx context.Context, base *config.Config, trials, steps int) ([]StepResult, error) {
	results := make([]StepResult, 0, trials)
	for t := 0; t < trials; t++ {
		cfg := cloneConfig(base)
		cfg.Seed = base.Seed + int64(t)

		exp, err := experiment.New(cfg, true)
		if err != nil {
			return results, fmt.Errorf("trial %d: %w", t, err)
		}
		if err := exp.SeedUniformRandom(); err != nil {
			return results, fmt.Errorf("trial %d: seeding: %w", t, err)
		}
		result, err := exp.Run(ctx, steps)
		if err != nil {
			return results, fmt.Errorf("trial %d: %w", t, err)
		}
		results = append(results, StepResult{
			Step:   ScenarioStep{SaveAs: fmt.Sprintf("trial_%d", t), Seed: cfg.Seed},
			Exp:    exp,
			Result: result,
		})
	}
	return results, nil
}

// cloneConfig makes a shallow copy of cfg safe to mutate independently; all
// of config.Config's fields are value types or slices/structs copied by
// value on assignment, except Containers, whose backing array is shared but
// never mutated in place by any automation helper.
func cloneConfig(cfg *config.Config) *config.Config {
	clone := *cfg
	return &clone
}
