// Package experiment builds a runnable engine.Engine from a config.Config
// and a particle-generation seed, using a registry-of-constructors pattern
// to resolve a tuner-strategy name and materialize the container search
// space.
package experiment

import (
	"context"
	"fmt"
	"io"
	"math/rand"

	"github.com/cellgrid/autotune/internal/autotune"
	"github.com/cellgrid/autotune/internal/config"
	"github.com/cellgrid/autotune/internal/engine"
	"github.com/cellgrid/autotune/internal/functor"
	"github.com/cellgrid/autotune/internal/migration"
	"github.com/cellgrid/autotune/internal/particle"
)

// Experiment bundles one runnable engine with the configuration that built
// it, so CLI commands can inspect cfg alongside Run's result.
type Experiment struct {
	Config  *config.Config
	Functor *functor.LennardJones
	Seam    *migration.Seam
	Engine  *engine.Engine
	Tuner   *autotune.LoggingTuner
}

// New resolves cfg's tuner strategy, enumerates the applicable search space,
// and builds the engine, functor, and halo seam it needs to run. withLog
// wraps the tuner in a logging tuner so every Step call is recorded for
// internal/store to persist.
func New(cfg *config.Config, withLog bool) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	fn := functor.NewLennardJones(cfg.Functor.Epsilon, cfg.Functor.Sigma, cfg.Functor.Cutoff)

	reduce, err := ParseReduce(cfg.Tuner.Reduce)
	if err != nil {
		return nil, err
	}
	strategy, err := NewRegistry().Strategy(cfg.Tuner.Strategy, reduce)
	if err != nil {
		return nil, err
	}

	specs := filterSpecs(autotune.DefaultContainerSpecs(), cfg.Containers)
	space := autotune.Enumerate(specs, fn)
	if len(space) == 0 {
		return nil, fmt.Errorf("experiment: search space is empty after applying containers allow-list %v", cfg.Containers)
	}

	tuner, err := autotune.NewTuner(space, strategy, reduce, cfg.Tuner.Samples, cfg.Tuner.Interval)
	if err != nil {
		return nil, err
	}

	var logTuner *autotune.LoggingTuner
	var engineTuner engine.Tuner = tuner
	if withLog {
		logTuner = autotune.NewLoggingTuner(tuner, io.Discard)
		engineTuner = logTuner
	}

	seam := migration.NewSeam(cfg.Box.ToBox(), cfg.Boundaries.ToMigrationConfig())

	eng := engine.New(engine.Config{
		Box:          cfg.Box.ToBox(),
		Cutoff:       cfg.Cutoff,
		Skin:         cfg.Skin,
		Policy:       cfg.Policy(),
		RebuildEvery: cfg.RebuildEvery,
		NumWorkers:   cfg.NumWorkers,
	}, fn, engineTuner, seam, nil)

	return &Experiment{Config: cfg, Functor: fn, Seam: seam, Engine: eng, Tuner: logTuner}, nil
}

// filterSpecs restricts specs to the named containers; an empty allow-list
// keeps every container family, per config.Config's "empty means every
// container family" doc.
func filterSpecs(specs []autotune.ContainerSpec, allow []string) []autotune.ContainerSpec {
	if len(allow) == 0 {
		return specs
	}
	allowed := make(map[string]bool, len(allow))
	for _, name := range allow {
		allowed[name] = true
	}
	var out []autotune.ContainerSpec
	for _, s := range specs {
		if allowed[s.Name] {
			out = append(out, s)
		}
	}
	return out
}

// SeedUniformRandom adds cfg.ParticleCount owned particles at positions
// drawn uniformly from the subdomain box, seeded by cfg.Seed.
func (e *Experiment) SeedUniformRandom() error {
	box := e.Config.Box.ToBox()
	rng := rand.New(rand.NewSource(e.Config.Seed))
	for i := 0; i < e.Config.ParticleCount; i++ {
		pos := particle.Vec3{
			box.Min[0] + rng.Float64()*(box.Max[0]-box.Min[0]),
			box.Min[1] + rng.Float64()*(box.Max[1]-box.Min[1]),
			box.Min[2] + rng.Float64()*(box.Max[2]-box.Min[2]),
		}
		p := particle.New(uint64(i), pos)
		if err := e.Engine.Add(p); err != nil {
			return fmt.Errorf("experiment: seeding particle %d: %w", i, err)
		}
	}
	return nil
}

// Run drives the engine for steps iterations.
func (e *Experiment) Run(ctx context.Context, steps int) (*engine.Result, error) {
	return e.Engine.Run(ctx, steps)
}

// LogEntries returns the tuner's call log, or nil if the experiment wasn't
// built with logging enabled.
func (e *Experiment) LogEntries() []autotune.LogEntry {
	if e.Tuner == nil {
		return nil
	}
	return e.Tuner.Entries()
}
