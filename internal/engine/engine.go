// Package engine orchestrates one subdomain's step loop: reset forces,
// run the tuner's committed (or currently sampled) configuration, apply
// reflective-wall forces, hand off to the caller's integrator, then run the
// halo/migration seam. Follows the ctx.Done-check, validate-then-loop shape
// of a straight-line per-step runner with no background goroutines, with
// the ODE integration step replaced by container iteration, rebuild-cadence,
// and tuner-phase checks.
package engine

import (
	"context"
	"fmt"

	"github.com/cellgrid/autotune/internal/autotune"
	"github.com/cellgrid/autotune/internal/container"
	"github.com/cellgrid/autotune/internal/functor"
	"github.com/cellgrid/autotune/internal/migration"
	"github.com/cellgrid/autotune/internal/particle"
)

// Tuner is the subset of *autotune.Tuner (or *autotune.LoggingTuner) the
// engine drives; satisfied by both so a caller can wrap one in the other
// without changing Engine's constructor.
type Tuner interface {
	Step(run autotune.Runner) (autotune.Config, error)
}

// Integrator advances particle positions/velocities given accumulated
// forces. Time integration is explicitly out of scope here: Engine treats
// it as an opaque optional hook rather than implementing any physics
// itself. A nil Integrator leaves positions untouched, which is a valid
// engine configuration for force-only benchmarking.
type Integrator func(c container.Container, dt float64)

// Config bundles the fixed, per-subdomain parameters Engine needs to build
// and rebuild containers across tuning phases.
type Config struct {
	Box          particle.Box
	Cutoff       float64
	Skin         float64
	Policy       container.BoundsPolicy
	RebuildEvery int
	NumWorkers   int
	Dt           float64
}

// Result records one entry per step taken, plus the error that stopped the
// run, if any.
type Result struct {
	Configs    []autotune.Config
	Errors     []error
	StepsTaken int
}

// Engine drives the per-step loop over one subdomain.
type Engine struct {
	cfg        Config
	fn         functor.PairFunctor
	tuner      Tuner
	seam       *migration.Seam
	integrate  Integrator
	onEmigrate func(map[migration.Face][]particle.Particle)

	active    container.Container
	activeCfg autotune.Config
	hasActive bool
	pending   []particle.Particle
}

// New builds an engine for one subdomain. seam and integrate may be nil:
// without a seam the engine never migrates or reflects particles; without
// an integrator positions never change between force evaluations.
func New(cfg Config, fn functor.PairFunctor, tuner Tuner, seam *migration.Seam, integrate Integrator) *Engine {
	if cfg.NumWorkers <= 0 {
		cfg.NumWorkers = 1
	}
	return &Engine{cfg: cfg, fn: fn, tuner: tuner, seam: seam, integrate: integrate}
}

// OnEmigrate registers a callback invoked with this step's routed
// box-leavers, bucketed by the face they crossed — the hand-off point to
// whatever transport ships them to a neighbour subdomain (encode with
// migration.EncodeParticles). Transport itself is an external collaborator:
// Engine only routes, it never transmits.
func (e *Engine) OnEmigrate(fn func(map[migration.Face][]particle.Particle)) {
	e.onEmigrate = fn
}

// Add inserts an owned particle, buffering it until the first container
// materializes if the tuner hasn't run a phase yet.
func (e *Engine) Add(p particle.Particle) error {
	p.Ownership = particle.Owned
	if !e.hasActive {
		e.pending = append(e.pending, p)
		return nil
	}
	return e.active.Add(p)
}

// AddHalo inserts a halo particle, same buffering rule as Add.
func (e *Engine) AddHalo(p particle.Particle) error {
	p.Ownership = particle.Halo
	if !e.hasActive {
		e.pending = append(e.pending, p)
		return nil
	}
	return e.active.AddHalo(p)
}

// Active returns the container currently materialized for the tuner's last
// committed or sampled configuration, or nil if no phase has run yet.
func (e *Engine) Active() container.Container { return e.active }

// ensureContainer returns a container matching cfg's container choice and
// cell-size factor, building a fresh one and migrating every particle from
// the previous container (or the pending buffer) if cfg names a different
// shape than the currently active one.
func (e *Engine) ensureContainer(cfg autotune.Config) (container.Container, error) {
	if e.hasActive && e.activeCfg.Container == cfg.Container && e.activeCfg.CellSizeFactor == cfg.CellSizeFactor {
		return e.active, nil
	}

	next, err := buildContainer(cfg, e.cfg.Box, e.cfg.Cutoff, e.cfg.Skin, e.cfg.Policy, e.cfg.RebuildEvery)
	if err != nil {
		return nil, err
	}

	if e.hasActive {
		var migrateErr error
		e.active.ForEach(particle.MaskOwnedOrHalo, nil, func(p *particle.Particle) bool {
			if p.Ownership == particle.Owned {
				migrateErr = next.Add(*p)
			} else {
				migrateErr = next.AddHalo(*p)
			}
			return migrateErr == nil
		})
		if migrateErr != nil {
			return nil, fmt.Errorf("engine: migrating particles to %s: %w", cfg.Container, migrateErr)
		}
	}
	for _, p := range e.pending {
		var addErr error
		if p.Ownership == particle.Owned {
			addErr = next.Add(p)
		} else {
			addErr = next.AddHalo(p)
		}
		if addErr != nil {
			return nil, fmt.Errorf("engine: flushing pending particle %d: %w", p.ID, addErr)
		}
	}
	e.pending = nil

	e.active = next
	e.activeCfg = cfg
	e.hasActive = true
	return next, nil
}

// runIteration is the autotune.Runner the engine hands to its Tuner: build
// or reuse the right container, clear forces, and run one pairwise pass.
func (e *Engine) runIteration(cfg autotune.Config) error {
	c, err := e.ensureContainer(cfg)
	if err != nil {
		return err
	}
	c.ForEach(particle.MaskOwnedOrHalo, nil, func(p *particle.Particle) bool {
		p.ResetForce()
		return true
	})
	if err := c.Iterate(e.fn, cfg.Traversal, cfg.Layout, cfg.Newton3, e.cfg.NumWorkers); err != nil {
		return err
	}
	if e.seam != nil {
		e.seam.ReflectBoundaries(c, e.fn)
	}
	return nil
}

// Step runs one outer-loop iteration: a tuner phase or a held-configuration
// pass (autotune.Tuner.Step decides which), then the integrator hook, then
// the halo/migration seam at the step boundary.
func (e *Engine) Step(ctx context.Context) (autotune.Config, error) {
	select {
	case <-ctx.Done():
		return autotune.Config{}, ctx.Err()
	default:
	}

	cfg, err := e.tuner.Step(e.runIteration)
	if err != nil {
		return cfg, err
	}

	if e.integrate != nil {
		e.integrate(e.active, e.cfg.Dt)
	}

	if e.seam != nil {
		leavers := e.active.UpdateContainer(true)
		routed := e.seam.RouteLeavers(leavers)
		if e.onEmigrate != nil && len(routed) > 0 {
			e.onEmigrate(routed)
		}
	}

	return cfg, nil
}

// Run drives Step for up to steps iterations, stopping early on the first
// error (recorded in the result) or context cancellation.
func (e *Engine) Run(ctx context.Context, steps int) (*Result, error) {
	if steps <= 0 {
		return nil, fmt.Errorf("engine: steps must be positive, got %d", steps)
	}
	result := &Result{Configs: make([]autotune.Config, 0, steps)}

	for i := 0; i < steps; i++ {
		cfg, err := e.Step(ctx)
		if err != nil {
			result.Errors = append(result.Errors, err)
			return result, err
		}
		result.Configs = append(result.Configs, cfg)
		result.StepsTaken++
	}
	return result, nil
}
