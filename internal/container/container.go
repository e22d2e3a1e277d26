// Package container implements the spatial-index family: direct-sum,
// linked-cells, linked-cells-references, two verlet variants, verlet-
// cluster-lists, and octree. Every variant satisfies Container and reports
// its own interaction length and traversal-selector info so the tuner can
// enumerate configurations without knowing the concrete type.
//
// The C++-template-polymorphic container axis is expressed here as seven
// concrete types behind one interface — closed tagged-union dispatch in
// place of template instantiation.
package container

import (
	"github.com/cellgrid/autotune/internal/functor"
	"github.com/cellgrid/autotune/internal/particle"
	"github.com/cellgrid/autotune/internal/traversal"
)

// Container is the contract every spatial index satisfies.
type Container interface {
	// Add inserts an owned particle. Fails with particle.Error if p's
	// position violates invariant O1 under the container's bounds policy.
	Add(p particle.Particle) error
	// AddHalo inserts a halo particle. Fails if p violates O2 under strict
	// bounds policy.
	AddHalo(p particle.Particle) error
	// UpdateHalo finds the halo particle with p's ID and overwrites its
	// position/velocity/force in place, reporting whether it was found.
	UpdateHalo(p particle.Particle) bool
	// DeleteHalo removes every halo particle.
	DeleteHalo()
	// UpdateContainer sweeps particles into their correct cell/tower/leaf
	// and returns those that left the local box. When keepLists is false,
	// verlet-lists and verlet-lists-cells discard their neighbour lists so
	// the next Iterate rebuilds them; the other containers ignore it.
	UpdateContainer(keepLists bool) []particle.Particle
	// DeleteAll removes every particle, owned and halo.
	DeleteAll()

	// Iterate runs traversalName over the container's cells using fn,
	// honouring layout and newton3. traversalName must be one this
	// container reports from SupportedTraversals, or a traversal this
	// container resolves through traversal.Registry.
	Iterate(fn functor.PairFunctor, traversalName string, layout traversal.DataLayout, newton3 bool, numWorkers int) error
	// RebuildNeighborLists rebuilds verlet-family neighbour lists; a no-op
	// for containers without lists (direct-sum, linked-cells).
	RebuildNeighborLists()

	// ForEach visits every particle matching mask, optionally restricted to
	// region (nil means unrestricted). visit returns false to stop early.
	ForEach(mask particle.Mask, region *particle.Box, visit func(*particle.Particle) bool)

	// SupportedTraversals lists traversal names this container can run.
	SupportedTraversals() []string
	// InteractionLength reports cutoff + skin.
	InteractionLength() float64
	// NumParticles counts particles matching mask.
	NumParticles(mask particle.Mask) int

	// IsInsideLocalDomain reports whether pos lies in this container's owned
	// box, the predicate the halo/migration collaborator uses to decide
	// whether an incoming particle is owned or halo.
	IsInsideLocalDomain(pos particle.Vec3) bool
}

// BoundsPolicy mirrors particle.BoundsPolicy for the container's own Add
// validation; re-exported so callers need only import this package.
type BoundsPolicy = particle.BoundsPolicy

const (
	StrictBounds  = particle.StrictBounds
	LenientBounds = particle.LenientBounds
)
