// Package traversal implements the race-free parallel schedules that walk a
// cell block's cells and offer pairs to a functor: c01, c08, c18, sliced
// (lock-based and 2-colour), and balanced-sliced. The octree and
// verlet-cluster traversals are run by their own containers; this package
// only names them (OctreeC18Name, ClusterColourName, ClusterSlicedName).
//
// Each traversal is a closed concrete type implementing the Traversal
// interface rather than a template instantiation, so the tuner can
// enumerate and dispatch among them at run time.
package traversal

import (
	"github.com/cellgrid/autotune/internal/cellblock"
	"github.com/cellgrid/autotune/internal/functor"
	"github.com/cellgrid/autotune/internal/particle"
)

// DataLayout is the tuner's layout axis.
type DataLayout int

const (
	AoS DataLayout = iota
	SoA
)

func (d DataLayout) String() string {
	if d == SoA {
		return "SoA"
	}
	return "AoS"
}

// LoadEstimator names a strategy for weighting per-slab work in the
// balanced-sliced traversal.
type LoadEstimator int

const (
	// NoEstimator: slabs are equal-thickness, unweighted.
	NoEstimator LoadEstimator = iota
	// ParticleCount weights each layer by its owned-particle count.
	ParticleCount
	// NeighborListLength weights each layer by the sum of its cells'
	// neighbour-list lengths (verlet-backed containers only).
	NeighborListLength
	// SquaredParticleCount approximates pairwise work as count^2 per layer.
	SquaredParticleCount
)

// Applicability captures the run-time context a traversal's Applicable
// predicate consults: worker count and functor capabilities. Containers
// pass this down when enumerating configurations for the tuner.
type Applicability struct {
	Grid       *cellblock.Grid
	Functor    functor.PairFunctor
	Newton3    bool
	Layout     DataLayout
	NumWorkers int
}

// Traversal is a schedule over a cell block's cells: a function from
// (cells, pair-functor) to a race-free set of ordered cell-pair
// invocations. Concrete traversals additionally support Applicable(config)
// so the tuner can reject combinations the traversal cannot express (e.g.
// c01 with Newton3 on, or sliced on too few cells).
type Traversal interface {
	// Name identifies the traversal for configuration reporting and logs.
	Name() string

	// Applicable reports whether this traversal can run under the given
	// grid dimensions, functor capabilities, and layout/Newton3 choice.
	Applicable(a Applicability) bool

	// Execute runs the traversal to completion (returns after the implicit
	// end-of-parallel-region barrier). cells is indexed the way grid maps a
	// 3-D index to flat position (cellblock.Grid.Index3DToFlat).
	Execute(grid *cellblock.Grid, cells []*particle.FullCell, fn functor.PairFunctor, layout DataLayout, newton3 bool, numWorkers int)
}
