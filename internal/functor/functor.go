// Package functor defines the pair-functor contract: the opaque,
// user-supplied symmetric pairwise force kernel the engine calls for every
// particle pair within the interaction length, plus a reference Lennard-
// Jones implementation and a flop-counting utility functor.
package functor

import "github.com/cellgrid/autotune/internal/particle"

// PairFunctor is the external collaborator "the concrete
// force kernel": a small contract the engine treats as opaque.
type PairFunctor interface {
	// AoSPair updates pi (and pj when newton3 is true) with the force
	// derived from their current positions. Called with pointers into a
	// cell's AoS storage.
	AoSPair(pi, pj *particle.Particle, newton3 bool)

	// SoASelf applies every pair within a single SoA-loaded cell.
	SoASelf(soa *particle.SoA, newton3 bool)
	// SoAPair applies every pair between two SoA-loaded cells.
	SoAPair(a, b *particle.SoA, newton3 bool)
	// SoAVerlet applies the neighbour list entries for particles [iFrom,
	// iTo) of soa against their listed neighbour indices.
	SoAVerlet(soa *particle.SoA, neighbors [][]int, iFrom, iTo int, newton3 bool)

	// AllowsNewton3 / AllowsNonNewton3 advertise which half-stencil
	// symmetry modes the functor supports; the tuner consults both when
	// enumerating applicable configurations.
	AllowsNewton3() bool
	AllowsNonNewton3() bool

	// IsRelevantForTuning reports whether this functor's timings should
	// count toward auto-tuning. Utility functors (e.g. FlopCounter) return
	// false so they never influence configuration selection.
	IsRelevantForTuning() bool

	// CutoffSq returns the squared cutoff distance beyond which the
	// functor is guaranteed to contribute nothing — used by containers and
	// traversals to prune candidate pairs before calling AoSPair.
	CutoffSq() float64

	// SoALoader materialises cell's SoA mirror for this functor's use.
	SoALoader(cell *particle.FullCell) *particle.SoA
	// SoAExtractor writes the SoA mirror's mutated columns back into cell.
	SoAExtractor(cell *particle.FullCell)
}
