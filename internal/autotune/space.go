package autotune

import (
	"github.com/cellgrid/autotune/internal/functor"
	"github.com/cellgrid/autotune/internal/traversal"
)

// ContainerSpec describes one container family's contribution to the search
// space: the traversal names it can run and whatever cellSizeFactor
// candidates are worth trying for it. Octree and verlet-cluster-lists report
// their container-specific traversal name here too, since traversal.Registry
// only knows the linked-cells family (see traversal/registry.go's doc).
type ContainerSpec struct {
	Name            string
	Traversals      []string
	CellSizeFactors []float64
}

// DefaultContainerSpecs is the search space's container axis, keyed off
// each container's own SupportedTraversals().
func DefaultContainerSpecs() []ContainerSpec {
	csf := []float64{1.0, 1.5, 2.0}
	return []ContainerSpec{
		{Name: "direct-sum", Traversals: []string{"direct-sum-naive"}, CellSizeFactors: []float64{1.0}},
		{Name: "linked-cells", Traversals: []string{"c01", "c08", "c18", "sliced-lock", "sliced-2colour", "balanced-sliced"}, CellSizeFactors: csf},
		{Name: "linked-cells-references", Traversals: []string{"c08"}, CellSizeFactors: csf},
		{Name: "verlet-lists", Traversals: []string{"verlet-list-pairwise"}, CellSizeFactors: []float64{1.0}},
		{Name: "verlet-lists-cells", Traversals: []string{"c08", "c18"}, CellSizeFactors: csf},
		{Name: "verlet-cluster-lists", Traversals: []string{"verlet-cluster-colour", "verlet-cluster-sliced"}, CellSizeFactors: []float64{1.0}},
		{Name: "octree", Traversals: []string{"octree-c18"}, CellSizeFactors: []float64{1.0}},
	}
}

// newton3Modes reports which Newton3 settings are worth enumerating for fn,
// and which containers refuse Newton3=false altogether (verlet-cluster-lists
// and octree, per the tie-break simplification documented in DESIGN.md).
func newton3Modes(fn functor.PairFunctor, container string) []bool {
	var modes []bool
	if fn.AllowsNewton3() {
		modes = append(modes, true)
	}
	if fn.AllowsNonNewton3() && container != "verlet-cluster-lists" && container != "octree" {
		modes = append(modes, false)
	}
	return modes
}

// layouts is the tuner's data-layout axis.
func layouts() []traversal.DataLayout { return []traversal.DataLayout{traversal.AoS, traversal.SoA} }

// Enumerate builds the cross product of container, cellSizeFactor,
// traversal, layout, and Newton3 choices, filtered by fn's capabilities.
// This is the tuner life cycle's first step, "enumerate applicable
// configurations" — the same recursive cross-product enumeration internal/
// optim's grid search runs over float parameters, here run over a
// categorical tuple.
func Enumerate(specs []ContainerSpec, fn functor.PairFunctor) []Config {
	var out []Config
	for _, spec := range specs {
		for _, csf := range spec.CellSizeFactors {
			for _, trav := range spec.Traversals {
				for _, layout := range layouts() {
					for _, n3 := range newton3Modes(fn, spec.Name) {
						out = append(out, Config{
							Container:      spec.Name,
							CellSizeFactor: csf,
							Traversal:      trav,
							Layout:         layout,
							Newton3:        n3,
						})
					}
				}
			}
		}
	}
	return out
}
