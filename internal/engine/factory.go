package engine

import (
	"fmt"

	"github.com/cellgrid/autotune/internal/autotune"
	"github.com/cellgrid/autotune/internal/container"
	"github.com/cellgrid/autotune/internal/particle"
)

// buildContainer constructs the concrete container.Container cfg.Container
// names, sized by cfg.CellSizeFactor. A configuration only ever switches at
// a rebuild boundary: the engine never mutates a live container's shape in
// place, it builds a fresh one and migrates particles across (see
// Engine.ensureContainer).
func buildContainer(cfg autotune.Config, box particle.Box, cutoff, skin float64, policy container.BoundsPolicy, rebuildEvery int) (container.Container, error) {
	switch cfg.Container {
	case "direct-sum":
		return container.NewDirectSum(box, cutoff, skin, policy), nil
	case "linked-cells":
		return container.NewLinkedCells(box, cutoff, skin, cfg.CellSizeFactor, policy), nil
	case "linked-cells-references":
		return container.NewLinkedCellsReferences(box, cutoff, skin, cfg.CellSizeFactor, policy), nil
	case "verlet-lists":
		return container.NewVerletLists(box, cutoff, skin, cfg.CellSizeFactor, rebuildEvery, policy), nil
	case "verlet-lists-cells":
		return container.NewVerletListsCells(box, cutoff, skin, cfg.CellSizeFactor, rebuildEvery, policy), nil
	case "verlet-cluster-lists":
		return container.NewVerletClusterLists(box, cutoff, skin, cfg.CellSizeFactor, rebuildEvery, policy), nil
	case "octree":
		return container.NewOctree(box, cutoff, skin, cfg.CellSizeFactor, policy), nil
	default:
		return nil, fmt.Errorf("engine: unknown container choice %q", cfg.Container)
	}
}
