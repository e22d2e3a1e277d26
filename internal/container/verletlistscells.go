package container

import (
	"github.com/cellgrid/autotune/internal/functor"
	"github.com/cellgrid/autotune/internal/particle"
	"github.com/cellgrid/autotune/internal/traversal"
)

// cellPos identifies a particle by (cell flat index, index within cell) —
// the key verlet-lists-cells uses instead of a flat arena index.
type cellPos struct {
	cell, idx int
}

// VerletListsCells is VerletLists with the neighbour list keyed by cell
// position instead of arena index. Iterate accepts the traversal names c08
// and c18 but walks the neighbour map sequentially for either; no cell
// colouring drives the pair loop.
type VerletListsCells struct {
	lc           *LinkedCells
	Cutoff       float64
	Skin         float64
	RebuildEvery int
	stepCount    int
	neighbors    map[cellPos][]cellPos
	built        bool
}

func NewVerletListsCells(box particle.Box, cutoff, skin, cellSizeFactor float64, rebuildEvery int, policy BoundsPolicy) *VerletListsCells {
	return &VerletListsCells{
		lc:           NewLinkedCells(box, cutoff, skin, cellSizeFactor, policy),
		Cutoff:       cutoff,
		Skin:         skin,
		RebuildEvery: rebuildEvery,
	}
}

func (v *VerletListsCells) InteractionLength() float64 { return v.lc.InteractionLength() }

func (v *VerletListsCells) IsInsideLocalDomain(pos particle.Vec3) bool {
	return v.lc.IsInsideLocalDomain(pos)
}

func (v *VerletListsCells) Add(p particle.Particle) error       { return v.lc.Add(p) }
func (v *VerletListsCells) AddHalo(p particle.Particle) error   { return v.lc.AddHalo(p) }
func (v *VerletListsCells) UpdateHalo(p particle.Particle) bool { return v.lc.UpdateHalo(p) }
func (v *VerletListsCells) DeleteHalo()                         { v.lc.DeleteHalo() }
func (v *VerletListsCells) DeleteAll() {
	v.lc.DeleteAll()
	v.neighbors = nil
	v.built = false
}

func (v *VerletListsCells) UpdateContainer(keepLists bool) []particle.Particle {
	leavers := v.lc.UpdateContainer(keepLists)
	if !keepLists {
		v.neighbors = nil
		v.built = false
	}
	return leavers
}

func (v *VerletListsCells) SupportedTraversals() []string { return []string{"c08", "c18"} }

func (v *VerletListsCells) NumParticles(mask particle.Mask) int { return v.lc.NumParticles(mask) }

func (v *VerletListsCells) ForEach(mask particle.Mask, region *particle.Box, visit func(*particle.Particle) bool) {
	v.lc.ForEach(mask, region, visit)
}

func (v *VerletListsCells) needsRebuild() bool {
	if !v.built {
		return true
	}
	if v.RebuildEvery > 0 && v.stepCount >= v.RebuildEvery {
		return true
	}
	halfSkinSq := (v.Skin / 2) * (v.Skin / 2)
	violated := false
	v.lc.ForEach(particle.MaskOwnedOrHalo, nil, func(p *particle.Particle) bool {
		if p.DisplacementSq() > halfSkinSq {
			violated = true
			return false
		}
		return true
	})
	return violated
}

// RebuildNeighborLists enumerates, for each (cell, idx) particle, every
// candidate in the cell's 3x3x3 neighbourhood within cutoff+skin.
func (v *VerletListsCells) RebuildNeighborLists() {
	cutoffSkinSq := (v.Cutoff + v.Skin) * (v.Cutoff + v.Skin)
	grid := v.lc.Grid
	cells := v.lc.Cells()

	neighbors := make(map[cellPos][]cellPos)
	for flat, cell := range cells {
		idx3 := grid.FlatToIndex3D(flat)
		candidateFlats := append([]int{flat}, grid.Neighbors26Of(idx3)...)
		for i := 0; i < cell.Len(); i++ {
			pi := cell.At(i)
			if pi.Ownership == particle.Dummy {
				continue
			}
			here := cellPos{cell: flat, idx: i}
			for _, nbFlat := range candidateFlats {
				nbCell := cells[nbFlat]
				for j := 0; j < nbCell.Len(); j++ {
					if nbFlat == flat && j == i {
						continue
					}
					pj := nbCell.At(j)
					if pj.Ownership == particle.Dummy {
						continue
					}
					if pi.Position.DistSq(pj.Position) <= cutoffSkinSq {
						neighbors[here] = append(neighbors[here], cellPos{cell: nbFlat, idx: j})
					}
				}
			}
		}
	}

	v.neighbors = neighbors
	v.built = true
	v.stepCount = 0
	v.lc.ForEach(particle.MaskOwnedOrHalo, nil, func(p *particle.Particle) bool {
		p.MarkRebuilt()
		return true
	})
}

func (v *VerletListsCells) Iterate(fn functor.PairFunctor, traversalName string, layout traversal.DataLayout, newton3 bool, numWorkers int) error {
	switch traversalName {
	case "c08", "c18":
	default:
		return &ErrUnsupportedTraversal{Container: "verlet-lists-cells", Name: traversalName}
	}
	if v.needsRebuild() {
		v.RebuildNeighborLists()
	}
	v.stepCount++

	cells := v.lc.Cells()
	for here, candidates := range v.neighbors {
		pi := cells[here.cell].At(here.idx)
		if pi.Ownership == particle.Dummy {
			continue
		}
		for _, nb := range candidates {
			pj := cells[nb.cell].At(nb.idx)
			if newton3 && (nb.cell < here.cell || (nb.cell == here.cell && nb.idx < here.idx)) {
				continue
			}
			fn.AoSPair(pi, pj, newton3)
		}
	}
	return nil
}
