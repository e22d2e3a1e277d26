package container

import (
	"github.com/cellgrid/autotune/internal/functor"
	"github.com/cellgrid/autotune/internal/particle"
	"github.com/cellgrid/autotune/internal/traversal"
)

// VerletLists wraps a LinkedCells bucketing with a per-particle neighbour
// list. On rebuild, for each particle it enumerates candidates in the
// 3x3x3 neighbourhood of its cell and keeps those within cutoff+skin.
// Between rebuilds the list drives the pair loop directly instead of
// re-walking cells.
type VerletLists struct {
	lc           *LinkedCells
	Cutoff       float64
	Skin         float64
	RebuildEvery int
	stepCount    int
	// neighbors[i] holds the arena-flattened indices (into allParticles,
	// refreshed at rebuild) of particle i's neighbours within cutoff+skin.
	allParticles []particle.Particle
	neighbors    [][]int
}

func NewVerletLists(box particle.Box, cutoff, skin, cellSizeFactor float64, rebuildEvery int, policy BoundsPolicy) *VerletLists {
	return &VerletLists{
		lc:           NewLinkedCells(box, cutoff, skin, cellSizeFactor, policy),
		Cutoff:       cutoff,
		Skin:         skin,
		RebuildEvery: rebuildEvery,
	}
}

func (v *VerletLists) InteractionLength() float64 { return v.lc.InteractionLength() }

func (v *VerletLists) IsInsideLocalDomain(pos particle.Vec3) bool { return v.lc.IsInsideLocalDomain(pos) }

func (v *VerletLists) Add(p particle.Particle) error       { return v.lc.Add(p) }
func (v *VerletLists) AddHalo(p particle.Particle) error   { return v.lc.AddHalo(p) }
func (v *VerletLists) UpdateHalo(p particle.Particle) bool { return v.lc.UpdateHalo(p) }
func (v *VerletLists) DeleteHalo()                         { v.lc.DeleteHalo() }
func (v *VerletLists) DeleteAll() {
	v.lc.DeleteAll()
	v.allParticles = nil
	v.neighbors = nil
}

func (v *VerletLists) UpdateContainer(keepLists bool) []particle.Particle {
	leavers := v.lc.UpdateContainer(keepLists)
	if !keepLists {
		v.neighbors = nil
	}
	return leavers
}

func (v *VerletLists) SupportedTraversals() []string { return []string{"verlet-list-pairwise"} }

func (v *VerletLists) NumParticles(mask particle.Mask) int { return v.lc.NumParticles(mask) }

func (v *VerletLists) ForEach(mask particle.Mask, region *particle.Box, visit func(*particle.Particle) bool) {
	v.lc.ForEach(mask, region, visit)
}

// needsRebuild implements invariant N1': the list is valid only while every
// particle's squared displacement since the last rebuild stays within
// (skin/2)^2.
func (v *VerletLists) needsRebuild() bool {
	if v.neighbors == nil {
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

// RebuildNeighborLists flattens the cell block into one arena and, for each
// particle, enumerates candidates from its cell's 3x3x3 neighbourhood.
func (v *VerletLists) RebuildNeighborLists() {
	cutoffSkinSq := (v.Cutoff + v.Skin) * (v.Cutoff + v.Skin)

	var arena []particle.Particle
	cellOf := make(map[int][]int) // flat cell index -> arena indices
	grid := v.lc.Grid
	for flat, cell := range v.lc.Cells() {
		for i := 0; i < cell.Len(); i++ {
			p := cell.At(i)
			if p.Ownership == particle.Dummy {
				continue
			}
			idx := len(arena)
			arena = append(arena, *p)
			cellOf[flat] = append(cellOf[flat], idx)
		}
	}

	neighbors := make([][]int, len(arena))
	for flat, indices := range cellOf {
		idx3 := grid.FlatToIndex3D(flat)
		candidateCells := append([]int{flat}, grid.Neighbors26Of(idx3)...)
		for _, ai := range indices {
			for _, nbFlat := range candidateCells {
				for _, aj := range cellOf[nbFlat] {
					if aj == ai {
						continue
					}
					if arena[ai].Position.DistSq(arena[aj].Position) <= cutoffSkinSq {
						neighbors[ai] = append(neighbors[ai], aj)
					}
				}
			}
		}
	}

	v.allParticles = arena
	v.neighbors = neighbors
	v.stepCount = 0
	for i := range v.allParticles {
		v.allParticles[i].MarkRebuilt()
	}
	v.writeBackRebuildPositions()
}

// writeBackRebuildPositions stamps the rebuild-time snapshot back onto the
// live cells so the displacement check in needsRebuild sees it.
func (v *VerletLists) writeBackRebuildPositions() {
	v.lc.ForEach(particle.MaskOwnedOrHalo, nil, func(p *particle.Particle) bool {
		p.MarkRebuilt()
		return true
	})
}

func (v *VerletLists) Iterate(fn functor.PairFunctor, traversalName string, layout traversal.DataLayout, newton3 bool, numWorkers int) error {
	if traversalName != "verlet-list-pairwise" {
		return &ErrUnsupportedTraversal{Container: "verlet-lists", Name: traversalName}
	}
	if v.needsRebuild() {
		v.RebuildNeighborLists()
	}
	v.stepCount++

	// refresh the arena copies from the live cells, which the caller may
	// have moved or had their forces reset since the last rebuild.
	live := make(map[uint64]*particle.Particle, len(v.allParticles))
	v.lc.ForEach(particle.MaskOwnedOrHalo, nil, func(p *particle.Particle) bool {
		live[p.ID] = p
		return true
	})
	for i := range v.allParticles {
		if src, ok := live[v.allParticles[i].ID]; ok {
			v.allParticles[i].Position = src.Position
			v.allParticles[i].Force = src.Force
		}
	}

	for i := range v.allParticles {
		if v.allParticles[i].Ownership == particle.Dummy {
			continue
		}
		for _, j := range v.neighbors[i] {
			if newton3 && j < i {
				continue
			}
			fn.AoSPair(&v.allParticles[i], &v.allParticles[j], newton3)
		}
	}

	// write the accumulated forces back into the live cell storage.
	byID := make(map[uint64]*particle.Particle, len(v.allParticles))
	for i := range v.allParticles {
		byID[v.allParticles[i].ID] = &v.allParticles[i]
	}
	v.lc.ForEach(particle.MaskOwnedOrHalo, nil, func(p *particle.Particle) bool {
		if src, ok := byID[p.ID]; ok {
			p.Force = src.Force
		}
		return true
	})
	return nil
}
