package container

import (
	"github.com/cellgrid/autotune/internal/cellblock"
	"github.com/cellgrid/autotune/internal/functor"
	"github.com/cellgrid/autotune/internal/particle"
	"github.com/cellgrid/autotune/internal/traversal"
)

// LinkedCellsReferences is the reference-based linked-cells variant: all
// particles live in one arena slice owned by the container; each grid cell
// holds a particle.ReferenceCell of arena indices rather than its own AoS
// storage: no particle ever needs a pointer into another cell's storage,
// and rebuild is a wholesale arena reset rather than a cell-by-cell sweep.
//
// Because its cells hold indices rather than particle.FullCell AoS/SoA
// storage, it does not run the generic traversal.Registry traversals
// (those operate on particle.FullCell); it drives its own c08-coloured
// pair loop directly over the arena.
type LinkedCellsReferences struct {
	Grid   *cellblock.Grid
	Skin   float64
	Policy BoundsPolicy
	arena  []particle.Particle
	refs   []*particle.ReferenceCell
}

func NewLinkedCellsReferences(box particle.Box, cutoff, skin, cellSizeFactor float64, policy BoundsPolicy) *LinkedCellsReferences {
	grid := cellblock.New(box, cutoff+skin, cellSizeFactor)
	refs := make([]*particle.ReferenceCell, grid.NumCells())
	for i := range refs {
		refs[i] = particle.NewReferenceCell()
	}
	return &LinkedCellsReferences{Grid: grid, Skin: skin, Policy: policy, refs: refs}
}

func (l *LinkedCellsReferences) InteractionLength() float64 { return l.Grid.InteractionLength }

func (l *LinkedCellsReferences) IsInsideLocalDomain(pos particle.Vec3) bool {
	return l.Grid.Box.Contains(pos)
}

func (l *LinkedCellsReferences) Add(p particle.Particle) error {
	if err := particle.CheckBounds(p, l.Grid.Box, l.InteractionLength(), l.Policy); err != nil {
		return err
	}
	p.Ownership = particle.Owned
	l.insert(p)
	return nil
}

func (l *LinkedCellsReferences) AddHalo(p particle.Particle) error {
	if err := particle.CheckBounds(p, l.Grid.Box, l.InteractionLength(), l.Policy); err != nil {
		return err
	}
	p.Ownership = particle.Halo
	l.insert(p)
	return nil
}

func (l *LinkedCellsReferences) insert(p particle.Particle) {
	idx := len(l.arena)
	l.arena = append(l.arena, p)
	flat := l.Grid.CoordToFlat(p.Position)
	l.refs[flat].Add(idx)
}

func (l *LinkedCellsReferences) UpdateHalo(p particle.Particle) bool {
	for i := range l.arena {
		if l.arena[i].Ownership == particle.Halo && l.arena[i].ID == p.ID {
			l.arena[i].Position = p.Position
			l.arena[i].Velocity = p.Velocity
			l.arena[i].Force = p.Force
			return true
		}
	}
	return false
}

func (l *LinkedCellsReferences) DeleteHalo() {
	l.rebuildArena(func(p particle.Particle) bool { return p.Ownership != particle.Halo })
}

// UpdateContainer rebuilds the arena wholesale, dropping particles that
// left the box and returning them.
func (l *LinkedCellsReferences) UpdateContainer(keepLists bool) []particle.Particle {
	var leavers []particle.Particle
	kept := make([]particle.Particle, 0, len(l.arena))
	for _, p := range l.arena {
		if p.Ownership == particle.Owned && !l.Grid.Box.Contains(p.Position) {
			leavers = append(leavers, p)
			continue
		}
		if p.Ownership == particle.Halo {
			continue
		}
		kept = append(kept, p)
	}
	l.resetFrom(kept)
	return leavers
}

func (l *LinkedCellsReferences) rebuildArena(keep func(particle.Particle) bool) {
	kept := make([]particle.Particle, 0, len(l.arena))
	for _, p := range l.arena {
		if keep(p) {
			kept = append(kept, p)
		}
	}
	l.resetFrom(kept)
}

func (l *LinkedCellsReferences) resetFrom(kept []particle.Particle) {
	l.arena = nil
	for i := range l.refs {
		l.refs[i].Reset()
	}
	for _, p := range kept {
		l.insert(p)
	}
}

func (l *LinkedCellsReferences) DeleteAll() {
	l.arena = nil
	for i := range l.refs {
		l.refs[i].Reset()
	}
}

func (l *LinkedCellsReferences) RebuildNeighborLists() {}

func (l *LinkedCellsReferences) SupportedTraversals() []string { return []string{"c08"} }

func (l *LinkedCellsReferences) NumParticles(mask particle.Mask) int {
	n := 0
	for _, p := range l.arena {
		if mask.Matches(p.Ownership) {
			n++
		}
	}
	return n
}

func (l *LinkedCellsReferences) ForEach(mask particle.Mask, region *particle.Box, visit func(*particle.Particle) bool) {
	for i := range l.arena {
		if !mask.Matches(l.arena[i].Ownership) {
			continue
		}
		if region != nil && !region.Contains(l.arena[i].Position) {
			continue
		}
		if !visit(&l.arena[i]) {
			return
		}
	}
}

func (l *LinkedCellsReferences) Iterate(fn functor.PairFunctor, traversalName string, layout traversal.DataLayout, newton3 bool, numWorkers int) error {
	if traversalName != "c08" {
		return &ErrUnsupportedTraversal{Container: "linked-cells-references", Name: traversalName}
	}

	scheme := cellblock.C08Scheme()
	buckets := l.Grid.OwnedIndicesByColor(scheme)
	for _, colour := range buckets {
		for _, idx := range colour {
			base := l.Grid.Index3DToFlat(idx)
			l.refs[base].ForEach(l.arena, particle.MaskOwnedOrHalo, func(pi *particle.Particle) bool {
				l.refs[base].ForEach(l.arena, particle.MaskOwnedOrHalo, func(pj *particle.Particle) bool {
					if pi.ID < pj.ID {
						fn.AoSPair(pi, pj, true)
					}
					return true
				})
				return true
			})
			for _, off := range c08Footprint {
				nbIdx := [3]int{idx[0] + off[0], idx[1] + off[1], idx[2] + off[2]}
				if !l.Grid.InBounds(nbIdx) {
					continue
				}
				nb := l.Grid.Index3DToFlat(nbIdx)
				l.refs[base].ForEach(l.arena, particle.MaskOwnedOrHalo, func(pi *particle.Particle) bool {
					l.refs[nb].ForEach(l.arena, particle.MaskOwnedOrHalo, func(pj *particle.Particle) bool {
						fn.AoSPair(pi, pj, newton3)
						if !newton3 {
							fn.AoSPair(pj, pi, false)
						}
						return true
					})
					return true
				})
			}
		}
	}
	return nil
}

// c08Footprint is the same 13-offset forward half-stencil traversal.C08
// walks, used here since this container drives the colour loop itself
// instead of delegating to traversal.Traversal.
var c08Footprint = cellblock.HalfStencil13()
