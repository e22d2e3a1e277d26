package container

import (
	"github.com/cellgrid/autotune/internal/cellblock"
	"github.com/cellgrid/autotune/internal/functor"
	"github.com/cellgrid/autotune/internal/particle"
	"github.com/cellgrid/autotune/internal/traversal"
)

// LinkedCells routes particles into a 3-D cell block by coordinate. On
// UpdateContainer it sweeps every cell and relocates or ejects particles
// that no longer belong. Holds no neighbour lists; every traversal re-walks
// the 26-neighbourhood stencil each call.
type LinkedCells struct {
	Grid   *cellblock.Grid
	Skin   float64
	Policy BoundsPolicy
	cells  []*particle.FullCell
}

// NewLinkedCells builds a cell block spanning box with the given
// cellSizeFactor (cell side = interactionLength * cellSizeFactor).
func NewLinkedCells(box particle.Box, cutoff, skin, cellSizeFactor float64, policy BoundsPolicy) *LinkedCells {
	grid := cellblock.New(box, cutoff+skin, cellSizeFactor)
	cells := make([]*particle.FullCell, grid.NumCells())
	for i := range cells {
		cells[i] = particle.NewFullCell()
	}
	return &LinkedCells{Grid: grid, Skin: skin, Policy: policy, cells: cells}
}

func (l *LinkedCells) InteractionLength() float64 {
	return l.Grid.InteractionLength
}

func (l *LinkedCells) IsInsideLocalDomain(pos particle.Vec3) bool {
	return l.Grid.Box.Contains(pos)
}

func (l *LinkedCells) cellFor(pos particle.Vec3) *particle.FullCell {
	return l.cells[l.Grid.CoordToFlat(pos)]
}

func (l *LinkedCells) Add(p particle.Particle) error {
	if err := particle.CheckBounds(p, l.Grid.Box, l.InteractionLength(), l.Policy); err != nil {
		return err
	}
	p.Ownership = particle.Owned
	l.cellFor(p.Position).Add(p)
	return nil
}

func (l *LinkedCells) AddHalo(p particle.Particle) error {
	if err := particle.CheckBounds(p, l.Grid.Box, l.InteractionLength(), l.Policy); err != nil {
		return err
	}
	p.Ownership = particle.Halo
	l.cellFor(p.Position).Add(p)
	return nil
}

func (l *LinkedCells) UpdateHalo(p particle.Particle) bool {
	found := false
	l.ForEach(particle.MaskHalo, nil, func(hp *particle.Particle) bool {
		if hp.ID == p.ID {
			hp.Position = p.Position
			hp.Velocity = p.Velocity
			hp.Force = p.Force
			found = true
			return false
		}
		return true
	})
	return found
}

func (l *LinkedCells) DeleteHalo() {
	for _, cell := range l.cells {
		ps := cell.Particles()
		for i := 0; i < len(ps); {
			if ps[i].Ownership == particle.Halo {
				cell.SwapRemove(i)
				ps = cell.Particles()
				continue
			}
			i++
		}
	}
}

// UpdateContainer sweeps every cell and relocates particles that moved to a
// different cell (or ejects them if they left the box), returning the
// box-leavers. keepLists is accepted for interface symmetry; linked cells
// holds no lists.
func (l *LinkedCells) UpdateContainer(keepLists bool) []particle.Particle {
	var leavers []particle.Particle
	for flat, cell := range l.cells {
		ps := cell.Particles()
		for i := 0; i < len(ps); {
			p := ps[i]
			if p.Ownership != particle.Owned {
				i++
				continue
			}
			if !l.Grid.Box.Contains(p.Position) {
				leavers = append(leavers, p)
				cell.SwapRemove(i)
				ps = cell.Particles()
				continue
			}
			correct := l.Grid.CoordToFlat(p.Position)
			if correct != flat {
				cell.SwapRemove(i)
				ps = cell.Particles()
				l.cells[correct].Add(p)
				continue
			}
			i++
		}
	}
	l.DeleteHalo()
	return leavers
}

func (l *LinkedCells) DeleteAll() {
	for i := range l.cells {
		l.cells[i] = particle.NewFullCell()
	}
}

func (l *LinkedCells) RebuildNeighborLists() {}

func (l *LinkedCells) SupportedTraversals() []string {
	return []string{"c01", "c08", "c18", "sliced-lock", "sliced-2colour", "balanced-sliced"}
}

func (l *LinkedCells) NumParticles(mask particle.Mask) int {
	n := 0
	l.ForEach(mask, nil, func(p *particle.Particle) bool { n++; return true })
	return n
}

func (l *LinkedCells) ForEach(mask particle.Mask, region *particle.Box, visit func(*particle.Particle) bool) {
	for _, cell := range l.cells {
		ps := cell.Particles()
		for i := range ps {
			if !mask.Matches(ps[i].Ownership) {
				continue
			}
			if region != nil && !region.Contains(ps[i].Position) {
				continue
			}
			if !visit(&ps[i]) {
				return
			}
		}
	}
}

func (l *LinkedCells) Iterate(fn functor.PairFunctor, traversalName string, layout traversal.DataLayout, newton3 bool, numWorkers int) error {
	ctor, ok := traversal.Registry[traversalName]
	if !ok {
		return &ErrUnsupportedTraversal{Container: "linked-cells", Name: traversalName}
	}
	trav := ctor()
	trav.Execute(l.Grid, l.cells, fn, layout, newton3, numWorkers)
	return nil
}

// Cells exposes the backing cell slice, used by verlet-family containers
// that embed a LinkedCells for bucketing.
func (l *LinkedCells) Cells() []*particle.FullCell { return l.cells }
