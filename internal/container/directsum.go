package container

import (
	"github.com/cellgrid/autotune/internal/functor"
	"github.com/cellgrid/autotune/internal/particle"
	"github.com/cellgrid/autotune/internal/traversal"
)

// DirectSum is the correctness baseline: one cell for owned particles, one
// for halo. Every (owned, owned) pair with i<j and every (owned, halo) pair
// is offered to the functor. Intended for very small systems.
type DirectSum struct {
	Box    particle.Box
	Cutoff float64
	Skin   float64
	Policy BoundsPolicy
	owned  *particle.FullCell
	halo   *particle.FullCell
}

// NewDirectSum returns an empty direct-sum container over box.
func NewDirectSum(box particle.Box, cutoff, skin float64, policy BoundsPolicy) *DirectSum {
	return &DirectSum{
		Box:    box,
		Cutoff: cutoff,
		Skin:   skin,
		Policy: policy,
		owned:  particle.NewFullCell(),
		halo:   particle.NewFullCell(),
	}
}

func (d *DirectSum) InteractionLength() float64 { return d.Cutoff + d.Skin }

func (d *DirectSum) IsInsideLocalDomain(pos particle.Vec3) bool { return d.Box.Contains(pos) }

func (d *DirectSum) Add(p particle.Particle) error {
	if err := particle.CheckBounds(p, d.Box, d.InteractionLength(), d.Policy); err != nil {
		return err
	}
	p.Ownership = particle.Owned
	d.owned.Add(p)
	return nil
}

func (d *DirectSum) AddHalo(p particle.Particle) error {
	if err := particle.CheckBounds(p, d.Box, d.InteractionLength(), d.Policy); err != nil {
		return err
	}
	p.Ownership = particle.Halo
	d.halo.Add(p)
	return nil
}

func (d *DirectSum) UpdateHalo(p particle.Particle) bool {
	for i := 0; i < d.halo.Len(); i++ {
		hp := d.halo.At(i)
		if hp.ID == p.ID {
			hp.Position = p.Position
			hp.Velocity = p.Velocity
			hp.Force = p.Force
			return true
		}
	}
	return false
}

func (d *DirectSum) DeleteHalo() {
	d.halo = particle.NewFullCell()
}

func (d *DirectSum) UpdateContainer(keepLists bool) []particle.Particle {
	var leavers []particle.Particle
	ps := d.owned.Particles()
	for i := 0; i < len(ps); {
		if d.Box.Contains(ps[i].Position) {
			i++
			continue
		}
		leavers = append(leavers, ps[i])
		d.owned.SwapRemove(i)
		ps = d.owned.Particles()
	}
	d.DeleteHalo()
	return leavers
}

func (d *DirectSum) DeleteAll() {
	d.owned = particle.NewFullCell()
	d.halo = particle.NewFullCell()
}

func (d *DirectSum) SupportedTraversals() []string { return []string{"direct-sum-naive"} }

func (d *DirectSum) RebuildNeighborLists() {}

func (d *DirectSum) NumParticles(mask particle.Mask) int {
	n := 0
	d.ForEach(mask, nil, func(p *particle.Particle) bool { n++; return true })
	return n
}

func (d *DirectSum) ForEach(mask particle.Mask, region *particle.Box, visit func(*particle.Particle) bool) {
	for _, cell := range [2]*particle.FullCell{d.owned, d.halo} {
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

func (d *DirectSum) Iterate(fn functor.PairFunctor, traversalName string, layout traversal.DataLayout, newton3 bool, numWorkers int) error {
	if traversalName != "direct-sum-naive" {
		return &ErrUnsupportedTraversal{Container: "direct-sum", Name: traversalName}
	}

	owned := d.owned.Particles()
	for i := range owned {
		if owned[i].Ownership == particle.Dummy {
			continue
		}
		for j := i + 1; j < len(owned); j++ {
			if owned[j].Ownership == particle.Dummy {
				continue
			}
			fn.AoSPair(&owned[i], &owned[j], newton3)
			if !newton3 {
				fn.AoSPair(&owned[j], &owned[i], newton3)
			}
		}
	}

	halo := d.halo.Particles()
	for i := range owned {
		if owned[i].Ownership == particle.Dummy {
			continue
		}
		for j := range halo {
			if halo[j].Ownership == particle.Dummy {
				continue
			}
			fn.AoSPair(&owned[i], &halo[j], newton3)
		}
	}
	return nil
}
