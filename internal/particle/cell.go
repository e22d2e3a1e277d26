package particle

import "sort"

// Box is an axis-aligned region [Min, Max).
type Box struct {
	Min, Max Vec3
}

func (b Box) Contains(p Vec3) bool {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] || p[i] >= b.Max[i] {
			return false
		}
	}
	return true
}

// ContainsHaloShell reports whether p lies in the halo shell of width l
// around b, excluding b itself — invariant O2.
func (b Box) ContainsHaloShell(p Vec3, l float64) bool {
	outer := Box{
		Min: Vec3{b.Min[0] - l, b.Min[1] - l, b.Min[2] - l},
		Max: Vec3{b.Max[0] + l, b.Max[1] + l, b.Max[2] + l},
	}
	return outer.Contains(p) && !b.Contains(p)
}

// BoundsPolicy governs whether Add rejects an out-of-region particle
// (StrictBounds) or accepts it regardless (LenientBounds).
type BoundsPolicy int

const (
	StrictBounds BoundsPolicy = iota
	LenientBounds
)

// CheckBounds validates p's position against its ownership tag: O1 for
// owned, O2 for halo. Dummy particles are never checked. Returns nil under
// LenientBounds regardless of the outcome.
func CheckBounds(p Particle, box Box, interactionLength float64, policy BoundsPolicy) error {
	var ok bool
	switch p.Ownership {
	case Owned:
		ok = box.Contains(p.Position)
	case Halo:
		ok = box.ContainsHaloShell(p.Position, interactionLength)
	case Dummy:
		ok = true
	}
	if ok || policy == LenientBounds {
		return nil
	}
	return newErr("CheckBounds", InvalidArgument,
		fmtErr("particle %d (%s) at %v violates its ownership region", p.ID, p.Ownership, p.Position))
}

// SoA is a struct-of-arrays mirror of a FullCell's particles. Columns are
// allocated together and indexed in lockstep.
type SoA struct {
	PosX, PosY, PosZ []float64
	VelX, VelY, VelZ []float64
	FX, FY, FZ       []float64
	ID, TypeID       []uint64
	Ownership        []OwnershipState
}

func newSoA(n int) *SoA {
	return &SoA{
		PosX: make([]float64, n), PosY: make([]float64, n), PosZ: make([]float64, n),
		VelX: make([]float64, n), VelY: make([]float64, n), VelZ: make([]float64, n),
		FX: make([]float64, n), FY: make([]float64, n), FZ: make([]float64, n),
		ID: make([]uint64, n), TypeID: make([]uint64, n),
		Ownership: make([]OwnershipState, n),
	}
}

func (s *SoA) Len() int { return len(s.PosX) }

// FullCell is the authoritative AoS storage for a spatial bucket, with an
// on-demand SoA mirror. No traversal may hold a pointer into the SoA mirror
// across the end of its parallel region.
type FullCell struct {
	particles []Particle
	soa       *SoA
	soaDirty  bool
}

func NewFullCell() *FullCell {
	return &FullCell{soaDirty: true}
}

func (c *FullCell) Len() int { return len(c.particles) }

func (c *FullCell) At(i int) *Particle { return &c.particles[i] }

func (c *FullCell) Particles() []Particle { return c.particles }

// Add appends p to the cell's AoS storage.
func (c *FullCell) Add(p Particle) {
	c.particles = append(c.particles, p)
	c.soaDirty = true
}

// SwapRemove removes index i in O(1) by swapping with the last element.
// Invalidates any iterator holding an index >= i.
func (c *FullCell) SwapRemove(i int) {
	last := len(c.particles) - 1
	c.particles[i] = c.particles[last]
	c.particles = c.particles[:last]
	c.soaDirty = true
}

// SortByAxis stable-sorts particles along axis (0=x,1=y,2=z).
func (c *FullCell) SortByAxis(axis int) {
	sort.SliceStable(c.particles, func(i, j int) bool {
		return c.particles[i].Position[axis] < c.particles[j].Position[axis]
	})
	c.soaDirty = true
}

// DeleteDummies stream-compacts out every Dummy-tagged particle.
func (c *FullCell) DeleteDummies() {
	out := c.particles[:0]
	for _, p := range c.particles {
		if p.Ownership != Dummy {
			out = append(out, p)
		}
	}
	c.particles = out
	c.soaDirty = true
}

// ForEach visits particles whose ownership matches mask, in storage order.
// fn returning false stops iteration early.
func (c *FullCell) ForEach(mask Mask, fn func(*Particle) bool) {
	for i := range c.particles {
		if mask.Matches(c.particles[i].Ownership) {
			if !fn(&c.particles[i]) {
				return
			}
		}
	}
}

// InvalidateSoA forces the next SyncToSoA to re-copy every column.
func (c *FullCell) InvalidateSoA() { c.soaDirty = true }

// SyncToSoA materialises (or refreshes) the SoA mirror from the AoS storage
// and returns it. The mirror is only safe to use until the next AoS mutation
// or the next call to SyncFromSoA.
func (c *FullCell) SyncToSoA() *SoA {
	n := len(c.particles)
	if c.soa == nil || c.soa.Len() != n {
		c.soa = newSoA(n)
	}
	s := c.soa
	for i, p := range c.particles {
		s.PosX[i], s.PosY[i], s.PosZ[i] = p.Position[0], p.Position[1], p.Position[2]
		s.VelX[i], s.VelY[i], s.VelZ[i] = p.Velocity[0], p.Velocity[1], p.Velocity[2]
		s.FX[i], s.FY[i], s.FZ[i] = p.Force[0], p.Force[1], p.Force[2]
		s.ID[i], s.TypeID[i] = p.ID, p.TypeID
		s.Ownership[i] = p.Ownership
	}
	c.soaDirty = false
	return s
}

// SyncFromSoA writes the SoA mirror's force columns back into the AoS
// storage. Position, velocity, ID and ownership are never written back from
// a traversal — only force accumulation flows that direction.
func (c *FullCell) SyncFromSoA() {
	if c.soa == nil {
		return
	}
	s := c.soa
	for i := range c.particles {
		c.particles[i].Force = Vec3{s.FX[i], s.FY[i], s.FZ[i]}
	}
}

// ReferenceCell holds stable indices into an externally-owned particle
// arena — the arena+index pattern used by the reference-based linked-cells
// variant, avoiding back-reference cycles (spec design note §9).
type ReferenceCell struct {
	indices []int
}

func NewReferenceCell() *ReferenceCell { return &ReferenceCell{} }

func (c *ReferenceCell) Len() int { return len(c.indices) }

func (c *ReferenceCell) Add(arenaIndex int) { c.indices = append(c.indices, arenaIndex) }

func (c *ReferenceCell) Indices() []int { return c.indices }

func (c *ReferenceCell) Reset() { c.indices = c.indices[:0] }

func (c *ReferenceCell) ForEach(arena []Particle, mask Mask, fn func(*Particle) bool) {
	for _, idx := range c.indices {
		if mask.Matches(arena[idx].Ownership) {
			if !fn(&arena[idx]) {
				return
			}
		}
	}
}
