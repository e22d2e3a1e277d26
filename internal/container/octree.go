package container

import (
	"github.com/cellgrid/autotune/internal/functor"
	"github.com/cellgrid/autotune/internal/particle"
	"github.com/cellgrid/autotune/internal/traversal"
)

// octNode is either an inner node (8 children, arena indices, -1 = unused)
// or a leaf (a particle bucket with a cached neighbour list). Nodes live in
// a single arena slice per tree; children and neighbours are indices into
// that arena rather than pointers, since a leaf's neighbour set would
// otherwise form reference cycles with its neighbours' own neighbour
// lists.
type octNode struct {
	box       particle.Box
	isLeaf    bool
	particles []particle.Particle
	children  [8]int
	neighbors []int
}

// octreeArena owns one rooted octree.
type octreeArena struct {
	nodes             []*octNode
	threshold         int
	interactionLength float64
	cellSizeFactor    float64
}

func newOctreeArena(box particle.Box, threshold int, interactionLength, cellSizeFactor float64) *octreeArena {
	root := &octNode{box: box, isLeaf: true}
	return &octreeArena{
		nodes:             []*octNode{root},
		threshold:         threshold,
		interactionLength: interactionLength,
		cellSizeFactor:    cellSizeFactor,
	}
}

func (a *octreeArena) root() *octNode { return a.nodes[0] }

// octantOf returns which of the 8 octants of box contains pos.
func octantOf(box particle.Box, pos particle.Vec3) int {
	mid := particle.Vec3{
		(box.Min[0] + box.Max[0]) / 2,
		(box.Min[1] + box.Max[1]) / 2,
		(box.Min[2] + box.Max[2]) / 2,
	}
	o := 0
	if pos[0] >= mid[0] {
		o |= 1
	}
	if pos[1] >= mid[1] {
		o |= 2
	}
	if pos[2] >= mid[2] {
		o |= 4
	}
	return o
}

func childBox(box particle.Box, octant int) particle.Box {
	mid := particle.Vec3{
		(box.Min[0] + box.Max[0]) / 2,
		(box.Min[1] + box.Max[1]) / 2,
		(box.Min[2] + box.Max[2]) / 2,
	}
	var min, max particle.Vec3
	for axis := 0; axis < 3; axis++ {
		bit := 1 << axis
		if octant&bit != 0 {
			min[axis], max[axis] = mid[axis], box.Max[axis]
		} else {
			min[axis], max[axis] = box.Min[axis], mid[axis]
		}
	}
	return particle.Box{Min: min, Max: max}
}

func boxSmallestSide(b particle.Box) float64 {
	best := b.Max[0] - b.Min[0]
	for axis := 1; axis < 3; axis++ {
		if s := b.Max[axis] - b.Min[axis]; s < best {
			best = s
		}
	}
	return best
}

// insert descends to the leaf containing pos, appends p, and splits the
// leaf if it now exceeds the threshold and the would-be child's smallest
// side would still be >= cellSizeFactor * interactionLength. Never caches
// neighbour-leaf relationships across a split — recomputeNeighbors is
// always called wholesale afterward instead of patched incrementally.
func (a *octreeArena) insert(p particle.Particle) {
	nodeIdx := a.descend(0, p.Position)
	node := a.nodes[nodeIdx]
	node.particles = append(node.particles, p)
	if len(node.particles) > a.threshold {
		a.maybeSplit(nodeIdx)
	}
}

func (a *octreeArena) descend(nodeIdx int, pos particle.Vec3) int {
	node := a.nodes[nodeIdx]
	if node.isLeaf {
		return nodeIdx
	}
	octant := octantOf(node.box, pos)
	return a.descend(node.children[octant], pos)
}

func (a *octreeArena) maybeSplit(nodeIdx int) {
	node := a.nodes[nodeIdx]
	minRequired := a.cellSizeFactor * a.interactionLength
	if boxSmallestSide(childBox(node.box, 0)) < minRequired {
		return
	}

	particles := node.particles
	node.isLeaf = false
	node.particles = nil
	for octant := 0; octant < 8; octant++ {
		child := &octNode{box: childBox(node.box, octant), isLeaf: true}
		a.nodes = append(a.nodes, child)
		node.children[octant] = len(a.nodes) - 1
	}
	for _, p := range particles {
		octant := octantOf(node.box, p.Position)
		childIdx := node.children[octant]
		a.nodes[childIdx].particles = append(a.nodes[childIdx].particles, p)
	}
	for octant := 0; octant < 8; octant++ {
		childIdx := node.children[octant]
		if len(a.nodes[childIdx].particles) > a.threshold {
			a.maybeSplit(childIdx)
		}
	}
}

// leaves returns the arena indices of every leaf node.
func (a *octreeArena) leaves() []int {
	var out []int
	var walk func(int)
	walk = func(idx int) {
		n := a.nodes[idx]
		if n.isLeaf {
			out = append(out, idx)
			return
		}
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(0)
	return out
}

// leavesInRange returns every leaf whose box lies within dist of box, used
// to compute each leaf's cached neighbour set without needing the classical
// GTEQ_FACE/EDGE/VERTEX symbolic codes: a bounding-box expansion query is
// equivalent for the purpose of finding candidate neighbour leaves.
func (a *octreeArena) leavesInRange(box particle.Box, dist float64) []int {
	expanded := particle.Box{
		Min: particle.Vec3{box.Min[0] - dist, box.Min[1] - dist, box.Min[2] - dist},
		Max: particle.Vec3{box.Max[0] + dist, box.Max[1] + dist, box.Max[2] + dist},
	}
	var out []int
	var walk func(int)
	walk = func(idx int) {
		n := a.nodes[idx]
		if !boxesOverlap(n.box, expanded) {
			return
		}
		if n.isLeaf {
			out = append(out, idx)
			return
		}
		for _, c := range n.children {
			walk(c)
		}
	}
	walk(0)
	return out
}

func boxesOverlap(a, b particle.Box) bool {
	for axis := 0; axis < 3; axis++ {
		if a.Max[axis] < b.Min[axis] || a.Min[axis] > b.Max[axis] {
			return false
		}
	}
	return true
}

// recomputeNeighbors rebuilds every leaf's cached neighbour set from
// scratch, always run wholesale after any structural change rather than
// patched incrementally across a split.
func (a *octreeArena) recomputeNeighbors() {
	leaves := a.leaves()
	for _, idx := range leaves {
		leaf := a.nodes[idx]
		candidates := a.leavesInRange(leaf.box, a.interactionLength)
		neighbors := make([]int, 0, len(candidates))
		for _, c := range candidates {
			if c != idx {
				neighbors = append(neighbors, c)
			}
		}
		leaf.neighbors = neighbors
	}
}

func (a *octreeArena) flatten() []particle.Particle {
	var out []particle.Particle
	for _, idx := range a.leaves() {
		out = append(out, a.nodes[idx].particles...)
	}
	return out
}

func (a *octreeArena) reset(box particle.Box) {
	a.nodes = []*octNode{{box: box, isLeaf: true}}
}

// Octree implements the two-rooted-tree spatial index: one tree over the
// owned box, one over the halo-extended box. Add descends to the leaf
// containing the position; updateContainer(keepLists=false) flattens and
// reinserts everything.
type Octree struct {
	Box            particle.Box
	Cutoff         float64
	Skin           float64
	CellSizeFactor float64
	Threshold      int
	Policy         BoundsPolicy

	owned *octreeArena
	halo  *octreeArena
}

func NewOctree(box particle.Box, cutoff, skin, cellSizeFactor float64, policy BoundsPolicy) *Octree {
	l := cutoff + skin
	haloBox := particle.Box{
		Min: particle.Vec3{box.Min[0] - l, box.Min[1] - l, box.Min[2] - l},
		Max: particle.Vec3{box.Max[0] + l, box.Max[1] + l, box.Max[2] + l},
	}
	threshold := 16
	o := &Octree{
		Box: box, Cutoff: cutoff, Skin: skin, CellSizeFactor: cellSizeFactor,
		Threshold: threshold, Policy: policy,
		owned: newOctreeArena(box, threshold, l, cellSizeFactor),
		halo:  newOctreeArena(haloBox, threshold, l, cellSizeFactor),
	}
	return o
}

func (o *Octree) InteractionLength() float64 { return o.Cutoff + o.Skin }

func (o *Octree) IsInsideLocalDomain(pos particle.Vec3) bool { return o.Box.Contains(pos) }

func (o *Octree) Add(p particle.Particle) error {
	if err := particle.CheckBounds(p, o.Box, o.InteractionLength(), o.Policy); err != nil {
		return err
	}
	p.Ownership = particle.Owned
	o.owned.insert(p)
	o.owned.recomputeNeighbors()
	return nil
}

func (o *Octree) AddHalo(p particle.Particle) error {
	if err := particle.CheckBounds(p, o.Box, o.InteractionLength(), o.Policy); err != nil {
		return err
	}
	p.Ownership = particle.Halo
	o.halo.insert(p)
	o.halo.recomputeNeighbors()
	return nil
}

func (o *Octree) UpdateHalo(p particle.Particle) bool {
	found := false
	o.forEachIn(o.halo, particle.MaskHalo, func(hp *particle.Particle) bool {
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

func (o *Octree) DeleteHalo() {
	o.halo.reset(o.halo.root().box)
}

// UpdateContainer flattens both trees and reinserts, ejecting particles
// that left the owned box. keepLists is accepted for interface symmetry;
// this is always a full flatten/reinsert regardless of its value — the
// true case is not meaningfully cheaper here since the octree carries no
// separate neighbour-list structure to preserve.
func (o *Octree) UpdateContainer(keepLists bool) []particle.Particle {
	owned := o.owned.flatten()
	var leavers, kept []particle.Particle
	for _, p := range owned {
		if o.Box.Contains(p.Position) {
			kept = append(kept, p)
		} else {
			leavers = append(leavers, p)
		}
	}
	o.owned.reset(o.Box)
	for _, p := range kept {
		o.owned.insert(p)
	}
	o.owned.recomputeNeighbors()
	o.DeleteHalo()
	return leavers
}

func (o *Octree) DeleteAll() {
	o.owned.reset(o.Box)
	o.halo.reset(o.halo.root().box)
}

func (o *Octree) RebuildNeighborLists() {
	o.owned.recomputeNeighbors()
	o.halo.recomputeNeighbors()
}

func (o *Octree) SupportedTraversals() []string { return []string{traversal.OctreeC18Name} }

func (o *Octree) forEachIn(a *octreeArena, mask particle.Mask, visit func(*particle.Particle) bool) {
	for _, idx := range a.leaves() {
		leaf := a.nodes[idx]
		for i := range leaf.particles {
			if mask.Matches(leaf.particles[i].Ownership) {
				if !visit(&leaf.particles[i]) {
					return
				}
			}
		}
	}
}

func (o *Octree) NumParticles(mask particle.Mask) int {
	n := 0
	o.ForEach(mask, nil, func(p *particle.Particle) bool { n++; return true })
	return n
}

func (o *Octree) ForEach(mask particle.Mask, region *particle.Box, visit func(*particle.Particle) bool) {
	stopped := false
	visitWrap := func(p *particle.Particle) bool {
		if region != nil && !region.Contains(p.Position) {
			return true
		}
		if !visit(p) {
			stopped = true
			return false
		}
		return true
	}
	o.forEachIn(o.owned, mask, visitWrap)
	if stopped {
		return
	}
	o.forEachIn(o.halo, mask, visitWrap)
}

// Iterate implements the naive octree-c18 traversal: enumerate leaves, for
// each leaf process the pairs inside it, then the pairs with each cached
// neighbour leaf, using the "my.id < neighbour.id" tie-break so each
// ordered pair is visited exactly once under Newton-3.
func (o *Octree) Iterate(fn functor.PairFunctor, traversalName string, layout traversal.DataLayout, newton3 bool, numWorkers int) error {
	if traversalName != traversal.OctreeC18Name {
		return &ErrUnsupportedTraversal{Container: "octree", Name: traversalName}
	}
	if !newton3 {
		return &ErrUnsupportedTraversal{Container: "octree", Name: traversalName + "(newton3=off)"}
	}

	for _, idx := range o.owned.leaves() {
		leaf := o.owned.nodes[idx]
		leafSelfPairs(leaf, fn)
		for _, nbIdx := range leaf.neighbors {
			if newton3 && nbIdx <= idx {
				continue
			}
			nb := o.owned.nodes[nbIdx]
			leafPairPairs(leaf, nb, fn, newton3)
		}
		for _, nbIdx := range o.haloLeavesNear(leaf) {
			nb := o.halo.nodes[nbIdx]
			leafPairPairs(leaf, nb, fn, newton3)
		}
	}
	return nil
}

// haloLeavesNear finds halo-tree leaves within interaction length of an
// owned leaf's box, since owned and halo particles live in separate trees.
func (o *Octree) haloLeavesNear(leaf *octNode) []int {
	return o.halo.leavesInRange(leaf.box, o.InteractionLength())
}

func leafSelfPairs(leaf *octNode, fn functor.PairFunctor) {
	ps := leaf.particles
	for i := range ps {
		if ps[i].Ownership == particle.Dummy {
			continue
		}
		for j := i + 1; j < len(ps); j++ {
			if ps[j].Ownership == particle.Dummy {
				continue
			}
			fn.AoSPair(&ps[i], &ps[j], true)
		}
	}
}

func leafPairPairs(a, b *octNode, fn functor.PairFunctor, newton3 bool) {
	for i := range a.particles {
		if a.particles[i].Ownership == particle.Dummy {
			continue
		}
		for j := range b.particles {
			if b.particles[j].Ownership == particle.Dummy {
				continue
			}
			fn.AoSPair(&a.particles[i], &b.particles[j], newton3)
		}
	}
}
