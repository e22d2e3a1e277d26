package container

import (
	"math"
	"sort"
	"sync"

	"github.com/cellgrid/autotune/internal/functor"
	"github.com/cellgrid/autotune/internal/particle"
	"github.com/cellgrid/autotune/internal/traversal"
)

// VerletClusterLists is a two-dimensional tower grid: owned
// and halo particles are bucketed into towers by (x,y), each tower sorted
// by z and chopped into fixed-size clusters, the last cluster in each tower
// padded with dummies generated from its last real particle. Pair
// evaluation unrolls over cluster x cluster inner loops between towers
// whose xy bounding boxes lie within cutoff+skin.
//
// Per DESIGN.md's Open Question decision: particlesToAdd drains only at
// rebuild. Between rebuilds, ForEach still surfaces pending adds so a
// stale-but-not-yet-rebuilt iteration observes every particle that was
// added since the last rebuild, even though none of them have a tower yet.
type VerletClusterLists struct {
	Box            particle.Box
	Cutoff         float64
	Skin           float64
	CellSizeFactor float64
	Policy         BoundsPolicy

	towerSide [2]float64
	dims      [2]int
	haloMin   [2]float64

	towers         [][]particle.Cluster
	particlesToAdd []particle.Particle

	stepCount    int
	RebuildEvery int
	built        bool
}

func NewVerletClusterLists(box particle.Box, cutoff, skin, cellSizeFactor float64, rebuildEvery int, policy BoundsPolicy) *VerletClusterLists {
	v := &VerletClusterLists{
		Box:            box,
		Cutoff:         cutoff,
		Skin:           skin,
		CellSizeFactor: cellSizeFactor,
		Policy:         policy,
		RebuildEvery:   rebuildEvery,
	}
	base := v.InteractionLength() * cellSizeFactor
	for axis := 0; axis < 2; axis++ {
		span := box.Max[axis] - box.Min[axis]
		n := int(math.Floor(span / base))
		if n < 1 {
			n = 1
		}
		v.towerSide[axis] = span / float64(n)
		v.dims[axis] = n + 2
		v.haloMin[axis] = box.Min[axis] - v.towerSide[axis]
	}
	v.towers = make([][]particle.Cluster, v.dims[0]*v.dims[1])
	return v
}

func (v *VerletClusterLists) InteractionLength() float64 { return v.Cutoff + v.Skin }

func (v *VerletClusterLists) IsInsideLocalDomain(pos particle.Vec3) bool { return v.Box.Contains(pos) }

func (v *VerletClusterLists) towerIndexFor(pos particle.Vec3) [2]int {
	var idx [2]int
	for axis := 0; axis < 2; axis++ {
		i := int(math.Floor((pos[axis] - v.haloMin[axis]) / v.towerSide[axis]))
		if i < 0 {
			i = 0
		}
		if i >= v.dims[axis] {
			i = v.dims[axis] - 1
		}
		idx[axis] = i
	}
	return idx
}

func (v *VerletClusterLists) towerFlat(idx [2]int) int { return idx[0] + idx[1]*v.dims[0] }

func (v *VerletClusterLists) isOwnedTower(idx [2]int) bool {
	return idx[0] != 0 && idx[0] != v.dims[0]-1 && idx[1] != 0 && idx[1] != v.dims[1]-1
}

func (v *VerletClusterLists) Add(p particle.Particle) error {
	if err := particle.CheckBounds(p, v.Box, v.InteractionLength(), v.Policy); err != nil {
		return err
	}
	p.Ownership = particle.Owned
	v.particlesToAdd = append(v.particlesToAdd, p)
	return nil
}

func (v *VerletClusterLists) AddHalo(p particle.Particle) error {
	if err := particle.CheckBounds(p, v.Box, v.InteractionLength(), v.Policy); err != nil {
		return err
	}
	p.Ownership = particle.Halo
	v.particlesToAdd = append(v.particlesToAdd, p)
	return nil
}

func (v *VerletClusterLists) UpdateHalo(p particle.Particle) bool {
	found := false
	v.forEachLive(particle.MaskHalo, func(pp *particle.Particle) bool {
		if pp.ID == p.ID {
			pp.Position = p.Position
			pp.Velocity = p.Velocity
			pp.Force = p.Force
			found = true
			return false
		}
		return true
	})
	return found
}

func (v *VerletClusterLists) DeleteHalo() {
	kept := v.particlesToAdd[:0]
	for _, p := range v.particlesToAdd {
		if p.Ownership != particle.Halo {
			kept = append(kept, p)
		}
	}
	v.particlesToAdd = kept
	for t := range v.towers {
		for c := range v.towers[t] {
			for i := range v.towers[t][c].Particles {
				if v.towers[t][c].Particles[i].Ownership == particle.Halo {
					v.towers[t][c].Particles[i].Ownership = particle.Dummy
				}
			}
		}
	}
}

func (v *VerletClusterLists) UpdateContainer(keepLists bool) []particle.Particle {
	var leavers []particle.Particle
	var kept []particle.Particle
	v.forEachLive(particle.MaskOwned, func(p *particle.Particle) bool {
		if !v.Box.Contains(p.Position) {
			leavers = append(leavers, *p)
		} else {
			kept = append(kept, *p)
		}
		return true
	})
	for _, p := range v.particlesToAdd {
		if p.Ownership == particle.Owned && !v.Box.Contains(p.Position) {
			leavers = append(leavers, p)
			continue
		}
		if p.Ownership == particle.Owned {
			kept = append(kept, p)
		}
	}
	v.particlesToAdd = kept
	for t := range v.towers {
		v.towers[t] = nil
	}
	v.built = false
	return leavers
}

func (v *VerletClusterLists) DeleteAll() {
	v.particlesToAdd = nil
	for t := range v.towers {
		v.towers[t] = nil
	}
	v.built = false
}

func (v *VerletClusterLists) SupportedTraversals() []string {
	return []string{traversal.ClusterColourName, traversal.ClusterSlicedName}
}

func (v *VerletClusterLists) NumParticles(mask particle.Mask) int {
	n := 0
	v.ForEach(mask, nil, func(p *particle.Particle) bool { n++; return true })
	return n
}

func (v *VerletClusterLists) forEachLive(mask particle.Mask, visit func(*particle.Particle) bool) {
	for t := range v.towers {
		for c := range v.towers[t] {
			for i := range v.towers[t][c].Particles {
				p := &v.towers[t][c].Particles[i]
				if mask.Matches(p.Ownership) {
					if !visit(p) {
						return
					}
				}
			}
		}
	}
}

func (v *VerletClusterLists) ForEach(mask particle.Mask, region *particle.Box, visit func(*particle.Particle) bool) {
	stop := false
	v.forEachLive(mask, func(p *particle.Particle) bool {
		if region != nil && !region.Contains(p.Position) {
			return true
		}
		if !visit(p) {
			stop = true
			return false
		}
		return true
	})
	if stop {
		return
	}
	for i := range v.particlesToAdd {
		p := &v.particlesToAdd[i]
		if !mask.Matches(p.Ownership) {
			continue
		}
		if region != nil && !region.Contains(p.Position) {
			continue
		}
		if !visit(p) {
			return
		}
	}
}

func (v *VerletClusterLists) needsRebuild() bool {
	if !v.built {
		return true
	}
	if v.RebuildEvery > 0 && v.stepCount >= v.RebuildEvery {
		return true
	}
	halfSkinSq := (v.Skin / 2) * (v.Skin / 2)
	violated := false
	v.forEachLive(particle.MaskOwnedOrHalo, func(p *particle.Particle) bool {
		if p.DisplacementSq() > halfSkinSq {
			violated = true
			return false
		}
		return true
	})
	return violated
}

// RebuildNeighborLists drains particlesToAdd, re-buckets every live
// particle into towers by xy, sorts each tower by z, and groups into
// fixed-size clusters padded with dummies.
func (v *VerletClusterLists) RebuildNeighborLists() {
	buckets := make(map[int][]particle.Particle)
	collect := func(p particle.Particle) {
		idx := v.towerIndexFor(p.Position)
		flat := v.towerFlat(idx)
		buckets[flat] = append(buckets[flat], p)
	}
	v.forEachLive(particle.MaskOwnedOrHalo, func(p *particle.Particle) bool {
		collect(*p)
		return true
	})
	for _, p := range v.particlesToAdd {
		collect(p)
	}
	v.particlesToAdd = nil

	for t := range v.towers {
		v.towers[t] = nil
	}
	for flat, ps := range buckets {
		sort.SliceStable(ps, func(i, j int) bool { return ps[i].Position[2] < ps[j].Position[2] })
		v.towers[flat] = buildClusters(ps, v.InteractionLength())
	}

	v.built = true
	v.stepCount = 0
	v.forEachLive(particle.MaskOwnedOrHaloOrDummy, func(p *particle.Particle) bool {
		if p.Ownership != particle.Dummy {
			p.MarkRebuilt()
		}
		return true
	})
}

// buildClusters groups ps (already sorted by z) into fixed-size clusters,
// padding the last one with dummies generated from the last real particle.
func buildClusters(ps []particle.Particle, interactionLength float64) []particle.Cluster {
	n := len(ps)
	numClusters := (n + particle.ClusterSize - 1) / particle.ClusterSize
	clusters := make([]particle.Cluster, numClusters)
	for c := 0; c < numClusters; c++ {
		for lane := 0; lane < particle.ClusterSize; lane++ {
			i := c*particle.ClusterSize + lane
			if i < n {
				clusters[c].Particles[lane] = ps[i]
			} else {
				last := ps[n-1]
				clusters[c].Particles[lane] = particle.DummyFrom(last, lane, interactionLength)
			}
		}
	}
	return clusters
}

// towerNeighborOffsets returns the xy ring offsets whose towers can
// possibly hold a particle within cutoff+skin of this tower, assuming
// cellSizeFactor >= 1 (tower side length >= interaction length): a single
// ring of 8 neighbours plus itself suffices, the 2-D analogue of the
// linked-cells 3x3x3 stencil.
func towerNeighborOffsets() [][2]int {
	var offs [][2]int
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			offs = append(offs, [2]int{dx, dy})
		}
	}
	return offs
}

func (v *VerletClusterLists) inBounds(idx [2]int) bool {
	return idx[0] >= 0 && idx[0] < v.dims[0] && idx[1] >= 0 && idx[1] < v.dims[1]
}

// towerPairs offers every cluster pair between tower `flat` and its
// neighbour towers (xy ring, all z) to fn, plus every cluster self/pair
// within the tower itself. Each unordered tower-pair is visited once using
// a flat-index tie-break so Newton-3 semantics hold across tower
// boundaries exactly like the linked-cells half-stencil.
func (v *VerletClusterLists) towerPairs(flat int, fn functor.PairFunctor, newton3 bool) {
	clusters := v.towers[flat]
	if clusters == nil {
		return
	}
	for i := range clusters {
		clusterSelfPairs(&clusters[i], fn)
		for j := i + 1; j < len(clusters); j++ {
			clusterPairPairs(&clusters[i], &clusters[j], fn, newton3)
		}
	}

	idx := [2]int{flat % v.dims[0], flat / v.dims[0]}
	for _, off := range towerNeighborOffsets() {
		if off[0] == 0 && off[1] == 0 {
			continue
		}
		nbIdx := [2]int{idx[0] + off[0], idx[1] + off[1]}
		if !v.inBounds(nbIdx) {
			continue
		}
		nb := v.towerFlat(nbIdx)
		if nb <= flat && v.isOwnedTower(nbIdx) {
			continue // visited from that owned tower's own pass; halo towers are never a base
		}
		nbClusters := v.towers[nb]
		for i := range clusters {
			for j := range nbClusters {
				clusterPairPairs(&clusters[i], &nbClusters[j], fn, newton3)
			}
		}
	}
}

func clusterSelfPairs(c *particle.Cluster, fn functor.PairFunctor) {
	for i := 0; i < particle.ClusterSize; i++ {
		if c.Particles[i].Ownership == particle.Dummy {
			continue
		}
		for j := i + 1; j < particle.ClusterSize; j++ {
			if c.Particles[j].Ownership == particle.Dummy {
				continue
			}
			fn.AoSPair(&c.Particles[i], &c.Particles[j], true)
		}
	}
}

func clusterPairPairs(a, b *particle.Cluster, fn functor.PairFunctor, newton3 bool) {
	for i := 0; i < particle.ClusterSize; i++ {
		if a.Particles[i].Ownership == particle.Dummy {
			continue
		}
		for j := 0; j < particle.ClusterSize; j++ {
			if b.Particles[j].Ownership == particle.Dummy {
				continue
			}
			fn.AoSPair(&a.Particles[i], &b.Particles[j], newton3)
		}
	}
}

func (v *VerletClusterLists) Iterate(fn functor.PairFunctor, traversalName string, layout traversal.DataLayout, newton3 bool, numWorkers int) error {
	switch traversalName {
	case traversal.ClusterColourName, traversal.ClusterSlicedName:
	default:
		return &ErrUnsupportedTraversal{Container: "verlet-cluster-lists", Name: traversalName}
	}
	if !newton3 {
		return &ErrUnsupportedTraversal{Container: "verlet-cluster-lists", Name: traversalName + "(newton3=off)"}
	}
	if v.needsRebuild() {
		v.RebuildNeighborLists()
	}
	v.stepCount++

	if traversalName == traversal.ClusterColourName {
		v.iterateColour(fn, newton3, numWorkers)
	} else {
		v.iterateSliced(fn, newton3, numWorkers)
	}
	return nil
}

// iterateColour partitions owned towers into a 9-colour (x%3,y%3) scheme so
// same-coloured towers' write footprints (tower plus its 8 xy neighbours)
// never overlap.
func (v *VerletClusterLists) iterateColour(fn functor.PairFunctor, newton3 bool, numWorkers int) {
	buckets := make([][]int, 9)
	for y := 1; y < v.dims[1]-1; y++ {
		for x := 1; x < v.dims[0]-1; x++ {
			colour := (x % 3) + (y%3)*3
			buckets[colour] = append(buckets[colour], v.towerFlat([2]int{x, y}))
		}
	}
	for _, colour := range buckets {
		var wg sync.WaitGroup
		sem := make(chan struct{}, max(1, numWorkers))
		for _, flat := range colour {
			wg.Add(1)
			sem <- struct{}{}
			go func(flat int) {
				defer wg.Done()
				defer func() { <-sem }()
				v.towerPairs(flat, fn, newton3)
			}(flat)
		}
		wg.Wait()
	}
}

// iterateSliced slices the longer of the two tower axes into contiguous
// bands, one per worker, each processed sequentially; a mutex on each
// boundary column mirrors the linked-cells sliced-lock traversal.
func (v *VerletClusterLists) iterateSliced(fn functor.PairFunctor, newton3 bool, numWorkers int) {
	axis := 0
	if v.dims[1] > v.dims[0] {
		axis = 1
	}
	n := v.dims[axis] - 2
	if numWorkers > n {
		numWorkers = n
	}
	if numWorkers < 1 {
		numWorkers = 1
	}
	chunk := (n + numWorkers - 1) / numWorkers

	type band struct{ from, to int }
	var bands []band
	for lo := 0; lo < n; lo += chunk {
		hi := lo + chunk
		if hi > n {
			hi = n
		}
		bands = append(bands, band{from: lo + 1, to: hi + 1})
	}

	locks := make([]sync.Mutex, len(bands))
	var wg sync.WaitGroup
	for b := 0; b < len(bands); b++ {
		wg.Add(1)
		go func(b int) {
			defer wg.Done()
			bd := bands[b]
			for layer := bd.from; layer < bd.to; layer++ {
				first := b > 0 && layer == bd.from
				last := b < len(bands)-1 && layer == bd.to-1
				if first {
					locks[b-1].Lock()
				}
				if last {
					locks[b].Lock()
				}
				for cross := 1; cross < v.dims[1-axis]-1; cross++ {
					var idx [2]int
					idx[axis] = layer
					idx[1-axis] = cross
					v.towerPairs(v.towerFlat(idx), fn, newton3)
				}
				if first {
					locks[b-1].Unlock()
				}
				if last {
					locks[b].Unlock()
				}
			}
		}(b)
	}
	wg.Wait()
}
