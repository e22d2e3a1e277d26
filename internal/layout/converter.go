// Package layout converts cells between array-of-structures and
// structure-of-arrays form for SoA-based traversals, and hands cluster
// traversals a view onto exactly one cluster's lanes.
//
// The AoS/SoA split itself lives on particle.FullCell (SyncToSoA/
// SyncFromSoA); this package is the traversal-facing collaborator that
// decides *when* to call it and hands out cluster sub-views.
package layout

import (
	"github.com/cellgrid/autotune/internal/compute"
	"github.com/cellgrid/autotune/internal/functor"
	"github.com/cellgrid/autotune/internal/particle"
)

// Converter materialises a cell's SoA mirror before an SoA traversal and
// writes it back after. Load/extract happen once per cell per traversal;
// the SoA is never shared across cells, so thread-safety is structural, not
// enforced by locking.
type Converter struct {
	fn  functor.PairFunctor
	acc compute.Accelerator
}

// New returns a converter that loads/extracts through fn's SoALoader and
// SoAExtractor hooks, optionally batching the conversion through acc.
func New(fn functor.PairFunctor, acc compute.Accelerator) *Converter {
	if acc == nil {
		acc = compute.GetAccelerator()
	}
	return &Converter{fn: fn, acc: acc}
}

// Load materialises cell's SoA mirror for one traversal pass.
func (c *Converter) Load(cell *particle.FullCell) *particle.SoA {
	return c.fn.SoALoader(cell)
}

// Extract writes the SoA mirror's mutated columns back into cell.
func (c *Converter) Extract(cell *particle.FullCell) {
	c.fn.SoAExtractor(cell)
}

// LoadAll batch-converts every cell via the accelerator, falling back to a
// per-cell load if the accelerator reports itself unavailable.
func (c *Converter) LoadAll(cells []*particle.FullCell) []*particle.SoA {
	if c.acc != nil && c.acc.Available() {
		return c.acc.ConvertAoSToSoA(cells)
	}
	out := make([]*particle.SoA, len(cells))
	for i, cell := range cells {
		out[i] = c.Load(cell)
	}
	return out
}

// ExtractAll writes every cell's SoA mirror back via the accelerator.
func (c *Converter) ExtractAll(cells []*particle.FullCell) {
	if c.acc != nil && c.acc.Available() {
		c.acc.WriteBackSoAToAoS(cells)
		return
	}
	for _, cell := range cells {
		c.Extract(cell)
	}
}

// ClusterView is a base SoA plus a [Begin, End) window addressing exactly
// one cluster's lanes, so a cluster functor never sees another cluster's
// particles even though all clusters in a tower share one backing SoA.
type ClusterView struct {
	Base  *particle.SoA
	Begin int
	End   int
}

// Len reports the number of lanes in the view.
func (v ClusterView) Len() int { return v.End - v.Begin }

// ClusterViews lays clusters contiguously into a single SoA (one FullCell
// worth of particles per tower, ClusterSize lanes per cluster) and returns a
// view per cluster into it.
func ClusterViews(fn functor.PairFunctor, tower *particle.FullCell, numClusters int) []ClusterView {
	soa := fn.SoALoader(tower)
	views := make([]ClusterView, numClusters)
	for i := 0; i < numClusters; i++ {
		begin := i * particle.ClusterSize
		end := begin + particle.ClusterSize
		if end > soa.Len() {
			end = soa.Len()
		}
		views[i] = ClusterView{Base: soa, Begin: begin, End: end}
	}
	return views
}
