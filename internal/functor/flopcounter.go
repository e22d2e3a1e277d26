package functor

import "github.com/cellgrid/autotune/internal/particle"

// FlopCounter wraps another functor and counts kernel invocations instead of
// (or in addition to) applying forces. It is the canonical example of a
// functor whose timings must never influence auto-tuning.
type FlopCounter struct {
	inner          PairFunctor
	distanceCalcs  int64
	kernelCalls    int64
	flopsPerKernel int64
}

func NewFlopCounter(inner PairFunctor, flopsPerKernel int64) *FlopCounter {
	return &FlopCounter{inner: inner, flopsPerKernel: flopsPerKernel}
}

func (f *FlopCounter) AoSPair(pi, pj *particle.Particle, newton3 bool) {
	f.distanceCalcs++
	distSq := pi.Position.DistSq(pj.Position)
	if distSq > f.inner.CutoffSq() {
		return
	}
	f.kernelCalls++
	f.inner.AoSPair(pi, pj, newton3)
}

func (f *FlopCounter) SoASelf(soa *particle.SoA, newton3 bool) {
	n := int64(soa.Len())
	f.distanceCalcs += n * (n - 1) / 2
	f.inner.SoASelf(soa, newton3)
}

func (f *FlopCounter) SoAPair(a, b *particle.SoA, newton3 bool) {
	f.distanceCalcs += int64(a.Len()) * int64(b.Len())
	f.inner.SoAPair(a, b, newton3)
}

func (f *FlopCounter) SoAVerlet(soa *particle.SoA, neighbors [][]int, iFrom, iTo int, newton3 bool) {
	for i := iFrom; i < iTo && i < len(neighbors); i++ {
		f.distanceCalcs += int64(len(neighbors[i]))
	}
	f.inner.SoAVerlet(soa, neighbors, iFrom, iTo, newton3)
}

func (f *FlopCounter) AllowsNewton3() bool       { return f.inner.AllowsNewton3() }
func (f *FlopCounter) AllowsNonNewton3() bool    { return f.inner.AllowsNonNewton3() }
func (f *FlopCounter) IsRelevantForTuning() bool { return false }
func (f *FlopCounter) CutoffSq() float64         { return f.inner.CutoffSq() }

func (f *FlopCounter) SoALoader(cell *particle.FullCell) *particle.SoA { return f.inner.SoALoader(cell) }
func (f *FlopCounter) SoAExtractor(cell *particle.FullCell)            { f.inner.SoAExtractor(cell) }

// Flops estimates total floating-point operations performed so far.
func (f *FlopCounter) Flops() int64 { return f.kernelCalls * f.flopsPerKernel }

func (f *FlopCounter) DistanceCalculations() int64 { return f.distanceCalcs }
func (f *FlopCounter) KernelCalls() int64          { return f.kernelCalls }

func (f *FlopCounter) Reset() {
	f.distanceCalcs = 0
	f.kernelCalls = 0
}
