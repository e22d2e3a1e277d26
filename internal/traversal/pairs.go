package traversal

import (
	"github.com/cellgrid/autotune/internal/functor"
	"github.com/cellgrid/autotune/internal/particle"
)

// selfPairsAoS offers every unordered pair of owned-or-halo particles within
// one cell to fn, in AoS form. Newton3 has no bearing on the schedule here:
// both particles of a self-pair always live in the same cell's write
// footprint, so the mirror update always happens directly.
func selfPairsAoS(cell *particle.FullCell, fn functor.PairFunctor) {
	ps := cell.Particles()
	for i := 0; i < len(ps); i++ {
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

// pairPairsAoS offers ordered pairs (p in a, q in b) to fn. When newton3 is
// true each unordered pair between the two cells is visited once and both
// particles are updated; when false the caller is responsible for also
// invoking the mirrored call if the schedule requires it (c01 never does:
// it only ever writes to the base cell; c08, c18 and the sliced traversals
// walk a half-stencil and make the mirrored call themselves).
func pairPairsAoS(a, b *particle.FullCell, fn functor.PairFunctor, newton3 bool) {
	as := a.Particles()
	bs := b.Particles()
	for i := range as {
		if as[i].Ownership == particle.Dummy {
			continue
		}
		for j := range bs {
			if bs[j].Ownership == particle.Dummy {
				continue
			}
			fn.AoSPair(&as[i], &bs[j], newton3)
		}
	}
}

// selfPairsSoA and pairPairsSoA route through the functor's own SoA
// overloads, which already skip dummies internally.
func selfPairsSoA(soa *particle.SoA, fn functor.PairFunctor, newton3 bool) {
	fn.SoASelf(soa, newton3)
}

func pairPairsSoA(a, b *particle.SoA, fn functor.PairFunctor, newton3 bool) {
	fn.SoAPair(a, b, newton3)
}

// cellPair dispatches to the AoS or SoA pair routine based on layout,
// materialising SoA mirrors on demand and writing them back immediately —
// a "load/extract once per cell per traversal" contract simplified here to
// once per cell-pair invocation since a cell may appear in more than one
// pair within a single traversal pass.
func cellPair(a, b *particle.FullCell, fn functor.PairFunctor, layout DataLayout, newton3 bool) {
	if layout == AoS {
		pairPairsAoS(a, b, fn, newton3)
		return
	}
	soaA := fn.SoALoader(a)
	soaB := fn.SoALoader(b)
	pairPairsSoA(soaA, soaB, fn, newton3)
	fn.SoAExtractor(a)
	fn.SoAExtractor(b)
}

func cellSelf(cell *particle.FullCell, fn functor.PairFunctor, layout DataLayout) {
	if layout == AoS {
		selfPairsAoS(cell, fn)
		return
	}
	soa := fn.SoALoader(cell)
	selfPairsSoA(soa, fn, true)
	fn.SoAExtractor(cell)
}
