package functor

import (
	"github.com/cellgrid/autotune/internal/particle"
)

// LennardJones is the reference pairwise kernel this repo ships so the
// engine is runnable end to end, the way examples/md-flexible ships an LJ
// functor as AutoPas's reference kernel. Grounded on physics/nbody.go's
// inner pairwise-force loop shape (the pack's only other O(n^2) pairwise
// kernel), generalized from 1/r^3 gravity to the LJ 12-6 potential.
type LennardJones struct {
	Epsilon float64
	Sigma   float64
	Cutoff  float64

	n3 struct{ allow, disallow bool }
}

// NewLennardJones returns a functor that supports both Newton-3 modes.
func NewLennardJones(epsilon, sigma, cutoff float64) *LennardJones {
	return &LennardJones{Epsilon: epsilon, Sigma: sigma, Cutoff: cutoff}
}

func (lj *LennardJones) CutoffSq() float64 { return lj.Cutoff * lj.Cutoff }

func (lj *LennardJones) AllowsNewton3() bool    { return true }
func (lj *LennardJones) AllowsNonNewton3() bool { return true }
func (lj *LennardJones) IsRelevantForTuning() bool { return true }

// forceScalar returns the 24*epsilon*(2*(sigma/r)^12 - (sigma/r)^6)/r^2 prefactor,
// the standard LJ force-over-distance expression.
func (lj *LennardJones) forceScalar(distSq float64) float64 {
	invR2 := 1.0 / distSq
	s2 := lj.Sigma * lj.Sigma * invR2
	s6 := s2 * s2 * s2
	s12 := s6 * s6
	return 24.0 * lj.Epsilon * (2.0*s12 - s6) * invR2
}

func (lj *LennardJones) AoSPair(pi, pj *particle.Particle, newton3 bool) {
	d := pi.Position.Sub(pj.Position)
	distSq := d.Dot(d)
	if distSq > lj.CutoffSq() || distSq == 0 {
		return
	}
	f := d.Scale(lj.forceScalar(distSq))
	pi.AddForce(f)
	if newton3 {
		pj.AddForce(f.Scale(-1))
	}
}

func (lj *LennardJones) SoASelf(soa *particle.SoA, newton3 bool) {
	n := soa.Len()
	for i := 0; i < n; i++ {
		if soa.Ownership[i] == particle.Dummy {
			continue
		}
		for j := i + 1; j < n; j++ {
			if soa.Ownership[j] == particle.Dummy {
				continue
			}
			lj.soaPairAt(soa, i, soa, j, newton3)
		}
	}
}

func (lj *LennardJones) SoAPair(a, b *particle.SoA, newton3 bool) {
	for i := 0; i < a.Len(); i++ {
		if a.Ownership[i] == particle.Dummy {
			continue
		}
		for j := 0; j < b.Len(); j++ {
			if b.Ownership[j] == particle.Dummy {
				continue
			}
			lj.soaPairAt(a, i, b, j, newton3)
		}
	}
}

func (lj *LennardJones) SoAVerlet(soa *particle.SoA, neighbors [][]int, iFrom, iTo int, newton3 bool) {
	for i := iFrom; i < iTo && i < len(neighbors); i++ {
		if soa.Ownership[i] == particle.Dummy {
			continue
		}
		for _, j := range neighbors[i] {
			if soa.Ownership[j] == particle.Dummy {
				continue
			}
			lj.soaPairAt(soa, i, soa, j, newton3)
		}
	}
}

func (lj *LennardJones) soaPairAt(a *particle.SoA, i int, b *particle.SoA, j int, newton3 bool) {
	dx := a.PosX[i] - b.PosX[j]
	dy := a.PosY[i] - b.PosY[j]
	dz := a.PosZ[i] - b.PosZ[j]
	distSq := dx*dx + dy*dy + dz*dz
	if distSq > lj.CutoffSq() || distSq == 0 {
		return
	}
	s := lj.forceScalar(distSq)
	a.FX[i] += s * dx
	a.FY[i] += s * dy
	a.FZ[i] += s * dz
	if newton3 {
		b.FX[j] -= s * dx
		b.FY[j] -= s * dy
		b.FZ[j] -= s * dz
	}
}

func (lj *LennardJones) SoALoader(cell *particle.FullCell) *particle.SoA { return cell.SyncToSoA() }
func (lj *LennardJones) SoAExtractor(cell *particle.FullCell)            { cell.SyncFromSoA() }

// PotentialEnergy returns the LJ potential between two particles, used by
// energy-drift diagnostics.
func (lj *LennardJones) PotentialEnergy(pi, pj particle.Particle) float64 {
	distSq := pi.Position.DistSq(pj.Position)
	if distSq > lj.CutoffSq() || distSq == 0 {
		return 0
	}
	s2 := lj.Sigma * lj.Sigma / distSq
	s6 := s2 * s2 * s2
	s12 := s6 * s6
	return 4.0 * lj.Epsilon * (s12 - s6)
}

// ReflectThreshold is the distance from a reflective wall within which
// MirrorForce should be applied — 2^(1/6)*sigma, the LJ potential's minimum.
func (lj *LennardJones) ReflectThreshold() float64 {
	return 1.122462048309373 * lj.Sigma // 2^(1/6)
}

// MirrorForce computes the force p would feel from an image of itself
// reflected across a planar wall at `wallCoord` along `axis`, used by the
// reflective-boundary seam.
func (lj *LennardJones) MirrorForce(p particle.Particle, axis int, wallCoord float64) particle.Vec3 {
	mirror := p
	mirror.Position[axis] = 2*wallCoord - p.Position[axis]
	d := p.Position.Sub(mirror.Position)
	distSq := d.Dot(d)
	if distSq == 0 || distSq > lj.CutoffSq() {
		return particle.Vec3{}
	}
	return d.Scale(lj.forceScalar(distSq))
}
