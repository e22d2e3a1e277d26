package migration

import (
	"github.com/cellgrid/autotune/internal/container"
	"github.com/cellgrid/autotune/internal/functor"
	"github.com/cellgrid/autotune/internal/particle"
)

// Reflector is the optional capability a pair functor advertises to support
// reflective boundaries: the mirror-image force at a wall, and the distance
// from the wall within which it applies. LennardJones implements this;
// functors without a meaningful wall reflection simply don't.
type Reflector interface {
	MirrorForce(p particle.Particle, axis int, wallCoord float64) particle.Vec3
	ReflectThreshold() float64
}

// Seam is the per-step halo/migration collaborator: it drains a container's
// box-leavers, routes them to neighbour subdomains (wrapping at periodic
// faces), accepts incoming owned/halo particles, and applies reflective-wall
// forces. Optional capabilities like Reflector are type-asserted rather
// than required, so a functor that doesn't implement one is simply skipped.
type Seam struct {
	Box        particle.Box
	Boundaries Config
}

// NewSeam builds a collaborator for a subdomain spanning box under the given
// per-face boundary treatment.
func NewSeam(box particle.Box, boundaries Config) *Seam {
	return &Seam{Box: box, Boundaries: boundaries}
}

// RouteLeavers buckets leavers (as returned by Container.UpdateContainer)
// by the face of the box they crossed. A leaver crossing a Periodic face
// has its position wrapped back into the box before being bucketed, so the
// receiving neighbour can Add it directly without further correction; a
// leaver crossing a None face is dropped.
func (s *Seam) RouteLeavers(leavers []particle.Particle) map[Face][]particle.Particle {
	out := make(map[Face][]particle.Particle)
	for _, p := range leavers {
		face, ok := crossedFace(p.Position, s.Box)
		if !ok {
			continue
		}
		switch s.Boundaries.Faces[face] {
		case None:
			continue
		case Periodic:
			p.Position = s.wrap(p.Position, face)
		}
		out[face] = append(out[face], p)
	}
	return out
}

// wrap moves pos to the opposite side of the box along face's axis, the
// periodic-boundary correction a received particle needs before re-adding.
func (s *Seam) wrap(pos particle.Vec3, face Face) particle.Vec3 {
	axis := face.Axis()
	size := s.Box.Max[axis] - s.Box.Min[axis]
	out := pos
	if face.Sign() < 0 {
		out[axis] += size
	} else {
		out[axis] -= size
	}
	return out
}

// HaloImage returns the position a particle near a periodic face should
// additionally be sent to a neighbour as (the periodic halo image), or
// (Vec3{}, false) if pos isn't within interactionLength of any periodic
// face. Used to build outgoing halo particles separately from emigrants —
// halo particles are never removed from the local container.
func (s *Seam) HaloImage(pos particle.Vec3, interactionLength float64) (particle.Vec3, Face, bool) {
	for _, face := range Faces {
		if s.Boundaries.Faces[face] != Periodic {
			continue
		}
		axis := face.Axis()
		if face.Sign() < 0 {
			if pos[axis]-s.Box.Min[axis] < interactionLength {
				return s.wrap(pos, face), face, true
			}
		} else {
			if s.Box.Max[axis]-pos[axis] < interactionLength {
				return s.wrap(pos, face), face, true
			}
		}
	}
	return particle.Vec3{}, 0, false
}

// ApplyIncoming routes a batch of received particles into c: particles
// tagged Owned go via Add, everything else via AddHalo. Particles failing a
// bounds check under the container's own policy are collected and returned
// rather than silently dropped.
func ApplyIncoming(c container.Container, incoming []particle.Particle) []error {
	var errs []error
	for _, p := range incoming {
		var err error
		if p.Ownership == particle.Owned {
			err = c.Add(p)
		} else {
			p.Ownership = particle.Halo
			err = c.AddHalo(p)
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// ReflectBoundaries injects the equal-and-opposite mirror-image force for
// every owned particle within fn's ReflectThreshold of a Reflective face.
// A no-op if fn doesn't implement Reflector.
func (s *Seam) ReflectBoundaries(c container.Container, fn functor.PairFunctor) {
	refl, ok := fn.(Reflector)
	if !ok {
		return
	}
	threshold := refl.ReflectThreshold()

	c.ForEach(particle.MaskOwned, nil, func(p *particle.Particle) bool {
		for _, face := range Faces {
			if s.Boundaries.Faces[face] != Reflective {
				continue
			}
			axis := face.Axis()
			var wall float64
			var dist float64
			if face.Sign() < 0 {
				wall = s.Box.Min[axis]
				dist = p.Position[axis] - wall
			} else {
				wall = s.Box.Max[axis]
				dist = wall - p.Position[axis]
			}
			if dist >= 0 && dist < threshold {
				p.AddForce(refl.MirrorForce(*p, axis, wall))
			}
		}
		return true
	})
}
