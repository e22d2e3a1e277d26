// Package migration implements the halo/migration seam: the per-step
// collaborator that routes box-leavers to neighbour subdomains, accepts
// incoming owned/halo particles, and optionally injects reflective-wall
// forces.
package migration

import "github.com/cellgrid/autotune/internal/particle"

// Face identifies one of the six faces of a regular-grid subdomain.
type Face int

const (
	FaceXMin Face = iota
	FaceXMax
	FaceYMin
	FaceYMax
	FaceZMin
	FaceZMax
)

func (f Face) String() string {
	switch f {
	case FaceXMin:
		return "x-"
	case FaceXMax:
		return "x+"
	case FaceYMin:
		return "y-"
	case FaceYMax:
		return "y+"
	case FaceZMin:
		return "z-"
	case FaceZMax:
		return "z+"
	default:
		return "unknown"
	}
}

// Axis reports which coordinate (0=x, 1=y, 2=z) f lies along.
func (f Face) Axis() int { return int(f) / 2 }

// Sign reports -1 for a Min face, +1 for a Max face.
func (f Face) Sign() float64 {
	if int(f)%2 == 0 {
		return -1
	}
	return 1
}

// Faces lists all six in a fixed order, for iteration.
var Faces = [6]Face{FaceXMin, FaceXMax, FaceYMin, FaceYMax, FaceZMin, FaceZMax}

// Kind is a per-face boundary treatment: periodic, reflective, or none.
type Kind int

const (
	// Periodic wraps a leaver/halo particle around to the opposite face.
	Periodic Kind = iota
	// Reflective injects a mirror-image force near the wall instead of
	// exchanging particles with a neighbour.
	Reflective
	// None means the face borders open space: leavers crossing it are
	// dropped (no neighbour to route to).
	None
)

func (k Kind) String() string {
	switch k {
	case Periodic:
		return "periodic"
	case Reflective:
		return "reflective"
	default:
		return "none"
	}
}

// Config is the six-face boundary treatment for one subdomain.
type Config struct {
	Faces [6]Kind
}

// Uniform builds a Config applying kind to every face.
func Uniform(kind Kind) Config {
	var c Config
	for i := range c.Faces {
		c.Faces[i] = kind
	}
	return c
}

// crossedFace reports which face of box p's position lies beyond, if any.
// When a particle crosses more than one face at once (a corner), the first
// matching face in Faces order wins; RouteLeavers wraps and buckets the
// particle by that face only.
func crossedFace(pos particle.Vec3, box particle.Box) (Face, bool) {
	for i := 0; i < 3; i++ {
		if pos[i] < box.Min[i] {
			return Faces[2*i], true
		}
		if pos[i] >= box.Max[i] {
			return Faces[2*i+1], true
		}
	}
	return 0, false
}
