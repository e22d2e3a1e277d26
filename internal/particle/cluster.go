package particle

// ClusterSize is the fixed packed-group width used by the verlet-cluster
// container, matching the reference implementation's default cluster size
// of 4.
const ClusterSize = 4

// Cluster is a fixed-size, z-sorted packed group of particles. The verlet
// cluster container pads the tail of a tower with dummy particles so every
// cluster is exactly ClusterSize wide; dummies are placed strictly outside
// the box along z so they never spuriously interact.
type Cluster struct {
	Particles [ClusterSize]Particle
}

// FirstRealZ returns the z-coordinate of the first non-dummy particle in the
// cluster, scanning from the front rather than assuming index 0 is real: a
// partially-dummy last cluster must not have its z-min read from an
// arbitrary slot.
func (c *Cluster) FirstRealZ() (z float64, ok bool) {
	for i := range c.Particles {
		if c.Particles[i].Ownership != Dummy {
			return c.Particles[i].Position[2], true
		}
	}
	return 0, false
}

// DummyFrom synthesizes a dummy particle cloned from real, offset along z so
// it never collides with real towers, and never creates a force
// discontinuity at the box boundary.
func DummyFrom(real Particle, offset int, interactionLength float64) Particle {
	d := real
	d.Ownership = Dummy
	d.Position[2] += float64(offset+1) * interactionLength
	return d
}
