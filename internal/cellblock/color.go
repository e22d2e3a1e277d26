package cellblock

// ColorScheme buckets owned-cell indices into colour classes such that, for
// a given write footprint around each base cell, no two bases of the same
// colour ever write to the same cell concurrently.
type ColorScheme struct {
	mod [3]int
}

// C08Scheme is the eight-colour 2x2x2 scheme: two same-coloured bases
// differ by a multiple of two on every axis, so neither lies in the other's
// half-stencil footprint. The footprints can still share neighbour cells,
// which traversal.C08 guards with per-cell locks.
func C08Scheme() ColorScheme { return ColorScheme{mod: [3]int{2, 2, 2}} }

// C18Scheme is the eighteen-colour scheme covering the forward 13-offset
// half-stencil, whose footprint spans -1..1 on x and y and 0..1 on z;
// spacing same-coloured bases three cells apart on x/y and two on z keeps
// their footprints disjoint.
func C18Scheme() ColorScheme { return ColorScheme{mod: [3]int{3, 3, 2}} }

// NumColors is the number of distinct colour classes the scheme produces.
func (s ColorScheme) NumColors() int { return s.mod[0] * s.mod[1] * s.mod[2] }

// ColorOf returns idx's colour class under s.
func (s ColorScheme) ColorOf(idx [3]int) int {
	x := ((idx[0] % s.mod[0]) + s.mod[0]) % s.mod[0]
	y := ((idx[1] % s.mod[1]) + s.mod[1]) % s.mod[1]
	z := ((idx[2] % s.mod[2]) + s.mod[2]) % s.mod[2]
	return x + y*s.mod[0] + z*s.mod[0]*s.mod[1]
}

// OwnedIndicesByColor partitions every owned cell's 3-D index by colour
// class, for use as a traversal's per-thread work partition.
func (g *Grid) OwnedIndicesByColor(s ColorScheme) [][][3]int {
	buckets := make([][][3]int, s.NumColors())
	for z := 1; z < g.Dims[2]-1; z++ {
		for y := 1; y < g.Dims[1]-1; y++ {
			for x := 1; x < g.Dims[0]-1; x++ {
				idx := [3]int{x, y, z}
				c := s.ColorOf(idx)
				buckets[c] = append(buckets[c], idx)
			}
		}
	}
	return buckets
}

// LongestAxis returns the axis (0=x,1=y,2=z) with the most owned cells —
// the axis the sliced traversal cuts into slabs.
func (g *Grid) LongestAxis() int {
	best, bestLen := 0, g.Dims[0]-2
	for axis := 1; axis < 3; axis++ {
		if l := g.Dims[axis] - 2; l > bestLen {
			best, bestLen = axis, l
		}
	}
	return best
}

// OwnedCellsOnAxis returns the number of owned (non-halo) cells along axis.
func (g *Grid) OwnedCellsOnAxis(axis int) int { return g.Dims[axis] - 2 }
