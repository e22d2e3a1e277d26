// Package cellblock implements the 3-D cell grid shared by the linked-cells
// family of containers: a halo layer of one cell on each face, coordinate
// <-> index math, and the neighbourhood offsets traversals walk.
package cellblock

import (
	"math"

	"github.com/cellgrid/autotune/internal/particle"
)

// Grid maps 3-D cell coordinates to a flat array position and real-space
// coordinates to cell indices. It always carries exactly one halo cell layer
// on every face
type Grid struct {
	Box               particle.Box
	InteractionLength float64
	CellLength        particle.Vec3
	HaloMin           particle.Vec3
	Dims              [3]int // includes the halo layer on both sides of each axis
}

// New builds a grid whose per-axis cell length is >= cellSizeFactor *
// interactionLength, chosen so an integer number of cells exactly tiles the
// owned box.
func New(box particle.Box, interactionLength, cellSizeFactor float64) *Grid {
	base := interactionLength * cellSizeFactor
	var dims [3]int
	var cellLen particle.Vec3
	for axis := 0; axis < 3; axis++ {
		span := box.Max[axis] - box.Min[axis]
		n := int(math.Floor(span / base))
		if n < 1 {
			n = 1
		}
		dims[axis] = n
		cellLen[axis] = span / float64(n)
	}
	return &Grid{
		Box:               box,
		InteractionLength: interactionLength,
		CellLength:        cellLen,
		HaloMin:           particle.Vec3{box.Min[0] - cellLen[0], box.Min[1] - cellLen[1], box.Min[2] - cellLen[2]},
		Dims:              [3]int{dims[0] + 2, dims[1] + 2, dims[2] + 2},
	}
}

// NumCells is the total cell count, including the halo layer.
func (g *Grid) NumCells() int { return g.Dims[0] * g.Dims[1] * g.Dims[2] }

// CoordToIndex3D maps a real-space position to its containing cell's 3-D
// index, clamped into the grid (so halo particles slightly outside the
// halo's outer edge still land in the outermost halo cell rather than
// panicking).
func (g *Grid) CoordToIndex3D(pos particle.Vec3) [3]int {
	var idx [3]int
	for axis := 0; axis < 3; axis++ {
		i := int(math.Floor((pos[axis] - g.HaloMin[axis]) / g.CellLength[axis]))
		if i < 0 {
			i = 0
		}
		if i >= g.Dims[axis] {
			i = g.Dims[axis] - 1
		}
		idx[axis] = i
	}
	return idx
}

// Index3DToFlat converts a 3-D cell index to its position in a flat array.
func (g *Grid) Index3DToFlat(idx [3]int) int {
	return idx[0] + idx[1]*g.Dims[0] + idx[2]*g.Dims[0]*g.Dims[1]
}

// FlatToIndex3D is the inverse of Index3DToFlat.
func (g *Grid) FlatToIndex3D(flat int) [3]int {
	x := flat % g.Dims[0]
	y := (flat / g.Dims[0]) % g.Dims[1]
	z := flat / (g.Dims[0] * g.Dims[1])
	return [3]int{x, y, z}
}

// CoordToFlat is the composition of CoordToIndex3D and Index3DToFlat.
func (g *Grid) CoordToFlat(pos particle.Vec3) int {
	return g.Index3DToFlat(g.CoordToIndex3D(pos))
}

// IsHaloIndex reports whether idx lies in the one-cell halo ring.
func (g *Grid) IsHaloIndex(idx [3]int) bool {
	for axis := 0; axis < 3; axis++ {
		if idx[axis] == 0 || idx[axis] == g.Dims[axis]-1 {
			return true
		}
	}
	return false
}

func (g *Grid) IsOwnedIndex(idx [3]int) bool { return !g.IsHaloIndex(idx) }

func (g *Grid) InBounds(idx [3]int) bool {
	for axis := 0; axis < 3; axis++ {
		if idx[axis] < 0 || idx[axis] >= g.Dims[axis] {
			return false
		}
	}
	return true
}

// Offsets26 returns the 26 offsets of the full 3x3x3 neighbourhood,
// excluding the origin.
func Offsets26() [][3]int {
	offs := make([][3]int, 0, 26)
	for dz := -1; dz <= 1; dz++ {
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 && dz == 0 {
					continue
				}
				offs = append(offs, [3]int{dx, dy, dz})
			}
		}
	}
	return offs
}

// HalfStencil13 returns the 13 unique ordered neighbour offsets that, with
// the base cell itself, form one unordered pair exactly once (the forward
// half of the 3x3x3 neighbourhood) — the set c18 and c08 are built from.
func HalfStencil13() [][3]int {
	all := Offsets26()
	half := make([][3]int, 0, 13)
	for _, o := range all {
		if isForward(o) {
			half = append(half, o)
		}
	}
	return half
}

// isForward keeps exactly one of {o, -o} using lexicographic tie-break so the
// half-stencil never double-counts an unordered neighbour pair.
func isForward(o [3]int) bool {
	if o[2] != 0 {
		return o[2] > 0
	}
	if o[1] != 0 {
		return o[1] > 0
	}
	return o[0] > 0
}

// Neighbors26Of returns the flat indices of the up-to-26 neighbours of idx
// that are in bounds.
func (g *Grid) Neighbors26Of(idx [3]int) []int {
	out := make([]int, 0, 26)
	for _, o := range Offsets26() {
		n := [3]int{idx[0] + o[0], idx[1] + o[1], idx[2] + o[2]}
		if g.InBounds(n) {
			out = append(out, g.Index3DToFlat(n))
		}
	}
	return out
}
