package cellblock

import (
	"testing"

	"github.com/cellgrid/autotune/internal/particle"
)

func testBox() particle.Box {
	return particle.Box{Min: particle.Vec3{0, 0, 0}, Max: particle.Vec3{10, 10, 10}}
}

func TestNewGridDims(t *testing.T) {
	g := New(testBox(), 1.0, 1.0)
	for axis := 0; axis < 3; axis++ {
		if g.Dims[axis] != 12 { // 10 owned cells + 2 halo
			t.Fatalf("axis %d: expected 12 dims, got %d", axis, g.Dims[axis])
		}
	}
}

func TestCoordToIndexRoundTrip(t *testing.T) {
	g := New(testBox(), 1.0, 1.0)
	idx := g.CoordToIndex3D(particle.Vec3{5.5, 5.5, 5.5})
	if idx != [3]int{6, 6, 6} {
		t.Fatalf("expected cell (6,6,6), got %v", idx)
	}
	flat := g.Index3DToFlat(idx)
	if back := g.FlatToIndex3D(flat); back != idx {
		t.Fatalf("round trip failed: %v != %v", back, idx)
	}
}

func TestHaloIndex(t *testing.T) {
	g := New(testBox(), 1.0, 1.0)
	if !g.IsHaloIndex([3]int{0, 5, 5}) {
		t.Fatal("expected face cell to be halo")
	}
	if g.IsOwnedIndex([3]int{0, 5, 5}) {
		t.Fatal("face cell should not be owned")
	}
	if !g.IsOwnedIndex([3]int{5, 5, 5}) {
		t.Fatal("interior cell should be owned")
	}
}

func TestC08SchemeNoOverlap(t *testing.T) {
	s := C08Scheme()
	if s.NumColors() != 8 {
		t.Fatalf("expected 8 colors, got %d", s.NumColors())
	}
	// Same-colour bases must be >= 2 apart on every axis.
	seen := map[int][][3]int{}
	for z := 0; z < 4; z++ {
		for y := 0; y < 4; y++ {
			for x := 0; x < 4; x++ {
				idx := [3]int{x, y, z}
				c := s.ColorOf(idx)
				for _, other := range seen[c] {
					for axis := 0; axis < 3; axis++ {
						d := idx[axis] - other[axis]
						if d < 0 {
							d = -d
						}
						if d != 0 && d < 2 {
							t.Fatalf("colour %d bases %v and %v are only %d apart on axis %d", c, idx, other, d, axis)
						}
					}
				}
				seen[c] = append(seen[c], idx)
			}
		}
	}
}

func TestOffsets26Count(t *testing.T) {
	if len(Offsets26()) != 26 {
		t.Fatalf("expected 26 offsets, got %d", len(Offsets26()))
	}
}

func TestHalfStencil13Count(t *testing.T) {
	h := HalfStencil13()
	if len(h) != 13 {
		t.Fatalf("expected 13 offsets, got %d", len(h))
	}
	// No offset and its negation should both appear.
	set := map[[3]int]bool{}
	for _, o := range h {
		set[o] = true
	}
	for _, o := range h {
		neg := [3]int{-o[0], -o[1], -o[2]}
		if set[neg] {
			t.Fatalf("half-stencil contains both %v and its negation", o)
		}
	}
}
