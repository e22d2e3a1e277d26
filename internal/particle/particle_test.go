package particle

import "testing"

func TestCheckBoundsOwnedStrict(t *testing.T) {
	box := Box{Min: Vec3{0, 0, 0}, Max: Vec3{10, 10, 10}}
	p := New(1, Vec3{5, 5, 5})
	p.Ownership = Owned

	if err := CheckBounds(p, box, 1.0, StrictBounds); err != nil {
		t.Fatalf("expected in-box owned particle to pass, got %v", err)
	}

	p.Position = Vec3{15, 5, 5}
	if err := CheckBounds(p, box, 1.0, StrictBounds); err == nil {
		t.Fatal("expected out-of-box owned particle to fail under strict bounds")
	}
	if err := CheckBounds(p, box, 1.0, LenientBounds); err != nil {
		t.Fatalf("lenient bounds must never fail, got %v", err)
	}
}

func TestCheckBoundsHaloShell(t *testing.T) {
	box := Box{Min: Vec3{0, 0, 0}, Max: Vec3{10, 10, 10}}
	L := 1.5

	halo := New(2, Vec3{-0.5, 5, 5})
	halo.Ownership = Halo
	if err := CheckBounds(halo, box, L, StrictBounds); err != nil {
		t.Fatalf("expected halo particle in shell to pass, got %v", err)
	}

	insideAsHalo := New(3, Vec3{5, 5, 5})
	insideAsHalo.Ownership = Halo
	if err := CheckBounds(insideAsHalo, box, L, StrictBounds); err == nil {
		t.Fatal("expected a halo particle inside the owned box to fail O2")
	}

	farHalo := New(4, Vec3{-5, 5, 5})
	farHalo.Ownership = Halo
	if err := CheckBounds(farHalo, box, L, StrictBounds); err == nil {
		t.Fatal("expected a halo particle beyond the shell to fail O2")
	}
}

func TestFullCellSwapRemove(t *testing.T) {
	c := NewFullCell()
	for i := uint64(0); i < 5; i++ {
		c.Add(New(i, Vec3{float64(i), 0, 0}))
	}
	c.SwapRemove(1)
	if c.Len() != 4 {
		t.Fatalf("expected 4 particles after remove, got %d", c.Len())
	}
	seen := map[uint64]bool{}
	c.ForEach(MaskOwnedOrHaloOrDummy, func(p *Particle) bool {
		seen[p.ID] = true
		return true
	})
	if seen[1] {
		t.Fatal("removed particle 1 should not be present")
	}
	for _, id := range []uint64{0, 2, 3, 4} {
		if !seen[id] {
			t.Fatalf("expected particle %d to remain", id)
		}
	}
}

func TestFullCellDeleteDummies(t *testing.T) {
	c := NewFullCell()
	c.Add(New(1, Vec3{}))
	dummy := New(2, Vec3{})
	dummy.Ownership = Dummy
	c.Add(dummy)
	c.Add(New(3, Vec3{}))

	c.DeleteDummies()
	if c.Len() != 2 {
		t.Fatalf("expected 2 particles after DeleteDummies, got %d", c.Len())
	}
	c.ForEach(MaskOwnedOrHaloOrDummy, func(p *Particle) bool {
		if p.Ownership == Dummy {
			t.Fatal("dummy survived DeleteDummies")
		}
		return true
	})
}

func TestFullCellSortByAxis(t *testing.T) {
	c := NewFullCell()
	c.Add(New(1, Vec3{3, 0, 0}))
	c.Add(New(2, Vec3{1, 0, 0}))
	c.Add(New(3, Vec3{2, 0, 0}))
	c.SortByAxis(0)

	want := []float64{1, 2, 3}
	for i, p := range c.Particles() {
		if p.Position[0] != want[i] {
			t.Fatalf("index %d: expected x=%v, got %v", i, want[i], p.Position[0])
		}
	}
}

func TestSoARoundTrip(t *testing.T) {
	c := NewFullCell()
	c.Add(New(1, Vec3{1, 2, 3}))
	c.Add(New(2, Vec3{4, 5, 6}))

	soa := c.SyncToSoA()
	soa.FX[0], soa.FY[0], soa.FZ[0] = 9, 8, 7
	soa.FX[1], soa.FY[1], soa.FZ[1] = 1, 1, 1
	c.SyncFromSoA()

	if got := c.At(0).Force; got != (Vec3{9, 8, 7}) {
		t.Fatalf("expected force written back, got %v", got)
	}
}

func TestClusterFirstRealZ(t *testing.T) {
	var cl Cluster
	cl.Particles[0] = DummyFrom(New(1, Vec3{0, 0, 5}), 0, 1.0)
	cl.Particles[1] = New(2, Vec3{0, 0, 6})
	cl.Particles[2] = New(3, Vec3{0, 0, 7})
	cl.Particles[3] = New(4, Vec3{0, 0, 8})

	z, ok := cl.FirstRealZ()
	if !ok {
		t.Fatal("expected to find a non-dummy particle")
	}
	if z != 6 {
		t.Fatalf("expected first real z=6, got %v", z)
	}
}

func TestDisplacementAndRebuildMark(t *testing.T) {
	p := New(1, Vec3{0, 0, 0})
	p.Position = Vec3{0.3, 0, 0}
	if d := p.DisplacementSq(); d != 0.09 {
		t.Fatalf("expected squared displacement 0.09, got %v", d)
	}
	p.MarkRebuilt()
	if p.DisplacementSq() != 0 {
		t.Fatal("displacement should reset to 0 after MarkRebuilt")
	}
}
