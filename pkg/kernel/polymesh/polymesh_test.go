package polymesh

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/nanomesh/nanomesh/pkg/kernel"
)

const testEps = 1e-9

func approx(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func vecApprox(a, b mgl64.Vec3, eps float64) bool {
	return a.Sub(b).Len() <= eps
}

// --- primitive tests ---

func TestIcosphere(t *testing.T) {
	tests := []struct {
		name         string
		subdivisions int
		radius       float64
		wantVerts    int
		wantFaces    int
	}{
		{"bare icosahedron", 1, 1.0, 12, 20},
		{"one split", 2, 2.5, 42, 80},
		{"two splits", 3, 0.5, 162, 320},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New()
			h, err := e.Icosphere(tt.subdivisions, tt.radius)
			if err != nil {
				t.Fatalf("Icosphere() error: %v", err)
			}
			verts, _ := e.Vertices(h)
			if len(verts) != tt.wantVerts {
				t.Errorf("vertex count = %d, want %d", len(verts), tt.wantVerts)
			}
			m, _ := e.ToMesh(h)
			if m.PolyCount() != tt.wantFaces {
				t.Errorf("face count = %d, want %d", m.PolyCount(), tt.wantFaces)
			}
			for _, v := range verts {
				if !approx(v.Len(), tt.radius, 1e-12*tt.radius) {
					t.Fatalf("vertex %v not on sphere of radius %g", v, tt.radius)
				}
			}
		})
	}

	t.Run("rejects bad arguments", func(t *testing.T) {
		e := New()
		if _, err := e.Icosphere(0, 1); err == nil {
			t.Error("Icosphere(0, 1) succeeded, want error")
		}
		if _, err := e.Icosphere(2, -1); err == nil {
			t.Error("Icosphere(2, -1) succeeded, want error")
		}
	})
}

// The capsule recipe extrudes the z>=0 half of an icosphere, which only
// works if the sphere has an exact equator vertex ring.
func TestIcosphereHasEquatorRing(t *testing.T) {
	e := New()
	h, _ := e.Icosphere(3, 1.0)
	verts, _ := e.Vertices(h)
	onEquator := 0
	for _, v := range verts {
		if v.Z() == 0 {
			onEquator++
		}
	}
	if onEquator < 8 {
		t.Errorf("equator ring has %d vertices, want at least 8", onEquator)
	}
}

func TestCube(t *testing.T) {
	e := New()
	h, err := e.Cube(2.0)
	if err != nil {
		t.Fatalf("Cube() error: %v", err)
	}
	verts, _ := e.Vertices(h)
	if len(verts) != 8 {
		t.Fatalf("vertex count = %d, want 8", len(verts))
	}
	min, max, _ := e.BoundingBox(h)
	if !vecApprox(min, mgl64.Vec3{-1, -1, -1}, testEps) || !vecApprox(max, mgl64.Vec3{1, 1, 1}, testEps) {
		t.Errorf("bounding box = %v..%v, want -1..1 on all axes", min, max)
	}
	edges, _ := e.Edges(h)
	if len(edges) != 12 {
		t.Errorf("edge count = %d, want 12", len(edges))
	}
	if _, err := e.Cube(0); err == nil {
		t.Error("Cube(0) succeeded, want error")
	}
}

func TestCylinder(t *testing.T) {
	e := New()
	h, err := e.Cylinder(16, 0.5, 2.0)
	if err != nil {
		t.Fatalf("Cylinder() error: %v", err)
	}
	verts, _ := e.Vertices(h)
	if len(verts) != 32 {
		t.Fatalf("vertex count = %d, want 32", len(verts))
	}
	m, _ := e.ToMesh(h)
	if m.PolyCount() != 18 {
		t.Errorf("face count = %d, want 18 (16 walls + 2 caps)", m.PolyCount())
	}
	min, max, _ := e.BoundingBox(h)
	if !approx(min.Z(), -1, testEps) || !approx(max.Z(), 1, testEps) {
		t.Errorf("z range = [%g, %g], want [-1, 1]", min.Z(), max.Z())
	}
	if !approx(max.X(), 0.5, testEps) {
		t.Errorf("x max = %g, want 0.5", max.X())
	}
	if _, err := e.Cylinder(2, 1, 1); err == nil {
		t.Error("Cylinder(2, ...) succeeded, want error")
	}
}

func TestCircle(t *testing.T) {
	e := New()
	h, err := e.Circle(10, 1.5)
	if err != nil {
		t.Fatalf("Circle() error: %v", err)
	}
	verts, _ := e.Vertices(h)
	if len(verts) != 10 {
		t.Fatalf("vertex count = %d, want 10", len(verts))
	}
	m, _ := e.ToMesh(h)
	if m.PolyCount() != 0 {
		t.Errorf("face count = %d, want 0", m.PolyCount())
	}
	edges, _ := e.Edges(h)
	if len(edges) != 10 {
		t.Errorf("edge count = %d, want 10", len(edges))
	}
}

// --- transform tests ---

func TestTransforms(t *testing.T) {
	t.Run("translate", func(t *testing.T) {
		e := New()
		h, _ := e.Cube(2.0)
		if err := e.Translate(h, mgl64.Vec3{1, 2, 3}); err != nil {
			t.Fatalf("Translate() error: %v", err)
		}
		min, max, _ := e.BoundingBox(h)
		if !vecApprox(min, mgl64.Vec3{0, 1, 2}, testEps) || !vecApprox(max, mgl64.Vec3{2, 3, 4}, testEps) {
			t.Errorf("bounding box after translate = %v..%v", min, max)
		}
	})

	t.Run("rotate quarter turn about z", func(t *testing.T) {
		e := New()
		h, _ := e.Cylinder(4, 1, 1)
		// Stretch along x, then rotate the stretch onto y.
		if err := e.Scale(h, mgl64.Vec3{2, 1, 1}); err != nil {
			t.Fatalf("Scale() error: %v", err)
		}
		q := mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 0, 1})
		if err := e.Rotate(h, q); err != nil {
			t.Fatalf("Rotate() error: %v", err)
		}
		min, max, _ := e.BoundingBox(h)
		if !approx(max.Y(), 2, 1e-9) || !approx(min.Y(), -2, 1e-9) {
			t.Errorf("y range after rotate = [%g, %g], want [-2, 2]", min.Y(), max.Y())
		}
	})

	t.Run("rotate euler", func(t *testing.T) {
		e := New()
		h, _ := e.Cube(2.0)
		if err := e.Scale(h, mgl64.Vec3{1, 1, 3}); err != nil {
			t.Fatal(err)
		}
		// Quarter turn about x moves the z stretch onto y.
		if err := e.RotateEuler(h, mgl64.Vec3{math.Pi / 2, 0, 0}); err != nil {
			t.Fatalf("RotateEuler() error: %v", err)
		}
		min, max, _ := e.BoundingBox(h)
		if !approx(max.Y(), 3, 1e-9) || !approx(max.Z(), 1, 1e-9) {
			t.Errorf("extents after euler rotate = %v..%v", min, max)
		}
	})

	t.Run("unnormalized quaternion is normalized", func(t *testing.T) {
		e := New()
		h, _ := e.Cube(2.0)
		q := mgl64.Quat{W: 2, V: mgl64.Vec3{0, 0, 0}} // identity, wrong length
		if err := e.Rotate(h, q); err != nil {
			t.Fatal(err)
		}
		min, max, _ := e.BoundingBox(h)
		if !vecApprox(min, mgl64.Vec3{-1, -1, -1}, testEps) || !vecApprox(max, mgl64.Vec3{1, 1, 1}, testEps) {
			t.Errorf("identity rotation changed geometry: %v..%v", min, max)
		}
	})
}

// --- entity lifecycle tests ---

func TestDuplicateIsIndependent(t *testing.T) {
	e := New()
	h, _ := e.Cube(2.0)
	d, err := e.Duplicate(h)
	if err != nil {
		t.Fatalf("Duplicate() error: %v", err)
	}
	if err := e.Translate(d, mgl64.Vec3{10, 0, 0}); err != nil {
		t.Fatal(err)
	}
	min, max, _ := e.BoundingBox(h)
	if !vecApprox(min, mgl64.Vec3{-1, -1, -1}, testEps) || !vecApprox(max, mgl64.Vec3{1, 1, 1}, testEps) {
		t.Errorf("original moved with its duplicate: %v..%v", min, max)
	}
}

func TestDeleteInvalidatesHandle(t *testing.T) {
	e := New()
	h, _ := e.Cube(1.0)
	if err := e.Delete(h); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, err := e.Vertices(h); !errors.Is(err, kernel.ErrDeleted) {
		t.Errorf("Vertices() after delete = %v, want ErrDeleted", err)
	}
	if err := e.Delete(h); !errors.Is(err, kernel.ErrDeleted) {
		t.Errorf("double Delete() = %v, want ErrDeleted", err)
	}
}

func TestForeignHandleRejected(t *testing.T) {
	type fake struct{ kernel.Handle }
	e := New()
	if _, err := e.Vertices(fake{}); err == nil {
		t.Error("Vertices(foreign handle) succeeded, want error")
	}
}

// --- edit scope tests ---

func TestEditScopeRestoresSelection(t *testing.T) {
	e := New()
	h, _ := e.Cube(2.0)
	ent, _ := e.lookup(h)

	outer, _ := e.Edit(h)
	outer.SelectVertices(func(p mgl64.Vec3) bool { return p.Z() > 0 })
	if len(ent.sel.verts) != 4 {
		t.Fatalf("outer selection = %d vertices, want 4", len(ent.sel.verts))
	}

	inner, _ := e.Edit(h)
	inner.SelectAllVertices()
	if len(ent.sel.verts) != 8 {
		t.Fatalf("inner selection = %d vertices, want 8", len(ent.sel.verts))
	}
	inner.End()

	if len(ent.sel.verts) != 4 {
		t.Errorf("selection after inner End() = %d vertices, want 4 restored", len(ent.sel.verts))
	}
	outer.End()
}

func TestEditScopeEndClampsStaleIndices(t *testing.T) {
	e := New()
	h, _ := e.Cube(2.0)
	ent, _ := e.lookup(h)

	outer, _ := e.Edit(h)
	outer.SelectAllVertices()

	inner, _ := e.Edit(h)
	inner.SelectAllEdges()
	// Full percent bevel collapses the cube to an octahedron: fewer
	// vertices than the saved selection refers to.
	if err := inner.Bevel(kernel.BevelOptions{Mode: kernel.OffsetPercent, Amount: 100, Segments: 1}); err != nil {
		t.Fatalf("Bevel() error: %v", err)
	}
	inner.End()
	outer.End()

	n := len(ent.m.verts)
	for vi := range ent.sel.verts {
		if vi >= n {
			t.Fatalf("restored selection references vertex %d of %d", vi, n)
		}
	}
}

func TestTranslateAndResizeSelection(t *testing.T) {
	e := New()
	h, _ := e.Cube(2.0)

	s, _ := e.Edit(h)
	s.SelectVertices(func(p mgl64.Vec3) bool { return p.Z() > 0 })
	if err := s.TranslateSelection(mgl64.Vec3{0, 0, 1}); err != nil {
		t.Fatal(err)
	}
	if err := s.ResizeSelection(mgl64.Vec3{0.5, 0.5, 1}); err != nil {
		t.Fatal(err)
	}
	s.End()

	min, max, _ := e.BoundingBox(h)
	if !approx(min.Z(), -1, testEps) {
		t.Errorf("bottom z = %g, want -1", min.Z())
	}
	if !approx(max.Z(), 2, testEps) {
		t.Errorf("top z = %g, want 2", max.Z())
	}
	// Top face shrunk about its median, bottom untouched.
	verts, _ := e.Vertices(h)
	for _, v := range verts {
		if v.Z() > 1.5 && !approx(math.Abs(v.X()), 0.5, testEps) {
			t.Errorf("top vertex %v not resized to |x| = 0.5", v)
		}
		if v.Z() < 0 && !approx(math.Abs(v.X()), 1, testEps) {
			t.Errorf("bottom vertex %v moved", v)
		}
	}
}

// --- extrude tests ---

func TestExtrudeRegion(t *testing.T) {
	e := New()
	h, _ := e.Cube(1.0)

	s, _ := e.Edit(h)
	s.SelectVertices(func(p mgl64.Vec3) bool { return p.Z() > 0 })
	if err := s.Extrude(mgl64.Vec3{0, 0, 1}); err != nil {
		t.Fatalf("Extrude() error: %v", err)
	}
	s.End()

	verts, _ := e.Vertices(h)
	if len(verts) != 12 {
		t.Errorf("vertex count = %d, want 12", len(verts))
	}
	m, _ := e.ToMesh(h)
	if m.PolyCount() != 10 {
		t.Errorf("face count = %d, want 10 (6 original + 4 walls)", m.PolyCount())
	}
	min, max, _ := e.BoundingBox(h)
	if !approx(max.Z(), 1.5, testEps) || !approx(min.Z(), -0.5, testEps) {
		t.Errorf("z range = [%g, %g], want [-0.5, 1.5]", min.Z(), max.Z())
	}
}

func TestExtrudeWireCircle(t *testing.T) {
	e := New()
	h, _ := e.Circle(8, 1.0)

	s, _ := e.Edit(h)
	s.SelectAllVertices()
	if err := s.Extrude(mgl64.Vec3{0, 0, 2}); err != nil {
		t.Fatalf("Extrude() error: %v", err)
	}
	s.End()

	verts, _ := e.Vertices(h)
	if len(verts) != 16 {
		t.Errorf("vertex count = %d, want 16", len(verts))
	}
	m, _ := e.ToMesh(h)
	if m.PolyCount() != 8 {
		t.Errorf("wall count = %d, want 8", m.PolyCount())
	}
	min, max, _ := e.BoundingBox(h)
	if !approx(min.Z(), 0, testEps) || !approx(max.Z(), 2, testEps) {
		t.Errorf("z range = [%g, %g], want [0, 2]", min.Z(), max.Z())
	}
}

func TestExtrudeSelectionMovesToDuplicates(t *testing.T) {
	e := New()
	h, _ := e.Circle(6, 1.0)
	ent, _ := e.lookup(h)

	s, _ := e.Edit(h)
	s.SelectAllVertices()
	if err := s.Extrude(mgl64.Vec3{0, 0, 1}); err != nil {
		t.Fatal(err)
	}
	for vi := range ent.sel.verts {
		if ent.m.verts[vi].Z() != 1 {
			t.Fatalf("selected vertex %v not on extruded ring", ent.m.verts[vi])
		}
	}
	s.End()
}

func TestExtrudeEmptySelectionFails(t *testing.T) {
	e := New()
	h, _ := e.Cube(1.0)
	s, _ := e.Edit(h)
	defer s.End()
	if err := s.Extrude(mgl64.Vec3{0, 0, 1}); err == nil {
		t.Error("Extrude() with empty selection succeeded, want error")
	}
}

// --- bevel tests ---

func TestBevelCubeFullPercentGivesOctahedron(t *testing.T) {
	e := New()
	h, _ := e.Cube(2.0)

	s, _ := e.Edit(h)
	s.SelectAllEdges()
	err := s.Bevel(kernel.BevelOptions{Mode: kernel.OffsetPercent, Amount: 100, Segments: 1})
	s.End()
	if err != nil {
		t.Fatalf("Bevel() error: %v", err)
	}

	verts, _ := e.Vertices(h)
	if len(verts) != 6 {
		t.Fatalf("vertex count = %d, want 6", len(verts))
	}
	m, _ := e.ToMesh(h)
	if m.PolyCount() != 8 {
		t.Errorf("face count = %d, want 8", m.PolyCount())
	}
	// Vertices are the old face centers.
	for _, v := range verts {
		if !approx(v.Len(), 1, testEps) {
			t.Errorf("octahedron vertex %v not at distance 1", v)
		}
	}
}

func TestBevelCubePartialPercent(t *testing.T) {
	e := New()
	h, _ := e.Cube(2.0)

	s, _ := e.Edit(h)
	s.SelectAllEdges()
	err := s.Bevel(kernel.BevelOptions{Mode: kernel.OffsetPercent, Amount: 25, Segments: 1})
	s.End()
	if err != nil {
		t.Fatalf("Bevel() error: %v", err)
	}

	verts, _ := e.Vertices(h)
	if len(verts) != 24 {
		t.Errorf("vertex count = %d, want 24", len(verts))
	}
	m, _ := e.ToMesh(h)
	if m.PolyCount() != 26 {
		t.Errorf("face count = %d, want 26 (6 octagons + 12 chamfers + 8 corners)", m.PolyCount())
	}
	min, max, _ := e.BoundingBox(h)
	if !vecApprox(min, mgl64.Vec3{-1, -1, -1}, testEps) || !vecApprox(max, mgl64.Vec3{1, 1, 1}, testEps) {
		t.Errorf("bevel changed overall extents: %v..%v", min, max)
	}
}

func TestBevelSingleEdgeWidth(t *testing.T) {
	e := New()
	h, _ := e.Cube(2.0)

	s, _ := e.Edit(h)
	// One vertical edge at x=1, y=1.
	s.SelectEdges(func(a, b mgl64.Vec3) bool {
		return a.X() > 0.5 && b.X() > 0.5 && a.Y() > 0.5 && b.Y() > 0.5
	})
	err := s.Bevel(kernel.BevelOptions{Mode: kernel.OffsetWidth, Amount: 0.4, Segments: 1})
	s.End()
	if err != nil {
		t.Fatalf("Bevel() error: %v", err)
	}

	verts, _ := e.Vertices(h)
	if len(verts) != 10 {
		t.Errorf("vertex count = %d, want 10 (edge replaced by chamfer strip)", len(verts))
	}
	// The beveled corner is cut back.
	for _, v := range verts {
		if v.X() > 0.9 && v.Y() > 0.9 {
			t.Errorf("corner vertex %v survived the bevel", v)
		}
	}
}

func TestBevelVerticesOnly(t *testing.T) {
	e := New()
	h, _ := e.Cube(2.0)

	s, _ := e.Edit(h)
	s.SelectVertices(func(p mgl64.Vec3) bool { return p.X() > 0 && p.Y() > 0 && p.Z() > 0 })
	err := s.Bevel(kernel.BevelOptions{
		Mode: kernel.OffsetWidth, Amount: 0.5, Segments: 1, AffectVertices: true,
	})
	s.End()
	if err != nil {
		t.Fatalf("Bevel() error: %v", err)
	}

	// One corner truncated: 7 old corners + 3 cut points.
	verts, _ := e.Vertices(h)
	if len(verts) != 10 {
		t.Errorf("vertex count = %d, want 10", len(verts))
	}
	m, _ := e.ToMesh(h)
	if m.PolyCount() != 7 {
		t.Errorf("face count = %d, want 7 (6 faces + corner triangle)", m.PolyCount())
	}
}

func TestBevelRoundedKeepsExtents(t *testing.T) {
	e := New()
	h, _ := e.Cube(2.0)

	s, _ := e.Edit(h)
	s.SelectAllEdges()
	err := s.Bevel(kernel.BevelOptions{Mode: kernel.OffsetWidth, Amount: 0.3, Segments: 3})
	s.End()
	if err != nil {
		t.Fatalf("Bevel() error: %v", err)
	}

	verts, _ := e.Vertices(h)
	if len(verts) <= 24 {
		t.Errorf("vertex count = %d, want more than the flat chamfer's 24", len(verts))
	}
	min, max, _ := e.BoundingBox(h)
	if !vecApprox(min, mgl64.Vec3{-1, -1, -1}, testEps) || !vecApprox(max, mgl64.Vec3{1, 1, 1}, testEps) {
		t.Errorf("rounded bevel changed overall extents: %v..%v", min, max)
	}
}

func TestBevelNoOps(t *testing.T) {
	e := New()
	h, _ := e.Cube(2.0)
	ent, _ := e.lookup(h)
	before := len(ent.m.verts)

	s, _ := e.Edit(h)
	s.SelectAllEdges()
	if err := s.Bevel(kernel.BevelOptions{Mode: kernel.OffsetWidth, Amount: 0, Segments: 1}); err != nil {
		t.Errorf("zero-amount bevel error: %v", err)
	}
	s.DeselectAll()
	if err := s.Bevel(kernel.BevelOptions{Mode: kernel.OffsetWidth, Amount: 0.3, Segments: 1}); err != nil {
		t.Errorf("empty-selection bevel error: %v", err)
	}
	s.End()

	if len(ent.m.verts) != before {
		t.Errorf("no-op bevel changed vertex count %d -> %d", before, len(ent.m.verts))
	}
}

// --- weld tests ---

func TestWeldMergesCoincidentVertices(t *testing.T) {
	e := New()
	m := &pmesh{
		verts: []mgl64.Vec3{
			{0, 0, 0}, {1, 0, 0}, {1, 1, 0},
			{0, 0, 0}, {1, 1, 0}, {0, 1, 0}, // duplicates of 0 and 2
		},
		faces: [][]int{{0, 1, 2}, {3, 4, 5}},
	}
	h := e.register(m)
	if err := e.Weld(h); err != nil {
		t.Fatalf("Weld() error: %v", err)
	}
	verts, _ := e.Vertices(h)
	if len(verts) != 4 {
		t.Errorf("vertex count after weld = %d, want 4", len(verts))
	}
	mesh, _ := e.ToMesh(h)
	if mesh.PolyCount() != 2 {
		t.Errorf("face count after weld = %d, want 2", mesh.PolyCount())
	}
}

func TestWeldDropsDegenerateFaces(t *testing.T) {
	e := New()
	m := &pmesh{
		verts: []mgl64.Vec3{{0, 0, 0}, {1e-6, 0, 0}, {1, 0, 0}, {1, 1, 0}},
		faces: [][]int{{0, 1, 2}, {0, 2, 3}},
	}
	h := e.register(m)
	if err := e.Weld(h); err != nil {
		t.Fatal(err)
	}
	mesh, _ := e.ToMesh(h)
	if mesh.PolyCount() != 1 {
		t.Errorf("face count = %d, want 1 (sliver collapsed)", mesh.PolyCount())
	}
}

func TestWeldRespectsSelection(t *testing.T) {
	e := New()
	m := &pmesh{
		verts: []mgl64.Vec3{
			{0, 0, 0}, {0, 0, 1e-6}, // pair near origin
			{5, 0, 0}, {5, 0, 1e-6}, // pair away from origin
		},
		wires: [][2]int{{0, 2}, {1, 3}},
	}
	h := e.register(m)

	s, _ := e.Edit(h)
	s.SelectVertices(func(p mgl64.Vec3) bool { return p.X() < 1 })
	if err := s.Weld(); err != nil {
		t.Fatal(err)
	}
	s.End()

	verts, _ := e.Vertices(h)
	if len(verts) != 3 {
		t.Errorf("vertex count = %d, want 3 (only the selected pair merged)", len(verts))
	}
}

// --- hull tests ---

func TestConvexHullOctahedron(t *testing.T) {
	pts := []mgl64.Vec3{
		{1, 0, 0}, {-1, 0, 0}, {0, 1, 0}, {0, -1, 0}, {0, 0, 1}, {0, 0, -1},
		{0, 0, 0}, {0.1, 0.1, 0.1}, // interior points must vanish
	}
	m, err := convexHull(pts)
	if err != nil {
		t.Fatalf("convexHull() error: %v", err)
	}
	if len(m.verts) != 6 {
		t.Errorf("hull vertex count = %d, want 6", len(m.verts))
	}
	if len(m.faces) != 8 {
		t.Errorf("hull face count = %d, want 8", len(m.faces))
	}
	// Outward orientation: every face normal points away from the origin.
	for fi := range m.faces {
		if m.faceNormal(fi).Dot(m.faceCentroid(fi)) <= 0 {
			t.Fatalf("face %d normal points inward", fi)
		}
	}
}

func TestConvexHullCubeMergesCoplanar(t *testing.T) {
	var pts []mgl64.Vec3
	for _, x := range []float64{-1, 1} {
		for _, y := range []float64{-1, 1} {
			for _, z := range []float64{-1, 1} {
				pts = append(pts, mgl64.Vec3{x, y, z})
			}
		}
	}
	m, err := convexHull(pts)
	if err != nil {
		t.Fatalf("convexHull() error: %v", err)
	}
	mergeCoplanar(m)
	if len(m.verts) != 8 {
		t.Errorf("vertex count = %d, want 8", len(m.verts))
	}
	if len(m.faces) != 6 {
		t.Errorf("face count after merge = %d, want 6", len(m.faces))
	}
	for _, f := range m.faces {
		if len(f) != 4 {
			t.Errorf("merged face has %d vertices, want 4", len(f))
		}
	}
}

func TestConvexHullDegenerateInput(t *testing.T) {
	tests := []struct {
		name string
		pts  []mgl64.Vec3
	}{
		{"too few", []mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}},
		{"collinear", []mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}, {3, 0, 0}}},
		{"coplanar", []mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {1, 1, 0}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := convexHull(tt.pts); err == nil {
				t.Error("convexHull() succeeded on degenerate input, want error")
			}
		})
	}
}

// --- boolean tests ---

func TestBooleanIntersect(t *testing.T) {
	e := New()
	a, _ := e.Cube(2.0)
	b, _ := e.Cube(2.0)
	if err := e.Translate(b, mgl64.Vec3{1, 0, 0}); err != nil {
		t.Fatal(err)
	}
	if err := e.Boolean(a, b, kernel.BoolIntersect); err != nil {
		t.Fatalf("Boolean(intersect) error: %v", err)
	}
	min, max, _ := e.BoundingBox(a)
	if !approx(min.X(), 0, 1e-4) || !approx(max.X(), 1, 1e-4) {
		t.Errorf("x range = [%g, %g], want [0, 1]", min.X(), max.X())
	}
	if !approx(min.Y(), -1, 1e-4) || !approx(max.Y(), 1, 1e-4) {
		t.Errorf("y range = [%g, %g], want [-1, 1]", min.Y(), max.Y())
	}
	// The operand is untouched.
	bMin, bMax, _ := e.BoundingBox(b)
	if !approx(bMin.X(), 0, testEps) || !approx(bMax.X(), 2, testEps) {
		t.Errorf("operand x range = [%g, %g], want [0, 2]", bMin.X(), bMax.X())
	}
}

func TestBooleanDifference(t *testing.T) {
	e := New()
	a, _ := e.Cube(2.0)
	b, _ := e.Cube(2.0)
	if err := e.Translate(b, mgl64.Vec3{1.5, 0, 0}); err != nil {
		t.Fatal(err)
	}
	if err := e.Boolean(a, b, kernel.BoolDifference); err != nil {
		t.Fatalf("Boolean(difference) error: %v", err)
	}
	min, max, _ := e.BoundingBox(a)
	if !approx(min.X(), -1, 1e-4) || !approx(max.X(), 0.5, 1e-4) {
		t.Errorf("x range = [%g, %g], want [-1, 0.5]", min.X(), max.X())
	}
}

func TestBooleanUnion(t *testing.T) {
	e := New()
	a, _ := e.Cube(2.0)
	b, _ := e.Cube(2.0)
	if err := e.Translate(b, mgl64.Vec3{1, 0, 0}); err != nil {
		t.Fatal(err)
	}
	if err := e.Boolean(a, b, kernel.BoolUnion); err != nil {
		t.Fatalf("Boolean(union) error: %v", err)
	}
	min, max, _ := e.BoundingBox(a)
	if !approx(min.X(), -1, 1e-4) || !approx(max.X(), 2, 1e-4) {
		t.Errorf("x range = [%g, %g], want [-1, 2]", min.X(), max.X())
	}
}

func TestBooleanDisjointIntersectIsEmpty(t *testing.T) {
	e := New()
	a, _ := e.Cube(1.0)
	b, _ := e.Cube(1.0)
	if err := e.Translate(b, mgl64.Vec3{10, 0, 0}); err != nil {
		t.Fatal(err)
	}
	if err := e.Boolean(a, b, kernel.BoolIntersect); err != nil {
		t.Fatalf("Boolean(intersect) error: %v", err)
	}
	m, _ := e.ToMesh(a)
	if !m.IsEmpty() {
		t.Errorf("disjoint intersection has %d polys, want empty", m.PolyCount())
	}
}

func TestBooleanRequiresFaces(t *testing.T) {
	e := New()
	a, _ := e.Cube(1.0)
	b, _ := e.Circle(8, 1.0)
	if err := e.Boolean(a, b, kernel.BoolIntersect); err == nil {
		t.Error("Boolean with face-less operand succeeded, want error")
	}
}
