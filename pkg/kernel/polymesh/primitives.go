package polymesh

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/nanomesh/nanomesh/pkg/kernel"
)

// Icosphere creates a subdivided icosahedron of the given radius centered
// at the origin. subdivisions=1 is the bare 12-vertex icosahedron; each
// further level splits every triangle into four and projects the new
// vertices onto the sphere.
func (e *Engine) Icosphere(subdivisions int, radius float64) (kernel.Handle, error) {
	if subdivisions < 1 {
		return nil, fmt.Errorf("polymesh: icosphere subdivisions must be >= 1, got %d", subdivisions)
	}
	if radius <= 0 {
		return nil, fmt.Errorf("polymesh: icosphere radius must be positive, got %g", radius)
	}
	m := icosahedron(radius)
	for level := 1; level < subdivisions; level++ {
		subdivideSphere(m, radius)
	}
	return e.register(m), nil
}

// icosahedron builds the 12-vertex, 20-face icosahedron from the golden
// ratio rectangles, scaled so every vertex sits at the given radius.
func icosahedron(radius float64) *pmesh {
	phi := (1 + math.Sqrt(5)) / 2
	raw := []mgl64.Vec3{
		{-1, phi, 0}, {1, phi, 0}, {-1, -phi, 0}, {1, -phi, 0},
		{0, -1, phi}, {0, 1, phi}, {0, -1, -phi}, {0, 1, -phi},
		{phi, 0, -1}, {phi, 0, 1}, {-phi, 0, -1}, {-phi, 0, 1},
	}
	verts := make([]mgl64.Vec3, len(raw))
	for i, v := range raw {
		verts[i] = v.Normalize().Mul(radius)
	}
	faces := [][]int{
		{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
		{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
		{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
		{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
	}
	return &pmesh{verts: verts, faces: faces}
}

// subdivideSphere splits every triangle into four, projecting edge
// midpoints onto the sphere of the given radius.
func subdivideSphere(m *pmesh, radius float64) {
	midpoints := make(map[[2]int]int)
	mid := func(a, b int) int {
		k := edgeKey(a, b)
		if vi, ok := midpoints[k]; ok {
			return vi
		}
		p := m.verts[a].Add(m.verts[b]).Mul(0.5).Normalize().Mul(radius)
		m.verts = append(m.verts, p)
		vi := len(m.verts) - 1
		midpoints[k] = vi
		return vi
	}
	var faces [][]int
	for _, f := range m.faces {
		a, b, c := f[0], f[1], f[2]
		ab, bc, ca := mid(a, b), mid(b, c), mid(c, a)
		faces = append(faces,
			[]int{a, ab, ca},
			[]int{b, bc, ab},
			[]int{c, ca, bc},
			[]int{ab, bc, ca},
		)
	}
	m.faces = faces
}

// Cube creates an axis-aligned cube of the given edge length centered at
// the origin.
func (e *Engine) Cube(size float64) (kernel.Handle, error) {
	if size <= 0 {
		return nil, fmt.Errorf("polymesh: cube size must be positive, got %g", size)
	}
	s := size / 2
	m := &pmesh{
		verts: []mgl64.Vec3{
			{-s, -s, -s}, {s, -s, -s}, {s, s, -s}, {-s, s, -s},
			{-s, -s, s}, {s, -s, s}, {s, s, s}, {-s, s, s},
		},
		faces: [][]int{
			{3, 2, 1, 0}, // bottom, normal -z
			{4, 5, 6, 7}, // top, normal +z
			{0, 1, 5, 4}, // front, -y
			{2, 3, 7, 6}, // back, +y
			{1, 2, 6, 5}, // right, +x
			{3, 0, 4, 7}, // left, -x
		},
	}
	return e.register(m), nil
}

// Cylinder creates an n-sided cylinder of the given radius and depth
// centered at the origin, capped with two n-gons.
func (e *Engine) Cylinder(sides int, radius, depth float64) (kernel.Handle, error) {
	if sides < 3 {
		return nil, fmt.Errorf("polymesh: cylinder needs at least 3 sides, got %d", sides)
	}
	if radius <= 0 || depth <= 0 {
		return nil, fmt.Errorf("polymesh: cylinder radius and depth must be positive, got %g, %g", radius, depth)
	}
	m := &pmesh{}
	h := depth / 2
	for _, z := range []float64{-h, h} {
		for i := 0; i < sides; i++ {
			a := 2 * math.Pi * float64(i) / float64(sides)
			m.verts = append(m.verts, mgl64.Vec3{radius * math.Cos(a), radius * math.Sin(a), z})
		}
	}
	bottom := make([]int, sides)
	top := make([]int, sides)
	for i := 0; i < sides; i++ {
		// Bottom winds clockwise seen from +z so its normal points down.
		bottom[i] = sides - 1 - i
		top[i] = sides + i
	}
	m.faces = append(m.faces, bottom, top)
	for i := 0; i < sides; i++ {
		j := (i + 1) % sides
		m.faces = append(m.faces, []int{i, j, sides + j, sides + i})
	}
	return e.register(m), nil
}

// Circle creates a flat n-gon ring of wire edges in the z=0 plane with no
// faces, matching the engine circle primitive shape recipes extrude from.
func (e *Engine) Circle(sides int, radius float64) (kernel.Handle, error) {
	if sides < 3 {
		return nil, fmt.Errorf("polymesh: circle needs at least 3 sides, got %d", sides)
	}
	if radius <= 0 {
		return nil, fmt.Errorf("polymesh: circle radius must be positive, got %g", radius)
	}
	m := &pmesh{}
	for i := 0; i < sides; i++ {
		a := 2 * math.Pi * float64(i) / float64(sides)
		m.verts = append(m.verts, mgl64.Vec3{radius * math.Cos(a), radius * math.Sin(a), 0})
		m.wires = append(m.wires, [2]int{i, (i + 1) % sides})
	}
	return e.register(m), nil
}
