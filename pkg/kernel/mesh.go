package kernel

// Mesh is a generic polygon surface for interchange with downstream
// visualization and analysis tooling. Points is flat: 3 floats per point
// (x,y,z). Polys holds one index list per polygon face, indexing into
// Points.
type Mesh struct {
	Points []float64 `json:"points"` // [x0,y0,z0, x1,y1,z1, ...]
	Polys  [][]int   `json:"polys"`  // one index list per face
	Name   string    `json:"name"`   // which scene object this came from
}

// PointCount returns the number of points.
func (m *Mesh) PointCount() int {
	return len(m.Points) / 3
}

// PolyCount returns the number of polygon faces.
func (m *Mesh) PolyCount() int {
	return len(m.Polys)
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Points) == 0
}

// Triangles returns the mesh as flat triangle indices, fan-triangulating
// each polygon. Faces are assumed convex.
func (m *Mesh) Triangles() []int {
	var tris []int
	for _, poly := range m.Polys {
		for i := 1; i+1 < len(poly); i++ {
			tris = append(tris, poly[0], poly[i], poly[i+1])
		}
	}
	return tris
}
