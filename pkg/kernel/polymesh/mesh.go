package polymesh

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// pmesh is the internal polygon-mesh representation: explicit vertex
// positions, ordered polygon faces and optional wire edges (edges not
// bounded by any face, as produced by the circle primitive).
type pmesh struct {
	verts []mgl64.Vec3
	faces [][]int
	wires [][2]int
}

func (m *pmesh) clone() *pmesh {
	c := &pmesh{
		verts: make([]mgl64.Vec3, len(m.verts)),
		faces: make([][]int, len(m.faces)),
		wires: make([][2]int, len(m.wires)),
	}
	copy(c.verts, m.verts)
	copy(c.wires, m.wires)
	for i, f := range m.faces {
		c.faces[i] = append([]int(nil), f...)
	}
	return c
}

// edgeKey normalizes an edge to (lo, hi) vertex order.
func edgeKey(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}

// edges returns the deduplicated undirected edge set derived from faces
// plus wires, in deterministic but unspecified order.
func (m *pmesh) edges() [][2]int {
	seen := make(map[[2]int]struct{})
	var out [][2]int
	add := func(a, b int) {
		k := edgeKey(a, b)
		if _, ok := seen[k]; ok {
			return
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	for _, f := range m.faces {
		for i := range f {
			add(f[i], f[(i+1)%len(f)])
		}
	}
	for _, w := range m.wires {
		add(w[0], w[1])
	}
	return out
}

// edgeFaces maps each undirected edge to the indices of its incident faces.
func (m *pmesh) edgeFaces() map[[2]int][]int {
	ef := make(map[[2]int][]int)
	for fi, f := range m.faces {
		for i := range f {
			k := edgeKey(f[i], f[(i+1)%len(f)])
			ef[k] = append(ef[k], fi)
		}
	}
	return ef
}

func (m *pmesh) boundingBox() (min, max mgl64.Vec3) {
	if len(m.verts) == 0 {
		return mgl64.Vec3{}, mgl64.Vec3{}
	}
	min = m.verts[0]
	max = m.verts[0]
	for _, v := range m.verts[1:] {
		for i := 0; i < 3; i++ {
			min[i] = math.Min(min[i], v[i])
			max[i] = math.Max(max[i], v[i])
		}
	}
	return min, max
}

// maxExtent returns the largest bounding-box dimension, used to scale
// relative geometric tolerances.
func (m *pmesh) maxExtent() float64 {
	min, max := m.boundingBox()
	d := max.Sub(min)
	return math.Max(d.X(), math.Max(d.Y(), d.Z()))
}

func (m *pmesh) faceCentroid(fi int) mgl64.Vec3 {
	var c mgl64.Vec3
	f := m.faces[fi]
	for _, vi := range f {
		c = c.Add(m.verts[vi])
	}
	return c.Mul(1.0 / float64(len(f)))
}

// faceNormal returns the unit normal of a face using Newell's method,
// which tolerates slightly non-planar polygons.
func (m *pmesh) faceNormal(fi int) mgl64.Vec3 {
	f := m.faces[fi]
	var n mgl64.Vec3
	for i := range f {
		a := m.verts[f[i]]
		b := m.verts[f[(i+1)%len(f)]]
		n[0] += (a.Y() - b.Y()) * (a.Z() + b.Z())
		n[1] += (a.Z() - b.Z()) * (a.X() + b.X())
		n[2] += (a.X() - b.X()) * (a.Y() + b.Y())
	}
	if l := n.Len(); l > 0 {
		return n.Mul(1 / l)
	}
	return mgl64.Vec3{0, 0, 1}
}

// compact drops vertices not referenced by any face or wire and remaps
// indices. Used after operations that rebuild topology.
func (m *pmesh) compact() {
	used := make([]bool, len(m.verts))
	for _, f := range m.faces {
		for _, vi := range f {
			used[vi] = true
		}
	}
	for _, w := range m.wires {
		used[w[0]] = true
		used[w[1]] = true
	}
	remap := make([]int, len(m.verts))
	var verts []mgl64.Vec3
	for i, u := range used {
		if u {
			remap[i] = len(verts)
			verts = append(verts, m.verts[i])
		} else {
			remap[i] = -1
		}
	}
	m.verts = verts
	for _, f := range m.faces {
		for i, vi := range f {
			f[i] = remap[vi]
		}
	}
	for i, w := range m.wires {
		m.wires[i] = [2]int{remap[w[0]], remap[w[1]]}
	}
}
