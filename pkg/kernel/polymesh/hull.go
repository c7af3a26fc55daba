package polymesh

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// convexHull computes the convex hull of a point cloud as a triangle
// mesh with outward-facing faces, using an incremental quickhull.
func convexHull(points []mgl64.Vec3) (*pmesh, error) {
	pts := dedupePoints(points)
	if len(pts) < 4 {
		return nil, fmt.Errorf("convex hull needs at least 4 distinct points, got %d", len(pts))
	}

	scale := cloudScale(pts)
	eps := 1e-9 * scale

	h := &hullBuilder{pts: pts, eps: eps}
	if err := h.initialSimplex(); err != nil {
		return nil, err
	}
	h.assignAll()
	h.expand()
	return h.mesh(), nil
}

func dedupePoints(points []mgl64.Vec3) []mgl64.Vec3 {
	seen := make(map[[3]int64]struct{}, len(points))
	var out []mgl64.Vec3
	for _, p := range points {
		k := [3]int64{
			int64(math.Round(p.X() * 1e10)),
			int64(math.Round(p.Y() * 1e10)),
			int64(math.Round(p.Z() * 1e10)),
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, p)
	}
	return out
}

func cloudScale(pts []mgl64.Vec3) float64 {
	min, max := pts[0], pts[0]
	for _, p := range pts[1:] {
		for i := 0; i < 3; i++ {
			min[i] = math.Min(min[i], p[i])
			max[i] = math.Max(max[i], p[i])
		}
	}
	d := max.Sub(min)
	s := math.Max(d.X(), math.Max(d.Y(), d.Z()))
	if s == 0 {
		return 1
	}
	return s
}

type hullFace struct {
	v       [3]int
	n       mgl64.Vec3
	d       float64 // plane offset: n·x = d
	outside []int
	dead    bool
}

type hullBuilder struct {
	pts   []mgl64.Vec3
	eps   float64
	faces []hullFace
}

func (h *hullBuilder) dist(f *hullFace, pi int) float64 {
	return h.pts[pi].Dot(f.n) - f.d
}

func (h *hullBuilder) addFace(a, b, c int, inside mgl64.Vec3) int {
	n := h.pts[b].Sub(h.pts[a]).Cross(h.pts[c].Sub(h.pts[a]))
	if l := n.Len(); l > 0 {
		n = n.Mul(1 / l)
	}
	d := h.pts[a].Dot(n)
	if inside.Dot(n)-d > 0 {
		a, c = c, a
		n = n.Mul(-1)
		d = -d
	}
	h.faces = append(h.faces, hullFace{v: [3]int{a, b, c}, n: n, d: d})
	return len(h.faces) - 1
}

// initialSimplex picks four affinely independent points and creates the
// starting tetrahedron.
func (h *hullBuilder) initialSimplex() error {
	// Most distant pair among axis extremes.
	var extremes []int
	for axis := 0; axis < 3; axis++ {
		lo, hi := 0, 0
		for i, p := range h.pts {
			if p[axis] < h.pts[lo][axis] {
				lo = i
			}
			if p[axis] > h.pts[hi][axis] {
				hi = i
			}
		}
		extremes = append(extremes, lo, hi)
	}
	i0, i1, best := -1, -1, -1.0
	for _, a := range extremes {
		for _, b := range extremes {
			if d := h.pts[a].Sub(h.pts[b]).Len(); d > best {
				best, i0, i1 = d, a, b
			}
		}
	}
	if best < h.eps {
		return errors.New("convex hull: all points coincident")
	}

	// Farthest from the line, then from the plane.
	dir := h.pts[i1].Sub(h.pts[i0]).Normalize()
	i2, best := -1, h.eps
	for i, p := range h.pts {
		r := p.Sub(h.pts[i0])
		if d := r.Sub(dir.Mul(r.Dot(dir))).Len(); d > best {
			best, i2 = d, i
		}
	}
	if i2 < 0 {
		return errors.New("convex hull: points are collinear")
	}
	n := h.pts[i1].Sub(h.pts[i0]).Cross(h.pts[i2].Sub(h.pts[i0])).Normalize()
	i3, best := -1, h.eps
	for i, p := range h.pts {
		if d := math.Abs(p.Sub(h.pts[i0]).Dot(n)); d > best {
			best, i3 = d, i
		}
	}
	if i3 < 0 {
		return errors.New("convex hull: points are coplanar")
	}

	centroid := h.pts[i0].Add(h.pts[i1]).Add(h.pts[i2]).Add(h.pts[i3]).Mul(0.25)
	h.addFace(i0, i1, i2, centroid)
	h.addFace(i0, i1, i3, centroid)
	h.addFace(i0, i2, i3, centroid)
	h.addFace(i1, i2, i3, centroid)
	return nil
}

// assignAll distributes points to the outside set of the first face they
// are visible from.
func (h *hullBuilder) assignAll() {
	for pi := range h.pts {
		h.assign(pi)
	}
}

func (h *hullBuilder) assign(pi int) {
	for fi := range h.faces {
		f := &h.faces[fi]
		if f.dead {
			continue
		}
		if h.dist(f, pi) > h.eps {
			f.outside = append(f.outside, pi)
			return
		}
	}
}

// expand repeatedly lifts the farthest outside point onto the hull.
func (h *hullBuilder) expand() {
	for {
		fi := -1
		for i := range h.faces {
			if !h.faces[i].dead && len(h.faces[i].outside) > 0 {
				fi = i
				break
			}
		}
		if fi < 0 {
			return
		}
		f := &h.faces[fi]
		pi, best := -1, -1.0
		for _, cand := range f.outside {
			if d := h.dist(f, cand); d > best {
				best, pi = d, cand
			}
		}
		h.lift(pi)
	}
}

// lift removes all faces visible from point pi and fans new faces from
// the horizon to pi, reassigning orphaned outside points.
func (h *hullBuilder) lift(pi int) {
	var visible []int
	var orphans []int
	for i := range h.faces {
		f := &h.faces[i]
		if f.dead {
			continue
		}
		if h.dist(f, pi) > h.eps {
			visible = append(visible, i)
			orphans = append(orphans, f.outside...)
			f.outside = nil
			f.dead = true
		}
	}

	// Horizon: directed edges of visible faces whose twin face survives.
	visSet := make(map[int]bool, len(visible))
	for _, v := range visible {
		visSet[v] = true
	}
	twin := make(map[[2]int]int)
	for i := range h.faces {
		f := &h.faces[i]
		if f.dead && !visSet[i] {
			continue
		}
		for e := 0; e < 3; e++ {
			a, b := f.v[e], f.v[(e+1)%3]
			twin[[2]int{a, b}] = i
		}
	}

	inside := h.interiorPoint()
	for _, vi := range visible {
		f := h.faces[vi]
		for e := 0; e < 3; e++ {
			a, b := f.v[e], f.v[(e+1)%3]
			t, ok := twin[[2]int{b, a}]
			if ok && !visSet[t] {
				h.addFace(a, b, pi, inside)
			}
		}
	}

	for _, o := range orphans {
		if o != pi {
			h.assign(o)
		}
	}
}

// interiorPoint returns a point inside the current hull for orienting
// new faces.
func (h *hullBuilder) interiorPoint() mgl64.Vec3 {
	var c mgl64.Vec3
	count := 0
	for i := range h.faces {
		if h.faces[i].dead {
			continue
		}
		for _, vi := range h.faces[i].v {
			c = c.Add(h.pts[vi])
			count++
		}
	}
	if count == 0 {
		return c
	}
	return c.Mul(1 / float64(count))
}

func (h *hullBuilder) mesh() *pmesh {
	m := &pmesh{verts: append([]mgl64.Vec3(nil), h.pts...)}
	for i := range h.faces {
		if h.faces[i].dead {
			continue
		}
		f := h.faces[i]
		m.faces = append(m.faces, []int{f.v[0], f.v[1], f.v[2]})
	}
	m.compact()
	return m
}

// mergeCoplanar joins adjacent coplanar triangles into polygon faces and
// removes collinear boundary vertices. Groups whose boundary fails to
// chain into a single loop are left triangulated.
func mergeCoplanar(m *pmesh) {
	scale := m.maxExtent()
	if scale == 0 {
		return
	}
	planeEps := 1e-9 * scale

	normals := make([]mgl64.Vec3, len(m.faces))
	offsets := make([]float64, len(m.faces))
	for i := range m.faces {
		normals[i] = m.faceNormal(i)
		offsets[i] = normals[i].Dot(m.verts[m.faces[i][0]])
	}

	parent := make([]int, len(m.faces))
	for i := range parent {
		parent[i] = i
	}
	var find func(int) int
	find = func(x int) int {
		if parent[x] != x {
			parent[x] = find(parent[x])
		}
		return parent[x]
	}
	union := func(a, b int) { parent[find(a)] = find(b) }

	for ek, faces := range m.edgeFaces() {
		_ = ek
		for i := 0; i+1 < len(faces); i++ {
			a, b := faces[i], faces[i+1]
			if normals[a].Dot(normals[b]) > 1-1e-9 &&
				math.Abs(offsets[a]-offsets[b]) < planeEps {
				union(a, b)
			}
		}
	}

	groups := make(map[int][]int)
	for i := range m.faces {
		groups[find(i)] = append(groups[find(i)], i)
	}

	var merged [][]int
	for _, group := range groups {
		if len(group) == 1 {
			merged = append(merged, m.faces[group[0]])
			continue
		}
		if loop, ok := traceBoundary(m, group); ok {
			merged = append(merged, removeCollinear(m, loop, scale))
		} else {
			for _, fi := range group {
				merged = append(merged, m.faces[fi])
			}
		}
	}
	m.faces = merged
	m.compact()
}

// traceBoundary chains the once-used directed edges of a face group into
// a single loop.
func traceBoundary(m *pmesh, group []int) ([]int, bool) {
	interior := make(map[[2]int]bool)
	for _, fi := range group {
		f := m.faces[fi]
		for i := range f {
			interior[[2]int{f[i], f[(i+1)%len(f)]}] = true
		}
	}
	next := make(map[int]int)
	start := -1
	count := 0
	for e := range interior {
		if interior[[2]int{e[1], e[0]}] {
			continue // interior edge, twin present within group
		}
		if _, dup := next[e[0]]; dup {
			return nil, false
		}
		next[e[0]] = e[1]
		count++
		if start < 0 || e[0] < start {
			start = e[0]
		}
	}
	if start < 0 {
		return nil, false
	}
	loop := []int{start}
	at := start
	for i := 0; i < count; i++ {
		n, ok := next[at]
		if !ok {
			return nil, false
		}
		if n == start {
			if i != count-1 {
				return nil, false
			}
			return loop, true
		}
		loop = append(loop, n)
		at = n
	}
	return nil, false
}

func removeCollinear(m *pmesh, loop []int, scale float64) []int {
	if len(loop) <= 3 {
		return loop
	}
	eps := 1e-12 * scale * scale
	var out []int
	n := len(loop)
	for i := 0; i < n; i++ {
		a := m.verts[loop[(i-1+n)%n]]
		b := m.verts[loop[i]]
		c := m.verts[loop[(i+1)%n]]
		if b.Sub(a).Cross(c.Sub(b)).Len() > eps {
			out = append(out, loop[i])
		}
	}
	if len(out) < 3 {
		return loop
	}
	return out
}
