package polymesh

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/nanomesh/nanomesh/pkg/kernel"
)

// Boolean composition uses BSP-tree clipping over the triangulated faces
// of both solids. Both inputs must be closed; the result replaces the
// target entity's mesh and the other entity is left untouched.

const csgEps = 1e-5

// Boolean applies op between the target entity and other, storing the
// result in the target.
func (e *Engine) Boolean(h, other kernel.Handle, op kernel.BoolOp) error {
	ent, err := e.lookup(h)
	if err != nil {
		return err
	}
	oth, err := e.lookup(other)
	if err != nil {
		return err
	}
	if len(ent.m.faces) == 0 || len(oth.m.faces) == 0 {
		return errors.New("polymesh: boolean operand has no faces")
	}

	a := csgFromMesh(ent.m)
	b := csgFromMesh(oth.m)

	var out []csgPoly
	switch op {
	case kernel.BoolUnion:
		out = csgUnion(a, b)
	case kernel.BoolIntersect:
		out = csgIntersect(a, b)
	case kernel.BoolDifference:
		out = csgSubtract(a, b)
	default:
		return fmt.Errorf("polymesh: unknown boolean op %v", op)
	}

	ent.m = meshFromPolys(out)
	ent.sel = newSelection()
	return nil
}

type csgPlane struct {
	n mgl64.Vec3
	w float64
}

func planeFromPoints(a, b, c mgl64.Vec3) (csgPlane, bool) {
	n := b.Sub(a).Cross(c.Sub(a))
	l := n.Len()
	if l < 1e-15 {
		return csgPlane{}, false
	}
	n = n.Mul(1 / l)
	return csgPlane{n: n, w: n.Dot(a)}, true
}

func (p csgPlane) flip() csgPlane {
	return csgPlane{n: p.n.Mul(-1), w: -p.w}
}

type csgPoly struct {
	verts []mgl64.Vec3
	plane csgPlane
}

func (poly csgPoly) flip() csgPoly {
	n := len(poly.verts)
	rv := make([]mgl64.Vec3, n)
	for i, v := range poly.verts {
		rv[n-1-i] = v
	}
	return csgPoly{verts: rv, plane: poly.plane.flip()}
}

func flipAll(polys []csgPoly) []csgPoly {
	out := make([]csgPoly, len(polys))
	for i, p := range polys {
		out[i] = p.flip()
	}
	return out
}

// splitPolygon classifies poly against the plane and appends it to the
// coplanar, front or back buckets, splitting spanning polygons.
func (p csgPlane) splitPolygon(poly csgPoly, coFront, coBack, front, back *[]csgPoly) {
	const (
		coplanar = 0
		inFront  = 1
		behind   = 2
		spanning = 3
	)

	polyType := 0
	types := make([]int, len(poly.verts))
	for i, v := range poly.verts {
		t := coplanar
		d := p.n.Dot(v) - p.w
		if d < -csgEps {
			t = behind
		} else if d > csgEps {
			t = inFront
		}
		polyType |= t
		types[i] = t
	}

	switch polyType {
	case coplanar:
		if p.n.Dot(poly.plane.n) > 0 {
			*coFront = append(*coFront, poly)
		} else {
			*coBack = append(*coBack, poly)
		}
	case inFront:
		*front = append(*front, poly)
	case behind:
		*back = append(*back, poly)
	case spanning:
		var f, b []mgl64.Vec3
		n := len(poly.verts)
		for i := 0; i < n; i++ {
			j := (i + 1) % n
			ti, tj := types[i], types[j]
			vi, vj := poly.verts[i], poly.verts[j]
			if ti != behind {
				f = append(f, vi)
			}
			if ti != inFront {
				b = append(b, vi)
			}
			if (ti | tj) == spanning {
				t := (p.w - p.n.Dot(vi)) / p.n.Dot(vj.Sub(vi))
				v := vi.Add(vj.Sub(vi).Mul(t))
				f = append(f, v)
				b = append(b, v)
			}
		}
		if len(f) >= 3 {
			*front = append(*front, csgPoly{verts: f, plane: poly.plane})
		}
		if len(b) >= 3 {
			*back = append(*back, csgPoly{verts: b, plane: poly.plane})
		}
	}
}

// bspNode is one node of a solid's BSP tree.
type bspNode struct {
	plane       *csgPlane
	front, back *bspNode
	polys       []csgPoly
}

func (n *bspNode) build(polys []csgPoly) {
	if len(polys) == 0 {
		return
	}
	if n.plane == nil {
		pl := polys[0].plane
		n.plane = &pl
	}
	var front, back []csgPoly
	for _, p := range polys {
		n.plane.splitPolygon(p, &n.polys, &n.polys, &front, &back)
	}
	if len(front) > 0 {
		if n.front == nil {
			n.front = &bspNode{}
		}
		n.front.build(front)
	}
	if len(back) > 0 {
		if n.back == nil {
			n.back = &bspNode{}
		}
		n.back.build(back)
	}
}

func (n *bspNode) invert() {
	for i := range n.polys {
		n.polys[i] = n.polys[i].flip()
	}
	if n.plane != nil {
		pl := n.plane.flip()
		n.plane = &pl
	}
	if n.front != nil {
		n.front.invert()
	}
	if n.back != nil {
		n.back.invert()
	}
	n.front, n.back = n.back, n.front
}

// clipPolygons removes the parts of polys that are inside this node's
// solid.
func (n *bspNode) clipPolygons(polys []csgPoly) []csgPoly {
	if n.plane == nil {
		return append([]csgPoly(nil), polys...)
	}
	var front, back []csgPoly
	for _, p := range polys {
		n.plane.splitPolygon(p, &front, &back, &front, &back)
	}
	if n.front != nil {
		front = n.front.clipPolygons(front)
	}
	if n.back != nil {
		back = n.back.clipPolygons(back)
	} else {
		back = nil
	}
	return append(front, back...)
}

// clipTo removes the parts of this tree's polygons inside other's solid.
func (n *bspNode) clipTo(other *bspNode) {
	n.polys = other.clipPolygons(n.polys)
	if n.front != nil {
		n.front.clipTo(other)
	}
	if n.back != nil {
		n.back.clipTo(other)
	}
}

func (n *bspNode) allPolygons() []csgPoly {
	out := append([]csgPoly(nil), n.polys...)
	if n.front != nil {
		out = append(out, n.front.allPolygons()...)
	}
	if n.back != nil {
		out = append(out, n.back.allPolygons()...)
	}
	return out
}

func csgUnion(a, b []csgPoly) []csgPoly {
	ta, tb := &bspNode{}, &bspNode{}
	ta.build(a)
	tb.build(b)
	ta.clipTo(tb)
	tb.clipTo(ta)
	tb.invert()
	tb.clipTo(ta)
	tb.invert()
	ta.build(tb.allPolygons())
	return ta.allPolygons()
}

func csgSubtract(a, b []csgPoly) []csgPoly {
	ta, tb := &bspNode{}, &bspNode{}
	ta.build(a)
	tb.build(b)
	ta.invert()
	ta.clipTo(tb)
	tb.clipTo(ta)
	tb.invert()
	tb.clipTo(ta)
	tb.invert()
	ta.build(tb.allPolygons())
	ta.invert()
	return ta.allPolygons()
}

func csgIntersect(a, b []csgPoly) []csgPoly {
	ta, tb := &bspNode{}, &bspNode{}
	ta.build(a)
	tb.build(b)
	ta.invert()
	tb.clipTo(ta)
	tb.invert()
	ta.clipTo(tb)
	tb.clipTo(ta)
	ta.build(tb.allPolygons())
	ta.invert()
	return ta.allPolygons()
}

// csgFromMesh fan-triangulates the mesh faces into csg polygons.
func csgFromMesh(m *pmesh) []csgPoly {
	var out []csgPoly
	for _, f := range m.faces {
		for i := 1; i+1 < len(f); i++ {
			a := m.verts[f[0]]
			b := m.verts[f[i]]
			c := m.verts[f[i+1]]
			pl, ok := planeFromPoints(a, b, c)
			if !ok {
				continue
			}
			out = append(out, csgPoly{verts: []mgl64.Vec3{a, b, c}, plane: pl})
		}
	}
	return out
}

// meshFromPolys rebuilds a pmesh from csg output, merging vertices that
// round to the same coordinates at the clipping tolerance.
func meshFromPolys(polys []csgPoly) *pmesh {
	m := &pmesh{}
	index := make(map[[3]int64]int)
	vert := func(v mgl64.Vec3) int {
		k := [3]int64{
			int64(math.Round(v.X() / csgEps)),
			int64(math.Round(v.Y() / csgEps)),
			int64(math.Round(v.Z() / csgEps)),
		}
		if vi, ok := index[k]; ok {
			return vi
		}
		m.verts = append(m.verts, v)
		vi := len(m.verts) - 1
		index[k] = vi
		return vi
	}
	for _, p := range polys {
		f := make([]int, 0, len(p.verts))
		for _, v := range p.verts {
			vi := vert(v)
			if len(f) > 0 && f[len(f)-1] == vi {
				continue
			}
			f = append(f, vi)
		}
		for len(f) > 1 && f[0] == f[len(f)-1] {
			f = f[:len(f)-1]
		}
		if len(f) >= 3 {
			m.faces = append(m.faces, f)
		}
	}
	m.compact()
	return m
}
