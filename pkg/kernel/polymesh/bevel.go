package polymesh

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/nanomesh/nanomesh/pkg/kernel"
)

// Bevels are implemented for convex solids as in-plane clipping followed
// by convex-hull reconstruction. Each face is shrunk by slide lines: a
// beveled edge slides along the adjacent face edges by the offset, a
// corner incident to a beveled edge outside the face is chamfered by a
// corner-cut line. The hull of the clipped faces closes over the removed
// material with chamfer and vertex facets.
//
// Percent offsets reproduce the engine offsets the recipes are calibrated
// against: triangle faces collapse at 33.3%, quads at 50%, so a full cube
// bevel collapses every face to its center and welds into an octahedron.

// bevelEntity applies a committed bevel to the entity's selection.
func bevelEntity(ent *entity, opts kernel.BevelOptions) error {
	m := ent.m
	if len(m.faces) == 0 {
		return errors.New("polymesh: bevel on entity without faces")
	}
	if opts.Amount <= 0 {
		return nil
	}

	var cloud []mgl64.Vec3
	if opts.AffectVertices {
		if len(ent.sel.verts) == 0 {
			return nil
		}
		cloud = vertexBevelCloud(m, ent.sel.verts, opts)
	} else {
		if len(ent.sel.edges) == 0 {
			return nil
		}
		cloud = edgeBevelCloud(m, ent.sel.edges, opts)
	}

	hull, err := convexHull(cloud)
	if err != nil {
		return fmt.Errorf("polymesh: bevel reconstruction: %w", err)
	}
	mergeCoplanar(hull)
	ent.m = hull
	ent.sel = newSelection()
	return nil
}

// clipLine is an in-plane half-plane constraint: keep points p with
// (p - point)·inward >= -eps.
type clipLine struct {
	point  mgl64.Vec3
	inward mgl64.Vec3
}

// newClipLine builds the constraint through a and b within the plane of
// normal n, oriented to discard the side containing removed.
func newClipLine(a, b, n, removed mgl64.Vec3) (clipLine, bool) {
	dir := b.Sub(a)
	if dir.Len() < 1e-15 {
		return clipLine{}, false
	}
	inward := n.Cross(dir).Normalize()
	if removed.Sub(a).Dot(inward) > 0 {
		inward = inward.Mul(-1)
	}
	return clipLine{point: a, inward: inward}, true
}

// slideToward moves v toward u by the bevel offset: a fraction of |u-v|
// in percent mode, an absolute distance in width mode. Slides are
// clamped at half the edge so opposing bevels cannot cross; clipping
// degenerate faces to their centroid handles full collapse.
func slideToward(v, u mgl64.Vec3, opts kernel.BevelOptions) mgl64.Vec3 {
	d := u.Sub(v)
	l := d.Len()
	if l < 1e-15 {
		return v
	}
	var s float64
	switch opts.Mode {
	case kernel.OffsetPercent:
		s = math.Min(opts.Amount/100, 0.5) * l
	default:
		s = math.Min(opts.Amount, 0.5*l)
	}
	return v.Add(d.Mul(s / l))
}

// clipPoly clips a convex planar polygon by a half-plane constraint.
func clipPoly(poly []mgl64.Vec3, ln clipLine, eps float64) []mgl64.Vec3 {
	var out []mgl64.Vec3
	n := len(poly)
	for i := 0; i < n; i++ {
		cur := poly[i]
		next := poly[(i+1)%n]
		dc := cur.Sub(ln.point).Dot(ln.inward)
		dn := next.Sub(ln.point).Dot(ln.inward)
		if dc >= -eps {
			out = append(out, cur)
		}
		if (dc > eps && dn < -eps) || (dc < -eps && dn > eps) {
			t := dc / (dc - dn)
			out = append(out, cur.Add(next.Sub(cur).Mul(t)))
		}
	}
	return out
}

// polyArea returns the area of a planar polygon.
func polyArea(poly []mgl64.Vec3) float64 {
	if len(poly) < 3 {
		return 0
	}
	var n mgl64.Vec3
	for i := 1; i+1 < len(poly); i++ {
		n = n.Add(poly[i].Sub(poly[0]).Cross(poly[i+1].Sub(poly[0])))
	}
	return n.Len() / 2
}

// edgeBevelCloud produces the clipped-face point cloud for an edge bevel.
func edgeBevelCloud(m *pmesh, selE map[[2]int]struct{}, opts kernel.BevelOptions) []mgl64.Vec3 {
	scale := m.maxExtent()
	eps := 1e-12 * scale
	areaEps := 1e-12 * scale * scale

	touched := make(map[int]struct{})
	for ek := range selE {
		touched[ek[0]] = struct{}{}
		touched[ek[1]] = struct{}{}
	}

	var cloud []mgl64.Vec3
	for fi, f := range m.faces {
		n := m.faceNormal(fi)
		centroid := m.faceCentroid(fi)
		nf := len(f)

		poly := make([]mgl64.Vec3, nf)
		for i, vi := range f {
			poly[i] = m.verts[vi]
		}

		var lines []clipLine
		selectedAt := make([]bool, nf) // face edge i = (f[i], f[i+1]) selected

		for i := 0; i < nf; i++ {
			a, b := f[i], f[(i+1)%nf]
			if _, ok := selE[edgeKey(a, b)]; !ok {
				continue
			}
			selectedAt[i] = true
			va, vb := m.verts[a], m.verts[b]
			prev := m.verts[f[(i-1+nf)%nf]]
			next := m.verts[f[(i+2)%nf]]
			pa := slideToward(va, prev, opts)
			pb := slideToward(vb, next, opts)
			if ln, ok := newClipLine(pa, pb, n, va.Add(vb).Mul(0.5)); ok {
				lines = append(lines, ln)
			}
		}

		// Corner cuts: vertex touched by a selected edge outside this
		// face, with neither of the face's own edges at the corner
		// selected.
		for i := 0; i < nf; i++ {
			vi := f[i]
			if _, ok := touched[vi]; !ok {
				continue
			}
			if selectedAt[i] || selectedAt[(i-1+nf)%nf] {
				continue
			}
			v := m.verts[vi]
			prev := m.verts[f[(i-1+nf)%nf]]
			next := m.verts[f[(i+1)%nf]]
			pa := slideToward(v, prev, opts)
			pb := slideToward(v, next, opts)
			if ln, ok := newClipLine(pa, pb, n, v); ok {
				lines = append(lines, ln)
			}
		}

		for _, ln := range lines {
			poly = clipPoly(poly, ln, eps)
		}
		if len(poly) < 3 || polyArea(poly) < areaEps {
			cloud = append(cloud, centroid)
		} else {
			cloud = append(cloud, poly...)
		}
	}

	if opts.Segments > 1 && opts.Mode == kernel.OffsetWidth {
		cloud = append(cloud, roundingArcs(m, selE, opts)...)
	}
	return cloud
}

// roundingArcs generates intermediate points between the two slide lines
// of each beveled edge, rotated about the edge endpoints, so the hull
// approximates a rounded chamfer with opts.Segments facets.
func roundingArcs(m *pmesh, selE map[[2]int]struct{}, opts kernel.BevelOptions) []mgl64.Vec3 {
	ef := m.edgeFaces()
	var out []mgl64.Vec3

	neighborIn := func(fi, at, other int) (mgl64.Vec3, bool) {
		f := m.faces[fi]
		for i, vi := range f {
			if vi != at {
				continue
			}
			prev := f[(i-1+len(f))%len(f)]
			next := f[(i+1)%len(f)]
			if prev != other {
				return m.verts[prev], true
			}
			if next != other {
				return m.verts[next], true
			}
		}
		return mgl64.Vec3{}, false
	}

	arc := func(v, p1, p2 mgl64.Vec3) {
		u1 := p1.Sub(v)
		u2 := p2.Sub(v)
		l1, l2 := u1.Len(), u2.Len()
		if l1 < 1e-15 || l2 < 1e-15 {
			return
		}
		if u1.Normalize().Dot(u2.Normalize()) > 1-1e-12 {
			return // nearly parallel, nothing to round
		}
		rot := mgl64.QuatBetweenVectors(u1, u2)
		for k := 1; k < opts.Segments; k++ {
			t := float64(k) / float64(opts.Segments)
			q := mgl64.QuatSlerp(mgl64.QuatIdent(), rot, t)
			dir := q.Rotate(u1)
			if l := dir.Len(); l > 1e-15 {
				dir = dir.Mul((l1 + (l2-l1)*t) / l)
			}
			out = append(out, v.Add(dir))
		}
	}

	for ek := range selE {
		faces := ef[ek]
		if len(faces) != 2 {
			continue
		}
		for _, pair := range [][2]int{{ek[0], ek[1]}, {ek[1], ek[0]}} {
			at, other := pair[0], pair[1]
			n1, ok1 := neighborIn(faces[0], at, other)
			n2, ok2 := neighborIn(faces[1], at, other)
			if !ok1 || !ok2 {
				continue
			}
			v := m.verts[at]
			arc(v, slideToward(v, n1, opts), slideToward(v, n2, opts))
		}
	}
	return out
}

// vertexBevelCloud produces the clipped-face point cloud for a
// vertices-only bevel (corner truncation, single segment).
func vertexBevelCloud(m *pmesh, selV map[int]struct{}, opts kernel.BevelOptions) []mgl64.Vec3 {
	scale := m.maxExtent()
	eps := 1e-12 * scale
	areaEps := 1e-12 * scale * scale

	var cloud []mgl64.Vec3
	for fi, f := range m.faces {
		n := m.faceNormal(fi)
		centroid := m.faceCentroid(fi)
		nf := len(f)

		poly := make([]mgl64.Vec3, nf)
		for i, vi := range f {
			poly[i] = m.verts[vi]
		}

		var lines []clipLine
		for i := 0; i < nf; i++ {
			vi := f[i]
			if _, ok := selV[vi]; !ok {
				continue
			}
			v := m.verts[vi]
			prev := m.verts[f[(i-1+nf)%nf]]
			next := m.verts[f[(i+1)%nf]]
			pa := slideToward(v, prev, opts)
			pb := slideToward(v, next, opts)
			if ln, ok := newClipLine(pa, pb, n, v); ok {
				lines = append(lines, ln)
			}
		}

		for _, ln := range lines {
			poly = clipPoly(poly, ln, eps)
		}
		if len(poly) < 3 || polyArea(poly) < areaEps {
			cloud = append(cloud, centroid)
		} else {
			cloud = append(cloud, poly...)
		}
	}
	return cloud
}
