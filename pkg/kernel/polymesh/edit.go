package polymesh

import (
	"errors"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/nanomesh/nanomesh/pkg/kernel"
)

// editScope implements kernel.EditScope. It captures the selection state
// at open time and restores it on End, so recipe steps can never leak
// selection into each other.
type editScope struct {
	e     *Engine
	ent   *entity
	saved selection
	ended bool
}

// Edit opens a scoped selection on the entity.
func (e *Engine) Edit(h kernel.Handle) (kernel.EditScope, error) {
	ent, err := e.lookup(h)
	if err != nil {
		return nil, err
	}
	return &editScope{e: e, ent: ent, saved: ent.sel.clone()}, nil
}

// End restores the selection captured when the scope was opened. Indices
// invalidated by topology changes inside the scope are dropped.
func (s *editScope) End() {
	if s.ended {
		return
	}
	s.ended = true
	restored := newSelection()
	n := len(s.ent.m.verts)
	for vi := range s.saved.verts {
		if vi < n {
			restored.verts[vi] = struct{}{}
		}
	}
	for ek := range s.saved.edges {
		if ek[0] < n && ek[1] < n {
			restored.edges[ek] = struct{}{}
		}
	}
	s.ent.sel = restored
}

func (s *editScope) SelectAllVertices() {
	for i := range s.ent.m.verts {
		s.ent.sel.verts[i] = struct{}{}
	}
}

func (s *editScope) SelectAllEdges() {
	for _, ek := range s.ent.m.edges() {
		s.ent.sel.edges[ek] = struct{}{}
	}
}

func (s *editScope) DeselectAll() {
	s.ent.sel = newSelection()
}

// SelectVertices switches to vertex selection and selects vertices
// matching the predicate.
func (s *editScope) SelectVertices(pred kernel.VertexPredicate) {
	s.ent.sel = newSelection()
	for i, v := range s.ent.m.verts {
		if pred(v) {
			s.ent.sel.verts[i] = struct{}{}
		}
	}
}

// SelectEdges switches to edge selection and selects edges matching the
// predicate over their endpoint positions.
func (s *editScope) SelectEdges(pred kernel.EdgePredicate) {
	s.ent.sel = newSelection()
	for _, ek := range s.ent.m.edges() {
		if pred(s.ent.m.verts[ek[0]], s.ent.m.verts[ek[1]]) {
			s.ent.sel.edges[ek] = struct{}{}
		}
	}
}

// selectionMedian returns the average position of the selected vertices.
func (s *editScope) selectionMedian() mgl64.Vec3 {
	var c mgl64.Vec3
	if len(s.ent.sel.verts) == 0 {
		return c
	}
	for vi := range s.ent.sel.verts {
		c = c.Add(s.ent.m.verts[vi])
	}
	return c.Mul(1.0 / float64(len(s.ent.sel.verts)))
}

// TranslateSelection moves the selected vertices by offset.
func (s *editScope) TranslateSelection(offset mgl64.Vec3) error {
	for vi := range s.ent.sel.verts {
		s.ent.m.verts[vi] = s.ent.m.verts[vi].Add(offset)
	}
	return nil
}

// ResizeSelection scales the selected vertices about their median point.
func (s *editScope) ResizeSelection(factors mgl64.Vec3) error {
	median := s.selectionMedian()
	for vi := range s.ent.sel.verts {
		d := s.ent.m.verts[vi].Sub(median)
		s.ent.m.verts[vi] = median.Add(mgl64.Vec3{
			d.X() * factors.X(),
			d.Y() * factors.Y(),
			d.Z() * factors.Z(),
		})
	}
	return nil
}

// Extrude duplicates the selected vertex region, translates the
// duplicates by offset and stitches walls along the region boundary:
// faces whose vertices are all selected move to the duplicates, boundary
// edges (and face-less wire edges) gain a side quad. The selection moves
// to the extruded vertices.
func (s *editScope) Extrude(offset mgl64.Vec3) error {
	m := s.ent.m
	sel := s.ent.sel.verts
	if len(sel) == 0 {
		return errors.New("polymesh: extrude with empty selection")
	}

	dup := make(map[int]int, len(sel))
	for vi := range sel {
		m.verts = append(m.verts, m.verts[vi].Add(offset))
		dup[vi] = len(m.verts) - 1
	}

	fullySelected := func(f []int) bool {
		for _, vi := range f {
			if _, ok := sel[vi]; !ok {
				return false
			}
		}
		return true
	}

	// Boundary walls. For each edge with both endpoints selected, decide
	// the wall winding from the face it was seen in: a fully selected
	// face contributes the edge in its own (outward) direction, a partly
	// selected face contributes it reversed.
	type wallEdge struct {
		a, b     int
		fromFull bool
	}
	walls := make(map[[2]int]wallEdge)
	edgeFaceCount := make(map[[2]int]int)
	fullCount := make(map[[2]int]int)
	for _, f := range m.faces {
		full := fullySelected(f)
		for i := range f {
			a, b := f[i], f[(i+1)%len(f)]
			k := edgeKey(a, b)
			edgeFaceCount[k]++
			if full {
				fullCount[k]++
			}
			_, selA := sel[a]
			_, selB := sel[b]
			if !selA || !selB {
				continue
			}
			if w, ok := walls[k]; !ok || (full && !w.fromFull) {
				walls[k] = wallEdge{a: a, b: b, fromFull: full}
			}
		}
	}

	for _, f := range m.faces {
		if fullySelected(f) {
			for i, vi := range f {
				f[i] = dup[vi]
			}
		}
	}

	for k, w := range walls {
		// Interior edges of the moved region need no wall.
		if fullCount[k] == edgeFaceCount[k] {
			continue
		}
		if w.fromFull {
			m.faces = append(m.faces, []int{w.a, w.b, dup[w.b], dup[w.a]})
		} else {
			m.faces = append(m.faces, []int{w.b, w.a, dup[w.a], dup[w.b]})
		}
	}

	// Face-less wire edges extrude into walls as well.
	for _, wk := range m.wires {
		_, selA := sel[wk[0]]
		_, selB := sel[wk[1]]
		if !selA || !selB {
			continue
		}
		if edgeFaceCount[edgeKey(wk[0], wk[1])] > 0 {
			continue
		}
		m.faces = append(m.faces, []int{wk[0], wk[1], dup[wk[1]], dup[wk[0]]})
	}

	next := newSelection()
	for _, ni := range dup {
		next.verts[ni] = struct{}{}
	}
	s.ent.sel = next
	return nil
}

// Bevel applies a bevel to the current edge (or vertex) selection.
func (s *editScope) Bevel(opts kernel.BevelOptions) error {
	return bevelEntity(s.ent, opts)
}

// Weld merges duplicate vertices within the current selection.
func (s *editScope) Weld() error {
	only := s.ent.sel.verts
	if len(only) == 0 {
		only = nil // empty selection welds everything, as the recipes expect
	}
	weld(s.ent.m, s.e.weldDist, only)
	s.ent.sel = newSelection()
	return nil
}
