// Package polymesh implements the kernel.Engine interface on an explicit
// polygon-mesh representation. It supports the full editing surface the
// shape recipes require: predicate selection, region extrusion, convex
// bevels, BSP boolean composition and duplicate-vertex welding.
//
// Bevel and boolean semantics are defined for the convex solids the
// recipes produce; feeding strongly non-convex geometry through a bevel
// gives its convex closure.
package polymesh

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/nanomesh/nanomesh/pkg/kernel"
)

// Compile-time interface check.
var _ kernel.Engine = (*Engine)(nil)

// defaultWeldDistance matches the legacy remove-doubles merge distance.
const defaultWeldDistance = 1e-4

// Engine implements kernel.Engine. It owns all live entities; entities
// are destroyed explicitly via Delete. Not safe for concurrent use.
type Engine struct {
	entities map[uuid.UUID]*entity
	weldDist float64
}

// Option configures an Engine.
type Option func(*Engine)

// WithWeldDistance overrides the merge distance used by Weld.
func WithWeldDistance(d float64) Option {
	return func(e *Engine) { e.weldDist = d }
}

// New returns an empty Engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		entities: make(map[uuid.UUID]*entity),
		weldDist: defaultWeldDistance,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// entity is one live mesh object plus its edit selection state.
type entity struct {
	id  uuid.UUID
	m   *pmesh
	sel selection
}

// selection holds the per-entity edit selection.
type selection struct {
	verts map[int]struct{}
	edges map[[2]int]struct{}
}

func newSelection() selection {
	return selection{
		verts: make(map[int]struct{}),
		edges: make(map[[2]int]struct{}),
	}
}

func (s selection) clone() selection {
	c := newSelection()
	for k := range s.verts {
		c.verts[k] = struct{}{}
	}
	for k := range s.edges {
		c.edges[k] = struct{}{}
	}
	return c
}

// handle is the opaque entity reference returned to callers.
type handle struct {
	id uuid.UUID
}

func (h handle) ID() string { return h.id.String() }

// register stores a new entity and returns its handle.
func (e *Engine) register(m *pmesh) kernel.Handle {
	ent := &entity{id: uuid.New(), m: m, sel: newSelection()}
	e.entities[ent.id] = ent
	return handle{id: ent.id}
}

// lookup resolves a handle, failing on deleted or foreign entities.
func (e *Engine) lookup(h kernel.Handle) (*entity, error) {
	hd, ok := h.(handle)
	if !ok {
		return nil, fmt.Errorf("polymesh: foreign handle %T", h)
	}
	ent, ok := e.entities[hd.id]
	if !ok {
		return nil, kernel.ErrDeleted
	}
	return ent, nil
}

// Vertices returns a copy of the entity's vertex positions.
func (e *Engine) Vertices(h kernel.Handle) ([]mgl64.Vec3, error) {
	ent, err := e.lookup(h)
	if err != nil {
		return nil, err
	}
	out := make([]mgl64.Vec3, len(ent.m.verts))
	copy(out, ent.m.verts)
	return out, nil
}

// Edges returns the entity's undirected edge list as vertex index pairs.
func (e *Engine) Edges(h kernel.Handle) ([][2]int, error) {
	ent, err := e.lookup(h)
	if err != nil {
		return nil, err
	}
	return ent.m.edges(), nil
}

// BoundingBox returns the axis-aligned bounding box in the local frame.
func (e *Engine) BoundingBox(h kernel.Handle) (min, max mgl64.Vec3, err error) {
	ent, err := e.lookup(h)
	if err != nil {
		return mgl64.Vec3{}, mgl64.Vec3{}, err
	}
	min, max = ent.m.boundingBox()
	return min, max, nil
}

// Duplicate deep-copies the entity. The copy starts with an empty
// selection.
func (e *Engine) Duplicate(h kernel.Handle) (kernel.Handle, error) {
	ent, err := e.lookup(h)
	if err != nil {
		return nil, err
	}
	return e.register(ent.m.clone()), nil
}

// Delete destroys the entity. Further access through any handle to it
// fails with kernel.ErrDeleted.
func (e *Engine) Delete(h kernel.Handle) error {
	ent, err := e.lookup(h)
	if err != nil {
		return err
	}
	delete(e.entities, ent.id)
	return nil
}

// Weld merges duplicate vertices across the whole entity.
func (e *Engine) Weld(h kernel.Handle) error {
	ent, err := e.lookup(h)
	if err != nil {
		return err
	}
	weld(ent.m, e.weldDist, nil)
	ent.sel = newSelection()
	return nil
}

// ToMesh converts the entity to the interchange representation.
func (e *Engine) ToMesh(h kernel.Handle) (*kernel.Mesh, error) {
	ent, err := e.lookup(h)
	if err != nil {
		return nil, err
	}
	m := &kernel.Mesh{
		Points: make([]float64, 0, len(ent.m.verts)*3),
		Polys:  make([][]int, len(ent.m.faces)),
	}
	for _, v := range ent.m.verts {
		m.Points = append(m.Points, v.X(), v.Y(), v.Z())
	}
	for i, f := range ent.m.faces {
		m.Polys[i] = append([]int(nil), f...)
	}
	return m, nil
}
