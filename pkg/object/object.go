// Package object wraps a kernel entity with the particle-level operations
// the shape recipes and scene composition are written against: measured
// dimensions, baked transforms, boolean composition and edge smoothing.
package object

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/nanomesh/nanomesh/pkg/kernel"
)

// Object is a live mesh entity owned by an engine. All transforms are
// baked into vertex coordinates; positions are always reported in world
// space.
type Object struct {
	eng kernel.Engine
	h   kernel.Handle
}

// Wrap adopts an existing entity.
func Wrap(eng kernel.Engine, h kernel.Handle) *Object {
	return &Object{eng: eng, h: h}
}

// Handle returns the underlying kernel handle.
func (o *Object) Handle() kernel.Handle { return o.h }

// Engine returns the owning engine.
func (o *Object) Engine() kernel.Engine { return o.eng }

// Dimensions returns the axis-aligned bounding box extents.
func (o *Object) Dimensions() (mgl64.Vec3, error) {
	min, max, err := o.eng.BoundingBox(o.h)
	if err != nil {
		return mgl64.Vec3{}, err
	}
	return max.Sub(min), nil
}

// Location returns the bounding box center.
func (o *Object) Location() (mgl64.Vec3, error) {
	min, max, err := o.eng.BoundingBox(o.h)
	if err != nil {
		return mgl64.Vec3{}, err
	}
	return min.Add(max).Mul(0.5), nil
}

// MaxDimension returns the largest bounding box extent.
func (o *Object) MaxDimension() (float64, error) {
	d, err := o.Dimensions()
	if err != nil {
		return 0, err
	}
	return math.Max(d.X(), math.Max(d.Y(), d.Z())), nil
}

// EnclosingSphereDiameter returns twice the largest vertex distance from
// the bounding box center. Size normalization for the polyhedral shapes
// is defined against this measure rather than the box extents.
func (o *Object) EnclosingSphereDiameter() (float64, error) {
	loc, err := o.Location()
	if err != nil {
		return 0, err
	}
	verts, err := o.eng.Vertices(o.h)
	if err != nil {
		return 0, err
	}
	var r float64
	for _, v := range verts {
		r = math.Max(r, v.Sub(loc).Len())
	}
	return 2 * r, nil
}

// Vertices returns the vertex positions.
func (o *Object) Vertices() ([]mgl64.Vec3, error) {
	return o.eng.Vertices(o.h)
}

// Translate shifts the object by offset.
func (o *Object) Translate(offset mgl64.Vec3) error {
	return o.eng.Translate(o.h, offset)
}

// Rotate rotates the object by a quaternion about the world origin.
func (o *Object) Rotate(q mgl64.Quat) error {
	return o.eng.Rotate(o.h, q)
}

// RotateEuler rotates by XYZ Euler angles in radians.
func (o *Object) RotateEuler(angles mgl64.Vec3) error {
	return o.eng.RotateEuler(o.h, angles)
}

// Scale scales per-axis about the world origin.
func (o *Object) Scale(factors mgl64.Vec3) error {
	return o.eng.Scale(o.h, factors)
}

// ScaleUniform scales all axes by the same factor.
func (o *Object) ScaleUniform(factor float64) error {
	return o.Scale(mgl64.Vec3{factor, factor, factor})
}

// Copy duplicates the object within the same engine.
func (o *Object) Copy() (*Object, error) {
	h, err := o.eng.Duplicate(o.h)
	if err != nil {
		return nil, err
	}
	return &Object{eng: o.eng, h: h}, nil
}

// Delete destroys the object.
func (o *Object) Delete() error {
	return o.eng.Delete(o.h)
}

// ApplyBoolean replaces the object's geometry with the result of a
// boolean operation against other, which is left unchanged.
func (o *Object) ApplyBoolean(other *Object, op kernel.BoolOp) error {
	if err := o.eng.Boolean(o.h, other.h, op); err != nil {
		return fmt.Errorf("object: %s failed: %w", op, err)
	}
	return nil
}

// Weld merges duplicate vertices across the whole object.
func (o *Object) Weld() error {
	return o.eng.Weld(o.h)
}

// SmoothEdges rounds every edge with a bevel of width degree times the
// largest dimension, split into segments facets. Widths below eps are
// skipped so zero-degree recipes stay exact no-ops.
func (o *Object) SmoothEdges(degree float64, segments int, eps float64) error {
	maxDim, err := o.MaxDimension()
	if err != nil {
		return err
	}
	width := degree * maxDim
	if width < eps {
		return nil
	}
	scope, err := o.eng.Edit(o.h)
	if err != nil {
		return err
	}
	defer scope.End()
	scope.SelectAllEdges()
	return scope.Bevel(kernel.BevelOptions{
		Mode:     kernel.OffsetWidth,
		Amount:   width,
		Segments: segments,
	})
}

// Mesh extracts the interchange mesh under the given name.
func (o *Object) Mesh(name string) (*kernel.Mesh, error) {
	m, err := o.eng.ToMesh(o.h)
	if err != nil {
		return nil, err
	}
	m.Name = name
	return m, nil
}
