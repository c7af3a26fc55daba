package polymesh

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/nanomesh/nanomesh/pkg/kernel"
)

// All object-mode transforms act about the entity's local origin and are
// baked into vertex coordinates immediately; there is no pending
// transform state to apply later.

// Translate moves every vertex by offset.
func (e *Engine) Translate(h kernel.Handle, offset mgl64.Vec3) error {
	ent, err := e.lookup(h)
	if err != nil {
		return err
	}
	for i := range ent.m.verts {
		ent.m.verts[i] = ent.m.verts[i].Add(offset)
	}
	return nil
}

// Rotate rotates every vertex by the quaternion about the origin. The
// quaternion is normalized before use.
func (e *Engine) Rotate(h kernel.Handle, q mgl64.Quat) error {
	ent, err := e.lookup(h)
	if err != nil {
		return err
	}
	q = q.Normalize()
	for i := range ent.m.verts {
		ent.m.verts[i] = q.Rotate(ent.m.verts[i])
	}
	return nil
}

// RotateEuler rotates by XYZ Euler angles in radians.
func (e *Engine) RotateEuler(h kernel.Handle, angles mgl64.Vec3) error {
	q := mgl64.AnglesToQuat(angles.X(), angles.Y(), angles.Z(), mgl64.XYZ)
	return e.Rotate(h, q)
}

// Scale multiplies every vertex by per-axis factors about the origin.
func (e *Engine) Scale(h kernel.Handle, factors mgl64.Vec3) error {
	ent, err := e.lookup(h)
	if err != nil {
		return err
	}
	for i := range ent.m.verts {
		v := ent.m.verts[i]
		ent.m.verts[i] = mgl64.Vec3{v.X() * factors.X(), v.Y() * factors.Y(), v.Z() * factors.Z()}
	}
	return nil
}
