// Package kernel defines the abstract mesh-engine interface the shape
// construction and scene composition layers are written against.
// Implementations (polymesh) provide primitive creation, destructive
// baked transforms, scoped edit selection, bevel/boolean modifiers and
// mesh interchange behind this interface. The abstraction allows
// swapping engines without changing the rest of the system.
package kernel

import (
	"errors"

	"github.com/go-gl/mathgl/mgl64"
)

// ErrDeleted is returned when an operation touches an entity that has
// already been deleted. Per the resource model this is fatal for the
// caller; no recovery is attempted anywhere in the library.
var ErrDeleted = errors.New("kernel: entity has been deleted")

// BoolOp selects a boolean (CSG) modifier operation.
type BoolOp int

const (
	BoolIntersect BoolOp = iota
	BoolDifference
	BoolUnion
)

// String returns the operation name.
func (op BoolOp) String() string {
	switch op {
	case BoolIntersect:
		return "intersect"
	case BoolDifference:
		return "difference"
	case BoolUnion:
		return "union"
	}
	return "unknown"
}

// OffsetMode selects how a bevel amount is interpreted.
type OffsetMode int

const (
	// OffsetPercent interprets the amount as a percentage (0-100) of the
	// length of the edges adjacent to each beveled edge.
	OffsetPercent OffsetMode = iota
	// OffsetWidth interprets the amount as an absolute width.
	OffsetWidth
)

// BevelOptions parameterizes a bevel modifier. The zero value is not
// useful; callers always set Amount and usually Segments.
type BevelOptions struct {
	Mode     OffsetMode
	Amount   float64 // percent (0-100) for OffsetPercent, width for OffsetWidth
	Segments int     // chamfer subdivision count; <=1 means a flat chamfer
	// AffectVertices bevels the selected vertices instead of the
	// selected edges (corner truncation).
	AffectVertices bool
}

// Handle is an opaque reference to one mesh entity owned by an Engine.
type Handle interface {
	// ID returns a stable identifier for the entity, unique within the
	// engine for its lifetime.
	ID() string
}

// VertexPredicate classifies a vertex by its position.
type VertexPredicate func(p mgl64.Vec3) bool

// EdgePredicate classifies an edge by its endpoint positions.
type EdgePredicate func(a, b mgl64.Vec3) bool

// EditScope is a scoped handle to an entity's edit-mode selection state.
// Selections made through a scope are private to the entity; End restores
// whatever selection existed before the scope was opened, on every exit
// path. Operations act on the current selection and are baked immediately.
type EditScope interface {
	SelectAllVertices()
	SelectAllEdges()
	DeselectAll()
	SelectVertices(pred VertexPredicate)
	SelectEdges(pred EdgePredicate)

	// Extrude duplicates the selected vertex region, moves the duplicates
	// by offset and stitches side walls along the region boundary. The
	// selection moves to the extruded vertices.
	Extrude(offset mgl64.Vec3) error
	// TranslateSelection moves the selected vertices by offset.
	TranslateSelection(offset mgl64.Vec3) error
	// ResizeSelection scales the selected vertices about their median
	// point by per-axis factors. A zero factor collapses that axis.
	ResizeSelection(factors mgl64.Vec3) error
	// Bevel applies a bevel modifier to the selected edges (or vertices,
	// per opts) and commits it.
	Bevel(opts BevelOptions) error
	// Weld merges duplicate vertices within the selection.
	Weld() error

	// End closes the scope and restores the prior selection.
	End()
}

// Engine is the mesh-engine capability contract. All transforms are
// destructive: they are baked into vertex coordinates immediately and the
// entity's local transform state is always identity. Implementations are
// not required to be safe for concurrent use; the whole pipeline is
// single-threaded by design.
type Engine interface {
	// Primitive creation. Implementations panic if the engine cannot
	// construct a primitive from valid arguments; invalid arguments
	// (non-positive radius, sides < 3) return an error.
	Icosphere(subdivisions int, radius float64) (Handle, error)
	Cube(size float64) (Handle, error)
	Cylinder(sides int, radius, depth float64) (Handle, error)
	Circle(sides int, radius float64) (Handle, error)

	// Baked transforms about the entity's local origin.
	Translate(h Handle, offset mgl64.Vec3) error
	Rotate(h Handle, q mgl64.Quat) error
	RotateEuler(h Handle, angles mgl64.Vec3) error
	Scale(h Handle, factors mgl64.Vec3) error

	// Passive measurement.
	Vertices(h Handle) ([]mgl64.Vec3, error)
	Edges(h Handle) ([][2]int, error)
	BoundingBox(h Handle) (min, max mgl64.Vec3, err error)

	// Edit opens a scoped selection on the entity.
	Edit(h Handle) (EditScope, error)

	// Boolean applies op against other and commits the result into h.
	// The other entity is left untouched.
	Boolean(h Handle, other Handle, op BoolOp) error

	// Weld merges duplicate vertices across the whole entity.
	Weld(h Handle) error

	Duplicate(h Handle) (Handle, error)
	Delete(h Handle) error

	// ToMesh converts the entity to an interchange mesh.
	ToMesh(h Handle) (*Mesh, error)
}
