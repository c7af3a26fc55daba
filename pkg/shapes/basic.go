package shapes

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/nanomesh/nanomesh/pkg/kernel"
	"github.com/nanomesh/nanomesh/pkg/object"
)

// Base constructions shared by the family builders. Each returns a live
// object centered at the origin; the family builders normalize size
// afterwards.

// ellipsoid is an icosphere of unit diameter scaled to the given
// dimensions.
func (b *Builder) ellipsoid(dims mgl64.Vec3) (*object.Object, error) {
	h, err := b.eng.Icosphere(b.sphereSubdivisions, 0.5)
	if err != nil {
		return nil, err
	}
	o := object.Wrap(b.eng, h)
	if err := o.Scale(dims); err != nil {
		return nil, err
	}
	return o, nil
}

// box is a unit cube scaled to the given dimensions.
func (b *Builder) box(dims mgl64.Vec3) (*object.Object, error) {
	h, err := b.eng.Cube(1.0)
	if err != nil {
		return nil, err
	}
	o := object.Wrap(b.eng, h)
	if err := o.Scale(dims); err != nil {
		return nil, err
	}
	return o, nil
}

// cappedCylinder is a sphere of the given diameter pulled apart along z:
// the upper hemisphere (equator included) extrudes upward by half the
// middle section height and the lower half translates down to match,
// leaving a cylindrical wall between two hemispherical caps.
func (b *Builder) cappedCylinder(diameter, middleHeight float64) (*object.Object, error) {
	o, err := b.ellipsoid(mgl64.Vec3{diameter, diameter, diameter})
	if err != nil {
		return nil, err
	}
	scope, err := b.eng.Edit(o.Handle())
	if err != nil {
		return nil, err
	}
	scope.SelectVertices(func(p mgl64.Vec3) bool { return p.Z() > -b.eps })
	if err := scope.Extrude(mgl64.Vec3{0, 0, middleHeight / 2}); err != nil {
		scope.End()
		return nil, err
	}
	scope.SelectVertices(func(p mgl64.Vec3) bool { return p.Z() < b.eps })
	if err := scope.TranslateSelection(mgl64.Vec3{0, 0, -middleHeight / 2}); err != nil {
		scope.End()
		return nil, err
	}
	scope.End()
	// Drops the vertices orphaned by the region extrusion.
	if err := o.Weld(); err != nil {
		return nil, err
	}
	return o, nil
}

// octahedron is a fully beveled cube: a 100% percent bevel collapses
// every face to its center, and welding the collapse yields the six
// octahedron vertices. A positive truncation applies a second percent
// bevel; octahedron edges meet at a 33.3% offset, so the truncation
// degree maps to a third of the full percentage.
func (b *Builder) octahedron(size, truncation float64) (*object.Object, error) {
	h, err := b.eng.Cube(1.0)
	if err != nil {
		return nil, err
	}
	o := object.Wrap(b.eng, h)

	if err := b.bevelAllEdges(o, kernel.BevelOptions{
		Mode: kernel.OffsetPercent, Amount: 100, Segments: 1,
	}); err != nil {
		return nil, err
	}

	if truncation > 0 {
		if err := b.bevelAllEdges(o, kernel.BevelOptions{
			Mode: kernel.OffsetPercent, Amount: 100 * truncation / 3, Segments: 1,
		}); err != nil {
			return nil, err
		}
	}

	d, err := o.EnclosingSphereDiameter()
	if err != nil {
		return nil, err
	}
	if err := o.ScaleUniform(size / d); err != nil {
		return nil, err
	}
	return o, nil
}

// prism is an n-sided cylinder with optional truncation of its vertical
// edges and separate smoothing of the vertical and horizontal edge sets;
// flat particles are strongly anisotropic, so one smoothing width cannot
// serve both. The size measure is the enclosing cylinder diameter,
// restored after the bevels as hypot of the planar dimensions.
func (b *Builder) prism(nSides int, size, height, truncation, tipSmoothing, edgeSmoothing float64) (*object.Object, error) {
	h, err := b.eng.Cylinder(nSides, size/2, height)
	if err != nil {
		return nil, err
	}
	o := object.Wrap(b.eng, h)

	vertical := func(a, p mgl64.Vec3) bool {
		return math.Abs(a.X()-p.X()) < b.eps && math.Abs(a.Y()-p.Y()) < b.eps
	}

	if truncation > 0 {
		// Prism edges meet at a 50% offset.
		err := b.bevelEdges(o, vertical, kernel.BevelOptions{
			Mode: kernel.OffsetPercent, Amount: 100 * truncation * 0.5, Segments: 1,
		})
		if err != nil {
			return nil, err
		}
	}

	if tipSmoothing > 0 {
		dims, err := o.Dimensions()
		if err != nil {
			return nil, err
		}
		if width := tipSmoothing * dims.X(); width >= b.eps {
			err := b.bevelEdges(o, vertical, kernel.BevelOptions{
				Mode: kernel.OffsetWidth, Amount: width, Segments: b.bevelSegments,
			})
			if err != nil {
				return nil, err
			}
		}
	}

	if edgeSmoothing > 0 {
		dims, err := o.Dimensions()
		if err != nil {
			return nil, err
		}
		if width := edgeSmoothing * dims.Z(); width >= b.eps {
			horizontal := func(a, p mgl64.Vec3) bool { return !vertical(a, p) }
			err := b.bevelEdges(o, horizontal, kernel.BevelOptions{
				Mode: kernel.OffsetWidth, Amount: width, Segments: b.bevelSegments,
			})
			if err != nil {
				return nil, err
			}
		}
	}

	dims, err := o.Dimensions()
	if err != nil {
		return nil, err
	}
	if err := o.ScaleUniform(size / math.Hypot(dims.X(), dims.Y())); err != nil {
		return nil, err
	}
	return o, nil
}

// bipyramid extrudes a wire circle into two apex fans: the ring extrudes
// up and collapses to the upper apex, then the remaining ring extrudes
// down and collapses to the lower one. A positive tip truncation cuts
// both apexes back with a vertices-only bevel.
func (b *Builder) bipyramid(nSides int, diameter, height, tipsTruncation float64) (*object.Object, error) {
	h, err := b.eng.Circle(nSides, diameter/2)
	if err != nil {
		return nil, err
	}
	o := object.Wrap(b.eng, h)

	scope, err := b.eng.Edit(h)
	if err != nil {
		return nil, err
	}
	scope.SelectAllVertices()
	if err := scope.Extrude(mgl64.Vec3{0, 0, height / 2}); err != nil {
		scope.End()
		return nil, err
	}
	if err := scope.ResizeSelection(mgl64.Vec3{0, 0, 0}); err != nil {
		scope.End()
		return nil, err
	}
	scope.SelectVertices(func(p mgl64.Vec3) bool { return p.Z() < b.eps })
	if err := scope.Extrude(mgl64.Vec3{0, 0, -height / 2}); err != nil {
		scope.End()
		return nil, err
	}
	if err := scope.ResizeSelection(mgl64.Vec3{0, 0, 0}); err != nil {
		scope.End()
		return nil, err
	}
	scope.End()
	if err := o.Weld(); err != nil {
		return nil, err
	}

	if tipsTruncation > 0 {
		maxDim, err := o.MaxDimension()
		if err != nil {
			return nil, err
		}
		width := tipsTruncation * maxDim
		if width < b.eps {
			return o, nil
		}
		scope, err := b.eng.Edit(h)
		if err != nil {
			return nil, err
		}
		scope.SelectVertices(func(p mgl64.Vec3) bool { return math.Abs(p.Z()) > b.eps })
		err = scope.Bevel(kernel.BevelOptions{
			Mode: kernel.OffsetWidth, Amount: width, Segments: 1, AffectVertices: true,
		})
		scope.End()
		if err != nil {
			return nil, err
		}
		if err := o.Weld(); err != nil {
			return nil, err
		}
	}
	return o, nil
}

// bevelAllEdges bevels the full edge set and welds the result.
func (b *Builder) bevelAllEdges(o *object.Object, opts kernel.BevelOptions) error {
	scope, err := b.eng.Edit(o.Handle())
	if err != nil {
		return err
	}
	scope.SelectAllEdges()
	err = scope.Bevel(opts)
	scope.End()
	if err != nil {
		return fmt.Errorf("shapes: edge bevel: %w", err)
	}
	return o.Weld()
}

// bevelEdges bevels the edges matching pred and welds the result.
func (b *Builder) bevelEdges(o *object.Object, pred kernel.EdgePredicate, opts kernel.BevelOptions) error {
	scope, err := b.eng.Edit(o.Handle())
	if err != nil {
		return err
	}
	scope.SelectEdges(pred)
	err = scope.Bevel(opts)
	scope.End()
	if err != nil {
		return fmt.Errorf("shapes: edge bevel: %w", err)
	}
	return o.Weld()
}
