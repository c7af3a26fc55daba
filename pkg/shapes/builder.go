package shapes

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/nanomesh/nanomesh/pkg/kernel"
	"github.com/nanomesh/nanomesh/pkg/object"
)

const (
	defaultEpsilon            = 1e-5
	defaultBevelSegments      = 3
	defaultSphereSubdivisions = 5
)

// Builder constructs shape families on a kernel engine.
type Builder struct {
	eng                kernel.Engine
	eps                float64
	bevelSegments      int
	sphereSubdivisions int
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithEpsilon overrides the geometric tolerance used for selection
// predicates and for skipping sub-tolerance bevels.
func WithEpsilon(eps float64) BuilderOption {
	return func(b *Builder) { b.eps = eps }
}

// WithBevelSegments overrides the facet count of smoothing bevels.
func WithBevelSegments(n int) BuilderOption {
	return func(b *Builder) { b.bevelSegments = n }
}

// WithSphereSubdivisions overrides the icosphere refinement level.
func WithSphereSubdivisions(n int) BuilderOption {
	return func(b *Builder) { b.sphereSubdivisions = n }
}

// NewBuilder returns a Builder over the given engine.
func NewBuilder(eng kernel.Engine, opts ...BuilderOption) *Builder {
	b := &Builder{
		eng:                eng,
		eps:                defaultEpsilon,
		bevelSegments:      defaultBevelSegments,
		sphereSubdivisions: defaultSphereSubdivisions,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

type buildFunc func(*Builder, Recipe) (*object.Object, error)

// registry dispatches a recipe to its family builder.
var registry = map[Family]buildFunc{
	Sphere:              (*Builder).buildSphere,
	Cube:                (*Builder).buildCube,
	Rod:                 (*Builder).buildRod,
	Octahedron:          (*Builder).buildOctahedron,
	TruncatedOctahedron: (*Builder).buildTruncatedOctahedron,
	Icosahedron:         (*Builder).buildIcosahedron,
	Triangle:            (*Builder).buildTriangle,
	TruncatedTriangle:   (*Builder).buildTruncatedTriangle,
	Square:              (*Builder).buildSquare,
	Hexagon:             (*Builder).buildHexagon,
	Decahedron:          (*Builder).buildDecahedron,
	Bipyramid:           (*Builder).buildBipyramid,
}

// Build constructs the recipe's shape, centered at the origin and
// normalized to the family's size measure.
func (b *Builder) Build(r Recipe) (*object.Object, error) {
	build, ok := registry[r.Family]
	if !ok {
		return nil, fmt.Errorf("shapes: unknown family %q", r.Family)
	}
	o, err := build(b, r)
	if err != nil {
		return nil, fmt.Errorf("shapes: building %s: %w", r.Family, err)
	}
	return o, nil
}

func (b *Builder) buildSphere(r Recipe) (*object.Object, error) {
	d := r.Size
	return b.ellipsoid(mgl64.Vec3{d, d, d})
}

func (b *Builder) buildCube(r Recipe) (*object.Object, error) {
	o, err := b.box(mgl64.Vec3{r.Size, r.Size, r.Size})
	if err != nil {
		return nil, err
	}
	if err := o.SmoothEdges(r.Smoothing, b.bevelSegments, b.eps); err != nil {
		return nil, err
	}
	maxDim, err := o.MaxDimension()
	if err != nil {
		return nil, err
	}
	return o, o.ScaleUniform(r.Size / maxDim)
}

func (b *Builder) buildRod(r Recipe) (*object.Object, error) {
	// Each hemispherical cap contributes one radius to the total length.
	middle := r.Height - r.Diameter
	if middle < 0 {
		return nil, fmt.Errorf("rod diameter %g exceeds height %g", r.Diameter, r.Height)
	}
	return b.cappedCylinder(r.Diameter, middle)
}

func (b *Builder) buildOctahedron(r Recipe) (*object.Object, error) {
	o, err := b.octahedron(r.Size, 0)
	if err != nil {
		return nil, err
	}
	return o, b.smoothAndNormalizeEnclosing(o, r)
}

func (b *Builder) buildTruncatedOctahedron(r Recipe) (*object.Object, error) {
	o, err := b.octahedron(r.Size, r.Truncation)
	if err != nil {
		return nil, err
	}
	return o, b.smoothAndNormalizeEnclosing(o, r)
}

func (b *Builder) buildIcosahedron(r Recipe) (*object.Object, error) {
	h, err := b.eng.Icosphere(1, r.Size/2)
	if err != nil {
		return nil, err
	}
	o := object.Wrap(b.eng, h)
	return o, b.smoothAndNormalizeEnclosing(o, r)
}

func (b *Builder) buildTriangle(r Recipe) (*object.Object, error) {
	return b.prism(3, r.Size, r.Height, 0, r.TipSmoothing, r.EdgeSmoothing)
}

func (b *Builder) buildTruncatedTriangle(r Recipe) (*object.Object, error) {
	return b.prism(3, r.Size, r.Height, r.Truncation, r.TipSmoothing, r.EdgeSmoothing)
}

func (b *Builder) buildSquare(r Recipe) (*object.Object, error) {
	return b.prism(4, r.Size, r.Height, r.Truncation, r.TipSmoothing, r.EdgeSmoothing)
}

func (b *Builder) buildHexagon(r Recipe) (*object.Object, error) {
	return b.prism(6, r.Size, r.Height, r.Truncation, r.TipSmoothing, r.EdgeSmoothing)
}

// buildDecahedron builds the oblate pentagonal bipyramid bounded by
// {111} FCC lattice planes; the 1.547 height factor comes from the
// lattice geometry.
func (b *Builder) buildDecahedron(r Recipe) (*object.Object, error) {
	height := 1.547 * r.Size / 2
	o, err := b.bipyramid(5, r.Size, height, 0)
	if err != nil {
		return nil, err
	}
	if err := o.SmoothEdges(r.Smoothing, b.bevelSegments, b.eps); err != nil {
		return nil, err
	}
	dims, err := o.Dimensions()
	if err != nil {
		return nil, err
	}
	return o, o.ScaleUniform(r.Size / math.Hypot(dims.X(), dims.Y()))
}

// buildBipyramid builds the elongated pentagonal bipyramid typical of Au
// particles (tip angle around 30 degrees, hence the 3.7321 aspect).
func (b *Builder) buildBipyramid(r Recipe) (*object.Object, error) {
	diameter := r.Height / 3.7321
	o, err := b.bipyramid(5, diameter, r.Height, r.Truncation)
	if err != nil {
		return nil, err
	}
	if err := o.SmoothEdges(r.Smoothing, b.bevelSegments, b.eps); err != nil {
		return nil, err
	}
	dims, err := o.Dimensions()
	if err != nil {
		return nil, err
	}
	return o, o.ScaleUniform(r.Height / dims.Z())
}

// smoothAndNormalizeEnclosing smooths all edges and restores the target
// enclosing sphere diameter, which smoothing shrinks.
func (b *Builder) smoothAndNormalizeEnclosing(o *object.Object, r Recipe) error {
	if err := o.SmoothEdges(r.Smoothing, b.bevelSegments, b.eps); err != nil {
		return err
	}
	d, err := o.EnclosingSphereDiameter()
	if err != nil {
		return err
	}
	return o.ScaleUniform(r.Size / d)
}
