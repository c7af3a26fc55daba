package shapes

import "math/rand"

// Recipe is a fully resolved parameter set for one shape family. Fields
// not used by the family are ignored by its builder.
type Recipe struct {
	Family Family

	// Size is the target size measure: max dimension for cubes and
	// spheres, enclosing sphere diameter for the octahedral families,
	// planar diagonal for the prisms and the decahedron.
	Size float64

	// Height is the z extent for rods, prisms and bipyramids.
	Height float64

	// Diameter is the rod's cap diameter.
	Diameter float64

	// Truncation in [0, 1] cuts edges back toward full collapse.
	Truncation float64

	// Smoothing rounds all edges by this fraction of the max dimension.
	Smoothing float64

	// TipSmoothing and EdgeSmoothing round the prisms' vertical and
	// horizontal edge sets separately, as fractions of the x and z
	// dimensions.
	TipSmoothing  float64
	EdgeSmoothing float64
}

// DefaultRecipe returns the family's canonical deterministic parameters.
func DefaultRecipe(f Family) Recipe {
	r := Recipe{Family: f, Size: 1.0}
	switch f {
	case Rod:
		r.Height = 1.0
		r.Diameter = 0.5
	case TruncatedTriangle, Hexagon:
		r.Height = 0.2
		r.Truncation = 0.5
	case Triangle, Square:
		r.Height = 0.2
	case Bipyramid:
		r.Height = 1.0
	}
	return r
}

// uniform draws from [lo, hi).
func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

// RandomRecipe draws the family's randomized parameters. Sizes stay at
// 1.0; the scene rescales placed shapes separately.
func RandomRecipe(f Family, rng *rand.Rand) Recipe {
	r := DefaultRecipe(f)
	switch f {
	case Sphere:
		// Fixed unit diameter.
	case Cube, Octahedron, Icosahedron, Decahedron:
		r.Smoothing = uniform(rng, 0.0, 0.1)
	case Rod:
		r.Diameter = uniform(rng, 0.25, 1.0)
	case TruncatedOctahedron:
		r.Truncation = uniform(rng, 0.0, 1.0)
		r.Smoothing = uniform(rng, 0.0, 0.1)
	case Triangle:
		r.Height = uniform(rng, 0.1, 0.3)
		r.TipSmoothing = uniform(rng, 0.0, 0.1)
		r.EdgeSmoothing = uniform(rng, 0.0, 0.1)
	case TruncatedTriangle:
		r.Height = uniform(rng, 0.1, 0.3)
		r.Truncation = uniform(rng, 0.0, 1.0)
		r.TipSmoothing = uniform(rng, 0.0, 0.1)
		r.EdgeSmoothing = uniform(rng, 0.0, 0.1)
	case Square, Hexagon:
		r.Height = uniform(rng, 0.1, 0.3)
		r.Truncation = 0.0
		r.TipSmoothing = uniform(rng, 0.0, 0.1)
		r.EdgeSmoothing = uniform(rng, 0.0, 0.1)
	case Bipyramid:
		// One draw feeds both the tip truncation and the smoothing.
		s := uniform(rng, 0.0, 0.1)
		r.Truncation = s
		r.Smoothing = s
	}
	return r
}
