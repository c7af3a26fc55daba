// Package shapes builds the canonical FCC nanoparticle shape families on
// top of a geometry kernel: each family is a recipe of primitive
// construction, selective beveling and welding, normalized to a target
// size measure. Families are dispatched through a registry rather than
// through type hierarchies, so custom pools are plain slices.
package shapes

import "fmt"

// Family identifies one canonical shape recipe.
type Family string

const (
	Sphere              Family = "sphere"
	Cube                Family = "cube"
	Rod                 Family = "rod"
	Octahedron          Family = "octahedron"
	TruncatedOctahedron Family = "truncated_octahedron"
	Icosahedron         Family = "icosahedron"
	Triangle            Family = "triangle"
	TruncatedTriangle   Family = "truncated_triangle"
	Square              Family = "square"
	Hexagon             Family = "hexagon"
	Decahedron          Family = "decahedron"
	Bipyramid           Family = "bipyramid"
)

// AllFamilies is the full shape pool, in registry order.
var AllFamilies = []Family{
	Sphere, Cube, Rod, Octahedron, TruncatedOctahedron, Icosahedron,
	Triangle, TruncatedTriangle, Square, Hexagon, Decahedron, Bipyramid,
}

// CoreShellFamilies is the pool of shapes suitable for core-shell
// composition: compact solids whose booleans stay well-formed. The flat
// prism families are excluded.
var CoreShellFamilies = []Family{
	Sphere, Cube, Rod, Octahedron, TruncatedOctahedron, Icosahedron,
	Decahedron, Bipyramid,
}

// ParseFamily converts a string (as found in configs and scripts) to a
// Family.
func ParseFamily(s string) (Family, error) {
	for _, f := range AllFamilies {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("shapes: unknown family %q", s)
}
