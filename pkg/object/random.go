package object

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
)

// ErrPlacementInfeasible reports that an object cannot be positioned
// inside the requested region, either because it is larger than the
// region or because no sampled position satisfied the cylinder fit
// within the attempt budget.
var ErrPlacementInfeasible = errors.New("object: placement infeasible")

// Extent is an axis-aligned region given as (xmin, xmax, ymin, ymax,
// zmin, zmax).
type Extent [6]float64

// Min returns the region's lower corner.
func (e Extent) Min() mgl64.Vec3 { return mgl64.Vec3{e[0], e[2], e[4]} }

// Max returns the region's upper corner.
func (e Extent) Max() mgl64.Vec3 { return mgl64.Vec3{e[1], e[3], e[5]} }

// Scaled returns the extent with every bound multiplied by f.
func (e Extent) Scaled(f float64) Extent {
	var out Extent
	for i, x := range e {
		out[i] = f * x
	}
	return out
}

// RandomOrientation samples a rotation quaternion from four independent
// uniform [0, 1) components, normalized. Restricting the components to
// the positive orthant does not cover rotation space uniformly; the
// sampling is kept as the established recipe behavior.
func RandomOrientation(rng *rand.Rand) mgl64.Quat {
	for {
		q := mgl64.Quat{
			W: rng.Float64(),
			V: mgl64.Vec3{rng.Float64(), rng.Float64(), rng.Float64()},
		}
		if q.Len() > 1e-12 {
			return q.Normalize()
		}
	}
}

// RotateRandomly applies a random orientation and returns the quaternion
// used, so a paired object can be given the identical orientation.
func (o *Object) RotateRandomly(rng *rand.Rand) (mgl64.Quat, error) {
	q := RandomOrientation(rng)
	if err := o.Rotate(q); err != nil {
		return mgl64.Quat{}, err
	}
	return q, nil
}

// PositionRandomly translates the object to a uniformly sampled position
// whose bounding box lies inside region. With fitInCylinder set, the
// sampled position must additionally keep every vertex inside the
// cylinder spanned along x by the region's y/z cross-section; positions
// are rejected and resampled up to maxAttempts times before giving up
// with ErrPlacementInfeasible. The applied shift is returned.
func (o *Object) PositionRandomly(rng *rand.Rand, region Extent, fitInCylinder bool, maxAttempts int) (mgl64.Vec3, error) {
	loc, err := o.Location()
	if err != nil {
		return mgl64.Vec3{}, err
	}
	dims, err := o.Dimensions()
	if err != nil {
		return mgl64.Vec3{}, err
	}

	var minShift, maxShift mgl64.Vec3
	for i := 0; i < 3; i++ {
		minShift[i] = region.Min()[i] - (loc[i] - dims[i]/2)
		maxShift[i] = region.Max()[i] - (loc[i] + dims[i]/2)
		if minShift[i] > maxShift[i] {
			return mgl64.Vec3{}, fmt.Errorf("object does not fit the region on axis %d: %w",
				i, ErrPlacementInfeasible)
		}
	}

	sample := func() mgl64.Vec3 {
		var s mgl64.Vec3
		for i := 0; i < 3; i++ {
			s[i] = minShift[i] + rng.Float64()*(maxShift[i]-minShift[i])
		}
		return s
	}

	shift := sample()
	if fitInCylinder {
		verts, err := o.Vertices()
		if err != nil {
			return mgl64.Vec3{}, err
		}
		radius := math.Max(region[3]-region[2], region[5]-region[4])
		axisY := (region[2] + region[3]) / 2
		axisZ := (region[4] + region[5]) / 2
		fits := func(s mgl64.Vec3) bool {
			for _, v := range verts {
				if math.Hypot(v.Y()+s.Y()-axisY, v.Z()+s.Z()-axisZ) >= radius {
					return false
				}
			}
			return true
		}
		attempt := 0
		for !fits(shift) {
			attempt++
			if attempt >= maxAttempts {
				return mgl64.Vec3{}, fmt.Errorf("no cylinder-fitting position in %d attempts: %w",
					maxAttempts, ErrPlacementInfeasible)
			}
			shift = sample()
		}
	}

	if err := o.Translate(shift); err != nil {
		return mgl64.Vec3{}, err
	}
	return shift, nil
}
