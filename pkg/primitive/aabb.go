package primitive

import "math"

// AABB represents an axis-aligned bounding box.
type AABB struct {
	Min Vec3 // Minimum corner
	Max Vec3 // Maximum corner
}

// DefaultContainsEpsilon is the tolerance used by ContainsApprox for
// post-build bounds validation.
const DefaultContainsEpsilon = 1e-3

// NewAABB creates a new AABB from min and max points.
func NewAABB(min, max Vec3) AABB {
	return AABB{Min: min, Max: max}
}

// EmptyAABB returns the sentinel AABB_UNDEFINED: min = +inf, max = -inf, so
// that Union'ing it with any valid box yields that other box unchanged.
func EmptyAABB() AABB {
	return AABB{
		Min: Vec3{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)},
		Max: Vec3{X: math.Inf(-1), Y: math.Inf(-1), Z: math.Inf(-1)},
	}
}

// NewAABBFromPoints creates an AABB that bounds all given points.
func NewAABBFromPoints(points ...Vec3) AABB {
	if len(points) == 0 {
		return EmptyAABB()
	}

	min := points[0]
	max := points[0]

	for _, point := range points[1:] {
		min.X = math.Min(min.X, point.X)
		min.Y = math.Min(min.Y, point.Y)
		min.Z = math.Min(min.Z, point.Z)

		max.X = math.Max(max.X, point.X)
		max.Y = math.Max(max.Y, point.Y)
		max.Z = math.Max(max.Z, point.Z)
	}

	return AABB{Min: min, Max: max}
}

// IsValid returns true if min <= max for every axis (a non-sentinel box).
func (aabb AABB) IsValid() bool {
	return aabb.Min.X <= aabb.Max.X &&
		aabb.Min.Y <= aabb.Max.Y &&
		aabb.Min.Z <= aabb.Max.Z
}

// Union returns an AABB that bounds both this AABB and another.
func (aabb AABB) Union(other AABB) AABB {
	return AABB{
		Min: Vec3{
			X: math.Min(aabb.Min.X, other.Min.X),
			Y: math.Min(aabb.Min.Y, other.Min.Y),
			Z: math.Min(aabb.Min.Z, other.Min.Z),
		},
		Max: Vec3{
			X: math.Max(aabb.Max.X, other.Max.X),
			Y: math.Max(aabb.Max.Y, other.Max.Y),
			Z: math.Max(aabb.Max.Z, other.Max.Z),
		},
	}
}

// UnionPoint grows the box to include a point.
func (aabb AABB) UnionPoint(p Vec3) AABB {
	return aabb.Union(AABB{Min: p, Max: p})
}

// Center returns the center point of the AABB.
func (aabb AABB) Center() Vec3 {
	return aabb.Min.Add(aabb.Max).Multiply(0.5)
}

// Size returns the size (extent) of the AABB along each axis.
func (aabb AABB) Size() Vec3 {
	return aabb.Max.Subtract(aabb.Min)
}

// SurfaceArea returns the surface area of the AABB: 2*(dx*dy + dy*dz + dz*dx).
func (aabb AABB) SurfaceArea() float64 {
	d := aabb.Size()
	return 2.0 * (d.X*d.Y + d.Y*d.Z + d.Z*d.X)
}

// Volume returns the product of the AABB's extents.
func (aabb AABB) Volume() float64 {
	d := aabb.Size()
	return d.X * d.Y * d.Z
}

// LongestAxis returns the axis (0=X, 1=Y, 2=Z) with the greatest extent.
func (aabb AABB) LongestAxis() int {
	size := aabb.Size()
	if size.X > size.Y && size.X > size.Z {
		return 0
	}
	if size.Y > size.Z {
		return 1
	}
	return 2
}

// Expand returns an AABB expanded by the given amount in all directions.
func (aabb AABB) Expand(amount float64) AABB {
	expansion := NewVec3(amount, amount, amount)
	return AABB{Min: aabb.Min.Subtract(expansion), Max: aabb.Max.Add(expansion)}
}

// Intersects reports whether two AABBs overlap, inclusive on the boundary.
func (aabb AABB) Intersects(other AABB) bool {
	return aabb.Min.X <= other.Max.X && aabb.Max.X >= other.Min.X &&
		aabb.Min.Y <= other.Max.Y && aabb.Max.Y >= other.Min.Y &&
		aabb.Min.Z <= other.Max.Z && aabb.Max.Z >= other.Min.Z
}

// Contains reports whether other lies entirely within aabb, strict on the boundary.
func (aabb AABB) Contains(other AABB) bool {
	return aabb.Min.X <= other.Min.X && other.Max.X <= aabb.Max.X &&
		aabb.Min.Y <= other.Min.Y && other.Max.Y <= aabb.Max.Y &&
		aabb.Min.Z <= other.Min.Z && other.Max.Z <= aabb.Max.Z
}

// ContainsApprox is Contains relaxed by epsilon, used for post-build validation.
func (aabb AABB) ContainsApprox(other AABB, epsilon float64) bool {
	return aabb.Min.X-epsilon <= other.Min.X && other.Max.X <= aabb.Max.X+epsilon &&
		aabb.Min.Y-epsilon <= other.Min.Y && other.Max.Y <= aabb.Max.Y+epsilon &&
		aabb.Min.Z-epsilon <= other.Min.Z && other.Max.Z <= aabb.Max.Z+epsilon
}

// ContainsPoint reports whether p lies within aabb, inclusive on the boundary.
func (aabb AABB) ContainsPoint(p Vec3) bool {
	return p.X >= aabb.Min.X && p.X <= aabb.Max.X &&
		p.Y >= aabb.Min.Y && p.Y <= aabb.Max.Y &&
		p.Z >= aabb.Min.Z && p.Z <= aabb.Max.Z
}

// ClosestPoint returns the point on or in aabb nearest to p (clamping per axis).
func (aabb AABB) ClosestPoint(p Vec3) Vec3 {
	return Vec3{
		X: math.Max(aabb.Min.X, math.Min(p.X, aabb.Max.X)),
		Y: math.Max(aabb.Min.Y, math.Min(p.Y, aabb.Max.Y)),
		Z: math.Max(aabb.Min.Z, math.Min(p.Z, aabb.Max.Z)),
	}
}

// DistanceToPoint returns the Euclidean distance from p to the nearest point on aabb.
func (aabb AABB) DistanceToPoint(p Vec3) float64 {
	return p.Subtract(aabb.ClosestPoint(p)).Length()
}

// SphereIntersects tests aabb against a sphere via the clamped closest-point,
// squared-distance test.
func (aabb AABB) SphereIntersects(center Vec3, radius float64) bool {
	closest := aabb.ClosestPoint(center)
	d := center.Subtract(closest)
	return d.LengthSquared() <= radius*radius
}

// RayIntersect tests a ray against the AABB using the slab method. Each axis
// either produces a (tEnter, tExit) pair from (min-origin)*invDir /
// (max-origin)*invDir, or — when the ray's direction component on that axis
// is parallel (|d| < InvDirEpsilon) — accepts iff the origin lies within the
// slab on that axis. The result is hit iff the running tFar >= tNear.
func (aabb AABB) RayIntersect(ray Ray, tMin, tMax float64) (tNear, tFar float64, hit bool) {
	tNear, tFar = tMin, tMax

	for axis := 0; axis < 3; axis++ {
		lo := aabb.Min.Axis(axis)
		hi := aabb.Max.Axis(axis)
		origin := ray.Origin.Axis(axis)
		direction := ray.Direction.Axis(axis)

		if direction > -InvDirEpsilon && direction < InvDirEpsilon {
			if origin < lo || origin > hi {
				return tNear, tFar, false
			}
			continue
		}

		invDir := 1.0 / direction
		t1 := (lo - origin) * invDir
		t2 := (hi - origin) * invDir
		if t1 > t2 {
			t1, t2 = t2, t1
		}

		tNear = math.Max(tNear, t1)
		tFar = math.Min(tFar, t2)
		if tFar < tNear {
			return tNear, tFar, false
		}
	}

	return tNear, tFar, true
}

// Hit is a convenience wrapper over RayIntersect returning only the hit/miss
// bool, for callers that don't need the entry/exit distances.
func (aabb AABB) Hit(ray Ray, tMin, tMax float64) bool {
	_, _, hit := aabb.RayIntersect(ray, tMin, tMax)
	return hit
}

// IntersectsBatch4 tests four (a, b) AABB pairs at once, returning a 4-bit
// mask with bit i set when a[i] intersects b[i]. This is the SIMD-friendly
// batched path traversal takes when walking 4 leaf primitives at a time.
func IntersectsBatch4(a, b [4]AABB) [4]bool {
	var mask [4]bool
	for i := 0; i < 4; i++ {
		mask[i] = a[i].Intersects(b[i])
	}
	return mask
}
