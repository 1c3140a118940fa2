package primitive

import "math"

// Sphere is a sphere shape: centre + radius.
type Sphere struct {
	Center Vec3
	Radius float64
}

// NewSphere creates a new sphere.
func NewSphere(center Vec3, radius float64) Sphere {
	return Sphere{Center: center, Radius: radius}
}

// Bounds returns the sphere's axis-aligned bounding box.
func (s Sphere) Bounds() AABB {
	r := NewVec3(s.Radius, s.Radius, s.Radius)
	return NewAABB(s.Center.Subtract(r), s.Center.Add(r))
}

// SphereRayEpsilon is the minimum accepted root magnitude.
const SphereRayEpsilon = 1e-3

// RayIntersect solves the quadratic in the ray parameter and returns the
// smaller root ≥ SphereRayEpsilon that lies within [tMin, tMax]; failing
// that it tries the farther root before reporting a miss.
func (s Sphere) RayIntersect(ray Ray, tMin, tMax float64) (hitT float64, hit bool) {
	oc := ray.Origin.Subtract(s.Center)

	a := ray.Direction.Dot(ray.Direction)
	halfB := oc.Dot(ray.Direction)
	c := oc.Dot(oc) - s.Radius*s.Radius

	discriminant := halfB*halfB - a*c
	if discriminant < 0 {
		return 0, false
	}
	sqrtD := math.Sqrt(discriminant)

	root := (-halfB - sqrtD) / a
	if root < SphereRayEpsilon || root < tMin || root > tMax {
		root = (-halfB + sqrtD) / a
		if root < SphereRayEpsilon || root < tMin || root > tMax {
			return 0, false
		}
	}

	return root, true
}

// ClosestPoint returns the point on the sphere's surface nearest to p.
func (s Sphere) ClosestPoint(p Vec3) Vec3 {
	d := p.Subtract(s.Center)
	if d.IsZero() {
		return s.Center.Add(NewVec3(s.Radius, 0, 0))
	}
	return s.Center.Add(d.Normalize().Multiply(s.Radius))
}

// Intersects reports whether two spheres overlap.
func (s Sphere) Intersects(other Sphere) bool {
	d := s.Radius + other.Radius
	return s.Center.Subtract(other.Center).LengthSquared() <= d*d
}

// TriangleIntersects reports whether the sphere touches the given triangle,
// delegating to Triangle.SphereIntersects for the Voronoi-region closest-point test.
func (s Sphere) TriangleIntersects(t Triangle) bool {
	return t.SphereIntersects(s.Center, s.Radius)
}
