package primitive

// Kind identifies which variant a tagged Primitive holds.
type Kind int

const (
	// KindTriangle tags a Primitive holding a Triangle.
	KindTriangle Kind = iota
	// KindSphere tags a Primitive holding a Sphere.
	KindSphere
)

// Primitive is the sum-type {Triangle | Sphere} the raycast façade uses so a
// single tree can index mixed primitive kinds; each variant dispatches to
// its own intersection test.
type Primitive struct {
	Kind     Kind
	Triangle Triangle
	Sphere   Sphere
}

// NewTrianglePrimitive wraps a Triangle as a tagged Primitive.
func NewTrianglePrimitive(t Triangle) Primitive {
	return Primitive{Kind: KindTriangle, Triangle: t}
}

// NewSpherePrimitive wraps a Sphere as a tagged Primitive.
func NewSpherePrimitive(s Sphere) Primitive {
	return Primitive{Kind: KindSphere, Sphere: s}
}

// Bounds dispatches to the held variant's bounds.
func (p Primitive) Bounds() AABB {
	switch p.Kind {
	case KindSphere:
		return p.Sphere.Bounds()
	default:
		return p.Triangle.Bounds()
	}
}

// RayIntersect dispatches to the held variant's ray intersection test.
func (p Primitive) RayIntersect(ray Ray, tMin, tMax float64) (hitT float64, hit bool) {
	switch p.Kind {
	case KindSphere:
		return p.Sphere.RayIntersect(ray, tMin, tMax)
	default:
		return p.Triangle.RayIntersect(ray, tMin, tMax)
	}
}

// HasBounds is implemented by payload types that report their own AABB
// (see Bounds() above). bvh.NewBVHCached and octree.NewCached accept such
// types and wrap Bounds() in a bounds-function closure, so leaf tests still
// go through that closure.
type HasBounds interface {
	Bounds() AABB
}
