package primitive

// Triangle is a triangle defined by three vertices, indexed directly by the
// acceleration structures (no material or shading data — that lives outside
// this core).
type Triangle struct {
	V0, V1, V2 Vec3
}

// NewTriangle creates a new triangle from three vertices.
func NewTriangle(v0, v1, v2 Vec3) Triangle {
	return Triangle{V0: v0, V1: v1, V2: v2}
}

// Bounds returns the triangle's axis-aligned bounding box.
func (t Triangle) Bounds() AABB {
	return NewAABBFromPoints(t.V0, t.V1, t.V2)
}

// Normal returns the triangle's (unnormalized edge cross product, normalized) face normal.
func (t Triangle) Normal() Vec3 {
	edge1 := t.V1.Subtract(t.V0)
	edge2 := t.V2.Subtract(t.V0)
	return edge1.Cross(edge2).Normalize()
}

// TriangleEpsilon guards the Möller-Trumbore parallel-ray case.
const TriangleEpsilon = 1e-6

// RayIntersect tests the ray against the triangle using the Möller-Trumbore
// algorithm, reporting t only when tMin < t < tMax.
func (t Triangle) RayIntersect(ray Ray, tMin, tMax float64) (hitT float64, hit bool) {
	edge1 := t.V1.Subtract(t.V0)
	edge2 := t.V2.Subtract(t.V0)

	h := ray.Direction.Cross(edge2)
	a := edge1.Dot(h)

	if a > -TriangleEpsilon && a < TriangleEpsilon {
		return 0, false
	}

	f := 1.0 / a
	s := ray.Origin.Subtract(t.V0)
	u := f * s.Dot(h)
	if u < 0.0 || u > 1.0 {
		return 0, false
	}

	q := s.Cross(edge1)
	v := f * ray.Direction.Dot(q)
	if v < 0.0 || u+v > 1.0 {
		return 0, false
	}

	tParam := f * edge2.Dot(q)
	if tParam <= tMin || tParam >= tMax {
		return 0, false
	}

	return tParam, true
}

// ClosestPoint returns the point on the triangle's surface nearest to p, via
// the classic Voronoi-region cascade (vertex regions, edge regions, face region).
func (t Triangle) ClosestPoint(p Vec3) Vec3 {
	a, b, c := t.V0, t.V1, t.V2

	ab := b.Subtract(a)
	ac := c.Subtract(a)
	ap := p.Subtract(a)

	d1 := ab.Dot(ap)
	d2 := ac.Dot(ap)
	if d1 <= 0 && d2 <= 0 {
		return a // vertex region A
	}

	bp := p.Subtract(b)
	d3 := ab.Dot(bp)
	d4 := ac.Dot(bp)
	if d3 >= 0 && d4 <= d3 {
		return b // vertex region B
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		v := d1 / (d1 - d3)
		return a.Add(ab.Multiply(v)) // edge region AB
	}

	cp := p.Subtract(c)
	d5 := ab.Dot(cp)
	d6 := ac.Dot(cp)
	if d6 >= 0 && d5 <= d6 {
		return c // vertex region C
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		w := d2 / (d2 - d6)
		return a.Add(ac.Multiply(w)) // edge region AC
	}

	va := d3*d6 - d5*d4
	if va <= 0 && (d4-d3) >= 0 && (d5-d6) >= 0 {
		w := (d4 - d3) / ((d4 - d3) + (d5 - d6))
		return b.Add(c.Subtract(b).Multiply(w)) // edge region BC
	}

	// face region
	denom := 1.0 / (va + vb + vc)
	v := vb * denom
	w := vc * denom
	return a.Add(ab.Multiply(v)).Add(ac.Multiply(w))
}

// SphereIntersects reports whether a sphere of the given center/radius
// touches the triangle, by comparing the distance to the closest surface
// point against the radius.
func (t Triangle) SphereIntersects(center Vec3, radius float64) bool {
	closest := t.ClosestPoint(center)
	return closest.Subtract(center).LengthSquared() <= radius*radius
}
