package octree

import (
	"math"

	"github.com/arcengine/spatialcore/pkg/primitive"
)

// QueryAABB appends every item whose bounds intersect q to out and returns
// the grown slice.
func (o *Octree[T]) QueryAABB(q primitive.AABB, out []T) []T {
	return o.queryAABB(o.root, q, out)
}

func (o *Octree[T]) queryAABB(n *Node[T], q primitive.AABB, out []T) []T {
	if n == nil || !n.bounds.Intersects(q) {
		return out
	}
	for _, item := range n.items {
		if o.itemBounds(item).Intersects(q) {
			out = append(out, item)
		}
	}
	if !n.isLeaf {
		for _, c := range n.children {
			out = o.queryAABB(c, q, out)
		}
	}
	return out
}

// QueryAABBLimited is QueryAABB bounded to at most limit results: traversal
// stops as soon as out reaches limit, rather than visiting every node that
// overlaps q.
func (o *Octree[T]) QueryAABBLimited(q primitive.AABB, limit int, out []T) []T {
	out, _ = o.queryAABBLimited(o.root, q, limit, out)
	return out
}

func (o *Octree[T]) queryAABBLimited(n *Node[T], q primitive.AABB, limit int, out []T) ([]T, bool) {
	if n == nil || !n.bounds.Intersects(q) {
		return out, false
	}
	for _, item := range n.items {
		if len(out) >= limit {
			return out, true
		}
		if o.itemBounds(item).Intersects(q) {
			out = append(out, item)
		}
	}
	if len(out) >= limit {
		return out, true
	}
	if !n.isLeaf {
		for _, c := range n.children {
			var full bool
			out, full = o.queryAABBLimited(c, q, limit, out)
			if full {
				return out, true
			}
		}
	}
	return out, len(out) >= limit
}

// QuerySphere appends every item whose bounds intersect the sphere
// (center, radius) to out and returns the grown slice.
func (o *Octree[T]) QuerySphere(center primitive.Vec3, radius float64, out []T) []T {
	return o.querySphere(o.root, center, radius, out)
}

func (o *Octree[T]) querySphere(n *Node[T], center primitive.Vec3, radius float64, out []T) []T {
	if n == nil || !n.bounds.SphereIntersects(center, radius) {
		return out
	}
	for _, item := range n.items {
		if o.itemBounds(item).SphereIntersects(center, radius) {
			out = append(out, item)
		}
	}
	if !n.isLeaf {
		for _, c := range n.children {
			out = o.querySphere(c, center, radius, out)
		}
	}
	return out
}

// QueryDisc appends every item whose bounds come within radius of the
// planar disc centered at center with unit normal, to out, and returns the
// grown slice. A bounds box is tested by projecting its closest point to
// center onto the disc's plane and comparing the in-plane distance.
func (o *Octree[T]) QueryDisc(center, normal primitive.Vec3, radius float64, out []T) []T {
	return o.queryDisc(o.root, center, normal, radius, out)
}

func (o *Octree[T]) queryDisc(n *Node[T], center, normal primitive.Vec3, radius float64, out []T) []T {
	if n == nil || !discIntersects(n.bounds, center, normal, radius) {
		return out
	}
	for _, item := range n.items {
		if discIntersects(o.itemBounds(item), center, normal, radius) {
			out = append(out, item)
		}
	}
	if !n.isLeaf {
		for _, c := range n.children {
			out = o.queryDisc(c, center, normal, radius, out)
		}
	}
	return out
}

// discIntersects reports whether bounds comes within radius of the disc
// plane through center with the given (assumed unit) normal. A box that
// never crosses the plane can't touch a zero-thickness disc no matter where
// its footprint falls, so that's checked first via the box's support
// distance along normal; only then does it clamp the box's closest point to
// center, project that point onto the plane, and compare the resulting
// in-plane distance against radius.
func discIntersects(bounds primitive.AABB, center, normal primitive.Vec3, radius float64) bool {
	if !boxCrossesPlane(bounds, center, normal) {
		return false
	}
	closest := bounds.ClosestPoint(center)
	toClosest := closest.Subtract(center)
	alongNormal := toClosest.Dot(normal)
	projected := closest.Subtract(normal.Multiply(alongNormal))
	planar := projected.Subtract(center)
	return planar.LengthSquared() <= radius*radius
}

// boxCrossesPlane reports whether bounds straddles the plane through center
// with normal normal, via the standard box/plane support-distance test: the
// box's half-extents projected onto normal bound how far its center can sit
// from the plane while still touching it.
func boxCrossesPlane(bounds primitive.AABB, center, normal primitive.Vec3) bool {
	half := bounds.Size().Multiply(0.5)
	reach := math.Abs(half.X*normal.X) + math.Abs(half.Y*normal.Y) + math.Abs(half.Z*normal.Z)
	dist := bounds.Center().Subtract(center).Dot(normal)
	return math.Abs(dist) <= reach
}

// QueryRay appends every item whose bounds the ray intersects within
// [0, maxDist] to out and returns the grown slice. This is a candidate
// collector, not a closest-hit traversal; see Raycast for that.
func (o *Octree[T]) QueryRay(ray primitive.Ray, maxDist float64, out []T) []T {
	return o.queryRay(o.root, ray, maxDist, out)
}

func (o *Octree[T]) queryRay(n *Node[T], ray primitive.Ray, maxDist float64, out []T) []T {
	if n == nil {
		return out
	}
	if _, _, hit := n.bounds.RayIntersect(ray, 0, maxDist); !hit {
		return out
	}
	for _, item := range n.items {
		if _, _, hit := o.itemBounds(item).RayIntersect(ray, 0, maxDist); hit {
			out = append(out, item)
		}
	}
	if !n.isLeaf {
		for _, c := range n.children {
			out = o.queryRay(c, ray, maxDist, out)
		}
	}
	return out
}
