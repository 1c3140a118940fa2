package bvh

import "github.com/arcengine/spatialcore/pkg/primitive"

// IntersectFunc tests ray against a single payload item, reporting whether
// it's hit and, if so, at what ray parameter.
type IntersectFunc[T any] func(ray primitive.Ray, item T, maxT float64) (t float64, hit bool)

// RayHit is the result of a closest-hit raycast: the hit item, the hit
// distance, and whether anything was hit at all. A miss reports the zero
// value of T with Hit == false and T left at its maxDist ceiling.
type RayHit[T any] struct {
	Primitive T
	T         float64
	Hit       bool
}

// Raycast returns the closest accepted hit along ray within [0, maxDist],
// testing intersectFn on candidate leaf items and ordering children
// front-to-back by slab entry distance so max_t tightens as hits are found.
func (b *BVH[T]) Raycast(ray primitive.Ray, maxDist float64, intersectFn IntersectFunc[T]) RayHit[T] {
	result := RayHit[T]{T: maxDist}
	if len(b.nodes) == 0 {
		return result
	}

	type frame struct {
		node  int32
		tNear float64
	}
	var stack [64]frame
	sp := 0
	stack[0] = frame{node: 0, tNear: 0}
	sp = 1

	for sp > 0 {
		sp--
		f := stack[sp]
		if f.tNear > result.T {
			continue
		}

		n := b.nodes[f.node]
		_, _, hit := n.Bounds.RayIntersect(ray, 0, result.T)
		if !hit {
			continue
		}

		if n.IsLeaf() {
			start, count := n.PrimitiveStart, n.PrimitiveCount
			for i := int32(0); i < count; i++ {
				item := b.prims[start+i]
				if t, ok := intersectFn(ray, item, result.T); ok && t < result.T {
					result.T = t
					result.Primitive = item
					result.Hit = true
				}
			}
			continue
		}

		left := b.nodes[n.LeftChild]
		right := b.nodes[n.RightChild]
		leftNear, _, leftHit := left.Bounds.RayIntersect(ray, 0, result.T)
		rightNear, _, rightHit := right.Bounds.RayIntersect(ray, 0, result.T)

		// Push the farther child first so the nearer one pops (and is
		// traversed) first, tightening result.T before the farther
		// subtree is visited.
		switch {
		case leftHit && rightHit:
			if leftNear <= rightNear {
				stack[sp] = frame{node: n.RightChild, tNear: rightNear}
				sp++
				stack[sp] = frame{node: n.LeftChild, tNear: leftNear}
				sp++
			} else {
				stack[sp] = frame{node: n.LeftChild, tNear: leftNear}
				sp++
				stack[sp] = frame{node: n.RightChild, tNear: rightNear}
				sp++
			}
		case leftHit:
			stack[sp] = frame{node: n.LeftChild, tNear: leftNear}
			sp++
		case rightHit:
			stack[sp] = frame{node: n.RightChild, tNear: rightNear}
			sp++
		}
	}

	return result
}

// RaycastSingle returns the first accepted hit along ray within [0, maxDist],
// short-circuiting as soon as a leaf primitive accepts — it does not
// guarantee the closest hit, only *a* hit, and stops traversal immediately.
func (b *BVH[T]) RaycastSingle(ray primitive.Ray, maxDist float64, intersectFn IntersectFunc[T]) RayHit[T] {
	result := RayHit[T]{T: maxDist}
	if len(b.nodes) == 0 {
		return result
	}

	var stack [64]int32
	sp := 0
	stack[0] = 0
	sp = 1

	for sp > 0 {
		sp--
		idx := stack[sp]
		n := b.nodes[idx]
		if !n.Bounds.Hit(ray, 0, result.T) {
			continue
		}
		if n.IsLeaf() {
			start, count := n.PrimitiveStart, n.PrimitiveCount
			for i := int32(0); i < count; i++ {
				item := b.prims[start+i]
				if t, ok := intersectFn(ray, item, result.T); ok {
					result.T = t
					result.Primitive = item
					result.Hit = true
					return result
				}
			}
			continue
		}
		stack[sp] = n.LeftChild
		sp++
		stack[sp] = n.RightChild
		sp++
	}
	return result
}

// RaycastMulti collects every accepted hit along ray within [0, maxDist] and
// returns them sorted by ascending T.
func (b *BVH[T]) RaycastMulti(ray primitive.Ray, maxDist float64, intersectFn IntersectFunc[T]) []RayHit[T] {
	if len(b.nodes) == 0 {
		return nil
	}

	var hits []RayHit[T]
	var stack [64]int32
	sp := 0
	stack[0] = 0
	sp = 1

	for sp > 0 {
		sp--
		idx := stack[sp]
		n := b.nodes[idx]
		if !n.Bounds.Hit(ray, 0, maxDist) {
			continue
		}
		if n.IsLeaf() {
			start, count := n.PrimitiveStart, n.PrimitiveCount
			for i := int32(0); i < count; i++ {
				item := b.prims[start+i]
				if t, ok := intersectFn(ray, item, maxDist); ok {
					hits = append(hits, RayHit[T]{Primitive: item, T: t, Hit: true})
				}
			}
			continue
		}
		stack[sp] = n.LeftChild
		sp++
		stack[sp] = n.RightChild
		sp++
	}

	sortHitsByT(hits)
	return hits
}

func sortHitsByT[T any](hits []RayHit[T]) {
	// Stable insertion sort: hit counts per ray are small and this keeps
	// the dependency-free ascending sort explicit rather than reaching for
	// sort.Slice's reflection-based comparator for a handful of elements.
	for i := 1; i < len(hits); i++ {
		for j := i; j > 0 && hits[j].T < hits[j-1].T; j-- {
			hits[j], hits[j-1] = hits[j-1], hits[j]
		}
	}
}
