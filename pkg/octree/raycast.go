package octree

import "github.com/arcengine/spatialcore/pkg/primitive"

// IntersectFunc reports the ray parameter at which ray hits item, within
// [0, maxT], or hit=false if it doesn't.
type IntersectFunc[T any] func(ray primitive.Ray, item T, maxT float64) (t float64, hit bool)

// RayHit is the result of a raycast against an Octree.
type RayHit[T any] struct {
	Primitive T
	T         float64
	Hit       bool
}

// Raycast finds the closest item the ray hits within maxDist, testing
// crossing items at every node visited and descending into children in
// front-to-back order so max_t tightens as early as possible.
func (o *Octree[T]) Raycast(ray primitive.Ray, maxDist float64, intersectFn IntersectFunc[T]) RayHit[T] {
	result := RayHit[T]{T: maxDist}
	o.raycastNode(o.root, ray, intersectFn, &result)
	return result
}

func (o *Octree[T]) raycastNode(n *Node[T], ray primitive.Ray, intersectFn IntersectFunc[T], result *RayHit[T]) {
	if n == nil {
		return
	}
	if _, _, hit := n.bounds.RayIntersect(ray, 0, result.T); !hit {
		return
	}

	for _, item := range n.items {
		if t, hit := intersectFn(ray, item, result.T); hit && t < result.T {
			result.T = t
			result.Primitive = item
			result.Hit = true
		}
	}

	if n.isLeaf {
		return
	}

	type childEntry struct {
		idx   int
		tNear float64
	}
	var entries []childEntry
	for i, c := range n.children {
		if c == nil {
			continue
		}
		if tNear, _, hit := c.bounds.RayIntersect(ray, 0, result.T); hit {
			entries = append(entries, childEntry{idx: i, tNear: tNear})
		}
	}

	for i := 1; i < len(entries); i++ {
		e := entries[i]
		j := i - 1
		for j >= 0 && entries[j].tNear > e.tNear {
			entries[j+1] = entries[j]
			j--
		}
		entries[j+1] = e
	}

	for _, e := range entries {
		if e.tNear > result.T {
			break
		}
		o.raycastNode(n.children[e.idx], ray, intersectFn, result)
	}
}

// RaycastSingle returns the first item the ray hits within maxDist,
// without guaranteeing it's the closest: traversal returns as soon as any
// node's items yield an acceptance.
func (o *Octree[T]) RaycastSingle(ray primitive.Ray, maxDist float64, intersectFn IntersectFunc[T]) RayHit[T] {
	result := RayHit[T]{T: maxDist}
	o.raycastSingleNode(o.root, ray, intersectFn, &result)
	return result
}

func (o *Octree[T]) raycastSingleNode(n *Node[T], ray primitive.Ray, intersectFn IntersectFunc[T], result *RayHit[T]) bool {
	if n == nil {
		return false
	}
	if _, _, hit := n.bounds.RayIntersect(ray, 0, result.T); !hit {
		return false
	}

	for _, item := range n.items {
		if t, hit := intersectFn(ray, item, result.T); hit {
			result.T = t
			result.Primitive = item
			result.Hit = true
			return true
		}
	}

	if n.isLeaf {
		return false
	}

	for _, c := range n.children {
		if o.raycastSingleNode(c, ray, intersectFn, result) {
			return true
		}
	}
	return false
}

// RaycastMulti collects every item the ray accepts within maxDist and
// returns them sorted by ascending T.
func (o *Octree[T]) RaycastMulti(ray primitive.Ray, maxDist float64, intersectFn IntersectFunc[T]) []RayHit[T] {
	var hits []RayHit[T]
	o.raycastMultiNode(o.root, ray, maxDist, intersectFn, &hits)
	sortHitsByT(hits)
	return hits
}

func (o *Octree[T]) raycastMultiNode(n *Node[T], ray primitive.Ray, maxDist float64, intersectFn IntersectFunc[T], hits *[]RayHit[T]) {
	if n == nil {
		return
	}
	if _, _, hit := n.bounds.RayIntersect(ray, 0, maxDist); !hit {
		return
	}
	for _, item := range n.items {
		if t, hit := intersectFn(ray, item, maxDist); hit {
			*hits = append(*hits, RayHit[T]{Primitive: item, T: t, Hit: true})
		}
	}
	if n.isLeaf {
		return
	}
	for _, c := range n.children {
		o.raycastMultiNode(c, ray, maxDist, intersectFn, hits)
	}
}

func sortHitsByT[T any](hits []RayHit[T]) {
	for i := 1; i < len(hits); i++ {
		for j := i; j > 0 && hits[j].T < hits[j-1].T; j-- {
			hits[j], hits[j-1] = hits[j-1], hits[j]
		}
	}
}
