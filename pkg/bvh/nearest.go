package bvh

import "github.com/arcengine/spatialcore/pkg/primitive"

// nearestEntry is one pending node in QueryNearest's best-first frontier: a
// node index and the lower bound on the true distance any item under it
// could have to the query point (the distance from the point to the node's
// own bounds).
type nearestEntry struct {
	node       int32
	lowerBound float64
}

// pushNearest inserts e into stack, kept sorted ascending by lowerBound, so
// the next entry popped always has the smallest admissible lower bound —
// the ordering a best-first search needs to guarantee it finds the true
// nearest item rather than an approximate one.
func pushNearest(stack []nearestEntry, e nearestEntry) []nearestEntry {
	lo, hi := 0, len(stack)
	for lo < hi {
		mid := (lo + hi) / 2
		if stack[mid].lowerBound > e.lowerBound {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	stack = append(stack, nearestEntry{})
	copy(stack[lo+1:], stack[lo:])
	stack[lo] = e
	return stack
}

// QueryNearest returns the indexed item whose bounds lie closest to point,
// within maxDist, using a best-first search over an ascending-lower-bound
// frontier: a node is only expanded while its lower bound is still within
// the current best found so far, which prunes subtrees that cannot possibly
// contain a closer item.
//
// Distance is measured to each item's bounding box, the only information
// the tree has about a generic payload — for a tight-bounding payload (a
// Triangle or Sphere wrapped with its own Bounds()) this is exact at the
// surface and a safe lower bound everywhere else.
func (b *BVH[T]) QueryNearest(point primitive.Vec3, maxDist float64) (result T, distance float64, found bool) {
	if len(b.nodes) == 0 {
		return result, 0, false
	}

	best := maxDist
	stack := make([]nearestEntry, 0, 64)
	stack = pushNearest(stack, nearestEntry{node: 0, lowerBound: b.nodes[0].Bounds.DistanceToPoint(point)})

	for len(stack) > 0 {
		e := stack[0]
		stack = stack[1:]
		if e.lowerBound > best {
			break
		}

		n := b.nodes[e.node]
		if n.IsLeaf() {
			start, count := n.PrimitiveStart, n.PrimitiveCount
			for i := int32(0); i < count; i++ {
				item := b.prims[start+i]
				d := b.itemBounds(item).DistanceToPoint(point)
				if d <= best {
					best = d
					result = item
					distance = d
					found = true
				}
			}
			continue
		}

		left := b.nodes[n.LeftChild]
		right := b.nodes[n.RightChild]

		leftLower := left.Bounds.DistanceToPoint(point)
		if leftLower <= best {
			stack = pushNearest(stack, nearestEntry{node: n.LeftChild, lowerBound: leftLower})
		}

		rightLower := right.Bounds.DistanceToPoint(point)
		if rightLower <= best {
			stack = pushNearest(stack, nearestEntry{node: n.RightChild, lowerBound: rightLower})
		}
	}

	return result, distance, found
}
