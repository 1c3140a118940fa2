package bvh

import "github.com/arcengine/spatialcore/pkg/primitive"

// Refit recomputes every node's bounds from the current primitive bounds,
// without reshaping the tree. Nodes are visited in reverse dense order:
// flatten() always assigns a parent's index before recursing into its
// children, so every child index is strictly greater than its parent's,
// and a descending scan processes both children of a node before the node
// itself — exactly the order a bottom-up bounds recomputation needs.
func (b *BVH[T]) Refit() {
	for i := len(b.nodes) - 1; i >= 0; i-- {
		n := &b.nodes[i]
		if n.IsLeaf() {
			bounds := primitive.EmptyAABB()
			for j := int32(0); j < n.PrimitiveCount; j++ {
				item := b.prims[n.PrimitiveStart+j]
				bounds = bounds.Union(b.itemBounds(item))
			}
			n.Bounds = bounds
			continue
		}
		left := b.nodes[n.LeftChild]
		right := b.nodes[n.RightChild]
		n.Bounds = left.Bounds.Union(right.Bounds)
	}
}
