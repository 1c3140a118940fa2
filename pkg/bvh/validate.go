package bvh

import "github.com/arcengine/spatialcore/pkg/primitive"

// Validate checks the tree's structural invariants: every internal node's
// children are in range and its bounds contain each child's bounds within a
// small tolerance, and every leaf's primitive span lies within the
// primitive slice. Used by tests, not by any query path.
func (b *BVH[T]) Validate() bool {
	if len(b.nodes) == 0 {
		return true
	}
	return b.validateNode(0)
}

func (b *BVH[T]) validateNode(idx int32) bool {
	if idx < 0 || int(idx) >= len(b.nodes) {
		return false
	}
	n := b.nodes[idx]

	if n.IsLeaf() {
		start, count := int(n.PrimitiveStart), int(n.PrimitiveCount)
		if start < 0 || count < 0 || start+count > len(b.prims) {
			return false
		}
		return true
	}

	if n.LeftChild < 0 || int(n.LeftChild) >= len(b.nodes) ||
		n.RightChild < 0 || int(n.RightChild) >= len(b.nodes) {
		return false
	}

	left := b.nodes[n.LeftChild]
	right := b.nodes[n.RightChild]

	if !n.Bounds.ContainsApprox(left.Bounds, primitive.DefaultContainsEpsilon) {
		return false
	}
	if !n.Bounds.ContainsApprox(right.Bounds, primitive.DefaultContainsEpsilon) {
		return false
	}

	return b.validateNode(n.LeftChild) && b.validateNode(n.RightChild)
}
