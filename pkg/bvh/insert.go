package bvh

// Insert appends item to the tree's pending set and marks the tree for
// rebuild. The tree keeps answering queries against its old contents until
// Rebuild is called.
func (b *BVH[T]) Insert(item T) {
	b.pending = append(b.pending, item)
	b.needsRebuild = true
}

// NeedsRebuild reports whether Insert or Remove has queued changes the tree
// hasn't yet folded into its structure.
func (b *BVH[T]) NeedsRebuild() bool {
	return b.needsRebuild
}

// Rebuild folds every pending insertion (and any pending removal) into the
// primitive set and rebuilds the tree from scratch. A no-op if nothing is
// pending.
func (b *BVH[T]) Rebuild() {
	if !b.needsRebuild {
		return
	}
	items := make([]T, 0, len(b.prims)+len(b.pending))
	items = append(items, b.prims...)
	items = append(items, b.pending...)
	b.pending = nil
	b.build(items)
}

// Remove marks the primitive at the given index (into Primitives()) for
// deletion and marks the tree for rebuild; the index remains valid against
// the old structure until Rebuild runs.
func (b *BVH[T]) Remove(index int) {
	if index < 0 || index >= len(b.prims) {
		return
	}
	b.prims = append(b.prims[:index], b.prims[index+1:]...)
	b.needsRebuild = true
}

// InsertIncremental grows an existing leaf to hold item rather than
// queuing a full rebuild: it greedily descends from the root, at each
// internal node choosing whichever child's bounds would grow its surface
// area less by absorbing item, then splices item into that leaf's
// primitive range and refits every ancestor's bounds.
//
// This never changes the tree's shape (no new leaves, no re-split), so
// repeated incremental insertion without an eventual full Rebuild degrades
// leaf occupancy over time; that tradeoff is what makes it cheap.
func (b *BVH[T]) InsertIncremental(item T) {
	if len(b.nodes) == 0 {
		b.build([]T{item})
		return
	}

	itemBounds := b.itemBounds(item)

	idx := int32(0)
	for !b.nodes[idx].IsLeaf() {
		n := b.nodes[idx]
		left := b.nodes[n.LeftChild]
		right := b.nodes[n.RightChild]

		leftCost := left.Bounds.Union(itemBounds).SurfaceArea() - left.Bounds.SurfaceArea()
		rightCost := right.Bounds.Union(itemBounds).SurfaceArea() - right.Bounds.SurfaceArea()

		if leftCost <= rightCost {
			idx = n.LeftChild
		} else {
			idx = n.RightChild
		}
	}

	leaf := b.nodes[idx]
	insertAt := int(leaf.PrimitiveStart + leaf.PrimitiveCount)

	b.prims = append(b.prims, item)
	copy(b.prims[insertAt+1:], b.prims[insertAt:len(b.prims)-1])
	b.prims[insertAt] = item

	for i := range b.nodes {
		if b.nodes[i].IsLeaf() && int(b.nodes[i].PrimitiveStart) >= insertAt && int32(i) != idx {
			b.nodes[i].PrimitiveStart++
		}
	}
	b.nodes[idx].PrimitiveCount++

	b.Refit()
}
