package bvh

// OverlapPair is an unordered pair of indices into a single BVH's primitive
// slice, emitted exactly once by FindAllOverlaps.
type OverlapPair struct {
	A, B int
}

// CrossPair is an ordered pair of indices, one into each of two BVHs,
// emitted by FindCrossOverlaps.
type CrossPair struct {
	A, B int
}

// FindAllOverlaps finds every pair of indexed items whose bounds intersect,
// within a single tree, via dual self-descent. At a same-node internal
// split it only recurses (L,L), (L,R), (R,R) — never (R,L) — and at a
// same-leaf pair the inner scan starts at i+1, so every pair is emitted
// exactly once.
func (b *BVH[T]) FindAllOverlaps() []OverlapPair {
	if len(b.nodes) == 0 {
		return nil
	}
	var out []OverlapPair
	b.overlapSelf(0, 0, &out)
	return out
}

func (b *BVH[T]) overlapSelf(ai, bi int32, out *[]OverlapPair) {
	an, bn := b.nodes[ai], b.nodes[bi]
	if !an.Bounds.Intersects(bn.Bounds) {
		return
	}

	switch {
	case an.IsLeaf() && bn.IsLeaf():
		b.overlapLeafLeaf(an, bn, ai == bi, out)
	case an.IsLeaf():
		b.overlapCross(ai, bn.LeftChild, out)
		b.overlapCross(ai, bn.RightChild, out)
	case bn.IsLeaf():
		b.overlapCross(an.LeftChild, bi, out)
		b.overlapCross(an.RightChild, bi, out)
	case ai == bi:
		// Same internal node: only test the three combinations that avoid
		// emitting (X,Y) and (Y,X) as separate pairs.
		b.overlapSelf(an.LeftChild, an.LeftChild, out)
		b.overlapSelf(an.LeftChild, an.RightChild, out)
		b.overlapSelf(an.RightChild, an.RightChild, out)
	default:
		b.overlapCross(an.LeftChild, bn.LeftChild, out)
		b.overlapCross(an.LeftChild, bn.RightChild, out)
		b.overlapCross(an.RightChild, bn.LeftChild, out)
		b.overlapCross(an.RightChild, bn.RightChild, out)
	}
}

// overlapCross tests two node indices that are known not to be the same
// node (an (L,R)-style pair from a split), so no same-node dedup rule
// applies below this call.
func (b *BVH[T]) overlapCross(ai, bi int32, out *[]OverlapPair) {
	an, bn := b.nodes[ai], b.nodes[bi]
	if !an.Bounds.Intersects(bn.Bounds) {
		return
	}

	switch {
	case an.IsLeaf() && bn.IsLeaf():
		b.overlapLeafLeaf(an, bn, ai == bi, out)
	case an.IsLeaf():
		b.overlapCross(ai, bn.LeftChild, out)
		b.overlapCross(ai, bn.RightChild, out)
	case bn.IsLeaf():
		b.overlapCross(an.LeftChild, bi, out)
		b.overlapCross(an.RightChild, bi, out)
	default:
		b.overlapCross(an.LeftChild, bn.LeftChild, out)
		b.overlapCross(an.LeftChild, bn.RightChild, out)
		b.overlapCross(an.RightChild, bn.LeftChild, out)
		b.overlapCross(an.RightChild, bn.RightChild, out)
	}
}

func (b *BVH[T]) overlapLeafLeaf(an, bn Node, sameLeaf bool, out *[]OverlapPair) {
	for i := int32(0); i < an.PrimitiveCount; i++ {
		ia := int(an.PrimitiveStart + i)
		jStart := int32(0)
		if sameLeaf {
			jStart = i + 1
		}
		for j := jStart; j < bn.PrimitiveCount; j++ {
			jb := int(bn.PrimitiveStart + j)
			if b.itemBounds(b.prims[ia]).Intersects(b.itemBounds(b.prims[jb])) {
				*out = append(*out, OverlapPair{A: ia, B: jb})
			}
		}
	}
}

// FindCrossOverlaps finds every pair (item in b, item in other) whose
// bounds intersect, via standard dual descent across the four child
// combinations — no dedup rule applies since the two trees are distinct.
func FindCrossOverlaps[T, U any](b *BVH[T], other *BVH[U]) []CrossPair {
	if len(b.nodes) == 0 || len(other.nodes) == 0 {
		return nil
	}
	var out []CrossPair
	crossDescend(b, 0, other, 0, &out)
	return out
}

func crossDescend[T, U any](b *BVH[T], ai int32, other *BVH[U], bi int32, out *[]CrossPair) {
	an, bn := b.nodes[ai], other.nodes[bi]
	if !an.Bounds.Intersects(bn.Bounds) {
		return
	}

	switch {
	case an.IsLeaf() && bn.IsLeaf():
		for i := int32(0); i < an.PrimitiveCount; i++ {
			ia := int(an.PrimitiveStart + i)
			itemA := b.prims[ia]
			ab := b.itemBounds(itemA)
			for j := int32(0); j < bn.PrimitiveCount; j++ {
				jb := int(bn.PrimitiveStart + j)
				if ab.Intersects(other.itemBounds(other.prims[jb])) {
					*out = append(*out, CrossPair{A: ia, B: jb})
				}
			}
		}
	case an.IsLeaf():
		crossDescend(b, ai, other, bn.LeftChild, out)
		crossDescend(b, ai, other, bn.RightChild, out)
	case bn.IsLeaf():
		crossDescend(b, an.LeftChild, other, bi, out)
		crossDescend(b, an.RightChild, other, bi, out)
	default:
		crossDescend(b, an.LeftChild, other, bn.LeftChild, out)
		crossDescend(b, an.LeftChild, other, bn.RightChild, out)
		crossDescend(b, an.RightChild, other, bn.LeftChild, out)
		crossDescend(b, an.RightChild, other, bn.RightChild, out)
	}
}
