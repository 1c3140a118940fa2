package bvh

import (
	"math"
	"sort"

	"github.com/arcengine/spatialcore/internal/arena"
	"github.com/arcengine/spatialcore/pkg/primitive"
)

// DefaultMaxLeafSize is the builder's default leaf-size threshold.
const DefaultMaxLeafSize = 4

// numBins is the fixed bin count the binned-SAH pass divides a node's
// centroid range into.
const numBins = 16

// minAxisExtent is the per-axis extent below which an axis is excluded from
// SAH evaluation: below this an axis contributes infinite cost and its bins
// are never touched.
const minAxisExtent = 1e-4

const travCost = 1.0  // C_t
const isectCost = 1.0 // C_i

// buildPrimitive is the builder's internal record: the original slice
// index (so the final leaf order can be mapped back to caller items), its
// bounds, and its centroid, the SAH binning key.
type buildPrimitive struct {
	originalIndex int
	bounds        primitive.AABB
	centroid      primitive.Vec3
}

// buildNode is the builder's scratch pointer tree, arena-allocated and
// linked by pointer within the arena rather than owned independently. The
// whole tree is released wholesale once flatten() has produced the dense
// node array.
type buildNode struct {
	bounds       primitive.AABB
	left, right  *buildNode
	start, count int // leaf-only: primitive range in the (reordered) prims slice
}

type bin struct {
	count  int
	bounds primitive.AABB
}

// buildSAH recursively partitions prims using binned SAH with median
// fallback, emitting an arena-allocated buildNode tree. prims is partitioned
// in place; offset is the absolute index of prims[0] within the top-level
// slice passed to the outermost call, so that leaf start/count describe a
// range into that top-level (fully reordered) slice rather than into
// whatever sub-slice a given recursive call happens to see.
func buildSAH(a *arena.Arena[buildNode], prims []buildPrimitive, maxLeafSize, offset int) *buildNode {
	bounds := unionBoundsOf(prims)

	if len(prims) <= maxLeafSize {
		return newLeaf(a, prims, offset)
	}

	axis, threshold, ok := bestSAHSplit(prims, bounds)
	if !ok {
		return medianSplit(a, prims, bounds, maxLeafSize, offset)
	}

	mid := partitionByThreshold(prims, axis, threshold)
	if mid == 0 || mid == len(prims) {
		return medianSplit(a, prims, bounds, maxLeafSize, offset)
	}

	node := a.Alloc()
	node.left = buildSAH(a, prims[:mid], maxLeafSize, offset)
	node.right = buildSAH(a, prims[mid:], maxLeafSize, offset+mid)
	node.bounds = node.left.bounds.Union(node.right.bounds)
	return node
}

// unionBoundsOf returns the union of every primitive's bounds in prims.
func unionBoundsOf(prims []buildPrimitive) primitive.AABB {
	bounds := primitive.EmptyAABB()
	for _, p := range prims {
		bounds = bounds.Union(p.bounds)
	}
	return bounds
}

// newLeaf recomputes tight bounds from the enclosed primitives rather than
// reusing the caller's (possibly looser, pre-split) bounds — a degenerate
// leaf produced by the median fallback must still be tight.
func newLeaf(a *arena.Arena[buildNode], prims []buildPrimitive, offset int) *buildNode {
	tight := unionBoundsOf(prims)

	node := a.Alloc()
	node.bounds = tight
	node.start = offset
	node.count = len(prims)
	return node
}

// bestSAHSplit evaluates binned SAH across eligible axes and returns the
// split threshold on the winning axis, or ok=false if no axis is eligible
// or every candidate split left a side empty.
func bestSAHSplit(prims []buildPrimitive, bounds primitive.AABB) (axis int, threshold float64, ok bool) {
	bestCost := math.Inf(1)
	bestAxis := -1
	var bestThreshold float64

	parentArea := bounds.SurfaceArea()

	centroidBounds := primitive.EmptyAABB()
	for _, p := range prims {
		centroidBounds = centroidBounds.UnionPoint(p.centroid)
	}

	for axis := 0; axis < 3; axis++ {
		lo := centroidBounds.Min.Axis(axis)
		hi := centroidBounds.Max.Axis(axis)
		extent := hi - lo
		if extent <= minAxisExtent {
			continue // axis contributes infinite cost; never touch its bins
		}

		scale := float64(numBins) / extent
		var bins [numBins]bin
		for i := range bins {
			bins[i].bounds = primitive.EmptyAABB()
		}

		for _, p := range prims {
			idx := int((p.centroid.Axis(axis) - lo) * scale)
			if idx < 0 {
				idx = 0
			}
			if idx > numBins-1 {
				idx = numBins - 1
			}
			bins[idx].count++
			bins[idx].bounds = bins[idx].bounds.Union(p.bounds)
		}

		var leftCount [numBins]int
		var leftBounds [numBins]primitive.AABB
		acc := primitive.EmptyAABB()
		count := 0
		for i := 0; i < numBins-1; i++ {
			count += bins[i].count
			acc = acc.Union(bins[i].bounds)
			leftCount[i] = count
			leftBounds[i] = acc
		}

		var rightCount [numBins]int
		var rightBounds [numBins]primitive.AABB
		acc = primitive.EmptyAABB()
		count = 0
		for i := numBins - 1; i >= 1; i-- {
			count += bins[i].count
			acc = acc.Union(bins[i].bounds)
			rightCount[i] = count
			rightBounds[i] = acc
		}

		for i := 0; i < numBins-1; i++ {
			nL, nR := leftCount[i], rightCount[i+1]
			if nL == 0 || nR == 0 {
				continue
			}
			var cost float64
			if parentArea == 0 {
				cost = math.Inf(1)
			} else {
				aL := leftBounds[i].SurfaceArea()
				aR := rightBounds[i+1].SurfaceArea()
				cost = travCost + isectCost*(aL*float64(nL)+aR*float64(nR))/parentArea
			}
			if cost < bestCost {
				bestCost = cost
				bestAxis = axis
				bestThreshold = lo + float64(i+1)/scale
			}
		}
	}

	if bestAxis == -1 {
		return 0, 0, false
	}
	return bestAxis, bestThreshold, true
}

// partitionByThreshold partitions prims in place by thresholding
// centroid[axis] against threshold, using a two-finger swap instead of a
// second sort. Returns the split index.
func partitionByThreshold(prims []buildPrimitive, axis int, threshold float64) int {
	i, j := 0, len(prims)-1
	for i <= j {
		for i <= j && prims[i].centroid.Axis(axis) < threshold {
			i++
		}
		for i <= j && prims[j].centroid.Axis(axis) >= threshold {
			j--
		}
		if i < j {
			prims[i], prims[j] = prims[j], prims[i]
			i++
			j--
		}
	}
	return i
}

// medianSplit falls back to sorting by centroid on the axis of greatest
// extent and splitting at the middle index, used when bestSAHSplit finds no
// candidate (no axis has enough centroid extent, or every candidate leaves
// a side empty) or the threshold partition puts every primitive on one
// side. The best SAH cost is not compared against the cost of a leaf, so a
// split is taken whenever a candidate exists.
func medianSplit(a *arena.Arena[buildNode], prims []buildPrimitive, bounds primitive.AABB, maxLeafSize, offset int) *buildNode {
	if len(prims) <= maxLeafSize || len(prims) < 2 {
		return newLeaf(a, prims, offset)
	}

	axis := bounds.LongestAxis()
	sort.SliceStable(prims, func(i, j int) bool {
		return prims[i].centroid.Axis(axis) < prims[j].centroid.Axis(axis)
	})

	mid := len(prims) / 2

	node := a.Alloc()
	node.left = buildSAH(a, prims[:mid], maxLeafSize, offset)
	node.right = buildSAH(a, prims[mid:], maxLeafSize, offset+mid)
	node.bounds = node.left.bounds.Union(node.right.bounds)
	return node
}
