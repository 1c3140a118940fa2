package bvh

import (
	"sort"
	"time"

	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/arcengine/spatialcore/internal/arena"
	"github.com/arcengine/spatialcore/internal/workerpool"
	"github.com/arcengine/spatialcore/pkg/primitive"
	"github.com/arcengine/spatialcore/pkg/spatialerr"
)

// Parallel build tuning, fixed rather than exposed as options: they trade
// off task-submission overhead against how early a large build starts
// using every worker.
const (
	ParallelBuildThreshold = 1000 // below this, BuildParallel just calls Build
	ParallelTaskThreshold  = 250  // below this slice size, recurse sequentially
	ParallelDepthThreshold = 4    // below this depth, still worth spawning tasks
)

// parallelState is shared across every task of one parallel build: the pool
// tasks are submitted to, the bounded arena they allocate buildNodes from,
// and a failed flag any task can set (on arena exhaustion) to make every
// other in-flight and not-yet-run task abandon the build quickly.
type parallelState struct {
	pool   *workerpool.Pool
	arena  *arena.Arena[buildNode]
	failed atomic.Bool
}

// BuildParallel builds the tree using pool to parallelize split work across
// its primitive set, falling back to a sequential Build when items is
// smaller than ParallelBuildThreshold, pool is nil, or the bounded build
// arena runs out of room before the tree completes.
func (b *BVH[T]) BuildParallel(items []T, pool *workerpool.Pool) {
	if pool == nil || len(items) < ParallelBuildThreshold {
		b.build(items)
		return
	}

	if b.tryBuildParallel(items, pool) {
		return
	}

	err := spatialerr.Wrap(spatialerr.ErrArenaExhausted, "parallel build falling back to sequential build")
	b.logger.Warn("parallel build arena exhausted, falling back to sequential build",
		zap.Int("primitives", len(items)),
		zap.Error(err),
	)
	b.build(items)
}

func (b *BVH[T]) tryBuildParallel(items []T, pool *workerpool.Pool) bool {
	bps := make([]buildPrimitive, len(items))
	for i, item := range items {
		bounds := b.itemBounds(item)
		bps[i] = buildPrimitive{
			originalIndex: i,
			bounds:        bounds,
			centroid:      bounds.Center(),
		}
	}

	// A balanced binary tree over n leaves never needs more than 2n-1
	// nodes; double that as headroom against unbalanced median-split
	// fallbacks and treat the result as this build's hard ceiling.
	capEstimate := 4*len(items) + 64
	ps := &parallelState{
		pool:  pool,
		arena: arena.NewBounded[buildNode](256, capEstimate),
	}

	root := buildParallelNode(ps, bps, b.maxLeafSize, 0, 0)
	if ps.failed.Load() || root == nil {
		return false
	}

	nodes := make([]Node, 0, 2*len(items)+1)
	flattenNode(root, &nodes)

	prims := make([]T, len(items))
	for i, bp := range bps {
		prims[i] = items[bp.originalIndex]
	}

	b.nodes = nodes
	b.prims = prims
	b.nodeLevels, b.maxDepth = computeLevels(nodes)
	b.needsRebuild = false

	ps.arena.Reset()

	b.logger.Debug("parallel bvh build complete",
		zap.Int("primitives", len(items)),
		zap.Int("nodes", len(nodes)),
		zap.Int("max_depth", b.maxDepth),
		zap.Int("workers", pool.NumWorkers()),
	)
	return true
}

// buildParallelNode mirrors buildSAH's recursion, but while depth is below
// ParallelDepthThreshold and the slice holds at least ParallelTaskThreshold
// primitives it submits sibling subtrees as pool tasks and help-waits on
// them instead of recursing directly, and it allocates through TryAlloc so a bounded arena running
// out mid-build fails the whole task tree instead of panicking across
// goroutines.
func buildParallelNode(ps *parallelState, prims []buildPrimitive, maxLeafSize, offset, depth int) *buildNode {
	if ps.failed.Load() {
		return nil
	}

	bounds := unionBoundsOf(prims)

	if len(prims) <= maxLeafSize {
		return allocParallelLeaf(ps, prims, offset)
	}

	axis, threshold, ok := bestSAHSplit(prims, bounds)
	if !ok {
		return allocParallelMedianSplit(ps, prims, bounds, maxLeafSize, offset, depth)
	}

	mid := partitionByThreshold(prims, axis, threshold)
	if mid == 0 || mid == len(prims) {
		return allocParallelMedianSplit(ps, prims, bounds, maxLeafSize, offset, depth)
	}

	left, right := prims[:mid], prims[mid:]

	if depth >= ParallelDepthThreshold || len(prims) < ParallelTaskThreshold {
		node, allocOK := ps.arena.TryAlloc()
		if !allocOK {
			ps.failed.Store(true)
			return nil
		}
		node.left = buildParallelNode(ps, left, maxLeafSize, offset, depth+1)
		node.right = buildParallelNode(ps, right, maxLeafSize, offset+mid, depth+1)
		if node.left == nil || node.right == nil {
			ps.failed.Store(true)
			return nil
		}
		node.bounds = node.left.bounds.Union(node.right.bounds)
		return node
	}

	var leftResult, rightResult atomic.Pointer[buildNode]
	ps.pool.Submit(func() {
		leftResult.Store(buildParallelNode(ps, left, maxLeafSize, offset, depth+1))
	})
	ps.pool.Submit(func() {
		rightResult.Store(buildParallelNode(ps, right, maxLeafSize, offset+mid, depth+1))
	})

	for leftResult.Load() == nil || rightResult.Load() == nil {
		if ps.failed.Load() {
			return nil
		}
		if task, popped := ps.pool.TryPopWaiting(); popped {
			ps.pool.RunTask(task)
		} else {
			time.Sleep(workerpool.BackoffInterval)
		}
	}

	leftNode, rightNode := leftResult.Load(), rightResult.Load()
	if leftNode == nil || rightNode == nil {
		ps.failed.Store(true)
		return nil
	}

	node, allocOK := ps.arena.TryAlloc()
	if !allocOK {
		ps.failed.Store(true)
		return nil
	}
	node.left = leftNode
	node.right = rightNode
	node.bounds = leftNode.bounds.Union(rightNode.bounds)
	return node
}

func allocParallelLeaf(ps *parallelState, prims []buildPrimitive, offset int) *buildNode {
	tight := unionBoundsOf(prims)
	node, ok := ps.arena.TryAlloc()
	if !ok {
		ps.failed.Store(true)
		return nil
	}
	node.bounds = tight
	node.start = offset
	node.count = len(prims)
	return node
}

func allocParallelMedianSplit(ps *parallelState, prims []buildPrimitive, bounds primitive.AABB, maxLeafSize, offset, depth int) *buildNode {
	if len(prims) <= maxLeafSize || len(prims) < 2 {
		return allocParallelLeaf(ps, prims, offset)
	}

	axis := bounds.LongestAxis()
	sort.SliceStable(prims, func(i, j int) bool {
		return prims[i].centroid.Axis(axis) < prims[j].centroid.Axis(axis)
	})

	mid := len(prims) / 2
	left := buildParallelNode(ps, prims[:mid], maxLeafSize, offset, depth+1)
	right := buildParallelNode(ps, prims[mid:], maxLeafSize, offset+mid, depth+1)
	if left == nil || right == nil {
		ps.failed.Store(true)
		return nil
	}

	node, ok := ps.arena.TryAlloc()
	if !ok {
		ps.failed.Store(true)
		return nil
	}
	node.left = left
	node.right = right
	node.bounds = left.bounds.Union(right.bounds)
	return node
}
