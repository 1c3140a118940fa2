// Package bvh implements a flattened bounding volume hierarchy over a generic
// payload type, built with binned surface-area-heuristic splits and a
// median-split fallback. One tree indexes a fixed slice of items; mutation
// (Insert/Remove) marks the tree for rebuild rather than reshaping it in
// place, except for InsertIncremental which grows a single leaf and refits.
package bvh

import (
	"go.uber.org/zap"

	"github.com/arcengine/spatialcore/internal/arena"
	"github.com/arcengine/spatialcore/pkg/primitive"
)

// Node is one entry of the flattened, pre-order BVH array. A leaf has
// PrimitiveCount > 0 and both child indices at -1; an internal node has
// PrimitiveCount == -1 and both child indices >= 0.
type Node struct {
	Bounds         primitive.AABB
	LeftChild      int32
	RightChild     int32
	PrimitiveStart int32
	PrimitiveCount int32
}

// IsLeaf reports whether n is a leaf node.
func (n Node) IsLeaf() bool {
	return n.PrimitiveCount >= 0
}

// BoundsFunc computes the bounding box of a payload value. Supplied by
// NewBVH for payload types that don't cache their own bounds on a field.
type BoundsFunc[T any] func(T) primitive.AABB

// BVH is a flattened bounding volume hierarchy over payload type T.
type BVH[T any] struct {
	nodes        []Node
	prims        []T
	pending      []T
	boundsFn     BoundsFunc[T]
	cachedField  bool
	batch4       bool
	maxLeafSize  int
	nodeLevels   [][]int32
	maxDepth     int
	needsRebuild bool
	logger       *zap.Logger
}

// Option configures a BVH at construction time.
type Option func(*options)

type options struct {
	maxLeafSize int
	batch4      bool
	logger      *zap.Logger
}

func defaultOptions() options {
	return options{maxLeafSize: DefaultMaxLeafSize, logger: zap.NewNop()}
}

// WithMaxLeafSize overrides the builder's leaf-size threshold (default 4).
func WithMaxLeafSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxLeafSize = n
		}
	}
}

// WithBatch4 enables the batched 4-wide AABB leaf test. Only takes effect on
// trees built through NewBVHCached, since the batched path depends on
// reading bounds straight off the payload's cached field four at a time.
func WithBatch4(enabled bool) Option {
	return func(o *options) { o.batch4 = enabled }
}

// WithLogger injects a structured logger; the default is a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// NewBVH builds a BVH over items using boundsFn to compute each item's
// bounding box.
func NewBVH[T any](items []T, boundsFn BoundsFunc[T], opts ...Option) *BVH[T] {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	b := &BVH[T]{
		boundsFn:    boundsFn,
		maxLeafSize: o.maxLeafSize,
		logger:      o.logger,
	}
	b.build(items)
	return b
}

// NewBVHCached builds a BVH over items whose type reports its own bounds via
// Bounds(). The tree's bounds function is a closure over Bounds(), so leaf
// tests still make that indirect call; what this constructor adds is that,
// when WithBatch4 is set, leaf AABB queries take the batched 4-wide path.
func NewBVHCached[T primitive.HasBounds](items []T, opts ...Option) *BVH[T] {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	b := &BVH[T]{
		boundsFn:    func(t T) primitive.AABB { return t.Bounds() },
		cachedField: true,
		batch4:      o.batch4,
		maxLeafSize: o.maxLeafSize,
		logger:      o.logger,
	}
	b.build(items)
	return b
}

// SetLogger replaces the BVH's diagnostic logger.
func (b *BVH[T]) SetLogger(logger *zap.Logger) {
	if logger != nil {
		b.logger = logger
	}
}

func (b *BVH[T]) itemBounds(item T) primitive.AABB {
	return b.boundsFn(item)
}

// build runs the sequential SAH builder over items and flattens the result.
// An empty items slice leaves both nodes and prims empty rather than
// building a single degenerate empty-leaf root.
func (b *BVH[T]) build(items []T) {
	if len(items) == 0 {
		b.nodes = nil
		b.prims = nil
		b.nodeLevels, b.maxDepth = nil, 0
		b.needsRebuild = false
		return
	}

	bps := make([]buildPrimitive, len(items))
	for i, item := range items {
		bounds := b.itemBounds(item)
		bps[i] = buildPrimitive{
			originalIndex: i,
			bounds:        bounds,
			centroid:      bounds.Center(),
		}
	}

	a := arena.New[buildNode](256)
	root := buildSAH(a, bps, b.maxLeafSize, 0)

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

	a.Reset()

	b.logger.Debug("bvh build complete",
		zap.Int("primitives", len(items)),
		zap.Int("nodes", len(nodes)),
		zap.Int("max_depth", b.maxDepth),
	)
}

// Build rebuilds the tree from scratch over the given items, discarding
// whatever it previously indexed.
func (b *BVH[T]) Build(items []T) {
	b.build(items)
}

// flattenNode emits bn and its subtree into nodes in pre-order, returning
// bn's index in the resulting array.
func flattenNode(bn *buildNode, nodes *[]Node) int32 {
	idx := int32(len(*nodes))
	*nodes = append(*nodes, Node{})

	if bn.left == nil && bn.right == nil {
		(*nodes)[idx] = Node{
			Bounds:         bn.bounds,
			LeftChild:      -1,
			RightChild:     -1,
			PrimitiveStart: int32(bn.start),
			PrimitiveCount: int32(bn.count),
		}
		return idx
	}

	leftIdx := flattenNode(bn.left, nodes)
	rightIdx := flattenNode(bn.right, nodes)
	(*nodes)[idx] = Node{
		Bounds:         bn.bounds,
		LeftChild:      leftIdx,
		RightChild:     rightIdx,
		PrimitiveStart: -1,
		PrimitiveCount: -1,
	}
	return idx
}

// computeLevels performs a breadth-first sweep over the flattened array,
// grouping node indices by depth. Unused by query, but lets a parallel refit
// walk from the deepest level up.
func computeLevels(nodes []Node) (levels [][]int32, maxDepth int) {
	if len(nodes) == 0 {
		return nil, 0
	}

	levels = append(levels, []int32{0})
	for {
		cur := levels[len(levels)-1]
		var next []int32
		for _, ni := range cur {
			n := nodes[ni]
			if !n.IsLeaf() {
				next = append(next, n.LeftChild, n.RightChild)
			}
		}
		if len(next) == 0 {
			break
		}
		levels = append(levels, next)
	}
	return levels, len(levels) - 1
}

// Len reports the number of primitives indexed by the tree.
func (b *BVH[T]) Len() int {
	return len(b.prims)
}

// Primitives returns the tree's reordered primitive slice, read-only for
// callers: its order is the leaf-contiguous order flatten() produced, not
// the caller's original insertion order.
func (b *BVH[T]) Primitives() []T {
	return b.prims
}

// QueryAABB appends every indexed item whose bounds intersect q to out and
// returns the result, using a fixed 64-entry array stack.
func (b *BVH[T]) QueryAABB(q primitive.AABB, out []T) []T {
	if len(b.nodes) == 0 {
		return out
	}

	var stack [64]int32
	sp := 0
	stack[0] = 0
	sp = 1

	for sp > 0 {
		sp--
		idx := stack[sp]
		n := b.nodes[idx]
		if !n.Bounds.Intersects(q) {
			continue
		}
		if n.IsLeaf() {
			out = b.scanLeafAABB(n, q, out)
			continue
		}
		stack[sp] = n.LeftChild
		sp++
		stack[sp] = n.RightChild
		sp++
	}
	return out
}

func (b *BVH[T]) scanLeafAABB(n Node, q primitive.AABB, out []T) []T {
	start, count := n.PrimitiveStart, n.PrimitiveCount
	if b.cachedField && b.batch4 {
		i := int32(0)
		for ; i+4 <= count; i += 4 {
			var a, bb [4]primitive.AABB
			for k := int32(0); k < 4; k++ {
				a[k] = b.itemBounds(b.prims[start+i+k])
				bb[k] = q
			}
			mask := primitive.IntersectsBatch4(a, bb)
			for k := int32(0); k < 4; k++ {
				if mask[k] {
					out = append(out, b.prims[start+i+k])
				}
			}
		}
		for ; i < count; i++ {
			item := b.prims[start+i]
			if b.itemBounds(item).Intersects(q) {
				out = append(out, item)
			}
		}
		return out
	}

	for i := int32(0); i < count; i++ {
		item := b.prims[start+i]
		if b.itemBounds(item).Intersects(q) {
			out = append(out, item)
		}
	}
	return out
}

// QueryRay appends every indexed item whose bounds are pierced by
// ray within [0, maxDist] to out and returns the result.
func (b *BVH[T]) QueryRay(ray primitive.Ray, maxDist float64, out []T) []T {
	if len(b.nodes) == 0 {
		return out
	}

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
				if b.itemBounds(item).Hit(ray, 0, maxDist) {
					out = append(out, item)
				}
			}
			continue
		}
		stack[sp] = n.LeftChild
		sp++
		stack[sp] = n.RightChild
		sp++
	}
	return out
}

// QuerySphere appends every indexed item whose bounds touch the sphere
// (center, radius) to out and returns the result.
func (b *BVH[T]) QuerySphere(center primitive.Vec3, radius float64, out []T) []T {
	if len(b.nodes) == 0 {
		return out
	}

	var stack [64]int32
	sp := 0
	stack[0] = 0
	sp = 1

	for sp > 0 {
		sp--
		idx := stack[sp]
		n := b.nodes[idx]
		if !n.Bounds.SphereIntersects(center, radius) {
			continue
		}
		if n.IsLeaf() {
			start, count := n.PrimitiveStart, n.PrimitiveCount
			for i := int32(0); i < count; i++ {
				item := b.prims[start+i]
				if b.itemBounds(item).SphereIntersects(center, radius) {
					out = append(out, item)
				}
			}
			continue
		}
		stack[sp] = n.LeftChild
		sp++
		stack[sp] = n.RightChild
		sp++
	}
	return out
}
