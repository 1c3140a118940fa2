// Package octree implements an adaptive octree over a generic payload type:
// nodes subdivide into eight octants on overflow and collapse back to a
// single leaf once too few items remain under them. Items whose bounds
// straddle a node's split planes are kept directly on that node (the
// "crossing" set) instead of being forced into a single child.
package octree

import (
	"go.uber.org/zap"

	"github.com/arcengine/spatialcore/pkg/primitive"
)

// DefaultMaxItems is the item count a leaf holds before it subdivides.
const DefaultMaxItems = 8

// DefaultMaxDepth bounds how many times a node may subdivide.
const DefaultMaxDepth = 8

// DefaultMinSize is the smallest per-axis extent a node may subdivide down
// to, regardless of item count.
const DefaultMinSize = 1e-3

// collapseThreshold is how few items a node's subtree must hold after a
// removal before the node collapses back into a single leaf.
const collapseThreshold = 4

// BoundsFunc computes the bounding box of a payload value.
type BoundsFunc[T any] func(T) primitive.AABB

// Node is one node of the tree: either a leaf holding items directly, or an
// internal node holding only its crossing items plus eight children.
type Node[T any] struct {
	bounds     primitive.AABB
	children   [8]*Node[T]
	items      []T
	isLeaf     bool
	depth      int
	totalItems int
}

// Bounds returns the node's region.
func (n *Node[T]) Bounds() primitive.AABB { return n.bounds }

// IsLeaf reports whether n has no children.
func (n *Node[T]) IsLeaf() bool { return n.isLeaf }

// Octree is an adaptive octree over payload type T.
type Octree[T any] struct {
	root     *Node[T]
	boundsFn BoundsFunc[T]
	maxItems int
	maxDepth int
	minSize  float64
	total    int
	logger   *zap.Logger
}

// Option configures an Octree at construction time.
type Option func(*options)

type options struct {
	maxItems int
	maxDepth int
	minSize  float64
	logger   *zap.Logger
}

func defaultOptions() options {
	return options{
		maxItems: DefaultMaxItems,
		maxDepth: DefaultMaxDepth,
		minSize:  DefaultMinSize,
		logger:   zap.NewNop(),
	}
}

// WithMaxItems overrides the per-leaf item threshold before subdivision.
func WithMaxItems(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxItems = n
		}
	}
}

// WithMaxDepth overrides how many times a node may subdivide.
func WithMaxDepth(d int) Option {
	return func(o *options) {
		if d > 0 {
			o.maxDepth = d
		}
	}
}

// WithMinSize overrides the smallest per-axis extent a node may subdivide to.
func WithMinSize(size float64) Option {
	return func(o *options) {
		if size > 0 {
			o.minSize = size
		}
	}
}

// WithLogger injects a structured logger; the default is a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// New creates an empty Octree covering bounds, using boundsFn to compute
// each item's bounding box.
func New[T any](bounds primitive.AABB, boundsFn BoundsFunc[T], opts ...Option) *Octree[T] {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Octree[T]{
		root:     &Node[T]{bounds: bounds, isLeaf: true},
		boundsFn: boundsFn,
		maxItems: o.maxItems,
		maxDepth: o.maxDepth,
		minSize:  o.minSize,
		logger:   o.logger,
	}
}

// NewCached creates an empty Octree over a payload type that caches its own
// bounds, covering bounds.
func NewCached[T primitive.HasBounds](bounds primitive.AABB, opts ...Option) *Octree[T] {
	return New[T](bounds, func(t T) primitive.AABB { return t.Bounds() }, opts...)
}

// SetLogger replaces the tree's diagnostic logger.
func (o *Octree[T]) SetLogger(logger *zap.Logger) {
	if logger != nil {
		o.logger = logger
	}
}

func (o *Octree[T]) itemBounds(item T) primitive.AABB {
	return o.boundsFn(item)
}

// Len reports how many items the tree holds.
func (o *Octree[T]) Len() int {
	return o.total
}

// Root exposes the tree's root node, mainly for stats and test inspection.
func (o *Octree[T]) Root() *Node[T] {
	return o.root
}

// octantBounds returns the bounding box of octant idx (0-7, one bit per
// axis) within parent, splitting each axis at parent's center.
func octantBounds(parent primitive.AABB, idx int) primitive.AABB {
	center := parent.Center()
	min, max := parent.Min, parent.Max

	for axis := 0; axis < 3; axis++ {
		if idx&(1<<axis) != 0 {
			min = min.WithAxis(axis, center.Axis(axis))
		} else {
			max = max.WithAxis(axis, center.Axis(axis))
		}
	}
	return primitive.NewAABB(min, max)
}

// classify reports which single octant of parent wholly contains bounds,
// or fits=false if bounds straddles parent's center on any axis (in which
// case the item must stay on parent as a crossing item).
func classify(parent primitive.AABB, bounds primitive.AABB) (idx int, fits bool) {
	center := parent.Center()
	for axis := 0; axis < 3; axis++ {
		c := center.Axis(axis)
		switch {
		case bounds.Min.Axis(axis) >= c:
			idx |= 1 << axis
		case bounds.Max.Axis(axis) <= c:
			// stays on the negative side; bit left clear
		default:
			return 0, false
		}
	}
	return idx, true
}

// shouldSubdivide reports whether n has outgrown its item threshold and is
// still eligible to split: below max depth and not already too small.
func (o *Octree[T]) shouldSubdivide(n *Node[T]) bool {
	return len(n.items) > o.maxItems &&
		n.depth < o.maxDepth &&
		n.bounds.Size().MinComponent() > o.minSize
}

// Insert adds item to the tree, descending to the smallest octant whose
// bounds wholly contain it, subdividing nodes that overflow along the way.
func (o *Octree[T]) Insert(item T) {
	o.total++
	o.insertInto(o.root, item, o.itemBounds(item))
}

func (o *Octree[T]) insertInto(n *Node[T], item T, bounds primitive.AABB) {
	n.totalItems++

	if n.isLeaf {
		n.items = append(n.items, item)
		if o.shouldSubdivide(n) {
			o.subdivide(n)
		}
		return
	}

	if idx, fits := classify(n.bounds, bounds); fits {
		o.insertInto(n.children[idx], item, bounds)
		return
	}
	n.items = append(n.items, item)
}

// subdivide splits a leaf into eight children and redistributes its items:
// any item wholly contained in a single octant descends into that child;
// items straddling the center stay on n as crossing items.
func (o *Octree[T]) subdivide(n *Node[T]) {
	n.isLeaf = false
	for i := 0; i < 8; i++ {
		n.children[i] = &Node[T]{bounds: octantBounds(n.bounds, i), isLeaf: true, depth: n.depth + 1}
	}

	pending := n.items
	n.items = n.items[:0]
	for _, item := range pending {
		bounds := o.itemBounds(item)
		if idx, fits := classify(n.bounds, bounds); fits {
			o.insertInto(n.children[idx], item, bounds)
		} else {
			n.items = append(n.items, item)
		}
	}
}

// Remove deletes the first item in the tree for which equal(candidate,
// item) is true, reporting whether anything was removed. Nodes whose
// subtree falls below collapseThreshold items after a removal collapse
// back into a single leaf.
func (o *Octree[T]) Remove(item T, equal func(a, b T) bool) bool {
	bounds := o.itemBounds(item)
	if o.removeFrom(o.root, item, bounds, equal) {
		o.total--
		return true
	}
	return false
}

func (o *Octree[T]) removeFrom(n *Node[T], item T, bounds primitive.AABB, equal func(a, b T) bool) bool {
	for i, candidate := range n.items {
		if equal(candidate, item) {
			n.items = append(n.items[:i], n.items[i+1:]...)
			n.totalItems--
			o.maybeCollapse(n)
			return true
		}
	}

	if n.isLeaf {
		return false
	}

	if idx, fits := classify(n.bounds, bounds); fits {
		if o.removeFrom(n.children[idx], item, bounds, equal) {
			n.totalItems--
			o.maybeCollapse(n)
			return true
		}
		return false
	}

	for _, child := range n.children {
		if child != nil && child.bounds.Intersects(bounds) {
			if o.removeFrom(child, item, bounds, equal) {
				n.totalItems--
				o.maybeCollapse(n)
				return true
			}
		}
	}
	return false
}

func (o *Octree[T]) maybeCollapse(n *Node[T]) {
	if n.isLeaf || n.totalItems >= collapseThreshold {
		return
	}
	var gathered []T
	collectAll(n, &gathered)
	n.items = gathered
	n.isLeaf = true
	for i := range n.children {
		n.children[i] = nil
	}
}

func collectAll[T any](n *Node[T], out *[]T) {
	*out = append(*out, n.items...)
	if !n.isLeaf {
		for _, c := range n.children {
			if c != nil {
				collectAll(c, out)
			}
		}
	}
}

// Update moves item from oldBounds to its current bounds. If the old and
// new bounds contain each other (no meaningful change), it's a no-op;
// otherwise the item is removed from its old position and reinserted at
// its new one.
func (o *Octree[T]) Update(item T, oldBounds primitive.AABB, equal func(a, b T) bool) bool {
	newBounds := o.itemBounds(item)
	if oldBounds.Contains(newBounds) && newBounds.Contains(oldBounds) {
		return true
	}
	if !o.removeFrom(o.root, item, oldBounds, equal) {
		return false
	}
	o.insertInto(o.root, item, newBounds)
	return true
}
