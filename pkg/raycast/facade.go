// Package raycast is the façade over the acceleration layers: given a slice
// of primitives and a user intersection test, it builds whichever index
// Config asks for, runs one of the three raycast rules, and discards the
// index before returning. Nothing it builds outlives the call.
package raycast

import (
	"github.com/arcengine/spatialcore/pkg/bvh"
	"github.com/arcengine/spatialcore/pkg/octree"
	"github.com/arcengine/spatialcore/pkg/primitive"
)

// Accel selects which acceleration structure a façade call builds on demand.
type Accel int

const (
	AccelBVH Accel = iota
	AccelOctree
	AccelBruteForce
)

// Config controls one façade call.
type Config struct {
	MaxDist  float64
	MaxTests int // 0 means unlimited
	Accel    Accel
}

// BoundsFunc computes the bounding box of a payload value.
type BoundsFunc[T any] func(T) primitive.AABB

// IntersectFunc reports the ray parameter at which ray hits item, within
// [0, maxT], or hit=false if it doesn't.
type IntersectFunc[T any] func(ray primitive.Ray, item T, maxT float64) (t float64, hit bool)

// Hit is one façade result.
type Hit[T any] struct {
	Primitive T
	T         float64
	Hit       bool
}

// Raycast returns the closest hit among items along ray, within cfg.MaxDist,
// using whichever acceleration structure cfg.Accel names.
func Raycast[T any](items []T, ray primitive.Ray, boundsFn BoundsFunc[T], intersectFn IntersectFunc[T], cfg Config) Hit[T] {
	if len(items) == 0 || boundsFn == nil {
		return Hit[T]{T: cfg.MaxDist}
	}
	wrapped := budgetWrap(cfg.MaxTests, intersectFn)

	switch cfg.Accel {
	case AccelBVH:
		idx := bvh.NewBVH(items, bvh.BoundsFunc[T](boundsFn))
		r := idx.Raycast(ray, cfg.MaxDist, bvh.IntersectFunc[T](wrapped))
		return Hit[T]{Primitive: r.Primitive, T: r.T, Hit: r.Hit}
	case AccelOctree:
		idx := buildOctree(items, boundsFn)
		r := idx.Raycast(ray, cfg.MaxDist, octree.IntersectFunc[T](wrapped))
		return Hit[T]{Primitive: r.Primitive, T: r.T, Hit: r.Hit}
	default:
		return bruteRaycast(items, ray, cfg.MaxDist, wrapped)
	}
}

// RaycastSingle returns the first hit among items along ray within
// cfg.MaxDist, stopping traversal as soon as one is accepted.
func RaycastSingle[T any](items []T, ray primitive.Ray, boundsFn BoundsFunc[T], intersectFn IntersectFunc[T], cfg Config) Hit[T] {
	if len(items) == 0 || boundsFn == nil {
		return Hit[T]{T: cfg.MaxDist}
	}
	wrapped := budgetWrap(cfg.MaxTests, intersectFn)

	switch cfg.Accel {
	case AccelBVH:
		idx := bvh.NewBVH(items, bvh.BoundsFunc[T](boundsFn))
		r := idx.RaycastSingle(ray, cfg.MaxDist, bvh.IntersectFunc[T](wrapped))
		return Hit[T]{Primitive: r.Primitive, T: r.T, Hit: r.Hit}
	case AccelOctree:
		idx := buildOctree(items, boundsFn)
		r := idx.RaycastSingle(ray, cfg.MaxDist, octree.IntersectFunc[T](wrapped))
		return Hit[T]{Primitive: r.Primitive, T: r.T, Hit: r.Hit}
	default:
		return bruteRaycastSingle(items, ray, cfg.MaxDist, wrapped)
	}
}

// RaycastMulti collects every hit among items along ray within cfg.MaxDist,
// sorted ascending by t.
func RaycastMulti[T any](items []T, ray primitive.Ray, boundsFn BoundsFunc[T], intersectFn IntersectFunc[T], cfg Config) []Hit[T] {
	if len(items) == 0 || boundsFn == nil {
		return nil
	}
	wrapped := budgetWrap(cfg.MaxTests, intersectFn)

	var raw []Hit[T]
	switch cfg.Accel {
	case AccelBVH:
		idx := bvh.NewBVH(items, bvh.BoundsFunc[T](boundsFn))
		for _, h := range idx.RaycastMulti(ray, cfg.MaxDist, bvh.IntersectFunc[T](wrapped)) {
			raw = append(raw, Hit[T]{Primitive: h.Primitive, T: h.T, Hit: h.Hit})
		}
	case AccelOctree:
		idx := buildOctree(items, boundsFn)
		for _, h := range idx.RaycastMulti(ray, cfg.MaxDist, octree.IntersectFunc[T](wrapped)) {
			raw = append(raw, Hit[T]{Primitive: h.Primitive, T: h.T, Hit: h.Hit})
		}
	default:
		raw = bruteRaycastMulti(items, ray, cfg.MaxDist, wrapped)
	}
	return raw
}

func buildOctree[T any](items []T, boundsFn BoundsFunc[T]) *octree.Octree[T] {
	bounds := primitive.EmptyAABB()
	for _, item := range items {
		bounds = bounds.Union(boundsFn(item))
	}
	idx := octree.New(bounds, octree.BoundsFunc[T](boundsFn))
	for _, item := range items {
		idx.Insert(item)
	}
	return idx
}

// budgetWrap caps intersectFn to at most maxTests calls (maxTests <= 0
// means unlimited); once exhausted it reports a miss without invoking
// intersectFn at all, so callers observe the budget precisely.
func budgetWrap[T any](maxTests int, intersectFn IntersectFunc[T]) IntersectFunc[T] {
	if maxTests <= 0 {
		return intersectFn
	}
	used := 0
	return func(ray primitive.Ray, item T, maxT float64) (float64, bool) {
		if used >= maxTests {
			return 0, false
		}
		used++
		return intersectFn(ray, item, maxT)
	}
}

func bruteRaycast[T any](items []T, ray primitive.Ray, maxDist float64, intersectFn IntersectFunc[T]) Hit[T] {
	result := Hit[T]{T: maxDist}
	for _, item := range items {
		if t, hit := intersectFn(ray, item, result.T); hit && t < result.T {
			result.T = t
			result.Primitive = item
			result.Hit = true
		}
	}
	return result
}

func bruteRaycastSingle[T any](items []T, ray primitive.Ray, maxDist float64, intersectFn IntersectFunc[T]) Hit[T] {
	result := Hit[T]{T: maxDist}
	for _, item := range items {
		if t, hit := intersectFn(ray, item, result.T); hit {
			result.T = t
			result.Primitive = item
			result.Hit = true
			return result
		}
	}
	return result
}

func bruteRaycastMulti[T any](items []T, ray primitive.Ray, maxDist float64, intersectFn IntersectFunc[T]) []Hit[T] {
	var hits []Hit[T]
	for _, item := range items {
		if t, hit := intersectFn(ray, item, maxDist); hit {
			hits = append(hits, Hit[T]{Primitive: item, T: t, Hit: true})
		}
	}
	for i := 1; i < len(hits); i++ {
		for j := i; j > 0 && hits[j].T < hits[j-1].T; j-- {
			hits[j], hits[j-1] = hits[j-1], hits[j]
		}
	}
	return hits
}
