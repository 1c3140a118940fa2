// Package arena implements a growing bump allocator used by the SAH builder
// (pkg/bvh) to source the buildNode pointer tree, so it can be released
// wholesale when a build finishes, instead of leaning on individual
// GC-tracked allocations. Other build-time scratch (the SAH bins, which are
// fixed-size local arrays, and parallel-build task closures) does not come
// from an arena.
//
// Adapted from the per-type sync.Pool idiom in
// other_examples/c3ff9e5b_JoshElkind-concurrent-raytracer-go__internal-optimization-spatial_acceleration.go.go's
// ObjectPool: that pool hands back independently-recycled Ray/HitRecord/
// Vec3/AABB values, whereas the builder needs many short-lived structs of a
// single scratch type freed together, so this is a bump arena of chunked
// slices rather than a set of per-object pools. Kept free of unsafe: a
// pointer into one of the arena's chunks stays valid for the arena's
// lifetime because chunks are never reallocated in place, only appended.
package arena

import "sync"

const defaultChunkLen = 1024

// Arena is a growing, thread-safe bump allocator for values of type T. One
// Arena backs one BVH build (sequential or parallel); Reset discards every
// chunk once the build's pointer tree has been flattened and is no longer
// needed. maxTotal (set through NewBounded), when positive, bounds the arena's total allocation
// count; a caller that needs to recover from exhaustion (a parallel build
// falling back to a sequential one, say) should use TryAlloc instead of
// Alloc.
type Arena[T any] struct {
	mu       sync.Mutex
	chunks   [][]T
	chunkLen int
	total    int
	maxTotal int
}

// New creates an empty Arena with the given chunk size (values allocated
// per growth step). A chunkLen <= 0 uses a reasonable default.
func New[T any](chunkLen int) *Arena[T] {
	if chunkLen <= 0 {
		chunkLen = defaultChunkLen
	}
	return &Arena[T]{chunkLen: chunkLen}
}

// NewBounded creates an Arena that refuses allocations past maxTotal values
// (a maxTotal <= 0 means unbounded, same as New).
func NewBounded[T any](chunkLen, maxTotal int) *Arena[T] {
	a := New[T](chunkLen)
	a.maxTotal = maxTotal
	return a
}

// Alloc returns a pointer to a fresh zero-valued T sourced from the arena,
// safe for concurrent callers, since a parallel build allocates from the
// same arena across multiple goroutines. Panics if the arena is bounded and
// exhausted; callers that want to recover should use TryAlloc.
func (a *Arena[T]) Alloc() *T {
	p, ok := a.TryAlloc()
	if !ok {
		panic("arena: allocation exceeds bounded capacity")
	}
	return p
}

// TryAlloc is Alloc's non-panicking form: it reports ok=false instead of
// panicking when a bounded arena is exhausted.
func (a *Arena[T]) TryAlloc() (*T, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.maxTotal > 0 && a.total >= a.maxTotal {
		return nil, false
	}

	if len(a.chunks) == 0 {
		a.chunks = append(a.chunks, make([]T, 0, a.chunkLen))
	}
	last := a.chunks[len(a.chunks)-1]
	if len(last) == cap(last) {
		last = make([]T, 0, a.chunkLen)
		a.chunks = append(a.chunks, last)
	}
	last = last[:len(last)+1]
	a.chunks[len(a.chunks)-1] = last
	a.total++
	return &last[len(last)-1], true
}

// Len reports the total number of values allocated so far.
func (a *Arena[T]) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.total
}

// Reset discards every chunk, releasing all memory the arena has handed
// out. Build-time pointers into the arena must not be retained past Reset.
func (a *Arena[T]) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.chunks = nil
	a.total = 0
}
