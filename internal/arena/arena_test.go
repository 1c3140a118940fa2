package arena_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcengine/spatialcore/internal/arena"
)

func TestAllocGrowsAcrossChunks(t *testing.T) {
	a := arena.New[int](4)
	var ptrs []*int
	for i := 0; i < 10; i++ {
		p := a.Alloc()
		*p = i
		ptrs = append(ptrs, p)
	}

	assert.Equal(t, 10, a.Len())
	for i, p := range ptrs {
		assert.Equal(t, i, *p)
	}
}

func TestPointersSurviveFurtherAllocation(t *testing.T) {
	a := arena.New[int](2)
	first := a.Alloc()
	*first = 42
	for i := 0; i < 20; i++ {
		a.Alloc()
	}
	assert.Equal(t, 42, *first)
}

func TestTryAllocReportsExhaustionWhenBounded(t *testing.T) {
	a := arena.NewBounded[int](4, 3)

	for i := 0; i < 3; i++ {
		_, ok := a.TryAlloc()
		require.True(t, ok)
	}

	_, ok := a.TryAlloc()
	assert.False(t, ok)
	assert.Equal(t, 3, a.Len())
}

func TestAllocPanicsWhenBoundedAndExhausted(t *testing.T) {
	a := arena.NewBounded[int](4, 1)
	a.Alloc()
	assert.Panics(t, func() { a.Alloc() })
}

func TestResetReclaimsCapacity(t *testing.T) {
	a := arena.New[int](4)
	a.Alloc()
	a.Alloc()
	require.Equal(t, 2, a.Len())

	a.Reset()
	assert.Equal(t, 0, a.Len())

	a.Alloc()
	assert.Equal(t, 1, a.Len())
}

func TestConcurrentAllocIsRaceFree(t *testing.T) {
	a := arena.New[int](16)
	var wg sync.WaitGroup
	const goroutines, perGoroutine = 8, 50

	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				p := a.Alloc()
				*p = i
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, goroutines*perGoroutine, a.Len())
}
