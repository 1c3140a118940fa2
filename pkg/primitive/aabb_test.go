package primitive_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcengine/spatialcore/pkg/primitive"
)

func TestAABBUnionIsIdentityForEmpty(t *testing.T) {
	box := primitive.NewAABB(primitive.NewVec3(1, 2, 3), primitive.NewVec3(4, 5, 6))
	union := box.Union(primitive.EmptyAABB())
	assert.Equal(t, box, union)
}

func TestAABBIntersectsInclusiveOnBoundary(t *testing.T) {
	a := primitive.NewAABB(primitive.NewVec3(0, 0, 0), primitive.NewVec3(1, 1, 1))
	b := primitive.NewAABB(primitive.NewVec3(1, 0, 0), primitive.NewVec3(2, 1, 1))
	assert.True(t, a.Intersects(b))
}

func TestAABBContainsStrict(t *testing.T) {
	outer := primitive.NewAABB(primitive.NewVec3(0, 0, 0), primitive.NewVec3(10, 10, 10))
	inner := primitive.NewAABB(primitive.NewVec3(1, 1, 1), primitive.NewVec3(9, 9, 9))
	assert.True(t, outer.Contains(inner))

	straddling := primitive.NewAABB(primitive.NewVec3(-1, 1, 1), primitive.NewVec3(9, 9, 9))
	assert.False(t, outer.Contains(straddling))
}

func TestAABBSurfaceAreaAndVolume(t *testing.T) {
	box := primitive.NewAABB(primitive.NewVec3(0, 0, 0), primitive.NewVec3(2, 3, 4))
	assert.InDelta(t, 2.0*(2*3+3*4+4*2), box.SurfaceArea(), 1e-9)
	assert.InDelta(t, 24.0, box.Volume(), 1e-9)
}

func TestAABBRayIntersectSlab(t *testing.T) {
	box := primitive.NewAABB(primitive.NewVec3(-1, -1, -1), primitive.NewVec3(1, 1, 1))
	ray := primitive.NewRay(primitive.NewVec3(-5, 0, 0), primitive.NewVec3(1, 0, 0))

	tNear, tFar, hit := box.RayIntersect(ray, 0, 100)
	require.True(t, hit)
	assert.InDelta(t, 4.0, tNear, 1e-9)
	assert.InDelta(t, 6.0, tFar, 1e-9)
}

func TestAABBRayIntersectParallelAxisMiss(t *testing.T) {
	box := primitive.NewAABB(primitive.NewVec3(-1, -1, -1), primitive.NewVec3(1, 1, 1))
	// Direction has zero X, so the slab test falls to the parallel-axis
	// branch on X; origin.X is outside the slab, so it must miss.
	ray := primitive.NewRay(primitive.NewVec3(5, 0, 0), primitive.NewVec3(0, 1, 0))
	_, _, hit := box.RayIntersect(ray, 0, 100)
	assert.False(t, hit)
}

func TestAABBSphereIntersects(t *testing.T) {
	box := primitive.NewAABB(primitive.NewVec3(0, 0, 0), primitive.NewVec3(1, 1, 1))
	assert.True(t, box.SphereIntersects(primitive.NewVec3(2, 0.5, 0.5), 1.5))
	assert.False(t, box.SphereIntersects(primitive.NewVec3(10, 0.5, 0.5), 1.0))
}

func TestAABBDegenerateZeroVolumeBox(t *testing.T) {
	point := primitive.NewVec3(3, 3, 3)
	box := primitive.NewAABB(point, point)
	assert.True(t, box.IsValid())
	assert.InDelta(t, 0.0, box.Volume(), 1e-12)
	assert.True(t, box.ContainsPoint(point))
}

func TestAABBIntersectsBatch4(t *testing.T) {
	a := [4]primitive.AABB{
		primitive.NewAABB(primitive.NewVec3(0, 0, 0), primitive.NewVec3(1, 1, 1)),
		primitive.NewAABB(primitive.NewVec3(0, 0, 0), primitive.NewVec3(1, 1, 1)),
		primitive.NewAABB(primitive.NewVec3(0, 0, 0), primitive.NewVec3(1, 1, 1)),
		primitive.NewAABB(primitive.NewVec3(0, 0, 0), primitive.NewVec3(1, 1, 1)),
	}
	b := [4]primitive.AABB{
		primitive.NewAABB(primitive.NewVec3(0.5, 0.5, 0.5), primitive.NewVec3(2, 2, 2)),
		primitive.NewAABB(primitive.NewVec3(5, 5, 5), primitive.NewVec3(6, 6, 6)),
		primitive.NewAABB(primitive.NewVec3(1, 1, 1), primitive.NewVec3(2, 2, 2)),
		primitive.NewAABB(primitive.NewVec3(-5, -5, -5), primitive.NewVec3(-1, -1, -1)),
	}
	mask := primitive.IntersectsBatch4(a, b)
	assert.Equal(t, [4]bool{true, false, true, false}, mask)
}
