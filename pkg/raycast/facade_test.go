package raycast_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcengine/spatialcore/pkg/primitive"
	"github.com/arcengine/spatialcore/pkg/raycast"
)

func sphereBounds(s primitive.Sphere) primitive.AABB {
	return s.Bounds()
}

func sphereIntersect(ray primitive.Ray, s primitive.Sphere, maxT float64) (float64, bool) {
	return s.RayIntersect(ray, 0, maxT)
}

func mixedBounds(p primitive.Primitive) primitive.AABB {
	return p.Bounds()
}

func mixedIntersect(ray primitive.Ray, p primitive.Primitive, maxT float64) (float64, bool) {
	return p.RayIntersect(ray, 0, maxT)
}

// TestRaycastOverMixedPrimitiveKinds indexes a Triangle and a Sphere in the
// same tree through the tagged Primitive sum-type, the way a caller with a
// scene of mixed shape kinds would.
func TestRaycastOverMixedPrimitiveKinds(t *testing.T) {
	tri := primitive.NewTrianglePrimitive(primitive.NewTriangle(
		primitive.NewVec3(-1, -1, 0),
		primitive.NewVec3(1, -1, 0),
		primitive.NewVec3(0, 1, 0),
	))
	sph := primitive.NewSpherePrimitive(primitive.NewSphere(primitive.NewVec3(0, 0, 10), 1))
	items := []primitive.Primitive{tri, sph}
	ray := primitive.NewRay(primitive.NewVec3(0, 0, -5), primitive.NewVec3(0, 0, 1))

	for _, accel := range []raycast.Accel{raycast.AccelBVH, raycast.AccelOctree, raycast.AccelBruteForce} {
		cfg := raycast.Config{MaxDist: 100, Accel: accel}

		closest := raycast.Raycast(items, ray, mixedBounds, mixedIntersect, cfg)
		require.True(t, closest.Hit, "accel %d", accel)
		assert.Equal(t, primitive.KindTriangle, closest.Primitive.Kind, "accel %d", accel)
		assert.InDelta(t, 5.0, closest.T, 1e-9, "accel %d", accel)

		hits := raycast.RaycastMulti(items, ray, mixedBounds, mixedIntersect, cfg)
		require.Len(t, hits, 2, "accel %d", accel)
		assert.Equal(t, primitive.KindTriangle, hits[0].Primitive.Kind, "accel %d", accel)
		assert.Equal(t, primitive.KindSphere, hits[1].Primitive.Kind, "accel %d", accel)
	}
}

func threeSpheresOnAxis() []primitive.Sphere {
	return []primitive.Sphere{
		primitive.NewSphere(primitive.NewVec3(0, 0, 0), 1),
		primitive.NewSphere(primitive.NewVec3(5, 0, 0), 1),
		primitive.NewSphere(primitive.NewVec3(10, 0, 0), 1),
	}
}

func axisRay() primitive.Ray {
	return primitive.NewRay(primitive.NewVec3(-10, 0, 0), primitive.NewVec3(1, 0, 0))
}

func TestRaycastAgreesAcrossAccelModes(t *testing.T) {
	items := threeSpheresOnAxis()
	ray := axisRay()

	for _, accel := range []raycast.Accel{raycast.AccelBVH, raycast.AccelOctree, raycast.AccelBruteForce} {
		cfg := raycast.Config{MaxDist: 30, Accel: accel}
		hit := raycast.Raycast(items, ray, sphereBounds, sphereIntersect, cfg)
		require.True(t, hit.Hit, "accel %d", accel)
		assert.InDelta(t, 9.0, hit.T, 1e-9, "accel %d", accel)
		assert.Equal(t, primitive.NewVec3(0, 0, 0), hit.Primitive.Center, "accel %d", accel)
	}
}

func TestRaycastMultiAgreesAcrossAccelModes(t *testing.T) {
	items := threeSpheresOnAxis()
	ray := axisRay()

	for _, accel := range []raycast.Accel{raycast.AccelBVH, raycast.AccelOctree, raycast.AccelBruteForce} {
		cfg := raycast.Config{MaxDist: 30, Accel: accel}
		hits := raycast.RaycastMulti(items, ray, sphereBounds, sphereIntersect, cfg)
		require.Len(t, hits, 3, "accel %d", accel)
		assert.True(t, hits[0].T <= hits[1].T, "accel %d", accel)
		assert.True(t, hits[1].T <= hits[2].T, "accel %d", accel)
	}
}

func TestRaycastSingleStopsAtFirstAcceptance(t *testing.T) {
	items := threeSpheresOnAxis()
	ray := axisRay()

	for _, accel := range []raycast.Accel{raycast.AccelBVH, raycast.AccelOctree, raycast.AccelBruteForce} {
		cfg := raycast.Config{MaxDist: 30, Accel: accel}
		hit := raycast.RaycastSingle(items, ray, sphereBounds, sphereIntersect, cfg)
		assert.True(t, hit.Hit, "accel %d", accel)
	}
}

func TestRaycastMissWhenNothingOnRay(t *testing.T) {
	items := threeSpheresOnAxis()
	ray := primitive.NewRay(primitive.NewVec3(-10, 100, 0), primitive.NewVec3(1, 0, 0))

	for _, accel := range []raycast.Accel{raycast.AccelBVH, raycast.AccelOctree, raycast.AccelBruteForce} {
		cfg := raycast.Config{MaxDist: 30, Accel: accel}
		hit := raycast.Raycast(items, ray, sphereBounds, sphereIntersect, cfg)
		assert.False(t, hit.Hit, "accel %d", accel)
	}
}

func TestRaycastEmptyItemsReportsMiss(t *testing.T) {
	var items []primitive.Sphere
	ray := axisRay()
	cfg := raycast.Config{MaxDist: 30, Accel: raycast.AccelBVH}

	hit := raycast.Raycast(items, ray, sphereBounds, sphereIntersect, cfg)
	assert.False(t, hit.Hit)
	assert.Equal(t, cfg.MaxDist, hit.T)

	single := raycast.RaycastSingle(items, ray, sphereBounds, sphereIntersect, cfg)
	assert.False(t, single.Hit)

	multi := raycast.RaycastMulti(items, ray, sphereBounds, sphereIntersect, cfg)
	assert.Empty(t, multi)
}

func TestRaycastNilBoundsFuncReportsMiss(t *testing.T) {
	items := threeSpheresOnAxis()
	ray := axisRay()
	cfg := raycast.Config{MaxDist: 30, Accel: raycast.AccelBVH}

	hit := raycast.Raycast(items, ray, nil, sphereIntersect, cfg)
	assert.False(t, hit.Hit)
}

// TestMaxTestsBudgetStopsEarly checks the budget law: once MaxTests calls
// have been made, every later candidate is reported as a miss without the
// underlying intersect function running at all, so the call count is
// never exceeded and items past the budget never register as hits even
// though they lie on the ray.
func TestMaxTestsBudgetStopsEarly(t *testing.T) {
	items := threeSpheresOnAxis()
	ray := axisRay()
	calls := 0
	counting := func(ray primitive.Ray, s primitive.Sphere, maxT float64) (float64, bool) {
		calls++
		return sphereIntersect(ray, s, maxT)
	}

	cfg := raycast.Config{MaxDist: 30, MaxTests: 2, Accel: raycast.AccelBruteForce}
	hits := raycast.RaycastMulti(items, ray, sphereBounds, counting, cfg)

	assert.Equal(t, 2, calls)
	assert.Len(t, hits, 2)
}

func TestMaxTestsZeroMeansUnlimited(t *testing.T) {
	items := threeSpheresOnAxis()
	ray := axisRay()
	cfg := raycast.Config{MaxDist: 30, MaxTests: 0, Accel: raycast.AccelBruteForce}

	hits := raycast.RaycastMulti(items, ray, sphereBounds, sphereIntersect, cfg)
	assert.Len(t, hits, 3)
}
