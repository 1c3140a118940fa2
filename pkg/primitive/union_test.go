package primitive_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcengine/spatialcore/pkg/primitive"
)

func TestPrimitiveBoundsDispatchesByKind(t *testing.T) {
	tri := primitive.NewTrianglePrimitive(primitive.NewTriangle(
		primitive.NewVec3(0, 0, 0),
		primitive.NewVec3(4, 0, 0),
		primitive.NewVec3(0, 4, 0),
	))
	assert.Equal(t, primitive.KindTriangle, tri.Kind)
	assert.Equal(t, tri.Triangle.Bounds(), tri.Bounds())

	sph := primitive.NewSpherePrimitive(primitive.NewSphere(primitive.NewVec3(10, 10, 10), 2))
	assert.Equal(t, primitive.KindSphere, sph.Kind)
	assert.Equal(t, sph.Sphere.Bounds(), sph.Bounds())
}

func TestPrimitiveRayIntersectDispatchesByKind(t *testing.T) {
	tri := primitive.NewTrianglePrimitive(primitive.NewTriangle(
		primitive.NewVec3(-1, -1, 0),
		primitive.NewVec3(1, -1, 0),
		primitive.NewVec3(0, 1, 0),
	))
	ray := primitive.NewRay(primitive.NewVec3(0, 0, -5), primitive.NewVec3(0, 0, 1))
	hitT, hit := tri.RayIntersect(ray, 0.001, 1000)
	require.True(t, hit)
	assert.InDelta(t, 5.0, hitT, 1e-9)

	sph := primitive.NewSpherePrimitive(primitive.NewSphere(primitive.NewVec3(0, 0, 20), 1))
	sphereRay := primitive.NewRay(primitive.NewVec3(0, 0, 0), primitive.NewVec3(0, 0, 1))
	hitT, hit = sph.RayIntersect(sphereRay, 0, 1000)
	require.True(t, hit)
	assert.InDelta(t, 19.0, hitT, 1e-9)

	miss := primitive.NewSpherePrimitive(primitive.NewSphere(primitive.NewVec3(100, 100, 100), 1))
	_, hit = miss.RayIntersect(ray, 0.001, 1000)
	assert.False(t, hit)
}
