package octree_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcengine/spatialcore/pkg/octree"
	"github.com/arcengine/spatialcore/pkg/primitive"
)

type point struct {
	ID  int
	Pos primitive.Vec3
}

func (p point) Bounds() primitive.AABB {
	return primitive.NewAABB(p.Pos, p.Pos)
}

func pointsEqual(a, b point) bool {
	return a.ID == b.ID
}

func worldBounds() primitive.AABB {
	return primitive.NewAABB(primitive.NewVec3(-100, -100, -100), primitive.NewVec3(100, 100, 100))
}

// TestS5OctreeBoundary is scenario S5: a tight tree where a boundary insert
// and a near-center zero-size insert both succeed, and an out-of-range
// query comes back empty.
func TestS5OctreeBoundary(t *testing.T) {
	bounds := primitive.NewAABB(primitive.NewVec3(-1, -1, -1), primitive.NewVec3(1, 1, 1))
	tree := octree.NewCached[point](bounds, octree.WithMaxDepth(2), octree.WithMaxItems(1))

	tree.Insert(point{ID: 1, Pos: primitive.NewVec3(1, 1, 1)})
	tree.Insert(point{ID: 2, Pos: primitive.NewVec3(0, 0, 0)})
	assert.Equal(t, 2, tree.Len())

	empty := tree.QueryAABB(primitive.NewAABB(primitive.NewVec3(10, 10, 10), primitive.NewVec3(20, 20, 20)), nil)
	assert.Empty(t, empty)
}

func TestInsertAndQueryAABBMatchesBruteForce(t *testing.T) {
	tree := octree.NewCached[point](worldBounds())
	var items []point
	for i := 0; i < 60; i++ {
		p := point{ID: i, Pos: primitive.NewVec3(float64(i%9)*5-20, float64(i%7)*3-10, float64(i%5)*4-8)}
		items = append(items, p)
		tree.Insert(p)
	}

	q := primitive.NewAABB(primitive.NewVec3(-15, -10, -8), primitive.NewVec3(15, 10, 8))
	got := tree.QueryAABB(q, nil)

	var want []point
	for _, p := range items {
		if p.Bounds().Intersects(q) {
			want = append(want, p)
		}
	}
	assert.ElementsMatch(t, want, got)
}

func TestQuerySphereMatchesBruteForce(t *testing.T) {
	tree := octree.NewCached[point](worldBounds())
	var items []point
	for i := 0; i < 40; i++ {
		p := point{ID: i, Pos: primitive.NewVec3(float64(i%6)*4-10, float64(i%4)*3-5, float64(i%3)*2-2)}
		items = append(items, p)
		tree.Insert(p)
	}

	center := primitive.NewVec3(0, 0, 0)
	radius := 8.0
	got := tree.QuerySphere(center, radius, nil)

	var want []point
	for _, p := range items {
		if p.Bounds().SphereIntersects(center, radius) {
			want = append(want, p)
		}
	}
	assert.ElementsMatch(t, want, got)
}

func TestQueryAABBLimitedRespectsLimit(t *testing.T) {
	tree := octree.NewCached[point](worldBounds())
	for i := 0; i < 30; i++ {
		tree.Insert(point{ID: i, Pos: primitive.NewVec3(float64(i), 0, 0)})
	}

	limited := tree.QueryAABBLimited(worldBounds(), 5, nil)
	assert.Len(t, limited, 5)
}

// TestTotalItemsLawHoldsAfterMutation checks property 9: total_items equals
// the transitive item count across insert/remove/collapse.
func TestTotalItemsLawHoldsAfterMutation(t *testing.T) {
	tree := octree.NewCached[point](worldBounds(), octree.WithMaxItems(2))
	var items []point
	for i := 0; i < 20; i++ {
		p := point{ID: i, Pos: primitive.NewVec3(float64(i), float64(i), float64(i))}
		items = append(items, p)
		tree.Insert(p)
	}
	assert.Equal(t, 20, tree.Len())

	for i := 0; i < 15; i++ {
		require.True(t, tree.Remove(items[i], pointsEqual))
	}
	assert.Equal(t, 5, tree.Len())

	remaining := tree.QueryAABB(worldBounds(), nil)
	assert.Len(t, remaining, 5)
}

func TestRemoveUnknownItemReportsFalse(t *testing.T) {
	tree := octree.NewCached[point](worldBounds())
	tree.Insert(point{ID: 1, Pos: primitive.NewVec3(0, 0, 0)})

	ok := tree.Remove(point{ID: 99, Pos: primitive.NewVec3(5, 5, 5)}, pointsEqual)
	assert.False(t, ok)
	assert.Equal(t, 1, tree.Len())
}

func TestUpdateNoOpWhenBoundsUnchanged(t *testing.T) {
	tree := octree.NewCached[point](worldBounds())
	p := point{ID: 1, Pos: primitive.NewVec3(3, 3, 3)}
	tree.Insert(p)

	ok := tree.Update(p, p.Bounds(), pointsEqual)
	assert.True(t, ok)
	assert.Equal(t, 1, tree.Len())
}

func TestUpdateMovesItem(t *testing.T) {
	tree := octree.NewCached[point](worldBounds())
	oldPos := primitive.NewVec3(3, 3, 3)
	p := point{ID: 1, Pos: oldPos}
	tree.Insert(p)

	moved := point{ID: 1, Pos: primitive.NewVec3(-40, -40, -40)}
	ok := tree.Update(moved, primitive.NewAABB(oldPos, oldPos), pointsEqual)
	require.True(t, ok)

	found := tree.QueryAABB(primitive.NewAABB(primitive.NewVec3(-50, -50, -50), primitive.NewVec3(-30, -30, -30)), nil)
	require.Len(t, found, 1)
	assert.Equal(t, moved.Pos, found[0].Pos)
}

func TestQueryDiscFindsCoplanarPoints(t *testing.T) {
	tree := octree.NewCached[point](worldBounds())
	inPlane := point{ID: 1, Pos: primitive.NewVec3(1, 1, 0)}
	offPlane := point{ID: 2, Pos: primitive.NewVec3(1, 1, 50)}
	tree.Insert(inPlane)
	tree.Insert(offPlane)

	got := tree.QueryDisc(primitive.NewVec3(0, 0, 0), primitive.NewVec3(0, 0, 1), 5, nil)
	require.Len(t, got, 1)
	assert.Equal(t, inPlane.ID, got[0].ID)
}
