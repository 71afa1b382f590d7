package physics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Unity-Lab-AI/Trader-sub009/internal/fx"
)

func TestDistance(t *testing.T) {
	origin := fx.Vec2{}
	assert.InDelta(t, 5.0, Distance(origin, fx.Vec2{X: 3, Y: 4}), 1e-9)
	assert.InDelta(t, 25.0, DistanceSquared(origin, fx.Vec2{X: 3, Y: 4}), 1e-9)
	assert.True(t, PointInCircle(fx.Vec2{X: 1, Y: 1}, origin, 1.5))
	assert.False(t, PointInCircle(fx.Vec2{X: 2, Y: 2}, origin, 1.5))
}

func TestNearest(t *testing.T) {
	pts := []fx.Vec2{{X: 10}, {X: 2}, {X: -2}}
	assert.Equal(t, 1, Nearest(fx.Vec2{}, pts))
	assert.Equal(t, 2, Nearest(fx.Vec2{X: -5}, pts))
	assert.Equal(t, -1, Nearest(fx.Vec2{}, nil))
}

func collect(g *SpatialGrid, x, y float64) []int {
	var got []int
	g.QueryAround(x, y, func(i int) bool {
		got = append(got, i)
		return false
	})
	return got
}

func TestSpatialGrid_QueryNeighbourhood(t *testing.T) {
	g := NewSpatialGrid(100, 100, 10)
	g.Insert(5, 5, 0)
	g.Insert(15, 15, 1)
	g.Insert(95, 95, 2)

	assert.ElementsMatch(t, []int{0, 1}, collect(g, 8, 8))
	assert.ElementsMatch(t, []int{2}, collect(g, 92, 92))
}

func TestSpatialGrid_NoWrapAtEdges(t *testing.T) {
	g := NewSpatialGrid(100, 100, 10)
	g.Insert(95, 5, 7)

	assert.Empty(t, collect(g, 2, 5))
	assert.Equal(t, []int{7}, collect(g, 99, 2))
}

func TestSpatialGrid_ClampsOutOfRange(t *testing.T) {
	g := NewSpatialGrid(50, 50, 10)
	g.Insert(-20, 500, 3)

	assert.Equal(t, []int{3}, collect(g, 0, 49))
}

func TestSpatialGrid_StopEarlyAndClear(t *testing.T) {
	g := NewSpatialGrid(20, 20, 10)
	g.Insert(1, 1, 0)
	g.Insert(2, 2, 1)

	calls := 0
	g.QueryAround(1, 1, func(int) bool {
		calls++
		return true
	})
	assert.Equal(t, 1, calls)

	g.Clear()
	assert.Empty(t, collect(g, 1, 1))
}
