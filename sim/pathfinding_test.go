package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAStar_SameStartAndGoal_ReturnsSingleton(t *testing.T) {
	g := NewGridGraph(3, 3)
	a := NewAStar(g, nil)

	for _, wp := range g.Waypoints() {
		assert.Equal(t, []WaypointID{wp.ID}, a.FindPath(wp.ID, wp.ID))
	}
}

func TestAStar_UnknownEndpoints_ReturnsNil(t *testing.T) {
	a := NewAStar(NewGridGraph(3, 3), nil)

	assert.Nil(t, a.FindPath(0, 99))
	assert.Nil(t, a.FindPath(NoWaypoint, 0))
}

func TestAStar_OpenGrid_ShortestPath(t *testing.T) {
	// GIVEN an unobstructed 5x5 grid
	g := NewGridGraph(5, 5)
	a := NewAStar(g, nil)
	start, _ := g.At(0, 0)
	goal, _ := g.At(4, 3)

	// WHEN a path is requested
	path := a.FindPath(start, goal)

	// THEN it has Manhattan length, starts and ends correctly and follows edges
	require.Len(t, path, 4+3+1)
	assert.Equal(t, start, path[0])
	assert.Equal(t, goal, path[len(path)-1])
	for i := 1; i < len(path); i++ {
		assert.True(t, g.IsAccessible(path[i-1], path[i]), "step %d->%d is not an edge", path[i-1], path[i])
	}
}

func TestAStar_Deterministic(t *testing.T) {
	g := NewGridGraph(6, 6)
	a := NewAStar(g, nil)
	start, _ := g.At(0, 0)
	goal, _ := g.At(5, 5)

	first := a.FindPath(start, goal)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, a.FindPath(start, goal))
	}
}

func TestAStar_DetoursAroundBlockedInterior(t *testing.T) {
	// GIVEN a 3x3 grid whose middle column is blocked except the bottom row
	g := NewGridGraph(3, 3)
	blocked := map[WaypointID]bool{}
	for _, y := range []int{0, 1} {
		id, _ := g.At(1, y)
		blocked[id] = true
	}
	a := NewAStar(g, func(id WaypointID) bool { return blocked[id] })
	start, _ := g.At(0, 0)
	goal, _ := g.At(2, 0)

	// WHEN a path is requested across the wall
	path := a.FindPath(start, goal)

	// THEN it goes around through the bottom row and never visits a blocked interior waypoint
	require.Len(t, path, 7)
	for _, id := range path[1 : len(path)-1] {
		assert.False(t, blocked[id], "path visits blocked waypoint %d", id)
	}
}

func TestAStar_FullyWalledOff_ReturnsNil(t *testing.T) {
	g := NewGridGraph(3, 3)
	a := NewAStar(g, func(id WaypointID) bool {
		wp := g.Waypoint(id)
		return wp.X == 1
	})
	start, _ := g.At(0, 1)
	goal, _ := g.At(2, 1)

	assert.Nil(t, a.FindPath(start, goal))
}

func TestWorld_FindPath_PodOnlyAccessBlocked(t *testing.T) {
	// GIVEN a 3x1 corridor: robot side (0,0), a stationary pod at (1,0)
	// and the target pod's waypoint (2,0) reachable only through it
	w := newTestWorld(t, 3, 1)
	mustPod(t, w, 1, 0)
	mustPod(t, w, 2, 0)
	start := mustAt(t, w, 0, 0)
	blocking := mustAt(t, w, 1, 0)
	target := mustAt(t, w, 2, 0)

	// WHEN the target behind the blocking pod is requested
	// THEN no path exists and the failure is counted
	assert.Empty(t, w.findPath(start, target))
	assert.Equal(t, 1, w.Stats.PathFailures)

	// WHEN the blocked waypoint itself is the goal
	// THEN the path succeeds
	assert.Equal(t, []WaypointID{start, blocking}, w.findPath(start, blocking))
	assert.Equal(t, 2, w.Stats.PathRequests)
	assert.Equal(t, 1, w.Stats.PathFailures)
}

func TestWorld_FindPath_CarriedPodDoesNotBlock(t *testing.T) {
	// GIVEN a robot holding the pod it picked up at (1,0)
	w := newTestWorld(t, 3, 1)
	p := mustPod(t, w, 1, 0)
	r := mustRobot(t, w, 1, 0)
	require.True(t, w.pickUp(r, p.ID))

	// THEN the pod's former waypoint is passable
	path := w.findPath(mustAt(t, w, 0, 0), mustAt(t, w, 2, 0))
	assert.Len(t, path, 3)
}
