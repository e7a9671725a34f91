// sim/pathfinding.go
package sim

import (
	"container/heap"
	"math"
)

// BlockedFunc reports whether a waypoint is currently impassable.
type BlockedFunc func(WaypointID) bool

// Pathfinder computes routes between waypoints.
type Pathfinder interface {
	FindPath(start, goal WaypointID) []WaypointID
}

// AStar is an A* pathfinder over a Graph with a dynamic blocking predicate.
// It keeps no state between calls, so it can be re-invoked any number of
// times while occupancy changes.
type AStar struct {
	graph   *Graph
	blocked BlockedFunc
}

// NewAStar creates a pathfinder. A nil predicate blocks nothing.
func NewAStar(g *Graph, blocked BlockedFunc) *AStar {
	if blocked == nil {
		blocked = func(WaypointID) bool { return false }
	}
	return &AStar{graph: g, blocked: blocked}
}

// FindPath returns the waypoints from start to goal inclusive, [start] when
// start == goal, or nil when no path exists. The goal is always enterable;
// every other waypoint for which the predicate holds is skipped.
func (a *AStar) FindPath(start, goal WaypointID) []WaypointID {
	startWP, goalWP := a.graph.Waypoint(start), a.graph.Waypoint(goal)
	if startWP == nil || goalWP == nil {
		return nil
	}
	if start == goal {
		return []WaypointID{start}
	}

	n := a.graph.Len()
	gScore := make([]float64, n)
	cameFrom := make([]WaypointID, n)
	closed := make([]bool, n)
	for i := range gScore {
		gScore[i] = math.Inf(1)
		cameFrom[i] = NoWaypoint
	}
	gScore[start] = 0

	open := &openSet{}
	open.push(start, manhattan(startWP, goalWP), 0)

	for open.Len() > 0 {
		current := open.pop()
		if closed[current] {
			continue // stale entry
		}
		if current == goal {
			return reconstructPath(cameFrom, current)
		}
		closed[current] = true

		for _, e := range a.graph.Neighbors(current) {
			if e.To != goal && a.blocked(e.To) {
				continue
			}
			if closed[e.To] {
				continue
			}
			tentative := gScore[current] + e.Weight
			if tentative < gScore[e.To] {
				cameFrom[e.To] = current
				gScore[e.To] = tentative
				open.push(e.To, tentative+manhattan(a.graph.Waypoint(e.To), goalWP), tentative)
			}
		}
	}
	return nil
}

func manhattan(a, b *Waypoint) float64 {
	return math.Abs(a.X-b.X) + math.Abs(a.Y-b.Y)
}

func reconstructPath(cameFrom []WaypointID, current WaypointID) []WaypointID {
	path := []WaypointID{current}
	for cameFrom[current] != NoWaypoint {
		current = cameFrom[current]
		path = append(path, current)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// openEntry is one frontier candidate.
type openEntry struct {
	node WaypointID
	f, g float64
	seq  uint64
}

// openSet implements heap.Interface with deterministic ordering
// Ordering: f-score → g-score → insertion sequence
type openSet struct {
	entries []openEntry
	nextSeq uint64
}

func (s *openSet) Len() int { return len(s.entries) }

func (s *openSet) Less(i, j int) bool {
	ei, ej := s.entries[i], s.entries[j]
	if ei.f != ej.f {
		return ei.f < ej.f
	}
	if ei.g != ej.g {
		return ei.g < ej.g
	}
	return ei.seq < ej.seq
}

func (s *openSet) Swap(i, j int) { s.entries[i], s.entries[j] = s.entries[j], s.entries[i] }

// Push implements heap.Interface
func (s *openSet) Push(x any) {
	s.entries = append(s.entries, x.(openEntry))
}

// Pop implements heap.Interface
func (s *openSet) Pop() any {
	old := s.entries
	n := len(old)
	item := old[n-1]
	s.entries = old[0 : n-1]
	return item
}

func (s *openSet) push(node WaypointID, f, g float64) {
	heap.Push(s, openEntry{node: node, f: f, g: g, seq: s.nextSeq})
	s.nextSeq++
}

func (s *openSet) pop() WaypointID {
	return heap.Pop(s).(openEntry).node
}
