// sim/graph.go
package sim

import (
	"fmt"
	"math"
)

// WaypointID is a handle into the graph's waypoint table.
type WaypointID int

// NoWaypoint marks an absent waypoint reference.
const NoWaypoint WaypointID = -1

// Edge is a directed connection to another waypoint with a precomputed
// Euclidean weight.
type Edge struct {
	To     WaypointID
	Weight float64
}

// Waypoint is a navigable node of the warehouse graph.
// Occupancy (pod, stations) is only changed by World mutators; callers outside
// the package read it through the accessor methods.
type Waypoint struct {
	ID         WaypointID
	X, Y       float64
	Edges      []Edge
	PodStorage bool // true if pods may be stored here

	pod           PodID
	inputStation  StationID
	outputStation StationID
}

// Pod returns the pod resting on this waypoint, if any.
func (wp *Waypoint) Pod() (PodID, bool) {
	return wp.pod, wp.pod != NoPod
}

// InputStation returns the input station placed on this waypoint, if any.
func (wp *Waypoint) InputStation() (StationID, bool) {
	return wp.inputStation, wp.inputStation != NoStation
}

// OutputStation returns the output station placed on this waypoint, if any.
func (wp *Waypoint) OutputStation() (StationID, bool) {
	return wp.outputStation, wp.outputStation != NoStation
}

// IsOccupied reports whether a pod or a station sits on the waypoint.
func (wp *Waypoint) IsOccupied() bool {
	return wp.pod != NoPod || wp.inputStation != NoStation || wp.outputStation != NoStation
}

func (wp *Waypoint) String() string {
	return fmt.Sprintf("Waypoint%d(%g, %g)", wp.ID, wp.X, wp.Y)
}

// Graph is the navigation substrate: a table of waypoints with directed,
// weighted adjacency lists.
type Graph struct {
	waypoints []*Waypoint
	lattice   map[[2]int]WaypointID
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{lattice: make(map[[2]int]WaypointID)}
}

// NewGridGraph builds a 4-connected width x height grid with unit spacing.
// Waypoint ids are assigned row-major and each waypoint's edges are added in
// the order right, down (y+1), left, up (y-1).
func NewGridGraph(width, height int) *Graph {
	g := NewGraph()
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			g.AddWaypoint(float64(x), float64(y))
		}
	}
	steps := [4][2]int{{1, 0}, {0, 1}, {-1, 0}, {0, -1}}
	for _, wp := range g.waypoints {
		x, y := int(wp.X), int(wp.Y)
		for _, s := range steps {
			if next, ok := g.At(x+s[0], y+s[1]); ok {
				g.AddEdge(wp.ID, next)
			}
		}
	}
	return g
}

// AddWaypoint appends a waypoint at (x, y) and returns its id.
// Integral coordinates are also indexed for At lookups.
func (g *Graph) AddWaypoint(x, y float64) WaypointID {
	id := WaypointID(len(g.waypoints))
	g.waypoints = append(g.waypoints, &Waypoint{
		ID:            id,
		X:             x,
		Y:             y,
		pod:           NoPod,
		inputStation:  NoStation,
		outputStation: NoStation,
	})
	if x == math.Trunc(x) && y == math.Trunc(y) {
		key := [2]int{int(x), int(y)}
		if _, exists := g.lattice[key]; !exists {
			g.lattice[key] = id
		}
	}
	return id
}

// AddEdge inserts a directed edge a->b weighted by Euclidean distance.
// Adding an existing edge is a no-op.
func (g *Graph) AddEdge(a, b WaypointID) {
	from, to := g.Waypoint(a), g.Waypoint(b)
	if from == nil || to == nil {
		return
	}
	for _, e := range from.Edges {
		if e.To == b {
			return
		}
	}
	from.Edges = append(from.Edges, Edge{To: b, Weight: euclidean(from, to)})
}

// Neighbors returns the outgoing edges of id in insertion order.
// The returned slice is the graph's storage and must not be modified.
func (g *Graph) Neighbors(id WaypointID) []Edge {
	wp := g.Waypoint(id)
	if wp == nil {
		return nil
	}
	return wp.Edges
}

// Distance returns the stored weight of edge a->b. ok is false when b is not
// directly reachable from a.
func (g *Graph) Distance(a, b WaypointID) (float64, bool) {
	for _, e := range g.Neighbors(a) {
		if e.To == b {
			return e.Weight, true
		}
	}
	return 0, false
}

// IsAccessible reports whether b is directly reachable from a.
func (g *Graph) IsAccessible(a, b WaypointID) bool {
	_, ok := g.Distance(a, b)
	return ok
}

// Waypoint returns the waypoint with the given id, or nil if out of range.
func (g *Graph) Waypoint(id WaypointID) *Waypoint {
	if id < 0 || int(id) >= len(g.waypoints) {
		return nil
	}
	return g.waypoints[id]
}

// Waypoints returns all waypoints in id order.
// The returned slice is the graph's storage and must not be modified.
func (g *Graph) Waypoints() []*Waypoint {
	return g.waypoints
}

// At returns the waypoint at integer lattice point (x, y).
func (g *Graph) At(x, y int) (WaypointID, bool) {
	id, ok := g.lattice[[2]int{x, y}]
	return id, ok
}

// Len returns the number of waypoints.
func (g *Graph) Len() int {
	return len(g.waypoints)
}

func euclidean(a, b *Waypoint) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}
