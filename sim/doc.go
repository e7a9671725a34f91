// Package sim provides the discrete-time warehouse simulation engine.
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - world.go: the World arena, its relation mutators and the Tick loop
//   - robot.go: robot motion along a path and the fetch/return task protocol
//   - assignment.go: greedy FIFO binding of pending orders to idle robots
//
// # Architecture
//
// Entities are stored in World-owned tables and refer to each other by
// integer handles (WaypointID, PodID, RobotID, StationID) with -1 meaning
// absent. Only World mutators change the waypoint<->pod and robot<->pod
// relations, so both sides always agree (see World.CheckInvariants).
//
//   - graph.go / pathfinding.go: grid graph and A* with dynamic pod blocking
//   - layout.go: station, storage band, pod and robot placement
//   - executor.go / command.go: warmup + measurement driver and user controls
//   - snapshot.go: read-only copy of the world for renderers
//   - sim/trace/: assignment decision trace recording
//
// # Key Interfaces
//
//   - Pathfinder: shortest path between two waypoints given a blocking predicate
//   - Task: sealed variant of robot work (IdleTask, FetchPodTask, ReturnPodTask)
//   - TickObserver: receives the world after every executed tick
package sim
