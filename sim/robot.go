package sim

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

// RobotID is a handle into the world's robot table.
type RobotID int

// NoRobot marks an absent robot reference.
const NoRobot RobotID = -1

// RobotState is the coarse navigation state of a robot.
// Picking up and dropping are instantaneous, so only two states exist.
type RobotState int

const (
	RobotIdle RobotState = iota
	RobotMoving
)

func (s RobotState) String() string {
	if s == RobotIdle {
		return "idle"
	}
	return "moving"
}

// arrivalTolerance is the distance under which a robot snaps onto its leg target.
const arrivalTolerance = 0.1

// Robot is an agent that moves along waypoints and transports pods.
type Robot struct {
	ID    RobotID
	Speed float64 // length units per simulated second
	X, Y  float64

	BusyTime         float64
	IdleTime         float64
	DistanceTraveled float64

	current          WaypointID
	path             []WaypointID
	cursor           int
	targetX, targetY float64
	carried          PodID
	task             Task
}

func newRobot(id RobotID, speed float64) *Robot {
	return &Robot{
		ID:      id,
		Speed:   speed,
		current: NoWaypoint,
		carried: NoPod,
		task:    IdleTask{},
	}
}

// State is RobotIdle exactly when the robot has no task.
func (r *Robot) State() RobotState {
	if r.task.Kind() == TaskIdle {
		return RobotIdle
	}
	return RobotMoving
}

// Task returns the robot's current task variant.
func (r *Robot) Task() Task {
	return r.task
}

// CurrentWaypoint returns the last waypoint the robot snapped to.
func (r *Robot) CurrentWaypoint() (WaypointID, bool) {
	return r.current, r.current != NoWaypoint
}

// CarriedPod returns the pod the robot holds, if any.
func (r *Robot) CarriedPod() (PodID, bool) {
	return r.carried, r.carried != NoPod
}

// Path returns a copy of the robot's remaining route including already
// traversed waypoints; PathIndex is the cursor into it.
func (r *Robot) Path() []WaypointID {
	if len(r.path) == 0 {
		return nil
	}
	return append([]WaypointID(nil), r.path...)
}

// PathIndex returns the index of the current leg target within Path.
func (r *Robot) PathIndex() int {
	return r.cursor
}

// AssignTask starts a fetch task: the robot heads for the pod's storage
// waypoint and, once there, carries it to station. If the pod is not at rest
// the robot is still assigned but receives an empty path.
func (r *Robot) AssignTask(w *World, pod PodID, station StationID) {
	home := NoWaypoint
	if p := w.Pod(pod); p != nil {
		home = p.waypoint
	}
	r.task = FetchPodTask{Pod: pod, Station: station, Home: home}
	r.calculatePath(w, home)
}

// Update advances the robot by dt simulated seconds.
func (r *Robot) Update(w *World, dt float64) {
	switch r.State() {
	case RobotIdle:
		r.IdleTime += dt
		w.Stats.IdleTime += dt
	case RobotMoving:
		r.BusyTime += dt
		w.Stats.BusyTime += dt
		r.move(w, dt)
	}
}

func (r *Robot) move(w *World, dt float64) {
	if r.cursor >= len(r.path) {
		r.onDestinationReached(w)
		return
	}

	dx := r.targetX - r.X
	dy := r.targetY - r.Y
	distance := math.Hypot(dx, dy)

	if distance < arrivalTolerance {
		r.X, r.Y = r.targetX, r.targetY
		r.current = r.path[r.cursor]
		r.mirrorPod(w)

		r.cursor++
		if r.cursor < len(r.path) {
			r.setTarget(w, r.path[r.cursor])
		} else {
			r.onDestinationReached(w)
		}
		return
	}

	step := math.Min(r.Speed*dt, distance)
	r.X += dx / distance * step
	r.Y += dy / distance * step
	r.DistanceTraveled += step
	w.Stats.TotalDistance += step
	r.mirrorPod(w)
}

// onDestinationReached runs the task protocol when the path is exhausted.
func (r *Robot) onDestinationReached(w *World) {
	switch t := r.task.(type) {
	case FetchPodTask:
		station := w.OutputStation(t.Station)
		switch {
		case r.carried == NoPod && w.Pod(t.Pod) != nil:
			if t.Home == NoWaypoint {
				t.Home = r.current
			}
			if !w.pickUp(r, t.Pod) {
				w.abandonOrder(r, fmt.Sprintf("pod %d not available at waypoint %d", t.Pod, r.current))
				r.completeTask()
				return
			}
			r.task = t
			if station != nil {
				r.calculatePath(w, station.Waypoint)
			} else {
				r.calculatePath(w, NoWaypoint)
			}
		case r.carried != NoPod && station != nil:
			if r.current != station.Waypoint {
				w.abandonOrder(r, fmt.Sprintf("no route to station %d", t.Station))
				r.startReturn(w, t.Home)
				return
			}
			dropped := w.drop(r)
			w.completeOrder(r, t.Station)
			if dropped {
				w.pickUp(r, t.Pod)
			}
			r.startReturn(w, t.Home)
		case r.carried != NoPod:
			w.abandonOrder(r, fmt.Sprintf("unknown station %d", t.Station))
			r.startReturn(w, t.Home)
		default:
			w.abandonOrder(r, "fetch task without pod or station")
			r.completeTask()
		}
	case ReturnPodTask:
		if r.carried != NoPod && !w.drop(r) {
			logrus.Debugf("robot %d: waypoint %d occupied, replanning return of pod %d", r.ID, r.current, t.Pod)
			r.calculatePath(w, t.Home)
			return
		}
		r.completeTask()
	case IdleTask:
	default:
		panic(fmt.Sprintf("robot %d: unhandled task %T", r.ID, r.task))
	}
}

func (r *Robot) startReturn(w *World, home WaypointID) {
	r.task = ReturnPodTask{Pod: r.carried, Home: home}
	r.calculatePath(w, home)
}

func (r *Robot) completeTask() {
	r.task = IdleTask{}
	r.path = nil
	r.cursor = 0
}

func (r *Robot) calculatePath(w *World, dest WaypointID) {
	r.path, r.cursor = nil, 0
	if r.current == NoWaypoint || dest == NoWaypoint {
		return
	}
	r.path = w.findPath(r.current, dest)
	if len(r.path) > 0 {
		r.setTarget(w, r.path[0])
	}
}

func (r *Robot) setTarget(w *World, id WaypointID) {
	wp := w.Graph.Waypoint(id)
	r.targetX, r.targetY = wp.X, wp.Y
}

func (r *Robot) mirrorPod(w *World) {
	if p := w.Pod(r.carried); p != nil {
		p.X, p.Y = r.X, r.Y
	}
}

func (r *Robot) String() string {
	return fmt.Sprintf("Robot%d(%s, %.2f, %.2f)", r.ID, r.task.Kind(), r.X, r.Y)
}
