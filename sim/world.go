// sim/world.go
package sim

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rawsim/rawsim/sim/trace"
)

// Time scale bounds used by the speed controls.
const (
	MinTimeScale = 0.25
	MaxTimeScale = 16.0
)

// World owns the graph and every entity, the simulated clock, the order queue
// and the statistics. It is the single source of truth; nothing outside it
// constructs or destroys entities.
//
// Thread-safety: NOT thread-safe. All mutation happens on the goroutine that
// calls Tick; observers read between ticks.
type World struct {
	Config Config
	Graph  *Graph

	Clock     float64 // simulated seconds
	Ticks     int64
	Paused    bool
	TimeScale float64 // pacing multiplier consumed by real-time drivers

	Stats *Statistics
	// Trace records assignment decisions; nil disables tracing.
	Trace *trace.SimulationTrace

	robots         []*Robot
	pods           []*Pod
	inputStations  []*Station
	outputStations []*Station

	orders      *OrderQueue
	active      map[RobotID]*Order
	nextOrderID OrderID

	rng        *PartitionedRNG
	pathfinder Pathfinder
}

// NewWorld creates a world over an empty width x height grid. Entities are
// added with GenerateLayout or the Add* constructors.
func NewWorld(cfg Config, rng *PartitionedRNG) *World {
	w := &World{
		Config:    cfg,
		Graph:     NewGridGraph(cfg.Warehouse.Width, cfg.Warehouse.Height),
		TimeScale: 1.0,
		orders:    &OrderQueue{},
		active:    make(map[RobotID]*Order),
		rng:       rng,
	}
	w.pathfinder = NewAStar(w.Graph, w.isBlocked)
	w.Stats = NewStatistics(0, time.Now())
	return w
}

// === Entity construction ===

// AddPod creates an empty pod resting on waypoint at.
func (w *World) AddPod(at WaypointID, capacity float64) (*Pod, error) {
	wp := w.Graph.Waypoint(at)
	if wp == nil {
		return nil, fmt.Errorf("add pod: unknown waypoint %d", at)
	}
	pod := NewPod(PodID(len(w.pods)), capacity)
	if !w.occupy(at, pod.ID) {
		return nil, fmt.Errorf("add pod: waypoint %d already holds pod %d", at, wp.pod)
	}
	pod.waypoint = at
	pod.X, pod.Y = wp.X, wp.Y
	w.pods = append(w.pods, pod)
	return pod, nil
}

// AddRobot creates an idle robot standing on waypoint at.
func (w *World) AddRobot(at WaypointID, speed float64) (*Robot, error) {
	wp := w.Graph.Waypoint(at)
	if wp == nil {
		return nil, fmt.Errorf("add robot: unknown waypoint %d", at)
	}
	r := newRobot(RobotID(len(w.robots)), speed)
	r.current = at
	r.X, r.Y = wp.X, wp.Y
	w.robots = append(w.robots, r)
	return r, nil
}

// AddInputStation places an input station on waypoint at.
func (w *World) AddInputStation(at WaypointID) (*Station, error) {
	wp := w.Graph.Waypoint(at)
	if wp == nil {
		return nil, fmt.Errorf("add input station: unknown waypoint %d", at)
	}
	if wp.inputStation != NoStation {
		return nil, fmt.Errorf("add input station: waypoint %d already has input station %d", at, wp.inputStation)
	}
	s := &Station{ID: StationID(len(w.inputStations)), Kind: InputStationKind, Waypoint: at}
	wp.inputStation = s.ID
	w.inputStations = append(w.inputStations, s)
	return s, nil
}

// AddOutputStation places an output station on waypoint at.
func (w *World) AddOutputStation(at WaypointID) (*Station, error) {
	wp := w.Graph.Waypoint(at)
	if wp == nil {
		return nil, fmt.Errorf("add output station: unknown waypoint %d", at)
	}
	if wp.outputStation != NoStation {
		return nil, fmt.Errorf("add output station: waypoint %d already has output station %d", at, wp.outputStation)
	}
	s := &Station{ID: StationID(len(w.outputStations)), Kind: OutputStationKind, Waypoint: at}
	wp.outputStation = s.ID
	w.outputStations = append(w.outputStations, s)
	return s, nil
}

// === Accessors ===

// Robots returns all robots in insertion (id) order.
// The returned slice is the world's storage and must not be modified.
func (w *World) Robots() []*Robot { return w.robots }

// Pods returns all pods in insertion (id) order.
// The returned slice is the world's storage and must not be modified.
func (w *World) Pods() []*Pod { return w.pods }

// InputStations returns all input stations.
func (w *World) InputStations() []*Station { return w.inputStations }

// OutputStations returns all output stations.
func (w *World) OutputStations() []*Station { return w.outputStations }

// Robot returns the robot with the given id, or nil.
func (w *World) Robot(id RobotID) *Robot {
	if id < 0 || int(id) >= len(w.robots) {
		return nil
	}
	return w.robots[id]
}

// Pod returns the pod with the given id, or nil.
func (w *World) Pod(id PodID) *Pod {
	if id < 0 || int(id) >= len(w.pods) {
		return nil
	}
	return w.pods[id]
}

// OutputStation returns the output station with the given id, or nil.
func (w *World) OutputStation(id StationID) *Station {
	if id < 0 || int(id) >= len(w.outputStations) {
		return nil
	}
	return w.outputStations[id]
}

// InputStation returns the input station with the given id, or nil.
func (w *World) InputStation(id StationID) *Station {
	if id < 0 || int(id) >= len(w.inputStations) {
		return nil
	}
	return w.inputStations[id]
}

// Orders returns the pending order queue.
func (w *World) Orders() *OrderQueue { return w.orders }

// ActiveOrder returns the order a robot is currently serving.
func (w *World) ActiveOrder(id RobotID) (*Order, bool) {
	o, ok := w.active[id]
	return o, ok
}

// === Relation mutators ===
//
// These are the only code paths that touch both sides of the
// waypoint<->pod or robot<->pod relations.

func (w *World) occupy(at WaypointID, pod PodID) bool {
	wp := w.Graph.Waypoint(at)
	if wp == nil || wp.pod != NoPod {
		return false
	}
	wp.pod = pod
	return true
}

func (w *World) vacate(at WaypointID) {
	if wp := w.Graph.Waypoint(at); wp != nil {
		wp.pod = NoPod
	}
}

// pickUp lifts pod id off the robot's current waypoint. The pod must be at
// rest there and the robot empty-handed.
func (w *World) pickUp(r *Robot, id PodID) bool {
	p := w.Pod(id)
	if p == nil || r.carried != NoPod || p.InUse() {
		return false
	}
	if p.waypoint == NoWaypoint || p.waypoint != r.current {
		return false
	}
	w.vacate(p.waypoint)
	p.waypoint = NoWaypoint
	p.carrier = r.ID
	r.carried = id
	p.X, p.Y = r.X, r.Y
	return true
}

// drop sets the carried pod down on the robot's current waypoint. It fails
// if the robot carries nothing or the waypoint already holds a pod.
func (w *World) drop(r *Robot) bool {
	p := w.Pod(r.carried)
	if p == nil || !w.occupy(r.current, p.ID) {
		return false
	}
	wp := w.Graph.Waypoint(r.current)
	p.waypoint = r.current
	p.X, p.Y = wp.X, wp.Y
	p.carrier = NoRobot
	r.carried = NoPod
	return true
}

// isBlocked is the pathfinding predicate: a waypoint holding a pod that is
// not being carried is impassable.
func (w *World) isBlocked(id WaypointID) bool {
	wp := w.Graph.Waypoint(id)
	if wp == nil || wp.pod == NoPod {
		return false
	}
	p := w.Pod(wp.pod)
	return p != nil && !p.InUse()
}

func (w *World) findPath(start, goal WaypointID) []WaypointID {
	w.Stats.PathRequests++
	path := w.pathfinder.FindPath(start, goal)
	if len(path) == 0 {
		w.Stats.PathFailures++
		logrus.Debugf("[t=%.2f] no path from waypoint %d to %d", w.Clock, start, goal)
	}
	return path
}

// === Tick loop ===

// Tick advances the world by dt simulated seconds: robots update in id
// order, an order may arrive, then idle robots are assigned.
func (w *World) Tick(dt float64) {
	if w.Paused {
		return
	}
	w.Clock += dt
	w.Ticks++

	for _, r := range w.robots {
		r.Update(w, dt)
	}

	if w.rng.ForSubsystem(SubsystemOrders).Float64() < w.Config.Orders.ArrivalProbability {
		w.generateRandomOrder()
	}

	w.assignTasks()
}

// SubmitOrder enqueues an order for items at station (NoStation allowed).
func (w *World) SubmitOrder(items []string, station StationID) *Order {
	o := &Order{
		ID:        w.nextOrderID,
		Items:     append([]string(nil), items...),
		Station:   station,
		CreatedAt: w.Clock,
	}
	w.nextOrderID++
	w.orders.Enqueue(o)
	w.Stats.OrdersGenerated++
	return o
}

func (w *World) generateRandomOrder() {
	rng := w.rng.ForSubsystem(SubsystemOrders)
	cfg := w.Config.Orders
	n := cfg.MinItems + rng.Intn(cfg.MaxItems-cfg.MinItems+1)
	items := make([]string, n)
	for i := range items {
		items[i] = ItemName(1 + rng.Intn(cfg.CatalogSize))
	}
	station := NoStation
	if len(w.outputStations) > 0 {
		station = w.outputStations[rng.Intn(len(w.outputStations))].ID
	}
	o := w.SubmitOrder(items, station)
	logrus.Debugf("[t=%.2f] new %s", w.Clock, o)
}

// ItemName returns the catalog name of item n.
func ItemName(n int) string {
	return fmt.Sprintf("item_%d", n)
}

// completeOrder books the order served by r as fulfilled at station.
func (w *World) completeOrder(r *Robot, station StationID) {
	o, ok := w.active[r.ID]
	if !ok {
		return
	}
	delete(w.active, r.ID)
	w.Stats.OrdersCompleted++
	w.Stats.ItemsPicked += len(o.Items)
	if s := w.OutputStation(station); s != nil {
		s.OrdersCompleted++
		s.ItemsPicked += len(o.Items)
	}
	w.recordOutcome(o, r.ID, true, "delivered")
	logrus.Debugf("[t=%.2f] robot %d completed %s", w.Clock, r.ID, o)
}

// abandonOrder gives up the order served by r. Orders are never requeued.
func (w *World) abandonOrder(r *Robot, reason string) {
	o, ok := w.active[r.ID]
	if !ok {
		return
	}
	delete(w.active, r.ID)
	w.Stats.OrdersAbandoned++
	w.recordOutcome(o, r.ID, false, reason)
	logrus.Infof("[t=%.2f] robot %d abandoned %s: %s", w.Clock, r.ID, o, reason)
}

func (w *World) recordOutcome(o *Order, robot RobotID, completed bool, reason string) {
	if w.Trace == nil {
		return
	}
	w.Trace.RecordOutcome(trace.OutcomeRecord{
		OrderID:   int(o.ID),
		Clock:     w.Clock,
		RobotID:   int(robot),
		Completed: completed,
		Reason:    reason,
	})
}

// === Controls ===
//
// Plain state writes requested by rendering collaborators.

// TogglePause flips the paused flag and returns the new value.
func (w *World) TogglePause() bool {
	w.Paused = !w.Paused
	return w.Paused
}

// SetTimeScale sets the pacing multiplier, clamped to [MinTimeScale, MaxTimeScale].
func (w *World) SetTimeScale(scale float64) {
	w.TimeScale = min(max(scale, MinTimeScale), MaxTimeScale)
}

// SpeedUp doubles the time scale.
func (w *World) SpeedUp() { w.SetTimeScale(w.TimeScale * 2) }

// SlowDown halves the time scale.
func (w *World) SlowDown() { w.SetTimeScale(w.TimeScale / 2) }

// ResetClock rewinds the simulated clock to zero.
func (w *World) ResetClock() {
	w.Clock = 0
	w.Stats.StartClock = 0
}

// ResetStatistics starts a new measurement window: the statistics record,
// the robots' accumulators and the station counters are zeroed.
func (w *World) ResetStatistics() {
	w.Stats = NewStatistics(w.Clock, time.Now())
	for _, r := range w.robots {
		r.BusyTime, r.IdleTime, r.DistanceTraveled = 0, 0, 0
	}
	for _, s := range w.outputStations {
		s.OrdersCompleted, s.ItemsPicked = 0, 0
	}
	for _, s := range w.inputStations {
		s.BundlesStored, s.ItemsStored = 0, 0
	}
}

// === Reporting ===

// Utilization returns the average robot utilization as a percentage.
func (w *World) Utilization() float64 {
	if len(w.robots) == 0 {
		return 0
	}
	var busy, idle float64
	for _, r := range w.robots {
		busy += r.BusyTime
		idle += r.IdleTime
	}
	return Utilization(busy, idle)
}

// Summary reports the current measurement window.
func (w *World) Summary() Summary {
	return Summary{
		SimulatedTime:   w.Clock,
		MeasuredTime:    w.Clock - w.Stats.StartClock,
		Ticks:           w.Ticks,
		OrdersGenerated: w.Stats.OrdersGenerated,
		OrdersCompleted: w.Stats.OrdersCompleted,
		OrdersDropped:   w.Stats.OrdersDropped,
		OrdersAbandoned: w.Stats.OrdersAbandoned,
		OrdersPending:   w.orders.Len(),
		ItemsPicked:     w.Stats.ItemsPicked,
		TotalDistance:   w.Stats.TotalDistance,
		Utilization:     w.Utilization(),
		PathRequests:    w.Stats.PathRequests,
		PathFailures:    w.Stats.PathFailures,
	}
}

// CheckInvariants verifies that the robot<->pod<->waypoint relations agree
// on both sides.
func (w *World) CheckInvariants() error {
	for _, p := range w.pods {
		atRest, carried := p.waypoint != NoWaypoint, p.carrier != NoRobot
		switch {
		case atRest && carried:
			return fmt.Errorf("pod %d is on waypoint %d and carried by robot %d", p.ID, p.waypoint, p.carrier)
		case !atRest && !carried:
			return fmt.Errorf("pod %d is neither placed nor carried", p.ID)
		case atRest:
			if wp := w.Graph.Waypoint(p.waypoint); wp == nil || wp.pod != p.ID {
				return fmt.Errorf("pod %d claims waypoint %d which does not hold it", p.ID, p.waypoint)
			}
		case carried:
			if r := w.Robot(p.carrier); r == nil || r.carried != p.ID {
				return fmt.Errorf("pod %d claims robot %d which does not carry it", p.ID, p.carrier)
			}
		}
	}
	for _, wp := range w.Graph.Waypoints() {
		if wp.pod == NoPod {
			continue
		}
		if p := w.Pod(wp.pod); p == nil || p.waypoint != wp.ID {
			return fmt.Errorf("waypoint %d holds pod %d which is elsewhere", wp.ID, wp.pod)
		}
	}
	for _, r := range w.robots {
		if r.carried == NoPod {
			continue
		}
		if p := w.Pod(r.carried); p == nil || p.carrier != r.ID {
			return fmt.Errorf("robot %d carries pod %d which names another carrier", r.ID, r.carried)
		}
	}
	return nil
}
