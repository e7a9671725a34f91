package sim

import "fmt"

// PodID is a handle into the world's pod table.
type PodID int

// NoPod marks an absent pod reference.
const NoPod PodID = -1

// Pod is a mobile storage unit holding named items up to a capacity.
// A pod is either at rest on a waypoint or carried by a robot, never both;
// the location fields are only changed by World.pickUp and World.drop.
type Pod struct {
	ID           PodID
	Capacity     float64
	CapacityUsed float64
	Items        map[string]int // item name -> count
	X, Y         float64

	ItemsHandled   int // items removed over the pod's lifetime
	BundlesHandled int // successful AddItem calls

	waypoint WaypointID
	carrier  RobotID
}

// NewPod returns an empty pod that is neither placed nor carried.
func NewPod(id PodID, capacity float64) *Pod {
	return &Pod{
		ID:       id,
		Capacity: capacity,
		Items:    make(map[string]int),
		waypoint: NoWaypoint,
		carrier:  NoRobot,
	}
}

// AddItem stores count units of name, each weighing weight. It returns false
// and leaves the pod unchanged if the capacity would be exceeded.
func (p *Pod) AddItem(name string, weight float64, count int) bool {
	if count <= 0 || p.CapacityUsed+weight*float64(count) > p.Capacity {
		return false
	}
	p.Items[name] += count
	p.CapacityUsed += weight * float64(count)
	p.BundlesHandled++
	return true
}

// RemoveItem takes count units of name out of the pod. It returns false if
// fewer than count units are stored.
func (p *Pod) RemoveItem(name string, weight float64, count int) bool {
	if count <= 0 || p.Items[name] < count {
		return false
	}
	p.Items[name] -= count
	if p.Items[name] <= 0 {
		delete(p.Items, name)
	}
	p.CapacityUsed -= weight * float64(count)
	p.ItemsHandled += count
	return true
}

// Contains reports whether at least one unit of name is stored.
func (p *Pod) Contains(name string) bool {
	return p.Items[name] > 0
}

// ContainsAny reports whether the pod holds at least one of names.
func (p *Pod) ContainsAny(names []string) bool {
	for _, name := range names {
		if p.Contains(name) {
			return true
		}
	}
	return false
}

// Utilization returns the used capacity as a percentage.
func (p *Pod) Utilization() float64 {
	if p.Capacity <= 0 {
		return 0
	}
	return p.CapacityUsed / p.Capacity * 100
}

// InUse reports whether a robot currently holds the pod.
func (p *Pod) InUse() bool {
	return p.carrier != NoRobot
}

// Waypoint returns the waypoint the pod rests on; ok is false while carried.
func (p *Pod) Waypoint() (WaypointID, bool) {
	return p.waypoint, p.waypoint != NoWaypoint
}

// Carrier returns the robot carrying the pod, if any.
func (p *Pod) Carrier() (RobotID, bool) {
	return p.carrier, p.carrier != NoRobot
}

func (p *Pod) String() string {
	return fmt.Sprintf("Pod%d(%.1f%%)", p.ID, p.Utilization())
}
