package sim

import "fmt"

// StationID is a handle into one of the world's station tables.
// Input and output stations are numbered independently.
type StationID int

// NoStation marks an absent station reference.
const NoStation StationID = -1

// StationKind distinguishes supply-side from fulfillment-side stations.
type StationKind int

const (
	InputStationKind StationKind = iota
	OutputStationKind
)

func (k StationKind) String() string {
	switch k {
	case InputStationKind:
		return "input"
	case OutputStationKind:
		return "output"
	default:
		return fmt.Sprintf("StationKind(%d)", int(k))
	}
}

// Station is a fixed warehouse location. Its waypoint never changes after
// placement; only the counters move.
type Station struct {
	ID       StationID
	Kind     StationKind
	Waypoint WaypointID

	// Input station counters. Input stations are placed but accept no
	// bundles in this version, so these stay zero.
	BundlesStored int
	ItemsStored   int

	// Output station counters
	OrdersCompleted int
	ItemsPicked     int
}

func (s *Station) String() string {
	if s.Kind == InputStationKind {
		return fmt.Sprintf("InputStation%d", s.ID)
	}
	return fmt.Sprintf("OutputStation%d", s.ID)
}
