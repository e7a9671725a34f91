package sim

// Snapshot is a read-only value copy of the world taken between ticks.
// Renderers and the HTTP server consume it without touching live state.
type Snapshot struct {
	Clock       float64        `json:"clock"`
	Ticks       int64          `json:"ticks"`
	Paused      bool           `json:"paused"`
	TimeScale   float64        `json:"time_scale"`
	Width       int            `json:"width"`
	Height      int            `json:"height"`
	Waypoints   []WaypointView `json:"waypoints"`
	Stations    []StationView  `json:"stations"`
	Pods        []PodView      `json:"pods"`
	Robots      []RobotView    `json:"robots"`
	Pending     int            `json:"orders_pending"`
	Utilization float64        `json:"robot_utilization_pct"`
	Stats       StatisticsView `json:"stats"`
}

// WaypointView is the static part of a waypoint plus its current occupant.
type WaypointView struct {
	ID            int     `json:"id"`
	X             float64 `json:"x"`
	Y             float64 `json:"y"`
	PodStorage    bool    `json:"pod_storage"`
	Pod           int     `json:"pod"`            // -1 when empty
	InputStation  int     `json:"input_station"`  // -1 when none
	OutputStation int     `json:"output_station"` // -1 when none
}

// StationView reports a station's position and counters. Input stations
// accept no bundles yet, so their stored counters are omitted while zero.
type StationView struct {
	ID              int     `json:"id"`
	Kind            string  `json:"kind"`
	Waypoint        int     `json:"waypoint"`
	X               float64 `json:"x"`
	Y               float64 `json:"y"`
	OrdersCompleted int     `json:"orders_completed"`
	ItemsPicked     int     `json:"items_picked"`
	BundlesStored   int     `json:"bundles_stored,omitempty"`
	ItemsStored     int     `json:"items_stored,omitempty"`
}

// PodView reports a pod's position and contents.
type PodView struct {
	ID          int            `json:"id"`
	X           float64        `json:"x"`
	Y           float64        `json:"y"`
	Waypoint    int            `json:"waypoint"` // -1 while carried
	Carrier     int            `json:"carrier"`  // -1 while at rest
	InUse       bool           `json:"in_use"`
	Utilization float64        `json:"utilization_pct"`
	Items       map[string]int `json:"items"`
}

// RobotView reports a robot's motion state.
type RobotView struct {
	ID               int     `json:"id"`
	X                float64 `json:"x"`
	Y                float64 `json:"y"`
	State            string  `json:"state"`
	Task             string  `json:"task"`
	CarriedPod       int     `json:"carried_pod"`
	Path             []int   `json:"path,omitempty"`
	PathIndex        int     `json:"path_index"`
	DistanceTraveled float64 `json:"distance_traveled"`
	BusyTime         float64 `json:"busy_time"`
	IdleTime         float64 `json:"idle_time"`
}

// StatisticsView is the serializable part of Statistics.
type StatisticsView struct {
	OrdersGenerated int     `json:"orders_generated"`
	OrdersCompleted int     `json:"orders_completed"`
	OrdersDropped   int     `json:"orders_dropped"`
	OrdersAbandoned int     `json:"orders_abandoned"`
	ItemsPicked     int     `json:"items_picked"`
	TotalDistance   float64 `json:"total_distance"`
	MeasuredTime    float64 `json:"measured_time_s"`
}

// Snapshot copies the current state. Nothing in the result aliases world storage.
func (w *World) Snapshot() Snapshot {
	s := Snapshot{
		Clock:       w.Clock,
		Ticks:       w.Ticks,
		Paused:      w.Paused,
		TimeScale:   w.TimeScale,
		Width:       w.Config.Warehouse.Width,
		Height:      w.Config.Warehouse.Height,
		Waypoints:   make([]WaypointView, 0, w.Graph.Len()),
		Stations:    make([]StationView, 0, len(w.inputStations)+len(w.outputStations)),
		Pods:        make([]PodView, 0, len(w.pods)),
		Robots:      make([]RobotView, 0, len(w.robots)),
		Pending:     w.orders.Len(),
		Utilization: w.Utilization(),
		Stats: StatisticsView{
			OrdersGenerated: w.Stats.OrdersGenerated,
			OrdersCompleted: w.Stats.OrdersCompleted,
			OrdersDropped:   w.Stats.OrdersDropped,
			OrdersAbandoned: w.Stats.OrdersAbandoned,
			ItemsPicked:     w.Stats.ItemsPicked,
			TotalDistance:   w.Stats.TotalDistance,
			MeasuredTime:    w.Clock - w.Stats.StartClock,
		},
	}

	for _, wp := range w.Graph.Waypoints() {
		s.Waypoints = append(s.Waypoints, WaypointView{
			ID:            int(wp.ID),
			X:             wp.X,
			Y:             wp.Y,
			PodStorage:    wp.PodStorage,
			Pod:           int(wp.pod),
			InputStation:  int(wp.inputStation),
			OutputStation: int(wp.outputStation),
		})
	}
	for _, group := range [][]*Station{w.inputStations, w.outputStations} {
		for _, st := range group {
			wp := w.Graph.Waypoint(st.Waypoint)
			s.Stations = append(s.Stations, StationView{
				ID:              int(st.ID),
				Kind:            st.Kind.String(),
				Waypoint:        int(st.Waypoint),
				X:               wp.X,
				Y:               wp.Y,
				OrdersCompleted: st.OrdersCompleted,
				ItemsPicked:     st.ItemsPicked,
				BundlesStored:   st.BundlesStored,
				ItemsStored:     st.ItemsStored,
			})
		}
	}
	for _, p := range w.pods {
		items := make(map[string]int, len(p.Items))
		for name, n := range p.Items {
			items[name] = n
		}
		s.Pods = append(s.Pods, PodView{
			ID:          int(p.ID),
			X:           p.X,
			Y:           p.Y,
			Waypoint:    int(p.waypoint),
			Carrier:     int(p.carrier),
			InUse:       p.InUse(),
			Utilization: p.Utilization(),
			Items:       items,
		})
	}
	for _, r := range w.robots {
		var path []int
		for _, id := range r.path {
			path = append(path, int(id))
		}
		s.Robots = append(s.Robots, RobotView{
			ID:               int(r.ID),
			X:                r.X,
			Y:                r.Y,
			State:            r.State().String(),
			Task:             r.task.Kind().String(),
			CarriedPod:       int(r.carried),
			Path:             path,
			PathIndex:        r.cursor,
			DistanceTraveled: r.DistanceTraveled,
			BusyTime:         r.BusyTime,
			IdleTime:         r.IdleTime,
		})
	}
	return s
}
