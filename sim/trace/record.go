// Package trace provides decision-trace recording for assignment analysis.
// This package has no dependencies on sim/; it stores pure data types keyed by
// integer entity handles.
package trace

// AssignmentRecord captures a single dispatch decision for a queued order.
// Dropped orders carry Assigned=false and RobotID/PodID of -1 where no
// candidate existed.
type AssignmentRecord struct {
	OrderID   int     `json:"order_id"`
	Clock     float64 `json:"clock"`
	RobotID   int     `json:"robot_id"`
	PodID     int     `json:"pod_id"`
	StationID int     `json:"station_id"`
	Assigned  bool    `json:"assigned"`
	Reason    string  `json:"reason"`
	Wait      float64 `json:"wait_s"` // time spent queued before the decision
}

// OutcomeRecord captures how an assigned order ended.
type OutcomeRecord struct {
	OrderID   int     `json:"order_id"`
	Clock     float64 `json:"clock"`
	RobotID   int     `json:"robot_id"`
	Completed bool    `json:"completed"` // false means abandoned
	Reason    string  `json:"reason"`
}
