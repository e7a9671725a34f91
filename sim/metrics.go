// Tracks warehouse-wide statistics such as orders completed, items picked and
// robot busy/idle time.

package sim

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"
)

// Statistics is the resettable record of a measurement window.
type Statistics struct {
	OrdersGenerated int // orders synthesized by the generator
	OrdersCompleted int // orders whose pod reached its station
	OrdersDropped   int // orders discarded at assignment (no suitable pod or station)
	OrdersAbandoned int // assigned orders given up in flight
	ItemsPicked     int // sum of requested item counts over completed orders

	TotalDistance float64 // distance covered by all robots
	BusyTime      float64 // robot-seconds spent moving
	IdleTime      float64 // robot-seconds spent idle

	PathRequests int // pathfinder invocations
	PathFailures int // pathfinder invocations that found no route

	StartClock float64   // simulated time at the last reset
	StartTime  time.Time // wall clock at the last reset
	EndTime    time.Time // wall clock when the run finished (zero while running)
}

// NewStatistics returns a zeroed record stamped with the given start markers.
func NewStatistics(clock float64, now time.Time) *Statistics {
	return &Statistics{StartClock: clock, StartTime: now}
}

// Summary is the final report of a run.
type Summary struct {
	RunID           string  `json:"run_id,omitempty"`
	SimulatedTime   float64 `json:"simulated_time_s"`
	MeasuredTime    float64 `json:"measured_time_s"`
	Ticks           int64   `json:"ticks"`
	OrdersGenerated int     `json:"orders_generated"`
	OrdersCompleted int     `json:"orders_completed"`
	OrdersDropped   int     `json:"orders_dropped"`
	OrdersAbandoned int     `json:"orders_abandoned"`
	OrdersPending   int     `json:"orders_pending"`
	ItemsPicked     int     `json:"items_picked"`
	TotalDistance   float64 `json:"total_distance"`
	Utilization     float64 `json:"robot_utilization_pct"`
	PathRequests    int     `json:"path_requests"`
	PathFailures    int     `json:"path_failures"`
	WallTime        float64 `json:"wall_time_s"`
	Interrupted     bool    `json:"interrupted"`
}

// Utilization returns busy/(busy+idle) over the given robot-seconds as a
// percentage, 0 when no time accrued.
func Utilization(busy, idle float64) float64 {
	total := busy + idle
	if total <= 0 {
		return 0
	}
	return busy / total * 100
}

// Print displays the summary in the console format.
func (s Summary) Print(w io.Writer) {
	fmt.Fprintln(w, "============================================================")
	fmt.Fprintln(w, "=== Simulation Statistics ===")
	fmt.Fprintln(w, "============================================================")
	fmt.Fprintf(w, "Simulation Time: %.2fs\n", s.SimulatedTime)
	fmt.Fprintf(w, "Orders Completed: %d\n", s.OrdersCompleted)
	fmt.Fprintf(w, "Items Picked: %d\n", s.ItemsPicked)
	fmt.Fprintf(w, "Total Distance Traveled: %.2f units\n", s.TotalDistance)
	fmt.Fprintf(w, "Average Robot Utilization: %.1f%%\n", s.Utilization)
	if s.OrdersDropped > 0 || s.OrdersAbandoned > 0 {
		fmt.Fprintf(w, "Orders Dropped: %d, Abandoned: %d, Pending: %d\n", s.OrdersDropped, s.OrdersAbandoned, s.OrdersPending)
	}
	fmt.Fprintln(w, "============================================================")
}

// SaveToFile writes the summary as indented JSON.
func (s Summary) SaveToFile(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding summary: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing summary to %s: %w", path, err)
	}
	return nil
}
