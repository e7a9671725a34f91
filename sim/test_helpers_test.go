package sim

import (
	"testing"
)

// newTestWorld builds an empty width x height world with random order
// arrival disabled, so tests submit orders explicitly.
func newTestWorld(t *testing.T, width, height int) *World {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Warehouse = WarehouseConfig{Width: width, Height: height}
	cfg.Robots.Count, cfg.Pods.Count = 0, 0
	cfg.Stations = StationsConfig{}
	cfg.Orders.ArrivalProbability = 0
	return NewWorld(cfg, NewPartitionedRNG(NewSimulationKey(42)))
}

func mustAt(t *testing.T, w *World, x, y int) WaypointID {
	t.Helper()
	id, ok := w.Graph.At(x, y)
	if !ok {
		t.Fatalf("no waypoint at (%d, %d)", x, y)
	}
	return id
}

// mustPod places a pod at (x, y) holding one unit of each item.
func mustPod(t *testing.T, w *World, x, y int, items ...string) *Pod {
	t.Helper()
	p, err := w.AddPod(mustAt(t, w, x, y), 100)
	if err != nil {
		t.Fatalf("AddPod: %v", err)
	}
	for _, item := range items {
		if !p.AddItem(item, 1, 1) {
			t.Fatalf("AddItem(%s) failed", item)
		}
	}
	return p
}

func mustRobot(t *testing.T, w *World, x, y int) *Robot {
	t.Helper()
	r, err := w.AddRobot(mustAt(t, w, x, y), 2.0)
	if err != nil {
		t.Fatalf("AddRobot: %v", err)
	}
	return r
}

func mustOutputStation(t *testing.T, w *World, x, y int) *Station {
	t.Helper()
	s, err := w.AddOutputStation(mustAt(t, w, x, y))
	if err != nil {
		t.Fatalf("AddOutputStation: %v", err)
	}
	return s
}

// tickUntil ticks w with dt until cond holds, checking the pod relations
// after every tick. It fails the test after maxTicks.
func tickUntil(t *testing.T, w *World, dt float64, maxTicks int, cond func() bool) int {
	t.Helper()
	for i := 1; i <= maxTicks; i++ {
		w.Tick(dt)
		if err := w.CheckInvariants(); err != nil {
			t.Fatalf("invariant violated after tick %d: %v", i, err)
		}
		if cond() {
			return i
		}
	}
	t.Fatalf("condition not reached within %d ticks", maxTicks)
	return maxTicks
}
