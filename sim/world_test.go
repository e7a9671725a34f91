package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorld_Tick_AdvancesClockAndTicks(t *testing.T) {
	w := newTestWorld(t, 2, 2)

	for i := 0; i < 4; i++ {
		w.Tick(0.25)
	}

	assert.Equal(t, 1.0, w.Clock)
	assert.Equal(t, int64(4), w.Ticks)
}

func TestWorld_Tick_PausedIsNoOp(t *testing.T) {
	// GIVEN a paused world with an idle robot
	w := newTestWorld(t, 2, 2)
	r := mustRobot(t, w, 0, 0)
	assert.True(t, w.TogglePause())

	// WHEN ticked
	w.Tick(1)

	// THEN nothing advances
	assert.Equal(t, 0.0, w.Clock)
	assert.Equal(t, int64(0), w.Ticks)
	assert.Equal(t, 0.0, r.IdleTime)

	// WHEN unpaused and ticked
	assert.False(t, w.TogglePause())
	w.Tick(1)
	assert.Equal(t, 1.0, w.Clock)
}

func TestWorld_Tick_CertainArrivalGeneratesOrderEveryTick(t *testing.T) {
	// GIVEN arrival probability 1 and no robots to consume orders
	w := newTestWorld(t, 3, 3)
	w.Config.Orders.ArrivalProbability = 1
	w.Config.Orders.MinItems, w.Config.Orders.MaxItems = 2, 2
	mustOutputStation(t, w, 1, 2)

	// WHEN ticked 5 times
	for i := 0; i < 5; i++ {
		w.Tick(0.1)
	}

	// THEN 5 orders are queued, each with 2 catalog items and the only station
	require.Equal(t, 5, w.Orders().Len())
	assert.Equal(t, 5, w.Stats.OrdersGenerated)
	for _, o := range w.Orders().Items() {
		assert.Len(t, o.Items, 2)
		assert.Equal(t, StationID(0), o.Station)
		assert.Regexp(t, `^item_\d+$`, o.Items[0])
	}
}

func TestWorld_SameSeed_IdenticalEvolution(t *testing.T) {
	// GIVEN two worlds from the same seed and config with random orders
	build := func() *World {
		cfg := DefaultConfig()
		cfg.Warehouse = WarehouseConfig{Width: 12, Height: 10, PodStorageRows: 4}
		cfg.Robots.Count, cfg.Pods.Count = 4, 12
		cfg.Orders.ArrivalProbability = 0.3
		w := NewWorld(cfg, NewPartitionedRNG(NewSimulationKey(7)))
		require.NoError(t, w.GenerateLayout())
		return w
	}
	a, b := build(), build()

	// WHEN both run 500 ticks
	for i := 0; i < 500; i++ {
		a.Tick(0.1)
		b.Tick(0.1)
	}

	// THEN their observable state is identical
	assert.Equal(t, a.Summary(), b.Summary())
	assert.Equal(t, a.Snapshot(), b.Snapshot())
	assert.Greater(t, a.Stats.OrdersGenerated, 0)
}

func TestWorld_RandomTraffic_InvariantsHoldEveryTick(t *testing.T) {
	// GIVEN a busy generated warehouse
	cfg := DefaultConfig()
	cfg.Warehouse = WarehouseConfig{Width: 15, Height: 12, PodStorageRows: 5}
	cfg.Robots.Count, cfg.Pods.Count = 6, 25
	cfg.Orders.ArrivalProbability = 0.5
	w := NewWorld(cfg, NewPartitionedRNG(NewSimulationKey(3)))
	require.NoError(t, w.GenerateLayout())

	// WHEN it runs for a while
	// THEN the pod relations stay consistent after every tick
	for i := 0; i < 2000; i++ {
		w.Tick(0.1)
		require.NoError(t, w.CheckInvariants(), "tick %d", i)
	}
	assert.Greater(t, w.Stats.OrdersCompleted, 0)

	// THEN every order is accounted for exactly once
	inFlight := 0
	for _, r := range w.Robots() {
		if _, ok := w.ActiveOrder(r.ID); ok {
			inFlight++
		}
	}
	s := w.Stats
	assert.Equal(t, s.OrdersGenerated, s.OrdersCompleted+s.OrdersDropped+s.OrdersAbandoned+w.Orders().Len()+inFlight)
}

func TestWorld_Utilization_AllIdle_IsZero(t *testing.T) {
	// GIVEN robots that only accrued idle time
	w := newTestWorld(t, 3, 3)
	for _, x := range []int{0, 1, 2} {
		r := mustRobot(t, w, x, 0)
		r.IdleTime = 10
	}

	// THEN utilization is 0%
	assert.Equal(t, 0.0, w.Utilization())
}

func TestWorld_Utilization_EqualBusyAndIdle_IsFifty(t *testing.T) {
	// GIVEN robots whose busy time equals idle time
	w := newTestWorld(t, 3, 3)
	for i, x := range []int{0, 1, 2} {
		r := mustRobot(t, w, x, 0)
		r.BusyTime = float64(i + 1)
		r.IdleTime = float64(i + 1)
	}

	// THEN utilization is 50%
	assert.InDelta(t, 50.0, w.Utilization(), 1e-9)
}

func TestWorld_Utilization_NoRobotsOrNoTime_IsZero(t *testing.T) {
	w := newTestWorld(t, 3, 3)
	assert.Equal(t, 0.0, w.Utilization())

	mustRobot(t, w, 0, 0)
	assert.Equal(t, 0.0, w.Utilization())
}

func TestWorld_ResetStatistics_ZeroesWindow(t *testing.T) {
	// GIVEN a world that has completed an order
	w, r, _, s := scenarioFetch(t)
	w.SubmitOrder([]string{"item_x"}, s.ID)
	w.Tick(0.1)
	tickUntil(t, w, 0.1, 2000, func() bool { return r.State() == RobotIdle })
	require.Equal(t, 1, w.Stats.OrdersCompleted)
	clock := w.Clock

	// WHEN statistics are reset
	w.ResetStatistics()

	// THEN counters and accumulators restart but the clock does not
	assert.Equal(t, 0, w.Stats.OrdersCompleted)
	assert.Equal(t, 0, w.Stats.ItemsPicked)
	assert.Equal(t, 0.0, w.Stats.TotalDistance)
	assert.Equal(t, clock, w.Stats.StartClock)
	assert.Equal(t, clock, w.Clock)
	assert.Equal(t, 0.0, r.BusyTime)
	assert.Equal(t, 0.0, r.DistanceTraveled)
	assert.Equal(t, 0, s.OrdersCompleted)

	summary := w.Summary()
	assert.Equal(t, 0.0, summary.MeasuredTime)
	assert.Equal(t, clock, summary.SimulatedTime)
}

func TestWorld_ResetClock(t *testing.T) {
	w := newTestWorld(t, 2, 2)
	w.Tick(3)
	w.ResetStatistics()

	w.ResetClock()

	assert.Equal(t, 0.0, w.Clock)
	assert.Equal(t, 0.0, w.Stats.StartClock)
	assert.Equal(t, int64(1), w.Ticks, "tick count is not part of the clock")
}

func TestWorld_TimeScaleControls_Clamped(t *testing.T) {
	w := newTestWorld(t, 2, 2)
	require.Equal(t, 1.0, w.TimeScale)

	w.SpeedUp()
	assert.Equal(t, 2.0, w.TimeScale)
	w.SlowDown()
	w.SlowDown()
	assert.Equal(t, 0.5, w.TimeScale)

	for i := 0; i < 10; i++ {
		w.SlowDown()
	}
	assert.Equal(t, MinTimeScale, w.TimeScale)

	for i := 0; i < 20; i++ {
		w.SpeedUp()
	}
	assert.Equal(t, MaxTimeScale, w.TimeScale)

	w.SetTimeScale(3)
	assert.Equal(t, 3.0, w.TimeScale)
}

func TestWorld_CheckInvariants_DetectsDrift(t *testing.T) {
	// GIVEN a consistent world
	w := newTestWorld(t, 2, 1)
	p := mustPod(t, w, 0, 0)
	require.NoError(t, w.CheckInvariants())

	// WHEN one side of the waypoint<->pod relation is corrupted
	w.Graph.Waypoint(mustAt(t, w, 0, 0)).pod = NoPod

	// THEN the check reports it
	assert.Error(t, w.CheckInvariants())

	// WHEN the pod claims to be placed and carried at once
	w.Graph.Waypoint(mustAt(t, w, 0, 0)).pod = p.ID
	p.carrier = 0
	assert.Error(t, w.CheckInvariants())
}

func TestWorld_AddStations_RejectDuplicates(t *testing.T) {
	w := newTestWorld(t, 3, 1)
	at := mustAt(t, w, 1, 0)

	_, err := w.AddOutputStation(at)
	require.NoError(t, err)
	_, err = w.AddOutputStation(at)
	assert.Error(t, err)

	in, err := w.AddInputStation(at)
	require.NoError(t, err, "input and output stations may share a waypoint")
	assert.Equal(t, InputStationKind, in.Kind)
	_, err = w.AddInputStation(at)
	assert.Error(t, err)

	_, err = w.AddRobot(99, 1)
	assert.Error(t, err)
}

func TestWorld_Summary_ReportsPending(t *testing.T) {
	w := newTestWorld(t, 3, 3)
	w.SubmitOrder([]string{"item_1"}, NoStation)
	w.SubmitOrder([]string{"item_2"}, NoStation)

	s := w.Summary()

	assert.Equal(t, 2, s.OrdersPending)
	assert.Equal(t, 2, s.OrdersGenerated)
}
