package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPod_AddItem_RespectsCapacity(t *testing.T) {
	// GIVEN a pod with capacity 10
	p := NewPod(0, 10)

	// WHEN items totalling 8 are added
	assert.True(t, p.AddItem("item_1", 2, 3))
	assert.True(t, p.AddItem("item_2", 1, 2))

	// THEN capacity and counts are tracked
	assert.Equal(t, 8.0, p.CapacityUsed)
	assert.Equal(t, 3, p.Items["item_1"])
	assert.Equal(t, 2, p.BundlesHandled)

	// WHEN an addition would exceed capacity
	ok := p.AddItem("item_3", 1, 3)

	// THEN it is rejected and the pod is unchanged
	assert.False(t, ok)
	assert.False(t, p.Contains("item_3"))
	assert.Equal(t, 8.0, p.CapacityUsed)
	assert.Equal(t, 2, p.BundlesHandled)
}

func TestPod_AddItem_RejectsNonPositiveCount(t *testing.T) {
	p := NewPod(0, 10)
	assert.False(t, p.AddItem("item_1", 1, 0))
	assert.False(t, p.AddItem("item_1", 1, -1))
	assert.Empty(t, p.Items)
}

func TestPod_RemoveItem(t *testing.T) {
	// GIVEN a pod holding 2 units of item_1
	p := NewPod(0, 10)
	p.AddItem("item_1", 1.5, 2)

	// WHEN more than stored is removed
	// THEN the call fails without side effects
	assert.False(t, p.RemoveItem("item_1", 1.5, 3))
	assert.Equal(t, 2, p.Items["item_1"])

	// WHEN everything is removed
	assert.True(t, p.RemoveItem("item_1", 1.5, 2))

	// THEN the entry disappears and capacity is released
	assert.False(t, p.Contains("item_1"))
	_, present := p.Items["item_1"]
	assert.False(t, present)
	assert.InDelta(t, 0, p.CapacityUsed, 1e-9)
	assert.Equal(t, 2, p.ItemsHandled)
}

func TestPod_ContainsAny(t *testing.T) {
	p := NewPod(0, 10)
	p.AddItem("item_2", 1, 1)

	assert.True(t, p.ContainsAny([]string{"item_1", "item_2"}))
	assert.False(t, p.ContainsAny([]string{"item_1", "item_3"}))
	assert.False(t, p.ContainsAny(nil))
}

func TestPod_Utilization(t *testing.T) {
	p := NewPod(0, 50)
	p.AddItem("item_1", 5, 5)
	assert.InDelta(t, 50.0, p.Utilization(), 1e-9)

	assert.Equal(t, 0.0, NewPod(1, 0).Utilization(), "zero capacity reports 0%")
}

func TestPod_NewPod_NeitherPlacedNorCarried(t *testing.T) {
	p := NewPod(3, 10)

	_, placed := p.Waypoint()
	_, carried := p.Carrier()
	assert.False(t, placed)
	assert.False(t, carried)
	assert.False(t, p.InUse())
}

func TestWorld_PickUpAndDrop_KeepBothSidesInSync(t *testing.T) {
	// GIVEN a robot standing on a pod's waypoint
	w := newTestWorld(t, 2, 1)
	p := mustPod(t, w, 0, 0, "item_1")
	r := mustRobot(t, w, 0, 0)
	at := mustAt(t, w, 0, 0)

	// WHEN the robot picks the pod up
	assert.True(t, w.pickUp(r, p.ID))

	// THEN the pod is carried, the waypoint is empty and the pod is in use
	carrier, ok := p.Carrier()
	assert.True(t, ok)
	assert.Equal(t, r.ID, carrier)
	_, placed := p.Waypoint()
	assert.False(t, placed)
	_, occupied := w.Graph.Waypoint(at).Pod()
	assert.False(t, occupied)
	assert.True(t, p.InUse())
	assert.NoError(t, w.CheckInvariants())

	// WHEN it is dropped again
	assert.True(t, w.drop(r))

	// THEN the relation is restored
	got, placed := p.Waypoint()
	assert.True(t, placed)
	assert.Equal(t, at, got)
	assert.False(t, p.InUse())
	_, holding := r.CarriedPod()
	assert.False(t, holding)
	assert.NoError(t, w.CheckInvariants())
}

func TestWorld_PickUp_Refusals(t *testing.T) {
	w := newTestWorld(t, 3, 1)
	p := mustPod(t, w, 0, 0)
	q := mustPod(t, w, 2, 0)
	away := mustRobot(t, w, 1, 0)
	here := mustRobot(t, w, 0, 0)

	// robot not on the pod's waypoint
	assert.False(t, w.pickUp(away, p.ID))
	// unknown pod
	assert.False(t, w.pickUp(here, 42))

	// robot already carrying
	assert.True(t, w.pickUp(here, p.ID))
	assert.False(t, w.pickUp(here, q.ID))

	// pod already carried by someone else
	assert.False(t, w.pickUp(away, p.ID))
	assert.NoError(t, w.CheckInvariants())
}

func TestWorld_Drop_OccupiedWaypointRefused(t *testing.T) {
	// GIVEN a robot carrying pod A onto the waypoint of pod B
	w := newTestWorld(t, 2, 1)
	a := mustPod(t, w, 0, 0)
	mustPod(t, w, 1, 0)
	r := mustRobot(t, w, 0, 0)
	assert.True(t, w.pickUp(r, a.ID))
	r.current = mustAt(t, w, 1, 0)

	// WHEN it tries to drop
	// THEN the drop fails and the robot keeps the pod
	assert.False(t, w.drop(r))
	held, ok := r.CarriedPod()
	assert.True(t, ok)
	assert.Equal(t, a.ID, held)
	assert.NoError(t, w.CheckInvariants())
}

func TestWorld_AddPod_OccupiedWaypointFails(t *testing.T) {
	w := newTestWorld(t, 2, 1)
	mustPod(t, w, 0, 0)

	_, err := w.AddPod(mustAt(t, w, 0, 0), 10)
	assert.Error(t, err)
	assert.Len(t, w.Pods(), 1)

	_, err = w.AddPod(99, 10)
	assert.Error(t, err)
}
