package sim

import (
	"github.com/sirupsen/logrus"

	"github.com/rawsim/rawsim/sim/trace"
)

// assignTasks binds pending orders to idle robots, greedily and FIFO.
// Each idle robot, in id order, takes the oldest order; the first pod not in
// use that holds any requested item is fetched for it. An order with no
// suitable pod or no station is dropped, never requeued, and the robot stays
// idle for this tick.
func (w *World) assignTasks() {
	for _, r := range w.robots {
		if r.State() != RobotIdle {
			continue
		}
		if w.orders.Len() == 0 {
			break
		}

		order := w.orders.Dequeue()
		pod := w.findPodWithItems(order.Items)

		switch {
		case pod == nil:
			w.dropOrder(order, r.ID, "no unused pod holds any requested item")
		case w.OutputStation(order.Station) == nil:
			w.dropOrder(order, r.ID, "order has no output station")
		default:
			r.AssignTask(w, pod.ID, order.Station)
			w.active[r.ID] = order
			w.recordAssignment(order, r.ID, pod.ID, true, "first matching pod")
			logrus.Debugf("[t=%.2f] robot %d assigned %s via pod %d", w.Clock, r.ID, order, pod.ID)
		}
	}
}

// findPodWithItems returns the first pod, in storage order, that is not in
// use and contains at least one of items.
func (w *World) findPodWithItems(items []string) *Pod {
	for _, p := range w.pods {
		if !p.InUse() && p.ContainsAny(items) {
			return p
		}
	}
	return nil
}

func (w *World) dropOrder(o *Order, robot RobotID, reason string) {
	w.Stats.OrdersDropped++
	w.recordAssignment(o, robot, NoPod, false, reason)
	logrus.Debugf("[t=%.2f] dropped %s: %s", w.Clock, o, reason)
}

func (w *World) recordAssignment(o *Order, robot RobotID, pod PodID, assigned bool, reason string) {
	if w.Trace == nil {
		return
	}
	w.Trace.RecordAssignment(trace.AssignmentRecord{
		OrderID:   int(o.ID),
		Clock:     w.Clock,
		RobotID:   int(robot),
		PodID:     int(pod),
		StationID: int(o.Station),
		Assigned:  assigned,
		Reason:    reason,
		Wait:      w.Clock - o.CreatedAt,
	})
}
