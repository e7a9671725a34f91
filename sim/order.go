// Implements the OrderQueue, which holds all orders waiting for a robot.
// Orders are enqueued by the stochastic generator and consumed by assignment.

package sim

import (
	"fmt"
	"strings"
)

// OrderID uniquely identifies an order within a world.
type OrderID int

// Order is a request for items to be delivered to an output station.
type Order struct {
	ID        OrderID
	Items     []string
	Station   StationID // NoStation if the warehouse has no output station
	CreatedAt float64   // simulated time of creation
}

func (o *Order) String() string {
	return fmt.Sprintf("order_%d%v", o.ID, o.Items)
}

// OrderQueue is a FIFO queue of pending orders.
type OrderQueue struct {
	queue []*Order
}

// Enqueue adds an order to the back of the queue.
func (q *OrderQueue) Enqueue(o *Order) {
	q.queue = append(q.queue, o)
}

// Dequeue removes and returns the oldest order, or nil if the queue is empty.
func (q *OrderQueue) Dequeue() *Order {
	if len(q.queue) == 0 {
		return nil
	}
	o := q.queue[0]
	q.queue[0] = nil
	q.queue = q.queue[1:]
	return o
}

// Peek returns the oldest order without removing it.
// Returns nil if the queue is empty.
func (q *OrderQueue) Peek() *Order {
	if len(q.queue) == 0 {
		return nil
	}
	return q.queue[0]
}

// Len returns the number of pending orders.
func (q *OrderQueue) Len() int {
	return len(q.queue)
}

// Items returns the queue contents for iteration.
// The returned slice is the queue's internal storage -- callers MUST NOT
// append to or reslice it.
func (q *OrderQueue) Items() []*Order {
	return q.queue
}

func (q *OrderQueue) String() string {
	var sb strings.Builder
	sb.WriteString("[")
	for i, o := range q.queue {
		sb.WriteString(o.String())
		if i < len(q.queue)-1 {
			sb.WriteString(" ")
		}
	}
	sb.WriteString("]")
	return sb.String()
}
