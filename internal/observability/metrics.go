package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rawsim/rawsim/sim"
)

// WarehouseCollector bundles Prometheus metrics for a running warehouse and
// refreshes them from the world after every tick.
//
// Order counters are exported as gauges because the world's statistics are
// reset after warmup and on user request.
type WarehouseCollector struct {
	gatherer prometheus.Gatherer

	TickDuration prometheus.Histogram

	Ticks           prometheus.Gauge
	SimulatedTime   prometheus.Gauge
	TimeScale       prometheus.Gauge
	OrdersPending   prometheus.Gauge
	OrdersCompleted prometheus.Gauge
	OrdersDropped   prometheus.Gauge
	OrdersAbandoned prometheus.Gauge
	ItemsPicked     prometheus.Gauge
	RobotsMoving    prometheus.Gauge
	PodsInUse       prometheus.Gauge
	Utilization     prometheus.Gauge
	TotalDistance   prometheus.Gauge
}

// NewWarehouseCollector registers warehouse metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewWarehouseCollector(reg prometheus.Registerer) (*WarehouseCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	duration, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "warehouse_tick_duration_seconds",
		Help:    "Wall time spent executing one simulation tick.",
		Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
	}), "warehouse_tick_duration_seconds")
	if err != nil {
		return nil, err
	}

	c := &WarehouseCollector{gatherer: gatherer, TickDuration: duration}
	gauges := []struct {
		dst  *prometheus.Gauge
		name string
		help string
	}{
		{&c.Ticks, "warehouse_ticks", "Ticks executed since the world was created."},
		{&c.SimulatedTime, "warehouse_simulated_seconds", "Current simulated clock."},
		{&c.TimeScale, "warehouse_time_scale", "Real-time pacing multiplier."},
		{&c.OrdersPending, "warehouse_orders_pending", "Orders waiting in the queue."},
		{&c.OrdersCompleted, "warehouse_orders_completed", "Orders completed in the current measurement window."},
		{&c.OrdersDropped, "warehouse_orders_dropped", "Orders dropped at assignment in the current measurement window."},
		{&c.OrdersAbandoned, "warehouse_orders_abandoned", "Assigned orders abandoned in the current measurement window."},
		{&c.ItemsPicked, "warehouse_items_picked", "Items picked in the current measurement window."},
		{&c.RobotsMoving, "warehouse_robots_moving", "Robots currently executing a task."},
		{&c.PodsInUse, "warehouse_pods_in_use", "Pods currently carried by a robot."},
		{&c.Utilization, "warehouse_robot_utilization_percent", "Average robot utilization in the current measurement window."},
		{&c.TotalDistance, "warehouse_distance_traveled", "Distance covered by all robots in the current measurement window."},
	}
	for _, g := range gauges {
		gauge, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{Name: g.name, Help: g.help}), g.name)
		if err != nil {
			return nil, err
		}
		*g.dst = gauge
	}
	return c, nil
}

// ObserveTick implements sim.TickObserver.
func (c *WarehouseCollector) ObserveTick(w *sim.World, elapsed time.Duration) {
	if c == nil || w == nil {
		return
	}
	if elapsed > 0 {
		c.TickDuration.Observe(elapsed.Seconds())
	}

	moving := 0
	for _, r := range w.Robots() {
		if r.State() == sim.RobotMoving {
			moving++
		}
	}
	inUse := 0
	for _, p := range w.Pods() {
		if p.InUse() {
			inUse++
		}
	}

	c.Ticks.Set(float64(w.Ticks))
	c.SimulatedTime.Set(w.Clock)
	c.TimeScale.Set(w.TimeScale)
	c.OrdersPending.Set(float64(w.Orders().Len()))
	c.OrdersCompleted.Set(float64(w.Stats.OrdersCompleted))
	c.OrdersDropped.Set(float64(w.Stats.OrdersDropped))
	c.OrdersAbandoned.Set(float64(w.Stats.OrdersAbandoned))
	c.ItemsPicked.Set(float64(w.Stats.ItemsPicked))
	c.RobotsMoving.Set(float64(moving))
	c.PodsInUse.Set(float64(inUse))
	c.Utilization.Set(w.Utilization())
	c.TotalDistance.Set(w.Stats.TotalDistance)
}

// Handler exposes a ready-to-use /metrics handler.
func (c *WarehouseCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerHistogram(reg prometheus.Registerer, h prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return h, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
