package sim

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/rawsim/rawsim/sim"

// progressInterval is the simulated time between progress log lines.
const progressInterval = 60.0

// pausePoll is how long the loop sleeps between command checks while paused.
const pausePoll = 50 * time.Millisecond

// Mode describes how the executor paces ticks against the wall clock.
type Mode int

const (
	// Accelerated runs ticks back to back, sleeping only StepDelay between them.
	Accelerated Mode = iota
	// RealTime sleeps so that one tick takes Step/TimeScale wall seconds.
	RealTime
)

func (m Mode) String() string {
	if m == RealTime {
		return "realtime"
	}
	return "accelerated"
}

// ParseMode maps a flag value to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "", "accelerated":
		return Accelerated, nil
	case "realtime", "real-time":
		return RealTime, nil
	default:
		return Accelerated, fmt.Errorf("unknown mode %q (want accelerated or realtime)", s)
	}
}

// TickObserver is notified after every executed tick. elapsed is the wall
// time the tick itself took, or zero when the notification follows commands
// applied between ticks. Observers run on the simulation goroutine and must
// not retain w.
type TickObserver interface {
	ObserveTick(w *World, elapsed time.Duration)
}

// Executor drives a World through a warmup phase and a measurement phase
// with a fixed timestep.
type Executor struct {
	World    *World
	Step     float64 // simulated seconds per tick
	Warmup   float64 // simulated seconds before statistics reset
	Duration float64 // simulated seconds measured after warmup

	Mode      Mode
	StepDelay time.Duration // extra pause between ticks in Accelerated mode

	Observers []TickObserver
	// Commands are applied between ticks; nil means no external control.
	Commands <-chan Command
	// CheckInvariants verifies the pod relations after every tick.
	CheckInvariants bool

	lastProgress int
}

// NewExecutor returns an accelerated executor using the world's simulation config.
func NewExecutor(w *World) *Executor {
	return &Executor{
		World:    w,
		Step:     w.Config.Simulation.TimeStep,
		Warmup:   w.Config.Simulation.WarmupTime,
		Duration: w.Config.Simulation.Duration,
		Mode:     Accelerated,
	}
}

// Run executes warmup then measurement and returns the final statistics.
// Cancelling ctx stops the loop between ticks; the summary is still returned
// with Interrupted set. An error is returned only for an invalid step or a
// failed invariant check.
func (e *Executor) Run(ctx context.Context) (Summary, error) {
	w := e.World
	if e.Step <= 0 {
		return w.Summary(), fmt.Errorf("time step must be positive, got %f", e.Step)
	}

	tracer := otel.Tracer(tracerName)
	ctx, span := tracer.Start(ctx, "simulation.run", trace.WithAttributes(
		attribute.Float64("simulation.warmup_s", e.Warmup),
		attribute.Float64("simulation.duration_s", e.Duration),
		attribute.Float64("simulation.time_step_s", e.Step),
		attribute.String("simulation.mode", e.Mode.String()),
		attribute.Int("warehouse.robots", len(w.Robots())),
		attribute.Int("warehouse.pods", len(w.Pods())),
	))
	defer span.End()

	began := time.Now()
	e.lastProgress = int(w.Clock / progressInterval)
	logrus.Infof("Starting simulation: warmup %.1fs, duration %.1fs, step %.3fs (%s)", e.Warmup, e.Duration, e.Step, e.Mode)

	warmCtx, warmSpan := tracer.Start(ctx, "simulation.warmup")
	completed, err := e.runPhase(warmCtx, func() bool { return w.Clock >= e.Warmup })
	warmSpan.SetAttributes(attribute.Int64("simulation.ticks", w.Ticks))
	warmSpan.End()

	if completed && err == nil {
		w.ResetStatistics()
		if w.Trace != nil {
			w.Trace.Reset()
		}
		logrus.Infof("[t=%.2f] warmup complete, measuring for %.1fs", w.Clock, e.Duration)

		measureCtx, measureSpan := tracer.Start(ctx, "simulation.measure")
		completed, err = e.runPhase(measureCtx, func() bool { return w.Clock-w.Stats.StartClock >= e.Duration })
		measureSpan.SetAttributes(attribute.Int64("simulation.ticks", w.Ticks))
		measureSpan.End()
	}

	w.Stats.EndTime = time.Now()
	summary := w.Summary()
	summary.WallTime = time.Since(began).Seconds()
	summary.Interrupted = !completed && err == nil
	if summary.Interrupted {
		logrus.Warnf("[t=%.2f] simulation interrupted", w.Clock)
	}

	span.SetAttributes(
		attribute.Int("orders.completed", summary.OrdersCompleted),
		attribute.Int("orders.dropped", summary.OrdersDropped),
		attribute.Float64("robots.utilization_pct", summary.Utilization),
		attribute.Bool("simulation.interrupted", summary.Interrupted),
	)
	if err != nil {
		span.RecordError(err)
	}
	return summary, err
}

// runPhase ticks until done reports true. completed is false when ctx was
// cancelled first.
func (e *Executor) runPhase(ctx context.Context, done func() bool) (completed bool, err error) {
	w := e.World
	for !done() {
		if ctx.Err() != nil {
			return false, nil
		}
		if e.drainCommands() {
			e.notify(0)
		}
		if w.Paused {
			if !sleepContext(ctx, pausePoll) {
				return false, nil
			}
			continue
		}

		start := time.Now()
		w.Tick(e.Step)
		elapsed := time.Since(start)

		if e.CheckInvariants {
			if err := w.CheckInvariants(); err != nil {
				return false, fmt.Errorf("tick %d: %w", w.Ticks, err)
			}
		}
		e.notify(elapsed)
		e.logProgress()

		if !sleepContext(ctx, e.delay(elapsed)) {
			return false, nil
		}
	}
	return true, nil
}

func (e *Executor) notify(elapsed time.Duration) {
	for _, o := range e.Observers {
		o.ObserveTick(e.World, elapsed)
	}
}

// drainCommands applies every queued command and reports whether any took effect.
func (e *Executor) drainCommands() (applied bool) {
	if e.Commands == nil {
		return false
	}
	for {
		select {
		case c, ok := <-e.Commands:
			if !ok {
				e.Commands = nil
				return applied
			}
			if err := c.Apply(e.World); err != nil {
				logrus.Warnf("ignoring command: %v", err)
				continue
			}
			applied = true
			logrus.Infof("[t=%.2f] applied command %s (paused=%t, scale=%.2f)", e.World.Clock, c.Type, e.World.Paused, e.World.TimeScale)
		default:
			return applied
		}
	}
}

// delay returns the wall time to wait after a tick that took elapsed.
func (e *Executor) delay(elapsed time.Duration) time.Duration {
	if e.Mode == RealTime {
		scale := e.World.TimeScale
		if scale <= 0 {
			scale = 1
		}
		return time.Duration(e.Step/scale*float64(time.Second)) - elapsed
	}
	return e.StepDelay
}

func (e *Executor) logProgress() {
	w := e.World
	bucket := int(w.Clock / progressInterval)
	if bucket == e.lastProgress {
		return
	}
	e.lastProgress = bucket
	logrus.Infof("[t=%.1f] orders completed %d, pending %d, utilization %.1f%%",
		w.Clock, w.Stats.OrdersCompleted, w.Orders().Len(), w.Utilization())
}

// sleepContext waits for d or until ctx is done, reporting whether ctx is
// still live.
func sleepContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
