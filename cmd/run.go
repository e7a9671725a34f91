package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rawsim/rawsim/internal/observability"
	"github.com/rawsim/rawsim/sim"
	"github.com/rawsim/rawsim/sim/trace"
)

var (
	// CLI overrides for the simulation section of the config
	duration float64 // Measured simulated seconds after warmup
	warmup   float64 // Simulated seconds before statistics reset
	timeStep float64 // Simulated seconds per tick

	// Execution driver flags
	modeName        string        // accelerated | realtime
	stepDelay       time.Duration // Extra wall delay between accelerated ticks
	checkInvariants bool          // Verify pod relations after every tick

	// Observability flags
	metricsAddr     string  // Listen address for /metrics, /snapshot and /control
	traceLevel      string  // Decision trace level
	otelExporter    string  // none | stdout | otlp
	otelEndpoint    string  // OTLP collector endpoint
	otelSampleRatio float64 // Span sampling ratio
	resultsPath     string  // File to save the JSON summary to
)

// runCmd executes the simulation using the config file and CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the warehouse simulation",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()

		cfg := loadConfig()
		// Flags only override the file when given explicitly
		if cmd.Flags().Changed("duration") {
			cfg.Simulation.Duration = duration
		}
		if cmd.Flags().Changed("warmup") {
			cfg.Simulation.WarmupTime = warmup
		}
		if cmd.Flags().Changed("time-step") {
			cfg.Simulation.TimeStep = timeStep
		}
		if err := cfg.Validate(); err != nil {
			logrus.Fatalf("invalid configuration: %v", err)
		}
		if !trace.IsValidTraceLevel(traceLevel) {
			logrus.Fatalf("Invalid trace level: %s", traceLevel)
		}
		mode, err := sim.ParseMode(modeName)
		if err != nil {
			logrus.Fatalf("%v", err)
		}

		runID := uuid.NewString()
		log := logrus.WithField("run_id", runID)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		shutdown, err := observability.InitTracing(ctx, observability.TracingConfig{
			Enabled:     otelExporter != "" && otelExporter != "none",
			ServiceName: "rawsim",
			Exporter:    otelExporter,
			Endpoint:    otelEndpoint,
			SampleRatio: otelSampleRatio,
			RunID:       runID,
		})
		if err != nil {
			log.Fatalf("tracing setup failed: %v", err)
		}
		defer observability.ShutdownWithTimeout(context.Background(), shutdown)

		world, err := buildWorld(cfg)
		if err != nil {
			log.Fatalf("%v", err)
		}
		traceCfg := trace.TraceConfig{Level: trace.TraceLevel(traceLevel)}
		if traceCfg.Enabled() {
			world.Trace = trace.NewSimulationTrace(traceCfg)
		}

		executor := sim.NewExecutor(world)
		executor.Mode = mode
		executor.StepDelay = stepDelay
		executor.CheckInvariants = checkInvariants

		if metricsAddr != "" {
			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			collector, err := observability.NewWarehouseCollector(reg)
			if err != nil {
				log.Fatalf("metrics setup failed: %v", err)
			}
			server := observability.NewServer(collector)
			executor.Observers = append(executor.Observers, server)
			executor.Commands = server.Commands()

			serverCtx, cancelServer := context.WithCancel(ctx)
			defer cancelServer()
			go func() {
				if err := server.ListenAndServe(serverCtx, metricsAddr); err != nil {
					log.Errorf("observability server: %v", err)
				}
			}()
		}

		log.Infof("Simulation initialized: %dx%d warehouse, %d robots, %d pods, seed %d",
			cfg.Warehouse.Width, cfg.Warehouse.Height, len(world.Robots()), len(world.Pods()), seed)

		summary, err := executor.Run(ctx)
		summary.RunID = runID
		summary.Print(cmd.OutOrStdout())
		if err != nil {
			stop()
			fatalAfterFlush(log, shutdown, "simulation failed: %v", err)
		}

		if world.Trace != nil {
			printTraceSummary(cmd.OutOrStdout(), trace.Summarize(world.Trace))
		}
		if resultsPath != "" {
			if err := summary.SaveToFile(resultsPath); err != nil {
				log.Errorf("%v", err)
			} else {
				log.Infof("Summary saved to %s", resultsPath)
			}
		}
	},
}

// fatalAfterFlush flushes pending spans before logging a fatal error, since
// Fatalf exits without running deferred calls.
func fatalAfterFlush(log *logrus.Entry, shutdown func(context.Context) error, format string, args ...any) {
	observability.ShutdownWithTimeout(context.Background(), shutdown)
	log.Fatalf(format, args...)
}

// printTraceSummary reports the decision trace aggregates.
func printTraceSummary(out io.Writer, ts *trace.TraceSummary) {
	fmt.Fprintln(out, "=== Assignment Trace ===")
	fmt.Fprintf(out, "Decisions: %d (assigned %d, dropped %d)\n", ts.TotalDecisions, ts.AssignedCount, ts.DroppedCount)
	fmt.Fprintf(out, "Outcomes: completed %d, abandoned %d\n", ts.CompletedCount, ts.AbandonedCount)
	fmt.Fprintf(out, "Queue wait: mean %.2fs, max %.2fs\n", ts.MeanWait, ts.MaxWait)
	if ts.UniquePods == 0 {
		return
	}
	pods := make([]int, 0, len(ts.PodDistribution))
	for id := range ts.PodDistribution {
		pods = append(pods, id)
	}
	sort.Ints(pods)
	fmt.Fprintf(out, "Pods used: %d\n", ts.UniquePods)
	for _, id := range pods {
		fmt.Fprintf(out, "  pod %d: %d orders\n", id, ts.PodDistribution[id])
	}
}

func init() {
	runCmd.Flags().Float64Var(&duration, "duration", 0, "Measured simulated seconds after warmup (overrides config)")
	runCmd.Flags().Float64Var(&warmup, "warmup", 0, "Warmup simulated seconds (overrides config)")
	runCmd.Flags().Float64Var(&timeStep, "time-step", 0, "Simulated seconds per tick (overrides config)")

	runCmd.Flags().StringVar(&modeName, "mode", "accelerated", "Pacing mode (accelerated, realtime)")
	runCmd.Flags().DurationVar(&stepDelay, "step-delay", 0, "Wall delay between ticks in accelerated mode")
	runCmd.Flags().BoolVar(&checkInvariants, "check-invariants", false, "Verify robot/pod/waypoint relations after every tick")

	runCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Serve /metrics, /snapshot and /control on this address (empty disables)")
	runCmd.Flags().StringVar(&traceLevel, "trace-level", "none", "Assignment trace level (none, decisions)")
	runCmd.Flags().StringVar(&otelExporter, "otel-exporter", "none", "OpenTelemetry span exporter (none, stdout, otlp)")
	runCmd.Flags().StringVar(&otelEndpoint, "otel-endpoint", "", "OTLP gRPC endpoint (default localhost:4317)")
	runCmd.Flags().Float64Var(&otelSampleRatio, "otel-sample-ratio", 1.0, "Fraction of runs whose spans are sampled")
	runCmd.Flags().StringVar(&resultsPath, "results-path", "", "File to save the JSON summary to")
}
