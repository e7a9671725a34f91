package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rawsim/rawsim/sim"
)

var (
	// Flags shared by every subcommand
	configPath string // Path to the warehouse YAML configuration
	seed       int64  // Seed for layout and order generation
	logLevel   string // Log verbosity level
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "rawsim",
	Short: "Discrete-time simulator for robotic warehouses",
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "Path to warehouse configuration (YAML or JSON)")
	rootCmd.PersistentFlags().Int64Var(&seed, "seed", 42, "Seed for layout and order generation")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "info", "Log level (trace, debug, info, warn, error, fatal, panic)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(layoutCmd)
	rootCmd.AddCommand(configCmd)
}

// setupLogging applies --log to the global logrus logger.
func setupLogging() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
}

// loadConfig reads --config, applying the defaults when the file is missing.
// Any parse or validation error is fatal.
func loadConfig() sim.Config {
	cfg, found, err := sim.LoadConfig(configPath)
	if err != nil {
		logrus.Fatalf("%v", err)
	}
	if !found {
		logrus.Warnf("Config file %s not found, using defaults", configPath)
	}
	return cfg
}

// buildWorld constructs a world for cfg and generates its layout.
func buildWorld(cfg sim.Config) (*sim.World, error) {
	rng := sim.NewPartitionedRNG(sim.NewSimulationKey(seed))
	world := sim.NewWorld(cfg, rng)
	if err := world.GenerateLayout(); err != nil {
		return nil, err
	}
	return world, nil
}
