package sim

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// WarehouseConfig groups grid dimensions.
type WarehouseConfig struct {
	Width          int `yaml:"width"`            // lattice columns (must be > 0)
	Height         int `yaml:"height"`           // lattice rows (must be > 0)
	PodStorageRows int `yaml:"pod_storage_rows"` // rows in the central storage band
}

// RobotsConfig groups fleet parameters.
type RobotsConfig struct {
	Count    int     `yaml:"count"`
	Speed    float64 `yaml:"speed"`    // length units per simulated second (must be > 0)
	Capacity int     `yaml:"capacity"` // pods per robot; only 1 is supported
}

// PodsConfig groups storage pod parameters.
type PodsConfig struct {
	Count    int     `yaml:"count"`
	Capacity float64 `yaml:"capacity"`
}

// StationsConfig groups station counts.
type StationsConfig struct {
	InputCount  int `yaml:"input_count"`
	OutputCount int `yaml:"output_count"`
}

// SimulationConfig groups execution driver timing, all in simulated seconds.
type SimulationConfig struct {
	Duration   float64 `yaml:"duration"`
	WarmupTime float64 `yaml:"warmup_time"`
	TimeStep   float64 `yaml:"time_step"`
}

// OrdersConfig groups stochastic order generation parameters.
type OrdersConfig struct {
	ArrivalProbability float64 `yaml:"arrival_probability"` // chance of a new order per tick
	MinItems           int     `yaml:"min_items"`
	MaxItems           int     `yaml:"max_items"`
	CatalogSize        int     `yaml:"catalog_size"` // item names are item_1..item_N
}

// Config is the full warehouse configuration.
// All top-level sections must be listed to satisfy KnownFields(true) strict parsing.
type Config struct {
	Warehouse  WarehouseConfig  `yaml:"warehouse"`
	Robots     RobotsConfig     `yaml:"robots"`
	Pods       PodsConfig       `yaml:"pods"`
	Stations   StationsConfig   `yaml:"stations"`
	Simulation SimulationConfig `yaml:"simulation"`
	Orders     OrdersConfig     `yaml:"orders"`
}

// DefaultConfig returns the built-in configuration used when no file exists.
func DefaultConfig() Config {
	return Config{
		Warehouse:  WarehouseConfig{Width: 30, Height: 20, PodStorageRows: 5},
		Robots:     RobotsConfig{Count: 8, Speed: 2.0, Capacity: 1},
		Pods:       PodsConfig{Count: 40, Capacity: 100.0},
		Stations:   StationsConfig{InputCount: 2, OutputCount: 2},
		Simulation: SimulationConfig{Duration: 300, WarmupTime: 10, TimeStep: 0.1},
		Orders:     OrdersConfig{ArrivalProbability: 0.05, MinItems: 1, MaxItems: 3, CatalogSize: 50},
	}
}

// LoadConfig reads a YAML (or JSON) configuration file layered over
// DefaultConfig. A missing file is not an error: the defaults are returned
// with found=false. Unknown fields are rejected.
func LoadConfig(path string) (cfg Config, found bool, err error) {
	cfg = DefaultConfig()
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, false, nil
	}
	if err != nil {
		return cfg, false, fmt.Errorf("reading config: %w", err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return cfg, true, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, true, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, true, nil
}

// Validate checks dimensions, counts and timing for values the engine cannot run with.
func (c Config) Validate() error {
	if c.Warehouse.Width <= 0 || c.Warehouse.Height <= 0 {
		return fmt.Errorf("warehouse dimensions must be positive, got %dx%d", c.Warehouse.Width, c.Warehouse.Height)
	}
	if c.Warehouse.PodStorageRows < 0 {
		return fmt.Errorf("pod_storage_rows must be non-negative, got %d", c.Warehouse.PodStorageRows)
	}
	if c.Robots.Count < 0 || c.Pods.Count < 0 {
		return fmt.Errorf("robot and pod counts must be non-negative, got robots=%d pods=%d", c.Robots.Count, c.Pods.Count)
	}
	if c.Robots.Speed <= 0 {
		return fmt.Errorf("robots.speed must be positive, got %f", c.Robots.Speed)
	}
	if c.Robots.Capacity != 1 {
		return fmt.Errorf("robots.capacity must be 1, got %d", c.Robots.Capacity)
	}
	if c.Pods.Capacity < 0 {
		return fmt.Errorf("pods.capacity must be non-negative, got %f", c.Pods.Capacity)
	}
	if c.Stations.InputCount < 0 || c.Stations.OutputCount < 0 {
		return fmt.Errorf("station counts must be non-negative, got input=%d output=%d", c.Stations.InputCount, c.Stations.OutputCount)
	}
	if c.Stations.InputCount >= c.Warehouse.Width || c.Stations.OutputCount >= c.Warehouse.Width {
		return fmt.Errorf("station counts must be smaller than warehouse width %d", c.Warehouse.Width)
	}
	if c.Simulation.TimeStep <= 0 {
		return fmt.Errorf("simulation.time_step must be positive, got %f", c.Simulation.TimeStep)
	}
	if c.Simulation.Duration < 0 || c.Simulation.WarmupTime < 0 {
		return fmt.Errorf("simulation duration and warmup_time must be non-negative, got %f and %f", c.Simulation.Duration, c.Simulation.WarmupTime)
	}
	if c.Orders.ArrivalProbability < 0 || c.Orders.ArrivalProbability > 1 {
		return fmt.Errorf("orders.arrival_probability must be in [0, 1], got %f", c.Orders.ArrivalProbability)
	}
	if c.Orders.MinItems < 1 || c.Orders.MaxItems < c.Orders.MinItems {
		return fmt.Errorf("orders item bounds must satisfy 1 <= min_items <= max_items, got %d..%d", c.Orders.MinItems, c.Orders.MaxItems)
	}
	if c.Orders.CatalogSize < 1 {
		return fmt.Errorf("orders.catalog_size must be positive, got %d", c.Orders.CatalogSize)
	}
	return nil
}
