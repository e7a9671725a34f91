package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Pod seeding bounds for GenerateLayout.
const (
	minSeedItems = 5
	maxSeedItems = 20
)

// GenerateLayout places stations, marks the storage band and scatters pods
// and robots on the world's grid. It is a one-time setup step; randomness is
// drawn from the layout RNG subsystem only.
func (w *World) GenerateLayout() error {
	cfg := w.Config
	width, height := cfg.Warehouse.Width, cfg.Warehouse.Height

	if err := w.placeStations(cfg.Stations.InputCount, 0, w.AddInputStation); err != nil {
		return err
	}
	if err := w.placeStations(cfg.Stations.OutputCount, height-1, w.AddOutputStation); err != nil {
		return err
	}

	w.markStorage(width, height, cfg.Warehouse.PodStorageRows)

	rng := w.rng.ForSubsystem(SubsystemLayout)

	var storage []WaypointID
	for _, wp := range w.Graph.Waypoints() {
		if wp.PodStorage {
			storage = append(storage, wp.ID)
		}
	}
	rng.Shuffle(len(storage), func(i, j int) { storage[i], storage[j] = storage[j], storage[i] })

	podCount := min(cfg.Pods.Count, len(storage))
	if podCount < cfg.Pods.Count {
		logrus.Warnf("only %d storage locations for %d pods", len(storage), cfg.Pods.Count)
	}
	for i := 0; i < podCount; i++ {
		pod, err := w.AddPod(storage[i], cfg.Pods.Capacity)
		if err != nil {
			return fmt.Errorf("generate layout: %w", err)
		}
		seeded := minSeedItems + rng.Intn(maxSeedItems-minSeedItems+1)
		for j := 0; j < seeded; j++ {
			pod.AddItem(ItemName(1+rng.Intn(cfg.Orders.CatalogSize)), 1.0, 1)
		}
	}

	var free []WaypointID
	for _, wp := range w.Graph.Waypoints() {
		if !wp.IsOccupied() {
			free = append(free, wp.ID)
		}
	}
	rng.Shuffle(len(free), func(i, j int) { free[i], free[j] = free[j], free[i] })

	robotCount := min(cfg.Robots.Count, len(free))
	if robotCount < cfg.Robots.Count {
		logrus.Warnf("only %d free waypoints for %d robots", len(free), cfg.Robots.Count)
	}
	for i := 0; i < robotCount; i++ {
		if _, err := w.AddRobot(free[i], cfg.Robots.Speed); err != nil {
			return fmt.Errorf("generate layout: %w", err)
		}
	}

	logrus.Infof("Layout generation complete! (%d waypoints, %d pods, %d robots)",
		w.Graph.Len(), len(w.pods), len(w.robots))
	return nil
}

// placeStations spaces count stations evenly along row y.
func (w *World) placeStations(count, y int, add func(WaypointID) (*Station, error)) error {
	if count <= 0 {
		return nil
	}
	spacing := w.Config.Warehouse.Width / (count + 1)
	for i := 0; i < count; i++ {
		at, ok := w.Graph.At(spacing*(i+1), y)
		if !ok {
			return fmt.Errorf("generate layout: no waypoint at (%d, %d) for station %d", spacing*(i+1), y, i)
		}
		if _, err := add(at); err != nil {
			return fmt.Errorf("generate layout: %w", err)
		}
	}
	return nil
}

// markStorage flags the central band of rows as pod storage, keeping two
// columns free on each side and an aisle every third column. The band never
// covers the station rows.
func (w *World) markStorage(width, height, rows int) {
	yStart := max(height/2-rows/2, 1)
	yEnd := min(height/2-rows/2+rows, height-1)
	for y := yStart; y < yEnd; y++ {
		for x := 2; x < width-2; x++ {
			if x%3 == 0 {
				continue
			}
			if at, ok := w.Graph.At(x, y); ok {
				w.Graph.Waypoint(at).PodStorage = true
			}
		}
	}
}
