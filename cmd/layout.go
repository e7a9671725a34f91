package cmd

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rawsim/rawsim/sim"
)

// layoutCmd generates the warehouse layout and prints an overview
var layoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "Generate the warehouse layout and print it",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()
		world, err := buildWorld(loadConfig())
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		printLayout(cmd.OutOrStdout(), world)
	},
}

// printLayout draws the grid row by row: I/O stations, P pods, R robots,
// ':' empty storage cells and '.' aisles. A robot standing on a pod is drawn as R.
func printLayout(out io.Writer, w *sim.World) {
	width, height := w.Config.Warehouse.Width, w.Config.Warehouse.Height
	grid := make([][]byte, height)
	for y := range grid {
		grid[y] = make([]byte, width)
	}
	for _, wp := range w.Graph.Waypoints() {
		x, y := int(wp.X), int(wp.Y)
		c := byte('.')
		if wp.PodStorage {
			c = ':'
		}
		if _, ok := wp.Pod(); ok {
			c = 'P'
		}
		if _, ok := wp.InputStation(); ok {
			c = 'I'
		}
		if _, ok := wp.OutputStation(); ok {
			c = 'O'
		}
		grid[y][x] = c
	}
	for _, r := range w.Robots() {
		if at, ok := r.CurrentWaypoint(); ok {
			wp := w.Graph.Waypoint(at)
			grid[int(wp.Y)][int(wp.X)] = 'R'
		}
	}
	for _, row := range grid {
		fmt.Fprintln(out, string(row))
	}

	items := 0
	for _, p := range w.Pods() {
		for _, n := range p.Items {
			items += n
		}
	}
	fmt.Fprintf(out, "%dx%d grid: %d waypoints, %d pods (%d items), %d robots, %d input / %d output stations\n",
		width, height, w.Graph.Len(), len(w.Pods()), items, len(w.Robots()),
		len(w.InputStations()), len(w.OutputStations()))
}
