package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/spectrum-sim/spectrum-sim/sim"
	"github.com/spectrum-sim/spectrum-sim/sim/spatial"
	"github.com/spectrum-sim/spectrum-sim/sim/topology"
)

// groupsCmd generates the city and prints its interference groups without simulating
var groupsCmd = &cobra.Command{
	Use:   "groups",
	Short: "Print interference group statistics for the generated city",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()

		cfg, err := resolveConfig(cmd)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		rng := sim.NewPartitionedRNG(sim.NewSimulationKey(cfg.Seed))
		city, err := topology.Generate(cfg.Topology, rng.ForSubsystem(sim.SubsystemTopology))
		if err != nil {
			logrus.Fatalf("generating topology: %v", err)
		}
		logrus.Infof("generated %d hotspots and %d base stations",
			city.Count(sim.Hotspot), city.Count(sim.BaseStation))
		g := spatial.NewGrouper(cfg)
		assignment := g.ComputeGroups(city.Units)
		printGroupStats(os.Stdout, summarizeGroups(city.Units, assignment, g.Neighbors(city.Units)))
	},
}

// groupStats describes the groups of one unit type.
type groupStats struct {
	Units         int
	Groups        int
	Singletons    int
	Largest       int
	MeanNeighbors float64 // same-type units within the grouping threshold
}

func summarizeGroups(units []*sim.Unit, assignment map[int]int, neighbors map[int][]int) map[sim.UnitType]groupStats {
	sizes := make(map[sim.UnitType]map[int]int)
	links := make(map[sim.UnitType]int)
	for _, t := range sim.UnitTypes {
		sizes[t] = make(map[int]int)
	}
	for _, u := range units {
		sizes[u.Type][assignment[u.ID]]++
		links[u.Type] += len(neighbors[u.ID])
	}
	out := make(map[sim.UnitType]groupStats, len(sizes))
	for t, bySize := range sizes {
		var st groupStats
		for _, n := range bySize {
			st.Units += n
			st.Groups++
			if n == 1 {
				st.Singletons++
			}
			st.Largest = max(st.Largest, n)
		}
		if st.Units > 0 {
			st.MeanNeighbors = float64(links[t]) / float64(st.Units)
		}
		out[t] = st
	}
	return out
}

func printGroupStats(w io.Writer, stats map[sim.UnitType]groupStats) {
	fmt.Fprintln(w, "=== Interference Groups ===")
	for _, t := range sim.UnitTypes {
		st := stats[t]
		fmt.Fprintf(w, "%s: units=%d groups=%d singletons=%d largest=%d neighbors=%.2f\n",
			t, st.Units, st.Groups, st.Singletons, st.Largest, st.MeanNeighbors)
	}
}
