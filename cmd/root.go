package cmd

import (
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/spectrum-sim/spectrum-sim/sim"
	"github.com/spectrum-sim/spectrum-sim/sim/report"
	"github.com/spectrum-sim/spectrum-sim/sim/trace"
)

var (
	configPath  string  // YAML config file (optional)
	seed        int64   // Seed for topology and demand draws
	logLevel    string  // Log verbosity level
	mode        string  // dynamic or static band split
	years       int     // Number of simulated years
	days        int     // Number of simulated days per year
	staticSplit float64 // Hotspot share (percent) in static mode
	traceLevel  string  // Decision trace level
	metricsOut  string  // Prometheus textfile output path
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "spectrum-sim",
	Short: "Simulator for sharing a spectrum band between hotspots and base stations",
}

// runCmd executes one simulation using parameters from the config file and CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the spectrum allocation simulation",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()

		cfg, err := resolveConfig(cmd)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		reg := prometheus.NewRegistry()
		collector, err := report.NewCollector(reg)
		if err != nil {
			logrus.Fatalf("registering metrics: %v", err)
		}

		logrus.Infof("Starting %s simulation: %d years x %d days, seed=%d, D_w=%.1f, D_c=%.1f",
			cfg.Mode, cfg.Years, cfg.Days, cfg.Seed, cfg.HotspotThreshold, cfg.CellularThreshold)
		res, err := simulate(cmd.Context(), cfg, trace.TraceLevel(traceLevel), collector)
		if err != nil {
			logrus.Fatalf("simulation failed: %v", err)
		}

		res.Report.Print(os.Stdout)
		if res.Trace != nil {
			printTraceSummary(trace.Summarize(res.Trace))
		}
		if metricsOut != "" {
			if err := prometheus.WriteToTextfile(metricsOut, reg); err != nil {
				logrus.Fatalf("writing metrics: %v", err)
			}
			logrus.Infof("metrics written to %s", metricsOut)
		}
		logrus.Info("Simulation complete.")
	},
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupLogging() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
}

func printTraceSummary(s *trace.TraceSummary) {
	fmt.Println("=== Allocation Trace Summary ===")
	fmt.Printf("Total Decisions      : %d\n", s.TotalDecisions)
	fmt.Printf("Grants               : %d\n", s.Grants)
	fmt.Printf("Shrinks              : %d\n", s.Shrinks)
	fmt.Printf("Full Grants          : %d\n", s.FullGrants)
	fmt.Printf("Congested After      : %d\n", s.CongestedAfter)
	if s.Shrinks > 0 {
		fmt.Printf("Mean Shrink Factor   : %.4f\n", s.MeanShrinkFactor)
		fmt.Printf("Min Shrink Factor    : %.4f\n", s.MinShrinkFactor)
	}
	fmt.Printf("Groups Rebalanced    : %d\n", s.GroupsRebalanced)
}

// addSimulationFlags registers the flags shared by run and compare.
func addSimulationFlags(c *cobra.Command) {
	c.Flags().StringVar(&configPath, "config", "", "Path to YAML config file (defaults are used when empty)")
	c.Flags().Int64Var(&seed, "seed", 42, "Seed for topology generation and demand draws")
	c.Flags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")
	c.Flags().IntVar(&years, "years", 10, "Number of simulated years")
	c.Flags().IntVar(&days, "days", 3, "Number of simulated days per year")
	c.Flags().Float64Var(&staticSplit, "static-split", 50, "Hotspot share of the band (percent) in static mode")
	c.Flags().StringVar(&metricsOut, "metrics-out", "", "Write Prometheus metrics in text format to this file")
}

// init sets up CLI flags and subcommands
func init() {
	addSimulationFlags(runCmd)
	runCmd.Flags().StringVar(&mode, "mode", string(sim.ModeDynamic), "Band split mode (dynamic, static)")
	runCmd.Flags().StringVar(&traceLevel, "trace", string(trace.TraceLevelNone), "Decision trace level (none, decisions)")

	addSimulationFlags(compareCmd)

	groupsCmd.Flags().StringVar(&configPath, "config", "", "Path to YAML config file (defaults are used when empty)")
	groupsCmd.Flags().Int64Var(&seed, "seed", 42, "Seed for topology generation")
	groupsCmd.Flags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")

	sweepCmd.Flags().StringVar(&configPath, "config", "", "Path to YAML config file (defaults are used when empty)")
	sweepCmd.Flags().Int64Var(&seed, "seed", 42, "Seed for topology generation and demand draws")
	sweepCmd.Flags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")
	sweepCmd.Flags().IntVar(&years, "years", 10, "Number of simulated years")
	sweepCmd.Flags().IntVar(&days, "days", 3, "Number of simulated days per year")
	sweepCmd.Flags().Float64Var(&sweepFrom, "from", 10, "First hotspot share (percent)")
	sweepCmd.Flags().Float64Var(&sweepTo, "to", 90, "Last hotspot share (percent)")
	sweepCmd.Flags().Float64Var(&sweepStep, "step", 10, "Increment between hotspot shares (percent)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(groupsCmd)
	rootCmd.AddCommand(sweepCmd)
}
