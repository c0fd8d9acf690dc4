package cmd

import (
	"context"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/spectrum-sim/spectrum-sim/sim"
	"github.com/spectrum-sim/spectrum-sim/sim/report"
	"github.com/spectrum-sim/spectrum-sim/sim/trace"
)

// compareCmd runs the dynamic and static policies on the same city and demand seed
var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Run dynamic and static band allocation side by side",
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

		dyn, static, err := compareModes(cmd.Context(), cfg, collector)
		if err != nil {
			logrus.Fatalf("comparison failed: %v", err)
		}
		report.PrintComparison(os.Stdout, dyn.Report, static.Report)

		if metricsOut != "" {
			if err := prometheus.WriteToTextfile(metricsOut, reg); err != nil {
				logrus.Fatalf("writing metrics: %v", err)
			}
		}
	},
}

// compareModes runs both modes concurrently. Each run owns its own city and
// state; only the collector is shared. The first failure cancels the other.
func compareModes(ctx context.Context, cfg sim.Config, collector *report.Collector) (dyn, static *result, err error) {
	g, ctx := errgroup.WithContext(ctx)

	dynCfg := cfg
	dynCfg.Mode = sim.ModeDynamic
	staticCfg := cfg
	staticCfg.Mode = sim.ModeStatic

	g.Go(func() error {
		r, err := simulate(ctx, dynCfg, trace.TraceLevelNone, collector)
		dyn = r
		return err
	})
	g.Go(func() error {
		r, err := simulate(ctx, staticCfg, trace.TraceLevelNone, collector)
		static = r
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return dyn, static, nil
}
