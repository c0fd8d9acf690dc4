package cmd

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/spectrum-sim/spectrum-sim/sim"
	"github.com/spectrum-sim/spectrum-sim/sim/report"
	"github.com/spectrum-sim/spectrum-sim/sim/trace"
)

var (
	sweepFrom float64 // First static hotspot share (percent)
	sweepTo   float64 // Last static hotspot share (percent)
	sweepStep float64 // Increment between shares
)

// sweepCmd runs the static policy once per hotspot share to trace the Wi-Fi/cellular tradeoff
var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run static band allocation across a range of hotspot shares",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()

		cfg, err := resolveConfig(cmd)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		splits, err := splitRange(sweepFrom, sweepTo, sweepStep)
		if err != nil {
			logrus.Fatalf("%v", err)
		}

		logrus.Infof("Sweeping %d static splits from %g%% to %g%%", len(splits), sweepFrom, sweepTo)
		runs, err := sweepSplits(cmd.Context(), cfg, splits)
		if err != nil {
			logrus.Fatalf("sweep failed: %v", err)
		}

		accs := make([]*report.Accumulator, len(runs))
		for i, r := range runs {
			r.Report.Print(os.Stdout)
			accs[i] = r.Report
		}
		fmt.Println("=== Static Split Tradeoff ===")
		report.PrintSweep(os.Stdout, accs)
	},
}

// splitRange lists from, from+step, ... up to and including to.
func splitRange(from, to, step float64) ([]float64, error) {
	if !(step > 0) {
		return nil, fmt.Errorf("--step must be > 0, got %g", step)
	}
	if from < 0 || to > 100 || from > to {
		return nil, fmt.Errorf("need 0 <= --from <= --to <= 100, got %g..%g", from, to)
	}
	var out []float64
	for i := 0; ; i++ {
		v := from + float64(i)*step
		if v > to+1e-9 {
			break
		}
		out = append(out, min(v, to))
	}
	return out, nil
}

// sweepSplits runs one static simulation per split on the same city and
// demand seed. Results come back in the order of splits.
func sweepSplits(ctx context.Context, cfg sim.Config, splits []float64) ([]*result, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	out := make([]*result, len(splits))
	for i, split := range splits {
		runCfg := cfg
		runCfg.Mode = sim.ModeStatic
		runCfg.StaticHotspotShare = split
		g.Go(func() error {
			r, err := simulate(ctx, runCfg, trace.TraceLevelNone, nil)
			if err != nil {
				return fmt.Errorf("split %g%%: %w", split, err)
			}
			out[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
