package cmd

import (
	"context"
	"fmt"

	"github.com/spectrum-sim/spectrum-sim/sim"
	"github.com/spectrum-sim/spectrum-sim/sim/driver"
	"github.com/spectrum-sim/spectrum-sim/sim/report"
	"github.com/spectrum-sim/spectrum-sim/sim/topology"
	"github.com/spectrum-sim/spectrum-sim/sim/trace"
)

// result is everything a finished run hands back to the CLI.
type result struct {
	Report *report.Accumulator
	Trace  *trace.SimulationTrace
	State  *sim.State
}

// simulate generates the city for cfg.Seed and runs the full horizon.
// collector may be nil.
func simulate(ctx context.Context, cfg sim.Config, level trace.TraceLevel, collector *report.Collector) (*result, error) {
	rng := sim.NewPartitionedRNG(sim.NewSimulationKey(cfg.Seed))
	city, err := topology.Generate(cfg.Topology, rng.ForSubsystem(sim.SubsystemTopology))
	if err != nil {
		return nil, fmt.Errorf("generating topology: %w", err)
	}

	acc := report.NewAccumulator(cfg.Mode, collector)
	if cfg.Mode == sim.ModeStatic {
		acc.Split = cfg.StaticHotspotShare
	}
	s, err := driver.New(cfg, city.Units, driver.Options{
		Trace:     trace.TraceConfig{Level: level},
		Observers: []driver.Observer{acc},
	})
	if err != nil {
		return nil, err
	}
	if err := s.Run(ctx); err != nil {
		return nil, fmt.Errorf("%s run: %w", cfg.Mode, err)
	}
	return &result{Report: acc, Trace: s.Trace(), State: s.State()}, nil
}
