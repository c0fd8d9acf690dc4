// Package driver advances the simulation clock: years → days → diurnal slots.
// Every slot refreshes demand, collects spectrum requests, drains them FIFO
// through the allocator and then re-partitions the band for the next slot.
package driver

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/spectrum-sim/spectrum-sim/sim"
	"github.com/spectrum-sim/spectrum-sim/sim/spatial"
	"github.com/spectrum-sim/spectrum-sim/sim/trace"
)

// Clock is a position in simulated time.
type Clock struct {
	Year, Day, Slot int
}

func (c Clock) String() string {
	return fmt.Sprintf("y%d/d%d/s%d", c.Year, c.Day, c.Slot)
}

// Observer receives engine events. Implementations must not mutate the state.
type Observer interface {
	OnDecision(clk Clock, d sim.Decision)
	OnSlotEnd(clk Clock, s *sim.State)
	OnYearEnd(year int, s *sim.State)
}

// Options tunes a Simulator beyond its Config.
type Options struct {
	Trace trace.TraceConfig
	// DrainOrder, if set, reorders each slot's queue before it is drained.
	// It must not change the number of requests.
	DrainOrder func([]sim.Request)
	Observers  []Observer
}

// Simulator owns the simulation state and drives it through time.
type Simulator struct {
	cfg        sim.Config
	state      *sim.State
	demand     *sim.DemandModel
	queue      sim.RequestQueue
	growth     float64
	clock      Clock
	trace      *trace.SimulationTrace
	drainOrder func([]sim.Request)
	observers  []Observer
	hasRun     bool
}

// New validates cfg, groups units and prepares a Simulator at year 0, slot 0.
func New(cfg sim.Config, units []*sim.Unit, opts Options) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if !trace.IsValidTraceLevel(string(opts.Trace.Level)) {
		return nil, fmt.Errorf("unknown trace level %q", opts.Trace.Level)
	}
	state, err := sim.NewState(units, sim.NewPartitionerForMode(cfg), cfg.SpectralEfficiency)
	if err != nil {
		return nil, err
	}
	grouper := spatial.NewGrouper(cfg)
	if err := state.AssignGroups(grouper.ComputeGroups(state.Units)); err != nil {
		return nil, fmt.Errorf("assigning groups: %w", err)
	}
	rng := sim.NewPartitionedRNG(sim.NewSimulationKey(cfg.Seed))
	s := &Simulator{
		cfg:        cfg,
		state:      state,
		demand:     sim.NewDemandModel(cfg.DemandBounds, rng.ForSubsystem(sim.SubsystemDemand)),
		growth:     1,
		drainOrder: opts.DrainOrder,
		observers:  opts.Observers,
	}
	if opts.Trace.Enabled() {
		s.trace = trace.NewSimulationTrace(opts.Trace)
	}
	logrus.Infof("%s mode: %d units in %d groups, %.0f total capacity",
		cfg.Mode, len(state.Units), state.Ledger.Len(), cfg.TotalCapacity)
	return s, nil
}

// Run executes every year, day and slot of the configured horizon.
// The context is checked between days; a slot is never left half-drained.
// Panics if called more than once.
func (s *Simulator) Run(ctx context.Context) error {
	if s.hasRun {
		panic("Simulator.Run() called more than once")
	}
	s.hasRun = true

	for year := 0; year < s.cfg.Years; year++ {
		for day := 0; day < s.cfg.Days; day++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			for slot := 0; slot < sim.SlotsPerDay; slot++ {
				s.clock = Clock{Year: year, Day: day, Slot: slot}
				if err := s.Step(); err != nil {
					return err
				}
			}
		}
		for _, o := range s.observers {
			o.OnYearEnd(year, s.state)
		}
		s.growth *= s.cfg.GrowthFactor
		logrus.Infof("year %d complete, demand growth now x%.3f", year, s.growth)
	}
	return nil
}

// Step runs the slot at the current clock: refresh demand, enqueue requests,
// drain the queue, then partition the band for the next slot.
func (s *Simulator) Step() error {
	clk := s.clock
	for _, u := range s.state.Units {
		u.Demand = s.demand.Demand(u, clk.Slot, s.growth)
	}
	s.state.RefreshCongestion()
	for _, u := range s.state.Units {
		if r, ok := u.SpectrumRequest(s.state.Efficiency, s.cfg.RequestSlack); ok {
			s.queue.Enqueue(r)
		}
	}
	if err := s.Drain(); err != nil {
		return err
	}
	for _, o := range s.observers {
		o.OnSlotEnd(clk, s.state)
	}

	next := (clk.Slot + 1) % sim.SlotsPerDay
	hs, cell := s.state.Band.ApplySchedule(next)
	scaled := s.state.Rebalance()
	if s.trace != nil && scaled > 0 {
		s.trace.RecordRebalance(trace.RebalanceRecord{Year: clk.Year, Day: clk.Day, Slot: clk.Slot, Groups: scaled})
	}
	logrus.Debugf("%s: band for slot %d hotspot=%.1f cellular=%.1f, %d groups rebalanced",
		clk, next, hs, cell, scaled)
	return nil
}

// Enqueue adds a request to the current slot's queue.
func (s *Simulator) Enqueue(r sim.Request) {
	s.queue.Enqueue(r)
}

// Drain resolves every queued request in FIFO order (after DrainOrder, if set).
func (s *Simulator) Drain() error {
	if s.drainOrder != nil {
		s.queue.Reorder(s.drainOrder)
	}
	n := s.queue.Len()
	for {
		r, ok := s.queue.Dequeue()
		if !ok {
			break
		}
		d, err := sim.Allocate(s.state, r)
		if err != nil {
			return fmt.Errorf("%s: %w", s.clock, err)
		}
		s.record(d)
	}
	logrus.Debugf("%s: drained %d requests", s.clock, n)
	return nil
}

func (s *Simulator) record(d sim.Decision) {
	for _, o := range s.observers {
		o.OnDecision(s.clock, d)
	}
	if s.trace == nil {
		return
	}
	s.trace.RecordAllocation(trace.AllocationRecord{
		Year:       s.clock.Year,
		Day:        s.clock.Day,
		Slot:       s.clock.Slot,
		UnitID:     d.UnitID,
		GroupID:    d.GroupID,
		Class:      string(d.Class),
		Outcome:    string(d.Outcome),
		Requested:  d.Requested,
		Granted:    d.Granted,
		Capacity:   d.Capacity,
		TotalAfter: d.TotalAfter,
		Factor:     d.Factor,
		Congested:  d.Congested,
	})
}

// State returns the live simulation state.
func (s *Simulator) State() *sim.State {
	return s.state
}

// Trace returns the decision trace, or nil when tracing is off.
func (s *Simulator) Trace() *trace.SimulationTrace {
	return s.trace
}

// Clock returns the clock of the most recent slot.
func (s *Simulator) Clock() Clock {
	return s.clock
}

// Growth returns the current demand-growth multiplier.
func (s *Simulator) Growth() float64 {
	return s.growth
}

// Config returns the configuration the simulator was built with.
func (s *Simulator) Config() sim.Config {
	return s.cfg
}
