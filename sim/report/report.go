// Package report aggregates per-class outcomes of a simulation run: how much
// of the demand was carried and how many units were congested.
package report

import (
	"fmt"
	"io"
	"math"

	"github.com/spectrum-sim/spectrum-sim/sim"
	"github.com/spectrum-sim/spectrum-sim/sim/driver"
)

// ClassStats accumulates observations for one capacity class. Demand,
// Carried and Bandwidth are weighted by slot length in hours.
type ClassStats struct {
	Observations int // unit-slots observed
	Congested    int // unit-slots congested
	Demand       float64
	Carried      float64 // min(bandwidth × efficiency, demand)
	Bandwidth    float64
	Hours        float64
}

// DemandMetPercent returns the share of demand carried, 0 if there was none.
func (c ClassStats) DemandMetPercent() float64 {
	if c.Demand <= 0 {
		return 0
	}
	return 100 * c.Carried / c.Demand
}

// CongestedPercent returns the share of unit-slots that were congested.
func (c ClassStats) CongestedPercent() float64 {
	if c.Observations == 0 {
		return 0
	}
	return 100 * float64(c.Congested) / float64(c.Observations)
}

// MeanBandwidth returns the time-weighted mean bandwidth per unit.
func (c ClassStats) MeanBandwidth() float64 {
	if c.Hours <= 0 {
		return 0
	}
	return c.Bandwidth / c.Hours
}

func (c *ClassStats) observe(u *sim.Unit, efficiency, hours float64) {
	c.Observations++
	if u.Congested {
		c.Congested++
	}
	c.Demand += u.Demand * hours
	c.Carried += math.Min(u.Capacity(efficiency), u.Demand) * hours
	c.Bandwidth += u.Bandwidth * hours
	c.Hours += hours
}

// YearReport holds one simulated year's aggregates.
type YearReport struct {
	Year     int
	Classes  map[sim.CapacityClass]*ClassStats
	Outcomes map[sim.Outcome]int
}

func newYearReport(year int) *YearReport {
	return &YearReport{
		Year: year,
		Classes: map[sim.CapacityClass]*ClassStats{
			sim.ClassHotspot:  {},
			sim.ClassCellular: {},
		},
		Outcomes: make(map[sim.Outcome]int),
	}
}

// Accumulator builds YearReports from driver events.
type Accumulator struct {
	Mode      sim.Mode
	Split     float64 // hotspot share (percent) of a static run
	Years     []*YearReport
	current   *YearReport
	collector *Collector
}

var _ driver.Observer = (*Accumulator)(nil)

// NewAccumulator creates an Accumulator. collector may be nil.
func NewAccumulator(mode sim.Mode, collector *Collector) *Accumulator {
	return &Accumulator{Mode: mode, current: newYearReport(0), collector: collector}
}

// OnDecision counts the decision's outcome.
func (a *Accumulator) OnDecision(_ driver.Clock, d sim.Decision) {
	a.current.Outcomes[d.Outcome]++
	a.collector.ObserveDecision(a.Mode, d)
}

// OnSlotEnd observes every unit, weighted by the slot's length.
func (a *Accumulator) OnSlotEnd(clk driver.Clock, s *sim.State) {
	a.current.Year = clk.Year
	hours := float64(sim.SlotDuration(clk.Slot))
	for _, u := range s.Units {
		a.current.Classes[u.Type.Class()].observe(u, s.Efficiency, hours)
	}
	a.collector.ObserveBand(a.Mode, s.Band.State())
}

// OnYearEnd closes the year's report.
func (a *Accumulator) OnYearEnd(year int, _ *sim.State) {
	a.current.Year = year
	a.Years = append(a.Years, a.current)
	a.collector.ObserveYear(a.Mode, a.current)
	a.current = newYearReport(year + 1)
}

// Print writes every year's report.
func (a *Accumulator) Print(w io.Writer) {
	for _, yr := range a.Years {
		fmt.Fprintf(w, "%s\n===== Year %d =====\n%s\n", banner, yr.Year, banner)
		fmt.Fprintf(w, "config.mode: %s\n", a.Mode)
		if a.Mode == sim.ModeStatic {
			fmt.Fprintf(w, "config.spectrum_split: %g%%\n", a.Split)
		}
		printYear(w, yr)
	}
}

// PrintComparison writes the years of two runs side by side.
func PrintComparison(w io.Writer, a, b *Accumulator) {
	n := min(len(a.Years), len(b.Years))
	fmt.Fprintf(w, "%-6s %-10s %14s %14s %14s %14s\n",
		"Year", "Mode", "WifiMet(%)", "CellMet(%)", "WifiCong(%)", "CellCong(%)")
	for i := 0; i < n; i++ {
		for _, acc := range []*Accumulator{a, b} {
			yr := acc.Years[i]
			hs, cell := yr.Classes[sim.ClassHotspot], yr.Classes[sim.ClassCellular]
			fmt.Fprintf(w, "%-6d %-10s %14.2f %14.2f %14.2f %14.2f\n",
				yr.Year, acc.Mode, hs.DemandMetPercent(), cell.DemandMetPercent(),
				hs.CongestedPercent(), cell.CongestedPercent())
		}
	}
}

// PrintSweep writes one row per split per year, in the order given.
func PrintSweep(w io.Writer, runs []*Accumulator) {
	fmt.Fprintf(w, "%-9s %-6s %14s %14s %14s %14s\n",
		"Split(%)", "Year", "WifiMet(%)", "CellMet(%)", "WifiCong(%)", "CellCong(%)")
	for _, acc := range runs {
		for _, yr := range acc.Years {
			hs, cell := yr.Classes[sim.ClassHotspot], yr.Classes[sim.ClassCellular]
			fmt.Fprintf(w, "%-9g %-6d %14.2f %14.2f %14.2f %14.2f\n",
				acc.Split, yr.Year, hs.DemandMetPercent(), cell.DemandMetPercent(),
				hs.CongestedPercent(), cell.CongestedPercent())
		}
	}
}

const banner = "=================="

func printYear(w io.Writer, yr *YearReport) {
	hs, cell := yr.Classes[sim.ClassHotspot], yr.Classes[sim.ClassCellular]
	fmt.Fprintf(w, "Percentage of Total Wifi Traffic Demand Met: %.2f%%\n", hs.DemandMetPercent())
	fmt.Fprintf(w, "Percentage of Total Cellular Traffic Demand Met: %.2f%%\n", cell.DemandMetPercent())
	fmt.Fprintf(w, "Percentage of Congested Wifi Units: %.2f%%\n", hs.CongestedPercent())
	fmt.Fprintf(w, "Percentage of Congested Cellular Units: %.2f%%\n", cell.CongestedPercent())
	fmt.Fprintf(w, "Mean Wifi Bandwidth: %.2f\n", hs.MeanBandwidth())
	fmt.Fprintf(w, "Mean Cellular Bandwidth: %.2f\n", cell.MeanBandwidth())
	fmt.Fprintf(w, "Decisions: grant=%d shrink=%d full=%d\n",
		yr.Outcomes[sim.OutcomeGrant], yr.Outcomes[sim.OutcomeShrink], yr.Outcomes[sim.OutcomeFull])
}
