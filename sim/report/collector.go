package report

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/spectrum-sim/spectrum-sim/sim"
)

// Collector mirrors the report as Prometheus metrics. All methods are safe on
// a nil receiver so callers can run without metrics.
type Collector struct {
	DemandMet *prometheus.GaugeVec
	Congested *prometheus.GaugeVec
	Capacity  *prometheus.GaugeVec
	Decisions *prometheus.CounterVec
}

// NewCollector registers spectrum metrics against the provided registerer.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	demandMet, err := registerGaugeVec(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "spectrum_demand_met_percent",
		Help: "Share of traffic demand carried during the last completed year.",
	}, []string{"mode", "class"}), "spectrum_demand_met_percent")
	if err != nil {
		return nil, err
	}

	congested, err := registerGaugeVec(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "spectrum_congested_units_percent",
		Help: "Share of unit-slots congested during the last completed year.",
	}, []string{"mode", "class"}), "spectrum_congested_units_percent")
	if err != nil {
		return nil, err
	}

	capacity, err := registerGaugeVec(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "spectrum_band_capacity",
		Help: "Current band capacity assigned to each class.",
	}, []string{"mode", "class"}), "spectrum_band_capacity")
	if err != nil {
		return nil, err
	}

	decisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "spectrum_allocation_decisions_total",
		Help: "Allocation decisions by class and outcome.",
	}, []string{"mode", "class", "outcome"})
	if err := reg.Register(decisions); err != nil {
		are, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			return nil, err
		}
		existing, ok := are.ExistingCollector.(*prometheus.CounterVec)
		if !ok {
			return nil, fmt.Errorf("collector spectrum_allocation_decisions_total already registered with incompatible type")
		}
		decisions = existing
	}

	return &Collector{
		DemandMet: demandMet,
		Congested: congested,
		Capacity:  capacity,
		Decisions: decisions,
	}, nil
}

// ObserveDecision counts one allocation decision.
func (c *Collector) ObserveDecision(mode sim.Mode, d sim.Decision) {
	if c == nil || c.Decisions == nil {
		return
	}
	c.Decisions.WithLabelValues(string(mode), string(d.Class), string(d.Outcome)).Inc()
}

// ObserveBand records the current band split.
func (c *Collector) ObserveBand(mode sim.Mode, b sim.BandState) {
	if c == nil || c.Capacity == nil {
		return
	}
	c.Capacity.WithLabelValues(string(mode), string(sim.ClassHotspot)).Set(b.Hotspot)
	c.Capacity.WithLabelValues(string(mode), string(sim.ClassCellular)).Set(b.Cellular)
}

// ObserveYear publishes a closed year's aggregates.
func (c *Collector) ObserveYear(mode sim.Mode, yr *YearReport) {
	if c == nil || yr == nil {
		return
	}
	for class, st := range yr.Classes {
		c.DemandMet.WithLabelValues(string(mode), string(class)).Set(st.DemandMetPercent())
		c.Congested.WithLabelValues(string(mode), string(class)).Set(st.CongestedPercent())
	}
}

func registerGaugeVec(reg prometheus.Registerer, g *prometheus.GaugeVec, name string) (*prometheus.GaugeVec, error) {
	if err := reg.Register(g); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.GaugeVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return g, nil
}
