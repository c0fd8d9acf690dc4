package sim

import (
	"bytes"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Mode selects how the band is split between the two capacity classes.
type Mode string

const (
	// ModeDynamic re-partitions the band every slot from HotspotShares.
	ModeDynamic Mode = "dynamic"
	// ModeStatic holds the split at StaticHotspotShare for the whole run.
	ModeStatic Mode = "static"
)

var validModes = map[Mode]bool{
	ModeDynamic: true,
	ModeStatic:  true,
}

// IsValidMode returns true if the given string names a known allocation mode.
func IsValidMode(m string) bool {
	return validModes[Mode(m)]
}

// DemandBound is the base (low, high) demand range for one density class.
type DemandBound struct {
	Low  int `yaml:"low"`
	High int `yaml:"high"`
}

// TopologyConfig parameterizes the city generator.
// Slices are indexed by density class.
type TopologyConfig struct {
	CityRows             int       `yaml:"city_rows"`
	CityCols             int       `yaml:"city_cols"`
	BlockSize            int       `yaml:"block_size"`
	DensityWeights       []float64 `yaml:"density_weights"`
	HotspotsPerBlock     []int     `yaml:"hotspots_per_block"`
	BaseStationsPerBlock []int     `yaml:"base_stations_per_block"`
}

// Config groups every read-only input the engine consumes.
// All top-level sections must be listed to satisfy KnownFields(true) strict parsing.
type Config struct {
	Seed               int64               `yaml:"seed"`
	Mode               Mode                `yaml:"mode"`
	Years              int                 `yaml:"years"`
	Days               int                 `yaml:"days"`
	GrowthFactor       float64             `yaml:"growth_factor"`
	TotalCapacity      float64             `yaml:"total_capacity"`       // MHz
	HotspotThreshold   float64             `yaml:"hotspot_threshold"`    // D_w
	CellularThreshold  float64             `yaml:"cellular_threshold"`   // D_c
	HotspotShares      []float64           `yaml:"hotspot_shares"`       // percent, one per slot
	StaticHotspotShare float64             `yaml:"static_hotspot_share"` // percent, static mode only
	DemandBounds       map[int]DemandBound `yaml:"demand_bounds"`
	SpectralEfficiency float64             `yaml:"spectral_efficiency"` // traffic carried per unit of bandwidth
	RequestSlack       float64             `yaml:"request_slack"`
	Topology           TopologyConfig      `yaml:"topology"`
}

// DefaultConfig returns the configuration used when no file is given.
// Capacity covers the 700 MHz of the upper 6 GHz band (6.5-7.2 GHz).
func DefaultConfig() Config {
	return Config{
		Seed:               42,
		Mode:               ModeDynamic,
		Years:              10,
		Days:               3,
		GrowthFactor:       1.2,
		TotalCapacity:      700,
		HotspotThreshold:   10,
		CellularThreshold:  25,
		HotspotShares:      []float64{50, 70, 30, 80, 40, 75},
		StaticHotspotShare: 50,
		DemandBounds: map[int]DemandBound{
			0: {Low: 100, High: 200},
			1: {Low: 201, High: 300},
			2: {Low: 301, High: 400},
		},
		SpectralEfficiency: 2,
		RequestSlack:       1,
		Topology: TopologyConfig{
			CityRows:             10,
			CityCols:             10,
			BlockSize:            100,
			DensityWeights:       []float64{0.3, 0.4, 0.3},
			HotspotsPerBlock:     []int{3, 5, 10},
			BaseStationsPerBlock: []int{1, 2, 5},
		},
	}
}

// LoadConfig reads a YAML config file on top of DefaultConfig.
// Uses strict parsing: unrecognized keys (typos) are rejected.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Validate checks that all fields in the config are usable.
func (c Config) Validate() error {
	if !IsValidMode(string(c.Mode)) {
		return fmt.Errorf("unknown mode %q; valid: dynamic, static", c.Mode)
	}
	if c.Years < 1 {
		return fmt.Errorf("years must be >= 1, got %d", c.Years)
	}
	if c.Days < 1 {
		return fmt.Errorf("days must be >= 1, got %d", c.Days)
	}
	if err := validateFinitePositive("growth_factor", c.GrowthFactor); err != nil {
		return err
	}
	if err := validateFinitePositive("spectral_efficiency", c.SpectralEfficiency); err != nil {
		return err
	}
	if err := validateFiniteNonNegative("total_capacity", c.TotalCapacity); err != nil {
		return err
	}
	if err := validateFiniteNonNegative("hotspot_threshold", c.HotspotThreshold); err != nil {
		return err
	}
	if err := validateFiniteNonNegative("cellular_threshold", c.CellularThreshold); err != nil {
		return err
	}
	if err := validateFiniteNonNegative("request_slack", c.RequestSlack); err != nil {
		return err
	}
	if len(c.HotspotShares) != SlotsPerDay {
		return fmt.Errorf("hotspot_shares must have %d entries, got %d", SlotsPerDay, len(c.HotspotShares))
	}
	for i, s := range c.HotspotShares {
		if err := validatePercent(fmt.Sprintf("hotspot_shares[%d]", i), s); err != nil {
			return err
		}
	}
	if err := validatePercent("static_hotspot_share", c.StaticHotspotShare); err != nil {
		return err
	}
	for d := 0; d < NumDensityClasses; d++ {
		b, ok := c.DemandBounds[d]
		if !ok {
			return fmt.Errorf("demand_bounds: missing density class %d", d)
		}
		if b.Low < 0 || b.High < b.Low {
			return fmt.Errorf("demand_bounds[%d]: need 0 <= low <= high, got [%d, %d]", d, b.Low, b.High)
		}
	}
	return c.Topology.Validate()
}

// Validate checks the topology block.
func (t TopologyConfig) Validate() error {
	if t.CityRows < 1 || t.CityCols < 1 {
		return fmt.Errorf("topology: city size must be positive, got %dx%d", t.CityRows, t.CityCols)
	}
	if t.BlockSize < 1 {
		return fmt.Errorf("topology: block_size must be positive, got %d", t.BlockSize)
	}
	if len(t.DensityWeights) != NumDensityClasses {
		return fmt.Errorf("topology: density_weights must have %d entries, got %d", NumDensityClasses, len(t.DensityWeights))
	}
	sum := 0.0
	for i, w := range t.DensityWeights {
		if err := validateFiniteNonNegative(fmt.Sprintf("topology.density_weights[%d]", i), w); err != nil {
			return err
		}
		sum += w
	}
	if sum <= 0 {
		return fmt.Errorf("topology: density_weights must not all be zero")
	}
	if len(t.HotspotsPerBlock) != NumDensityClasses || len(t.BaseStationsPerBlock) != NumDensityClasses {
		return fmt.Errorf("topology: per-block unit counts must have %d entries", NumDensityClasses)
	}
	for d := 0; d < NumDensityClasses; d++ {
		n := t.HotspotsPerBlock[d] + t.BaseStationsPerBlock[d]
		if t.HotspotsPerBlock[d] < 0 || t.BaseStationsPerBlock[d] < 0 {
			return fmt.Errorf("topology: unit counts for density %d must be non-negative", d)
		}
		if n > t.BlockSize*t.BlockSize {
			return fmt.Errorf("topology: %d units do not fit in a %dx%d block", n, t.BlockSize, t.BlockSize)
		}
	}
	return nil
}

func validateFinitePositive(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return fmt.Errorf("%s must be a finite positive number, got %f", name, v)
	}
	return nil
}

func validateFiniteNonNegative(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return fmt.Errorf("%s must be a finite non-negative number, got %f", name, v)
	}
	return nil
}

func validatePercent(name string, v float64) error {
	if math.IsNaN(v) || v < 0 || v > 100 {
		return fmt.Errorf("%s must be a percentage in [0, 100], got %f", name, v)
	}
	return nil
}
