package sim

import (
	"fmt"
	"math"
)

// BandState records the current split of the band between the two classes.
// Hotspot + Cellular always equals Total.
type BandState struct {
	Slot     int
	Total    float64
	Hotspot  float64
	Cellular float64
}

// Capacity returns the current capacity of the given class.
func (b BandState) Capacity(c CapacityClass) float64 {
	switch c {
	case ClassHotspot:
		return b.Hotspot
	case ClassCellular:
		return b.Cellular
	default:
		panic(fmt.Sprintf("Capacity: unknown capacity class %q", c))
	}
}

// BandPartitioner reassigns the band split once per slot from a fixed
// table of hotspot-share percentages.
type BandPartitioner struct {
	shares [SlotsPerDay]float64
	state  BandState
}

// NewBandPartitioner creates a partitioner over the given per-slot hotspot
// shares (percent) and applies slot 0.
func NewBandPartitioner(total float64, shares []float64) *BandPartitioner {
	if len(shares) != SlotsPerDay {
		panic(fmt.Sprintf("NewBandPartitioner: need %d shares, got %d", SlotsPerDay, len(shares)))
	}
	p := &BandPartitioner{state: BandState{Total: total}}
	copy(p.shares[:], shares)
	p.ApplySchedule(0)
	return p
}

// NewStaticPartitioner creates a partitioner that holds the same split in
// every slot.
func NewStaticPartitioner(total, share float64) *BandPartitioner {
	shares := make([]float64, SlotsPerDay)
	for i := range shares {
		shares[i] = share
	}
	return NewBandPartitioner(total, shares)
}

// NewPartitionerForMode builds the partitioner selected by cfg.Mode.
func NewPartitionerForMode(cfg Config) *BandPartitioner {
	switch cfg.Mode {
	case ModeStatic:
		return NewStaticPartitioner(cfg.TotalCapacity, cfg.StaticHotspotShare)
	case ModeDynamic, "":
		return NewBandPartitioner(cfg.TotalCapacity, cfg.HotspotShares)
	default:
		panic(fmt.Sprintf("unhandled allocation mode %q", cfg.Mode))
	}
}

// ApplySchedule sets the split for slot and returns the new capacities.
// Must only be called between slots, never while requests are draining.
func (p *BandPartitioner) ApplySchedule(slot int) (hotspot, cellular float64) {
	checkSlot(slot)
	hotspot, cellular = splitBand(p.state.Total, p.state.Total*p.shares[slot]/100)
	p.state.Slot = slot
	p.state.Hotspot = hotspot
	p.state.Cellular = cellular
	return hotspot, cellular
}

// State returns a copy of the current band state.
func (p *BandPartitioner) State() BandState {
	return p.state
}

// Capacity returns the current capacity of the given class.
func (p *BandPartitioner) Capacity(c CapacityClass) float64 {
	return p.state.Capacity(c)
}

// Share returns the hotspot share (percent) scheduled for slot.
func (p *BandPartitioner) Share(slot int) float64 {
	checkSlot(slot)
	return p.shares[slot]
}

// splitBand returns a hotspot/cellular pair whose floating-point sum is
// exactly total. total-hotspot alone can land one ulp off, so the remainder
// is nudged by an ulp either way, and failing that the hotspot side is
// nudged toward zero and the remainder retried.
func splitBand(total, hotspot float64) (float64, float64) {
	hotspot = math.Min(math.Max(hotspot, 0), total)
	for range 64 {
		rem := total - hotspot
		for _, c := range [...]float64{rem, math.Nextafter(rem, math.Inf(-1)), math.Nextafter(rem, math.Inf(1))} {
			if c >= 0 && hotspot+c == total {
				return hotspot, c
			}
		}
		hotspot = math.Nextafter(hotspot, 0)
	}
	panic(fmt.Sprintf("splitBand: no exact split of %v near hotspot %v", total, hotspot))
}
