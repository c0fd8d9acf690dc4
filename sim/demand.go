// Traffic demand model: bounded, randomized demand per unit, driven by the
// unit's density class, the diurnal intensity schedule and yearly growth.

package sim

import (
	"fmt"
	"math"
	"math/rand"
)

const (
	// SlotsPerDay is the number of diurnal slots in one simulated day.
	SlotsPerDay = 6
	// NumDensityClasses is the number of population-density classes (0, 1, 2).
	NumDensityClasses = 3
)

// slotHours approximates the length of each slot:
// 0-8h, 8-12h, 12-15h, 15-17h, 17-19h, 19-24h.
var slotHours = [SlotsPerDay]int{8, 4, 3, 2, 2, 5}

// SlotDuration returns the length of a slot in hours.
func SlotDuration(slot int) int {
	checkSlot(slot)
	return slotHours[slot]
}

// Intensity labels which third of a demand range a slot draws from.
type Intensity int

const (
	IntensityLow Intensity = iota
	IntensityMedium
	IntensityHigh
)

func (i Intensity) String() string {
	switch i {
	case IntensityLow:
		return "low"
	case IntensityMedium:
		return "medium"
	case IntensityHigh:
		return "high"
	default:
		return fmt.Sprintf("Intensity(%d)", int(i))
	}
}

// intensitySchedule is indexed by [slot][UnitType].
var intensitySchedule = [SlotsPerDay][2]Intensity{
	{IntensityLow, IntensityLow}, // BS, HS
	{IntensityLow, IntensityMedium},
	{IntensityHigh, IntensityMedium},
	{IntensityMedium, IntensityHigh},
	{IntensityHigh, IntensityMedium},
	{IntensityLow, IntensityHigh},
}

// IntensityFor returns the traffic intensity of a unit type during a slot.
func IntensityFor(slot int, t UnitType) Intensity {
	checkSlot(slot)
	return intensitySchedule[slot][t]
}

// DemandRange returns the inclusive integer range a draw is taken from.
// The base bound is scaled by growth and split into three equal thirds;
// the intensity picks the bottom, middle or top third.
func DemandRange(b DemandBound, growth float64, in Intensity) (lo, hi int) {
	lo = int(math.Round(float64(b.Low) * growth))
	hi = int(math.Round(float64(b.High) * growth))
	third := (hi - lo) / 3
	switch in {
	case IntensityLow:
		hi = lo + third
	case IntensityMedium:
		lo += third
		hi = lo + third
	case IntensityHigh:
		lo = hi - third
	default:
		panic(fmt.Sprintf("DemandRange: unknown intensity %d", int(in)))
	}
	return lo, hi
}

// DemandModel draws per-slot traffic demand for units.
type DemandModel struct {
	bounds map[int]DemandBound
	rng    *rand.Rand
}

// NewDemandModel creates a DemandModel over the per-density bound table.
func NewDemandModel(bounds map[int]DemandBound, rng *rand.Rand) *DemandModel {
	if rng == nil {
		panic("NewDemandModel: rng must not be nil")
	}
	return &DemandModel{bounds: bounds, rng: rng}
}

// Demand returns a fresh demand for u during slot under the given cumulative
// growth multiplier. It has no side effects on u.
func (m *DemandModel) Demand(u *Unit, slot int, growth float64) float64 {
	b, ok := m.bounds[u.Density]
	if !ok {
		panic(fmt.Sprintf("Demand: no demand bound for density class %d (unit %d)", u.Density, u.ID))
	}
	lo, hi := DemandRange(b, growth, IntensityFor(slot, u.Type))
	if hi <= lo {
		return float64(lo)
	}
	return float64(lo + m.rng.Intn(hi-lo+1))
}

func checkSlot(slot int) {
	if slot < 0 || slot >= SlotsPerDay {
		panic(fmt.Sprintf("slot %d out of range [0, %d)", slot, SlotsPerDay))
	}
}
