// Defines the Unit struct that models a single transmitter (hotspot or base station).
// Tracks position, density class, current demand, granted bandwidth and congestion.

package sim

import "fmt"

// UnitType distinguishes the two traffic classes sharing the band.
type UnitType int

const (
	BaseStation UnitType = iota
	Hotspot
)

// UnitTypes lists every unit type in a stable order.
var UnitTypes = []UnitType{BaseStation, Hotspot}

func (t UnitType) String() string {
	switch t {
	case BaseStation:
		return "BS"
	case Hotspot:
		return "HS"
	default:
		return fmt.Sprintf("UnitType(%d)", int(t))
	}
}

// Class returns the capacity class the unit type draws spectrum from.
func (t UnitType) Class() CapacityClass {
	if t == Hotspot {
		return ClassHotspot
	}
	return ClassCellular
}

// CapacityClass names one side of the band split.
type CapacityClass string

const (
	ClassHotspot  CapacityClass = "hotspot"
	ClassCellular CapacityClass = "cellular"
)

// Position is a point in city coordinates. The origin is the top-left corner.
type Position struct {
	X, Y float64
}

// NoGroup marks a unit the grouping engine has not visited yet.
const NoGroup = -1

// Unit models one wireless access point or cellular base station.
// ID, Position, Type and Density are fixed at creation; the remaining fields
// are rewritten every diurnal slot.
type Unit struct {
	ID       int
	Position Position
	Type     UnitType
	Density  int // population-density class, 0 (low) to 2 (high)

	Demand    float64 // current traffic demand
	Bandwidth float64 // currently granted bandwidth, never negative
	Congested bool
	GroupID   int // NoGroup until grouping has run
}

// NewUnit creates a unit with no demand, no bandwidth and no group.
func NewUnit(id int, pos Position, t UnitType, density int) *Unit {
	return &Unit{
		ID:       id,
		Position: pos,
		Type:     t,
		Density:  density,
		GroupID:  NoGroup,
	}
}

// Capacity returns the traffic the unit's granted bandwidth can carry.
func (u *Unit) Capacity(efficiency float64) float64 {
	return u.Bandwidth * efficiency
}

// RequiredBandwidth returns the bandwidth needed to carry the current demand.
func (u *Unit) RequiredBandwidth(efficiency float64) float64 {
	return u.Demand / efficiency
}

// UpdateCongestion recomputes the congestion flag from scratch.
// A unit is congested iff its granted bandwidth cannot carry its demand.
func (u *Unit) UpdateCongestion(efficiency float64) {
	u.Congested = u.Capacity(efficiency) < u.Demand
}

// SpectrumRequest decides whether the unit should ask for more spectrum this
// slot. A unit with no bandwidth asks for everything its demand needs; a unit
// whose demand exceeds what it can carry by more than slack asks for the
// difference.
func (u *Unit) SpectrumRequest(efficiency, slack float64) (Request, bool) {
	need := u.RequiredBandwidth(efficiency)
	if u.Bandwidth == 0 {
		if need <= 0 {
			return Request{}, false
		}
		return Request{UnitID: u.ID, Bandwidth: need}, true
	}
	if u.Demand > u.Capacity(efficiency)+slack {
		return Request{UnitID: u.ID, Bandwidth: need - u.Bandwidth}, true
	}
	return Request{}, false
}

func (u *Unit) String() string {
	return fmt.Sprintf("%s#%d(group=%d demand=%.2f bw=%.2f congested=%t)",
		u.Type, u.ID, u.GroupID, u.Demand, u.Bandwidth, u.Congested)
}
