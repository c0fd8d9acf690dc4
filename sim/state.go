package sim

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
)

var (
	// ErrNonPositiveRequest is returned for requests of zero, negative or NaN bandwidth.
	ErrNonPositiveRequest = errors.New("requested bandwidth must be positive")
	// ErrUnknownUnit is returned when a request names a unit that does not exist.
	ErrUnknownUnit = errors.New("unknown unit")
	// ErrNoGroup is returned when a unit has not been assigned to a group.
	ErrNoGroup = errors.New("unit has no group")
)

// State is the complete mutable simulation state: units keyed by ID, the
// allocation ledger and the band split. Every engine component takes it
// explicitly instead of reaching for globals.
type State struct {
	Units      []*Unit // ascending ID
	Ledger     *Ledger
	Band       *BandPartitioner
	Efficiency float64 // traffic carried per unit of bandwidth

	byID map[int]*Unit
}

// NewState creates a State over units. Unit IDs must be unique.
// Groups are not assigned yet; call AssignGroups before allocating.
func NewState(units []*Unit, band *BandPartitioner, efficiency float64) (*State, error) {
	if band == nil {
		return nil, fmt.Errorf("band partitioner must not be nil")
	}
	if efficiency <= 0 {
		return nil, fmt.Errorf("spectral efficiency must be positive, got %f", efficiency)
	}
	sorted := make([]*Unit, len(units))
	copy(sorted, units)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	byID := make(map[int]*Unit, len(sorted))
	for _, u := range sorted {
		if _, dup := byID[u.ID]; dup {
			return nil, fmt.Errorf("duplicate unit id %d", u.ID)
		}
		byID[u.ID] = u
	}
	return &State{
		Units:      sorted,
		Ledger:     NewLedger(),
		Band:       band,
		Efficiency: efficiency,
		byID:       byID,
	}, nil
}

// Unit returns the unit with the given ID.
func (s *State) Unit(id int) (*Unit, bool) {
	u, ok := s.byID[id]
	return u, ok
}

// AssignGroups stamps every unit with its group from assignment and resets
// the ledger to the current granted bandwidths.
func (s *State) AssignGroups(assignment map[int]int) error {
	for _, u := range s.Units {
		gid, ok := assignment[u.ID]
		if !ok {
			return fmt.Errorf("unit %d: %w", u.ID, ErrNoGroup)
		}
		u.GroupID = gid
	}
	return s.Ledger.Reset(s.Units)
}

// Members returns the units of a group in ascending ID order.
func (s *State) Members(groupID int) []*Unit {
	g, ok := s.Ledger.Group(groupID)
	if !ok {
		return nil
	}
	out := make([]*Unit, 0, len(g.Members))
	for _, id := range g.Members {
		out = append(out, s.byID[id])
	}
	return out
}

// GroupBandwidth sums the granted bandwidth of a group's members directly,
// independent of the ledger's running total.
func (s *State) GroupBandwidth(groupID int) float64 {
	members := s.Members(groupID)
	bw := make([]float64, len(members))
	for i, u := range members {
		bw[i] = u.Bandwidth
	}
	return floats.Sum(bw)
}

// Capacity returns the current band capacity for a group's class.
func (s *State) Capacity(groupID int) float64 {
	g, ok := s.Ledger.Group(groupID)
	if !ok {
		return 0
	}
	return s.Band.Capacity(g.Class)
}

// RefreshCongestion recomputes every unit's congestion flag.
func (s *State) RefreshCongestion() {
	for _, u := range s.Units {
		u.UpdateCongestion(s.Efficiency)
	}
}

// Rebalance scales down every group whose running total exceeds its class's
// current capacity so that it sits exactly at capacity. Call after the band
// is re-partitioned. Returns the number of groups scaled.
func (s *State) Rebalance() int {
	scaled := 0
	for _, g := range s.Ledger.Groups() {
		c := s.Band.Capacity(g.Class)
		if g.Total <= c || g.Total <= 0 {
			continue
		}
		f := c / g.Total
		for _, id := range g.Members {
			u := s.byID[id]
			u.Bandwidth *= f
			u.UpdateCongestion(s.Efficiency)
		}
		s.Ledger.Set(g.ID, c)
		scaled++
	}
	return scaled
}
