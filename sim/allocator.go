// Spectrum allocator: grants a request in full when it fits in the group's
// share of the band, otherwise shrinks the whole group proportionally.

package sim

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

// capacityEpsilon is the float tolerance for capacity invariant checks.
const capacityEpsilon = 1e-6

// Outcome is how a request was resolved.
type Outcome string

const (
	// OutcomeGrant: the request fit and was added on top of the unit's grant.
	OutcomeGrant Outcome = "grant"
	// OutcomeShrink: the request did not fit; every group member was scaled.
	OutcomeShrink Outcome = "shrink"
	// OutcomeFull: the unit is alone in its group and received the whole class capacity.
	OutcomeFull Outcome = "full"
)

// Decision records one resolved request.
type Decision struct {
	UnitID      int
	GroupID     int
	Class       CapacityClass
	Requested   float64
	Capacity    float64 // class capacity at decision time
	TotalBefore float64 // ledger total before the request
	TotalAfter  float64
	Factor      float64 // scale applied to the group; 1 unless shrunk
	Granted     float64 // requesting unit's bandwidth after the decision
	Congested   bool
	Outcome     Outcome
}

// Allocate resolves one request against s. It either grants the request,
// shrinks the unit's whole group to fit the class capacity, or, for a
// singleton group, hands the unit the full class capacity. Congestion is
// recomputed for every unit whose bandwidth changed.
//
// On shrink every member is scaled by f = C/(T+r). The requester ends at
// (b_u+r)·f, its held bandwidth plus the request scaled together, not at r·f;
// the two agree only when it held nothing. This keeps the group's bandwidth
// summing to exactly C.
//
// Requests for non-positive bandwidth are rejected before the ledger is
// touched. Invariant violations panic.
func Allocate(s *State, r Request) (Decision, error) {
	if !(r.Bandwidth > 0) || math.IsInf(r.Bandwidth, 0) {
		return Decision{}, fmt.Errorf("unit %d requested %f: %w", r.UnitID, r.Bandwidth, ErrNonPositiveRequest)
	}
	u, ok := s.Unit(r.UnitID)
	if !ok {
		return Decision{}, fmt.Errorf("unit %d: %w", r.UnitID, ErrUnknownUnit)
	}
	g, ok := s.Ledger.Group(u.GroupID)
	if !ok {
		return Decision{}, fmt.Errorf("unit %d: %w", r.UnitID, ErrNoGroup)
	}

	c := s.Band.Capacity(g.Class)
	t := g.Total
	d := Decision{
		UnitID:      u.ID,
		GroupID:     g.ID,
		Class:       g.Class,
		Requested:   r.Bandwidth,
		Capacity:    c,
		TotalBefore: t,
		Factor:      1,
	}

	switch {
	case g.Size() == 1:
		u.Bandwidth = c
		s.Ledger.Set(g.ID, c)
		u.UpdateCongestion(s.Efficiency)
		d.Outcome = OutcomeFull

	case t+r.Bandwidth <= c:
		u.Bandwidth += r.Bandwidth
		s.Ledger.Add(g.ID, r.Bandwidth)
		if after := s.Ledger.Total(g.ID); after > c+capacityEpsilon {
			panic(fmt.Sprintf("Allocate: grant left group %d at %f, above capacity %f", g.ID, after, c))
		}
		u.UpdateCongestion(s.Efficiency)
		d.Outcome = OutcomeGrant

	default:
		f := c / (t + r.Bandwidth)
		if f >= 1 {
			panic(fmt.Sprintf("Allocate: shrink entered for group %d with factor %f (T=%f r=%f C=%f)", g.ID, f, t, r.Bandwidth, c))
		}
		for _, m := range s.Members(g.ID) {
			if m.ID == u.ID {
				m.Bandwidth = (m.Bandwidth + r.Bandwidth) * f
			} else {
				m.Bandwidth *= f
			}
			m.UpdateCongestion(s.Efficiency)
		}
		s.Ledger.Set(g.ID, c)
		d.Factor = f
		d.Outcome = OutcomeShrink
		logrus.Debugf("group %d (%s) over capacity: T=%.2f r=%.2f C=%.2f, scaled %d units by %.4f",
			g.ID, g.Class, t, r.Bandwidth, c, g.Size(), f)
	}

	d.TotalAfter = s.Ledger.Total(g.ID)
	d.Granted = u.Bandwidth
	d.Congested = u.Congested
	logrus.Tracef("unit %d: %s requested=%.2f granted=%.2f group=%d total=%.2f/%.2f",
		u.ID, d.Outcome, d.Requested, d.Granted, g.ID, d.TotalAfter, c)
	return d, nil
}
