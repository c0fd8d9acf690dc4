package sim

import (
	"fmt"
	"sort"
)

// GroupEntry is the ledger record of one interference group: its members and
// the running total of bandwidth granted to them.
type GroupEntry struct {
	ID      int
	Class   CapacityClass
	Members []int // unit IDs, ascending
	Total   float64
}

// Size returns the number of units in the group.
func (g *GroupEntry) Size() int {
	return len(g.Members)
}

// Ledger holds per-group running totals of granted bandwidth.
// Not thread-safe: all requests touching a group must be serialized.
type Ledger struct {
	groups map[int]*GroupEntry
	ids    []int // ascending group IDs
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{groups: make(map[int]*GroupEntry)}
}

// Reset rebuilds the ledger from the units' group IDs, seeding every running
// total with the sum of its members' current bandwidth.
// Every unit must already carry a group; a group must not mix classes.
func (l *Ledger) Reset(units []*Unit) error {
	groups := make(map[int]*GroupEntry)
	for _, u := range units {
		if u.GroupID == NoGroup {
			return fmt.Errorf("unit %d: %w", u.ID, ErrNoGroup)
		}
		g, ok := groups[u.GroupID]
		if !ok {
			g = &GroupEntry{ID: u.GroupID, Class: u.Type.Class()}
			groups[u.GroupID] = g
		}
		if g.Class != u.Type.Class() {
			return fmt.Errorf("group %d mixes %s and %s units", g.ID, g.Class, u.Type.Class())
		}
		g.Members = append(g.Members, u.ID)
		g.Total += u.Bandwidth
	}
	ids := make([]int, 0, len(groups))
	for id, g := range groups {
		sort.Ints(g.Members)
		ids = append(ids, id)
	}
	sort.Ints(ids)
	l.groups = groups
	l.ids = ids
	return nil
}

// Group returns the entry for a group ID.
func (l *Ledger) Group(id int) (*GroupEntry, bool) {
	g, ok := l.groups[id]
	return g, ok
}

// Total returns the running total for a group, or 0 if it is unknown.
func (l *Ledger) Total(id int) float64 {
	if g, ok := l.groups[id]; ok {
		return g.Total
	}
	return 0
}

// Add adjusts a group's running total by delta.
func (l *Ledger) Add(id int, delta float64) {
	l.mustGroup(id).Total += delta
}

// Set overwrites a group's running total.
func (l *Ledger) Set(id int, total float64) {
	l.mustGroup(id).Total = total
}

// Groups returns all entries in ascending group ID order.
func (l *Ledger) Groups() []*GroupEntry {
	out := make([]*GroupEntry, 0, len(l.ids))
	for _, id := range l.ids {
		out = append(out, l.groups[id])
	}
	return out
}

// Len returns the number of groups.
func (l *Ledger) Len() int {
	return len(l.ids)
}

func (l *Ledger) mustGroup(id int) *GroupEntry {
	g, ok := l.groups[id]
	if !ok {
		panic(fmt.Sprintf("ledger: unknown group %d", id))
	}
	return g
}
