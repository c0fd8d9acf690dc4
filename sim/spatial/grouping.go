// Package spatial partitions units into interference groups.
//
// Two units of the same type interfere when they are within that type's
// threshold distance; a group is a connected component of that relation, so
// two members may be farther apart than the threshold as long as a chain of
// within-threshold hops links them. Units of different types never share a
// group.
package spatial

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/spectrum-sim/spectrum-sim/sim"
)

// Grouper computes interference groups with per-type thresholds.
type Grouper struct {
	HotspotThreshold  float64 // D_w
	CellularThreshold float64 // D_c
}

// NewGrouper creates a Grouper from the config thresholds.
func NewGrouper(cfg sim.Config) *Grouper {
	return &Grouper{
		HotspotThreshold:  cfg.HotspotThreshold,
		CellularThreshold: cfg.CellularThreshold,
	}
}

// Threshold returns the adjacency distance for a unit type.
func (g *Grouper) Threshold(t sim.UnitType) float64 {
	if t == sim.Hotspot {
		return g.HotspotThreshold
	}
	return g.CellularThreshold
}

// ComputeGroups returns unit ID → group ID for every unit. Group IDs are
// dense from 0, base-station groups first, then hotspot groups; within a
// type they are numbered in order of each group's lowest unit ID.
// An isolated unit forms a group of its own.
func (g *Grouper) ComputeGroups(units []*sim.Unit) map[int]int {
	assignment := make(map[int]int, len(units))
	next := 0
	for _, t := range sim.UnitTypes {
		same := unitsOfType(units, t)
		if len(same) == 0 {
			continue
		}
		adj := g.adjacency(same, t)
		before := next
		next = components(same, adj, assignment, next)
		logrus.Debugf("grouped %d %s units into %d groups (threshold %.2f)",
			len(same), t, next-before, g.Threshold(t))
	}
	return assignment
}

// Neighbors returns the IDs of same-type units within threshold of each unit,
// excluding the unit itself.
func (g *Grouper) Neighbors(units []*sim.Unit) map[int][]int {
	out := make(map[int][]int, len(units))
	for _, t := range sim.UnitTypes {
		same := unitsOfType(units, t)
		for id, n := range g.adjacency(same, t) {
			out[id] = n
		}
	}
	return out
}

func (g *Grouper) adjacency(same []*sim.Unit, t sim.UnitType) map[int][]int {
	ix := NewIndex(same)
	radius := g.Threshold(t)
	adj := make(map[int][]int, len(same))
	for _, u := range same {
		hits := ix.Within(u.Position, radius)
		n := make([]int, 0, len(hits))
		for _, id := range hits {
			if id != u.ID {
				n = append(n, id)
			}
		}
		adj[u.ID] = n
	}
	return adj
}

// components runs a breadth-first traversal from every unvisited unit in
// ascending ID order, labelling each component with the next group ID.
// Returns the next unused group ID.
func components(same []*sim.Unit, adj map[int][]int, assignment map[int]int, next int) int {
	for _, u := range same {
		if _, seen := assignment[u.ID]; seen {
			continue
		}
		gid := next
		next++
		assignment[u.ID] = gid
		frontier := []int{u.ID}
		for len(frontier) > 0 {
			cur := frontier[0]
			frontier = frontier[1:]
			for _, nb := range adj[cur] {
				if _, seen := assignment[nb]; seen {
					continue
				}
				assignment[nb] = gid
				frontier = append(frontier, nb)
			}
		}
	}
	return next
}

func unitsOfType(units []*sim.Unit, t sim.UnitType) []*sim.Unit {
	out := make([]*sim.Unit, 0, len(units))
	for _, u := range units {
		if u.Type == t {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
