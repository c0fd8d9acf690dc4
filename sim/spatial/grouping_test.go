package spatial

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spectrum-sim/spectrum-sim/sim"
)

func unitAt(id int, t sim.UnitType, x, y float64) *sim.Unit {
	return sim.NewUnit(id, sim.Position{X: x, Y: y}, t, 0)
}

func testGrouper() *Grouper {
	return &Grouper{HotspotThreshold: 10, CellularThreshold: 25}
}

func TestComputeGroups_TransitiveChain_FormsOneGroup(t *testing.T) {
	// GIVEN hotspots in a line, 8 apart: each within 10 of the next, but
	// the ends 24 apart
	units := []*sim.Unit{
		unitAt(0, sim.Hotspot, 0, 0),
		unitAt(1, sim.Hotspot, 8, 0),
		unitAt(2, sim.Hotspot, 16, 0),
		unitAt(3, sim.Hotspot, 24, 0),
	}

	// WHEN groups are computed
	groups := testGrouper().ComputeGroups(units)

	// THEN all four share a group
	for _, u := range units {
		assert.Equal(t, groups[0], groups[u.ID], "unit %d", u.ID)
	}
}

func TestComputeGroups_TypesNeverMix(t *testing.T) {
	// GIVEN a hotspot and base station on the same spot
	units := []*sim.Unit{
		unitAt(0, sim.Hotspot, 5, 5),
		unitAt(1, sim.BaseStation, 5, 5),
	}

	groups := testGrouper().ComputeGroups(units)

	// THEN they are in different groups, base stations numbered first
	assert.Equal(t, 0, groups[1])
	assert.Equal(t, 1, groups[0])
}

func TestComputeGroups_PerTypeThresholds(t *testing.T) {
	// GIVEN pairs 20 apart: within D_c but beyond D_w
	units := []*sim.Unit{
		unitAt(0, sim.Hotspot, 0, 0),
		unitAt(1, sim.Hotspot, 20, 0),
		unitAt(2, sim.BaseStation, 0, 100),
		unitAt(3, sim.BaseStation, 20, 100),
	}

	groups := testGrouper().ComputeGroups(units)

	assert.NotEqual(t, groups[0], groups[1], "hotspots 20 apart must not interfere")
	assert.Equal(t, groups[2], groups[3], "base stations 20 apart must interfere")
}

func TestComputeGroups_IsolatedUnits_AreSingletons(t *testing.T) {
	units := []*sim.Unit{
		unitAt(0, sim.Hotspot, 0, 0),
		unitAt(1, sim.Hotspot, 500, 500),
		unitAt(2, sim.Hotspot, 1000, 0),
	}

	groups := testGrouper().ComputeGroups(units)

	assert.Equal(t, map[int]int{0: 0, 1: 1, 2: 2}, groups)
}

func TestComputeGroups_DenseIDsInOrderOfLowestMember(t *testing.T) {
	// GIVEN two hotspot clusters whose lowest IDs are 1 and 2
	units := []*sim.Unit{
		unitAt(4, sim.Hotspot, 0, 0),
		unitAt(2, sim.Hotspot, 100, 0),
		unitAt(1, sim.Hotspot, 5, 0),
		unitAt(3, sim.Hotspot, 104, 0),
	}

	groups := testGrouper().ComputeGroups(units)

	assert.Equal(t, map[int]int{1: 0, 4: 0, 2: 1, 3: 1}, groups)
}

func TestComputeGroups_RandomCity_IsPartitionOfConnectedComponents(t *testing.T) {
	// GIVEN a random mix of units
	rng := rand.New(rand.NewSource(11))
	var units []*sim.Unit
	for i := 0; i < 200; i++ {
		typ := sim.Hotspot
		if i%3 == 0 {
			typ = sim.BaseStation
		}
		units = append(units, unitAt(i, typ, float64(rng.Intn(300)), float64(rng.Intn(300))))
	}
	g := testGrouper()

	// WHEN groups are computed
	groups := g.ComputeGroups(units)

	// THEN every unit has a group, adjacent same-type units share one,
	// and groups never mix types
	require.Len(t, groups, len(units))
	typeOf := make(map[int]sim.UnitType)
	for _, u := range units {
		if prev, ok := typeOf[groups[u.ID]]; ok {
			assert.Equal(t, prev, u.Type, "group %d mixes types", groups[u.ID])
		}
		typeOf[groups[u.ID]] = u.Type
	}
	for _, a := range units {
		for _, b := range units {
			if a.Type != b.Type {
				continue
			}
			dx, dy := a.Position.X-b.Position.X, a.Position.Y-b.Position.Y
			r := g.Threshold(a.Type)
			if dx*dx+dy*dy <= r*r {
				assert.Equal(t, groups[a.ID], groups[b.ID], "units %d and %d are within %.0f", a.ID, b.ID, r)
			}
		}
	}
	for gid := 0; gid < len(typeOf); gid++ {
		_, ok := typeOf[gid]
		assert.True(t, ok, "group IDs must be dense, missing %d", gid)
	}
}

func TestNeighbors_ExcludesSelf(t *testing.T) {
	units := []*sim.Unit{
		unitAt(0, sim.Hotspot, 0, 0),
		unitAt(1, sim.Hotspot, 3, 0),
		unitAt(2, sim.BaseStation, 1, 0),
	}

	n := testGrouper().Neighbors(units)

	assert.Equal(t, []int{1}, n[0])
	assert.Equal(t, []int{0}, n[1])
	assert.Empty(t, n[2])
}

func TestNewGrouper_ReadsConfigThresholds(t *testing.T) {
	cfg := sim.DefaultConfig()
	cfg.HotspotThreshold = 12

	g := NewGrouper(cfg)

	assert.Equal(t, 12.0, g.Threshold(sim.Hotspot))
	assert.Equal(t, cfg.CellularThreshold, g.Threshold(sim.BaseStation))
}
