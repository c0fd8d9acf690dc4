package sim

import (
	"math"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spectrum-sim/spectrum-sim/sim/internal/testutil"
)

func TestAllocate_FitsCapacity_GrantsAdditively(t *testing.T) {
	// GIVEN a two-hotspot group with 100 already granted and capacity 1000
	a := groupedUnit(1, Hotspot, 0, 100)
	b := groupedUnit(2, Hotspot, 0, 0)
	s := newTestState(t, 1000, 0, a, b)

	// WHEN unit 2 requests 300
	d, err := Allocate(s, Request{UnitID: 2, Bandwidth: 300})

	// THEN the request is added on top and the ledger follows
	require.NoError(t, err)
	assert.Equal(t, OutcomeGrant, d.Outcome)
	assert.Equal(t, 300.0, b.Bandwidth)
	assert.Equal(t, 100.0, a.Bandwidth, "other members are untouched on grant")
	assert.Equal(t, 400.0, s.Ledger.Total(0))
	assert.Equal(t, 1.0, d.Factor)
	assert.Equal(t, 100.0, d.TotalBefore)
	assert.Equal(t, 400.0, d.TotalAfter)
}

func TestAllocate_ExactlyAtCapacity_IsGrant(t *testing.T) {
	// GIVEN a group holding 600 of 1000
	a := groupedUnit(1, Hotspot, 0, 600)
	b := groupedUnit(2, Hotspot, 0, 0)
	s := newTestState(t, 1000, 0, a, b)

	// WHEN a request brings the total to exactly the capacity
	d, err := Allocate(s, Request{UnitID: 2, Bandwidth: 400})

	// THEN it is granted without scaling
	require.NoError(t, err)
	assert.Equal(t, OutcomeGrant, d.Outcome)
	assert.Equal(t, 600.0, a.Bandwidth)
	assert.Equal(t, 1000.0, s.Ledger.Total(0))
}

func TestAllocate_ThreeEqualRequests_ShrinkToEqualShares(t *testing.T) {
	// GIVEN three hotspots in one group with capacity 1000 and nothing granted
	units := []*Unit{
		groupedUnit(1, Hotspot, 0, 0),
		groupedUnit(2, Hotspot, 0, 0),
		groupedUnit(3, Hotspot, 0, 0),
	}
	s := newTestState(t, 1000, 0, units...)

	// WHEN each requests 400 in turn
	var outcomes []Outcome
	for _, u := range units {
		d, err := Allocate(s, Request{UnitID: u.ID, Bandwidth: 400})
		require.NoError(t, err)
		outcomes = append(outcomes, d.Outcome)
	}

	// THEN the first two are granted and the third shrinks everyone to 1000/3
	assert.Equal(t, []Outcome{OutcomeGrant, OutcomeGrant, OutcomeShrink}, outcomes)
	for _, u := range units {
		assert.InDelta(t, 1000.0/3, u.Bandwidth, 1e-9, "unit %d", u.ID)
	}
	testutil.AssertFloat64Equal(t, "group sum", 1000, s.GroupBandwidth(0), 1e-12)
	assert.Equal(t, 1000.0, s.Ledger.Total(0))
}

func TestAllocate_Shrink_FactorAndRequesterShare(t *testing.T) {
	// GIVEN a group at 800 of 1000 where the requester already holds 200
	a := groupedUnit(1, Hotspot, 0, 600)
	b := groupedUnit(2, Hotspot, 0, 200)
	s := newTestState(t, 1000, 0, a, b)

	// WHEN unit 2 requests 450 more
	d, err := Allocate(s, Request{UnitID: 2, Bandwidth: 450})

	// THEN f = C/(T+r) and the requester receives (b+r)·f
	require.NoError(t, err)
	f := 1000.0 / 1250.0
	assert.Equal(t, OutcomeShrink, d.Outcome)
	assert.InDelta(t, f, d.Factor, 1e-12)
	assert.InDelta(t, 600*f, a.Bandwidth, 1e-9)
	assert.InDelta(t, 650*f, b.Bandwidth, 1e-9)
	assert.InDelta(t, 650*f, d.Granted, 1e-9)
	assert.InDelta(t, 1000.0, s.GroupBandwidth(0), 1e-9)
	assert.Equal(t, 1000.0, d.TotalAfter)
}

func TestAllocate_ThreeEqualRequests_ReversedOrder(t *testing.T) {
	// GIVEN the same group, with requests arriving unit3, unit2, unit1
	units := []*Unit{
		groupedUnit(1, Hotspot, 0, 0),
		groupedUnit(2, Hotspot, 0, 0),
		groupedUnit(3, Hotspot, 0, 0),
	}
	s := newTestState(t, 1000, 0, units...)

	decisions := make(map[int]Decision)
	for _, id := range []int{3, 2, 1} {
		d, err := Allocate(s, Request{UnitID: id, Bandwidth: 400})
		require.NoError(t, err)
		decisions[id] = d
	}

	// THEN unit3 is granted its 400 in full and unit1 is the one shrunk
	assert.Equal(t, OutcomeGrant, decisions[3].Outcome)
	assert.Equal(t, 400.0, decisions[3].Granted)
	assert.Equal(t, OutcomeShrink, decisions[1].Outcome)
	assert.InDelta(t, 400*1000.0/1200, decisions[1].Granted, 1e-9)
	// Proportional scaling of equal requests lands on the same final split.
	if diff := cmp.Diff([]float64{1000.0 / 3, 1000.0 / 3, 1000.0 / 3}, bandwidths(s.Units), cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("final bandwidths (-want +got):\n%s", diff)
	}
}

func TestAllocate_DrainOrder_ChangesFinalShares(t *testing.T) {
	// GIVEN the same group and requests drained in two different orders
	requests := []Request{{UnitID: 1, Bandwidth: 50}, {UnitID: 2, Bandwidth: 80}, {UnitID: 3, Bandwidth: 10}}
	run := func(order []int) []float64 {
		units := []*Unit{
			groupedUnit(1, Hotspot, 0, 0),
			groupedUnit(2, Hotspot, 0, 0),
			groupedUnit(3, Hotspot, 0, 0),
		}
		s := newTestState(t, 100, 0, units...)
		for _, i := range order {
			_, err := Allocate(s, requests[i])
			require.NoError(t, err)
		}
		return bandwidths(s.Units)
	}

	// WHEN drained as (1,2,3) and as (3,1,2)
	first := run([]int{0, 1, 2})
	second := run([]int{2, 0, 1})

	// THEN both respect the capacity but the shares differ
	testutil.AssertSumAtMost(t, "first order", first, 100, 1e-9)
	testutil.AssertSumAtMost(t, "second order", second, 100, 1e-9)
	assert.InDelta(t, 50*100.0/130*100.0/110, first[0], 1e-9)
	assert.InDelta(t, 50*100.0/140, second[0], 1e-9)
	assert.NotEqual(t, first, second)
}

func TestAllocate_SingletonGroup_ReceivesFullClassCapacity(t *testing.T) {
	// GIVEN a base station alone in its group and a cellular capacity of 350
	bs := groupedUnit(7, BaseStation, 3, 0)
	s := newTestState(t, 350, 350, bs)

	// WHEN it requests a small amount
	d, err := Allocate(s, Request{UnitID: 7, Bandwidth: 5})

	// THEN it is handed the whole class capacity
	require.NoError(t, err)
	assert.Equal(t, OutcomeFull, d.Outcome)
	assert.Equal(t, 350.0, bs.Bandwidth)
	assert.Equal(t, 350.0, s.Ledger.Total(3))
	assert.Equal(t, ClassCellular, d.Class)
}

func TestAllocate_InvalidRequest_RejectedWithoutSideEffects(t *testing.T) {
	tests := []struct {
		name string
		bw   float64
	}{
		{"zero", 0},
		{"negative", -10},
		{"NaN", math.NaN()},
		{"infinite", math.Inf(1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// GIVEN a group with 100 granted
			a := groupedUnit(1, Hotspot, 0, 100)
			b := groupedUnit(2, Hotspot, 0, 0)
			s := newTestState(t, 1000, 0, a, b)

			// WHEN an invalid amount is requested
			_, err := Allocate(s, Request{UnitID: 2, Bandwidth: tt.bw})

			// THEN the request is rejected and nothing moved
			assert.ErrorIs(t, err, ErrNonPositiveRequest)
			assert.Equal(t, 100.0, s.Ledger.Total(0))
			assert.Equal(t, []float64{100, 0}, bandwidths(s.Units))
		})
	}
}

func TestAllocate_UnknownUnit_ReturnsError(t *testing.T) {
	s := newTestState(t, 100, 0, groupedUnit(1, Hotspot, 0, 0))

	_, err := Allocate(s, Request{UnitID: 99, Bandwidth: 1})

	assert.ErrorIs(t, err, ErrUnknownUnit)
}

func TestAllocate_UngroupedUnit_ReturnsError(t *testing.T) {
	// GIVEN a state whose groups were never assigned
	s, err := NewState([]*Unit{NewUnit(1, Position{}, Hotspot, 0)}, NewStaticPartitioner(100, 50), testEfficiency)
	require.NoError(t, err)

	// WHEN the unit requests bandwidth
	_, err = Allocate(s, Request{UnitID: 1, Bandwidth: 1})

	// THEN the allocator refuses
	assert.ErrorIs(t, err, ErrNoGroup)
}

func TestAllocate_Shrink_RecomputesCongestionForBystanders(t *testing.T) {
	// GIVEN unit 1 carrying its demand exactly and unit 2 asking for a lot
	a := groupedUnit(1, Hotspot, 0, 50)
	a.Demand = 100
	a.UpdateCongestion(testEfficiency)
	require.False(t, a.Congested)
	b := groupedUnit(2, Hotspot, 0, 0)
	s := newTestState(t, 100, 0, a, b)

	// WHEN unit 2's request forces a shrink
	_, err := Allocate(s, Request{UnitID: 2, Bandwidth: 100})
	require.NoError(t, err)

	// THEN unit 1 lost bandwidth and is now congested
	assert.InDelta(t, 50*100.0/150, a.Bandwidth, 1e-9)
	assert.True(t, a.Congested)
}

func TestAllocate_Grant_ClearsCongestion(t *testing.T) {
	// GIVEN a congested unit with demand 100 and no bandwidth
	a := groupedUnit(1, Hotspot, 0, 0)
	a.Demand = 100
	a.UpdateCongestion(testEfficiency)
	require.True(t, a.Congested)
	s := newTestState(t, 1000, 0, a, groupedUnit(2, Hotspot, 0, 0))

	// WHEN it is granted exactly the bandwidth it needs
	d, err := Allocate(s, Request{UnitID: 1, Bandwidth: a.RequiredBandwidth(testEfficiency)})

	// THEN it is no longer congested
	require.NoError(t, err)
	assert.False(t, d.Congested)
	assert.False(t, a.Congested)
}

func TestAllocate_RandomRequests_NeverExceedCapacity(t *testing.T) {
	// GIVEN two hotspot groups and one base-station group
	var units []*Unit
	for id := 0; id < 12; id++ {
		switch {
		case id < 5:
			units = append(units, groupedUnit(id, Hotspot, 0, 0))
		case id < 9:
			units = append(units, groupedUnit(id, Hotspot, 1, 0))
		default:
			units = append(units, groupedUnit(id, BaseStation, 2, 0))
		}
	}
	s := newTestState(t, 420, 280, units...)
	rng := rand.New(rand.NewSource(7))

	// WHEN hundreds of random requests are resolved
	for i := 0; i < 500; i++ {
		r := Request{UnitID: rng.Intn(len(units)), Bandwidth: 1 + rng.Float64()*200}
		_, err := Allocate(s, r)
		require.NoError(t, err)

		// THEN every group stays within capacity and the ledger matches the units
		for _, g := range s.Ledger.Groups() {
			c := s.Capacity(g.ID)
			testutil.AssertSumAtMost(t, "group bandwidth", bandwidths(s.Members(g.ID)), c, 1e-6)
			assert.InDelta(t, s.GroupBandwidth(g.ID), g.Total, 1e-6, "ledger drift in group %d", g.ID)
		}
		for _, u := range units {
			require.GreaterOrEqual(t, u.Bandwidth, 0.0)
		}
	}
}
