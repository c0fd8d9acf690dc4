package sim

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// testEfficiency is the spectral efficiency used by the engine tests.
const testEfficiency = 2

// groupedUnit returns a unit already assigned to group gid with bandwidth bw.
func groupedUnit(id int, t UnitType, gid int, bw float64) *Unit {
	u := NewUnit(id, Position{X: float64(id), Y: 0}, t, 0)
	u.GroupID = gid
	u.Bandwidth = bw
	return u
}

// newTestState builds a State whose hotspot class holds hotspotCap and whose
// cellular class holds cellularCap, with the ledger seeded from units.
func newTestState(t *testing.T, hotspotCap, cellularCap float64, units ...*Unit) *State {
	t.Helper()
	total := hotspotCap + cellularCap
	share := 0.0
	if total > 0 {
		share = 100 * hotspotCap / total
	}
	s, err := NewState(units, NewStaticPartitioner(total, share), testEfficiency)
	require.NoError(t, err)
	require.NoError(t, s.Ledger.Reset(s.Units))
	return s
}

func bandwidths(units []*Unit) []float64 {
	out := make([]float64, len(units))
	for i, u := range units {
		out[i] = u.Bandwidth
	}
	return out
}
