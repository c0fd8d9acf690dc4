// Package trace provides allocation decision-trace recording.
// This package has no dependencies on sim/ or sim/driver/; it stores pure data types.
package trace

// AllocationRecord captures a single resolved spectrum request.
type AllocationRecord struct {
	Year, Day, Slot int
	UnitID          int
	GroupID         int
	Class           string
	Outcome         string  // "grant", "shrink" or "full"
	Requested       float64
	Granted         float64 // requesting unit's bandwidth after the decision
	Capacity        float64 // class capacity at decision time
	TotalAfter      float64 // group ledger total after the decision
	Factor          float64 // group scale factor; 1 unless shrunk
	Congested       bool
}

// RebalanceRecord captures a group scaled down after a band re-partition.
type RebalanceRecord struct {
	Year, Day, Slot int
	Groups          int // number of groups scaled
}
