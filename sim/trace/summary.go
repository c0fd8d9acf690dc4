package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalDecisions   int
	Grants           int
	Shrinks          int
	FullGrants       int
	CongestedAfter   int // decisions that left the requesting unit congested
	MeanShrinkFactor float64
	MinShrinkFactor  float64
	GroupsRebalanced int
	ShrinksByGroup   map[int]int // group ID → number of shrink decisions
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		ShrinksByGroup: make(map[int]int),
	}
	if st == nil {
		return summary
	}

	summary.TotalDecisions = len(st.Allocations)
	totalFactor := 0.0
	for _, a := range st.Allocations {
		switch a.Outcome {
		case "grant":
			summary.Grants++
		case "shrink":
			summary.Shrinks++
			summary.ShrinksByGroup[a.GroupID]++
			totalFactor += a.Factor
			if summary.Shrinks == 1 || a.Factor < summary.MinShrinkFactor {
				summary.MinShrinkFactor = a.Factor
			}
		case "full":
			summary.FullGrants++
		}
		if a.Congested {
			summary.CongestedAfter++
		}
	}
	if summary.Shrinks > 0 {
		summary.MeanShrinkFactor = totalFactor / float64(summary.Shrinks)
	}

	for _, r := range st.Rebalances {
		summary.GroupsRebalanced += r.Groups
	}
	return summary
}
