package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalDecisions  int
	AssignedCount   int
	DroppedCount    int
	CompletedCount  int
	AbandonedCount  int
	MeanWait        float64 // over assigned orders
	MaxWait         float64
	UniquePods      int
	PodDistribution map[int]int // pod ID → number of orders it served
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		PodDistribution: make(map[int]int),
	}
	if st == nil {
		return summary
	}

	summary.TotalDecisions = len(st.Assignments)
	totalWait := 0.0
	for _, a := range st.Assignments {
		if !a.Assigned {
			summary.DroppedCount++
			continue
		}
		summary.AssignedCount++
		summary.PodDistribution[a.PodID]++
		totalWait += a.Wait
		if a.Wait > summary.MaxWait {
			summary.MaxWait = a.Wait
		}
	}
	if summary.AssignedCount > 0 {
		summary.MeanWait = totalWait / float64(summary.AssignedCount)
	}

	for _, o := range st.Outcomes {
		if o.Completed {
			summary.CompletedCount++
		} else {
			summary.AbandonedCount++
		}
	}

	summary.UniquePods = len(summary.PodDistribution)

	return summary
}
