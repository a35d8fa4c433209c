package insight

// priorityFor bands the urgency/impact blend into the 1-5 priority scale.
// The blend shows up again inside OverallScore through the priority/5 term;
// that double weighting is intentional and pinned by tests.
func priorityFor(urgency, impact float64) int {
	blend := urgency*0.6 + impact*0.4
	switch {
	case blend >= 0.8:
		return 5
	case blend >= 0.6:
		return 4
	case blend >= 0.4:
		return 3
	case blend >= 0.2:
		return 2
	default:
		return 1
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
