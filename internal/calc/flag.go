package calc

// ShouldFlag reports whether a trade needs review: the planned RR is below
// MinRiskReward, the stop was moved, or the rules were not followed.
func ShouldFlag(rr float64, slMoved, followedRules bool) bool {
	return rr < MinRiskReward || slMoved || !followedRules
}
