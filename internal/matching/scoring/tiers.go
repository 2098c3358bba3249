// internal/matching/scoring/tiers.go
package scoring

// Tier is the discrete quality bucket derived from a match score.
type Tier string

const (
	TierExcellent      Tier = "EXCELLENT"
	TierGood           Tier = "GOOD"
	TierNormal         Tier = "NORMAL"
	TierNeedsAttention Tier = "NEEDS_ATTENTION"
)

// Fixed classification thresholds. These are constants of the classifier,
// not per-request configuration.
const (
	thresholdExcellent = 90
	thresholdGood      = 80
	thresholdNormal    = 70
)

// ClassifyScore maps a score to its tier. Total over all integers; every
// score maps to exactly one tier.
func ClassifyScore(score int) Tier {
	switch {
	case score >= thresholdExcellent:
		return TierExcellent
	case score >= thresholdGood:
		return TierGood
	case score >= thresholdNormal:
		return TierNormal
	default:
		return TierNeedsAttention
	}
}
