// internal/matching/scoring/calculator.go

// Package scoring computes pairwise candidate-job compatibility scores and
// classifies them into quality tiers.
package scoring

import (
	"math"

	"talent-matching/internal/common/config"
	"talent-matching/internal/matching/profile"
)

// Breakdown carries the per-dimension sub-scores, each in [0,100].
type Breakdown struct {
	SkillOverlap    int `json:"skillOverlap"`
	ExperienceFit   int `json:"experienceFit"`
	CompensationFit int `json:"compensationFit"`
	LocationFit     int `json:"locationFit"`
}

// MatchScore is the immutable result of scoring one candidate against one
// job. The tier is derived from the score at construction and never diverges
// from it.
type MatchScore struct {
	CandidateID string    `json:"candidateId"`
	JobID       string    `json:"jobId"`
	Score       int       `json:"score"`
	Breakdown   Breakdown `json:"breakdown"`
	Tier        Tier      `json:"tier"`
}

// Calculator is a pure scoring function over normalized profiles. It holds
// only immutable configuration and is safe for concurrent use.
type Calculator struct {
	weights                  config.WeightsConfig
	experiencePenaltyPerTier int
	neutralScore             int
	locationMismatchScore    int
}

func NewCalculator(cfg config.MatchingConfig) *Calculator {
	return &Calculator{
		weights:                  cfg.Weights,
		experiencePenaltyPerTier: cfg.Scoring.ExperiencePenaltyPerTier,
		neutralScore:             cfg.Scoring.NeutralScore,
		locationMismatchScore:    cfg.Scoring.LocationMismatchScore,
	}
}

// Score computes the weighted composite score for a candidate-job pair.
// Deterministic: identical profiles always produce an identical MatchScore.
func (c *Calculator) Score(candidate, job profile.AttributeProfile) MatchScore {
	breakdown := Breakdown{
		SkillOverlap:    c.skillOverlap(candidate, job),
		ExperienceFit:   c.experienceFit(candidate, job),
		CompensationFit: c.compensationFit(candidate, job),
		LocationFit:     c.locationFit(candidate, job),
	}

	composite := float64(breakdown.SkillOverlap)*c.weights.Skills +
		float64(breakdown.ExperienceFit)*c.weights.Experience +
		float64(breakdown.CompensationFit)*c.weights.Compensation +
		float64(breakdown.LocationFit)*c.weights.Location

	score := clampScore(int(math.Round(composite)))

	return MatchScore{
		CandidateID: candidate.EntityID,
		JobID:       job.EntityID,
		Score:       score,
		Breakdown:   breakdown,
		Tier:        ClassifyScore(score),
	}
}

// skillOverlap scores the share of the job's required skills the candidate
// covers. A job with no required skills is a full match on this dimension.
func (c *Calculator) skillOverlap(candidate, job profile.AttributeProfile) int {
	if len(job.Skills) == 0 {
		return 100
	}

	matched := 0
	for _, required := range job.Skills {
		if candidate.HasSkill(required) {
			matched++
		}
	}

	return clampScore(int(math.Round(float64(matched) / float64(len(job.Skills)) * 100)))
}

// experienceFit is distance-based on the seniority scale: an exact tier
// match scores 100 and each tier of difference subtracts a fixed penalty.
// Unknown experience on either side scores neutral.
func (c *Calculator) experienceFit(candidate, job profile.AttributeProfile) int {
	candRank, candOK := candidate.Experience.Rank()
	jobRank, jobOK := job.Experience.Rank()
	if !candOK || !jobOK {
		return c.neutralScore
	}

	distance := candRank - jobRank
	if distance < 0 {
		distance = -distance
	}

	return clampScore(100 - distance*c.experiencePenaltyPerTier)
}

// compensationFit scores 100 on range overlap or when either side is unknown
// (including incomparable currencies); otherwise the gap between the ranges
// is penalized proportionally to their combined width.
func (c *Calculator) compensationFit(candidate, job profile.AttributeProfile) int {
	cs, js := candidate.Salary, job.Salary
	if cs == nil || js == nil {
		return 100
	}
	if cs.Currency != "" && js.Currency != "" && cs.Currency != js.Currency {
		return 100
	}

	if cs.Min <= js.Max && js.Min <= cs.Max {
		return 100
	}

	var gap int
	if cs.Min > js.Max {
		gap = cs.Min - js.Max
	} else {
		gap = js.Min - cs.Max
	}

	width := (cs.Max - cs.Min) + (js.Max - js.Min)
	if width <= 0 {
		return 0
	}

	penalty := int(math.Round(float64(gap) / float64(width) * 100))
	return clampScore(100 - penalty)
}

// locationFit scores 100 for remote-eligible jobs or matching locations, a
// fixed lower value for a mismatch, and neutral when unknown on either side.
func (c *Calculator) locationFit(candidate, job profile.AttributeProfile) int {
	if job.Remote {
		return 100
	}
	if candidate.Location == "" || job.Location == "" {
		return c.neutralScore
	}
	if candidate.Location == job.Location {
		return 100
	}
	return c.locationMismatchScore
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
