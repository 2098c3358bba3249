// internal/matching/stats/aggregator.go

// Package stats reduces sets of match scores into platform-wide summaries.
package stats

import (
	"sort"

	"talent-matching/internal/matching/scoring"
)

// Summary aggregates a result set. It is derived on demand and never
// persisted.
type Summary struct {
	TotalEvaluated int                  `json:"totalEvaluated"`
	TierCounts     map[scoring.Tier]int `json:"tierCounts"`
	MeanScore      float64              `json:"meanScore"`
	TopMatches     []scoring.MatchScore `json:"topMatches"`
}

// Aggregator is a pure reduction over match scores. Safe for concurrent use.
type Aggregator struct {
	topN int
}

func NewAggregator(topN int) *Aggregator {
	if topN <= 0 {
		topN = 10
	}
	return &Aggregator{topN: topN}
}

// Summarize computes tier counts, mean score and the top-N scores in a single
// pass over the input. The output does not depend on input order; top-N ties
// break on candidate id, then job id. An empty input yields a mean of 0.
func (a *Aggregator) Summarize(scores []scoring.MatchScore) Summary {
	summary := Summary{
		TotalEvaluated: len(scores),
		TierCounts: map[scoring.Tier]int{
			scoring.TierExcellent:      0,
			scoring.TierGood:           0,
			scoring.TierNormal:         0,
			scoring.TierNeedsAttention: 0,
		},
	}

	total := 0
	ranked := make([]scoring.MatchScore, 0, len(scores))
	for _, s := range scores {
		summary.TierCounts[s.Tier]++
		total += s.Score
		ranked = append(ranked, s)
	}

	if len(scores) > 0 {
		summary.MeanScore = float64(total) / float64(len(scores))
	}

	sort.Slice(ranked, func(i, j int) bool { return scoreLess(ranked[j], ranked[i]) })
	if len(ranked) > a.topN {
		ranked = ranked[:a.topN]
	}
	summary.TopMatches = ranked
	return summary
}

// scoreLess orders ascending by score with id tie-breaks, so its inverse gives
// the descending ranking used for top-N.
func scoreLess(a, b scoring.MatchScore) bool {
	if a.Score != b.Score {
		return a.Score < b.Score
	}
	if a.CandidateID != b.CandidateID {
		return a.CandidateID > b.CandidateID
	}
	return a.JobID > b.JobID
}
