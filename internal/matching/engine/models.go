// internal/matching/engine/models.go
package engine

import (
	"talent-matching/internal/matching/scoring"
	"talent-matching/internal/models"
	"talent-matching/internal/store"
)

// Query describes one recommendation request. TargetKind names the side the
// target entity sits on; the pool is always drawn from the counterpart side.
type Query struct {
	TargetID   string            `json:"targetId"`
	TargetKind models.EntityKind `json:"targetKind"`
	Filter     models.FilterKind `json:"filter"`
	MinScore   int               `json:"minScore"`
	Page       int               `json:"page"`
	PageSize   int               `json:"pageSize"`
	Fresh      bool              `json:"fresh"`

	// Criteria narrows the counterpart pool fetch. The engine owns the
	// fetch limit; a caller-supplied Limit is ignored.
	Criteria store.Criteria `json:"-"`
}

// Match pairs a counterpart entity with its score against the target.
type Match struct {
	CounterpartID string             `json:"counterpartId"`
	Score         scoring.MatchScore `json:"score"`
}

// Diagnostic records a pool member that could not be scored. A single bad
// record never fails the whole query.
type Diagnostic struct {
	CounterpartID string `json:"counterpartId"`
	Code          string `json:"code"`
	Message       string `json:"message"`
}

// Result is one page of ranked matches. Total counts all matches that
// cleared the minimum-score threshold, before pagination.
type Result struct {
	Matches     []Match      `json:"matches"`
	Total       int          `json:"total"`
	Page        int          `json:"page"`
	PageSize    int          `json:"pageSize"`
	Diagnostics []Diagnostic `json:"diagnostics,omitempty"`
}
