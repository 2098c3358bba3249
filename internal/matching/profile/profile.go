// internal/matching/profile/profile.go

// Package profile canonicalizes raw candidate and job records into a single
// comparable representation. Only this package branches on the source kind;
// the rest of the engine works on AttributeProfile alone.
package profile

import "talent-matching/internal/models"

// ExperienceTier is the canonical seniority scale.
type ExperienceTier string

const (
	TierUnknown ExperienceTier = ""
	TierEntry   ExperienceTier = "ENTRY"
	TierJunior  ExperienceTier = "JUNIOR"
	TierMiddle  ExperienceTier = "MIDDLE"
	TierSenior  ExperienceTier = "SENIOR"
	TierLead    ExperienceTier = "LEAD"
)

var tierRanks = map[ExperienceTier]int{
	TierEntry:  0,
	TierJunior: 1,
	TierMiddle: 2,
	TierSenior: 3,
	TierLead:   4,
}

// Rank returns the tier's position on the seniority scale; ok is false for
// an unknown tier.
func (t ExperienceTier) Rank() (int, bool) {
	rank, ok := tierRanks[t]
	return rank, ok
}

// SalaryRange is an optional compensation range.
type SalaryRange struct {
	Min      int
	Max      int
	Currency string
}

// AttributeProfile is the normalized view of either a candidate or a job.
// Immutable once constructed; missing optional fields are carried as their
// zero values and treated as unknown by the score calculator.
type AttributeProfile struct {
	EntityID   string
	Kind       models.EntityKind
	Skills     []string // trimmed, lower-cased, de-duplicated, sorted
	Experience ExperienceTier
	Salary     *SalaryRange // nil when unknown
	Location   string       // empty when unknown
	Remote     bool
}

// HasSkill reports whether the normalized skill token is present. The skills
// slice is sorted, but pools are small enough that a linear scan is fine.
func (p AttributeProfile) HasSkill(token string) bool {
	for _, s := range p.Skills {
		if s == token {
			return true
		}
	}
	return false
}
