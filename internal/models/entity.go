// internal/models/entity.go
package models

import "fmt"

// EntityKind identifies which side of a match an entity sits on.
type EntityKind string

const (
	KindCandidate EntityKind = "candidate"
	KindJob       EntityKind = "job"
)

// Counterpart returns the opposite kind.
func (k EntityKind) Counterpart() EntityKind {
	if k == KindCandidate {
		return KindJob
	}
	return KindCandidate
}

// Valid reports whether k is a known entity kind.
func (k EntityKind) Valid() bool {
	return k == KindCandidate || k == KindJob
}

// ParseEntityKind converts a request parameter into an EntityKind.
func ParseEntityKind(s string) (EntityKind, error) {
	switch EntityKind(s) {
	case KindCandidate:
		return KindCandidate, nil
	case KindJob:
		return KindJob, nil
	default:
		return "", fmt.Errorf("unknown entity kind: %q", s)
	}
}

// FilterKind narrows combined recommendation views.
type FilterKind string

const (
	FilterAll        FilterKind = "all"
	FilterCandidates FilterKind = "candidates"
	FilterJobs       FilterKind = "jobs"
)

// ParseFilterKind converts a request parameter into a FilterKind,
// defaulting to FilterAll for an empty value.
func ParseFilterKind(s string) (FilterKind, error) {
	switch FilterKind(s) {
	case "":
		return FilterAll, nil
	case FilterAll, FilterCandidates, FilterJobs:
		return FilterKind(s), nil
	default:
		return "", fmt.Errorf("unknown filter kind: %q", s)
	}
}
