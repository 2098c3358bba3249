// internal/store/store.go

// Package store provides read-only access to candidate and job records.
// The engine treats every fetch as a snapshot for the duration of one call;
// nothing here retries or mutates entity data.
package store

import (
	"context"

	"talent-matching/internal/models"
)

// Criteria narrows a pool fetch. Zero values mean no filtering on that
// dimension. Location matching is case-insensitive; the stores normalize the
// value before comparing. Limit bounds the number of rows returned; callers
// that need to detect an oversized pool pass their cap plus one.
type Criteria struct {
	Skills     []string
	Location   string
	RemoteOnly bool
	Limit      int
}

// PoolStore is the engine's view of the persistence layer.
type PoolStore interface {
	GetCandidate(ctx context.Context, id string) (*models.Candidate, error)
	GetJob(ctx context.Context, id string) (*models.Job, error)
	ListCandidates(ctx context.Context, c Criteria) ([]models.Candidate, error)
	ListJobs(ctx context.Context, c Criteria) ([]models.Job, error)
}
