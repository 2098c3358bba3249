// internal/matching/engine/engine.go

// Package engine orchestrates bulk scoring: it turns one target entity and a
// pool of counterparts into a ranked, filtered, paginated recommendation list.
package engine

import (
	"context"
	stderrors "errors"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"talent-matching/internal/common/config"
	"talent-matching/internal/common/errors"
	"talent-matching/internal/common/logger"
	"talent-matching/internal/common/metrics"
	"talent-matching/internal/matching/cache"
	"talent-matching/internal/matching/profile"
	"talent-matching/internal/matching/scoring"
	"talent-matching/internal/matching/stats"
	"talent-matching/internal/models"
	"talent-matching/internal/store"
)

// Engine wires the normalizer, calculator, cache and store into the
// recommend pipeline. It never mutates candidate or job records.
type Engine struct {
	store      store.PoolStore
	normalizer *profile.Normalizer
	calculator *scoring.Calculator
	cache      *cache.ResultCache
	aggregator *stats.Aggregator
	cfg        config.MatchingConfig
	logger     logger.Logger
}

func New(ps store.PoolStore, rc *cache.ResultCache, cfg config.MatchingConfig, log logger.Logger) *Engine {
	return &Engine{
		store:      ps,
		normalizer: profile.NewNormalizer(),
		calculator: scoring.NewCalculator(cfg),
		cache:      rc,
		aggregator: stats.NewAggregator(cfg.StatsTopN),
		cfg:        cfg,
		logger:     log.WithFields(map[string]interface{}{"component": "match-engine"}),
	}
}

// Recommend scores the counterpart pool against the query's target and
// returns one page of the ranked result. An empty pool yields an empty
// result, not an error.
func (e *Engine) Recommend(ctx context.Context, q Query) (*Result, error) {
	start := time.Now()

	q, err := e.validate(q)
	if err != nil {
		metrics.RecommendationsTotal.WithLabelValues(string(q.TargetKind), "invalid").Inc()
		return nil, err
	}

	scores, diags, err := e.scorePool(ctx, q)
	if err != nil {
		metrics.RecommendationsTotal.WithLabelValues(string(q.TargetKind), "error").Inc()
		return nil, err
	}

	matches := e.rank(q, scores)
	total := len(matches)

	startIdx := (q.Page - 1) * q.PageSize
	endIdx := startIdx + q.PageSize
	if startIdx > total {
		startIdx = total
	}
	if endIdx > total {
		endIdx = total
	}

	metrics.RecommendationsTotal.WithLabelValues(string(q.TargetKind), "success").Inc()
	metrics.RecommendationDuration.WithLabelValues(string(q.TargetKind)).Observe(time.Since(start).Seconds())

	e.logger.Debug("recommendation computed", map[string]interface{}{
		"targetId":   q.TargetID,
		"targetKind": q.TargetKind,
		"total":      total,
		"page":       q.Page,
		"durationMs": time.Since(start).Milliseconds(),
	})

	return &Result{
		Matches:     matches[startIdx:endIdx],
		Total:       total,
		Page:        q.Page,
		PageSize:    q.PageSize,
		Diagnostics: diags,
	}, nil
}

// Stats scores the whole filtered pool for the target and reduces it to a
// summary. The top-N tie-break matches the recommend ordering.
func (e *Engine) Stats(ctx context.Context, q Query) (*stats.Summary, error) {
	q, err := e.validate(q)
	if err != nil {
		return nil, err
	}

	scores, _, err := e.scorePool(ctx, q)
	if err != nil {
		return nil, err
	}

	filtered := make([]scoring.MatchScore, 0, len(scores))
	for _, s := range scores {
		if s.Score >= q.MinScore {
			filtered = append(filtered, s)
		}
	}

	summary := e.aggregator.Summarize(filtered)
	return &summary, nil
}

// InvalidateEntity drops cached scores involving the entity. Exposed for the
// profile-change notification endpoint.
func (e *Engine) InvalidateEntity(ctx context.Context, entityID string) int {
	return e.cache.Invalidate(ctx, entityID)
}

// CacheStats exposes the result cache counters for the stats surface.
func (e *Engine) CacheStats() cache.Stats {
	return e.cache.Stats()
}

func (e *Engine) validate(q Query) (Query, error) {
	if q.TargetID == "" {
		return q, errors.NewInvalidQueryError("id", "target entity id is required")
	}
	if !q.TargetKind.Valid() {
		return q, errors.NewInvalidQueryError("type", "target kind must be candidate or job")
	}
	if q.Filter == "" {
		q.Filter = models.FilterAll
	}

	if q.PageSize == 0 {
		q.PageSize = e.cfg.DefaultPageSize
	}
	if q.Page <= 0 || q.PageSize <= 0 || q.PageSize > e.cfg.MaxPageSize {
		return q, errors.NewInvalidPageError(q.Page, q.PageSize, e.cfg.MaxPageSize)
	}

	if q.MinScore < 0 {
		q.MinScore = 0
	}
	return q, nil
}

// filterAllows reports whether the query's filter admits the counterpart
// side. The filter narrows combined views; a filter naming the target's own
// side admits nothing.
func filterAllows(filter models.FilterKind, counterpart models.EntityKind) bool {
	switch filter {
	case models.FilterCandidates:
		return counterpart == models.KindCandidate
	case models.FilterJobs:
		return counterpart == models.KindJob
	default:
		return true
	}
}

// scorePool fetches the counterpart pool and scores every member against the
// target. Members that cannot be normalized become diagnostics; a deadline
// hit anywhere fails the whole call rather than returning a partial ranking.
func (e *Engine) scorePool(ctx context.Context, q Query) ([]scoring.MatchScore, []Diagnostic, error) {
	target, err := e.targetProfile(ctx, q)
	if err != nil {
		return nil, nil, err
	}

	counterpart := q.TargetKind.Counterpart()
	if !filterAllows(q.Filter, counterpart) {
		return nil, nil, nil
	}

	pool, err := e.fetchPool(ctx, counterpart, q.Criteria)
	if err != nil {
		return nil, nil, err
	}
	metrics.PoolSize.WithLabelValues(string(q.TargetKind)).Observe(float64(len(pool)))

	if len(pool) == 0 {
		return nil, nil, nil
	}
	if len(pool) > e.cfg.MaxPoolSize {
		return nil, nil, errors.NewPoolTooLargeError(len(pool), e.cfg.MaxPoolSize)
	}

	type slot struct {
		score scoring.MatchScore
		diag  *Diagnostic
		ok    bool
	}
	slots := make([]slot, len(pool))

	g, gctx := errgroup.WithContext(ctx)
	workers := e.cfg.Workers
	if workers > 0 {
		g.SetLimit(workers)
	}

	for i := range pool {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			member, err := pool[i].normalize(e.normalizer)
			if err != nil {
				slots[i] = slot{diag: &Diagnostic{
					CounterpartID: pool[i].id(),
					Code:          string(errors.ErrCodeInvalidProfile),
					Message:       err.Error(),
				}}
				return nil
			}

			candidate, job := orient(target, member)
			compute := func(context.Context) (scoring.MatchScore, error) {
				return e.calculator.Score(candidate, job), nil
			}

			var score scoring.MatchScore
			if q.Fresh {
				score, err = e.cache.Refresh(gctx, candidate.EntityID, job.EntityID, compute)
			} else {
				score, err = e.cache.GetOrCompute(gctx, candidate.EntityID, job.EntityID, compute)
			}
			if err != nil {
				return err
			}

			slots[i] = slot{score: score, ok: true}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) {
			return nil, nil, errors.NewMatchTimeoutError("scoring")
		}
		return nil, nil, err
	}
	if err := ctx.Err(); err != nil {
		if stderrors.Is(err, context.DeadlineExceeded) {
			return nil, nil, errors.NewMatchTimeoutError("scoring")
		}
		return nil, nil, err
	}

	scores := make([]scoring.MatchScore, 0, len(slots))
	var diags []Diagnostic
	for _, s := range slots {
		switch {
		case s.ok:
			scores = append(scores, s.score)
		case s.diag != nil:
			diags = append(diags, *s.diag)
		}
	}
	return scores, diags, nil
}

// rank applies the minimum-score filter and the total ordering: descending
// score, ties broken by ascending counterpart id.
func (e *Engine) rank(q Query, scores []scoring.MatchScore) []Match {
	matches := make([]Match, 0, len(scores))
	for _, s := range scores {
		if s.Score < q.MinScore {
			continue
		}
		matches = append(matches, Match{
			CounterpartID: counterpartID(q.TargetKind, s),
			Score:         s,
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score.Score != matches[j].Score.Score {
			return matches[i].Score.Score > matches[j].Score.Score
		}
		return matches[i].CounterpartID < matches[j].CounterpartID
	})
	return matches
}

func counterpartID(targetKind models.EntityKind, s scoring.MatchScore) string {
	if targetKind == models.KindCandidate {
		return s.JobID
	}
	return s.CandidateID
}

// orient returns the pair in (candidate, job) order regardless of which side
// the target sits on.
func orient(target, member profile.AttributeProfile) (candidate, job profile.AttributeProfile) {
	if target.Kind == models.KindCandidate {
		return target, member
	}
	return member, target
}

func (e *Engine) targetProfile(ctx context.Context, q Query) (profile.AttributeProfile, error) {
	switch q.TargetKind {
	case models.KindCandidate:
		c, err := e.store.GetCandidate(ctx, q.TargetID)
		if err != nil {
			return profile.AttributeProfile{}, e.wrapFetchErr(err)
		}
		return e.normalizer.FromCandidate(*c)
	default:
		j, err := e.store.GetJob(ctx, q.TargetID)
		if err != nil {
			return profile.AttributeProfile{}, e.wrapFetchErr(err)
		}
		return e.normalizer.FromJob(*j)
	}
}

// poolMember defers normalization so it can run inside the worker pool.
type poolMember struct {
	candidate *models.Candidate
	job       *models.Job
}

func (m poolMember) id() string {
	if m.candidate != nil {
		return m.candidate.ID
	}
	return m.job.ID
}

func (m poolMember) normalize(n *profile.Normalizer) (profile.AttributeProfile, error) {
	if m.candidate != nil {
		return n.FromCandidate(*m.candidate)
	}
	return n.FromJob(*m.job)
}

func (e *Engine) fetchPool(ctx context.Context, kind models.EntityKind, criteria store.Criteria) ([]poolMember, error) {
	// One past the cap so an oversized pool is detectable without an
	// unbounded scan.
	criteria.Limit = e.cfg.MaxPoolSize + 1

	if kind == models.KindCandidate {
		candidates, err := e.store.ListCandidates(ctx, criteria)
		if err != nil {
			return nil, e.wrapFetchErr(err)
		}
		pool := make([]poolMember, len(candidates))
		for i := range candidates {
			pool[i] = poolMember{candidate: &candidates[i]}
		}
		return pool, nil
	}

	jobs, err := e.store.ListJobs(ctx, criteria)
	if err != nil {
		return nil, e.wrapFetchErr(err)
	}
	pool := make([]poolMember, len(jobs))
	for i := range jobs {
		pool[i] = poolMember{job: &jobs[i]}
	}
	return pool, nil
}

// wrapFetchErr maps deadline hits to the timeout code and surfaces store
// failures as-is; retry policy belongs to the store, not the engine.
func (e *Engine) wrapFetchErr(err error) error {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.NewMatchTimeoutError("pool-fetch")
	}
	return err
}
