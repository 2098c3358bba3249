// internal/matching/cache/cache_test.go
package cache

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"talent-matching/internal/common/logger"
	"talent-matching/internal/matching/scoring"
)

// ==========================
// Test Helper Functions
// ==========================

func newTestCache(capacity int, ttl time.Duration) *ResultCache {
	return New(capacity, ttl, nil, logger.NewNoOpLogger())
}

func scoreFor(candidateID, jobID string, score int) scoring.MatchScore {
	return scoring.MatchScore{
		CandidateID: candidateID,
		JobID:       jobID,
		Score:       score,
		Tier:        scoring.ClassifyScore(score),
	}
}

func countingCompute(counter *int32, result scoring.MatchScore) ComputeFunc {
	return func(ctx context.Context) (scoring.MatchScore, error) {
		atomic.AddInt32(counter, 1)
		return result, nil
	}
}

// ==========================
// Core Functionality Tests
// ==========================

func TestResultCache_GetOrCompute_CachesResult(t *testing.T) {
	c := newTestCache(10, time.Minute)
	ctx := context.Background()

	var calls int32
	compute := countingCompute(&calls, scoreFor("cand-1", "job-1", 85))

	first, err := c.GetOrCompute(ctx, "cand-1", "job-1", compute)
	require.NoError(t, err)
	assert.Equal(t, 85, first.Score)

	second, err := c.GetOrCompute(ctx, "cand-1", "job-1", compute)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	stats := c.Stats()
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(1), stats.Misses)
	assert.Equal(t, 1, stats.Size)
}

func TestResultCache_GetOrCompute_UnorderedKey(t *testing.T) {
	c := newTestCache(10, time.Minute)
	ctx := context.Background()

	var calls int32
	compute := countingCompute(&calls, scoreFor("cand-1", "job-1", 77))

	_, err := c.GetOrCompute(ctx, "cand-1", "job-1", compute)
	require.NoError(t, err)

	// Same pair in the opposite argument order hits the same entry.
	result, err := c.GetOrCompute(ctx, "job-1", "cand-1", compute)
	require.NoError(t, err)
	assert.Equal(t, 77, result.Score)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestResultCache_GetOrCompute_AtMostOnceUnderConcurrency(t *testing.T) {
	c := newTestCache(10, time.Minute)
	ctx := context.Background()

	var calls int32
	compute := func(ctx context.Context) (scoring.MatchScore, error) {
		atomic.AddInt32(&calls, 1)
		time.Sleep(20 * time.Millisecond) // widen the race window
		return scoreFor("cand-1", "job-1", 91), nil
	}

	const goroutines = 50
	results := make([]scoring.MatchScore, goroutines)
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			result, err := c.GetOrCompute(ctx, "cand-1", "job-1", compute)
			assert.NoError(t, err)
			results[i] = result
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	for _, result := range results {
		assert.Equal(t, results[0], result)
	}
}

func TestResultCache_TTLExpiry(t *testing.T) {
	c := newTestCache(10, time.Minute)
	ctx := context.Background()

	current := time.Now()
	c.now = func() time.Time { return current }

	var calls int32
	compute := countingCompute(&calls, scoreFor("cand-1", "job-1", 85))

	_, err := c.GetOrCompute(ctx, "cand-1", "job-1", compute)
	require.NoError(t, err)

	// Still within the TTL window.
	current = current.Add(59 * time.Second)
	_, err = c.GetOrCompute(ctx, "cand-1", "job-1", compute)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	// Past the TTL the entry is gone and the pair recomputes.
	current = current.Add(2 * time.Minute)
	_, err = c.GetOrCompute(ctx, "cand-1", "job-1", compute)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestResultCache_Invalidate_ForcesRecompute(t *testing.T) {
	c := newTestCache(10, time.Minute)
	ctx := context.Background()

	var calls int32
	compute := countingCompute(&calls, scoreFor("cand-1", "job-1", 85))

	_, err := c.GetOrCompute(ctx, "cand-1", "job-1", compute)
	require.NoError(t, err)

	dropped := c.Invalidate(ctx, "cand-1")
	assert.Equal(t, 1, dropped)

	// Well within the TTL, yet the invalidation forces a recompute.
	_, err = c.GetOrCompute(ctx, "cand-1", "job-1", compute)
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestResultCache_Invalidate_DropsAllPairsOfEntity(t *testing.T) {
	c := newTestCache(10, time.Minute)
	ctx := context.Background()

	var calls int32
	for i := 0; i < 3; i++ {
		jobID := fmt.Sprintf("job-%d", i)
		_, err := c.GetOrCompute(ctx, "cand-1", jobID, countingCompute(&calls, scoreFor("cand-1", jobID, 80)))
		require.NoError(t, err)
	}
	_, err := c.GetOrCompute(ctx, "cand-2", "job-0", countingCompute(&calls, scoreFor("cand-2", "job-0", 60)))
	require.NoError(t, err)

	dropped := c.Invalidate(ctx, "cand-1")
	assert.Equal(t, 3, dropped)

	// The unrelated pair survives.
	_, err = c.GetOrCompute(ctx, "cand-2", "job-0", countingCompute(&calls, scoreFor("cand-2", "job-0", 60)))
	require.NoError(t, err)
	assert.Equal(t, int32(4), atomic.LoadInt32(&calls))
}

func TestResultCache_LRUEviction(t *testing.T) {
	c := newTestCache(2, time.Minute)
	ctx := context.Background()

	var calls int32
	for _, jobID := range []string{"job-1", "job-2"} {
		_, err := c.GetOrCompute(ctx, "cand-1", jobID, countingCompute(&calls, scoreFor("cand-1", jobID, 80)))
		require.NoError(t, err)
	}

	// Touch job-1 so job-2 becomes the eviction victim.
	_, err := c.GetOrCompute(ctx, "cand-1", "job-1", countingCompute(&calls, scoreFor("cand-1", "job-1", 80)))
	require.NoError(t, err)

	_, err = c.GetOrCompute(ctx, "cand-1", "job-3", countingCompute(&calls, scoreFor("cand-1", "job-3", 80)))
	require.NoError(t, err)

	stats := c.Stats()
	assert.Equal(t, 2, stats.Size)
	assert.Equal(t, uint64(1), stats.Evictions)

	// job-1 is still cached, job-2 recomputes.
	_, err = c.GetOrCompute(ctx, "cand-1", "job-1", countingCompute(&calls, scoreFor("cand-1", "job-1", 80)))
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))

	_, err = c.GetOrCompute(ctx, "cand-1", "job-2", countingCompute(&calls, scoreFor("cand-1", "job-2", 80)))
	require.NoError(t, err)
	assert.Equal(t, int32(4), atomic.LoadInt32(&calls))
}

func TestResultCache_Refresh_ReplacesCachedValue(t *testing.T) {
	c := newTestCache(10, time.Minute)
	ctx := context.Background()

	var calls int32
	_, err := c.GetOrCompute(ctx, "cand-1", "job-1", countingCompute(&calls, scoreFor("cand-1", "job-1", 70)))
	require.NoError(t, err)

	refreshed, err := c.Refresh(ctx, "cand-1", "job-1", countingCompute(&calls, scoreFor("cand-1", "job-1", 95)))
	require.NoError(t, err)
	assert.Equal(t, 95, refreshed.Score)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))

	cached, err := c.GetOrCompute(ctx, "cand-1", "job-1", countingCompute(&calls, scoreFor("cand-1", "job-1", 70)))
	require.NoError(t, err)
	assert.Equal(t, 95, cached.Score)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestResultCache_Refresh_SurvivesCancelledRequester(t *testing.T) {
	c := newTestCache(10, time.Minute)

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	refreshed, err := c.Refresh(cancelled, "cand-1", "job-1", func(computeCtx context.Context) (scoring.MatchScore, error) {
		// The compute context must stay live even though the requester is gone.
		require.NoError(t, computeCtx.Err())
		return scoreFor("cand-1", "job-1", 88), nil
	})
	require.NoError(t, err)
	assert.Equal(t, 88, refreshed.Score)

	var calls int32
	cached, err := c.GetOrCompute(context.Background(), "cand-1", "job-1", countingCompute(&calls, scoreFor("cand-1", "job-1", 70)))
	require.NoError(t, err)
	assert.Equal(t, 88, cached.Score)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestResultCache_ComputeErrorNotCached(t *testing.T) {
	c := newTestCache(10, time.Minute)
	ctx := context.Background()

	_, err := c.GetOrCompute(ctx, "cand-1", "job-1", func(ctx context.Context) (scoring.MatchScore, error) {
		return scoring.MatchScore{}, assert.AnError
	})
	require.Error(t, err)

	var calls int32
	result, err := c.GetOrCompute(ctx, "cand-1", "job-1", countingCompute(&calls, scoreFor("cand-1", "job-1", 85)))
	require.NoError(t, err)
	assert.Equal(t, 85, result.Score)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

// ==========================
// Redis Tier Tests
// ==========================

func TestResultCache_RedisTier_SharedAcrossInstances(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	ctx := context.Background()

	first := New(10, time.Minute, rdb, logger.NewNoOpLogger())
	second := New(10, time.Minute, rdb, logger.NewNoOpLogger())

	var calls int32
	_, err := first.GetOrCompute(ctx, "cand-1", "job-1", countingCompute(&calls, scoreFor("cand-1", "job-1", 88)))
	require.NoError(t, err)

	// The second instance has a cold local cache but finds the score in the
	// shared tier without recomputing.
	result, err := second.GetOrCompute(ctx, "cand-1", "job-1", countingCompute(&calls, scoreFor("cand-1", "job-1", 0)))
	require.NoError(t, err)
	assert.Equal(t, 88, result.Score)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, uint64(1), second.Stats().RemoteHits)
}

func TestResultCache_RedisTier_InvalidationDropsSharedEntry(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	ctx := context.Background()

	c := New(10, time.Minute, rdb, logger.NewNoOpLogger())

	var calls int32
	_, err := c.GetOrCompute(ctx, "cand-1", "job-1", countingCompute(&calls, scoreFor("cand-1", "job-1", 88)))
	require.NoError(t, err)
	require.True(t, mr.Exists(redisKeyPrefix+pairKey("cand-1", "job-1")))

	c.Invalidate(ctx, "job-1")
	assert.False(t, mr.Exists(redisKeyPrefix+pairKey("cand-1", "job-1")))
}
