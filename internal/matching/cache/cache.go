// internal/matching/cache/cache.go

// Package cache memoizes pairwise match scores. Entries live in a bounded
// in-process LRU with a fixed TTL and, when Redis is configured, in a shared
// Redis tier so multiple instances reuse each other's computations.
package cache

import (
	"container/list"
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"talent-matching/internal/common/logger"
	"talent-matching/internal/common/metrics"
	"talent-matching/internal/matching/scoring"
)

const redisKeyPrefix = "match:score:"

// ComputeFunc produces a MatchScore on a cache miss.
type ComputeFunc func(ctx context.Context) (scoring.MatchScore, error)

type entry struct {
	key         string
	candidateID string
	jobID       string
	score       scoring.MatchScore
	expiresAt   time.Time
}

// Stats is a point-in-time snapshot of cache behavior.
type Stats struct {
	Hits          uint64 `json:"hits"`
	RemoteHits    uint64 `json:"remoteHits"`
	Misses        uint64 `json:"misses"`
	Evictions     uint64 `json:"evictions"`
	Invalidations uint64 `json:"invalidations"`
	Size          int    `json:"size"`
	Capacity      int    `json:"capacity"`
}

// ResultCache caches computed scores keyed by the unordered (candidate, job)
// pair. Concurrent requests for the same key collapse to one computation.
type ResultCache struct {
	capacity int
	ttl      time.Duration
	rdb      *redis.Client // optional shared tier, nil to disable
	logger   logger.Logger
	now      func() time.Time

	group singleflight.Group

	mu       sync.Mutex
	entries  map[string]*list.Element
	lru      *list.List                     // front = most recently used
	byEntity map[string]map[string]struct{} // entity id -> keys, for push invalidation
	stats    Stats
}

func New(capacity int, ttl time.Duration, rdb *redis.Client, log logger.Logger) *ResultCache {
	return &ResultCache{
		capacity: capacity,
		ttl:      ttl,
		rdb:      rdb,
		logger:   log.WithFields(map[string]interface{}{"component": "result-cache"}),
		now:      time.Now,
		entries:  make(map[string]*list.Element),
		lru:      list.New(),
		byEntity: make(map[string]map[string]struct{}),
	}
}

// pairKey builds the unordered cache key: the same pair yields the same key
// regardless of argument order.
func pairKey(candidateID, jobID string) string {
	if jobID < candidateID {
		candidateID, jobID = jobID, candidateID
	}
	return candidateID + "|" + jobID
}

// GetOrCompute returns the cached score for the pair, or runs computeFn at
// most once across all concurrent callers and caches the result. Misses
// never error on their own; only computeFn failures propagate.
func (c *ResultCache) GetOrCompute(ctx context.Context, candidateID, jobID string, computeFn ComputeFunc) (scoring.MatchScore, error) {
	key := pairKey(candidateID, jobID)

	if score, ok := c.lookupLocal(key); ok {
		c.recordHit("local")
		return score, nil
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		// Re-check after winning the flight: a concurrent caller may have
		// populated the entry between our lookup and this point.
		if score, ok := c.lookupLocal(key); ok {
			c.recordHit("local")
			return score, nil
		}

		if score, ok := c.lookupRedis(ctx, key); ok {
			c.recordHit("redis")
			c.storeLocal(candidateID, jobID, key, score)
			return score, nil
		}

		c.recordMiss()

		// The computation is allowed to outlive a cancelled requester so the
		// result still lands in the cache for future callers.
		score, err := computeFn(context.WithoutCancel(ctx))
		if err != nil {
			return scoring.MatchScore{}, err
		}
		metrics.ScoresComputed.Inc()

		c.storeLocal(candidateID, jobID, key, score)
		c.storeRedis(ctx, key, score)
		return score, nil
	})
	if err != nil {
		return scoring.MatchScore{}, err
	}
	return v.(scoring.MatchScore), nil
}

// Refresh recomputes the pair unconditionally and replaces any cached value.
// Used when the caller requires fresh scores.
func (c *ResultCache) Refresh(ctx context.Context, candidateID, jobID string, computeFn ComputeFunc) (scoring.MatchScore, error) {
	key := pairKey(candidateID, jobID)

	// Same lifetime rule as GetOrCompute: the recomputation outlives a
	// cancelled requester so the replacement still lands in the cache.
	score, err := computeFn(context.WithoutCancel(ctx))
	if err != nil {
		return scoring.MatchScore{}, err
	}
	metrics.ScoresComputed.Inc()

	c.storeLocal(candidateID, jobID, key, score)
	c.storeRedis(ctx, key, score)
	return score, nil
}

// Invalidate drops every cached score involving the entity. Called by the
// owning entity service whenever a profile is created, updated, or deleted.
// Returns the number of local entries dropped.
func (c *ResultCache) Invalidate(ctx context.Context, entityID string) int {
	c.mu.Lock()
	keys := make([]string, 0, len(c.byEntity[entityID]))
	for key := range c.byEntity[entityID] {
		keys = append(keys, key)
		if elem, ok := c.entries[key]; ok {
			c.removeLocked(elem)
		}
	}
	delete(c.byEntity, entityID)
	c.stats.Invalidations += uint64(len(keys))
	c.mu.Unlock()

	redisKeys := make([]string, 0, len(keys))
	for _, key := range keys {
		// Forget in-flight computations so a later call recomputes against
		// the changed profile instead of adopting a stale result.
		c.group.Forget(key)
		redisKeys = append(redisKeys, redisKeyPrefix+key)
		metrics.CacheInvalidations.Inc()
	}

	if c.rdb != nil && len(redisKeys) > 0 {
		if err := c.rdb.Del(ctx, redisKeys...).Err(); err != nil {
			c.logger.Warn("redis invalidation failed", map[string]interface{}{
				"entityId": entityID,
				"error":    err,
			})
		}
	}

	c.logger.Debug("invalidated cached scores", map[string]interface{}{
		"entityId": entityID,
		"dropped":  len(keys),
	})
	return len(keys)
}

// Stats returns a snapshot of the cache counters.
func (c *ResultCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Size = c.lru.Len()
	s.Capacity = c.capacity
	return s
}

func (c *ResultCache) lookupLocal(key string) (scoring.MatchScore, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		return scoring.MatchScore{}, false
	}

	e := elem.Value.(*entry)
	if c.now().After(e.expiresAt) {
		c.removeLocked(elem)
		return scoring.MatchScore{}, false
	}

	c.lru.MoveToFront(elem)
	return e.score, true
}

func (c *ResultCache) storeLocal(candidateID, jobID, key string, score scoring.MatchScore) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		e := elem.Value.(*entry)
		e.score = score
		e.expiresAt = c.now().Add(c.ttl)
		c.lru.MoveToFront(elem)
		return
	}

	e := &entry{
		key:         key,
		candidateID: candidateID,
		jobID:       jobID,
		score:       score,
		expiresAt:   c.now().Add(c.ttl),
	}
	c.entries[key] = c.lru.PushFront(e)
	c.index(candidateID, key)
	c.index(jobID, key)

	for c.capacity > 0 && c.lru.Len() > c.capacity {
		oldest := c.lru.Back()
		if oldest == nil {
			break
		}
		c.removeLocked(oldest)
		c.stats.Evictions++
		metrics.CacheEvictions.Inc()
	}
}

// removeLocked unlinks an element and its reverse-index references.
// Caller must hold c.mu.
func (c *ResultCache) removeLocked(elem *list.Element) {
	e := elem.Value.(*entry)
	c.lru.Remove(elem)
	delete(c.entries, e.key)
	c.unindex(e.candidateID, e.key)
	c.unindex(e.jobID, e.key)
}

func (c *ResultCache) index(entityID, key string) {
	keys, ok := c.byEntity[entityID]
	if !ok {
		keys = make(map[string]struct{})
		c.byEntity[entityID] = keys
	}
	keys[key] = struct{}{}
}

func (c *ResultCache) unindex(entityID, key string) {
	if keys, ok := c.byEntity[entityID]; ok {
		delete(keys, key)
		if len(keys) == 0 {
			delete(c.byEntity, entityID)
		}
	}
}

func (c *ResultCache) lookupRedis(ctx context.Context, key string) (scoring.MatchScore, bool) {
	if c.rdb == nil {
		return scoring.MatchScore{}, false
	}

	val, err := c.rdb.Get(ctx, redisKeyPrefix+key).Result()
	if err != nil {
		return scoring.MatchScore{}, false
	}

	var score scoring.MatchScore
	if err := json.Unmarshal([]byte(val), &score); err != nil {
		return scoring.MatchScore{}, false
	}
	return score, true
}

func (c *ResultCache) storeRedis(ctx context.Context, key string, score scoring.MatchScore) {
	if c.rdb == nil {
		return
	}

	data, err := json.Marshal(score)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, redisKeyPrefix+key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("redis store failed", map[string]interface{}{
			"key":   key,
			"error": err,
		})
	}
}

func (c *ResultCache) recordHit(tier string) {
	c.mu.Lock()
	if tier == "redis" {
		c.stats.RemoteHits++
	} else {
		c.stats.Hits++
	}
	c.mu.Unlock()
	metrics.CacheHits.WithLabelValues(tier).Inc()
}

func (c *ResultCache) recordMiss() {
	c.mu.Lock()
	c.stats.Misses++
	c.mu.Unlock()
	metrics.CacheMisses.Inc()
}
