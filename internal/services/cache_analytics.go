package services

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheStats represents cache statistics for one category.
type CacheStats struct {
	Hits        int64     `json:"hits"`
	Misses      int64     `json:"misses"`
	HitRate     float64   `json:"hit_rate"`
	TotalOps    int64     `json:"total_ops"`
	LastUpdated time.Time `json:"last_updated"`
}

// CacheAnalyticsService tracks cache performance metrics in process, keyed
// by category, with an "overall" rollup.
type CacheAnalyticsService struct {
	redisClient *redis.Client
	stats       map[string]*CacheStats
	mu          sync.RWMutex
}

// NewCacheAnalyticsService creates a new cache analytics service.
func NewCacheAnalyticsService(redisClient *redis.Client) *CacheAnalyticsService {
	return &CacheAnalyticsService{
		redisClient: redisClient,
		stats:       make(map[string]*CacheStats),
	}
}

// RecordHit records a cache hit for the given category.
func (c *CacheAnalyticsService) RecordHit(category string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record(category, true)
	c.record("overall", true)
}

// RecordMiss records a cache miss for the given category.
func (c *CacheAnalyticsService) RecordMiss(category string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record(category, false)
	c.record("overall", false)
}

// record must be called with the lock held.
func (c *CacheAnalyticsService) record(category string, hit bool) {
	if c.stats[category] == nil {
		c.stats[category] = &CacheStats{}
	}
	s := c.stats[category]
	if hit {
		s.Hits++
	} else {
		s.Misses++
	}
	s.TotalOps++
	s.HitRate = float64(s.Hits) / float64(s.TotalOps)
	s.LastUpdated = time.Now()
}

// GetStats returns cache statistics for a specific category.
func (c *CacheAnalyticsService) GetStats(category string) CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if stats, exists := c.stats[category]; exists {
		return *stats
	}
	return CacheStats{}
}

// GetAllStats returns all cache statistics.
func (c *CacheAnalyticsService) GetAllStats() map[string]CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make(map[string]CacheStats)
	for category, stats := range c.stats {
		result[category] = *stats
	}
	return result
}

// ResetStats resets all cache statistics.
func (c *CacheAnalyticsService) ResetStats() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats = make(map[string]*CacheStats)
}

// StartPeriodicReporting starts periodic snapshotting of cache stats to
// Redis until the context ends.
func (c *CacheAnalyticsService) StartPeriodicReporting(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.reportStats(ctx)
			}
		}
	}()
}

// reportStats writes the current stats snapshot to Redis with a 24 hour TTL.
// Best-effort: failures are dropped.
func (c *CacheAnalyticsService) reportStats(ctx context.Context) {
	if c.redisClient == nil {
		return
	}
	allStats := c.GetAllStats()
	statsJSON, err := json.Marshal(allStats)
	if err != nil {
		return
	}
	c.redisClient.Set(ctx, "cache:analytics:stats", statsJSON, 24*time.Hour)
}
