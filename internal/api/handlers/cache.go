package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/PARANDHAMAREDDYBOMMAKA/farmcon-sub000/internal/cache"
	"github.com/PARANDHAMAREDDYBOMMAKA/farmcon-sub000/internal/services"
)

// CacheHandler exposes cache observability: in-process hit/miss analytics,
// the persisted Redis counters and the commodity popularity ranking.
type CacheHandler struct {
	analytics  *services.CacheAnalyticsService
	priceCache *cache.PriceCache
}

// NewCacheHandler creates a new cache handler.
func NewCacheHandler(analytics *services.CacheAnalyticsService, priceCache *cache.PriceCache) *CacheHandler {
	return &CacheHandler{analytics: analytics, priceCache: priceCache}
}

// GetStats handles GET /api/v1/cache/stats.
func (h *CacheHandler) GetStats(c *gin.Context) {
	response := gin.H{
		"timestamp": time.Now(),
	}

	if h.analytics != nil {
		response["categories"] = h.analytics.GetAllStats()
	}

	if h.priceCache != nil {
		hits, misses, errCount := h.priceCache.Counters(c.Request.Context())
		response["counters"] = gin.H{
			"hits":   hits,
			"misses": misses,
			"errors": errCount,
		}

		if popular, err := h.priceCache.PopularCommodities(c.Request.Context(), 10); err == nil {
			response["popular_commodities"] = popular
		}
	}

	c.JSON(http.StatusOK, response)
}

// ResetStats handles POST /api/v1/cache/stats/reset. Only the in-process
// analytics reset; the Redis counters age out on their own TTLs.
func (h *CacheHandler) ResetStats(c *gin.Context) {
	if h.analytics == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Cache analytics is not available"})
		return
	}
	h.analytics.ResetStats()
	c.JSON(http.StatusOK, gin.H{"message": "Cache statistics reset", "timestamp": time.Now()})
}
