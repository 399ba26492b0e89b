package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/PARANDHAMAREDDYBOMMAKA/farmcon-sub000/internal/api/handlers"
	"github.com/PARANDHAMAREDDYBOMMAKA/farmcon-sub000/internal/cache"
)

// RequestIDHeader carries the per-request correlation id.
const RequestIDHeader = "X-Request-ID"

// Handlers groups the endpoint handlers the router wires up.
type Handlers struct {
	Prices *handlers.PriceHandler
	Cache  *handlers.CacheHandler
	Health *handlers.HealthHandler
}

// SetupRoutes registers all routes and middleware on the router.
func SetupRoutes(router *gin.Engine, h Handlers, priceCache *cache.PriceCache, logger *logrus.Logger) {
	router.Use(RequestIDMiddleware())
	router.Use(RecoveryMiddleware(priceCache, logger))
	router.Use(otelgin.Middleware("farmcon-market-prices"))

	router.GET("/health", h.Health.Health)

	v1 := router.Group("/api/v1")
	{
		market := v1.Group("/market")
		{
			market.GET("/prices", h.Prices.GetMarketPrices)
		}

		cacheGroup := v1.Group("/cache")
		{
			cacheGroup.GET("/stats", h.Cache.GetStats)
			cacheGroup.POST("/stats/reset", h.Cache.ResetStats)
		}
	}
}

// RequestIDMiddleware assigns a request id when the client did not send one.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Writer.Header().Set(RequestIDHeader, requestID)
		c.Next()
	}
}

// RecoveryMiddleware catches panics at the orchestrator boundary, returns a
// generic 500 and tallies the error counter.
func RecoveryMiddleware(priceCache *cache.PriceCache, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				logger.WithField("path", c.Request.URL.Path).Errorf("panic recovered: %v", r)
				if priceCache != nil {
					if err := priceCache.IncrErrors(c.Request.Context()); err != nil {
						logger.Warnf("failed to increment error counter: %v", err)
					}
				}
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			}
		}()
		c.Next()
	}
}
