package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/PARANDHAMAREDDYBOMMAKA/farmcon-sub000/internal/cache"
	"github.com/PARANDHAMAREDDYBOMMAKA/farmcon-sub000/internal/config"
	"github.com/PARANDHAMAREDDYBOMMAKA/farmcon-sub000/internal/models"
	"github.com/PARANDHAMAREDDYBOMMAKA/farmcon-sub000/internal/services"
	"github.com/PARANDHAMAREDDYBOMMAKA/farmcon-sub000/internal/upstream"
	"github.com/PARANDHAMAREDDYBOMMAKA/farmcon-sub000/internal/utils"
)

// auxWriteTimeout bounds the fire-and-forget bookkeeping batch, which
// outlives the request context.
const auxWriteTimeout = 5 * time.Second

// PriceFetcher is the upstream dependency of the price handler.
type PriceFetcher interface {
	FetchPrices(ctx context.Context, q upstream.Query) (*upstream.FetchResult, error)
}

// PriceHandler orchestrates the market-prices endpoint: cache lookup, the
// miss-path fetch/normalize/compute pipeline, cache population and the
// auxiliary bookkeeping.
type PriceHandler struct {
	fetcher    PriceFetcher
	normalizer *services.Normalizer
	insights   *services.InsightsEngine
	history    *services.HistoricalSynthesizer
	cache      *cache.PriceCache
	analytics  *services.CacheAnalyticsService
	cfg        config.MarketDataConfig
	logger     *logrus.Logger
}

// NewPriceHandler wires the orchestrator from its collaborators. The cache
// and analytics may be nil; the handler then degrades to fetch-only.
func NewPriceHandler(
	fetcher PriceFetcher,
	normalizer *services.Normalizer,
	insights *services.InsightsEngine,
	history *services.HistoricalSynthesizer,
	priceCache *cache.PriceCache,
	analytics *services.CacheAnalyticsService,
	cfg config.MarketDataConfig,
	logger *logrus.Logger,
) *PriceHandler {
	return &PriceHandler{
		fetcher:    fetcher,
		normalizer: normalizer,
		insights:   insights,
		history:    history,
		cache:      priceCache,
		analytics:  analytics,
		cfg:        cfg,
		logger:     logger,
	}
}

// GetMarketPrices handles GET /api/v1/market/prices.
func (h *PriceHandler) GetMarketPrices(c *gin.Context) {
	commodity := titleCase(c.DefaultQuery("commodity", h.cfg.DefaultCommodity))
	state := c.Query("state")
	district := c.Query("district")
	limit := h.parseLimit(c.DefaultQuery("limit", strconv.Itoa(h.cfg.DefaultLimit)))

	if err := validateQuery(commodity, state, district); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cacheKey := cache.PrimaryKey(commodity, state, district)

	if cached, found := h.lookupCache(c.Request.Context(), cacheKey); found {
		h.recordHit(commodity)
		c.JSON(http.StatusOK, cached)
		return
	}
	if h.analytics != nil {
		h.analytics.RecordMiss("market_prices")
	}

	result, err := h.fetcher.FetchPrices(c.Request.Context(), upstream.Query{
		Commodity: commodity,
		State:     state,
		District:  district,
		Limit:     limit,
	})
	if err != nil {
		if errors.Is(err, upstream.ErrAllSourcesFailed) {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error":   "Unable to fetch market data",
				"details": err.Error(),
			})
			return
		}
		h.recordError()
		h.logger.WithField("commodity", commodity).Errorf("unexpected fetch failure: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	records := h.normalizer.Normalize(result.Records, commodity, result.Source)
	insights := h.insights.ComputeInsights(records, commodity)
	historical := h.history.Synthesize(commodity, records)

	response := &models.MarketPricesResponse{
		Prices:       records,
		Insights:     insights,
		Historical:   historical,
		Commodity:    commodity,
		State:        state,
		District:     district,
		TotalRecords: len(records),
		LastUpdated:  time.Now(),
		Source:       result.Source,
	}

	h.populateCache(cacheKey, commodity, state, district, response)

	c.JSON(http.StatusOK, response)
}

// lookupCache checks the primary key. Cache failures read as misses.
func (h *PriceHandler) lookupCache(ctx context.Context, key string) (*models.MarketPricesResponse, bool) {
	if h.cache == nil {
		return nil, false
	}
	return h.cache.GetResponse(ctx, key)
}

// recordHit updates the hit-path observability counters. All writes are
// fire-and-forget; the cached response is served regardless.
func (h *PriceHandler) recordHit(commodity string) {
	if h.analytics != nil {
		h.analytics.RecordHit("market_prices")
	}
	if h.cache == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), auxWriteTimeout)
		defer cancel()
		services.RunBestEffortBatch(ctx, h.logger, []services.BestEffortEffect{
			{Name: "hit_counter", Run: h.cache.IncrHits},
			{Name: "api_call_counter", Run: func(ctx context.Context) error {
				return h.cache.IncrAPICalls(ctx, commodity)
			}},
			{Name: "popularity", Run: func(ctx context.Context) error {
				return h.cache.TouchPopularity(ctx, commodity, time.Now())
			}},
		})
	}()
}

// populateCache writes the primary entry and fires the auxiliary snapshot
// batch. Every write here is best-effort: a cache store failure must never
// fail the request, and no auxiliary write blocks another.
func (h *PriceHandler) populateCache(key, commodity, state, district string, resp *models.MarketPricesResponse) {
	if h.cache == nil {
		return
	}

	if err := h.cache.SetResponse(context.Background(), key, resp); err != nil {
		h.logger.Warnf("failed to cache response for %s: %v", key, err)
	}

	insights := resp.Insights
	totalRecords := resp.TotalRecords
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), auxWriteTimeout)
		defer cancel()
		now := time.Now()
		services.RunBestEffortBatch(ctx, h.logger, []services.BestEffortEffect{
			{Name: "miss_counter", Run: h.cache.IncrMisses},
			{Name: "api_call_counter", Run: func(ctx context.Context) error {
				return h.cache.IncrAPICalls(ctx, commodity)
			}},
			{Name: "popularity", Run: func(ctx context.Context) error {
				return h.cache.TouchPopularity(ctx, commodity, now)
			}},
			{Name: "last_query", Run: func(ctx context.Context) error {
				return h.cache.SetLastQuery(ctx, cache.LastQuerySnapshot{
					Commodity:    commodity,
					State:        state,
					District:     district,
					TotalRecords: totalRecords,
					QueriedAt:    now,
				})
			}},
			{Name: "avg_trend", Run: func(ctx context.Context) error {
				return h.cache.SetAvgTrend(ctx, cache.AvgTrendSnapshot{
					Commodity:     commodity,
					AvgPrice:      insights.AvgPrice,
					SeasonalTrend: insights.SeasonalTrend,
					UpdatedAt:     now,
				})
			}},
			{Name: "price_range", Run: func(ctx context.Context) error {
				return h.cache.SetPriceRange(ctx, cache.PriceRangeSnapshot{
					Commodity: commodity,
					Min:       insights.PriceRange.Min,
					Max:       insights.PriceRange.Max,
					UpdatedAt: now,
				})
			}},
		})
	}()
}

// recordError tallies an unexpected internal failure.
func (h *PriceHandler) recordError() {
	if h.cache == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), auxWriteTimeout)
		defer cancel()
		if err := h.cache.IncrErrors(ctx); err != nil {
			h.logger.Warnf("failed to increment error counter: %v", err)
		}
	}()
}

func (h *PriceHandler) parseLimit(raw string) int {
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return h.cfg.DefaultLimit
	}
	if limit > h.cfg.MaxLimit {
		return h.cfg.MaxLimit
	}
	return limit
}

// maxFilterLength bounds query filter values. Real commodity and location
// names are far shorter; anything longer is junk input.
const maxFilterLength = 100

// validateQuery rejects filter values no upstream source could match.
func validateQuery(commodity, state, district string) error {
	if strings.TrimSpace(commodity) == "" {
		return utils.NewValidationError("commodity must not be empty")
	}
	for name, value := range map[string]string{
		"commodity": commodity,
		"state":     state,
		"district":  district,
	} {
		if len(value) > maxFilterLength {
			return utils.NewValidationErrorf("%s exceeds %d characters", name, maxFilterLength)
		}
	}
	return nil
}

// titleCase canonicalizes commodity casing so "rice" and "Rice" share a
// cache key.
func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}
