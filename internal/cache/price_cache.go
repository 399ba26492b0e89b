package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/PARANDHAMAREDDYBOMMAKA/farmcon-sub000/internal/database"
	"github.com/PARANDHAMAREDDYBOMMAKA/farmcon-sub000/internal/models"
)

// TTLs per entry type. The primary response entry carries the full composed
// body; everything else is write-only bookkeeping with its own lifetime.
const (
	TTLPrimaryResponse = time.Hour
	TTLCounters        = 24 * time.Hour
	TTLLastQuery       = 30 * time.Minute
	TTLAvgTrend        = 2 * time.Hour
	TTLPriceRange      = time.Hour
)

const (
	primaryPrefix    = "market_prices:"
	hitCounterKey    = "market_prices:stats:hits"
	missCounterKey   = "market_prices:stats:misses"
	errCounterKey    = "market_prices:stats:errors"
	apiCallPrefix    = "market_prices:api_calls:"
	popularityKey    = "market_prices:popular"
	lastQueryPrefix  = "market_prices:last_query:"
	avgTrendPrefix   = "market_prices:avg:"
	priceRangePrefix = "market_prices:range:"
)

// LastQuerySnapshot records the most recent query served for a commodity.
type LastQuerySnapshot struct {
	Commodity    string    `json:"commodity"`
	State        string    `json:"state,omitempty"`
	District     string    `json:"district,omitempty"`
	TotalRecords int       `json:"total_records"`
	QueriedAt    time.Time `json:"queried_at"`
}

// AvgTrendSnapshot records the last computed average price and seasonal
// trend for a commodity.
type AvgTrendSnapshot struct {
	Commodity     string          `json:"commodity"`
	AvgPrice      decimal.Decimal `json:"avg_price"`
	SeasonalTrend string          `json:"seasonal_trend"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// PriceRangeSnapshot records the last observed price spread for a commodity.
type PriceRangeSnapshot struct {
	Commodity string          `json:"commodity"`
	Min       decimal.Decimal `json:"min"`
	Max       decimal.Decimal `json:"max"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// PriceCache layers the market-price response cache and its auxiliary
// bookkeeping over Redis. Auxiliary entries are never read back into a
// served response; their absence or failure must not affect the primary
// path.
type PriceCache struct {
	redis  *database.RedisClient
	logger *logrus.Logger
}

// NewPriceCache creates a price cache over the given Redis connection.
func NewPriceCache(redis *database.RedisClient, logger *logrus.Logger) *PriceCache {
	return &PriceCache{redis: redis, logger: logger}
}

// PrimaryKey builds the cache key for a query. Presence or absence of the
// optional filters changes the key, so ("Rice","",""), ("Rice","Punjab","")
// and ("Rice","Punjab","Ludhiana") are three distinct entries.
func PrimaryKey(commodity, state, district string) string {
	if state == "" {
		state = "all"
	}
	if district == "" {
		district = "all"
	}
	return fmt.Sprintf("%s%s:%s:%s", primaryPrefix, commodity, state, district)
}

// GetResponse retrieves the composed response stored under key, if present.
func (c *PriceCache) GetResponse(ctx context.Context, key string) (*models.MarketPricesResponse, bool) {
	data, err := c.redis.Get(ctx, key)
	if err != nil {
		return nil, false
	}

	var resp models.MarketPricesResponse
	if err := json.Unmarshal([]byte(data), &resp); err != nil {
		c.logger.Warnf("failed to unmarshal cached response for %s: %v", key, err)
		return nil, false
	}
	return &resp, true
}

// SetResponse stores the composed response under key with the primary TTL.
func (c *PriceCache) SetResponse(ctx context.Context, key string, resp *models.MarketPricesResponse) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to marshal response for caching: %w", err)
	}
	return c.redis.Set(ctx, key, data, TTLPrimaryResponse)
}

// IncrHits bumps the cache hit counter.
func (c *PriceCache) IncrHits(ctx context.Context) error {
	_, err := c.redis.IncrWithTTL(ctx, hitCounterKey, TTLCounters)
	return err
}

// IncrMisses bumps the cache miss counter.
func (c *PriceCache) IncrMisses(ctx context.Context) error {
	_, err := c.redis.IncrWithTTL(ctx, missCounterKey, TTLCounters)
	return err
}

// IncrErrors bumps the internal error counter.
func (c *PriceCache) IncrErrors(ctx context.Context) error {
	_, err := c.redis.IncrWithTTL(ctx, errCounterKey, TTLCounters)
	return err
}

// IncrAPICalls bumps the per-commodity upstream call counter.
func (c *PriceCache) IncrAPICalls(ctx context.Context, commodity string) error {
	_, err := c.redis.IncrWithTTL(ctx, apiCallPrefix+commodity, TTLCounters)
	return err
}

// TouchPopularity scores a commodity in the popularity ranking by query
// time, so a reverse range yields most-recently-requested commodities.
func (c *PriceCache) TouchPopularity(ctx context.Context, commodity string, at time.Time) error {
	return c.redis.ZAddScore(ctx, popularityKey, commodity, float64(at.Unix()))
}

// PopularCommodities returns up to n most recently queried commodities.
func (c *PriceCache) PopularCommodities(ctx context.Context, n int64) ([]string, error) {
	return c.redis.ZRevRange(ctx, popularityKey, 0, n-1)
}

// SetLastQuery stores the last-query snapshot for a commodity.
func (c *PriceCache) SetLastQuery(ctx context.Context, snapshot LastQuerySnapshot) error {
	return c.setJSON(ctx, lastQueryPrefix+snapshot.Commodity, snapshot, TTLLastQuery)
}

// SetAvgTrend stores the average-price/trend snapshot for a commodity.
func (c *PriceCache) SetAvgTrend(ctx context.Context, snapshot AvgTrendSnapshot) error {
	return c.setJSON(ctx, avgTrendPrefix+snapshot.Commodity, snapshot, TTLAvgTrend)
}

// SetPriceRange stores the price-range snapshot for a commodity.
func (c *PriceCache) SetPriceRange(ctx context.Context, snapshot PriceRangeSnapshot) error {
	return c.setJSON(ctx, priceRangePrefix+snapshot.Commodity, snapshot, TTLPriceRange)
}

// Counters returns the hit, miss and error counter values, for the cache
// stats endpoint. Absent counters read as zero.
func (c *PriceCache) Counters(ctx context.Context) (hits, misses, errors int64) {
	hits = c.counter(ctx, hitCounterKey)
	misses = c.counter(ctx, missCounterKey)
	errors = c.counter(ctx, errCounterKey)
	return hits, misses, errors
}

func (c *PriceCache) counter(ctx context.Context, key string) int64 {
	val, err := c.redis.Client.Get(ctx, key).Int64()
	if err != nil {
		return 0
	}
	return val
}

func (c *PriceCache) setJSON(ctx context.Context, key string, v interface{}, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot for %s: %w", key, err)
	}
	return c.redis.Set(ctx, key, data, ttl)
}
