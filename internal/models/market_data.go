package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trend values for a single price record.
const (
	TrendUp     = "up"
	TrendDown   = "down"
	TrendStable = "stable"
)

// Seasonal trend classifications produced by the insights engine.
const (
	SeasonalRising  = "rising"
	SeasonalFalling = "falling"
	SeasonalStable  = "stable"
)

// Volatility labels derived from the coefficient of variation.
const (
	VolatilityLow    = "Low"
	VolatilityMedium = "Medium"
	VolatilityHigh   = "High"
)

// PriceRecord represents one mandi quotation for a commodity.
// Records are built fresh per request from upstream JSON and only ever
// live in the cache; they are never written to a system of record.
type PriceRecord struct {
	ID         string          `json:"id"`
	Commodity  string          `json:"commodity"`
	Variety    string          `json:"variety"`
	Market     string          `json:"market"`
	State      string          `json:"state"`
	District   string          `json:"district"`
	MinPrice   decimal.Decimal `json:"minPrice"`
	MaxPrice   decimal.Decimal `json:"maxPrice"`
	ModalPrice decimal.Decimal `json:"modalPrice"`
	Unit       string          `json:"unit"`
	Date       string          `json:"date"`
	Source     string          `json:"source"`
	Trend      string          `json:"trend"`
}

// PriceRange is the min/max spread over a record set.
type PriceRange struct {
	Min decimal.Decimal `json:"min"`
	Max decimal.Decimal `json:"max"`
}

// MarketInsights holds aggregate statistics derived from a record set.
type MarketInsights struct {
	AvgPrice       decimal.Decimal `json:"avgPrice"`
	PriceRange     PriceRange      `json:"priceRange"`
	BestMarkets    []PriceRecord   `json:"bestMarkets"`
	WorstMarkets   []PriceRecord   `json:"worstMarkets"`
	SeasonalTrend  string          `json:"seasonalTrend"`
	Recommendation string          `json:"recommendation"`
}

// MonthlyPrice is one entry of the synthetic historical series.
type MonthlyPrice struct {
	Month  string  `json:"month"`
	Price  float64 `json:"price"`
	Volume int     `json:"volume"`
	Trend  string  `json:"trend"`
}

// HistoricalSeries is a modeled 6-month trend, not measured history.
// There is no real historical feed for mandi prices, so the series is
// synthesized from the current average price.
type HistoricalSeries struct {
	Months           []MonthlyPrice `json:"months"`
	AvgPrice         float64        `json:"avgPrice"`
	PriceVolatility  string         `json:"priceVolatility"`
	HarvestSeason    string         `json:"harvestSeason"`
	BestSellingMonth string         `json:"bestSellingMonth"`
	SmaTrendline     []float64      `json:"smaTrendline,omitempty"`
}

// MarketPricesResponse is the composed body served by the prices endpoint
// and the value stored under the primary cache key.
type MarketPricesResponse struct {
	Prices       []PriceRecord    `json:"prices"`
	Insights     MarketInsights   `json:"insights"`
	Historical   HistoricalSeries `json:"historical"`
	Commodity    string           `json:"commodity"`
	State        string           `json:"state,omitempty"`
	District     string           `json:"district,omitempty"`
	TotalRecords int              `json:"totalRecords"`
	LastUpdated  time.Time        `json:"lastUpdated"`
	Source       string           `json:"source"`
}
