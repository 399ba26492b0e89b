package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PARANDHAMAREDDYBOMMAKA/farmcon-sub000/internal/models"
)

func priceRecord(market string, modal int64) models.PriceRecord {
	return models.PriceRecord{
		Market:     market,
		MinPrice:   decimal.NewFromInt(modal - 50),
		MaxPrice:   decimal.NewFromInt(modal + 50),
		ModalPrice: decimal.NewFromInt(modal),
	}
}

func datedRecord(date string, modal int64) models.PriceRecord {
	r := priceRecord("Mandi", modal)
	r.Date = date
	return r
}

func TestComputeInsights_EmptyInput(t *testing.T) {
	e := NewInsightsEngine()

	insights := e.ComputeInsights(nil, "Rice")

	assert.True(t, insights.AvgPrice.IsZero())
	assert.True(t, insights.PriceRange.Min.IsZero())
	assert.True(t, insights.PriceRange.Max.IsZero())
	assert.Empty(t, insights.BestMarkets)
	assert.Empty(t, insights.WorstMarkets)
	assert.Equal(t, models.SeasonalStable, insights.SeasonalTrend)
	assert.Equal(t, "No data available", insights.Recommendation)
}

func TestComputeInsights_Aggregates(t *testing.T) {
	e := NewInsightsEngine()

	records := []models.PriceRecord{
		priceRecord("A", 100),
		priceRecord("B", 200),
		priceRecord("C", 300),
	}

	insights := e.ComputeInsights(records, "Wheat")

	assert.True(t, insights.AvgPrice.Equal(decimal.NewFromInt(200)), "avg was %s", insights.AvgPrice)
	assert.True(t, insights.PriceRange.Min.Equal(decimal.NewFromInt(50)))
	assert.True(t, insights.PriceRange.Max.Equal(decimal.NewFromInt(350)))
}

func TestComputeInsights_BestWorstMarkets(t *testing.T) {
	e := NewInsightsEngine()

	records := []models.PriceRecord{
		priceRecord("A", 100),
		priceRecord("B", 50),
		priceRecord("C", 200),
		priceRecord("D", 150),
		priceRecord("E", 75),
	}

	insights := e.ComputeInsights(records, "Rice")

	require.Len(t, insights.BestMarkets, 3)
	assert.Equal(t, "C", insights.BestMarkets[0].Market)
	assert.Equal(t, "D", insights.BestMarkets[1].Market)
	assert.Equal(t, "A", insights.BestMarkets[2].Market)

	// Worst is ordered ascending from the bottom: lowest price first.
	require.Len(t, insights.WorstMarkets, 3)
	assert.Equal(t, "B", insights.WorstMarkets[0].Market)
	assert.Equal(t, "E", insights.WorstMarkets[1].Market)
	assert.Equal(t, "A", insights.WorstMarkets[2].Market)
}

func TestComputeInsights_BestWorstShrinkWithFewRecords(t *testing.T) {
	e := NewInsightsEngine()

	records := []models.PriceRecord{
		priceRecord("A", 100),
		priceRecord("B", 50),
	}

	insights := e.ComputeInsights(records, "Rice")

	require.Len(t, insights.BestMarkets, 2)
	require.Len(t, insights.WorstMarkets, 2)
	assert.Equal(t, "A", insights.BestMarkets[0].Market)
	assert.Equal(t, "B", insights.WorstMarkets[0].Market)
}

func TestComputeInsights_TieBrokenByInputOrder(t *testing.T) {
	e := NewInsightsEngine()

	records := []models.PriceRecord{
		priceRecord("First", 100),
		priceRecord("Second", 100),
		priceRecord("Third", 100),
		priceRecord("Fourth", 100),
	}

	insights := e.ComputeInsights(records, "Rice")

	assert.Equal(t, "First", insights.BestMarkets[0].Market)
	assert.Equal(t, "Second", insights.BestMarkets[1].Market)
	assert.Equal(t, "Third", insights.BestMarkets[2].Market)
}

func TestSeasonalTrend_Boundaries(t *testing.T) {
	now := time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)
	e := NewInsightsEngineWithClock(fixedClock(now))

	tests := []struct {
		name       string
		recentMean int64
		want       string
	}{
		{"exactly 1.05x is not rising", 105, models.SeasonalStable},
		{"1.06x is rising", 106, models.SeasonalRising},
		{"0.94x is falling", 94, models.SeasonalFalling},
		{"equal means are stable", 100, models.SeasonalStable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records := []models.PriceRecord{
				datedRecord("2026-03-18", tt.recentMean), // within last 7 days
				datedRecord("2026-03-10", 100),           // 8-14 days back
			}
			insights := e.ComputeInsights(records, "Rice")
			assert.Equal(t, tt.want, insights.SeasonalTrend)
		})
	}
}

func TestSeasonalTrend_EmptyWindowIsStable(t *testing.T) {
	now := time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)
	e := NewInsightsEngineWithClock(fixedClock(now))

	// Only recent records: the older window is empty.
	recentOnly := []models.PriceRecord{datedRecord("2026-03-19", 500)}
	assert.Equal(t, models.SeasonalStable, e.ComputeInsights(recentOnly, "Rice").SeasonalTrend)

	// Only stale records: both windows are empty.
	stale := []models.PriceRecord{datedRecord("2025-11-01", 500)}
	assert.Equal(t, models.SeasonalStable, e.ComputeInsights(stale, "Rice").SeasonalTrend)

	// Unparseable dates are skipped, not fatal.
	garbage := []models.PriceRecord{datedRecord("soon", 500)}
	assert.Equal(t, models.SeasonalStable, e.ComputeInsights(garbage, "Rice").SeasonalTrend)
}

func TestSeasonalTrend_MixedDateFormats(t *testing.T) {
	now := time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)
	e := NewInsightsEngineWithClock(fixedClock(now))

	records := []models.PriceRecord{
		datedRecord("18/03/2026", 120), // dd/mm/yyyy, recent
		datedRecord("2026-03-10", 100), // ISO, older window
	}

	insights := e.ComputeInsights(records, "Rice")
	assert.Equal(t, models.SeasonalRising, insights.SeasonalTrend)
}

func TestRecommendation_KeyedByTrendAndCommodity(t *testing.T) {
	now := time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)
	e := NewInsightsEngineWithClock(fixedClock(now))

	rising := []models.PriceRecord{
		datedRecord("2026-03-18", 200),
		datedRecord("2026-03-10", 100),
	}
	insights := e.ComputeInsights(rising, "Cotton")
	assert.Contains(t, insights.Recommendation, "Cotton")
	assert.Contains(t, insights.Recommendation, "rising")

	falling := []models.PriceRecord{
		datedRecord("2026-03-18", 50),
		datedRecord("2026-03-10", 100),
	}
	insights = e.ComputeInsights(falling, "Cotton")
	assert.Contains(t, insights.Recommendation, "falling")
}
