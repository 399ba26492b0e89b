package services

import (
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PARANDHAMAREDDYBOMMAKA/farmcon-sub000/internal/models"
)

func seededSynthesizer(now time.Time, seed int64) *HistoricalSynthesizer {
	return NewHistoricalSynthesizerWithSources(fixedClock(now), rand.New(rand.NewSource(seed)))
}

func recordsWithModal(modal int64, n int) []models.PriceRecord {
	records := make([]models.PriceRecord, n)
	for i := range records {
		records[i] = models.PriceRecord{ModalPrice: decimal.NewFromInt(modal)}
	}
	return records
}

func TestSynthesize_SeriesShape(t *testing.T) {
	now := time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)
	h := seededSynthesizer(now, 1)

	series := h.Synthesize("Rice", recordsWithModal(2000, 5))

	require.Len(t, series.Months, 6)

	// Oldest to newest, ending at the current month.
	assert.Equal(t, "Oct 2025", series.Months[0].Month)
	assert.Equal(t, "Mar 2026", series.Months[5].Month)
	assert.Equal(t, "current", series.Months[5].Trend)

	for i, m := range series.Months {
		assert.GreaterOrEqual(t, m.Volume, 800, "month %d volume", i)
		assert.LessOrEqual(t, m.Volume, 1200, "month %d volume", i)
		if i > 0 && i < 5 {
			assert.Contains(t, []string{models.TrendUp, models.TrendDown, models.TrendStable}, m.Trend)
		}
	}
}

func TestSynthesize_FloorClamp(t *testing.T) {
	now := time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)

	// Run several seeds: no price may ever drop below half the current avg.
	for seed := int64(0); seed < 25; seed++ {
		h := seededSynthesizer(now, seed)
		series := h.Synthesize("Onion", recordsWithModal(1200, 3))
		for _, m := range series.Months {
			assert.GreaterOrEqual(t, m.Price, 600.0, "seed %d", seed)
		}
	}
}

func TestSynthesize_DeterministicWithSeededRand(t *testing.T) {
	now := time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)

	a := seededSynthesizer(now, 7).Synthesize("Wheat", recordsWithModal(1800, 4))
	b := seededSynthesizer(now, 7).Synthesize("Wheat", recordsWithModal(1800, 4))

	assert.Equal(t, a, b)
}

func TestSynthesize_EmptyRecords(t *testing.T) {
	now := time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)
	h := seededSynthesizer(now, 3)

	series := h.Synthesize("Rice", nil)

	require.Len(t, series.Months, 6)
	for _, m := range series.Months {
		assert.Zero(t, m.Price)
	}
	assert.Zero(t, series.AvgPrice)
}

func TestSynthesize_BestSellingMonth(t *testing.T) {
	now := time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)
	h := seededSynthesizer(now, 11)

	series := h.Synthesize("Rice", recordsWithModal(2500, 5))

	best := series.Months[0]
	for _, m := range series.Months[1:] {
		if m.Price > best.Price {
			best = m
		}
	}
	assert.Equal(t, best.Month, series.BestSellingMonth)
}

func TestSynthesize_SmaTrendline(t *testing.T) {
	now := time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)
	h := seededSynthesizer(now, 5)

	series := h.Synthesize("Rice", recordsWithModal(2000, 5))

	// A 3-period SMA over 6 points yields 4 values.
	require.Len(t, series.SmaTrendline, 4)
	first := (series.Months[0].Price + series.Months[1].Price + series.Months[2].Price) / 3
	assert.InDelta(t, first, series.SmaTrendline[0], 0.011)
}

func TestVolatilityThresholds(t *testing.T) {
	assert.Equal(t, models.VolatilityLow, VolatilityFromCV(5))
	assert.Equal(t, models.VolatilityMedium, VolatilityFromCV(10))
	assert.Equal(t, models.VolatilityHigh, VolatilityFromCV(20))
}

func TestHarvestSeasonLookup(t *testing.T) {
	now := time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)
	h := seededSynthesizer(now, 9)

	assert.Equal(t, "October-November", h.Synthesize("Rice", nil).HarvestSeason)
	assert.Equal(t, "October-November", h.Synthesize("rice", nil).HarvestSeason)
	assert.Equal(t, "March-April", h.Synthesize("Wheat", nil).HarvestSeason)
	assert.Equal(t, "Varies by region", h.Synthesize("Dragonfruit", nil).HarvestSeason)
}
