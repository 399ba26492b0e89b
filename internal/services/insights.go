package services

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/PARANDHAMAREDDYBOMMAKA/farmcon-sub000/internal/models"
)

// Seasonal trend ratio thresholds: recent-window mean vs the 7-14 day
// prior window. Strictly above/below, so an exact 1.05x ratio is stable.
var (
	risingThreshold  = decimal.NewFromFloat(1.05)
	fallingThreshold = decimal.NewFromFloat(0.95)
)

// recordDateLayouts covers the date formats the upstream mixes freely.
var recordDateLayouts = []string{"2006-01-02", "02/01/2006"}

// InsightsEngine computes aggregate statistics over a normalized record set.
type InsightsEngine struct {
	now func() time.Time
}

// NewInsightsEngine creates an engine using the wall clock for trend windows.
func NewInsightsEngine() *InsightsEngine {
	return &InsightsEngine{now: time.Now}
}

// NewInsightsEngineWithClock creates an engine with an injected clock.
func NewInsightsEngineWithClock(now func() time.Time) *InsightsEngine {
	return &InsightsEngine{now: now}
}

// ComputeInsights derives market insights for a commodity from its records.
// An empty record set yields a zeroed struct with a "No data available"
// recommendation rather than an error.
func (e *InsightsEngine) ComputeInsights(records []models.PriceRecord, commodity string) models.MarketInsights {
	if len(records) == 0 {
		return models.MarketInsights{
			AvgPrice:       decimal.Zero,
			PriceRange:     models.PriceRange{Min: decimal.Zero, Max: decimal.Zero},
			BestMarkets:    []models.PriceRecord{},
			WorstMarkets:   []models.PriceRecord{},
			SeasonalTrend:  models.SeasonalStable,
			Recommendation: "No data available",
		}
	}

	sum := decimal.Zero
	rangeMin := records[0].MinPrice
	rangeMax := records[0].MaxPrice
	for _, r := range records {
		sum = sum.Add(r.ModalPrice)
		if r.MinPrice.LessThan(rangeMin) {
			rangeMin = r.MinPrice
		}
		if r.MaxPrice.GreaterThan(rangeMax) {
			rangeMax = r.MaxPrice
		}
	}
	avg := sum.Div(decimal.NewFromInt(int64(len(records))))

	best, worst := rankMarkets(records)
	trend := e.seasonalTrend(records)

	return models.MarketInsights{
		AvgPrice:       avg,
		PriceRange:     models.PriceRange{Min: rangeMin, Max: rangeMax},
		BestMarkets:    best,
		WorstMarkets:   worst,
		SeasonalTrend:  trend,
		Recommendation: recommendation(trend, commodity),
	}
}

// rankMarkets sorts by modal price descending (stable, so input order breaks
// ties) and takes the top and bottom three. Worst is ordered lowest first.
func rankMarkets(records []models.PriceRecord) (best, worst []models.PriceRecord) {
	sorted := make([]models.PriceRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].ModalPrice.GreaterThan(sorted[j].ModalPrice)
	})

	n := len(sorted)
	top := 3
	if n < top {
		top = n
	}

	best = make([]models.PriceRecord, top)
	copy(best, sorted[:top])

	worst = make([]models.PriceRecord, 0, top)
	for i := n - 1; i >= n-top; i-- {
		worst = append(worst, sorted[i])
	}
	return best, worst
}

// seasonalTrend compares the mean modal price of records dated within the
// last 7 days against those dated 8-14 days back, both relative to now.
// Sparse or stale data leaves one or both windows empty, which is stable.
func (e *InsightsEngine) seasonalTrend(records []models.PriceRecord) string {
	now := e.now()
	weekAgo := now.AddDate(0, 0, -7)
	twoWeeksAgo := now.AddDate(0, 0, -14)

	recentSum, olderSum := decimal.Zero, decimal.Zero
	recentCount, olderCount := 0, 0

	for _, r := range records {
		date, ok := parseRecordDate(r.Date)
		if !ok {
			continue
		}
		switch {
		case date.After(weekAgo):
			recentSum = recentSum.Add(r.ModalPrice)
			recentCount++
		case date.After(twoWeeksAgo):
			olderSum = olderSum.Add(r.ModalPrice)
			olderCount++
		}
	}

	if recentCount == 0 || olderCount == 0 {
		return models.SeasonalStable
	}

	recentMean := recentSum.Div(decimal.NewFromInt(int64(recentCount)))
	olderMean := olderSum.Div(decimal.NewFromInt(int64(olderCount)))
	if olderMean.IsZero() {
		return models.SeasonalStable
	}

	ratio := recentMean.Div(olderMean)
	switch {
	case ratio.GreaterThan(risingThreshold):
		return models.SeasonalRising
	case ratio.LessThan(fallingThreshold):
		return models.SeasonalFalling
	default:
		return models.SeasonalStable
	}
}

func parseRecordDate(s string) (time.Time, bool) {
	for _, layout := range recordDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func recommendation(trend, commodity string) string {
	switch trend {
	case models.SeasonalRising:
		return fmt.Sprintf("%s prices are rising. Consider selling soon to capture the upward trend.", commodity)
	case models.SeasonalFalling:
		return fmt.Sprintf("%s prices are falling. Hold stock if storage allows and wait for recovery.", commodity)
	default:
		return fmt.Sprintf("%s prices are stable. Sell based on your storage capacity and cash flow needs.", commodity)
	}
}
