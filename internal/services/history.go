package services

import (
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/trend"

	"github.com/PARANDHAMAREDDYBOMMAKA/farmcon-sub000/internal/models"
)

// Model coefficients for the synthetic series, each proportional to the
// current average price.
const (
	historyMonths     = 6
	seasonalAmplitude = 0.15
	trendSlope        = 0.02
	noiseAmplitude    = 0.05
	priceFloorFactor  = 0.5

	volumeMin = 800
	volumeMax = 1200

	smaTrendPeriod = 3

	// CV percentage thresholds for the volatility label.
	volatilityLowMax    = 8.0
	volatilityMediumMax = 15.0
)

// harvestSeasons is a static lookup of typical harvest windows.
var harvestSeasons = map[string]string{
	"rice":      "October-November",
	"wheat":     "March-April",
	"maize":     "September-October",
	"cotton":    "October-December",
	"sugarcane": "December-March",
	"soybean":   "September-October",
	"groundnut": "October-November",
	"mustard":   "February-March",
	"onion":     "November-January",
	"potato":    "January-March",
	"tomato":    "Year-round",
}

// RandSource is the randomness used by the synthesizer. Production uses the
// process-global source; tests inject a seeded *rand.Rand for determinism.
type RandSource interface {
	Float64() float64
	Intn(n int) int
}

type globalRand struct{}

func (globalRand) Float64() float64 { return rand.Float64() }
func (globalRand) Intn(n int) int   { return rand.Intn(n) }

// HistoricalSynthesizer derives a 6-month trend series from the current
// average price. This is a model, not a measurement: no real historical
// mandi price feed exists, so the series combines a seasonal sinusoid, a
// linear trend ramp and volatility noise around the current average.
type HistoricalSynthesizer struct {
	now  func() time.Time
	rand RandSource
}

// NewHistoricalSynthesizer creates a synthesizer on the wall clock and the
// global entropy source.
func NewHistoricalSynthesizer() *HistoricalSynthesizer {
	return &HistoricalSynthesizer{now: time.Now, rand: globalRand{}}
}

// NewHistoricalSynthesizerWithSources creates a synthesizer with an injected
// clock and randomness source.
func NewHistoricalSynthesizerWithSources(now func() time.Time, src RandSource) *HistoricalSynthesizer {
	return &HistoricalSynthesizer{now: now, rand: src}
}

// Synthesize builds the series for a commodity from its current records.
// Entries run oldest to newest, ending at the current month.
func (h *HistoricalSynthesizer) Synthesize(commodity string, records []models.PriceRecord) models.HistoricalSeries {
	avg := currentAverage(records)
	now := h.now()
	floor := priceFloorFactor * avg

	months := make([]models.MonthlyPrice, 0, historyMonths)
	prices := make([]float64, 0, historyMonths)

	for offset := historyMonths - 1; offset >= 0; offset-- {
		monthTime := now.AddDate(0, -offset, 0)
		position := historyMonths - 1 - offset

		seasonal := seasonalAmplitude * avg * math.Sin(2*math.Pi*float64(monthTime.Month())/12)
		ramp := trendSlope * avg * float64(position)
		noise := (h.rand.Float64()*2 - 1) * noiseAmplitude * avg

		price := avg + seasonal + ramp + noise
		if price < floor {
			price = floor
		}
		price = math.Round(price*100) / 100

		entry := models.MonthlyPrice{
			Month:  monthTime.Format("Jan 2006"),
			Price:  price,
			Volume: volumeMin + h.rand.Intn(volumeMax-volumeMin+1),
		}

		switch {
		case offset == 0:
			entry.Trend = "current"
		case len(prices) == 0:
			entry.Trend = models.TrendStable
		case price > prices[len(prices)-1]:
			entry.Trend = models.TrendUp
		case price < prices[len(prices)-1]:
			entry.Trend = models.TrendDown
		default:
			entry.Trend = models.TrendStable
		}

		months = append(months, entry)
		prices = append(prices, price)
	}

	seriesAvg, cv := seriesStats(prices)

	return models.HistoricalSeries{
		Months:           months,
		AvgPrice:         math.Round(seriesAvg*100) / 100,
		PriceVolatility:  volatilityLabel(cv),
		HarvestSeason:    harvestSeason(commodity),
		BestSellingMonth: bestSellingMonth(months),
		SmaTrendline:     smaTrendline(prices),
	}
}

func currentAverage(records []models.PriceRecord) float64 {
	if len(records) == 0 {
		return 0
	}
	sum := 0.0
	for _, r := range records {
		sum += r.ModalPrice.InexactFloat64()
	}
	return sum / float64(len(records))
}

// seriesStats returns the mean and the coefficient of variation (stddev over
// mean, as a percentage) of the series.
func seriesStats(prices []float64) (mean, cv float64) {
	if len(prices) == 0 {
		return 0, 0
	}
	sum := 0.0
	for _, p := range prices {
		sum += p
	}
	mean = sum / float64(len(prices))
	if mean == 0 {
		return mean, 0
	}

	variance := 0.0
	for _, p := range prices {
		variance += (p - mean) * (p - mean)
	}
	variance /= float64(len(prices))

	return mean, math.Sqrt(variance) / mean * 100
}

// VolatilityFromCV maps a coefficient-of-variation percentage to a label.
func VolatilityFromCV(cv float64) string {
	return volatilityLabel(cv)
}

func volatilityLabel(cv float64) string {
	switch {
	case cv < volatilityLowMax:
		return models.VolatilityLow
	case cv < volatilityMediumMax:
		return models.VolatilityMedium
	default:
		return models.VolatilityHigh
	}
}

func harvestSeason(commodity string) string {
	if season, ok := harvestSeasons[strings.ToLower(strings.TrimSpace(commodity))]; ok {
		return season
	}
	return "Varies by region"
}

func bestSellingMonth(months []models.MonthlyPrice) string {
	if len(months) == 0 {
		return ""
	}
	best := months[0]
	for _, m := range months[1:] {
		if m.Price > best.Price {
			best = m
		}
	}
	return best.Month
}

// smaTrendline overlays a short simple moving average on the series so the
// dashboard can draw a smoothed trendline next to the raw months.
func smaTrendline(prices []float64) []float64 {
	if len(prices) < smaTrendPeriod {
		return nil
	}
	sma := trend.NewSmaWithPeriod[float64](smaTrendPeriod)
	values := helper.ChanToSlice(sma.Compute(helper.SliceToChan(prices)))
	for i, v := range values {
		values[i] = math.Round(v*100) / 100
	}
	return values
}
