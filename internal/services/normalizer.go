package services

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/PARANDHAMAREDDYBOMMAKA/farmcon-sub000/internal/models"
	"github.com/PARANDHAMAREDDYBOMMAKA/farmcon-sub000/internal/upstream"
)

// Defaults applied when upstream omits a field.
const (
	DefaultVariety  = "Common"
	DefaultMarket   = "Local Market"
	DefaultDistrict = "Unknown"
	DefaultUnit     = "Quintal"
)

var (
	marketFields = []string{"market", "market_name"}
	dateFields   = []string{"arrival_date", "date", "price_date"}
	minFields    = []string{"min_price", "min_x0020_price"}
	maxFields    = []string{"max_price", "max_x0020_price"}
	modalFields  = []string{"modal_price", "modal_x0020_price"}
	changeFields = []string{"price_change", "change"}

	syntheticLow  = decimal.NewFromFloat(0.9)
	syntheticHigh = decimal.NewFromFloat(1.1)
	two           = decimal.NewFromInt(2)
)

// Normalizer maps heterogeneous upstream records into canonical PriceRecords.
// It is total: malformed fields fall back to defaults rather than erroring.
type Normalizer struct {
	now func() time.Time
}

// NewNormalizer creates a normalizer using the wall clock for date defaults.
func NewNormalizer() *Normalizer {
	return &Normalizer{now: time.Now}
}

// NewNormalizerWithClock creates a normalizer with an injected clock.
func NewNormalizerWithClock(now func() time.Time) *Normalizer {
	return &Normalizer{now: now}
}

// Normalize converts raw upstream records for a commodity into PriceRecords,
// tagging each with the provenance of the source that produced it. IDs are
// unique within one response only; records are never persisted, so globally
// stable identifiers are not needed.
func (n *Normalizer) Normalize(raw []upstream.RawRecord, commodity, source string) []models.PriceRecord {
	records := make([]models.PriceRecord, 0, len(raw))
	stamp := n.now().UnixMilli()
	today := n.now().Format("2006-01-02")

	for i, rec := range raw {
		minPrice, hasMin := decimalField(rec, minFields)
		maxPrice, hasMax := decimalField(rec, maxFields)
		modalPrice, hasModal := decimalField(rec, modalFields)

		switch {
		case hasModal && !hasMin && !hasMax:
			minPrice = modalPrice.Mul(syntheticLow)
			maxPrice = modalPrice.Mul(syntheticHigh)
		case !hasModal && hasMin && hasMax:
			modalPrice = minPrice.Add(maxPrice).Div(two)
		case !hasModal && !hasMin && !hasMax:
			// All absent: everything stays zero.
		default:
			if !hasMin {
				minPrice = modalPrice
			}
			if !hasMax {
				maxPrice = modalPrice
			}
			if !hasModal {
				modalPrice = minPrice
			}
		}

		records = append(records, models.PriceRecord{
			ID:         fmt.Sprintf("%d-%d", stamp, i),
			Commodity:  stringField(rec, []string{"commodity"}, commodity),
			Variety:    stringField(rec, []string{"variety"}, DefaultVariety),
			Market:     stringField(rec, marketFields, DefaultMarket),
			State:      stringField(rec, []string{"state"}, ""),
			District:   stringField(rec, []string{"district", "district_name"}, DefaultDistrict),
			MinPrice:   minPrice,
			MaxPrice:   maxPrice,
			ModalPrice: modalPrice,
			Unit:       stringField(rec, []string{"unit"}, DefaultUnit),
			Date:       stringField(rec, dateFields, today),
			Source:     source,
			Trend:      trendFromChange(rec),
		})
	}

	return records
}

// stringField returns the first non-empty string among the aliased keys,
// or the fallback.
func stringField(rec upstream.RawRecord, keys []string, fallback string) string {
	for _, key := range keys {
		if v, ok := rec[key]; ok {
			if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	return fallback
}

// decimalField parses the first aliased key holding a usable number. Upstream
// sends prices as quoted strings in some resources and bare numbers in
// others.
func decimalField(rec upstream.RawRecord, keys []string) (decimal.Decimal, bool) {
	for _, key := range keys {
		v, ok := rec[key]
		if !ok || v == nil {
			continue
		}
		if d, ok := coerceDecimal(v); ok {
			if d.IsNegative() {
				continue
			}
			return d, true
		}
	}
	return decimal.Zero, false
}

func coerceDecimal(v interface{}) (decimal.Decimal, bool) {
	switch val := v.(type) {
	case string:
		val = strings.TrimSpace(val)
		if val == "" || strings.EqualFold(val, "NA") {
			return decimal.Zero, false
		}
		d, err := decimal.NewFromString(val)
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	case float64:
		return decimal.NewFromFloat(val), true
	case int:
		return decimal.NewFromInt(int64(val)), true
	case int64:
		return decimal.NewFromInt(val), true
	case json.Number:
		d, err := decimal.NewFromString(val.String())
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	default:
		return decimal.Zero, false
	}
}

// trendFromChange derives the record trend from a signed price-change field
// when the source provides one.
func trendFromChange(rec upstream.RawRecord) string {
	for _, key := range changeFields {
		v, ok := rec[key]
		if !ok || v == nil {
			continue
		}
		d, ok := coerceSignedDecimal(v)
		if !ok {
			continue
		}
		switch {
		case d.IsPositive():
			return models.TrendUp
		case d.IsNegative():
			return models.TrendDown
		default:
			return models.TrendStable
		}
	}
	return models.TrendStable
}

func coerceSignedDecimal(v interface{}) (decimal.Decimal, bool) {
	switch val := v.(type) {
	case string:
		val = strings.TrimSpace(val)
		if val == "" {
			return decimal.Zero, false
		}
		d, err := decimal.NewFromString(val)
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	default:
		return coerceDecimal(v)
	}
}
