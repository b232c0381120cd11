package chart

import (
	"math"
	"sort"
	"time"

	"github.com/cardpulse/card-market-service/internal/models"
)

// Spacing offsets are a visual policy, not a correctness requirement:
// same-day sales are nudged apart so they don't overlap on a time axis,
// and active listings are pushed past "now" so they render as a cluster
// to the right of historical sales. The constants are arbitrary but
// changing them changes rendered output.
const (
	sameDayOffset       = 2 * time.Hour
	activeListingOffset = 6 * time.Hour
)

// ChartPoint is a single plottable point derived from a SaleRecord.
type ChartPoint struct {
	Timestamp      int64   `json:"timestamp"`
	Price          float64 `json:"price"`
	Date           string  `json:"date"`
	Treatment      string  `json:"treatment,omitempty"`
	TreatmentColor string  `json:"treatment_color"`
	IsActive       bool    `json:"is_active"`
}

// rangeDays returns the lookback window for a time range, or 0 for "all".
func rangeDays(timeRange string) int {
	switch timeRange {
	case models.TimeRange7D:
		return 7
	case models.TimeRange30D:
		return 30
	case models.TimeRange90D:
		return 90
	}
	return 0
}

// NormalizeHistory turns raw sale records into an ordered point sequence:
// qualifying sold records first (chronological, ties broken by ascending
// price), then active listings clustered after now. Records with a
// non-positive price or no usable date are dropped silently; an empty
// qualifying set yields an empty slice, which callers render as a
// "no data" state rather than an error.
//
// now is passed explicitly so the output is a pure function of its
// arguments. Calendar-day grouping uses UTC.
func NormalizeHistory(records []models.SaleRecord, timeRange string, now time.Time) []ChartPoint {
	var cutoff time.Time
	if days := rangeDays(timeRange); days > 0 {
		cutoff = now.AddDate(0, 0, -days)
	}

	type soldRecord struct {
		date      time.Time
		price     float64
		treatment string
	}

	var sold []soldRecord
	for _, r := range records {
		if r.ListingType != "" && r.ListingType != models.ListingTypeSold {
			continue
		}
		price := r.Price.InexactFloat64()
		if !validPrice(price) {
			continue
		}
		date := r.EffectiveDate()
		if date.IsZero() {
			continue
		}
		if !cutoff.IsZero() && date.Before(cutoff) {
			continue
		}
		sold = append(sold, soldRecord{date: date, price: price, treatment: r.Treatment})
	}

	sort.SliceStable(sold, func(i, j int) bool {
		if !sold[i].date.Equal(sold[j].date) {
			return sold[i].date.Before(sold[j].date)
		}
		return sold[i].price < sold[j].price
	})

	points := make([]ChartPoint, 0, len(sold))
	dayCounts := make(map[string]int)
	for _, s := range sold {
		day := s.date.UTC().Format("2006-01-02")
		k := dayCounts[day]
		dayCounts[day] = k + 1

		ts := s.date.Add(time.Duration(k) * sameDayOffset)
		points = append(points, ChartPoint{
			Timestamp:      ts.UnixMilli(),
			Price:          s.price,
			Date:           day,
			Treatment:      s.treatment,
			TreatmentColor: TreatmentColor(s.treatment),
		})
	}

	type activeRecord struct {
		price     float64
		treatment string
	}

	var active []activeRecord
	for _, r := range records {
		if r.ListingType != models.ListingTypeActive {
			continue
		}
		price := r.Price.InexactFloat64()
		if !validPrice(price) {
			continue
		}
		active = append(active, activeRecord{price: price, treatment: r.Treatment})
	}

	sort.SliceStable(active, func(i, j int) bool {
		return active[i].price < active[j].price
	})

	for k, a := range active {
		ts := now.Add(time.Duration(k) * activeListingOffset)
		points = append(points, ChartPoint{
			Timestamp:      ts.UnixMilli(),
			Price:          a.price,
			Date:           ts.UTC().Format("2006-01-02"),
			Treatment:      a.treatment,
			TreatmentColor: TreatmentColor(a.treatment),
			IsActive:       true,
		})
	}

	return points
}

// validPrice requires a positive finite value; log-scale plotting
// cannot place zero or negative prices.
func validPrice(p float64) bool {
	return p > 0 && !math.IsInf(p, 0) && !math.IsNaN(p)
}
