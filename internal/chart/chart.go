// Package chart derives price-history chart data from raw sale records:
// a history normalizer that produces an ordered plottable point sequence,
// and a log-scale axis planner that fits every visible price inside a
// padded range with readable tick values. Both transforms are pure and
// deterministic; callers that want memoization cache the assembled Chart
// (see internal/cache).
package chart

import (
	"time"

	"github.com/cardpulse/card-market-service/internal/models"
)

// Options configures a chart build.
type Options struct {
	TimeRange  string
	ChartType  string
	FloorPrice *float64
	LowestAsk  *float64
	Now        time.Time
}

// Chart is the assembled chart payload served to rendering clients.
type Chart struct {
	CardID     int          `json:"card_id"`
	TimeRange  string       `json:"time_range"`
	ChartType  string       `json:"chart_type"`
	Points     []ChartPoint `json:"points"`
	Axis       AxisPlan     `json:"axis"`
	FloorPrice *float64     `json:"floor_price,omitempty"`
	LowestAsk  *float64     `json:"lowest_ask,omitempty"`
	NoData     bool         `json:"no_data"`
}

// Build normalizes the records for the requested range and plans the
// axis over the resulting prices plus any reference lines. Reference
// prices join the axis domain so floor/ask lines always render inside
// the visible range.
func Build(cardID int, records []models.SaleRecord, opts Options) Chart {
	points := NormalizeHistory(records, opts.TimeRange, opts.Now)

	prices := make([]float64, 0, len(points)+2)
	for _, p := range points {
		prices = append(prices, p.Price)
	}
	if opts.FloorPrice != nil {
		prices = append(prices, *opts.FloorPrice)
	}
	if opts.LowestAsk != nil {
		prices = append(prices, *opts.LowestAsk)
	}

	return Chart{
		CardID:     cardID,
		TimeRange:  opts.TimeRange,
		ChartType:  opts.ChartType,
		Points:     points,
		Axis:       PlanAxis(prices),
		FloorPrice: opts.FloorPrice,
		LowestAsk:  opts.LowestAsk,
		NoData:     len(points) == 0,
	}
}
