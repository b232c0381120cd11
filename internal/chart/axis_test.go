package chart

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardpulse/card-market-service/internal/models"
)

func TestPlanAxis(t *testing.T) {
	t.Run("ticks cover the decade span", func(t *testing.T) {
		plan := PlanAxis([]float64{10, 20, 50, 100})

		assert.Contains(t, plan.Ticks, 10.0)
		assert.Contains(t, plan.Ticks, 100.0)
		assert.LessOrEqual(t, len(plan.Ticks), 7)
	})

	t.Run("all input prices fall inside the padded range", func(t *testing.T) {
		prices := []float64{3.25, 18, 42, 610}
		plan := PlanAxis(prices)

		for _, p := range prices {
			assert.Less(t, plan.YMin, p)
			assert.Greater(t, plan.YMax, p)
		}
	})

	t.Run("equal min and max returns a degenerate but valid range", func(t *testing.T) {
		plan := PlanAxis([]float64{42, 42, 42})

		assert.LessOrEqual(t, plan.YMin, 42.0)
		assert.GreaterOrEqual(t, plan.YMax, 42.0)
		assert.False(t, math.IsNaN(plan.YMin))
		assert.False(t, math.IsNaN(plan.YMax))
	})

	t.Run("non-positive and non-finite prices are ignored", func(t *testing.T) {
		plan := PlanAxis([]float64{-10, 0, math.NaN(), math.Inf(1), 5, 50})

		assert.Less(t, plan.YMin, 5.0)
		assert.Greater(t, plan.YMax, 50.0)
	})

	t.Run("empty price set returns the zero plan", func(t *testing.T) {
		assert.Equal(t, AxisPlan{}, PlanAxis(nil))
		assert.Equal(t, AxisPlan{}, PlanAxis([]float64{-1, 0}))
	})

	t.Run("crowded candidates reduce to powers of ten", func(t *testing.T) {
		// Five decades produce far more than seven 1/2/5 candidates,
		// forcing both reduction stages.
		plan := PlanAxis([]float64{1, 100000})

		require.NotEmpty(t, plan.Ticks)
		assert.LessOrEqual(t, len(plan.Ticks), 7)
		for _, tick := range plan.Ticks {
			exp := math.Log10(tick)
			assert.InDelta(t, math.Round(exp), exp, 1e-9, "tick %v is not a power of ten", tick)
		}
	})

	t.Run("narrow spans keep the 2 and 5 mantissas", func(t *testing.T) {
		plan := PlanAxis([]float64{10, 40})

		assert.Contains(t, plan.Ticks, 20.0)
	})

	t.Run("ticks are ascending", func(t *testing.T) {
		plan := PlanAxis([]float64{5, 2000})

		for i := 1; i < len(plan.Ticks); i++ {
			assert.Less(t, plan.Ticks[i-1], plan.Ticks[i])
		}
	})
}

func TestBuild(t *testing.T) {
	now := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)

	t.Run("reference prices join the axis domain", func(t *testing.T) {
		floor := 2.0
		ask := 500.0
		records := []models.SaleRecord{soldRecord(50, "2025-01-05", "")}

		c := Build(7, records, Options{
			TimeRange:  models.TimeRangeAll,
			ChartType:  models.ChartTypeLine,
			FloorPrice: &floor,
			LowestAsk:  &ask,
			Now:        now,
		})

		assert.Less(t, c.Axis.YMin, floor)
		assert.Greater(t, c.Axis.YMax, ask)
		assert.False(t, c.NoData)
		assert.Equal(t, 7, c.CardID)
	})

	t.Run("no qualifying records sets the no-data flag", func(t *testing.T) {
		c := Build(1, nil, Options{
			TimeRange: models.TimeRange7D,
			ChartType: models.ChartTypeScatter,
			Now:       now,
		})

		assert.True(t, c.NoData)
		assert.Empty(t, c.Points)
		assert.Equal(t, AxisPlan{}, c.Axis)
	})

	t.Run("chart type is echoed back unchanged", func(t *testing.T) {
		c := Build(1, nil, Options{TimeRange: models.TimeRangeAll, ChartType: models.ChartTypeScatter, Now: now})
		assert.Equal(t, models.ChartTypeScatter, c.ChartType)
	})
}
