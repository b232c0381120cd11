package chart

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardpulse/card-market-service/internal/models"
)

func soldRecord(price float64, soldDate string, treatment string) models.SaleRecord {
	d, err := time.Parse("2006-01-02", soldDate)
	if err != nil {
		panic(err)
	}
	return models.SaleRecord{
		Price:       decimal.NewFromFloat(price),
		SoldDate:    &d,
		ScrapedAt:   d,
		ListingType: models.ListingTypeSold,
		Treatment:   treatment,
	}
}

func activeRecord(price float64, scrapedAt time.Time) models.SaleRecord {
	return models.SaleRecord{
		Price:       decimal.NewFromFloat(price),
		ScrapedAt:   scrapedAt,
		ListingType: models.ListingTypeActive,
	}
}

func TestNormalizeHistory(t *testing.T) {
	now := time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)

	t.Run("includes every valid sold record exactly once for range all", func(t *testing.T) {
		records := []models.SaleRecord{
			soldRecord(10, "2024-11-01", ""),
			soldRecord(25, "2024-12-15", "Foil"),
			soldRecord(99.50, "2025-01-05", ""),
		}

		points := NormalizeHistory(records, models.TimeRangeAll, now)
		require.Len(t, points, 3)

		prices := []float64{points[0].Price, points[1].Price, points[2].Price}
		assert.ElementsMatch(t, []float64{10, 25, 99.50}, prices)
	})

	t.Run("excludes records outside the range cutoff", func(t *testing.T) {
		records := []models.SaleRecord{
			soldRecord(10, "2025-01-01", ""),
			soldRecord(20, "2025-01-08", ""),
		}

		points := NormalizeHistory(records, models.TimeRange7D, now)
		require.Len(t, points, 1)
		assert.Equal(t, 20.0, points[0].Price)
	})

	t.Run("empty listing type counts as sold", func(t *testing.T) {
		r := soldRecord(15, "2025-01-08", "")
		r.ListingType = ""

		points := NormalizeHistory([]models.SaleRecord{r}, models.TimeRange30D, now)
		require.Len(t, points, 1)
		assert.False(t, points[0].IsActive)
	})

	t.Run("falls back to scraped time when sold date is missing", func(t *testing.T) {
		r := models.SaleRecord{
			Price:       decimal.NewFromFloat(30),
			ScrapedAt:   time.Date(2025, 1, 9, 8, 0, 0, 0, time.UTC),
			ListingType: models.ListingTypeSold,
		}

		points := NormalizeHistory([]models.SaleRecord{r}, models.TimeRange7D, now)
		require.Len(t, points, 1)
		assert.Equal(t, "2025-01-09", points[0].Date)
	})

	t.Run("drops malformed records silently", func(t *testing.T) {
		records := []models.SaleRecord{
			{Price: decimal.Zero, ScrapedAt: now, ListingType: models.ListingTypeSold},
			{Price: decimal.NewFromFloat(-5), ScrapedAt: now, ListingType: models.ListingTypeSold},
			{Price: decimal.NewFromFloat(10), ListingType: models.ListingTypeSold}, // no usable date
			{Price: decimal.NewFromFloat(10), ScrapedAt: now, ListingType: "pending"},
		}

		points := NormalizeHistory(records, models.TimeRangeAll, now)
		assert.Empty(t, points)
	})

	t.Run("same-day sales are spaced two hours apart, lower price first", func(t *testing.T) {
		records := []models.SaleRecord{
			soldRecord(20, "2025-01-05", ""),
			soldRecord(10, "2025-01-05", ""),
		}

		points := NormalizeHistory(records, models.TimeRangeAll, now)
		require.Len(t, points, 2)

		assert.Equal(t, 10.0, points[0].Price)
		assert.Equal(t, 20.0, points[1].Price)
		assert.Equal(t, (2 * time.Hour).Milliseconds(), points[1].Timestamp-points[0].Timestamp)
		assert.Equal(t, points[0].Date, points[1].Date)
	})

	t.Run("active listings cluster after now in ascending price order", func(t *testing.T) {
		records := []models.SaleRecord{
			activeRecord(30, now),
			activeRecord(10, now),
			activeRecord(20, now),
		}

		points := NormalizeHistory(records, models.TimeRangeAll, now)
		require.Len(t, points, 3)

		assert.Equal(t, []float64{10, 20, 30}, []float64{points[0].Price, points[1].Price, points[2].Price})
		assert.Equal(t, now.UnixMilli(), points[0].Timestamp)
		assert.Equal(t, now.Add(6*time.Hour).UnixMilli(), points[1].Timestamp)
		assert.Equal(t, now.Add(12*time.Hour).UnixMilli(), points[2].Timestamp)
		for _, p := range points {
			assert.True(t, p.IsActive)
		}
	})

	t.Run("sold points precede active points", func(t *testing.T) {
		records := []models.SaleRecord{
			activeRecord(50, now),
			soldRecord(10, "2025-01-05", ""),
		}

		points := NormalizeHistory(records, models.TimeRangeAll, now)
		require.Len(t, points, 2)
		assert.False(t, points[0].IsActive)
		assert.True(t, points[1].IsActive)
	})

	t.Run("identical inputs produce identical output", func(t *testing.T) {
		records := []models.SaleRecord{
			soldRecord(10, "2025-01-05", "Foil"),
			soldRecord(20, "2025-01-05", ""),
			activeRecord(33, now),
		}

		first := NormalizeHistory(records, models.TimeRange30D, now)
		second := NormalizeHistory(records, models.TimeRange30D, now)
		assert.Equal(t, first, second)
	})

	t.Run("no qualifying records yields empty output", func(t *testing.T) {
		points := NormalizeHistory(nil, models.TimeRangeAll, now)
		assert.Empty(t, points)
	})
}

func TestTreatmentColor(t *testing.T) {
	t.Run("formless beats foil on combined treatments", func(t *testing.T) {
		formless := TreatmentColor("Formless Foil")
		foil := TreatmentColor("Classic Foil")

		assert.NotEqual(t, foil, formless)
		assert.Equal(t, TreatmentColor("formless"), formless)
	})

	t.Run("matching is case-insensitive", func(t *testing.T) {
		assert.Equal(t, TreatmentColor("foil"), TreatmentColor("FOIL"))
	})

	t.Run("unknown treatments get the default color", func(t *testing.T) {
		assert.Equal(t, DefaultTreatmentColor, TreatmentColor("Standard"))
		assert.Equal(t, DefaultTreatmentColor, TreatmentColor(""))
	})
}
