package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Listing type constants
const (
	ListingTypeSold   = "sold"
	ListingTypeActive = "active"
)

// Time range constants for chart queries
const (
	TimeRange7D  = "7d"
	TimeRange30D = "30d"
	TimeRange90D = "90d"
	TimeRangeAll = "all"
)

// Chart type constants
const (
	ChartTypeLine    = "line"
	ChartTypeScatter = "scatter"
)

// SaleRecord represents a single scraped sale or active listing for a card
type SaleRecord struct {
	ID              int             `json:"id"`
	CardID          int             `json:"card_id"`
	Source          string          `json:"source"`
	SourceListingID string          `json:"source_listing_id"`
	Price           decimal.Decimal `json:"price"`
	SoldDate        *time.Time      `json:"sold_date,omitempty"`
	ScrapedAt       time.Time       `json:"scraped_at"`
	ListingType     string          `json:"listing_type"`
	Treatment       string          `json:"treatment,omitempty"`
	ProductSubtype  string          `json:"product_subtype,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
}

// EffectiveDate returns the sale's plot date, falling back from the
// sold date to the scrape time when the marketplace omitted it.
func (s *SaleRecord) EffectiveDate() time.Time {
	if s.SoldDate != nil && !s.SoldDate.IsZero() {
		return *s.SoldDate
	}
	return s.ScrapedAt
}

// SaleEvent represents a Kafka event carrying a scraped sale or listing
type SaleEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Source    string    `json:"source"`
	Data      SaleData  `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// SaleData is the payload of a SaleEvent
type SaleData struct {
	CardID          int             `json:"card_id"`
	SourceListingID string          `json:"source_listing_id"`
	Price           decimal.Decimal `json:"price"`
	SoldDate        *time.Time      `json:"sold_date,omitempty"`
	ScrapedAt       time.Time       `json:"scraped_at"`
	ListingType     string          `json:"listing_type"`
	Treatment       string          `json:"treatment,omitempty"`
	ProductSubtype  string          `json:"product_subtype,omitempty"`
	ListingURL      string          `json:"listing_url,omitempty"`
}

// ValidTimeRange reports whether s is one of the recognized chart ranges.
func ValidTimeRange(s string) bool {
	switch s {
	case TimeRange7D, TimeRange30D, TimeRange90D, TimeRangeAll:
		return true
	}
	return false
}

// ValidChartType reports whether s is one of the recognized chart types.
func ValidChartType(s string) bool {
	return s == ChartTypeLine || s == ChartTypeScatter
}
