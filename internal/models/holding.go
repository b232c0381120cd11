package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Holding represents a card position in the user's portfolio
type Holding struct {
	ID               int             `json:"id"`
	CardID           int             `json:"card_id"`
	Quantity         int             `json:"quantity"`
	AcquisitionPrice decimal.Decimal `json:"acquisition_price"`
	AcquiredAt       time.Time       `json:"acquired_at"`
	Treatment        string          `json:"treatment,omitempty"`
	Notes            string          `json:"notes,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// HoldingValuation pairs a holding with its current market value
type HoldingValuation struct {
	Holding       Holding         `json:"holding"`
	CardName      string          `json:"card_name"`
	FloorPrice    *float64        `json:"floor_price,omitempty"`
	MarketValue   decimal.Decimal `json:"market_value"`
	CostBasis     decimal.Decimal `json:"cost_basis"`
	UnrealizedPnl decimal.Decimal `json:"unrealized_pnl"`
}

// PortfolioSummary aggregates the current portfolio valuation
type PortfolioSummary struct {
	TotalCards    int                `json:"total_cards"`
	UniqueCards   int                `json:"unique_cards"`
	TotalValue    decimal.Decimal    `json:"total_value"`
	TotalCost     decimal.Decimal    `json:"total_cost"`
	UnrealizedPnl decimal.Decimal    `json:"unrealized_pnl"`
	Holdings      []HoldingValuation `json:"holdings"`
	AsOf          time.Time          `json:"as_of"`
}
