package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ValueSnapshot stores a daily portfolio valuation for historical tracking
type ValueSnapshot struct {
	ID           int             `json:"id"`
	SnapshotDate time.Time       `json:"snapshot_date"`
	TotalCards   int             `json:"total_cards"`
	UniqueCards  int             `json:"unique_cards"`
	TotalValue   decimal.Decimal `json:"total_value"`
	CreatedAt    time.Time       `json:"created_at"`
}
