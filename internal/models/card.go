package models

import "time"

// CardEvent represents a Kafka event for card changes
type CardEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Card      *Card     `json:"card,omitempty"`
	CardID    int       `json:"card_id"`
	Timestamp time.Time `json:"timestamp"`
}

// Card represents a tracked trading card
type Card struct {
	ID              int        `json:"id"`
	Name            string     `json:"name"`
	SetCode         string     `json:"set_code"`
	CollectorNumber string     `json:"collector_number"`
	Rarity          string     `json:"rarity,omitempty"`
	ImageURL        string     `json:"image_url,omitempty"`
	FloorPrice      *float64   `json:"floor_price,omitempty"`
	LowestAsk       *float64   `json:"lowest_ask,omitempty"`
	FairMarketPrice *float64   `json:"fair_market_price,omitempty"`
	Watched         bool       `json:"watched"`
	LastSaleAt      *time.Time `json:"last_sale_at,omitempty"`
	LastUpdated     time.Time  `json:"last_updated"`
	CreatedAt       time.Time  `json:"created_at"`
}
