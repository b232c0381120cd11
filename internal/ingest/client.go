// Package ingest polls the upstream marketplace sales API for watched
// cards and publishes the scraped results to Kafka for the ingestion
// consumer to store.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"

	"github.com/cardpulse/card-market-service/internal/models"
)

// Client fetches sale listings from the upstream marketplace API
type Client struct {
	client  *resty.Client
	baseURL string
}

// salesResponse is the upstream payload shape
type salesResponse struct {
	Sales []upstreamSale `json:"sales"`
}

type upstreamSale struct {
	ListingID      string  `json:"listing_id"`
	ListingURL     string  `json:"listing_url,omitempty"`
	Source         string  `json:"source"`
	Price          float64 `json:"price"`
	SoldDate       string  `json:"sold_date,omitempty"`
	ListingType    string  `json:"listing_type"`
	Treatment      string  `json:"treatment,omitempty"`
	ProductSubtype string  `json:"product_subtype,omitempty"`
}

// NewClient creates an upstream API client
func NewClient(baseURL, apiKey string) *Client {
	client := resty.New()
	client.SetTimeout(30 * time.Second)
	if apiKey != "" {
		client.SetHeader("X-Api-Key", apiKey)
	}

	return &Client{
		client:  client,
		baseURL: baseURL,
	}
}

// ScrapedSale pairs a scraped record with the marketplace it came from
type ScrapedSale struct {
	Source string
	Data   models.SaleData
}

// FetchCardSales retrieves recent sales and active listings for a card
func (c *Client) FetchCardSales(ctx context.Context, setCode, collectorNumber string) ([]ScrapedSale, error) {
	url := fmt.Sprintf("%s/v1/sets/%s/cards/%s/sales", c.baseURL, setCode, collectorNumber)

	resp, err := c.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch card sales: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("upstream returned status %d for %s/%s", resp.StatusCode(), setCode, collectorNumber)
	}

	var payload salesResponse
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return nil, fmt.Errorf("failed to decode sales response: %w", err)
	}

	scrapedAt := time.Now()
	sales := make([]ScrapedSale, 0, len(payload.Sales))
	for _, s := range payload.Sales {
		data := models.SaleData{
			SourceListingID: s.ListingID,
			ListingURL:      s.ListingURL,
			Price:           decimal.NewFromFloat(s.Price),
			ScrapedAt:       scrapedAt,
			ListingType:     s.ListingType,
			Treatment:       s.Treatment,
			ProductSubtype:  s.ProductSubtype,
		}
		if s.SoldDate != "" {
			if d, err := time.Parse(time.RFC3339, s.SoldDate); err == nil {
				data.SoldDate = &d
			}
			// An unparseable sold date falls back to scraped_at
			// downstream; the record is still usable.
		}
		sales = append(sales, ScrapedSale{Source: s.Source, Data: data})
	}

	return sales, nil
}
