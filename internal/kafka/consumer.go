package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/cardpulse/card-market-service/internal/marketplace"
	"github.com/cardpulse/card-market-service/internal/models"
)

// Floor price lookback for the market-stat refresh after ingesting a sale
const floorPriceWindow = 30 * 24 * time.Hour

// SaleRepository defines the database operations the consumer needs
type SaleRepository interface {
	SaleRecordExists(source, sourceListingID string) (bool, error)
	CreateSaleRecord(s *models.SaleRecord) error
	GetRecentFloorPrice(cardID int, since time.Time) (*float64, error)
	GetLowestAsk(cardID int) (*float64, error)
	UpdateCardMarketStats(id int, floorPrice, lowestAsk *float64, lastSaleAt *time.Time) error
}

// ChartInvalidator drops cached chart payloads for a card after its
// sale history changes
type ChartInvalidator interface {
	InvalidateCard(ctx context.Context, cardID int) error
}

// Consumer ingests scraped sale events: it dedups by source listing id,
// stores the sale, refreshes the card's floor/ask columns, and drops
// the card's cached charts.
type Consumer struct {
	reader      *kafka.Reader
	repo        SaleRepository
	invalidator ChartInvalidator
}

// NewConsumer creates a new Kafka consumer for sale events
func NewConsumer(brokers []string, topic, groupID string, repo SaleRepository, invalidator ChartInvalidator) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		MaxWait:        1 * time.Second,
		StartOffset:    kafka.FirstOffset,
		CommitInterval: time.Second,
	})

	return &Consumer{
		reader:      reader,
		repo:        repo,
		invalidator: invalidator,
	}
}

// Start begins consuming messages from Kafka
func (c *Consumer) Start(ctx context.Context) error {
	log.Printf("Starting Kafka consumer for topic: %s", c.reader.Config().Topic)

	for {
		select {
		case <-ctx.Done():
			log.Println("Kafka consumer shutting down...")
			return c.reader.Close()
		default:
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil // Context cancelled, normal shutdown
				}
				log.Printf("Error reading message: %v", err)
				continue
			}

			if err := c.processMessage(ctx, msg); err != nil {
				log.Printf("Error processing message: %v", err)
				// Continue processing other messages
			}
		}
	}
}

// processMessage handles a single Kafka message
func (c *Consumer) processMessage(ctx context.Context, msg kafka.Message) error {
	log.Printf("Received message from partition %d offset %d: key=%s",
		msg.Partition, msg.Offset, string(msg.Key))

	var event models.SaleEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal sale event: %w", err)
	}

	// Only process SALE_SCRAPED events
	if event.EventType != "SALE_SCRAPED" {
		log.Printf("Ignoring event type: %s", event.EventType)
		return nil
	}

	sale, err := c.convertEventToSale(event)
	if err != nil {
		// Malformed individual records are dropped, not retried
		log.Printf("Dropping unusable sale event %s: %v", event.EventID, err)
		return nil
	}

	// Check for duplicate (idempotency)
	exists, err := c.repo.SaleRecordExists(sale.Source, sale.SourceListingID)
	if err != nil {
		return fmt.Errorf("failed to check for duplicate sale: %w", err)
	}
	if exists {
		log.Printf("Sale %s from %s already exists, skipping", sale.SourceListingID, sale.Source)
		return nil
	}

	if err := c.repo.CreateSaleRecord(sale); err != nil {
		return fmt.Errorf("failed to save sale record: %w", err)
	}

	log.Printf("Saved sale record: card=%d %s @ %s (%s/%s)",
		sale.CardID, sale.ListingType, sale.Price, sale.Source, sale.SourceListingID)

	if err := c.refreshMarketStats(sale); err != nil {
		return fmt.Errorf("failed to refresh market stats for card %d: %w", sale.CardID, err)
	}

	if c.invalidator != nil {
		if err := c.invalidator.InvalidateCard(ctx, sale.CardID); err != nil {
			log.Printf("Failed to invalidate chart cache for card %d: %v", sale.CardID, err)
		}
	}

	return nil
}

// convertEventToSale maps a SaleEvent to a SaleRecord model
func (c *Consumer) convertEventToSale(event models.SaleEvent) (*models.SaleRecord, error) {
	data := event.Data

	if data.CardID == 0 {
		return nil, fmt.Errorf("missing card id")
	}
	if !data.Price.IsPositive() {
		return nil, fmt.Errorf("non-positive price: %s", data.Price)
	}

	listingType := data.ListingType
	if listingType == "" {
		listingType = models.ListingTypeSold
	}
	if listingType != models.ListingTypeSold && listingType != models.ListingTypeActive {
		return nil, fmt.Errorf("invalid listing type: %s", data.ListingType)
	}

	source := event.Source
	listingID := data.SourceListingID
	if listingID == "" && data.ListingURL != "" {
		// Scrapers that only forward the listing URL: derive the
		// source and listing id from it.
		link, ok := marketplace.Parse(data.ListingURL)
		if !ok {
			return nil, fmt.Errorf("unrecognized listing url: %s", data.ListingURL)
		}
		source = link.Source
		listingID = link.ProductID
	}
	if source == "" || listingID == "" {
		return nil, fmt.Errorf("missing source listing identity")
	}

	scrapedAt := data.ScrapedAt
	if scrapedAt.IsZero() {
		scrapedAt = event.Timestamp
	}
	if scrapedAt.IsZero() {
		scrapedAt = time.Now()
	}

	return &models.SaleRecord{
		CardID:          data.CardID,
		Source:          source,
		SourceListingID: listingID,
		Price:           data.Price,
		SoldDate:        data.SoldDate,
		ScrapedAt:       scrapedAt,
		ListingType:     listingType,
		Treatment:       data.Treatment,
		ProductSubtype:  data.ProductSubtype,
	}, nil
}

// refreshMarketStats recomputes the card's floor and lowest-ask columns
func (c *Consumer) refreshMarketStats(sale *models.SaleRecord) error {
	floor, err := c.repo.GetRecentFloorPrice(sale.CardID, time.Now().Add(-floorPriceWindow))
	if err != nil {
		return err
	}

	ask, err := c.repo.GetLowestAsk(sale.CardID)
	if err != nil {
		return err
	}

	var lastSaleAt *time.Time
	if sale.ListingType == models.ListingTypeSold {
		d := sale.EffectiveDate()
		lastSaleAt = &d
	}

	return c.repo.UpdateCardMarketStats(sale.CardID, floor, ask, lastSaleAt)
}
