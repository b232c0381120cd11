package ingest

import (
	"context"
	"log"
	"time"

	"github.com/cardpulse/card-market-service/internal/models"
)

// CardSource lists the cards to poll
type CardSource interface {
	GetWatchedCards() ([]*models.Card, error)
}

// SalePublisher forwards scraped sales to the ingestion topic
type SalePublisher interface {
	PublishSaleScraped(ctx context.Context, source string, data models.SaleData) error
}

// SaleFetcher fetches sale listings for one card
type SaleFetcher interface {
	FetchCardSales(ctx context.Context, setCode, collectorNumber string) ([]ScrapedSale, error)
}

// ActiveListingStore clears a card's stored active listings for one
// marketplace so a fresh scrape fully replaces them
type ActiveListingStore interface {
	DeleteActiveListings(cardID int, source string) error
}

// Ingestor polls the upstream API for every watched card and publishes
// the scraped sales. Storage and dedup happen in the Kafka consumer,
// so a poll cycle that re-fetches known listings is harmless.
type Ingestor struct {
	cards     CardSource
	fetcher   SaleFetcher
	publisher SalePublisher
	store     ActiveListingStore
	interval  time.Duration
}

// NewIngestor creates an ingestor polling at the given interval
func NewIngestor(cards CardSource, fetcher SaleFetcher, publisher SalePublisher, store ActiveListingStore, interval time.Duration) *Ingestor {
	return &Ingestor{
		cards:     cards,
		fetcher:   fetcher,
		publisher: publisher,
		store:     store,
		interval:  interval,
	}
}

// Run polls until the context is cancelled. The first cycle starts
// immediately.
func (i *Ingestor) Run(ctx context.Context) error {
	log.Printf("Starting ingestor with poll interval %s", i.interval)

	ticker := time.NewTicker(i.interval)
	defer ticker.Stop()

	for {
		if err := i.PollOnce(ctx); err != nil {
			log.Printf("Poll cycle failed: %v", err)
		}

		select {
		case <-ctx.Done():
			log.Println("Ingestor shutting down...")
			return nil
		case <-ticker.C:
		}
	}
}

// PollOnce fetches and publishes sales for every watched card
func (i *Ingestor) PollOnce(ctx context.Context) error {
	cards, err := i.cards.GetWatchedCards()
	if err != nil {
		return err
	}

	for _, card := range cards {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		sales, err := i.fetcher.FetchCardSales(ctx, card.SetCode, card.CollectorNumber)
		if err != nil {
			// One bad card must not stall the cycle.
			log.Printf("Failed to fetch sales for %s/%s: %v", card.SetCode, card.CollectorNumber, err)
			continue
		}

		// Active listings are a snapshot, not a log: clear the stored
		// ones for every marketplace this batch covers so listings
		// that sold or expired upstream stop lingering.
		i.clearActiveListings(card.ID, sales)

		published := 0
		for _, sale := range sales {
			sale.Data.CardID = card.ID
			if err := i.publisher.PublishSaleScraped(ctx, sale.Source, sale.Data); err != nil {
				log.Printf("Failed to publish sale for card %d: %v", card.ID, err)
				continue
			}
			published++
		}

		log.Printf("Published %d/%d scraped sales for card %d (%s %s)",
			published, len(sales), card.ID, card.SetCode, card.CollectorNumber)
	}

	return nil
}

// clearActiveListings drops the stored actives for each source that
// reported at least one active listing in this batch. Sources absent
// from the batch keep their rows so a partial upstream outage does not
// wipe a marketplace.
func (i *Ingestor) clearActiveListings(cardID int, sales []ScrapedSale) {
	if i.store == nil {
		return
	}

	cleared := make(map[string]bool)
	for _, sale := range sales {
		if sale.Data.ListingType != models.ListingTypeActive || cleared[sale.Source] {
			continue
		}
		if err := i.store.DeleteActiveListings(cardID, sale.Source); err != nil {
			log.Printf("Failed to clear active listings for card %d on %s: %v", cardID, sale.Source, err)
		}
		cleared[sale.Source] = true
	}
}
