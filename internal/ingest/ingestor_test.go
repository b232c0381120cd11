package ingest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cardpulse/card-market-service/internal/models"
)

type mockCardSource struct {
	cards []*models.Card
}

func (m *mockCardSource) GetWatchedCards() ([]*models.Card, error) {
	return m.cards, nil
}

type mockFetcher struct {
	sales   map[string][]ScrapedSale // key: setCode/collectorNumber
	failFor map[string]bool
}

func (m *mockFetcher) FetchCardSales(ctx context.Context, setCode, collectorNumber string) ([]ScrapedSale, error) {
	key := setCode + "/" + collectorNumber
	if m.failFor[key] {
		return nil, fmt.Errorf("upstream returned status 503 for %s", key)
	}
	return m.sales[key], nil
}

type mockPublisher struct {
	published []models.SaleData
	sources   []string
}

func (m *mockPublisher) PublishSaleScraped(ctx context.Context, source string, data models.SaleData) error {
	m.published = append(m.published, data)
	m.sources = append(m.sources, source)
	return nil
}

type mockListingStore struct {
	deleted []string // "cardID/source"
	err     error
}

func (m *mockListingStore) DeleteActiveListings(cardID int, source string) error {
	m.deleted = append(m.deleted, fmt.Sprintf("%d/%s", cardID, source))
	return m.err
}

func scraped(source, listingID string, price float64) ScrapedSale {
	return ScrapedSale{
		Source: source,
		Data: models.SaleData{
			SourceListingID: listingID,
			Price:           decimal.NewFromFloat(price),
			ScrapedAt:       time.Now(),
			ListingType:     models.ListingTypeSold,
		},
	}
}

func scrapedActive(source, listingID string, price float64) ScrapedSale {
	s := scraped(source, listingID, price)
	s.Data.ListingType = models.ListingTypeActive
	return s
}

func TestPollOnce(t *testing.T) {
	t.Run("publishes scraped sales with card ids attached", func(t *testing.T) {
		cards := &mockCardSource{cards: []*models.Card{
			{ID: 1, SetCode: "BETA", CollectorNumber: "042"},
			{ID: 2, SetCode: "BETA", CollectorNumber: "051"},
		}}
		fetcher := &mockFetcher{sales: map[string][]ScrapedSale{
			"BETA/042": {scraped("tcgplayer", "L1", 18.50), scraped("ebay", "L2", 21.00)},
			"BETA/051": {scraped("tcgplayer", "L3", 5.25)},
		}}
		publisher := &mockPublisher{}

		ingestor := NewIngestor(cards, fetcher, publisher, nil, time.Minute)
		require.NoError(t, ingestor.PollOnce(context.Background()))

		require.Len(t, publisher.published, 3)
		assert.Equal(t, 1, publisher.published[0].CardID)
		assert.Equal(t, 1, publisher.published[1].CardID)
		assert.Equal(t, 2, publisher.published[2].CardID)
		assert.Equal(t, []string{"tcgplayer", "ebay", "tcgplayer"}, publisher.sources)
	})

	t.Run("one failing card does not stall the cycle", func(t *testing.T) {
		cards := &mockCardSource{cards: []*models.Card{
			{ID: 1, SetCode: "BETA", CollectorNumber: "042"},
			{ID: 2, SetCode: "BETA", CollectorNumber: "051"},
		}}
		fetcher := &mockFetcher{
			sales:   map[string][]ScrapedSale{"BETA/051": {scraped("tcgplayer", "L3", 5.25)}},
			failFor: map[string]bool{"BETA/042": true},
		}
		publisher := &mockPublisher{}

		ingestor := NewIngestor(cards, fetcher, publisher, nil, time.Minute)
		require.NoError(t, ingestor.PollOnce(context.Background()))

		require.Len(t, publisher.published, 1)
		assert.Equal(t, 2, publisher.published[0].CardID)
	})

	t.Run("stored actives are cleared per source before fresh ones publish", func(t *testing.T) {
		cards := &mockCardSource{cards: []*models.Card{
			{ID: 1, SetCode: "BETA", CollectorNumber: "042"},
		}}
		fetcher := &mockFetcher{sales: map[string][]ScrapedSale{
			"BETA/042": {
				scrapedActive("tcgplayer", "A1", 18.50),
				scrapedActive("tcgplayer", "A2", 19.00),
				scraped("ebay", "L1", 21.00),
			},
		}}
		publisher := &mockPublisher{}
		store := &mockListingStore{}

		ingestor := NewIngestor(cards, fetcher, publisher, store, time.Minute)
		require.NoError(t, ingestor.PollOnce(context.Background()))

		// One clear per marketplace with actives in the batch. The
		// ebay batch is sold-only, so its stored actives survive.
		assert.Equal(t, []string{"1/tcgplayer"}, store.deleted)
		require.Len(t, publisher.published, 3)
	})

	t.Run("failed fetch leaves stored actives alone", func(t *testing.T) {
		cards := &mockCardSource{cards: []*models.Card{
			{ID: 1, SetCode: "BETA", CollectorNumber: "042"},
		}}
		fetcher := &mockFetcher{failFor: map[string]bool{"BETA/042": true}}
		store := &mockListingStore{}

		ingestor := NewIngestor(cards, fetcher, &mockPublisher{}, store, time.Minute)
		require.NoError(t, ingestor.PollOnce(context.Background()))

		assert.Empty(t, store.deleted)
	})

	t.Run("clear failure does not block publishing", func(t *testing.T) {
		cards := &mockCardSource{cards: []*models.Card{
			{ID: 1, SetCode: "BETA", CollectorNumber: "042"},
		}}
		fetcher := &mockFetcher{sales: map[string][]ScrapedSale{
			"BETA/042": {scrapedActive("tcgplayer", "A1", 18.50)},
		}}
		publisher := &mockPublisher{}
		store := &mockListingStore{err: fmt.Errorf("connection reset")}

		ingestor := NewIngestor(cards, fetcher, publisher, store, time.Minute)
		require.NoError(t, ingestor.PollOnce(context.Background()))

		require.Len(t, publisher.published, 1)
	})

	t.Run("cancelled context stops the cycle", func(t *testing.T) {
		cards := &mockCardSource{cards: []*models.Card{{ID: 1, SetCode: "BETA", CollectorNumber: "042"}}}
		publisher := &mockPublisher{}
		ingestor := NewIngestor(cards, &mockFetcher{}, publisher, nil, time.Minute)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := ingestor.PollOnce(ctx)
		assert.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, publisher.published)
	})
}
