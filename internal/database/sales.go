package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/cardpulse/card-market-service/internal/models"
)

// CreateSaleRecord inserts a scraped sale or active listing
func (db *DB) CreateSaleRecord(s *models.SaleRecord) error {
	query := `
		INSERT INTO sale_records (
			card_id, source, source_listing_id, price, sold_date,
			scraped_at, listing_type, treatment, product_subtype, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	now := time.Now()
	err := db.conn.QueryRow(query,
		s.CardID, s.Source, s.SourceListingID, s.Price, s.SoldDate,
		s.ScrapedAt, s.ListingType, s.Treatment, s.ProductSubtype, now,
	).Scan(&s.ID)

	if err != nil {
		return fmt.Errorf("failed to create sale record: %w", err)
	}
	s.CreatedAt = now
	return nil
}

// SaleRecordExists checks if a sale with the given source listing id
// was already ingested
func (db *DB) SaleRecordExists(source, sourceListingID string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM sale_records WHERE source = $1 AND source_listing_id = $2)`
	var exists bool
	err := db.conn.QueryRow(query, source, sourceListingID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check sale record existence: %w", err)
	}
	return exists, nil
}

// GetSaleRecordsByCard retrieves all sale records for a card, oldest
// first. Range filtering happens in the chart normalizer so the same
// rows serve every requested window.
func (db *DB) GetSaleRecordsByCard(cardID int) ([]models.SaleRecord, error) {
	query := `
		SELECT id, card_id, source, source_listing_id, price, sold_date,
		       scraped_at, listing_type, treatment, product_subtype, created_at
		FROM sale_records
		WHERE card_id = $1
		ORDER BY COALESCE(sold_date, scraped_at) ASC
	`
	rows, err := db.conn.Query(query, cardID)
	if err != nil {
		return nil, fmt.Errorf("failed to get sale records: %w", err)
	}
	defer rows.Close()

	var sales []models.SaleRecord
	for rows.Next() {
		var s models.SaleRecord
		var soldDate sql.NullTime
		var treatment, subtype sql.NullString

		err := rows.Scan(
			&s.ID, &s.CardID, &s.Source, &s.SourceListingID, &s.Price, &soldDate,
			&s.ScrapedAt, &s.ListingType, &treatment, &subtype, &s.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sale record: %w", err)
		}

		if soldDate.Valid {
			s.SoldDate = &soldDate.Time
		}
		if treatment.Valid {
			s.Treatment = treatment.String
		}
		if subtype.Valid {
			s.ProductSubtype = subtype.String
		}
		sales = append(sales, s)
	}

	return sales, nil
}

// GetRecentFloorPrice returns the lowest sold price for a card since
// the given instant, or nil when no qualifying sale exists
func (db *DB) GetRecentFloorPrice(cardID int, since time.Time) (*float64, error) {
	query := `
		SELECT MIN(price)
		FROM sale_records
		WHERE card_id = $1
		  AND listing_type = $2
		  AND price > 0
		  AND COALESCE(sold_date, scraped_at) >= $3
	`
	var floor sql.NullFloat64
	err := db.conn.QueryRow(query, cardID, models.ListingTypeSold, since).Scan(&floor)
	if err != nil {
		return nil, fmt.Errorf("failed to get floor price: %w", err)
	}
	if !floor.Valid {
		return nil, nil
	}
	return &floor.Float64, nil
}

// GetLowestAsk returns the cheapest currently active listing price for
// a card, or nil when there are no active listings
func (db *DB) GetLowestAsk(cardID int) (*float64, error) {
	query := `
		SELECT MIN(price)
		FROM sale_records
		WHERE card_id = $1 AND listing_type = $2 AND price > 0
	`
	var ask sql.NullFloat64
	err := db.conn.QueryRow(query, cardID, models.ListingTypeActive).Scan(&ask)
	if err != nil {
		return nil, fmt.Errorf("failed to get lowest ask: %w", err)
	}
	if !ask.Valid {
		return nil, nil
	}
	return &ask.Float64, nil
}

// DeleteActiveListings removes a card's active listings from one
// source ahead of a fresh scrape so stale asks don't linger
func (db *DB) DeleteActiveListings(cardID int, source string) error {
	query := `DELETE FROM sale_records WHERE card_id = $1 AND source = $2 AND listing_type = $3`
	_, err := db.conn.Exec(query, cardID, source, models.ListingTypeActive)
	if err != nil {
		return fmt.Errorf("failed to delete active listings: %w", err)
	}
	return nil
}
