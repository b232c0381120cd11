package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/cardpulse/card-market-service/internal/models"
)

// CreateCard inserts a card, updating market fields if the card already
// exists for its set and collector number
func (db *DB) CreateCard(c *models.Card) error {
	query := `
		INSERT INTO cards (
			name, set_code, collector_number, rarity, image_url,
			floor_price, lowest_ask, fair_market_price, watched,
			last_updated, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (set_code, collector_number) DO UPDATE SET
			name = EXCLUDED.name,
			rarity = EXCLUDED.rarity,
			image_url = EXCLUDED.image_url,
			watched = EXCLUDED.watched,
			last_updated = EXCLUDED.last_updated
		RETURNING id
	`
	now := time.Now()
	err := db.conn.QueryRow(query,
		c.Name, c.SetCode, c.CollectorNumber, c.Rarity, c.ImageURL,
		c.FloorPrice, c.LowestAsk, c.FairMarketPrice, c.Watched,
		now, now,
	).Scan(&c.ID)

	if err != nil {
		return fmt.Errorf("failed to create card: %w", err)
	}
	c.LastUpdated = now
	c.CreatedAt = now
	return nil
}

// GetCardByID retrieves a card by ID
func (db *DB) GetCardByID(id int) (*models.Card, error) {
	query := `
		SELECT id, name, set_code, collector_number, rarity, image_url,
		       floor_price, lowest_ask, fair_market_price, watched,
		       last_sale_at, last_updated, created_at
		FROM cards
		WHERE id = $1
	`
	return db.scanCard(db.conn.QueryRow(query, id))
}

// GetAllCards retrieves all tracked cards ordered by set and number
func (db *DB) GetAllCards() ([]*models.Card, error) {
	query := `
		SELECT id, name, set_code, collector_number, rarity, image_url,
		       floor_price, lowest_ask, fair_market_price, watched,
		       last_sale_at, last_updated, created_at
		FROM cards
		ORDER BY set_code, collector_number
	`
	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to get cards: %w", err)
	}
	defer rows.Close()

	return db.scanCards(rows)
}

// GetWatchedCards retrieves cards flagged for upstream sale polling
func (db *DB) GetWatchedCards() ([]*models.Card, error) {
	query := `
		SELECT id, name, set_code, collector_number, rarity, image_url,
		       floor_price, lowest_ask, fair_market_price, watched,
		       last_sale_at, last_updated, created_at
		FROM cards
		WHERE watched = true
		ORDER BY set_code, collector_number
	`
	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to get watched cards: %w", err)
	}
	defer rows.Close()

	return db.scanCards(rows)
}

// DeleteCard removes a card and, via cascade, its sale records
func (db *DB) DeleteCard(id int) error {
	result, err := db.conn.Exec(`DELETE FROM cards WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete card: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("card not found: %d", id)
	}
	return nil
}

// UpdateCardMarketStats refreshes the derived market columns after new
// sale records arrive
func (db *DB) UpdateCardMarketStats(id int, floorPrice, lowestAsk *float64, lastSaleAt *time.Time) error {
	query := `
		UPDATE cards
		SET floor_price = $2, lowest_ask = $3,
		    last_sale_at = COALESCE($4, last_sale_at),
		    last_updated = $5
		WHERE id = $1
	`
	_, err := db.conn.Exec(query, id, floorPrice, lowestAsk, lastSaleAt, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update card market stats: %w", err)
	}
	return nil
}

func (db *DB) scanCard(row *sql.Row) (*models.Card, error) {
	var c models.Card
	var rarity, imageURL sql.NullString
	var floorPrice, lowestAsk, fmp sql.NullFloat64
	var lastSaleAt sql.NullTime

	err := row.Scan(
		&c.ID, &c.Name, &c.SetCode, &c.CollectorNumber, &rarity, &imageURL,
		&floorPrice, &lowestAsk, &fmp, &c.Watched,
		&lastSaleAt, &c.LastUpdated, &c.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("card not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get card: %w", err)
	}

	applyCardNullables(&c, rarity, imageURL, floorPrice, lowestAsk, fmp, lastSaleAt)
	return &c, nil
}

func (db *DB) scanCards(rows *sql.Rows) ([]*models.Card, error) {
	var cards []*models.Card
	for rows.Next() {
		var c models.Card
		var rarity, imageURL sql.NullString
		var floorPrice, lowestAsk, fmp sql.NullFloat64
		var lastSaleAt sql.NullTime

		err := rows.Scan(
			&c.ID, &c.Name, &c.SetCode, &c.CollectorNumber, &rarity, &imageURL,
			&floorPrice, &lowestAsk, &fmp, &c.Watched,
			&lastSaleAt, &c.LastUpdated, &c.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}

		applyCardNullables(&c, rarity, imageURL, floorPrice, lowestAsk, fmp, lastSaleAt)
		cards = append(cards, &c)
	}

	return cards, nil
}

func applyCardNullables(c *models.Card, rarity, imageURL sql.NullString, floorPrice, lowestAsk, fmp sql.NullFloat64, lastSaleAt sql.NullTime) {
	if rarity.Valid {
		c.Rarity = rarity.String
	}
	if imageURL.Valid {
		c.ImageURL = imageURL.String
	}
	if floorPrice.Valid {
		c.FloorPrice = &floorPrice.Float64
	}
	if lowestAsk.Valid {
		c.LowestAsk = &lowestAsk.Float64
	}
	if fmp.Valid {
		c.FairMarketPrice = &fmp.Float64
	}
	if lastSaleAt.Valid {
		c.LastSaleAt = &lastSaleAt.Time
	}
}
