package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cardpulse/card-market-service/internal/models"
)

// CreateHolding adds a card position to the portfolio
func (db *DB) CreateHolding(h *models.Holding) error {
	query := `
		INSERT INTO holdings (
			card_id, quantity, acquisition_price, acquired_at,
			treatment, notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	now := time.Now()
	if h.Quantity == 0 {
		h.Quantity = 1
	}
	if h.AcquiredAt.IsZero() {
		h.AcquiredAt = now
	}

	err := db.conn.QueryRow(query,
		h.CardID, h.Quantity, h.AcquisitionPrice, h.AcquiredAt,
		h.Treatment, h.Notes, now, now,
	).Scan(&h.ID)

	if err != nil {
		return fmt.Errorf("failed to create holding: %w", err)
	}
	h.CreatedAt = now
	h.UpdatedAt = now
	return nil
}

// GetHoldingByID retrieves a holding by ID
func (db *DB) GetHoldingByID(id int) (*models.Holding, error) {
	query := `
		SELECT id, card_id, quantity, acquisition_price, acquired_at,
		       treatment, notes, created_at, updated_at
		FROM holdings
		WHERE id = $1
	`
	var h models.Holding
	var treatment, notes sql.NullString

	err := db.conn.QueryRow(query, id).Scan(
		&h.ID, &h.CardID, &h.Quantity, &h.AcquisitionPrice, &h.AcquiredAt,
		&treatment, &notes, &h.CreatedAt, &h.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("holding not found: %d", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get holding: %w", err)
	}

	if treatment.Valid {
		h.Treatment = treatment.String
	}
	if notes.Valid {
		h.Notes = notes.String
	}
	return &h, nil
}

// DeleteHolding removes a holding from the portfolio
func (db *DB) DeleteHolding(id int) error {
	result, err := db.conn.Exec(`DELETE FROM holdings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete holding: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("holding not found: %d", id)
	}
	return nil
}

// GetHoldingValuations joins holdings against their cards' current
// floor prices and computes per-holding market value and cost basis
func (db *DB) GetHoldingValuations() ([]models.HoldingValuation, error) {
	query := `
		SELECT h.id, h.card_id, h.quantity, h.acquisition_price, h.acquired_at,
		       h.treatment, h.notes, h.created_at, h.updated_at,
		       c.name, c.floor_price
		FROM holdings h
		JOIN cards c ON c.id = h.card_id
		ORDER BY h.acquired_at DESC
	`
	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to get holding valuations: %w", err)
	}
	defer rows.Close()

	var valuations []models.HoldingValuation
	for rows.Next() {
		var v models.HoldingValuation
		var treatment, notes sql.NullString
		var floorPrice sql.NullFloat64

		err := rows.Scan(
			&v.Holding.ID, &v.Holding.CardID, &v.Holding.Quantity,
			&v.Holding.AcquisitionPrice, &v.Holding.AcquiredAt,
			&treatment, &notes, &v.Holding.CreatedAt, &v.Holding.UpdatedAt,
			&v.CardName, &floorPrice,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan holding valuation: %w", err)
		}

		if treatment.Valid {
			v.Holding.Treatment = treatment.String
		}
		if notes.Valid {
			v.Holding.Notes = notes.String
		}

		qty := decimal.NewFromInt(int64(v.Holding.Quantity))
		v.CostBasis = v.Holding.AcquisitionPrice.Mul(qty)
		if floorPrice.Valid {
			v.FloorPrice = &floorPrice.Float64
			v.MarketValue = decimal.NewFromFloat(floorPrice.Float64).Mul(qty)
		} else {
			// No observed sales yet; value at cost.
			v.MarketValue = v.CostBasis
		}
		v.UnrealizedPnl = v.MarketValue.Sub(v.CostBasis)

		valuations = append(valuations, v)
	}

	return valuations, nil
}
