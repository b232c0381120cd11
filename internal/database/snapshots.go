package database

import (
	"fmt"
	"time"

	"github.com/cardpulse/card-market-service/internal/models"
)

// CreateValueSnapshot records the day's portfolio valuation, replacing
// any earlier snapshot for the same date
func (db *DB) CreateValueSnapshot(s *models.ValueSnapshot) error {
	query := `
		INSERT INTO value_snapshots (
			snapshot_date, total_cards, unique_cards, total_value, created_at
		) VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (snapshot_date) DO UPDATE SET
			total_cards = EXCLUDED.total_cards,
			unique_cards = EXCLUDED.unique_cards,
			total_value = EXCLUDED.total_value
		RETURNING id
	`
	now := time.Now()
	err := db.conn.QueryRow(query,
		s.SnapshotDate, s.TotalCards, s.UniqueCards, s.TotalValue, now,
	).Scan(&s.ID)

	if err != nil {
		return fmt.Errorf("failed to create value snapshot: %w", err)
	}
	s.CreatedAt = now
	return nil
}

// GetValueSnapshots retrieves snapshots on or after the given date,
// oldest first
func (db *DB) GetValueSnapshots(since time.Time) ([]models.ValueSnapshot, error) {
	query := `
		SELECT id, snapshot_date, total_cards, unique_cards, total_value, created_at
		FROM value_snapshots
		WHERE snapshot_date >= $1
		ORDER BY snapshot_date ASC
	`
	rows, err := db.conn.Query(query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to get value snapshots: %w", err)
	}
	defer rows.Close()

	var snapshots []models.ValueSnapshot
	for rows.Next() {
		var s models.ValueSnapshot
		err := rows.Scan(&s.ID, &s.SnapshotDate, &s.TotalCards, &s.UniqueCards, &s.TotalValue, &s.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan value snapshot: %w", err)
		}
		snapshots = append(snapshots, s)
	}

	return snapshots, nil
}
