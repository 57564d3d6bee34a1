package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/erazemk/nakupi/internal/model"
)

// SaveSnapshot stores the purchase collection as the single cached snapshot,
// replacing any previous one.
func SaveSnapshot(ctx context.Context, db *sql.DB, purchases []model.Purchase) error {
	data, err := json.Marshal(purchases)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	_, err = db.ExecContext(ctx,
		`INSERT INTO snapshot (id, data, fetched_at) VALUES (1, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET data = excluded.data, fetched_at = excluded.fetched_at`,
		string(data), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot returns the cached purchase collection and when it was
// fetched. A nil slice means no snapshot has been saved yet.
func LoadSnapshot(ctx context.Context, db *sql.DB) ([]model.Purchase, time.Time, error) {
	var raw string
	var fetchedAt time.Time
	err := db.QueryRowContext(ctx,
		`SELECT data, fetched_at FROM snapshot WHERE id = 1`,
	).Scan(&raw, &fetchedAt)
	if err == sql.ErrNoRows {
		return nil, time.Time{}, nil
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("loading snapshot: %w", err)
	}

	var purchases []model.Purchase
	if err := json.Unmarshal([]byte(raw), &purchases); err != nil {
		return nil, time.Time{}, fmt.Errorf("parsing snapshot: %w", err)
	}
	return purchases, fetchedAt, nil
}
