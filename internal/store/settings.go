// Package store persists the local cache: UI preferences and the last good
// snapshot of the purchase collection. The backend owns everything else.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// GetSetting returns the value for a settings key, or "" if unset.
func GetSetting(ctx context.Context, db *sql.DB, key string) (string, error) {
	var value string
	err := db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = ?`, key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("getting setting %q: %w", key, err)
	}
	return value, nil
}

// SetSetting stores a settings value, replacing any existing one.
func SetSetting(ctx context.Context, db *sql.DB, key, value string) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("setting %q: %w", key, err)
	}
	return nil
}

// Preferences are UI preferences kept on this machine only; they are never
// sent to the backend.
type Preferences struct {
	Language      string `json:"language"`
	Timezone      string `json:"timezone"`
	DateFormat    string `json:"date_format"`
	CurrencyCode  string `json:"currency_code"`
	SortField     string `json:"sort_field"`
	SortDirection string `json:"sort_direction"`
}

// DefaultPreferences returns the preferences for a fresh install.
func DefaultPreferences() Preferences {
	return Preferences{
		Language:     "en",
		Timezone:     "America/New_York",
		DateFormat:   "MM/DD/YYYY",
		CurrencyCode: "USD",
	}
}

const preferencesKey = "preferences"

// LoadPreferences returns the saved preferences, falling back to defaults
// when none are saved yet.
func LoadPreferences(ctx context.Context, db *sql.DB) (Preferences, error) {
	raw, err := GetSetting(ctx, db, preferencesKey)
	if err != nil {
		return Preferences{}, err
	}
	if raw == "" {
		return DefaultPreferences(), nil
	}

	prefs := DefaultPreferences()
	if err := json.Unmarshal([]byte(raw), &prefs); err != nil {
		return Preferences{}, fmt.Errorf("parsing saved preferences: %w", err)
	}
	return prefs, nil
}

// SavePreferences stores the preferences.
func SavePreferences(ctx context.Context, db *sql.DB, prefs Preferences) error {
	data, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("encoding preferences: %w", err)
	}
	return SetSetting(ctx, db, preferencesKey, string(data))
}
