package storage

import (
	"context"
	"fmt"
)

// SettingsRepository provides data access for the key-value settings table.
type SettingsRepository struct {
	BaseRepository
}

// NewSettingsRepository creates a new settings repository.
func NewSettingsRepository(db *DB) *SettingsRepository {
	return &SettingsRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// GetAll retrieves every setting as a string map.
func (r *SettingsRepository) GetAll(ctx context.Context) (map[string]string, error) {
	rows, err := r.DB().QueryContext(ctx, "SELECT key, value FROM settings")
	if err != nil {
		return nil, fmt.Errorf("querying settings: %w", err)
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scanning setting: %w", err)
		}
		settings[key] = value
	}
	return settings, rows.Err()
}

// Set upserts a single setting.
func (r *SettingsRepository) Set(ctx context.Context, key, value string) error {
	_, err := r.DB().ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, key, value)
	if err != nil {
		return fmt.Errorf("saving setting: %w", err)
	}
	return nil
}
