package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/alarm-calendar/backend/internal/storage/models"
)

// PatternRepository provides data access for alarm patterns and the
// event-to-pattern bindings.
type PatternRepository struct {
	BaseRepository
}

// NewPatternRepository creates a new pattern repository.
func NewPatternRepository(db *DB) *PatternRepository {
	return &PatternRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// ListAll retrieves every pattern slot.
func (r *PatternRepository) ListAll(ctx context.Context) ([]models.AlarmPattern, error) {
	rows, err := r.DB().QueryContext(ctx, `
		SELECT key, name, offsets_min, registered, sound_id, updated_at
		FROM alarm_patterns
	`)
	if err != nil {
		return nil, fmt.Errorf("querying patterns: %w", err)
	}
	defer rows.Close()

	var patterns []models.AlarmPattern
	for rows.Next() {
		p, err := scanPattern(rows)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, p)
	}
	return patterns, rows.Err()
}

// Save upserts a pattern slot.
func (r *PatternRepository) Save(ctx context.Context, p *models.AlarmPattern) error {
	p.UpdatedAt = r.Now()

	offsets, err := json.Marshal(p.OffsetsMin)
	if err != nil {
		return fmt.Errorf("encoding offsets: %w", err)
	}

	_, err = r.DB().ExecContext(ctx, `
		INSERT INTO alarm_patterns (key, name, offsets_min, registered, sound_id, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			name = excluded.name,
			offsets_min = excluded.offsets_min,
			registered = excluded.registered,
			sound_id = excluded.sound_id,
			updated_at = excluded.updated_at
	`,
		string(p.Key), p.Name, string(offsets), p.Registered, string(p.SoundID), p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("saving pattern: %w", err)
	}

	return nil
}

// ListBindings retrieves the event id to pattern key map.
func (r *PatternRepository) ListBindings(ctx context.Context) (map[string]models.PatternKey, error) {
	rows, err := r.DB().QueryContext(ctx, "SELECT event_id, pattern_key FROM event_patterns")
	if err != nil {
		return nil, fmt.Errorf("querying pattern bindings: %w", err)
	}
	defer rows.Close()

	bindings := make(map[string]models.PatternKey)
	for rows.Next() {
		var eventID, key string
		if err := rows.Scan(&eventID, &key); err != nil {
			return nil, fmt.Errorf("scanning pattern binding: %w", err)
		}
		bindings[eventID] = models.CanonicalPatternKey(models.PatternKey(key))
	}
	return bindings, rows.Err()
}

// SaveBinding records which pattern key was last used to schedule an event.
func (r *PatternRepository) SaveBinding(ctx context.Context, eventID string, key models.PatternKey) error {
	_, err := r.DB().ExecContext(ctx, `
		INSERT INTO event_patterns (event_id, pattern_key) VALUES (?, ?)
		ON CONFLICT(event_id) DO UPDATE SET pattern_key = excluded.pattern_key
	`, eventID, string(key))
	if err != nil {
		return fmt.Errorf("saving pattern binding: %w", err)
	}
	return nil
}

// DeleteBinding removes the binding for an event. Absent ids are not an error.
func (r *PatternRepository) DeleteBinding(ctx context.Context, eventID string) error {
	_, err := r.DB().ExecContext(ctx, "DELETE FROM event_patterns WHERE event_id = ?", eventID)
	if err != nil {
		return fmt.Errorf("deleting pattern binding: %w", err)
	}
	return nil
}

func scanPattern(rows *sql.Rows) (models.AlarmPattern, error) {
	var p models.AlarmPattern
	var key, soundID, offsets string

	if err := rows.Scan(&key, &p.Name, &offsets, &p.Registered, &soundID, &p.UpdatedAt); err != nil {
		return p, fmt.Errorf("scanning pattern: %w", err)
	}

	p.Key = models.CanonicalPatternKey(models.PatternKey(key))
	p.SoundID = models.CanonicalSoundID(models.SoundID(soundID))
	if err := json.Unmarshal([]byte(offsets), &p.OffsetsMin); err != nil {
		p.OffsetsMin = []int{}
	}
	if p.OffsetsMin == nil {
		p.OffsetsMin = []int{}
	}

	return p, nil
}
