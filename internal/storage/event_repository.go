package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/alarm-calendar/backend/internal/storage/models"
)

// EventRepository provides data access for calendar events.
type EventRepository struct {
	BaseRepository
}

// NewEventRepository creates a new event repository.
func NewEventRepository(db *DB) *EventRepository {
	return &EventRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// Create inserts a new event. The caller is expected to have assigned the
// id and normalized the interval already.
func (r *EventRepository) Create(ctx context.Context, e *models.Event) error {
	e.CreatedAt = r.Now()
	e.UpdatedAt = e.CreatedAt

	_, err := r.DB().ExecContext(ctx, `
		INSERT INTO events (id, title, start_at, end_at, color_id, memo, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		e.ID, e.Title, e.StartAt, e.EndAt, string(e.ColorID), e.Memo, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting event: %w", err)
	}

	return nil
}

// GetByID retrieves an event by its id. Returns (nil, nil) when absent.
func (r *EventRepository) GetByID(ctx context.Context, id string) (*models.Event, error) {
	e := &models.Event{}
	var colorID string

	err := r.DB().QueryRowContext(ctx, `
		SELECT id, title, start_at, end_at, color_id, memo, created_at, updated_at
		FROM events WHERE id = ?
	`, id).Scan(
		&e.ID, &e.Title, &e.StartAt, &e.EndAt, &colorID, &e.Memo, &e.CreatedAt, &e.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying event: %w", err)
	}

	e.ColorID = models.CanonicalColorID(models.ColorID(colorID))
	return e, nil
}

// ListAll retrieves every stored event ordered by start time.
func (r *EventRepository) ListAll(ctx context.Context) ([]models.Event, error) {
	rows, err := r.DB().QueryContext(ctx, `
		SELECT id, title, start_at, end_at, color_id, memo, created_at, updated_at
		FROM events ORDER BY start_at
	`)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()

	return r.scanEvents(rows)
}

// Update rewrites an existing event row.
func (r *EventRepository) Update(ctx context.Context, e *models.Event) error {
	e.UpdatedAt = r.Now()

	result, err := r.DB().ExecContext(ctx, `
		UPDATE events SET
			title = ?, start_at = ?, end_at = ?, color_id = ?, memo = ?, updated_at = ?
		WHERE id = ?
	`,
		e.Title, e.StartAt, e.EndAt, string(e.ColorID), e.Memo, e.UpdatedAt, e.ID,
	)
	if err != nil {
		return fmt.Errorf("updating event: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("event not found: %s", e.ID)
	}

	return nil
}

// Delete removes an event by id. Deleting an absent id is not an error.
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	_, err := r.DB().ExecContext(ctx, "DELETE FROM events WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting event: %w", err)
	}
	return nil
}

func (r *EventRepository) scanEvents(rows *sql.Rows) ([]models.Event, error) {
	var events []models.Event
	for rows.Next() {
		var e models.Event
		var colorID string
		if err := rows.Scan(
			&e.ID, &e.Title, &e.StartAt, &e.EndAt, &colorID, &e.Memo, &e.CreatedAt, &e.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		e.ColorID = models.CanonicalColorID(models.ColorID(colorID))
		events = append(events, e)
	}
	return events, rows.Err()
}
