package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/alarm-calendar/backend/internal/storage/models"
)

// ReminderRepository provides data access for the outstanding platform
// notification handles recorded per event.
type ReminderRepository struct {
	BaseRepository
}

// NewReminderRepository creates a new reminder repository.
func NewReminderRepository(db *DB) *ReminderRepository {
	return &ReminderRepository{
		BaseRepository: NewBaseRepository(db),
	}
}

// ReplaceForEvent atomically replaces the recorded handle list for an event.
func (r *ReminderRepository) ReplaceForEvent(ctx context.Context, eventID string, reminders []models.ScheduledReminder) error {
	return r.Transaction(func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM scheduled_reminders WHERE event_id = ?", eventID); err != nil {
			return fmt.Errorf("clearing reminders: %w", err)
		}
		for _, rem := range reminders {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO scheduled_reminders (event_id, handle, fire_at, created_at)
				VALUES (?, ?, ?, ?)
			`, eventID, rem.Handle, rem.FireAt, r.Now()); err != nil {
				return fmt.Errorf("inserting reminder: %w", err)
			}
		}
		return nil
	})
}

// DeleteForEvent removes every recorded handle for an event.
func (r *ReminderRepository) DeleteForEvent(ctx context.Context, eventID string) error {
	_, err := r.DB().ExecContext(ctx, "DELETE FROM scheduled_reminders WHERE event_id = ?", eventID)
	if err != nil {
		return fmt.Errorf("deleting reminders: %w", err)
	}
	return nil
}

// DeleteHandle removes a single recorded handle.
func (r *ReminderRepository) DeleteHandle(ctx context.Context, eventID, handle string) error {
	_, err := r.DB().ExecContext(ctx, `
		DELETE FROM scheduled_reminders WHERE event_id = ? AND handle = ?
	`, eventID, handle)
	if err != nil {
		return fmt.Errorf("deleting reminder handle: %w", err)
	}
	return nil
}

// ListAll retrieves every recorded reminder across all events.
func (r *ReminderRepository) ListAll(ctx context.Context) ([]models.ScheduledReminder, error) {
	rows, err := r.DB().QueryContext(ctx, `
		SELECT event_id, handle, fire_at, created_at
		FROM scheduled_reminders ORDER BY fire_at
	`)
	if err != nil {
		return nil, fmt.Errorf("querying reminders: %w", err)
	}
	defer rows.Close()

	var reminders []models.ScheduledReminder
	for rows.Next() {
		var rem models.ScheduledReminder
		if err := rows.Scan(&rem.EventID, &rem.Handle, &rem.FireAt, &rem.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning reminder: %w", err)
		}
		reminders = append(reminders, rem)
	}
	return reminders, rows.Err()
}
