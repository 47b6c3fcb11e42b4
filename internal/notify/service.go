// Package notify abstracts the platform notification surface that delivers
// scheduled reminders. The production implementation fires in-process timers
// and pushes fired reminders out over WebSocket; tests substitute a fake.
package notify

import (
	"context"
	"time"

	"github.com/alarm-calendar/backend/internal/storage/models"
)

// Request describes a one-shot notification to deliver at a fixed instant.
type Request struct {
	FireAt time.Time
	Title  string
	Body   string
	Sound  models.SoundID
}

// Service is the delivery backend for scheduled reminders.
//
// Initialize must be called before any scheduling; it is safe to call more
// than once. RequestPermission reports whether the user allows notification
// delivery at all; callers treat a false result as "schedule nothing".
type Service interface {
	Initialize(ctx context.Context) error
	RequestPermission(ctx context.Context) (bool, error)

	// ScheduleOneShot registers a notification and returns an opaque handle
	// that can later cancel it. Requests whose FireAt is not in the future
	// are rejected.
	ScheduleOneShot(ctx context.Context, req Request) (string, error)

	// Cancel revokes a pending notification. Unknown handles are a no-op.
	Cancel(ctx context.Context, handle string) error

	// ListScheduled returns the handles of all notifications still pending
	// on the platform side.
	ListScheduled(ctx context.Context) ([]string, error)
}
