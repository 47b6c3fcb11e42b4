package models

import "time"

// ScheduledReminder records one outstanding platform notification for an
// event. Handle is the opaque id the platform returned; it is the only
// token that can cancel the notification later.
type ScheduledReminder struct {
	EventID   string    `json:"event_id"`
	Handle    string    `json:"handle"`
	FireAt    time.Time `json:"fire_at"`
	CreatedAt time.Time `json:"created_at"`
}
