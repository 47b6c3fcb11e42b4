package websocket

import (
	"log"
	"time"

	"github.com/alarm-calendar/backend/internal/storage/models"
)

// EventBroadcaster handles broadcasting WebSocket events.
type EventBroadcaster struct {
	hub *Hub
}

// NewEventBroadcaster creates a new event broadcaster.
func NewEventBroadcaster(hub *Hub) *EventBroadcaster {
	return &EventBroadcaster{hub: hub}
}

// BroadcastEventCreated sends an event.created message.
func (b *EventBroadcaster) BroadcastEventCreated(e models.Event) {
	b.broadcast(NewMessage(TypeEventCreated, eventPayload(e)))
}

// BroadcastEventUpdated sends an event.updated message.
func (b *EventBroadcaster) BroadcastEventUpdated(e models.Event) {
	b.broadcast(NewMessage(TypeEventUpdated, eventPayload(e)))
}

// BroadcastEventDeleted sends an event.deleted message.
func (b *EventBroadcaster) BroadcastEventDeleted(eventID string) {
	b.broadcast(NewMessage(TypeEventDeleted, EventPayload{EventID: eventID}))
}

// BroadcastReminderScheduled sends a reminder.scheduled message after a
// reschedule cycle completes.
func (b *EventBroadcaster) BroadcastReminderScheduled(eventID string, key models.PatternKey, fireTimes []time.Time) {
	b.broadcast(NewMessage(TypeReminderScheduled, ReminderScheduledPayload{
		EventID:    eventID,
		PatternKey: string(key),
		Count:      len(fireTimes),
		FireTimes:  fireTimes,
	}))
}

// BroadcastReminderFired delivers a fired reminder to connected clients.
func (b *EventBroadcaster) BroadcastReminderFired(handle, title, body, sound string) {
	b.broadcast(NewMessage(TypeReminderFired, ReminderFiredPayload{
		Handle:  handle,
		Title:   title,
		Body:    body,
		Sound:   sound,
		FiredAt: time.Now().UTC(),
	}))
}

// BroadcastPatternUpdated sends a pattern.updated message.
func (b *EventBroadcaster) BroadcastPatternUpdated(p models.AlarmPattern) {
	b.broadcast(NewMessage(TypePatternUpdated, PatternUpdatedPayload{
		Key:        string(p.Key),
		Name:       p.Name,
		Registered: p.Registered,
	}))
}

// BroadcastNotification sends a general notification to all connected clients.
func (b *EventBroadcaster) BroadcastNotification(level, title, message string) {
	b.broadcast(NewMessage(TypeNotification, NotificationPayload{
		Level:       level,
		Title:       title,
		Message:     message,
		Dismissible: true,
	}))
}

func eventPayload(e models.Event) EventPayload {
	return EventPayload{
		EventID: e.ID,
		Title:   e.Title,
		StartAt: e.StartAt,
		EndAt:   e.EndAt,
		ColorID: string(e.ColorID),
	}
}

func (b *EventBroadcaster) broadcast(msg Message) {
	data, err := msg.JSON()
	if err != nil {
		log.Printf("Error encoding WebSocket message: %v", err)
		return
	}
	b.hub.Broadcast(data)
}
