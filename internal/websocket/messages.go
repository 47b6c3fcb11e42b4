package websocket

import (
	"encoding/json"
	"time"
)

// MessageType identifies the type of WebSocket message.
type MessageType string

const (
	// Server -> Client event types
	TypeEventCreated      MessageType = "event.created"
	TypeEventUpdated      MessageType = "event.updated"
	TypeEventDeleted      MessageType = "event.deleted"
	TypeReminderScheduled MessageType = "reminder.scheduled"
	TypeReminderFired     MessageType = "reminder.fired"
	TypePatternUpdated    MessageType = "pattern.updated"
	TypeNotification      MessageType = "notification"

	// Client -> Server command types
	TypeSubscribe   MessageType = "subscribe"
	TypeUnsubscribe MessageType = "unsubscribe"
	TypePing        MessageType = "ping"

	// Server -> Client response types
	TypePong  MessageType = "pong"
	TypeError MessageType = "error"
)

// Message represents a WebSocket message envelope.
type Message struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   any         `json:"payload"`
}

// NewMessage creates a new message with the current timestamp.
func NewMessage(msgType MessageType, payload any) Message {
	return Message{
		Type:      msgType,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// JSON serializes the message to JSON bytes.
func (m Message) JSON() ([]byte, error) {
	return json.Marshal(m)
}

// ParseMessage decodes an incoming client message envelope.
func ParseMessage(data []byte) (Message, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return Message{}, err
	}
	return m, nil
}

// EventPayload is the payload for event.created/updated/deleted events.
type EventPayload struct {
	EventID string    `json:"event_id"`
	Title   string    `json:"title,omitempty"`
	StartAt time.Time `json:"start_at,omitempty"`
	EndAt   time.Time `json:"end_at,omitempty"`
	ColorID string    `json:"color_id,omitempty"`
}

// ReminderScheduledPayload is the payload for reminder.scheduled events.
type ReminderScheduledPayload struct {
	EventID    string      `json:"event_id"`
	PatternKey string      `json:"pattern_key"`
	Count      int         `json:"count"`
	FireTimes  []time.Time `json:"fire_times,omitempty"`
}

// ReminderFiredPayload is the payload for reminder.fired events.
type ReminderFiredPayload struct {
	Handle  string    `json:"handle"`
	Title   string    `json:"title"`
	Body    string    `json:"body"`
	Sound   string    `json:"sound"`
	FiredAt time.Time `json:"fired_at"`
}

// PatternUpdatedPayload is the payload for pattern.updated events.
type PatternUpdatedPayload struct {
	Key        string `json:"key"`
	Name       string `json:"name"`
	Registered bool   `json:"registered"`
}

// NotificationPayload is the payload for notification events.
type NotificationPayload struct {
	Level       string `json:"level"` // info, warning, error, success
	Title       string `json:"title"`
	Message     string `json:"message"`
	Dismissible bool   `json:"dismissible"`
}

// ErrorPayload is the payload for error messages.
type ErrorPayload struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	OriginalType string `json:"original_type,omitempty"`
}
