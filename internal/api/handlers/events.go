package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/alarm-calendar/backend/internal/api/middleware"
	"github.com/alarm-calendar/backend/internal/event"
	"github.com/alarm-calendar/backend/internal/reminder"
	"github.com/alarm-calendar/backend/internal/storage/models"
	"github.com/alarm-calendar/backend/internal/websocket"
)

// Event request/response types

type CreateEventRequest struct {
	Title      string     `json:"title"`
	StartAt    time.Time  `json:"start_at"`
	EndAt      *time.Time `json:"end_at,omitempty"`
	ColorID    string     `json:"color_id,omitempty"`
	Memo       string     `json:"memo,omitempty"`
	PatternKey string     `json:"pattern_key,omitempty"`
}

type UpdateEventRequest struct {
	Title      *string    `json:"title,omitempty"`
	StartAt    *time.Time `json:"start_at,omitempty"`
	EndAt      *time.Time `json:"end_at,omitempty"`
	ColorID    *string    `json:"color_id,omitempty"`
	Memo       *string    `json:"memo,omitempty"`
	PatternKey string     `json:"pattern_key,omitempty"`
}

type EventResponse struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	StartAt       time.Time `json:"start_at"`
	EndAt         time.Time `json:"end_at"`
	ColorID       string    `json:"color_id"`
	Memo          string    `json:"memo,omitempty"`
	ReminderCount int       `json:"reminder_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func eventResponse(e models.Event, reminderCount int) EventResponse {
	return EventResponse{
		ID:            e.ID,
		Title:         e.Title,
		StartAt:       e.StartAt,
		EndAt:         e.EndAt,
		ColorID:       string(e.ColorID),
		Memo:          e.Memo,
		ReminderCount: reminderCount,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

// ListEvents returns events, filtered by a local day or a time range when
// the day / start+end query parameters are present.
func ListEvents(store *event.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		var events []models.Event
		switch {
		case q.Get("day") != "":
			if _, err := time.Parse("2006-01-02", q.Get("day")); err != nil {
				middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "day must be formatted as YYYY-MM-DD")
				return
			}
			events = store.EventsByDayKey(q.Get("day"))
		case q.Get("start") != "" && q.Get("end") != "":
			start, err := time.Parse(time.RFC3339, q.Get("start"))
			if err != nil {
				middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "start must be an RFC 3339 timestamp")
				return
			}
			end, err := time.Parse(time.RFC3339, q.Get("end"))
			if err != nil {
				middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "end must be an RFC 3339 timestamp")
				return
			}
			events = store.EventsInRange(start, end)
		default:
			events = store.All()
		}

		responses := make([]EventResponse, 0, len(events))
		for _, e := range events {
			responses = append(responses, eventResponse(e, 0))
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(responses)
	}
}

// CreateEvent adds a new event and schedules its reminders.
func CreateEvent(store *event.Store, coord *reminder.Coordinator, broadcaster *websocket.EventBroadcaster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateEventRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}
		if req.Title == "" || req.StartAt.IsZero() {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "Title and start_at are required")
			return
		}

		ctx := r.Context()

		var endAt time.Time
		if req.EndAt != nil {
			endAt = *req.EndAt
		}
		ev := store.Add(ctx, event.AddInput{
			Title:   req.Title,
			StartAt: req.StartAt,
			EndAt:   endAt,
			ColorID: models.ColorID(req.ColorID),
			Memo:    req.Memo,
		})

		scheduled := coord.RescheduleForEvent(ctx, ev, models.PatternKey(req.PatternKey))

		if broadcaster != nil {
			broadcaster.BroadcastEventCreated(ev)
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(eventResponse(ev, len(scheduled)))
	}
}

// GetEvent returns a single event by id.
func GetEvent(store *event.Store, coord *reminder.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		ev, ok := store.Get(id)
		if !ok {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Event not found")
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(eventResponse(ev, coord.HandleCount(id)))
	}
}

// UpdateEvent applies a partial update and reschedules reminders.
func UpdateEvent(store *event.Store, coord *reminder.Coordinator, broadcaster *websocket.EventBroadcaster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		var req UpdateEventRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}

		ctx := r.Context()

		patch := event.Patch{
			Title:   req.Title,
			StartAt: req.StartAt,
			EndAt:   req.EndAt,
			Memo:    req.Memo,
		}
		if req.ColorID != nil {
			color := models.ColorID(*req.ColorID)
			patch.ColorID = &color
		}

		ev, ok := store.Update(ctx, id, patch)
		if !ok {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Event not found")
			return
		}

		scheduled := coord.RescheduleForEvent(ctx, ev, models.PatternKey(req.PatternKey))

		if broadcaster != nil {
			broadcaster.BroadcastEventUpdated(ev)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(eventResponse(ev, len(scheduled)))
	}
}

// DeleteEvent removes an event and cancels its reminders.
func DeleteEvent(store *event.Store, coord *reminder.Coordinator, broadcaster *websocket.EventBroadcaster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		ctx := r.Context()

		if !store.Remove(ctx, id) {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Event not found")
			return
		}
		coord.CancelForEvent(ctx, id)

		if broadcaster != nil {
			broadcaster.BroadcastEventDeleted(id)
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// RescheduleEvent re-runs the reminder cycle for an event, optionally
// switching its alarm pattern.
func RescheduleEvent(coord *reminder.Coordinator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]

		var req struct {
			PatternKey string `json:"pattern_key,omitempty"`
		}
		if r.ContentLength > 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
				return
			}
		}

		scheduled, ok := coord.RescheduleByID(r.Context(), id, models.PatternKey(req.PatternKey))
		if !ok {
			middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, "Event not found")
			return
		}

		fireTimes := make([]time.Time, len(scheduled))
		for i, s := range scheduled {
			fireTimes[i] = s.FireAt
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"event_id":   id,
			"count":      len(scheduled),
			"fire_times": fireTimes,
		})
	}
}
