// Package api provides HTTP routing and handlers for the REST API.
package api

import (
	"github.com/gorilla/mux"

	"github.com/alarm-calendar/backend/internal/api/handlers"
	"github.com/alarm-calendar/backend/internal/api/middleware"
	"github.com/alarm-calendar/backend/internal/event"
	"github.com/alarm-calendar/backend/internal/holiday"
	"github.com/alarm-calendar/backend/internal/pattern"
	"github.com/alarm-calendar/backend/internal/reminder"
	"github.com/alarm-calendar/backend/internal/settings"
	"github.com/alarm-calendar/backend/internal/storage"
	"github.com/alarm-calendar/backend/internal/websocket"
)

// Services bundles the collaborators the API routes depend on.
type Services struct {
	DB          *storage.DB
	Hub         *websocket.Hub
	Broadcaster *websocket.EventBroadcaster
	Store       *event.Store
	Patterns    *pattern.Registry
	Coordinator *reminder.Coordinator
	Settings    *settings.Manager
	Holidays    *holiday.Service
}

// NewRouter creates and configures the HTTP router with all API routes.
func NewRouter(s Services) *mux.Router {
	r := mux.NewRouter()

	r.Use(middleware.Logging)
	r.Use(middleware.ErrorRecovery)

	api := r.PathPrefix("/api").Subrouter()

	// Health and status endpoints
	api.HandleFunc("/health", handlers.HealthCheck(s.DB)).Methods("GET")
	api.HandleFunc("/status", handlers.Status(s.DB, s.Store, s.Patterns, s.Hub)).Methods("GET")

	// WebSocket endpoint
	api.HandleFunc("/ws", handlers.WebSocketUpgrade(s.Hub)).Methods("GET")

	// Event endpoints
	api.HandleFunc("/events", handlers.ListEvents(s.Store)).Methods("GET")
	api.HandleFunc("/events", handlers.CreateEvent(s.Store, s.Coordinator, s.Broadcaster)).Methods("POST")
	api.HandleFunc("/events/{id}", handlers.GetEvent(s.Store, s.Coordinator)).Methods("GET")
	api.HandleFunc("/events/{id}", handlers.UpdateEvent(s.Store, s.Coordinator, s.Broadcaster)).Methods("PATCH")
	api.HandleFunc("/events/{id}", handlers.DeleteEvent(s.Store, s.Coordinator, s.Broadcaster)).Methods("DELETE")
	api.HandleFunc("/events/{id}/reschedule", handlers.RescheduleEvent(s.Coordinator)).Methods("POST")

	// Alarm pattern endpoints
	api.HandleFunc("/patterns", handlers.ListPatterns(s.Patterns)).Methods("GET")
	api.HandleFunc("/patterns/{key}", handlers.SavePattern(s.Patterns, s.Broadcaster)).Methods("PUT")
	api.HandleFunc("/patterns/{key}", handlers.ResetPattern(s.Patterns, s.Broadcaster)).Methods("DELETE")

	// Holiday endpoints
	api.HandleFunc("/holidays", handlers.ListHolidays(s.Holidays)).Methods("GET")

	// Settings endpoints
	api.HandleFunc("/settings", handlers.GetSettings(s.Settings)).Methods("GET")
	api.HandleFunc("/settings", handlers.UpdateSettings(s.Settings)).Methods("PUT")

	return r
}
