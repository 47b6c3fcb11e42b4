// Package handlers provides HTTP request handlers for the API endpoints.
package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/alarm-calendar/backend/internal/event"
	"github.com/alarm-calendar/backend/internal/pattern"
	"github.com/alarm-calendar/backend/internal/storage"
	"github.com/alarm-calendar/backend/internal/websocket"
)

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status      string `json:"status"`
	DBConnected bool   `json:"db_connected"`
}

// HealthCheck returns a handler that performs a health check.
func HealthCheck(db *storage.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		dbConnected := db.Ping() == nil

		status := "healthy"
		if !dbConnected {
			status = "degraded"
		}

		response := HealthResponse{
			Status:      status,
			DBConnected: dbConnected,
		}

		w.Header().Set("Content-Type", "application/json")
		if status != "healthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(response)
	}
}

// StatusResponse represents the system status response.
type StatusResponse struct {
	EventsCount      int    `json:"events_count"`
	PatternsCount    int    `json:"patterns_count"`
	PendingReminders int    `json:"pending_reminders"`
	IndexedZone      string `json:"indexed_zone"`
	ConnectedClients int    `json:"connected_clients"`
}

// Status returns a handler that provides system status information.
func Status(db *storage.DB, store *event.Store, registry *pattern.Registry, hub *websocket.Hub) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var pendingReminders int
		db.QueryRowContext(ctx, "SELECT COUNT(*) FROM scheduled_reminders").Scan(&pendingReminders)

		response := StatusResponse{
			EventsCount:      store.Len(),
			PatternsCount:    len(registry.Patterns()),
			PendingReminders: pendingReminders,
			IndexedZone:      store.IndexedZone(),
			ConnectedClients: hub.ClientCount(),
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}
}
