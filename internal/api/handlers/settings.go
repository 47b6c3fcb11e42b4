package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/alarm-calendar/backend/internal/api/middleware"
	"github.com/alarm-calendar/backend/internal/settings"
)

// SettingsResponse represents settings in API responses.
type SettingsResponse struct {
	PremiumEnabled       string `json:"premium_enabled"`
	NotificationsEnabled string `json:"notifications_enabled"`
	WeekStartsOn         string `json:"week_starts_on"`
}

// GetSettings returns all settings.
func GetSettings(manager *settings.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all := manager.All()
		response := SettingsResponse{
			PremiumEnabled:       all[settings.KeyPremiumEnabled],
			NotificationsEnabled: all[settings.KeyNotificationsEnabled],
			WeekStartsOn:         all[settings.KeyWeekStartsOn],
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}
}

// UpdateSettings updates settings. Empty fields are left unchanged.
func UpdateSettings(manager *settings.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		var req SettingsResponse
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}

		updates := map[string]string{
			settings.KeyPremiumEnabled:       req.PremiumEnabled,
			settings.KeyNotificationsEnabled: req.NotificationsEnabled,
			settings.KeyWeekStartsOn:         req.WeekStartsOn,
		}
		for key, value := range updates {
			if value == "" {
				continue
			}
			if err := manager.Set(ctx, key, value); err != nil {
				middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, "Failed to update settings")
				return
			}
		}

		all := manager.All()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(SettingsResponse{
			PremiumEnabled:       all[settings.KeyPremiumEnabled],
			NotificationsEnabled: all[settings.KeyNotificationsEnabled],
			WeekStartsOn:         all[settings.KeyWeekStartsOn],
		})
	}
}
