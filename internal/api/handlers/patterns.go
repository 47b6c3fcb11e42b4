package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/alarm-calendar/backend/internal/api/middleware"
	"github.com/alarm-calendar/backend/internal/pattern"
	"github.com/alarm-calendar/backend/internal/reminder"
	"github.com/alarm-calendar/backend/internal/storage/models"
	"github.com/alarm-calendar/backend/internal/websocket"
)

// Pattern request/response types

type SavePatternRequest struct {
	Name       string `json:"name"`
	OffsetsMin []int  `json:"offsets_min"`
	SoundID    string `json:"sound_id,omitempty"`
}

type PatternResponse struct {
	Key          string   `json:"key"`
	Name         string   `json:"name"`
	OffsetsMin   []int    `json:"offsets_min"`
	OffsetLabels []string `json:"offset_labels"`
	Registered   bool     `json:"registered"`
	SoundID      string   `json:"sound_id"`
}

func patternResponse(p models.AlarmPattern) PatternResponse {
	labels := make([]string, len(p.OffsetsMin))
	for i, m := range p.OffsetsMin {
		labels[i] = reminder.FormatOffsetLabel(m)
	}
	return PatternResponse{
		Key:          string(p.Key),
		Name:         p.Name,
		OffsetsMin:   p.OffsetsMin,
		OffsetLabels: labels,
		Registered:   p.Registered,
		SoundID:      string(p.SoundID),
	}
}

// ListPatterns returns every pattern slot.
func ListPatterns(registry *pattern.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		patterns := registry.Patterns()
		responses := make([]PatternResponse, 0, len(patterns))
		for _, p := range patterns {
			responses = append(responses, patternResponse(p))
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(responses)
	}
}

// SavePattern registers or overwrites a custom pattern slot.
func SavePattern(registry *pattern.Registry, broadcaster *websocket.EventBroadcaster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := models.CanonicalPatternKey(models.PatternKey(mux.Vars(r)["key"]))

		var req SavePatternRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
			return
		}

		ok := registry.SavePattern(r.Context(), key, pattern.SaveInput{
			Name:       req.Name,
			OffsetsMin: req.OffsetsMin,
			SoundID:    models.SoundID(req.SoundID),
		})
		if !ok {
			middleware.WriteError(w, http.StatusForbidden, middleware.ErrValidation, "This pattern slot cannot be modified")
			return
		}

		p, _ := registry.Pattern(key)
		if broadcaster != nil {
			broadcaster.BroadcastPatternUpdated(p)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(patternResponse(p))
	}
}

// ResetPattern restores a custom slot to its factory state.
func ResetPattern(registry *pattern.Registry, broadcaster *websocket.EventBroadcaster) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := models.CanonicalPatternKey(models.PatternKey(mux.Vars(r)["key"]))

		if !registry.ResetPattern(r.Context(), key) {
			middleware.WriteError(w, http.StatusForbidden, middleware.ErrValidation, "This pattern slot cannot be reset")
			return
		}

		p, _ := registry.Pattern(key)
		if broadcaster != nil {
			broadcaster.BroadcastPatternUpdated(p)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(patternResponse(p))
	}
}
