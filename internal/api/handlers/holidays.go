package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/alarm-calendar/backend/internal/api/middleware"
	"github.com/alarm-calendar/backend/internal/holiday"
)

// HolidaysResponse lists the holidays on one local day.
type HolidaysResponse struct {
	Day      string            `json:"day"`
	Holidays []holiday.Holiday `json:"holidays"`
}

// HolidayRangeResponse describes the span of the bundled catalog.
type HolidayRangeResponse struct {
	Country string            `json:"country"`
	Range   holiday.YearRange `json:"range"`
}

// ListHolidays returns the holidays on the day named by the day query
// parameter, or the catalog's country and year range when no day is given.
func ListHolidays(svc *holiday.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		day := r.URL.Query().Get("day")

		w.Header().Set("Content-Type", "application/json")

		if day == "" {
			json.NewEncoder(w).Encode(HolidayRangeResponse{
				Country: svc.Country(),
				Range:   svc.Range(),
			})
			return
		}

		if _, err := time.Parse("2006-01-02", day); err != nil {
			middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, "day must be formatted as YYYY-MM-DD")
			return
		}

		json.NewEncoder(w).Encode(HolidaysResponse{
			Day:      day,
			Holidays: svc.ByDayKey(day),
		})
	}
}
