// Package holiday serves the bundled national holiday catalog. Lookups
// use the same YYYY-MM-DD local-day keys as the event day index, so a
// day view can pull events and holidays with one key.
package holiday

import (
	"embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/alarm-calendar/backend/internal/timeutil"
)

//go:embed catalog/jp.json
var catalogFS embed.FS

// Holiday is a single national holiday entry from the bundled catalog.
type Holiday struct {
	Date string `json:"date"`
	Name string `json:"name"`
	Year int    `json:"year"`
}

// YearRange is the inclusive span of years the catalog covers. Lookups
// outside this range return no holidays rather than an error.
type YearRange struct {
	StartYear int `json:"startYear"`
	EndYear   int `json:"endYear"`
}

type catalog struct {
	Country string               `json:"country"`
	Range   YearRange            `json:"range"`
	ByDate  map[string][]Holiday `json:"byDate"`
}

// Service answers holiday lookups against the embedded catalog. The
// catalog is read-only after construction, so Service is safe for
// concurrent use.
type Service struct {
	data catalog
}

// NewService parses the embedded catalog.
func NewService() (*Service, error) {
	raw, err := catalogFS.ReadFile("catalog/jp.json")
	if err != nil {
		return nil, fmt.Errorf("failed to read holiday catalog: %w", err)
	}

	var data catalog
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse holiday catalog: %w", err)
	}

	return &Service{data: data}, nil
}

// ByDayKey returns the holidays falling on the given YYYY-MM-DD local-day
// key. Days with no holiday, and keys outside the catalog range, yield an
// empty slice.
func (s *Service) ByDayKey(key string) []Holiday {
	entries := s.data.ByDate[key]
	out := make([]Holiday, len(entries))
	copy(out, entries)
	return out
}

// ByDate is ByDayKey with the key derived from a wall-clock instant in
// the given zone.
func (s *Service) ByDate(t time.Time, loc *time.Location) []Holiday {
	return s.ByDayKey(timeutil.DayKey(t, loc))
}

// Range returns the span of years the catalog covers.
func (s *Service) Range() YearRange {
	return s.data.Range
}

// Country returns the ISO country code the catalog is authored for.
func (s *Service) Country() string {
	return s.data.Country
}
