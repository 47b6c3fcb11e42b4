// Package models defines the domain types shared by storage and services.
package models

import (
	"time"
)

// Event represents a single calendar event. StartAt and EndAt are stored
// as UTC instants; local-day placement is derived at index time.
type Event struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	StartAt   time.Time `json:"start_at"`
	EndAt     time.Time `json:"end_at"`
	ColorID   ColorID   `json:"color_id"`
	Memo      string    `json:"memo,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DefaultEventDuration is substituted when an event is saved with
// end_at <= start_at.
const DefaultEventDuration = 30 * time.Minute

// NormalizeInterval enforces EndAt > StartAt. An invalid interval is not
// an error; the end is silently moved to StartAt + DefaultEventDuration.
func (e *Event) NormalizeInterval() {
	if !e.EndAt.After(e.StartAt) {
		e.EndAt = e.StartAt.Add(DefaultEventDuration)
	}
}

// Overlaps reports whether the event's [StartAt, EndAt) interval
// intersects [start, end).
func (e *Event) Overlaps(start, end time.Time) bool {
	return e.StartAt.Before(end) && e.EndAt.After(start)
}

// Duration returns the length of the event.
func (e *Event) Duration() time.Duration {
	return e.EndAt.Sub(e.StartAt)
}

// ColorID tags an event with one of the fixed palette colors.
type ColorID string

const (
	ColorRed    ColorID = "red"
	ColorBlue   ColorID = "blue"
	ColorGreen  ColorID = "green"
	ColorAmber  ColorID = "amber"
	ColorPurple ColorID = "purple"
	ColorTeal   ColorID = "teal"
)

// DefaultColorID is applied when an event carries no color or an
// unrecognized one.
const DefaultColorID = ColorBlue

// Colors lists the palette in display order.
var Colors = []ColorID{
	ColorRed, ColorBlue, ColorGreen, ColorAmber, ColorPurple, ColorTeal,
}

// legacyColorIDs maps tags from the pre-palette-rework releases onto the
// current set.
var legacyColorIDs = map[ColorID]ColorID{
	"orange": ColorAmber,
	"sky":    ColorBlue,
	"lime":   ColorGreen,
}

// CanonicalColorID migrates any stored tag to a member of the current
// palette. Unknown tags fall back to DefaultColorID.
func CanonicalColorID(id ColorID) ColorID {
	for _, c := range Colors {
		if id == c {
			return c
		}
	}
	if c, ok := legacyColorIDs[id]; ok {
		return c
	}
	return DefaultColorID
}
