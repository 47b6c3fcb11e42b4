// Package timeutil provides local-calendar date math over UTC-stored
// instants. Every function takes the timezone explicitly; none mutate
// their input.
package timeutil

import (
	"os"
	"time"
)

// DayKeyLayout is the canonical partition key format for the day index.
const DayKeyLayout = "2006-01-02"

// StartOfDay returns the instant of local midnight on t's calendar day
// in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc)
}

// StartOfWeek returns local midnight of the first day of t's week.
// weekStartsOn follows time.Weekday numbering (0=Sunday, 1=Monday).
func StartOfWeek(t time.Time, loc *time.Location, weekStartsOn time.Weekday) time.Time {
	d := StartOfDay(t, loc)
	diff := (int(d.Weekday()) - int(weekStartsOn) + 7) % 7
	return d.AddDate(0, 0, -diff)
}

// StartOfMonth returns local midnight of the first day of t's month.
func StartOfMonth(t time.Time, loc *time.Location) time.Time {
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), 1, 0, 0, 0, 0, loc)
}

// AddDays shifts t by n local calendar days, preserving wall-clock time
// across DST transitions.
func AddDays(t time.Time, n int, loc *time.Location) time.Time {
	return t.In(loc).AddDate(0, 0, n)
}

// AddWeeks shifts t by n local calendar weeks.
func AddWeeks(t time.Time, n int, loc *time.Location) time.Time {
	return AddDays(t, n*7, loc)
}

// AddMonths shifts t by n local calendar months.
func AddMonths(t time.Time, n int, loc *time.Location) time.Time {
	return t.In(loc).AddDate(0, n, 0)
}

// DayKey formats the instant's local calendar date as YYYY-MM-DD. This is
// the canonical partition key for the day index.
func DayKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(DayKeyLayout)
}

// ToUTC normalizes an instant to UTC for storage.
func ToUTC(t time.Time) time.Time {
	return t.UTC()
}

// InLocation views a stored UTC instant in the given zone. The wall-clock
// fields of InLocation(ToUTC(x), x.Location()) always match x.
func InLocation(t time.Time, loc *time.Location) time.Time {
	return t.In(loc)
}

// CurrentTimeZone returns the IANA name of the process timezone. It never
// fails; when the zone cannot be named it falls back to "UTC".
func CurrentTimeZone() string {
	if name := time.Local.String(); name != "" && name != "Local" {
		return name
	}
	if tz := os.Getenv("TZ"); tz != "" {
		return tz
	}
	return "UTC"
}
