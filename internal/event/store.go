// Package event owns the canonical set of calendar events and the derived
// local-day index. All mutation goes through the Store; the index is never
// written directly by callers.
package event

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/alarm-calendar/backend/internal/storage"
	"github.com/alarm-calendar/backend/internal/storage/models"
	"github.com/alarm-calendar/backend/internal/timeutil"
)

// Repository is the persistence seam for the store. *storage.EventRepository
// satisfies it; tests substitute an in-memory fake. A nil Repository makes
// the store memory-only.
type Repository interface {
	ListAll(ctx context.Context) ([]models.Event, error)
	Create(ctx context.Context, e *models.Event) error
	Update(ctx context.Context, e *models.Event) error
	Delete(ctx context.Context, id string) error
}

// Store holds every event in memory, persists mutations write-through, and
// maintains the derived day index. Persistence failures are logged, never
// propagated: the calendar must keep accepting events.
type Store struct {
	mu   sync.RWMutex
	repo Repository

	events map[string]models.Event

	// index maps local day keys (YYYY-MM-DD) to event ids ordered by
	// ascending start time. An event spanning several local days appears
	// under every day it overlaps.
	index   map[string][]string
	indexTZ string

	// locFunc supplies the zone the index is built against. Overridable
	// for tests; defaults to the process zone.
	locFunc func() *time.Location
}

// AddInput carries the caller-supplied fields for a new event. Title
// validation (non-empty) is the caller's job.
type AddInput struct {
	Title   string
	StartAt time.Time
	EndAt   time.Time
	ColorID models.ColorID
	Memo    string
}

// Patch is a partial update merged over an existing event. Nil fields are
// left untouched.
type Patch struct {
	Title   *string
	StartAt *time.Time
	EndAt   *time.Time
	ColorID *models.ColorID
	Memo    *string
}

// Option configures a Store.
type Option func(*Store)

// WithLocation fixes the zone the index is built against. Used by tests;
// production stores follow the process zone.
func WithLocation(loc *time.Location) Option {
	return func(s *Store) {
		s.locFunc = func() *time.Location { return loc }
	}
}

// WithLocationFunc supplies a dynamic zone source, letting tests simulate
// a device timezone change.
func WithLocationFunc(fn func() *time.Location) Option {
	return func(s *Store) {
		s.locFunc = fn
	}
}

// NewStore creates an empty store. Call Load before serving reads so the
// persisted events are hydrated and indexed.
func NewStore(repo Repository, opts ...Option) *Store {
	s := &Store{
		repo:    repo,
		events:  make(map[string]models.Event),
		index:   make(map[string][]string),
		locFunc: func() *time.Location { return time.Local },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load hydrates the store from the repository and builds the index. The
// caller awaits this before the store is considered ready; there is no
// implicit rebuild-on-next-tick.
func (s *Store) Load(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}

	events, err := s.repo.ListAll(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.events = make(map[string]models.Event, len(events))
	for _, e := range events {
		s.events[e.ID] = e
	}
	s.rebuildIndexLocked(s.locFunc())

	return nil
}

// Add creates an event, persists it, and rebuilds the index. It returns
// the stored event so the caller can immediately schedule reminders.
func (s *Store) Add(ctx context.Context, input AddInput) models.Event {
	e := models.Event{
		ID:      storage.GenerateID(),
		Title:   input.Title,
		StartAt: timeutil.ToUTC(input.StartAt),
		EndAt:   timeutil.ToUTC(input.EndAt),
		ColorID: models.CanonicalColorID(input.ColorID),
		Memo:    input.Memo,
	}
	e.NormalizeInterval()

	s.mu.Lock()
	s.events[e.ID] = e
	s.rebuildIndexLocked(s.locFunc())
	s.mu.Unlock()

	if s.repo != nil {
		if err := s.repo.Create(ctx, &e); err != nil {
			log.Printf("Failed to persist event %s: %v", e.ID, err)
		} else {
			s.mu.Lock()
			s.events[e.ID] = e // pick up repository timestamps
			s.mu.Unlock()
		}
	}

	return e
}

// Update merges the patch over an existing event, re-normalizes the
// interval on the patched values, persists, and rebuilds the index.
// Unknown ids are a silent no-op, reported through the second return.
func (s *Store) Update(ctx context.Context, id string, patch Patch) (models.Event, bool) {
	s.mu.Lock()
	e, ok := s.events[id]
	if !ok {
		s.mu.Unlock()
		return models.Event{}, false
	}

	if patch.Title != nil {
		e.Title = *patch.Title
	}
	if patch.StartAt != nil {
		e.StartAt = timeutil.ToUTC(*patch.StartAt)
	}
	if patch.EndAt != nil {
		e.EndAt = timeutil.ToUTC(*patch.EndAt)
	}
	if patch.ColorID != nil {
		e.ColorID = models.CanonicalColorID(*patch.ColorID)
	}
	if patch.Memo != nil {
		e.Memo = *patch.Memo
	}
	e.NormalizeInterval()

	s.events[id] = e
	s.rebuildIndexLocked(s.locFunc())
	s.mu.Unlock()

	if s.repo != nil {
		if err := s.repo.Update(ctx, &e); err != nil {
			log.Printf("Failed to persist event update %s: %v", id, err)
		}
	}

	return e, true
}

// Remove deletes an event and rebuilds the index. Unknown ids are a
// silent no-op. Reminder cancellation is the synchronization driver's
// job, invoked by the caller around this mutation.
func (s *Store) Remove(ctx context.Context, id string) bool {
	s.mu.Lock()
	if _, ok := s.events[id]; !ok {
		s.mu.Unlock()
		return false
	}
	delete(s.events, id)
	s.rebuildIndexLocked(s.locFunc())
	s.mu.Unlock()

	if s.repo != nil {
		if err := s.repo.Delete(ctx, id); err != nil {
			log.Printf("Failed to persist event removal %s: %v", id, err)
		}
	}

	return true
}

// Get returns the event with the given id.
func (s *Store) Get(id string) (models.Event, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.events[id]
	return e, ok
}

// Len returns the number of stored events.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events)
}

// RebuildIndex recomputes the whole day index against the current zone.
// External callers use it after a timezone change or app foreground.
func (s *Store) RebuildIndex() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rebuildIndexLocked(s.locFunc())
}

// RebuildIndexIfZoneChanged rebuilds only when the process zone differs
// from the one the index was last built against. Returns true when a
// rebuild happened.
func (s *Store) RebuildIndexIfZoneChanged() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.indexTZ == zoneName(s.locFunc()) {
		return false
	}
	s.rebuildIndexLocked(s.locFunc())
	return true
}

// zoneName names a zone for staleness comparison. time.Local stringifies
// as "Local", which is useless as an identity, so the process zone name
// is substituted.
func zoneName(loc *time.Location) string {
	if name := loc.String(); name != "" && name != "Local" {
		return name
	}
	return timeutil.CurrentTimeZone()
}

// IndexedZone reports which timezone the index was built against, so
// callers can detect staleness.
func (s *Store) IndexedZone() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.indexTZ
}

// rebuildIndexLocked walks every event and registers it under each local
// day key its [StartAt, EndAt) interval overlaps, then sorts each day's
// ids by ascending start time. Callers must hold s.mu.
func (s *Store) rebuildIndexLocked(loc *time.Location) {
	index := make(map[string][]string)

	for id, e := range s.events {
		day := timeutil.StartOfDay(e.StartAt, loc)
		end := timeutil.InLocation(e.EndAt, loc)
		for day.Before(end) {
			key := timeutil.DayKey(day, loc)
			index[key] = append(index[key], id)
			day = timeutil.AddDays(day, 1, loc)
		}
	}

	for key := range index {
		ids := index[key]
		sort.Slice(ids, func(i, j int) bool {
			a, b := s.events[ids[i]], s.events[ids[j]]
			if a.StartAt.Equal(b.StartAt) {
				return a.ID < b.ID
			}
			return a.StartAt.Before(b.StartAt)
		})
	}

	s.index = index
	s.indexTZ = zoneName(loc)
}

// EventsByLocalDay returns the events indexed under date's local day key,
// ordered by ascending start time.
func (s *Store) EventsByLocalDay(date time.Time) []models.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.eventsForKeyLocked(timeutil.DayKey(date, s.locFunc()))
}

// EventsByDayKey looks a "2006-01-02" day key up directly, bypassing any
// time zone conversion of the argument.
func (s *Store) EventsByDayKey(key string) []models.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.eventsForKeyLocked(key)
}

func (s *Store) eventsForKeyLocked(key string) []models.Event {
	ids := s.index[key]
	events := make([]models.Event, 0, len(ids))
	for _, id := range ids {
		if e, ok := s.events[id]; ok {
			events = append(events, e)
		}
	}
	return events
}

// All returns every event ordered by ascending start time.
func (s *Store) All() []models.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := make([]models.Event, 0, len(s.events))
	for _, e := range s.events {
		events = append(events, e)
	}
	sort.Slice(events, func(i, j int) bool {
		if events[i].StartAt.Equal(events[j].StartAt) {
			return events[i].ID < events[j].ID
		}
		return events[i].StartAt.Before(events[j].StartAt)
	})
	return events
}

// EventsInRange returns every event whose [StartAt, EndAt) interval
// intersects [start, end), ordered by ascending start time. This is an
// O(n) scan over the canonical map.
func (s *Store) EventsInRange(start, end time.Time) []models.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := make([]models.Event, 0)
	for _, e := range s.events {
		if e.Overlaps(start, end) {
			events = append(events, e)
		}
	}

	sort.Slice(events, func(i, j int) bool {
		if events[i].StartAt.Equal(events[j].StartAt) {
			return events[i].ID < events[j].ID
		}
		return events[i].StartAt.Before(events[j].StartAt)
	})

	return events
}
