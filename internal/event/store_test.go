package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alarm-calendar/backend/internal/storage/models"
)

var tokyo = time.FixedZone("Asia/Tokyo", 9*60*60)

// fakeRepo is an in-memory Repository recording calls.
type fakeRepo struct {
	seed    []models.Event
	created []string
	updated []string
	deleted []string
	failAll bool
}

func (f *fakeRepo) ListAll(ctx context.Context) ([]models.Event, error) {
	if f.failAll {
		return nil, errors.New("storage unavailable")
	}
	return f.seed, nil
}

func (f *fakeRepo) Create(ctx context.Context, e *models.Event) error {
	if f.failAll {
		return errors.New("storage unavailable")
	}
	f.created = append(f.created, e.ID)
	return nil
}

func (f *fakeRepo) Update(ctx context.Context, e *models.Event) error {
	if f.failAll {
		return errors.New("storage unavailable")
	}
	f.updated = append(f.updated, e.ID)
	return nil
}

func (f *fakeRepo) Delete(ctx context.Context, id string) error {
	if f.failAll {
		return errors.New("storage unavailable")
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func utc(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestAddNormalizesInvalidInterval(t *testing.T) {
	s := NewStore(nil, WithLocation(time.UTC))

	tests := []struct {
		name    string
		start   string
		end     string
		wantEnd string
	}{
		{
			name:    "end before start",
			start:   "2025-01-10T09:00:00Z",
			end:     "2025-01-10T08:00:00Z",
			wantEnd: "2025-01-10T09:30:00Z",
		},
		{
			name:    "end equals start",
			start:   "2025-01-10T09:00:00Z",
			end:     "2025-01-10T09:00:00Z",
			wantEnd: "2025-01-10T09:30:00Z",
		},
		{
			name:    "valid interval untouched",
			start:   "2025-01-10T09:00:00Z",
			end:     "2025-01-10T10:00:00Z",
			wantEnd: "2025-01-10T10:00:00Z",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := s.Add(context.Background(), AddInput{
				Title:   "Meeting",
				StartAt: utc(tt.start),
				EndAt:   utc(tt.end),
			})
			if !e.EndAt.Equal(utc(tt.wantEnd)) {
				t.Errorf("EndAt = %v, want %v", e.EndAt, utc(tt.wantEnd))
			}
		})
	}
}

func TestAddAppliesColorDefaultAndRemap(t *testing.T) {
	s := NewStore(nil, WithLocation(time.UTC))

	tests := []struct {
		name  string
		color models.ColorID
		want  models.ColorID
	}{
		{"empty color gets default", "", models.ColorBlue},
		{"unknown color gets default", "chartreuse", models.ColorBlue},
		{"legacy orange remaps to amber", "orange", models.ColorAmber},
		{"current color kept", models.ColorTeal, models.ColorTeal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := s.Add(context.Background(), AddInput{
				Title:   "x",
				StartAt: utc("2025-01-10T09:00:00Z"),
				EndAt:   utc("2025-01-10T10:00:00Z"),
				ColorID: tt.color,
			})
			if e.ColorID != tt.want {
				t.Errorf("ColorID = %q, want %q", e.ColorID, tt.want)
			}
		})
	}
}

func TestMultiDayEventAppearsUnderEveryOverlappedDay(t *testing.T) {
	s := NewStore(nil, WithLocation(tokyo))

	// Local 2025-03-01 10:00 through 2025-03-03 18:00 (JST).
	e := s.Add(context.Background(), AddInput{
		Title:   "Trip",
		StartAt: utc("2025-03-01T01:00:00Z"),
		EndAt:   utc("2025-03-03T09:00:00Z"),
	})

	for _, day := range []string{"2025-03-01", "2025-03-02", "2025-03-03"} {
		d, _ := time.ParseInLocation("2006-01-02", day, tokyo)
		events := s.EventsByLocalDay(d)
		if len(events) != 1 || events[0].ID != e.ID {
			t.Errorf("day %s: got %d events, want the trip", day, len(events))
		}
	}

	// One day off either end must be empty.
	for _, day := range []string{"2025-02-28", "2025-03-04"} {
		d, _ := time.ParseInLocation("2006-01-02", day, tokyo)
		if events := s.EventsByLocalDay(d); len(events) != 0 {
			t.Errorf("day %s: got %d events, want none", day, len(events))
		}
	}
}

func TestEventEndingAtMidnightExcludesThatDay(t *testing.T) {
	s := NewStore(nil, WithLocation(time.UTC))

	s.Add(context.Background(), AddInput{
		Title:   "Evening",
		StartAt: utc("2025-03-01T20:00:00Z"),
		EndAt:   utc("2025-03-02T00:00:00Z"),
	})

	d, _ := time.ParseInLocation("2006-01-02", "2025-03-02", time.UTC)
	if events := s.EventsByLocalDay(d); len(events) != 0 {
		t.Errorf("half-open interval leaked onto the end day: %d events", len(events))
	}
}

func TestDayIndexOrderedByStartTime(t *testing.T) {
	s := NewStore(nil, WithLocation(time.UTC))
	ctx := context.Background()

	late := s.Add(ctx, AddInput{Title: "late", StartAt: utc("2025-01-10T15:00:00Z"), EndAt: utc("2025-01-10T16:00:00Z")})
	early := s.Add(ctx, AddInput{Title: "early", StartAt: utc("2025-01-10T08:00:00Z"), EndAt: utc("2025-01-10T09:00:00Z")})
	mid := s.Add(ctx, AddInput{Title: "mid", StartAt: utc("2025-01-10T12:00:00Z"), EndAt: utc("2025-01-10T13:00:00Z")})

	d, _ := time.ParseInLocation("2006-01-02", "2025-01-10", time.UTC)
	events := s.EventsByLocalDay(d)
	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}

	wantOrder := []string{early.ID, mid.ID, late.ID}
	for i, want := range wantOrder {
		if events[i].ID != want {
			t.Errorf("position %d: got %s, want %s", i, events[i].Title, want)
		}
	}
}

func TestUpdateMergesPatchAndReindexes(t *testing.T) {
	repo := &fakeRepo{}
	s := NewStore(repo, WithLocation(time.UTC))
	ctx := context.Background()

	e := s.Add(ctx, AddInput{
		Title:   "Meeting",
		StartAt: utc("2025-01-10T09:00:00Z"),
		EndAt:   utc("2025-01-10T10:00:00Z"),
	})

	newStart := utc("2025-01-11T09:00:00Z")
	title := "Moved meeting"
	updated, ok := s.Update(ctx, e.ID, Patch{Title: &title, StartAt: &newStart})
	if !ok {
		t.Fatal("Update reported unknown id")
	}
	if updated.Title != "Moved meeting" {
		t.Errorf("Title = %q", updated.Title)
	}
	// End (10:00 on the 10th) is now before start; re-normalization applies.
	if !updated.EndAt.Equal(newStart.Add(30 * time.Minute)) {
		t.Errorf("EndAt = %v, want start+30m", updated.EndAt)
	}

	oldDay, _ := time.ParseInLocation("2006-01-02", "2025-01-10", time.UTC)
	newDay, _ := time.ParseInLocation("2006-01-02", "2025-01-11", time.UTC)
	if len(s.EventsByLocalDay(oldDay)) != 0 {
		t.Error("event still indexed under the old day")
	}
	if len(s.EventsByLocalDay(newDay)) != 1 {
		t.Error("event not indexed under the new day")
	}
	if len(repo.updated) != 1 {
		t.Errorf("repo updates = %d, want 1", len(repo.updated))
	}
}

func TestUpdateUnknownIDIsSilentNoop(t *testing.T) {
	repo := &fakeRepo{}
	s := NewStore(repo, WithLocation(time.UTC))

	_, ok := s.Update(context.Background(), "missing", Patch{})
	if ok {
		t.Error("Update on unknown id reported success")
	}
	if len(repo.updated) != 0 {
		t.Error("Update on unknown id hit the repository")
	}
}

func TestRemove(t *testing.T) {
	repo := &fakeRepo{}
	s := NewStore(repo, WithLocation(time.UTC))
	ctx := context.Background()

	e := s.Add(ctx, AddInput{Title: "x", StartAt: utc("2025-01-10T09:00:00Z"), EndAt: utc("2025-01-10T10:00:00Z")})

	if !s.Remove(ctx, e.ID) {
		t.Fatal("Remove reported unknown id")
	}
	if s.Remove(ctx, e.ID) {
		t.Error("second Remove reported success")
	}

	d, _ := time.ParseInLocation("2006-01-02", "2025-01-10", time.UTC)
	if len(s.EventsByLocalDay(d)) != 0 {
		t.Error("removed event still indexed")
	}
	if len(repo.deleted) != 1 {
		t.Errorf("repo deletes = %d, want 1", len(repo.deleted))
	}
}

func TestPersistFailureDoesNotLoseMutation(t *testing.T) {
	repo := &fakeRepo{failAll: true}
	s := NewStore(repo, WithLocation(time.UTC))

	e := s.Add(context.Background(), AddInput{
		Title:   "Offline",
		StartAt: utc("2025-01-10T09:00:00Z"),
		EndAt:   utc("2025-01-10T10:00:00Z"),
	})

	if _, ok := s.Get(e.ID); !ok {
		t.Error("event lost after persist failure")
	}
}

func TestLoadHydratesAndIndexes(t *testing.T) {
	repo := &fakeRepo{seed: []models.Event{
		{
			ID:      "e1",
			Title:   "Seeded",
			StartAt: utc("2025-01-10T09:00:00Z"),
			EndAt:   utc("2025-01-10T10:00:00Z"),
			ColorID: models.ColorRed,
		},
	}}
	s := NewStore(repo, WithLocation(time.UTC))

	if err := s.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	d, _ := time.ParseInLocation("2006-01-02", "2025-01-10", time.UTC)
	if events := s.EventsByLocalDay(d); len(events) != 1 || events[0].ID != "e1" {
		t.Errorf("seeded event not indexed: %v", events)
	}
}

func TestRebuildIndexOnZoneChange(t *testing.T) {
	loc := time.UTC
	s := NewStore(nil, WithLocationFunc(func() *time.Location { return loc }))

	// 23:00 UTC on the 10th is the 11th in Tokyo.
	s.Add(context.Background(), AddInput{
		Title:   "Border",
		StartAt: utc("2025-01-10T23:00:00Z"),
		EndAt:   utc("2025-01-10T23:30:00Z"),
	})

	if s.RebuildIndexIfZoneChanged() {
		t.Error("rebuild reported for an unchanged zone")
	}

	loc = tokyo
	if !s.RebuildIndexIfZoneChanged() {
		t.Fatal("zone change not detected")
	}

	d, _ := time.ParseInLocation("2006-01-02", "2025-01-11", tokyo)
	if events := s.EventsByLocalDay(d); len(events) != 1 {
		t.Errorf("event not re-homed after zone change: %d events", len(events))
	}
	if s.IndexedZone() != "Asia/Tokyo" {
		t.Errorf("IndexedZone = %q", s.IndexedZone())
	}
}

func TestEventsInRange(t *testing.T) {
	s := NewStore(nil, WithLocation(time.UTC))
	ctx := context.Background()

	inside := s.Add(ctx, AddInput{Title: "inside", StartAt: utc("2025-01-10T09:00:00Z"), EndAt: utc("2025-01-10T10:00:00Z")})
	straddle := s.Add(ctx, AddInput{Title: "straddle", StartAt: utc("2025-01-09T23:00:00Z"), EndAt: utc("2025-01-10T01:00:00Z")})
	s.Add(ctx, AddInput{Title: "before", StartAt: utc("2025-01-09T08:00:00Z"), EndAt: utc("2025-01-09T09:00:00Z")})
	s.Add(ctx, AddInput{Title: "touching start boundary", StartAt: utc("2025-01-11T00:00:00Z"), EndAt: utc("2025-01-11T01:00:00Z")})

	got := s.EventsInRange(utc("2025-01-10T00:00:00Z"), utc("2025-01-11T00:00:00Z"))
	if len(got) != 2 {
		t.Fatalf("got %d events, want 2", len(got))
	}
	if got[0].ID != straddle.ID || got[1].ID != inside.ID {
		t.Errorf("range order wrong: %s, %s", got[0].Title, got[1].Title)
	}
}
