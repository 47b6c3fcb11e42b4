package reminder

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alarm-calendar/backend/internal/notify"
	"github.com/alarm-calendar/backend/internal/storage/models"
)

// fakeNotify records scheduling calls without arming real timers.
type fakeNotify struct {
	granted bool
	failAt  map[time.Time]bool

	next      int
	pending   map[string]notify.Request
	cancelled []string
}

func newFakeNotify() *fakeNotify {
	return &fakeNotify{
		granted: true,
		pending: make(map[string]notify.Request),
	}
}

func (f *fakeNotify) Initialize(ctx context.Context) error { return nil }

func (f *fakeNotify) RequestPermission(ctx context.Context) (bool, error) {
	return f.granted, nil
}

func (f *fakeNotify) ScheduleOneShot(ctx context.Context, req notify.Request) (string, error) {
	if f.failAt[req.FireAt] {
		return "", fmt.Errorf("platform rejected %s", req.FireAt.Format(time.RFC3339))
	}
	f.next++
	handle := fmt.Sprintf("handle-%d", f.next)
	f.pending[handle] = req
	return handle, nil
}

func (f *fakeNotify) Cancel(ctx context.Context, handle string) error {
	f.cancelled = append(f.cancelled, handle)
	delete(f.pending, handle)
	return nil
}

func (f *fakeNotify) ListScheduled(ctx context.Context) ([]string, error) {
	handles := make([]string, 0, len(f.pending))
	for h := range f.pending {
		handles = append(handles, h)
	}
	return handles, nil
}

func testEvent(start time.Time) models.Event {
	return models.Event{
		ID:      "ev-1",
		Title:   "会議",
		StartAt: start,
		EndAt:   start.Add(30 * time.Minute),
		ColorID: models.ColorBlue,
	}
}

func TestScheduleForEventFutureOffsets(t *testing.T) {
	svc := newFakeNotify()
	s := NewScheduler(svc, nil)
	s.now = func() time.Time { return time.Date(2026, 3, 10, 7, 0, 0, 0, time.UTC) }

	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	scheduled := s.ScheduleForEvent(context.Background(), testEvent(start), []int{60, 5}, models.SoundDefault)

	if len(scheduled) != 2 {
		t.Fatalf("scheduled %d reminders, want 2", len(scheduled))
	}
	// Offsets are normalized ascending, so the 5-minute reminder comes first.
	wantFires := []time.Time{
		time.Date(2026, 3, 10, 8, 55, 0, 0, time.UTC),
		time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC),
	}
	wantBodies := []string{"5分前", "1時間前"}
	for i, r := range scheduled {
		if !r.FireAt.Equal(wantFires[i]) {
			t.Errorf("reminder %d fires at %s, want %s", i, r.FireAt, wantFires[i])
		}
		req := svc.pending[r.Handle]
		if req.Body != wantBodies[i] {
			t.Errorf("reminder %d body = %q, want %q", i, req.Body, wantBodies[i])
		}
		if req.Title != "会議" {
			t.Errorf("reminder %d title = %q", i, req.Title)
		}
	}
	if got := s.Handles("ev-1"); len(got) != 2 {
		t.Fatalf("Handles = %v, want 2 entries", got)
	}
}

func TestScheduleForEventDropsPastOffsets(t *testing.T) {
	svc := newFakeNotify()
	s := NewScheduler(svc, nil)
	s.now = func() time.Time { return time.Date(2026, 3, 10, 8, 57, 0, 0, time.UTC) }

	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	scheduled := s.ScheduleForEvent(context.Background(), testEvent(start), []int{60, 5}, models.SoundDefault)

	if len(scheduled) != 0 {
		t.Fatalf("scheduled %d reminders, want 0 when every fire time has passed", len(scheduled))
	}
	if len(svc.pending) != 0 {
		t.Fatalf("platform has %d pending notifications, want 0", len(svc.pending))
	}
}

func TestScheduleForEventPermissionDenied(t *testing.T) {
	svc := newFakeNotify()
	svc.granted = false
	s := NewScheduler(svc, nil)

	start := time.Now().Add(2 * time.Hour)
	scheduled := s.ScheduleForEvent(context.Background(), testEvent(start), []int{5, 60}, models.SoundDefault)

	if len(scheduled) != 0 || len(svc.pending) != 0 {
		t.Fatalf("expected nothing scheduled without permission, got %d scheduled, %d pending", len(scheduled), len(svc.pending))
	}
}

func TestScheduleForEventSkipsFailedCandidates(t *testing.T) {
	svc := newFakeNotify()
	s := NewScheduler(svc, nil)
	s.now = func() time.Time { return time.Date(2026, 3, 10, 7, 0, 0, 0, time.UTC) }

	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	svc.failAt = map[time.Time]bool{
		start.Add(-60 * time.Minute): true,
	}
	scheduled := s.ScheduleForEvent(context.Background(), testEvent(start), []int{60, 5}, models.SoundDefault)

	if len(scheduled) != 1 {
		t.Fatalf("scheduled %d reminders, want 1 surviving candidate", len(scheduled))
	}
	if want := start.Add(-5 * time.Minute); !scheduled[0].FireAt.Equal(want) {
		t.Fatalf("surviving reminder fires at %s, want %s", scheduled[0].FireAt, want)
	}
}

func TestCancelForEvent(t *testing.T) {
	svc := newFakeNotify()
	s := NewScheduler(svc, nil)
	s.now = func() time.Time { return time.Date(2026, 3, 10, 7, 0, 0, 0, time.UTC) }

	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	scheduled := s.ScheduleForEvent(context.Background(), testEvent(start), []int{5, 60}, models.SoundDefault)
	if len(scheduled) != 2 {
		t.Fatalf("setup: scheduled %d", len(scheduled))
	}

	s.CancelForEvent(context.Background(), "ev-1")

	if got := s.Handles("ev-1"); len(got) != 0 {
		t.Fatalf("Handles after cancel = %v, want empty", got)
	}
	if len(svc.pending) != 0 {
		t.Fatalf("platform still has %d pending notifications", len(svc.pending))
	}
	if len(svc.cancelled) != 2 {
		t.Fatalf("cancelled %d handles on the platform, want 2", len(svc.cancelled))
	}
}

func TestReconcileWithPlatformPrunesFiredHandles(t *testing.T) {
	svc := newFakeNotify()
	s := NewScheduler(svc, nil)
	s.now = func() time.Time { return time.Date(2026, 3, 10, 7, 0, 0, 0, time.UTC) }

	start := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	scheduled := s.ScheduleForEvent(context.Background(), testEvent(start), []int{5, 60}, models.SoundDefault)

	// Simulate one notification having fired on the platform side.
	delete(svc.pending, scheduled[0].Handle)
	s.ReconcileWithPlatform(context.Background())

	got := s.Handles("ev-1")
	if len(got) != 1 || got[0] != scheduled[1].Handle {
		t.Fatalf("Handles after reconcile = %v, want [%s]", got, scheduled[1].Handle)
	}
}

func TestFormatOffsetLabel(t *testing.T) {
	tests := []struct {
		minutes int
		want    string
	}{
		{0, "開始時"},
		{5, "5分前"},
		{45, "45分前"},
		{60, "1時間前"},
		{90, "1時間30分前"},
		{1440, "1日前"},
		{2880, "2日前"},
		{1500, "25時間前"},
		{4320, "3日前"},
	}
	for _, tt := range tests {
		if got := FormatOffsetLabel(tt.minutes); got != tt.want {
			t.Errorf("FormatOffsetLabel(%d) = %q, want %q", tt.minutes, got, tt.want)
		}
	}
}
