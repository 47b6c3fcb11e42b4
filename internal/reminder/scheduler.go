// Package reminder schedules notification delivery for calendar events.
// Each event resolves to an alarm pattern whose minute offsets produce
// one-shot notifications ahead of the event start.
package reminder

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/alarm-calendar/backend/internal/notify"
	"github.com/alarm-calendar/backend/internal/pattern"
	"github.com/alarm-calendar/backend/internal/storage/models"
)

// HandleRepository persists the notification handles owned by each event so
// they survive restarts and can be cancelled later.
type HandleRepository interface {
	ReplaceForEvent(ctx context.Context, eventID string, reminders []models.ScheduledReminder) error
	DeleteForEvent(ctx context.Context, eventID string) error
	DeleteHandle(ctx context.Context, eventID, handle string) error
	ListAll(ctx context.Context) ([]models.ScheduledReminder, error)
}

// Scheduler turns pattern offsets into pending platform notifications and
// tracks the handles it owns per event.
type Scheduler struct {
	svc  notify.Service
	repo HandleRepository

	mu      sync.Mutex
	handles map[string][]string

	now func() time.Time
}

// NewScheduler creates a scheduler on top of the given notification service.
// repo may be nil, in which case handles are kept in memory only.
func NewScheduler(svc notify.Service, repo HandleRepository) *Scheduler {
	return &Scheduler{
		svc:     svc,
		repo:    repo,
		handles: make(map[string][]string),
		now:     time.Now,
	}
}

// Load rehydrates the handle table from storage.
func (s *Scheduler) Load(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}
	reminders, err := s.repo.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("loading scheduled reminders: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.handles = make(map[string][]string)
	for _, r := range reminders {
		s.handles[r.EventID] = append(s.handles[r.EventID], r.Handle)
	}
	return nil
}

// ScheduleForEvent registers notifications for every offset that still lies
// in the future, replacing whatever handles the event owned before. It
// returns the reminders actually scheduled; a denied notification permission
// yields an empty result.
func (s *Scheduler) ScheduleForEvent(ctx context.Context, ev models.Event, offsets []int, sound models.SoundID) []models.ScheduledReminder {
	if err := s.svc.Initialize(ctx); err != nil {
		log.Printf("Error initializing notification service: %v", err)
		return nil
	}
	granted, err := s.svc.RequestPermission(ctx)
	if err != nil {
		log.Printf("Error requesting notification permission: %v", err)
		return nil
	}
	if !granted {
		return nil
	}

	now := s.now()
	var scheduled []models.ScheduledReminder
	for _, m := range pattern.Normalize(offsets) {
		fireAt := ev.StartAt.Add(-time.Duration(m) * time.Minute)
		if !fireAt.After(now) {
			continue
		}
		handle, err := s.svc.ScheduleOneShot(ctx, notify.Request{
			FireAt: fireAt,
			Title:  ev.Title,
			Body:   FormatOffsetLabel(m),
			Sound:  sound,
		})
		if err != nil {
			log.Printf("Error scheduling reminder for event %s at %s: %v", ev.ID, fireAt.Format(time.RFC3339), err)
			continue
		}
		scheduled = append(scheduled, models.ScheduledReminder{
			EventID:   ev.ID,
			Handle:    handle,
			FireAt:    fireAt,
			CreatedAt: now,
		})
	}

	handles := make([]string, len(scheduled))
	for i, r := range scheduled {
		handles[i] = r.Handle
	}

	s.mu.Lock()
	s.handles[ev.ID] = handles
	s.mu.Unlock()

	if s.repo != nil {
		if err := s.repo.ReplaceForEvent(ctx, ev.ID, scheduled); err != nil {
			log.Printf("Error persisting reminders for event %s: %v", ev.ID, err)
		}
	}
	return scheduled
}

// CancelForEvent revokes every pending notification the event owns.
func (s *Scheduler) CancelForEvent(ctx context.Context, eventID string) {
	s.mu.Lock()
	handles := s.handles[eventID]
	delete(s.handles, eventID)
	s.mu.Unlock()

	for _, h := range handles {
		if err := s.svc.Cancel(ctx, h); err != nil {
			log.Printf("Error cancelling reminder %s for event %s: %v", h, eventID, err)
		}
	}

	if s.repo != nil {
		if err := s.repo.DeleteForEvent(ctx, eventID); err != nil {
			log.Printf("Error deleting reminders for event %s: %v", eventID, err)
		}
	}
}

// Handles returns a copy of the handles currently owned by the event.
func (s *Scheduler) Handles(eventID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	handles := s.handles[eventID]
	out := make([]string, len(handles))
	copy(out, handles)
	return out
}

// ReconcileWithPlatform drops handles the platform no longer knows about,
// typically because the notification already fired.
func (s *Scheduler) ReconcileWithPlatform(ctx context.Context) {
	platform, err := s.svc.ListScheduled(ctx)
	if err != nil {
		log.Printf("Error listing scheduled notifications: %v", err)
		return
	}
	alive := make(map[string]bool, len(platform))
	for _, h := range platform {
		alive[h] = true
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for eventID, handles := range s.handles {
		kept := handles[:0]
		for _, h := range handles {
			if alive[h] {
				kept = append(kept, h)
			} else if s.repo != nil {
				if err := s.repo.DeleteHandle(ctx, eventID, h); err != nil {
					log.Printf("Error pruning reminder %s for event %s: %v", h, eventID, err)
				}
			}
		}
		if len(kept) == 0 {
			delete(s.handles, eventID)
		} else {
			s.handles[eventID] = kept
		}
	}
}

// FormatOffsetLabel renders a minute offset as the label shown in the
// notification body: whole days as 日前, hours with an optional minute
// remainder, bare minutes otherwise. Zero means the event start itself.
func FormatOffsetLabel(m int) string {
	switch {
	case m == 0:
		return "開始時"
	case m%(24*60) == 0:
		return fmt.Sprintf("%d日前", m/(24*60))
	case m >= 60:
		h, rem := m/60, m%60
		if rem == 0 {
			return fmt.Sprintf("%d時間前", h)
		}
		return fmt.Sprintf("%d時間%d分前", h, rem)
	default:
		return fmt.Sprintf("%d分前", m)
	}
}
