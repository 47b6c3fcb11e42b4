package reminder

import (
	"context"
	"sync"
	"time"

	"github.com/alarm-calendar/backend/internal/event"
	"github.com/alarm-calendar/backend/internal/pattern"
	"github.com/alarm-calendar/backend/internal/storage/models"
	"github.com/alarm-calendar/backend/internal/websocket"
)

// Coordinator keeps scheduled reminders in sync with event and pattern
// state. Every change to an event funnels through a cancel-then-reschedule
// cycle so an event never owns notifications from two generations at once.
type Coordinator struct {
	store    *event.Store
	patterns *pattern.Registry
	sched    *Scheduler

	broadcaster *websocket.EventBroadcaster

	// locks serializes reschedule cycles per event id. Cycles for distinct
	// events run concurrently.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewCoordinator wires the reminder engine to the event store and pattern
// registry. broadcaster may be nil.
func NewCoordinator(store *event.Store, patterns *pattern.Registry, sched *Scheduler, broadcaster *websocket.EventBroadcaster) *Coordinator {
	return &Coordinator{
		store:       store,
		patterns:    patterns,
		sched:       sched,
		broadcaster: broadcaster,
		locks:       make(map[string]*sync.Mutex),
	}
}

func (c *Coordinator) eventLock(eventID string) *sync.Mutex {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.locks[eventID]
	if !ok {
		l = &sync.Mutex{}
		c.locks[eventID] = l
	}
	return l
}

// RescheduleForEvent cancels the event's pending reminders and schedules a
// fresh set from the given pattern. An empty key reuses the event's bound
// pattern, falling back to the default slot. The pattern binding is updated
// to whatever key was used.
func (c *Coordinator) RescheduleForEvent(ctx context.Context, ev models.Event, key models.PatternKey) []models.ScheduledReminder {
	l := c.eventLock(ev.ID)
	l.Lock()
	defer l.Unlock()

	c.sched.CancelForEvent(ctx, ev.ID)

	if key == "" {
		if bound, ok := c.patterns.BoundKey(ev.ID); ok {
			key = bound
		} else {
			key = models.PatternDefault
		}
	}
	key = models.CanonicalPatternKey(key)

	offsets, sound := c.patterns.Resolve(key)
	scheduled := c.sched.ScheduleForEvent(ctx, ev, offsets, sound)
	c.patterns.Bind(ctx, ev.ID, key)

	if c.broadcaster != nil {
		fireTimes := make([]time.Time, len(scheduled))
		for i, r := range scheduled {
			fireTimes[i] = r.FireAt
		}
		c.broadcaster.BroadcastReminderScheduled(ev.ID, key, fireTimes)
	}
	return scheduled
}

// RescheduleByID looks the event up in the store and reschedules it. An
// unknown id is a silent no-op.
func (c *Coordinator) RescheduleByID(ctx context.Context, eventID string, key models.PatternKey) ([]models.ScheduledReminder, bool) {
	ev, ok := c.store.Get(eventID)
	if !ok {
		return nil, false
	}
	return c.RescheduleForEvent(ctx, ev, key), true
}

// RestoreSchedules re-runs the reminder cycle for every stored event.
// Called once at startup: platform timers do not survive a process
// restart, so the persisted handle set must be recomputed from each
// event's current start time and bound pattern before the maintenance
// reconciler runs. Stale persisted handles are cancelled and replaced as
// part of each cycle. Returns the number of events with at least one
// reminder re-armed.
func (c *Coordinator) RestoreSchedules(ctx context.Context) int {
	restored := 0
	for _, ev := range c.store.All() {
		if len(c.RescheduleForEvent(ctx, ev, "")) > 0 {
			restored++
		}
	}
	return restored
}

// HandleCount reports how many reminders the event currently owns.
func (c *Coordinator) HandleCount(eventID string) int {
	return len(c.sched.Handles(eventID))
}

// CancelForEvent revokes the event's reminders and drops its pattern
// binding. Called when the event is deleted.
func (c *Coordinator) CancelForEvent(ctx context.Context, eventID string) {
	l := c.eventLock(eventID)
	l.Lock()
	defer l.Unlock()

	c.sched.CancelForEvent(ctx, eventID)
	c.patterns.Unbind(ctx, eventID)
}
