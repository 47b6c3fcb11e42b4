package notify

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/alarm-calendar/backend/internal/storage/models"
	"github.com/alarm-calendar/backend/internal/websocket"
)

// TimerService delivers notifications with in-process timers. Fired
// reminders are pushed to connected clients through the WebSocket
// broadcaster when one is attached.
type TimerService struct {
	mu       sync.Mutex
	initOnce sync.Once
	pending  map[string]*pendingTimer

	// enabled gates delivery, typically backed by the notifications_enabled
	// setting. A nil func means always enabled.
	enabled func() bool

	broadcaster *websocket.EventBroadcaster
}

type pendingTimer struct {
	timer *time.Timer
	req   Request
}

// NewTimerService creates a timer-backed notification service.
func NewTimerService(broadcaster *websocket.EventBroadcaster, enabled func() bool) *TimerService {
	return &TimerService{
		pending:     make(map[string]*pendingTimer),
		enabled:     enabled,
		broadcaster: broadcaster,
	}
}

// Initialize prepares the service for scheduling. Calling it repeatedly is
// harmless.
func (s *TimerService) Initialize(ctx context.Context) error {
	s.initOnce.Do(func() {
		log.Println("Notification service initialized")
	})
	return nil
}

// RequestPermission reports whether notification delivery is enabled.
func (s *TimerService) RequestPermission(ctx context.Context) (bool, error) {
	if s.enabled == nil {
		return true, nil
	}
	return s.enabled(), nil
}

// ScheduleOneShot registers a timer that fires at req.FireAt.
func (s *TimerService) ScheduleOneShot(ctx context.Context, req Request) (string, error) {
	delay := time.Until(req.FireAt)
	if delay <= 0 {
		return "", fmt.Errorf("fire time %s is not in the future", req.FireAt.Format(time.RFC3339))
	}

	handle := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[handle] = &pendingTimer{
		timer: time.AfterFunc(delay, func() { s.fire(handle) }),
		req:   req,
	}
	return handle, nil
}

// Cancel stops a pending timer. Unknown handles are a no-op.
func (s *TimerService) Cancel(ctx context.Context, handle string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.pending[handle]; ok {
		p.timer.Stop()
		delete(s.pending, handle)
	}
	return nil
}

// ListScheduled returns the handles of all timers that have not fired.
func (s *TimerService) ListScheduled(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	handles := make([]string, 0, len(s.pending))
	for h := range s.pending {
		handles = append(handles, h)
	}
	return handles, nil
}

// Stop cancels every pending timer. Used during shutdown.
func (s *TimerService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for h, p := range s.pending {
		p.timer.Stop()
		delete(s.pending, h)
	}
}

func (s *TimerService) fire(handle string) {
	s.mu.Lock()
	p, ok := s.pending[handle]
	if ok {
		delete(s.pending, handle)
	}
	s.mu.Unlock()
	if !ok {
		return
	}

	log.Printf("Reminder fired: %s (%s)", p.req.Title, p.req.Body)
	if s.broadcaster != nil {
		s.broadcaster.BroadcastReminderFired(handle, p.req.Title, p.req.Body, models.SoundFile(p.req.Sound))
	}
}
