package reminder

import (
	"context"
	"log"

	"github.com/robfig/cron/v3"

	"github.com/alarm-calendar/backend/internal/event"
)

// Maintenance runs the background upkeep jobs: detecting device time zone
// changes so the day index can be rebuilt, and reconciling the handle table
// against the notification platform.
type Maintenance struct {
	store *event.Store
	sched *Scheduler
	cron  *cron.Cron
}

// NewMaintenance creates the maintenance runner. Call Start to begin.
func NewMaintenance(store *event.Store, sched *Scheduler) *Maintenance {
	return &Maintenance{
		store: store,
		sched: sched,
		cron:  cron.New(),
	}
}

// Start registers the upkeep jobs and launches the cron loop.
func (m *Maintenance) Start() error {
	if _, err := m.cron.AddFunc("@every 1m", m.checkTimeZone); err != nil {
		return err
	}
	if _, err := m.cron.AddFunc("@every 5m", m.reconcile); err != nil {
		return err
	}
	m.cron.Start()
	log.Println("Maintenance jobs started")
	return nil
}

// Stop halts the cron loop, waiting for running jobs to finish.
func (m *Maintenance) Stop() {
	ctx := m.cron.Stop()
	<-ctx.Done()
	log.Println("Maintenance jobs stopped")
}

func (m *Maintenance) checkTimeZone() {
	if m.store.RebuildIndexIfZoneChanged() {
		log.Printf("Time zone changed, day index rebuilt for %s", m.store.IndexedZone())
	}
}

func (m *Maintenance) reconcile() {
	m.sched.ReconcileWithPlatform(context.Background())
}
