// Package main is the entry point for the alarm calendar server.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alarm-calendar/backend/internal/api"
	"github.com/alarm-calendar/backend/internal/event"
	"github.com/alarm-calendar/backend/internal/holiday"
	"github.com/alarm-calendar/backend/internal/notify"
	"github.com/alarm-calendar/backend/internal/pattern"
	"github.com/alarm-calendar/backend/internal/reminder"
	"github.com/alarm-calendar/backend/internal/settings"
	"github.com/alarm-calendar/backend/internal/storage"
	"github.com/alarm-calendar/backend/internal/websocket"
)

// version is set at build time via -ldflags "-X main.version=x.y.z".
// Defaults to "dev" when not provided.
var version = "dev"

func main() {
	addr := flag.String("addr", ":8091", "HTTP server address")
	dataDir := flag.String("data", "/data", "Data directory for SQLite database")
	healthCheck := flag.Bool("health-check", false, "Run health check and exit")
	flag.Parse()

	// Health check mode for Docker HEALTHCHECK
	if *healthCheck {
		if err := runHealthCheck(*addr); err != nil {
			log.Fatalf("Health check failed: %v", err)
		}
		os.Exit(0)
	}

	if envVer := os.Getenv("VERSION"); envVer != "" {
		version = envVer
	}

	log.Printf("Starting alarm calendar server (version: %s)...", version)

	// Initialize database
	if err := os.MkdirAll(*dataDir, 0o755); err != nil {
		log.Fatalf("Failed to create data directory %q: %v", *dataDir, err)
	}
	dbPath := *dataDir + "/alarm-calendar.db"
	db, err := storage.NewDB(dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := storage.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations complete")

	// Initialize WebSocket hub
	hub := websocket.NewHub()
	go hub.Run()
	broadcaster := websocket.NewEventBroadcaster(hub)

	// Initialize repositories
	eventRepo := storage.NewEventRepository(db)
	patternRepo := storage.NewPatternRepository(db)
	reminderRepo := storage.NewReminderRepository(db)
	settingsRepo := storage.NewSettingsRepository(db)

	ctx := context.Background()

	// Settings back both the premium gate and notification delivery.
	settingsManager := settings.NewManager(settingsRepo)
	if err := settingsManager.Load(ctx); err != nil {
		log.Printf("Warning: Failed to load settings: %v", err)
	}

	// Event store and day index
	store := event.NewStore(eventRepo)
	if err := store.Load(ctx); err != nil {
		log.Fatalf("Failed to load events: %v", err)
	}
	log.Printf("Loaded %d events, day index built for %s", store.Len(), store.IndexedZone())

	// Alarm pattern registry
	registry := pattern.NewRegistry(patternRepo, settingsManager.Premium)
	if err := registry.Load(ctx); err != nil {
		log.Fatalf("Failed to load alarm patterns: %v", err)
	}

	// Reminder engine
	notifySvc := notify.NewTimerService(broadcaster, settingsManager.NotificationsEnabled)
	defer notifySvc.Stop()

	scheduler := reminder.NewScheduler(notifySvc, reminderRepo)
	if err := scheduler.Load(ctx); err != nil {
		log.Printf("Warning: Failed to load scheduled reminders: %v", err)
	}

	coordinator := reminder.NewCoordinator(store, registry, scheduler, broadcaster)

	// Timers do not survive restarts; recompute every event's reminders
	// from its bound pattern before the reconciler is allowed to prune.
	restored := coordinator.RestoreSchedules(ctx)
	log.Printf("Restored reminder schedules for %d events", restored)

	// Holiday catalog for day views
	holidaySvc, err := holiday.NewService()
	if err != nil {
		log.Fatalf("Failed to load holiday catalog: %v", err)
	}

	// Background maintenance: time zone watch and handle reconciliation
	maintenance := reminder.NewMaintenance(store, scheduler)
	if err := maintenance.Start(); err != nil {
		log.Printf("Warning: Failed to start maintenance jobs: %v", err)
	}

	// Initialize HTTP router with services
	router := api.NewRouter(api.Services{
		DB:          db,
		Hub:         hub,
		Broadcaster: broadcaster,
		Store:       store,
		Patterns:    registry,
		Coordinator: coordinator,
		Settings:    settingsManager,
		Holidays:    holidaySvc,
	})

	server := &http.Server{
		Addr:         *addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server listening on %s", *addr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	maintenance.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}

// runHealthCheck performs a health check against the running server.
func runHealthCheck(addr string) error {
	url := "http://localhost" + addr + "/api/health"
	resp, err := http.Get(url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return http.ErrAbortHandler
	}
	return nil
}
