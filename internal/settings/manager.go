// Package settings caches the application settings table and exposes the
// typed toggles the rest of the system consults.
package settings

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"
)

// Setting keys.
const (
	KeyPremiumEnabled       = "premium_enabled"
	KeyNotificationsEnabled = "notifications_enabled"
	KeyWeekStartsOn         = "week_starts_on"
)

// Repository persists settings as string key/value pairs.
type Repository interface {
	GetAll(ctx context.Context) (map[string]string, error)
	Set(ctx context.Context, key, value string) error
}

// Manager holds settings in memory, writing changes through to storage.
// Safe for concurrent use.
type Manager struct {
	repo Repository

	mu     sync.RWMutex
	values map[string]string
}

// NewManager creates a manager with sensible defaults. Call Load to overlay
// persisted values.
func NewManager(repo Repository) *Manager {
	return &Manager{
		repo: repo,
		values: map[string]string{
			KeyPremiumEnabled:       "false",
			KeyNotificationsEnabled: "true",
			KeyWeekStartsOn:         "0",
		},
	}
}

// Load overlays persisted settings onto the defaults.
func (m *Manager) Load(ctx context.Context) error {
	if m.repo == nil {
		return nil
	}
	stored, err := m.repo.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for k, v := range stored {
		m.values[k] = v
	}
	return nil
}

// Get returns the raw value for a key, empty if unset.
func (m *Manager) Get(key string) string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.values[key]
}

// Set updates a setting in memory and in storage.
func (m *Manager) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	m.values[key] = value
	m.mu.Unlock()

	if m.repo == nil {
		return nil
	}
	return m.repo.Set(ctx, key, value)
}

// All returns a copy of every setting.
func (m *Manager) All() map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]string, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out
}

// Premium reports whether premium features are unlocked.
func (m *Manager) Premium() bool {
	return m.Get(KeyPremiumEnabled) == "true"
}

// NotificationsEnabled reports whether reminder delivery is allowed.
func (m *Manager) NotificationsEnabled() bool {
	return m.Get(KeyNotificationsEnabled) != "false"
}

// WeekStartsOn returns the configured first day of the week. Invalid values
// fall back to Sunday.
func (m *Manager) WeekStartsOn() time.Weekday {
	n, err := strconv.Atoi(m.Get(KeyWeekStartsOn))
	if err != nil || n < 0 || n > 6 {
		return time.Sunday
	}
	return time.Weekday(n)
}
