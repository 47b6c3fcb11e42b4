package settings

import (
	"context"
	"testing"
	"time"
)

type fakeRepo struct {
	stored map[string]string
}

func (r *fakeRepo) GetAll(ctx context.Context) (map[string]string, error) {
	return r.stored, nil
}

func (r *fakeRepo) Set(ctx context.Context, key, value string) error {
	r.stored[key] = value
	return nil
}

func TestDefaults(t *testing.T) {
	m := NewManager(nil)
	if m.Premium() {
		t.Error("premium should default to off")
	}
	if !m.NotificationsEnabled() {
		t.Error("notifications should default to on")
	}
	if m.WeekStartsOn() != time.Sunday {
		t.Errorf("WeekStartsOn = %v, want Sunday", m.WeekStartsOn())
	}
}

func TestLoadOverlaysStoredValues(t *testing.T) {
	repo := &fakeRepo{stored: map[string]string{
		KeyPremiumEnabled: "true",
		KeyWeekStartsOn:   "1",
	}}
	m := NewManager(repo)
	if err := m.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	if !m.Premium() {
		t.Error("expected premium enabled after load")
	}
	if m.WeekStartsOn() != time.Monday {
		t.Errorf("WeekStartsOn = %v, want Monday", m.WeekStartsOn())
	}
	// Keys absent from storage keep their defaults.
	if !m.NotificationsEnabled() {
		t.Error("notifications default lost during load")
	}
}

func TestSetWritesThrough(t *testing.T) {
	repo := &fakeRepo{stored: map[string]string{}}
	m := NewManager(repo)

	if err := m.Set(context.Background(), KeyNotificationsEnabled, "false"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if m.NotificationsEnabled() {
		t.Error("expected notifications disabled")
	}
	if repo.stored[KeyNotificationsEnabled] != "false" {
		t.Error("value not persisted")
	}
}

func TestWeekStartsOnInvalidValue(t *testing.T) {
	m := NewManager(nil)
	if err := m.Set(context.Background(), KeyWeekStartsOn, "9"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if m.WeekStartsOn() != time.Sunday {
		t.Errorf("WeekStartsOn = %v, want Sunday fallback", m.WeekStartsOn())
	}
}
