package holiday

import (
	"testing"
	"time"
)

func TestByDayKey(t *testing.T) {
	svc, err := NewService()
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	tests := []struct {
		name string
		key  string
		want []string
	}{
		{"new year's day", "2025-01-01", []string{"元日"}},
		{"substitute holiday", "2025-05-06", []string{"振替休日"}},
		{"plain weekday", "2025-06-04", nil},
		{"before catalog range", "2024-12-31", nil},
		{"after catalog range", "2027-01-01", nil},
		{"malformed key", "not-a-date", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := svc.ByDayKey(tt.key)
			if got == nil {
				t.Fatal("ByDayKey returned nil, want empty or populated slice")
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d holidays, want %d", len(got), len(tt.want))
			}
			for i, h := range got {
				if h.Name != tt.want[i] {
					t.Errorf("holiday %d name = %q, want %q", i, h.Name, tt.want[i])
				}
				if h.Date != tt.key {
					t.Errorf("holiday %d date = %q, want %q", i, h.Date, tt.key)
				}
			}
		})
	}
}

func TestByDateUsesLocalDay(t *testing.T) {
	svc, err := NewService()
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	tokyo := time.FixedZone("Asia/Tokyo", 9*60*60)
	// 2024-12-31T20:00:00Z is already 元日 in Tokyo but not in UTC.
	instant := time.Date(2024, 12, 31, 20, 0, 0, 0, time.UTC)

	if got := svc.ByDate(instant, tokyo); len(got) != 1 || got[0].Name != "元日" {
		t.Fatalf("ByDate in Tokyo = %v, want 元日", got)
	}
	if got := svc.ByDate(instant, time.UTC); len(got) != 0 {
		t.Fatalf("ByDate in UTC = %v, want none", got)
	}
}

func TestRange(t *testing.T) {
	svc, err := NewService()
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	r := svc.Range()
	if r.StartYear != 2025 || r.EndYear != 2026 {
		t.Errorf("Range = %+v, want 2025-2026", r)
	}
	if svc.Country() != "JP" {
		t.Errorf("Country = %q, want JP", svc.Country())
	}
}

func TestByDayKeyCopiesEntries(t *testing.T) {
	svc, err := NewService()
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	first := svc.ByDayKey("2025-01-01")
	first[0].Name = "mutated"

	if got := svc.ByDayKey("2025-01-01"); got[0].Name != "元日" {
		t.Errorf("catalog entry mutated through returned slice: %q", got[0].Name)
	}
}
