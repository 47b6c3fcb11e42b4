package pattern

import (
	"context"
	"reflect"
	"testing"

	"github.com/alarm-calendar/backend/internal/storage/models"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   []int
		want []int
	}{
		{
			name: "clamp dedupe sort",
			in:   []int{10, 10, 5000, -3, 5},
			want: []int{0, 5, 10, 4320},
		},
		{
			name: "empty stays empty",
			in:   []int{},
			want: []int{},
		},
		{
			name: "truncated to five after sort",
			in:   []int{120, 60, 30, 15, 10, 5},
			want: []int{5, 10, 15, 30, 60},
		},
		{
			name: "already canonical",
			in:   []int{5, 60},
			want: []int{5, 60},
		},
		{
			name: "duplicates created by clamping collapse",
			in:   []int{-1, -2, 0},
			want: []int{0},
		},
		{
			name: "upper clamp collapses",
			in:   []int{4320, 9999},
			want: []int{4320},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Normalize(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	inputs := [][]int{
		{10, 10, 5000, -3, 5},
		{},
		{4320, 0, 4320, 17},
		{120, 60, 30, 15, 10, 5},
	}

	for _, in := range inputs {
		once := Normalize(in)
		twice := Normalize(once)
		if !reflect.DeepEqual(once, twice) {
			t.Errorf("Normalize not idempotent for %v: %v != %v", in, once, twice)
		}
	}
}

func TestSavePatternRejectsDefaultSlot(t *testing.T) {
	r := NewRegistry(nil, nil)

	if r.SavePattern(context.Background(), models.PatternDefault, SaveInput{OffsetsMin: []int{10}}) {
		t.Error("default slot accepted an edit")
	}

	offsets, _ := r.Resolve(models.PatternDefault)
	if !reflect.DeepEqual(offsets, []int{5, 60}) {
		t.Errorf("default offsets changed: %v", offsets)
	}
}

func TestSaveAndResetCustomPattern(t *testing.T) {
	r := NewRegistry(nil, nil)
	ctx := context.Background()

	ok := r.SavePattern(ctx, models.PatternA, SaveInput{
		Name:       "朝の予定",
		OffsetsMin: []int{30, 10, 30},
		SoundID:    models.SoundBeep,
	})
	if !ok {
		t.Fatal("SavePattern rejected a custom slot")
	}

	p, _ := r.Pattern(models.PatternA)
	if !p.Registered {
		t.Error("saved slot not registered")
	}
	if !reflect.DeepEqual(p.OffsetsMin, []int{10, 30}) {
		t.Errorf("offsets = %v, want [10 30]", p.OffsetsMin)
	}
	if p.SoundID != models.SoundBeep {
		t.Errorf("sound = %q", p.SoundID)
	}

	if !r.ResetPattern(ctx, models.PatternA) {
		t.Fatal("ResetPattern rejected a custom slot")
	}
	p, _ = r.Pattern(models.PatternA)
	if p.Registered || len(p.OffsetsMin) != 0 {
		t.Errorf("slot not back to factory state: %+v", p)
	}
}

func TestResetDefaultIsNoop(t *testing.T) {
	r := NewRegistry(nil, nil)
	if r.ResetPattern(context.Background(), models.PatternDefault) {
		t.Error("default slot accepted a reset")
	}
}

func TestResolveFallsBackToDefault(t *testing.T) {
	r := NewRegistry(nil, nil)
	ctx := context.Background()
	r.SavePattern(ctx, models.PatternB, SaveInput{OffsetsMin: []int{120}})

	tests := []struct {
		name string
		key  models.PatternKey
		want []int
	}{
		{"registered custom slot wins", models.PatternB, []int{120}},
		{"unregistered slot degrades to default", models.PatternC, []int{5, 60}},
		{"unknown key degrades to default", "Z", []int{5, 60}},
		{"legacy lowercase key resolves its slot", "b", []int{120}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			offsets, sound := r.Resolve(tt.key)
			if !reflect.DeepEqual(offsets, tt.want) {
				t.Errorf("offsets = %v, want %v", offsets, tt.want)
			}
			if len(offsets) == 0 {
				t.Error("resolution yielded an empty schedule")
			}
			if sound == "" {
				t.Error("resolution yielded an empty sound")
			}
		})
	}
}

func TestPremiumGateForcesDefault(t *testing.T) {
	premium := true
	r := NewRegistry(nil, func() bool { return premium })
	ctx := context.Background()

	if !r.SavePattern(ctx, models.PatternA, SaveInput{OffsetsMin: []int{45}}) {
		t.Fatal("save rejected while premium active")
	}

	// Downgrade. The registered slot and its stale binding must both stop
	// resolving to custom offsets.
	premium = false

	offsets, _ := r.Resolve(models.PatternA)
	if !reflect.DeepEqual(offsets, []int{5, 60}) {
		t.Errorf("gated resolve = %v, want default offsets", offsets)
	}

	if r.SavePattern(ctx, models.PatternB, SaveInput{OffsetsMin: []int{15}}) {
		t.Error("save accepted while premium off")
	}

	// Upgrade again: the previously saved slot comes back untouched.
	premium = true
	offsets, _ = r.Resolve(models.PatternA)
	if !reflect.DeepEqual(offsets, []int{45}) {
		t.Errorf("post-upgrade resolve = %v, want [45]", offsets)
	}
}

func TestBindings(t *testing.T) {
	r := NewRegistry(nil, nil)
	ctx := context.Background()

	r.Bind(ctx, "ev-1", models.PatternC)
	key, ok := r.BoundKey("ev-1")
	if !ok || key != models.PatternC {
		t.Errorf("BoundKey = %q, %v", key, ok)
	}

	r.Unbind(ctx, "ev-1")
	if _, ok := r.BoundKey("ev-1"); ok {
		t.Error("binding survived Unbind")
	}
}
