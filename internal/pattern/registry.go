// Package pattern owns the alarm pattern slots and the event-to-pattern
// bindings. Resolution and editing both apply the premium gate here, not
// in the UI, so stale state can never resurrect a custom schedule after a
// downgrade.
package pattern

import (
	"context"
	"log"
	"sort"
	"sync"

	"github.com/alarm-calendar/backend/internal/storage/models"
)

// Repository is the persistence seam for the registry.
// *storage.PatternRepository satisfies it; a nil Repository makes the
// registry memory-only.
type Repository interface {
	ListAll(ctx context.Context) ([]models.AlarmPattern, error)
	Save(ctx context.Context, p *models.AlarmPattern) error
	ListBindings(ctx context.Context) (map[string]models.PatternKey, error)
	SaveBinding(ctx context.Context, eventID string, key models.PatternKey) error
	DeleteBinding(ctx context.Context, eventID string) error
}

// Registry holds the fixed pattern slot set and the per-event bindings.
type Registry struct {
	mu   sync.RWMutex
	repo Repository

	patterns map[models.PatternKey]models.AlarmPattern
	bindings map[string]models.PatternKey

	// premium gates custom pattern use. A nil func means customization
	// is not gated in this deployment.
	premium func() bool
}

// SaveInput carries the editable fields of a custom pattern slot.
type SaveInput struct {
	Name       string
	OffsetsMin []int
	SoundID    models.SoundID
}

// NewRegistry creates a registry seeded with factory slots. Call Load to
// overlay persisted state.
func NewRegistry(repo Repository, premium func() bool) *Registry {
	patterns := make(map[models.PatternKey]models.AlarmPattern, len(models.PatternKeys))
	for _, key := range models.PatternKeys {
		patterns[key] = models.FactoryPattern(key)
	}
	return &Registry{
		repo:     repo,
		patterns: patterns,
		bindings: make(map[string]models.PatternKey),
		premium:  premium,
	}
}

// Load overlays persisted patterns and bindings. Slots missing from
// storage keep their factory state.
func (r *Registry) Load(ctx context.Context) error {
	if r.repo == nil {
		return nil
	}

	patterns, err := r.repo.ListAll(ctx)
	if err != nil {
		return err
	}
	bindings, err := r.repo.ListBindings(ctx)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range patterns {
		if p.Key == models.PatternDefault {
			// The default slot is system-defined; storage never overrides it.
			continue
		}
		p.OffsetsMin = Normalize(p.OffsetsMin)
		r.patterns[p.Key] = p
	}
	r.bindings = bindings
	if r.bindings == nil {
		r.bindings = make(map[string]models.PatternKey)
	}

	return nil
}

// Normalize canonicalizes an offset list: clamp into the valid range,
// dedupe, sort ascending, truncate to the slot limit. Applying it twice
// yields the same result as once.
func Normalize(offsets []int) []int {
	seen := make(map[int]bool, len(offsets))
	out := make([]int, 0, len(offsets))
	for _, m := range offsets {
		if m < models.MinOffsetMinutes {
			m = models.MinOffsetMinutes
		}
		if m > models.MaxOffsetMinutes {
			m = models.MaxOffsetMinutes
		}
		if seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	sort.Ints(out)
	if len(out) > models.MaxOffsetsPerPattern {
		out = out[:models.MaxOffsetsPerPattern]
	}
	return out
}

// SavePattern registers a custom slot with the given name, offsets, and
// sound. The default slot is immutable and custom slots are locked while
// premium is off; both cases are a no-op reported through the return.
func (r *Registry) SavePattern(ctx context.Context, key models.PatternKey, input SaveInput) bool {
	key = models.CanonicalPatternKey(key)
	if key == models.PatternDefault {
		return false
	}
	if !r.customizationEnabled() {
		return false
	}

	r.mu.Lock()
	p := r.patterns[key]
	if input.Name != "" {
		p.Name = input.Name
	}
	p.OffsetsMin = Normalize(input.OffsetsMin)
	p.SoundID = models.CanonicalSoundID(input.SoundID)
	p.Registered = true
	r.patterns[key] = p
	r.mu.Unlock()

	r.persist(ctx, p)
	return true
}

// ResetPattern restores a custom slot to its unregistered factory state.
// No-op for the default slot.
func (r *Registry) ResetPattern(ctx context.Context, key models.PatternKey) bool {
	key = models.CanonicalPatternKey(key)
	if key == models.PatternDefault {
		return false
	}

	p := models.FactoryPattern(key)
	r.mu.Lock()
	r.patterns[key] = p
	r.mu.Unlock()

	r.persist(ctx, p)
	return true
}

// Pattern returns a single slot.
func (r *Registry) Pattern(key models.PatternKey) (models.AlarmPattern, bool) {
	key = models.CanonicalPatternKey(key)
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.patterns[key]
	return p, ok
}

// Patterns returns every slot in display order.
func (r *Registry) Patterns() []models.AlarmPattern {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.AlarmPattern, 0, len(models.PatternKeys))
	for _, key := range models.PatternKeys {
		out = append(out, r.patterns[key])
	}
	return out
}

// Resolve returns the offsets and sound to schedule with for the
// requested key. Unregistered slots, unknown keys, and any custom key
// while premium is off all degrade to the default slot, never to an
// empty schedule.
func (r *Registry) Resolve(key models.PatternKey) ([]int, models.SoundID) {
	key = models.CanonicalPatternKey(key)
	if !r.customizationEnabled() {
		key = models.PatternDefault
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.patterns[key]
	if !ok || !p.Registered {
		p = r.patterns[models.PatternDefault]
	}

	offsets := make([]int, len(p.OffsetsMin))
	copy(offsets, p.OffsetsMin)
	return offsets, p.SoundID
}

// Bind records which pattern key was last used to schedule an event.
func (r *Registry) Bind(ctx context.Context, eventID string, key models.PatternKey) {
	key = models.CanonicalPatternKey(key)

	r.mu.Lock()
	r.bindings[eventID] = key
	r.mu.Unlock()

	if r.repo != nil {
		if err := r.repo.SaveBinding(ctx, eventID, key); err != nil {
			log.Printf("Failed to persist pattern binding for event %s: %v", eventID, err)
		}
	}
}

// BoundKey returns the pattern key last used for an event.
func (r *Registry) BoundKey(eventID string) (models.PatternKey, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	key, ok := r.bindings[eventID]
	return key, ok
}

// Unbind drops the binding for an event, typically on event deletion.
func (r *Registry) Unbind(ctx context.Context, eventID string) {
	r.mu.Lock()
	delete(r.bindings, eventID)
	r.mu.Unlock()

	if r.repo != nil {
		if err := r.repo.DeleteBinding(ctx, eventID); err != nil {
			log.Printf("Failed to remove pattern binding for event %s: %v", eventID, err)
		}
	}
}

func (r *Registry) customizationEnabled() bool {
	return r.premium == nil || r.premium()
}

func (r *Registry) persist(ctx context.Context, p models.AlarmPattern) {
	if r.repo == nil {
		return
	}
	if err := r.repo.Save(ctx, &p); err != nil {
		log.Printf("Failed to persist pattern %s: %v", p.Key, err)
	}
}
