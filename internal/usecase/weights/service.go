// Package weights is the server-side backing for the interactive weight
// sliders: it loads, updates, and resets per-owner weight preferences. The
// fusion engine reads the same store but never writes it.
package weights

import (
	"context"
	"fmt"

	"github.com/scenedex/scenedex/internal/domain"
	"github.com/scenedex/scenedex/internal/domain/channel"
	domweights "github.com/scenedex/scenedex/internal/domain/weights"
)

// Service manages per-owner weight preferences on top of a system default.
type Service struct {
	defaults domweights.Model
	store    Store
}

// New creates a weights service. defaults is the system distribution an owner
// falls back to until they save a preference.
func New(defaults domweights.Model, store Store) *Service {
	return &Service{defaults: defaults, store: store}
}

// Get returns the owner's effective model and whether it is a saved
// preference rather than the system default.
func (s *Service) Get(ctx context.Context, owner string) (domweights.Model, bool, error) {
	model, saved, err := s.store.Load(ctx, owner)
	if err != nil {
		return domweights.Model{}, false, err
	}
	if !saved {
		return s.defaults, false, nil
	}
	return model, true, nil
}

// Update moves one slider to value and persists the redistributed model.
// Moving a locked slider is rejected with domain.ErrWeightLocked; the caller
// unlocks it first via SetLock.
func (s *Service) Update(ctx context.Context, owner string, key channel.Key, value float64) (domweights.Model, error) {
	model, _, err := s.Get(ctx, owner)
	if err != nil {
		return domweights.Model{}, err
	}

	entry, ok := model.Get(key)
	if !ok {
		return domweights.Model{}, fmt.Errorf("%w: %q", domain.ErrUnknownChannel, key)
	}
	if entry.Locked() {
		return domweights.Model{}, fmt.Errorf("%w: %q", domain.ErrWeightLocked, key)
	}

	updated, err := model.Update(key, value)
	if err != nil {
		return domweights.Model{}, err
	}
	if err := s.store.Save(ctx, owner, updated); err != nil {
		return domweights.Model{}, err
	}
	return updated, nil
}

// SetLock pins or releases one slider and persists the model. Weights are
// untouched, so the sum invariant carries over.
func (s *Service) SetLock(ctx context.Context, owner string, key channel.Key, locked bool) (domweights.Model, error) {
	model, _, err := s.Get(ctx, owner)
	if err != nil {
		return domweights.Model{}, err
	}

	updated, err := model.SetLocked(key, locked)
	if err != nil {
		return domweights.Model{}, fmt.Errorf("%w: %q", domain.ErrUnknownChannel, key)
	}
	if err := s.store.Save(ctx, owner, updated); err != nil {
		return domweights.Model{}, err
	}
	return updated, nil
}

// ApplyPreset overwrites the owner's weights with the preset values,
// renormalizes, and persists. Unknown keys are rejected before anything is
// written.
func (s *Service) ApplyPreset(ctx context.Context, owner string, preset map[channel.Key]float64) (domweights.Model, error) {
	model, _, err := s.Get(ctx, owner)
	if err != nil {
		return domweights.Model{}, err
	}

	for key := range preset {
		if _, ok := model.Get(key); !ok {
			return domweights.Model{}, fmt.Errorf("%w: %q", domain.ErrUnknownChannel, key)
		}
	}

	updated := model.ApplyPreset(preset)
	if err := s.store.Save(ctx, owner, updated); err != nil {
		return domweights.Model{}, err
	}
	return updated, nil
}

// Reset discards the owner's saved preference; subsequent reads see the
// system default.
func (s *Service) Reset(ctx context.Context, owner string) (domweights.Model, error) {
	if err := s.store.Delete(ctx, owner); err != nil {
		return domweights.Model{}, err
	}
	return s.defaults, nil
}
