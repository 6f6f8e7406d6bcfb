package scenedex

import (
	"context"
	"fmt"

	"github.com/scenedex/scenedex/internal/domain/channel"
	domweights "github.com/scenedex/scenedex/internal/domain/weights"
	weightsuc "github.com/scenedex/scenedex/internal/usecase/weights"
)

// WeightsService manages per-owner weight preferences.
type WeightsService struct {
	svc *weightsuc.Service
}

// WeightEntry is one channel's share of a weight model.
type WeightEntry struct {
	Key    string
	Weight float64
	Locked bool
}

// Weights is an owner's weight model. Saved distinguishes a stored
// preference from the system default.
type Weights struct {
	Entries []WeightEntry
	Saved   bool
}

// Get returns the owner's effective weight model.
func (s *WeightsService) Get(ctx context.Context, owner string) (Weights, error) {
	model, saved, err := s.svc.Get(ctx, owner)
	if err != nil {
		return Weights{}, fmt.Errorf("get weights: %w", err)
	}
	return fromModel(model, saved), nil
}

// Set moves one slider to value; the remainder is redistributed across the
// unlocked channels. Moving a locked slider returns ErrWeightLocked.
func (s *WeightsService) Set(ctx context.Context, owner, key string, value float64) (Weights, error) {
	model, err := s.svc.Update(ctx, owner, channel.Key(key), value)
	if err != nil {
		return Weights{}, fmt.Errorf("set weight: %w", err)
	}
	return fromModel(model, true), nil
}

// SetLock pins or releases one slider.
func (s *WeightsService) SetLock(ctx context.Context, owner, key string, locked bool) (Weights, error) {
	model, err := s.svc.SetLock(ctx, owner, channel.Key(key), locked)
	if err != nil {
		return Weights{}, fmt.Errorf("set lock: %w", err)
	}
	return fromModel(model, true), nil
}

// ApplyPreset overwrites matching channels with the preset values and
// renormalizes.
func (s *WeightsService) ApplyPreset(ctx context.Context, owner string, preset map[string]float64) (Weights, error) {
	model, err := s.svc.ApplyPreset(ctx, owner, toChannelMap(preset))
	if err != nil {
		return Weights{}, fmt.Errorf("apply preset: %w", err)
	}
	return fromModel(model, true), nil
}

// Reset discards the owner's saved preference.
func (s *WeightsService) Reset(ctx context.Context, owner string) (Weights, error) {
	model, err := s.svc.Reset(ctx, owner)
	if err != nil {
		return Weights{}, fmt.Errorf("reset weights: %w", err)
	}
	return fromModel(model, false), nil
}

func fromModel(model domweights.Model, saved bool) Weights {
	entries := model.Entries()
	out := Weights{Saved: saved, Entries: make([]WeightEntry, len(entries))}
	for i, e := range entries {
		out.Entries[i] = WeightEntry{
			Key:    string(e.Key()),
			Weight: e.Weight(),
			Locked: e.Locked(),
		}
	}
	return out
}
