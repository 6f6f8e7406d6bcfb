// Package weights persists per-owner weight preferences as JSON blobs.
// The fusion engine only reads them; writes come from the weights use case
// backing the interactive sliders.
package weights

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/scenedex/scenedex/internal/db"
	"github.com/scenedex/scenedex/internal/domain"
	"github.com/scenedex/scenedex/internal/domain/channel"
	domweights "github.com/scenedex/scenedex/internal/domain/weights"
)

const keyPrefix = domain.KeyPrefix + "weights:"

// store is the consumer interface for weight preferences (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Del(ctx context.Context, key string) error
}

// Repo stores weight preferences per owner.
type Repo struct {
	store store
}

// New creates a weight preference repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// entryDTO is the storage shape of one weight entry.
type entryDTO struct {
	Key    string  `json:"key"`
	Weight float64 `json:"weight"`
	Locked bool    `json:"locked"`
}

type modelDTO struct {
	Entries []entryDTO `json:"entries"`
}

// Load reads the owner's saved model. The second return is false when no
// preference is saved.
func (r *Repo) Load(ctx context.Context, owner string) (domweights.Model, bool, error) {
	data, err := r.store.Get(ctx, keyPrefix+owner)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domweights.Model{}, false, nil
		}
		return domweights.Model{}, false, fmt.Errorf("load weights: %w", err)
	}

	var dto modelDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return domweights.Model{}, false, fmt.Errorf("decode weights: %w", err)
	}

	entries := make([]domweights.Entry, 0, len(dto.Entries))
	for _, e := range dto.Entries {
		entries = append(entries, domweights.NewEntry(channel.Key(e.Key), e.Weight, e.Locked))
	}
	model, err := domweights.New(entries)
	if err != nil {
		return domweights.Model{}, false, fmt.Errorf("rebuild weights: %w", err)
	}
	return model, true, nil
}

// Save writes the owner's model, overwriting any previous preference.
func (r *Repo) Save(ctx context.Context, owner string, model domweights.Model) error {
	dto := modelDTO{Entries: make([]entryDTO, 0, model.Len())}
	for _, e := range model.Entries() {
		dto.Entries = append(dto.Entries, entryDTO{
			Key:    string(e.Key()),
			Weight: e.Weight(),
			Locked: e.Locked(),
		})
	}

	data, err := json.Marshal(dto)
	if err != nil {
		return fmt.Errorf("encode weights: %w", err)
	}
	if err := r.store.Set(ctx, keyPrefix+owner, data); err != nil {
		return fmt.Errorf("save weights: %w", err)
	}
	return nil
}

// Delete removes the owner's saved preference, reverting them to defaults.
func (r *Repo) Delete(ctx context.Context, owner string) error {
	if err := r.store.Del(ctx, keyPrefix+owner); err != nil {
		return fmt.Errorf("delete weights: %w", err)
	}
	return nil
}
