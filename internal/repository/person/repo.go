// Package person stores the per-owner person directory used to resolve
// person references in queries to trained identity vectors.
package person

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/scenedex/scenedex/internal/db"
	"github.com/scenedex/scenedex/internal/domain"
	domperson "github.com/scenedex/scenedex/internal/domain/person"
)

const keyPrefix = domain.KeyPrefix + "person:"

// store is the consumer interface for directory entries (ISP).
type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Del(ctx context.Context, key string) error
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo stores person directory entries per owner.
type Repo struct {
	store store
}

// New creates a person directory repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// personDTO is the storage shape of one directory entry.
type personDTO struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Identity []float32 `json:"identity,omitempty"`
}

func entryKey(owner, id string) string {
	return fmt.Sprintf("%s%s:%s", keyPrefix, owner, id)
}

// List returns every person in the owner's directory. Entries removed
// between the scan and the read are skipped.
func (r *Repo) List(ctx context.Context, owner string) ([]domperson.Person, error) {
	keys, err := r.store.Scan(ctx, keyPrefix+owner+":*")
	if err != nil {
		return nil, fmt.Errorf("scan persons: %w", err)
	}

	persons := make([]domperson.Person, 0, len(keys))
	for _, key := range keys {
		data, err := r.store.Get(ctx, key)
		if err != nil {
			if errors.Is(err, db.ErrKeyNotFound) {
				continue
			}
			return nil, fmt.Errorf("load person %s: %w", key, err)
		}
		p, err := decode(data)
		if err != nil {
			return nil, fmt.Errorf("decode person %s: %w", key, err)
		}
		persons = append(persons, p)
	}
	return persons, nil
}

// Lookup returns one person by id. Returns domain.ErrPersonNotFound when the
// owner's directory has no such entry.
func (r *Repo) Lookup(ctx context.Context, owner, id string) (domperson.Person, error) {
	data, err := r.store.Get(ctx, entryKey(owner, id))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domperson.Person{}, domain.ErrPersonNotFound
		}
		return domperson.Person{}, fmt.Errorf("load person: %w", err)
	}
	p, err := decode(data)
	if err != nil {
		return domperson.Person{}, fmt.Errorf("decode person: %w", err)
	}
	return p, nil
}

// Put writes a directory entry, overwriting any previous one with the same id.
func (r *Repo) Put(ctx context.Context, owner string, p domperson.Person) error {
	data, err := json.Marshal(personDTO{
		ID:       p.ID(),
		Name:     p.Name(),
		Identity: p.Identity(),
	})
	if err != nil {
		return fmt.Errorf("encode person: %w", err)
	}
	if err := r.store.Set(ctx, entryKey(owner, p.ID()), data); err != nil {
		return fmt.Errorf("save person: %w", err)
	}
	return nil
}

// Delete removes a directory entry.
func (r *Repo) Delete(ctx context.Context, owner, id string) error {
	if err := r.store.Del(ctx, entryKey(owner, id)); err != nil {
		return fmt.Errorf("delete person: %w", err)
	}
	return nil
}

func decode(data []byte) (domperson.Person, error) {
	var dto personDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return domperson.Person{}, err
	}
	return domperson.New(dto.ID, dto.Name, dto.Identity), nil
}
