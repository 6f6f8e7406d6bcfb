// Package weights models a named distribution of channel weights that always
// sums to 1. It backs the interactive "locked slider" weight controls: moving
// one weight redistributes the difference across the unlocked remainder.
package weights

import (
	"fmt"
	"math"

	"github.com/scenedex/scenedex/internal/domain/channel"
)

// Epsilon is the tolerance used for the sum-to-1 invariant and for detecting
// near-zero weight groups during redistribution.
const Epsilon = 1e-6

// Entry is one channel's share of the distribution.
type Entry struct {
	key    channel.Key
	weight float64
	locked bool
}

// NewEntry creates a weight entry with the weight clamped to [0,1].
func NewEntry(key channel.Key, weight float64, locked bool) Entry {
	return Entry{key: key, weight: clamp01(weight), locked: locked}
}

// Key returns the channel key.
func (e Entry) Key() channel.Key { return e.key }

// Weight returns the channel's share in [0,1].
func (e Entry) Weight() float64 { return e.weight }

// Locked reports whether the entry is pinned against redistribution.
func (e Entry) Locked() bool { return e.locked }

// Model is an ordered weight distribution over unique channel keys.
// Models are values: every transform returns a new Model.
type Model struct {
	entries []Entry
}

// New creates a model from entries and normalizes it.
// Duplicate keys are rejected.
func New(entries []Entry) (Model, error) {
	seen := make(map[channel.Key]bool, len(entries))
	for _, e := range entries {
		if seen[e.key] {
			return Model{}, fmt.Errorf("duplicate weight key %q", e.key)
		}
		seen[e.key] = true
	}
	m := Model{entries: append([]Entry(nil), entries...)}
	return m.Normalize(), nil
}

// Entries returns a copy of the entries in order.
func (m Model) Entries() []Entry {
	return append([]Entry(nil), m.entries...)
}

// Len returns the number of entries.
func (m Model) Len() int { return len(m.entries) }

// Get returns the entry for key.
func (m Model) Get(key channel.Key) (Entry, bool) {
	for _, e := range m.entries {
		if e.key == key {
			return e, true
		}
	}
	return Entry{}, false
}

// Weight returns the weight for key, or 0 when the key is absent.
func (m Model) Weight(key channel.Key) float64 {
	e, ok := m.Get(key)
	if !ok {
		return 0
	}
	return e.weight
}

// Sum returns the total weight.
func (m Model) Sum() float64 {
	var sum float64
	for _, e := range m.entries {
		sum += e.weight
	}
	return sum
}

// Valid reports whether the sum-to-1 invariant holds and every weight is in [0,1].
func (m Model) Valid() bool {
	for _, e := range m.entries {
		if e.weight < -Epsilon || e.weight > 1+Epsilon {
			return false
		}
	}
	return math.Abs(m.Sum()-1) <= Epsilon
}

// Normalize rescales the unlocked entries so the model sums to 1.
//
// Locked entries are never touched unless their own sum exceeds 1; in that
// case they are scaled down proportionally to exactly 1 and every unlocked
// entry is zeroed. When every entry is locked the model is returned unchanged:
// there is nothing left to adjust, and callers are expected to keep at least
// one entry unlocked in steady state.
func (m Model) Normalize() Model {
	out := m.clone()

	var locked, unlocked []int
	for i, e := range out.entries {
		if e.locked {
			locked = append(locked, i)
		} else {
			unlocked = append(unlocked, i)
		}
	}
	if len(unlocked) == 0 {
		return out
	}

	var lockedSum float64
	for _, i := range locked {
		lockedSum += out.entries[i].weight
	}

	if lockedSum > 1+Epsilon {
		// Locked entries alone overflow the budget: clamp them to 1 and
		// give the unlocked entries nothing.
		scale := 1 / lockedSum
		for _, i := range locked {
			out.entries[i].weight = clamp01(out.entries[i].weight * scale)
		}
		for _, i := range unlocked {
			out.entries[i].weight = 0
		}
		return out
	}

	target := 1 - lockedSum
	var unlockedSum float64
	for _, i := range unlocked {
		unlockedSum += out.entries[i].weight
	}

	if unlockedSum < Epsilon {
		even := target / float64(len(unlocked))
		for _, i := range unlocked {
			out.entries[i].weight = clamp01(even)
		}
		return out
	}

	scale := target / unlockedSum
	for _, i := range unlocked {
		out.entries[i].weight = clamp01(out.entries[i].weight * scale)
	}
	return out
}

// Update sets key's weight to value and redistributes the difference across
// the other unlocked entries in proportion to their current share, then
// normalizes to absorb clamping drift. Locked entries other than key are
// never changed. Returns an error when key is absent.
func (m Model) Update(key channel.Key, value float64) (Model, error) {
	out := m.clone()

	target := -1
	for i, e := range out.entries {
		if e.key == key {
			target = i
			break
		}
	}
	if target < 0 {
		return Model{}, fmt.Errorf("unknown weight key %q", key)
	}

	value = clamp01(value)
	delta := value - out.entries[target].weight

	var others []int
	for i, e := range out.entries {
		if i != target && !e.locked {
			others = append(others, i)
		}
	}

	if len(others) > 0 && delta != 0 {
		var othersSum float64
		for _, i := range others {
			othersSum += out.entries[i].weight
		}
		if othersSum < Epsilon {
			even := -delta / float64(len(others))
			for _, i := range others {
				out.entries[i].weight = clamp01(out.entries[i].weight + even)
			}
		} else {
			// Larger shares absorb more of the compensating change.
			for _, i := range others {
				share := out.entries[i].weight / othersSum
				out.entries[i].weight = clamp01(out.entries[i].weight - delta*share)
			}
		}
	}

	out.entries[target].weight = value
	return out.Normalize(), nil
}

// SetLocked pins or releases key without changing any weight.
// Returns an error when key is absent.
func (m Model) SetLocked(key channel.Key, locked bool) (Model, error) {
	out := m.clone()
	for i, e := range out.entries {
		if e.key == key {
			out.entries[i].locked = locked
			return out, nil
		}
	}
	return Model{}, fmt.Errorf("unknown weight key %q", key)
}

// ApplyPreset overwrites matching keys' weights with the preset values,
// preserving locked flags and untouched keys, then normalizes. The preset
// itself need not sum to 1.
func (m Model) ApplyPreset(preset map[channel.Key]float64) Model {
	out := m.clone()
	for i, e := range out.entries {
		if w, ok := preset[e.key]; ok {
			out.entries[i].weight = clamp01(w)
		}
	}
	return out.Normalize()
}

func (m Model) clone() Model {
	return Model{entries: append([]Entry(nil), m.entries...)}
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
