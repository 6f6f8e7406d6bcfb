package search

import (
	"context"

	"github.com/scenedex/scenedex/internal/domain/channel"
	"github.com/scenedex/scenedex/internal/domain/person"
	"github.com/scenedex/scenedex/internal/domain/weights"
)

// Retriever executes one bounded similarity lookup for a single channel.
// All failure modes (backend error, timeout, empty) settle as statuses on the
// returned Result, never as errors, so the orchestrator treats every channel
// uniformly.
type Retriever interface {
	Key() channel.Key
	// NeedsVector reports whether the channel searches by query vector
	// rather than query text.
	NeedsVector() bool
	Retrieve(ctx context.Context, q channel.Query) channel.Result
}

// WeightSource loads an owner's saved weight preference. The second return
// is false when the owner has no saved preference. This engine only reads
// preferences; writes belong to the weights use case.
type WeightSource interface {
	Load(ctx context.Context, owner string) (weights.Model, bool, error)
}

// PersonDirectory lists the known persons within an owner's library for
// per-request name index construction.
type PersonDirectory interface {
	List(ctx context.Context, owner string) ([]person.Person, error)
}
