package domain

import "errors"

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrPersonNotFound signals a missing person directory entry.
	ErrPersonNotFound = errors.New("person not found")
	// ErrUnknownChannel signals a weight or override referencing an unknown channel key.
	ErrUnknownChannel = errors.New("unknown channel")
	// ErrWeightLocked signals an attempt to move a locked weight.
	ErrWeightLocked = errors.New("weight is locked")
	// ErrAllChannelsFailed signals that no active channel produced results.
	ErrAllChannelsFailed = errors.New("all channels failed")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrRateLimited signals a rate limit hit at the embedding provider.
	ErrRateLimited = errors.New("rate limited")
	// ErrInvalidWeightModel signals a weight model violating the sum invariant.
	// Post-normalization this is a programming error, not user input.
	ErrInvalidWeightModel = errors.New("invalid weight model")
)
