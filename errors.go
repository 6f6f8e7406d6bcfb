package scenedex

import "github.com/scenedex/scenedex/internal/domain"

// Sentinel errors surfaced by the client. Match with errors.Is.
var (
	// ErrUnknownChannel is returned when a weight or override references a
	// channel the engine does not know.
	ErrUnknownChannel = domain.ErrUnknownChannel
	// ErrWeightLocked is returned when a Set targets a locked slider.
	ErrWeightLocked = domain.ErrWeightLocked
	// ErrPersonNotFound is returned for a missing person directory entry.
	ErrPersonNotFound = domain.ErrPersonNotFound
)
