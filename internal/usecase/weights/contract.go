package weights

import (
	"context"

	domweights "github.com/scenedex/scenedex/internal/domain/weights"
)

// Store persists per-owner weight preferences.
type Store interface {
	Load(ctx context.Context, owner string) (domweights.Model, bool, error)
	Save(ctx context.Context, owner string, model domweights.Model) error
	Delete(ctx context.Context, owner string) error
}
