package httpapi

import (
	"context"

	"github.com/scenedex/scenedex/internal/domain/channel"
	"github.com/scenedex/scenedex/internal/domain/search/request"
	"github.com/scenedex/scenedex/internal/domain/search/result"
	"github.com/scenedex/scenedex/internal/domain/weights"
	healthuc "github.com/scenedex/scenedex/internal/usecase/health"
)

// searchService runs one fusion search pass.
type searchService interface {
	Search(ctx context.Context, req *request.Request) (*result.Response, error)
}

// weightsService manages per-owner weight preferences.
type weightsService interface {
	Get(ctx context.Context, owner string) (weights.Model, bool, error)
	Update(ctx context.Context, owner string, key channel.Key, value float64) (weights.Model, error)
	SetLock(ctx context.Context, owner string, key channel.Key, locked bool) (weights.Model, error)
	ApplyPreset(ctx context.Context, owner string, preset map[channel.Key]float64) (weights.Model, error)
	Reset(ctx context.Context, owner string) (weights.Model, error)
}

// healthService aggregates component health checks.
type healthService interface {
	Check(ctx context.Context) healthuc.Report
}
