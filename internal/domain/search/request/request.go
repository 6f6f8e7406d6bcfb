// Package request defines the validated fusion search request.
package request

import (
	"fmt"

	"github.com/scenedex/scenedex/internal/domain/channel"
)

// Search parameter limits.
const (
	// MaxQueryLength is the maximum allowed search query length.
	MaxQueryLength = 2048
	DefaultTopK    = 20
	MaxTopK        = 200
)

// Request is a validated fusion search query.
type Request struct {
	query          string
	owner          string
	topK           int
	threshold      float64
	weightOverride map[channel.Key]float64
	activeChannels []channel.Key
}

// New validates and normalizes search parameters.
// Defaults: topK=20. An empty activeChannels means all configured channels.
func New(
	query, owner string,
	topK int,
	threshold float64,
	weightOverride map[channel.Key]float64,
	activeChannels []channel.Key,
) (Request, error) {
	if query == "" {
		return Request{}, fmt.Errorf("query is required")
	}
	if len(query) > MaxQueryLength {
		return Request{}, fmt.Errorf("query too long (max %d chars)", MaxQueryLength)
	}
	if owner == "" {
		return Request{}, fmt.Errorf("owner is required")
	}
	if topK <= 0 {
		topK = DefaultTopK
	}
	if topK > MaxTopK {
		topK = MaxTopK
	}
	if threshold < 0 || threshold > 1 {
		return Request{}, fmt.Errorf("threshold must be between 0 and 1")
	}
	for key, w := range weightOverride {
		if !key.IsValid() || key == channel.Person {
			return Request{}, fmt.Errorf("weight override for unknown channel %q", key)
		}
		if w < 0 {
			return Request{}, fmt.Errorf("negative weight override for channel %q", key)
		}
	}
	for _, key := range activeChannels {
		if !key.IsValid() || key == channel.Person {
			return Request{}, fmt.Errorf("unknown active channel %q", key)
		}
	}

	return Request{
		query:          query,
		owner:          owner,
		topK:           topK,
		threshold:      threshold,
		weightOverride: weightOverride,
		activeChannels: activeChannels,
	}, nil
}

// Query returns the raw query text (before person parsing).
func (r *Request) Query() string { return r.query }

// Owner returns the owner scope every channel lookup is restricted to.
func (r *Request) Owner() string { return r.owner }

// TopK returns the number of fused candidates to return.
func (r *Request) TopK() int { return r.topK }

// Threshold returns the minimum raw similarity passed to each channel.
func (r *Request) Threshold() float64 { return r.threshold }

// WeightOverride returns the per-request weight override (nil when absent).
func (r *Request) WeightOverride() map[channel.Key]float64 { return r.weightOverride }

// ActiveChannels returns the requested channel subset (nil means all).
func (r *Request) ActiveChannels() []channel.Key { return r.activeChannels }

// ChannelActive reports whether key participates in this request.
func (r *Request) ChannelActive(key channel.Key) bool {
	if len(r.activeChannels) == 0 {
		return true
	}
	for _, k := range r.activeChannels {
		if k == key {
			return true
		}
	}
	return false
}
