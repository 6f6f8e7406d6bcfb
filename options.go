package scenedex

import (
	"context"
	"time"
)

// Embedder turns query text into an embedding vector. Implementations wrap
// whatever provider the host application already uses.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// EmbeddingResult is one embedding with provider token usage.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// ChannelWeight is one channel's default share of the fusion weight model.
type ChannelWeight struct {
	Key    string
	Weight float64
	Locked bool
}

// Option configures a Client.
type Option func(*clientConfig)

type clientConfig struct {
	addrs    []string
	password string

	embedder Embedder
	weights  []ChannelWeight

	channelTimeout     time.Duration
	contentWeight      float64
	personWeight       float64
	personCandidateCap int
}

func defaultChannelWeights() []ChannelWeight {
	return []ChannelWeight{
		{Key: "transcript", Weight: 0.35},
		{Key: "visual", Weight: 0.30},
		{Key: "summary", Weight: 0.15},
		{Key: "lexical", Weight: 0.20},
	}
}

// WithRedis sets the Redis addresses to connect to.
func WithRedis(addrs ...string) Option {
	return func(c *clientConfig) {
		c.addrs = addrs
	}
}

// WithPassword sets the database password.
func WithPassword(password string) Option {
	return func(c *clientConfig) {
		c.password = password
	}
}

// WithEmbedder sets the query embedder. Without one, vector channels settle
// as failed and only lexical search contributes.
func WithEmbedder(e Embedder) Option {
	return func(c *clientConfig) {
		c.embedder = e
	}
}

// WithChannelWeights replaces the default weight distribution. Order fixes
// fusion tie-break priority; weights are normalized to sum to 1.
func WithChannelWeights(weights []ChannelWeight) Option {
	return func(c *clientConfig) {
		c.weights = weights
	}
}

// WithChannelTimeout bounds each channel retrieval independently.
func WithChannelTimeout(d time.Duration) Option {
	return func(c *clientConfig) {
		c.channelTimeout = d
	}
}

// WithPersonBlend sets the content/person blend weights used when a query
// names a known person.
func WithPersonBlend(content, person float64) Option {
	return func(c *clientConfig) {
		c.contentWeight = content
		c.personWeight = person
	}
}

// WithPersonCandidateCap bounds the person identity channel retrieval.
func WithPersonCandidateCap(n int) Option {
	return func(c *clientConfig) {
		c.personCandidateCap = n
	}
}
