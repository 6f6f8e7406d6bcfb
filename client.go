// Package scenedex is the embedded client for the scene fusion search
// engine. It wires the retrieval channels, weight preferences, and person
// directory against a Redis store in-process, without the HTTP API.
package scenedex

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/scenedex/scenedex/internal/db"
	dbRedis "github.com/scenedex/scenedex/internal/db/redis"
	"github.com/scenedex/scenedex/internal/domain"
	"github.com/scenedex/scenedex/internal/domain/channel"
	domweights "github.com/scenedex/scenedex/internal/domain/weights"
	channelrepo "github.com/scenedex/scenedex/internal/repository/channel"
	personrepo "github.com/scenedex/scenedex/internal/repository/person"
	weightsrepo "github.com/scenedex/scenedex/internal/repository/weights"
	searchuc "github.com/scenedex/scenedex/internal/usecase/search"
	weightsuc "github.com/scenedex/scenedex/internal/usecase/weights"
)

const defaultReadinessTimeout = 10 * time.Second

// Client is the scenedex SDK entry point.
type Client struct {
	store      db.Store
	searchSvc  *searchuc.Service
	weightsSvc *weightsuc.Service
}

// New creates a scenedex Client and connects to the database.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		weights: defaultChannelWeights(),
	}
	for _, o := range opts {
		o(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("scenedex: database address required (use WithRedis)")
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Password: cfg.password,
	})
	if err != nil {
		return nil, fmt.Errorf("scenedex: create redis store: %w", err)
	}

	ctx := context.Background()
	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("scenedex: database not ready: %w", err)
	}

	return wireClient(store, cfg)
}

func wireClient(store db.Store, cfg *clientConfig) (*Client, error) {
	defaults, err := defaultsModel(cfg.weights)
	if err != nil {
		return nil, fmt.Errorf("scenedex: channel weights: %w", err)
	}

	// Embedder: noop unless configured (lexical search still works, vector
	// channels report failure)
	var domEmb domain.Embedder = &noopEmbedder{}
	if cfg.embedder != nil {
		domEmb = &embedderAdapter{inner: cfg.embedder}
	}

	retrievers := []searchuc.Retriever{
		channelrepo.NewVector(channel.Transcript, store),
		channelrepo.NewVector(channel.Visual, store),
		channelrepo.NewVector(channel.Summary, store),
		channelrepo.NewLexical(store),
		channelrepo.NewVector(channel.Person, store),
	}
	weightsRepo := weightsrepo.New(store)
	personRepo := personrepo.New(store)

	searchSvc := searchuc.New(retrievers, defaults, weightsRepo, personRepo, domEmb, searchuc.Config{
		ChannelTimeout:     cfg.channelTimeout,
		ContentWeight:      cfg.contentWeight,
		PersonWeight:       cfg.personWeight,
		PersonCandidateCap: cfg.personCandidateCap,
	})
	weightsSvc := weightsuc.New(defaults, weightsRepo)

	return &Client{
		store:      store,
		searchSvc:  searchSvc,
		weightsSvc: weightsSvc,
	}, nil
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Weights returns the weight preference service.
func (c *Client) Weights() *WeightsService {
	return &WeightsService{svc: c.weightsSvc}
}

func defaultsModel(weights []ChannelWeight) (domweights.Model, error) {
	entries := make([]domweights.Entry, len(weights))
	for i, w := range weights {
		entries[i] = domweights.NewEntry(channel.Key(w.Key), w.Weight, w.Locked)
	}
	return domweights.New(entries)
}

// embedderAdapter wraps the public Embedder to satisfy internal domain.Embedder.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

// noopEmbedder returns an error on Embed call (used when no embedder configured).
type noopEmbedder struct{}

func (noopEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	return domain.EmbeddingResult{}, errors.New(
		"scenedex: embedder not configured (use WithEmbedder for vector channels)",
	)
}
