package channel

import (
	"context"
	"time"

	domchan "github.com/scenedex/scenedex/internal/domain/channel"

	"github.com/scenedex/scenedex/internal/db"
)

// vectorStore is the consumer interface for KNN retrievers (ISP).
type vectorStore interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// VectorRetriever serves one KNN channel (transcript, visual, summary, or
// person identity) backed by a dedicated FT index.
type VectorRetriever struct {
	key   domchan.Key
	index string
	store vectorStore
}

// NewVector creates a KNN retriever for the given channel key.
func NewVector(key domchan.Key, store vectorStore) *VectorRetriever {
	return &VectorRetriever{key: key, index: IndexName(key), store: store}
}

// Key returns the channel key.
func (r *VectorRetriever) Key() domchan.Key { return r.key }

// NeedsVector reports that this channel searches by query vector.
func (r *VectorRetriever) NeedsVector() bool { return true }

// Retrieve runs one bounded KNN lookup. A query without a vector settles as
// empty: there is nothing to search against (e.g. a person-only query with
// no residual text).
func (r *VectorRetriever) Retrieve(ctx context.Context, q domchan.Query) domchan.Result {
	started := time.Now()

	if len(q.Vector) == 0 {
		return domchan.OK(r.key, nil, time.Since(started))
	}

	res, err := r.store.SearchKNN(ctx, &db.KNNQuery{
		IndexName:    r.index,
		Owner:        q.Owner,
		Vector:       q.Vector,
		K:            q.Cap,
		ReturnFields: []string{"__vector_score"},
	})
	if err != nil {
		return settle(ctx, r.key, err, started)
	}

	return domchan.OK(r.key, toEntries(res.Entries, q.Threshold), time.Since(started))
}
