package channel

import (
	"context"
	"time"

	domchan "github.com/scenedex/scenedex/internal/domain/channel"

	"github.com/scenedex/scenedex/internal/db"
)

// textStore is the consumer interface for the BM25 retriever (ISP).
type textStore interface {
	SearchBM25(ctx context.Context, q *db.TextQuery) (*db.SearchResult, error)
}

// LexicalRetriever serves the keyword channel via BM25 over scene transcripts.
type LexicalRetriever struct {
	index string
	store textStore
}

// NewLexical creates the BM25 retriever.
func NewLexical(store textStore) *LexicalRetriever {
	return &LexicalRetriever{index: IndexName(domchan.Lexical), store: store}
}

// Key returns the lexical channel key.
func (r *LexicalRetriever) Key() domchan.Key { return domchan.Lexical }

// NeedsVector reports that this channel searches by query text.
func (r *LexicalRetriever) NeedsVector() bool { return false }

// Retrieve runs one bounded BM25 lookup. An empty residual query settles as
// empty rather than matching everything.
func (r *LexicalRetriever) Retrieve(ctx context.Context, q domchan.Query) domchan.Result {
	started := time.Now()

	if q.Text == "" {
		return domchan.OK(r.Key(), nil, time.Since(started))
	}

	res, err := r.store.SearchBM25(ctx, &db.TextQuery{
		IndexName: r.index,
		Owner:     q.Owner,
		Query:     q.Text,
		TopK:      q.Cap,
	})
	if err != nil {
		return settle(ctx, r.Key(), err, started)
	}

	// BM25 scores are unbounded; the per-request normalizer maps them to [0,1].
	return domchan.OK(r.Key(), toEntries(res.Entries, q.Threshold), time.Since(started))
}
