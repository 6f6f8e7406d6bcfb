package scenedex

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/scenedex/scenedex/internal/db"
)

// fakeStore is an in-memory db.Store for wiring tests.
type fakeStore struct {
	kv        map[string][]byte
	knnFn     func(q *db.KNNQuery) (*db.SearchResult, error)
	bm25Fn    func(q *db.TextQuery) (*db.SearchResult, error)
	pingErr   error
	closedCnt int
}

func newFakeStore() *fakeStore {
	return &fakeStore{kv: make(map[string][]byte)}
}

func (s *fakeStore) Ping(_ context.Context) error { return s.pingErr }
func (s *fakeStore) Close()                       { s.closedCnt++ }

func (s *fakeStore) WaitForReady(_ context.Context, _ time.Duration) error { return s.pingErr }

func (s *fakeStore) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := s.kv[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (s *fakeStore) Set(_ context.Context, key string, value []byte) error {
	s.kv[key] = value
	return nil
}

func (s *fakeStore) SetWithTTL(_ context.Context, key string, value []byte, _ time.Duration) error {
	s.kv[key] = value
	return nil
}

func (s *fakeStore) Del(_ context.Context, key string) error {
	delete(s.kv, key)
	return nil
}

func (s *fakeStore) Scan(_ context.Context, pattern string) ([]string, error) {
	prefix := strings.TrimSuffix(pattern, "*")
	var keys []string
	for k := range s.kv {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

func (s *fakeStore) SearchKNN(_ context.Context, q *db.KNNQuery) (*db.SearchResult, error) {
	if s.knnFn != nil {
		return s.knnFn(q)
	}
	return &db.SearchResult{}, nil
}

func (s *fakeStore) SearchBM25(_ context.Context, q *db.TextQuery) (*db.SearchResult, error) {
	if s.bm25Fn != nil {
		return s.bm25Fn(q)
	}
	return &db.SearchResult{}, nil
}

type fakeEmbedder struct {
	vector []float32
	err    error
}

func (e *fakeEmbedder) Embed(_ context.Context, _ string) (EmbeddingResult, error) {
	if e.err != nil {
		return EmbeddingResult{}, e.err
	}
	return EmbeddingResult{Embedding: e.vector, TotalTokens: 3}, nil
}

func TestNew_RequiresAddress(t *testing.T) {
	_, err := New()
	if err == nil {
		t.Fatal("expected error without an address")
	}
	if !strings.Contains(err.Error(), "database address required") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestWireClient_InvalidWeights(t *testing.T) {
	cfg := &clientConfig{weights: []ChannelWeight{
		{Key: "transcript", Weight: 0.5},
		{Key: "transcript", Weight: 0.5},
	}}
	if _, err := wireClient(newFakeStore(), cfg); err == nil {
		t.Fatal("expected error for duplicate channel weights")
	}
}

func TestQuery_FusesChannels(t *testing.T) {
	store := newFakeStore()
	store.knnFn = func(q *db.KNNQuery) (*db.SearchResult, error) {
		return &db.SearchResult{Total: 2, Entries: []db.SearchEntry{
			{Key: "scenedex:scene:s-1", Score: 0.9},
			{Key: "scenedex:scene:s-2", Score: 0.4},
		}}, nil
	}
	store.bm25Fn = func(q *db.TextQuery) (*db.SearchResult, error) {
		return &db.SearchResult{Total: 1, Entries: []db.SearchEntry{
			{Key: "scenedex:scene:s-2", Score: 3.1},
		}}, nil
	}

	cfg := &clientConfig{weights: defaultChannelWeights()}
	cfg.embedder = &fakeEmbedder{vector: []float32{0.1, 0.2}}
	client, err := wireClient(store, cfg)
	if err != nil {
		t.Fatalf("wire client: %v", err)
	}

	resp, err := client.Query(context.Background(), "lib-1", "sunset over the bay", nil)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if resp.NoResults {
		t.Fatal("unexpected no_results")
	}
	if len(resp.Candidates) == 0 {
		t.Fatal("expected fused candidates")
	}
	if resp.Candidates[0].EntityID != "s-1" {
		t.Errorf("top candidate: got %q, want s-1", resp.Candidates[0].EntityID)
	}
	if resp.WeightSource != "default" {
		t.Errorf("weight source: got %q", resp.WeightSource)
	}
}

func TestQuery_AllChannelsDown(t *testing.T) {
	store := newFakeStore()
	backendErr := errors.New("index gone")
	store.knnFn = func(q *db.KNNQuery) (*db.SearchResult, error) { return nil, backendErr }
	store.bm25Fn = func(q *db.TextQuery) (*db.SearchResult, error) { return nil, backendErr }

	cfg := &clientConfig{weights: defaultChannelWeights()}
	cfg.embedder = &fakeEmbedder{vector: []float32{0.1}}
	client, err := wireClient(store, cfg)
	if err != nil {
		t.Fatalf("wire client: %v", err)
	}

	resp, err := client.Query(context.Background(), "lib-1", "sunset", nil)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if !resp.NoResults {
		t.Fatal("expected no_results")
	}
	if len(resp.Failed) == 0 {
		t.Errorf("expected failed channels, got %+v", resp)
	}
}

func TestQuery_InvalidRequest(t *testing.T) {
	client, err := wireClient(newFakeStore(), &clientConfig{weights: defaultChannelWeights()})
	if err != nil {
		t.Fatalf("wire client: %v", err)
	}

	if _, err := client.Query(context.Background(), "lib-1", "", nil); err == nil {
		t.Fatal("expected error for empty query")
	}
}

func TestWeights_SetAndLock(t *testing.T) {
	client, err := wireClient(newFakeStore(), &clientConfig{weights: defaultChannelWeights()})
	if err != nil {
		t.Fatalf("wire client: %v", err)
	}
	ctx := context.Background()

	w, err := client.Weights().Set(ctx, "lib-1", "visual", 0.5)
	if err != nil {
		t.Fatalf("set weight: %v", err)
	}
	if !w.Saved {
		t.Error("expected saved model after set")
	}

	if _, err := client.Weights().SetLock(ctx, "lib-1", "visual", true); err != nil {
		t.Fatalf("set lock: %v", err)
	}

	_, err = client.Weights().Set(ctx, "lib-1", "visual", 0.1)
	if !errors.Is(err, ErrWeightLocked) {
		t.Errorf("expected ErrWeightLocked, got %v", err)
	}

	w, err = client.Weights().Reset(ctx, "lib-1")
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if w.Saved {
		t.Error("reset model still marked saved")
	}
}

func TestWeights_UnknownChannel(t *testing.T) {
	client, err := wireClient(newFakeStore(), &clientConfig{weights: defaultChannelWeights()})
	if err != nil {
		t.Fatalf("wire client: %v", err)
	}

	_, err = client.Weights().Set(context.Background(), "lib-1", "bogus", 0.5)
	if !errors.Is(err, ErrUnknownChannel) {
		t.Errorf("expected ErrUnknownChannel, got %v", err)
	}
}
