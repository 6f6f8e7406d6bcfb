package search

import (
	"context"
	"testing"
	"time"

	"github.com/scenedex/scenedex/internal/domain"
	"github.com/scenedex/scenedex/internal/domain/channel"
	"github.com/scenedex/scenedex/internal/domain/person"
	"github.com/scenedex/scenedex/internal/domain/search/request"
	"github.com/scenedex/scenedex/internal/domain/weights"
)

// mockRetriever settles with a canned result, optionally recording the query.
type mockRetriever struct {
	key         channel.Key
	needsVector bool
	result      channel.Result
	gotQuery    *channel.Query
}

func (m *mockRetriever) Key() channel.Key  { return m.key }
func (m *mockRetriever) NeedsVector() bool { return m.needsVector }

func (m *mockRetriever) Retrieve(_ context.Context, q channel.Query) channel.Result {
	if m.gotQuery != nil {
		*m.gotQuery = q
	}
	return m.result
}

type mockWeightSource struct {
	model weights.Model
	saved bool
	err   error
}

func (m *mockWeightSource) Load(_ context.Context, _ string) (weights.Model, bool, error) {
	return m.model, m.saved, m.err
}

type mockPersonDirectory struct {
	persons []person.Person
	err     error
}

func (m *mockPersonDirectory) List(_ context.Context, _ string) ([]person.Person, error) {
	return m.persons, m.err
}

type mockEmbedder struct {
	vector []float32
	err    error
	calls  int
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.calls++
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: m.vector}, nil
}

func defaultModel(t *testing.T) weights.Model {
	t.Helper()
	model, err := weights.New([]weights.Entry{
		weights.NewEntry(channel.Transcript, 0.35, false),
		weights.NewEntry(channel.Visual, 0.30, false),
		weights.NewEntry(channel.Summary, 0.15, false),
		weights.NewEntry(channel.Lexical, 0.20, false),
	})
	if err != nil {
		t.Fatalf("weights.New() error = %v", err)
	}
	return model
}

func newRequest(t *testing.T, query string) *request.Request {
	t.Helper()
	req, err := request.New(query, "lib-1", 20, 0, nil, nil)
	if err != nil {
		t.Fatalf("request.New() error = %v", err)
	}
	return &req
}

func okResult(key channel.Key, entries ...channel.Entry) channel.Result {
	return channel.OK(key, entries, time.Millisecond)
}

func hit(id string, score float64) channel.Entry {
	return channel.Entry{EntityID: id, Score: score}
}
