package httpapi

import (
	"context"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/scenedex/scenedex/internal/domain/channel"
	"github.com/scenedex/scenedex/internal/domain/search/request"
	"github.com/scenedex/scenedex/internal/domain/search/result"
	"github.com/scenedex/scenedex/internal/domain/weights"
	healthuc "github.com/scenedex/scenedex/internal/usecase/health"
)

type mockSearch struct {
	resp *result.Response
	err  error
	got  *request.Request
}

func (m *mockSearch) Search(_ context.Context, req *request.Request) (*result.Response, error) {
	m.got = req
	return m.resp, m.err
}

type mockWeights struct {
	model weights.Model
	saved bool
	err   error

	gotKey    channel.Key
	gotValue  float64
	gotLocked bool
	gotPreset map[channel.Key]float64

	updateCalled  bool
	setLockCalled bool
	resetCalled   bool
}

func (m *mockWeights) Get(_ context.Context, _ string) (weights.Model, bool, error) {
	return m.model, m.saved, m.err
}

func (m *mockWeights) Update(_ context.Context, _ string, key channel.Key, value float64) (weights.Model, error) {
	m.updateCalled = true
	m.gotKey = key
	m.gotValue = value
	return m.model, m.err
}

func (m *mockWeights) SetLock(_ context.Context, _ string, key channel.Key, locked bool) (weights.Model, error) {
	m.setLockCalled = true
	m.gotKey = key
	m.gotLocked = locked
	return m.model, m.err
}

func (m *mockWeights) ApplyPreset(_ context.Context, _ string, preset map[channel.Key]float64) (weights.Model, error) {
	m.gotPreset = preset
	return m.model, m.err
}

func (m *mockWeights) Reset(_ context.Context, _ string) (weights.Model, error) {
	m.resetCalled = true
	return m.model, m.err
}

type mockHealth struct {
	report healthuc.Report
}

func (m *mockHealth) Check(_ context.Context) healthuc.Report {
	return m.report
}

func defaultModel(t *testing.T) weights.Model {
	t.Helper()
	m, err := weights.New([]weights.Entry{
		weights.NewEntry(channel.Transcript, 0.35, false),
		weights.NewEntry(channel.Visual, 0.30, false),
		weights.NewEntry(channel.Summary, 0.15, false),
		weights.NewEntry(channel.Lexical, 0.20, false),
	})
	if err != nil {
		t.Fatalf("build model: %v", err)
	}
	return m
}

func newTestRouter(search searchService, w weightsService, health healthService) http.Handler {
	if health == nil {
		health = &mockHealth{report: healthuc.Report{Status: healthuc.Healthy}}
	}
	s := NewServer(search, w, health, zap.NewNop())
	r := chi.NewRouter()
	s.Register(r)
	return r
}
