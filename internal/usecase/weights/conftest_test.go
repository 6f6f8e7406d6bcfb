package weights

import (
	"context"
	"testing"

	"github.com/scenedex/scenedex/internal/domain/channel"
	domweights "github.com/scenedex/scenedex/internal/domain/weights"
)

// mockStore keeps saved models in memory.
type mockStore struct {
	saved   map[string]domweights.Model
	loadErr error
	saveErr error
	delErr  error
}

func newMockStore() *mockStore {
	return &mockStore{saved: map[string]domweights.Model{}}
}

func (m *mockStore) Load(_ context.Context, owner string) (domweights.Model, bool, error) {
	if m.loadErr != nil {
		return domweights.Model{}, false, m.loadErr
	}
	model, ok := m.saved[owner]
	return model, ok, nil
}

func (m *mockStore) Save(_ context.Context, owner string, model domweights.Model) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved[owner] = model
	return nil
}

func (m *mockStore) Delete(_ context.Context, owner string) error {
	if m.delErr != nil {
		return m.delErr
	}
	delete(m.saved, owner)
	return nil
}

func defaultModel(t *testing.T) domweights.Model {
	t.Helper()
	model, err := domweights.New([]domweights.Entry{
		domweights.NewEntry(channel.Transcript, 0.35, false),
		domweights.NewEntry(channel.Visual, 0.30, false),
		domweights.NewEntry(channel.Summary, 0.15, false),
		domweights.NewEntry(channel.Lexical, 0.20, false),
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return model
}
