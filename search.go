package scenedex

import (
	"context"
	"errors"
	"fmt"

	"github.com/scenedex/scenedex/internal/domain/channel"
	"github.com/scenedex/scenedex/internal/domain/search/request"
	"github.com/scenedex/scenedex/internal/domain/search/result"
	searchuc "github.com/scenedex/scenedex/internal/usecase/search"
)

// SearchOptions configures one fusion search.
type SearchOptions struct {
	// TopK is the number of fused candidates to return (default 20).
	TopK int
	// Threshold is the minimum raw similarity passed to each channel.
	Threshold float64
	// Weights overrides the weight model for this request only.
	Weights map[string]float64
	// Channels restricts the search to a channel subset (nil means all).
	Channels []string
}

// Candidate is one fused search hit. Rank is implicit in list position.
type Candidate struct {
	EntityID      string
	Score         float64
	Kind          string
	ChannelScores map[string]float64
}

// Person reports the person detected by query parsing.
type Person struct {
	ID      string
	Name    string
	Trained bool
}

// SearchResponse is the fusion outcome. NoResults is set when every channel
// came back empty, failed, or timed out; the channel lists then explain which.
type SearchResponse struct {
	Residual     string
	WeightSource string
	Candidates   []Candidate
	NoResults    bool
	Person       *Person

	Empty      []string
	Degenerate []string
	Failed     []string
	TimedOut   []string
}

// Query runs one fusion search over the owner's library.
func (c *Client) Query(
	ctx context.Context, owner, query string, opts *SearchOptions,
) (*SearchResponse, error) {
	if opts == nil {
		opts = &SearchOptions{}
	}

	req, err := request.New(
		query, owner, opts.TopK, opts.Threshold,
		toChannelMap(opts.Weights), toChannelKeys(opts.Channels),
	)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}

	resp, err := c.searchSvc.Search(ctx, &req)
	if err != nil {
		var allFailed *searchuc.AllChannelsFailedError
		if errors.As(err, &allFailed) {
			return &SearchResponse{
				NoResults: true,
				Empty:     toStrings(allFailed.Empty),
				Failed:    toStrings(allFailed.Failed),
				TimedOut:  toStrings(allFailed.TimedOut),
			}, nil
		}
		return nil, fmt.Errorf("query: %w", err)
	}

	return fromResponse(resp), nil
}

func fromResponse(resp *result.Response) *SearchResponse {
	out := &SearchResponse{
		Residual:     resp.Residual,
		WeightSource: string(resp.Weights),
		Candidates:   make([]Candidate, len(resp.Candidates)),
		Empty:        toStrings(resp.Empty),
		Degenerate:   toStrings(resp.Degenerate),
		Failed:       toStrings(resp.Failed),
		TimedOut:     toStrings(resp.TimedOut),
	}
	for i, c := range resp.Candidates {
		scores := make(map[string]float64, len(c.ChannelScores))
		for key, score := range c.ChannelScores {
			scores[string(key)] = score
		}
		out.Candidates[i] = Candidate{
			EntityID:      c.EntityID,
			Score:         c.FusedScore,
			Kind:          string(c.Kind),
			ChannelScores: scores,
		}
	}
	if resp.Person != nil {
		out.Person = &Person{
			ID:      resp.Person.ID,
			Name:    resp.Person.Name,
			Trained: resp.Person.Trained,
		}
	}
	return out
}

func toChannelMap(m map[string]float64) map[channel.Key]float64 {
	if len(m) == 0 {
		return nil
	}
	out := make(map[channel.Key]float64, len(m))
	for k, v := range m {
		out[channel.Key(k)] = v
	}
	return out
}

func toChannelKeys(names []string) []channel.Key {
	if len(names) == 0 {
		return nil
	}
	out := make([]channel.Key, len(names))
	for i, n := range names {
		out[i] = channel.Key(n)
	}
	return out
}

func toStrings(keys []channel.Key) []string {
	if len(keys) == 0 {
		return nil
	}
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = string(k)
	}
	return out
}
