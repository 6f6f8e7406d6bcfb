package httpapi

import (
	"time"

	"github.com/scenedex/scenedex/internal/domain/channel"
	"github.com/scenedex/scenedex/internal/domain/search/result"
	"github.com/scenedex/scenedex/internal/domain/weights"
)

// ErrorCode classifies an API error response.
type ErrorCode string

const (
	CodeBadRequest             ErrorCode = "bad_request"
	CodeValidationFailed       ErrorCode = "validation_failed"
	CodeUnknownChannel         ErrorCode = "unknown_channel"
	CodeWeightLocked           ErrorCode = "weight_locked"
	CodeRateLimited            ErrorCode = "rate_limited"
	CodeEmbeddingProviderError ErrorCode = "embedding_provider_error"
	CodeInternalError          ErrorCode = "internal_error"
)

// ErrorResponse is the JSON error envelope.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// SearchRequest is the POST /v1/search body.
type SearchRequest struct {
	Query     string             `json:"query"`
	Owner     string             `json:"owner"`
	TopK      int                `json:"top_k,omitempty"`
	Threshold float64            `json:"threshold,omitempty"`
	Weights   map[string]float64 `json:"weights,omitempty"`
	Channels  []string           `json:"channels,omitempty"`
}

// CandidateDTO is one fused search hit.
type CandidateDTO struct {
	EntityID      string             `json:"entity_id"`
	Score         float64            `json:"score"`
	Kind          string             `json:"kind"`
	ChannelScores map[string]float64 `json:"channel_scores"`
}

// PersonDTO reports the person detected in the query, if any.
type PersonDTO struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Trained bool   `json:"trained"`
}

// ChannelBreakdown reports per-channel degradation for one search.
type ChannelBreakdown struct {
	Active     []string `json:"active"`
	Empty      []string `json:"empty,omitempty"`
	Degenerate []string `json:"degenerate,omitempty"`
	Failed     []string `json:"failed,omitempty"`
	TimedOut   []string `json:"timed_out,omitempty"`
}

// ChannelTimingDTO is the settle latency of one channel.
type ChannelTimingDTO struct {
	Channel string  `json:"channel"`
	TookMS  float64 `json:"took_ms"`
}

// SearchResponse is the POST /v1/search response. NoResults is set when
// every channel came back empty, failed, or timed out; the channel
// breakdown then explains which.
type SearchResponse struct {
	Residual     string             `json:"residual"`
	WeightSource string             `json:"weight_source,omitempty"`
	Candidates   []CandidateDTO     `json:"candidates"`
	NoResults    bool               `json:"no_results,omitempty"`
	Person       *PersonDTO         `json:"person,omitempty"`
	Channels     ChannelBreakdown   `json:"channels"`
	Timings      []ChannelTimingDTO `json:"timings,omitempty"`
	FusionTookMS float64            `json:"fusion_took_ms"`
}

// WeightEntryDTO is one channel's share of a weight model.
type WeightEntryDTO struct {
	Key    string  `json:"key"`
	Weight float64 `json:"weight"`
	Locked bool    `json:"locked"`
}

// WeightsResponse is the weight model envelope returned by every
// /v1/weights endpoint. Saved distinguishes an owner preference from the
// system default.
type WeightsResponse struct {
	Owner   string           `json:"owner"`
	Saved   bool             `json:"saved"`
	Weights []WeightEntryDTO `json:"weights"`
}

// UpdateWeightRequest is the PUT /v1/weights/{key} body. At least one of
// Weight and Locked must be set; when both are, the weight moves first.
type UpdateWeightRequest struct {
	Owner  string   `json:"owner"`
	Weight *float64 `json:"weight,omitempty"`
	Locked *bool    `json:"locked,omitempty"`
}

// PresetRequest is the POST /v1/weights/preset body.
type PresetRequest struct {
	Owner   string             `json:"owner"`
	Weights map[string]float64 `json:"weights"`
}

// HealthResponse is the GET /health body.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func weightsToDTO(owner string, model weights.Model, saved bool) WeightsResponse {
	entries := model.Entries()
	out := make([]WeightEntryDTO, len(entries))
	for i, e := range entries {
		out[i] = WeightEntryDTO{
			Key:    string(e.Key()),
			Weight: e.Weight(),
			Locked: e.Locked(),
		}
	}
	return WeightsResponse{Owner: owner, Saved: saved, Weights: out}
}

func searchToDTO(resp *result.Response) SearchResponse {
	out := SearchResponse{
		Residual:     resp.Residual,
		WeightSource: string(resp.Weights),
		Candidates:   make([]CandidateDTO, len(resp.Candidates)),
		Channels: ChannelBreakdown{
			Active:     keysToStrings(resp.Active),
			Empty:      keysToStrings(resp.Empty),
			Degenerate: keysToStrings(resp.Degenerate),
			Failed:     keysToStrings(resp.Failed),
			TimedOut:   keysToStrings(resp.TimedOut),
		},
		FusionTookMS: durationMS(resp.FusionTook),
	}
	for i, c := range resp.Candidates {
		scores := make(map[string]float64, len(c.ChannelScores))
		for key, score := range c.ChannelScores {
			scores[string(key)] = score
		}
		out.Candidates[i] = CandidateDTO{
			EntityID:      c.EntityID,
			Score:         c.FusedScore,
			Kind:          string(c.Kind),
			ChannelScores: scores,
		}
	}
	if resp.Person != nil {
		out.Person = &PersonDTO{
			ID:      resp.Person.ID,
			Name:    resp.Person.Name,
			Trained: resp.Person.Trained,
		}
	}
	for _, t := range resp.Timings {
		out.Timings = append(out.Timings, ChannelTimingDTO{
			Channel: string(t.Key),
			TookMS:  durationMS(t.Took),
		})
	}
	return out
}

func keysToStrings(keys []channel.Key) []string {
	if len(keys) == 0 {
		return nil
	}
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = string(k)
	}
	return out
}

func channelKeys(names []string) []channel.Key {
	if len(names) == 0 {
		return nil
	}
	out := make([]channel.Key, len(names))
	for i, n := range names {
		out[i] = channel.Key(n)
	}
	return out
}

func weightMap(m map[string]float64) map[channel.Key]float64 {
	if len(m) == 0 {
		return nil
	}
	out := make(map[channel.Key]float64, len(m))
	for k, v := range m {
		out[channel.Key(k)] = v
	}
	return out
}

func durationMS(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
