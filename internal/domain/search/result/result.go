// Package result defines fused search candidates and the search response
// envelope with per-channel provenance.
package result

import (
	"time"

	"github.com/scenedex/scenedex/internal/domain/channel"
)

// ScoreKind tags how a candidate's fused score was produced.
type ScoreKind string

const (
	// KindContent means the score came from content fusion only.
	KindContent ScoreKind = "content"
	// KindPersonBlend means the score blends content and person identity fusion.
	KindPersonBlend ScoreKind = "person_blend"
)

// WeightSource tags where the effective weight model came from.
type WeightSource string

const (
	// SourceOverride means the request carried an explicit weight override.
	SourceOverride WeightSource = "override"
	// SourceSaved means the owner's saved preference was used.
	SourceSaved WeightSource = "saved"
	// SourceDefault means the system default distribution was used.
	SourceDefault WeightSource = "default"
)

// Candidate is one fused search hit. Rank is implicit in list position.
// ChannelScores maps each contributing channel to the candidate's normalized
// score there; channels where the candidate was absent carry no entry.
type Candidate struct {
	EntityID      string
	FusedScore    float64
	ChannelScores map[channel.Key]float64
	Kind          ScoreKind
}

// PersonInfo reports the person detected by query parsing.
type PersonInfo struct {
	ID      string
	Name    string
	Trained bool
}

// ChannelTiming is the settle latency of one dispatched channel.
type ChannelTiming struct {
	Key  channel.Key
	Took time.Duration
}

// Response is the full fusion outcome: ranked candidates plus the
// degradation metadata a caller needs to explain the ranking.
type Response struct {
	Residual   string
	Candidates []Candidate
	Weights    WeightSource

	Active     []channel.Key
	Empty      []channel.Key
	Degenerate []channel.Key
	Failed     []channel.Key
	TimedOut   []channel.Key

	Person *PersonInfo

	Timings    []ChannelTiming
	FusionTook time.Duration
}
