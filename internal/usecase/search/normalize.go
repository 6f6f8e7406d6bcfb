package search

import "github.com/scenedex/scenedex/internal/domain/channel"

// normEpsilon is the spread below which a channel counts as flat.
const normEpsilon = 1e-9

// neutralScore is emitted for every entry of a flat channel instead of the
// NaN a zero-denominator min-max division would produce.
const neutralScore = 0.5

// normalizedChannel holds a channel's scores mapped to [0,1] for this request.
// order preserves the channel's own ranking for fusion tie-breaks.
type normalizedChannel struct {
	key        channel.Key
	scores     map[string]float64
	order      []string
	degenerate bool
}

// normalizeChannel applies per-request min-max normalization to a settled
// channel result. Channels that did not settle, or settled with no spread
// (single entry, all scores tied), come back degenerate: empty channels carry
// no entries, flat channels carry the neutral score for every entry.
func normalizeChannel(res channel.Result) normalizedChannel {
	out := normalizedChannel{key: res.Key, scores: make(map[string]float64, len(res.Entries))}

	if !res.Settled() || len(res.Entries) == 0 {
		out.degenerate = true
		return out
	}

	minScore, maxScore := res.Entries[0].Score, res.Entries[0].Score
	for _, e := range res.Entries[1:] {
		if e.Score < minScore {
			minScore = e.Score
		}
		if e.Score > maxScore {
			maxScore = e.Score
		}
	}

	if maxScore-minScore < normEpsilon {
		out.degenerate = true
		for _, e := range res.Entries {
			if _, seen := out.scores[e.EntityID]; seen {
				continue
			}
			out.scores[e.EntityID] = neutralScore
			out.order = append(out.order, e.EntityID)
		}
		return out
	}

	span := maxScore - minScore
	for _, e := range res.Entries {
		if _, seen := out.scores[e.EntityID]; seen {
			continue
		}
		out.scores[e.EntityID] = (e.Score - minScore) / span
		out.order = append(out.order, e.EntityID)
	}
	return out
}
