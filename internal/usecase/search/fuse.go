package search

import (
	"sort"

	"github.com/scenedex/scenedex/internal/domain/channel"
	"github.com/scenedex/scenedex/internal/domain/search/result"
)

// fuseInput pairs a normalized channel with its weight in the distribution.
type fuseInput struct {
	weight float64
	norm   normalizedChannel
}

// fuseWeighted combines normalized channels into one ranked candidate list.
//
// For every entity appearing in any channel, the fused score is the weighted
// sum of its normalized scores over the channels where it appears; a channel
// where the entity is absent contributes 0. Excluded channels do not cause
// the remaining weights to be re-scaled, so a candidate missing from a
// channel is discounted by that channel's weight. Ties are broken by the
// order entities first appeared across inputs, which the caller supplies in
// channel priority order. No truncation happens here: the caller truncates
// only after any person fusion pass.
func fuseWeighted(inputs []fuseInput, kind result.ScoreKind) []result.Candidate {
	type acc struct {
		cand  result.Candidate
		first int
	}

	merged := make(map[string]*acc)
	appearance := 0

	for _, in := range inputs {
		for _, id := range in.norm.order {
			a, ok := merged[id]
			if !ok {
				a = &acc{
					cand: result.Candidate{
						EntityID:      id,
						ChannelScores: make(map[channel.Key]float64, len(inputs)),
						Kind:          kind,
					},
					first: appearance,
				}
				appearance++
				merged[id] = a
			}
			score := in.norm.scores[id]
			a.cand.ChannelScores[in.norm.key] = score
			a.cand.FusedScore += in.weight * score
		}
	}

	out := make([]*acc, 0, len(merged))
	for _, a := range merged {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].cand.FusedScore != out[j].cand.FusedScore {
			return out[i].cand.FusedScore > out[j].cand.FusedScore
		}
		return out[i].first < out[j].first
	})

	candidates := make([]result.Candidate, len(out))
	for i, a := range out {
		candidates[i] = a.cand
	}
	return candidates
}

// blendPerson fuses content candidates with a normalized person identity
// channel using a fixed two-term weighting over the union of both sets.
// Content scores keep their per-channel provenance; the person score is
// recorded under the person channel key. An entity missing from one side
// contributes 0 for that side.
func blendPerson(
	content []result.Candidate,
	personNorm normalizedChannel,
	contentWeight, personWeight float64,
) []result.Candidate {
	type acc struct {
		cand  result.Candidate
		first int
	}

	merged := make(map[string]*acc, len(content))
	appearance := 0

	for _, c := range content {
		scores := make(map[channel.Key]float64, len(c.ChannelScores)+1)
		for k, v := range c.ChannelScores {
			scores[k] = v
		}
		merged[c.EntityID] = &acc{
			cand: result.Candidate{
				EntityID:      c.EntityID,
				FusedScore:    contentWeight * c.FusedScore,
				ChannelScores: scores,
				Kind:          result.KindPersonBlend,
			},
			first: appearance,
		}
		appearance++
	}

	for _, id := range personNorm.order {
		score := personNorm.scores[id]
		a, ok := merged[id]
		if !ok {
			a = &acc{
				cand: result.Candidate{
					EntityID:      id,
					ChannelScores: make(map[channel.Key]float64, 1),
					Kind:          result.KindPersonBlend,
				},
				first: appearance,
			}
			appearance++
			merged[id] = a
		}
		a.cand.ChannelScores[channel.Person] = score
		a.cand.FusedScore += personWeight * score
	}

	out := make([]*acc, 0, len(merged))
	for _, a := range merged {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].cand.FusedScore != out[j].cand.FusedScore {
			return out[i].cand.FusedScore > out[j].cand.FusedScore
		}
		return out[i].first < out[j].first
	})

	candidates := make([]result.Candidate, len(out))
	for i, a := range out {
		candidates[i] = a.cand
	}
	return candidates
}
