// Package search implements the multi-channel retrieval fusion engine:
// concurrent per-channel dispatch, score normalization, weighted fusion,
// and the person-aware second fusion pass.
package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/scenedex/scenedex/internal/domain"
	"github.com/scenedex/scenedex/internal/domain/channel"
	"github.com/scenedex/scenedex/internal/domain/person"
	"github.com/scenedex/scenedex/internal/domain/search/request"
	"github.com/scenedex/scenedex/internal/domain/search/result"
	"github.com/scenedex/scenedex/internal/domain/weights"
	"github.com/scenedex/scenedex/internal/logger"
	"github.com/scenedex/scenedex/internal/metrics"
)

// Defaults for the orchestrator configuration.
const (
	DefaultChannelTimeout = 2 * time.Second
	DefaultContentWeight  = 0.35
	DefaultPersonWeight   = 0.65
)

// Config tunes the fusion orchestrator.
type Config struct {
	// ChannelTimeout bounds each channel retrieval independently. Keep it
	// shorter than the overall request timeout so a degraded response still
	// fits the budget.
	ChannelTimeout time.Duration
	// ContentWeight and PersonWeight are the two-term person blend weights.
	// They must sum to 1; the person term is usually larger because an
	// identity match is a stronger intent signal than topical similarity.
	ContentWeight float64
	PersonWeight  float64
	// PersonCandidateCap bounds the identity channel retrieval. Zero means
	// three times the requested top-K.
	PersonCandidateCap int
}

func (c Config) withDefaults() Config {
	if c.ChannelTimeout <= 0 {
		c.ChannelTimeout = DefaultChannelTimeout
	}
	if c.ContentWeight <= 0 && c.PersonWeight <= 0 {
		c.ContentWeight = DefaultContentWeight
		c.PersonWeight = DefaultPersonWeight
	}
	return c
}

// AllChannelsFailedError reports the terminal condition where no active
// channel produced entries. It carries the per-status breakdown so the
// caller can distinguish a legitimate zero-hit search from an outage.
type AllChannelsFailedError struct {
	Empty    []channel.Key
	Failed   []channel.Key
	TimedOut []channel.Key
}

func (e *AllChannelsFailedError) Error() string {
	return fmt.Sprintf("%s: %d empty, %d failed, %d timed out",
		domain.ErrAllChannelsFailed.Error(), len(e.Empty), len(e.Failed), len(e.TimedOut))
}

func (e *AllChannelsFailedError) Unwrap() error { return domain.ErrAllChannelsFailed }

// Service is the fusion orchestrator. It owns no cross-request state: the
// weight model and name index are rebuilt per call and discarded with the
// response.
type Service struct {
	retrievers map[channel.Key]Retriever
	defaults   weights.Model
	prefs      WeightSource
	persons    PersonDirectory
	embed      domain.Embedder
	cfg        Config
}

// New creates a fusion search service. The defaults model fixes both the
// fallback weight distribution and the channel priority order used for
// fusion tie-breaks. prefs and persons may be nil to disable saved
// preferences and person-aware fusion respectively.
func New(
	retrievers []Retriever,
	defaults weights.Model,
	prefs WeightSource,
	persons PersonDirectory,
	embed domain.Embedder,
	cfg Config,
) *Service {
	byKey := make(map[channel.Key]Retriever, len(retrievers))
	for _, r := range retrievers {
		byKey[r.Key()] = r
	}
	return &Service{
		retrievers: byKey,
		defaults:   defaults,
		prefs:      prefs,
		persons:    persons,
		embed:      embed,
		cfg:        cfg.withDefaults(),
	}
}

// Search runs one fusion pass: resolve person reference, resolve weights,
// dispatch channels concurrently, normalize, fuse, blend person identity,
// truncate to top-K.
func (s *Service) Search(ctx context.Context, req *request.Request) (*result.Response, error) {
	log := logger.FromContext(ctx)
	started := time.Now()

	match, matched := s.resolvePerson(ctx, req)
	queryText := req.Query()
	if matched {
		queryText = match.Residual
	}

	model, source := s.resolveWeights(ctx, req)
	active := s.activeChannels(req, model)
	if len(active) == 0 {
		return nil, fmt.Errorf("%w: no channel is active for this request", domain.ErrAllChannelsFailed)
	}

	vector, err := s.queryVector(ctx, active, queryText)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues("embed_error").Inc()
		return nil, err
	}

	dispatchPerson := matched && match.Person.Trained() && s.retrievers[channel.Person] != nil
	settled := s.dispatch(ctx, req, active, queryText, vector, dispatchPerson, match)

	resp := &result.Response{
		Residual: queryText,
		Weights:  source,
		Active:   active,
	}
	if matched {
		resp.Person = &result.PersonInfo{
			ID:      match.Person.ID(),
			Name:    match.Person.Name(),
			Trained: match.Person.Trained(),
		}
	}

	var inputs []fuseInput
	var personNorm *normalizedChannel
	anyEntries := false

	for _, res := range settled {
		resp.Timings = append(resp.Timings, result.ChannelTiming{Key: res.Key, Took: res.Took})
		metrics.ChannelStatusTotal.WithLabelValues(string(res.Key), string(res.Status)).Inc()
		metrics.ChannelRequestDuration.WithLabelValues(string(res.Key)).Observe(res.Took.Seconds())

		if res.Key == channel.Person {
			if res.Settled() {
				norm := normalizeChannel(res)
				personNorm = &norm
			}
			continue
		}

		switch res.Status {
		case channel.StatusEmpty:
			resp.Empty = append(resp.Empty, res.Key)
		case channel.StatusFailed:
			resp.Failed = append(resp.Failed, res.Key)
			log.Warn("channel failed",
				zap.String("channel", string(res.Key)),
				zap.String("reason", res.Reason),
			)
		case channel.StatusTimedOut:
			resp.TimedOut = append(resp.TimedOut, res.Key)
			log.Warn("channel timed out", zap.String("channel", string(res.Key)))
		case channel.StatusOK:
			anyEntries = true
			norm := normalizeChannel(res)
			if norm.degenerate {
				resp.Degenerate = append(resp.Degenerate, res.Key)
				metrics.DegenerateChannelsTotal.WithLabelValues(string(res.Key)).Inc()
			}
			inputs = append(inputs, fuseInput{weight: model.Weight(res.Key), norm: norm})
		}
	}

	if !anyEntries && personNorm == nil {
		metrics.SearchRequestsTotal.WithLabelValues("no_results").Inc()
		return nil, &AllChannelsFailedError{
			Empty:    resp.Empty,
			Failed:   resp.Failed,
			TimedOut: resp.TimedOut,
		}
	}

	fuseStarted := time.Now()
	candidates := fuseWeighted(inputs, result.KindContent)
	if personNorm != nil {
		candidates = blendPerson(candidates, *personNorm, s.cfg.ContentWeight, s.cfg.PersonWeight)
	}
	if len(candidates) > req.TopK() {
		candidates = candidates[:req.TopK()]
	}
	resp.Candidates = candidates
	resp.FusionTook = time.Since(fuseStarted)

	metrics.SearchRequestsTotal.WithLabelValues("ok").Inc()
	metrics.FusionDuration.Observe(time.Since(started).Seconds())

	log.Debug("fusion complete",
		zap.Int("candidates", len(candidates)),
		zap.String("weight_source", string(source)),
		zap.Bool("person_blend", personNorm != nil),
		zap.Duration("took", time.Since(started)),
	)
	return resp, nil
}

// resolvePerson builds a name index from the owner's directory and parses a
// leading person reference. Directory failure degrades to content-only
// search; it never fails the request.
func (s *Service) resolvePerson(ctx context.Context, req *request.Request) (person.Match, bool) {
	if s.persons == nil {
		return person.Match{}, false
	}
	known, err := s.persons.List(ctx, req.Owner())
	if err != nil {
		logger.FromContext(ctx).Warn("person directory unavailable", zap.Error(err))
		return person.Match{}, false
	}
	return person.NewNameIndex(known).Parse(req.Query())
}

// resolveWeights picks the effective model: request override beats the saved
// preference, which beats the system default. Overrides behave like presets:
// matching keys are overwritten, then the model is renormalized.
func (s *Service) resolveWeights(ctx context.Context, req *request.Request) (weights.Model, result.WeightSource) {
	if len(req.WeightOverride()) > 0 {
		return s.defaults.ApplyPreset(req.WeightOverride()), result.SourceOverride
	}
	if s.prefs != nil {
		saved, ok, err := s.prefs.Load(ctx, req.Owner())
		if err != nil {
			logger.FromContext(ctx).Warn("weight preference load failed", zap.Error(err))
		} else if ok {
			return saved, result.SourceSaved
		}
	}
	return s.defaults, result.SourceDefault
}

// activeChannels returns the content channels that participate in this
// request: requested, registered, and carrying non-zero weight. Order
// follows the weight model, which fixes fusion tie-break priority.
func (s *Service) activeChannels(req *request.Request, model weights.Model) []channel.Key {
	var active []channel.Key
	for _, e := range model.Entries() {
		if !req.ChannelActive(e.Key()) {
			continue
		}
		if s.retrievers[e.Key()] == nil {
			continue
		}
		if e.Weight() <= weights.Epsilon {
			continue
		}
		active = append(active, e.Key())
	}
	return active
}

// queryVector embeds the residual query once, shared by all vector channels.
// A failure here is fatal: the query itself cannot be vectorized.
func (s *Service) queryVector(ctx context.Context, active []channel.Key, text string) ([]float32, error) {
	needsVector := false
	for _, key := range active {
		if s.retrievers[key].NeedsVector() {
			needsVector = true
			break
		}
	}
	if !needsVector || strings.TrimSpace(text) == "" {
		return nil, nil
	}
	res, err := s.embed.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("vectorize query: %w", err)
	}
	return res.Embedding, nil
}

// dispatch fans out one retrieval per active channel, plus the identity
// channel when a trained person was resolved. Each channel gets its own
// timeout; a slow channel settles as timed out without blocking the rest,
// and the orchestrator waits for every dispatched channel before fusing.
func (s *Service) dispatch(
	ctx context.Context,
	req *request.Request,
	active []channel.Key,
	queryText string,
	vector []float32,
	withPerson bool,
	match person.Match,
) []channel.Result {
	keys := append([]channel.Key(nil), active...)
	if withPerson {
		keys = append(keys, channel.Person)
	}

	results := make([]channel.Result, len(keys))
	var g errgroup.Group

	for i, key := range keys {
		i := i
		retr := s.retrievers[key]
		q := channel.Query{
			Owner:     req.Owner(),
			Text:      queryText,
			Vector:    vector,
			Cap:       req.TopK(),
			Threshold: req.Threshold(),
		}
		if key == channel.Person {
			q.Vector = match.Person.Identity()
			q.Cap = s.personCap(req.TopK())
		}

		g.Go(func() error {
			cctx, cancel := context.WithTimeout(ctx, s.cfg.ChannelTimeout)
			defer cancel()
			results[i] = retr.Retrieve(cctx, q)
			return nil
		})
	}

	// Retrievers never return errors; the group only synchronizes settling.
	_ = g.Wait()
	return results
}

func (s *Service) personCap(topK int) int {
	if s.cfg.PersonCandidateCap > 0 {
		return s.cfg.PersonCandidateCap
	}
	return topK * 3
}
