package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ppiankov/groundcheck/internal/cache"
	"github.com/ppiankov/groundcheck/internal/history"
	"github.com/ppiankov/groundcheck/internal/llm"
	"github.com/ppiankov/groundcheck/internal/model"
	"github.com/ppiankov/groundcheck/internal/sources"
	"github.com/ppiankov/groundcheck/internal/verdict"
	"github.com/ppiankov/groundcheck/internal/worker"
)

// Pipeline orchestrates one fact check: build the request, send it with
// backoff, interpret the answer and log it to the history record
type Pipeline struct {
	config   *model.Config
	provider llm.Provider
	retrier  *llm.Retrier
	history  *history.Logger
	cache    cache.Cache
	sources  *sources.AuthorityClassifier
	links    *sources.LinkChecker
	logger   *zap.Logger
	now      func() time.Time
}

type options struct {
	provider llm.Provider
	sleeper  llm.Sleeper
	throttle llm.Throttle
	history  *history.Logger
	cache    cache.Cache
	cacheSet bool
	links    *sources.LinkChecker
	logger   *zap.Logger
	now      func() time.Time
}

// Option customises a Pipeline
type Option func(*options)

// WithProvider uses p instead of building one from the config
func WithProvider(p llm.Provider) Option {
	return func(o *options) { o.provider = p }
}

// WithSleeper replaces the backoff clock
func WithSleeper(s llm.Sleeper) Option {
	return func(o *options) { o.sleeper = s }
}

// WithThrottle replaces the per-host request limiter
func WithThrottle(t llm.Throttle) Option {
	return func(o *options) { o.throttle = t }
}

// WithHistory writes rows to h instead of the configured path
func WithHistory(h *history.Logger) Option {
	return func(o *options) { o.history = h }
}

// WithCache replaces the configured response cache. nil disables caching.
func WithCache(c cache.Cache) Option {
	return func(o *options) {
		o.cache = c
		o.cacheSet = true
	}
}

// WithLinkChecker probes cited URIs with l, regardless of sources.verify_links
func WithLinkChecker(l *sources.LinkChecker) Option {
	return func(o *options) { o.links = l }
}

// WithLogger sets the structured logger
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithClock sets the time source for CheckedAt
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// New creates a pipeline from cfg. The config is read once here and not
// consulted again.
func New(cfg *model.Config, opts ...Option) (*Pipeline, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.now == nil {
		o.now = time.Now
	}

	provider := o.provider
	if provider == nil {
		p, err := llm.NewProvider(llm.ConfigFromModel(cfg))
		if err != nil {
			return nil, fmt.Errorf("create provider: %w", err)
		}
		provider = p
	}

	throttle := o.throttle
	if throttle == nil {
		throttle = worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)
	}

	retryOpts := []llm.RetrierOption{
		llm.WithThrottle(throttle),
		llm.WithRetryLogger(o.logger),
	}
	if o.sleeper != nil {
		retryOpts = append(retryOpts, llm.WithSleeper(o.sleeper))
	}

	hist := o.history
	if hist == nil {
		hist = history.NewLogger(cfg.History.Path, o.logger)
	}

	c := o.cache
	if !o.cacheSet {
		c = cache.FromConfig(cfg.Cache)
	}

	links := o.links
	if links == nil && cfg.Sources.VerifyLinks {
		links = sources.NewLinkChecker(cfg.Sources, cfg.HTTP, sources.WithLinkLogger(o.logger))
	}

	return &Pipeline{
		config:   cfg,
		provider: provider,
		retrier:  llm.NewRetrier(provider, cfg.Retry.MaxAttempts, cfg.Retry.BaseDelay, retryOpts...),
		history:  hist,
		cache:    c,
		sources:  sources.NewAuthorityClassifier(&cfg.Sources),
		links:    links,
		logger:   o.logger,
		now:      o.now,
	}, nil
}

// Provider returns the backend checks are sent to
func (p *Pipeline) Provider() llm.Provider {
	return p.provider
}

// History returns the history logger
func (p *Pipeline) History() *history.Logger {
	return p.history
}

// Check runs one fact check. Every failure is a *CheckError; nothing panics
// out of this call.
func (p *Pipeline) Check(ctx context.Context, raw string) (result *model.CheckResult, err error) {
	claim, ok := model.NormalizeClaim(raw)
	if !ok {
		return nil, fail(EmptyInput, ErrEmptyClaim)
	}

	id := uuid.NewString()
	log := p.logger.With(zap.String("check_id", id))

	defer func() {
		if r := recover(); r != nil {
			log.Error("check panicked", zap.Any("panic", r), zap.Stack("stack"))
			result = nil
			err = fail(Internal, fmt.Errorf("panic: %v", r))
		}
	}()

	log.Info("checking claim",
		zap.String("provider", p.provider.Name()),
		zap.String("model", p.provider.Model()),
		zap.Int("claim_len", len(claim)))

	// 1. Build request
	req := llm.BuildRequest(p.config.API.SystemInstruction, claim, p.config.API.GoogleSearch)

	// 2. Send (or reuse a cached answer)
	key := cache.ResponseKey(p.provider.Name(), p.provider.Model(), req.Instruction(), p.config.API.GoogleSearch, claim)
	resp, cached := p.lookup(key, log)
	if !cached {
		resp, err = p.retrier.Generate(ctx, req)
		if err != nil {
			if errors.Is(err, llm.ErrRateLimitExhausted) {
				log.Error("rate limit retries exhausted", zap.Error(err))
				return nil, fail(RateLimitExhausted, err)
			}
			log.Error("request failed", zap.Error(err))
			return nil, fail(TransportError, err)
		}
	}

	// 3. Interpret
	interp, err := verdict.Interpret(resp)
	if err != nil {
		log.Error("unusable response", zap.Error(err))
		return nil, fail(MalformedResponse, err)
	}
	if interp.MissingText {
		log.Warn("response carried no text, using placeholder")
	}
	if !cached {
		p.store(key, resp, log)
	}

	// 4. Log
	path, err := p.history.Append(model.HistoryEntry{
		Status:   interp.Verdict,
		Response: interp.FullResponse,
	})
	if err != nil {
		log.Error("history write failed", zap.Error(err))
		return nil, fail(PersistenceError, err)
	}

	citations := p.sources.Annotate(interp.Citations)
	var linkChecks []model.LinkStatus
	if p.links != nil && len(citations) > 0 {
		// Probing is advisory; the verdict and history row are already final
		linkChecks = p.links.Check(ctx, citations)
		citations = p.sources.Reclassify(citations, linkChecks)
	}
	tiers := sources.Summary(citations)

	log.Info("claim checked",
		zap.String("verdict", interp.Verdict.String()),
		zap.Int("citations", len(citations)),
		zap.Int("primary_sources", tiers[model.TierPrimary]),
		zap.Int("secondary_sources", tiers[model.TierSecondary]),
		zap.Strings("search_queries", interp.SearchQueries),
		zap.Bool("cached", cached))

	return &model.CheckResult{
		ID:           id,
		Claim:        claim,
		CheckedAt:    p.now().UTC(),
		Verdict:      interp.Verdict,
		Text:         interp.Text,
		Citations:    citations,
		FullResponse: interp.FullResponse,
		Markdown:     interp.Markdown,
		Provider:     p.provider.Name(),
		Model:        p.provider.Model(),
		Cached:       cached,
		HistoryPath:  path,
		SourceChecks: linkChecks,
	}, nil
}

// CheckClaim is the caller-facing form of Check. It returns the cleared input,
// the markdown to show and the history record location ("" when nothing was
// logged).
func (p *Pipeline) CheckClaim(ctx context.Context, claim string) (clearedInput, markdown, historyPath string) {
	result, err := p.Check(ctx, claim)
	if err != nil {
		return "", UserMessage(err), ""
	}
	return "", result.Markdown, result.HistoryPath
}

func (p *Pipeline) lookup(key string, log *zap.Logger) (*llm.Response, bool) {
	if p.cache == nil {
		return nil, false
	}

	data, found := p.cache.Get(key)
	if !found {
		return nil, false
	}

	var resp llm.Response
	if err := json.Unmarshal(data, &resp); err != nil {
		log.Warn("dropping unreadable cache entry", zap.Error(err))
		_ = p.cache.Delete(key)
		return nil, false
	}

	log.Debug("response cache hit")
	return &resp, true
}

func (p *Pipeline) store(key string, resp *llm.Response, log *zap.Logger) {
	if p.cache == nil {
		return
	}

	data, err := json.Marshal(resp)
	if err != nil {
		log.Warn("cannot encode response for cache", zap.Error(err))
		return
	}
	if err := p.cache.Set(key, data, 0); err != nil {
		log.Warn("cache write failed", zap.Error(err))
	}
}
