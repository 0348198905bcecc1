package sources

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ppiankov/groundcheck/internal/model"
	"github.com/ppiankov/groundcheck/internal/util"
)

const (
	maxRedirects   = 5
	maxLinkRetries = 2
)

// LinkChecker probes cited URIs to see whether they still resolve
type LinkChecker struct {
	httpClient *http.Client
	robots     *util.RobotsChecker
	userAgent  string
	maxWorkers int
	sleep      func(ctx context.Context, d time.Duration) error
	logger     *zap.Logger
}

// LinkOption customises a LinkChecker
type LinkOption func(*LinkChecker)

// WithLinkSleeper replaces the wait between retries
func WithLinkSleeper(s func(ctx context.Context, d time.Duration) error) LinkOption {
	return func(c *LinkChecker) { c.sleep = s }
}

// WithLinkLogger sets the logger
func WithLinkLogger(l *zap.Logger) LinkOption {
	return func(c *LinkChecker) { c.logger = l }
}

// NewLinkChecker builds a checker from the sources and HTTP config
func NewLinkChecker(cfg model.SourcesConfig, httpCfg model.HTTPConfig, opts ...LinkOption) *LinkChecker {
	client := util.NewHTTPClient(cfg.LinkTimeout, httpCfg.HTTPProxy, httpCfg.HTTPSProxy, httpCfg.NoProxy)
	client.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= maxRedirects {
			return fmt.Errorf("stopped after %d redirects", maxRedirects)
		}
		return nil
	}

	workers := cfg.LinkWorkers
	if workers <= 0 {
		workers = 4
	}

	c := &LinkChecker{
		httpClient: client,
		userAgent:  httpCfg.UserAgent,
		maxWorkers: workers,
		sleep:      sleepContext,
		logger:     zap.NewNop(),
	}
	if cfg.RespectRobots {
		c.robots = util.NewRobotsChecker(client, httpCfg.UserAgent)
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Check probes every citation concurrently. The result is index-aligned with citations.
func (c *LinkChecker) Check(ctx context.Context, citations []model.Citation) []model.LinkStatus {
	results := make([]model.LinkStatus, len(citations))
	if len(citations) == 0 {
		return results
	}

	var g errgroup.Group
	g.SetLimit(c.maxWorkers)
	for i, citation := range citations {
		i, citation := i, citation
		g.Go(func() error {
			if ctx.Err() != nil {
				results[i] = model.LinkStatus{URI: citation.URI, Error: "context cancelled"}
				return nil
			}
			results[i] = c.checkWithRetry(ctx, citation.URI)
			return nil
		})
	}
	_ = g.Wait()

	dead := 0
	for _, r := range results {
		if r.Dead {
			dead++
		}
	}
	c.logger.Debug("cited links probed", zap.Int("links", len(results)), zap.Int("dead", dead))
	return results
}

func (c *LinkChecker) checkWithRetry(ctx context.Context, uri string) model.LinkStatus {
	var result model.LinkStatus
	for attempt := 0; attempt < maxLinkRetries; attempt++ {
		result = c.checkOne(ctx, uri)
		if !retryable(result) || attempt == maxLinkRetries-1 {
			return result
		}
		if err := c.sleep(ctx, time.Duration(1<<uint(attempt))*time.Second); err != nil {
			return result
		}
	}
	return result
}

func (c *LinkChecker) checkOne(ctx context.Context, uri string) model.LinkStatus {
	result := model.LinkStatus{URI: uri}

	if uri == "" {
		result.Error = "no URI"
		result.Dead = true
		return result
	}

	if c.robots != nil {
		allowed, err := c.robots.Allowed(ctx, uri)
		if err != nil {
			result.Error = err.Error()
			result.Dead = true
			return result
		}
		if !allowed {
			result.Disallowed = true
			return result
		}
	}

	resp, err := c.do(ctx, http.MethodHead, uri)
	if err == nil && (resp.StatusCode == http.StatusMethodNotAllowed || resp.StatusCode == http.StatusNotImplemented) {
		// Some servers refuse HEAD
		_ = resp.Body.Close()
		resp, err = c.do(ctx, http.MethodGet, uri)
	}
	if err != nil {
		result.Error = fmt.Sprintf("request failed: %v", err)
		result.Dead = !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
		return result
	}
	defer func() { _ = resp.Body.Close() }()

	result.StatusCode = resp.StatusCode
	result.FinalURL = resp.Request.URL.String()
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 400:
		result.Accessible = true
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		result.Dead = true
	}
	return result
}

func (c *LinkChecker) do(ctx context.Context, method, uri string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, uri, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	return c.httpClient.Do(req)
}

// retryable reports transient failures: 5xx, 429 and network timeouts or resets
func retryable(r model.LinkStatus) bool {
	if r.StatusCode >= 500 || r.StatusCode == http.StatusTooManyRequests {
		return true
	}
	s := strings.ToLower(r.Error)
	return strings.Contains(s, "timeout") ||
		strings.Contains(s, "connection refused") ||
		strings.Contains(s, "connection reset")
}

// Reclassify grades citations whose tier is unknown by the host they resolved to
func (a *AuthorityClassifier) Reclassify(citations []model.Citation, statuses []model.LinkStatus) []model.Citation {
	out := make([]model.Citation, len(citations))
	copy(out, citations)
	for i := range out {
		if i >= len(statuses) || out[i].Authority != model.TierUnknown || statuses[i].FinalURL == "" {
			continue
		}
		out[i].Authority = a.Classify(model.Citation{URI: statuses[i].FinalURL})
	}
	return out
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
