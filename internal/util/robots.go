package util

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/temoto/robotstxt"
)

// RobotsChecker answers whether a URL may be probed under the site's robots.txt.
// Parsed files are kept per scheme and host for the checker's lifetime.
type RobotsChecker struct {
	cache      map[string]*robotstxt.RobotsData
	mu         sync.RWMutex
	httpClient *http.Client
	userAgent  string
}

// NewRobotsChecker creates a checker that fetches robots.txt with client
func NewRobotsChecker(client *http.Client, userAgent string) *RobotsChecker {
	return &RobotsChecker{
		cache:      make(map[string]*robotstxt.RobotsData),
		httpClient: client,
		userAgent:  userAgent,
	}
}

// Allowed reports whether rawURL may be fetched. When robots.txt cannot be
// read the URL is allowed.
func (r *RobotsChecker) Allowed(ctx context.Context, rawURL string) (bool, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false, fmt.Errorf("parse URL: %w", err)
	}
	if parsed.Host == "" {
		return false, fmt.Errorf("URL has no host: %s", rawURL)
	}

	data, err := r.robotsFor(ctx, parsed.Scheme, parsed.Host)
	if err != nil {
		return true, nil
	}

	path := parsed.EscapedPath()
	if path == "" {
		path = "/"
	}
	return data.TestAgent(path, NormalizeUserAgent(r.userAgent)), nil
}

func (r *RobotsChecker) robotsFor(ctx context.Context, scheme, host string) (*robotstxt.RobotsData, error) {
	key := scheme + "://" + host

	r.mu.RLock()
	data, exists := r.cache[key]
	r.mu.RUnlock()
	if exists {
		return data, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, key+"/robots.txt", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch robots.txt: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	// FromResponse maps 4xx to allow-all and 5xx to disallow-all
	data, err = robotstxt.FromResponse(resp)
	if err != nil {
		return nil, fmt.Errorf("parse robots.txt: %w", err)
	}

	r.mu.Lock()
	r.cache[key] = data
	r.mu.Unlock()
	return data, nil
}

// NormalizeUserAgent reduces a user agent to its product token for robots.txt matching
func NormalizeUserAgent(ua string) string {
	parts := strings.Fields(ua)
	if len(parts) > 0 {
		return strings.Split(parts[0], "/")[0]
	}
	return ua
}
