package worker

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/time/rate"
)

// Limiter is a token bucket per API host, shared by every check in the process.
// It satisfies llm.Throttle.
type Limiter struct {
	mu    sync.Mutex
	hosts map[string]*rate.Limiter
	limit rate.Limit
	burst int
}

// NewLimiter allows requestsPerSecond per host with the given burst.
// requestsPerSecond <= 0 means no limit.
func NewLimiter(requestsPerSecond float64, burst int) *Limiter {
	l := &Limiter{
		hosts: make(map[string]*rate.Limiter),
		limit: rate.Inf,
		burst: max(burst, 1),
	}
	if requestsPerSecond > 0 {
		l.limit = rate.Limit(requestsPerSecond)
	}
	return l
}

// Wait blocks until endpoint's host has a token or ctx ends
func (l *Limiter) Wait(ctx context.Context, endpoint string) error {
	host, err := hostOf(endpoint)
	if err != nil {
		return err
	}
	return l.bucket(host).Wait(ctx)
}

func (l *Limiter) bucket(host string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.hosts[host]
	if !ok {
		b = rate.NewLimiter(l.limit, l.burst)
		l.hosts[host] = b
	}
	return b
}

func hostOf(endpoint string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("parse endpoint: %w", err)
	}
	return strings.ToLower(u.Host), nil
}
