package llm

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Sleeper blocks for d or until ctx is done
type Sleeper func(ctx context.Context, d time.Duration) error

// Throttle spaces requests to a host before they are sent
type Throttle interface {
	Wait(ctx context.Context, rawURL string) error
}

// Retrier wraps a Provider with bounded exponential backoff on HTTP 429.
//
// Attempt n (0-based) that is rate limited waits baseDelay*2^n before the next
// attempt. Once maxAttempts rate-limited attempts have been made the call fails
// with ErrRateLimitExhausted. Any other failure, including a timed-out attempt,
// is returned at once.
type Retrier struct {
	provider    Provider
	maxAttempts int
	baseDelay   time.Duration
	sleep       Sleeper
	throttle    Throttle
	logger      *zap.Logger
}

// RetrierOption customises a Retrier
type RetrierOption func(*Retrier)

// WithSleeper replaces the wall-clock sleep (tests inject a recorder)
func WithSleeper(s Sleeper) RetrierOption {
	return func(r *Retrier) { r.sleep = s }
}

// WithThrottle makes every attempt wait on t first
func WithThrottle(t Throttle) RetrierOption {
	return func(r *Retrier) { r.throttle = t }
}

// WithRetryLogger sets the logger used for backoff events
func WithRetryLogger(l *zap.Logger) RetrierOption {
	return func(r *Retrier) { r.logger = l }
}

// NewRetrier creates a retrier around provider
func NewRetrier(provider Provider, maxAttempts int, baseDelay time.Duration, opts ...RetrierOption) *Retrier {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}

	r := &Retrier{
		provider:    provider,
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		sleep:       sleepContext,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Provider returns the wrapped provider
func (r *Retrier) Provider() Provider {
	return r.provider
}

// Generate calls the provider until it succeeds, fails, or runs out of attempts
func (r *Retrier) Generate(ctx context.Context, req *Request) (*Response, error) {
	var lastErr error

	for attempt := 0; attempt < r.maxAttempts; attempt++ {
		if r.throttle != nil {
			if err := r.throttle.Wait(ctx, r.provider.Endpoint()); err != nil {
				return nil, fmt.Errorf("throttle: %w", err)
			}
		}

		resp, err := r.provider.Generate(ctx, req)
		if err == nil {
			if attempt > 0 {
				r.logger.Info("request succeeded after rate limiting", zap.Int("attempt", attempt+1))
			}
			return resp, nil
		}

		if !IsRateLimited(err) {
			return nil, err
		}
		lastErr = err

		delay := r.baseDelay * time.Duration(1<<uint(attempt))
		r.logger.Warn("rate limit exceeded, backing off",
			zap.String("provider", r.provider.Name()),
			zap.Int("attempt", attempt+1),
			zap.Int("max_attempts", r.maxAttempts),
			zap.Duration("delay", delay))

		if err := r.sleep(ctx, delay); err != nil {
			return nil, fmt.Errorf("backoff interrupted: %w", err)
		}
	}

	r.logger.Error("giving up after repeated rate limiting", zap.Int("attempts", r.maxAttempts), zap.Error(lastErr))
	return nil, fmt.Errorf("%w after %d attempts: %w", ErrRateLimitExhausted, r.maxAttempts, lastErr)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
