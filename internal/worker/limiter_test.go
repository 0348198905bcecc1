package worker

import (
	"context"
	"testing"
	"time"

	"github.com/ppiankov/groundcheck/internal/llm"
)

var _ llm.Throttle = (*Limiter)(nil)

func TestNewLimiter_BurstFloor(t *testing.T) {
	if l := NewLimiter(10, 5); l.burst != 5 {
		t.Errorf("expected burst 5, got %d", l.burst)
	}
	if l := NewLimiter(10, -1); l.burst != 1 {
		t.Errorf("expected burst 1 for negative input, got %d", l.burst)
	}
}

func TestLimiter_BurstSpentBlocksSameHost(t *testing.T) {
	limiter := NewLimiter(0.001, 1)
	endpoint := "https://generativelanguage.googleapis.com/v1beta"

	if err := limiter.Wait(context.Background(), endpoint); err != nil {
		t.Fatalf("first wait failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := limiter.Wait(ctx, endpoint); err == nil {
		t.Error("expected second wait to fail before a token is available")
	}

	// Another host has its own bucket
	if err := limiter.Wait(ctx, "https://api.openai.com/v1"); err != nil {
		t.Errorf("other host should not be throttled: %v", err)
	}
}

func TestLimiter_HostCaseInsensitive(t *testing.T) {
	limiter := NewLimiter(0.001, 1)
	if err := limiter.Wait(context.Background(), "https://API.test/v1"); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := limiter.Wait(ctx, "https://api.test/v2"); err == nil {
		t.Error("expected the same bucket for differently cased hosts")
	}
}

func TestLimiter_Unlimited(t *testing.T) {
	limiter := NewLimiter(0, 1)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	for i := 0; i < 100; i++ {
		if err := limiter.Wait(ctx, "https://api.test"); err != nil {
			t.Fatalf("request %d throttled by unlimited limiter: %v", i, err)
		}
	}
}

func TestLimiter_BadEndpoint(t *testing.T) {
	if err := NewLimiter(1, 1).Wait(context.Background(), "::invalid"); err == nil {
		t.Error("expected error for unparsable endpoint")
	}
}
