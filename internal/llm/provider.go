package llm

import (
	"context"
	"time"

	"github.com/ppiankov/groundcheck/internal/model"
)

// Provider defines the interface for generative backends
type Provider interface {
	// Name returns the provider name
	Name() string

	// Model returns the model requests are sent to
	Model() string

	// Endpoint returns the base URL calls go to (used as the throttle key)
	Endpoint() string

	// Generate performs exactly one API call. It never retries;
	// rate limiting is reported as a *StatusError with code 429.
	Generate(ctx context.Context, req *Request) (*Response, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) error
}

// Config holds provider configuration
type Config struct {
	// Provider name: "gemini" or "openai"
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey is passed as the key query parameter (gemini) or bearer token (openai)
	APIKey string

	// BaseURL for custom endpoints
	BaseURL string

	// Timeout bounds a single attempt
	Timeout time.Duration

	UserAgent string

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// ConfigFromModel converts the application config to a provider config
func ConfigFromModel(cfg *model.Config) Config {
	return Config{
		Provider:   cfg.API.Provider,
		Model:      cfg.API.Model,
		APIKey:     cfg.API.APIKey,
		BaseURL:    cfg.API.BaseURL,
		Timeout:    cfg.API.Timeout,
		UserAgent:  cfg.HTTP.UserAgent,
		HTTPProxy:  cfg.HTTP.HTTPProxy,
		HTTPSProxy: cfg.HTTP.HTTPSProxy,
		NoProxy:    cfg.HTTP.NoProxy,
	}
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return 60 * time.Second
	}
	return c.Timeout
}
