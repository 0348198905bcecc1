package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// DefaultSystemInstruction is the fact-checker persona sent with every request
const DefaultSystemInstruction = `You are a world-class fact-checker. Your task is to analyze a given news claim,
verify its accuracy using Google Search, and provide a concise, factual summary.
Always include citations for your claims, referencing the sources found by Google Search.
If a claim is false or misleading, explain why based on the evidence you find.
If you cannot definitively verify or refute the claim, state that clearly.
Provide your response in a well-formatted markdown.`

// Config is the complete groundcheck configuration.
// It is loaded once at startup and treated as read-only afterwards.
type Config struct {
	API          APIConfig         `yaml:"api" mapstructure:"api"`
	Retry        RetryConfig       `yaml:"retry" mapstructure:"retry"`
	RateLimiting RateLimitConfig   `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	HTTP         HTTPConfig        `yaml:"http" mapstructure:"http"`
	History      HistoryConfig     `yaml:"history" mapstructure:"history"`
	Cache        CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Concurrency  ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Logging      LoggingConfig     `yaml:"logging" mapstructure:"logging"`
	Sources      SourcesConfig     `yaml:"sources" mapstructure:"sources"`
}

// APIConfig describes the generative backend
type APIConfig struct {
	Provider          string        `yaml:"provider" mapstructure:"provider" validate:"oneof=gemini openai"`
	Model             string        `yaml:"model" mapstructure:"model" validate:"required"`
	BaseURL           string        `yaml:"base_url,omitempty" mapstructure:"base_url" validate:"omitempty,url"`
	APIKey            string        `yaml:"api_key,omitempty" mapstructure:"api_key"`
	Timeout           time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gt=0"` // Per attempt
	SystemInstruction string        `yaml:"system_instruction" mapstructure:"system_instruction" validate:"required"`
	GoogleSearch      bool          `yaml:"google_search" mapstructure:"google_search"` // Declare the search tool
}

// RetryConfig bounds the rate-limit backoff
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts" mapstructure:"max_attempts" validate:"min=1,max=10"`
	BaseDelay   time.Duration `yaml:"base_delay" mapstructure:"base_delay" validate:"gte=0"` // Doubled after every 429
}

// RateLimitConfig throttles outgoing requests per API host
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second" validate:"gte=0"` // 0 disables
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size" validate:"gte=0"`
}

// HTTPConfig holds transport settings
type HTTPConfig struct {
	UserAgent  string `yaml:"user_agent" mapstructure:"user_agent"`
	HTTPProxy  string `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy string `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy    string `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// HistoryConfig locates the append-only history record
type HistoryConfig struct {
	Path string `yaml:"path" mapstructure:"path" validate:"required"`
}

// CacheConfig controls the raw response cache. It is off unless enabled:
// a cached answer skips the live search.
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl" validate:"gte=0"`
	DiskDir   string        `yaml:"disk_dir,omitempty" mapstructure:"disk_dir"` // Empty keeps the cache in memory only
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl" validate:"gte=0"`
}

// ConcurrencyConfig sizes the batch worker pool
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers" validate:"min=1"`
}

// LoggingConfig selects log level and encoding
type LoggingConfig struct {
	Level   string `yaml:"level" mapstructure:"level" validate:"oneof=debug info warn error"`
	Format  string `yaml:"format" mapstructure:"format" validate:"oneof=json console"`
	Verbose bool   `yaml:"-" mapstructure:"verbose"`
}

// SourcesConfig lists domains used to grade citation authority.
// Subdomains match their parent entry.
type SourcesConfig struct {
	PrimaryDomains   []string      `yaml:"primary_domains" mapstructure:"primary_domains" validate:"dive,hostname"`
	SecondaryDomains []string      `yaml:"secondary_domains" mapstructure:"secondary_domains" validate:"dive,hostname"`
	VerifyLinks      bool          `yaml:"verify_links" mapstructure:"verify_links"` // Probe every cited URI after a check
	LinkTimeout      time.Duration `yaml:"link_timeout" mapstructure:"link_timeout" validate:"gt=0"`
	LinkWorkers      int           `yaml:"link_workers" mapstructure:"link_workers" validate:"min=1"`
	RespectRobots    bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			Provider:          "gemini",
			Model:             "gemini-2.5-flash",
			BaseURL:           "https://generativelanguage.googleapis.com/v1beta",
			Timeout:           60 * time.Second,
			SystemInstruction: DefaultSystemInstruction,
			GoogleSearch:      true,
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			BaseDelay:   time.Second,
		},
		RateLimiting: RateLimitConfig{
			RequestsPerSecond: 1,
			BurstSize:         2,
		},
		HTTP: HTTPConfig{
			UserAgent: "groundcheck/0.1 (+https://github.com/ppiankov/groundcheck)",
		},
		History: HistoryConfig{
			Path: "fact_check_history.csv",
		},
		Cache: CacheConfig{
			Enabled:   false,
			MemoryTTL: 10 * time.Minute,
			DiskTTL:   6 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 2,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Sources: SourcesConfig{
			PrimaryDomains: []string{
				"who.int",
				"un.org",
				"europa.eu",
				"doi.org",
				"gov.uk",
				"nih.gov",
			},
			SecondaryDomains: []string{
				"reuters.com",
				"apnews.com",
				"afp.com",
				"bbc.co.uk",
				"bbc.com",
				"britannica.com",
				"wikipedia.org",
				"snopes.com",
				"factcheck.org",
				"politifact.com",
				"fullfact.org",
			},
			LinkTimeout:   10 * time.Second,
			LinkWorkers:   4,
			RespectRobots: true,
		},
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and reports every violation at once
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("validate config: %w", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		msgs = append(msgs, fmt.Sprintf("%s must satisfy %s", fe.Namespace(), rule))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// Redacted returns a copy safe to print
func (c *Config) Redacted() *Config {
	out := *c
	if out.API.APIKey != "" {
		out.API.APIKey = "********"
	}
	return &out
}
