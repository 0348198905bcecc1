package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/ppiankov/groundcheck/internal/util"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiProvider implements the Provider interface for the Gemini generateContent API
type GeminiProvider struct {
	apiKey     string
	baseURL    string
	model      string
	userAgent  string
	httpClient *http.Client
	config     Config
	maxBody    int64
}

// maxResponseBytes caps a generateContent body; grounded answers stay far below it
const maxResponseBytes = 16 << 20

// NewGeminiProvider creates a new Gemini provider
func NewGeminiProvider(config Config) (*GeminiProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required (set GEMINI_API_KEY)")
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = defaultGeminiBaseURL
	}

	model := strings.TrimSpace(config.Model)
	if model == "" {
		model = "gemini-2.5-flash"
	}

	return &GeminiProvider{
		apiKey:     config.APIKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		model:      model,
		userAgent:  config.UserAgent,
		httpClient: util.NewHTTPClient(config.timeout(), config.HTTPProxy, config.HTTPSProxy, config.NoProxy),
		config:     config,
		maxBody:    maxResponseBytes,
	}, nil
}

// Name returns the provider name
func (p *GeminiProvider) Name() string {
	return "gemini"
}

// Model returns the configured model
func (p *GeminiProvider) Model() string {
	return p.model
}

// Endpoint returns the API base URL
func (p *GeminiProvider) Endpoint() string {
	return p.baseURL
}

// IsAvailable fetches the model resource to confirm the key and model are usable
func (p *GeminiProvider) IsAvailable(ctx context.Context) error {
	endpoint := fmt.Sprintf("%s/models/%s?key=%s", p.baseURL, url.PathEscape(p.model), url.QueryEscape(p.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", p.baseURL, redactKey(err, p.apiKey))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return statusError(resp.StatusCode, body)
	}
	return nil
}

// Generate sends one generateContent call
func (p *GeminiProvider) Generate(ctx context.Context, apiReq *Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, p.httpClient.Timeout)
	defer cancel()

	body, err := json.Marshal(apiReq)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s", p.baseURL, url.PathEscape(p.model), url.QueryEscape(p.apiKey))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", redactKey(err, p.apiKey))
	}

	httpReq.Header.Set("Content-Type", "application/json")
	if p.userAgent != "" {
		httpReq.Header.Set("User-Agent", p.userAgent)
	}

	httpResp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", redactKey(err, p.apiKey))
	}
	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, p.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if int64(len(respBody)) > p.maxBody {
		return nil, fmt.Errorf("response exceeds %d bytes", p.maxBody)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return nil, statusError(httpResp.StatusCode, respBody)
	}

	var resp Response
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	return &resp, nil
}

func statusError(code int, body []byte) *StatusError {
	var envelope apiErrorEnvelope
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		return &StatusError{StatusCode: code, Message: envelope.Error.Message}
	}
	return &StatusError{StatusCode: code, Message: strings.TrimSpace(string(body))}
}

// redactKey keeps the API key out of *url.Error messages, which embed the request URL
func redactKey(err error, key string) error {
	if key == "" || !strings.Contains(err.Error(), url.QueryEscape(key)) {
		return err
	}
	return &redactedError{msg: strings.ReplaceAll(err.Error(), url.QueryEscape(key), "REDACTED"), err: err}
}

type redactedError struct {
	msg string
	err error
}

func (e *redactedError) Error() string { return e.msg }
func (e *redactedError) Unwrap() error { return e.err }
