package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ppiankov/groundcheck/internal/util"
	"github.com/sashabaranov/go-openai"
)

// OpenAIProvider implements the Provider interface for OpenAI-compatible chat APIs.
// These backends have no search tool, so answers come back without grounding metadata.
type OpenAIProvider struct {
	client  *openai.Client
	model   string
	baseURL string
	config  Config
}

// NewOpenAIProvider creates a new OpenAI provider
func NewOpenAIProvider(config Config) (*OpenAIProvider, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required (set OPENAI_API_KEY)")
	}

	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimSuffix(config.BaseURL, "/")
	}
	clientConfig.HTTPClient = util.NewHTTPClient(config.timeout(), config.HTTPProxy, config.HTTPSProxy, config.NoProxy)

	model := config.Model
	if model == "" {
		model = openai.GPT4oMini
	}

	return &OpenAIProvider{
		client:  openai.NewClientWithConfig(clientConfig),
		model:   model,
		baseURL: clientConfig.BaseURL,
		config:  config,
	}, nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return "openai"
}

// Model returns the configured model
func (p *OpenAIProvider) Model() string {
	return p.model
}

// Endpoint returns the API base URL
func (p *OpenAIProvider) Endpoint() string {
	return p.baseURL
}

// IsAvailable lists models as a lightweight credentials check
func (p *OpenAIProvider) IsAvailable(ctx context.Context) error {
	if _, err := p.client.ListModels(ctx); err != nil {
		return fmt.Errorf("OpenAI API check failed: %w", asStatusError(err))
	}
	return nil
}

// Generate sends one chat completion and maps it onto the generateContent envelope
func (p *OpenAIProvider) Generate(ctx context.Context, req *Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, p.config.timeout())
	defer cancel()

	var messages []openai.ChatCompletionMessage
	if instruction := req.Instruction(); instruction != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: instruction,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Claim(),
	})

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.model,
		Messages:    messages,
		Temperature: 0.2,
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", asStatusError(err))
	}

	out := &Response{
		ModelVersion: resp.Model,
		UsageMetadata: &UsageMetadata{
			PromptTokenCount:     resp.Usage.PromptTokens,
			CandidatesTokenCount: resp.Usage.CompletionTokens,
			TotalTokenCount:      resp.Usage.TotalTokens,
		},
	}
	for _, choice := range resp.Choices {
		out.Candidates = append(out.Candidates, Candidate{
			Content: &Content{
				Role:  "model",
				Parts: []Part{{Text: choice.Message.Content}},
			},
			FinishReason: string(choice.FinishReason),
		})
	}

	return out, nil
}

// asStatusError lifts go-openai HTTP failures into *StatusError so the backoff sees 429s
func asStatusError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return &StatusError{StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message, Err: err}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return &StatusError{StatusCode: reqErr.HTTPStatusCode, Message: reqErr.Error(), Err: err}
	}

	return err
}
