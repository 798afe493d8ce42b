package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	openai "github.com/sashabaranov/go-openai"
)

// Provider is one text-completion backend. Providers carry no selection
// state: callers pass an explicit ordered list to CompleteWithFallback.
type Provider interface {
	Name() string
	Complete(ctx context.Context, prompt string) (string, error)
}

// ErrNoProviders is returned when the fallback chain is empty or every
// provider failed.
var ErrNoProviders = errors.New("no AI provider available")

// CompleteWithFallback tries each provider in order and returns the first
// successful completion. All failures are joined into the returned error.
func CompleteWithFallback(ctx context.Context, providers []Provider, prompt string) (string, error) {
	if len(providers) == 0 {
		return "", ErrNoProviders
	}

	var errs []error
	for _, p := range providers {
		out, err := p.Complete(ctx, prompt)
		if err == nil {
			return out, nil
		}
		slog.WarnContext(ctx, "AI provider failed, trying next", "provider", p.Name(), "error", err)
		errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
	}
	return "", errors.Join(append([]error{ErrNoProviders}, errs...)...)
}

// OpenAIProvider wraps an OpenAI-compatible API.
type OpenAIProvider struct {
	api   *openai.Client
	model string
}

func NewOpenAIProvider(apiKey, baseURL, model string) *OpenAIProvider {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &OpenAIProvider{
		api:   openai.NewClientWithConfig(config),
		model: model,
	}
}

func (p *OpenAIProvider) Name() string { return "openai:" + p.model }

func (p *OpenAIProvider) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := p.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.3,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
