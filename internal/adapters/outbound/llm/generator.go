// Package llm implements domain.TextGenerator against an OpenAI-compatible
// chat completions endpoint (Groq by default).
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/ai/azopenai"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/rs/zerolog"

	"github.com/repograde/repograde/internal/domain"
)

var _ domain.TextGenerator = (*Generator)(nil)

// Generator sends one system+user chat request per call.
type Generator struct {
	client    *azopenai.Client
	model     string
	maxTokens int
	timeout   time.Duration
	logger    zerolog.Logger
}

// Option configures a Generator.
type Option func(*azopenai.ClientOptions)

// WithTransport replaces the HTTP transport, mainly for tests.
func WithTransport(t policy.Transporter) Option {
	return func(o *azopenai.ClientOptions) { o.Transport = t }
}

// New builds a Generator from cfg. apiKey is the resolved secret.
func New(cfg domain.LLMConfig, apiKey string, logger zerolog.Logger, opts ...Option) (*Generator, error) {
	if apiKey == "" {
		return nil, errors.New("llm api key is not configured (set llm.api_key or GROQ_API_KEY)")
	}
	if cfg.Model == "" {
		return nil, errors.New("llm model is not configured")
	}

	// Retries are handled by the retry decorator.
	clientOpts := &azopenai.ClientOptions{
		ClientOptions: azcore.ClientOptions{Retry: policy.RetryOptions{MaxRetries: -1}},
	}
	for _, opt := range opts {
		opt(clientOpts)
	}

	client, err := azopenai.NewClientForOpenAI(cfg.BaseURL, azcore.NewKeyCredential(apiKey), clientOpts)
	if err != nil {
		return nil, fmt.Errorf("creating llm client: %w", err)
	}
	return &Generator{
		client:    client,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		timeout:   cfg.Timeout,
		logger:    logger.With().Str("component", "llm").Logger(),
	}, nil
}

func (g *Generator) Generate(ctx context.Context, prompt domain.Prompt) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	messages := []azopenai.ChatRequestMessageClassification{
		&azopenai.ChatRequestUserMessage{
			Content: azopenai.NewChatRequestUserMessageContent(prompt.User),
		},
	}
	if prompt.System != "" {
		systemMsg := &azopenai.ChatRequestSystemMessage{
			Content: azopenai.NewChatRequestSystemMessageContent(prompt.System),
		}
		messages = append([]azopenai.ChatRequestMessageClassification{systemMsg}, messages...)
	}

	maxTokens := g.maxTokens
	if prompt.MaxTokens > 0 {
		maxTokens = prompt.MaxTokens
	}
	options := azopenai.ChatCompletionsOptions{
		DeploymentName: to.Ptr(g.model),
		Messages:       messages,
		Temperature:    to.Ptr(prompt.Temperature),
	}
	if maxTokens > 0 {
		options.MaxTokens = to.Ptr(int32(maxTokens))
	}

	start := time.Now()
	resp, err := g.client.GetChatCompletions(ctx, options, nil)
	if err != nil {
		return "", classify(err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message == nil || resp.Choices[0].Message.Content == nil {
		return "", fmt.Errorf("no completion choices returned: %w", domain.ErrMalformedOutput)
	}

	content := *resp.Choices[0].Message.Content
	g.logger.Debug().
		Str("model", g.model).
		Dur("duration", time.Since(start)).
		Int("prompt_chars", len(prompt.System)+len(prompt.User)).
		Int("completion_chars", len(content)).
		Msg("completion received")
	return content, nil
}

// classify marks rate limits, server errors and transport failures as
// ErrUpstreamUnavailable so the retry decorator retries them.
func classify(err error) error {
	var respErr *azcore.ResponseError
	if errors.As(err, &respErr) {
		if respErr.StatusCode == http.StatusTooManyRequests || respErr.StatusCode >= 500 {
			return fmt.Errorf("chat completion: status %d: %w", respErr.StatusCode, domain.ErrUpstreamUnavailable)
		}
		return fmt.Errorf("chat completion: status %d %s", respErr.StatusCode, respErr.ErrorCode)
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("chat completion: %w", err)
	}
	return fmt.Errorf("chat completion: %v: %w", err, domain.ErrUpstreamUnavailable)
}
