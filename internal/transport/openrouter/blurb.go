package openrouter

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/ikarus-cloud/furnish/internal/metrics"
)

const blurbPrompt = "Write a short, creative, under-60-word product blurb for: %s. " +
	"Highlight materials, design vibe, and one specific use-case. Vary the tone each time."

// BlurbWriter generates a fresh creative product description per item view.
type BlurbWriter struct {
	client      *openai.Client
	model       string
	temperature float32
	timeout     time.Duration
	logger      *zap.Logger
}

// BlurbConfig holds the blurb generation settings.
type BlurbConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	Timeout     time.Duration
	Logger      *zap.Logger
}

// NewBlurbWriter creates a chat-completion blurb generator.
func NewBlurbWriter(cfg *BlurbConfig) *BlurbWriter {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = cfg.BaseURL

	return &BlurbWriter{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
		logger:      cfg.Logger,
	}
}

// Write generates a creative blurb for the given product title.
// Callers treat failures as soft: the item endpoint falls back to a static blurb.
func (b *BlurbWriter) Write(ctx context.Context, title string) (string, error) {
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	start := time.Now()

	resp, err := b.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       b.model,
		Temperature: b.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(blurbPrompt, title)},
		},
	})
	if err != nil {
		metrics.BlurbRequestsTotal.WithLabelValues(b.model, "error").Inc()
		return "", fmt.Errorf("blurb completion: %w", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		metrics.BlurbRequestsTotal.WithLabelValues(b.model, "error").Inc()
		return "", fmt.Errorf("blurb completion: empty response")
	}

	metrics.BlurbRequestsTotal.WithLabelValues(b.model, "success").Inc()
	b.logger.Debug("Blurb generated",
		zap.String("model", b.model),
		zap.Duration("duration", time.Since(start)),
	)
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
