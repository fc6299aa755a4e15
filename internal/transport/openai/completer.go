package openai

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docqa/internal/domain"
	"github.com/kailas-cloud/docqa/internal/metrics"
)

// DefaultSystemPrompt constrains the model to the documentation domain.
const DefaultSystemPrompt = "You are a helpful AI assistant that answers questions about the product documentation. " +
	"Use the provided context to answer questions accurately and concisely."

// Completer synthesizes answers via the chat-completion API.
type Completer struct {
	client       *openai.Client
	model        string
	systemPrompt string
	logger       *zap.Logger
}

// CompleterConfig holds the chat-completion provider settings.
type CompleterConfig struct {
	APIKey       string
	BaseURL      string
	Model        string
	SystemPrompt string
	Logger       *zap.Logger
}

// NewCompleter creates an OpenAI-compatible chat-completion provider.
func NewCompleter(cfg *CompleterConfig) *Completer {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	systemPrompt := cfg.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = DefaultSystemPrompt
	}

	return &Completer{
		client:       openai.NewClientWithConfig(clientCfg),
		model:        cfg.Model,
		systemPrompt: systemPrompt,
		logger:       cfg.Logger,
	}
}

// Generate sends one chat completion with the fixed system instruction and
// the user template "Context:\n<context>\n\nQuestion: <query>", and returns
// the first choice's text.
func (c *Completer) Generate(ctx context.Context, query, docContext string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: c.systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: UserMessage(query, docContext)},
		},
	}

	start := time.Now()

	resp, err := c.client.CreateChatCompletion(ctx, req)

	duration := time.Since(start)

	if err != nil {
		metrics.PipelineRequestsTotal.WithLabelValues(metrics.StageGeneration, "error").Inc()
		return "", parseAPIError(err, domain.ErrGenerationProviderError)
	}

	if len(resp.Choices) == 0 {
		metrics.PipelineRequestsTotal.WithLabelValues(metrics.StageGeneration, "error").Inc()
		return "", fmt.Errorf("empty completion response: %w", domain.ErrGenerationProviderError)
	}

	metrics.PipelineRequestsTotal.WithLabelValues(metrics.StageGeneration, "success").Inc()
	metrics.PipelineStageDuration.WithLabelValues(metrics.StageGeneration).Observe(duration.Seconds())

	c.logger.Debug("chat completion",
		zap.String("model", c.model),
		zap.Duration("latency", duration),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
	)

	return resp.Choices[0].Message.Content, nil
}

// UserMessage renders the fixed user-message template.
func UserMessage(query, docContext string) string {
	return fmt.Sprintf("Context:\n%s\n\nQuestion: %s", docContext, query)
}
