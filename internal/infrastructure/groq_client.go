package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"

	"binary_joke_bot/internal/config"
)

const (
	// DefaultTopic is used when GenerateJoke gets a blank topic.
	DefaultTopic = "technology"

	jokeSystemPrompt = "You are a joke generating assistant. Generate only ONE joke on the given topic and do not continue the conversation"
	jokeUserPrompt   = "Generate a joke on the topic: %s"
)

// ErrEmptyCompletion is returned when the provider answers without any text.
var ErrEmptyCompletion = errors.New("provider returned no completion")

type chatModel interface {
	GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error)
}

// GroqClient asks Groq's OpenAI-compatible chat endpoint for jokes.
type GroqClient struct {
	llm    chatModel
	model  string
	tracer *LangSmithTracer
	logger *slog.Logger
}

// NewGroqClient builds the client from cfg. tracer may be nil.
func NewGroqClient(cfg config.Config, tracer *LangSmithTracer, logger *slog.Logger) (*GroqClient, error) {
	opts := []openai.Option{
		openai.WithToken(cfg.GroqAPIKey),
		openai.WithBaseURL(cfg.GroqBaseURL),
		openai.WithModel(cfg.GroqModel),
	}
	if tracer != nil {
		opts = append(opts, openai.WithCallback(tracer))
	}

	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create groq client: %w", err)
	}

	c := newGroqClient(llm, cfg.GroqModel, logger)
	c.tracer = tracer
	return c, nil
}

func newGroqClient(llm chatModel, model string, logger *slog.Logger) *GroqClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &GroqClient{llm: llm, model: model, logger: logger}
}

// JokePrompt is the two-turn conversation sent for topic. The topic is
// inserted as-is.
func JokePrompt(topic string) []llms.MessageContent {
	return []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, jokeSystemPrompt),
		llms.TextParts(schema.ChatMessageTypeHuman, fmt.Sprintf(jokeUserPrompt, topic)),
	}
}

// GenerateJoke makes one provider call and returns the trimmed reply.
func (c *GroqClient) GenerateJoke(ctx context.Context, topic string) (string, error) {
	if strings.TrimSpace(topic) == "" {
		topic = DefaultTopic
	}
	if c.tracer != nil {
		ctx = c.tracer.StartRun(ctx, "joke_generation", map[string]any{"topic": topic, "model": c.model})
	}

	resp, err := c.llm.GenerateContent(ctx, JokePrompt(topic))
	if err != nil {
		if c.tracer != nil {
			c.tracer.HandleLLMError(ctx, err)
		}
		return "", fmt.Errorf("generate joke: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}

	joke := strings.TrimSpace(resp.Choices[0].Content)
	if joke == "" {
		return "", ErrEmptyCompletion
	}
	c.logger.Debug("joke generated", "topic", topic, "model", c.model, "length", len(joke))
	return joke, nil
}
