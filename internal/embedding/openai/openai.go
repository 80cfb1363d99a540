package openai

import (
	"context"
	"fmt"
	"sync"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"chatbot/internal/domain"
	"chatbot/internal/logger"
	"chatbot/internal/openaiapi"
)

// Client is an OpenAI-compatible embeddings client implementing domain.Embedder.
type Client struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	maxRetries int

	mu        sync.Mutex
	dimension int
}

// Config configures the OpenAI-compatible embeddings client.
type Config struct {
	BaseURL    string
	APIKeyEnv  string
	Model      string
	Timeout    time.Duration
	MaxRetries int
}

// NewClient creates a new embeddings client using the provided configuration.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Model == "" {
		cfg.Model = string(openai.AdaEmbeddingV2)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	c, err := openaiapi.NewClient(openaiapi.Config{
		BaseURL:   cfg.BaseURL,
		APIKeyEnv: cfg.APIKeyEnv,
		Timeout:   cfg.Timeout,
	})
	if err != nil {
		return nil, err
	}
	return &Client{
		client:     c,
		model:      openai.EmbeddingModel(cfg.Model),
		maxRetries: cfg.MaxRetries,
	}, nil
}

// Name returns the identifier of this embedder implementation.
func (c *Client) Name() string { return "openai" }

// Prepare is not required for remote embedding. Dimension is set lazily on first embed.
func (c *Client) Prepare(ctx context.Context, corpus []string) error { return nil }

// Dimension returns the dimensionality of the produced embedding vectors, or
// 0 before the first successful call.
func (c *Client) Dimension() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dimension
}

// Embed returns an embedding vector for the given text. Rate limits, server
// errors and transport failures are retried with capped exponential backoff.
func (c *Client) Embed(ctx context.Context, text string) (domain.Vector, error) {
	req := openai.EmbeddingRequest{
		Input:          []string{text},
		Model:          c.model,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	}
	log := logger.FromContext(ctx)

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		resp, err := c.client.CreateEmbeddings(ctx, req)
		if err == nil {
			if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
				return nil, fmt.Errorf("empty embedding response: %w", domain.ErrEmbedding)
			}
			return c.toVector(resp.Data[0].Embedding), nil
		}
		lastErr = err
		if ctx.Err() != nil || !shouldRetry(err) || attempt == c.maxRetries {
			break
		}
		delay := retryDelay(attempt)
		log.Debug("retrying embedding request",
			zap.Int("attempt", attempt+1),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %w", domain.ErrEmbedding, ctx.Err())
		case <-time.After(delay):
		}
	}
	return nil, openaiapi.WrapError(lastErr, domain.ErrEmbedding)
}

func (c *Client) toVector(raw []float32) domain.Vector {
	v := make(domain.Vector, len(raw))
	for i, x := range raw {
		v[i] = float64(x)
	}
	c.mu.Lock()
	if c.dimension == 0 {
		c.dimension = len(v)
	}
	c.mu.Unlock()
	return v
}

// shouldRetry retries transport failures, rate limits and 5xx responses.
func shouldRetry(err error) bool {
	return openaiapi.StatusCode(err) == 0 || openaiapi.Retryable(err)
}

func retryDelay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	// exponential backoff capped at 5s; 200ms<<5 already exceeds the cap and
	// larger shifts overflow
	if attempt >= 5 {
		return 5 * time.Second
	}
	return 200 * time.Millisecond << attempt
}
