package openai

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"chatbot/internal/domain"
	"chatbot/internal/openaiapi"
)

// Client is a chat-completion Generator backed by an OpenAI-compatible API.
type Client struct {
	client *openai.Client
	model  string
}

// Config configures the chat-completion client.
type Config struct {
	BaseURL   string
	APIKeyEnv string
	Model     string
	Timeout   time.Duration
}

// NewClient creates a new chat-completion client using the provided configuration.
func NewClient(cfg Config) (*Client, error) {
	if cfg.Model == "" {
		cfg.Model = openai.GPT3Dot5Turbo
	}
	c, err := openaiapi.NewClient(openaiapi.Config{
		BaseURL:   cfg.BaseURL,
		APIKeyEnv: cfg.APIKeyEnv,
		Timeout:   cfg.Timeout,
	})
	if err != nil {
		return nil, err
	}
	return &Client{client: c, model: cfg.Model}, nil
}

// Model returns the configured model name.
func (c *Client) Model() string { return c.model }

// Complete returns the whole reply in one call.
func (c *Client) Complete(ctx context.Context, messages []domain.Message) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: toChatMessages(messages),
	})
	if err != nil {
		return "", openaiapi.WrapError(err, domain.ErrGeneration)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty completion response: %w", domain.ErrGeneration)
	}
	return resp.Choices[0].Message.Content, nil
}

// Stream starts a streamed completion. The returned stream yields content
// deltas and ends with io.EOF.
func (c *Client) Stream(ctx context.Context, messages []domain.Message) (domain.FragmentStream, error) {
	s, err := c.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: toChatMessages(messages),
		Stream:   true,
	})
	if err != nil {
		return nil, openaiapi.WrapError(err, domain.ErrGeneration)
	}
	return &fragmentStream{stream: s}, nil
}

type fragmentStream struct {
	stream *openai.ChatCompletionStream
}

func (f *fragmentStream) Recv() (string, error) {
	resp, err := f.stream.Recv()
	if errors.Is(err, io.EOF) {
		return "", io.EOF
	}
	if err != nil {
		return "", openaiapi.WrapError(err, domain.ErrGeneration)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Delta.Content, nil
}

func (f *fragmentStream) Close() error {
	f.stream.Close()
	return nil
}

func toChatMessages(messages []domain.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		out[i] = openai.ChatCompletionMessage{Role: string(m.Role), Content: m.Content}
	}
	return out
}
