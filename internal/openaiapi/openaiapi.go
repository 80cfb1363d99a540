// Package openaiapi holds the client setup and error mapping shared by the
// OpenAI-compatible generation and embedding adapters.
package openaiapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = "https://api.openai.com/v1"

// Config describes how to reach an OpenAI-compatible endpoint.
type Config struct {
	BaseURL   string
	APIKeyEnv string
	Timeout   time.Duration
}

// NewClient builds a go-openai client, reading the API key from the
// configured environment variable.
func NewClient(cfg Config) (*openai.Client, error) {
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	clientCfg := openai.DefaultConfig(key)
	clientCfg.BaseURL = DefaultBaseURL
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}
	return openai.NewClientWithConfig(clientCfg), nil
}

// WrapError turns a go-openai error into a readable message wrapped with kind.
func WrapError(err error, kind error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("api error %d: %s: %w", apiErr.HTTPStatusCode, apiErr.Message, kind)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if detail := extractDetail(reqErr.Body); detail != "" {
			return fmt.Errorf("api error %d: %s: %w", reqErr.HTTPStatusCode, detail, kind)
		}
		return fmt.Errorf("api error %d: %w", reqErr.HTTPStatusCode, kind)
	}

	return fmt.Errorf("%w: %w", kind, err)
}

// StatusCode returns the HTTP status carried by a go-openai error, or 0.
func StatusCode(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}

// Retryable reports whether err is a rate limit or server-side failure.
func Retryable(err error) bool {
	code := StatusCode(err)
	return code == http.StatusTooManyRequests || code >= 500
}

// extractDetail reads a {"detail": "..."} error body used by some
// OpenAI-compatible providers.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
