package openaiapi

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"
)

var errKind = errors.New("kind")

func TestNewClient_RequiresKey(t *testing.T) {
	if _, err := NewClient(Config{APIKeyEnv: "CHATBOT_TEST_UNSET_KEY"}); err == nil {
		t.Fatal("expected missing key error")
	}
	t.Setenv("CHATBOT_TEST_KEY", "k")
	if _, err := NewClient(Config{APIKeyEnv: "CHATBOT_TEST_KEY"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestWrapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
		code int
	}{
		{"api error", &openai.APIError{HTTPStatusCode: 429, Message: "slow down"}, "api error 429: slow down", 429},
		{"request error with detail", &openai.RequestError{HTTPStatusCode: 502, Body: []byte(`{"detail":"upstream down"}`)}, "api error 502: upstream down", 502},
		{"request error", &openai.RequestError{HTTPStatusCode: 500, Body: []byte("oops")}, "api error 500", 500},
		{"transport", errors.New("connection refused"), "connection refused", 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := WrapError(tc.err, errKind)
			if !errors.Is(got, errKind) {
				t.Errorf("%v does not wrap kind", got)
			}
			if !strings.Contains(got.Error(), tc.want) {
				t.Errorf("got %q, want it to contain %q", got, tc.want)
			}
			if StatusCode(tc.err) != tc.code {
				t.Errorf("StatusCode = %d, want %d", StatusCode(tc.err), tc.code)
			}
		})
	}
}

func TestRetryable(t *testing.T) {
	if !Retryable(&openai.APIError{HTTPStatusCode: http.StatusTooManyRequests}) {
		t.Error("429 should be retryable")
	}
	if !Retryable(&openai.APIError{HTTPStatusCode: http.StatusBadGateway}) {
		t.Error("502 should be retryable")
	}
	if Retryable(&openai.APIError{HTTPStatusCode: http.StatusBadRequest}) {
		t.Error("400 should not be retryable")
	}
}
