package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"chatbot/internal/domain"
)

const keyEnv = "CHATBOT_TEST_OPENAI_KEY"

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	t.Setenv(keyEnv, "test-key")

	c, err := NewClient(Config{BaseURL: server.URL, APIKeyEnv: keyEnv, Model: "test-model"})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return c
}

func TestNewClient_MissingKey(t *testing.T) {
	t.Setenv(keyEnv, "")
	if _, err := NewClient(Config{APIKeyEnv: keyEnv}); err == nil {
		t.Fatal("expected error for missing API key")
	}
}

func TestComplete(t *testing.T) {
	var got struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("unexpected auth header: %s", r.Header.Get("Authorization"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"1","object":"chat.completion","created":1,"model":"test-model",
			"choices":[{"index":0,"message":{"role":"assistant","content":"Try the yoga classes."},"finish_reason":"stop"}]}`)
	})

	answer, err := c.Complete(context.Background(), []domain.Message{
		{Role: domain.RoleSystem, Content: "be brief"},
		{Role: domain.RoleUser, Content: "what helps with stress?"},
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if answer != "Try the yoga classes." {
		t.Errorf("answer = %q", answer)
	}
	if got.Model != "test-model" || len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Content != "what helps with stress?" {
		t.Errorf("unexpected request: %+v", got)
	}
}

func TestComplete_APIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"error":{"message":"upstream exploded","type":"server_error"}}`)
	})

	_, err := c.Complete(context.Background(), []domain.Message{{Role: domain.RoleUser, Content: "hi"}})
	if !errors.Is(err, domain.ErrGeneration) {
		t.Fatalf("expected ErrGeneration, got %v", err)
	}
	if !strings.Contains(err.Error(), "upstream exploded") {
		t.Errorf("error should carry the API message: %v", err)
	}
}

func TestStream(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		for _, frag := range []string{"Hel", "", "lo"} {
			fmt.Fprintf(w, "data: {\"id\":\"1\",\"object\":\"chat.completion.chunk\",\"created\":1,\"model\":\"test-model\",\"choices\":[{\"index\":0,\"delta\":{\"content\":%q}}]}\n\n", frag)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	})

	s, err := c.Stream(context.Background(), []domain.Message{{Role: domain.RoleUser, Content: "hi"}})
	if err != nil {
		t.Fatalf("Stream failed: %v", err)
	}
	defer s.Close()

	var frags []string
	for {
		f, err := s.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("Recv failed: %v", err)
		}
		frags = append(frags, f)
	}
	if strings.Join(frags, "") != "Hello" {
		t.Errorf("fragments = %q", frags)
	}
}

func TestStream_APIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"message":"bad key","type":"invalid_request_error"}}`)
	})

	_, err := c.Stream(context.Background(), []domain.Message{{Role: domain.RoleUser, Content: "hi"}})
	if !errors.Is(err, domain.ErrGeneration) {
		t.Fatalf("expected ErrGeneration, got %v", err)
	}
}
