package console

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

func TestReadLine(t *testing.T) {
	var out bytes.Buffer
	c := New(strings.NewReader("hello\n/service yoga\n"), &out, io.Discard)
	ctx := context.Background()

	for _, want := range []string{"hello", "/service yoga"} {
		got, err := c.ReadLine(ctx, "You: ")
		if err != nil {
			t.Fatalf("ReadLine failed: %v", err)
		}
		if got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	}
	if _, err := c.ReadLine(ctx, "You: "); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF, got %v", err)
	}
	if _, err := c.ReadLine(ctx, "You: "); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF again, got %v", err)
	}
	if got := strings.Count(out.String(), "\nYou: "); got != 4 {
		t.Errorf("prompt printed %d times, want 4", got)
	}
}

func TestReadLine_ContextCancelled(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()
	c := New(r, io.Discard, io.Discard)
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := c.ReadLine(ctx, "You: "); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestReadLine_AfterClose(t *testing.T) {
	r, w := io.Pipe()
	defer w.Close()
	c := New(r, io.Discard, io.Discard)
	if err := c.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, err := c.ReadLine(context.Background(), "You: "); !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF, got %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("second Close failed: %v", err)
	}
}

func TestReply(t *testing.T) {
	var out, errOut bytes.Buffer
	c := New(strings.NewReader(""), &out, &errOut)

	c.BeginReply()
	_ = c.Write("Hel")
	_ = c.Write("lo")
	c.EndReply()
	c.Notice("[No response received]")
	c.Fail(errors.New("boom"))

	if got, want := out.String(), "AI: Hello\n[No response received]\n"; got != want {
		t.Errorf("out = %q, want %q", got, want)
	}
	if got := errOut.String(); got != "Error: boom\n" {
		t.Errorf("errOut = %q", got)
	}
}
