package tfidf

import (
	"context"
	"errors"
	"math"
	"testing"

	"chatbot/internal/domain"
	"chatbot/internal/retrieval"
)

var corpus = []string{
	"This is a test service for demonstration.",
	"Comprehensive health checkup including blood tests and physical examination.",
	"Expert business consulting for startups and enterprises.",
	"Join our yoga classes to improve flexibility and reduce stress.",
	"Grow your business with our digital marketing solutions.",
}

func prepared(t *testing.T) *Embedder {
	t.Helper()
	e := NewEmbedder()
	if err := e.Prepare(context.Background(), corpus); err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	return e
}

func TestEmbed_NotPrepared(t *testing.T) {
	_, err := NewEmbedder().Embed(context.Background(), "yoga")
	if !errors.Is(err, domain.ErrEmbedding) {
		t.Fatalf("expected ErrEmbedding, got %v", err)
	}
}

func TestPrepare_EmptyCorpus(t *testing.T) {
	if err := NewEmbedder().Prepare(context.Background(), nil); !errors.Is(err, domain.ErrEmbedding) {
		t.Fatalf("expected ErrEmbedding, got %v", err)
	}
	if err := NewEmbedder().Prepare(context.Background(), []string{"the and of"}); !errors.Is(err, domain.ErrEmbedding) {
		t.Fatalf("stopword-only corpus: expected ErrEmbedding, got %v", err)
	}
}

func TestEmbed_Normalised(t *testing.T) {
	e := prepared(t)
	v, err := e.Embed(context.Background(), "yoga classes for stress")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if len(v) != e.Dimension() {
		t.Fatalf("len = %d, dimension = %d", len(v), e.Dimension())
	}
	var norm float64
	for _, x := range v {
		norm += x * x
	}
	if math.Abs(norm-1) > 1e-9 {
		t.Errorf("squared norm = %v, want 1", norm)
	}
}

func TestEmbed_UnknownTermsYieldZeroVector(t *testing.T) {
	e := prepared(t)
	v, err := e.Embed(context.Background(), "zzz qqq")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	for i, x := range v {
		if x != 0 {
			t.Fatalf("v[%d] = %v, want 0", i, x)
		}
	}
}

func TestEmbed_QueryMatchesRelatedDocument(t *testing.T) {
	e := prepared(t)
	ctx := context.Background()
	q, _ := e.Embed(ctx, "yoga")

	best, bestScore := -1, -2.0
	for i, doc := range corpus {
		d, err := e.Embed(ctx, doc)
		if err != nil {
			t.Fatalf("Embed failed: %v", err)
		}
		s, err := retrieval.Cosine(q, d)
		if err != nil {
			t.Fatalf("Cosine failed: %v", err)
		}
		if s > bestScore {
			best, bestScore = i, s
		}
	}
	if best != 3 {
		t.Errorf("best match = %q, want the yoga description", corpus[best])
	}
}

func TestEmbed_ContextCancelled(t *testing.T) {
	e := prepared(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := e.Embed(ctx, "yoga"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
