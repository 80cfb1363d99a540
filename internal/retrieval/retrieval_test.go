package retrieval

import (
	"errors"
	"math"
	"strings"
	"testing"

	"chatbot/internal/domain"
)

func TestCosine_Symmetric(t *testing.T) {
	pairs := [][2]domain.Vector{
		{{1, 2, 3}, {4, 5, 6}},
		{{-1, 0.5, 2}, {0.3, -0.7, 1}},
		{{0.1}, {-5}},
	}
	for _, p := range pairs {
		ab, err := Cosine(p[0], p[1])
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		ba, err := Cosine(p[1], p[0])
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ab != ba {
			t.Errorf("Cosine(%v, %v) = %v, reversed = %v", p[0], p[1], ab, ba)
		}
	}
}

func TestCosine_SelfIsOne(t *testing.T) {
	for _, v := range []domain.Vector{{1, 2, 3}, {-0.3, 7, 0.01}, {42}} {
		s, err := Cosine(v, v)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if math.Abs(s-1) > 1e-9 {
			t.Errorf("Cosine(%v, itself) = %v, want 1", v, s)
		}
	}
}

func TestCosine_OppositeAndOrthogonal(t *testing.T) {
	s, _ := Cosine(domain.Vector{1, 0}, domain.Vector{-1, 0})
	if math.Abs(s+1) > 1e-9 {
		t.Errorf("opposite vectors: got %v, want -1", s)
	}
	s, _ = Cosine(domain.Vector{1, 0}, domain.Vector{0, 1})
	if s != 0 {
		t.Errorf("orthogonal vectors: got %v, want 0", s)
	}
}

func TestCosine_ZeroMagnitude(t *testing.T) {
	s, err := Cosine(domain.Vector{0, 0}, domain.Vector{1, 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s != 0 || math.IsNaN(s) {
		t.Errorf("zero vector: got %v, want 0", s)
	}
	s, err = Cosine(domain.Vector{}, domain.Vector{})
	if err != nil || s != 0 {
		t.Errorf("empty vectors: got %v, %v", s, err)
	}
}

func TestCosine_DimensionMismatch(t *testing.T) {
	_, err := Cosine(domain.Vector{1, 2}, domain.Vector{1, 2, 3})
	if !errors.Is(err, domain.ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}

func rec(title string, emb ...float64) domain.ServiceRecord {
	return domain.ServiceRecord{Title: title, Embedding: emb}
}

func titles(cs []domain.ScoredCandidate) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Record.Title
	}
	return out
}

func TestRank_SortedAndTruncated(t *testing.T) {
	query := domain.Vector{1, 0}
	candidates := []domain.ServiceRecord{
		rec("low", 0, 1),
		rec("high", 1, 0),
		rec("mid", 1, 1),
		rec("negative", -1, 0),
	}
	got, err := Rank(query, candidates, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Join(titles(got), ",") != "high,mid,low" {
		t.Fatalf("unexpected order: %v", titles(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Score > got[i-1].Score {
			t.Errorf("scores not non-increasing at %d: %v > %v", i, got[i].Score, got[i-1].Score)
		}
	}
}

func TestRank_TiesKeepInputOrder(t *testing.T) {
	// A and B both score 0.5 against the query, C scores 0.9.
	query := domain.Vector{1, 0}
	a := rec("A", 0.5, math.Sqrt(1-0.25))
	b := rec("B", 0.5, math.Sqrt(1-0.25))
	c := rec("C", 0.9, math.Sqrt(1-0.81))
	got, err := Rank(query, []domain.ServiceRecord{a, b, c}, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Join(titles(got), ",") != "C,A,B" {
		t.Fatalf("got %v, want [C A B]", titles(got))
	}
}

func TestRank_ExcludesUnembedded(t *testing.T) {
	query := domain.Vector{1, 0}
	candidates := []domain.ServiceRecord{
		{Title: "no embedding"},
		rec("embedded", 0, 1),
	}
	got, err := Rank(query, candidates, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Record.Title != "embedded" {
		t.Fatalf("unexpected result: %v", titles(got))
	}
}

func TestRank_EmptyInputs(t *testing.T) {
	got, err := Rank(domain.Vector{1}, nil, 3)
	if err != nil || got == nil || len(got) != 0 {
		t.Fatalf("empty candidates: got %v, %v", got, err)
	}
	got, err = Rank(domain.Vector{1}, []domain.ServiceRecord{rec("x", 1)}, 0)
	if err != nil || len(got) != 0 {
		t.Fatalf("topK=0: got %v, %v", got, err)
	}
}

func TestRank_DimensionMismatch(t *testing.T) {
	_, err := Rank(domain.Vector{1, 0}, []domain.ServiceRecord{rec("x", 1, 0, 0)}, 1)
	if !errors.Is(err, domain.ErrDimensionMismatch) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestAssemble_Empty(t *testing.T) {
	if got := Assemble(nil); got != "" {
		t.Errorf("Assemble(nil) = %q, want empty", got)
	}
}

func TestAssemble_SingleTruncated(t *testing.T) {
	long := strings.Repeat("stretch ", 30)
	c := domain.ScoredCandidate{Record: domain.ServiceRecord{
		Title:       "Yoga Classes",
		Description: long,
		Cost:        15000,
		Link:        "http://localhost:3000/services/yoga",
	}, Score: 0.9}

	got := Assemble([]domain.ScoredCandidate{c})
	for _, want := range []string{"1. Yoga Classes", "Cost: 15000", "Link: http://localhost:3000/services/yoga", "..."} {
		if !strings.Contains(got, want) {
			t.Errorf("context missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, long) {
		t.Error("description was not truncated")
	}
}

func TestAssemble_ShortDescriptionNotTruncated(t *testing.T) {
	c := domain.ScoredCandidate{Record: domain.ServiceRecord{
		Title:       "Health Checkup",
		Description: `{"blocks":[{"text":"Blood tests and examination."}],"entityMap":{}}`,
		Cost:        12.5,
		Link:        "http://x",
	}}
	got := Assemble([]domain.ScoredCandidate{c})
	if !strings.Contains(got, "Description: Blood tests and examination.\n") {
		t.Errorf("unexpected description line:\n%s", got)
	}
	if strings.Contains(got, "...") {
		t.Error("short description should not carry an ellipsis")
	}
	if !strings.Contains(got, "Cost: 12.5") {
		t.Errorf("unexpected cost formatting:\n%s", got)
	}
}

func TestAssemble_BlocksSeparatedAndNumbered(t *testing.T) {
	cs := []domain.ScoredCandidate{
		{Record: domain.ServiceRecord{Title: "First"}},
		{Record: domain.ServiceRecord{Title: "Second"}},
	}
	got := Assemble(cs)
	parts := strings.Split(got, "\n\n")
	if len(parts) != 2 {
		t.Fatalf("expected 2 blocks, got %d:\n%s", len(parts), got)
	}
	if !strings.HasPrefix(parts[0], "1. First") || !strings.HasPrefix(parts[1], "2. Second") {
		t.Errorf("unexpected numbering:\n%s", got)
	}
}

func TestExcerpt_RuneAware(t *testing.T) {
	got := excerpt("ééééé", 3)
	if got != "ééé..." {
		t.Errorf("excerpt = %q", got)
	}
}
