package memory

import (
	"context"
	"testing"

	"chatbot/internal/domain"
)

func TestStorage_InsertAndServices(t *testing.T) {
	s := NewStorage()
	ctx := context.Background()

	records := []domain.ServiceRecord{
		{ID: "1", Title: "Yoga Classes", Embedding: domain.Vector{1, 0}},
		{ID: "2", Title: "Unembedded"},
		{ID: "3", Title: "Health Checkup", Embedding: domain.Vector{0, 1}},
	}
	for _, r := range records {
		if err := s.Insert(ctx, r); err != nil {
			t.Fatalf("Insert(%s) failed: %v", r.ID, err)
		}
	}

	got, err := s.Services(ctx)
	if err != nil {
		t.Fatalf("Services failed: %v", err)
	}
	if len(got) != 2 || got[0].ID != "1" || got[1].ID != "3" {
		t.Fatalf("unexpected services: %+v", got)
	}
	if s.Len() != 3 {
		t.Errorf("Len() = %d, want 3", s.Len())
	}
}

func TestStorage_InsertDuplicate(t *testing.T) {
	s := NewStorage(domain.ServiceRecord{ID: "1", Title: "a"})
	if err := s.Insert(context.Background(), domain.ServiceRecord{ID: "1", Title: "b"}); err == nil {
		t.Fatal("expected duplicate id error")
	}
}

func TestStorage_InsertInvalid(t *testing.T) {
	if err := NewStorage().Insert(context.Background(), domain.ServiceRecord{Title: "no id"}); err == nil {
		t.Fatal("expected validation error")
	}
}
