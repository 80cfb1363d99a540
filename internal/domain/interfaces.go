package domain

import (
	"context"
	"encoding/json"
	"strings"
	"time"
)

// Vector is an embedding produced by an Embedder. Two vectors are only
// comparable when they have the same length.
type Vector []float64

// ServiceRecord is a catalog entry offered to the user through /service queries.
// Records are owned by the Catalog and treated as read-only by retrieval.
type ServiceRecord struct {
	ID          string
	Title       string
	Description string // plain text or Draft.js raw JSON
	Cost        float64
	Link        string
	ImageURL    string
	Embedding   Vector
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasEmbedding reports whether the record is eligible for retrieval.
func (r ServiceRecord) HasEmbedding() bool { return len(r.Embedding) > 0 }

// PlainDescription returns the description as plain text.
func (r ServiceRecord) PlainDescription() string { return PlainText(r.Description) }

// ScoredCandidate is a record together with its similarity to a query.
type ScoredCandidate struct {
	Record ServiceRecord
	Score  float64
}

// Role identifies the author of a Message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single entry of a conversation transcript.
type Message struct {
	Role    Role
	Content string
}

// Embedder converts free text into a numeric vector representation.
// Implementations may require a preparation phase over the corpus.
type Embedder interface {
	Name() string
	Prepare(ctx context.Context, corpus []string) error
	Dimension() int
	Embed(ctx context.Context, text string) (Vector, error)
}

// FragmentStream yields generated text incrementally. Recv returns io.EOF
// once the stream is exhausted.
type FragmentStream interface {
	Recv() (string, error)
	Close() error
}

// Generator produces assistant replies for an ordered list of messages.
type Generator interface {
	Complete(ctx context.Context, messages []Message) (string, error)
	Stream(ctx context.Context, messages []Message) (FragmentStream, error)
}

// Catalog is the document store holding service records.
// Services returns only records that carry an embedding, in insertion order.
type Catalog interface {
	Services(ctx context.Context) ([]ServiceRecord, error)
	Insert(ctx context.Context, record ServiceRecord) error
	Close() error
}

// PlainText flattens a Draft.js raw content document into its block texts
// joined by single spaces. Anything else is returned unchanged.
func PlainText(description string) string {
	trimmed := strings.TrimSpace(description)
	if !strings.HasPrefix(trimmed, "{") {
		return description
	}
	var raw struct {
		Blocks []struct {
			Text string `json:"text"`
		} `json:"blocks"`
	}
	if err := json.Unmarshal([]byte(trimmed), &raw); err != nil || raw.Blocks == nil {
		return description
	}
	texts := make([]string, 0, len(raw.Blocks))
	for _, b := range raw.Blocks {
		texts = append(texts, b.Text)
	}
	return strings.Join(texts, " ")
}
