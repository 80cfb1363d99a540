// Package catalog holds helpers shared by the service catalog backends.
package catalog

import (
	"encoding/json"
	"fmt"
	"time"

	"chatbot/internal/domain"
)

// Document is the stored form of a domain.ServiceRecord. Field names match
// the services collection of the web application.
type Document struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Cost        float64   `json:"cost"`
	Link        string    `json:"link"`
	ImgSrc      string    `json:"imgSrc,omitempty"`
	Embedding   []float64 `json:"embedding,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// FromRecord converts a record to its stored form.
func FromRecord(r domain.ServiceRecord) Document {
	return Document{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Cost:        r.Cost,
		Link:        r.Link,
		ImgSrc:      r.ImageURL,
		Embedding:   r.Embedding,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// Record converts a stored document back to a record.
func (d Document) Record() domain.ServiceRecord {
	return domain.ServiceRecord{
		ID:          d.ID,
		Title:       d.Title,
		Description: d.Description,
		Cost:        d.Cost,
		Link:        d.Link,
		ImageURL:    d.ImgSrc,
		Embedding:   d.Embedding,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

// EncodeEmbedding renders a vector as a JSON array. An empty vector encodes
// as the empty string so backends can store "no embedding" as blank.
func EncodeEmbedding(v domain.Vector) (string, error) {
	if len(v) == 0 {
		return "", nil
	}
	data, err := json.Marshal([]float64(v))
	if err != nil {
		return "", fmt.Errorf("encode embedding: %w", err)
	}
	return string(data), nil
}

// DecodeEmbedding parses the output of EncodeEmbedding.
func DecodeEmbedding(s string) (domain.Vector, error) {
	if s == "" {
		return nil, nil
	}
	var v []float64
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, fmt.Errorf("decode embedding: %w", err)
	}
	return v, nil
}

// Validate checks the fields every stored record needs.
func Validate(r domain.ServiceRecord) error {
	if r.ID == "" {
		return fmt.Errorf("service %q has no id", r.Title)
	}
	if r.Title == "" {
		return fmt.Errorf("service %s has no title", r.ID)
	}
	return nil
}

// Embedded keeps the records that carry an embedding, preserving order.
func Embedded(records []domain.ServiceRecord) []domain.ServiceRecord {
	out := make([]domain.ServiceRecord, 0, len(records))
	for _, r := range records {
		if r.HasEmbedding() {
			out = append(out, r)
		}
	}
	return out
}
