package seed

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"chatbot/internal/domain"
	"chatbot/internal/logger"
)

// Seeder embeds service entries and inserts them into a catalog.
type Seeder struct {
	embedder domain.Embedder
	catalog  domain.Catalog
	out      io.Writer
	progress io.Writer
	now      func() time.Time
}

// Option configures a Seeder.
type Option func(*Seeder)

// WithProgress draws a progress bar on w while seeding.
func WithProgress(w io.Writer) Option {
	return func(s *Seeder) { s.progress = w }
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Seeder) { s.now = now }
}

// NewSeeder returns a Seeder reporting each inserted title on out.
func NewSeeder(embedder domain.Embedder, catalog domain.Catalog, out io.Writer, opts ...Option) *Seeder {
	s := &Seeder{embedder: embedder, catalog: catalog, out: out, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Seed embeds and inserts entries in order, stopping at the first failure.
func (s *Seeder) Seed(ctx context.Context, entries []Entry) error {
	log := logger.FromContext(ctx)
	if len(entries) == 0 {
		return fmt.Errorf("nothing to seed")
	}

	// TF-IDF vectors only compare within one vocabulary, so the catalog must
	// be embedded in one pass.
	if s.embedder.Name() == "tfidf" {
		existing, err := s.catalog.Services(ctx)
		if err != nil {
			return fmt.Errorf("load services: %w", err)
		}
		if len(existing) > 0 {
			return fmt.Errorf("catalog already holds %d services; tfidf embeddings must be seeded into an empty catalog", len(existing))
		}
	}

	texts := make([]string, len(entries))
	for i, e := range entries {
		texts[i] = domain.PlainText(e.Description)
	}
	if err := s.embedder.Prepare(ctx, texts); err != nil {
		return fmt.Errorf("prepare embedder: %w", err)
	}

	var bar *progressbar.ProgressBar
	if s.progress != nil {
		bar = progressbar.NewOptions(len(entries),
			progressbar.OptionSetWriter(s.progress),
			progressbar.OptionSetDescription("Seeding services"),
			progressbar.OptionSetWidth(32),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
	}

	for i, e := range entries {
		vec, err := s.embedder.Embed(ctx, texts[i])
		if err != nil {
			return fmt.Errorf("embed %q: %w", e.Title, err)
		}
		now := s.now().UTC()
		id := e.ID
		if id == "" {
			id = uuid.NewString()
		}
		rec := domain.ServiceRecord{
			ID:          id,
			Title:       e.Title,
			Description: e.Description,
			Cost:        e.Cost,
			Link:        e.Link,
			ImageURL:    e.ImgSrc,
			Embedding:   vec,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.catalog.Insert(ctx, rec); err != nil {
			return fmt.Errorf("insert %q: %w", e.Title, err)
		}
		log.Debug("seeded service", zap.String("id", id), zap.String("title", e.Title), zap.Int("dimension", len(vec)))
		if bar != nil {
			_ = bar.Add(1)
		}
		fmt.Fprintf(s.out, "Inserted: %s\n", e.Title)
	}
	if bar != nil {
		_ = bar.Finish()
	}
	fmt.Fprintln(s.out, "All test services inserted.")
	return nil
}
