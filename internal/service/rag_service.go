package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"chatbot/internal/domain"
	"chatbot/internal/logger"
	"chatbot/internal/retrieval"
)

// NoMatchContext replaces the service list when retrieval finds nothing.
const NoMatchContext = "No relevant services were found. Let the user know and offer to list all available services."

const instructionTemplate = `You are a helpful assistant for a services marketplace. Answer the user's question using only the services listed below. For each service you recommend, mention its title, cost and link. Be concise and polite.

Services:
%s`

// minScore is the similarity at or below which a candidate counts as no match.
const minScore = 1e-9

// RAGService answers /service queries: it embeds the query, ranks the catalog,
// folds the best matches into a prompt and asks the generator once.
type RAGService struct {
	embedder  domain.Embedder
	catalog   domain.Catalog
	generator domain.Generator
	assembler retrieval.Assembler
	topK      int
}

func NewRAGService(embedder domain.Embedder, catalog domain.Catalog, generator domain.Generator, assembler retrieval.Assembler, topK int) *RAGService {
	return &RAGService{embedder: embedder, catalog: catalog, generator: generator, assembler: assembler, topK: topK}
}

// PrepareEmbedder fits the embedder to the plain descriptions of the current
// catalog. Remote embedders ignore the call.
func (s *RAGService) PrepareEmbedder(ctx context.Context) error {
	records, err := s.catalog.Services(ctx)
	if err != nil {
		return fmt.Errorf("load services: %w", err)
	}
	if len(records) == 0 {
		return nil
	}
	corpus := make([]string, len(records))
	for i, r := range records {
		corpus[i] = r.PlainDescription()
	}
	return s.embedder.Prepare(ctx, corpus)
}

// Query returns the catalog entries most similar to text, best first.
func (s *RAGService) Query(ctx context.Context, text string) ([]domain.ScoredCandidate, error) {
	log := logger.FromContext(ctx)

	records, err := s.catalog.Services(ctx)
	if err != nil {
		return nil, fmt.Errorf("load services: %w", err)
	}
	// an empty catalog leaves nothing to rank, and a local embedder has
	// nothing to prepare from
	if len(records) == 0 {
		log.Debug("catalog is empty")
		return []domain.ScoredCandidate{}, nil
	}

	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	// Detect zero vector (no known tokens)
	if isZero(vec) {
		log.Debug("query has no known terms", zap.String("query", text))
		return []domain.ScoredCandidate{}, nil
	}

	ranked, err := retrieval.Rank(vec, records, s.topK)
	if err != nil {
		return nil, err
	}
	allZero := true
	for _, c := range ranked {
		if c.Score > minScore {
			allZero = false
			break
		}
	}
	if allZero {
		return []domain.ScoredCandidate{}, nil
	}
	log.Debug("ranked services",
		zap.Int("catalog", len(records)),
		zap.Int("candidates", len(ranked)),
		zap.Float64("best", ranked[0].Score),
	)
	return ranked, nil
}

// BuildPrompt folds the assembled candidates into the instruction template,
// followed by the user's query.
func (s *RAGService) BuildPrompt(query string, candidates []domain.ScoredCandidate) []domain.Message {
	block := s.assembler.Assemble(candidates)
	if block == "" {
		block = NoMatchContext
	}
	return []domain.Message{
		{Role: domain.RoleSystem, Content: fmt.Sprintf(instructionTemplate, block)},
		{Role: domain.RoleUser, Content: query},
	}
}

// Answer runs the whole retrieval pipeline and returns the generated reply.
func (s *RAGService) Answer(ctx context.Context, query string) (string, error) {
	candidates, err := s.Query(ctx, query)
	if err != nil {
		return "", err
	}
	answer, err := s.generator.Complete(ctx, s.BuildPrompt(query, candidates))
	if err != nil {
		return "", fmt.Errorf("generate answer: %w", err)
	}
	return answer, nil
}

func isZero(v domain.Vector) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}
