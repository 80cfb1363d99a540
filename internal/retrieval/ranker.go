package retrieval

import (
	"fmt"
	"sort"

	"chatbot/internal/domain"
)

// Rank scores every embedded candidate against query with Cosine and returns
// the topK best, highest first. Candidates without an embedding are not
// eligible and are skipped. Equal scores keep their input order.
func Rank(query domain.Vector, candidates []domain.ServiceRecord, topK int) ([]domain.ScoredCandidate, error) {
	if topK <= 0 || len(candidates) == 0 {
		return []domain.ScoredCandidate{}, nil
	}
	scored := make([]domain.ScoredCandidate, 0, len(candidates))
	for _, c := range candidates {
		if !c.HasEmbedding() {
			continue
		}
		s, err := Cosine(query, c.Embedding)
		if err != nil {
			return nil, fmt.Errorf("score %q: %w", c.Title, err)
		}
		scored = append(scored, domain.ScoredCandidate{Record: c, Score: s})
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if topK < len(scored) {
		scored = scored[:topK]
	}
	return scored, nil
}
