package retrieval

import (
	"fmt"
	"math"

	"chatbot/internal/domain"
)

// Cosine returns dot(a,b) / (|a|*|b|). Vectors of different lengths fail with
// domain.ErrDimensionMismatch. If either vector has zero magnitude the
// similarity is 0, so a degenerate vector never yields NaN.
func Cosine(a, b domain.Vector) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d != %d", domain.ErrDimensionMismatch, len(a), len(b))
	}
	var dot, na, nb float64
	for i := range a {
		dot += a[i] * b[i]
		na += a[i] * a[i]
		nb += b[i] * b[i]
	}
	if na == 0 || nb == 0 {
		return 0, nil
	}
	s := dot / (math.Sqrt(na) * math.Sqrt(nb))
	// rounding can push |s| slightly past 1
	return math.Max(-1, math.Min(1, s)), nil
}
