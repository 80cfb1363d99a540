package retrieval

import (
	"fmt"
	"strconv"
	"strings"

	"chatbot/internal/domain"
)

// DefaultExcerptRunes caps the description excerpt of each context block.
const DefaultExcerptRunes = 100

const ellipsis = "..."

// Assembler renders ranked candidates into the context block handed to the
// generation step.
type Assembler struct {
	ExcerptRunes int
}

// NewAssembler returns an Assembler with the given excerpt cap, falling back
// to DefaultExcerptRunes for non-positive values.
func NewAssembler(excerptRunes int) Assembler {
	if excerptRunes <= 0 {
		excerptRunes = DefaultExcerptRunes
	}
	return Assembler{ExcerptRunes: excerptRunes}
}

// Assemble renders candidates with the default excerpt cap.
func Assemble(candidates []domain.ScoredCandidate) string {
	return NewAssembler(DefaultExcerptRunes).Assemble(candidates)
}

// Assemble renders one numbered block per candidate, separated by a blank
// line. An empty list yields an empty string; substituting a "no matches"
// message is up to the caller.
func (a Assembler) Assemble(candidates []domain.ScoredCandidate) string {
	if len(candidates) == 0 {
		return ""
	}
	blocks := make([]string, 0, len(candidates))
	for i, c := range candidates {
		r := c.Record
		var b strings.Builder
		fmt.Fprintf(&b, "%d. %s\n", i+1, r.Title)
		fmt.Fprintf(&b, "   Description: %s\n", excerpt(r.PlainDescription(), a.ExcerptRunes))
		fmt.Fprintf(&b, "   Cost: %s\n", strconv.FormatFloat(r.Cost, 'f', -1, 64))
		fmt.Fprintf(&b, "   Link: %s", r.Link)
		blocks = append(blocks, b.String())
	}
	return strings.Join(blocks, "\n\n")
}

func excerpt(text string, limit int) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if limit <= 0 || len(runes) <= limit {
		return text
	}
	return strings.TrimRight(string(runes[:limit]), " ") + ellipsis
}
