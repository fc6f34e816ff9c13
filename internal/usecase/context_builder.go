package usecase

import (
	"unicode/utf8"

	"manuals-rag/internal/domain"
)

const (
	// MaxCharsPerChunk is the per-fragment budget, counted in runes.
	MaxCharsPerChunk = 2000
	// MaxTotalContext is the aggregate context budget, counted in runes.
	MaxTotalContext = 6000
	// TruncationMarker is appended to any fragment that was cut short.
	TruncationMarker = "... [texto truncado]"
)

// ContextBuilder selects and truncates retrieved passages into an ordered,
// bounded list of context fragments. It holds no mutable state and is safe
// for concurrent use.
type ContextBuilder struct {
	maxCharsPerChunk int
	maxTotalContext  int
}

// NewContextBuilder creates a builder with the production bounds.
func NewContextBuilder() ContextBuilder {
	return NewContextBuilderWithBounds(MaxCharsPerChunk, MaxTotalContext)
}

// NewContextBuilderWithBounds creates a builder with explicit bounds, in runes.
func NewContextBuilderWithBounds(maxCharsPerChunk, maxTotalContext int) ContextBuilder {
	return ContextBuilder{
		maxCharsPerChunk: maxCharsPerChunk,
		maxTotalContext:  maxTotalContext,
	}
}

// Build walks the passages in relevance order, skipping empty content,
// truncating oversized fragments, and accumulating until the total budget
// would be exceeded. The second return value is false only when no passage
// carried usable text.
//
// When the very first fragment alone would exceed the total budget it is
// hard-truncated to maxTotalContext rather than maxCharsPerChunk. Callers
// depend on that exact bound hierarchy, so it stays even though a first
// fragment under the per-chunk cap can land above it.
func (b ContextBuilder) Build(passages []domain.RetrievedPassage) ([]string, bool) {
	var chunks []string
	total := 0

	for _, p := range passages {
		if p.Content == "" {
			continue
		}

		content := p.Content
		if utf8.RuneCountInString(content) > b.maxCharsPerChunk {
			content = string([]rune(content)[:b.maxCharsPerChunk]) + TruncationMarker
		}

		size := utf8.RuneCountInString(content)
		if total+size > b.maxTotalContext {
			if len(chunks) > 0 {
				break
			}
			content = string([]rune(content)[:b.maxTotalContext]) + TruncationMarker
			chunks = append(chunks, content)
			break
		}

		chunks = append(chunks, content)
		total += size
	}

	return chunks, len(chunks) > 0
}
