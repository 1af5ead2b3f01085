package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/halvard/scout/internal/knowledge"
)

// defaultSummarySentences is how many encyclopedia summary sentences a
// lookup requests when the caller gives no hint.
const defaultSummarySentences = 3

// queryResolver is the slice of the knowledge resolver the search tool
// needs.
type queryResolver interface {
	Resolve(ctx context.Context, query string, sentences int) knowledge.Answer
}

// SearchTool answers a free-text query through the layered knowledge
// resolver and reports its source links after the answer text.
type SearchTool struct {
	resolver queryResolver
}

// NewSearchTool wires the tool to a resolver.
func NewSearchTool(resolver queryResolver) (*SearchTool, error) {
	if resolver == nil {
		return nil, fmt.Errorf("resolver is required")
	}
	return &SearchTool{resolver: resolver}, nil
}

func (*SearchTool) Name() string { return "search_web" }

func (s *SearchTool) Run(ctx context.Context, args map[string]any) (string, error) {
	query, _ := args["query"].(string)
	if query == "" {
		return "", fmt.Errorf("missing query argument")
	}

	sentences := defaultSummarySentences
	// Decoded JSON numbers arrive as float64.
	if n, ok := args["sentences"].(float64); ok && n > 0 {
		sentences = int(n)
	}

	answer := s.resolver.Resolve(ctx, query, sentences)

	if len(answer.Citations) == 0 {
		return answer.Text, nil
	}
	return answer.Text + "\n\nSources:\n" + strings.Join(answer.Citations, "\n"), nil
}
