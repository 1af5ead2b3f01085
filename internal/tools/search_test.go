package tools

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halvard/scout/internal/knowledge"
)

type stubResolver struct {
	answer knowledge.Answer

	gotQuery     string
	gotSentences int
}

func (s *stubResolver) Resolve(_ context.Context, query string, sentences int) knowledge.Answer {
	s.gotQuery = query
	s.gotSentences = sentences
	return s.answer
}

func TestSearchToolForwardsQuery(t *testing.T) {
	t.Parallel()

	resolver := &stubResolver{answer: knowledge.Answer{Text: "An answer."}}
	tool, err := NewSearchTool(resolver)
	require.NoError(t, err)

	got, err := tool.Run(context.Background(), map[string]any{"query": "gopher tortoise burrows"})
	require.NoError(t, err)

	assert.Equal(t, "An answer.", got)
	assert.Equal(t, "gopher tortoise burrows", resolver.gotQuery)
	assert.Equal(t, defaultSummarySentences, resolver.gotSentences)
}

func TestSearchToolSentencesHint(t *testing.T) {
	t.Parallel()

	resolver := &stubResolver{answer: knowledge.Answer{Text: "An answer."}}
	tool, err := NewSearchTool(resolver)
	require.NoError(t, err)

	// json.Unmarshal decodes numbers into float64.
	_, err = tool.Run(context.Background(), map[string]any{"query": "q", "sentences": float64(5)})
	require.NoError(t, err)

	assert.Equal(t, 5, resolver.gotSentences)
}

func TestSearchToolAppendsCitations(t *testing.T) {
	t.Parallel()

	resolver := &stubResolver{answer: knowledge.Answer{
		Text:      "An answer.",
		Citations: []string{"https://example.com/a", "https://example.com/b"},
	}}
	tool, err := NewSearchTool(resolver)
	require.NoError(t, err)

	got, err := tool.Run(context.Background(), map[string]any{"query": "q"})
	require.NoError(t, err)

	assert.Equal(t, "An answer.\n\nSources:\nhttps://example.com/a\nhttps://example.com/b", got)
}

func TestSearchToolMissingQuery(t *testing.T) {
	t.Parallel()

	tool, err := NewSearchTool(&stubResolver{})
	require.NoError(t, err)

	_, err = tool.Run(context.Background(), map[string]any{})
	assert.Error(t, err)
}
