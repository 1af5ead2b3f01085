package knowledge

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halvard/scout/internal/log"
)

// articleHTML builds a page with enough body text for readability to
// treat it as an article.
func articleHTML() string {
	para := "Quantum computing is a type of computation that harnesses quantum mechanical phenomena. " +
		"Devices that perform quantum computations are known as quantum computers, and they are believed " +
		"to be able to solve certain problems faster than classical machines."
	var b strings.Builder
	b.WriteString("<html><head><title>Quantum computing</title></head><body><article>")
	for i := 0; i < 5; i++ {
		fmt.Fprintf(&b, "<p>%s (section %d)</p>", para, i)
	}
	b.WriteString("</article></body></html>")
	return b.String()
}

func TestExtractor_ReadabilityPath(t *testing.T) {
	e := NewExtractor(log.NewNop())

	text := e.Text(articleHTML(), "https://example.com/quantum")
	require.NotEmpty(t, text)
	assert.Greater(t, len(text), minArticleChars)
	assert.Contains(t, text, "quantum mechanical phenomena")
}

func TestExtractor_ParagraphFallback(t *testing.T) {
	e := NewExtractor(log.NewNop())

	// Long enough for the paragraph floor, short enough in total that the
	// readability result stays under the article threshold.
	long := strings.Repeat("meaningful sentence content ", 3)
	html := "<html><body>" +
		"<p>short</p>" +
		"<p>" + long + "</p>" +
		"<p>also short</p>" +
		"<p>" + long + "</p>" +
		"</body></html>"

	text := e.Text(html, "https://example.com/sparse")
	require.NotEmpty(t, text)

	lines := strings.Split(text, "\n")
	assert.Len(t, lines, 2)
	for _, line := range lines {
		assert.Greater(t, len(line), minParagraphChars)
	}
}

func TestExtractor_FallbackCapsParagraphs(t *testing.T) {
	e := NewExtractor(log.NewNop())

	long := strings.Repeat("repeated block of fallback text ", 4)
	var b strings.Builder
	b.WriteString("<html><body>")
	for i := 0; i < 10; i++ {
		fmt.Fprintf(&b, "<p>%s #%d</p>", long, i)
	}
	b.WriteString("</body></html>")

	text := e.paragraphFallback(b.String(), "https://example.com/many")
	assert.Len(t, strings.Split(text, "\n"), maxFallbackParagraphs)
}

func TestExtractor_NothingUsable(t *testing.T) {
	e := NewExtractor(log.NewNop())

	assert.Empty(t, e.Text("<html><body><p>tiny</p></body></html>", "https://example.com/empty"))
	assert.Empty(t, e.Text("", "https://example.com/blank"))
}
