package knowledge

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryTerms(t *testing.T) {
	tests := []struct {
		query string
		want  []string
	}{
		{"What is quantum computing?", []string{"what", "quantum", "computing"}},
		{"Go 1.25 release", []string{"release"}},
		{"a an it", nil},
		{"AGE-related QUERIES", []string{"age", "related", "queries"}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := queryTerms(tt.query)
			if tt.want == nil {
				assert.Empty(t, got)
			} else {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestScorePassage(t *testing.T) {
	terms := queryTerms("quantum computing")

	t.Run("occurrences plus presence bonus", func(t *testing.T) {
		// "quantum" twice, "computing" once, both present as whole words.
		passage := "quantum computing uses quantum effects"
		score := scorePassage(terms, passage)
		assert.InDelta(t, 3+2*termPresenceBonus, score, 1e-9)
	})

	t.Run("substring counts without word bonus", func(t *testing.T) {
		// "computing" occurs inside "supercomputing" but not as a word.
		passage := "supercomputing centers process data"
		score := scorePassage(terms, passage)
		assert.InDelta(t, 1, score, 1e-9)
	})

	t.Run("no match scores zero", func(t *testing.T) {
		assert.Zero(t, scorePassage(terms, "entirely unrelated text"))
	})
}

func TestTopPassages(t *testing.T) {
	pad := strings.Repeat(" filler", 10) // keeps passages above the length floor

	t.Run("orders by score descending", func(t *testing.T) {
		docs := []string{
			"nothing relevant here at all" + pad + "\n" +
				"quantum computing quantum computing quantum computing" + pad,
			"one mention of quantum here" + pad,
		}

		got := TopPassages("quantum computing", docs, 3)
		require.Len(t, got, 3)
		assert.Contains(t, got[0], "quantum computing quantum computing")
	})

	t.Run("discards short paragraphs", func(t *testing.T) {
		docs := []string{"quantum\n" + "quantum computing explained in depth" + pad}
		got := TopPassages("quantum computing", docs, 5)
		require.Len(t, got, 1)
		assert.Contains(t, got[0], "explained in depth")
	})

	t.Run("deterministic across repeated calls", func(t *testing.T) {
		docs := []string{
			"alpha passage about quantum computing theory" + pad,
			"beta passage about quantum computing practice" + pad,
			"gamma passage about quantum computing history" + pad,
		}

		first := TopPassages("quantum computing", docs, 3)
		for i := 0; i < 10; i++ {
			assert.Equal(t, first, TopPassages("quantum computing", docs, 3))
		}
	})

	t.Run("stable tie-break keeps first-seen order", func(t *testing.T) {
		a := "identical score passage about quantum satellites" + pad
		b := "another equal score passage on quantum satellites" + pad
		got := TopPassages("quantum satellites", []string{a + "\n" + b}, 2)
		require.Len(t, got, 2)
		assert.Equal(t, a, got[0])
		assert.Equal(t, b, got[1])
	})

	t.Run("k larger than pool", func(t *testing.T) {
		docs := []string{"a single qualifying passage about quantum computing" + pad}
		got := TopPassages("quantum computing", docs, 6)
		assert.Len(t, got, 1)
	})
}
