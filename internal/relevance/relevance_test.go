package relevance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbitdeck/orbitdeck/internal/models"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "whitespace split and lowercase",
			input:    "Dune  Messiah",
			expected: []string{"dune", "messiah"},
		},
		{
			name:     "punctuation split",
			input:    "sci-fi: classics, (annotated)",
			expected: []string{"sci", "fi", "classics", "annotated"},
		},
		{
			name:     "empty input",
			input:    "",
			expected: nil,
		},
		{
			name:     "only punctuation",
			input:    "...!!!",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.input)
			if tt.expected == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestItemTokensCombinesAllFields(t *testing.T) {
	item := models.Item{
		Title:       "Dune",
		Description: "Desert planet",
		Creator:     "Frank Herbert",
		Subjects:    []string{"science fiction", "ecology"},
	}
	tokens := ItemTokens(item)
	assert.ElementsMatch(t,
		[]string{"dune", "desert", "planet", "frank", "herbert", "science", "fiction", "ecology"},
		tokens)
}

func TestScoreEmptyQuery(t *testing.T) {
	item := models.Item{Title: "Dune"}
	assert.Equal(t, 0.0, Score(item, nil))
	assert.Equal(t, 0.0, Score(item, []string{}))
}

func TestScoreEmptyItem(t *testing.T) {
	assert.Equal(t, 0.0, Score(models.Item{}, []string{"dune"}))
}

func TestScoreExactSubstring(t *testing.T) {
	item := models.Item{Title: "dune"}
	assert.Equal(t, 1.0, Score(item, []string{"dune"}))

	// Query token contained in a longer item token also scores 1.0.
	longer := models.Item{Title: "dunes"}
	assert.Equal(t, 1.0, Score(longer, []string{"dune"}))
}

func TestScoreReverseSubstring(t *testing.T) {
	// Item token contained in the query token scores 0.8.
	item := models.Item{Title: "dune"}
	assert.InDelta(t, 0.8, Score(item, []string{"dunes"}), 1e-9)
}

func TestScoreFuzzyTypo(t *testing.T) {
	item := models.Item{Title: "messiah"}

	// "messaih" vs "messiah": edit distance 2 (one transposition counted as
	// two single edits), similarity 1 - 2/7.
	score := Score(item, []string{"messaih"})
	sim := 1.0 - 2.0/7.0

	require.Greater(t, score, 0.0)
	assert.InDelta(t, sim*0.6, score, 1e-9)
	assert.Less(t, score, 0.6)
	assert.Less(t, score, Score(item, []string{"messiah"}))
}

func TestScoreBelowFuzzyThresholdContributesNothing(t *testing.T) {
	item := models.Item{Title: "dune"}
	assert.Equal(t, 0.0, Score(item, []string{"zzzzzz"}))
}

func TestScoreAveragesPerQueryToken(t *testing.T) {
	item := models.Item{Title: "dune", Creator: "herbert"}

	// One exact hit, one total miss: (1.0 + 0.0) / 2.
	score := Score(item, []string{"dune", "qqqqqq"})
	assert.InDelta(t, 0.5, score, 1e-9)
}

func TestScoreBestMatchPerToken(t *testing.T) {
	// The query token matches several item tokens; only the best counts.
	item := models.Item{Title: "dune", Description: "duneland dunes"}
	assert.Equal(t, 1.0, Score(item, []string{"dune"}))
}

func TestEditDistance(t *testing.T) {
	tests := []struct {
		a, b     string
		expected int
	}{
		{"", "", 0},
		{"a", "", 1},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"dune", "dune", 0},
		{"dune", "dane", 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, editDistance([]rune(tt.a), []rune(tt.b)), "%q vs %q", tt.a, tt.b)
	}
}

func TestScoreTokensRange(t *testing.T) {
	itemTokens := []string{"dune", "desert", "planet"}
	queries := [][]string{
		{"dune"},
		{"dune", "desert"},
		{"dane", "dessert", "planets"},
		{"unrelated", "words"},
	}
	for _, q := range queries {
		s := ScoreTokens(itemTokens, q)
		assert.GreaterOrEqual(t, s, 0.0)
		assert.LessOrEqual(t, s, 1.0)
	}
}
