// Package relevance scores free-text queries against item text. Scoring is a
// pure function of (item text, query tokens) so results can be cached per
// (magnet, item) pair and invalidated wholesale.
package relevance

import (
	"strings"

	"github.com/orbitdeck/orbitdeck/internal/models"
)

const (
	// exactMatchScore is awarded when an item token contains the query token.
	exactMatchScore = 1.0

	// reverseMatchScore is awarded when the query token contains the item
	// token. Weighted lower because short item tokens over-match inside
	// longer query tokens.
	reverseMatchScore = 0.8

	// fuzzyThreshold is the minimum normalized similarity for an
	// edit-distance match to count at all.
	fuzzyThreshold = 0.6

	// fuzzyWeight caps fuzzy matches below any substring match.
	fuzzyWeight = 0.6
)

// tokenSeparators is the fixed punctuation set tokens are split on, in
// addition to whitespace.
const tokenSeparators = ".,;:!?'\"()[]{}<>/\\|-_+=*&^%$#@~`"

// Tokenize lowercases text and splits it on whitespace and punctuation,
// dropping empty tokens.
func Tokenize(text string) []string {
	lower := strings.ToLower(text)
	return strings.FieldsFunc(lower, func(r rune) bool {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			return true
		}
		return strings.ContainsRune(tokenSeparators, r)
	})
}

// ItemTokens builds the searchable token set for an item: title, description,
// creator, and each subject, independently tokenized and concatenated.
func ItemTokens(item models.Item) []string {
	tokens := Tokenize(item.Title)
	tokens = append(tokens, Tokenize(item.Description)...)
	tokens = append(tokens, Tokenize(item.Creator)...)
	for _, subject := range item.Subjects {
		tokens = append(tokens, Tokenize(subject)...)
	}
	return tokens
}

// Score rates how well queryTokens match an item's text. The result is in
// [0, 1]; an empty query or an item with no text scores 0.
func Score(item models.Item, queryTokens []string) float64 {
	return ScoreTokens(ItemTokens(item), queryTokens)
}

// ScoreTokens rates queryTokens against a prebuilt item token set. Each query
// token contributes its single best match across all item tokens; the sum is
// normalized by the query token count.
func ScoreTokens(itemTokens, queryTokens []string) float64 {
	if len(queryTokens) == 0 || len(itemTokens) == 0 {
		return 0
	}

	total := 0.0
	for _, q := range queryTokens {
		best := 0.0
		for _, t := range itemTokens {
			s := matchScore(t, q)
			if s > best {
				best = s
			}
			if best >= exactMatchScore {
				break
			}
		}
		total += best
	}
	return total / float64(len(queryTokens))
}

// matchScore rates a single (item token, query token) pair.
func matchScore(itemToken, queryToken string) float64 {
	if strings.Contains(itemToken, queryToken) {
		return exactMatchScore
	}
	if strings.Contains(queryToken, itemToken) {
		return reverseMatchScore
	}

	sim := similarity(itemToken, queryToken)
	if sim > fuzzyThreshold {
		return sim * fuzzyWeight
	}
	return 0
}

// similarity is normalized Levenshtein similarity:
// 1 - editDistance/max(len(a), len(b)).
func similarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	longest := max(len(ra), len(rb))
	if longest == 0 {
		return 1
	}
	return 1 - float64(editDistance(ra, rb))/float64(longest)
}

// editDistance computes Levenshtein distance with a two-row table.
func editDistance(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
