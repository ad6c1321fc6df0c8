package models

import (
	"github.com/orbitdeck/orbitdeck/pkg/vec"
)

// SearchType selects the matching algorithm a magnet uses against item text.
type SearchType string

const (
	// SearchTypeFuzzy is token-based matching with substring and
	// edit-distance fallbacks. Currently the only defined type.
	SearchTypeFuzzy SearchType = "fuzzy"
)

// IsValid returns true if the search type is recognized.
func (st SearchType) IsValid() bool {
	return st == SearchTypeFuzzy
}

// Magnet is a named attractor placed in the shared space. Every enabled
// magnet pulls eligible items toward it on each simulation tick.
type Magnet struct {
	ID               string     `json:"id"`
	Title            string     `json:"title"`
	SearchExpression string     `json:"search_expression"`
	SearchType       SearchType `json:"search_type"`
	Enabled          bool       `json:"enabled"`

	// Field parameters. All non-negative.
	Strength   float64 `json:"strength"`
	Radius     float64 `json:"radius"`
	Softness   float64 `json:"softness"`
	HoleRadius float64 `json:"hole_radius"`

	// Relevance window: an item participates only when its score against
	// the search expression falls inside [ScoreMin, ScoreMax].
	ScoreMin float64 `json:"score_min"`
	ScoreMax float64 `json:"score_max"`

	Position vec.V3 `json:"position"`

	// QueryTokens is the tokenized search expression, maintained by the
	// registry whenever SearchExpression changes.
	QueryTokens []string `json:"-"`
}
