// Package nav computes "move the focus in this direction" jumps across the
// spatially arranged collection. Two variants exist: a free-form pie-slice
// search over actual layout positions, and a strict-grid walk over item
// indices. Both return "" rather than an error when no destination exists;
// callers treat that as "stay put."
package nav

import (
	"log/slog"
	"math"

	"github.com/orbitdeck/orbitdeck/pkg/vec"
)

// Direction is a cardinal move request. North maps to the positive forward
// axis of the layout plane (Z), east to the positive side axis (X).
type Direction string

const (
	North Direction = "north"
	South Direction = "south"
	East  Direction = "east"
	West  Direction = "west"
)

// ParseDirection validates a direction string from an untrusted intent.
func ParseDirection(s string) (Direction, bool) {
	switch Direction(s) {
	case North, South, East, West:
		return Direction(s), true
	}
	return "", false
}

// Space provides read access to the external spatial layer: where an item
// currently sits and how big it is rendered.
type Space interface {
	// Position returns the item's current position, or false when the ID
	// no longer resolves.
	Position(itemID string) (vec.V3, bool)

	// Scale returns the item's render scale, or false when unknown.
	Scale(itemID string) (float64, bool)
}

// Lister enumerates the collection in its stable display order. The grid
// variant derives row/column indices from this order.
type Lister interface {
	ItemIDs() []string
}

// Navigator computes directional focus moves.
type Navigator struct {
	space  Space
	items  Lister
	logger *slog.Logger

	// scaleThreshold partitions free-form candidates into "big enough to
	// jump to" and everything else. Runtime tunable.
	scaleThreshold float64
}

// New creates a navigator over the given spatial and item providers.
func New(space Space, items Lister, scaleThreshold float64, logger *slog.Logger) *Navigator {
	return &Navigator{
		space:          space,
		items:          items,
		scaleThreshold: scaleThreshold,
		logger:         logger,
	}
}

// SetScaleThreshold adjusts the "big enough" partition boundary.
func (n *Navigator) SetScaleThreshold(v float64) { n.scaleThreshold = v }

// ScaleThreshold returns the current partition boundary.
func (n *Navigator) ScaleThreshold() float64 { return n.scaleThreshold }

// nearZero guards offset and drag-vector degeneracy.
const nearZero = 1e-6

// NextFreeForm returns the item to move focus to from currentID in the given
// direction, using layout positions. dragX/dragY are an optional gesture
// hint in plane coordinates (side, forward); pass zeros when absent. Returns
// "" when there is no candidate in the direction's pie slice.
func (n *Navigator) NextFreeForm(currentID string, dir Direction, dragX, dragY float64) string {
	origin, ok := n.space.Position(currentID)
	if !ok {
		return ""
	}

	// Candidates in the requested slice, partitioned by render scale.
	var big, small []candidate
	for _, id := range n.items.ItemIDs() {
		if id == currentID {
			continue
		}
		pos, ok := n.space.Position(id)
		if !ok {
			continue
		}

		// Planar offset; the vertical layout axis is ignored.
		side := pos.X - origin.X
		forward := pos.Z - origin.Z
		if math.Abs(side) < nearZero && math.Abs(forward) < nearZero {
			continue
		}
		if !inSlice(dir, side, forward) {
			continue
		}

		c := candidate{id: id, side: side, forward: forward}
		if scale, ok := n.space.Scale(id); ok && scale >= n.scaleThreshold {
			big = append(big, c)
		} else {
			small = append(small, c)
		}
	}

	// Prefer big items, but accept a small one if nothing big lies in that
	// direction.
	pool := big
	if len(pool) == 0 {
		pool = small
	}
	if len(pool) == 0 {
		return ""
	}

	useDrag := math.Hypot(dragX, dragY) > nearZero

	bestID := ""
	bestScore := math.Inf(1)
	for _, c := range pool {
		score := math.Hypot(c.side, c.forward)
		if useDrag {
			// Bias toward whatever the continuous gesture actually
			// points at; distance stays the dominant factor.
			mis := angleBetweenDeg(dragX, dragY, c.side, c.forward)
			score *= 0.5 + mis/180
		}
		if score < bestScore {
			bestScore = score
			bestID = c.id
		}
	}

	n.logger.Debug("free-form move", "from", currentID, "direction", dir, "to", bestID)
	return bestID
}

// NextGrid returns the item to move focus to from currentID in the given
// direction, treating the collection as a square-ish grid in display order.
// Returns "" when the move would leave the grid or land past the final item.
func (n *Navigator) NextGrid(currentID string, dir Direction) string {
	ids := n.items.ItemIDs()
	count := len(ids)
	if count == 0 {
		return ""
	}

	index := -1
	for i, id := range ids {
		if id == currentID {
			index = i
			break
		}
	}
	if index < 0 {
		return ""
	}

	columns := int(math.Ceil(math.Sqrt(float64(count))))
	rows := (count + columns - 1) / columns
	row, col := index/columns, index%columns

	switch dir {
	case North:
		row--
	case South:
		row++
	case East:
		col++
	case West:
		col--
	}

	// No wraparound; the last row may be short.
	if row < 0 || row >= rows || col < 0 || col >= columns {
		return ""
	}
	next := row*columns + col
	if next >= count || next == index {
		return ""
	}

	n.logger.Debug("grid move", "from", currentID, "direction", dir, "to", ids[next])
	return ids[next]
}

type candidate struct {
	id            string
	side, forward float64
}

// inSlice reports whether a planar offset falls in the direction's pie
// slice: the offset's dominant axis must match the direction, with the
// matching sign. This is a strict half-diagonal partition, not a narrow
// cone — everything closer to "straight ahead" than "off to the side"
// qualifies.
func inSlice(dir Direction, side, forward float64) bool {
	switch dir {
	case North:
		return forward > 0 && forward > math.Abs(side)
	case South:
		return forward < 0 && -forward > math.Abs(side)
	case East:
		return side > 0 && side > math.Abs(forward)
	case West:
		return side < 0 && -side > math.Abs(forward)
	}
	return false
}

// angleBetweenDeg returns the absolute angle between two planar vectors in
// degrees, in [0, 180].
func angleBetweenDeg(ax, ay, bx, by float64) float64 {
	la := math.Hypot(ax, ay)
	lb := math.Hypot(bx, by)
	if la < nearZero || lb < nearZero {
		return 0
	}
	cos := (ax*bx + ay*by) / (la * lb)
	cos = math.Max(-1, math.Min(1, cos))
	return math.Acos(cos) * 180 / math.Pi
}
