package magnet

import (
	"log/slog"

	"github.com/orbitdeck/orbitdeck/internal/metrics"
	"github.com/orbitdeck/orbitdeck/internal/models"
	"github.com/orbitdeck/orbitdeck/pkg/vec"
)

// ItemSource enumerates the items currently in the collection.
type ItemSource interface {
	Items() []models.Item
}

// PositionProvider resolves item positions from the external spatial layer.
type PositionProvider interface {
	Position(itemID string) (vec.V3, bool)
}

// Integrator is the external physics collaborator. It owns actual position
// updates; the core only hands it aggregate forces.
type Integrator interface {
	ApplyForce(itemID string, force vec.V3)
}

// Field computes the aggregate magnet force on every item, once per
// simulation tick.
type Field struct {
	registry   *Registry
	items      ItemSource
	space      PositionProvider
	integrator Integrator
	logger     *slog.Logger
	metrics    *metrics.Metrics

	// minDistance suppresses force inside a tiny radius around the magnet
	// center, avoiding divide-by-near-zero jitter.
	minDistance float64

	// padding widens the broad-phase cull radius so items just outside a
	// magnet's reach are not flickering in and out of consideration.
	padding float64

	// maxForce clamps the per-item aggregate so a pathological stack of
	// overlapping magnets cannot destabilize the simulation.
	maxForce float64
}

// NewField creates a force field over the given registry and collaborators.
func NewField(registry *Registry, items ItemSource, space PositionProvider, integrator Integrator, minDistance, padding, maxForce float64, m *metrics.Metrics, logger *slog.Logger) *Field {
	return &Field{
		registry:    registry,
		items:       items,
		space:       space,
		integrator:  integrator,
		logger:      logger,
		metrics:     m,
		minDistance: minDistance,
		padding:     padding,
		maxForce:    maxForce,
	}
}

// SetMaxForce adjusts the aggregate force ceiling.
func (f *Field) SetMaxForce(v float64) { f.maxForce = v }

// MaxForce returns the aggregate force ceiling.
func (f *Field) MaxForce() float64 { return f.maxForce }

// SetPadding adjusts the broad-phase cull padding.
func (f *Field) SetPadding(v float64) { f.padding = v }

// Padding returns the broad-phase cull padding.
func (f *Field) Padding() float64 { return f.padding }

// Force computes one magnet's pull on one item at the given position. It
// returns the zero vector when the magnet is disabled, the item is outside
// the relevance window, or the item sits outside the field's reach.
func (f *Field) Force(m *models.Magnet, item models.Item, itemPos vec.V3) vec.V3 {
	if !m.Enabled {
		return vec.Zero
	}

	score := f.registry.ItemScore(m, item)
	if score < m.ScoreMin || score > m.ScoreMax {
		return vec.Zero
	}

	toMagnet := m.Position.Sub(itemPos)
	distance := toMagnet.Len()
	if distance < f.minDistance || distance >= m.Radius {
		return vec.Zero
	}
	// Inside the hole the item is considered captured and rests.
	if distance < m.HoleRadius {
		return vec.Zero
	}

	// softness=0 is a hard step to full strength anywhere inside the
	// radius; softness=1 ramps linearly to zero at the edge.
	falloff := 1 - (distance/m.Radius)*m.Softness
	magnitude := m.Strength * falloff * score

	return toMagnet.Scale(magnitude / distance)
}

// Tick aggregates, for every item, the force contributed by all magnets and
// hands the clamped sum to the integrator.
func (f *Field) Tick() {
	if f.registry.Count() == 0 {
		return
	}
	magnets := f.registry.magnets

	for _, item := range f.items.Items() {
		pos, ok := f.space.Position(item.ID)
		if !ok {
			continue
		}

		total := vec.Zero
		for _, m := range magnets {
			if !m.Enabled {
				continue
			}
			// Broad-phase cull: skip obviously-out-of-range pairs
			// before paying for a relevance score.
			reach := m.Radius + f.padding
			if m.Position.Sub(pos).LenSq() > reach*reach {
				continue
			}
			total = total.Add(f.Force(m, item, pos))
		}

		if total == vec.Zero {
			continue
		}
		f.integrator.ApplyForce(item.ID, total.ClampLen(f.maxForce))
		f.metrics.ForceApplications.Inc()
	}
}
