// Package broadcast turns net state changes into typed outbound events. The
// broadcaster runs once per tick and emits nothing when nothing changed, so
// outbound traffic is O(events), not O(ticks).
package broadcast

import (
	"log/slog"
	"time"

	"github.com/orbitdeck/orbitdeck/internal/magnet"
	"github.com/orbitdeck/orbitdeck/internal/metrics"
	"github.com/orbitdeck/orbitdeck/internal/models"
	"github.com/orbitdeck/orbitdeck/internal/selection"
)

// EventType discriminates outbound notifications.
type EventType string

const (
	EventSelectionChanged EventType = "selection_changed"
	EventHighlightChanged EventType = "highlight_changed"
	EventMagnetsChanged   EventType = "magnets_changed"
)

// Event is one outbound state-change notification. Only the fields relevant
// to the event type are populated.
type Event struct {
	Type           EventType       `json:"type"`
	At             time.Time       `json:"at"`
	SelectedIDs    []string        `json:"selected_ids,omitempty"`
	HighlightedIDs []string        `json:"highlighted_ids,omitempty"`
	Magnets        []models.Magnet `json:"magnets,omitempty"`
}

// Transport is the external collaborator that fans events out to connected
// clients.
type Transport interface {
	Publish(Event)
}

// Broadcaster compares previous vs. current state once per tick and emits
// minimal change notifications.
type Broadcaster struct {
	sel       *selection.State
	reg       *magnet.Registry
	transport Transport
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// New creates a broadcaster over the given state and transport.
func New(sel *selection.State, reg *magnet.Registry, transport Transport, m *metrics.Metrics, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		sel:       sel,
		reg:       reg,
		transport: transport,
		logger:    logger,
		metrics:   m,
	}
}

// Flush emits one notification per changed aspect and clears the change
// flags. Called once per tick after all intents have been applied.
func (b *Broadcaster) Flush() {
	now := time.Now().UTC()

	selectionChanged, highlightChanged := b.sel.ConsumeChanged()
	if selectionChanged {
		b.emit(Event{
			Type:        EventSelectionChanged,
			At:          now,
			SelectedIDs: b.sel.SelectedIDs(),
		})
	}
	if highlightChanged {
		b.emit(Event{
			Type:           EventHighlightChanged,
			At:             now,
			HighlightedIDs: b.sel.HighlightedIDs(),
		})
	}
	if b.reg.ConsumeChanged() {
		b.emit(Event{
			Type:    EventMagnetsChanged,
			At:      now,
			Magnets: b.reg.All(),
		})
	}
}

func (b *Broadcaster) emit(e Event) {
	b.transport.Publish(e)
	b.metrics.EventsEmitted.WithLabelValues(string(e.Type)).Inc()
	b.logger.Debug("event emitted", "type", e.Type)
}
