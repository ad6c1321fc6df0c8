// Package sim runs the single-threaded simulation loop. All shared state is
// owned by the loop goroutine; remote clients talk to it only through the
// intent queue, and readers only through immutable published snapshots.
package sim

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/orbitdeck/orbitdeck/internal/broadcast"
	"github.com/orbitdeck/orbitdeck/internal/intent"
	"github.com/orbitdeck/orbitdeck/internal/magnet"
	"github.com/orbitdeck/orbitdeck/internal/metrics"
	"github.com/orbitdeck/orbitdeck/internal/models"
	"github.com/orbitdeck/orbitdeck/internal/selection"
)

// Snapshot is an immutable view of the shared state after a tick. Safe to
// read from any goroutine.
type Snapshot struct {
	Tick           uint64          `json:"tick"`
	At             time.Time       `json:"at"`
	SelectedIDs    []string        `json:"selected_ids"`
	HighlightedIDs []string        `json:"highlighted_ids"`
	Magnets        []models.Magnet `json:"magnets"`
}

// Loop drives the tick cycle: drain queued intents, run the force field,
// broadcast changes, publish a snapshot.
type Loop struct {
	sel     *selection.State
	reg     *magnet.Registry
	router  *intent.Router
	field   *magnet.Field
	bcast   *broadcast.Broadcaster
	logger  *slog.Logger
	metrics *metrics.Metrics

	interval time.Duration
	intents  chan intent.Intent

	tick     uint64
	snapshot atomic.Pointer[Snapshot]
}

// NewLoop creates a loop ticking at the given interval with a bounded intent
// queue.
func NewLoop(sel *selection.State, reg *magnet.Registry, router *intent.Router, field *magnet.Field, bcast *broadcast.Broadcaster, interval time.Duration, queueSize int, m *metrics.Metrics, logger *slog.Logger) *Loop {
	if queueSize <= 0 {
		queueSize = 1024
	}
	l := &Loop{
		sel:      sel,
		reg:      reg,
		router:   router,
		field:    field,
		bcast:    bcast,
		logger:   logger,
		metrics:  m,
		interval: interval,
		intents:  make(chan intent.Intent, queueSize),
	}
	l.snapshot.Store(&Snapshot{At: time.Now().UTC()})
	return l
}

// Enqueue hands an intent to the loop without blocking. It returns false when
// the queue is full; callers surface that as backpressure.
func (l *Loop) Enqueue(in intent.Intent) bool {
	select {
	case l.intents <- in:
		return true
	default:
		l.metrics.IntentsDropped.WithLabelValues("queue_full").Inc()
		l.logger.Warn("intent queue full", "action", in.Action, "client_id", in.ClientID)
		return false
	}
}

// Snapshot returns the most recently published state view.
func (l *Loop) Snapshot() *Snapshot {
	return l.snapshot.Load()
}

// Run ticks until the context is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	l.logger.Info("simulation loop started", "interval", l.interval)
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			l.logger.Info("simulation loop stopped", "ticks", l.tick)
			return ctx.Err()
		case <-ticker.C:
			l.Step()
		}
	}
}

// Step runs exactly one tick: apply queued intents in arrival order, advance
// the force field, flush change events, publish a fresh snapshot.
func (l *Loop) Step() {
	start := time.Now()

	l.drain()
	l.field.Tick()
	l.bcast.Flush()

	l.tick++
	l.snapshot.Store(&Snapshot{
		Tick:           l.tick,
		At:             time.Now().UTC(),
		SelectedIDs:    l.sel.SelectedIDs(),
		HighlightedIDs: l.sel.HighlightedIDs(),
		Magnets:        l.reg.All(),
	})

	l.metrics.TickDuration.Observe(time.Since(start).Seconds())
}

// drain routes every intent queued before this tick. Intents arriving while
// draining wait for the next tick, which bounds tick time under load.
func (l *Loop) drain() {
	pending := len(l.intents)
	for i := 0; i < pending; i++ {
		l.router.Route(<-l.intents)
	}
}
