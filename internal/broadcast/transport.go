package broadcast

import (
	"log/slog"
	"sync"
)

// LogTransport writes events to the structured log. Useful standalone and as
// a debugging tap alongside a real transport.
type LogTransport struct {
	logger *slog.Logger
}

// NewLogTransport creates a transport that logs every event.
func NewLogTransport(logger *slog.Logger) *LogTransport {
	return &LogTransport{logger: logger}
}

// Publish implements Transport.
func (t *LogTransport) Publish(e Event) {
	t.logger.Info("state changed",
		"type", e.Type,
		"selected", len(e.SelectedIDs),
		"highlighted", len(e.HighlightedIDs),
		"magnets", len(e.Magnets))
}

// Buffer is a bounded in-memory transport. Events accumulate until drained;
// when the buffer is full the oldest events are discarded first, since a
// late reader only cares about recent state.
type Buffer struct {
	mu      sync.Mutex
	events  []Event
	maxSize int
	dropped int
}

// NewBuffer creates a buffer holding at most maxSize pending events.
func NewBuffer(maxSize int) *Buffer {
	if maxSize <= 0 {
		maxSize = 256
	}
	return &Buffer{maxSize: maxSize}
}

// Publish implements Transport.
func (b *Buffer) Publish(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.events) >= b.maxSize {
		b.events = b.events[1:]
		b.dropped++
	}
	b.events = append(b.events, e)
}

// Drain returns all pending events and clears the buffer.
func (b *Buffer) Drain() []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.events
	b.events = nil
	return out
}

// Dropped returns how many events were discarded due to overflow.
func (b *Buffer) Dropped() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}

// Fanout publishes each event to every wrapped transport in order.
type Fanout []Transport

// Publish implements Transport.
func (f Fanout) Publish(e Event) {
	for _, t := range f {
		t.Publish(e)
	}
}
