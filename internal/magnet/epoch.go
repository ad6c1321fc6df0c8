package magnet

import "sync/atomic"

// Epoch is a process-wide monotonic counter used to invalidate every cached
// relevance score at once. Item content changes bump it; cache entries tagged
// with an older epoch are recomputed lazily on next access. This avoids a
// full-cache sweep on every content change at the cost of one integer
// comparison per lookup.
type Epoch struct {
	v atomic.Uint64
}

// Bump invalidates all cached scores system-wide in O(1).
func (e *Epoch) Bump() { e.v.Add(1) }

// Current returns the current epoch value.
func (e *Epoch) Current() uint64 { return e.v.Load() }
