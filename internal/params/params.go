// Package params is the explicit schema of runtime-tunable numeric
// parameters. Each entry maps a name to its category, bounds, description,
// and a setter that pushes the new value to the owning component. The table
// is hand-maintained for the closed, known parameter set — no reflection.
package params

import (
	"fmt"
	"sort"
	"sync"
)

// Descriptor is the introspection record for one tunable parameter,
// consumed by dynamic adjustment UIs.
type Descriptor struct {
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Min         float64 `json:"min"`
	Max         float64 `json:"max"`
}

// Value is a descriptor together with the parameter's current value.
type Value struct {
	Descriptor
	Current float64 `json:"current"`
}

type binding struct {
	desc    Descriptor
	current float64
	apply   func(float64)
}

// Set holds the registered parameters. Reads may come from the API
// goroutine while writes arrive through intents on the simulation
// goroutine, so access is locked.
type Set struct {
	mu       sync.RWMutex
	ordered  []string
	bindings map[string]*binding
}

// NewSet creates an empty parameter set.
func NewSet() *Set {
	return &Set{bindings: make(map[string]*binding)}
}

// Register adds a parameter with its initial value and the setter invoked on
// every accepted change. Registering a duplicate name panics: the table is
// assembled once at wiring time and a collision is a programming error.
func (s *Set) Register(desc Descriptor, initial float64, apply func(float64)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.bindings[desc.Name]; exists {
		panic(fmt.Sprintf("params: duplicate parameter %q", desc.Name))
	}
	s.ordered = append(s.ordered, desc.Name)
	s.bindings[desc.Name] = &binding{desc: desc, current: initial, apply: apply}
}

// Apply sets a parameter to value, clamped to the descriptor bounds, and
// pushes it to the owning component. Unknown names return an error.
func (s *Set) Apply(name string, value float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bindings[name]
	if !ok {
		return fmt.Errorf("params: unknown parameter %q", name)
	}

	if value < b.desc.Min {
		value = b.desc.Min
	}
	if value > b.desc.Max {
		value = b.desc.Max
	}

	b.current = value
	if b.apply != nil {
		b.apply(value)
	}
	return nil
}

// Get returns a parameter's current value.
func (s *Set) Get(name string) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bindings[name]
	if !ok {
		return 0, false
	}
	return b.current, true
}

// Snapshot returns every parameter with its current value, grouped by
// category and ordered by name within each.
func (s *Set) Snapshot() []Value {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Value, 0, len(s.ordered))
	for _, name := range s.ordered {
		b := s.bindings[name]
		out = append(out, Value{Descriptor: b.desc, Current: b.current})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].Name < out[j].Name
	})
	return out
}
