// Package catalog is the in-memory item collection backing the engine: it
// implements the content-layer, spatial-provider, and item-listing contracts
// the core consumes. In a full deployment the visualization layer owns item
// lifecycle; this implementation keeps the engine runnable and testable on
// its own.
package catalog

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/orbitdeck/orbitdeck/internal/models"
	"github.com/orbitdeck/orbitdeck/pkg/vec"
)

// ErrNotFound is returned when an item ID does not resolve.
var ErrNotFound = errors.New("item not found")

// ContentVersion is bumped whenever item content changes in ways that could
// affect relevance scoring.
type ContentVersion interface {
	Bump()
}

type entry struct {
	item  models.Item
	pos   vec.V3
	scale float64
}

// Catalog is a mutable, insertion-ordered item collection. Unlike the core
// state it may be mutated from outside the simulation goroutine (the content
// layer is a separate collaborator), so it carries its own lock.
type Catalog struct {
	mu      sync.RWMutex
	logger  *slog.Logger
	version ContentVersion

	order   []string
	entries map[string]*entry
}

// New creates an empty catalog. version may be nil when score invalidation
// is not wired (tests).
func New(version ContentVersion, logger *slog.Logger) *Catalog {
	return &Catalog{
		logger:  logger,
		version: version,
		entries: make(map[string]*entry),
	}
}

// Add inserts a new item at a position with a render scale.
func (c *Catalog) Add(item models.Item, pos vec.V3, scale float64) error {
	if item.ID == "" {
		return fmt.Errorf("add item: id is required")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[item.ID]; exists {
		return fmt.Errorf("add item: id %q already exists", item.ID)
	}
	c.entries[item.ID] = &entry{item: item, pos: pos, scale: scale}
	c.order = append(c.order, item.ID)
	c.bump()

	c.logger.Debug("item added", "id", item.ID, "title", item.Title)
	return nil
}

// Update replaces an item's metadata, keeping its position and scale.
func (c *Catalog) Update(item models.Item) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[item.ID]
	if !ok {
		return ErrNotFound
	}
	e.item = item
	c.bump()
	return nil
}

// Remove deletes an item.
func (c *Catalog) Remove(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[id]; !ok {
		return ErrNotFound
	}
	delete(c.entries, id)
	for i, v := range c.order {
		if v == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	c.bump()

	c.logger.Debug("item removed", "id", id)
	return nil
}

// Get returns an item by ID.
func (c *Catalog) Get(id string) (models.Item, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[id]
	if !ok {
		return models.Item{}, false
	}
	return e.item, true
}

// Items returns all items in insertion order.
func (c *Catalog) Items() []models.Item {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Item, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.entries[id].item)
	}
	return out
}

// ItemIDs returns all item IDs in insertion order.
func (c *Catalog) ItemIDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Count returns the number of items.
func (c *Catalog) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}

// Position implements the spatial-provider contract.
func (c *Catalog) Position(id string) (vec.V3, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[id]
	if !ok {
		return vec.Zero, false
	}
	return e.pos, true
}

// SetPosition moves an item. Position changes do not affect relevance
// scoring, so the content version is not bumped.
func (c *Catalog) SetPosition(id string, pos vec.V3) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[id]
	if !ok {
		return ErrNotFound
	}
	e.pos = pos
	return nil
}

// Scale implements the scale-provider contract.
func (c *Catalog) Scale(id string) (float64, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[id]
	if !ok {
		return 0, false
	}
	return e.scale, true
}

func (c *Catalog) bump() {
	if c.version != nil {
		c.version.Bump()
	}
}
