// Package magnet owns the set of active magnets and the force field they
// exert over the item collection. Relevance scores are cached per
// (magnet, item) pair and invalidated by a global epoch counter.
package magnet

import (
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/google/uuid"
	cache "github.com/patrickmn/go-cache"

	"github.com/orbitdeck/orbitdeck/internal/metrics"
	"github.com/orbitdeck/orbitdeck/internal/models"
	"github.com/orbitdeck/orbitdeck/internal/relevance"
	"github.com/orbitdeck/orbitdeck/pkg/vec"
)

// ErrNotFound is returned when a magnet ID does not resolve.
var ErrNotFound = errors.New("magnet not found")

// Defaults are the field parameters applied to newly created magnets when
// the creating intent leaves them unset.
type Defaults struct {
	Strength   float64
	Radius     float64
	Softness   float64
	HoleRadius float64
	ScoreMin   float64
	ScoreMax   float64
}

// CreateParams describes a magnet-creation request. Numeric fields are
// pointers so unset values fall back to the registry defaults.
type CreateParams struct {
	ID               string
	Title            string
	SearchExpression string
	SearchType       models.SearchType
	Position         vec.V3

	Enabled    *bool
	Strength   *float64
	Radius     *float64
	Softness   *float64
	HoleRadius *float64
	ScoreMin   *float64
	ScoreMax   *float64
}

// Update describes a partial magnet mutation; nil fields are left unchanged.
type Update struct {
	Title            *string
	SearchExpression *string
	Enabled          *bool
	Strength         *float64
	Radius           *float64
	Softness         *float64
	HoleRadius       *float64
	ScoreMin         *float64
	ScoreMax         *float64
	Position         *vec.V3
}

// Registry is the authoritative set of active magnets. It is owned by the
// simulation goroutine; no internal locking.
type Registry struct {
	logger   *slog.Logger
	metrics  *metrics.Metrics
	epoch    *Epoch
	defaults Defaults

	magnets []*models.Magnet
	byID    map[string]*models.Magnet

	// scores holds one epoch-tagged score cache per magnet, keyed by item
	// ID. A magnet's cache is flushed wholesale when its search expression
	// changes: a different query invalidates all prior scores regardless
	// of epoch.
	scores map[string]*cache.Cache

	recomputes atomic.Int64
	changed    bool
}

// scoreEntry is a cached relevance score tagged with the epoch it was
// computed at.
type scoreEntry struct {
	score float64
	epoch uint64
}

// NewRegistry creates an empty magnet registry.
func NewRegistry(defaults Defaults, epoch *Epoch, m *metrics.Metrics, logger *slog.Logger) *Registry {
	return &Registry{
		logger:   logger,
		metrics:  m,
		epoch:    epoch,
		defaults: defaults,
		byID:     make(map[string]*models.Magnet),
		scores:   make(map[string]*cache.Cache),
	}
}

// Defaults returns the current creation defaults.
func (r *Registry) Defaults() Defaults { return r.defaults }

// SetDefaults replaces the creation defaults. Existing magnets keep their
// parameters.
func (r *Registry) SetDefaults(d Defaults) { r.defaults = d }

// Count returns the number of active magnets.
func (r *Registry) Count() int { return len(r.magnets) }

// Get returns the magnet with the given ID.
func (r *Registry) Get(id string) (*models.Magnet, bool) {
	m, ok := r.byID[id]
	return m, ok
}

// All returns the active magnets in creation order. The returned slice holds
// copies safe to hand to renderers and broadcasters.
func (r *Registry) All() []models.Magnet {
	out := make([]models.Magnet, 0, len(r.magnets))
	for _, m := range r.magnets {
		out = append(out, *m)
	}
	return out
}

// Create validates params and adds a new magnet. Magnets are only ever
// created by an explicit client intent.
func (r *Registry) Create(clientID, clientName string, params CreateParams) (*models.Magnet, error) {
	if params.SearchExpression == "" {
		return nil, fmt.Errorf("create magnet: search expression is required")
	}
	if params.SearchType == "" {
		params.SearchType = models.SearchTypeFuzzy
	}
	if !params.SearchType.IsValid() {
		return nil, fmt.Errorf("create magnet: unknown search type %q", params.SearchType)
	}

	id := params.ID
	if id == "" {
		id = uuid.NewString()
	}
	if _, exists := r.byID[id]; exists {
		return nil, fmt.Errorf("create magnet: id %q already exists", id)
	}

	title := params.Title
	if title == "" {
		title = params.SearchExpression
	}

	m := &models.Magnet{
		ID:               id,
		Title:            title,
		SearchExpression: params.SearchExpression,
		SearchType:       params.SearchType,
		Enabled:          boolOr(params.Enabled, true),
		Strength:         floatOr(params.Strength, r.defaults.Strength),
		Radius:           floatOr(params.Radius, r.defaults.Radius),
		Softness:         floatOr(params.Softness, r.defaults.Softness),
		HoleRadius:       floatOr(params.HoleRadius, r.defaults.HoleRadius),
		ScoreMin:         floatOr(params.ScoreMin, r.defaults.ScoreMin),
		ScoreMax:         floatOr(params.ScoreMax, r.defaults.ScoreMax),
		Position:         params.Position,
		QueryTokens:      relevance.Tokenize(params.SearchExpression),
	}
	if err := validate(m); err != nil {
		return nil, err
	}

	r.magnets = append(r.magnets, m)
	r.byID[id] = m
	r.scores[id] = cache.New(cache.NoExpiration, 0)
	r.markChanged()
	r.metrics.MagnetsActive.Inc()

	r.logger.Info("magnet created", "id", id, "expression", m.SearchExpression, "client_id", clientID, "client_name", clientName)
	return m, nil
}

// Apply mutates an existing magnet. Changing the search expression
// retokenizes the query and flushes the magnet's score cache.
func (r *Registry) Apply(clientID, clientName, id string, u Update) error {
	m, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}

	next := *m
	if u.Title != nil {
		next.Title = *u.Title
	}
	if u.SearchExpression != nil {
		next.SearchExpression = *u.SearchExpression
	}
	if u.Enabled != nil {
		next.Enabled = *u.Enabled
	}
	if u.Strength != nil {
		next.Strength = *u.Strength
	}
	if u.Radius != nil {
		next.Radius = *u.Radius
	}
	if u.Softness != nil {
		next.Softness = *u.Softness
	}
	if u.HoleRadius != nil {
		next.HoleRadius = *u.HoleRadius
	}
	if u.ScoreMin != nil {
		next.ScoreMin = *u.ScoreMin
	}
	if u.ScoreMax != nil {
		next.ScoreMax = *u.ScoreMax
	}
	if u.Position != nil {
		next.Position = *u.Position
	}
	if err := validate(&next); err != nil {
		return err
	}

	if next.SearchExpression != m.SearchExpression {
		next.QueryTokens = relevance.Tokenize(next.SearchExpression)
		r.scores[id].Flush()
	}

	*m = next
	r.markChanged()
	r.logger.Info("magnet updated", "id", id, "client_id", clientID, "client_name", clientName)
	return nil
}

// Delete removes a magnet and its score cache.
func (r *Registry) Delete(clientID, clientName, id string) error {
	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}

	delete(r.byID, id)
	delete(r.scores, id)
	for i, m := range r.magnets {
		if m.ID == id {
			r.magnets = append(r.magnets[:i], r.magnets[i+1:]...)
			break
		}
	}
	r.markChanged()
	r.metrics.MagnetsActive.Dec()

	r.logger.Info("magnet deleted", "id", id, "client_id", clientID, "client_name", clientName)
	return nil
}

// Push nudges a magnet's position by delta.
func (r *Registry) Push(clientID, clientName, id string, delta vec.V3) error {
	m, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	m.Position = m.Position.Add(delta)
	r.markChanged()
	r.logger.Debug("magnet pushed", "id", id, "client_id", clientID, "client_name", clientName)
	return nil
}

// Teleport moves a magnet directly to a position.
func (r *Registry) Teleport(clientID, clientName, id string, pos vec.V3) error {
	m, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	m.Position = pos
	r.markChanged()
	r.logger.Debug("magnet teleported", "id", id, "client_id", clientID, "client_name", clientName)
	return nil
}

// ItemScore returns the magnet's relevance score for an item, computing and
// caching it when missing or stale. Entries from an older epoch are treated
// as stale and recomputed lazily.
func (r *Registry) ItemScore(m *models.Magnet, item models.Item) float64 {
	c, ok := r.scores[m.ID]
	if !ok {
		// Unregistered magnet (e.g. constructed directly in tests): score
		// without caching.
		return relevance.Score(item, m.QueryTokens)
	}

	current := r.epoch.Current()
	if v, found := c.Get(item.ID); found {
		entry := v.(scoreEntry)
		if entry.epoch == current {
			r.metrics.ScoreCacheHits.Inc()
			return entry.score
		}
	}

	score := relevance.Score(item, m.QueryTokens)
	c.Set(item.ID, scoreEntry{score: score, epoch: current}, cache.NoExpiration)
	r.recomputes.Add(1)
	r.metrics.ScoreCacheMisses.Inc()
	return score
}

// IsEligible reports whether an item falls inside the magnet's relevance
// window.
func (r *Registry) IsEligible(m *models.Magnet, item models.Item) bool {
	if !m.Enabled {
		return false
	}
	score := r.ItemScore(m, item)
	return score >= m.ScoreMin && score <= m.ScoreMax
}

// Recomputes returns how many times a relevance score was (re)computed.
// Exposed so cache invalidation is observable.
func (r *Registry) Recomputes() int64 { return r.recomputes.Load() }

// ConsumeChanged returns whether any magnet was added, removed, or mutated
// since the last call, clearing the flag.
func (r *Registry) ConsumeChanged() bool {
	changed := r.changed
	r.changed = false
	return changed
}

func (r *Registry) markChanged() { r.changed = true }

// validate enforces field parameter sanity on create and update.
func validate(m *models.Magnet) error {
	switch {
	case m.Strength < 0:
		return fmt.Errorf("magnet %q: strength must be non-negative", m.ID)
	case m.Radius < 0:
		return fmt.Errorf("magnet %q: radius must be non-negative", m.ID)
	case m.Softness < 0:
		return fmt.Errorf("magnet %q: softness must be non-negative", m.ID)
	case m.HoleRadius < 0:
		return fmt.Errorf("magnet %q: hole radius must be non-negative", m.ID)
	case m.ScoreMin < 0 || m.ScoreMin > 1:
		return fmt.Errorf("magnet %q: score_min must be in [0,1]", m.ID)
	case m.ScoreMax < 0 || m.ScoreMax > 1:
		return fmt.Errorf("magnet %q: score_max must be in [0,1]", m.ID)
	case m.ScoreMin > m.ScoreMax:
		return fmt.Errorf("magnet %q: score_min must not exceed score_max", m.ID)
	}
	return nil
}

func boolOr(p *bool, def bool) bool {
	if p != nil {
		return *p
	}
	return def
}

func floatOr(p *float64, def float64) float64 {
	if p != nil {
		return *p
	}
	return def
}
