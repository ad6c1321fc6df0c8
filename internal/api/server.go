// Package api exposes the engine over HTTP: intent submission for remote
// clients, state snapshots and event polling for renderers, and content
// management for the item collection.
package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/orbitdeck/orbitdeck/internal/broadcast"
	"github.com/orbitdeck/orbitdeck/internal/catalog"
	"github.com/orbitdeck/orbitdeck/internal/intent"
	"github.com/orbitdeck/orbitdeck/internal/magnet"
	"github.com/orbitdeck/orbitdeck/internal/models"
	"github.com/orbitdeck/orbitdeck/internal/params"
	"github.com/orbitdeck/orbitdeck/internal/sim"
	"github.com/orbitdeck/orbitdeck/pkg/vec"
)

// Server is the HTTP API server in front of the simulation loop.
type Server struct {
	loop      *sim.Loop
	catalog   *catalog.Catalog
	params    *params.Set
	events    *broadcast.Buffer
	gatherer  prometheus.Gatherer
	logger    *slog.Logger
	authToken string // empty = no auth required
}

// NewServer creates a new Server with the given dependencies.
func NewServer(loop *sim.Loop, cat *catalog.Catalog, ps *params.Set, events *broadcast.Buffer, gatherer prometheus.Gatherer, logger *slog.Logger, authToken string) *Server {
	return &Server{
		loop:      loop,
		catalog:   cat,
		params:    ps,
		events:    events,
		gatherer:  gatherer,
		logger:    logger,
		authToken: authToken,
	}
}

// Handler returns an http.Handler with all routes registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Health check and metrics — no auth required.
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))

	// Simulation and content endpoints — wrapped with auth middleware.
	mux.HandleFunc("POST /v1/intents", s.auth(s.handleIntent))
	mux.HandleFunc("GET /v1/snapshot", s.auth(s.handleSnapshot))
	mux.HandleFunc("GET /v1/events", s.auth(s.handleEvents))
	mux.HandleFunc("GET /v1/params", s.auth(s.handleParams))
	mux.HandleFunc("GET /v1/items", s.auth(s.handleListItems))
	mux.HandleFunc("POST /v1/items", s.auth(s.handleAddItem))
	mux.HandleFunc("PUT /v1/items/{id}", s.auth(s.handleUpdateItem))
	mux.HandleFunc("DELETE /v1/items/{id}", s.auth(s.handleDeleteItem))

	return mux
}

// --- middleware ---

// auth wraps a handler with Bearer token authentication when authToken is set.
func (s *Server) auth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.authToken == "" {
			next(w, r)
			return
		}
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(s.authToken)) != 1 {
			s.writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r)
	}
}

// --- handlers ---

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// magnetPayload carries magnet fields on create and update intents. All
// fields are optional; unset ones fall back to server defaults (create) or
// stay unchanged (update).
type magnetPayload struct {
	ID               string   `json:"id"`
	Title            *string  `json:"title"`
	SearchExpression *string  `json:"search_expression"`
	Enabled          *bool    `json:"enabled"`
	Strength         *float64 `json:"strength"`
	Radius           *float64 `json:"radius"`
	Softness         *float64 `json:"softness"`
	HoleRadius       *float64 `json:"hole_radius"`
	ScoreMin         *float64 `json:"score_min"`
	ScoreMax         *float64 `json:"score_max"`
	Position         *vec.V3  `json:"position"`
}

// intentRequest is the body accepted by POST /v1/intents.
type intentRequest struct {
	ClientID   string `json:"client_id"`
	ClientName string `json:"client_name"`
	Action     string `json:"action"`

	ItemID  string   `json:"item_id"`
	ItemIDs []string `json:"item_ids"`

	Direction string  `json:"direction"`
	DragX     float64 `json:"drag_x"`
	DragY     float64 `json:"drag_y"`

	MagnetID string         `json:"magnet_id"`
	Magnet   *magnetPayload `json:"magnet"`
	Delta    *vec.V3        `json:"delta"`
	Position *vec.V3        `json:"position"`

	Enabled *bool `json:"enabled"`

	Param string   `json:"param"`
	Value *float64 `json:"value"`
}

// intentResponse is returned by POST /v1/intents.
type intentResponse struct {
	Queued bool `json:"queued"`
}

func (s *Server) handleIntent(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB limit
	var req intentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Action == "" {
		s.writeError(w, http.StatusBadRequest, "action is required")
		return
	}

	// Validation beyond shape happens on the simulation goroutine; a queued
	// intent may still be dropped there.
	if !s.loop.Enqueue(req.toIntent()) {
		s.writeError(w, http.StatusServiceUnavailable, "intent queue full")
		return
	}

	s.writeJSON(w, http.StatusAccepted, intentResponse{Queued: true})
}

// toIntent maps the wire request onto the internal intent record.
func (r *intentRequest) toIntent() intent.Intent {
	in := intent.Intent{
		ClientID:   r.ClientID,
		ClientName: r.ClientName,
		Action:     intent.Action(r.Action),
		ItemID:     r.ItemID,
		ItemIDs:    r.ItemIDs,
		Direction:  r.Direction,
		DragX:      r.DragX,
		DragY:      r.DragY,
		MagnetID:   r.MagnetID,
		Delta:      r.Delta,
		Position:   r.Position,
		Enabled:    r.Enabled,
		Param:      r.Param,
		Value:      r.Value,
	}

	if r.Magnet == nil {
		return in
	}
	switch in.Action {
	case intent.ActionCreateMagnet:
		create := magnet.CreateParams{
			ID:         r.Magnet.ID,
			Enabled:    r.Magnet.Enabled,
			Strength:   r.Magnet.Strength,
			Radius:     r.Magnet.Radius,
			Softness:   r.Magnet.Softness,
			HoleRadius: r.Magnet.HoleRadius,
			ScoreMin:   r.Magnet.ScoreMin,
			ScoreMax:   r.Magnet.ScoreMax,
		}
		if r.Magnet.Title != nil {
			create.Title = *r.Magnet.Title
		}
		if r.Magnet.SearchExpression != nil {
			create.SearchExpression = *r.Magnet.SearchExpression
		}
		if r.Magnet.Position != nil {
			create.Position = *r.Magnet.Position
		}
		in.Create = &create
	case intent.ActionUpdateMagnet:
		in.Update = &magnet.Update{
			Title:            r.Magnet.Title,
			SearchExpression: r.Magnet.SearchExpression,
			Enabled:          r.Magnet.Enabled,
			Strength:         r.Magnet.Strength,
			Radius:           r.Magnet.Radius,
			Softness:         r.Magnet.Softness,
			HoleRadius:       r.Magnet.HoleRadius,
			ScoreMin:         r.Magnet.ScoreMin,
			ScoreMax:         r.Magnet.ScoreMax,
			Position:         r.Magnet.Position,
		}
	}
	return in
}

func (s *Server) handleSnapshot(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.loop.Snapshot())
}

// eventsResponse is returned by GET /v1/events.
type eventsResponse struct {
	Events  []broadcast.Event `json:"events"`
	Dropped int               `json:"dropped"`
}

func (s *Server) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, eventsResponse{
		Events:  s.events.Drain(),
		Dropped: s.events.Dropped(),
	})
}

// paramsResponse is returned by GET /v1/params.
type paramsResponse struct {
	Params []params.Value `json:"params"`
}

func (s *Server) handleParams(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, paramsResponse{Params: s.params.Snapshot()})
}

// itemRequest is the body accepted by POST /v1/items and PUT /v1/items/{id}.
type itemRequest struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Creator     string   `json:"creator"`
	Subjects    []string `json:"subjects"`
	Position    vec.V3   `json:"position"`
	Scale       float64  `json:"scale"`
}

func (r *itemRequest) item() models.Item {
	return models.Item{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Creator:     r.Creator,
		Subjects:    r.Subjects,
	}
}

// itemsResponse is returned by GET /v1/items.
type itemsResponse struct {
	Items []models.Item `json:"items"`
	Count int           `json:"count"`
}

func (s *Server) handleListItems(w http.ResponseWriter, _ *http.Request) {
	items := s.catalog.Items()
	s.writeJSON(w, http.StatusOK, itemsResponse{Items: items, Count: len(items)})
}

func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB limit
	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ID == "" {
		s.writeError(w, http.StatusBadRequest, "id is required")
		return
	}
	if req.Scale <= 0 {
		req.Scale = 1
	}

	if err := s.catalog.Add(req.item(), req.Position, req.Scale); err != nil {
		s.writeError(w, http.StatusConflict, err.Error())
		return
	}

	s.writeJSON(w, http.StatusCreated, map[string]bool{"added": true})
}

func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB limit
	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.ID = id

	if err := s.catalog.Update(req.item()); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "item not found")
			return
		}
		s.logger.Error("failed to update item", "id", id, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to update item")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]bool{"updated": true})
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		s.writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := s.catalog.Remove(id); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, "item not found")
			return
		}
		s.logger.Error("failed to delete item", "id", id, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to delete item")
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// --- helpers ---

// writeJSON encodes v as JSON and writes it to w with the given status code.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encErr := json.NewEncoder(w).Encode(v); encErr != nil {
		s.logger.Error("failed to encode response", "error", encErr)
	}
}

// writeError writes a JSON error response.
func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

// Shutdown gracefully shuts down an http.Server with the given timeout.
// This is a convenience helper used by the serve command.
func Shutdown(srv *http.Server, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return srv.Shutdown(ctx)
}
