package api

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbitdeck/orbitdeck/internal/broadcast"
	"github.com/orbitdeck/orbitdeck/internal/catalog"
	"github.com/orbitdeck/orbitdeck/internal/intent"
	"github.com/orbitdeck/orbitdeck/internal/magnet"
	"github.com/orbitdeck/orbitdeck/internal/metrics"
	"github.com/orbitdeck/orbitdeck/internal/nav"
	"github.com/orbitdeck/orbitdeck/internal/params"
	"github.com/orbitdeck/orbitdeck/internal/selection"
	"github.com/orbitdeck/orbitdeck/internal/sim"
)

type apiFixture struct {
	loop    *sim.Loop
	catalog *catalog.Catalog
	server  *Server
}

func newAPIFixture(t *testing.T, authToken string, queueSize int) *apiFixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	epoch := &magnet.Epoch{}
	cat := catalog.New(epoch, logger)
	sel := selection.New(logger)
	reg := magnet.NewRegistry(magnet.Defaults{Strength: 1, Radius: 10, ScoreMax: 1}, epoch, m, logger)
	navigator := nav.New(cat, cat, 0.5, logger)
	ps := params.NewSet()
	ps.Register(params.Descriptor{Name: "sim.max_force", Category: "sim", Min: 0, Max: 100}, 50, nil)
	router := intent.NewRouter(sel, reg, navigator, ps, intent.NavModeFree, m, logger)

	drift := catalog.NewDrift(cat, 0.1)
	field := magnet.NewField(reg, cat, cat, drift, 0.01, 2, 50, m, logger)

	buf := broadcast.NewBuffer(64)
	bcast := broadcast.New(sel, reg, buf, m, logger)

	loop := sim.NewLoop(sel, reg, router, field, bcast, 10*time.Millisecond, queueSize, m, logger)
	srv := NewServer(loop, cat, ps, buf, registry, logger, authToken)
	return &apiFixture{loop: loop, catalog: cat, server: srv}
}

func doRequest(t *testing.T, h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	f := newAPIFixture(t, "", 8)
	rec := doRequest(t, f.server.Handler(), http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}

func TestAuthRequiredWhenTokenSet(t *testing.T) {
	f := newAPIFixture(t, "secret", 8)
	h := f.server.Handler()

	rec := doRequest(t, h, http.MethodGet, "/v1/snapshot", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(t, h, http.MethodGet, "/v1/snapshot", "wrong", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doRequest(t, h, http.MethodGet, "/v1/snapshot", "secret", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	// Health stays open.
	rec = doRequest(t, h, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPostIntentQueuesAndApplies(t *testing.T) {
	f := newAPIFixture(t, "", 8)
	h := f.server.Handler()

	rec := doRequest(t, h, http.MethodPost, "/v1/intents", "",
		`{"client_id":"c1","action":"select_item","item_id":"a"}`)
	require.Equal(t, http.StatusAccepted, rec.Code)

	f.loop.Step()

	rec = doRequest(t, h, http.MethodGet, "/v1/snapshot", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"selected_ids":["a"]`)
}

func TestPostIntentCreateMagnet(t *testing.T) {
	f := newAPIFixture(t, "", 8)
	h := f.server.Handler()

	rec := doRequest(t, h, http.MethodPost, "/v1/intents", "",
		`{"client_id":"c1","action":"create_magnet","magnet":{"id":"m1","search_expression":"dune","position":{"x":3}}}`)
	require.Equal(t, http.StatusAccepted, rec.Code)

	f.loop.Step()

	snap := f.loop.Snapshot()
	require.Len(t, snap.Magnets, 1)
	assert.Equal(t, "m1", snap.Magnets[0].ID)
	assert.Equal(t, 3.0, snap.Magnets[0].Position.X)
}

func TestPostIntentRejectsBadRequests(t *testing.T) {
	f := newAPIFixture(t, "", 8)
	h := f.server.Handler()

	rec := doRequest(t, h, http.MethodPost, "/v1/intents", "", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, h, http.MethodPost, "/v1/intents", "", `{"client_id":"c1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPostIntentBackpressure(t *testing.T) {
	f := newAPIFixture(t, "", 1)
	h := f.server.Handler()

	body := `{"client_id":"c1","action":"select_item","item_id":"a"}`
	rec := doRequest(t, h, http.MethodPost, "/v1/intents", "", body)
	require.Equal(t, http.StatusAccepted, rec.Code)

	rec = doRequest(t, h, http.MethodPost, "/v1/intents", "", body)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestEventsDrain(t *testing.T) {
	f := newAPIFixture(t, "", 8)
	h := f.server.Handler()

	doRequest(t, h, http.MethodPost, "/v1/intents", "",
		`{"client_id":"c1","action":"select_item","item_id":"a"}`)
	f.loop.Step()

	rec := doRequest(t, h, http.MethodGet, "/v1/events", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "selection_changed")

	// Drained: second poll is empty.
	rec = doRequest(t, h, http.MethodGet, "/v1/events", "", "")
	assert.Contains(t, rec.Body.String(), `"events":null`)
}

func TestGetParams(t *testing.T) {
	f := newAPIFixture(t, "", 8)
	rec := doRequest(t, f.server.Handler(), http.MethodGet, "/v1/params", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "sim.max_force")
	assert.Contains(t, rec.Body.String(), `"current":50`)
}

func TestItemLifecycle(t *testing.T) {
	f := newAPIFixture(t, "", 8)
	h := f.server.Handler()

	rec := doRequest(t, h, http.MethodPost, "/v1/items", "",
		`{"id":"i1","title":"Dune","position":{"x":1,"z":2}}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	// Duplicate add conflicts.
	rec = doRequest(t, h, http.MethodPost, "/v1/items", "",
		`{"id":"i1","title":"Dune"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doRequest(t, h, http.MethodGet, "/v1/items", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"count":1`)

	rec = doRequest(t, h, http.MethodPut, "/v1/items/i1", "",
		`{"title":"Dune Messiah"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	item, ok := f.catalog.Get("i1")
	require.True(t, ok)
	assert.Equal(t, "Dune Messiah", item.Title)

	rec = doRequest(t, h, http.MethodDelete, "/v1/items/i1", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, f.catalog.Count())

	rec = doRequest(t, h, http.MethodDelete, "/v1/items/i1", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	f := newAPIFixture(t, "secret", 8)
	rec := doRequest(t, f.server.Handler(), http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "orbitdeck_magnets_active")
}
