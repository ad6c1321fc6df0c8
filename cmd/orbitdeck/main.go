package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/orbitdeck/orbitdeck/internal/broadcast"
	"github.com/orbitdeck/orbitdeck/internal/catalog"
	"github.com/orbitdeck/orbitdeck/internal/config"
	"github.com/orbitdeck/orbitdeck/internal/intent"
	"github.com/orbitdeck/orbitdeck/internal/magnet"
	"github.com/orbitdeck/orbitdeck/internal/metrics"
	"github.com/orbitdeck/orbitdeck/internal/nav"
	"github.com/orbitdeck/orbitdeck/internal/params"
	"github.com/orbitdeck/orbitdeck/internal/selection"
	"github.com/orbitdeck/orbitdeck/internal/sim"
)

var cfg *config.Config

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	rootCmd := &cobra.Command{
		Use:   "orbitdeck",
		Short: "Orbitdeck — shared-state engine for spatial content browsing",
		Long:  "Orbitdeck runs the collaborative core of a spatial content browser: shared selection and highlight state, directional navigation, and relevance-driven magnet force fields, exposed over an HTTP/JSON API.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			return nil
		},
	}

	rootCmd.AddCommand(
		serveCmd(),
		scoreCmd(),
		paramsCmd(),
	)

	rootCmd.SetContext(ctx)

	err := rootCmd.Execute()
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if cfg != nil && cfg.Logging.Level == "debug" {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg != nil && cfg.Logging.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// engine bundles the fully wired simulation core.
type engine struct {
	registry *prometheus.Registry
	catalog  *catalog.Catalog
	params   *params.Set
	events   *broadcast.Buffer
	loop     *sim.Loop
}

// buildEngine wires the simulation core from the loaded configuration.
func buildEngine(logger *slog.Logger) *engine {
	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	epoch := &magnet.Epoch{}
	cat := catalog.New(epoch, logger)
	sel := selection.New(logger)

	magnets := magnet.NewRegistry(magnet.Defaults{
		Strength:   cfg.Magnet.Strength,
		Radius:     cfg.Magnet.Radius,
		Softness:   cfg.Magnet.Softness,
		HoleRadius: cfg.Magnet.HoleRadius,
		ScoreMin:   cfg.Magnet.ScoreMin,
		ScoreMax:   cfg.Magnet.ScoreMax,
	}, epoch, m, logger)

	navigator := nav.New(cat, cat, cfg.Nav.ScaleThreshold, logger)

	drift := catalog.NewDrift(cat, cfg.Sim.DriftMobility)
	field := magnet.NewField(magnets, cat, cat, drift,
		cfg.Sim.MinForceDistance, cfg.Sim.BroadphasePad, cfg.Sim.MaxForce, m, logger)

	ps := params.NewSet()
	registerParams(ps, navigator, field, magnets)

	mode, ok := intent.ParseNavMode(cfg.Nav.Mode)
	if !ok {
		mode = intent.NavModeFree // config.Validate already rejects others
	}
	router := intent.NewRouter(sel, magnets, navigator, ps, mode, m, logger)

	events := broadcast.NewBuffer(cfg.Broadcast.BufferSize)
	transport := broadcast.Fanout{events, broadcast.NewLogTransport(logger)}
	bcast := broadcast.New(sel, magnets, transport, m, logger)

	loop := sim.NewLoop(sel, magnets, router, field, bcast,
		cfg.Sim.TickInterval(), cfg.Sim.IntentQueueSize, m, logger)

	return &engine{
		registry: registry,
		catalog:  cat,
		params:   ps,
		events:   events,
		loop:     loop,
	}
}

// registerParams assembles the runtime-tunable parameter table.
func registerParams(ps *params.Set, navigator *nav.Navigator, field *magnet.Field, magnets *magnet.Registry) {
	ps.Register(params.Descriptor{
		Name:        "nav.scale_threshold",
		Category:    "nav",
		Description: "render scale above which an item counts as a primary navigation target",
		Min:         0, Max: 10,
	}, navigator.ScaleThreshold(), navigator.SetScaleThreshold)

	ps.Register(params.Descriptor{
		Name:        "sim.max_force",
		Category:    "sim",
		Description: "per-item ceiling on the aggregate magnet force",
		Min:         0.1, Max: 1000,
	}, field.MaxForce(), field.SetMaxForce)

	ps.Register(params.Descriptor{
		Name:        "sim.broadphase_padding",
		Category:    "sim",
		Description: "extra reach added to magnet radii during broad-phase culling",
		Min:         0, Max: 100,
	}, field.Padding(), field.SetPadding)

	defaults := magnets.Defaults()
	defaultSetter := func(set func(*magnet.Defaults, float64)) func(float64) {
		return func(v float64) {
			d := magnets.Defaults()
			set(&d, v)
			magnets.SetDefaults(d)
		}
	}
	ps.Register(params.Descriptor{
		Name:        "magnet.strength",
		Category:    "magnet",
		Description: "default pull strength for new magnets",
		Min:         0, Max: 1000,
	}, defaults.Strength, defaultSetter(func(d *magnet.Defaults, v float64) { d.Strength = v }))
	ps.Register(params.Descriptor{
		Name:        "magnet.radius",
		Category:    "magnet",
		Description: "default field radius for new magnets",
		Min:         0.1, Max: 1000,
	}, defaults.Radius, defaultSetter(func(d *magnet.Defaults, v float64) { d.Radius = v }))
	ps.Register(params.Descriptor{
		Name:        "magnet.softness",
		Category:    "magnet",
		Description: "default distance falloff for new magnets (0 = hard step, 1 = linear fade)",
		Min:         0, Max: 1,
	}, defaults.Softness, defaultSetter(func(d *magnet.Defaults, v float64) { d.Softness = v }))
	ps.Register(params.Descriptor{
		Name:        "magnet.hole_radius",
		Category:    "magnet",
		Description: "default capture radius inside which items rest",
		Min:         0, Max: 100,
	}, defaults.HoleRadius, defaultSetter(func(d *magnet.Defaults, v float64) { d.HoleRadius = v }))
	ps.Register(params.Descriptor{
		Name:        "magnet.score_min",
		Category:    "magnet",
		Description: "default lower relevance bound for magnet eligibility",
		Min:         0, Max: 1,
	}, defaults.ScoreMin, defaultSetter(func(d *magnet.Defaults, v float64) { d.ScoreMin = v }))
	ps.Register(params.Descriptor{
		Name:        "magnet.score_max",
		Category:    "magnet",
		Description: "default upper relevance bound for magnet eligibility",
		Min:         0, Max: 1,
	}, defaults.ScoreMax, defaultSetter(func(d *magnet.Defaults, v float64) { d.ScoreMax = v }))
}
