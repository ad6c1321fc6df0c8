package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

const (
	// DefaultTickHz is the default simulation tick rate.
	DefaultTickHz = 30

	// DefaultIntentQueueSize is the default capacity of the inbound intent
	// queue.
	DefaultIntentQueueSize = 1024

	// DefaultMaxForce is the default per-item aggregate force ceiling.
	DefaultMaxForce = 50.0
)

// Config holds all configuration for orbitdeck.
type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging"`
	API       APIConfig       `mapstructure:"api"`
	Sim       SimConfig       `mapstructure:"sim"`
	Nav       NavConfig       `mapstructure:"nav"`
	Magnet    MagnetConfig    `mapstructure:"magnet"`
	Broadcast BroadcastConfig `mapstructure:"broadcast"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	ListenAddr string `mapstructure:"listen_addr"`
	AuthToken  string `mapstructure:"auth_token"`
}

// SimConfig holds simulation loop and force field settings.
type SimConfig struct {
	TickHz           float64 `mapstructure:"tick_hz"`
	IntentQueueSize  int     `mapstructure:"intent_queue_size"`
	MaxForce         float64 `mapstructure:"max_force"`
	BroadphasePad    float64 `mapstructure:"broadphase_padding"`
	MinForceDistance float64 `mapstructure:"min_force_distance"`
	DriftMobility    float64 `mapstructure:"drift_mobility"`
}

// TickInterval converts the configured tick rate into a ticker interval.
func (c SimConfig) TickInterval() time.Duration {
	return time.Duration(float64(time.Second) / c.TickHz)
}

// NavConfig holds directional navigation settings.
type NavConfig struct {
	Mode           string  `mapstructure:"mode"`
	ScaleThreshold float64 `mapstructure:"scale_threshold"`
}

// MagnetConfig holds the default field parameters for newly created magnets.
type MagnetConfig struct {
	Strength   float64 `mapstructure:"strength"`
	Radius     float64 `mapstructure:"radius"`
	Softness   float64 `mapstructure:"softness"`
	HoleRadius float64 `mapstructure:"hole_radius"`
	ScoreMin   float64 `mapstructure:"score_min"`
	ScoreMax   float64 `mapstructure:"score_max"`
}

// BroadcastConfig holds outbound event delivery settings.
type BroadcastConfig struct {
	BufferSize int `mapstructure:"buffer_size"`
}

// Load reads configuration from file and environment variables.
func Load() (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	v.SetDefault("api.listen_addr", ":8080")
	v.SetDefault("api.auth_token", "")

	v.SetDefault("sim.tick_hz", DefaultTickHz)
	v.SetDefault("sim.intent_queue_size", DefaultIntentQueueSize)
	v.SetDefault("sim.max_force", DefaultMaxForce)
	v.SetDefault("sim.broadphase_padding", 2.0)
	v.SetDefault("sim.min_force_distance", 0.05)
	v.SetDefault("sim.drift_mobility", 0.05)

	v.SetDefault("nav.mode", "free")
	v.SetDefault("nav.scale_threshold", 1.0)

	v.SetDefault("magnet.strength", 10.0)
	v.SetDefault("magnet.radius", 20.0)
	v.SetDefault("magnet.softness", 1.0)
	v.SetDefault("magnet.hole_radius", 1.0)
	v.SetDefault("magnet.score_min", 0.5)
	v.SetDefault("magnet.score_max", 1.0)

	v.SetDefault("broadcast.buffer_size", 256)

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Join(homeDir(), ".orbitdeck"))
	v.AddConfigPath(".")

	// Environment variables
	v.SetEnvPrefix("ORBITDECK")
	v.AutomaticEnv()

	// Map specific env vars
	_ = v.BindEnv("api.listen_addr", "ORBITDECK_API_LISTEN_ADDR")
	_ = v.BindEnv("api.auth_token", "ORBITDECK_API_AUTH_TOKEN")
	_ = v.BindEnv("sim.tick_hz", "ORBITDECK_SIM_TICK_HZ")
	_ = v.BindEnv("nav.mode", "ORBITDECK_NAV_MODE")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		// Config file not found is OK — use defaults + env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are set and consistent.
func (c *Config) Validate() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error")
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json")
	}
	if c.API.ListenAddr == "" {
		return fmt.Errorf("api.listen_addr must not be empty")
	}
	if c.Sim.TickHz <= 0 || c.Sim.TickHz > 240 {
		return fmt.Errorf("sim.tick_hz must be in (0, 240]")
	}
	if c.Sim.IntentQueueSize <= 0 {
		return fmt.Errorf("sim.intent_queue_size must be greater than 0")
	}
	if c.Sim.MaxForce <= 0 {
		return fmt.Errorf("sim.max_force must be greater than 0")
	}
	if c.Sim.BroadphasePad < 0 {
		return fmt.Errorf("sim.broadphase_padding must be >= 0")
	}
	if c.Sim.MinForceDistance < 0 {
		return fmt.Errorf("sim.min_force_distance must be >= 0")
	}
	if c.Sim.DriftMobility < 0 {
		return fmt.Errorf("sim.drift_mobility must be >= 0")
	}
	if c.Nav.Mode != "free" && c.Nav.Mode != "grid" {
		return fmt.Errorf("nav.mode must be free or grid")
	}
	if c.Nav.ScaleThreshold < 0 {
		return fmt.Errorf("nav.scale_threshold must be >= 0")
	}
	if c.Magnet.Strength < 0 {
		return fmt.Errorf("magnet.strength must be >= 0")
	}
	if c.Magnet.Radius <= 0 {
		return fmt.Errorf("magnet.radius must be greater than 0")
	}
	if c.Magnet.Softness < 0 {
		return fmt.Errorf("magnet.softness must be >= 0")
	}
	if c.Magnet.HoleRadius < 0 || c.Magnet.HoleRadius > c.Magnet.Radius {
		return fmt.Errorf("magnet.hole_radius must be in [0, magnet.radius]")
	}
	if c.Magnet.ScoreMin < 0 || c.Magnet.ScoreMin > 1 {
		return fmt.Errorf("magnet.score_min must be between 0 and 1")
	}
	if c.Magnet.ScoreMax < 0 || c.Magnet.ScoreMax > 1 {
		return fmt.Errorf("magnet.score_max must be between 0 and 1")
	}
	if c.Magnet.ScoreMin > c.Magnet.ScoreMax {
		return fmt.Errorf("magnet.score_min must not exceed magnet.score_max")
	}
	if c.Broadcast.BufferSize <= 0 {
		return fmt.Errorf("broadcast.buffer_size must be greater than 0")
	}
	return nil
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
