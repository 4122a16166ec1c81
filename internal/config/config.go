// Package config loads server settings from YAML with environment overrides.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"kitten-defense/internal/game"
)

// ErrInvalid is returned when loaded settings cannot be used.
var ErrInvalid = errors.New("invalid config")

// Config is the full server configuration.
type Config struct {
	Territory Territory `yaml:"territory"`
	Server    Server    `yaml:"server"`
	Layout    string    `yaml:"layout"` // Embedded layout ID or path to a layout file
}

// Territory mirrors game.Config with YAML names.
type Territory struct {
	CaptureTime            int                `yaml:"capture_time"`
	InfluenceRadius        float64            `yaml:"influence_radius"`
	MaxControlPoints       int                `yaml:"max_control_points"`
	ResourceGenerationRate map[string]float64 `yaml:"resource_generation_rate"`
	CollectionRespawnTicks int                `yaml:"collection_respawn_ticks"`
}

// Server holds process-level settings.
type Server struct {
	Addr               string  `yaml:"addr"`
	DBPath             string  `yaml:"db_path"`
	EventLogDir        string  `yaml:"event_log_dir"`
	SnapshotPath       string  `yaml:"snapshot_path"`
	TickRateHz         int     `yaml:"tick_rate_hz"`
	SnapshotEveryTicks int     `yaml:"snapshot_every_ticks"`
	ClientRateLimit    float64 `yaml:"client_rate_limit"` // Messages per second
	ClientBurst        int     `yaml:"client_burst"`
}

// Default returns the settings used when no file is given.
func Default() Config {
	gc := game.DefaultConfig()
	rates := make(map[string]float64, len(gc.ResourceGenerationRate))
	for r, v := range gc.ResourceGenerationRate {
		rates[string(r)] = v
	}
	return Config{
		Territory: Territory{
			CaptureTime:            gc.CaptureTime,
			InfluenceRadius:        gc.InfluenceRadius,
			MaxControlPoints:       gc.MaxControlPoints,
			ResourceGenerationRate: rates,
			CollectionRespawnTicks: gc.CollectionRespawnTicks,
		},
		Server: Server{
			Addr:               ":30000",
			DBPath:             "data/kitten.db",
			EventLogDir:        "data/events",
			SnapshotPath:       "data/snapshot.zst",
			TickRateHz:         5,
			SnapshotEveryTicks: 300,
			ClientRateLimit:    20,
			ClientBurst:        40,
		},
		Layout: "meadow",
	}
}

// Load reads a YAML file over the defaults. An empty path returns the
// defaults. Environment overrides are applied last.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("%s: %w", path, err)
		}
	}
	cfg.ApplyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// ApplyEnv overrides settings from PORT, DB_PATH and LAYOUT.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if port := getenv("PORT"); port != "" {
		c.Server.Addr = ":" + port
	}
	if dbPath := getenv("DB_PATH"); dbPath != "" {
		c.Server.DBPath = dbPath
	}
	if layout := getenv("LAYOUT"); layout != "" {
		c.Layout = layout
	}
}

// Game converts the territory section to simulation parameters.
func (c Config) Game() game.Config {
	rates := make(map[game.ResourceType]float64, len(c.Territory.ResourceGenerationRate))
	for name, v := range c.Territory.ResourceGenerationRate {
		rates[game.ResourceType(name)] = v
	}
	return game.Config{
		CaptureTime:            c.Territory.CaptureTime,
		InfluenceRadius:        c.Territory.InfluenceRadius,
		MaxControlPoints:       c.Territory.MaxControlPoints,
		ResourceGenerationRate: rates,
		CollectionRespawnTicks: c.Territory.CollectionRespawnTicks,
	}
}

// Validate checks both sections.
func (c Config) Validate() error {
	if err := c.Game().Validate(); err != nil {
		return err
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("%w: server.addr is empty", ErrInvalid)
	}
	if c.Server.TickRateHz <= 0 {
		return fmt.Errorf("%w: server.tick_rate_hz must be positive, got %d", ErrInvalid, c.Server.TickRateHz)
	}
	if c.Server.SnapshotEveryTicks < 0 {
		return fmt.Errorf("%w: server.snapshot_every_ticks must not be negative", ErrInvalid)
	}
	if math.IsNaN(c.Server.ClientRateLimit) || c.Server.ClientRateLimit <= 0 || c.Server.ClientBurst <= 0 {
		return fmt.Errorf("%w: client rate limit and burst must be positive", ErrInvalid)
	}
	return nil
}
