package game

import (
	"fmt"
	"math"
)

// Config holds the territory simulation parameters. It is fixed for the
// lifetime of a Registry.
type Config struct {
	CaptureTime            int                      `json:"captureTime"` // Ticks of uninterrupted dominance needed to capture
	InfluenceRadius        float64                  `json:"influenceRadius"`
	MaxControlPoints       int                      `json:"maxControlPoints"`
	ResourceGenerationRate map[ResourceType]float64 `json:"resourceGenerationRate"` // Per tick, per active generator
	CollectionRespawnTicks int                      `json:"collectionRespawnTicks"`
}

// DefaultConfig returns the standard match settings.
func DefaultConfig() Config {
	return Config{
		CaptureTime:      10,
		InfluenceRadius:  50,
		MaxControlPoints: 100,
		ResourceGenerationRate: map[ResourceType]float64{
			ResourceTuna:   10,
			ResourceMilk:   8,
			ResourceCatnip: 5,
			ResourceYarn:   4,
			ResourceFish:   6,
		},
		CollectionRespawnTicks: 30,
	}
}

// GenerationRate returns the per-tick production for a resource, 0 if unset.
func (c Config) GenerationRate(resource ResourceType) float64 {
	return c.ResourceGenerationRate[resource]
}

// Validate checks the config for values the simulation cannot run with.
func (c Config) Validate() error {
	if c.CaptureTime <= 0 {
		return fmt.Errorf("%w: capture time must be positive, got %d", ErrInvalidConfig, c.CaptureTime)
	}
	if !finite(c.InfluenceRadius) || c.InfluenceRadius <= 0 {
		return fmt.Errorf("%w: influence radius must be positive, got %g", ErrInvalidConfig, c.InfluenceRadius)
	}
	if c.MaxControlPoints < 0 {
		return fmt.Errorf("%w: max control points must not be negative, got %d", ErrInvalidConfig, c.MaxControlPoints)
	}
	if c.CollectionRespawnTicks <= 0 {
		return fmt.Errorf("%w: collection respawn ticks must be positive, got %d", ErrInvalidConfig, c.CollectionRespawnTicks)
	}
	for r, rate := range c.ResourceGenerationRate {
		if !r.Valid() {
			return fmt.Errorf("%w: %q", ErrInvalidResource, r)
		}
		if !finite(rate) || rate < 0 {
			return fmt.Errorf("%w: generation rate for %s must be a non-negative number, got %g", ErrInvalidConfig, r, rate)
		}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
