// Package config loads generator settings from TOML files, with
// defaults matching the canonical recipe tolerances.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/nanomesh/nanomesh/pkg/object"
)

// Config carries the tunable parameters of the generator.
type Config struct {
	// Seed initializes the random source; 0 means derive from time.
	Seed int64 `toml:"seed"`

	// Extent is the scene containment region (xmin, xmax, ymin, ymax,
	// zmin, zmax).
	Extent object.Extent `toml:"extent"`

	// Epsilon is the geometric tolerance: selection predicates compare
	// against it and bevels below it are skipped.
	Epsilon float64 `toml:"epsilon"`

	// WeldDistance is the duplicate-vertex merge distance.
	WeldDistance float64 `toml:"weld_distance"`

	// BevelSegments is the facet count of smoothing bevels.
	BevelSegments int `toml:"bevel_segments"`

	// SphereSubdivisions is the icosphere refinement level.
	SphereSubdivisions int `toml:"sphere_subdivisions"`

	// PlacementRetryLimit bounds the placement rejection loop before it
	// reports infeasible constraints.
	PlacementRetryLimit int `toml:"placement_retry_limit"`
}

// Default returns the canonical settings.
func Default() Config {
	return Config{
		Extent:              object.Extent{-0.5, 0.5, -0.5, 0.5, -0.5, 0.5},
		Epsilon:             1e-5,
		WeldDistance:        1e-4,
		BevelSegments:       3,
		SphereSubdivisions:  5,
		PlacementRetryLimit: 10000,
	}
}

// Load reads a TOML config file over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Epsilon <= 0 {
		return fmt.Errorf("epsilon must be positive, got %g", c.Epsilon)
	}
	if c.WeldDistance <= 0 {
		return fmt.Errorf("weld_distance must be positive, got %g", c.WeldDistance)
	}
	if c.BevelSegments < 1 {
		return fmt.Errorf("bevel_segments must be at least 1, got %d", c.BevelSegments)
	}
	if c.SphereSubdivisions < 1 {
		return fmt.Errorf("sphere_subdivisions must be at least 1, got %d", c.SphereSubdivisions)
	}
	if c.PlacementRetryLimit < 1 {
		return fmt.Errorf("placement_retry_limit must be at least 1, got %d", c.PlacementRetryLimit)
	}
	for i := 0; i < 6; i += 2 {
		if c.Extent[i] > c.Extent[i+1] {
			return fmt.Errorf("extent bounds inverted on axis %d", i/2)
		}
	}
	return nil
}
