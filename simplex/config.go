package simplex

import (
	"errors"
	"fmt"

	"colonyopt/vertex"
)

// ErrInvalidConfig is the sentinel wrapped by every configuration rejection,
// so callers can test with errors.Is(err, simplex.ErrInvalidConfig).
var ErrInvalidConfig = errors.New("simplex: invalid configuration")

// Config holds the per-simplex tuning parameters from spec §3/§6. The zero
// value is not valid; use DefaultConfig and override fields as needed.
type Config struct {
	GrowFactor     float64               `mapstructure:"growFactor" yaml:"growFactor"`
	ShrinkFactor   float64               `mapstructure:"shrinkFactor" yaml:"shrinkFactor"`
	BoundaryPolicy vertex.BoundaryPolicy `mapstructure:"boundaryPolicy" yaml:"boundaryPolicy"`
	ForceBoundary  bool                  `mapstructure:"forceBoundary" yaml:"forceBoundary"`
	MaxEvaluations int                   `mapstructure:"maxEvaluations" yaml:"maxEvaluations"`
	MinRelSize     float64               `mapstructure:"minRelSize" yaml:"minRelSize"`
}

// DefaultConfig returns the spec §6 defaults: grow factor 2, shrink factor
// 0.5, sticky boundary enforcement, no evaluation cap, a conservative
// relative-size floor.
func DefaultConfig() Config {
	return Config{
		GrowFactor:     2.0,
		ShrinkFactor:   0.5,
		BoundaryPolicy: vertex.Sticky,
		ForceBoundary:  true,
		MaxEvaluations: 0, // 0 means unlimited; validated against dim at New time.
		MinRelSize:     1e-8,
	}
}

// validate checks cfg against bounds of dimension dim, per spec §4.1/§7:
// bounds inverted, growFactor<=1, shrinkFactor outside (0,1), or
// maxEvaluations<=dim+1 (when capped) are all configuration errors.
func (cfg Config) validate(bounds vertex.Bounds, dim int) error {
	if bounds.Dim() != dim {
		return fmt.Errorf("%w: bounds dimension %d does not match simplex dimension %d", ErrInvalidConfig, bounds.Dim(), dim)
	}
	for i := 0; i < dim; i++ {
		if bounds.Upper[i] <= bounds.Lower[i] {
			return fmt.Errorf("%w: upper[%d]=%g must exceed lower[%d]=%g", ErrInvalidConfig, i, bounds.Upper[i], i, bounds.Lower[i])
		}
	}
	if cfg.GrowFactor <= 1 {
		return fmt.Errorf("%w: growFactor=%g must be > 1", ErrInvalidConfig, cfg.GrowFactor)
	}
	if cfg.ShrinkFactor <= 0 || cfg.ShrinkFactor >= 1 {
		return fmt.Errorf("%w: shrinkFactor=%g must be in (0,1)", ErrInvalidConfig, cfg.ShrinkFactor)
	}
	if cfg.MaxEvaluations != 0 && cfg.MaxEvaluations <= dim+1 {
		return fmt.Errorf("%w: maxEvaluations=%d must exceed dim+1=%d", ErrInvalidConfig, cfg.MaxEvaluations, dim+1)
	}
	if cfg.MinRelSize < 0 {
		return fmt.Errorf("%w: minRelSize=%g must be >= 0", ErrInvalidConfig, cfg.MinRelSize)
	}
	return nil
}
