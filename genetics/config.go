package genetics

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is the sentinel wrapped by every genetics configuration
// rejection.
var ErrInvalidConfig = errors.New("genetics: invalid configuration")

// FitnessMode selects how a worker's scalar fitness is derived from its
// vertex snapshots (spec §4.3 step 3).
type FitnessMode int

const (
	// Min uses the current generation's best (vertex-0) value.
	Min FitnessMode = iota
	// Max uses the worst value ever observed for that worker across all
	// history, not just the current generation (spec §9 open question,
	// preserved verbatim as an intentional asymmetry with Min).
	Max
	// Average is the arithmetic mean of the current generation's D+1
	// vertex values.
	Average
)

// MarriageMode selects how the fitness-sorted worker list is paired off for
// reproduction (spec §4.3 step 5).
type MarriageMode int

const (
	KingHenry MarriageMode = iota
	Random
	RandomPreferable
	Hierarchical
	BestWorst
)

// ReproductionMode selects how a pair's genes are mixed into two children
// (spec §4.3 step 6). BestSize from the original source is marked
// deprecated there and is intentionally absent here (spec §9).
type ReproductionMode int

const (
	DiscreteMixing ReproductionMode = iota
	LinearCombination
	RandomType
)

// ShrinkMode selects how the search box is narrowed around the king (spec
// §4.3 step 4).
type ShrinkMode int

const (
	ShrinkAround ShrinkMode = iota
	ChangeLowerIfNeg
)

// Config holds the outer generational-loop tuning parameters (spec §6).
type Config struct {
	Seed int64 `yaml:"seed"`

	MaxGenerations int `yaml:"maxGenerations"`
	MaxEvaluations int `yaml:"maxEvaluations"` // 0 means unlimited

	Fitness      FitnessMode      `yaml:"fitness"`
	Marriage     MarriageMode     `yaml:"marriage"`
	Reproduction ReproductionMode `yaml:"reproduction"`

	ReproductionPercent float64 `yaml:"reproductionPercent"` // rho in [0,1]

	ShrinkPerGenerations int        `yaml:"shrinkPerGenerations"` // K; 0 disables dynamic shrinking
	ShrinkFactorBoundary float64    `yaml:"shrinkFactorBoundary"`
	ShrinkMode           ShrinkMode `yaml:"shrinkMode"`
	ResetOnShrink        bool       `yaml:"resetOnShrink"`

	EvaluationChunkSize int  `yaml:"evaluationChunkSize"`
	LazyWorkers         bool `yaml:"lazyWorkers"`
}

// DefaultConfig returns the spec §6 defaults.
func DefaultConfig() Config {
	return Config{
		Seed:                 0,
		MaxGenerations:       10,
		MaxEvaluations:       0,
		Fitness:              Min,
		Marriage:             KingHenry,
		Reproduction:         DiscreteMixing,
		ReproductionPercent:  1.0,
		ShrinkPerGenerations: 0,
		ShrinkFactorBoundary: 0.5,
		ShrinkMode:           ShrinkAround,
		ResetOnShrink:        false,
		EvaluationChunkSize:  1,
		LazyWorkers:          true,
	}
}

func (cfg Config) validate(population int) error {
	if population < 1 {
		return fmt.Errorf("%w: population=%d must be >= 1", ErrInvalidConfig, population)
	}
	if cfg.MaxGenerations < 1 {
		return fmt.Errorf("%w: maxGenerations=%d must be >= 1", ErrInvalidConfig, cfg.MaxGenerations)
	}
	if cfg.ReproductionPercent < 0 || cfg.ReproductionPercent > 1 {
		return fmt.Errorf("%w: reproductionPercent=%g must be in [0,1]", ErrInvalidConfig, cfg.ReproductionPercent)
	}
	if cfg.ShrinkPerGenerations < 0 {
		return fmt.Errorf("%w: shrinkPerGenerations=%d must be >= 0", ErrInvalidConfig, cfg.ShrinkPerGenerations)
	}
	if cfg.EvaluationChunkSize < 1 {
		return fmt.Errorf("%w: evaluationChunkSize=%d must be >= 1", ErrInvalidConfig, cfg.EvaluationChunkSize)
	}
	return nil
}
