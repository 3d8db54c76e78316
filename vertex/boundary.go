package vertex

import (
	"fmt"
	"strings"
)

// BoundaryPolicy selects how an out-of-box coordinate is folded back into
// [lower, upper] (spec §4.1).
type BoundaryPolicy int

const (
	// Sticky clamps to the violated bound.
	Sticky BoundaryPolicy = iota
	// Random resamples uniformly within the bound.
	Random
	// Periodic wraps by successive +-(upper-lower) subtractions.
	Periodic
	// Reflective folds by 2*bound - x.
	Reflective
)

func (p BoundaryPolicy) String() string {
	switch p {
	case Sticky:
		return "sticky"
	case Random:
		return "random"
	case Periodic:
		return "periodic"
	case Reflective:
		return "reflective"
	default:
		return "unknown"
	}
}

// UnmarshalYAML accepts the config surface's named values (Sticky, Random,
// Periodic, Reflective), case-insensitively.
func (p *BoundaryPolicy) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var name string
	if err := unmarshal(&name); err != nil {
		return err
	}
	switch strings.ToLower(name) {
	case "sticky":
		*p = Sticky
	case "random":
		*p = Random
	case "periodic":
		*p = Periodic
	case "reflective":
		*p = Reflective
	default:
		return fmt.Errorf("vertex: unrecognized boundary policy %q", name)
	}
	return nil
}

// periodicMaxIterations and reflectiveMaxIterations bound the folding loops
// below. Exceeding the cap is an accepted quirk (spec §9): the last computed
// value is kept even if it remains out of bounds.
const (
	periodicMaxIterations   = 100
	reflectiveMaxIterations = 1000
)

// Randomer is the minimal random source the Random boundary policy needs;
// satisfied by *rng.Source without importing it here (keeps vertex free of
// a dependency on rng, since simplex is the only caller that owns an rng.Source).
type Randomer interface {
	Uniform(lo, hi float64) float64
}

// Enforce applies policy to params in place, coordinate by coordinate,
// wherever a coordinate falls outside [b.Lower[i], b.Upper[i]]. src is only
// consulted for the Random policy and may be nil otherwise.
func Enforce(policy BoundaryPolicy, b Bounds, params []float64, src Randomer) {
	for i := range params {
		lo, hi := b.Lower[i], b.Upper[i]
		if params[i] >= lo && params[i] <= hi {
			continue
		}
		switch policy {
		case Sticky:
			if params[i] < lo {
				params[i] = lo
			} else {
				params[i] = hi
			}
		case Random:
			params[i] = src.Uniform(lo, hi)
		case Periodic:
			params[i] = foldPeriodic(params[i], lo, hi)
		case Reflective:
			params[i] = foldReflective(params[i], lo, hi)
		default:
			panic("vertex: unrecognized boundary policy")
		}
	}
}

// foldPeriodic wraps x into [lo, hi] by repeatedly subtracting or adding the
// box width, up to periodicMaxIterations times. If the cap is hit while x is
// still out of bounds, the last computed value is returned as-is (spec §9
// quirk, preserved verbatim).
func foldPeriodic(x, lo, hi float64) float64 {
	width := hi - lo
	if width <= 0 {
		return x
	}
	for i := 0; i < periodicMaxIterations && (x < lo || x > hi); i++ {
		if x < lo {
			x += width
		} else {
			x -= width
		}
	}
	return x
}

// foldReflective folds x back into [lo, hi] by repeated reflection about the
// violated bound, up to reflectiveMaxIterations times, with the same
// exceeded-cap fallback as foldPeriodic (spec §9 quirk).
func foldReflective(x, lo, hi float64) float64 {
	for i := 0; i < reflectiveMaxIterations && (x < lo || x > hi); i++ {
		if x < lo {
			x = 2*lo - x
		} else {
			x = 2*hi - x
		}
	}
	return x
}
