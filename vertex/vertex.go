// Package vertex holds the shared data model for the optimizer: simplex
// vertices, box bounds, and the boundary-enforcement policies applied to
// extrapolated points. These types are passed by value or by slice between
// simplex, colony, and genetics, so they carry no behavior beyond pure
// arithmetic — mirroring the teacher's own vec-ops-style separation of data
// from algorithm (`tabular/models/grid_world.go` keeps State a plain struct;
// the behavior lives in the owning package).
package vertex

import "math"

// Unevaluated is the sentinel value carried by a Vertex whose Params have
// been produced but not yet scored by the external evaluator.
const Unevaluated = math.MaxFloat64

// Vertex is one point of a simplex: a candidate parameter vector and the
// objective value there, or Unevaluated if no value has been written back
// yet.
type Vertex struct {
	Value  float64
	Params []float64
}

// IsEvaluated reports whether Value has been filled in by the evaluator.
func (v Vertex) IsEvaluated() bool {
	return v.Value != Unevaluated
}

// Clone returns a deep copy of v; Params is never aliased across copies so
// that genetics can keep independent history snapshots (spec §3, "History
// snapshots are independent copies").
func (v Vertex) Clone() Vertex {
	params := make([]float64, len(v.Params))
	copy(params, v.Params)
	return Vertex{Value: v.Value, Params: params}
}

// Less orders vertices ascending by Value, with NaN sorting last (spec §3).
func Less(a, b Vertex) bool {
	if math.IsNaN(a.Value) {
		return false
	}
	if math.IsNaN(b.Value) {
		return true
	}
	return a.Value < b.Value
}

// EvaluationRequest is a Vertex in the unevaluated state, tagged with the
// identity of the simplex that created it (spec §3). The owning simplex
// keeps its own pointer to the same EvaluationRequest so that once the
// evaluator writes Value in place, the simplex's next operation can read it
// straight back without the colony needing to shuttle results anywhere.
type EvaluationRequest struct {
	WorkerID string
	Vertex   Vertex
}

// Bounds is the box constraint [Lower[i], Upper[i]] for each of D
// dimensions.
type Bounds struct {
	Lower []float64
	Upper []float64
}

// Dim returns the dimensionality of the bounds.
func (b Bounds) Dim() int {
	return len(b.Lower)
}

// Contains reports whether params lies within the box, inclusive.
func (b Bounds) Contains(params []float64) bool {
	for i, p := range params {
		if p < b.Lower[i] || p > b.Upper[i] {
			return false
		}
	}
	return true
}

// Range returns upper[i] - lower[i].
func (b Bounds) Range(i int) float64 {
	return b.Upper[i] - b.Lower[i]
}

// Clone returns a deep copy of the bounds, so that genetics' shrink
// operation (spec §4.3) never mutates a simplex's or another generation's
// box in place.
func (b Bounds) Clone() Bounds {
	lower := make([]float64, len(b.Lower))
	upper := make([]float64, len(b.Upper))
	copy(lower, b.Lower)
	copy(upper, b.Upper)
	return Bounds{Lower: lower, Upper: upper}
}
