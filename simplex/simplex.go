// Package simplex implements the per-worker Nelder-Mead downhill simplex
// state machine (spec §4.1): reflect/expand/contract/shrink with the
// tie-breaks and boundary enforcement spelled out there. It never blocks on
// evaluation itself — every operation that needs a point scored returns the
// set of EvaluationRequests it produced and waits for the colony to hand
// back filled-in values before Advance is called again. This mirrors the
// "cooperative task queue of typed step functions" re-expression in spec §9.
package simplex

import (
	"fmt"
	"math"
	"sort"

	"colonyopt/rng"
	"colonyopt/vertex"
)

// stage names the operation a Simplex will perform the next time Advance is
// called. It is the internal analogue of spec §9's tagged step-function
// variants (Reflect | ExpandOrContract | ContractAll | Terminate).
type stage int

const (
	stageNone stage = iota
	stageAwaitingInitial
	stageExpandOrContract
	stageAwaitingExpand
	stageAwaitingContract
	stageAwaitingContractAll
	stageFinished
)

// Simplex is one Nelder-Mead polytope of D+1 vertices (spec §3).
type Simplex struct {
	id     string
	dim    int
	bounds vertex.Bounds
	cfg    Config
	src    *rng.Source

	vertices []vertex.Vertex
	pSum     []float64

	iterationCount  int
	evaluationCount int

	stage   stage
	pending []*vertex.EvaluationRequest

	// cachedWorst is the worst vertex's value at the moment a contraction
	// candidate was dispatched (spec §4.1's "v_worst" in the contract
	// accept check), captured after the tentative reflection replacement.
	cachedWorst float64
}

// New constructs a Simplex identified by id, owning its own bounds (cloned,
// so genetics' shrink operation never aliases another worker's box) and a
// private RNG source for random initial vectors / the Random boundary
// policy.
func New(id string, dim int, bounds vertex.Bounds, cfg Config, src *rng.Source) (*Simplex, error) {
	if err := cfg.validate(bounds, dim); err != nil {
		return nil, err
	}
	return &Simplex{
		id:     id,
		dim:    dim,
		bounds: bounds.Clone(),
		cfg:    cfg,
		src:    src,
		pSum:   make([]float64, dim),
	}, nil
}

// ID returns the simplex's worker identity tag.
func (s *Simplex) ID() string { return s.id }

// SetID renames the simplex's identity tag, used by genetics to relabel
// children after reproduction (spec §4.3 step 6, "names are reset to
// worker_<i>_G<gen>").
func (s *Simplex) SetID(id string) { s.id = id }

// Dim returns D.
func (s *Simplex) Dim() int { return s.dim }

// Bounds returns the box this simplex currently searches within.
func (s *Simplex) Bounds() vertex.Bounds { return s.bounds }

// SetBounds replaces the box in place (used by genetics' shrink-boundaries
// step, spec §4.3). The new bounds are cloned.
func (s *Simplex) SetBounds(b vertex.Bounds) {
	s.bounds = b.Clone()
}

// InitFromPoint builds D+1 vertices: point plus D points offset along each
// axis by the scalar scale (spec §4.1, initial_vectors(point, scale)).
func (s *Simplex) InitFromPoint(point []float64, scale float64) error {
	scales := make([]float64, s.dim)
	for i := range scales {
		scales[i] = scale
	}
	return s.InitFromPointScales(point, scales)
}

// InitFromPointScales builds D+1 vertices using a per-axis offset (spec
// §4.1, initial_vectors(point, scale[])).
func (s *Simplex) InitFromPointScales(point []float64, scales []float64) error {
	if len(point) != s.dim || len(scales) != s.dim {
		return fmt.Errorf("%w: initial point/scale dimension mismatch", ErrInvalidConfig)
	}
	vs := make([]vertex.Vertex, s.dim+1)
	vs[0] = vertex.Vertex{Value: vertex.Unevaluated, Params: append([]float64(nil), point...)}
	for i := 0; i < s.dim; i++ {
		p := append([]float64(nil), point...)
		p[i] += scales[i]
		vs[i+1] = vertex.Vertex{Value: vertex.Unevaluated, Params: p}
	}
	s.setInitialVertices(vs)
	return nil
}

// InitRandom draws D+1 vertices uniformly from the box (spec §4.1,
// initial_vectors(seed)). The simplex's own RNG source, given to New,
// supplies the draw.
func (s *Simplex) InitRandom() error {
	vs := make([]vertex.Vertex, s.dim+1)
	for i := range vs {
		p := make([]float64, s.dim)
		for j := 0; j < s.dim; j++ {
			p[j] = s.src.Uniform(s.bounds.Lower[j], s.bounds.Upper[j])
		}
		vs[i] = vertex.Vertex{Value: vertex.Unevaluated, Params: p}
	}
	s.setInitialVertices(vs)
	return nil
}

// SetVertices replaces all D+1 vertices wholesale (used by genetics
// reproduction, spec §4.3 step 6 — "children are the workers themselves").
// Values are forced unevaluated regardless of what the caller passed in.
func (s *Simplex) SetVertices(vs []vertex.Vertex) error {
	if len(vs) != s.dim+1 {
		return fmt.Errorf("%w: expected %d vertices, got %d", ErrInvalidConfig, s.dim+1, len(vs))
	}
	cloned := make([]vertex.Vertex, len(vs))
	for i, v := range vs {
		cloned[i] = vertex.Vertex{Value: vertex.Unevaluated, Params: append([]float64(nil), v.Params...)}
	}
	s.setInitialVertices(cloned)
	return nil
}

func (s *Simplex) setInitialVertices(vs []vertex.Vertex) {
	s.vertices = vs
	s.stage = stageNone
}

// Begin marks all current vertices unevaluated, enqueues them as the first
// evaluation batch, and schedules the first Reflect operation once they
// complete (spec §4.1). It also resets the per-run iteration/evaluation
// counters, since genetics accumulates total_evaluations once per
// generation from these counts (spec §4.3 step 1).
func (s *Simplex) Begin() []*vertex.EvaluationRequest {
	s.iterationCount = 0
	s.evaluationCount = 0
	reqs := make([]*vertex.EvaluationRequest, len(s.vertices))
	for i := range s.vertices {
		s.vertices[i].Value = vertex.Unevaluated
		reqs[i] = &vertex.EvaluationRequest{WorkerID: s.id, Vertex: s.vertices[i]}
	}
	s.pending = reqs
	s.stage = stageAwaitingInitial
	return reqs
}

// ForceFinish immediately terminates the simplex without evaluating any
// further pending operation, used by the colony's lazy_workers shutdown
// (spec §4.2).
func (s *Simplex) ForceFinish() {
	s.stage = stageFinished
	s.pending = nil
}

// IsFinished reports whether the simplex has emitted its Finished signal.
func (s *Simplex) IsFinished() bool {
	return s.stage == stageFinished
}

// Advance consumes the results of the last dispatched operation (already
// written in place into the EvaluationRequests returned by the previous
// Begin/Advance call) and runs the state machine forward one or more
// operations until it either produces a new evaluation batch to return, or
// terminates. It returns (requests, finished).
func (s *Simplex) Advance() ([]*vertex.EvaluationRequest, bool) {
	switch s.stage {
	case stageAwaitingInitial:
		s.absorbInitial()
		return s.runReflect()
	case stageExpandOrContract:
		return s.afterReflect()
	case stageAwaitingExpand:
		return s.afterExpand()
	case stageAwaitingContract:
		return s.afterContract()
	case stageAwaitingContractAll:
		return s.afterContractAll()
	default:
		return nil, true
	}
}

// absorbInitial writes the evaluator's filled-in values for the D+1 initial
// vertices dispatched by Begin back into s.vertices. Begin hands the
// evaluator copies of the vertices (so Params can be read concurrently
// without aliasing the live slice); Value is a plain scalar on that copy, so
// it must be copied back explicitly before the first sort, unlike every
// later stage transition where the new trial vertex simply replaces the
// worst slot.
func (s *Simplex) absorbInitial() {
	for i, req := range s.pending {
		s.vertices[i].Value = req.Vertex.Value
	}
}

// runReflect implements spec §4.1 step 1: sort, check termination, then
// reflect.
func (s *Simplex) runReflect() ([]*vertex.EvaluationRequest, bool) {
	s.countPending()
	s.sortVertices()
	s.recomputePSum()

	if s.terminated() {
		s.stage = stageFinished
		s.pending = nil
		return nil, true
	}

	s.iterationCount++
	r := s.extrapolate(s.worstIndex(), -1)
	req := &vertex.EvaluationRequest{WorkerID: s.id, Vertex: vertex.Vertex{Value: vertex.Unevaluated, Params: r}}
	s.pending = []*vertex.EvaluationRequest{req}
	s.stage = stageExpandOrContract
	return s.pending, false
}

// afterReflect implements spec §4.1 step 2 (ExpandOrContract), reached once
// the reflection point dispatched by runReflect has been evaluated.
func (s *Simplex) afterReflect() ([]*vertex.EvaluationRequest, bool) {
	s.countPending()
	vr := s.pending[0].Vertex.Value
	worst := s.worstIndex()
	secondWorst := s.secondWorstIndex()
	best := s.bestIndex()

	if vr < s.vertices[worst].Value {
		s.replaceWorst(s.pending[0].Vertex)
	}
	s.cachedWorst = s.vertices[worst].Value

	switch {
	// Strict, not spec §4.1's literal v_r <= v_best: with <= a flat/plateau
	// objective (every trial value equal) takes this branch forever, since
	// the reflection is never accepted (v_r < v_worst is false on a plateau)
	// and neither is the expansion, so no vertex ever mutates and
	// RelativeSize never shrinks. Strict comparison falls through to the
	// contract branch on a plateau, which reaches ContractAll and shrinks
	// the polytope toward the size-based termination, matching canonical
	// Nelder-Mead and spec §8 scenario 3 (constant objective terminates by
	// relative size, not by hanging).
	case vr < s.vertices[best].Value:
		e := s.extrapolate(worst, s.cfg.GrowFactor)
		req := &vertex.EvaluationRequest{WorkerID: s.id, Vertex: vertex.Vertex{Value: vertex.Unevaluated, Params: e}}
		s.pending = []*vertex.EvaluationRequest{req}
		s.stage = stageAwaitingExpand
		return s.pending, false
	case vr >= s.vertices[secondWorst].Value:
		c := s.extrapolate(worst, s.cfg.ShrinkFactor)
		req := &vertex.EvaluationRequest{WorkerID: s.id, Vertex: vertex.Vertex{Value: vertex.Unevaluated, Params: c}}
		s.pending = []*vertex.EvaluationRequest{req}
		s.stage = stageAwaitingContract
		return s.pending, false
	default:
		return s.runReflect()
	}
}

// afterExpand implements the expansion half of spec §4.1 step 2: accept the
// expansion iff it improves over the reflection, then always return to
// Reflect.
func (s *Simplex) afterExpand() ([]*vertex.EvaluationRequest, bool) {
	s.countPending()
	ve := s.pending[0].Vertex.Value
	worst := s.worstIndex()
	if ve < s.vertices[worst].Value {
		s.replaceWorst(s.pending[0].Vertex)
	}
	return s.runReflect()
}

// afterContract implements spec §4.1 step 2's contraction accept check:
// accept if it improves over the cached worst value, else ContractAll.
func (s *Simplex) afterContract() ([]*vertex.EvaluationRequest, bool) {
	s.countPending()
	vc := s.pending[0].Vertex.Value
	if vc < s.cachedWorst {
		s.replaceWorst(s.pending[0].Vertex)
		return s.runReflect()
	}
	return s.runContractAll()
}

// runContractAll implements spec §4.1 step 3: shrink every non-best vertex
// toward the best, enforce the boundary policy, and dispatch all D new
// candidates together.
func (s *Simplex) runContractAll() ([]*vertex.EvaluationRequest, bool) {
	best := s.bestIndex()
	bestParams := s.vertices[best].Params
	reqs := make([]*vertex.EvaluationRequest, 0, s.dim)
	for i := range s.vertices {
		if i == best {
			continue
		}
		p := make([]float64, s.dim)
		for j := 0; j < s.dim; j++ {
			p[j] = s.cfg.ShrinkFactor * (s.vertices[i].Params[j] + bestParams[j])
		}
		if s.cfg.ForceBoundary {
			vertex.Enforce(s.cfg.BoundaryPolicy, s.bounds, p, s.src)
		}
		reqs = append(reqs, &vertex.EvaluationRequest{WorkerID: s.id, Vertex: vertex.Vertex{Value: vertex.Unevaluated, Params: p}})
	}
	s.pending = reqs
	s.stage = stageAwaitingContractAll
	return reqs, false
}

// afterContractAll writes the D shrunk-and-evaluated vertices back in,
// skipping the best (untouched), then returns to Reflect.
func (s *Simplex) afterContractAll() ([]*vertex.EvaluationRequest, bool) {
	s.countPending()
	best := s.bestIndex()
	idx := 0
	for i := range s.vertices {
		if i == best {
			continue
		}
		s.vertices[i] = s.pending[idx].Vertex
		idx++
	}
	return s.runReflect()
}

// countPending adds the number of just-filled requests to evaluationCount.
func (s *Simplex) countPending() {
	s.evaluationCount += len(s.pending)
}

func (s *Simplex) replaceWorst(v vertex.Vertex) {
	worst := s.worstIndex()
	old := s.vertices[worst]
	s.vertices[worst] = v
	for i := 0; i < s.dim; i++ {
		s.pSum[i] += v.Params[i] - old.Params[i]
	}
}

func (s *Simplex) sortVertices() {
	sort.SliceStable(s.vertices, func(i, j int) bool {
		return vertex.Less(s.vertices[i], s.vertices[j])
	})
}

func (s *Simplex) recomputePSum() {
	for j := 0; j < s.dim; j++ {
		s.pSum[j] = 0
	}
	for _, v := range s.vertices {
		for j := 0; j < s.dim; j++ {
			s.pSum[j] += v.Params[j]
		}
	}
}

func (s *Simplex) bestIndex() int       { return 0 }
func (s *Simplex) worstIndex() int      { return s.dim }
func (s *Simplex) secondWorstIndex() int { return s.dim - 1 }

// extrapolate computes trial[i] = pSum[i]*(1-factor)/D + vertices[index].Params[i]*(factor-(1-factor)/D),
// then applies the boundary policy if configured (spec §4.1).
func (s *Simplex) extrapolate(index int, factor float64) []float64 {
	d := float64(s.dim)
	fac1 := (1 - factor) / d
	fac2 := factor - fac1
	trial := make([]float64, s.dim)
	for i := 0; i < s.dim; i++ {
		trial[i] = s.pSum[i]*fac1 + s.vertices[index].Params[i]*fac2
	}
	if s.cfg.ForceBoundary {
		vertex.Enforce(s.cfg.BoundaryPolicy, s.bounds, trial, s.src)
	}
	return trial
}

// terminated implements spec §4.1's termination condition, checked before
// every Reflect: evaluation_count >= max_evaluations, or relative_size <=
// min_rel_size.
func (s *Simplex) terminated() bool {
	if s.cfg.MaxEvaluations > 0 && s.evaluationCount >= s.cfg.MaxEvaluations {
		return true
	}
	return s.RelativeSize() <= s.cfg.MinRelSize
}

// BestValue returns the value of vertex 0, the lowest as of the last sort
// (at the start of each Reflect). A reflection or expansion accepted since
// then may hold a lower value until the next sort.
func (s *Simplex) BestValue() float64 {
	return s.vertices[s.bestIndex()].Value
}

// BestParams returns a copy of vertex 0's parameters (see BestValue).
func (s *Simplex) BestParams() []float64 {
	return append([]float64(nil), s.vertices[s.bestIndex()].Params...)
}

// Center returns pSum/(D+1), the centroid of all D+1 vertices (spec §3/§9).
func (s *Simplex) Center() []float64 {
	c := make([]float64, s.dim)
	for i := range c {
		c[i] = s.pSum[i] / float64(s.dim+1)
	}
	return c
}

// RelativeSize computes (1/(D+1)) * sum_i |best[i]-center[i]|/(upper[i]-lower[i]),
// exactly as spec §4.1 literally defines it.
func (s *Simplex) RelativeSize() float64 {
	best := s.vertices[s.bestIndex()].Params
	center := s.Center()
	sum := 0.0
	for i := 0; i < s.dim; i++ {
		sum += math.Abs(best[i]-center[i]) / s.bounds.Range(i)
	}
	return sum / float64(s.dim+1)
}

// EuclideanSize returns the maximum Euclidean distance from the best vertex
// to any other vertex. Spec §4.1 names this accessor without giving a
// formula; this is the natural unnormalized counterpart to RelativeSize and
// is documented as a judgment call in DESIGN.md.
func (s *Simplex) EuclideanSize() float64 {
	best := s.vertices[s.bestIndex()].Params
	max := 0.0
	for i, v := range s.vertices {
		if i == s.bestIndex() {
			continue
		}
		sum := 0.0
		for j := 0; j < s.dim; j++ {
			d := v.Params[j] - best[j]
			sum += d * d
		}
		if d := math.Sqrt(sum); d > max {
			max = d
		}
	}
	return max
}

// IterationCount returns the number of reflect cycles run in this colony run.
func (s *Simplex) IterationCount() int { return s.iterationCount }

// EvaluationCount returns the number of objective evaluations consumed in
// this colony run.
func (s *Simplex) EvaluationCount() int { return s.evaluationCount }

// Vertices returns a deep copy of the current D+1 vertices, suitable for a
// generation snapshot (spec §3 "History snapshots are independent copies").
func (s *Simplex) Vertices() []vertex.Vertex {
	out := make([]vertex.Vertex, len(s.vertices))
	for i, v := range s.vertices {
		out[i] = v.Clone()
	}
	return out
}
