package genetics

import (
	"colonyopt/rng"
	"colonyopt/vertex"
)

// reproduce mixes parentA and parentB's vertex snapshots into two children,
// per spec §4.3 step 6. mode selects the mixing rule (RandomType is resolved
// once at the top of each call, i.e. once per pair, as the spec
// describes). rho is the reproduction percent; coordinates that fail the
// rho coin flip simply copy parent-0 for both children.
func reproduce(parentA, parentB []vertex.Vertex, mode ReproductionMode, rho float64, src *rng.Source) (childA, childB []vertex.Vertex) {
	if mode == RandomType {
		if src.Float64() < 0.5 {
			mode = DiscreteMixing
		} else {
			mode = LinearCombination
		}
	}
	n := len(parentA)
	dim := len(parentA[0].Params)
	childA = make([]vertex.Vertex, n)
	childB = make([]vertex.Vertex, n)
	for v := 0; v < n; v++ {
		pa := make([]float64, dim)
		pb := make([]float64, dim)
		for p := 0; p < dim; p++ {
			if src.Float64() >= rho {
				pa[p] = parentA[v].Params[p]
				pb[p] = parentA[v].Params[p]
				continue
			}
			switch mode {
			case DiscreteMixing:
				if src.Float64() < 0.5 {
					pa[p] = parentA[v].Params[p]
					pb[p] = parentB[v].Params[p]
				} else {
					pa[p] = parentB[v].Params[p]
					pb[p] = parentA[v].Params[p]
				}
			default: // LinearCombination
				m := 2*src.Float64() - 0.5
				pa[p] = m*parentA[v].Params[p] + (1-m)*parentB[v].Params[p]
				pb[p] = m*parentB[v].Params[p] + (1-m)*parentA[v].Params[p]
			}
		}
		childA[v] = vertex.Vertex{Value: vertex.Unevaluated, Params: pa}
		childB[v] = vertex.Vertex{Value: vertex.Unevaluated, Params: pb}
	}
	return childA, childB
}
