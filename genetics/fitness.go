package genetics

import "sort"

// sortByFitness orders ids ascending by fitness[id], breaking ties on the id
// string itself so that repeated runs with tied fitness values (e.g. a
// constant objective) stay bit-for-bit deterministic rather than depending
// on sort stability over whatever order ids happened to arrive in.
func sortByFitness(ids []string, fitness map[string]float64) {
	sort.Slice(ids, func(i, j int) bool {
		fi, fj := fitness[ids[i]], fitness[ids[j]]
		if fi != fj {
			return fi < fj
		}
		return ids[i] < ids[j]
	})
}
