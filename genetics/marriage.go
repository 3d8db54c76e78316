package genetics

import "colonyopt/rng"

// pair is one marriage: indices into the fitness-sorted worker list (spec
// §4.3 step 5).
type pair struct {
	a, b int
}

// marriageList builds ceil(N/2) pairs from the fitness-sorted ranks
// according to mode.
func marriageList(mode MarriageMode, n int, src *rng.Source) []pair {
	switch mode {
	case KingHenry:
		return kingHenryPairs(n)
	case Random:
		return randomPairs(n, src)
	case RandomPreferable:
		return randomPreferablePairs(n, src)
	case Hierarchical:
		return hierarchicalPairs(n)
	case BestWorst:
		return bestWorstPairs(n)
	default:
		return kingHenryPairs(n)
	}
}

func numPairs(n int) int {
	return (n + 1) / 2
}

// kingHenryPairs pairs the king (rank 0) with ranks 1..ceil(N/2) in turn,
// padding with (0, 0) self-pairs when N is too small to supply them.
func kingHenryPairs(n int) []pair {
	np := numPairs(n)
	pairs := make([]pair, 0, np)
	for k := 1; k <= np && k < n; k++ {
		pairs = append(pairs, pair{a: 0, b: k})
	}
	for len(pairs) < np {
		pairs = append(pairs, pair{a: 0, b: 0})
	}
	return pairs
}

// randomPairs draws uniform random distinct ranks, never self-pairing, by
// shuffling the rank order with a Fisher-Yates permutation (src.Perm) and
// pairing each consecutive slot in the shuffle: adjacent entries of a
// permutation are always distinct, so no rejection-sampling loop is needed
// to dodge a self-pair.
func randomPairs(n int, src *rng.Source) []pair {
	np := numPairs(n)
	perm := src.Perm(n)
	pairs := make([]pair, np)
	for i := 0; i < np; i++ {
		pairs[i] = pair{a: perm[i], b: perm[(i+1)%n]}
	}
	return pairs
}

// randomPreferablePairs samples two random ranks per parent slot and keeps
// the fitter (lower-ranked) of the two, disallowing self-pairing.
func randomPreferablePairs(n int, src *rng.Source) []pair {
	fitter := func() int {
		i, j := src.Intn(n), src.Intn(n)
		if i < j {
			return i
		}
		return j
	}
	np := numPairs(n)
	pairs := make([]pair, np)
	for i := range pairs {
		a := fitter()
		b := fitter()
		for b == a && n > 1 {
			b = fitter()
		}
		pairs[i] = pair{a: a, b: b}
	}
	return pairs
}

// hierarchicalPairs pairs consecutive ranks, wrapping a trailing singleton
// back to rank 0.
func hierarchicalPairs(n int) []pair {
	pairs := make([]pair, 0, numPairs(n))
	i := 0
	for i+1 < n {
		pairs = append(pairs, pair{a: i, b: i + 1})
		i += 2
	}
	if i < n {
		pairs = append(pairs, pair{a: i, b: 0})
	}
	return pairs
}

// bestWorstPairs pairs rank i with rank n-1-i, falling back to (i, 0) when
// the two indices collide (the middle rank of an odd population).
func bestWorstPairs(n int) []pair {
	np := numPairs(n)
	pairs := make([]pair, np)
	for i := 0; i < np; i++ {
		j := n - 1 - i
		if j == i {
			pairs[i] = pair{a: i, b: 0}
		} else {
			pairs[i] = pair{a: i, b: j}
		}
	}
	return pairs
}
