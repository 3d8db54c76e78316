// Package objective provides a handful of demo black-box functions used to
// exercise the optimizer end to end (spec §1 lists "the demo objective
// function (Griewank)" as an out-of-scope external collaborator whose
// contract, not implementation, the core depends on — these are that
// collaborator, kept deliberately small and side-effect free).
package objective

import "math"

// Sphere computes f(x) = sum(x_i^2), the textbook unimodal convex test
// function.
func Sphere(params []float64) float64 {
	sum := 0.0
	for _, x := range params {
		sum += x * x
	}
	return sum
}

// Griewank computes the classic multimodal benchmark
// f(x) = 1 + sum(x_i^2)/4000 - prod(cos(x_i/sqrt(i+1))).
func Griewank(params []float64) float64 {
	sum := 0.0
	prod := 1.0
	for i, x := range params {
		sum += x * x
		prod *= math.Cos(x / math.Sqrt(float64(i+1)))
	}
	return 1 + sum/4000 - prod
}

// Constant returns value regardless of params, used to exercise the
// relative-size termination path in isolation from any real landscape.
func Constant(value float64) func(params []float64) float64 {
	return func(params []float64) float64 {
		return value
	}
}
