// Package solve provides the nonlinear root finders behind the
// equilibrium closure: a bracketing scalar solver for inertial runs
// and a Broyden solver for full price trajectories. Both are
// deterministic given identical inputs and report final residuals.
package solve

import (
	"errors"
	"math"
)

var ErrNoConvergence = errors.New("solve: did not converge")

// ScalarFunc is a one-dimensional residual.
type ScalarFunc func(float64) (float64, error)

// VectorFunc is an n-dimensional residual, one entry per unknown.
type VectorFunc func([]float64) ([]float64, error)

// Options constrain the iteration budget and convergence target.
type Options struct {
	Tol     float64 // max absolute residual accepted as a root
	MaxIter int
}

func DefaultOptions() Options {
	return Options{
		Tol:     1e-9,
		MaxIter: 500,
	}
}

// Result reports a root and the residuals at it.
type Result struct {
	Root      []float64
	Residuals []float64
	MaxAbs    float64
	Iters     int
}

func maxAbs(v []float64) float64 {
	m := 0.0
	for _, x := range v {
		if a := math.Abs(x); a > m {
			m = a
		}
	}
	return m
}

func anyNaN(v []float64) bool {
	for _, x := range v {
		if math.IsNaN(x) {
			return true
		}
	}
	return false
}
