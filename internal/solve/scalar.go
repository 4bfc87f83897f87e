package solve

import (
	"fmt"
	"math"
)

// Scalar finds a root of f near a positive initial guess. It brackets
// the root by expanding multiplicatively around the guess, then closes
// in with false position under the Anderson-Bjorck modification,
// falling back to a bisection step whenever the secant point leaves
// the bracket. The multiplicative bracket keeps every trial point
// positive, which the price residuals require.
func Scalar(f ScalarFunc, guess float64, opts Options) (Result, error) {
	if guess <= 0 {
		guess = 1
	}

	lo, hi, flo, fhi, err := bracket(f, guess, opts)
	if err != nil {
		return Result{}, err
	}
	if math.Abs(flo) <= opts.Tol {
		return scalarResult(lo, flo, 0), nil
	}
	if math.Abs(fhi) <= opts.Tol {
		return scalarResult(hi, fhi, 0), nil
	}

	gamma := 1.0
	for i := 0; i < opts.MaxIter; i++ {
		s := (fhi - gamma*flo) / (hi - lo)
		x := hi - fhi/s
		if s == 0 || x == lo || x == hi || (x-lo)*(x-hi) > 0 {
			x = 0.5 * (lo + hi)
		}

		fx, err := f(x)
		if err != nil {
			return Result{}, err
		}
		if math.IsNaN(fx) {
			return Result{}, fmt.Errorf("%w: residual is NaN at %g", ErrNoConvergence, x)
		}
		if math.Abs(fx) <= opts.Tol {
			return scalarResult(x, fx, i+1), nil
		}

		if fx*fhi < 0 {
			lo, flo = hi, fhi
			gamma = 1.0
		} else {
			// Anderson-Bjorck: scale the retained endpoint so the
			// secant keeps making progress on flat stretches.
			g := 1.0 - fx/fhi
			if g <= 0 {
				g = 0.5
			}
			gamma *= g
		}
		hi, fhi = x, fx

		if math.Abs(hi-lo) <= 1e-15*math.Max(1, math.Abs(hi)) {
			break
		}
	}

	return Result{}, fmt.Errorf("%w: scalar residual %g after bracketing", ErrNoConvergence, math.Abs(fhi))
}

// bracket expands around the guess until the residual changes sign.
func bracket(f ScalarFunc, guess float64, opts Options) (lo, hi, flo, fhi float64, err error) {
	lo, hi = guess, guess
	flo, err = f(lo)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	fhi = flo

	const maxExpand = 60
	for i := 0; i < maxExpand; i++ {
		if flo*fhi < 0 || math.Abs(flo) <= opts.Tol || math.Abs(fhi) <= opts.Tol {
			return lo, hi, flo, fhi, nil
		}
		lo *= 0.5
		hi *= 1.6
		if flo, err = f(lo); err != nil {
			return 0, 0, 0, 0, err
		}
		if fhi, err = f(hi); err != nil {
			return 0, 0, 0, 0, err
		}
		if math.IsNaN(flo) || math.IsNaN(fhi) {
			return 0, 0, 0, 0, fmt.Errorf("%w: residual is NaN while bracketing", ErrNoConvergence)
		}
	}
	return 0, 0, 0, 0, fmt.Errorf("%w: no sign change near %g", ErrNoConvergence, guess)
}

func scalarResult(x, fx float64, iters int) Result {
	return Result{
		Root:      []float64{x},
		Residuals: []float64{fx},
		MaxAbs:    math.Abs(fx),
		Iters:     iters,
	}
}
